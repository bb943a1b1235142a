package models

import (
	"time"

	"github.com/Hylozoic/entitlements-service/internal/scopes"
)

// Status — статус гранта доступа.
type Status string

const (
	StatusActive  Status = "active"
	StatusExpired Status = "expired"
	StatusRevoked Status = "revoked"
)

// AccessType — источник гранта.
type AccessType string

const (
	// TypeStripePurchase — грант по оплаченной покупке (billing-webhook).
	TypeStripePurchase AccessType = "stripe_purchase"
	// TypeAdminGrant — бесплатный доступ, выданный администратором.
	TypeAdminGrant AccessType = "admin_grant"
)

// Metadata — произвольный JSON-словарь аудита гранта
// (причина выдачи/отзыва, отметки продлений и т.п.).
type Metadata map[string]any

// TargetKind — вид сущности, на которую выписан грант.
type TargetKind string

const (
	TargetTrack TargetKind = "track"
	TargetRole  TargetKind = "role"
	TargetGroup TargetKind = "group"
)

// Target — цель гранта: ровно одна из track/role/group.
// Вместо трёх nullable-колонок, согласованных только конвенцией, инвариант
// "ровно одна цель" закреплён структурно: Target конструируется только
// через TrackTarget/RoleTarget/GroupTarget.
type Target struct {
	kind TargetKind
	id   int64
}

// TrackTarget — грант на трек.
func TrackTarget(trackID int64) Target { return Target{kind: TargetTrack, id: trackID} }

// RoleTarget — грант на роль в группе.
func RoleTarget(roleID int64) Target { return Target{kind: TargetRole, id: roleID} }

// GroupTarget — грант на группу.
func GroupTarget(groupID int64) Target { return Target{kind: TargetGroup, id: groupID} }

// Kind возвращает вид цели; для нулевого Target — пустая строка.
func (t Target) Kind() TargetKind { return t.kind }

// ID возвращает идентификатор целевой сущности.
func (t Target) ID() int64 { return t.id }

// IsZero сообщает, что цель не задана.
func (t Target) IsZero() bool { return t.kind == "" || t.id == 0 }

// Scope возвращает scope-токен, который представляет цель гранта.
func (t Target) Scope() (string, error) {
	switch t.kind {
	case TargetTrack:
		return scopes.CreateTrackScope(t.id)
	case TargetRole:
		return scopes.CreateGroupRoleScope(t.id)
	case TargetGroup:
		return scopes.CreateGroupScope(t.id)
	default:
		return "", scopes.ErrMissingEntityID
	}
}

// AccessGrant — единица выданного доступа к контенту.
// Опциональные колонки представлены указателями; Metadata хранится как jsonb.
type AccessGrant struct {
	ID                   int64
	UserID               int64
	GrantedByGroupID     int64
	Target               Target
	ProductID            *int64
	AccessType           AccessType
	Status               Status
	ExpiresAt            *time.Time
	StripeSessionID      *string
	StripeSubscriptionID *string
	GrantedByID          *int64
	Metadata             Metadata
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// IsExpired сообщает, прошёл ли срок действия гранта к моменту now.
// Грант без expires_at не истекает.
func (g *AccessGrant) IsExpired(now time.Time) bool {
	return g.ExpiresAt != nil && g.ExpiresAt.Before(now)
}

// IsActive сообщает, действует ли грант в момент now: статус active и срок
// не истёк. Статус active при прошедшем expires_at — переходная
// рассинхронизация, которую лениво чинит CheckAccess.
func (g *AccessGrant) IsActive(now time.Time) bool {
	return g.Status == StatusActive && !g.IsExpired(now)
}

// IsSubscription — грант привязан к stripe-подписке. Чистый предикат.
func (g *AccessGrant) IsSubscription() bool {
	return g.StripeSubscriptionID != nil && *g.StripeSubscriptionID != ""
}

// Scope возвращает единственный scope-токен, который представляет грант.
func (g *AccessGrant) Scope() (string, error) {
	return g.Target.Scope()
}
