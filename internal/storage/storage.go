// storage задаёт контракт хранилища грантов доступа и проекции user_scopes.
//
// Обязательства реализации (см. postgres):
//   - методы чтения-записи исполняются в транзакции из контекста, если она
//     была открыта через WithinTx — это сквозной "transacting"-токен для
//     атомарности с операциями вызывающей стороны;
//   - любое изменение статуса/срока гранта синхронно применяет проекцию
//     user_scopes в той же транзакции, до возврата результата; асинхронное
//     распространение не допускается.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/Hylozoic/entitlements-service/internal/models"
)

var (
	// ErrNotFound — запись не найдена (грант).
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists — нарушение уникальности.
	ErrAlreadyExists = errors.New("already exists")
)

// GrantFilter — конъюнктивный фильтр поиска гранта: каждое заданное поле
// сужает выборку. Указатели nil — поле не участвует в фильтре.
type GrantFilter struct {
	UserID           int64
	GrantedByGroupID int64
	Status           models.Status
	GroupID          *int64
	ProductID        *int64
	TrackID          *int64
	RoleID           *int64
}

// GrantStorage выполняет операции над грантами доступа.
type GrantStorage interface {
	// SaveGrant сохраняет новый грант и возвращает его с заполненными
	// id/временными метками.
	SaveGrant(ctx context.Context, grant *models.AccessGrant) (*models.AccessGrant, error)
	// GrantByID находит грант по id.
	GrantByID(ctx context.Context, id int64) (*models.AccessGrant, error)
	// FindGrant находит первый грант по конъюнктивному фильтру.
	FindGrant(ctx context.Context, filter GrantFilter) (*models.AccessGrant, error)
	// UpdateGrant перезаписывает изменяемые поля гранта (status, expires_at,
	// metadata) по id. Политика конкурентных обновлений — last-write-wins.
	UpdateGrant(ctx context.Context, grant *models.AccessGrant) (*models.AccessGrant, error)
	// ExpireGrantIfDue переводит грант в expired, если он всё ещё active и
	// срок прошёл. Возвращает, произошёл ли перевод именно сейчас.
	ExpireGrantIfDue(ctx context.Context, id int64, now time.Time) (bool, error)
	// GrantsForUser возвращает гранты пользователя со статусом active в
	// рамках выдавшей группы (без перепроверки expires_at).
	GrantsForUser(ctx context.Context, userID, grantedByGroupID int64) ([]models.AccessGrant, error)
	// GrantsBySession возвращает все гранты checkout-сессии, любой статус.
	GrantsBySession(ctx context.Context, sessionID string) ([]models.AccessGrant, error)
	// GrantsBySubscription возвращает все гранты подписки, любой статус.
	GrantsBySubscription(ctx context.Context, subscriptionID string) ([]models.AccessGrant, error)
	// ActiveSubscriptions возвращает active-гранты пользователя с
	// непустым stripe_subscription_id.
	ActiveSubscriptions(ctx context.Context, userID int64) ([]models.AccessGrant, error)
}

// ScopeStorage выполняет операции над проекцией user_scopes.
type ScopeStorage interface {
	// UserScopes возвращает все строки проекции пользователя.
	UserScopes(ctx context.Context, userID int64) ([]models.UserScope, error)
	// HasUserScope проверяет наличие действующего scope у пользователя.
	HasUserScope(ctx context.Context, userID int64, scope string, now time.Time) (bool, error)
	// DeleteExpiredScopes удаляет просроченные строки проекции,
	// возвращает количество удалённых.
	DeleteExpiredScopes(ctx context.Context, now time.Time) (int64, error)
}

// Storage задаёт контракт работы с БД.
type Storage interface {
	GrantStorage
	ScopeStorage
	// WithinTx исполняет fn в одной транзакции; транзакция передаётся через
	// контекст и подхватывается всеми методами Storage внутри fn.
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
	Close()
}
