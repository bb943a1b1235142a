// scopes реализует кодек scope-токенов — строковых прав доступа вида
// "{type}:{entityId}", которыми оперируют гранты доступа и проекция
// user_scopes.
//
// Основные аспекты:
//   - Конструирование (CreateScope и обёртки) — жёсткое: неизвестный тип или
//     отсутствующий идентификатор — ошибка вызывающего кода, не ретраится;
//   - Разбор (ParseScope и производные) — тотальный: любой некорректный вход
//     даёт nil/false без ошибки, потому что разбор гоняется по недоверенным
//     и легаси-данным в фильтрующих пайплайнах;
//   - Пакет чистый: без состояния и побочных эффектов.
package scopes

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Type — тип сущности, на которую указывает scope. Закрытое перечисление.
type Type string

const (
	// TypeGroup — доступ к группе: "group:<groupId>".
	TypeGroup Type = "group"
	// TypeTrack — доступ к треку: "track:<trackId>".
	TypeTrack Type = "track"
	// TypeGroupRole — роль в группе: "group_role:<roleId>".
	TypeGroupRole Type = "group_role"
)

var (
	// ErrInvalidScopeType — тип не входит в перечисление. Ошибка вызывающего кода.
	ErrInvalidScopeType = errors.New("invalid scope type")

	// ErrMissingEntityID — идентификатор сущности отсутствует (<= 0).
	// Ошибка вызывающего кода.
	ErrMissingEntityID = errors.New("entity id is required")
)

// Scope — разобранный scope-токен.
type Scope struct {
	Type     Type
	EntityID string
}

// String возвращает каноничную сериализацию "{type}:{entityId}".
func (s Scope) String() string {
	return string(s.Type) + ":" + s.EntityID
}

// knownType проверяет принадлежность типа перечислению.
func knownType(t Type) bool {
	switch t {
	case TypeGroup, TypeTrack, TypeGroupRole:
		return true
	default:
		return false
	}
}

// CreateScope собирает scope-токен из типа и идентификатора сущности.
// Возвращает ErrInvalidScopeType для неизвестного типа и ErrMissingEntityID
// для entityID <= 0.
func CreateScope(t Type, entityID int64) (string, error) {
	if !knownType(t) {
		return "", fmt.Errorf("%w: %q", ErrInvalidScopeType, string(t))
	}

	if entityID <= 0 {
		return "", ErrMissingEntityID
	}

	return string(t) + ":" + strconv.FormatInt(entityID, 10), nil
}

// CreateGroupScope собирает scope группы.
func CreateGroupScope(groupID int64) (string, error) {
	return CreateScope(TypeGroup, groupID)
}

// CreateTrackScope собирает scope трека.
func CreateTrackScope(trackID int64) (string, error) {
	return CreateScope(TypeTrack, trackID)
}

// CreateGroupRoleScope собирает scope роли в группе.
func CreateGroupRoleScope(roleID int64) (string, error) {
	return CreateScope(TypeGroupRole, roleID)
}

// ParseScope разбирает scope-токен на составные части.
// Валиден только вход ровно из двух сегментов через ':', с известным типом и
// непустым идентификатором; всё прочее — nil без ошибки:
//
//	"group:"          -> nil (пустой entityId)
//	"group:123:extra" -> nil (лишний сегмент)
//	"group"           -> nil (нет разделителя)
//	"invalid:123"     -> nil (неизвестный тип)
func ParseScope(raw string) *Scope {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ":")
	if len(parts) != 2 {
		return nil
	}

	t, entityID := Type(parts[0]), parts[1]
	if !knownType(t) {
		return nil
	}

	if entityID == "" {
		return nil
	}

	return &Scope{Type: t, EntityID: entityID}
}

// IsValidScope сообщает, является ли строка корректным scope-токеном.
func IsValidScope(raw string) bool {
	return ParseScope(raw) != nil
}

// IsScopeOfType сообщает, относится ли токен к заданному типу.
// Для некорректного токена — false, не ошибка.
func IsScopeOfType(raw string, t Type) bool {
	parsed := ParseScope(raw)
	return parsed != nil && parsed.Type == t
}

// EntityIDFromScope извлекает идентификатор сущности из токена.
// ok=false для некорректного токена.
func EntityIDFromScope(raw string) (string, bool) {
	parsed := ParseScope(raw)
	if parsed == nil {
		return "", false
	}

	return parsed.EntityID, true
}

// ContentAccess — спецификация пакета доступа: списки идентификаторов треков,
// групп и ролей, из которых строится плоский набор scope-токенов.
type ContentAccess struct {
	TrackIDs []int64 `json:"trackIds"`
	GroupIDs []int64 `json:"groupIds"`
	RoleIDs  []int64 `json:"roleIds"`
}

// UnmarshalJSON разбирает ContentAccess снисходительно: поле с неожиданным
// типом (не массив чисел) трактуется как отсутствующее, а не как ошибка.
// Исторически на это поведение полагаются вызывающие, передающие частичные
// объекты; null и не-объект дают пустую спецификацию.
func (ca *ContentAccess) UnmarshalJSON(data []byte) error {
	*ca = ContentAccess{}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		// Не-объект (null/число/строка) — пустая спецификация.
		return nil
	}

	tryIDs := func(key string) []int64 {
		raw, ok := fields[key]
		if !ok {
			return nil
		}
		var ids []int64
		if err := json.Unmarshal(raw, &ids); err != nil {
			return nil
		}
		return ids
	}

	ca.TrackIDs = tryIDs("trackIds")
	ca.GroupIDs = tryIDs("groupIds")
	ca.RoleIDs = tryIDs("roleIds")

	return nil
}

// FromContentAccess раскатывает спецификацию доступа в плоский список
// scope-токенов: сначала треки, затем группы, затем роли — по одному токену
// на идентификатор, без дедупликации. Пустая спецификация — пустой список.
// Некорректный идентификатор (<= 0) — ошибка CreateScope.
func FromContentAccess(ca ContentAccess) ([]string, error) {
	scopes := make([]string, 0, len(ca.TrackIDs)+len(ca.GroupIDs)+len(ca.RoleIDs))

	for _, id := range ca.TrackIDs {
		s, err := CreateTrackScope(id)
		if err != nil {
			return nil, err
		}
		scopes = append(scopes, s)
	}

	for _, id := range ca.GroupIDs {
		s, err := CreateGroupScope(id)
		if err != nil {
			return nil, err
		}
		scopes = append(scopes, s)
	}

	for _, id := range ca.RoleIDs {
		s, err := CreateGroupRoleScope(id)
		if err != nil {
			return nil, err
		}
		scopes = append(scopes, s)
	}

	return scopes, nil
}
