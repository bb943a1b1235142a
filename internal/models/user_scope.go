package models

import "time"

// SourceKindGrant — источник строки проекции: грант доступа.
const SourceKindGrant = "grant"

// UserScope — строка материализованной проекции прав пользователя.
// Первичный ключ — (user_id, scope); expires_at=nil означает бессрочно.
// Проекция поддерживается хранилищем синхронно с изменениями грантов.
type UserScope struct {
	UserID     int64
	Scope      string
	ExpiresAt  *time.Time
	SourceKind string
	SourceID   int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
