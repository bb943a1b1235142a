package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Hylozoic/entitlements-service/internal/models"
)

// Проекция user_scopes — read-side материализация прав, которую оригинальная
// схема поддерживала скрытыми триггерами БД. Здесь это явная обязанность
// хранилища: projectGrant вызывается из SaveGrant/UpdateGrant/ExpireGrantIfDue
// в той же транзакции, что и изменение гранта, до возврата результата.

// projectGrant применяет проекцию для одного гранта:
//   - статус active — upsert строки (user_id, scope); при конфликте
//     побеждает более поздний срок, NULL означает "бессрочно" и побеждает всё;
//   - иначе — строка гранта снимается и пересобирается из оставшихся
//     active-грантов с тем же scope, если такие есть.
func (s *Storage) projectGrant(ctx context.Context, g *models.AccessGrant) error {
	const op = "storage.postgres.projectGrant"

	scope, err := g.Scope()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if g.Status == models.StatusActive {
		query := `
        INSERT INTO user_scopes (user_id, scope, expires_at, source_kind, source_id, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, now(), now())
        ON CONFLICT (user_id, scope) DO UPDATE SET
            expires_at = CASE
                WHEN user_scopes.expires_at IS NULL OR EXCLUDED.expires_at IS NULL THEN NULL
                WHEN EXCLUDED.expires_at > user_scopes.expires_at THEN EXCLUDED.expires_at
                ELSE user_scopes.expires_at
            END,
            source_kind = EXCLUDED.source_kind,
            source_id = EXCLUDED.source_id,
            updated_at = now()`

		if _, err := s.q(ctx).Exec(ctx, query, g.UserID, scope, g.ExpiresAt, models.SourceKindGrant, g.ID); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		return nil
	}

	return s.clearGrantScope(ctx, g, scope)
}

// clearGrantScope снимает строку проекции деактивированного гранта и
// пересобирает её из оставшихся active-грантов с тем же scope.
// Выражение CASE дублирует грамматику scope-токена на стороне SQL — так же,
// как это делала оригинальная триггерная функция.
func (s *Storage) clearGrantScope(ctx context.Context, g *models.AccessGrant, scope string) error {
	const op = "storage.postgres.clearGrantScope"

	del := `
        DELETE FROM user_scopes
        WHERE user_id = $1 AND scope = $2 AND source_kind = $3`

	if _, err := s.q(ctx).Exec(ctx, del, g.UserID, scope, models.SourceKindGrant); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	recompute := `
        INSERT INTO user_scopes (user_id, scope, expires_at, source_kind, source_id, created_at, updated_at)
        SELECT ag.user_id, $2, ag.expires_at, $4, ag.id, now(), now()
        FROM access_grants ag
        WHERE ag.user_id = $1 AND ag.status = 'active' AND ag.id <> $3
          AND CASE
                WHEN ag.track_id IS NOT NULL THEN 'track:' || ag.track_id
                WHEN ag.role_id IS NOT NULL THEN 'group_role:' || ag.role_id
                WHEN ag.group_id IS NOT NULL THEN 'group:' || ag.group_id
              END = $2
        ORDER BY ag.expires_at DESC NULLS FIRST
        LIMIT 1
        ON CONFLICT (user_id, scope) DO NOTHING`

	if _, err := s.q(ctx).Exec(ctx, recompute, g.UserID, scope, g.ID, models.SourceKindGrant); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// UserScopes возвращает все строки проекции пользователя.
func (s *Storage) UserScopes(ctx context.Context, userID int64) ([]models.UserScope, error) {
	const op = "storage.postgres.UserScopes"

	query := `
        SELECT user_id, scope, expires_at, source_kind, source_id, created_at, updated_at
        FROM user_scopes
        WHERE user_id = $1
        ORDER BY scope`

	rows, err := s.q(ctx).Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []models.UserScope
	for rows.Next() {
		var us models.UserScope
		if err := rows.Scan(&us.UserID, &us.Scope, &us.ExpiresAt, &us.SourceKind, &us.SourceID, &us.CreatedAt, &us.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, us)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

// HasUserScope проверяет наличие действующего scope у пользователя:
// строка существует и срок не истёк (NULL — бессрочно).
func (s *Storage) HasUserScope(ctx context.Context, userID int64, scope string, now time.Time) (bool, error) {
	const op = "storage.postgres.HasUserScope"

	query := `
        SELECT EXISTS (
            SELECT 1 FROM user_scopes
            WHERE user_id = $1 AND scope = $2
              AND (expires_at IS NULL OR expires_at > $3)
        )`

	var exists bool
	if err := s.q(ctx).QueryRow(ctx, query, userID, scope, now).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return exists, nil
}

// DeleteExpiredScopes удаляет просроченные строки проекции (джанитор).
// Сами гранты остаются и истекают лениво при чтении.
func (s *Storage) DeleteExpiredScopes(ctx context.Context, now time.Time) (int64, error) {
	const op = "storage.postgres.DeleteExpiredScopes"

	query := `
        DELETE FROM user_scopes
        WHERE expires_at IS NOT NULL AND expires_at <= $1`

	tag, err := s.q(ctx).Exec(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return tag.RowsAffected(), nil
}
