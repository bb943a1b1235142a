package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Hylozoic/entitlements-service/internal/models"
	"github.com/Hylozoic/entitlements-service/internal/storage"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// grantColumns — единый список колонок гранта для SELECT/RETURNING.
const grantColumns = `
        id, user_id, granted_by_group_id, group_id, product_id, track_id, role_id,
        access_type, status, expires_at, stripe_session_id, stripe_subscription_id,
        granted_by_id, metadata, created_at, updated_at
`

// targetColumns раскладывает цель гранта в три nullable-колонки схемы.
func targetColumns(t models.Target) (trackID, roleID, groupID *int64) {
	id := t.ID()
	switch t.Kind() {
	case models.TargetTrack:
		trackID = &id
	case models.TargetRole:
		roleID = &id
	case models.TargetGroup:
		groupID = &id
	}

	return trackID, roleID, groupID
}

// rowScanner — общий срез pgx.Row/pgx.Rows для scanGrant.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanGrant читает строку гранта; цель собирается из nullable-колонок с
// приоритетом track > role > group (заполнена должна быть ровно одна,
// это закреплено CHECK-ограничением схемы).
func scanGrant(row rowScanner) (*models.AccessGrant, error) {
	var (
		g                        models.AccessGrant
		groupID, trackID, roleID *int64
	)

	err := row.Scan(
		&g.ID,
		&g.UserID,
		&g.GrantedByGroupID,
		&groupID,
		&g.ProductID,
		&trackID,
		&roleID,
		&g.AccessType,
		&g.Status,
		&g.ExpiresAt,
		&g.StripeSessionID,
		&g.StripeSubscriptionID,
		&g.GrantedByID,
		&g.Metadata,
		&g.CreatedAt,
		&g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	switch {
	case trackID != nil:
		g.Target = models.TrackTarget(*trackID)
	case roleID != nil:
		g.Target = models.RoleTarget(*roleID)
	case groupID != nil:
		g.Target = models.GroupTarget(*groupID)
	}

	return &g, nil
}

// collectGrants вычитывает все строки запроса.
func collectGrants(rows pgx.Rows) ([]models.AccessGrant, error) {
	defer rows.Close()

	var grants []models.AccessGrant
	for rows.Next() {
		g, err := scanGrant(rows)
		if err != nil {
			return nil, err
		}
		grants = append(grants, *g)
	}

	return grants, rows.Err()
}

// SaveGrant сохраняет новый грант и синхронно применяет проекцию user_scopes
// в той же транзакции.
func (s *Storage) SaveGrant(ctx context.Context, grant *models.AccessGrant) (*models.AccessGrant, error) {
	const op = "storage.postgres.SaveGrant"

	query := `
        INSERT INTO access_grants(
            user_id, granted_by_group_id, group_id, product_id, track_id, role_id,
            access_type, status, expires_at, stripe_session_id, stripe_subscription_id,
            granted_by_id, metadata
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
        RETURNING ` + grantColumns

	trackID, roleID, groupID := targetColumns(grant.Target)

	metadata := grant.Metadata
	if metadata == nil {
		metadata = models.Metadata{}
	}

	var saved *models.AccessGrant
	err := s.WithinTx(ctx, func(ctx context.Context) error {
		row := s.q(ctx).QueryRow(ctx, query,
			grant.UserID,
			grant.GrantedByGroupID,
			groupID,
			grant.ProductID,
			trackID,
			roleID,
			grant.AccessType,
			grant.Status,
			grant.ExpiresAt,
			grant.StripeSessionID,
			grant.StripeSubscriptionID,
			grant.GrantedByID,
			metadata,
		)

		g, err := scanGrant(row)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
				return fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
			}
			return fmt.Errorf("%s: %w", op, err)
		}

		if err := s.projectGrant(ctx, g); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		saved = g
		return nil
	})
	if err != nil {
		return nil, err
	}

	return saved, nil
}

// GrantByID находит грант по id.
func (s *Storage) GrantByID(ctx context.Context, id int64) (*models.AccessGrant, error) {
	const op = "storage.postgres.GrantByID"

	query := `SELECT ` + grantColumns + ` FROM access_grants WHERE id = $1`

	g, err := scanGrant(s.q(ctx).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return g, nil
}

// FindGrant находит первый грант по конъюнктивному фильтру: каждое заданное
// опциональное поле добавляет условие. Противоречивая комбинация (например,
// track_id и role_id одновременно) закономерно не находит ничего.
func (s *Storage) FindGrant(ctx context.Context, filter storage.GrantFilter) (*models.AccessGrant, error) {
	const op = "storage.postgres.FindGrant"

	query := `SELECT ` + grantColumns + `
        FROM access_grants
        WHERE user_id = $1 AND granted_by_group_id = $2 AND status = $3`
	args := []any{filter.UserID, filter.GrantedByGroupID, filter.Status}

	appendCond := func(column string, v *int64) {
		if v != nil {
			args = append(args, *v)
			query += " AND " + column + " = $" + strconv.Itoa(len(args))
		}
	}
	appendCond("group_id", filter.GroupID)
	appendCond("product_id", filter.ProductID)
	appendCond("track_id", filter.TrackID)
	appendCond("role_id", filter.RoleID)

	query += " ORDER BY id LIMIT 1"

	g, err := scanGrant(s.q(ctx).QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return g, nil
}

// UpdateGrant перезаписывает изменяемые поля гранта по id и синхронно
// перепроецирует user_scopes. Обновление безусловное: last-write-wins.
func (s *Storage) UpdateGrant(ctx context.Context, grant *models.AccessGrant) (*models.AccessGrant, error) {
	const op = "storage.postgres.UpdateGrant"

	query := `
        UPDATE access_grants
        SET status = $2, expires_at = $3, metadata = $4, updated_at = now()
        WHERE id = $1
        RETURNING ` + grantColumns

	var updated *models.AccessGrant
	err := s.WithinTx(ctx, func(ctx context.Context) error {
		row := s.q(ctx).QueryRow(ctx, query,
			grant.ID,
			grant.Status,
			grant.ExpiresAt,
			grant.Metadata,
		)

		g, err := scanGrant(row)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
			}
			return fmt.Errorf("%s: %w", op, err)
		}

		if err := s.projectGrant(ctx, g); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		updated = g
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// ExpireGrantIfDue переводит грант в expired, если он всё ещё active и срок
// прошёл. Условие в WHERE делает ленивое истечение безопасным при гонке
// конкурентных проверок: статус переведёт ровно один вызов.
// Возвращает:
//
//	(true, nil)  — грант был active с прошедшим сроком и переведён сейчас;
//	(false, nil) — переводить нечего (не найден, не истёк или уже не active).
func (s *Storage) ExpireGrantIfDue(ctx context.Context, id int64, now time.Time) (bool, error) {
	const op = "storage.postgres.ExpireGrantIfDue"

	query := `
        UPDATE access_grants
        SET status = 'expired', updated_at = now()
        WHERE id = $1 AND status = 'active'
          AND expires_at IS NOT NULL AND expires_at <= $2
        RETURNING ` + grantColumns

	flipped := false
	err := s.WithinTx(ctx, func(ctx context.Context) error {
		g, err := scanGrant(s.q(ctx).QueryRow(ctx, query, id, now))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return fmt.Errorf("%s: %w", op, err)
		}

		if err := s.projectGrant(ctx, g); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		flipped = true
		return nil
	})
	if err != nil {
		return false, err
	}

	return flipped, nil
}

// GrantsForUser возвращает active-гранты пользователя в рамках выдавшей
// группы. Срок действия не перепроверяется — это зеркалит ленивую политику
// CheckAccess.
func (s *Storage) GrantsForUser(ctx context.Context, userID, grantedByGroupID int64) ([]models.AccessGrant, error) {
	const op = "storage.postgres.GrantsForUser"

	query := `SELECT ` + grantColumns + `
        FROM access_grants
        WHERE user_id = $1 AND granted_by_group_id = $2 AND status = 'active'
        ORDER BY id`

	rows, err := s.q(ctx).Query(ctx, query, userID, grantedByGroupID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	grants, err := collectGrants(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return grants, nil
}

// GrantsBySession возвращает все гранты одной checkout-сессии, любой статус
// (bundle-покупка создаёт несколько грантов из одной транзакции).
func (s *Storage) GrantsBySession(ctx context.Context, sessionID string) ([]models.AccessGrant, error) {
	const op = "storage.postgres.GrantsBySession"

	query := `SELECT ` + grantColumns + `
        FROM access_grants
        WHERE stripe_session_id = $1
        ORDER BY id`

	rows, err := s.q(ctx).Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	grants, err := collectGrants(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return grants, nil
}

// GrantsBySubscription возвращает все гранты подписки, любой статус —
// для веерного продления/отмены по webhook.
func (s *Storage) GrantsBySubscription(ctx context.Context, subscriptionID string) ([]models.AccessGrant, error) {
	const op = "storage.postgres.GrantsBySubscription"

	query := `SELECT ` + grantColumns + `
        FROM access_grants
        WHERE stripe_subscription_id = $1
        ORDER BY id`

	rows, err := s.q(ctx).Query(ctx, query, subscriptionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	grants, err := collectGrants(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return grants, nil
}

// ActiveSubscriptions возвращает active-гранты пользователя с непустым
// stripe_subscription_id.
func (s *Storage) ActiveSubscriptions(ctx context.Context, userID int64) ([]models.AccessGrant, error) {
	const op = "storage.postgres.ActiveSubscriptions"

	query := `SELECT ` + grantColumns + `
        FROM access_grants
        WHERE user_id = $1 AND status = 'active' AND stripe_subscription_id IS NOT NULL
        ORDER BY id`

	rows, err := s.q(ctx).Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	grants, err := collectGrants(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return grants, nil
}
