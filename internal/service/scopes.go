package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Hylozoic/entitlements-service/internal/pkg/log"
	"github.com/Hylozoic/entitlements-service/internal/scopes"
)

// UserScopes возвращает действующие scope-токены пользователя из проекции
// user_scopes. При сконфигурированном кэше набор читается и кладётся в
// Redis; любые ошибки кэша деградируют до похода в БД.
func (s *Service) UserScopes(ctx context.Context, userID int64) ([]string, error) {
	const op = "service.scopes.UserScopes"

	if userID <= 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrMissingUser)
	}

	if s.scache != nil {
		cached, ok, err := s.scache.Get(ctx, userID)
		if err != nil {
			log.From(ctx).Warn("scope cache read failed", "user_id", userID, "err", err)
		} else if ok {
			return cached, nil
		}
	}

	rows, err := s.storage.UserScopes(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now().UTC()

	tokens := make([]string, 0, len(rows))
	for _, row := range rows {
		if row.ExpiresAt != nil && row.ExpiresAt.Before(now) {
			continue
		}
		tokens = append(tokens, row.Scope)
	}

	if s.scache != nil {
		if err := s.scache.Set(ctx, userID, tokens, s.cfg.ScopeCacheTTL); err != nil {
			log.From(ctx).Warn("scope cache write failed", "user_id", userID, "err", err)
		}
	}

	return tokens, nil
}

// HasScope проверяет наличие действующего scope-токена у пользователя.
// Некорректный токен трактуется как отсутствие доступа, а не как ошибка:
// разбор токенов тотален.
func (s *Service) HasScope(ctx context.Context, userID int64, scope string) (bool, error) {
	const op = "service.scopes.HasScope"

	if userID <= 0 {
		return false, fmt.Errorf("%s: %w", op, ErrMissingUser)
	}

	if !scopes.IsValidScope(scope) {
		return false, nil
	}

	if s.scache != nil {
		cached, ok, err := s.scache.Get(ctx, userID)
		if err != nil {
			log.From(ctx).Warn("scope cache read failed", "user_id", userID, "err", err)
		} else if ok {
			for _, c := range cached {
				if c == scope {
					return true, nil
				}
			}

			return false, nil
		}
	}

	has, err := s.storage.HasUserScope(ctx, userID, scope, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return has, nil
}
