package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Hylozoic/entitlements-service/internal/models"
	"github.com/Hylozoic/entitlements-service/internal/pkg/log"
	"github.com/Hylozoic/entitlements-service/internal/storage"
)

// GrantAccessParams — параметры административной выдачи доступа.
type GrantAccessParams struct {
	UserID           int64
	GrantedByGroupID int64
	Target           models.Target
	GrantedByID      *int64
	ProductID        *int64
	ExpiresAt        *time.Time
	Reason           string
}

// RecordPurchaseParams — параметры фиксации оплаченной покупки
// (вызывается billing-обработчиком после подтверждения платежа).
type RecordPurchaseParams struct {
	UserID               int64
	GrantedByGroupID     int64
	Target               models.Target
	ProductID            *int64
	StripeSessionID      string
	StripeSubscriptionID *string
	ExpiresAt            *time.Time
	Metadata             models.Metadata
}

// AccessQuery — конъюнктивный запрос проверки доступа: каждое заданное
// поле сужает поиск гранта.
type AccessQuery struct {
	UserID           int64
	GrantedByGroupID int64
	GroupID          *int64
	ProductID        *int64
	TrackID          *int64
	RoleID           *int64
}

// Create сохраняет грант с минимальной нормализацией: пустой статус
// становится active, nil-metadata — пустым словарём. Ответственность за
// согласованность полей несёт вызывающая сторона (GrantAccess/RecordPurchase).
func (s *Service) Create(ctx context.Context, grant *models.AccessGrant) (*models.AccessGrant, error) {
	const op = "service.grants.Create"

	if grant.Status == "" {
		grant.Status = models.StatusActive
	}
	if grant.Metadata == nil {
		grant.Metadata = models.Metadata{}
	}

	saved, err := s.storage.SaveGrant(ctx, grant)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.invalidateScopes(ctx, saved.UserID)

	return saved, nil
}

// GrantAccess выдаёт бесплатный административный грант на ровно одну цель.
func (s *Service) GrantAccess(ctx context.Context, params GrantAccessParams) (*models.AccessGrant, error) {
	const op = "service.grants.GrantAccess"

	if params.UserID <= 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrMissingUser)
	}
	if params.GrantedByGroupID <= 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrMissingGroup)
	}
	if params.Target.IsZero() {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidTarget)
	}

	meta := models.Metadata{}
	if params.Reason != "" {
		meta["reason"] = params.Reason
	}

	grant := &models.AccessGrant{
		UserID:           params.UserID,
		GrantedByGroupID: params.GrantedByGroupID,
		Target:           params.Target,
		ProductID:        params.ProductID,
		AccessType:       models.TypeAdminGrant,
		Status:           models.StatusActive,
		ExpiresAt:        params.ExpiresAt,
		GrantedByID:      params.GrantedByID,
		Metadata:         meta,
	}

	return s.Create(ctx, grant)
}

// RecordPurchase фиксирует оплаченную покупку как грант stripe_purchase.
// Привязка к checkout-сессии обязательна: по ней восстанавливаются все
// гранты одной покупки (в том числе бандла — несколько грантов на сессию).
func (s *Service) RecordPurchase(ctx context.Context, params RecordPurchaseParams) (*models.AccessGrant, error) {
	const op = "service.grants.RecordPurchase"

	if params.UserID <= 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrMissingUser)
	}
	if params.GrantedByGroupID <= 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrMissingGroup)
	}
	if params.Target.IsZero() {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidTarget)
	}
	if params.StripeSessionID == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrMissingSession)
	}

	meta := params.Metadata
	if meta == nil {
		meta = models.Metadata{}
	}

	grant := &models.AccessGrant{
		UserID:               params.UserID,
		GrantedByGroupID:     params.GrantedByGroupID,
		Target:               params.Target,
		ProductID:            params.ProductID,
		AccessType:           models.TypeStripePurchase,
		Status:               models.StatusActive,
		ExpiresAt:            params.ExpiresAt,
		StripeSessionID:      &params.StripeSessionID,
		StripeSubscriptionID: params.StripeSubscriptionID,
		Metadata:             meta,
	}

	return s.Create(ctx, grant)
}

// Revoke переводит грант в revoked и дописывает в metadata отметки аудита.
// Операция идемпотентна: повторный отзыв перезапишет отметки, статус
// останется revoked.
func (s *Service) Revoke(ctx context.Context, grantID, revokedByID int64, reason string) (*models.AccessGrant, error) {
	const op = "service.grants.Revoke"

	var revoked *models.AccessGrant

	err := s.storage.WithinTx(ctx, func(ctx context.Context) error {
		grant, err := s.storage.GrantByID(ctx, grantID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return ErrGrantNotFound
			}

			return err
		}

		if grant.Metadata == nil {
			grant.Metadata = models.Metadata{}
		}
		grant.Metadata["revokedAt"] = time.Now().UTC().Format(time.RFC3339)
		grant.Metadata["revokedBy"] = revokedByID
		if reason != "" {
			grant.Metadata["revokeReason"] = reason
		}
		grant.Status = models.StatusRevoked

		revoked, err = s.storage.UpdateGrant(ctx, grant)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.invalidateScopes(ctx, revoked.UserID)

	return revoked, nil
}

// CheckAccess ищет действующий грант по конъюнктивному запросу.
// Отсутствие доступа — не ошибка: возвращается (nil, nil).
//
// Если найденный грант числится active, но срок прошёл, он лениво
// переводится в expired прямо здесь (условным UPDATE, устойчивым к гонке
// конкурентных проверок) и считается отсутствующим.
func (s *Service) CheckAccess(ctx context.Context, query AccessQuery) (*models.AccessGrant, error) {
	const op = "service.grants.CheckAccess"

	grant, err := s.storage.FindGrant(ctx, storage.GrantFilter{
		UserID:           query.UserID,
		GrantedByGroupID: query.GrantedByGroupID,
		Status:           models.StatusActive,
		GroupID:          query.GroupID,
		ProductID:        query.ProductID,
		TrackID:          query.TrackID,
		RoleID:           query.RoleID,
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now().UTC()
	if !grant.IsExpired(now) {
		return grant, nil
	}

	flipped, err := s.storage.ExpireGrantIfDue(ctx, grant.ID, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if flipped {
		s.invalidateScopes(ctx, grant.UserID)
	}

	return nil, nil
}

// ForUser возвращает active-гранты пользователя в рамках выдавшей группы.
func (s *Service) ForUser(ctx context.Context, userID, grantedByGroupID int64) ([]models.AccessGrant, error) {
	const op = "service.grants.ForUser"

	grants, err := s.storage.GrantsForUser(ctx, userID, grantedByGroupID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return grants, nil
}

// ForStripeSession возвращает все гранты checkout-сессии независимо от
// статуса (покупка бандла создаёт несколько грантов на одну сессию).
func (s *Service) ForStripeSession(ctx context.Context, sessionID string) ([]models.AccessGrant, error) {
	const op = "service.grants.ForStripeSession"

	if sessionID == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrMissingSession)
	}

	grants, err := s.storage.GrantsBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return grants, nil
}

// ExtendAccess продлевает грант до newExpiresAt и возвращает ему статус
// active (в том числе если грант уже был лениво помечен expired).
// Дополнительные метаданные сливаются поверх существующих, отметка
// last_renewed_at проставляется всегда.
func (s *Service) ExtendAccess(ctx context.Context, grantID int64, newExpiresAt time.Time, extra models.Metadata) (*models.AccessGrant, error) {
	const op = "service.grants.ExtendAccess"

	var extended *models.AccessGrant

	err := s.storage.WithinTx(ctx, func(ctx context.Context) error {
		grant, err := s.storage.GrantByID(ctx, grantID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return ErrGrantNotFound
			}

			return err
		}

		if grant.Metadata == nil {
			grant.Metadata = models.Metadata{}
		}
		for k, v := range extra {
			grant.Metadata[k] = v
		}
		grant.Metadata["last_renewed_at"] = time.Now().UTC().Format(time.RFC3339)

		grant.ExpiresAt = &newExpiresAt
		grant.Status = models.StatusActive

		extended, err = s.storage.UpdateGrant(ctx, grant)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.invalidateScopes(ctx, extended.UserID)

	return extended, nil
}

// FindBySubscriptionID возвращает все гранты stripe-подписки независимо
// от статуса.
func (s *Service) FindBySubscriptionID(ctx context.Context, subscriptionID string) ([]models.AccessGrant, error) {
	const op = "service.grants.FindBySubscriptionID"

	if subscriptionID == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrMissingSubscription)
	}

	grants, err := s.storage.GrantsBySubscription(ctx, subscriptionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return grants, nil
}

// ActiveSubscriptions возвращает active-гранты пользователя, привязанные
// к stripe-подпискам.
func (s *Service) ActiveSubscriptions(ctx context.Context, userID int64) ([]models.AccessGrant, error) {
	const op = "service.grants.ActiveSubscriptions"

	grants, err := s.storage.ActiveSubscriptions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return grants, nil
}

// invalidateScopes сбрасывает кэш scope-токенов пользователя после мутации
// грантов. Ошибка кэша не должна ломать мутацию: логируем и продолжаем.
func (s *Service) invalidateScopes(ctx context.Context, userID int64) {
	if s.scache == nil {
		return
	}

	if err := s.scache.Invalidate(ctx, userID); err != nil {
		log.From(ctx).Warn("failed to invalidate scope cache",
			"user_id", userID, "err", err)
	}
}
