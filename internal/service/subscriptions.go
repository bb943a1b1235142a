package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Hylozoic/entitlements-service/internal/models"
	"github.com/Hylozoic/entitlements-service/internal/pkg/log"
)

// RenewSubscription продлевает все гранты подписки до newExpiresAt
// (обработчик события invoice.paid). Дополнительные метаданные (границы
// оплаченного периода и т.п.) сливаются в каждый грант. Возвращает число
// продлённых грантов; фан-аут атомарен.
func (s *Service) RenewSubscription(ctx context.Context, subscriptionID string, newExpiresAt time.Time, extra models.Metadata) (int, error) {
	const op = "service.subscriptions.RenewSubscription"

	if subscriptionID == "" {
		return 0, fmt.Errorf("%s: %w", op, ErrMissingSubscription)
	}

	var renewed int

	err := s.storage.WithinTx(ctx, func(ctx context.Context) error {
		grants, err := s.storage.GrantsBySubscription(ctx, subscriptionID)
		if err != nil {
			return err
		}

		for _, grant := range grants {
			if _, err := s.ExtendAccess(ctx, grant.ID, newExpiresAt, extra); err != nil {
				return err
			}
			renewed++
		}

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("subscription renewed",
		"subscription_id", subscriptionID, "grants", renewed)

	return renewed, nil
}

// CancelSubscription переводит все гранты подписки в expired
// (обработчик события customer.subscription.deleted). Доступ считается
// действующим до конца оплаченного периода, поэтому статус expired, а не
// revoked. Возвращает число закрытых грантов; фан-аут атомарен.
func (s *Service) CancelSubscription(ctx context.Context, subscriptionID, reason string) (int, error) {
	const op = "service.subscriptions.CancelSubscription"

	if subscriptionID == "" {
		return 0, fmt.Errorf("%s: %w", op, ErrMissingSubscription)
	}

	if reason == "" {
		reason = "Subscription ended"
	}

	var (
		canceled int
		users    = make(map[int64]struct{})
	)

	err := s.storage.WithinTx(ctx, func(ctx context.Context) error {
		grants, err := s.storage.GrantsBySubscription(ctx, subscriptionID)
		if err != nil {
			return err
		}

		now := time.Now().UTC().Format(time.RFC3339)

		for i := range grants {
			grant := &grants[i]

			if grant.Metadata == nil {
				grant.Metadata = models.Metadata{}
			}
			grant.Metadata["subscription_canceled_at"] = now
			grant.Metadata["subscription_cancel_reason"] = reason
			grant.Status = models.StatusExpired

			if _, err := s.storage.UpdateGrant(ctx, grant); err != nil {
				return err
			}

			users[grant.UserID] = struct{}{}
			canceled++
		}

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	for userID := range users {
		s.invalidateScopes(ctx, userID)
	}

	log.From(ctx).Info("subscription canceled",
		"subscription_id", subscriptionID, "grants", canceled)

	return canceled, nil
}
