package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/Hylozoic/entitlements-service/internal/models"
)

// Продление подписки растягивается на все её гранты (бандл).
func TestRenewSubscription_FanOut(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()
	allowTx(st)

	sub := "sub_1"
	past := time.Now().UTC().Add(-time.Hour)
	grants := []models.AccessGrant{
		{ID: 1, UserID: 7, StripeSubscriptionID: &sub, Status: models.StatusExpired, ExpiresAt: &past},
		{ID: 2, UserID: 7, StripeSubscriptionID: &sub, Status: models.StatusActive, ExpiresAt: &past},
	}

	newExpiry := time.Now().UTC().Add(30 * 24 * time.Hour)

	st.EXPECT().GrantsBySubscription(gomock.Any(), "sub_1").Return(grants, nil)
	for _, g := range grants {
		g := g
		st.EXPECT().GrantByID(gomock.Any(), g.ID).Return(&g, nil)
	}
	st.EXPECT().UpdateGrant(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, g *models.AccessGrant) (*models.AccessGrant, error) {
			require.Equal(t, models.StatusActive, g.Status)
			require.Equal(t, newExpiry, *g.ExpiresAt)
			require.NotEmpty(t, g.Metadata["last_renewed_at"])
			require.Equal(t, "in_1", g.Metadata["invoice"])
			return g, nil
		},
	).Times(2)

	renewed, err := svc.RenewSubscription(context.Background(), "sub_1", newExpiry,
		models.Metadata{"invoice": "in_1"})
	require.NoError(t, err)
	require.Equal(t, 2, renewed)
}

func TestRenewSubscription_EmptyID(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	_, err := svc.RenewSubscription(context.Background(), "", time.Now().UTC(), nil)
	require.ErrorIs(t, err, ErrMissingSubscription)
}

func TestRenewSubscription_NoGrants(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()
	allowTx(st)

	st.EXPECT().GrantsBySubscription(gomock.Any(), "sub_unknown").
		Return([]models.AccessGrant{}, nil)

	renewed, err := svc.RenewSubscription(context.Background(), "sub_unknown",
		time.Now().UTC().Add(time.Hour), nil)
	require.NoError(t, err)
	require.Zero(t, renewed)
}

// Отмена закрывает гранты статусом expired: доступ действует до конца
// оплаченного периода, это не отзыв.
func TestCancelSubscription_FanOut(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()
	allowTx(st)

	sub := "sub_1"
	grants := []models.AccessGrant{
		{ID: 1, UserID: 7, StripeSubscriptionID: &sub, Status: models.StatusActive},
		{ID: 2, UserID: 8, StripeSubscriptionID: &sub, Status: models.StatusActive},
	}

	st.EXPECT().GrantsBySubscription(gomock.Any(), "sub_1").Return(grants, nil)
	st.EXPECT().UpdateGrant(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, g *models.AccessGrant) (*models.AccessGrant, error) {
			require.Equal(t, models.StatusExpired, g.Status)
			require.NotEmpty(t, g.Metadata["subscription_canceled_at"])
			require.Equal(t, "payment failed", g.Metadata["subscription_cancel_reason"])
			return g, nil
		},
	).Times(2)

	canceled, err := svc.CancelSubscription(context.Background(), "sub_1", "payment failed")
	require.NoError(t, err)
	require.Equal(t, 2, canceled)
}

func TestCancelSubscription_DefaultReason(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()
	allowTx(st)

	sub := "sub_1"
	st.EXPECT().GrantsBySubscription(gomock.Any(), "sub_1").
		Return([]models.AccessGrant{{ID: 1, UserID: 7, StripeSubscriptionID: &sub, Status: models.StatusActive}}, nil)
	st.EXPECT().UpdateGrant(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, g *models.AccessGrant) (*models.AccessGrant, error) {
			require.Equal(t, "Subscription ended", g.Metadata["subscription_cancel_reason"])
			return g, nil
		},
	)

	_, err := svc.CancelSubscription(context.Background(), "sub_1", "")
	require.NoError(t, err)
}
