package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/Hylozoic/entitlements-service/internal/models"
)

func TestUserScopes_FiltersExpiredRows(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	past := time.Now().UTC().Add(-time.Hour)
	future := time.Now().UTC().Add(time.Hour)

	st.EXPECT().UserScopes(gomock.Any(), int64(7)).Return([]models.UserScope{
		{UserID: 7, Scope: "track:5", ExpiresAt: &future},
		{UserID: 7, Scope: "group:42"},
		{UserID: 7, Scope: "group_role:9", ExpiresAt: &past},
	}, nil)

	got, err := svc.UserScopes(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, []string{"track:5", "group:42"}, got)
}

func TestUserScopes_InvalidUser(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	_, err := svc.UserScopes(context.Background(), 0)
	require.ErrorIs(t, err, ErrMissingUser)
}

func TestHasScope_OK(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	st.EXPECT().HasUserScope(gomock.Any(), int64(7), "track:5", gomock.Any()).
		Return(true, nil)

	has, err := svc.HasScope(context.Background(), 7, "track:5")
	require.NoError(t, err)
	require.True(t, has)
}

// Некорректный токен — отсутствие доступа, не ошибка; хранилище не трогаем.
func TestHasScope_MalformedToken(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	for _, raw := range []string{"", "group:", "group:1:extra", "course:1"} {
		has, err := svc.HasScope(context.Background(), 7, raw)
		require.NoError(t, err)
		require.False(t, has)
	}
}
