package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTarget_Constructors(t *testing.T) {
	t.Parallel()

	tr := TrackTarget(7)
	require.Equal(t, TargetTrack, tr.Kind())
	require.Equal(t, int64(7), tr.ID())
	require.False(t, tr.IsZero())

	var zero Target
	require.True(t, zero.IsZero())
}

func TestTarget_Scope(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		target Target
		want   string
	}{
		{"track", TrackTarget(7), "track:7"},
		{"role", RoleTarget(1001), "group_role:1001"},
		{"group", GroupTarget(42), "group:42"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := tc.target.Scope()
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}

	var zero Target
	_, err := zero.Scope()
	require.Error(t, err)
}

func TestAccessGrant_IsExpired(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	// Без expires_at грант бессрочный.
	g := AccessGrant{Status: StatusActive}
	require.False(t, g.IsExpired(now))
	require.True(t, g.IsActive(now))

	g.ExpiresAt = &future
	require.False(t, g.IsExpired(now))
	require.True(t, g.IsActive(now))

	g.ExpiresAt = &past
	require.True(t, g.IsExpired(now))
	require.False(t, g.IsActive(now))
}

func TestAccessGrant_IsActive_Status(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()

	for _, status := range []Status{StatusExpired, StatusRevoked} {
		g := AccessGrant{Status: status}
		require.False(t, g.IsActive(now))
	}
}

func TestAccessGrant_IsSubscription(t *testing.T) {
	t.Parallel()

	g := AccessGrant{}
	require.False(t, g.IsSubscription())

	empty := ""
	g.StripeSubscriptionID = &empty
	require.False(t, g.IsSubscription())

	sub := "sub_123"
	g.StripeSubscriptionID = &sub
	require.True(t, g.IsSubscription())
}
