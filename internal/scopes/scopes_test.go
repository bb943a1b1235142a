package scopes

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateScope_OK(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		typ  Type
		id   int64
		want string
	}{
		{"group", TypeGroup, 42, "group:42"},
		{"track", TypeTrack, 7, "track:7"},
		{"group_role", TypeGroupRole, 1001, "group_role:1001"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := CreateScope(tc.typ, tc.id)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestCreateScope_InvalidType(t *testing.T) {
	t.Parallel()

	_, err := CreateScope("course", 42)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrInvalidScopeType)
}

func TestCreateScope_MissingEntityID(t *testing.T) {
	t.Parallel()

	_, err := CreateScope(TypeGroup, 0)
	require.ErrorIs(t, err, ErrMissingEntityID)

	_, err = CreateScope(TypeTrack, -5)
	require.ErrorIs(t, err, ErrMissingEntityID)
}

func TestCreateScope_Wrappers(t *testing.T) {
	t.Parallel()

	g, err := CreateGroupScope(1)
	require.NoError(t, err)
	require.Equal(t, "group:1", g)

	tr, err := CreateTrackScope(2)
	require.NoError(t, err)
	require.Equal(t, "track:2", tr)

	r, err := CreateGroupRoleScope(3)
	require.NoError(t, err)
	require.Equal(t, "group_role:3", r)
}

func TestParseScope_OK(t *testing.T) {
	t.Parallel()

	parsed := ParseScope("group_role:1001")
	require.NotNil(t, parsed)
	require.Equal(t, TypeGroupRole, parsed.Type)
	require.Equal(t, "1001", parsed.EntityID)
	require.Equal(t, "group_role:1001", parsed.String())
}

// Разбор тотален: любой некорректный вход даёт nil, не ошибку и не панику.
func TestParseScope_MalformedInput(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"no_separator", "group"},
		{"empty_entity_id", "group:"},
		{"extra_segment", "group:123:extra"},
		{"unknown_type", "invalid:123"},
		{"empty_type", ":123"},
		{"only_separator", ":"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			require.Nil(t, ParseScope(tc.raw))
			require.False(t, IsValidScope(tc.raw))
		})
	}
}

// Круговой инвариант: Create -> Parse восстанавливает тип и идентификатор.
func TestParseScope_RoundTrip(t *testing.T) {
	t.Parallel()

	for _, typ := range []Type{TypeGroup, TypeTrack, TypeGroupRole} {
		raw, err := CreateScope(typ, 42)
		require.NoError(t, err)

		parsed := ParseScope(raw)
		require.NotNil(t, parsed)
		require.Equal(t, typ, parsed.Type)
		require.Equal(t, "42", parsed.EntityID)
		require.Equal(t, raw, parsed.String())
	}
}

func TestIsScopeOfType(t *testing.T) {
	t.Parallel()

	require.True(t, IsScopeOfType("track:7", TypeTrack))
	require.False(t, IsScopeOfType("track:7", TypeGroup))
	require.False(t, IsScopeOfType("not-a-scope", TypeGroup))
}

func TestEntityIDFromScope(t *testing.T) {
	t.Parallel()

	id, ok := EntityIDFromScope("group:42")
	require.True(t, ok)
	require.Equal(t, "42", id)

	_, ok = EntityIDFromScope("group:")
	require.False(t, ok)
}

func TestFromContentAccess_OrderAndNoDedup(t *testing.T) {
	t.Parallel()

	got, err := FromContentAccess(ContentAccess{
		TrackIDs: []int64{5, 5},
		GroupIDs: []int64{1},
		RoleIDs:  []int64{9},
	})
	require.NoError(t, err)
	// Порядок фиксирован: треки, группы, роли; дубликаты сохраняются.
	require.Equal(t, []string{"track:5", "track:5", "group:1", "group_role:9"}, got)
}

func TestFromContentAccess_Empty(t *testing.T) {
	t.Parallel()

	got, err := FromContentAccess(ContentAccess{})
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestFromContentAccess_InvalidID(t *testing.T) {
	t.Parallel()

	_, err := FromContentAccess(ContentAccess{GroupIDs: []int64{0}})
	require.ErrorIs(t, err, ErrMissingEntityID)
}

func TestContentAccess_UnmarshalLenient(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		data string
		want ContentAccess
	}{
		{
			"full",
			`{"trackIds":[1,2],"groupIds":[3],"roleIds":[4]}`,
			ContentAccess{TrackIDs: []int64{1, 2}, GroupIDs: []int64{3}, RoleIDs: []int64{4}},
		},
		{
			"partial",
			`{"trackIds":[1]}`,
			ContentAccess{TrackIDs: []int64{1}},
		},
		{
			// Поле с неожиданным типом трактуется как отсутствующее.
			"mistyped_field",
			`{"trackIds":"oops","groupIds":[3]}`,
			ContentAccess{GroupIDs: []int64{3}},
		},
		{
			"null",
			`null`,
			ContentAccess{},
		},
		{
			"non_object",
			`"group:1"`,
			ContentAccess{},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var ca ContentAccess
			require.NoError(t, json.Unmarshal([]byte(tc.data), &ca))
			require.Equal(t, tc.want, ca)
		})
	}
}
