package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Hylozoic/entitlements-service/internal/models"
	"github.com/Hylozoic/entitlements-service/internal/storage"
)

// Файл интеграционных тестов для пакета postgres:
// - поднимает реальный PostgreSQL через testcontainers-go (образ postgres:16-alpine);
// - применяет goose-миграции из встроенной ФС через Storage.Migrate;
// - проверяет жизненный цикл грантов (сохранение, конъюнктивный поиск,
//   ленивое протухание, отзыв) и синхронную проекцию user_scopes.
//
// Запуск локально:
//   GO_TEST_INTEGRATION=1 go test ./internal/storage/postgres -v -race -count=1

// startPostgres — поднимает временный экземпляр PostgreSQL через testcontainers-go,
// применяет миграции и возвращает инициализированное хранилище и функцию очистки.
// Если переменная окружения GO_TEST_INTEGRATION не установлена — тест пропускается.
func startPostgres(t *testing.T) (*Storage, func()) {
	t.Helper()
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("integration tests are disabled (set GO_TEST_INTEGRATION=1)")
	}

	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		Env:          map[string]string{"POSTGRES_USER": "user", "POSTGRES_PASSWORD": "pass", "POSTGRES_DB": "db"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	require.NoError(t, err)

	host, _ := c.Host(ctx)
	port, _ := c.MappedPort(ctx, "5432/tcp")
	dsn := fmt.Sprintf("postgres://user:pass@%s:%s/db?sslmode=disable", host, port.Port())

	st, err := New(ctx, dsn)
	require.NoError(t, err)

	require.NoError(t, st.Migrate(ctx))

	cleanup := func() {
		st.Close()
		_ = c.Terminate(context.Background())
	}
	return st, cleanup
}

// newTrackGrant — заготовка гранта на трек для тестов.
func newTrackGrant(userID, trackID int64) *models.AccessGrant {
	return &models.AccessGrant{
		UserID:           userID,
		GrantedByGroupID: 42,
		Target:           models.TrackTarget(trackID),
		AccessType:       models.TypeAdminGrant,
		Status:           models.StatusActive,
		Metadata:         models.Metadata{},
	}
}

// TestIntegration_SaveGrant_And_GrantByID_OK — happy-path: сохранение гранта,
// чтение по id, round-trip цели/метаданных и появление строки проекции.
func TestIntegration_SaveGrant_And_GrantByID_OK(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	ctx := context.Background()

	g := newTrackGrant(7, 5)
	g.Metadata = models.Metadata{"reason": "scholarship"}

	saved, err := st.SaveGrant(ctx, g)
	require.NoError(t, err)
	require.NotZero(t, saved.ID)
	require.False(t, saved.CreatedAt.IsZero())

	got, err := st.GrantByID(ctx, saved.ID)
	require.NoError(t, err)
	require.Equal(t, int64(7), got.UserID)
	require.Equal(t, int64(42), got.GrantedByGroupID)
	require.Equal(t, models.TargetTrack, got.Target.Kind())
	require.Equal(t, int64(5), got.Target.ID())
	require.Equal(t, models.TypeAdminGrant, got.AccessType)
	require.Equal(t, models.StatusActive, got.Status)
	require.Equal(t, "scholarship", got.Metadata["reason"])

	// Проекция применяется синхронно, в той же транзакции.
	rows, err := st.UserScopes(ctx, 7)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "track:5", rows[0].Scope)
	require.Nil(t, rows[0].ExpiresAt)
}

// TestIntegration_FindGrant_ConjunctiveFilter — каждое заданное поле фильтра
// сужает поиск; несуществующая комбинация даёт ErrNotFound.
func TestIntegration_FindGrant_ConjunctiveFilter(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	ctx := context.Background()

	_, err := st.SaveGrant(ctx, newTrackGrant(7, 5))
	require.NoError(t, err)

	roleGrant := newTrackGrant(7, 5)
	roleGrant.Target = models.RoleTarget(1001)
	_, err = st.SaveGrant(ctx, roleGrant)
	require.NoError(t, err)

	trackID := int64(5)
	got, err := st.FindGrant(ctx, storage.GrantFilter{
		UserID:           7,
		GrantedByGroupID: 42,
		Status:           models.StatusActive,
		TrackID:          &trackID,
	})
	require.NoError(t, err)
	require.Equal(t, models.TargetTrack, got.Target.Kind())

	roleID := int64(1001)
	got, err = st.FindGrant(ctx, storage.GrantFilter{
		UserID:           7,
		GrantedByGroupID: 42,
		Status:           models.StatusActive,
		RoleID:           &roleID,
	})
	require.NoError(t, err)
	require.Equal(t, models.TargetRole, got.Target.Kind())

	otherTrack := int64(6)
	_, err = st.FindGrant(ctx, storage.GrantFilter{
		UserID:           7,
		GrantedByGroupID: 42,
		Status:           models.StatusActive,
		TrackID:          &otherTrack,
	})
	require.ErrorIs(t, err, storage.ErrNotFound)
}

// TestIntegration_UpdateGrant_Revoke_ClearsScope — отзыв гранта убирает
// строку проекции пользователя.
func TestIntegration_UpdateGrant_Revoke_ClearsScope(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	ctx := context.Background()

	saved, err := st.SaveGrant(ctx, newTrackGrant(7, 5))
	require.NoError(t, err)

	saved.Status = models.StatusRevoked
	saved.Metadata["revokedBy"] = int64(99)
	updated, err := st.UpdateGrant(ctx, saved)
	require.NoError(t, err)
	require.Equal(t, models.StatusRevoked, updated.Status)

	rows, err := st.UserScopes(ctx, 7)
	require.NoError(t, err)
	require.Empty(t, rows)
}

// TestIntegration_ScopeRecompute_SurvivingGrant — два гранта на один scope:
// отзыв одного сохраняет строку проекции за счёт второго.
func TestIntegration_ScopeRecompute_SurvivingGrant(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	ctx := context.Background()

	first, err := st.SaveGrant(ctx, newTrackGrant(7, 5))
	require.NoError(t, err)

	second := newTrackGrant(7, 5)
	second.AccessType = models.TypeStripePurchase
	sess := "cs_test_1"
	second.StripeSessionID = &sess
	_, err = st.SaveGrant(ctx, second)
	require.NoError(t, err)

	first.Status = models.StatusRevoked
	_, err = st.UpdateGrant(ctx, first)
	require.NoError(t, err)

	has, err := st.HasUserScope(ctx, 7, "track:5", time.Now().UTC())
	require.NoError(t, err)
	require.True(t, has)
}

// TestIntegration_ExpireGrantIfDue — условный перевод в expired: первый вызов
// возвращает true, повторный — false; проекция очищается.
func TestIntegration_ExpireGrantIfDue(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	ctx := context.Background()

	past := time.Now().UTC().Add(-time.Hour)
	g := newTrackGrant(7, 5)
	g.ExpiresAt = &past
	saved, err := st.SaveGrant(ctx, g)
	require.NoError(t, err)

	now := time.Now().UTC()

	flipped, err := st.ExpireGrantIfDue(ctx, saved.ID, now)
	require.NoError(t, err)
	require.True(t, flipped)

	flipped, err = st.ExpireGrantIfDue(ctx, saved.ID, now)
	require.NoError(t, err)
	require.False(t, flipped)

	got, err := st.GrantByID(ctx, saved.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusExpired, got.Status)

	has, err := st.HasUserScope(ctx, 7, "track:5", now)
	require.NoError(t, err)
	require.False(t, has)
}

// TestIntegration_ExpireGrantIfDue_FutureExpiry_NoFlip — грант с будущим
// сроком не трогаем.
func TestIntegration_ExpireGrantIfDue_FutureExpiry_NoFlip(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	ctx := context.Background()

	future := time.Now().UTC().Add(time.Hour)
	g := newTrackGrant(7, 5)
	g.ExpiresAt = &future
	saved, err := st.SaveGrant(ctx, g)
	require.NoError(t, err)

	flipped, err := st.ExpireGrantIfDue(ctx, saved.ID, time.Now().UTC())
	require.NoError(t, err)
	require.False(t, flipped)

	got, err := st.GrantByID(ctx, saved.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusActive, got.Status)
}

// TestIntegration_GrantsBySession_Bundle — бандл: несколько грантов одной
// checkout-сессии, возвращаются все независимо от статуса.
func TestIntegration_GrantsBySession_Bundle(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	ctx := context.Background()
	sess := "cs_test_bundle"

	for _, trackID := range []int64{5, 6} {
		g := newTrackGrant(7, trackID)
		g.AccessType = models.TypeStripePurchase
		g.StripeSessionID = &sess
		_, err := st.SaveGrant(ctx, g)
		require.NoError(t, err)
	}

	revoked := newTrackGrant(7, 8)
	revoked.AccessType = models.TypeStripePurchase
	revoked.StripeSessionID = &sess
	saved, err := st.SaveGrant(ctx, revoked)
	require.NoError(t, err)
	saved.Status = models.StatusRevoked
	_, err = st.UpdateGrant(ctx, saved)
	require.NoError(t, err)

	grants, err := st.GrantsBySession(ctx, sess)
	require.NoError(t, err)
	require.Len(t, grants, 3)
}

// TestIntegration_Subscriptions — выборки по stripe_subscription_id и
// активным подпискам пользователя.
func TestIntegration_Subscriptions(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	ctx := context.Background()
	sub := "sub_1"

	g := newTrackGrant(7, 5)
	g.AccessType = models.TypeStripePurchase
	g.StripeSubscriptionID = &sub
	_, err := st.SaveGrant(ctx, g)
	require.NoError(t, err)

	// Админский грант без подписки не попадает в выборку подписок.
	_, err = st.SaveGrant(ctx, newTrackGrant(7, 6))
	require.NoError(t, err)

	bySub, err := st.GrantsBySubscription(ctx, sub)
	require.NoError(t, err)
	require.Len(t, bySub, 1)
	require.True(t, bySub[0].IsSubscription())

	active, err := st.ActiveSubscriptions(ctx, 7)
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, sub, *active[0].StripeSubscriptionID)
}

// TestIntegration_GrantsForUser_ActiveOnly — выборка пользователя отдаёт
// только active-гранты его группы.
func TestIntegration_GrantsForUser_ActiveOnly(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	ctx := context.Background()

	_, err := st.SaveGrant(ctx, newTrackGrant(7, 5))
	require.NoError(t, err)

	other, err := st.SaveGrant(ctx, newTrackGrant(7, 6))
	require.NoError(t, err)
	other.Status = models.StatusRevoked
	_, err = st.UpdateGrant(ctx, other)
	require.NoError(t, err)

	foreign := newTrackGrant(8, 5)
	_, err = st.SaveGrant(ctx, foreign)
	require.NoError(t, err)

	grants, err := st.GrantsForUser(ctx, 7, 42)
	require.NoError(t, err)
	require.Len(t, grants, 1)
	require.Equal(t, int64(5), grants[0].Target.ID())
}

// TestIntegration_WithinTx_RollbackOnError — ошибка внутри fn откатывает
// и грант, и строку проекции.
func TestIntegration_WithinTx_RollbackOnError(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	ctx := context.Background()
	boom := fmt.Errorf("boom")

	err := st.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := st.SaveGrant(ctx, newTrackGrant(7, 5)); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	rows, err := st.UserScopes(ctx, 7)
	require.NoError(t, err)
	require.Empty(t, rows)
}

// TestIntegration_HasUserScope_Expiry — срок строки проекции учитывается
// при проверке.
func TestIntegration_HasUserScope_Expiry(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	ctx := context.Background()

	future := time.Now().UTC().Add(time.Hour)
	g := newTrackGrant(7, 5)
	g.ExpiresAt = &future
	_, err := st.SaveGrant(ctx, g)
	require.NoError(t, err)

	has, err := st.HasUserScope(ctx, 7, "track:5", time.Now().UTC())
	require.NoError(t, err)
	require.True(t, has)

	// После срока — строка больше не действует.
	has, err = st.HasUserScope(ctx, 7, "track:5", future.Add(time.Minute))
	require.NoError(t, err)
	require.False(t, has)
}

// TestIntegration_DeleteExpiredScopes — janitor удаляет просроченные строки
// проекции и не трогает действующие.
func TestIntegration_DeleteExpiredScopes(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	ctx := context.Background()

	past := time.Now().UTC().Add(-time.Hour)
	expired := newTrackGrant(7, 5)
	expired.ExpiresAt = &past
	_, err := st.SaveGrant(ctx, expired)
	require.NoError(t, err)

	_, err = st.SaveGrant(ctx, newTrackGrant(7, 6))
	require.NoError(t, err)

	deleted, err := st.DeleteExpiredScopes(ctx, time.Now().UTC())
	require.NoError(t, err)
	require.Equal(t, int64(1), deleted)

	rows, err := st.UserScopes(ctx, 7)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "track:6", rows[0].Scope)
}

// TestIntegration_GrantByID_NotFound — чтение отсутствующего гранта.
func TestIntegration_GrantByID_NotFound(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	_, err := st.GrantByID(context.Background(), 123456)
	require.Error(t, err)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

// TestIntegration_Queries_ContextCanceled — отменённый контекст «просачивается»
// в ошибки чтения как context.Canceled.
func TestIntegration_Queries_ContextCanceled(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // отменяем заранее

	_, err := st.GrantByID(ctx, 1)
	require.Error(t, err)
	require.ErrorIs(t, err, context.Canceled)

	_, err = st.UserScopes(ctx, 7)
	require.Error(t, err)
	require.ErrorIs(t, err, context.Canceled)
}
