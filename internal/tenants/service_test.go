package tenants

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	pkgerrors "github.com/botique/storefront-backend/pkg/errors"
	"github.com/botique/storefront-backend/pkg/migrate"
	pkgredis "github.com/botique/storefront-backend/pkg/redis"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:tenants_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, migrate.EnsureSchema(context.Background(), db))
	return db
}

type fakeCache struct {
	values map[string]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: map[string]string{}}
}

func (f *fakeCache) Get(_ context.Context, key string) (string, error) {
	if val, ok := f.values[key]; ok {
		return val, nil
	}
	return "", pkgredis.Nil
}

func (f *fakeCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.values[key] = value.(string)
	return nil
}

func (f *fakeCache) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.values, key)
	}
	return nil
}

func (f *fakeCache) TenantKey(botID string) string {
	return "tenant:" + botID
}

func newTestService(t *testing.T, db *gorm.DB, cache resolveCache) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{Repo: NewRepository(db), Cache: cache})
	require.NoError(t, err)
	return svc
}

func TestRegisterAndResolve(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db, nil)
	ctx := context.Background()

	shop, err := svc.Register(ctx, "bot-100", 500)
	require.NoError(t, err)
	require.True(t, shop.IsActive)

	resolved, err := svc.Resolve(ctx, "bot-100")
	require.NoError(t, err)
	require.Equal(t, shop.ID, resolved.ID)
}

func TestRegisterDuplicateBot(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db, nil)
	ctx := context.Background()

	_, err := svc.Register(ctx, "bot-dup", 1)
	require.NoError(t, err)

	_, err = svc.Register(ctx, "bot-dup", 2)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict), "got %v", err)
}

func TestResolveUnknownBot(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db, nil)

	_, err := svc.Resolve(context.Background(), "no-such-bot")
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeTenantUnavailable), "got %v", err)
}

func TestDeactivateBlocksResolve(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	cache := newFakeCache()
	svc := newTestService(t, db, cache)
	ctx := context.Background()

	shop, err := svc.Register(ctx, "bot-off", 9)
	require.NoError(t, err)

	_, err = svc.Resolve(ctx, "bot-off")
	require.NoError(t, err)
	require.Len(t, cache.values, 1)

	require.NoError(t, svc.Deactivate(ctx, shop.ID))
	require.Empty(t, cache.values, "cache entry must be dropped on deactivate")

	_, err = svc.Resolve(ctx, "bot-off")
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeTenantUnavailable), "got %v", err)

	_, err = svc.RequireActive(ctx, shop.ID)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeTenantUnavailable), "got %v", err)
}

func TestResolveUsesCache(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	cache := newFakeCache()
	svc := newTestService(t, db, cache)
	ctx := context.Background()

	shop, err := svc.Register(ctx, "bot-cache", 77)
	require.NoError(t, err)

	_, err = svc.Resolve(ctx, "bot-cache")
	require.NoError(t, err)
	require.Equal(t, shop.ID.String(), cache.values["tenant:bot-cache"])

	// A poisoned cache entry falls through to the database.
	cache.values["tenant:bot-cache"] = "not-a-uuid"
	resolved, err := svc.Resolve(ctx, "bot-cache")
	require.NoError(t, err)
	require.Equal(t, shop.ID, resolved.ID)
}
