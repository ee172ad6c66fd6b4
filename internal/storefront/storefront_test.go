package storefront

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/botique/storefront-backend/pkg/config"
	"github.com/botique/storefront-backend/pkg/db"
	"github.com/botique/storefront-backend/pkg/migrate"
)

func TestNewWiresEveryService(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client, err := db.New(ctx, config.DBConfig{
		Driver: "sqlite",
		DSN:    "file:storefront_" + uuid.NewString() + "?mode=memory&cache=shared",
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, migrate.EnsureSchema(ctx, client.DB()))

	core, err := New(Params{DB: client})
	require.NoError(t, err)
	require.NotNil(t, core.Tenants)
	require.NotNil(t, core.Categories)
	require.NotNil(t, core.Products)
	require.NotNil(t, core.Orders)
	require.NotNil(t, core.Favorites)

	// The wired services are usable end to end.
	shop, err := core.Tenants.Register(ctx, "bot-wiring", 7)
	require.NoError(t, err)

	category, err := core.Categories.Create(ctx, shop.ID, "Apparel", nil)
	require.NoError(t, err)
	require.Equal(t, shop.ID, category.ShopID)
}
