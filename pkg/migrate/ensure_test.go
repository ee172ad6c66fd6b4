package migrate

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/botique/storefront-backend/pkg/db/models"
)

func TestEnsureSchemaIsIdempotent(t *testing.T) {
	t.Parallel()

	dsn := "file:migrate_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, EnsureSchema(ctx, conn))
	// A second run against an up-to-date database must be a no-op.
	require.NoError(t, EnsureSchema(ctx, conn))

	shop := &models.Shop{BotID: "bot-" + uuid.NewString(), OperatorID: 7, IsActive: true}
	require.NoError(t, conn.Create(shop).Error)
	require.NotEqual(t, uuid.Nil, shop.ID)
}
