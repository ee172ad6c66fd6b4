package migrate

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/botique/storefront-backend/pkg/config"
	"github.com/botique/storefront-backend/pkg/db"
	"github.com/botique/storefront-backend/pkg/db/models"
	"github.com/botique/storefront-backend/pkg/logger"
)

// schemaModels is the full target schema, declared in one place. The
// bootstrap is a single idempotent ensure step, not a replayed script chain.
var schemaModels = []any{
	&models.Shop{},
	&models.Category{},
	&models.Product{},
	&models.Order{},
	&models.Favorite{},
}

// EnsureSchema brings the connected database up to the current schema. Safe
// to run on every startup and from tests against a fresh database.
func EnsureSchema(ctx context.Context, conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db connection is required")
	}
	if err := conn.WithContext(ctx).AutoMigrate(schemaModels...); err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}
	return nil
}

// MaybeEnsure runs EnsureSchema at boot unless the feature flag disables it.
func MaybeEnsure(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.FeatureFlags.EnsureSchema {
		return nil
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env})
	logg.Info(ctx, "ensuring database schema")

	if err := EnsureSchema(ctx, client.DB()); err != nil {
		return err
	}

	logg.Info(ctx, "database schema up to date")
	return nil
}
