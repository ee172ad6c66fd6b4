// Package storefront is the composition root: it wires the domain services
// onto shared infrastructure and hands the bundle to whatever runtime embeds
// the core.
package storefront

import (
	"github.com/botique/storefront-backend/internal/categories"
	"github.com/botique/storefront-backend/internal/favorites"
	"github.com/botique/storefront-backend/internal/orders"
	"github.com/botique/storefront-backend/internal/products"
	"github.com/botique/storefront-backend/internal/tenants"
	"github.com/botique/storefront-backend/pkg/config"
	"github.com/botique/storefront-backend/pkg/db"
	"github.com/botique/storefront-backend/pkg/logger"
	"github.com/botique/storefront-backend/pkg/metrics"
	"github.com/botique/storefront-backend/pkg/redis"
)

// Core groups the storefront service contracts an embedding runtime consumes.
type Core struct {
	Tenants    tenants.Service
	Categories categories.Service
	Products   products.Service
	Orders     orders.Service
	Favorites  favorites.Service
}

// Params holds the shared infrastructure the core is built on. Redis and
// Metrics are optional.
type Params struct {
	Config  *config.Config
	DB      *db.Client
	Redis   *redis.Client
	Logger  *logger.Logger
	Metrics *metrics.StorefrontMetrics
}

// New wires every domain service. It fails fast on a missing dependency so a
// misconfigured deployment dies at boot, not on first use.
func New(params Params) (*Core, error) {
	conn := params.DB.DB()

	tenantParams := tenants.ServiceParams{
		Repo:   tenants.NewRepository(conn),
		Logger: params.Logger,
	}
	if params.Config != nil {
		tenantParams.ResolveTTL = params.Config.Tenants.ResolveTTL
	}
	if params.Redis != nil {
		tenantParams.Cache = params.Redis
	}
	tenantSvc, err := tenants.NewService(tenantParams)
	if err != nil {
		return nil, err
	}

	productRepo := products.NewRepository(conn)

	productSvc, err := products.NewService(products.ServiceParams{
		Repo:    productRepo,
		Tenants: tenantSvc,
	})
	if err != nil {
		return nil, err
	}

	categorySvc, err := categories.NewService(categories.ServiceParams{
		Repo:     categories.NewRepository(conn),
		Products: productRepo,
		Tenants:  tenantSvc,
		Tx:       params.DB,
		Logger:   params.Logger,
	})
	if err != nil {
		return nil, err
	}

	orderSvc, err := orders.NewService(orders.ServiceParams{
		Repo:     orders.NewRepository(conn),
		Products: productRepo,
		Tenants:  tenantSvc,
		Tx:       params.DB,
		Logger:   params.Logger,
		Metrics:  params.Metrics,
	})
	if err != nil {
		return nil, err
	}

	favoriteSvc, err := favorites.NewService(favorites.ServiceParams{
		Repo:     favorites.NewRepository(conn),
		Products: productRepo,
		Tenants:  tenantSvc,
	})
	if err != nil {
		return nil, err
	}

	return &Core{
		Tenants:    tenantSvc,
		Categories: categorySvc,
		Products:   productSvc,
		Orders:     orderSvc,
		Favorites:  favoriteSvc,
	}, nil
}
