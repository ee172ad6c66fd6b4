package tenants

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/botique/storefront-backend/pkg/db"
	"github.com/botique/storefront-backend/pkg/db/models"
	pkgerrors "github.com/botique/storefront-backend/pkg/errors"
	"github.com/botique/storefront-backend/pkg/logger"
	pkgredis "github.com/botique/storefront-backend/pkg/redis"
)

// resolveCache is the subset of the redis client used to memoize bot-to-shop
// lookups. A nil cache disables memoization.
type resolveCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	TenantKey(botID string) string
}

// Service is the tenant registry: it maps bot identities to shops and gates
// every downstream operation on an active tenant.
type Service interface {
	Register(ctx context.Context, botID string, operatorID int64) (*models.Shop, error)
	Resolve(ctx context.Context, botID string) (*models.Shop, error)
	RequireActive(ctx context.Context, shopID uuid.UUID) (*models.Shop, error)
	Deactivate(ctx context.Context, shopID uuid.UUID) error
}

// ServiceParams groups dependencies for the tenant service.
type ServiceParams struct {
	Repo       *Repository
	Cache      resolveCache
	Logger     *logger.Logger
	ResolveTTL time.Duration
}

type service struct {
	repo       *Repository
	cache      resolveCache
	logg       *logger.Logger
	resolveTTL time.Duration
}

// NewService builds the tenant registry service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant repo is required")
	}
	if params.ResolveTTL <= 0 {
		params.ResolveTTL = 5 * time.Minute
	}
	return &service{
		repo:       params.Repo,
		cache:      params.Cache,
		logg:       params.Logger,
		resolveTTL: params.ResolveTTL,
	}, nil
}

// Register creates a shop for a newly connected bot. Shops are unique per
// bot identity and are never deleted afterwards, only deactivated.
func (s *service) Register(ctx context.Context, botID string, operatorID int64) (*models.Shop, error) {
	botID = strings.TrimSpace(botID)
	if botID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bot id is required")
	}
	if operatorID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "operator id is required")
	}

	shop := &models.Shop{
		BotID:      botID,
		OperatorID: operatorID,
		IsActive:   true,
	}
	if err := s.repo.Create(ctx, shop); err != nil {
		if db.IsUniqueViolation(err, "shops_bot_id_key") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "bot already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create shop")
	}
	return shop, nil
}

// Resolve maps a bot identity to its shop. Unknown and inactive shops are
// reported identically so a disabled bot cannot be probed apart from a
// missing one.
func (s *service) Resolve(ctx context.Context, botID string) (*models.Shop, error) {
	botID = strings.TrimSpace(botID)
	if botID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bot id is required")
	}

	if shop := s.cachedShop(ctx, botID); shop != nil {
		if !shop.IsActive {
			return nil, pkgerrors.New(pkgerrors.CodeTenantUnavailable, "shop is inactive")
		}
		return shop, nil
	}

	shop, err := s.repo.FindByBotID(ctx, botID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeTenantUnavailable, err, "unknown bot")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve shop")
	}
	if !shop.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeTenantUnavailable, "shop is inactive")
	}

	s.cacheShopID(ctx, botID, shop.ID)
	return shop, nil
}

// RequireActive loads a shop by id and rejects inactive or unknown tenants
// before any catalog work runs.
func (s *service) RequireActive(ctx context.Context, shopID uuid.UUID) (*models.Shop, error) {
	if shopID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop id is required")
	}
	shop, err := s.repo.FindByID(ctx, shopID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeTenantUnavailable, err, "unknown shop")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shop")
	}
	if !shop.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeTenantUnavailable, "shop is inactive")
	}
	return shop, nil
}

// Deactivate turns the shop off and drops its resolve cache entry.
func (s *service) Deactivate(ctx context.Context, shopID uuid.UUID) error {
	shop, err := s.repo.FindByID(ctx, shopID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "shop not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shop")
	}

	if err := s.repo.SetActive(ctx, shop.ID, false); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate shop")
	}

	if s.cache != nil {
		if err := s.cache.Del(ctx, s.cache.TenantKey(shop.BotID)); err != nil && s.logg != nil {
			s.logg.Warn(ctx, "failed to drop tenant cache entry")
		}
	}
	return nil
}

// cachedShop returns the shop behind the cached bot mapping, or nil on any
// miss or cache failure. Cache problems never fail a resolve.
func (s *service) cachedShop(ctx context.Context, botID string) *models.Shop {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, s.cache.TenantKey(botID))
	if err != nil {
		if !errors.Is(err, pkgredis.Nil) && s.logg != nil {
			s.logg.Warn(ctx, "tenant cache read failed")
		}
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	shop, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil
	}
	return shop
}

func (s *service) cacheShopID(ctx context.Context, botID string, shopID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, s.cache.TenantKey(botID), shopID.String(), s.resolveTTL); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "tenant cache write failed")
	}
}
