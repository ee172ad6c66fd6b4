package products

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/botique/storefront-backend/pkg/db/models"
	"github.com/botique/storefront-backend/pkg/enums"
	pkgerrors "github.com/botique/storefront-backend/pkg/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// tenantGate rejects operations for unknown or inactive shops before any
// catalog work runs.
type tenantGate interface {
	RequireActive(ctx context.Context, shopID uuid.UUID) (*models.Shop, error)
}

// Service exposes catalog management for one shop.
type Service interface {
	Create(ctx context.Context, shopID uuid.UUID, input CreateProductInput) (*models.Product, error)
	Update(ctx context.Context, shopID, productID uuid.UUID, input UpdateProductInput) (*models.Product, error)
	Get(ctx context.Context, shopID, productID uuid.UUID) (*models.Product, error)
	ListByShop(ctx context.Context, shopID uuid.UUID) ([]models.Product, error)
	ListByCategory(ctx context.Context, shopID, categoryID uuid.UUID) ([]models.Product, error)
	AdjustQuantity(ctx context.Context, shopID, productID uuid.UUID, delta int) (*models.Product, error)
	SetVisibility(ctx context.Context, shopID, productID uuid.UUID, flags VisibilityFlags) (*models.Product, error)
	Delete(ctx context.Context, shopID, productID uuid.UUID) error
}

// ServiceParams groups dependencies for the catalog service.
type ServiceParams struct {
	Repo    *Repository
	Tenants tenantGate
}

type service struct {
	repo    *Repository
	tenants tenantGate
}

// NewService builds a catalog service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product repo is required")
	}
	if params.Tenants == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant gate is required")
	}
	return &service{repo: params.Repo, tenants: params.Tenants}, nil
}

// Create validates the payload and inserts a new listing.
func (s *service) Create(ctx context.Context, shopID uuid.UUID, input CreateProductInput) (*models.Product, error) {
	if _, err := s.tenants.RequireActive(ctx, shopID); err != nil {
		return nil, err
	}
	if err := validate.Struct(input); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product payload")
	}

	product := &models.Product{
		ShopID:      shopID,
		Name:        input.Name,
		Description: input.Description,
		Images:      pq.StringArray(input.Images),
		Quantity:    input.Quantity,
		IsHidden:    input.IsHidden,
		IsSold:      input.IsSold,
		IsHotOffer:  input.IsHotOffer,
		IsForSale:   input.IsForSale,
	}
	if err := applyPricing(product, input.PricingMode, input.Price, input.PriceFrom, input.PriceTo, input.Discount); err != nil {
		return nil, err
	}
	if err := s.applyCategory(ctx, product, shopID, input.CategoryID); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return product, nil
}

// Update validates the payload and persists the edited listing in a single
// write. On any validation failure the stored row is untouched.
func (s *service) Update(ctx context.Context, shopID, productID uuid.UUID, input UpdateProductInput) (*models.Product, error) {
	if _, err := s.tenants.RequireActive(ctx, shopID); err != nil {
		return nil, err
	}
	if err := validate.Struct(input); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product payload")
	}

	product, err := s.load(ctx, shopID, productID)
	if err != nil {
		return nil, err
	}

	product.Name = input.Name
	product.Description = input.Description
	product.Images = pq.StringArray(input.Images)
	product.IsHotOffer = input.IsHotOffer
	product.IsForSale = input.IsForSale
	if err := applyPricing(product, input.PricingMode, input.Price, input.PriceFrom, input.PriceTo, input.Discount); err != nil {
		return nil, err
	}
	if err := s.applyCategory(ctx, product, shopID, input.CategoryID); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return product, nil
}

// Get returns one listing of the shop.
func (s *service) Get(ctx context.Context, shopID, productID uuid.UUID) (*models.Product, error) {
	if _, err := s.tenants.RequireActive(ctx, shopID); err != nil {
		return nil, err
	}
	return s.load(ctx, shopID, productID)
}

// ListByShop returns all listings of the shop.
func (s *service) ListByShop(ctx context.Context, shopID uuid.UUID) ([]models.Product, error) {
	if _, err := s.tenants.RequireActive(ctx, shopID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByShop(ctx, shopID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return rows, nil
}

// ListByCategory returns the shop's listings filed under one category.
func (s *service) ListByCategory(ctx context.Context, shopID, categoryID uuid.UUID) ([]models.Product, error) {
	if _, err := s.tenants.RequireActive(ctx, shopID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByCategory(ctx, shopID, categoryID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products by category")
	}
	return rows, nil
}

// AdjustQuantity applies delta through the conditional-update path and
// returns the refreshed row.
func (s *service) AdjustQuantity(ctx context.Context, shopID, productID uuid.UUID, delta int) (*models.Product, error) {
	if _, err := s.tenants.RequireActive(ctx, shopID); err != nil {
		return nil, err
	}
	if _, err := s.load(ctx, shopID, productID); err != nil {
		return nil, err
	}
	if err := s.repo.AdjustQuantity(ctx, productID, delta); err != nil {
		return nil, err
	}
	return s.load(ctx, shopID, productID)
}

// SetVisibility applies the provided flags; nil flags keep their value.
func (s *service) SetVisibility(ctx context.Context, shopID, productID uuid.UUID, flags VisibilityFlags) (*models.Product, error) {
	if _, err := s.tenants.RequireActive(ctx, shopID); err != nil {
		return nil, err
	}

	columns := map[string]any{}
	if flags.IsHidden != nil {
		columns["is_hidden"] = *flags.IsHidden
	}
	if flags.IsSold != nil {
		columns["is_sold"] = *flags.IsSold
	}
	if flags.IsHotOffer != nil {
		columns["is_hot_offer"] = *flags.IsHotOffer
	}
	if flags.IsForSale != nil {
		columns["is_for_sale"] = *flags.IsForSale
	}

	if err := s.repo.UpdateVisibility(ctx, shopID, productID, columns); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set visibility")
	}
	return s.load(ctx, shopID, productID)
}

// Delete removes the listing. Existing ledger rows are untouched: their
// display data lives in snapshots.
func (s *service) Delete(ctx context.Context, shopID, productID uuid.UUID) error {
	if _, err := s.tenants.RequireActive(ctx, shopID); err != nil {
		return err
	}
	if _, err := s.load(ctx, shopID, productID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, shopID, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}

func (s *service) load(ctx context.Context, shopID, productID uuid.UUID) (*models.Product, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	product, err := s.repo.FindByID(ctx, shopID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func (s *service) applyCategory(ctx context.Context, product *models.Product, shopID uuid.UUID, categoryID *uuid.UUID) error {
	if categoryID == nil {
		product.CategoryID = nil
		return nil
	}
	ok, err := s.repo.CategoryExists(ctx, shopID, *categoryID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check category")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, "category does not belong to this shop")
	}
	product.CategoryID = categoryID
	return nil
}

// applyPricing enforces the pricing-mode invariant and normalizes the fields
// of the inactive mode to NULL so the stored row is always self-consistent.
func applyPricing(product *models.Product, mode enums.PricingMode, price, from, to, discount *decimal.Decimal) error {
	if !mode.IsValid() {
		return pkgerrors.New(pkgerrors.CodeInvalidPricing, "unknown pricing mode")
	}
	if discount != nil && discount.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeInvalidPricing, "discount must not be negative")
	}

	switch mode {
	case enums.PricingModeFixed:
		if price == nil {
			return pkgerrors.New(pkgerrors.CodeInvalidPricing, "fixed pricing requires a price")
		}
		if price.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeInvalidPricing, "price must not be negative")
		}
		product.Price = price
		product.PriceFrom = nil
		product.PriceTo = nil
	case enums.PricingModeRange:
		if from == nil || to == nil {
			return pkgerrors.New(pkgerrors.CodeInvalidPricing, "range pricing requires both bounds")
		}
		if from.IsNegative() || to.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeInvalidPricing, "price bounds must not be negative")
		}
		if from.GreaterThan(*to) {
			return pkgerrors.New(pkgerrors.CodeInvalidPricing, "price_from must not exceed price_to")
		}
		product.Price = nil
		product.PriceFrom = from
		product.PriceTo = to
	}

	product.PricingMode = mode
	product.Discount = discount
	return nil
}
