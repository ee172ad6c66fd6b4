package favorites

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/botique/storefront-backend/internal/products"
	"github.com/botique/storefront-backend/pkg/db/models"
	pkgerrors "github.com/botique/storefront-backend/pkg/errors"
)

// tenantGate rejects operations for unknown or inactive shops.
type tenantGate interface {
	RequireActive(ctx context.Context, shopID uuid.UUID) (*models.Shop, error)
}

// Service maintains per-viewer favorite lists.
type Service interface {
	Add(ctx context.Context, shopID uuid.UUID, viewerID int64, productID uuid.UUID) error
	Remove(ctx context.Context, shopID uuid.UUID, viewerID int64, productID uuid.UUID) error
	List(ctx context.Context, shopID uuid.UUID, viewerID int64) ([]models.Product, error)
}

// ServiceParams groups dependencies for the favorites service.
type ServiceParams struct {
	Repo     *Repository
	Products *products.Repository
	Tenants  tenantGate
}

type service struct {
	repo    *Repository
	prods   *products.Repository
	tenants tenantGate
}

// NewService builds a favorites service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "favorites repo is required")
	}
	if params.Products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product repo is required")
	}
	if params.Tenants == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant gate is required")
	}
	return &service{repo: params.Repo, prods: params.Products, tenants: params.Tenants}, nil
}

// Add favorites a live product for the viewer. Favoriting the same product
// twice reports a conflict without writing anything.
func (s *service) Add(ctx context.Context, shopID uuid.UUID, viewerID int64, productID uuid.UUID) error {
	if _, err := s.tenants.RequireActive(ctx, shopID); err != nil {
		return err
	}
	if viewerID == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "viewer id is required")
	}
	if _, err := s.prods.FindByID(ctx, shopID, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	inserted, err := s.repo.Insert(ctx, &models.Favorite{
		ShopID:    shopID,
		ViewerID:  viewerID,
		ProductID: productID,
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert favorite")
	}
	if !inserted {
		return pkgerrors.New(pkgerrors.CodeAlreadyFavorited, "product is already favorited")
	}
	return nil
}

// Remove drops the favorite. Removing an absent favorite is a no-op.
func (s *service) Remove(ctx context.Context, shopID uuid.UUID, viewerID int64, productID uuid.UUID) error {
	if _, err := s.tenants.RequireActive(ctx, shopID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, shopID, viewerID, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete favorite")
	}
	return nil
}

// List returns the viewer's favorited products. Deleted products are
// filtered out by the join, never surfaced as broken references.
func (s *service) List(ctx context.Context, shopID uuid.UUID, viewerID int64) ([]models.Product, error) {
	if _, err := s.tenants.RequireActive(ctx, shopID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListProducts(ctx, shopID, viewerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list favorites")
	}
	return rows, nil
}
