package categories

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/botique/storefront-backend/internal/products"
	"github.com/botique/storefront-backend/pkg/db/models"
	pkgerrors "github.com/botique/storefront-backend/pkg/errors"
	"github.com/botique/storefront-backend/pkg/logger"
)

// tenantGate rejects operations for unknown or inactive shops.
type tenantGate interface {
	RequireActive(ctx context.Context, shopID uuid.UUID) (*models.Shop, error)
}

// txRunner executes a function inside one database transaction.
type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages a shop's category tree.
type Service interface {
	Create(ctx context.Context, shopID uuid.UUID, name string, parentID *uuid.UUID) (*models.Category, error)
	Move(ctx context.Context, shopID, categoryID uuid.UUID, newParentID *uuid.UUID) error
	Delete(ctx context.Context, shopID, categoryID uuid.UUID) error
	Validate(ctx context.Context, shopID uuid.UUID) ([]uuid.UUID, error)
	List(ctx context.Context, shopID uuid.UUID) ([]models.Category, error)
}

// ServiceParams groups dependencies for the category service.
type ServiceParams struct {
	Repo     *Repository
	Products *products.Repository
	Tenants  tenantGate
	Tx       txRunner
	Logger   *logger.Logger
}

type service struct {
	repo    *Repository
	prods   *products.Repository
	tenants tenantGate
	tx      txRunner
	logger  *logger.Logger
}

// NewService builds a category service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category repo is required")
	}
	if params.Products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product repo is required")
	}
	if params.Tenants == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant gate is required")
	}
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tx runner is required")
	}
	return &service{
		repo:    params.Repo,
		prods:   params.Products,
		tenants: params.Tenants,
		tx:      params.Tx,
		logger:  params.Logger,
	}, nil
}

// Create inserts a category, optionally under an existing parent of the same
// shop.
func (s *service) Create(ctx context.Context, shopID uuid.UUID, name string, parentID *uuid.UUID) (*models.Category, error) {
	if _, err := s.tenants.RequireActive(ctx, shopID); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name is required")
	}
	if parentID != nil {
		if _, err := s.load(ctx, shopID, *parentID); err != nil {
			return nil, err
		}
	}

	category := &models.Category{ShopID: shopID, Name: name, ParentID: parentID}
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create category")
	}
	return category, nil
}

// Move re-parents a category. Self-parenting and parenting under one of the
// category's own descendants are rejected and leave the tree unchanged.
func (s *service) Move(ctx context.Context, shopID, categoryID uuid.UUID, newParentID *uuid.UUID) error {
	if _, err := s.tenants.RequireActive(ctx, shopID); err != nil {
		return err
	}
	if _, err := s.load(ctx, shopID, categoryID); err != nil {
		return err
	}

	if newParentID != nil {
		if *newParentID == categoryID {
			return pkgerrors.New(pkgerrors.CodeCycleDetected, "category cannot be its own parent")
		}
		parent, err := s.load(ctx, shopID, *newParentID)
		if err != nil {
			return err
		}
		if err := s.checkAncestry(ctx, shopID, categoryID, parent); err != nil {
			return err
		}
	}

	if err := s.repo.SetParent(ctx, shopID, categoryID, newParentID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "move category")
	}
	return nil
}

// checkAncestry walks from the proposed parent to the root and fails when the
// moved category appears on the chain. The visited set stops the walk if the
// stored tree already contains a cycle.
func (s *service) checkAncestry(ctx context.Context, shopID, categoryID uuid.UUID, parent *models.Category) error {
	visited := map[uuid.UUID]struct{}{}
	current := parent
	for {
		if current.ID == categoryID {
			return pkgerrors.New(pkgerrors.CodeCycleDetected, "new parent is a descendant of the category")
		}
		if _, seen := visited[current.ID]; seen {
			return pkgerrors.New(pkgerrors.CodeCycleDetected, "category tree already contains a cycle")
		}
		visited[current.ID] = struct{}{}

		if current.ParentID == nil {
			return nil
		}
		next, err := s.load(ctx, shopID, *current.ParentID)
		if err != nil {
			if pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
				// Dangling parent pointer terminates the chain.
				return nil
			}
			return err
		}
		current = next
	}
}

// Delete removes the category in one transaction: referencing products are
// detached, direct children are re-rooted, the row is deleted, and the orphan
// sweep repairs anything left behind.
func (s *service) Delete(ctx context.Context, shopID, categoryID uuid.UUID) error {
	if _, err := s.tenants.RequireActive(ctx, shopID); err != nil {
		return err
	}
	if _, err := s.load(ctx, shopID, categoryID); err != nil {
		return err
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		prods := s.prods.WithTx(tx)

		if err := prods.ClearCategoryRefs(ctx, shopID, categoryID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "detach products")
		}
		if err := repo.ReRootChildren(ctx, shopID, categoryID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "re-root children")
		}
		if err := repo.Delete(ctx, shopID, categoryID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete category")
		}

		repaired, err := sweepOrphans(ctx, prods, shopID)
		if err != nil {
			return err
		}
		if len(repaired) > 0 && s.logger != nil {
			sweepCtx := s.logger.WithFields(ctx, map[string]any{
				"shop_id":  shopID.String(),
				"repaired": len(repaired),
			})
			s.logger.Warn(sweepCtx, "orphan sweep detached products during category delete")
		}
		return nil
	})
}

// Validate detaches products whose category reference does not resolve within
// the shop and returns the repaired product ids. Safe to run repeatedly.
func (s *service) Validate(ctx context.Context, shopID uuid.UUID) ([]uuid.UUID, error) {
	if _, err := s.tenants.RequireActive(ctx, shopID); err != nil {
		return nil, err
	}
	return sweepOrphans(ctx, s.prods, shopID)
}

// List returns the shop's categories.
func (s *service) List(ctx context.Context, shopID uuid.UUID) ([]models.Category, error) {
	if _, err := s.tenants.RequireActive(ctx, shopID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByShop(ctx, shopID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	return rows, nil
}

func sweepOrphans(ctx context.Context, prods *products.Repository, shopID uuid.UUID) ([]uuid.UUID, error) {
	ids, err := prods.OrphanProductIDs(ctx, shopID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find orphaned products")
	}
	if err := prods.ClearCategoryByProductIDs(ctx, shopID, ids); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "detach orphaned products")
	}
	return ids, nil
}

func (s *service) load(ctx context.Context, shopID, categoryID uuid.UUID) (*models.Category, error) {
	if categoryID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category id is required")
	}
	category, err := s.repo.FindByID(ctx, shopID, categoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}
	return category, nil
}
