package products

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/botique/storefront-backend/pkg/db/models"
	pkgerrors "github.com/botique/storefront-backend/pkg/errors"
)

// Repository encapsulates catalog persistence. Every query is scoped by shop
// id; there is no unscoped lookup.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts a new product row.
func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// Save persists the full product row.
func (r *Repository) Save(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

// FindByID loads a product within the shop.
func (r *Repository) FindByID(ctx context.Context, shopID, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		First(&product, "id = ? AND shop_id = ?", id, shopID).
		Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ListByShop lists a shop's products, newest first.
func (r *Repository) ListByShop(ctx context.Context, shopID uuid.UUID) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Where("shop_id = ?", shopID).
		Order("created_at DESC").
		Find(&rows).
		Error
	return rows, err
}

// ListByCategory lists the shop's products filed under one category.
func (r *Repository) ListByCategory(ctx context.Context, shopID, categoryID uuid.UUID) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Where("shop_id = ? AND category_id = ?", shopID, categoryID).
		Order("created_at DESC").
		Find(&rows).
		Error
	return rows, err
}

// Delete removes a product row. Ledger rows keep their snapshots; favorites
// become unresolvable and are filtered on read.
func (r *Repository) Delete(ctx context.Context, shopID, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND shop_id = ?", id, shopID).
		Delete(&models.Product{}).
		Error
}

// UpdateVisibility applies the provided flag columns in one statement.
func (r *Repository) UpdateVisibility(ctx context.Context, shopID, id uuid.UUID, columns map[string]any) error {
	if len(columns) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND shop_id = ?", id, shopID).
		Updates(columns)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AdjustQuantity applies delta to the quantity counter as one conditional
// update: the check and the write are a single statement, so two competing
// purchases of the last unit cannot both succeed. A NULL quantity means
// unlimited stock and the call degrades to an existence check.
func (r *Repository) AdjustQuantity(ctx context.Context, id uuid.UUID, delta int) error {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND quantity IS NOT NULL AND quantity + ? >= 0", id, delta).
		Update("quantity", gorm.Expr("quantity + ?", delta))
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "adjust quantity")
	}
	if res.RowsAffected > 0 {
		return nil
	}

	// Zero rows: unlimited stock, a missing product, or not enough left.
	var product models.Product
	err := r.db.WithContext(ctx).
		Select("id", "quantity").
		First(&product, "id = ?", id).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product quantity")
	}
	if product.Quantity == nil {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeOutOfStock, "insufficient quantity").
		WithDetails(map[string]any{"available": *product.Quantity, "requested_delta": delta})
}

// ClearCategoryRefs nulls category_id on every product of the shop that
// references the category.
func (r *Repository) ClearCategoryRefs(ctx context.Context, shopID, categoryID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("shop_id = ? AND category_id = ?", shopID, categoryID).
		Update("category_id", nil).
		Error
}

// OrphanProductIDs returns the shop's products whose category reference does
// not resolve to a category of the same shop.
func (r *Repository) OrphanProductIDs(ctx context.Context, shopID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("shop_id = ? AND category_id IS NOT NULL", shopID).
		Where("category_id NOT IN (?)",
			r.db.Model(&models.Category{}).Select("id").Where("shop_id = ?", shopID),
		).
		Pluck("id", &ids).
		Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// ClearCategoryByProductIDs nulls category_id on the given products.
func (r *Repository) ClearCategoryByProductIDs(ctx context.Context, shopID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("shop_id = ? AND id IN ?", shopID, ids).
		Update("category_id", nil).
		Error
}

// CategoryExists reports whether the category belongs to the shop.
func (r *Repository) CategoryExists(ctx context.Context, shopID, categoryID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Category{}).
		Where("id = ? AND shop_id = ?", categoryID, shopID).
		Count(&count).
		Error
	return count > 0, err
}
