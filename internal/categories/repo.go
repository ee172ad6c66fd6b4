package categories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/botique/storefront-backend/pkg/db/models"
)

// Repository encapsulates category persistence. Every query is scoped by
// shop id.
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

// Create inserts a new category row.
func (r *Repository) Create(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

// FindByID loads one category of the shop.
func (r *Repository) FindByID(ctx context.Context, shopID, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).
		First(&category, "id = ? AND shop_id = ?", id, shopID).
		Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// ListByShop lists the shop's categories by name.
func (r *Repository) ListByShop(ctx context.Context, shopID uuid.UUID) ([]models.Category, error) {
	var rows []models.Category
	err := r.db.WithContext(ctx).
		Where("shop_id = ?", shopID).
		Order("name ASC").
		Find(&rows).
		Error
	return rows, err
}

// SetParent updates the parent pointer of one category.
func (r *Repository) SetParent(ctx context.Context, shopID, id uuid.UUID, parentID *uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&models.Category{}).
		Where("id = ? AND shop_id = ?", id, shopID).
		Update("parent_id", parentID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ReRootChildren nulls parent_id on the direct children of the category.
func (r *Repository) ReRootChildren(ctx context.Context, shopID, parentID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Category{}).
		Where("shop_id = ? AND parent_id = ?", shopID, parentID).
		Update("parent_id", nil).
		Error
}

// Delete removes one category row.
func (r *Repository) Delete(ctx context.Context, shopID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND shop_id = ?", id, shopID).
		Delete(&models.Category{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
