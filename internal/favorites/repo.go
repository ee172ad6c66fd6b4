package favorites

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/botique/storefront-backend/pkg/db/models"
)

// Repository encapsulates favorites persistence.
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

// Insert adds the favorite unless the (product, viewer) pair already exists.
// It reports whether a row was written.
func (r *Repository) Insert(ctx context.Context, favorite *models.Favorite) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}, {Name: "viewer_id"}},
			DoNothing: true,
		}).
		Create(favorite)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Delete removes the favorite if present.
func (r *Repository) Delete(ctx context.Context, shopID uuid.UUID, viewerID int64, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("shop_id = ? AND viewer_id = ? AND product_id = ?", shopID, viewerID, productID).
		Delete(&models.Favorite{}).
		Error
}

// ListProducts returns the viewer's favorited products that still exist. The
// inner join drops favorites whose product has been deleted.
func (r *Repository) ListProducts(ctx context.Context, shopID uuid.UUID, viewerID int64) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Joins("JOIN favorites ON favorites.product_id = products.id").
		Where("favorites.shop_id = ? AND favorites.viewer_id = ?", shopID, viewerID).
		Order("favorites.created_at DESC").
		Find(&rows).
		Error
	return rows, err
}
