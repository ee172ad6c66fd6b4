package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/botique/storefront-backend/pkg/db/models"
	"github.com/botique/storefront-backend/pkg/enums"
)

// Repository encapsulates ledger persistence. Orders are append-mostly: rows
// are inserted once and only their status column changes afterwards.
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

// Create inserts a new order row.
func (r *Repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// FindByID loads one order of the shop.
func (r *Repository) FindByID(ctx context.Context, shopID, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		First(&order, "id = ? AND shop_id = ?", id, shopID).
		Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListByViewer lists the viewer's orders in the shop, newest first.
func (r *Repository) ListByViewer(ctx context.Context, shopID uuid.UUID, viewerID int64) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Where("shop_id = ? AND viewer_id = ?", shopID, viewerID).
		Order("created_at DESC").
		Find(&rows).
		Error
	return rows, err
}

// ListByShop lists the shop's orders, newest first.
func (r *Repository) ListByShop(ctx context.Context, shopID uuid.UUID) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Where("shop_id = ?", shopID).
		Order("created_at DESC").
		Find(&rows).
		Error
	return rows, err
}

// TransitionFromPending moves the order to next only while it is still
// pending. The guard lives in the WHERE clause, so of two concurrent
// transitions exactly one observes RowsAffected == 1.
func (r *Repository) TransitionFromPending(ctx context.Context, shopID, id uuid.UUID, next enums.OrderStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND shop_id = ? AND status = ?", id, shopID, enums.OrderStatusPending).
		Update("status", next)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
