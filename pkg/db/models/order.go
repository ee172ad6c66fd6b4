package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/botique/storefront-backend/pkg/enums"
)

// Order is one ledger entry: a purchase or reservation placed by a viewer
// against a shop. Display data lives in the embedded snapshot, so ProductID
// is a soft reference that survives product deletion (it is only consulted
// when a cancellation tries to restore quantity).
type Order struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	ShopID    uuid.UUID       `gorm:"column:shop_id;type:uuid;not null;index:orders_shop_id_idx"`
	ViewerID  int64           `gorm:"column:viewer_id;not null;index:orders_viewer_id_idx"`
	ProductID *uuid.UUID      `gorm:"column:product_id;type:uuid"`
	Kind      enums.OrderKind `gorm:"column:kind;not null"`
	Quantity  int             `gorm:"column:quantity;not null;default:1"`

	Snapshot Snapshot `gorm:"embedded;embeddedPrefix:snapshot_"`

	CustomerName   string               `gorm:"column:customer_name;not null"`
	Phone          string               `gorm:"column:phone;not null"`
	Address        *string              `gorm:"column:address"`
	Comment        *string              `gorm:"column:comment"`
	DeliveryMethod enums.DeliveryMethod `gorm:"column:delivery_method;not null"`

	Status    enums.OrderStatus `gorm:"column:status;not null;default:'pending'"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns the primary key when the caller did not.
func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
