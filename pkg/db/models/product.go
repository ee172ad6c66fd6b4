package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/botique/storefront-backend/pkg/enums"
)

// Product is the mutable catalog record for one shop listing. Quantity is
// nullable: NULL means unlimited stock. Image entries are opaque references
// the core stores but never interprets.
type Product struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	ShopID      uuid.UUID         `gorm:"column:shop_id;type:uuid;not null;index:products_shop_id_idx"`
	Name        string            `gorm:"column:name;not null"`
	Description *string           `gorm:"column:description"`
	PricingMode enums.PricingMode `gorm:"column:pricing_mode;not null;default:'fixed'"`
	Price       *decimal.Decimal  `gorm:"column:price;type:numeric(12,2)"`
	PriceFrom   *decimal.Decimal  `gorm:"column:price_from;type:numeric(12,2)"`
	PriceTo     *decimal.Decimal  `gorm:"column:price_to;type:numeric(12,2)"`
	Discount    *decimal.Decimal  `gorm:"column:discount;type:numeric(12,2)"`
	Images      pq.StringArray    `gorm:"column:images;type:text"`
	Quantity    *int              `gorm:"column:quantity"`
	IsHidden    bool              `gorm:"column:is_hidden;not null;default:false"`
	IsSold      bool              `gorm:"column:is_sold;not null;default:false"`
	IsHotOffer  bool              `gorm:"column:is_hot_offer;not null;default:false"`
	IsForSale   bool              `gorm:"column:is_for_sale;not null"`
	CategoryID  *uuid.UUID        `gorm:"column:category_id;type:uuid;index:products_category_id_idx"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns the primary key when the caller did not.
func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Purchasable reports whether a buyer may currently act on the product.
// Quantity is checked separately by the conditional decrement.
func (p *Product) Purchasable() bool {
	return p.IsForSale && !p.IsHidden && !p.IsSold
}
