package models

import (
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/botique/storefront-backend/pkg/enums"
)

// Snapshot is the immutable copy of a product's commercial fields taken at
// the moment an order is placed. It is embedded in the order row and owned by
// it; nothing ever joins a snapshot back to the live product.
type Snapshot struct {
	Name        string            `gorm:"column:name;not null"`
	PricingMode enums.PricingMode `gorm:"column:pricing_mode;not null"`
	Price       *decimal.Decimal  `gorm:"column:price;type:numeric(12,2)"`
	PriceFrom   *decimal.Decimal  `gorm:"column:price_from;type:numeric(12,2)"`
	PriceTo     *decimal.Decimal  `gorm:"column:price_to;type:numeric(12,2)"`
	Discount    *decimal.Decimal  `gorm:"column:discount;type:numeric(12,2)"`
	Images      pq.StringArray    `gorm:"column:images;type:text"`
	IsForSale   bool              `gorm:"column:is_for_sale;not null"`
}
