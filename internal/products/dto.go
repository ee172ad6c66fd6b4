package products

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/botique/storefront-backend/pkg/enums"
)

// CreateProductInput holds the payload to create a catalog listing. Quantity
// is only settable here; later changes go through AdjustQuantity.
type CreateProductInput struct {
	Name        string  `validate:"required,max=200"`
	Description *string `validate:"omitempty,max=4000"`

	PricingMode enums.PricingMode `validate:"required"`
	Price       *decimal.Decimal
	PriceFrom   *decimal.Decimal
	PriceTo     *decimal.Decimal
	Discount    *decimal.Decimal

	Images   []string `validate:"dive,required"`
	Quantity *int     `validate:"omitempty,gte=0"`

	CategoryID *uuid.UUID

	IsHidden   bool
	IsSold     bool
	IsHotOffer bool
	IsForSale  bool
}

// UpdateProductInput holds the payload to edit a listing. The quantity
// counter is deliberately absent: AdjustQuantity is its only write path.
type UpdateProductInput struct {
	Name        string  `validate:"required,max=200"`
	Description *string `validate:"omitempty,max=4000"`

	PricingMode enums.PricingMode `validate:"required"`
	Price       *decimal.Decimal
	PriceFrom   *decimal.Decimal
	PriceTo     *decimal.Decimal
	Discount    *decimal.Decimal

	Images     []string `validate:"dive,required"`
	CategoryID *uuid.UUID

	IsHotOffer bool
	IsForSale  bool
}

// VisibilityFlags is a partial update of the product's visibility switches.
// Nil fields keep their current value.
type VisibilityFlags struct {
	IsHidden   *bool
	IsSold     *bool
	IsHotOffer *bool
	IsForSale  *bool
}
