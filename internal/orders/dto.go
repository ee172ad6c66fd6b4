package orders

import (
	"github.com/google/uuid"

	"github.com/botique/storefront-backend/pkg/enums"
)

// PlaceOrderInput holds everything needed to record a purchase or
// reservation.
type PlaceOrderInput struct {
	ShopID    uuid.UUID `validate:"required"`
	ViewerID  int64     `validate:"required"`
	ProductID uuid.UUID `validate:"required"`

	Kind     enums.OrderKind `validate:"required"`
	Quantity int             `validate:"required,gte=1"`

	CustomerName   string               `validate:"required,max=200"`
	Phone          string               `validate:"required,max=32"`
	Address        *string              `validate:"omitempty,max=500"`
	Comment        *string              `validate:"omitempty,max=2000"`
	DeliveryMethod enums.DeliveryMethod `validate:"required"`
}
