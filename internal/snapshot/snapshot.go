// Package snapshot freezes a product's commercial fields at purchase time.
package snapshot

import (
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/botique/storefront-backend/pkg/db/models"
)

// Capture copies the product's commercial fields into a Snapshot. The copy is
// deep: later edits or deletion of the product never reach the returned value.
func Capture(product *models.Product) models.Snapshot {
	images := make(pq.StringArray, len(product.Images))
	copy(images, product.Images)

	return models.Snapshot{
		Name:        product.Name,
		PricingMode: product.PricingMode,
		Price:       cloneDecimal(product.Price),
		PriceFrom:   cloneDecimal(product.PriceFrom),
		PriceTo:     cloneDecimal(product.PriceTo),
		Discount:    cloneDecimal(product.Discount),
		Images:      images,
		IsForSale:   product.IsForSale,
	}
}

func cloneDecimal(value *decimal.Decimal) *decimal.Decimal {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}
