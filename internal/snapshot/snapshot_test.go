package snapshot

import (
	"testing"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/botique/storefront-backend/pkg/db/models"
	"github.com/botique/storefront-backend/pkg/enums"
)

func TestCaptureIsDeepCopy(t *testing.T) {
	t.Parallel()

	price := decimal.NewFromInt(100)
	product := &models.Product{
		Name:        "Mug",
		PricingMode: enums.PricingModeFixed,
		Price:       &price,
		Images:      pq.StringArray{"img/a.jpg", "img/b.jpg"},
		IsForSale:   true,
	}

	snap := Capture(product)

	// Mutate the live product after capture.
	edited := decimal.NewFromInt(150)
	product.Price = &edited
	product.Name = "Renamed"
	product.Images[0] = "img/other.jpg"

	require.Equal(t, "Mug", snap.Name)
	require.True(t, snap.Price.Equal(decimal.NewFromInt(100)))
	require.Equal(t, pq.StringArray{"img/a.jpg", "img/b.jpg"}, snap.Images)
}

func TestCaptureIsDeterministic(t *testing.T) {
	t.Parallel()

	from := decimal.NewFromInt(10)
	to := decimal.NewFromInt(30)
	product := &models.Product{
		Name:        "Print",
		PricingMode: enums.PricingModeRange,
		PriceFrom:   &from,
		PriceTo:     &to,
	}

	first := Capture(product)
	second := Capture(product)
	require.Equal(t, first, second)
	require.Nil(t, first.Price)
}
