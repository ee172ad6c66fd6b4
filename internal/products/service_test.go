package products

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/botique/storefront-backend/internal/tenants"
	"github.com/botique/storefront-backend/pkg/db/models"
	"github.com/botique/storefront-backend/pkg/enums"
	pkgerrors "github.com/botique/storefront-backend/pkg/errors"
	"github.com/botique/storefront-backend/pkg/migrate"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:products_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, migrate.EnsureSchema(context.Background(), db))
	return db
}

func newTestService(t *testing.T, db *gorm.DB) (Service, *models.Shop) {
	t.Helper()

	tenantSvc, err := tenants.NewService(tenants.ServiceParams{Repo: tenants.NewRepository(db)})
	require.NoError(t, err)
	shop, err := tenantSvc.Register(context.Background(), "bot-"+uuid.NewString(), 1000)
	require.NoError(t, err)

	svc, err := NewService(ServiceParams{Repo: NewRepository(db), Tenants: tenantSvc})
	require.NoError(t, err)
	return svc, shop
}

func dec(value int64) *decimal.Decimal {
	d := decimal.NewFromInt(value)
	return &d
}

func intPtr(v int) *int { return &v }

func fixedInput(price int64, qty *int) CreateProductInput {
	return CreateProductInput{
		Name:        "Handmade mug",
		PricingMode: enums.PricingModeFixed,
		Price:       dec(price),
		Images:      []string{"img/mug-1.jpg", "img/mug-2.jpg"},
		Quantity:    qty,
		IsForSale:   true,
	}
}

func TestCreateFixedProduct(t *testing.T) {
	t.Parallel()

	svc, shop := newTestService(t, newTestDB(t))
	ctx := context.Background()

	product, err := svc.Create(ctx, shop.ID, fixedInput(100, intPtr(2)))
	require.NoError(t, err)
	require.Equal(t, enums.PricingModeFixed, product.PricingMode)
	require.True(t, product.Price.Equal(decimal.NewFromInt(100)))
	require.Nil(t, product.PriceFrom)
	require.Nil(t, product.PriceTo)
	require.Equal(t, 2, *product.Quantity)
	require.Len(t, product.Images, 2)
}

func TestCreateRejectsInconsistentPricing(t *testing.T) {
	t.Parallel()

	svc, shop := newTestService(t, newTestDB(t))
	ctx := context.Background()

	missingPrice := fixedInput(100, nil)
	missingPrice.Price = nil
	_, err := svc.Create(ctx, shop.ID, missingPrice)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInvalidPricing), "got %v", err)

	inverted := CreateProductInput{
		Name:        "Print",
		PricingMode: enums.PricingModeRange,
		PriceFrom:   dec(200),
		PriceTo:     dec(100),
		IsForSale:   true,
	}
	_, err = svc.Create(ctx, shop.ID, inverted)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInvalidPricing), "got %v", err)

	rows, err := svc.ListByShop(ctx, shop.ID)
	require.NoError(t, err)
	require.Empty(t, rows, "failed creates must not write")
}

func TestUpdateNeverStoresInvalidPricing(t *testing.T) {
	t.Parallel()

	svc, shop := newTestService(t, newTestDB(t))
	ctx := context.Background()

	product, err := svc.Create(ctx, shop.ID, fixedInput(100, nil))
	require.NoError(t, err)

	modes := []enums.PricingMode{enums.PricingModeFixed, enums.PricingModeRange, enums.PricingMode("auction")}
	prices := []*decimal.Decimal{nil, dec(-5), dec(50)}
	bounds := []*decimal.Decimal{nil, dec(10), dec(300)}

	for _, mode := range modes {
		for _, price := range prices {
			for _, from := range bounds {
				for _, to := range bounds {
					input := UpdateProductInput{
						Name:        "Handmade mug",
						PricingMode: mode,
						Price:       price,
						PriceFrom:   from,
						PriceTo:     to,
						Images:      []string{"img/mug-1.jpg"},
						IsForSale:   true,
					}
					_, err := svc.Update(ctx, shop.ID, product.ID, input)

					stored, loadErr := svc.Get(ctx, shop.ID, product.ID)
					require.NoError(t, loadErr)
					assertPricingInvariant(t, stored)
					if err != nil {
						require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInvalidPricing), "got %v", err)
					}
				}
			}
		}
	}
}

func assertPricingInvariant(t *testing.T, product *models.Product) {
	t.Helper()
	switch product.PricingMode {
	case enums.PricingModeFixed:
		require.NotNil(t, product.Price)
		require.False(t, product.Price.IsNegative())
		require.Nil(t, product.PriceFrom)
		require.Nil(t, product.PriceTo)
	case enums.PricingModeRange:
		require.Nil(t, product.Price)
		require.NotNil(t, product.PriceFrom)
		require.NotNil(t, product.PriceTo)
		require.True(t, product.PriceTo.GreaterThanOrEqual(*product.PriceFrom))
	default:
		t.Fatalf("stored record has unknown pricing mode %q", product.PricingMode)
	}
}

func TestAdjustQuantity(t *testing.T) {
	t.Parallel()

	svc, shop := newTestService(t, newTestDB(t))
	ctx := context.Background()

	product, err := svc.Create(ctx, shop.ID, fixedInput(100, intPtr(2)))
	require.NoError(t, err)

	updated, err := svc.AdjustQuantity(ctx, shop.ID, product.ID, -2)
	require.NoError(t, err)
	require.Equal(t, 0, *updated.Quantity)

	_, err = svc.AdjustQuantity(ctx, shop.ID, product.ID, -1)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeOutOfStock), "got %v", err)

	stored, err := svc.Get(ctx, shop.ID, product.ID)
	require.NoError(t, err)
	require.Equal(t, 0, *stored.Quantity, "failed adjust must not change quantity")
}

func TestAdjustQuantityUnlimitedIsNoop(t *testing.T) {
	t.Parallel()

	svc, shop := newTestService(t, newTestDB(t))
	ctx := context.Background()

	product, err := svc.Create(ctx, shop.ID, fixedInput(100, nil))
	require.NoError(t, err)

	updated, err := svc.AdjustQuantity(ctx, shop.ID, product.ID, -5)
	require.NoError(t, err)
	require.Nil(t, updated.Quantity)
}

func TestSetVisibilityPartial(t *testing.T) {
	t.Parallel()

	svc, shop := newTestService(t, newTestDB(t))
	ctx := context.Background()

	product, err := svc.Create(ctx, shop.ID, fixedInput(100, nil))
	require.NoError(t, err)

	hidden := true
	updated, err := svc.SetVisibility(ctx, shop.ID, product.ID, VisibilityFlags{IsHidden: &hidden})
	require.NoError(t, err)
	require.True(t, updated.IsHidden)
	require.True(t, updated.IsForSale, "untouched flags keep their value")
}

func TestDeleteMakesProductUnresolvable(t *testing.T) {
	t.Parallel()

	svc, shop := newTestService(t, newTestDB(t))
	ctx := context.Background()

	product, err := svc.Create(ctx, shop.ID, fixedInput(100, nil))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, shop.ID, product.ID))

	_, err = svc.Get(ctx, shop.ID, product.ID)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound), "got %v", err)
}

func TestCrossShopCategoryRejected(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc, shop := newTestService(t, db)
	ctx := context.Background()

	other := &models.Shop{BotID: "bot-" + uuid.NewString(), OperatorID: 2}
	require.NoError(t, db.Create(other).Error)
	foreign := &models.Category{ShopID: other.ID, Name: "Foreign"}
	require.NoError(t, db.Create(foreign).Error)

	input := fixedInput(100, nil)
	input.CategoryID = &foreign.ID
	_, err := svc.Create(ctx, shop.ID, input)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation), "got %v", err)
}

func TestOperationsRequireActiveShop(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, newTestDB(t))

	_, err := svc.ListByShop(context.Background(), uuid.New())
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeTenantUnavailable), "got %v", err)
}
