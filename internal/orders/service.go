package orders

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/botique/storefront-backend/internal/products"
	"github.com/botique/storefront-backend/internal/snapshot"
	"github.com/botique/storefront-backend/pkg/db/models"
	"github.com/botique/storefront-backend/pkg/enums"
	pkgerrors "github.com/botique/storefront-backend/pkg/errors"
	"github.com/botique/storefront-backend/pkg/logger"
	"github.com/botique/storefront-backend/pkg/metrics"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// tenantGate rejects operations for unknown or inactive shops.
type tenantGate interface {
	RequireActive(ctx context.Context, shopID uuid.UUID) (*models.Shop, error)
}

// txRunner executes a function inside one database transaction.
type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service is the reservation and purchase ledger.
type Service interface {
	Place(ctx context.Context, input PlaceOrderInput) (*models.Order, error)
	Transition(ctx context.Context, shopID, orderID uuid.UUID, next enums.OrderStatus) (*models.Order, error)
	Get(ctx context.Context, shopID, orderID uuid.UUID) (*models.Order, error)
	ListByViewer(ctx context.Context, shopID uuid.UUID, viewerID int64) ([]models.Order, error)
	ListByShop(ctx context.Context, shopID uuid.UUID) ([]models.Order, error)
}

// ServiceParams groups dependencies for the ledger service.
type ServiceParams struct {
	Repo     *Repository
	Products *products.Repository
	Tenants  tenantGate
	Tx       txRunner
	Logger   *logger.Logger
	Metrics  *metrics.StorefrontMetrics
}

type service struct {
	repo    *Repository
	prods   *products.Repository
	tenants tenantGate
	tx      txRunner
	logg    *logger.Logger
	metrics *metrics.StorefrontMetrics
}

// NewService builds a ledger service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order repo is required")
	}
	if params.Products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product repo is required")
	}
	if params.Tenants == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant gate is required")
	}
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tx runner is required")
	}
	return &service{
		repo:    params.Repo,
		prods:   params.Products,
		tenants: params.Tenants,
		tx:      params.Tx,
		logg:    params.Logger,
		metrics: params.Metrics,
	}, nil
}

// Place records a purchase or reservation. The product load, the quantity
// decrement, and the order insert run in one transaction: when anything
// fails, including the caller disconnecting mid-flight, nothing is written.
func (s *service) Place(ctx context.Context, input PlaceOrderInput) (*models.Order, error) {
	if err := validate.Struct(input); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order payload")
	}
	if !input.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown order kind")
	}
	if !input.DeliveryMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown delivery method")
	}
	if _, err := s.tenants.RequireActive(ctx, input.ShopID); err != nil {
		return nil, err
	}

	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		prods := s.prods.WithTx(tx)

		product, err := prods.FindByID(ctx, input.ShopID, input.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
		if !product.Purchasable() {
			return pkgerrors.New(pkgerrors.CodeValidation, "product is not available").
				WithDetails(map[string]any{"product_id": product.ID.String()})
		}

		if err := prods.AdjustQuantity(ctx, product.ID, -input.Quantity); err != nil {
			if pkgerrors.HasCode(err, pkgerrors.CodeOutOfStock) {
				s.metrics.IncOutOfStock()
			}
			return err
		}

		productID := product.ID
		order = &models.Order{
			ShopID:         input.ShopID,
			ViewerID:       input.ViewerID,
			ProductID:      &productID,
			Kind:           input.Kind,
			Quantity:       input.Quantity,
			Snapshot:       snapshot.Capture(product),
			CustomerName:   input.CustomerName,
			Phone:          input.Phone,
			Address:        input.Address,
			Comment:        input.Comment,
			DeliveryMethod: input.DeliveryMethod,
			Status:         enums.OrderStatusPending,
		}
		if err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncPlaced(input.Kind.String())
	return order, nil
}

// Transition moves the order to a terminal status. Only pending orders move;
// a concurrent transition or an already terminal order loses with a state
// conflict. Cancellation puts the reserved quantity back unless the product
// has been deleted in the meantime.
func (s *service) Transition(ctx context.Context, shopID, orderID uuid.UUID, next enums.OrderStatus) (*models.Order, error) {
	if _, err := s.tenants.RequireActive(ctx, shopID); err != nil {
		return nil, err
	}
	if !next.IsValid() || !enums.OrderStatusPending.CanTransitionTo(next) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported target status").
			WithDetails(map[string]any{"status": next.String()})
	}

	order, err := s.load(ctx, shopID, orderID)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(next) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is not pending").
			WithDetails(map[string]any{"status": order.Status.String()})
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		moved, err := s.repo.WithTx(tx).TransitionFromPending(ctx, shopID, orderID, next)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "transition order")
		}
		if !moved {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is not pending")
		}
		if next == enums.OrderStatusCancelled {
			return s.restoreQuantity(ctx, tx, order)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncTransition(next.String())
	order.Status = next
	return order, nil
}

// restoreQuantity puts a cancelled order's units back on the shelf. A deleted
// product makes the restore impossible; the shortfall is recorded as
// inventory drift instead of failing the cancellation.
func (s *service) restoreQuantity(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	if order.ProductID == nil {
		return nil
	}
	err := s.prods.WithTx(tx).AdjustQuantity(ctx, *order.ProductID, order.Quantity)
	if err == nil {
		return nil
	}
	if pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		s.metrics.IncInventoryDrift()
		if s.logg != nil {
			driftCtx := s.logg.WithFields(ctx, map[string]any{
				"order_id":   order.ID.String(),
				"product_id": order.ProductID.String(),
				"quantity":   order.Quantity,
			})
			s.logg.Warn(driftCtx, "cancellation could not restore quantity, product is gone")
		}
		return nil
	}
	return err
}

// Get returns one ledger entry of the shop.
func (s *service) Get(ctx context.Context, shopID, orderID uuid.UUID) (*models.Order, error) {
	if _, err := s.tenants.RequireActive(ctx, shopID); err != nil {
		return nil, err
	}
	return s.load(ctx, shopID, orderID)
}

// ListByViewer returns the viewer's ledger entries in the shop.
func (s *service) ListByViewer(ctx context.Context, shopID uuid.UUID, viewerID int64) ([]models.Order, error) {
	if _, err := s.tenants.RequireActive(ctx, shopID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByViewer(ctx, shopID, viewerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders by viewer")
	}
	return rows, nil
}

// ListByShop returns the shop's ledger entries.
func (s *service) ListByShop(ctx context.Context, shopID uuid.UUID) ([]models.Order, error) {
	if _, err := s.tenants.RequireActive(ctx, shopID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByShop(ctx, shopID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders by shop")
	}
	return rows, nil
}

func (s *service) load(ctx context.Context, shopID, orderID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	order, err := s.repo.FindByID(ctx, shopID, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}
