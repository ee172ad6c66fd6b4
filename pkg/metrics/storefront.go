package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// StorefrontMetrics records order-flow counters. A nil receiver or a zero
// value constructed without a registerer is safe to call.
type StorefrontMetrics struct {
	ordersPlaced   *prometheus.CounterVec
	outOfStock     prometheus.Counter
	transitions    *prometheus.CounterVec
	inventoryDrift prometheus.Counter
}

// NewStorefrontMetrics registers the order-flow metrics on the provided
// registerer.
func NewStorefrontMetrics(reg prometheus.Registerer) *StorefrontMetrics {
	if reg == nil {
		return &StorefrontMetrics{}
	}
	ordersPlaced := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Orders and reservations successfully placed.",
	}, []string{"kind"})
	outOfStock := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_out_of_stock_total",
		Help: "Placements rejected because the quantity check failed.",
	})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_transitions_total",
		Help: "Ledger status transitions applied.",
	}, []string{"status"})
	inventoryDrift := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "inventory_drift_total",
		Help: "Cancellations that could not restore quantity because the product was gone.",
	})
	reg.MustRegister(ordersPlaced, outOfStock, transitions, inventoryDrift)
	return &StorefrontMetrics{
		ordersPlaced:   ordersPlaced,
		outOfStock:     outOfStock,
		transitions:    transitions,
		inventoryDrift: inventoryDrift,
	}
}

// IncPlaced counts a successful placement of the given kind.
func (m *StorefrontMetrics) IncPlaced(kind string) {
	if m == nil || m.ordersPlaced == nil {
		return
	}
	m.ordersPlaced.WithLabelValues(kind).Inc()
}

// IncOutOfStock counts a placement rejected by the quantity check.
func (m *StorefrontMetrics) IncOutOfStock() {
	if m == nil || m.outOfStock == nil {
		return
	}
	m.outOfStock.Inc()
}

// IncTransition counts an applied status transition.
func (m *StorefrontMetrics) IncTransition(status string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(status).Inc()
}

// IncInventoryDrift counts a skipped quantity restore.
func (m *StorefrontMetrics) IncInventoryDrift() {
	if m == nil || m.inventoryDrift == nil {
		return
	}
	m.inventoryDrift.Inc()
}
