package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestStorefrontMetricsCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewStorefrontMetrics(reg)

	m.IncPlaced("purchase")
	m.IncPlaced("purchase")
	m.IncPlaced("reservation")
	m.IncOutOfStock()
	m.IncTransition("cancelled")
	m.IncInventoryDrift()

	if got := testutil.ToFloat64(m.ordersPlaced.WithLabelValues("purchase")); got != 2 {
		t.Fatalf("orders_placed_total{kind=purchase} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.outOfStock); got != 1 {
		t.Fatalf("orders_out_of_stock_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.inventoryDrift); got != 1 {
		t.Fatalf("inventory_drift_total = %v, want 1", got)
	}
}

func TestStorefrontMetricsNilSafe(t *testing.T) {
	var m *StorefrontMetrics
	m.IncPlaced("purchase")
	m.IncOutOfStock()
	m.IncTransition("completed")
	m.IncInventoryDrift()

	zero := NewStorefrontMetrics(nil)
	zero.IncPlaced("reservation")
	zero.IncInventoryDrift()
}
