package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics holds the counters and histograms for order placement and the cart.
type OrderMetrics struct {
	ordersCreated     prometheus.Counter
	orderFailures     *prometheus.CounterVec
	orderDuration     prometheus.Histogram
	orderValue        prometheus.Histogram
	checkouts         *prometheus.CounterVec
	statusTransitions *prometheus.CounterVec
	cartMutations     *prometheus.CounterVec
}

// NewOrderMetrics registers the metrics on the default registerer.
func NewOrderMetrics() *OrderMetrics {
	return NewOrderMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewOrderMetricsWithRegisterer registers the metrics on registerer.
// Metrics already registered there are reused.
func NewOrderMetricsWithRegisterer(registerer prometheus.Registerer) *OrderMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &OrderMetrics{
		ordersCreated: registerCollector(registerer, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lapak_orders_created_total",
			Help: "Total number of orders placed",
		})),
		orderFailures: registerCollector(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lapak_order_failures_total",
			Help: "Total number of rejected order placements by error code",
		}, []string{"code"})),
		orderDuration: registerCollector(registerer, prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "lapak_order_create_duration_seconds",
			Help:    "Duration of order placement transactions in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
		})),
		orderValue: registerCollector(registerer, prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "lapak_order_total_price",
			Help:    "Total price of placed orders in minor currency units",
			Buckets: prometheus.ExponentialBuckets(1000, 4, 8),
		})),
		checkouts: registerCollector(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lapak_cart_checkouts_total",
			Help: "Total number of cart checkouts by result",
		}, []string{"result"})),
		statusTransitions: registerCollector(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lapak_order_status_transitions_total",
			Help: "Total number of order status changes",
		}, []string{"from", "to"})),
		cartMutations: registerCollector(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lapak_cart_mutations_total",
			Help: "Total number of cart line changes by kind",
		}, []string{"kind"})),
	}
}

func registerCollector[T prometheus.Collector](registerer prometheus.Registerer, c T) T {
	if err := registerer.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

// RecordOrderCreated counts a placed order.
func (m *OrderMetrics) RecordOrderCreated(totalPrice int64, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.ordersCreated.Inc()
	m.orderValue.Observe(float64(totalPrice))
	m.orderDuration.Observe(elapsed.Seconds())
}

// RecordOrderFailed counts a rejected placement under its error code.
func (m *OrderMetrics) RecordOrderFailed(code string) {
	if m == nil {
		return
	}
	m.orderFailures.WithLabelValues(code).Inc()
}

// RecordCheckout counts a checkout attempt; result is "success" or an error code.
func (m *OrderMetrics) RecordCheckout(result string) {
	if m == nil {
		return
	}
	m.checkouts.WithLabelValues(result).Inc()
}

// RecordStatusTransition counts an order status change.
func (m *OrderMetrics) RecordStatusTransition(from, to string) {
	if m == nil {
		return
	}
	m.statusTransitions.WithLabelValues(from, to).Inc()
}

// RecordCartMutation counts a cart change: "add", "update", "remove" or "clear".
func (m *OrderMetrics) RecordCartMutation(kind string) {
	if m == nil {
		return
	}
	m.cartMutations.WithLabelValues(kind).Inc()
}
