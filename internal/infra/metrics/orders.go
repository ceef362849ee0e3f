package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		ordersTotal,
		ordersRevenueTotal,
	)
}

var (
	ordersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_total",
			Help: "Orders by outcome (created/completed/failed/expired/create_error).",
		},
		[]string{"outcome"},
	)

	ordersRevenueTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_revenue_paise_total",
			Help: "Total minor-unit value of completed orders, labeled by currency.",
		},
		[]string{"currency"},
	)
)

func IncOrder(outcome string) {
	ordersTotal.WithLabelValues(norm(outcome)).Inc()
}

func AddOrderRevenue(currency string, amountPaise int64) {
	ordersRevenueTotal.WithLabelValues(norm(currency)).Add(float64(amountPaise))
}
