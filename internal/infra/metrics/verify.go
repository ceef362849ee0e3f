package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		verifyRequests,
		verifyDuration,
	)
}

var (
	// Count of verify calls grouped by result and bounded reason.
	// result: ok|fail
	// reason (fail only): invalid_signature|order_not_found|not_pending|ledger_error|unknown
	verifyRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_verify_requests_total",
			Help: "Count of payment verification calls by result and reason.",
		},
		[]string{"result", "reason"},
	)

	verifyDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "payment_verify_duration_seconds",
			Help:    "Duration of payment verification in seconds.",
			Buckets: []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"result"},
	)
)

func ObserveVerify(result, reason string, seconds float64) {
	verifyRequests.WithLabelValues(norm(result), norm(reason)).Inc()
	verifyDuration.WithLabelValues(norm(result)).Observe(seconds)
}
