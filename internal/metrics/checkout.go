package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "storefront"

// Checkout records checkout attempts. A nil *Checkout is a no-op recorder.
type Checkout struct {
	outcomes   *prometheus.CounterVec
	rejections *prometheus.CounterVec
	fraudCheck *prometheus.HistogramVec
	orderValue prometheus.Histogram
}

func NewCheckout(reg prometheus.Registerer) (*Checkout, error) {
	if reg == nil {
		return nil, fmt.Errorf("registerer is nil")
	}

	m := &Checkout{
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "checkout",
			Name:      "outcomes_total",
			Help:      "Completed checkout attempts by status.",
		}, []string{"status"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "checkout",
			Name:      "rejections_total",
			Help:      "Submissions rejected before the fraud check.",
		}, []string{"reason"}),
		fraudCheck: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "fraud_check",
			Name:      "duration_seconds",
			Help:      "Latency of fraud-check calls by result.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15, 30},
		}, []string{"result"}),
		orderValue: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "checkout",
			Name:      "approved_total_amount",
			Help:      "Order totals of approved checkouts, in major currency units.",
			Buckets:   prometheus.ExponentialBuckets(10, 2, 14),
		}),
	}

	for _, c := range []prometheus.Collector{m.outcomes, m.rejections, m.fraudCheck, m.orderValue} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("reg.Register: %w", err)
		}
	}

	return m, nil
}

func (m *Checkout) ObserveOutcome(status string) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(status).Inc()
}

func (m *Checkout) ObserveRejection(reason string) {
	if m == nil {
		return
	}
	m.rejections.WithLabelValues(reason).Inc()
}

// ObserveFraudCheck records one call; result is a verdict ("clean", "fraud") or an error kind.
func (m *Checkout) ObserveFraudCheck(result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.fraudCheck.WithLabelValues(result).Observe(elapsed.Seconds())
}

func (m *Checkout) ObserveApprovedTotal(amount float64) {
	if m == nil {
		return
	}
	m.orderValue.Observe(amount)
}
