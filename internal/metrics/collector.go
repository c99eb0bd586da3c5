package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Nicolas4485/allam-demo-payment-integration/internal/compliance"
)

const namespace = "saudi_payments"

// Collector manages Prometheus metrics for compliance checks, payments and
// the HTTP API
type Collector struct {
	complianceChecks     *prometheus.CounterVec
	complianceViolations *prometheus.CounterVec

	paymentsTotal   *prometheus.CounterVec
	gatewayDuration *prometheus.HistogramVec

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewCollector creates the collectors and registers them on reg
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		complianceChecks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "compliance_checks_total",
				Help:      "Total number of compliance checks by verdict",
			},
			[]string{"verdict"},
		),
		complianceViolations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "compliance_violations_total",
				Help:      "Total number of compliance violations by rule and severity",
			},
			[]string{"rule", "kind"},
		),
		paymentsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "payments_total",
				Help:      "Total number of gateway charges by outcome",
			},
			[]string{"gateway", "outcome"},
		),
		gatewayDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "payment_gateway_duration_seconds",
				Help:      "Latency of payment gateway calls",
				Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"gateway"},
		),
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

// ObserveReport counts one compliance check and its violations
func (c *Collector) ObserveReport(report *compliance.Report) {
	c.complianceChecks.WithLabelValues(string(report.Verdict)).Inc()
	for _, v := range report.Violations {
		c.complianceViolations.WithLabelValues(v.RuleID, string(v.Kind)).Inc()
	}
}

// ObservePayment records one gateway call. outcome is success, declined or
// error.
func (c *Collector) ObservePayment(gateway, outcome string, duration time.Duration) {
	c.paymentsTotal.WithLabelValues(gateway, outcome).Inc()
	c.gatewayDuration.WithLabelValues(gateway).Observe(duration.Seconds())
}

// ObserveHTTP records one served request
func (c *Collector) ObserveHTTP(method, route, status string, duration time.Duration) {
	c.httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	c.httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
