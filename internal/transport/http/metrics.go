package httptransport

import (
	"strconv"
	"strings"

	dErrors "carehub/pkg/domain-errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the per-operation collectors of the contract binder.
type Metrics struct {
	Requests           *prometheus.CounterVec
	ValidationFailures *prometheus.CounterVec
	ContractViolations *prometheus.CounterVec
	Latency            *prometheus.HistogramVec
}

// NewMetrics registers the binder collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "carehub_operation_requests_total",
			Help: "Requests served per contract operation and HTTP status",
		}, []string{"operation", "status"}),
		// location is the request part an issue points at: path, query, header or body.
		ValidationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "carehub_operation_validation_failures_total",
			Help: "Request validation issues per contract operation and request part",
		}, []string{"operation", "location"}),
		ContractViolations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "carehub_operation_contract_violations_total",
			Help: "Responses that failed their declared schema",
		}, []string{"operation"}),
		Latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "carehub_operation_duration_seconds",
			Help:    "Latency of contract operations in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}
}

func (m *Metrics) observe(operation string, status int, seconds float64) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(operation, strconv.Itoa(status)).Inc()
	m.Latency.WithLabelValues(operation).Observe(seconds)
}

// recordValidation counts each request part that had at least one issue.
func (m *Metrics) recordValidation(operation string, issues []dErrors.Issue) {
	if m == nil {
		return
	}
	seen := make(map[string]bool, 4)
	for _, is := range issues {
		location, _, _ := strings.Cut(is.Path, ".")
		if seen[location] {
			continue
		}
		seen[location] = true
		m.ValidationFailures.WithLabelValues(operation, location).Inc()
	}
}

func (m *Metrics) recordViolation(operation string) {
	if m == nil {
		return
	}
	m.ContractViolations.WithLabelValues(operation).Inc()
}
