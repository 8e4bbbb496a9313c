// Package metrics holds the business counters exported next to the
// transport metrics on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the domain Prometheus metrics.
type Metrics struct {
	// Resident metrics
	ResidentsAdmitted   *prometheus.CounterVec
	ResidentsDischarged *prometheus.CounterVec
	RoomConflicts       prometheus.Counter

	// Accounting metrics
	InvoicesCreated    *prometheus.CounterVec
	InvoicedCentsTotal prometheus.Counter
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ResidentsAdmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "carehub_residents_admitted_total",
			Help: "Total number of residents admitted, labeled by care level",
		}, []string{"care_level"}),
		ResidentsDischarged: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "carehub_residents_discharged_total",
			Help: "Total number of residents discharged, labeled by care level",
		}, []string{"care_level"}),
		RoomConflicts: factory.NewCounter(prometheus.CounterOpts{
			Name: "carehub_room_conflicts_total",
			Help: "Admissions or updates rejected because the room was occupied",
		}),
		InvoicesCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "carehub_invoices_created_total",
			Help: "Total number of invoices created, labeled by initial status",
		}, []string{"status"}),
		InvoicedCentsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "carehub_invoiced_cents_total",
			Help: "Sum of invoice totals in minor units",
		}),
	}
}

// IncrementAdmitted counts one admission. Safe on a nil receiver.
func (m *Metrics) IncrementAdmitted(careLevel string) {
	if m == nil {
		return
	}
	m.ResidentsAdmitted.WithLabelValues(careLevel).Inc()
}

// IncrementDischarged counts one discharge.
func (m *Metrics) IncrementDischarged(careLevel string) {
	if m == nil {
		return
	}
	m.ResidentsDischarged.WithLabelValues(careLevel).Inc()
}

func (m *Metrics) IncrementRoomConflicts() {
	if m == nil {
		return
	}
	m.RoomConflicts.Inc()
}

// ObserveInvoice counts a created invoice and its total.
func (m *Metrics) ObserveInvoice(status string, totalCents int64) {
	if m == nil {
		return
	}
	m.InvoicesCreated.WithLabelValues(status).Inc()
	if totalCents > 0 {
		m.InvoicedCentsTotal.Add(float64(totalCents))
	}
}
