package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CoreMetrics counts the domain events the operations team watches.
type CoreMetrics struct {
	transitions       *prometheus.CounterVec
	movements         *prometheus.CounterVec
	insufficientStock prometheus.Counter
	invoicesIssued    prometheus.Counter
	sequenceRetries   prometheus.Counter
}

// NewCoreMetrics registers the domain counters on the provided registerer.
// A nil registerer yields a no-op instance, which keeps services testable
// without a registry.
func NewCoreMetrics(reg prometheus.Registerer) *CoreMetrics {
	if reg == nil {
		return &CoreMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ticket_transitions_total",
		Help: "Ticket status transitions, labeled by target status.",
	}, []string{"to_status"})
	movements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_movements_total",
		Help: "Recorded stock movements, labeled by direction.",
	}, []string{"direction"})
	insufficientStock := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stock_insufficient_total",
		Help: "Debits rejected because the balance was too low.",
	})
	invoicesIssued := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "invoices_issued_total",
		Help: "Invoices composed and persisted.",
	})
	sequenceRetries := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "document_sequence_retries_total",
		Help: "Document number allocations retried after a collision.",
	})
	reg.MustRegister(transitions, movements, insufficientStock, invoicesIssued, sequenceRetries)
	return &CoreMetrics{
		transitions:       transitions,
		movements:         movements,
		insufficientStock: insufficientStock,
		invoicesIssued:    invoicesIssued,
		sequenceRetries:   sequenceRetries,
	}
}

// IncTransition counts one successful workflow transition.
func (c *CoreMetrics) IncTransition(toStatus string) {
	if c == nil || c.transitions == nil {
		return
	}
	c.transitions.WithLabelValues(toStatus).Inc()
}

// IncMovement counts one appended ledger row.
func (c *CoreMetrics) IncMovement(direction string) {
	if c == nil || c.movements == nil {
		return
	}
	c.movements.WithLabelValues(direction).Inc()
}

// IncInsufficientStock counts one rejected debit.
func (c *CoreMetrics) IncInsufficientStock() {
	if c == nil || c.insufficientStock == nil {
		return
	}
	c.insufficientStock.Inc()
}

// IncInvoiceIssued counts one composed invoice.
func (c *CoreMetrics) IncInvoiceIssued() {
	if c == nil || c.invoicesIssued == nil {
		return
	}
	c.invoicesIssued.Inc()
}

// IncSequenceRetry counts one retried ordinal allocation.
func (c *CoreMetrics) IncSequenceRetry() {
	if c == nil || c.sequenceRetries == nil {
		return
	}
	c.sequenceRetries.Inc()
}
