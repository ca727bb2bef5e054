package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// SalesMetrics records sale lifecycle counters for the consistency coordinator.
type SalesMetrics struct {
	recorded      prometheus.Counter
	reversed      prometheus.Counter
	fixups        *prometheus.CounterVec
	partialWrites *prometheus.CounterVec
	orphaned      prometheus.Counter
}

// NewSalesMetrics registers the sale metrics on the provided registerer.
func NewSalesMetrics(reg prometheus.Registerer) *SalesMetrics {
	if reg == nil {
		return &SalesMetrics{}
	}
	recorded := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sales_recorded_total",
		Help: "Receipts written by the sales coordinator.",
	})
	reversed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sales_reversed_total",
		Help: "Receipts deleted through sale reversal.",
	})
	fixups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sales_inventory_fixups_total",
		Help: "Inventory fix-up executions by outcome.",
	}, []string{"outcome"})
	partialWrites := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sales_partial_write_failures_total",
		Help: "Multi-step operations that completed partially.",
	}, []string{"operation"})
	orphaned := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sales_orphaned_references_total",
		Help: "Reversals whose receipt matched no inventory item.",
	})
	reg.MustRegister(recorded, reversed, fixups, partialWrites, orphaned)
	return &SalesMetrics{
		recorded:      recorded,
		reversed:      reversed,
		fixups:        fixups,
		partialWrites: partialWrites,
		orphaned:      orphaned,
	}
}

// IncRecorded counts a completed RecordSale.
func (s *SalesMetrics) IncRecorded() {
	if s == nil || s.recorded == nil {
		return
	}
	s.recorded.Inc()
}

// IncReversed counts a completed ReverseSale.
func (s *SalesMetrics) IncReversed() {
	if s == nil || s.reversed == nil {
		return
	}
	s.reversed.Inc()
}

// IncFixup counts a fix-up execution with the given outcome.
func (s *SalesMetrics) IncFixup(outcome string) {
	if s == nil || s.fixups == nil {
		return
	}
	s.fixups.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncPartialWrite counts a partially completed multi-step operation.
func (s *SalesMetrics) IncPartialWrite(operation string) {
	if s == nil || s.partialWrites == nil {
		return
	}
	s.partialWrites.WithLabelValues(normalizeLabel(operation)).Inc()
}

// IncOrphaned counts a reversal that found no matching inventory.
func (s *SalesMetrics) IncOrphaned() {
	if s == nil || s.orphaned == nil {
		return
	}
	s.orphaned.Inc()
}

func normalizeLabel(value string) string {
	label := strings.TrimSpace(strings.ToLower(value))
	if label == "" {
		return "unknown"
	}
	return strings.ReplaceAll(label, " ", "_")
}
