package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "admon"

// Reconciliation outcomes.
const (
	OutcomeCreated   = "created"
	OutcomeDuplicate = "duplicate"
	OutcomeRace      = "race"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
)

// Metrics holds service counters. A nil *Metrics is a no-op.
type Metrics struct {
	reports     *prometheus.CounterVec
	submissions *prometheus.CounterVec
	nonceResync prometheus.Counter
	scanned     prometheus.Gauge
}

// New creates and registers the counters. A nil registry creates
// unregistered counters.
func New(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		reports: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconcile_reports_total",
			Help:      "Total number of reconciled on-chain reports",
		}, []string{"event", "outcome"}),
		submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oracle_submissions_total",
			Help:      "Total number of oracle transactions by result",
		}, []string{"result"}),
		nonceResync: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oracle_nonce_resync_total",
			Help:      "Total number of oracle nonce re-fetches",
		}),
		scanned: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "scanner_last_block",
			Help:      "Last block scanned for protocol events",
		}),
	}
}

// Report counts a reconciled event.
func (m *Metrics) Report(event, outcome string) {
	if m == nil {
		return
	}
	m.reports.WithLabelValues(event, outcome).Inc()
}

// Submission counts an oracle transaction result.
func (m *Metrics) Submission(result string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(result).Inc()
}

// NonceResync counts a nonce re-fetch.
func (m *Metrics) NonceResync() {
	if m == nil {
		return
	}
	m.nonceResync.Inc()
}

// Scanned sets the last scanned block.
func (m *Metrics) Scanned(block uint64) {
	if m == nil {
		return
	}
	m.scanned.Set(float64(block))
}
