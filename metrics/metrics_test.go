package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	m.Report("campaign_created", OutcomeCreated)
	m.Report("campaign_created", OutcomeDuplicate)
	m.Report("campaign_created", OutcomeDuplicate)
	m.Submission("successful")
	m.NonceResync()
	m.Scanned(1500)

	if v := testutil.ToFloat64(m.reports.WithLabelValues(
		"campaign_created", OutcomeDuplicate)); v != 2 {
		t.Fatalf("expected 2 duplicates, got %v", v)
	}

	if v := testutil.ToFloat64(m.nonceResync); v != 1 {
		t.Fatalf("expected 1 resync, got %v", v)
	}

	if v := testutil.ToFloat64(m.scanned); v != 1500 {
		t.Fatalf("expected block 1500, got %v", v)
	}

	families, err := registry.Gather()
	if err != nil {
		t.Fatal(err)
	}

	if len(families) != 4 {
		t.Fatalf("expected 4 metric families, got %d", len(families))
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics

	m.Report("ticket_purchased", OutcomeCreated)
	m.Submission("reverted")
	m.NonceResync()
	m.Scanned(1)
}
