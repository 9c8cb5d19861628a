package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestCollectorRecordsSelections(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewPointerCollector(reg)
	if err != nil {
		t.Fatalf("NewPointerCollector: %v", err)
	}

	collector.RecordSelection("north", true, 12.5)
	collector.RecordSelection("north", true, 14.0)
	collector.RecordSelection("south", false, 0)

	if got := testutil.ToFloat64(collector.SelectionsTotal.WithLabelValues("north", "selected")); got != 2 {
		t.Errorf("pointer_selections_total{north,selected} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(collector.SelectionsTotal.WithLabelValues("south", "none")); got != 1 {
		t.Errorf("pointer_selections_total{south,none} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.CurrentElevation); got != 14.0 {
		t.Errorf("pointer_current_elevation_degrees = %v, want 14.0", got)
	}
}

func TestCollectorRecordsResolverDuration(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewPointerCollector(reg)
	if err != nil {
		t.Fatalf("NewPointerCollector: %v", err)
	}

	collector.RecordResolver("resolved", 25*time.Millisecond)
	collector.RecordResolver("error", 5*time.Millisecond)

	if got := testutil.ToFloat64(collector.ResolverRequests.WithLabelValues("resolved")); got != 1 {
		t.Errorf("pointer_resolver_requests_total{resolved} = %v, want 1", got)
	}
	if count := histogramSampleCount(t, reg, "pointer_resolver_duration_seconds"); count != 2 {
		t.Errorf("pointer_resolver_duration_seconds sample_count = %d, want 2", count)
	}
}

func TestCollectorToleratesReRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPointerCollector(reg); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	second, err := NewPointerCollector(reg)
	if err != nil {
		t.Fatalf("second registration: %v", err)
	}
	second.RecordUpdate("heading")
	if got := testutil.ToFloat64(second.UpdatesTotal.WithLabelValues("heading")); got != 1 {
		t.Errorf("pointer_updates_total{heading} = %v, want 1", got)
	}
}

func TestMetricsHandlerExposesGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewPointerCollector(reg)
	if err != nil {
		t.Fatalf("NewPointerCollector: %v", err)
	}
	collector.SetCatalogSize(7)
	collector.SetRotation(415)
	collector.RecordUpdate("position")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("/metrics status = %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	for _, metric := range []string{
		"pointer_updates_total",
		"pointer_catalog_targets 7",
		"pointer_current_rotation_degrees 415",
	} {
		if !strings.Contains(body, metric) {
			t.Errorf("/metrics body missing %q", metric)
		}
	}
}

func histogramSampleCount(t *testing.T, g prometheus.Gatherer, name string) uint64 {
	t.Helper()
	families, err := g.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	for _, fam := range families {
		if fam.GetName() != name || fam.GetType() != dto.MetricType_HISTOGRAM {
			continue
		}
		var total uint64
		for _, m := range fam.GetMetric() {
			total += m.GetHistogram().GetSampleCount()
		}
		return total
	}
	t.Fatalf("histogram %q not found", name)
	return 0
}
