package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PointerCollector bundles Prometheus metrics for the pointing engine and
// provides a ready-to-serve /metrics handler.
type PointerCollector struct {
	gatherer prometheus.Gatherer

	UpdatesTotal     *prometheus.CounterVec
	SelectionsTotal  *prometheus.CounterVec
	ResolverRequests *prometheus.CounterVec
	ResolverDuration prometheus.Histogram

	CatalogTargets   prometheus.Gauge
	CurrentElevation prometheus.Gauge
	CurrentRotation  prometheus.Gauge
}

// NewPointerCollector registers engine Prometheus metrics against the
// provided registerer, defaulting to the global Prometheus registry when
// nil. Re-registration of identical collectors is tolerated so tests and
// restarts can share a registry.
func NewPointerCollector(reg prometheus.Registerer) (*PointerCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	updates := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pointer_updates_total",
		Help: "Total number of processed engine events, labeled by kind (position, heading, catalog, resolution).",
	}, []string{"kind"})
	updates, err := registerCounterVec(reg, updates, "pointer_updates_total")
	if err != nil {
		return nil, err
	}

	selections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pointer_selections_total",
		Help: "Total number of best-target selections, labeled by hemisphere and outcome (selected, none).",
	}, []string{"hemisphere", "outcome"})
	selections, err = registerCounterVec(reg, selections, "pointer_selections_total")
	if err != nil {
		return nil, err
	}

	resolverRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pointer_resolver_requests_total",
		Help: "Total number of display-name resolution attempts, labeled by outcome (resolved, empty, error).",
	}, []string{"outcome"})
	resolverRequests, err = registerCounterVec(reg, resolverRequests, "pointer_resolver_requests_total")
	if err != nil {
		return nil, err
	}

	resolverDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "pointer_resolver_duration_seconds",
		Help:    "Display-name resolver latency in seconds.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	})
	resolverDuration, err = registerHistogram(reg, resolverDuration, "pointer_resolver_duration_seconds")
	if err != nil {
		return nil, err
	}

	catalogTargets, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "pointer_catalog_targets",
		Help: "Current number of activity targets in the catalog.",
	}), "pointer_catalog_targets")
	if err != nil {
		return nil, err
	}
	currentElevation, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "pointer_current_elevation_degrees",
		Help: "Elevation angle toward the currently selected target.",
	}), "pointer_current_elevation_degrees")
	if err != nil {
		return nil, err
	}
	currentRotation, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "pointer_current_rotation_degrees",
		Help: "Accumulated continuous rotation driving the indicator.",
	}), "pointer_current_rotation_degrees")
	if err != nil {
		return nil, err
	}

	return &PointerCollector{
		gatherer:         gatherer,
		UpdatesTotal:     updates,
		SelectionsTotal:  selections,
		ResolverRequests: resolverRequests,
		ResolverDuration: resolverDuration,
		CatalogTargets:   catalogTargets,
		CurrentElevation: currentElevation,
		CurrentRotation:  currentRotation,
	}, nil
}

// RecordUpdate counts a processed engine event of the given kind.
func (c *PointerCollector) RecordUpdate(kind string) {
	if c == nil || c.UpdatesTotal == nil {
		return
	}
	c.UpdatesTotal.WithLabelValues(kind).Inc()
}

// RecordSelection counts a selection pass and tracks the resulting
// elevation gauge when a target was chosen.
func (c *PointerCollector) RecordSelection(hemisphere string, selected bool, elevationDeg float64) {
	if c == nil {
		return
	}
	outcome := "none"
	if selected {
		outcome = "selected"
	}
	if c.SelectionsTotal != nil {
		c.SelectionsTotal.WithLabelValues(hemisphere, outcome).Inc()
	}
	if selected && c.CurrentElevation != nil {
		c.CurrentElevation.Set(elevationDeg)
	}
}

// RecordResolver counts a resolver attempt and observes its duration.
func (c *PointerCollector) RecordResolver(outcome string, elapsed time.Duration) {
	if c == nil {
		return
	}
	if c.ResolverRequests != nil {
		c.ResolverRequests.WithLabelValues(outcome).Inc()
	}
	if c.ResolverDuration != nil {
		c.ResolverDuration.Observe(elapsed.Seconds())
	}
}

// SetCatalogSize tracks the catalog gauge.
func (c *PointerCollector) SetCatalogSize(n int) {
	if c == nil || c.CatalogTargets == nil {
		return
	}
	c.CatalogTargets.Set(float64(n))
}

// SetRotation tracks the continuous-rotation gauge.
func (c *PointerCollector) SetRotation(deg float64) {
	if c == nil || c.CurrentRotation == nil {
		return
	}
	c.CurrentRotation.Set(deg)
}

// Handler exposes a ready-to-use /metrics handler.
func (c *PointerCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
