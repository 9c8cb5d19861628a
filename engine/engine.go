// Package engine runs the pointing loop: it consumes observer position and
// heading updates, selects the best activity target, smooths the indicator
// rotation, and keeps a display name resolved for the selection.
package engine

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/signalsfoundry/aurora-compass/geo"
	"github.com/signalsfoundry/aurora-compass/internal/logging"
	"github.com/signalsfoundry/aurora-compass/internal/observability"
	"github.com/signalsfoundry/aurora-compass/label"
	"github.com/signalsfoundry/aurora-compass/rotation"
	"github.com/signalsfoundry/aurora-compass/target"
)

// DefaultTargetAltitudeMeters is the altitude at which activity targets are
// modeled above the surface when no override is configured.
const DefaultTargetAltitudeMeters = 110000.0

type eventKind int

const (
	positionEvent eventKind = iota
	headingEvent
	hemisphereEvent
	altitudeEvent
	catalogEvent
	resolutionEvent
	resetRotationEvent
)

func (k eventKind) String() string {
	switch k {
	case positionEvent:
		return "position"
	case headingEvent:
		return "heading"
	case hemisphereEvent:
		return "hemisphere"
	case altitudeEvent:
		return "altitude"
	case catalogEvent:
		return "catalog"
	case resolutionEvent:
		return "resolution"
	case resetRotationEvent:
		return "reset_rotation"
	}
	return "unknown"
}

type event struct {
	kind       eventKind
	position   geo.GeoPoint
	heading    float64
	hemisphere target.Hemisphere
	altitude   float64
	resolved   label.Point
}

// Snapshot is an immutable view of the engine's output for a presentation
// layer. Best, RotationDeg, and DisplayName are each optional: a widget
// renders whatever subset is available.
type Snapshot struct {
	Observer    geo.GeoPoint
	HasObserver bool
	HeadingDeg  float64

	Hemisphere           target.Hemisphere
	TargetAltitudeMeters float64

	Best        *target.Selection
	RotationDeg float64
	HasRotation bool
	DisplayName string
	HasName     bool
}

// Config carries the engine's collaborators and initial settings.
type Config struct {
	Catalog              *target.Catalog
	Resolver             label.Resolver
	Hemisphere           target.Hemisphere
	TargetAltitudeMeters float64 // <= 0 selects the default
	Logger               logging.Logger
	Metrics              *observability.PointerCollector
}

// Engine owns all pointing state. Every mutation flows through a single
// event loop goroutine (Run); accessors take copies, so concurrent readers
// never observe a half-applied update.
type Engine struct {
	catalog  *target.Catalog
	resolver label.Resolver
	log      logging.Logger
	metrics  *observability.PointerCollector

	events chan event

	// Loop-owned state; touched only inside Run.
	observer    geo.GeoPoint
	hasObserver bool
	heading     float64
	hemisphere  target.Hemisphere
	targetAlt   float64
	targets     []target.Target
	tracker     *rotation.Tracker
	cache       *label.Cache
	selectedID  string

	mu   sync.RWMutex
	snap Snapshot
}

// New constructs an engine. Run must be started before the update methods
// are used.
func New(cfg Config) *Engine {
	if cfg.Logger == nil {
		cfg.Logger = logging.Noop()
	}
	if cfg.TargetAltitudeMeters <= 0 {
		cfg.TargetAltitudeMeters = DefaultTargetAltitudeMeters
	}
	if cfg.Catalog == nil {
		cfg.Catalog = target.NewCatalog()
	}

	e := &Engine{
		catalog:    cfg.Catalog,
		resolver:   cfg.Resolver,
		log:        cfg.Logger,
		metrics:    cfg.Metrics,
		events:     make(chan event, 128),
		hemisphere: cfg.Hemisphere,
		targetAlt:  cfg.TargetAltitudeMeters,
		tracker:    rotation.NewTracker(),
		cache:      label.NewCache(),
	}
	e.snap = Snapshot{Hemisphere: e.hemisphere, TargetAltitudeMeters: e.targetAlt}

	e.catalog.Subscribe(func(target.Event) {
		e.enqueue(event{kind: catalogEvent})
	})
	return e
}

// Run processes events until ctx is cancelled. It must be called exactly
// once, and owns every piece of mutable pointing state while it runs.
func (e *Engine) Run(ctx context.Context) {
	// Pick up whatever the catalog already holds.
	e.reloadTargets()
	e.recompute(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-e.events:
			e.apply(ctx, ev)
		}
	}
}

// UpdatePosition feeds a new observer position into the loop.
func (e *Engine) UpdatePosition(p geo.GeoPoint) {
	e.enqueue(event{kind: positionEvent, position: p})
}

// UpdateHeading feeds a new compass heading (degrees) into the loop.
func (e *Engine) UpdateHeading(deg float64) {
	e.enqueue(event{kind: headingEvent, heading: deg})
}

// SetHemisphere switches which hemisphere's targets are considered.
func (e *Engine) SetHemisphere(h target.Hemisphere) {
	e.enqueue(event{kind: hemisphereEvent, hemisphere: h})
}

// SetTargetAltitude changes the modeled target altitude in metres.
func (e *Engine) SetTargetAltitude(meters float64) {
	e.enqueue(event{kind: altitudeEvent, altitude: meters})
}

// ResetRotation discards the accumulated rotation, as when the display
// driving it is recreated. The next update starts from a normalized angle.
func (e *Engine) ResetRotation() {
	e.enqueue(event{kind: resetRotationEvent})
}

// Snapshot returns the current engine output.
func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	snap := e.snap
	if snap.Best != nil {
		sel := *snap.Best
		snap.Best = &sel
	}
	return snap
}

func (e *Engine) enqueue(ev event) {
	e.events <- ev
}

func (e *Engine) apply(ctx context.Context, ev event) {
	if e.metrics != nil {
		e.metrics.RecordUpdate(ev.kind.String())
	}

	switch ev.kind {
	case positionEvent:
		e.observer = geo.GeoPoint{
			LatitudeDeg:    geo.ClampLatitude(ev.position.LatitudeDeg),
			LongitudeDeg:   geo.WrapLongitude(ev.position.LongitudeDeg),
			AltitudeMeters: ev.position.AltitudeMeters,
		}
		e.hasObserver = true
	case headingEvent:
		e.heading = ev.heading
	case hemisphereEvent:
		e.hemisphere = ev.hemisphere
	case altitudeEvent:
		if ev.altitude > 0 {
			e.targetAlt = ev.altitude
		}
	case catalogEvent:
		e.reloadTargets()
	case resolutionEvent:
		if e.cache.ApplyResolution(ev.resolved, e.selectedID) {
			e.log.Debug(ctx, "display name resolved",
				logging.String("target_id", ev.resolved.ID),
				logging.String("name", ev.resolved.Name))
		}
	case resetRotationEvent:
		e.tracker.Reset()
	}

	e.recompute(ctx)
}

func (e *Engine) reloadTargets() {
	e.targets = e.catalog.All()
	if e.metrics != nil {
		e.metrics.SetCatalogSize(len(e.targets))
	}
}

// recompute runs one selection pass and refreshes the published snapshot.
func (e *Engine) recompute(ctx context.Context) {
	snap := Snapshot{
		Observer:             e.observer,
		HasObserver:          e.hasObserver,
		HeadingDeg:           e.heading,
		Hemisphere:           e.hemisphere,
		TargetAltitudeMeters: e.targetAlt,
	}

	if e.hasObserver {
		if sel, ok := target.SelectBest(e.observer, e.targets, e.hemisphere, e.targetAlt); ok {
			snap.Best = &sel
			snap.RotationDeg = e.tracker.Update(e.heading, sel.Look.AzimuthDeg)
			snap.HasRotation = true

			if sel.Target.ID != e.selectedID {
				e.selectedID = sel.Target.ID
				e.noteSelection(ctx, sel.Target)
			}
			if e.metrics != nil {
				e.metrics.RecordSelection(e.hemisphere.String(), true, sel.Look.ElevationDeg)
				e.metrics.SetRotation(snap.RotationDeg)
			}
		} else {
			e.selectedID = ""
			if rot, ok := e.tracker.Rotation(); ok {
				snap.RotationDeg = rot
				snap.HasRotation = true
			}
			if e.metrics != nil {
				e.metrics.RecordSelection(e.hemisphere.String(), false, 0)
			}
		}
	}

	if name, ok := e.cache.Name(); ok {
		snap.DisplayName = name
		snap.HasName = true
	}

	e.mu.Lock()
	e.snap = snap
	e.mu.Unlock()
}

// noteSelection consults the cache and, when asked to, fires an
// asynchronous resolution whose result is delivered back onto the event
// loop. In-flight resolutions are never cancelled; a stale completion is
// discarded when it arrives.
func (e *Engine) noteSelection(ctx context.Context, t target.Target) {
	if !e.cache.NoteSelection(t) {
		return
	}

	// The catalog already knows a name for this target: no remote call.
	if t.DisplayName != "" {
		e.cache.ApplyResolution(label.Point{
			ID:           t.ID,
			LatitudeDeg:  t.LatitudeDeg,
			LongitudeDeg: t.LongitudeDeg,
			Name:         t.DisplayName,
		}, t.ID)
		return
	}

	if e.resolver == nil {
		return
	}

	point := label.Point{ID: t.ID, LatitudeDeg: t.LatitudeDeg, LongitudeDeg: t.LongitudeDeg}
	go e.resolve(ctx, point)
}

func (e *Engine) resolve(ctx context.Context, point label.Point) {
	ctx, requestID := logging.EnsureRequestID(ctx)
	ctx, span := observability.Tracer().Start(ctx, "resolve_display_name",
		trace.WithAttributes(
			attribute.String("target.id", point.ID),
			attribute.Float64("target.latitude", point.LatitudeDeg),
			attribute.Float64("target.longitude", point.LongitudeDeg),
		))
	defer span.End()

	start := time.Now()
	results, err := e.resolver.Resolve(ctx, []label.Point{point})
	elapsed := time.Since(start)

	outcome := "resolved"
	switch {
	case err != nil:
		outcome = "error"
		span.RecordError(err)
		e.log.Warn(ctx, "display name resolution failed",
			logging.String("request_id", requestID),
			logging.String("target_id", point.ID),
			logging.Err(err))
	case len(results) == 0 || results[0].Name == "":
		outcome = "empty"
	}
	if e.metrics != nil {
		e.metrics.RecordResolver(outcome, elapsed)
	}
	if outcome != "resolved" {
		// Absence is a valid terminal state; the label stays unresolved
		// until the next selection change.
		return
	}

	select {
	case e.events <- event{kind: resolutionEvent, resolved: results[0]}:
	case <-ctx.Done():
	}
}
