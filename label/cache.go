package label

import (
	"math"
	"sync"

	"github.com/signalsfoundry/aurora-compass/target"
)

// sameLocationThresholdDeg bounds the L1 coordinate distance under which a
// target with a different ID is still treated as the same real-world
// location. Activity feeds jitter reported coordinates by fractions of a
// degree; blanking the label for that would flicker.
const sameLocationThresholdDeg = 0.1

type entry struct {
	id           string
	latitudeDeg  float64
	longitudeDeg float64
	name         string
}

// Cache holds the resolved display name for the currently selected target
// and decides when a fresh resolution is worth issuing. All methods are
// safe for concurrent use, though the surrounding engine serializes calls
// through its event loop anyway.
type Cache struct {
	mu       sync.Mutex
	resolved *entry

	hits     int64
	requests int64
	stale    int64
}

// NewCache constructs an empty cache.
func NewCache() *Cache {
	return &Cache{}
}

// NoteSelection records that t is now the selected target and reports
// whether the caller should issue a resolution request for it.
//
// A cached name for the same ID is kept as-is and suppresses the request.
// A cached entry for a different ID is cleared only when the new target is
// genuinely elsewhere (L1 coordinate distance above the jitter threshold);
// a nearby entry keeps its name on screen until the fresh resolution
// lands.
func (c *Cache) NoteSelection(t target.Target) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.resolved != nil {
		if c.resolved.id == t.ID && c.resolved.name != "" {
			c.hits++
			return false
		}
		if c.resolved.id != t.ID {
			l1 := math.Abs(c.resolved.latitudeDeg-t.LatitudeDeg) +
				math.Abs(c.resolved.longitudeDeg-t.LongitudeDeg)
			if l1 > sameLocationThresholdDeg {
				c.resolved = nil
			}
		}
	}

	c.requests++
	return true
}

// ApplyResolution merges a completed resolution into the cache. The result
// is applied only when it still names the currently selected target;
// anything else is a stale completion from an earlier selection and is
// discarded, since a request for the current selection is already in
// flight. Returns whether the result was applied.
func (c *Cache) ApplyResolution(p Point, selectedID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if p.ID != selectedID {
		c.stale++
		return false
	}

	c.resolved = &entry{
		id:           p.ID,
		latitudeDeg:  p.LatitudeDeg,
		longitudeDeg: p.LongitudeDeg,
		name:         p.Name,
	}
	return true
}

// Name returns the cached display name, and false when nothing is
// resolved or the resolved name is empty.
func (c *Cache) Name() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.resolved == nil || c.resolved.name == "" {
		return "", false
	}
	return c.resolved.name, true
}

// Clear drops the cached entry. Used when the widget owning the label is
// torn down.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resolved = nil
}

// Stats reports cache-hit, request, and discarded-stale counters for
// diagnostics.
func (c *Cache) Stats() (hits, requests, stale int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.requests, c.stale
}
