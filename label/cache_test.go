package label

import (
	"testing"

	"github.com/signalsfoundry/aurora-compass/target"
)

func TestCache_NoFlickerOnCoordinateJitter(t *testing.T) {
	c := NewCache()

	a := target.Target{ID: "aur-1", LatitudeDeg: 67.5, LongitudeDeg: 22.1}
	if !c.NoteSelection(a) {
		t.Fatalf("first selection must request a resolution")
	}
	if !c.ApplyResolution(Point{ID: "aur-1", LatitudeDeg: 67.5, LongitudeDeg: 22.1, Name: "Kiruna"}, "aur-1") {
		t.Fatalf("resolution for the selected target must apply")
	}

	// Same target, jittered coordinates: keep the name, skip the request.
	jittered := a
	jittered.LatitudeDeg += 0.001
	if c.NoteSelection(jittered) {
		t.Errorf("re-selection of a resolved target must not re-request")
	}
	if name, ok := c.Name(); !ok || name != "Kiruna" {
		t.Errorf("Name() = %q, %v, want %q", name, ok, "Kiruna")
	}
}

func TestCache_ClearsOnRealMove(t *testing.T) {
	c := NewCache()

	a := target.Target{ID: "aur-1", LatitudeDeg: 67.5, LongitudeDeg: 22.1}
	c.NoteSelection(a)
	c.ApplyResolution(Point{ID: "aur-1", LatitudeDeg: 67.5, LongitudeDeg: 22.1, Name: "Kiruna"}, "aur-1")

	// A different target far away clears the stale name before the new
	// resolution completes.
	b := target.Target{ID: "aur-2", LatitudeDeg: 64.0, LongitudeDeg: -19.3}
	if !c.NoteSelection(b) {
		t.Fatalf("selection of a new target must request a resolution")
	}
	if name, ok := c.Name(); ok {
		t.Errorf("Name() = %q after real move, want cleared", name)
	}
}

func TestCache_KeepsNearbyNameAcrossIDChange(t *testing.T) {
	c := NewCache()

	a := target.Target{ID: "aur-1", LatitudeDeg: 67.5, LongitudeDeg: 22.1}
	c.NoteSelection(a)
	c.ApplyResolution(Point{ID: "aur-1", LatitudeDeg: 67.5, LongitudeDeg: 22.1, Name: "Kiruna"}, "aur-1")

	// A different ID at nearly the same location: the feed re-keyed the
	// same real-world point. The old name stays up while the fresh
	// resolution is in flight.
	b := target.Target{ID: "aur-1b", LatitudeDeg: 67.52, LongitudeDeg: 22.15}
	if !c.NoteSelection(b) {
		t.Fatalf("new ID must still request a resolution")
	}
	if name, ok := c.Name(); !ok || name != "Kiruna" {
		t.Errorf("Name() = %q, %v, want retained %q", name, ok, "Kiruna")
	}
}

func TestCache_UnresolvedSameIDRequestsAgain(t *testing.T) {
	c := NewCache()

	a := target.Target{ID: "aur-1", LatitudeDeg: 67.5, LongitudeDeg: 22.1}
	if !c.NoteSelection(a) {
		t.Fatalf("first selection must request")
	}
	// Resolution came back empty (service failure): a later selection of
	// the same target tries again.
	c.ApplyResolution(Point{ID: "aur-1", LatitudeDeg: 67.5, LongitudeDeg: 22.1}, "aur-1")
	if !c.NoteSelection(a) {
		t.Errorf("selection with an empty cached name must re-request")
	}
}

func TestCache_DiscardsStaleResolution(t *testing.T) {
	c := NewCache()

	a := target.Target{ID: "aur-1", LatitudeDeg: 67.5, LongitudeDeg: 22.1}
	b := target.Target{ID: "aur-2", LatitudeDeg: 64.0, LongitudeDeg: -19.3}
	c.NoteSelection(a)
	c.NoteSelection(b)

	// The slow resolution for the earlier selection completes after the
	// selection moved on; it must not overwrite.
	if c.ApplyResolution(Point{ID: "aur-1", LatitudeDeg: 67.5, LongitudeDeg: 22.1, Name: "Kiruna"}, "aur-2") {
		t.Errorf("stale resolution was applied")
	}
	if _, ok := c.Name(); ok {
		t.Errorf("stale resolution populated the cache")
	}

	if c.ApplyResolution(Point{ID: "aur-2", LatitudeDeg: 64.0, LongitudeDeg: -19.3, Name: "Hella"}, "aur-2") == false {
		t.Fatalf("current resolution was rejected")
	}
	if name, _ := c.Name(); name != "Hella" {
		t.Errorf("Name() = %q, want %q", name, "Hella")
	}

	if _, _, stale := c.Stats(); stale != 1 {
		t.Errorf("stale counter = %d, want 1", stale)
	}
}

func TestCache_Clear(t *testing.T) {
	c := NewCache()
	c.NoteSelection(target.Target{ID: "aur-1", LatitudeDeg: 67.5, LongitudeDeg: 22.1})
	c.ApplyResolution(Point{ID: "aur-1", Name: "Kiruna"}, "aur-1")

	c.Clear()
	if _, ok := c.Name(); ok {
		t.Errorf("Name() reported a value after Clear")
	}
}
