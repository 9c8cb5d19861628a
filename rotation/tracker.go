// Package rotation converts repeatedly-updated absolute bearings into a
// continuous rotation value that an animation can follow without ever
// jumping across the 0°/360° seam.
package rotation

import "math"

// Tracker accumulates an unbounded rotation angle from successive
// (heading, target azimuth) observations. The zero value is ready to use
// and starts uninitialized; it is not safe for concurrent use.
type Tracker struct {
	rotation    float64
	lastHeading float64
	tracking    bool
}

// NewTracker returns an uninitialized tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Update folds a new device heading and target azimuth (both compass
// degrees) into the accumulated rotation and returns the new value.
//
// The first observation normalizes the indicator angle into [0,360) for a
// clean first frame. Every later observation moves the accumulated value
// by the shortest angular path, so consecutive results never differ by
// more than 180° and the value grows or shrinks without bound instead of
// wrapping.
func (t *Tracker) Update(headingDeg, targetAzimuthDeg float64) float64 {
	targetRotation := targetAzimuthDeg - headingDeg

	if !t.tracking {
		t.rotation = normalizeDeg(targetRotation)
		t.lastHeading = headingDeg
		t.tracking = true
		return t.rotation
	}

	currentMod := normalizeDeg(t.rotation)
	targetMod := normalizeDeg(targetRotation)

	delta := targetMod - currentMod
	if delta > 180 {
		delta -= 360
	} else if delta < -180 {
		delta += 360
	}

	t.rotation += delta
	t.lastHeading = headingDeg
	return t.rotation
}

// Rotation returns the accumulated rotation, and false before the first
// update.
func (t *Tracker) Rotation() (float64, bool) {
	return t.rotation, t.tracking
}

// LastHeading returns the most recent heading observation. It is kept for
// diagnostics only and plays no part in the update arithmetic.
func (t *Tracker) LastHeading() (float64, bool) {
	return t.lastHeading, t.tracking
}

// Reset discards all state, returning the tracker to uninitialized. Used
// when the display driving the rotation is recreated.
func (t *Tracker) Reset() {
	*t = Tracker{}
}

// normalizeDeg maps any angle into [0,360).
func normalizeDeg(deg float64) float64 {
	m := math.Mod(deg, 360)
	if m < 0 {
		m += 360
	}
	return m
}
