// Package feed supplies observer position and heading updates to the
// pointing engine. The real device sensors live outside this repository;
// implementations here stand in for them.
package feed

import (
	"context"

	"github.com/signalsfoundry/aurora-compass/geo"
)

// UpdateKind distinguishes position from heading updates.
type UpdateKind int

const (
	PositionUpdate UpdateKind = iota
	HeadingUpdate
)

// Update is a single sensor reading. Position and heading arrive
// independently and at irregular intervals.
type Update struct {
	Kind       UpdateKind
	Position   geo.GeoPoint
	HeadingDeg float64
}

// Source produces a stream of updates until the context is cancelled. A
// source may be absent entirely (location permission withheld); consumers
// treat the missing stream as "no observer yet".
type Source interface {
	Run(ctx context.Context, out chan<- Update) error
}
