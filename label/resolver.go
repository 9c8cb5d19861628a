// Package label resolves and caches human-readable names for selected
// activity targets.
package label

import "context"

// Point is a coordinate pair submitted for name resolution, annotated with
// the resolved name on the way back.
type Point struct {
	ID           string
	LatitudeDeg  float64
	LongitudeDeg float64
	Name         string
}

// Resolver turns coordinates into display names. Implementations may take
// unbounded time and may fail silently by returning fewer entries than
// requested (or none at all); callers treat an absent result as "stay
// unresolved" and never retry on their own.
type Resolver interface {
	Resolve(ctx context.Context, points []Point) ([]Point, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, points []Point) ([]Point, error)

func (f ResolverFunc) Resolve(ctx context.Context, points []Point) ([]Point, error) {
	return f(ctx, points)
}
