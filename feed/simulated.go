package feed

import (
	"context"
	"math"
	"time"

	"github.com/signalsfoundry/aurora-compass/geo"
)

// SimulatedSource emits a deterministic walking observer and a steadily
// sweeping compass heading. It drives the demo binary and exercises the
// engine without device sensors.
type SimulatedSource struct {
	Start geo.GeoPoint
	// WalkSpeedDegPerTick moves the observer north-east by this many
	// degrees of latitude (and half as many of longitude) per tick.
	WalkSpeedDegPerTick float64
	// HeadingSweepDegPerTick advances the heading per tick; the heading
	// wraps at 360 the way a real compass reading does.
	HeadingSweepDegPerTick float64
	Tick                   time.Duration
}

// Run emits alternating position and heading updates on every tick until
// ctx is cancelled. It always returns ctx.Err().
func (s *SimulatedSource) Run(ctx context.Context, out chan<- Update) error {
	tick := s.Tick
	if tick <= 0 {
		tick = time.Second
	}

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	position := s.Start
	heading := 0.0

	// Seed consumers immediately instead of waiting a full tick.
	if err := emit(ctx, out, Update{Kind: PositionUpdate, Position: position}); err != nil {
		return err
	}
	if err := emit(ctx, out, Update{Kind: HeadingUpdate, HeadingDeg: heading}); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			position.LatitudeDeg = geo.ClampLatitude(position.LatitudeDeg + s.WalkSpeedDegPerTick)
			position.LongitudeDeg = geo.WrapLongitude(position.LongitudeDeg + s.WalkSpeedDegPerTick/2)
			heading = math.Mod(heading+s.HeadingSweepDegPerTick, 360)
			if heading < 0 {
				heading += 360
			}

			if err := emit(ctx, out, Update{Kind: PositionUpdate, Position: position}); err != nil {
				return err
			}
			if err := emit(ctx, out, Update{Kind: HeadingUpdate, HeadingDeg: heading}); err != nil {
				return err
			}
		}
	}
}

func emit(ctx context.Context, out chan<- Update, u Update) error {
	select {
	case out <- u:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
