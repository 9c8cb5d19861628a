package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/signalsfoundry/aurora-compass/api"
	"github.com/signalsfoundry/aurora-compass/engine"
	"github.com/signalsfoundry/aurora-compass/feed"
	"github.com/signalsfoundry/aurora-compass/geo"
	"github.com/signalsfoundry/aurora-compass/internal/logging"
	"github.com/signalsfoundry/aurora-compass/internal/observability"
	"github.com/signalsfoundry/aurora-compass/label"
	"github.com/signalsfoundry/aurora-compass/target"
)

func main() {
	catalogPath := flag.String("catalog", "configs/activity_catalog.json", "path to the activity-point catalog JSON")
	listenAddr := flag.String("listen", ":8080", "HTTP listen address")
	hemisphereFlag := flag.String("hemisphere", "north", "initial hemisphere (north or south)")
	targetAltitude := flag.Float64("target-altitude", engine.DefaultTargetAltitudeMeters, "modeled target altitude in metres")
	simulate := flag.Bool("simulate", true, "drive the engine from a simulated observer feed")
	simTick := flag.Duration("sim-tick", time.Second, "simulated feed tick interval")
	simLat := flag.Float64("sim-lat", 65.0, "simulated observer start latitude")
	simLon := flag.Float64("sim-lon", 20.0, "simulated observer start longitude")
	geocoderURL := flag.String("geocoder-url", "", "reverse geocoder base URL (empty uses the public Nominatim instance)")

	flag.Parse()

	log := logging.NewFromEnv()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	collector, err := observability.NewPointerCollector(nil)
	if err != nil {
		log.Error(ctx, "metrics setup failed", logging.Err(err))
		os.Exit(1)
	}

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "tracing setup failed", logging.Err(err))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)

	hemisphere, err := target.ParseHemisphere(*hemisphereFlag)
	if err != nil {
		log.Error(ctx, "invalid hemisphere flag", logging.Err(err))
		os.Exit(1)
	}

	catalog := target.NewCatalog()
	if err := loadCatalogFile(catalog, *catalogPath); err != nil {
		log.Error(ctx, "catalog load failed",
			logging.String("path", *catalogPath), logging.Err(err))
		os.Exit(1)
	}
	log.Info(ctx, "catalog loaded",
		logging.String("path", *catalogPath),
		logging.Int("targets", catalog.Len()))

	resolver := label.NewNominatimResolver(*geocoderURL, "aurora-compass/1.0")

	eng := engine.New(engine.Config{
		Catalog:              catalog,
		Resolver:             resolver,
		Hemisphere:           hemisphere,
		TargetAltitudeMeters: *targetAltitude,
		Logger:               log,
		Metrics:              collector,
	})
	go eng.Run(ctx)

	if *simulate {
		source := &feed.SimulatedSource{
			Start:                  geo.GeoPoint{LatitudeDeg: *simLat, LongitudeDeg: *simLon},
			WalkSpeedDegPerTick:    0.01,
			HeadingSweepDegPerTick: 5,
			Tick:                   *simTick,
		}
		updates := make(chan feed.Update, 16)
		go func() {
			if err := source.Run(ctx, updates); err != nil && ctx.Err() == nil {
				log.Warn(ctx, "feed stopped", logging.Err(err))
			}
		}()
		go func() {
			for u := range updates {
				switch u.Kind {
				case feed.PositionUpdate:
					eng.UpdatePosition(u.Position)
				case feed.HeadingUpdate:
					eng.UpdateHeading(u.HeadingDeg)
				}
			}
		}()
	}

	server := &http.Server{
		Addr:              *listenAddr,
		Handler:           api.NewServer(eng, catalog, collector, log).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Warn(shutdownCtx, "http shutdown failed", logging.Err(err))
		}
	}()

	log.Info(ctx, "listening",
		logging.String("addr", *listenAddr),
		logging.String("hemisphere", hemisphere.String()),
		logging.Float64("target_altitude_m", *targetAltitude))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error(ctx, "http server failed", logging.Err(err))
		os.Exit(1)
	}
}

func loadCatalogFile(c *target.Catalog, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open catalog %q: %w", path, err)
	}
	defer f.Close()

	if _, err := target.LoadCatalog(c, f); err != nil {
		return fmt.Errorf("load catalog %q: %w", path, err)
	}
	return nil
}
