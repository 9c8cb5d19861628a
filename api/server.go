// Package api exposes the pointing engine's state over HTTP for
// presentation layers and operators.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/signalsfoundry/aurora-compass/engine"
	"github.com/signalsfoundry/aurora-compass/internal/logging"
	"github.com/signalsfoundry/aurora-compass/internal/observability"
	"github.com/signalsfoundry/aurora-compass/target"
)

// Server routes HTTP requests to the engine and catalog.
type Server struct {
	engine  *engine.Engine
	catalog *target.Catalog
	metrics *observability.PointerCollector
	log     logging.Logger
}

// NewServer constructs the HTTP surface.
func NewServer(e *engine.Engine, c *target.Catalog, m *observability.PointerCollector, log logging.Logger) *Server {
	if log == nil {
		log = logging.Noop()
	}
	return &Server{engine: e, catalog: c, metrics: m, log: log}
}

// Routes returns the configured router.
func (s *Server) Routes() http.Handler {
	router := httprouter.New()
	router.GET("/healthz", s.health)
	router.GET("/v1/pointer", s.pointer)
	router.GET("/v1/targets", s.targets)
	router.PUT("/v1/hemisphere", s.setHemisphere)
	router.PUT("/v1/target-altitude", s.setTargetAltitude)
	if s.metrics != nil {
		handler := s.metrics.Handler()
		router.GET("/metrics", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
			handler.ServeHTTP(w, r)
		})
	}
	return router
}

type pointerResponse struct {
	Observer    *observerJSON  `json:"observer,omitempty"`
	HeadingDeg  float64        `json:"heading_deg"`
	Hemisphere  string         `json:"hemisphere"`
	TargetAltM  float64        `json:"target_altitude_meters"`
	Best        *selectionJSON `json:"best,omitempty"`
	RotationDeg *float64       `json:"rotation_deg,omitempty"`
	DisplayName *string        `json:"display_name,omitempty"`
}

type observerJSON struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	AltitudeM float64 `json:"altitude_meters"`
}

type selectionJSON struct {
	ID           string  `json:"id"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	Probability  float64 `json:"probability"`
	AzimuthDeg   float64 `json:"azimuth_deg"`
	ElevationDeg float64 `json:"elevation_deg"`
	SurfaceDistM float64 `json:"surface_distance_meters"`
}

func (s *Server) pointer(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	snap := s.engine.Snapshot()

	resp := pointerResponse{
		HeadingDeg: snap.HeadingDeg,
		Hemisphere: snap.Hemisphere.String(),
		TargetAltM: snap.TargetAltitudeMeters,
	}
	if snap.HasObserver {
		resp.Observer = &observerJSON{
			Latitude:  snap.Observer.LatitudeDeg,
			Longitude: snap.Observer.LongitudeDeg,
			AltitudeM: snap.Observer.AltitudeMeters,
		}
	}
	if snap.Best != nil {
		resp.Best = &selectionJSON{
			ID:           snap.Best.Target.ID,
			Latitude:     snap.Best.Target.LatitudeDeg,
			Longitude:    snap.Best.Target.LongitudeDeg,
			Probability:  snap.Best.Target.Probability,
			AzimuthDeg:   snap.Best.Look.AzimuthDeg,
			ElevationDeg: snap.Best.Look.ElevationDeg,
			SurfaceDistM: snap.Best.Look.SurfaceDistanceMeters,
		}
	}
	if snap.HasRotation {
		rot := snap.RotationDeg
		resp.RotationDeg = &rot
	}
	if snap.HasName {
		name := snap.DisplayName
		resp.DisplayName = &name
	}

	s.writeJSON(w, r, http.StatusOK, resp)
}

type targetJSON struct {
	ID          string  `json:"id"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Probability float64 `json:"probability"`
	DisplayName string  `json:"display_name,omitempty"`
}

func (s *Server) targets(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	all := s.catalog.All()
	out := make([]targetJSON, 0, len(all))
	for _, t := range all {
		out = append(out, targetJSON{
			ID:          t.ID,
			Latitude:    t.LatitudeDeg,
			Longitude:   t.LongitudeDeg,
			Probability: t.Probability,
			DisplayName: t.DisplayName,
		})
	}
	s.writeJSON(w, r, http.StatusOK, map[string]any{"targets": out})
}

func (s *Server) setHemisphere(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body struct {
		Hemisphere string `json:"hemisphere"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "malformed JSON body")
		return
	}
	h, err := target.ParseHemisphere(body.Hemisphere)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	s.engine.SetHemisphere(h)
	s.writeJSON(w, r, http.StatusOK, map[string]string{"hemisphere": h.String()})
}

func (s *Server) setTargetAltitude(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body struct {
		AltitudeMeters float64 `json:"altitude_meters"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "malformed JSON body")
		return
	}
	if body.AltitudeMeters <= 0 {
		s.writeError(w, r, http.StatusBadRequest, "altitude_meters must be positive")
		return
	}

	s.engine.SetTargetAltitude(body.AltitudeMeters)
	s.writeJSON(w, r, http.StatusOK, map[string]float64{"altitude_meters": body.AltitudeMeters})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s.writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error(r.Context(), "encode response failed", logging.Err(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	s.writeJSON(w, r, status, map[string]string{"error": msg})
}
