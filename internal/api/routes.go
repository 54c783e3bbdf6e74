// Package api provides HTTP handlers for the grid server.
package api

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/opticmap/server/internal/hexgrid"
	"github.com/opticmap/server/internal/service"
)

// RouterConfig contains router configuration.
type RouterConfig struct {
	Service     *service.GridService
	CORSOrigins []string
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Get("/api/regions", regionsHandler)
	r.Get("/api/stats", statsHandler(cfg.Service))
	r.Get("/api/types/{type}/grids", gridSetHandler(cfg.Service))

	// Single-grid endpoints. chi treats '.' as a param delimiter in
	// `{metric}.svg` patterns, so the handler strips the extension
	// from the captured segment.
	r.Get("/grids/{type}/{region}/{side}/{metric}.svg", gridHandler(cfg.Service, hexgrid.FormatSVG))
	r.Get("/grids/{type}/{region}/{side}/{metric}.png", gridHandler(cfg.Service, hexgrid.FormatPNG))
	r.Get("/legend/{type}/{metric}.png", legendHandler(cfg.Service))

	return r
}

func regionsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"regions": hexgrid.KnownRegions(),
		"sides":   hexgrid.KnownSides(),
		"metrics": hexgrid.KnownMetrics(),
	})
}

func statsHandler(svc *service.GridService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, svc.Stats())
	}
}

// gridSetHandler returns the full REGION_side -> metric -> grid
// mapping for a neuron type. ?format=png requests rasterized grids.
func gridSetHandler(svc *service.GridService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		neuronType := chi.URLParam(r, "type")
		format := hexgrid.FormatSVG
		if f := r.URL.Query().Get("format"); f != "" {
			if f != string(hexgrid.FormatSVG) && f != string(hexgrid.FormatPNG) {
				http.Error(w, "unknown format: "+f, http.StatusBadRequest)
				return
			}
			format = hexgrid.Format(f)
		}

		set, err := svc.GridSet(r.Context(), neuronType, format)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, set)
	}
}

func gridHandler(svc *service.GridService, format hexgrid.Format) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		neuronType := chi.URLParam(r, "type")

		region, ok := hexgrid.ParseRegion(chi.URLParam(r, "region"))
		if !ok {
			http.Error(w, "unknown region: "+chi.URLParam(r, "region"), http.StatusBadRequest)
			return
		}
		side, ok := hexgrid.ParseSide(chi.URLParam(r, "side"))
		if !ok {
			http.Error(w, "unknown side: "+chi.URLParam(r, "side"), http.StatusBadRequest)
			return
		}
		metricRaw := strings.TrimSuffix(strings.TrimSuffix(chi.URLParam(r, "metric"), ".svg"), ".png")
		metric, ok := hexgrid.ParseMetric(metricRaw)
		if !ok {
			http.Error(w, "unknown metric: "+metricRaw, http.StatusBadRequest)
			return
		}

		grid, err := svc.Grid(r.Context(), neuronType, region, side, metric, format)
		if err != nil {
			if errors.Is(err, service.ErrNoGrid) {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		writeGrid(w, grid)
	}
}

// writeGrid serves a rendered grid in its actual format. A grid
// requested as PNG may have degraded to SVG; it is served as SVG.
func writeGrid(w http.ResponseWriter, grid hexgrid.RenderedGrid) {
	if grid.Format == hexgrid.FormatPNG {
		payload, ok := strings.CutPrefix(grid.PNG, "data:image/png;base64,")
		if ok {
			data, err := base64.StdEncoding.DecodeString(payload)
			if err == nil {
				w.Header().Set("Content-Type", "image/png")
				w.Write(data)
				return
			}
		}
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write([]byte(grid.SVG))
}

func legendHandler(svc *service.GridService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		neuronType := chi.URLParam(r, "type")
		metricRaw := strings.TrimSuffix(chi.URLParam(r, "metric"), ".png")
		metric, ok := hexgrid.ParseMetric(metricRaw)
		if !ok {
			http.Error(w, "unknown metric: "+metricRaw, http.StatusBadRequest)
			return
		}

		data, err := svc.Legend(r.Context(), neuronType, metric)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(data)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
