// Package service provides business logic for the grid server.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/opticmap/server/internal/cache"
	"github.com/opticmap/server/internal/gridstore"
	"github.com/opticmap/server/internal/hexgrid"
	"github.com/opticmap/server/internal/render"
	"github.com/opticmap/server/pkg/colormap"
)

// ErrNoGrid is returned when a (region, side) pair has no lattice
// entries for the dataset. Not a failure: that viewpoint simply has
// no grid.
var ErrNoGrid = errors.New("service: no grid for this region and side")

// ColumnSource supplies the anatomical lattice and observed rows for
// a dataset. Implemented by the neuprint client; per-dataset adapters
// plug in here instead of branching inside the engine.
type ColumnSource interface {
	AllPossibleColumns(ctx context.Context) ([]hexgrid.ColumnCoord, error)
	ObservedRecords(ctx context.Context, neuronType string) ([]map[string]any, error)
}

// GridServiceConfig contains grid service configuration.
type GridServiceConfig struct {
	Dataset      string
	Source       ColumnSource
	Cache        *cache.Manager
	Store        *gridstore.Store // optional persistent tier
	Generator    *hexgrid.Generator
	Renderer     render.Renderer
	Palette      colormap.Palette
	LegendWidth  int
	LegendHeight int
	Log          *zap.Logger
}

// GridService generates and serves hexagon grids, with a memory ->
// sqlite -> compute lookup chain.
type GridService struct {
	dataset   string
	source    ColumnSource
	cache     *cache.Manager
	store     *gridstore.Store
	generator *hexgrid.Generator
	renderer  render.Renderer
	palette   colormap.Palette
	adapter   *hexgrid.Adapter
	log       *zap.Logger

	legendWidth  int
	legendHeight int

	// The lattice is immutable for a dataset; fetch it once.
	latticeOnce sync.Once
	lattice     []hexgrid.ColumnCoord
	latticeErr  error
}

// NewGridService creates a new grid service.
func NewGridService(cfg GridServiceConfig) *GridService {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	dataset := cfg.Dataset
	if dataset == "" {
		dataset = "default"
	}
	legendWidth := cfg.LegendWidth
	if legendWidth <= 0 {
		legendWidth = 240
	}
	legendHeight := cfg.LegendHeight
	if legendHeight <= 0 {
		legendHeight = 48
	}

	return &GridService{
		dataset:      dataset,
		source:       cfg.Source,
		cache:        cfg.Cache,
		store:        cfg.Store,
		generator:    cfg.Generator,
		renderer:     cfg.Renderer,
		palette:      cfg.Palette,
		adapter:      hexgrid.NewAdapter(log),
		log:          log,
		legendWidth:  legendWidth,
		legendHeight: legendHeight,
	}
}

func (s *GridService) loadLattice(ctx context.Context) ([]hexgrid.ColumnCoord, error) {
	s.latticeOnce.Do(func() {
		s.lattice, s.latticeErr = s.source.AllPossibleColumns(ctx)
		if s.latticeErr == nil {
			s.log.Info("loaded column lattice",
				zap.String("dataset", s.dataset),
				zap.Int("columns", len(s.lattice)))
		}
	})
	return s.lattice, s.latticeErr
}

// observedRows returns the raw column rows for a neuron type, served
// from the query cache when possible.
func (s *GridService) observedRows(ctx context.Context, neuronType string) ([]map[string]any, error) {
	key := cache.QueryKey(s.dataset, neuronType)
	if s.cache != nil {
		if data, ok := s.cache.GetQuery(key); ok {
			var rows []map[string]any
			if err := json.Unmarshal(data, &rows); err == nil {
				return rows, nil
			}
		}
	}

	rows, err := s.source.ObservedRecords(ctx, neuronType)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(rows); err == nil {
			s.cache.SetQuery(key, data)
		}
	}
	return rows, nil
}

func (s *GridService) records(ctx context.Context, neuronType string) ([]hexgrid.ColumnRecord, error) {
	rows, err := s.observedRows(ctx, neuronType)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []map[string]any{}
	}
	return s.adapter.Normalize(rows)
}

// GridSet generates every grid for a neuron type, keyed "REGION_side"
// then metric. All grids of one metric share a global color range.
func (s *GridService) GridSet(ctx context.Context, neuronType string, format hexgrid.Format) (map[string]map[hexgrid.Metric]hexgrid.RenderedGrid, error) {
	lattice, err := s.loadLattice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load lattice: %w", err)
	}

	records, err := s.records(ctx, neuronType)
	if err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}

	set := s.generator.GenerateRegionGrids(records, lattice, hexgrid.Options{Format: format})
	s.cacheSet(neuronType, format, set)
	return set, nil
}

// Grid returns one rendered grid, consulting the memory tier, then
// the persistent store, then generating.
func (s *GridService) Grid(ctx context.Context, neuronType string, region hexgrid.Region, side hexgrid.Side, metric hexgrid.Metric, format hexgrid.Format) (hexgrid.RenderedGrid, error) {
	key := cache.GridKey(s.dataset, neuronType, string(region), string(side), string(metric), string(format))

	if s.cache != nil {
		if data, ok := s.cache.GetGrid(key); ok {
			if grid, err := decodeGrid(data); err == nil {
				return grid, nil
			}
		}
	}
	if s.store != nil {
		if data, ok := s.store.Get(key); ok {
			if grid, err := decodeGrid(data); err == nil {
				if s.cache != nil {
					s.cache.SetGrid(key, data)
				}
				return grid, nil
			}
		}
	}

	set, err := s.GridSet(ctx, neuronType, format)
	if err != nil {
		return hexgrid.RenderedGrid{}, err
	}

	grids, ok := set[hexgrid.GridKey(region, side)]
	if !ok {
		return hexgrid.RenderedGrid{}, ErrNoGrid
	}
	grid, ok := grids[metric]
	if !ok {
		return hexgrid.RenderedGrid{}, ErrNoGrid
	}
	return grid, nil
}

// cacheSet stores every grid of a generated set in both cache tiers.
func (s *GridService) cacheSet(neuronType string, format hexgrid.Format, set map[string]map[hexgrid.Metric]hexgrid.RenderedGrid) {
	for rsKey, grids := range set {
		for metric, grid := range grids {
			data, err := json.Marshal(grid)
			if err != nil {
				continue
			}
			key := fmt.Sprintf("grid:%s:%s:%s:%s.%s", s.dataset, neuronType, rsKey, metric, format)
			if s.cache != nil {
				s.cache.SetGrid(key, data)
			}
			if s.store != nil {
				if err := s.store.Put(key, data); err != nil {
					s.log.Warn("failed to persist grid", zap.String("key", key), zap.Error(err))
				}
			}
		}
	}
}

func decodeGrid(data []byte) (hexgrid.RenderedGrid, error) {
	var grid hexgrid.RenderedGrid
	err := json.Unmarshal(data, &grid)
	return grid, err
}

// Legend renders the color-scale bar PNG for a neuron type and
// metric, labeled with the same global range the grids were colored
// with.
func (s *GridService) Legend(ctx context.Context, neuronType string, metric hexgrid.Metric) ([]byte, error) {
	records, err := s.records(ctx, neuronType)
	if err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}
	minVal, maxVal := hexgrid.GlobalRange(records, metric)
	return s.renderer.Legend(s.palette, minVal, maxVal, s.legendWidth, s.legendHeight)
}

// Stats returns cache statistics for the stats endpoint.
func (s *GridService) Stats() map[string]interface{} {
	if s.cache == nil {
		return map[string]interface{}{}
	}
	return s.cache.Stats()
}
