package hexgrid

import "go.uber.org/zap"

// GridRenderer serializes an assembled hexagon list. Satisfied by
// render.Renderer; kept as an interface so generation stays free of
// rasterizer concerns.
type GridRenderer interface {
	SVG(hexagons []Hexagon, hexSize float64) string
	PNGDataURI(svg string, width, height int) (string, error)
}

// Options bounds one generation run. Zero-value fields fall back to
// the full recognized sets and SVG output.
type Options struct {
	Regions []Region
	Sides   []Side
	Metrics []Metric
	Format  Format
}

// Generator iterates regions x sides x metrics, computes the global
// per-metric range needed for comparable coloring, and drives the
// assembler and renderer per grid. It performs no caching or I/O.
type Generator struct {
	Assembler Assembler
	Renderer  GridRenderer
	PNGWidth  int
	PNGHeight int

	log *zap.Logger
}

// NewGenerator creates a generator. A nil logger disables warnings.
func NewGenerator(assembler Assembler, renderer GridRenderer, pngWidth, pngHeight int, log *zap.Logger) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{
		Assembler: assembler,
		Renderer:  renderer,
		PNGWidth:  pngWidth,
		PNGHeight: pngHeight,
		log:       log,
	}
}

// GlobalRange scans every record for the metric and returns the
// min/max pair shared by all grids of that metric. Empty input yields
// (0, 0), the degenerate range.
func GlobalRange(records []ColumnRecord, metric Metric) (minVal, maxVal float64) {
	first := true
	for _, rec := range records {
		v := rec.MetricValue(metric)
		if first {
			minVal, maxVal = v, v
			first = false
			continue
		}
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	return minVal, maxVal
}

// GenerateRegionGrids builds one RenderedGrid per (region, side,
// metric) combination with a non-empty lattice, keyed "REGION_side".
// The global range is computed per metric across all regions and both
// sides before any grid is assembled, so a ME-left grid and a
// LO-right grid share the same color scale. Combinations with an
// empty lattice are omitted, not reported as errors.
func (g *Generator) GenerateRegionGrids(observed []ColumnRecord, lattice []ColumnCoord, opts Options) map[string]map[Metric]RenderedGrid {
	regions := opts.Regions
	if len(regions) == 0 {
		regions = KnownRegions()
	}
	sides := opts.Sides
	if len(sides) == 0 {
		sides = KnownSides()
	}
	metrics := opts.Metrics
	if len(metrics) == 0 {
		metrics = KnownMetrics()
	}
	format := opts.Format
	if format == "" {
		format = FormatSVG
	}

	type rs struct {
		region Region
		side   Side
	}
	latticeBy := make(map[rs][]ColumnCoord)
	for _, c := range lattice {
		k := rs{c.Region, c.Side}
		latticeBy[k] = append(latticeBy[k], c)
	}
	observedBy := make(map[rs][]ColumnRecord)
	for _, rec := range observed {
		k := rs{rec.Region, rec.Side}
		observedBy[k] = append(observedBy[k], rec)
	}

	ranges := make(map[Metric][2]float64, len(metrics))
	for _, m := range metrics {
		mn, mx := GlobalRange(observed, m)
		ranges[m] = [2]float64{mn, mx}
	}

	out := make(map[string]map[Metric]RenderedGrid)
	for _, region := range regions {
		for _, side := range sides {
			k := rs{region, side}
			lat := latticeBy[k]
			if len(lat) == 0 {
				continue
			}

			grids := make(map[Metric]RenderedGrid, len(metrics))
			for _, m := range metrics {
				rg := ranges[m]
				hexes := g.Assembler.Assemble(lat, observedBy[k], m, rg[0], rg[1])
				grids[m] = g.renderGrid(hexes, format, rg[0], rg[1], region, side, m)
			}
			out[GridKey(region, side)] = grids
		}
	}
	return out
}

// renderGrid serializes one hexagon list. A PNG rasterization failure
// degrades to SVG output with a warning; visualization is enrichment,
// never a generation-blocking requirement.
func (g *Generator) renderGrid(hexes []Hexagon, format Format, globalMin, globalMax float64, region Region, side Side, metric Metric) RenderedGrid {
	grid := RenderedGrid{
		Format:    FormatSVG,
		SVG:       g.Renderer.SVG(hexes, g.Assembler.HexSize),
		GlobalMin: globalMin,
		GlobalMax: globalMax,
		Values:    make([]float64, 0, len(hexes)),
	}
	for _, h := range hexes {
		grid.Values = append(grid.Values, h.Value)
		if h.State == StateHasData {
			grid.HexagonsWithData++
		} else {
			grid.HexagonsNoData++
		}
	}

	if format == FormatPNG {
		uri, err := g.Renderer.PNGDataURI(grid.SVG, g.PNGWidth, g.PNGHeight)
		if err != nil {
			g.log.Warn("png rasterization failed, falling back to svg",
				zap.String("region", string(region)),
				zap.String("side", string(side)),
				zap.String("metric", string(metric)),
				zap.Error(err))
		} else {
			grid.Format = FormatPNG
			grid.PNG = uri
			grid.SVG = ""
		}
	}
	return grid
}
