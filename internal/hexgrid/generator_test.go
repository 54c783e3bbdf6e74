package hexgrid

import (
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/opticmap/server/pkg/colormap"
)

// stubRenderer joins hexagon colors into the "SVG" output so tests
// can assert on resolved colors without a real renderer.
type stubRenderer struct {
	pngErr error
}

func (s stubRenderer) SVG(hexagons []Hexagon, hexSize float64) string {
	colors := make([]string, 0, len(hexagons))
	for _, h := range hexagons {
		colors = append(colors, h.Color)
	}
	return "svg:" + strings.Join(colors, ",")
}

func (s stubRenderer) PNGDataURI(svg string, width, height int) (string, error) {
	if s.pngErr != nil {
		return "", s.pngErr
	}
	return "data:image/png;base64,AAAA", nil
}

func testGenerator(r GridRenderer) *Generator {
	return NewGenerator(Assembler{HexSize: 12, Spacing: 1, Palette: colormap.Reds}, r, 100, 100, zap.NewNop())
}

func TestGenerateRegionGridsGlobalScale(t *testing.T) {
	t.Parallel()

	lattice := []ColumnCoord{
		{RegionME, SideLeft, 0, 0},
		{RegionLO, SideRight, 1, 1},
	}
	observed := []ColumnRecord{
		{Region: RegionME, Side: SideLeft, Col1: 0, Col2: 0, TotalSynapses: 10, Label: "(0,0)"},
		{Region: RegionLO, Side: SideRight, Col1: 1, Col2: 1, TotalSynapses: 100, Label: "(1,1)"},
	}

	out := testGenerator(stubRenderer{}).GenerateRegionGrids(observed, lattice, Options{
		Metrics: []Metric{MetricSynapseDensity},
	})

	meGrid, ok := out["ME_left"][MetricSynapseDensity]
	if !ok {
		t.Fatalf("missing ME_left grid, keys: %v", keys(out))
	}
	loGrid, ok := out["LO_right"][MetricSynapseDensity]
	if !ok {
		t.Fatalf("missing LO_right grid, keys: %v", keys(out))
	}

	// Both grids share the global (10, 100) range, so 10 falls in the
	// first bucket and 100 in the last — never rescaled per region.
	if meGrid.GlobalMin != 10 || meGrid.GlobalMax != 100 {
		t.Fatalf("ME range = (%v,%v), expected (10,100)", meGrid.GlobalMin, meGrid.GlobalMax)
	}
	if loGrid.GlobalMin != 10 || loGrid.GlobalMax != 100 {
		t.Fatalf("LO range = (%v,%v), expected (10,100)", loGrid.GlobalMin, loGrid.GlobalMax)
	}
	colors := colormap.Reds.Colors()
	if !strings.Contains(meGrid.SVG, colors[0]) {
		t.Fatalf("ME grid should use first bucket, got %q", meGrid.SVG)
	}
	if !strings.Contains(loGrid.SVG, colors[4]) {
		t.Fatalf("LO grid should use last bucket, got %q", loGrid.SVG)
	}
}

func TestGenerateRegionGridsOmitsEmptyLattice(t *testing.T) {
	t.Parallel()

	// Only ME/left has lattice entries; everything else is omitted.
	lattice := []ColumnCoord{{RegionME, SideLeft, 0, 0}}

	out := testGenerator(stubRenderer{}).GenerateRegionGrids(nil, lattice, Options{})
	if len(out) != 1 {
		t.Fatalf("expected 1 key, got %v", keys(out))
	}
	grids, ok := out["ME_left"]
	if !ok {
		t.Fatalf("missing ME_left, keys: %v", keys(out))
	}
	if len(grids) != len(KnownMetrics()) {
		t.Fatalf("expected %d metrics, got %d", len(KnownMetrics()), len(grids))
	}
}

func TestGenerateRegionGridsCounts(t *testing.T) {
	t.Parallel()

	lattice := []ColumnCoord{
		{RegionME, SideLeft, 0, 0},
		{RegionME, SideLeft, 0, 1},
		{RegionME, SideLeft, 1, 0},
	}
	observed := []ColumnRecord{
		{Region: RegionME, Side: SideLeft, Col1: 0, Col2: 0, NeuronCount: 4, Label: "(0,0)"},
	}

	out := testGenerator(stubRenderer{}).GenerateRegionGrids(observed, lattice, Options{
		Metrics: []Metric{MetricCellCount},
	})
	grid := out["ME_left"][MetricCellCount]
	if grid.HexagonsWithData != 1 {
		t.Fatalf("hexagons_with_data = %d, expected 1", grid.HexagonsWithData)
	}
	if grid.HexagonsNoData != 2 {
		t.Fatalf("hexagons_no_data = %d, expected 2", grid.HexagonsNoData)
	}
	if len(grid.Values) != 3 {
		t.Fatalf("expected 3 raw values, got %d", len(grid.Values))
	}
}

func TestGenerateRegionGridsPNG(t *testing.T) {
	t.Parallel()

	lattice := []ColumnCoord{{RegionME, SideLeft, 0, 0}}

	t.Run("success", func(t *testing.T) {
		out := testGenerator(stubRenderer{}).GenerateRegionGrids(nil, lattice, Options{
			Metrics: []Metric{MetricSynapseDensity},
			Format:  FormatPNG,
		})
		grid := out["ME_left"][MetricSynapseDensity]
		if grid.Format != FormatPNG {
			t.Fatalf("format = %q, expected png", grid.Format)
		}
		if !strings.HasPrefix(grid.PNG, "data:image/png;base64,") {
			t.Fatalf("unexpected data URI: %q", grid.PNG)
		}
		if grid.SVG != "" {
			t.Fatalf("svg should be cleared when png succeeds")
		}
	})

	t.Run("fallbackOnFailure", func(t *testing.T) {
		out := testGenerator(stubRenderer{pngErr: errors.New("no rasterizer")}).GenerateRegionGrids(nil, lattice, Options{
			Metrics: []Metric{MetricSynapseDensity},
			Format:  FormatPNG,
		})
		grid := out["ME_left"][MetricSynapseDensity]
		if grid.Format != FormatSVG {
			t.Fatalf("format = %q, expected svg fallback", grid.Format)
		}
		if grid.SVG == "" {
			t.Fatalf("expected svg output on fallback")
		}
		if grid.PNG != "" {
			t.Fatalf("png should be empty on fallback")
		}
	})
}

func TestGlobalRange(t *testing.T) {
	t.Parallel()

	t.Run("empty", func(t *testing.T) {
		mn, mx := GlobalRange(nil, MetricSynapseDensity)
		if mn != 0 || mx != 0 {
			t.Fatalf("expected degenerate (0,0), got (%v,%v)", mn, mx)
		}
	})

	t.Run("spansRecords", func(t *testing.T) {
		records := []ColumnRecord{
			{TotalSynapses: 42},
			{TotalSynapses: 7},
			{TotalSynapses: 100},
		}
		mn, mx := GlobalRange(records, MetricSynapseDensity)
		if mn != 7 || mx != 100 {
			t.Fatalf("expected (7,100), got (%v,%v)", mn, mx)
		}
	})
}

func keys(m map[string]map[Metric]RenderedGrid) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
