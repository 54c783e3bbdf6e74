package hexgrid

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/opticmap/server/pkg/colormap"
)

// Assembler builds the renderable hexagon list for one (region, side,
// metric) selection by joining the full anatomical lattice with the
// observed records. Columns without data still get a placeholder
// hexagon so the grid keeps its anatomical shape.
type Assembler struct {
	HexSize float64
	Spacing float64
	Palette colormap.Palette
}

// Assemble produces one Hexagon per lattice coordinate, sorted by
// (col1, col2) for deterministic rendering. Coloring uses the global
// range shared by every grid of the same metric. An empty lattice
// yields an empty result, not an error.
func (a Assembler) Assemble(lattice []ColumnCoord, observed []ColumnRecord, metric Metric, globalMin, globalMax float64) []Hexagon {
	if len(lattice) == 0 {
		return nil
	}

	byCoord := make(map[[2]int]ColumnRecord, len(observed))
	for _, rec := range observed {
		byCoord[[2]int{rec.Col1, rec.Col2}] = rec
	}

	sorted := make([]ColumnCoord, len(lattice))
	copy(sorted, lattice)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Col1 != sorted[j].Col1 {
			return sorted[i].Col1 < sorted[j].Col1
		}
		return sorted[i].Col2 < sorted[j].Col2
	})

	hexes := make([]Hexagon, 0, len(sorted))
	for _, c := range sorted {
		q, r := ToAxial(c.Col1, c.Col2)
		x, y := ToPixel(q, r, a.HexSize, a.Spacing)
		hex := Hexagon{Col1: c.Col1, Col2: c.Col2, PixelX: x, PixelY: y}

		if rec, ok := byCoord[[2]int{c.Col1, c.Col2}]; ok {
			v := rec.MetricValue(metric)
			hex.Value = v
			hex.Color = a.Palette.ColorForValue(v, globalMin, globalMax)
			hex.State = StateHasData
			hex.Tooltip = fmt.Sprintf("%s %s column %s: %s %s",
				c.Region, c.Side, rec.Label, formatValue(v), metric.Noun())
		} else {
			hex.Color = a.Palette.NoData()
			hex.State = StateNoData
			hex.Tooltip = fmt.Sprintf("%s %s column (%d,%d): no data",
				c.Region, c.Side, c.Col1, c.Col2)
		}

		hexes = append(hexes, hex)
	}
	return hexes
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
