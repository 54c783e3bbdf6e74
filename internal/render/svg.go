// Package render serializes assembled hexagons into SVG and PNG artifacts.
package render

import (
	"fmt"
	"html"
	"strings"

	"github.com/opticmap/server/internal/hexgrid"
)

// Renderer serializes hexagon lists. Stateless; safe for concurrent use.
type Renderer struct{}

// SVG emits one polygon per hexagon, filled with the hexagon's
// resolved color and carrying its tooltip as an embedded <title>
// element. Tooltip text is escaped before embedding. The viewBox is
// fitted to the hexagon bounds with a one-hexagon margin.
func (Renderer) SVG(hexagons []hexgrid.Hexagon, hexSize float64) string {
	var b strings.Builder

	minX, minY, maxX, maxY := bounds(hexagons, hexSize)
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%.2f %.2f %.2f %.2f">`+"\n",
		minX, minY, maxX-minX, maxY-minY)

	for _, h := range hexagons {
		verts := hexgrid.HexagonVertices(h.PixelX, h.PixelY, hexSize)
		points := make([]string, 0, len(verts))
		for _, v := range verts {
			points = append(points, fmt.Sprintf("%.2f,%.2f", v[0], v[1]))
		}
		fmt.Fprintf(&b, `  <polygon points="%s" fill="%s" stroke="#ffffff" stroke-width="0.5"><title>%s</title></polygon>`+"\n",
			strings.Join(points, " "), h.Color, html.EscapeString(h.Tooltip))
	}

	b.WriteString("</svg>\n")
	return b.String()
}

func bounds(hexagons []hexgrid.Hexagon, hexSize float64) (minX, minY, maxX, maxY float64) {
	if len(hexagons) == 0 {
		return 0, 0, 1, 1
	}
	minX, minY = hexagons[0].PixelX, hexagons[0].PixelY
	maxX, maxY = minX, minY
	for _, h := range hexagons {
		if h.PixelX < minX {
			minX = h.PixelX
		}
		if h.PixelX > maxX {
			maxX = h.PixelX
		}
		if h.PixelY < minY {
			minY = h.PixelY
		}
		if h.PixelY > maxY {
			maxY = h.PixelY
		}
	}
	// Margin covers the vertices of edge hexagons.
	m := hexSize * 1.5
	return minX - m, minY - m, maxX + m, maxY + m
}
