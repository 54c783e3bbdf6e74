package render

import (
	"bytes"
	"fmt"
	"image/png"
	"strconv"

	"github.com/fogleman/gg"

	"github.com/opticmap/server/pkg/colormap"
)

// Legend draws the quintile scale bar as a PNG: the five palette
// colors side by side with the global range bounds labeled underneath.
// Grids sharing a metric share a global range, so one legend serves
// every grid of that metric.
func (Renderer) Legend(p colormap.Palette, minVal, maxVal float64, width, height int) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid legend dimensions %dx%d", width, height)
	}

	dc := gg.NewContext(width, height)
	dc.SetHexColor("#ffffff")
	dc.Clear()

	colors := p.Colors()
	barHeight := float64(height) * 0.55
	stepWidth := float64(width) / float64(len(colors))
	for i, c := range colors {
		dc.SetHexColor(c)
		dc.DrawRectangle(float64(i)*stepWidth, 0, stepWidth, barHeight)
		dc.Fill()
	}

	labelY := barHeight + (float64(height)-barHeight)/2
	dc.SetHexColor("#000000")
	dc.DrawStringAnchored(formatLabel(minVal), 2, labelY, 0, 0.5)
	dc.DrawStringAnchored(formatLabel(maxVal), float64(width)-2, labelY, 1, 0.5)

	var buf bytes.Buffer
	encoder := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := encoder.Encode(&buf, dc.Image()); err != nil {
		return nil, fmt.Errorf("encode legend png: %w", err)
	}
	return buf.Bytes(), nil
}

func formatLabel(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
