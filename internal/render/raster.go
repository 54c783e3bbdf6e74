package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// PNGDataURI rasterizes SVG markup into a PNG of the given dimensions
// and returns it as a base64 data URI. Output is deterministic for
// identical input: the scanline rasterizer and the stdlib PNG encoder
// carry no randomness. Failures return an error; callers degrade to
// SVG-only output.
func (Renderer) PNGDataURI(svg string, width, height int) (string, error) {
	if width <= 0 || height <= 0 {
		return "", fmt.Errorf("invalid raster dimensions %dx%d", width, height)
	}

	// IgnoreErrorMode skips elements the rasterizer does not model,
	// such as the embedded <title> tooltips.
	icon, err := oksvg.ReadIconStream(strings.NewReader(svg), oksvg.IgnoreErrorMode)
	if err != nil {
		return "", fmt.Errorf("parse svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(width), float64(height))

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	scanner := rasterx.NewScannerGV(width, height, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(width, height, scanner), 1.0)

	var buf bytes.Buffer
	encoder := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := encoder.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode png: %w", err)
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
