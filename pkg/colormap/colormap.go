// Package colormap provides the quintile color scale used for column grids.
package colormap

import "math"

// Palette maps normalized values [0, 1] to one of five fixed colors,
// each covering one quintile of the range, plus a reserved color for
// columns with no data. Colors are hex strings because the consumer
// is SVG markup rather than image buffers.
type Palette struct {
	colors [5]string
	noData string
}

// Buckets is the number of quintile steps in every palette.
const Buckets = 5

// Reds is the default scale: a sequential red ramp from lightest to
// darkest. The no-data gray is distinct from all five steps.
var Reds = Palette{
	colors: [5]string{"#fee5d9", "#fcae91", "#fb6a4a", "#de2d26", "#a50f15"},
	noData: "#d3d3d3",
}

// Normalize linearly maps value into [0, 1] given the range bounds.
// A degenerate range (maxVal == minVal) yields 0 for every value; it
// is a defined policy for uniform or empty data, not an error.
func Normalize(value, minVal, maxVal float64) float64 {
	if maxVal == minVal {
		return 0
	}
	t := (value - minVal) / (maxVal - minVal)
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// Bucket returns the quintile index for a normalized value. t = 1.0
// lands in the last bucket, never out of range.
func (p Palette) Bucket(t float64) int {
	if t <= 0 {
		return 0
	}
	idx := int(math.Floor(t * Buckets))
	if idx >= Buckets {
		idx = Buckets - 1
	}
	return idx
}

// AtNormalized returns the palette color for a normalized value.
func (p Palette) AtNormalized(t float64) string {
	return p.colors[p.Bucket(t)]
}

// ColorForValue resolves a raw metric value to a color using the
// supplied range. Zero or negative values take the reserved no-data
// color so absent data is visually distinct from low-but-present data.
// Pure: callable repeatedly at template-render time to recolor raw
// value lists without regenerating geometry.
func (p Palette) ColorForValue(value, minVal, maxVal float64) string {
	if value <= 0 {
		return p.noData
	}
	return p.AtNormalized(Normalize(value, minVal, maxVal))
}

// NoData returns the reserved placeholder color.
func (p Palette) NoData() string {
	return p.noData
}

// Colors returns the five scale colors in quintile order, for legends.
func (p Palette) Colors() [5]string {
	return p.colors
}
