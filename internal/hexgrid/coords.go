package hexgrid

import "math"

// The column-index pair maps to axial coordinates with the frozen
// convention q = col1 - col2, r = col2. The transform is linear and
// invertible, so distinct columns never collide. The constants are a
// documented design choice kept stable for visual reproducibility.

// ToAxial converts a column-index pair to axial hex coordinates.
func ToAxial(col1, col2 int) (q, r int) {
	return col1 - col2, col2
}

const sqrt3 = 1.7320508075688772

// ToPixel converts axial coordinates to the pixel center of a
// pointy-top hexagon. spacing > 1.0 widens the gap between neighbors;
// values <= 0 fall back to touching hexagons.
func ToPixel(q, r int, hexSize, spacing float64) (x, y float64) {
	if spacing <= 0 {
		spacing = 1
	}
	s := hexSize * spacing
	x = s * sqrt3 * (float64(q) + float64(r)/2)
	y = s * 1.5 * float64(r)
	return x, y
}

// HexagonVertices returns the six corners of a pointy-top hexagon
// centered at (cx, cy), in clockwise screen order (SVG y grows down).
func HexagonVertices(cx, cy, size float64) [6][2]float64 {
	var v [6][2]float64
	for i := 0; i < 6; i++ {
		angle := (60*float64(i) - 30) * math.Pi / 180
		v[i][0] = cx + size*math.Cos(angle)
		v[i][1] = cy + size*math.Sin(angle)
	}
	return v
}
