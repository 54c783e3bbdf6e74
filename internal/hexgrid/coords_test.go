package hexgrid

import "testing"

func TestToAxialDeterministicAndInjective(t *testing.T) {
	t.Parallel()

	seen := make(map[[2]int][2]int)
	for col1 := -10; col1 <= 10; col1++ {
		for col2 := -10; col2 <= 10; col2++ {
			q1, r1 := ToAxial(col1, col2)
			q2, r2 := ToAxial(col1, col2)
			if q1 != q2 || r1 != r2 {
				t.Fatalf("ToAxial(%d,%d) not deterministic", col1, col2)
			}
			key := [2]int{q1, r1}
			if prev, ok := seen[key]; ok {
				t.Fatalf("collision: (%d,%d) and (%d,%d) both map to (%d,%d)",
					prev[0], prev[1], col1, col2, q1, r1)
			}
			seen[key] = [2]int{col1, col2}
		}
	}
}

func TestToPixel(t *testing.T) {
	t.Parallel()

	t.Run("deterministic", func(t *testing.T) {
		x1, y1 := ToPixel(3, -2, 12, 1.05)
		x2, y2 := ToPixel(3, -2, 12, 1.05)
		if x1 != x2 || y1 != y2 {
			t.Fatalf("ToPixel not deterministic: (%v,%v) vs (%v,%v)", x1, y1, x2, y2)
		}
	})

	t.Run("origin", func(t *testing.T) {
		x, y := ToPixel(0, 0, 12, 1)
		if x != 0 || y != 0 {
			t.Fatalf("expected origin at (0,0), got (%v,%v)", x, y)
		}
	})

	t.Run("spacingWidensGap", func(t *testing.T) {
		x1, _ := ToPixel(1, 0, 12, 1)
		x2, _ := ToPixel(1, 0, 12, 1.2)
		if x2 <= x1 {
			t.Fatalf("spacing 1.2 did not widen gap: %v vs %v", x2, x1)
		}
	})

	t.Run("nonPositiveSpacingFallsBack", func(t *testing.T) {
		x1, y1 := ToPixel(1, 1, 12, 0)
		x2, y2 := ToPixel(1, 1, 12, 1)
		if x1 != x2 || y1 != y2 {
			t.Fatalf("expected spacing 0 to behave as 1")
		}
	})
}

func TestHexagonVertices(t *testing.T) {
	t.Parallel()

	verts := HexagonVertices(10, 20, 5)
	if len(verts) != 6 {
		t.Fatalf("expected 6 vertices, got %d", len(verts))
	}

	// All corners sit on the circumcircle.
	for i, v := range verts {
		dx := v[0] - 10
		dy := v[1] - 20
		d2 := dx*dx + dy*dy
		if d2 < 24.99 || d2 > 25.01 {
			t.Fatalf("vertex %d at distance^2 %v, expected 25", i, d2)
		}
	}

	// Consistent winding: repeated calls are identical.
	again := HexagonVertices(10, 20, 5)
	if verts != again {
		t.Fatalf("vertex order unstable")
	}
}
