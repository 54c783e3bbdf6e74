package colormap

import "testing"

func TestNormalize(t *testing.T) {
	t.Parallel()

	t.Run("bounds", func(t *testing.T) {
		for _, v := range []float64{0, 25, 50, 75, 100} {
			got := Normalize(v, 0, 100)
			if got < 0 || got > 1 {
				t.Fatalf("Normalize(%v, 0, 100) = %v, out of [0,1]", v, got)
			}
		}
	})

	t.Run("degenerateRange", func(t *testing.T) {
		for _, v := range []float64{-3, 0, 5, 42} {
			if got := Normalize(v, 5, 5); got != 0 {
				t.Fatalf("Normalize(%v, 5, 5) = %v, expected 0", v, got)
			}
		}
	})

	t.Run("clamping", func(t *testing.T) {
		if got := Normalize(-10, 0, 100); got != 0 {
			t.Fatalf("expected clamp to 0, got %v", got)
		}
		if got := Normalize(200, 0, 100); got != 1 {
			t.Fatalf("expected clamp to 1, got %v", got)
		}
	})
}

func TestBucket(t *testing.T) {
	t.Parallel()

	t.Run("topOfRange", func(t *testing.T) {
		if got := Reds.Bucket(1.0); got != Buckets-1 {
			t.Fatalf("Bucket(1.0) = %d, expected %d", got, Buckets-1)
		}
	})

	t.Run("monotonic", func(t *testing.T) {
		prev := Reds.Bucket(0)
		for i := 1; i <= 100; i++ {
			cur := Reds.Bucket(float64(i) / 100)
			if cur < prev {
				t.Fatalf("bucket index decreased: t=%v bucket=%d, prior=%d", float64(i)/100, cur, prev)
			}
			prev = cur
		}
	})

	t.Run("endpoints", func(t *testing.T) {
		if got := Reds.AtNormalized(0); got != Reds.Colors()[0] {
			t.Fatalf("AtNormalized(0) = %q, expected first color", got)
		}
		if got := Reds.AtNormalized(1); got != Reds.Colors()[Buckets-1] {
			t.Fatalf("AtNormalized(1) = %q, expected last color", got)
		}
	})
}

func TestColorForValue(t *testing.T) {
	t.Parallel()

	t.Run("noDataReserved", func(t *testing.T) {
		got := Reds.ColorForValue(0, 0, 100)
		if got != Reds.NoData() {
			t.Fatalf("ColorForValue(0, 0, 100) = %q, expected no-data color %q", got, Reds.NoData())
		}
		for _, c := range Reds.Colors() {
			if c == Reds.NoData() {
				t.Fatalf("no-data color %q collides with palette", c)
			}
		}
	})

	t.Run("quintiles", func(t *testing.T) {
		colors := Reds.Colors()
		if got := Reds.ColorForValue(10, 10, 100); got != colors[0] {
			t.Fatalf("min value: got %q, expected %q", got, colors[0])
		}
		if got := Reds.ColorForValue(100, 10, 100); got != colors[4] {
			t.Fatalf("max value: got %q, expected %q", got, colors[4])
		}
	})
}
