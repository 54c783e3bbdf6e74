package hexgrid

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNormalizeRoundTrip(t *testing.T) {
	t.Parallel()

	adapter := NewAdapter(zap.NewNop())
	raw := []map[string]any{
		{"region": "ME", "side": "L", "col1": "a", "col2": "1", "pre_count": 5, "post_count": 7},
	}

	records, err := adapter.Normalize(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	rec := records[0]
	if rec.Region != RegionME {
		t.Fatalf("region = %q, expected ME", rec.Region)
	}
	if rec.Side != SideLeft {
		t.Fatalf("side = %q, expected left", rec.Side)
	}
	if rec.Col1 != 10 {
		t.Fatalf("col1 = %d, expected 10 (hex a)", rec.Col1)
	}
	if rec.Col2 != 1 {
		t.Fatalf("col2 = %d, expected 1", rec.Col2)
	}
	if rec.TotalSynapses != 12 {
		t.Fatalf("total_synapses = %v, expected 12", rec.TotalSynapses)
	}
}

func TestNormalizeDropsMalformed(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.WarnLevel)
	adapter := NewAdapter(zap.New(core))

	raw := []map[string]any{
		{"region": "ME", "side": "left", "col1": 1, "col2": 2, "total_synapses": 3},
		{"region": "LO", "side": "X", "col1": 1, "col2": 2}, // bad side
		{"region": "LOP", "side": "right", "col1": 4, "col2": 5, "neuron_count": 6},
	}

	records, err := adapter.Normalize(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if logs.Len() != 1 {
		t.Fatalf("expected 1 warning, got %d", logs.Len())
	}
}

func TestNormalizeNilBatch(t *testing.T) {
	t.Parallel()

	adapter := NewAdapter(nil)
	if _, err := adapter.Normalize(nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	// An empty batch is valid.
	records, err := adapter.Normalize([]map[string]any{})
	if err != nil {
		t.Fatalf("unexpected error for empty batch: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no records, got %d", len(records))
	}
}

func TestNormalizeKeyVariants(t *testing.T) {
	t.Parallel()

	adapter := NewAdapter(nil)
	raw := []map[string]any{
		{"roi": "LO", "hemisphere": "right", "hex1": int64(3), "hex2": int64(4),
			"total_synapses": int64(99), "neuron_count": int64(7), "name": "LO-c34"},
	}

	records, err := adapter.Normalize(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	rec := records[0]
	if rec.Region != RegionLO || rec.Side != SideRight {
		t.Fatalf("unexpected region/side: %q %q", rec.Region, rec.Side)
	}
	if rec.Col1 != 3 || rec.Col2 != 4 {
		t.Fatalf("unexpected coords: (%d,%d)", rec.Col1, rec.Col2)
	}
	if rec.TotalSynapses != 99 {
		t.Fatalf("total_synapses = %v, expected direct field to win", rec.TotalSynapses)
	}
	if rec.NeuronCount != 7 {
		t.Fatalf("neuron_count = %d, expected 7", rec.NeuronCount)
	}
	if rec.Label != "LO-c34" {
		t.Fatalf("label = %q, expected LO-c34", rec.Label)
	}
}

func TestParseCoordinate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   any
		want int
		ok   bool
	}{
		{"10", 10, true},  // decimal wins
		{"a", 10, true},   // hex fallback
		{"ff", 255, true}, // hex fallback
		{int64(7), 7, true},
		{3.0, 3, true},
		{3.5, 0, false},
		{"", 0, false},
		{"xyz", 0, false},
		{nil, 0, false},
	}

	for _, c := range cases {
		got, err := ParseCoordinate(c.in)
		if c.ok && err != nil {
			t.Fatalf("ParseCoordinate(%v) unexpected error: %v", c.in, err)
		}
		if !c.ok && err == nil {
			t.Fatalf("ParseCoordinate(%v) expected error", c.in)
		}
		if c.ok && got != c.want {
			t.Fatalf("ParseCoordinate(%v) = %d, expected %d", c.in, got, c.want)
		}
	}
}
