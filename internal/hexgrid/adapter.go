package hexgrid

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// ErrInvalidInput signals that the input batch itself is unusable.
// Individual malformed rows never trigger it; they are dropped.
var ErrInvalidInput = errors.New("hexgrid: invalid input batch")

// Adapter normalizes heterogeneous raw per-column rows into canonical
// ColumnRecords. Key names and coordinate encodings vary between data
// pulls; everything downstream sees only the canonical form.
type Adapter struct {
	log *zap.Logger
}

// NewAdapter creates an adapter. A nil logger disables warnings.
func NewAdapter(log *zap.Logger) *Adapter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Adapter{log: log}
}

// Normalize converts raw rows into ColumnRecords. Rows with an
// unrecognized region or side, or with unparsable coordinates, are
// dropped with a warning. Only a nil batch is an error.
func (a *Adapter) Normalize(raw []map[string]any) ([]ColumnRecord, error) {
	if raw == nil {
		return nil, ErrInvalidInput
	}

	out := make([]ColumnRecord, 0, len(raw))
	for i, row := range raw {
		rec, err := normalizeRow(row)
		if err != nil {
			a.log.Warn("dropping malformed column row",
				zap.Int("index", i),
				zap.Error(err))
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func normalizeRow(row map[string]any) (ColumnRecord, error) {
	var rec ColumnRecord
	if row == nil {
		return rec, fmt.Errorf("nil row")
	}

	regionRaw, ok := stringField(row, "region", "roi")
	if !ok {
		return rec, fmt.Errorf("missing region")
	}
	region, ok := ParseRegion(regionRaw)
	if !ok {
		return rec, fmt.Errorf("unrecognized region %q", regionRaw)
	}

	sideRaw, ok := stringField(row, "side", "hemisphere")
	if !ok {
		return rec, fmt.Errorf("missing side")
	}
	side, ok := ParseSide(sideRaw)
	if !ok {
		return rec, fmt.Errorf("unrecognized side %q", sideRaw)
	}

	col1, err := coordField(row, "col1", "hex1", "column1")
	if err != nil {
		return rec, err
	}
	col2, err := coordField(row, "col2", "hex2", "column2")
	if err != nil {
		return rec, err
	}

	rec.Region = region
	rec.Side = side
	rec.Col1 = col1
	rec.Col2 = col2

	if total, ok := numberField(row, "total_synapses"); ok {
		rec.TotalSynapses = total
	} else {
		pre, _ := numberField(row, "pre_count")
		post, _ := numberField(row, "post_count")
		rec.TotalSynapses = pre + post
	}

	if n, ok := numberField(row, "neuron_count"); ok {
		rec.NeuronCount = int(n)
	}

	if label, ok := stringField(row, "label", "name"); ok {
		rec.Label = label
	} else {
		rec.Label = fmt.Sprintf("(%d,%d)", col1, col2)
	}

	return rec, nil
}

func stringField(row map[string]any, keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := row[k]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s, true
			}
		}
	}
	return "", false
}

func coordField(row map[string]any, keys ...string) (int, error) {
	for _, k := range keys {
		if v, ok := row[k]; ok {
			return ParseCoordinate(v)
		}
	}
	return 0, fmt.Errorf("missing coordinate %q", keys[0])
}

func numberField(row map[string]any, key string) (float64, bool) {
	v, ok := row[key]
	if !ok {
		return 0, false
	}
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case string:
		if f, err := strconv.ParseFloat(x, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

// ParseCoordinate converts a lattice index that may arrive as an
// integer, a decimal string, or a hexadecimal string. Decimal wins
// when a string parses both ways, so "10" is ten and "a" is ten.
func ParseCoordinate(v any) (int, error) {
	switch x := v.(type) {
	case int:
		return x, nil
	case int32:
		return int(x), nil
	case int64:
		return int(x), nil
	case float64:
		if x != math.Trunc(x) {
			return 0, fmt.Errorf("non-integer coordinate %v", x)
		}
		return int(x), nil
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, fmt.Errorf("empty coordinate")
		}
		if n, err := strconv.ParseInt(s, 10, 32); err == nil {
			return int(n), nil
		}
		if n, err := strconv.ParseInt(s, 16, 32); err == nil {
			return int(n), nil
		}
		return 0, fmt.Errorf("unparsable coordinate %q", s)
	default:
		return 0, fmt.Errorf("unsupported coordinate type %T", v)
	}
}
