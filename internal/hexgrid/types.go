// Package hexgrid turns per-column synapse and neuron counts into
// color-coded hexagonal grid data for the optic-lobe regions.
package hexgrid

import "fmt"

// Region is an optic-lobe brain region.
type Region string

// Recognized regions.
const (
	RegionME  Region = "ME"
	RegionLO  Region = "LO"
	RegionLOP Region = "LOP"
)

// KnownRegions returns the recognized regions in canonical order.
func KnownRegions() []Region {
	return []Region{RegionME, RegionLO, RegionLOP}
}

// ParseRegion matches a raw region string against the recognized set.
func ParseRegion(s string) (Region, bool) {
	switch Region(s) {
	case RegionME, RegionLO, RegionLOP:
		return Region(s), true
	}
	return "", false
}

// Side is a hemisphere.
type Side string

// Hemisphere sides.
const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// KnownSides returns both hemisphere sides.
func KnownSides() []Side {
	return []Side{SideLeft, SideRight}
}

// ParseSide accepts full names and the single-letter abbreviations
// used by some data pulls.
func ParseSide(s string) (Side, bool) {
	switch s {
	case "left", "L", "l":
		return SideLeft, true
	case "right", "R", "r":
		return SideRight, true
	}
	return "", false
}

// Metric selects which per-column count drives the coloring.
type Metric string

// Supported metrics.
const (
	MetricSynapseDensity Metric = "synapse_density"
	MetricCellCount      Metric = "cell_count"
)

// KnownMetrics returns the supported metrics in canonical order.
func KnownMetrics() []Metric {
	return []Metric{MetricSynapseDensity, MetricCellCount}
}

// ParseMetric matches a raw metric string against the supported set.
func ParseMetric(s string) (Metric, bool) {
	switch Metric(s) {
	case MetricSynapseDensity, MetricCellCount:
		return Metric(s), true
	}
	return "", false
}

// Noun returns the unit word used in tooltips.
func (m Metric) Noun() string {
	if m == MetricCellCount {
		return "cells"
	}
	return "synapses"
}

// ColumnRecord is one observed data point for a single anatomical
// column. (Region, Side, Col1, Col2) is unique within one data pull.
type ColumnRecord struct {
	Region        Region
	Side          Side
	Col1          int
	Col2          int
	TotalSynapses float64
	NeuronCount   int
	Label         string
}

// MetricValue returns the raw value backing the given metric.
func (r ColumnRecord) MetricValue(m Metric) float64 {
	if m == MetricCellCount {
		return float64(r.NeuronCount)
	}
	return r.TotalSynapses
}

// ColumnCoord addresses one column in the full anatomical lattice,
// independent of whether any neuron was observed there.
type ColumnCoord struct {
	Region Region
	Side   Side
	Col1   int
	Col2   int
}

// HexState marks whether a hexagon carries observed data.
type HexState string

// Hexagon states.
const (
	StateHasData HexState = "has_data"
	StateNoData  HexState = "no_data"
)

// Hexagon is one renderable unit. Created fresh on every grid build,
// never mutated afterwards.
type Hexagon struct {
	Col1    int
	Col2    int
	PixelX  float64
	PixelY  float64
	Value   float64
	Color   string
	State   HexState
	Tooltip string
}

// Format selects the rendered artifact type.
type Format string

// Output formats.
const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// RenderedGrid is the output of one grid build: SVG markup or a
// base64 PNG data URI, plus the per-hexagon raw values and the global
// range used for coloring so a consuming template can recolor the
// same geometry under a different normalization pass.
type RenderedGrid struct {
	Format           Format    `json:"format"`
	SVG              string    `json:"svg,omitempty"`
	PNG              string    `json:"png,omitempty"`
	HexagonsWithData int       `json:"hexagons_with_data"`
	HexagonsNoData   int       `json:"hexagons_no_data"`
	Values           []float64 `json:"values,omitempty"`
	GlobalMin        float64   `json:"global_min"`
	GlobalMax        float64   `json:"global_max"`
}

// GridRequest identifies one grid build.
type GridRequest struct {
	Region    Region
	Side      Side
	Metric    Metric
	GlobalMin float64
	GlobalMax float64
	Format    Format
}

// GridKey is the "REGION_side" key used in generator result maps.
func GridKey(region Region, side Side) string {
	return fmt.Sprintf("%s_%s", region, side)
}
