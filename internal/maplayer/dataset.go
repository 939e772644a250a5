// Package maplayer composes postal-code-keyed datasets into named, styled
// layers and renders them as GeoJSON artifacts.
package maplayer

import (
	"strconv"

	"github.com/twpayne/go-geom"

	"github.com/geowerk/plzatlas/internal/model"
)

// Dataset is the column-addressable view a layer projects onto the map.
type Dataset interface {
	Columns() []string
	Len() int
	// Value returns the numeric value of a column for row i; ok is false
	// for non-numeric or unknown columns.
	Value(i int, col string) (v float64, ok bool)
	// Display returns the display string of a column for row i.
	Display(i int, col string) string
	Geometry(i int) geom.T
}

// Column names exposed by the built-in dataset adapters. They match the
// source vocabulary so tooltip templates read like the underlying data.
const (
	ColPLZ       = "PLZ"
	ColEinwohner = "Einwohner"
	ColNumber    = "Number"
)

// ResidentDataset adapts resident records for layering.
type ResidentDataset []model.ResidentRecord

// Columns implements Dataset.
func (d ResidentDataset) Columns() []string { return []string{ColPLZ, ColEinwohner} }

// Len implements Dataset.
func (d ResidentDataset) Len() int { return len(d) }

// Value implements Dataset.
func (d ResidentDataset) Value(i int, col string) (float64, bool) {
	switch col {
	case ColPLZ:
		return float64(d[i].PLZ), true
	case ColEinwohner:
		return float64(d[i].Residents), true
	}
	return 0, false
}

// Display implements Dataset.
func (d ResidentDataset) Display(i int, col string) string {
	switch col {
	case ColPLZ:
		return strconv.Itoa(d[i].PLZ)
	case ColEinwohner:
		return strconv.Itoa(d[i].Residents)
	}
	return ""
}

// Geometry implements Dataset.
func (d ResidentDataset) Geometry(i int) geom.T { return d[i].Geometry }

// AggregateDataset adapts station aggregates for layering.
type AggregateDataset []model.StationAggregate

// Columns implements Dataset.
func (d AggregateDataset) Columns() []string { return []string{ColPLZ, ColNumber} }

// Len implements Dataset.
func (d AggregateDataset) Len() int { return len(d) }

// Value implements Dataset.
func (d AggregateDataset) Value(i int, col string) (float64, bool) {
	switch col {
	case ColPLZ:
		return float64(d[i].PLZ), true
	case ColNumber:
		return float64(d[i].Number), true
	}
	return 0, false
}

// Display implements Dataset.
func (d AggregateDataset) Display(i int, col string) string {
	switch col {
	case ColPLZ:
		return strconv.Itoa(d[i].PLZ)
	case ColNumber:
		return strconv.Itoa(d[i].Number)
	}
	return ""
}

// Geometry implements Dataset.
func (d AggregateDataset) Geometry(i int) geom.T { return d[i].Geometry }
