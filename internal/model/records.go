// Package model defines the postal-code-keyed record types shared by the
// fusion pipeline and the column schema that normalizes source headers.
package model

import "github.com/twpayne/go-geom"

// StationRecord is one physical charging point from the station registry.
// RawPLZ carries the unparsed postal-code cell; PLZ is filled during
// preprocessing, and Geometry once the record is joined to its boundary.
type StationRecord struct {
	RawPLZ   string
	PLZ      int
	Address  string
	District string
	Lat      float64
	Lng      float64
	Geometry geom.T
}

// Key returns the postal code. Only meaningful after preprocessing.
func (s StationRecord) Key() int { return s.PLZ }

// BoundaryRecord is one postal-code polygon. PLZ is unique across the
// boundary set; it is the join key for every other dataset.
type BoundaryRecord struct {
	PLZ      int
	Geometry geom.T
}

// Key returns the postal code.
func (b BoundaryRecord) Key() int { return b.PLZ }

// ResidentRecord is one postal code's population count. Geometry is nil as
// loaded and filled from the matching boundary during preprocessing.
type ResidentRecord struct {
	PLZ       int
	Residents int
	Geometry  geom.T
}

// Key returns the postal code.
func (r ResidentRecord) Key() int { return r.PLZ }

// StationAggregate is one row per boundary postal code with the count of
// stations whose coerced postal code matched, plus the boundary geometry
// for rendering. Number is 0 when no stations matched.
type StationAggregate struct {
	PLZ      int
	Number   int
	Geometry geom.T
}

// Key returns the postal code.
func (a StationAggregate) Key() int { return a.PLZ }
