// Package preprocess normalizes and joins the loaded datasets on postal
// code and aggregates station counts per boundary.
package preprocess

import (
	"strconv"
	"strings"

	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/geowerk/plzatlas/internal/model"
)

// PreprocessStations coerces each station's raw postal-code field to an
// integer and left-joins boundary geometry onto the retained records.
// Records whose postal code cannot be coerced are dropped; the count of
// drops is returned so it stays observable. Stations with no matching
// boundary are excluded from the geometry-bearing output.
func PreprocessStations(stations []model.StationRecord, boundaries []model.BoundaryRecord) (out []model.StationRecord, dropped int) {
	byPLZ := boundaryIndex(boundaries)

	for _, s := range stations {
		plz, ok := coercePLZ(s.RawPLZ)
		if !ok {
			dropped++
			continue
		}
		b, ok := byPLZ[plz]
		if !ok {
			continue
		}
		s.PLZ = plz
		s.Geometry = b.Geometry
		out = append(out, s)
	}

	if dropped > 0 {
		zap.L().Warn("stations dropped during postal-code coercion",
			zap.String("component", "preprocess"),
			zap.Int("dropped", dropped),
			zap.Int("retained", len(out)),
		)
	}
	return out, dropped
}

// PreprocessResidents inner-joins resident records to boundaries on postal
// code, attaching the boundary geometry. A boundary with no resident record
// is excluded, not zero-filled: population data is complete-or-absent per
// postal code in the source.
func PreprocessResidents(residents []model.ResidentRecord, boundaries []model.BoundaryRecord) []model.ResidentRecord {
	byPLZ := boundaryIndex(boundaries)

	var out []model.ResidentRecord
	for _, r := range residents {
		b, ok := byPLZ[r.PLZ]
		if !ok {
			continue
		}
		r.Geometry = b.Geometry
		out = append(out, r)
	}
	return out
}

// AggregateStationCounts produces exactly one row per boundary postal code
// with Number equal to the count of geometry-bearing stations whose postal
// code matches, 0 when none matched. Geometry comes from the boundary set.
// If grouped station records disagree on geometry for one postal code the
// boundary's geometry wins; a disagreement is logged since it signals
// inconsistent input. Output order is unspecified.
func AggregateStationCounts(stations []model.StationRecord, boundaries []model.BoundaryRecord) []model.StationAggregate {
	counts := make(map[int]int, len(boundaries))
	geoms := make(map[int]geom.T, len(boundaries))
	for _, s := range stations {
		counts[s.PLZ]++
		if prev, ok := geoms[s.PLZ]; ok {
			if prev != s.Geometry {
				zap.L().Debug("station group carries divergent geometry, keeping first seen",
					zap.String("component", "preprocess"),
					zap.Int("plz", s.PLZ),
				)
			}
			continue
		}
		geoms[s.PLZ] = s.Geometry
	}

	out := make([]model.StationAggregate, 0, len(boundaries))
	for _, b := range boundaries {
		out = append(out, model.StationAggregate{
			PLZ:      b.PLZ,
			Number:   counts[b.PLZ],
			Geometry: b.Geometry,
		})
	}
	return out
}

// coercePLZ parses a raw postal-code cell. Spreadsheet exports render
// integer cells as floats ("10115.0"), so a trailing fractional zero is
// accepted.
func coercePLZ(raw string) (int, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	if v, err := strconv.Atoi(s); err == nil && v >= 0 {
		return v, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) || f < 0 {
		return 0, false
	}
	return int(f), true
}

func boundaryIndex(boundaries []model.BoundaryRecord) map[int]model.BoundaryRecord {
	byPLZ := make(map[int]model.BoundaryRecord, len(boundaries))
	for _, b := range boundaries {
		byPLZ[b.PLZ] = b
	}
	return byPLZ
}
