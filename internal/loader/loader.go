// Package loader reads the three raw sources into normalized records. It
// resolves varying source headers through the model schema and performs no
// joins or coercion beyond what a single file can answer; that is the
// preprocessor's job.
package loader

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/geowerk/plzatlas/internal/fetcher"
	"github.com/geowerk/plzatlas/internal/model"
)

// Loader reads raw sources using a resolved column schema.
type Loader struct {
	schema *model.Schema
	opts   Options
}

// Options configures source parsing.
type Options struct {
	Delimiter rune   // delimited text sources; default ';'
	Charset   string // delimited text sources; default utf-8
	SheetName string // station registry worksheet; default first sheet
	SkipRows  int    // station registry preamble rows
}

// New creates a Loader. A nil schema uses the built-in default aliases.
func New(schema *model.Schema, opts Options) *Loader {
	if schema == nil {
		schema = model.DefaultSchema()
	}
	if opts.Delimiter == 0 {
		opts.Delimiter = ';'
	}
	return &Loader{schema: schema, opts: opts}
}

// LoadStations reads the station registry workbook. The postal-code cell is
// kept raw; coercion happens during preprocessing so that failures can be
// counted there. Fails with SourceReadError if the file or the postal-code
// column is missing.
func (l *Loader) LoadStations(path string) ([]model.StationRecord, error) {
	rows, err := fetcher.ReadXLSX(path, fetcher.XLSXOptions{
		SheetName: l.opts.SheetName,
		SkipRows:  l.opts.SkipRows,
	})
	if err != nil {
		return nil, sourceErr("stations", err)
	}
	if len(rows) == 0 {
		return nil, sourceErr("stations", eris.New("empty sheet"))
	}

	cols, err := l.schema.Resolve(rows[0], model.FieldPLZ)
	if err != nil {
		return nil, sourceErr("stations", err)
	}

	stations := make([]model.StationRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		s := model.StationRecord{
			RawPLZ:   cell(row, cols.Index(model.FieldPLZ)),
			Address:  cell(row, cols.Index(model.FieldAddress)),
			District: cell(row, cols.Index(model.FieldDistrict)),
		}
		s.Lat, _ = parseCoord(cell(row, cols.Index(model.FieldLat)))
		s.Lng, _ = parseCoord(cell(row, cols.Index(model.FieldLng)))
		stations = append(stations, s)
	}

	zap.L().Info("stations loaded",
		zap.String("component", "loader"),
		zap.String("path", path),
		zap.Int("records", len(stations)),
	)
	return stations, nil
}

// LoadBoundaries reads the postal-code boundary geometries. A .shp path is
// read as a shapefile; anything else as delimited text with a WKT geometry
// column. PLZ must be unique across the set; a duplicate is a
// SourceReadError because every downstream join keys on it.
func (l *Loader) LoadBoundaries(path string) ([]model.BoundaryRecord, error) {
	var (
		boundaries []model.BoundaryRecord
		err        error
	)
	if strings.EqualFold(filepath.Ext(path), ".shp") {
		boundaries, err = l.loadBoundariesShapefile(path)
	} else {
		boundaries, err = l.loadBoundariesCSV(path)
	}
	if err != nil {
		return nil, err
	}

	seen := make(map[int]bool, len(boundaries))
	for _, b := range boundaries {
		if seen[b.PLZ] {
			return nil, sourceErr("boundaries", eris.Errorf("duplicate postal code %d", b.PLZ))
		}
		seen[b.PLZ] = true
	}

	zap.L().Info("boundaries loaded",
		zap.String("component", "loader"),
		zap.String("path", path),
		zap.Int("records", len(boundaries)),
	)
	return boundaries, nil
}

// LoadResidents reads postal code and resident count pairs. Counts must be
// non-negative integers.
func (l *Loader) LoadResidents(path string) ([]model.ResidentRecord, error) {
	rows, err := fetcher.ReadCSV(path, fetcher.CSVOptions{
		Delimiter: l.opts.Delimiter,
		Charset:   l.opts.Charset,
		TrimSpace: true,
	})
	if err != nil {
		return nil, sourceErr("residents", err)
	}
	if len(rows) == 0 {
		return nil, sourceErr("residents", eris.New("empty file"))
	}

	cols, err := l.schema.Resolve(rows[0], model.FieldPLZ, model.FieldResidents)
	if err != nil {
		return nil, sourceErr("residents", err)
	}

	residents := make([]model.ResidentRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		plz, err := strconv.Atoi(cell(row, cols.Index(model.FieldPLZ)))
		if err != nil {
			return nil, sourceErr("residents", eris.Wrapf(err, "row %d: parse postal code", i+2))
		}
		count, err := strconv.Atoi(cell(row, cols.Index(model.FieldResidents)))
		if err != nil {
			return nil, sourceErr("residents", eris.Wrapf(err, "row %d: parse resident count", i+2))
		}
		if count < 0 {
			return nil, sourceErr("residents", eris.Errorf("row %d: negative resident count %d", i+2, count))
		}
		residents = append(residents, model.ResidentRecord{PLZ: plz, Residents: count})
	}

	zap.L().Info("residents loaded",
		zap.String("component", "loader"),
		zap.String("path", path),
		zap.Int("records", len(residents)),
	)
	return residents, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseCoord accepts both decimal-point and decimal-comma renderings, which
// coexist across registry vintages.
func parseCoord(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
