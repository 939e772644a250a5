package loader

import (
	"strconv"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkt"
	"go.uber.org/zap"

	"github.com/geowerk/plzatlas/internal/fetcher"
	"github.com/geowerk/plzatlas/internal/model"
)

// loadBoundariesCSV reads boundaries from delimited text with a WKT
// geometry column.
func (l *Loader) loadBoundariesCSV(path string) ([]model.BoundaryRecord, error) {
	rows, err := fetcher.ReadCSV(path, fetcher.CSVOptions{
		Delimiter: l.opts.Delimiter,
		Charset:   l.opts.Charset,
		TrimSpace: true,
	})
	if err != nil {
		return nil, sourceErr("boundaries", err)
	}
	if len(rows) == 0 {
		return nil, sourceErr("boundaries", eris.New("empty file"))
	}

	cols, err := l.schema.Resolve(rows[0], model.FieldPLZ, model.FieldGeometry)
	if err != nil {
		return nil, sourceErr("boundaries", err)
	}

	boundaries := make([]model.BoundaryRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		plz, err := strconv.Atoi(cell(row, cols.Index(model.FieldPLZ)))
		if err != nil {
			return nil, sourceErr("boundaries", eris.Wrapf(err, "row %d: parse postal code", i+2))
		}
		g, err := wkt.Unmarshal(cell(row, cols.Index(model.FieldGeometry)))
		if err != nil {
			return nil, sourceErr("boundaries", eris.Wrapf(err, "row %d: parse WKT geometry", i+2))
		}
		boundaries = append(boundaries, model.BoundaryRecord{PLZ: plz, Geometry: g})
	}
	return boundaries, nil
}

// loadBoundariesShapefile reads boundaries from a shapefile whose attribute
// table carries the postal code. Polygon shapes convert to MultiPolygon;
// other shape types are skipped.
func (l *Loader) loadBoundariesShapefile(path string) ([]model.BoundaryRecord, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, sourceErr("boundaries", eris.Wrap(err, "open shapefile"))
	}
	defer func() { _ = reader.Close() }()

	plzIdx := l.shapeFieldIndex(reader, model.FieldPLZ)
	if plzIdx < 0 {
		return nil, sourceErr("boundaries", eris.New("postal-code field not found in shapefile attributes"))
	}

	var boundaries []model.BoundaryRecord
	for reader.Next() {
		_, shape := reader.Shape()
		poly, ok := shape.(*shp.Polygon)
		if !ok {
			continue
		}

		plz, err := strconv.Atoi(strings.TrimSpace(reader.Attribute(plzIdx)))
		if err != nil {
			zap.L().Warn("boundaries: skipping shape with unparseable postal code",
				zap.String("component", "loader"),
				zap.String("value", reader.Attribute(plzIdx)),
			)
			continue
		}

		g := polygonToMultiPolygon(poly)
		if g == nil {
			continue
		}
		boundaries = append(boundaries, model.BoundaryRecord{PLZ: plz, Geometry: g})
	}

	return boundaries, nil
}

// shapeFieldIndex resolves an internal field key against the shapefile's
// attribute names using the schema aliases. Shapefile field names are
// null-padded fixed-width byte arrays.
func (l *Loader) shapeFieldIndex(reader *shp.Reader, field string) int {
	fields := reader.Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = trimNulls(f.String())
	}
	cols, err := l.schema.Resolve(names, field)
	if err != nil {
		return -1
	}
	return cols.Index(field)
}

func trimNulls(s string) string {
	for len(s) > 0 && s[len(s)-1] == 0 {
		s = s[:len(s)-1]
	}
	return s
}

// polygonToMultiPolygon converts a shapefile Polygon to a geom.MultiPolygon.
func polygonToMultiPolygon(p *shp.Polygon) geom.T {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY).SetSRID(4326)

	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		var end int32
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		} else {
			end = int32(len(p.Points))
		}

		flat := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}

		ring := geom.NewLinearRingFlat(geom.XY, flat)
		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(ring); err != nil {
			zap.L().Debug("boundaries: skipping malformed polygon ring",
				zap.String("component", "loader"),
				zap.Int32("part", i),
				zap.Error(err),
			)
			continue
		}

		if err := mp.Push(poly); err != nil {
			zap.L().Debug("boundaries: skipping malformed polygon part",
				zap.String("component", "loader"),
				zap.Int32("part", i),
				zap.Error(err),
			)
			continue
		}
	}

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}
