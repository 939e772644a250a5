package model

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Internal field keys resolved through the schema. Source files name the
// same semantic columns differently across vintages; the schema maps each
// key to the list of accepted source headers.
const (
	FieldPLZ       = "plz"
	FieldResidents = "residents"
	FieldGeometry  = "geometry"
	FieldAddress   = "address"
	FieldDistrict  = "district"
	FieldLat       = "lat"
	FieldLng       = "lng"
)

// Schema maps internal field keys to accepted source column names.
type Schema struct {
	Aliases map[string][]string `yaml:"aliases"`
}

// DefaultSchema returns the alias table covering the known source vintages.
func DefaultSchema() *Schema {
	return &Schema{
		Aliases: map[string][]string{
			FieldPLZ:       {"PLZ", "Postleitzahl", "plz"},
			FieldResidents: {"Einwohner", "einwohner", "Einwohnerzahl"},
			FieldGeometry:  {"geometry", "WKT", "geom"},
			FieldAddress:   {"Adresse", "Anzeigename (Karte)", "Strasse"},
			FieldDistrict:  {"Ort", "Kreis/kreisfreie Stadt"},
			FieldLat:       {"Breitengrad", "Latitude"},
			FieldLng:       {"Laengengrad", "Längengrad", "Longitude"},
		},
	}
}

// LoadSchema reads a schema file and merges it over the defaults, so a
// config file only needs to list the aliases that differ.
func LoadSchema(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "model: read schema %s", path)
	}

	var loaded Schema
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, eris.Wrap(err, "model: parse schema")
	}

	s := DefaultSchema()
	for key, aliases := range loaded.Aliases {
		s.Aliases[key] = aliases
	}
	return s, nil
}

// Columns is a resolved header: internal field key to column index.
type Columns map[string]int

// Index returns the column index for a field, or -1 if the field was not
// resolved (optional fields may be absent from a source).
func (c Columns) Index(field string) int {
	if i, ok := c[field]; ok {
		return i
	}
	return -1
}

// Resolve matches a source header row against the schema and returns the
// column-index table. Matching is case-insensitive and ignores surrounding
// whitespace. Fields listed in required must resolve or an error naming the
// first missing field is returned.
func (s *Schema) Resolve(header []string, required ...string) (Columns, error) {
	normalized := make([]string, len(header))
	for i, h := range header {
		normalized[i] = strings.ToLower(strings.TrimSpace(h))
	}

	cols := make(Columns)
	for field, aliases := range s.Aliases {
		for _, alias := range aliases {
			want := strings.ToLower(alias)
			for i, h := range normalized {
				if h == want {
					cols[field] = i
					break
				}
			}
			if _, ok := cols[field]; ok {
				break
			}
		}
	}

	for _, field := range required {
		if _, ok := cols[field]; !ok {
			return nil, eris.Errorf("model: required column %q not found in header", field)
		}
	}
	return cols, nil
}
