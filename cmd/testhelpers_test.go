package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/geowerk/plzatlas/internal/app"
	"github.com/geowerk/plzatlas/internal/config"
)

const testWKT = "MULTIPOLYGON (((13.38 52.51, 13.40 52.51, 13.40 52.53, 13.38 52.53, 13.38 52.51)))"

// testApp builds a loaded App over small fixture files.
func testApp(t *testing.T) *app.App {
	t.Helper()
	dir := t.TempDir()

	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Register")
	require.NoError(t, err)
	for _, rowData := range [][]string{
		{"Postleitzahl"},
		{"10115"},
		{"10115"},
	} {
		row := sheet.AddRow()
		for _, cellData := range rowData {
			row.AddCell().SetString(cellData)
		}
	}
	stationsPath := filepath.Join(dir, "stations.xlsx")
	require.NoError(t, f.Save(stationsPath))

	boundariesPath := filepath.Join(dir, "boundaries.csv")
	require.NoError(t, os.WriteFile(boundariesPath,
		[]byte("PLZ;geometry\n10115;"+testWKT+"\n"), 0o644))

	residentsPath := filepath.Join(dir, "residents.csv")
	require.NoError(t, os.WriteFile(residentsPath,
		[]byte("plz;einwohner\n10115;20234\n"), 0o644))

	c := &config.Config{
		Sources: config.SourcesConfig{
			Stations:   stationsPath,
			Boundaries: boundariesPath,
			Residents:  residentsPath,
			Delimiter:  ";",
		},
		Layers: config.LayersConfig{
			Residents: config.LayerStyle{
				ValueColumn: "Einwohner",
				ColorRange:  []string{"yellow", "red"},
				Tooltip:     "PLZ: {PLZ}, Einwohner: {Einwohner}",
			},
			Stations: config.LayerStyle{
				ValueColumn: "Number",
				ColorRange:  []string{"yellow", "blue"},
				Tooltip:     "PLZ: {PLZ}, Number: {Number}",
			},
		},
	}

	a := app.New(c)
	require.NoError(t, a.Load(context.Background()))
	return a
}
