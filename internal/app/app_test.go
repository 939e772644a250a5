package app

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/geowerk/plzatlas/internal/config"
	"github.com/geowerk/plzatlas/internal/ledger"
	"github.com/geowerk/plzatlas/internal/loader"
	"github.com/geowerk/plzatlas/internal/maplayer"
)

const (
	wktMitte = "MULTIPOLYGON (((13.38 52.51, 13.40 52.51, 13.40 52.53, 13.38 52.53, 13.38 52.51)))"
	wktGate  = "MULTIPOLYGON (((13.36 52.51, 13.38 52.51, 13.38 52.52, 13.36 52.52, 13.36 52.51)))"
)

// fixtureConfig writes the three source files and returns a config wired to
// them with the standard layer styles.
func fixtureConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Register")
	require.NoError(t, err)
	for _, rowData := range [][]string{
		{"Postleitzahl", "Ort"},
		{"10115", "Berlin"},
		{"10115", "Berlin"},
		{"bad", "Berlin"},
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
		[]byte("PLZ;geometry\n10115;"+wktMitte+"\n10117;"+wktGate+"\n"), 0o644))

	residentsPath := filepath.Join(dir, "residents.csv")
	require.NoError(t, os.WriteFile(residentsPath,
		[]byte("plz;einwohner\n10115;20234\n10117;12433\n"), 0o644))

	return &config.Config{
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
}

func loadedApp(t *testing.T) *App {
	t.Helper()
	a := New(fixtureConfig(t))
	require.NoError(t, a.Load(context.Background()))
	return a
}

func TestLoad(t *testing.T) {
	a := loadedApp(t)

	assert.Len(t, a.boundaries, 2)
	assert.Len(t, a.residents, 2)
	assert.Len(t, a.aggregates, 2)
	assert.ElementsMatch(t, []string{LayerResidents, LayerStations}, a.LayerNames())
}

func TestLoad_MissingSourceIsFatal(t *testing.T) {
	cfg := fixtureConfig(t)
	cfg.Sources.Boundaries = filepath.Join(t.TempDir(), "absent.csv")

	a := New(cfg)
	err := a.Load(context.Background())
	require.Error(t, err)
	assert.True(t, loader.IsSourceRead(err))
}

func TestSubmitPincodeQuery_Match(t *testing.T) {
	a := loadedApp(t)

	res, err := a.SubmitPincodeQuery("10115")
	require.NoError(t, err)

	require.Len(t, res.Residents, 1)
	assert.Equal(t, 10115, res.Residents[0].PLZ)
	require.Len(t, res.Stations, 1)
	assert.Equal(t, 2, res.Stations[0].Number)
	assert.Equal(t, "Showing data for Pincode: 10115", res.ResidentsMessage)
	assert.Equal(t, "Showing data for Pincode: 10115", res.StationsMessage)
}

func TestSubmitPincodeQuery_MissFallsBack(t *testing.T) {
	a := loadedApp(t)

	res, err := a.SubmitPincodeQuery("99999")
	require.NoError(t, err)

	// Full datasets come back; the message carries the notice.
	assert.Len(t, res.Residents, 2)
	assert.Len(t, res.Stations, 2)
	assert.Equal(t, "No data found for Pincode: 99999", res.ResidentsMessage)
}

func TestSubmitPincodeQuery_Invalid(t *testing.T) {
	a := loadedApp(t)

	res, err := a.SubmitPincodeQuery("not-a-plz")
	require.NoError(t, err)
	assert.Len(t, res.Residents, 2)
	assert.Equal(t, "Please enter a valid numeric pincode.", res.ResidentsMessage)
}

func TestSubmitPincodeQuery_RebuildsLayers(t *testing.T) {
	a := loadedApp(t)

	_, err := a.SubmitPincodeQuery("10115")
	require.NoError(t, err)

	results := a.RenderLayers([]string{LayerResidents, LayerStations})
	require.Len(t, results, 2)
	require.NoError(t, results[0].Err)
	assert.Len(t, results[0].Artifact.Features, 1)
	require.NoError(t, results[1].Err)
	assert.Len(t, results[1].Artifact.Features, 1)
}

func TestRenderLayers_UnknownName(t *testing.T) {
	a := loadedApp(t)

	results := a.RenderLayers([]string{"Ghost", LayerResidents})
	require.Len(t, results, 2)
	assert.ErrorIs(t, results[0].Err, maplayer.ErrUnknownLayer)
	assert.NoError(t, results[1].Err)
}

func TestConcurrentQueryAndRender(t *testing.T) {
	a := loadedApp(t)

	const workers = 8
	const perWorker = 25

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				_, err := a.SubmitPincodeQuery("10115")
				assert.NoError(t, err)

				results := a.RenderLayers([]string{LayerResidents, LayerStations})
				if !assert.Len(t, results, 2) {
					return
				}
				for _, res := range results {
					if !assert.NoError(t, res.Err) {
						continue
					}
					// A render never observes a half-rebuilt layer: the
					// artifact reflects either the full dataset or the
					// filtered one, nothing in between.
					n := len(res.Artifact.Features)
					assert.True(t, n == 1 || n == 2, "got %d features", n)
				}
			}
		}()
	}
	wg.Wait()
}

func TestRatingRoundTrip(t *testing.T) {
	a := loadedApp(t)

	_, err := a.SubmitRating(10115, 4, "Good")
	require.NoError(t, err)
	_, err = a.SubmitRating(10115, 2, "Slow")
	require.NoError(t, err)

	s := a.RatingSummary(10115)
	assert.InDelta(t, 3.0, s.Mean, 1e-9)
	assert.Equal(t, []string{"1. Good", "2. Slow"}, s.Reviews)

	_, err = a.SubmitRating(10115, 9, "nope")
	assert.ErrorIs(t, err, ledger.ErrInvalidRating)
	assert.Equal(t, 2, a.RatingSummary(10115).Count)
}
