package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geowerk/plzatlas/internal/app"
	"github.com/geowerk/plzatlas/internal/maplayer"
)

func TestLayerSlug(t *testing.T) {
	assert.Equal(t, "charging_stations", layerSlug("Charging Stations"))
	assert.Equal(t, "residents", layerSlug("Residents"))
}

func TestWriteArtifacts(t *testing.T) {
	a := testApp(t)
	dir := t.TempDir()

	results := a.RenderLayers([]string{app.LayerResidents, app.LayerStations})
	require.NoError(t, writeArtifacts(results, dir))

	for _, name := range []string{"residents.geojson", "charging_stations.geojson"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Contains(t, string(data), "FeatureCollection")
	}
}

func TestWriteArtifacts_PartialFailure(t *testing.T) {
	a := testApp(t)
	dir := t.TempDir()

	results := a.RenderLayers([]string{"Ghost", app.LayerResidents})
	require.NoError(t, writeArtifacts(results, dir))

	_, err := os.Stat(filepath.Join(dir, "residents.geojson"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "ghost.geojson"))
	assert.True(t, os.IsNotExist(err))
}

func TestWriteArtifacts_AllFailed(t *testing.T) {
	results := []maplayer.Result{
		{Name: "Ghost", Err: &maplayer.UnknownLayerError{Name: "Ghost"}},
	}
	err := writeArtifacts(results, t.TempDir())
	assert.Error(t, err)
}

func TestWriteArtifacts_Empty(t *testing.T) {
	assert.NoError(t, writeArtifacts(nil, t.TempDir()))
}
