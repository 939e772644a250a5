package maplayer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testVisualizer(t *testing.T) *Visualizer {
	t.Helper()
	v := NewVisualizer()

	residents, err := NewLayer(testResidentData(), ColEinwohner, []string{"yellow", "red"}, "PLZ: {PLZ}, Einwohner: {Einwohner}")
	require.NoError(t, err)
	v.AddLayer("Residents", residents)

	stations, err := NewLayer(AggregateDataset{
		{PLZ: 10115, Number: 2, Geometry: testGeom()},
		{PLZ: 10117, Number: 0, Geometry: testGeom()},
	}, ColNumber, []string{"yellow", "blue"}, "PLZ: {PLZ}, Number: {Number}")
	require.NoError(t, err)
	v.AddLayer("Charging Stations", stations)

	return v
}

func TestRender_OrderAndPartialFailure(t *testing.T) {
	v := testVisualizer(t)

	results := Render(v, []string{"Residents", "Ghost", "Charging Stations"})
	require.Len(t, results, 3)

	assert.Equal(t, "Residents", results[0].Name)
	require.NoError(t, results[0].Err)
	assert.NotNil(t, results[0].Artifact)

	// A missing layer fails alone; the remaining names still render.
	assert.Equal(t, "Ghost", results[1].Name)
	require.Error(t, results[1].Err)
	assert.ErrorIs(t, results[1].Err, ErrUnknownLayer)
	assert.Nil(t, results[1].Artifact)

	assert.Equal(t, "Charging Stations", results[2].Name)
	require.NoError(t, results[2].Err)
	assert.NotNil(t, results[2].Artifact)
}

func TestRender_Idempotent(t *testing.T) {
	v := testVisualizer(t)
	names := []string{"Charging Stations", "Ghost", "Residents"}

	first := Render(v, names)
	second := Render(v, names)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Name, second[i].Name)
		assert.Equal(t, first[i].Err == nil, second[i].Err == nil)
		if first[i].Err == nil {
			require.Len(t, second[i].Artifact.Features, len(first[i].Artifact.Features))
			for j := range first[i].Artifact.Features {
				assert.Equal(t, first[i].Artifact.Features[j].Properties, second[i].Artifact.Features[j].Properties)
			}
		}
	}
}

func TestRender_FillInterpolation(t *testing.T) {
	v := testVisualizer(t)

	results := Render(v, []string{"Residents"})
	require.NoError(t, results[0].Err)
	features := results[0].Artifact.Features
	require.Len(t, features, 2)

	// The max value paints the high endpoint, the min the low one.
	assert.Equal(t, "#ff0000", features[0].Properties["fill"]) // 20234 residents
	assert.Equal(t, "#ffff00", features[1].Properties["fill"]) // 12433 residents
}

func TestRender_Tooltip(t *testing.T) {
	v := testVisualizer(t)

	results := Render(v, []string{"Charging Stations"})
	require.NoError(t, results[0].Err)
	features := results[0].Artifact.Features
	require.Len(t, features, 2)

	assert.Equal(t, "PLZ: 10115, Number: 2", features[0].Properties["tooltip"])
	assert.Equal(t, "PLZ: 10117, Number: 0", features[1].Properties["tooltip"])
}

func TestRender_SingleValuedRange(t *testing.T) {
	v := NewVisualizer()
	layer, err := NewLayer(ResidentDataset{
		{PLZ: 10115, Residents: 500, Geometry: testGeom()},
		{PLZ: 10117, Residents: 500, Geometry: testGeom()},
	}, ColEinwohner, []string{"yellow", "red"}, "")
	require.NoError(t, err)
	v.AddLayer("Residents", layer)

	results := Render(v, []string{"Residents"})
	require.NoError(t, results[0].Err)
	for _, f := range results[0].Artifact.Features {
		assert.Equal(t, "#ffff00", f.Properties["fill"])
	}
}

func TestUnknownLayerError_Message(t *testing.T) {
	err := &UnknownLayerError{Name: "Ghost"}
	assert.Contains(t, err.Error(), `"Ghost"`)
	assert.ErrorIs(t, err, ErrUnknownLayer)
}
