package maplayer

import (
	"errors"
	"strconv"

	"github.com/twpayne/go-geom/encoding/geojson"
)

// ErrUnknownLayer marks a render request for a name that was never
// registered. It is recovered per layer; remaining layers still render.
var ErrUnknownLayer = errors.New("maplayer: unknown layer")

// UnknownLayerError reports which requested layer name was not registered.
type UnknownLayerError struct {
	Name string
}

func (e *UnknownLayerError) Error() string {
	return "maplayer: unknown layer " + strconv.Quote(e.Name)
}

func (e *UnknownLayerError) Unwrap() error { return ErrUnknownLayer }

// Result is the per-name outcome of a render pass. Exactly one of Artifact
// and Err is set.
type Result struct {
	Name     string
	Artifact *geojson.FeatureCollection
	Err      error
}

// Render resolves each requested name in order against the visualizer and
// emits one GeoJSON FeatureCollection per layer: geometry outlines, a fill
// color interpolated across the layer's value range, and a tooltip built
// from the layer template. An unknown name yields an error Result without
// aborting the remaining names. The visualizer is not mutated; rendering
// the same state twice yields the same outcomes in the same order.
func Render(v *Visualizer, names []string) []Result {
	results := make([]Result, 0, len(names))
	for _, name := range names {
		layer, ok := v.Layer(name)
		if !ok {
			results = append(results, Result{Name: name, Err: &UnknownLayerError{Name: name}})
			continue
		}
		results = append(results, Result{Name: name, Artifact: layer.render()})
	}
	return results
}

// render emits the layer's feature collection. A layer whose value column
// spans a single value paints everything with the low endpoint.
func (l Layer) render() *geojson.FeatureCollection {
	min, max := l.valueRange()
	span := max - min

	fc := &geojson.FeatureCollection{}
	for i := 0; i < l.data.Len(); i++ {
		t := 0.0
		if span > 0 {
			if v, ok := l.data.Value(i, l.valueColumn); ok {
				t = (v - min) / span
			}
		}
		props := map[string]interface{}{
			"fill":    lerp(l.low, l.high, t).hex(),
			"tooltip": l.renderTooltip(i),
		}
		for _, col := range l.data.Columns() {
			props[col] = l.data.Display(i, col)
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			Geometry:   l.data.Geometry(i),
			Properties: props,
		})
	}
	return fc
}

func (l Layer) valueRange() (min, max float64) {
	first := true
	for i := 0; i < l.data.Len(); i++ {
		v, ok := l.data.Value(i, l.valueColumn)
		if !ok {
			continue
		}
		if first {
			min, max = v, v
			first = false
			continue
		}
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

// renderTooltip substitutes column display values into the template.
// Placeholders were validated against the dataset schema at construction.
func (l Layer) renderTooltip(i int) string {
	return placeholderRe.ReplaceAllStringFunc(l.tooltip, func(m string) string {
		col := m[1 : len(m)-1]
		return l.data.Display(i, col)
	})
}
