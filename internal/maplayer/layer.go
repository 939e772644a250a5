package maplayer

import (
	"regexp"
	"slices"

	"github.com/rotisserie/eris"
)

var placeholderRe = regexp.MustCompile(`\{([^{}]+)\}`)

// Layer is an immutable, renderable projection of one dataset: a value
// column driving color intensity, a two-color gradient, and a tooltip
// template referencing dataset columns.
type Layer struct {
	data        Dataset
	valueColumn string
	low, high   rgb
	tooltip     string
}

// NewLayer validates and builds a Layer. The value column must exist in the
// dataset schema, the color range is exactly two resolvable colors (low,
// high), and every tooltip placeholder must name a dataset column.
func NewLayer(data Dataset, valueColumn string, colorRange []string, tooltip string) (Layer, error) {
	if data == nil {
		return Layer{}, eris.New("maplayer: nil dataset")
	}
	cols := data.Columns()
	if !slices.Contains(cols, valueColumn) {
		return Layer{}, eris.Errorf("maplayer: value column %q not in dataset schema %v", valueColumn, cols)
	}
	if len(colorRange) != 2 {
		return Layer{}, eris.Errorf("maplayer: color range must be exactly two colors, got %d", len(colorRange))
	}
	low, err := parseColor(colorRange[0])
	if err != nil {
		return Layer{}, err
	}
	high, err := parseColor(colorRange[1])
	if err != nil {
		return Layer{}, err
	}
	for _, m := range placeholderRe.FindAllStringSubmatch(tooltip, -1) {
		if !slices.Contains(cols, m[1]) {
			return Layer{}, eris.Errorf("maplayer: tooltip references unknown column %q", m[1])
		}
	}

	return Layer{
		data:        data,
		valueColumn: valueColumn,
		low:         low,
		high:        high,
		tooltip:     tooltip,
	}, nil
}

// Visualizer is a registry of named layers. Re-adding a name overwrites;
// insertion order is irrelevant.
type Visualizer struct {
	layers map[string]Layer
}

// NewVisualizer creates an empty Visualizer.
func NewVisualizer() *Visualizer {
	return &Visualizer{layers: make(map[string]Layer)}
}

// AddLayer registers a layer under name, replacing any previous layer with
// that name.
func (v *Visualizer) AddLayer(name string, layer Layer) {
	v.layers[name] = layer
}

// Layer returns the layer registered under name.
func (v *Visualizer) Layer(name string) (Layer, bool) {
	l, ok := v.layers[name]
	return l, ok
}

// Names returns the registered layer names, sorted.
func (v *Visualizer) Names() []string {
	names := make([]string, 0, len(v.layers))
	for name := range v.layers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
