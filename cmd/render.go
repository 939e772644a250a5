package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/geowerk/plzatlas/internal/app"
	"github.com/geowerk/plzatlas/internal/maplayer"
)

var (
	renderLayers []string
	renderOut    string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render map layers to GeoJSON files",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := app.New(cfg)
		if err := a.Load(cmd.Context()); err != nil {
			return err
		}

		names := renderLayers
		if len(names) == 0 {
			names = a.LayerNames()
		}

		return writeArtifacts(a.RenderLayers(names), outDir())
	},
}

// writeArtifacts writes one GeoJSON file per successful layer result.
// Per-layer failures are reported and do not abort the remaining layers;
// an error is returned only if every requested layer failed.
func writeArtifacts(results []maplayer.Result, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrap(err, "create output dir")
	}

	var rendered int
	for _, res := range results {
		if res.Err != nil {
			fmt.Fprintf(os.Stderr, "layer %q: %v\n", res.Name, res.Err)
			continue
		}
		data, err := json.Marshal(res.Artifact)
		if err != nil {
			return eris.Wrapf(err, "encode layer %q", res.Name)
		}
		path := filepath.Join(dir, layerSlug(res.Name)+".geojson")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return eris.Wrapf(err, "write %s", path)
		}
		zap.L().Info("layer rendered",
			zap.String("component", "cmd.render"),
			zap.String("layer", res.Name),
			zap.String("path", path),
		)
		fmt.Printf("%s -> %s\n", res.Name, path)
		rendered++
	}

	if rendered == 0 && len(results) > 0 {
		return eris.New("no layers rendered")
	}
	return nil
}

func layerSlug(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "_")
}

func outDir() string {
	if renderOut != "" {
		return renderOut
	}
	return cfg.Render.OutDir
}

func init() {
	renderCmd.Flags().StringSliceVar(&renderLayers, "layers", nil, "layer names to render (default all)")
	renderCmd.Flags().StringVar(&renderOut, "out", "", "output directory (default from config)")
	rootCmd.AddCommand(renderCmd)
}
