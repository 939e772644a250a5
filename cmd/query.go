package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/geowerk/plzatlas/internal/app"
)

var queryOut string

var queryCmd = &cobra.Command{
	Use:   "query <pincode>",
	Short: "Filter the datasets by pincode and render the result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := app.New(cfg)
		if err := a.Load(cmd.Context()); err != nil {
			return err
		}

		res, err := a.SubmitPincodeQuery(args[0])
		if err != nil {
			return err
		}

		if res.ResidentsMessage != "" {
			fmt.Println(res.ResidentsMessage)
		}
		if res.StationsMessage != "" && res.StationsMessage != res.ResidentsMessage {
			fmt.Println(res.StationsMessage)
		}
		fmt.Printf("residents: %d rows, stations: %d rows\n", len(res.Residents), len(res.Stations))

		dir := cfg.Render.OutDir
		if queryOut != "" {
			dir = queryOut
		}
		return writeArtifacts(a.RenderLayers([]string{app.LayerResidents, app.LayerStations}), dir)
	},
}

func init() {
	queryCmd.Flags().StringVar(&queryOut, "out", "", "output directory (default from config)")
	rootCmd.AddCommand(queryCmd)
}
