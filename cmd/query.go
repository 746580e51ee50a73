package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/kindness-map/internal/model"
	"github.com/sells-group/kindness-map/internal/spotsource"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Print the Overpass QL used by the live source",
	RunE: func(cmd *cobra.Command, _ []string) error {
		lat, _ := cmd.Flags().GetFloat64("lat")
		lng, _ := cmd.Flags().GetFloat64("lng")
		radius, _ := cmd.Flags().GetFloat64("radius")

		center := model.Coordinate{Lat: cfg.Map.DefaultLat, Lng: cfg.Map.DefaultLng}
		if cmd.Flags().Changed("lat") {
			center.Lat = lat
		}
		if cmd.Flags().Changed("lng") {
			center.Lng = lng
		}
		if radius <= 0 {
			radius = cfg.Overpass.RadiusM
		}

		live := spotsource.NewLive(nil, radius, int(cfg.Overpass.Timeout.Seconds()))
		_, err := fmt.Fprintln(cmd.OutOrStdout(), live.Query(center))
		return err
	},
}

func init() {
	queryCmd.Flags().Float64("lat", 0, "latitude (default from config)")
	queryCmd.Flags().Float64("lng", 0, "longitude (default from config)")
	queryCmd.Flags().Float64("radius", 0, "radius in meters (default from config)")
	rootCmd.AddCommand(queryCmd)
}
