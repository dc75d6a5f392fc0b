package main

import (
	"context"
	"fmt"
	"time"

	"cropsense/internal/viewmodel"

	"github.com/spf13/cobra"
)

func (c *cli) analyzeCmd() *cobra.Command {
	var crop, location string
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run the dashboard analysis for a crop and location",
		Long: `Fetch the weather, the 7-day price forecast, the best mandi and the
spoilage risk concurrently. Weather falls back to typical values when the
weather service is down; any other failure fails the whole analysis.`,
		Example: `  cropsense analyze --crop Wheat --location "Punjab, India"`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			crop, location = c.withDefaults(crop, location)
			dash := viewmodel.NewDashboard(c.app.Client, c.app.Logger)
			st, err := dash.Analyze(cmd.Context(), crop, location)
			if err != nil {
				return err
			}

			c.printer.Notice(fmt.Sprintf("Analysis for %s in %s", st.Crop, st.Location))
			c.printer.Weather(*st.Weather, st.WeatherFallback)
			c.printer.Forecast(*st.Prediction)
			c.printer.Recommendation(*st.Recommendation)
			c.printer.Spoilage(*st.Spoilage)
			return nil
		},
	}
	cmd.Flags().StringVar(&crop, "crop", "", "Crop name (default from config)")
	cmd.Flags().StringVar(&location, "location", "", "Location (default from config)")
	return cmd
}

func (c *cli) marketCmd() *cobra.Command {
	var (
		crop, location, storage string
		transitDays             int
	)
	cmd := &cobra.Command{
		Use:   "market",
		Short: "Find the best mandi and the spoilage risk of getting there",
		Example: `  cropsense market --crop Onion --location Nashik --storage "cold storage" --transit-days 3`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			crop, location = c.withDefaults(crop, location)
			market := viewmodel.NewMarket(c.app.Client, c.app.Logger)
			st, err := market.Analyze(cmd.Context(), crop, location, storage, transitDays)
			if err != nil {
				return err
			}

			c.printer.Recommendation(*st.Recommendation)
			c.printer.Weather(*st.Weather, st.WeatherFallback)
			c.printer.Spoilage(*st.Spoilage)
			return nil
		},
	}
	cmd.Flags().StringVar(&crop, "crop", "", "Crop name (default from config)")
	cmd.Flags().StringVar(&location, "location", "", "Location (default from config)")
	cmd.Flags().StringVar(&storage, "storage", viewmodel.DefaultStorage, "Storage type")
	cmd.Flags().IntVar(&transitDays, "transit-days", viewmodel.DefaultTransitDays, "Days in transit to the mandi")
	return cmd
}

func (c *cli) healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the backend answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			h, err := c.app.Client.Health(ctx)
			if err != nil {
				return err
			}
			c.printer.Notice(fmt.Sprintf("Backend %s is %s", c.app.Client.BaseURL(), h.Status))
			return nil
		},
	}
}

// withDefaults fills an empty crop or location from config
func (c *cli) withDefaults(crop, location string) (string, string) {
	if crop == "" {
		crop = c.app.Config.Defaults.Crop
	}
	if location == "" {
		location = c.app.Config.Defaults.Location
	}
	return crop, location
}
