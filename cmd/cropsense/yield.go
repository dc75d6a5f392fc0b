package main

import (
	"cropsense/internal/models"
	"cropsense/internal/viewmodel"

	"github.com/spf13/cobra"
)

func (c *cli) yieldCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "yield",
		Short: "Predict harvest and profit for a farm",
	}

	var req models.YieldRequest
	predict := &cobra.Command{
		Use:     "predict",
		Short:   "Predict yield for a farm",
		Example: `  cropsense yield predict --lat 30.9 --lon 75.85 --crop Rice --land 5 --soil alluvial --irrigation`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			y := viewmodel.NewYield(c.app.Client, c.app.Logger)
			st, err := y.Predict(cmd.Context(), req)
			if err != nil {
				return err
			}
			c.printer.Yield(*st.Prediction)
			if len(st.History) > 0 {
				c.printer.YieldHistory(st.History)
			}
			return nil
		},
	}
	f := predict.Flags()
	f.Float64Var(&req.Latitude, "lat", 0, "Farm latitude")
	f.Float64Var(&req.Longitude, "lon", 0, "Farm longitude")
	f.StringVar(&req.Crop, "crop", "", "Crop to grow")
	f.Float64Var(&req.LandSize, "land", 0, "Land size")
	f.StringVar(&req.Unit, "unit", "acres", "Land unit: acres or hectares")
	f.StringVar(&req.SoilType, "soil", "alluvial", "Soil type: alluvial, black, red, sandy or clay")
	f.BoolVar(&req.Irrigation, "irrigation", false, "Farm is irrigated")

	var limit int
	history := &cobra.Command{
		Use:   "history",
		Short: "List previous yield predictions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			y := viewmodel.NewYield(c.app.Client, c.app.Logger)
			h, err := y.LoadHistory(cmd.Context(), limit)
			if err != nil {
				return err
			}
			c.printer.YieldHistory(h)
			return nil
		},
	}
	history.Flags().IntVar(&limit, "limit", 0, "Number of predictions (0 uses the backend default)")

	cmd.AddCommand(predict, history)
	return cmd
}
