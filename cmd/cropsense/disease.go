package main

import (
	"cropsense/internal/viewmodel"

	"github.com/spf13/cobra"
)

func (c *cli) diseaseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "disease",
		Short: "Detect crop diseases from leaf photos",
	}

	var cropHint string
	detect := &cobra.Command{
		Use:   "detect <image>",
		Short: "Upload a leaf photo for diagnosis",
		Long: `Upload a leaf photo for diagnosis. The file must be an image
(checked by content, not extension) no larger than 10 MB.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := viewmodel.NewDisease(c.app.Client, c.app.Logger)
			if err := d.SelectFile(args[0]); err != nil {
				return err
			}
			st, err := d.Analyze(cmd.Context(), cropHint)
			if err != nil {
				return err
			}
			c.printer.Disease(*st.Result)
			if len(st.History) > 0 {
				c.printer.DetectionHistory(st.History)
			}
			return nil
		},
	}
	detect.Flags().StringVar(&cropHint, "crop", "", "Crop shown in the photo, if known")

	var limit int
	history := &cobra.Command{
		Use:   "history",
		Short: "List recent scans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d := viewmodel.NewDisease(c.app.Client, c.app.Logger)
			h, err := d.LoadHistory(cmd.Context(), limit)
			if err != nil {
				return err
			}
			c.printer.DetectionHistory(h)
			return nil
		},
	}
	history.Flags().IntVar(&limit, "limit", 0, "Number of scans (0 uses the backend default)")

	cmd.AddCommand(detect, history)
	return cmd
}
