package main

import (
	"fmt"

	"cropsense/internal/viewmodel"

	"github.com/spf13/cobra"
)

func (c *cli) prefsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change language and theme",
	}

	get := &cobra.Command{
		Use:   "get",
		Short: "Show the saved preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := viewmodel.NewSettings(c.app.Prefs, c.app.Session).Load(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "language  %s\n", st.Language)
			fmt.Fprintf(out, "theme     %s\n", st.Theme)
			fmt.Fprintf(out, "session   %s\n", c.app.Session.State())
			return nil
		},
	}

	set := &cobra.Command{
		Use:       "set <language|theme> <value>",
		Short:     "Change a preference",
		Example:   "  cropsense prefs set language hi\n  cropsense prefs set theme dark",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"language", "theme"},
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := viewmodel.NewSettings(c.app.Prefs, c.app.Session)
			var err error
			switch args[0] {
			case "language":
				err = settings.SetLanguage(cmd.Context(), args[1])
			case "theme":
				err = settings.SetTheme(cmd.Context(), args[1])
			default:
				return fmt.Errorf("unknown preference %q (want language or theme)", args[0])
			}
			if err != nil {
				return err
			}
			c.printer.Notice(fmt.Sprintf("%s set to %s", args[0], args[1]))
			return nil
		},
	}

	cmd.AddCommand(get, set)
	return cmd
}
