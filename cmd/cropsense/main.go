package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"cropsense/internal/api"
	"cropsense/internal/app"
	"cropsense/internal/models"
	"cropsense/internal/render"
	"cropsense/internal/session"
	"cropsense/internal/viewmodel"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// cli carries the state one invocation shares between its commands
type cli struct {
	opts    app.Options
	app     *app.App
	printer *render.Printer
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "cropsense",
		Short: "Crop price, market, disease and yield insights from the terminal",
		Long: `cropsense talks to the crop prediction backend and renders its answers.

The session token and UI preferences are kept between runs
(~/.cropsense/state.json by default, or redis/mysql per config).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(cmd.Context(), c.opts)
			if err != nil {
				return err
			}
			c.app = a
			theme, _ := a.Prefs.Theme(cmd.Context())
			c.printer = render.NewPrinter(cmd.OutOrStdout(), render.ThemeFor(theme))
			return nil
		},
	}

	root.PersistentFlags().StringVar(&c.opts.ConfigPath, "config", "./config.yaml", "Path to the YAML config file")
	root.PersistentFlags().BoolVarP(&c.opts.Verbose, "verbose", "v", false, "Enable verbose logging")
	root.PersistentFlags().StringVar(&c.opts.BaseURL, "base-url", "", "Backend base URL (overrides api.base_url)")
	root.PersistentFlags().BoolVar(&c.opts.Ephemeral, "ephemeral", false, "Keep session and preferences in memory for this run only")

	root.AddCommand(
		c.loginCmd(),
		c.loginGoogleCmd(),
		c.registerCmd(),
		c.logoutCmd(),
		c.whoamiCmd(),
		c.analyzeCmd(),
		c.marketCmd(),
		c.diseaseCmd(),
		c.yieldCmd(),
		c.prefsCmd(),
		c.healthCmd(),
	)
	return root
}

// failure turns a command error into the one line shown to the user
func failure(err error) string {
	var ve *models.ValidationError
	switch {
	case errors.As(err, &ve):
		return ve.Message
	case errors.Is(err, session.ErrSessionExpired):
		return "Your session has expired. Please log in again."
	case errors.Is(err, session.ErrNotAuthenticated):
		return "Please log in first (cropsense login)."
	case errors.Is(err, viewmodel.ErrSuperseded):
		return "Cancelled."
	}
	return api.UserMessage(err, err.Error())
}

// execute runs one command line. The app is closed whether or not the command failed;
// cobra skips post-run hooks after an error.
func (c *cli) execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	root := c.rootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.ExecuteContext(ctx)
	c.close()
	return err
}

func (c *cli) close() {
	if c.app == nil {
		return
	}
	if err := c.app.Close(); err != nil {
		c.app.Logger.Warn("cleanup failed", zap.Error(err))
	}
	c.app = nil
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	c := &cli{}
	if err := c.execute(ctx, args, stdin, stdout, stderr); err != nil {
		render.NewPrinter(stderr, render.LightTheme()).Error(failure(err))
		return 1
	}
	return 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
