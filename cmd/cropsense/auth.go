package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"cropsense/internal/viewmodel"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// readSecret returns flagValue, or the first line of in when the flag was not given
func readSecret(cmd *cobra.Command, flagValue, prompt string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read %s: %w", strings.TrimSuffix(prompt, ": "), err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (c *cli) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with email and password",
		Long: `Log in with email and password. The password is read from stdin
when --password is not given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := readSecret(cmd, password, "Password: ")
			if err != nil {
				return err
			}
			user, err := c.app.Session.PasswordLogin(cmd.Context(), email, pw)
			if err != nil {
				return err
			}
			c.app.Logger.Info("logged in", zap.String("email", user.Email))
			c.printer.Notice("Welcome back, " + user.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	return cmd
}

func (c *cli) loginGoogleCmd() *cobra.Command {
	var credential string
	cmd := &cobra.Command{
		Use:   "login-google",
		Short: "Log in with a Google ID token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := c.app.Session.GoogleLogin(cmd.Context(), credential)
			if err != nil {
				return err
			}
			c.printer.Notice("Welcome, " + user.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&credential, "credential", "", "Google ID token")
	return cmd
}

func (c *cli) registerCmd() *cobra.Command {
	var name, email, password, confirm string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if confirm == "" {
				confirm = password
			}
			user, err := c.app.Session.RegisterAndLogin(cmd.Context(), name, email, password, confirm)
			if err != nil {
				return err
			}
			c.printer.Notice("Account created. Welcome, " + user.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Full name")
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Password")
	cmd.Flags().StringVar(&confirm, "confirm", "", "Password again (defaults to --password)")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := viewmodel.NewSettings(c.app.Prefs, c.app.Session)
			if err := settings.Logout(cmd.Context()); err != nil {
				return err
			}
			c.printer.Notice("Logged out")
			return nil
		},
	}
}

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			profile := viewmodel.NewProfile(c.app.Client, c.app.Session, c.app.Logger)
			st, err := profile.Load(cmd.Context())
			if err != nil {
				return err
			}
			c.printer.User(*st.User)
			return nil
		},
	}
}
