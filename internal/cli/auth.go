package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Makepad-fr/tada/internal/auth"
	"github.com/Makepad-fr/tada/internal/ui"
)

func newAuthCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the bearer token sent to the backend",
	}
	cmd.AddCommand(newAuthLoginCmd(app))
	cmd.AddCommand(newAuthLogoutCmd(app))
	cmd.AddCommand(newAuthStatusCmd(app))
	cmd.AddCommand(newAuthWhoAmICmd(app))
	return cmd
}

func newAuthLoginCmd(app *App) *cobra.Command {
	var token string
	var expiresIn time.Duration
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Save a token to ~/.tada/credentials.json",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				fmt.Fprint(cmd.OutOrStdout(), "Paste your token: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read token: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout())
				token = line
			}
			var expires *time.Time
			if expiresIn > 0 {
				at := time.Now().Add(expiresIn)
				expires = &at
			}
			if err := app.creds.Set(token, expires); err != nil {
				return fmt.Errorf("save token: %w", err)
			}
			app.log.Debug().Msg("token saved")
			ui.OK(cmd.OutOrStdout(), "logged in")
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "Token to save (read from stdin when empty)")
	cmd.Flags().DurationVar(&expiresIn, "expires-in", 0, "Record an expiry this far in the future")
	return cmd
}

func newAuthLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Delete the saved token",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			ti, _ := app.creds.Get()
			if ti != nil && ti.Source == "env" {
				ui.OK(cmd.OutOrStdout(), "token is provided by TADA_TOKEN env var (nothing to delete)")
				return nil
			}
			if err := app.creds.Delete(); err != nil {
				return fmt.Errorf("logout: %w", err)
			}
			ui.OK(cmd.OutOrStdout(), "logged out")
			return nil
		},
	}
}

func newAuthStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show where the token comes from",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			ti, err := app.creds.Get()
			if err != nil {
				return err
			}
			if ti == nil {
				fmt.Fprintln(out, ui.Current().Muted.Render("not logged in"))
				fmt.Fprintln(out, "Run: todo auth login")
				return nil
			}
			fmt.Fprintf(out, "source: %s\n", ti.Source)
			if ti.ExpiresAt != nil {
				fmt.Fprintf(out, "expires: %s\n", ti.ExpiresAt.UTC().Format(time.RFC3339))
			} else {
				fmt.Fprintln(out, "expires: (unknown)")
			}
			fmt.Fprintln(out, "env override: TADA_TOKEN")
			return nil
		},
	}
}

// whoami prints the claims of a JWT locally (unverified); opaque tokens
// print basic info.
func newAuthWhoAmICmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the claims of a JWT token",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			ti, err := app.creds.Get()
			if err != nil {
				return err
			}
			if ti == nil {
				return errUsage("not logged in. Run: todo auth login")
			}
			if claims, err := auth.Claims(ti.Token); err == nil {
				b, err := json.Marshal(claims)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, "JWT payload:")
				fmt.Fprintln(out, string(b))
				return nil
			}
			fmt.Fprintln(out, "Opaque token (cannot introspect locally).")
			fmt.Fprintln(out, "source:", ti.Source)
			return nil
		},
	}
}
