package main

import (
	"github.com/spf13/cobra"

	"github.com/jun/drivectl/internal/app"
)

func newAuthCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage stored Google credentials",
	}

	// withAuth resolves the handler and the effective account for a subcommand.
	withAuth := func(run func(cmd *cobra.Command, a *app.App) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			a, err := c.application(cmd.Context())
			if err != nil {
				return err
			}
			if a.Auth == nil {
				return app.ErrAuthUnavailable
			}
			return run(cmd, a)
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "login",
			Short: "Authorize drivectl in the browser and store the credential",
			Args:  usageArgs(cobra.NoArgs),
			RunE: withAuth(func(cmd *cobra.Command, a *app.App) error {
				return a.Auth.Login(cmd.Context(), a.Config.Account)
			}),
		},
		&cobra.Command{
			Use:   "logout",
			Short: "Remove the stored credential",
			Args:  usageArgs(cobra.NoArgs),
			RunE: withAuth(func(cmd *cobra.Command, a *app.App) error {
				return a.Auth.Logout(cmd.Context(), a.Config.Account)
			}),
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show the stored credential",
			Args:  usageArgs(cobra.NoArgs),
			RunE: withAuth(func(cmd *cobra.Command, a *app.App) error {
				return a.Auth.Status(cmd.Context(), a.Config.Account)
			}),
		},
	)
	return cmd
}
