package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jun/drivectl/internal/app"
	"github.com/jun/drivectl/internal/config"
	"github.com/jun/drivectl/internal/handler"
	"github.com/jun/drivectl/internal/logging"
)

// cli carries global flags and shared state to every command.
type cli struct {
	stdout io.Writer
	stderr io.Writer

	cfgFile string
	account string
	backend string
	verbose bool

	logger *logging.Logger
}

// application loads configuration, applies flag overrides and wires the handlers.
func (c *cli) application(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load(c.cfgFile)
	if err != nil {
		return nil, err
	}
	if c.account != "" {
		cfg.Account = c.account
	}
	if c.backend != "" {
		cfg.Backend = c.backend
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", handler.ErrUsage, err)
		}
	}
	c.logger.Debug().Str("account", cfg.Account).Str("backend", cfg.Backend).Msg("configuration loaded")
	return app.NewApp(ctx, cfg, c.logger, c.stdout)
}

// usageArgs wraps a cobra argument validator so its failures count as usage errors.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return fmt.Errorf("%w: %w", handler.ErrUsage, err)
		}
		return nil
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	c := &cli{stdout: stdout, stderr: stderr}
	legacy := &legacyFlags{}

	rootCmd := &cobra.Command{
		Use:   "drivectl",
		Short: "List, upload and recursively download Google Drive files",
		Long: `drivectl moves files between the local machine and Google Drive.

Downloading a folder recreates its whole tree under the destination
directory. Existing local files stop the download unless
--skip-existing or --force-overwrite is given.`,
		Example: `  drivectl auth login
  drivectl list
  drivectl upload report.pdf --parent 1AbCdEf
  drivectl download 1AbCdEf --dest ~/Downloads --skip-existing`,
		Version:       Version + " (" + BuildTime + ")",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          usageArgs(cobra.MaximumNArgs(1)),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			c.logger = logging.NewLogger(c.stderr)
			c.logger.SetVerbose(c.verbose)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return legacy.run(cmd, c, args)
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", handler.ErrUsage, err)
	})

	rootCmd.PersistentFlags().StringVarP(&c.cfgFile, "config", "c", "", "Configuration file path (default "+config.DefaultPath+")")
	rootCmd.PersistentFlags().StringVarP(&c.account, "account", "a", "", "Credential profile to use (overrides config)")
	rootCmd.PersistentFlags().StringVar(&c.backend, "backend", "", "Storage backend: googledrive or memory (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Verbose output (shows debug messages)")

	legacy.register(rootCmd)

	rootCmd.AddCommand(
		newListCmd(c),
		newUploadCmd(c),
		newDownloadCmd(c),
		newAuthCmd(c),
	)
	return rootCmd
}
