package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/focus-timer/internal/config"
	domain "github.com/oshokin/focus-timer/internal/domain/timer"
	"github.com/oshokin/focus-timer/internal/logger"
	"github.com/oshokin/focus-timer/internal/service/timer"
	"github.com/oshokin/focus-timer/internal/version"
)

var (
	// configPath stores the path to the configuration YAML file.
	configPath string
	// logLevel overrides the configured log level.
	logLevel string

	// rootCmd represents the base command running the interactive timer.
	rootCmd = &cobra.Command{
		Use:   "focus-timer [minutes] [seconds]",
		Short: "Count down and demand attention when the time is up.",
		Long: `Interactive countdown timer for focused work.

Set a duration, pause, resume or stop the countdown from the prompt.
When the time is up the alarm flashes until you type the challenge phrase
or snooze it for another five minutes.

If minutes and seconds are given as arguments, the countdown starts at once.
Settings are read from the configuration file and FOCUS_TIMER_* environment
variables, which may also come from a .env file in the working directory.`,
		Args:          cobra.MaximumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.LoadDotEnv(); err != nil {
				return err
			}

			logger.Debugf(cmd.Context(), "Environment loaded")

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &timer.Options{
				ConfigPath: configPath,
				LogLevel:   logLevel,
				In:         cmd.InOrStdin(),
				Out:        cmd.OutOrStdout(),
			}

			if len(args) > 0 {
				initial, err := parseInitial(args)
				if err != nil {
					return err
				}

				options.Initial = &initial
			}

			return timer.Run(ctx, options)
		},
	}

	// initConfigCmd writes a settings file with default values.
	initConfigCmd = &cobra.Command{
		Use:   "init-config [path]",
		Short: "Write a settings file with default values.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath
			if len(args) > 0 {
				path = args[0]
			}

			if err := config.Save(path, config.Default()); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Settings written to %s\n", path)

			return nil
		},
	}
)

// Execute runs the focus-timer CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)
	rootCmd.AddCommand(initConfigCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		logger.ErrorKV(context.Background(), "focus-timer failed", "error", err)
		os.Exit(1)
	}
}

// parseInitial turns the positional arguments into a duration.
// Out-of-range values are kept: the timer reports them and waits for a retry.
func parseInitial(args []string) (domain.Config, error) {
	var seconds string
	if len(args) > 1 {
		seconds = args[1]
	}

	cfg, err := domain.ParseFields(args[0], seconds)
	if err != nil {
		return domain.Config{}, fmt.Errorf("parse duration arguments: %w", err)
	}

	return cfg, nil
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&logLevel, "log-level", "l", "", "log level override (debug, info, warn, error)")
}
