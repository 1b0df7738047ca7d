// Package cli implements the clockin command line: the HTTP server plus
// maintenance commands that operate on the configured storage directly.
package cli

import (
	"fmt"
	"slices"

	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/cobra"

	"github.com/brightshift/clockin-system/internal/app"
	"github.com/brightshift/clockin-system/internal/infrastructure/config"
	"github.com/brightshift/clockin-system/pkg/logger"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Format string // "json" | "text"

	lookuper envconfig.Lookuper
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command. Configuration is read from the
// process environment.
func NewRootCommand() *cobra.Command {
	return newRootCommand(envconfig.OsLookuper())
}

func newRootCommand(lookuper envconfig.Lookuper) *cobra.Command {
	opts := &RootOptions{lookuper: lookuper}

	cmd := &cobra.Command{
		Use:   "clockin",
		Short: "Clock-in presence tracking",
		Long: `Track which workers are clocked in, backed by an append-only event log.

Configuration is read from the environment (STORAGE_DRIVER, DATA_DIR,
RETENTION_MONTHS, SHIFT_START_HOUR, ...). Every command operates on the
same storage the server uses and takes the same exclusive lock.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewPruneCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewAttendanceCommand(opts))
	cmd.AddCommand(NewRosterCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// openApp loads configuration and wires storage and services. Logs go to
// stderr so they never mix with command output.
func (o *RootOptions) openApp(cmd *cobra.Command) (*app.App, error) {
	cfg, err := config.LoadFrom(cmd.Context(), o.lookuper)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	log := logger.New(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Output:  cmd.ErrOrStderr(),
		Service: "clockin",
	})

	a, err := app.New(cmd.Context(), cfg, log)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open storage", err)
	}
	return a, nil
}
