package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// PruneResult is the JSON output of the prune command.
type PruneResult struct {
	Discarded    int `json:"discarded"`
	MonthsToKeep int `json:"monthsToKeep"`
}

// NewPruneCommand creates the prune command.
func NewPruneCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Discard events older than the retention horizon",
		Long: `Discard events older than RETENTION_MONTHS and records whose timestamp
cannot be parsed. Pruning is destructive and idempotent.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrune(rootOpts, cmd)
		},
	}
}

func runPrune(opts *RootOptions, cmd *cobra.Command) error {
	a, err := opts.openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	n, err := a.Clock.Compact(cmd.Context())
	if err != nil {
		return WrapExitError(ExitFailure, "prune failed", err)
	}

	res := PruneResult{Discarded: n, MonthsToKeep: a.Config.Retention.Months}
	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), res)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "pruned %d events (keeping %d months)\n", res.Discarded, res.MonthsToKeep)
	return nil
}
