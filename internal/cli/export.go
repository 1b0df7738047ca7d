package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/brightshift/clockin-system/internal/core/domain"
	"github.com/brightshift/clockin-system/internal/infrastructure/export"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Month  string
	Output string
	XLSX   bool
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the event log",
		Long: `Export the retained event log sorted oldest first.

A month (YYYY-MM, interpreted in ATTENDANCE_TIMEZONE) limits the export to
that calendar month. With --xlsx a spreadsheet is written to --output, which
defaults to logs-YYYY-MM.xlsx.

Examples:
  clockin export --month 2026-10
  clockin export --month 2026-10 --format json -o october.json
  clockin export --month 2026-10 --xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Month, "month", "", "calendar month to export (YYYY-MM)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write to file instead of stdout")
	cmd.Flags().BoolVar(&opts.XLSX, "xlsx", false, "write an .xlsx workbook")

	return cmd
}

func runExport(opts *ExportOptions, cmd *cobra.Command) error {
	a, err := opts.openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	events, err := a.Clock.Export(cmd.Context(), opts.Month)
	if err != nil {
		return WrapExitError(ExitFailure, "export failed", err)
	}

	output := opts.Output
	if opts.XLSX && output == "" {
		output = export.FileName(opts.Month, "xlsx")
	}

	w := cmd.OutOrStdout()
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to create output file", err)
		}
		defer f.Close()
		w = f
	}

	switch {
	case opts.XLSX:
		err = export.WriteXLSX(w, events, a.Location)
	case opts.Format == "json":
		err = writeJSON(w, events)
	default:
		err = renderEvents(w, events, a.Location)
	}
	if err != nil {
		return WrapExitError(ExitFailure, "failed to write export", err)
	}

	if output != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d events to %s\n", len(events), output)
	}
	return nil
}

// renderEvents prints one aligned line per event in loc.
func renderEvents(w io.Writer, events []domain.ClockEvent, loc *time.Location) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tWORKER\tNAME\tACTION\tID")
	for _, e := range events {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			e.Timestamp.In(loc).Format("2006-01-02 15:04:05"), e.WorkerID, e.WorkerName, e.Action, e.ID)
	}
	return tw.Flush()
}
