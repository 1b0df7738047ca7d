package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/brightshift/clockin-system/internal/core/domain"
	"github.com/brightshift/clockin-system/internal/core/presence"
)

// NewAttendanceCommand creates the attendance command.
func NewAttendanceCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "attendance",
		Short: "Show today's late and absent workers",
		Long: `Evaluate today's attendance against SHIFT_START_HOUR and
SHIFT_GRACE_MINUTES. Before the shift starts nobody is flagged.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAttendance(rootOpts, cmd)
		},
	}
}

func runAttendance(opts *RootOptions, cmd *cobra.Command) error {
	a, err := opts.openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	now := time.Now()
	report, err := a.Attendance.Today(cmd.Context())
	if err != nil {
		return WrapExitError(ExitFailure, "attendance failed", err)
	}

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), report)
	}
	return renderAttendance(cmd.OutOrStdout(), now, a.Evaluator, report)
}

func renderAttendance(w io.Writer, now time.Time, ev presence.Evaluator, report *domain.AttendanceReport) error {
	shiftStart, lateThreshold := ev.Window(now)
	if _, err := fmt.Fprintf(w, "Attendance for %s (shift %s, late after %s)\n",
		shiftStart.Format("Mon 02 Jan 2006"), shiftStart.Format("15:04"), lateThreshold.Format("15:04")); err != nil {
		return err
	}
	writeNames(w, "Late", report.Late)
	writeNames(w, "Absent", report.Absent)
	return nil
}

func writeNames(w io.Writer, title string, names []string) {
	fmt.Fprintf(w, "%s (%d)\n", title, len(names))
	if len(names) == 0 {
		fmt.Fprintln(w, "  none")
		return
	}
	for _, n := range names {
		fmt.Fprintf(w, "  - %s\n", n)
	}
}
