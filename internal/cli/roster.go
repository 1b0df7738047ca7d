package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/brightshift/clockin-system/internal/core/domain"
	"github.com/brightshift/clockin-system/internal/core/ports"
)

// RosterFile is the YAML document read by "roster import" and written by
// "roster export".
type RosterFile struct {
	Workers []domain.Worker `yaml:"workers" json:"workers"`
}

// ImportResult summarises a roster import.
type ImportResult struct {
	Created []domain.Worker `json:"created"`
	Skipped []string        `json:"skipped"`
}

// NewRosterCommand creates the roster command group.
func NewRosterCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Manage the worker roster",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List registered workers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRosterList(rootOpts, cmd)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Register workers from a YAML roster file",
		Long: `Register every worker listed in a YAML roster file:

  workers:
    - name: Ana Lopez
    - name: Bob Smith

Ids are always derived from the names; an id in the file is ignored.
Names already on the roster are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRosterImport(rootOpts, cmd, args[0])
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "export",
		Short: "Print the roster as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRosterExport(rootOpts, cmd)
		},
	})

	return cmd
}

func runRosterList(opts *RootOptions, cmd *cobra.Command) error {
	a, err := opts.openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	workers, err := a.Roster.List(cmd.Context())
	if err != nil {
		return WrapExitError(ExitFailure, "failed to list roster", err)
	}
	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), RosterFile{Workers: workers})
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME")
	for _, w := range workers {
		fmt.Fprintf(tw, "%s\t%s\n", w.ID, w.Name)
	}
	return tw.Flush()
}

func runRosterExport(opts *RootOptions, cmd *cobra.Command) error {
	a, err := opts.openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	workers, err := a.Roster.List(cmd.Context())
	if err != nil {
		return WrapExitError(ExitFailure, "failed to list roster", err)
	}

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(RosterFile{Workers: workers}); err != nil {
		return err
	}
	return enc.Close()
}

func runRosterImport(opts *RootOptions, cmd *cobra.Command, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open roster file", err)
	}
	defer f.Close()

	roster, err := readRosterFile(f)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid roster file", err)
	}

	a, err := opts.openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	res, err := importRoster(cmd.Context(), a.Roster, roster.Workers)
	if err != nil {
		return WrapExitError(ExitFailure, "import failed", err)
	}

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), res)
	}
	out := cmd.OutOrStdout()
	for _, w := range res.Created {
		fmt.Fprintf(out, "created %s (%s)\n", w.ID, w.Name)
	}
	for _, name := range res.Skipped {
		fmt.Fprintf(out, "skipped %s: already registered\n", name)
	}
	fmt.Fprintf(out, "%d created, %d skipped\n", len(res.Created), len(res.Skipped))
	return nil
}

// readRosterFile decodes a roster document. Unknown fields are rejected so
// typos do not silently drop workers.
func readRosterFile(r io.Reader) (*RosterFile, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var rf RosterFile
	if err := dec.Decode(&rf); err != nil {
		if errors.Is(err, io.EOF) {
			return &rf, nil
		}
		return nil, err
	}
	for i, w := range rf.Workers {
		if strings.TrimSpace(w.Name) == "" {
			return nil, fmt.Errorf("worker %d: name is required", i+1)
		}
	}
	return &rf, nil
}

// importRoster creates each worker in file order. Names that already exist
// are reported as skipped; any other failure stops the import.
func importRoster(ctx context.Context, svc ports.RosterService, workers []domain.Worker) (*ImportResult, error) {
	res := &ImportResult{Created: []domain.Worker{}, Skipped: []string{}}
	for _, w := range workers {
		created, err := svc.Create(ctx, w.Name)
		switch {
		case errors.Is(err, domain.ErrWorkerExists):
			res.Skipped = append(res.Skipped, strings.TrimSpace(w.Name))
		case err != nil:
			return res, err
		default:
			res.Created = append(res.Created, *created)
		}
	}
	return res, nil
}
