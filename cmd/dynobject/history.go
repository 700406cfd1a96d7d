package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/dynobject/internal/paths"
	"github.com/mesh-intelligence/dynobject/internal/sqlite"
	"github.com/mesh-intelligence/dynobject/pkg/types"
)

// exportDefault is the --export value when the flag is given without a path.
const exportDefault = "-"

func newHistoryCmd(a *app) *cobra.Command {
	var (
		limit      int
		exportPath string
		importPath string
	)

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List recorded runs, or the steps of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if importPath != "" {
				runs, err := sqlite.ReadExport(importPath)
				if err != nil {
					return userError("read export: %w", err)
				}
				return a.printRuns(out, runs)
			}

			j, err := sqlite.Open(a.dataDir)
			if err != nil {
				return sysError("open journal: %w", err)
			}
			defer j.Close()

			if exportPath != "" {
				if exportPath == exportDefault {
					exportPath = paths.ExportFile(a.dataDir)
				}
				n, err := j.ExportJSONL(exportPath)
				if err != nil {
					return sysError("export: %w", err)
				}
				fmt.Fprintf(out, "Exported %d runs to %s\n", n, exportPath)
				return nil
			}

			if len(args) == 1 {
				return a.showRun(out, j, args[0])
			}

			runs, err := j.Runs(limit)
			if err != nil {
				return sysError("list runs: %w", err)
			}
			return a.printRuns(out, runs)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to list (0 for all)")
	cmd.Flags().StringVar(&exportPath, "export", "", "write every run to this JSONL file (default: runs.jsonl in the data dir)")
	cmd.Flags().Lookup("export").NoOptDefVal = exportDefault
	cmd.Flags().StringVar(&importPath, "from", "", "list runs from a JSONL export instead of the journal")
	return cmd
}

func (a *app) printRuns(w io.Writer, runs []sqlite.Run) error {
	if a.flags.jsonMode {
		return writeJSON(w, runs)
	}
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSTATUS\tSTARTED\tSTEPS\tC1\tC2\tLIMIT")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%d\n",
			r.RunID, r.Status, r.StartedAt.Format(time.RFC3339), r.Steps, r.Counter1, r.Counter2, r.Limit)
	}
	return tw.Flush()
}

func (a *app) showRun(w io.Writer, j *sqlite.Journal, runID string) error {
	run, err := j.Run(runID)
	if err != nil {
		if errors.Is(err, types.ErrRunNotFound) {
			return userError("run %q: %w", runID, err)
		}
		return sysError("get run: %w", err)
	}
	steps, err := j.Steps(runID)
	if err != nil {
		return sysError("list steps: %w", err)
	}

	if a.flags.jsonMode {
		return writeJSON(w, struct {
			*sqlite.Run
			StepList []sqlite.Step `json:"step_list"`
		}{run, steps})
	}

	fmt.Fprintf(w, "run %s (%s)\n", run.RunID, run.Status)
	if run.Error != "" {
		fmt.Fprintf(w, "error: %s\n", run.Error)
	}
	for _, s := range steps {
		fmt.Fprintf(w, "%4d  %-10s step %d more=%t\n", s.Seq, s.Processor, s.Step, s.More)
	}
	return nil
}
