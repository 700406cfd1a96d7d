package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/dynobject/internal/processor"
	"github.com/mesh-intelligence/dynobject/internal/sqlite"
	"github.com/mesh-intelligence/dynobject/pkg/dynobject"
)

// runReport is the output of the run command.
type runReport struct {
	RunID    string             `json:"run_id,omitempty"`
	Results  []processor.Result `json:"results"`
	Counters processor.Counters `json:"counters"`
}

func newRunCmd(a *app) *cobra.Command {
	var noJournal bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the counter processor scenario",
		Long: `Seed a shared object with counter1, counter2 and limit, then run the
count-up processor to its end followed by the count-down processor.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			observer := dynobject.NewLogObserver(a.log)
			sc, err := processor.NewCounterScenario(a.cfg.Processor, a.log, dynobject.WithObserver(observer))
			if err != nil {
				return userError("build scenario: %w", err)
			}
			defer sc.Close()

			var (
				rec   stepRecorder
				runID string
			)
			if a.cfg.Journal.Enabled && !noJournal {
				journal, err := sqlite.Open(a.dataDir)
				if err != nil {
					return sysError("open journal: %w", err)
				}
				defer journal.Close()
				if runID, err = journal.BeginRun(); err != nil {
					return sysError("begin run: %w", err)
				}
				rec = journal
			}

			report, err := runScenario(sc, rec, runID)
			if err != nil {
				return err
			}
			counters := report.Counters

			a.log.Info().Str("run_id", runID).Uint32("counter1", counters.Counter1).
				Uint32("counter2", counters.Counter2).Uint32("limit", counters.Limit).Msg("run complete")

			if a.flags.jsonMode {
				return writeJSON(cmd.OutOrStdout(), report)
			}
			printRunReport(cmd.OutOrStdout(), report)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noJournal, "no-journal", false, "do not record this run")
	return cmd
}

// stepRecorder is the part of the journal a run writes to.
type stepRecorder interface {
	RecordStep(runID, processor string, step int, more bool) error
	FinishRun(runID string, out sqlite.Outcome) error
}

// runScenario runs sc, recording each step and the outcome in rec when rec
// is non-nil. Once begun, the run is always finished; it is marked failed
// when the scenario, the counter read or step recording went wrong.
func runScenario(sc *processor.Scenario, rec stepRecorder, runID string) (runReport, error) {
	var recordErr error
	hook := func(name string, step int, more bool) {
		if rec == nil || recordErr != nil {
			return
		}
		if err := rec.RecordStep(runID, name, step, more); err != nil {
			recordErr = fmt.Errorf("record step: %w", err)
		}
	}

	results, runErr := sc.Run(hook)
	counters, readErr := sc.Counters()
	if readErr != nil {
		readErr = fmt.Errorf("read counters: %w", readErr)
	}
	report := runReport{RunID: runID, Results: results, Counters: counters}

	if rec != nil {
		out := sqlite.Outcome{
			Counter1: counters.Counter1,
			Counter2: counters.Counter2,
			Limit:    counters.Limit,
			Err:      errors.Join(runErr, readErr, recordErr),
		}
		if err := rec.FinishRun(runID, out); err != nil {
			return report, sysError("finish run: %w", errors.Join(err, recordErr))
		}
	}

	switch {
	case recordErr != nil:
		return report, sysError("%w", recordErr)
	case readErr != nil:
		return report, sysError("%w", readErr)
	case runErr != nil:
		return report, userError("run: %w", runErr)
	}
	return report, nil
}

func printRunReport(w io.Writer, r runReport) {
	for _, res := range r.Results {
		fmt.Fprintf(w, "%s: %d steps\n", res.Processor, res.Steps)
	}
	fmt.Fprintf(w, "c1: %d, c2: %d, limit: %d\n", r.Counters.Counter1, r.Counters.Counter2, r.Counters.Limit)
	if r.RunID != "" {
		fmt.Fprintf(w, "run: %s\n", r.RunID)
	}
}

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return sysError("marshal JSON: %w", err)
	}
	fmt.Fprintln(w, string(out))
	return nil
}
