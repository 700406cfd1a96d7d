package main

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/dynobject/internal/processor"
	"github.com/mesh-intelligence/dynobject/internal/sqlite"
	"github.com/mesh-intelligence/dynobject/pkg/types"
)

var errDiskFull = errors.New("disk full")

// flakyJournal fails RecordStep from the failAt-th call on.
type flakyJournal struct {
	*sqlite.Journal
	failAt int
	calls  int
}

func (f *flakyJournal) RecordStep(runID, processor string, step int, more bool) error {
	f.calls++
	if f.calls >= f.failAt {
		return errDiskFull
	}
	return f.Journal.RecordStep(runID, processor, step, more)
}

func newTestScenario(t *testing.T) *processor.Scenario {
	t.Helper()
	sc, err := processor.NewCounterScenario(types.DefaultConfig().Processor, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(sc.Close)
	return sc
}

func TestRunScenario_RecordFailureFinishesRun(t *testing.T) {
	j, err := sqlite.Open(t.TempDir())
	require.NoError(t, err)
	defer j.Close()
	runID, err := j.BeginRun()
	require.NoError(t, err)

	rec := &flakyJournal{Journal: j, failAt: 3}
	report, err := runScenario(newTestScenario(t), rec, runID)

	require.ErrorIs(t, err, errDiskFull)
	var ee *exitError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, exitSysError, ee.code)
	assert.Equal(t, uint32(11), report.Counters.Counter2, "scenario runs to its end")

	run, err := j.Run(runID)
	require.NoError(t, err)
	assert.Equal(t, sqlite.StatusFailed, run.Status)
	assert.Contains(t, run.Error, "disk full")
	assert.Equal(t, 2, run.Steps)
	assert.NotNil(t, run.FinishedAt)
}

func TestRunScenario_Recorded(t *testing.T) {
	j, err := sqlite.Open(t.TempDir())
	require.NoError(t, err)
	defer j.Close()
	runID, err := j.BeginRun()
	require.NoError(t, err)

	report, err := runScenario(newTestScenario(t), j, runID)
	require.NoError(t, err)
	assert.Equal(t, runID, report.RunID)

	run, err := j.Run(runID)
	require.NoError(t, err)
	assert.Equal(t, sqlite.StatusFinished, run.Status)
	assert.Equal(t, 10, run.Steps)
	assert.Equal(t, uint32(11), run.Counter2)
}

func TestRunScenario_Unrecorded(t *testing.T) {
	report, err := runScenario(newTestScenario(t), nil, "")
	require.NoError(t, err)
	assert.Empty(t, report.RunID)
	assert.Len(t, report.Results, 2)
}
