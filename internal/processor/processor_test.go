package processor

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/dynobject/pkg/dynobject"
	"github.com/mesh-intelligence/dynobject/pkg/types"
)

func defaultCfg() types.ProcessorConfig {
	return types.DefaultConfig().Processor
}

func TestCounterScenario(t *testing.T) {
	sc, err := NewCounterScenario(defaultCfg(), zerolog.Nop())
	require.NoError(t, err)
	defer sc.Close()

	var steps []string
	results, err := sc.Run(func(name string, step int, more bool) {
		steps = append(steps, name)
	})
	require.NoError(t, err)

	assert.Equal(t, []Result{
		{Processor: NameCountUp, Steps: 5},
		{Processor: NameCountDown, Steps: 5},
	}, results)
	assert.Len(t, steps, 10)

	got, err := sc.Counters()
	require.NoError(t, err)
	assert.Equal(t, Counters{Counter1: 0, Counter2: 11, Limit: 4}, got)
}

func TestCounterScenario_InvalidConfig(t *testing.T) {
	cfg := defaultCfg()
	cfg.Step = 0
	_, err := NewCounterScenario(cfg, zerolog.Nop())
	require.ErrorIs(t, err, types.ErrStepInvalid)
}

func TestCounterScenario_StepLimit(t *testing.T) {
	cfg := defaultCfg()
	cfg.Limit = 100
	cfg.MaxSteps = 10

	sc, err := NewCounterScenario(cfg, zerolog.Nop())
	require.NoError(t, err)
	defer sc.Close()

	results, err := sc.Run(nil)
	require.ErrorIs(t, err, types.ErrStepLimit)
	require.Len(t, results, 1)
	assert.Equal(t, 10, results[0].Steps)
}

func TestProcessorsShareState(t *testing.T) {
	shared := dynobject.New[string]()
	defer shared.Release()
	require.NoError(t, Setup(shared, defaultCfg()))

	up := New(NameCountUp, shared, CountUp, zerolog.Nop())
	defer up.Close()
	assert.Equal(t, 2, shared.Refs())

	more, err := up.Run()
	require.NoError(t, err)
	assert.True(t, more)

	c, err := ReadCounters(shared)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), c.Counter1)
}

func TestCountUp_StopsAtMaximum(t *testing.T) {
	cfg := defaultCfg()
	cfg.Counter1 = math.MaxUint32
	cfg.Limit = math.MaxUint32

	shared := dynobject.New[string]()
	defer shared.Release()
	require.NoError(t, Setup(shared, cfg))

	more, err := CountUp(shared)
	require.NoError(t, err)
	assert.False(t, more)

	c, err := ReadCounters(shared)
	require.NoError(t, err)
	assert.Equal(t, uint32(math.MaxUint32), c.Counter1)
}

func TestRunnerErrors(t *testing.T) {
	t.Run("missing key", func(t *testing.T) {
		shared := dynobject.New[string]()
		defer shared.Release()

		_, err := CountUp(shared)
		require.ErrorIs(t, err, types.ErrKeyNotFound)
	})

	t.Run("wrong type", func(t *testing.T) {
		shared := dynobject.New[string]()
		defer shared.Release()
		require.NoError(t, shared.With(func(s *dynobject.Store[string]) error {
			_, err := dynobject.Create(s, KeyCounter1, int64(0))
			return err
		}))

		_, err := CountUp(shared)
		require.ErrorIs(t, err, types.ErrTypeMismatch)
	})

	t.Run("guard released after error", func(t *testing.T) {
		shared := dynobject.New[string]()
		defer shared.Release()

		_, _ = CountDown(2)(shared)
		g, err := shared.TryAcquire()
		require.NoError(t, err)
		g.Release()
	})
}

func TestProcessor_NoRunner(t *testing.T) {
	shared := dynobject.New[string]()
	defer shared.Release()

	p := New("empty", shared, nil, zerolog.Nop())
	defer p.Close()

	_, err := p.Run()
	require.ErrorIs(t, err, types.ErrRunnerMissing)
}

func TestProcessor_RunToEndWrapsErrors(t *testing.T) {
	shared := dynobject.New[string]()
	defer shared.Release()

	errBoom := errors.New("boom")
	p := New("boom", shared, func(*dynobject.Object[string]) (bool, error) {
		return false, errBoom
	}, zerolog.Nop())
	defer p.Close()

	steps, err := p.RunToEnd(3, nil)
	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, 1, steps)
	assert.Contains(t, err.Error(), "boom step 1")
}

func TestProcessor_LogsSteps(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.DebugLevel)

	shared := dynobject.New[string]()
	defer shared.Release()
	require.NoError(t, Setup(shared, defaultCfg()))

	p := New(NameCountUp, shared, CountUp, log)
	defer p.Close()
	_, err := p.RunToEnd(10, nil)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), `"processor":"count-up"`)
	assert.Contains(t, buf.String(), `"message":"running"`)
}

func TestScenario_NoProcessors(t *testing.T) {
	sc := &Scenario{Shared: dynobject.New[string]()}
	defer sc.Close()

	_, err := sc.Run(nil)
	require.ErrorIs(t, err, types.ErrNoProcessors)
}

func TestCountersFromStore(t *testing.T) {
	shared := dynobject.New[string]()
	defer shared.Release()
	require.NoError(t, Setup(shared, defaultCfg()))

	g := shared.Acquire()
	c, obj, err := CountersFromStore(g.Store())
	require.NoError(t, err)
	defer obj.Release()
	assert.Equal(t, uint32(4), c.Limit)
	assert.Equal(t, shared.ID(), obj.ID())
	g.Release()

	_, _, err = CountersFromStore(dynobject.NewStore[string]())
	require.ErrorIs(t, err, types.ErrNoUplink)
}
