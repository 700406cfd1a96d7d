package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/dynobject/pkg/types"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"", zerolog.InfoLevel},
		{"   nonsense   ", zerolog.InfoLevel},
	}
	for _, c := range cases {
		if got := ParseLevel(c.in); got != c.want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestParseLevel_ConfigLevels(t *testing.T) {
	want := map[string]zerolog.Level{
		"trace":    zerolog.TraceLevel,
		"debug":    zerolog.DebugLevel,
		"info":     zerolog.InfoLevel,
		"warn":     zerolog.WarnLevel,
		"warning":  zerolog.WarnLevel,
		"error":    zerolog.ErrorLevel,
		"disabled": zerolog.Disabled,
		"off":      zerolog.Disabled,
	}
	require.Len(t, types.LogLevels, len(want))
	for _, lvl := range types.LogLevels {
		lv, ok := want[lvl]
		require.True(t, ok, "config accepts %q", lvl)
		assert.Equal(t, lv, ParseLevel(lvl), lvl)
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: "debug", Format: FormatJSON, Service: "svc", Writer: &buf})

	log.Debug().Str("k", "v").Msg("hello")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "hello", rec["message"])
	assert.Equal(t, "svc", rec["service"])
	assert.Equal(t, "v", rec["k"])
	assert.Equal(t, "debug", rec["level"])
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: "info", Format: FormatConsole, Writer: &buf})

	log.Debug().Msg("hidden")
	log.Info().Msg("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.True(t, strings.Contains(out, "shown"))
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvLevel, "DEBUG")
	t.Setenv(EnvFormat, "json")

	opt := FromEnv()
	assert.Equal(t, "debug", opt.Level)
	assert.Equal(t, FormatJSON, opt.Format)
	assert.NotNil(t, opt.Writer)
}

func TestInitOnce(t *testing.T) {
	var first, second bytes.Buffer
	Init(Options{Level: "info", Format: FormatJSON, Service: "first", Writer: &first})
	Init(Options{Level: "info", Format: FormatJSON, Service: "second", Writer: &second})

	log := Get()
	require.NotNil(t, log)
	assert.Same(t, log, Get())

	log.Info().Msg("root")
	assert.Contains(t, first.String(), `"service":"first"`)
	assert.Empty(t, second.String())
}
