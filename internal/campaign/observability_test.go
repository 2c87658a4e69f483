package campaign_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uber-go/tally/v4"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/calvinalkan/bughunt/internal/campaign"
	"github.com/calvinalkan/bughunt/pkg/difftest"
)

func Test_ParseLevel_Maps_Names_When_Known(t *testing.T) {
	t.Parallel()

	for name, want := range map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"INFO":  zapcore.InfoLevel,
		"":      zapcore.InfoLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
	} {
		got, err := campaign.ParseLevel(name)
		require.NoError(t, err)
		assert.Equal(t, want, got, name)
	}

	_, err := campaign.ParseLevel("trace")
	require.ErrorIs(t, err, campaign.ErrUnknownLevel)
}

func Test_NewLogger_Writes_JSON_Lines_When_Entry_Logged(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger, closer, err := campaign.NewLogger(&buf, campaign.LogConfig{Level: "info"})
	require.NoError(t, err)

	defer func() { _ = closer.Close() }()

	logger.Debug("hidden")
	logger.Info("run passed", zap.Int("run", 3))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "run passed", entry["msg"])
	assert.InDelta(t, 3, entry["run"], 0)
	assert.Contains(t, entry, "ts")
}

func Test_NewLogger_Tees_To_File_When_File_Configured(t *testing.T) {
	t.Parallel()

	var console bytes.Buffer

	path := filepath.Join(t.TempDir(), "bughunt.log")

	logger, closer, err := campaign.NewLogger(&console, campaign.LogConfig{Level: "debug", File: path, MaxSizeMB: 1})
	require.NoError(t, err)

	logger.Debug("campaign started", zap.String("target", "deque"))
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"campaign started"`)
	assert.Contains(t, console.String(), `"target":"deque"`)
}

func Test_NewLogger_Returns_Error_When_Level_Unknown(t *testing.T) {
	t.Parallel()

	_, _, err := campaign.NewLogger(&bytes.Buffer{}, campaign.LogConfig{Level: "chatty"})
	require.ErrorIs(t, err, campaign.ErrUnknownLevel)
}

func Test_Metrics_Counts_Runs_When_Stats_Recorded(t *testing.T) {
	t.Parallel()

	scope := tally.NewTestScope("", nil)
	metrics := campaign.NewMetrics(scope)

	metrics.RunFinished(difftest.Stats{Ops: 5, Skipped: 2, ByKind: map[string]int{"Insert": 3, "Reserve": 2}}, nil)
	metrics.RunFinished(difftest.Stats{Ops: 1, ByKind: map[string]int{"Get": 1}}, &difftest.Failure{})
	metrics.PeakRSS(4096)

	assert.Equal(t, int64(2), counterValue(t, scope, "runs", nil))
	assert.Equal(t, int64(6), counterValue(t, scope, "ops", nil))
	assert.Equal(t, int64(2), counterValue(t, scope, "skipped", nil))
	assert.Equal(t, int64(1), counterValue(t, scope, "failures", nil))
	assert.Equal(t, int64(3), counterValue(t, scope, "ops", map[string]string{"kind": "Insert"}))
	assert.Equal(t, int64(1), counterValue(t, scope, "ops", map[string]string{"kind": "Get"}))

	var rss float64
	for _, gauge := range scope.Snapshot().Gauges() {
		if gauge.Name() == "peak_rss_bytes" {
			rss = gauge.Value()
		}
	}

	assert.InDelta(t, 4096, rss, 0)
}

func Test_LogReporter_Logs_Counters_When_Scope_Closed(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)

	scope, closer := tally.NewRootScope(tally.ScopeOptions{
		Prefix:   "bughunt",
		Reporter: campaign.NewLogReporter(zap.New(core)),
	}, time.Hour)

	scope.Counter("runs").Inc(4)
	require.NoError(t, closer.Close())

	entries := logs.FilterMessage("counter").FilterField(zap.Int64("value", 4)).All()
	require.Len(t, entries, 1)
	assert.Equal(t, "metrics", entries[0].LoggerName)
	assert.Equal(t, "bughunt.runs", entries[0].ContextMap()["name"])
}

// Mutates process-wide GC settings, so it does not run in parallel.
func Test_MemoryPolicy_Restores_Settings_When_Restore_Called(t *testing.T) {
	before := debug.SetGCPercent(100)
	defer debug.SetGCPercent(before)

	restore := campaign.MemoryPolicy{GCPercent: 25, LimitBytes: 1 << 40}.Apply()

	assert.Equal(t, 25, debug.SetGCPercent(25))
	assert.Equal(t, int64(1<<40), debug.SetMemoryLimit(-1))

	restore()

	assert.Equal(t, 100, debug.SetGCPercent(100))
}

func Test_MemoryPolicy_Keeps_Settings_When_Zero(t *testing.T) {
	before := debug.SetGCPercent(80)
	defer debug.SetGCPercent(before)

	restore := campaign.MemoryPolicy{GCPercent: -1}.Apply()
	assert.Equal(t, 80, debug.SetGCPercent(80))
	restore()
	assert.Equal(t, 80, debug.SetGCPercent(80))
}

func Test_MemoryPolicy_Restores_Disabled_GC_When_Restore_Called(t *testing.T) {
	before := debug.SetGCPercent(-1)
	defer debug.SetGCPercent(before)

	restore := campaign.MemoryPolicy{GCPercent: 50}.Apply()
	assert.Equal(t, 50, debug.SetGCPercent(50))

	restore()

	assert.Equal(t, -1, debug.SetGCPercent(-1))
}

func Test_PeakRSS_Is_Positive_When_Process_Running(t *testing.T) {
	t.Parallel()

	rss, err := campaign.PeakRSS()
	require.NoError(t, err)
	assert.Positive(t, rss)
}
