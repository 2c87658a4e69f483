package campaign

import (
	"time"

	"github.com/uber-go/tally/v4"
	"go.uber.org/zap"

	"github.com/calvinalkan/bughunt/pkg/difftest"
)

// Metrics counts campaign progress in a tally scope.
type Metrics struct {
	scope tally.Scope
}

// NewMetrics returns metrics reporting into scope. A nil scope discards.
func NewMetrics(scope tally.Scope) *Metrics {
	if scope == nil {
		scope = tally.NoopScope
	}

	return &Metrics{scope: scope}
}

// RunFinished records one finished run.
func (m *Metrics) RunFinished(stats difftest.Stats, err error) {
	m.scope.Counter("runs").Inc(1)
	m.scope.Counter("ops").Inc(int64(stats.Ops))
	m.scope.Counter("skipped").Inc(int64(stats.Skipped))

	for kind, n := range stats.ByKind {
		m.scope.Tagged(map[string]string{"kind": kind}).Counter("ops").Inc(int64(n))
	}

	if err != nil {
		m.scope.Counter("failures").Inc(1)
	}
}

// RunDuration records how long one run took.
func (m *Metrics) RunDuration(d time.Duration) {
	m.scope.Timer("run_duration").Record(d)
}

// PeakRSS records the peak resident set size observed after a campaign.
func (m *Metrics) PeakRSS(bytes int64) {
	m.scope.Gauge("peak_rss_bytes").Update(float64(bytes))
}

// LogReporter is a tally.StatsReporter that writes every flushed value as a
// debug log entry.
type LogReporter struct {
	logger *zap.Logger
}

var _ tally.StatsReporter = (*LogReporter)(nil)

// NewLogReporter returns a reporter logging through logger.
func NewLogReporter(logger *zap.Logger) *LogReporter {
	return &LogReporter{logger: logger.Named("metrics")}
}

// ReportCounter implements tally.StatsReporter.
func (r *LogReporter) ReportCounter(name string, tags map[string]string, value int64) {
	r.logger.Debug("counter", zap.String("name", name), zap.Any("tags", tags), zap.Int64("value", value))
}

// ReportGauge implements tally.StatsReporter.
func (r *LogReporter) ReportGauge(name string, tags map[string]string, value float64) {
	r.logger.Debug("gauge", zap.String("name", name), zap.Any("tags", tags), zap.Float64("value", value))
}

// ReportTimer implements tally.StatsReporter.
func (r *LogReporter) ReportTimer(name string, tags map[string]string, interval time.Duration) {
	r.logger.Debug("timer", zap.String("name", name), zap.Any("tags", tags), zap.Duration("value", interval))
}

// ReportHistogramValueSamples implements tally.StatsReporter.
func (r *LogReporter) ReportHistogramValueSamples(
	name string, tags map[string]string, _ tally.Buckets, lower, upper float64, samples int64,
) {
	r.logger.Debug("histogram",
		zap.String("name", name),
		zap.Any("tags", tags),
		zap.Float64("lower", lower),
		zap.Float64("upper", upper),
		zap.Int64("samples", samples),
	)
}

// ReportHistogramDurationSamples implements tally.StatsReporter.
func (r *LogReporter) ReportHistogramDurationSamples(
	name string, tags map[string]string, _ tally.Buckets, lower, upper time.Duration, samples int64,
) {
	r.logger.Debug("histogram",
		zap.String("name", name),
		zap.Any("tags", tags),
		zap.Duration("lower", lower),
		zap.Duration("upper", upper),
		zap.Int64("samples", samples),
	)
}

// Capabilities implements tally.StatsReporter.
func (r *LogReporter) Capabilities() tally.Capabilities {
	return r
}

// Reporting implements tally.Capabilities.
func (r *LogReporter) Reporting() bool {
	return true
}

// Tagging implements tally.Capabilities.
func (r *LogReporter) Tagging() bool {
	return true
}

// Flush implements tally.StatsReporter.
func (r *LogReporter) Flush() {
	_ = r.logger.Sync()
}
