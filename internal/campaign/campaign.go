// Package campaign drives many difftest runs: it resolves configuration,
// generates reproducible random inputs, spreads runs over workers and
// reports progress through zap and tally.
package campaign

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/calvinalkan/bughunt/pkg/bytestream"
	"github.com/calvinalkan/bughunt/pkg/difftest"
)

// RunError is a failed run together with the input that produced it.
type RunError struct {
	Run   int
	Input []byte
	Err   error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("run %d: %v", e.Run, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// Result summarizes a campaign.
type Result struct {
	Target   string
	Runs     int64
	Ops      int64
	Skipped  int64
	Duration time.Duration

	// PeakRSS is the process peak resident set size in bytes, 0 if unknown.
	PeakRSS int64
}

// Campaign executes cfg.Runs random inputs against one harness.
type Campaign struct {
	cfg     Config
	harness difftest.Harness
	logger  *zap.Logger
	metrics *Metrics
}

// New validates cfg and builds the harness it names. A nil logger or
// metrics discards.
func New(cfg Config, logger *zap.Logger, metrics *Metrics) (*Campaign, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	harness, err := NewHarness(cfg)
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	if metrics == nil {
		metrics = NewMetrics(nil)
	}

	return &Campaign{
		cfg:     cfg,
		harness: harness,
		logger:  logger.With(zap.String("target", cfg.Target)),
		metrics: metrics,
	}, nil
}

// Harness returns the harness under test.
func (c *Campaign) Harness() difftest.Harness {
	return c.harness
}

// Run executes the campaign. It stops at the first failing run, returned as
// a [*RunError], or when ctx is cancelled.
func (c *Campaign) Run(ctx context.Context) (Result, error) {
	restore := c.cfg.Memory.Apply()
	defer restore()

	var (
		next    atomic.Int64
		runs    atomic.Int64
		ops     atomic.Int64
		skipped atomic.Int64
	)

	policy := c.cfg.StreamPolicy()
	start := time.Now()

	c.logger.Info("campaign started",
		zap.Int("runs", c.cfg.Runs),
		zap.Int("workers", c.cfg.Workers),
		zap.Stringer("policy", policy),
		zap.Uint64("seed", c.cfg.Seed),
	)

	g, gctx := errgroup.WithContext(ctx)

	for range c.cfg.Workers {
		g.Go(func() error {
			for {
				if gctx.Err() != nil {
					return nil
				}

				run := int(next.Inc() - 1)
				if run >= c.cfg.Runs {
					return nil
				}

				input := Input(c.cfg.Seed, run, c.cfg.InputSize)

				runStart := time.Now()
				stats, err := Execute(c.harness, input, policy, c.cfg.MaxBytes)
				c.metrics.RunDuration(time.Since(runStart))
				c.metrics.RunFinished(stats, err)

				runs.Inc()
				ops.Add(int64(stats.Ops))
				skipped.Add(int64(stats.Skipped))

				if err != nil {
					c.logger.Error("run failed", zap.Int("run", run), zap.Error(err))

					return &RunError{Run: run, Input: input, Err: err}
				}

				c.logger.Debug("run passed",
					zap.Int("run", run),
					zap.Int("ops", stats.Ops),
					zap.Int("skipped", stats.Skipped),
				)
			}
		})
	}

	err := g.Wait()

	result := Result{
		Target:   c.cfg.Target,
		Runs:     runs.Load(),
		Ops:      ops.Load(),
		Skipped:  skipped.Load(),
		Duration: time.Since(start),
	}

	rss, rssErr := PeakRSS()
	if rssErr == nil {
		result.PeakRSS = rss
		c.metrics.PeakRSS(rss)
	}

	if err == nil {
		err = ctx.Err()
	}

	c.logger.Info("campaign finished",
		zap.Int64("runs", result.Runs),
		zap.Int64("ops", result.Ops),
		zap.Int64("skipped", result.Skipped),
		zap.Duration("duration", result.Duration),
		zap.Int64("peak_rss_bytes", result.PeakRSS),
		zap.Bool("failed", err != nil),
	)

	return result, err
}

// Execute runs one input through harness. Bounded inputs run in streaming
// shape; cyclic inputs run in fixed-count shape. An empty cyclic input has
// nothing to run and passes.
func Execute(harness difftest.Harness, input []byte, policy bytestream.Policy, maxBytes int) (difftest.Stats, error) {
	switch policy {
	case bytestream.Cyclic:
		if len(input) == 0 {
			return difftest.Stats{}, nil
		}

		stream, err := bytestream.NewCyclic(input)
		if err != nil {
			return difftest.Stats{}, err
		}

		return harness.RunCounted(stream)
	default:
		stream, err := bytestream.NewBounded(input, maxBytes)
		if err != nil {
			return difftest.Stats{}, err
		}

		return harness.RunStream(stream)
	}
}

// Input returns the deterministic input of run under seed.
func Input(seed uint64, run, size int) []byte {
	rng := rand.New(rand.NewPCG(seed, uint64(run)))
	out := make([]byte, size)

	var word [8]byte

	for i := 0; i < size; i += len(word) {
		binary.LittleEndian.PutUint64(word[:], rng.Uint64())
		copy(out[i:], word[:])
	}

	return out
}

// IsFailure reports whether err is a discrepancy or invariant violation, as
// opposed to a harness or setup error.
func IsFailure(err error) bool {
	return errors.Is(err, difftest.ErrDiscrepancy) || errors.Is(err, difftest.ErrInvariantViolation)
}
