package difftest

import (
	"errors"
	"fmt"

	"github.com/calvinalkan/bughunt/pkg/bytestream"
)

// Session is one run of a target, advanced an operation at a time.
//
// Sessions are what [Target.RunStream] and [Target.RunProgram] loop over; they
// are exported so interactive tools can single-step a corpus input. Once an
// operation fails the session keeps returning that failure.
type Session[P Pair] struct {
	target *Target[P]
	stream *bytestream.Stream
	setup  Setup
	pair   P
	stats  Stats
	err    error
}

// NewSession decodes the run header from stream and builds a fresh pair.
// Header exhaustion is returned as [bytestream.ErrExhausted].
func (t *Target[P]) NewSession(stream *bytestream.Stream) (*Session[P], error) {
	setup, err := t.DecodeSetup(stream)
	if errors.Is(err, bytestream.ErrExhausted) {
		return nil, err
	}

	if err != nil {
		return nil, fmt.Errorf("%s: decode setup: %w", t.Name, err)
	}

	session := t.Start(setup)
	session.stream = stream

	return session, nil
}

// Start builds a fresh pair for setup. The session has no stream, so only
// [Session.Apply] can drive it.
func (t *Target[P]) Start(setup Setup) *Session[P] {
	return &Session[P]{
		target: t,
		setup:  setup,
		pair:   t.New(setup),
	}
}

// Setup returns the run header.
func (s *Session[P]) Setup() Setup {
	return s.setup
}

// Pair returns the pair under test.
func (s *Session[P]) Pair() P {
	return s.pair
}

// Stats returns the counters so far.
func (s *Session[P]) Stats() Stats {
	return s.stats
}

// Observe returns the current snapshot.
func (s *Session[P]) Observe() Snapshot {
	return s.pair.Observe()
}

// Next decodes the next operation from the stream and applies it.
// It returns [bytestream.ErrExhausted] when the stream is done.
func (s *Session[P]) Next() (Step, error) {
	if s.err != nil {
		return Step{}, s.err
	}

	if s.stream == nil {
		return Step{}, ErrNoStream
	}

	op, err := s.target.Schema.Decode(s.stream)
	if errors.Is(err, bytestream.ErrExhausted) {
		return Step{}, err
	}

	if err != nil {
		s.err = fmt.Errorf("%s: decode op #%d: %w", s.target.Name, s.stats.Ops, err)

		return Step{}, s.err
	}

	return s.Apply(op)
}

// Apply runs op on the pair, compares results and checks every invariant.
// A discrepancy or violated invariant is returned as a [*Failure].
func (s *Session[P]) Apply(op Operation) (Step, error) {
	if s.err != nil {
		return Step{}, s.err
	}

	step := Step{
		Position: s.stats.Ops,
		Op:       op,
		Pre:      s.pair.Observe(),
	}

	effect, err := s.pair.Apply(op)

	var mismatch *Mismatch
	if err != nil && !errors.As(err, &mismatch) {
		s.err = fmt.Errorf("%s: apply op #%d %s: %w", s.target.Name, step.Position, op, err)

		return step, s.err
	}

	s.stats.record(op, effect)

	if mismatch != nil {
		s.err = &Failure{
			Kind:     FailureDiscrepancy,
			Target:   s.target.Name,
			Position: step.Position,
			Op:       op,
			Model:    mismatch.Model,
			SUT:      mismatch.SUT,
			State:    s.pair.Observe(),
			Detail:   mismatch.Diff,
		}

		return step, s.err
	}

	step.Effect = effect
	step.Post = s.pair.Observe()

	for _, invariant := range s.target.Invariants {
		violation := invariant.Check(s.pair, step)
		if violation == nil {
			continue
		}

		s.err = &Failure{
			Kind:      FailureInvariant,
			Target:    s.target.Name,
			Position:  step.Position,
			Op:        op,
			Invariant: invariant.Name,
			State:     step.Post,
			Detail:    violation.Error(),
		}

		return step, s.err
	}

	return step, nil
}
