package difftest

import "github.com/calvinalkan/bughunt/pkg/bytestream"

// Harness is the non-generic view of a target, for drivers that choose the
// target at run time.
type Harness interface {
	Name() string

	// Schema returns the operation schema, or nil for targets that do not
	// decode operations.
	Schema() *Schema

	// RunStream runs in streaming shape until the stream is exhausted.
	RunStream(stream *bytestream.Stream) (Stats, error)

	// RunCounted runs in fixed-count shape (header, uint16 count, ops).
	RunCounted(stream *bytestream.Stream) (Stats, error)

	// Open starts a single-stepping session over stream.
	Open(stream *bytestream.Stream) (Stepper, error)
}

// Stepper is the non-generic view of a [Session].
type Stepper interface {
	Next() (Step, error)
	Setup() Setup
	Stats() Stats
	Observe() Snapshot
}

var _ Stepper = (*Session[*MapPair[uint8, uint8]])(nil)

// Harness returns the non-generic view of t.
func (t *Target[P]) Harness() Harness {
	return targetHarness[P]{target: t}
}

type targetHarness[P Pair] struct {
	target *Target[P]
}

func (h targetHarness[P]) Name() string {
	return h.target.Name
}

func (h targetHarness[P]) Schema() *Schema {
	return h.target.Schema
}

func (h targetHarness[P]) RunStream(stream *bytestream.Stream) (Stats, error) {
	return h.target.RunStream(stream)
}

func (h targetHarness[P]) RunCounted(stream *bytestream.Stream) (Stats, error) {
	return h.target.RunCounted(stream)
}

func (h targetHarness[P]) Open(stream *bytestream.Stream) (Stepper, error) {
	session, err := h.target.NewSession(stream)
	if err != nil {
		return nil, err
	}

	return session, nil
}

// RepeatHarness wraps [RunRepeat]. Every input counts as one operation; an
// input skipped by the property counts as skipped.
func RepeatHarness(opts RepeatOptions) Harness {
	return repeatHarness{opts: opts}
}

type repeatHarness struct {
	opts RepeatOptions
}

func (repeatHarness) Name() string {
	return "repeat"
}

func (repeatHarness) Schema() *Schema {
	return nil
}

func (h repeatHarness) RunStream(stream *bytestream.Stream) (Stats, error) {
	outcome, err := RunRepeat(stream, h.opts)
	if outcome == RepeatExhausted {
		return Stats{}, err
	}

	stats := Stats{Ops: 1, ByKind: map[string]int{repeatOp{}.Name(): 1}}
	if outcome != RepeatChecked {
		stats.Skipped = 1
	}

	return stats, err
}

func (h repeatHarness) RunCounted(stream *bytestream.Stream) (Stats, error) {
	return h.RunStream(stream)
}

func (repeatHarness) Open(*bytestream.Stream) (Stepper, error) {
	return nil, ErrNotSteppable
}
