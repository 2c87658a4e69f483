package difftest

import (
	"errors"
	"fmt"

	"github.com/calvinalkan/bughunt/pkg/bytestream"
)

// Effect records what happened to an operation on the container under test.
type Effect uint8

const (
	// EffectApplied means the operation ran on both sides.
	EffectApplied Effect = iota

	// EffectSkipped means the operation was rejected before touching either
	// side because its request could not be represented.
	EffectSkipped
)

func (e Effect) String() string {
	if e == EffectSkipped {
		return "skipped"
	}

	return "applied"
}

// Snapshot is the observable size state of a pair at one point in time.
type Snapshot struct {
	ModelLen   int
	SUTLen     int
	ModelEmpty bool
	SUTEmpty   bool
	SUTCap     int
}

func (s Snapshot) String() string {
	return fmt.Sprintf("model(len=%d empty=%v) sut(len=%d empty=%v cap=%d)",
		s.ModelLen, s.ModelEmpty, s.SUTLen, s.SUTEmpty, s.SUTCap)
}

// Pair is a reference model and a container under test driven in lockstep.
type Pair interface {
	// Apply runs op on both sides and compares the observable results.
	// A disagreement is reported as a [*Mismatch]. Other errors mean op is not
	// understood by this pair.
	Apply(op Operation) (Effect, error)

	// Observe reports the current size state of both sides.
	Observe() Snapshot
}

// Step describes one applied operation.
type Step struct {
	// Position is the zero-based operation index within the run.
	Position int
	Op       Operation
	Effect   Effect

	// Pre and Post are the snapshots around the operation.
	Pre  Snapshot
	Post Snapshot
}

// Invariant is a named predicate evaluated after every operation.
type Invariant[P Pair] struct {
	Name  string
	Check func(pair P, step Step) error
}

// Setup holds per-run construction parameters decoded from the run header.
type Setup struct {
	// HashSeed seeds the degenerate hash. Unused by families without hashing.
	HashSeed uint8

	// Capacity is the initial capacity hint for the container under test.
	Capacity int
}

// Program is a fully decoded run: setup plus an operation list.
type Program struct {
	Setup Setup
	Ops   []Operation
}

// Stats counts what a run did.
type Stats struct {
	Ops     int
	Skipped int
	ByKind  map[string]int
}

func (s *Stats) record(op Operation, effect Effect) {
	if s.ByKind == nil {
		s.ByKind = make(map[string]int)
	}

	s.Ops++
	s.ByKind[op.Name()]++

	if effect == EffectSkipped {
		s.Skipped++
	}
}

// Target binds a container family to everything needed to run it: the
// operation schema, the run header codec, a pair constructor and the
// invariants to check.
type Target[P Pair] struct {
	Name   string
	Schema *Schema

	// DecodeSetup reads the run header. EncodeSetup is its inverse.
	DecodeSetup func(s *bytestream.Stream) (Setup, error)
	EncodeSetup func(dst []byte, setup Setup) []byte

	// New builds a fresh pair for one run.
	New func(setup Setup) P

	Invariants []Invariant[P]
}

// RunStream decodes the run header, then decodes and applies operations until
// the stream is exhausted or the run fails. Exhaustion, including during the
// header, is a clean stop and returns a nil error.
func (t *Target[P]) RunStream(stream *bytestream.Stream) (Stats, error) {
	session, err := t.NewSession(stream)
	if errors.Is(err, bytestream.ErrExhausted) {
		return Stats{}, nil
	}

	if err != nil {
		return Stats{}, err
	}

	for {
		_, err := session.Next()
		if errors.Is(err, bytestream.ErrExhausted) {
			return session.Stats(), nil
		}

		if err != nil {
			return session.Stats(), err
		}
	}
}

// RunProgram replays a decoded program on a fresh pair.
func (t *Target[P]) RunProgram(program Program) (Stats, error) {
	session := t.Start(program.Setup)

	for _, op := range program.Ops {
		_, err := session.Apply(op)
		if err != nil {
			return session.Stats(), err
		}
	}

	return session.Stats(), nil
}

// RunCounted decodes a counted program from stream and replays it.
func (t *Target[P]) RunCounted(stream *bytestream.Stream) (Stats, error) {
	program, err := t.DecodeCountedProgram(stream)
	if err != nil {
		return Stats{}, err
	}

	return t.RunProgram(program)
}

// DecodeProgram decodes the run header and up to n operations. A bounded
// stream that runs dry yields a shorter program, not an error. Exhaustion
// while reading the header yields an empty program.
func (t *Target[P]) DecodeProgram(stream *bytestream.Stream, n int) (Program, error) {
	setup, err := t.DecodeSetup(stream)
	if errors.Is(err, bytestream.ErrExhausted) {
		return Program{}, nil
	}

	if err != nil {
		return Program{}, fmt.Errorf("%s: decode setup: %w", t.Name, err)
	}

	return t.decodeOps(stream, setup, n)
}

// DecodeCountedProgram decodes the run header followed by a uint16 operation
// count and that many operations. This is the input shape for cyclic buffers,
// which never run dry on their own.
func (t *Target[P]) DecodeCountedProgram(stream *bytestream.Stream) (Program, error) {
	setup, err := t.DecodeSetup(stream)
	if errors.Is(err, bytestream.ErrExhausted) {
		return Program{}, nil
	}

	if err != nil {
		return Program{}, fmt.Errorf("%s: decode setup: %w", t.Name, err)
	}

	count, err := stream.Uint16()
	if errors.Is(err, bytestream.ErrExhausted) {
		return Program{Setup: setup}, nil
	}

	if err != nil {
		return Program{}, fmt.Errorf("%s: decode op count: %w", t.Name, err)
	}

	return t.decodeOps(stream, setup, int(count))
}

func (t *Target[P]) decodeOps(stream *bytestream.Stream, setup Setup, n int) (Program, error) {
	program := Program{Setup: setup, Ops: make([]Operation, 0, min(n, 1024))}

	for range n {
		op, err := t.Schema.Decode(stream)
		if errors.Is(err, bytestream.ErrExhausted) {
			break
		}

		if err != nil {
			return Program{}, fmt.Errorf("%s: decode op #%d: %w", t.Name, len(program.Ops), err)
		}

		program.Ops = append(program.Ops, op)
	}

	return program, nil
}

// EncodeProgram is the inverse of [Target.DecodeProgram]: it encodes the
// header followed by every operation.
func (t *Target[P]) EncodeProgram(program Program) ([]byte, error) {
	builder := NewSeedBuilder(t.Schema, t.EncodeSetup(nil, program.Setup))
	builder.Ops(program.Ops...)

	return builder.Build()
}

// EncodeCountedProgram is the inverse of [Target.DecodeCountedProgram].
func (t *Target[P]) EncodeCountedProgram(program Program) ([]byte, error) {
	if len(program.Ops) > 0xffff {
		return nil, fmt.Errorf("%w: %d ops exceed uint16 count", ErrUnencodable, len(program.Ops))
	}

	header := t.EncodeSetup(nil, program.Setup)
	header = append(header, byte(len(program.Ops)), byte(len(program.Ops)>>8))

	builder := NewSeedBuilder(t.Schema, header)
	builder.Ops(program.Ops...)

	return builder.Build()
}
