package difftest

import (
	"errors"
	"fmt"
	"hash"
	"maps"
	"math"

	"github.com/google/go-cmp/cmp"

	"github.com/calvinalkan/bughunt/pkg/awfulhash"
	"github.com/calvinalkan/bughunt/pkg/bytestream"
	"github.com/calvinalkan/bughunt/pkg/hashmap"
	"github.com/calvinalkan/bughunt/pkg/model"
)

// HasherFactory turns the run's hash seed into the hash constructor handed to
// the map under test.
type HasherFactory func(seed uint8) func() hash.Hash64

// AwfulHasher returns a factory for seeded [awfulhash] hashes reduced by
// modulus (0 disables reduction).
func AwfulHasher(modulus uint8) HasherFactory {
	return func(seed uint8) func() hash.Hash64 {
		return awfulhash.Factory(seed, modulus)
	}
}

// MapOptions configures [MapTarget].
type MapOptions struct {
	// Hasher selects the hash for the map under test. Nil selects
	// AwfulHasher(awfulhash.DefaultModulus).
	Hasher HasherFactory

	// ContentCheck adds a full set-equivalence check after every operation.
	ContentCheck bool
}

// MapPair drives a [model.Map] and a [hashmap.Map] in lockstep.
type MapPair[K, V bytestream.Integer] struct {
	Model *model.Map[K, V]
	SUT   *hashmap.Map[K, V]
}

// NewMapPair returns a pair with an empty model and a map under test built
// from opts.
func NewMapPair[K, V bytestream.Integer](opts hashmap.Options) *MapPair[K, V] {
	return &MapPair[K, V]{
		Model: model.NewMap[K, V](),
		SUT:   hashmap.New[K, V](opts),
	}
}

// Apply implements [Pair].
func (p *MapPair[K, V]) Apply(op Operation) (Effect, error) {
	switch o := op.(type) {
	case Insert[K, V]:
		return EffectApplied, compareResults(
			OptionOf(p.Model.Insert(o.Key, o.Value)),
			OptionOf(p.SUT.Insert(o.Key, o.Value)),
		)
	case Remove[K]:
		return EffectApplied, compareResults(
			OptionOf(p.Model.Remove(o.Key)),
			OptionOf(p.SUT.Remove(o.Key)),
		)
	case Get[K]:
		return EffectApplied, compareResults(
			OptionOf(p.Model.Get(o.Key)),
			OptionOf(p.SUT.Get(o.Key)),
		)
	case Clear:
		p.Model.Clear()
		p.SUT.Clear()

		return EffectApplied, nil
	case ShrinkToFit:
		p.SUT.ShrinkToFit()

		return EffectApplied, nil
	case Reserve:
		if !reserveFits(p.SUT.Capacity(), o.N) {
			return EffectSkipped, nil
		}

		err := p.SUT.TryReserve(int(o.N))
		if errors.Is(err, hashmap.ErrCapacityOverflow) {
			return EffectSkipped, nil
		}

		return EffectApplied, err
	default:
		return EffectApplied, fmt.Errorf("%w: %T", ErrUnsupportedOperation, op)
	}
}

// Observe implements [Pair].
func (p *MapPair[K, V]) Observe() Snapshot {
	return Snapshot{
		ModelLen:   p.Model.Len(),
		SUTLen:     p.SUT.Len(),
		ModelEmpty: p.Model.IsEmpty(),
		SUTEmpty:   p.SUT.IsEmpty(),
		SUTCap:     p.SUT.Capacity(),
	}
}

// Contents returns both sides as Go maps for comparison.
func (p *MapPair[K, V]) Contents() (modelContents, sutContents map[K]V) {
	modelContents = make(map[K]V, p.Model.Len())
	for _, pair := range p.Model.Entries() {
		modelContents[pair.Key] = pair.Value
	}

	return modelContents, maps.Collect(p.SUT.All())
}

// MapTarget returns the target for map-like containers.
//
// Run header: hash seed (uint8), capacity hint (uint8).
func MapTarget[K, V bytestream.Integer](opts MapOptions) *Target[*MapPair[K, V]] {
	hasher := opts.Hasher
	if hasher == nil {
		hasher = AwfulHasher(awfulhash.DefaultModulus)
	}

	invariants := CommonInvariants[*MapPair[K, V]]()
	if opts.ContentCheck {
		invariants = append(invariants, MapContentInvariant[K, V]())
	}

	return &Target[*MapPair[K, V]]{
		Name:   "hashmap",
		Schema: MapSchema[K, V](),
		DecodeSetup: func(s *bytestream.Stream) (Setup, error) {
			seed, err := s.Uint8()
			if err != nil {
				return Setup{}, err
			}

			capacity, err := s.Uint8()
			if err != nil {
				return Setup{}, err
			}

			return Setup{HashSeed: seed, Capacity: int(capacity)}, nil
		},
		EncodeSetup: func(dst []byte, setup Setup) []byte {
			return append(dst, setup.HashSeed, clampUint8(setup.Capacity))
		},
		New: func(setup Setup) *MapPair[K, V] {
			return NewMapPair[K, V](hashmap.Options{
				Capacity: setup.Capacity,
				Hasher:   hasher(setup.HashSeed),
			})
		},
		Invariants: invariants,
	}
}

// MapContentInvariant checks that both sides hold the same set of pairs.
func MapContentInvariant[K, V bytestream.Integer]() Invariant[*MapPair[K, V]] {
	return Invariant[*MapPair[K, V]]{
		Name: InvContentsMatch,
		Check: func(p *MapPair[K, V], _ Step) error {
			modelContents, sutContents := p.Contents()

			if diff := cmp.Diff(modelContents, sutContents); diff != "" {
				return fmt.Errorf("contents differ (-model +sut):\n%s", diff)
			}

			return nil
		},
	}
}

// reserveFits reports whether capacity+n is representable as an int.
func reserveFits(capacity int, n uint64) bool {
	return n <= uint64(math.MaxInt-capacity)
}

// compareResults returns a [*Mismatch] when the results differ.
func compareResults[T comparable](modelResult, sutResult T) error {
	if modelResult == sutResult {
		return nil
	}

	return &Mismatch{
		Model: modelResult,
		SUT:   sutResult,
		Diff:  cmp.Diff(modelResult, sutResult),
	}
}

func clampUint8(n int) byte {
	return byte(min(max(n, 0), math.MaxUint8))
}
