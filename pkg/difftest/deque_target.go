package difftest

import (
	"fmt"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/calvinalkan/bughunt/pkg/bytestream"
	"github.com/calvinalkan/bughunt/pkg/deque"
	"github.com/calvinalkan/bughunt/pkg/model"
)

// DequeOptions configures [DequeTarget].
type DequeOptions struct {
	// ContentCheck adds a full sequence-equivalence check after every
	// operation.
	ContentCheck bool
}

// DequePair drives a [model.Deque] and a [deque.Deque] in lockstep.
type DequePair[T bytestream.Integer] struct {
	Model *model.Deque[T]
	SUT   *deque.Deque[T]
}

// NewDequePair returns a pair with an empty model and a deque under test with
// the given initial capacity.
func NewDequePair[T bytestream.Integer](capacity int) *DequePair[T] {
	return &DequePair[T]{
		Model: model.NewDeque[T](),
		SUT:   deque.New[T](capacity),
	}
}

// Apply implements [Pair].
func (p *DequePair[T]) Apply(op Operation) (Effect, error) {
	switch o := op.(type) {
	case PushBack[T]:
		p.Model.PushBack(o.Value)
		p.SUT.PushBack(o.Value)

		return EffectApplied, nil
	case PushFront[T]:
		p.Model.PushFront(o.Value)
		p.SUT.PushFront(o.Value)

		return EffectApplied, nil
	case PopBack:
		return EffectApplied, compareResults(
			OptionOf(p.Model.PopBack()),
			OptionOf(p.SUT.PopBack()),
		)
	case PopFront:
		return EffectApplied, compareResults(
			OptionOf(p.Model.PopFront()),
			OptionOf(p.SUT.PopFront()),
		)
	case InsertAt[T]:
		return EffectApplied, compareResults(
			p.Model.Insert(int(o.Index), o.Value),
			p.SUT.Insert(int(o.Index), o.Value),
		)
	case RemoveAt:
		return EffectApplied, compareResults(
			OptionOf(p.Model.Remove(int(o.Index))),
			OptionOf(p.SUT.Remove(int(o.Index))),
		)
	case SwapRemoveBack:
		return EffectApplied, compareResults(
			OptionOf(p.Model.SwapRemoveBack(int(o.Index))),
			OptionOf(p.SUT.SwapRemoveBack(int(o.Index))),
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

		p.SUT.Reserve(int(o.N))

		return EffectApplied, nil
	default:
		return EffectApplied, fmt.Errorf("%w: %T", ErrUnsupportedOperation, op)
	}
}

// Observe implements [Pair].
func (p *DequePair[T]) Observe() Snapshot {
	return Snapshot{
		ModelLen:   p.Model.Len(),
		SUTLen:     p.SUT.Len(),
		ModelEmpty: p.Model.IsEmpty(),
		SUTEmpty:   p.SUT.IsEmpty(),
		SUTCap:     p.SUT.Capacity(),
	}
}

// DequeTarget returns the target for deque-like containers.
//
// Run header: capacity hint (uint8).
func DequeTarget[T bytestream.Integer](opts DequeOptions) *Target[*DequePair[T]] {
	invariants := append(CommonInvariants[*DequePair[T]](), DequeEndInvariants[T]()...)
	if opts.ContentCheck {
		invariants = append(invariants, DequeContentInvariant[T]())
	}

	return &Target[*DequePair[T]]{
		Name:   "deque",
		Schema: DequeSchema[T](),
		DecodeSetup: func(s *bytestream.Stream) (Setup, error) {
			capacity, err := s.Uint8()
			if err != nil {
				return Setup{}, err
			}

			return Setup{Capacity: int(capacity)}, nil
		},
		EncodeSetup: func(dst []byte, setup Setup) []byte {
			return append(dst, clampUint8(setup.Capacity))
		},
		New: func(setup Setup) *DequePair[T] {
			return NewDequePair[T](setup.Capacity)
		},
		Invariants: invariants,
	}
}

// DequeEndInvariants checks that both sides agree on their first and last
// elements.
func DequeEndInvariants[T bytestream.Integer]() []Invariant[*DequePair[T]] {
	return []Invariant[*DequePair[T]]{
		{
			Name: InvFrontMatches,
			Check: func(p *DequePair[T], _ Step) error {
				modelFront := OptionOf(p.Model.Front())
				sutFront := OptionOf(p.SUT.Front())

				if modelFront != sutFront {
					return fmt.Errorf("front: model=%s sut=%s", modelFront, sutFront)
				}

				return nil
			},
		},
		{
			Name: InvBackMatches,
			Check: func(p *DequePair[T], _ Step) error {
				modelBack := OptionOf(p.Model.Back())
				sutBack := OptionOf(p.SUT.Back())

				if modelBack != sutBack {
					return fmt.Errorf("back: model=%s sut=%s", modelBack, sutBack)
				}

				return nil
			},
		},
	}
}

// DequeContentInvariant checks that both sides hold the same sequence.
func DequeContentInvariant[T bytestream.Integer]() Invariant[*DequePair[T]] {
	return Invariant[*DequePair[T]]{
		Name: InvContentsMatch,
		Check: func(p *DequePair[T], _ Step) error {
			if diff := cmp.Diff(p.Model.Items(), p.SUT.Items(), cmpopts.EquateEmpty()); diff != "" {
				return fmt.Errorf("sequence differs (-model +sut):\n%s", diff)
			}

			return nil
		},
	}
}
