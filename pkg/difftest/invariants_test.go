package difftest_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/bughunt/pkg/difftest"
	"github.com/calvinalkan/bughunt/pkg/hashmap"
)

// zeroCapacityPair reports a capacity of 0 for the container under test.
type zeroCapacityPair struct {
	*difftest.MapPair[uint8, uint8]
}

func (p zeroCapacityPair) Observe() difftest.Snapshot {
	snapshot := p.MapPair.Observe()
	snapshot.SUTCap = 0

	return snapshot
}

// reallocatingClearPair releases the buckets of the container under test on
// Clear.
type reallocatingClearPair struct {
	*difftest.MapPair[uint8, uint8]
}

func (p reallocatingClearPair) Apply(op difftest.Operation) (difftest.Effect, error) {
	if _, ok := op.(difftest.Clear); ok {
		p.Model.Clear()
		p.SUT.Clear()
		p.SUT.ShrinkToFit()

		return difftest.EffectApplied, nil
	}

	return p.MapPair.Apply(op)
}

// growingShrinkPair grows the container under test on ShrinkToFit.
type growingShrinkPair struct {
	*difftest.MapPair[uint8, uint8]
}

func (p growingShrinkPair) Apply(op difftest.Operation) (difftest.Effect, error) {
	if _, ok := op.(difftest.ShrinkToFit); ok {
		p.SUT.Reserve(p.SUT.Capacity() + 10)

		return difftest.EffectApplied, nil
	}

	return p.MapPair.Apply(op)
}

// leakyReservePair reports every Reserve as skipped but still grows the
// container under test.
type leakyReservePair struct {
	*difftest.MapPair[uint8, uint8]
}

func (p leakyReservePair) Apply(op difftest.Operation) (difftest.Effect, error) {
	if _, ok := op.(difftest.Reserve); ok {
		p.SUT.Reserve(8)

		return difftest.EffectSkipped, nil
	}

	return p.MapPair.Apply(op)
}

// shiftedKeyPair stores key+1 in the container under test.
type shiftedKeyPair struct {
	*difftest.MapPair[uint8, uint8]
}

func (p shiftedKeyPair) Apply(op difftest.Operation) (difftest.Effect, error) {
	if insert, ok := op.(u8Map); ok {
		p.Model.Insert(insert.Key, insert.Value)
		p.SUT.Insert(insert.Key+1, insert.Value)

		return difftest.EffectApplied, nil
	}

	return p.MapPair.Apply(op)
}

// backwardPushFrontPair pushes to the back of the container under test on
// PushFront.
type backwardPushFrontPair struct {
	*difftest.DequePair[uint8]
}

func (p backwardPushFrontPair) unwrap() *difftest.DequePair[uint8] { return p.DequePair }

func (p backwardPushFrontPair) Apply(op difftest.Operation) (difftest.Effect, error) {
	if push, ok := op.(difftest.PushFront[uint8]); ok {
		p.Model.PushFront(push.Value)
		p.SUT.PushBack(push.Value)

		return difftest.EffectApplied, nil
	}

	return p.DequePair.Apply(op)
}

// corruptPushBackPair stores value+1 in the container under test on PushBack.
type corruptPushBackPair struct {
	*difftest.DequePair[uint8]
}

func (p corruptPushBackPair) unwrap() *difftest.DequePair[uint8] { return p.DequePair }

func (p corruptPushBackPair) Apply(op difftest.Operation) (difftest.Effect, error) {
	if push, ok := op.(u8Deque); ok {
		p.Model.PushBack(push.Value)
		p.SUT.PushBack(push.Value + 1)

		return difftest.EffectApplied, nil
	}

	return p.DequePair.Apply(op)
}

// corruptInsertAtPair stores value+1 in the container under test on InsertAt.
type corruptInsertAtPair struct {
	*difftest.DequePair[uint8]
}

func (p corruptInsertAtPair) unwrap() *difftest.DequePair[uint8] { return p.DequePair }

func (p corruptInsertAtPair) Apply(op difftest.Operation) (difftest.Effect, error) {
	if insert, ok := op.(difftest.InsertAt[uint8]); ok {
		p.Model.Insert(int(insert.Index), insert.Value)
		p.SUT.Insert(int(insert.Index), insert.Value+1)

		return difftest.EffectApplied, nil
	}

	return p.DequePair.Apply(op)
}

type dequeWrapper interface {
	difftest.Pair
	unwrap() *difftest.DequePair[uint8]
}

func lift[P dequeWrapper](invariants ...difftest.Invariant[*difftest.DequePair[uint8]]) []difftest.Invariant[P] {
	lifted := make([]difftest.Invariant[P], 0, len(invariants))

	for _, invariant := range invariants {
		lifted = append(lifted, difftest.Invariant[P]{
			Name: invariant.Name,
			Check: func(p P, step difftest.Step) error {
				return invariant.Check(p.unwrap(), step)
			},
		})
	}

	return lifted
}

func brokenDequeTarget[P dequeWrapper](wrap func(*difftest.DequePair[uint8]) P) *difftest.Target[P] {
	base := difftest.DequeTarget[uint8](difftest.DequeOptions{})

	invariants := difftest.CommonInvariants[P]()
	invariants = append(invariants, lift[P](difftest.DequeEndInvariants[uint8]()...)...)
	invariants = append(invariants, lift[P](difftest.DequeContentInvariant[uint8]())...)

	return &difftest.Target[P]{
		Name:        "broken-deque",
		Schema:      base.Schema,
		DecodeSetup: base.DecodeSetup,
		EncodeSetup: base.EncodeSetup,
		New: func(setup difftest.Setup) P {
			return wrap(difftest.NewDequePair[uint8](setup.Capacity))
		},
		Invariants: invariants,
	}
}

func requireInvariant(t *testing.T, err error, position int, name string) *difftest.Failure {
	t.Helper()

	require.ErrorIs(t, err, difftest.ErrInvariantViolation)

	var failure *difftest.Failure
	require.ErrorAs(t, err, &failure)

	assert.Equal(t, difftest.FailureInvariant, failure.Kind)
	assert.Equal(t, position, failure.Position)
	assert.Equal(t, name, failure.Invariant)

	return failure
}

func Test_Invariants_Report_Capacity_When_SUT_Capacity_Below_Length(t *testing.T) {
	t.Parallel()

	target := brokenTarget(func(p *difftest.MapPair[uint8, uint8]) zeroCapacityPair { return zeroCapacityPair{p} })

	_, err := target.RunProgram(difftest.Program{Ops: []difftest.Operation{
		u8Map{Key: 1, Value: 1},
	}})

	failure := requireInvariant(t, err, 0, difftest.InvCapacityCoversLength)
	assert.Contains(t, failure.Detail, "sut capacity 0 < model length 1")
}

func Test_Invariants_Report_Clear_When_Clear_Changes_Capacity(t *testing.T) {
	t.Parallel()

	target := brokenTarget(func(p *difftest.MapPair[uint8, uint8]) reallocatingClearPair {
		return reallocatingClearPair{p}
	})

	_, err := target.RunProgram(difftest.Program{Ops: []difftest.Operation{
		u8Map{Key: 1, Value: 1},
		difftest.Clear{},
	}})

	failure := requireInvariant(t, err, 1, difftest.InvClearEmpties)
	assert.Contains(t, failure.Detail, "clear changed capacity")
	assert.Equal(t, 0, failure.State.SUTLen)
}

func Test_Invariants_Report_Shrink_When_ShrinkToFit_Grows_Capacity(t *testing.T) {
	t.Parallel()

	target := brokenTarget(func(p *difftest.MapPair[uint8, uint8]) growingShrinkPair { return growingShrinkPair{p} })

	_, err := target.RunProgram(difftest.Program{Ops: []difftest.Operation{
		u8Map{Key: 1, Value: 1},
		difftest.ShrinkToFit{},
	}})

	failure := requireInvariant(t, err, 1, difftest.InvShrinkKeepsLength)
	assert.Contains(t, failure.Detail, "shrink grew capacity")
}

func Test_Invariants_Report_Skipped_Reserve_When_Skip_Changes_State(t *testing.T) {
	t.Parallel()

	target := brokenTarget(func(p *difftest.MapPair[uint8, uint8]) leakyReservePair { return leakyReservePair{p} })

	_, err := target.RunProgram(difftest.Program{Ops: []difftest.Operation{
		difftest.Reserve{N: math.MaxUint64},
	}})

	failure := requireInvariant(t, err, 0, difftest.InvSkippedReserveInert)
	assert.Contains(t, failure.Detail, "skipped reserve changed state")
}

func Test_Invariants_Report_Front_When_PushFront_Lands_At_Back(t *testing.T) {
	t.Parallel()

	target := brokenDequeTarget(func(p *difftest.DequePair[uint8]) backwardPushFrontPair {
		return backwardPushFrontPair{p}
	})

	_, err := target.RunProgram(difftest.Program{Ops: []difftest.Operation{
		u8Deque{Value: 1},
		difftest.PushFront[uint8]{Value: 2},
	}})

	failure := requireInvariant(t, err, 1, difftest.InvFrontMatches)
	assert.Contains(t, failure.Detail, "front: model=Some(2) sut=Some(1)")
}

func Test_Invariants_Report_Back_When_PushBack_Stores_Wrong_Value(t *testing.T) {
	t.Parallel()

	target := brokenDequeTarget(func(p *difftest.DequePair[uint8]) corruptPushBackPair {
		return corruptPushBackPair{p}
	})

	_, err := target.RunProgram(difftest.Program{Ops: []difftest.Operation{
		difftest.PushFront[uint8]{Value: 1},
		u8Deque{Value: 2},
	}})

	failure := requireInvariant(t, err, 1, difftest.InvBackMatches)
	assert.Contains(t, failure.Detail, "back: model=Some(2) sut=Some(3)")
}

func Test_Invariants_Report_Contents_When_Deque_Middle_Differs(t *testing.T) {
	t.Parallel()

	target := brokenDequeTarget(func(p *difftest.DequePair[uint8]) corruptInsertAtPair {
		return corruptInsertAtPair{p}
	})

	_, err := target.RunProgram(difftest.Program{Ops: []difftest.Operation{
		u8Deque{Value: 1},
		u8Deque{Value: 3},
		difftest.InsertAt[uint8]{Index: 1, Value: 2},
	}})

	failure := requireInvariant(t, err, 2, difftest.InvContentsMatch)
	assert.Contains(t, failure.Detail, "sequence differs")
}

func Test_Invariants_Report_Contents_When_Map_Stores_Wrong_Key(t *testing.T) {
	t.Parallel()

	contents := difftest.MapContentInvariant[uint8, uint8]()

	target := &difftest.Target[shiftedKeyPair]{
		Name:   "broken-map",
		Schema: difftest.MapSchema[uint8, uint8](),
		New: func(setup difftest.Setup) shiftedKeyPair {
			return shiftedKeyPair{difftest.NewMapPair[uint8, uint8](hashmap.Options{Capacity: setup.Capacity})}
		},
		Invariants: append(difftest.CommonInvariants[shiftedKeyPair](), difftest.Invariant[shiftedKeyPair]{
			Name: contents.Name,
			Check: func(p shiftedKeyPair, step difftest.Step) error {
				return contents.Check(p.MapPair, step)
			},
		}),
	}

	_, err := target.RunProgram(difftest.Program{Ops: []difftest.Operation{
		u8Map{Key: 4, Value: 9},
	}})

	requireInvariant(t, err, 0, difftest.InvContentsMatch)
}
