package deque_test

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/calvinalkan/bughunt/pkg/deque"
	"github.com/calvinalkan/bughunt/pkg/model"
)

func Test_Deque_Wraps_Around_Buffer_When_Pushing_Both_Ends(t *testing.T) {
	t.Parallel()

	d := deque.New[int](4)
	d.PushBack(2)
	d.PushBack(3)
	d.PushFront(1)
	d.PushFront(0)

	assert.Equal(t, 4, d.Capacity(), "no growth while room remains")
	assert.Equal(t, []int{0, 1, 2, 3}, d.Items())

	d.PushBack(4)
	assert.Equal(t, 8, d.Capacity())
	assert.Equal(t, []int{0, 1, 2, 3, 4}, d.Items())
}

func Test_Deque_Grows_To_Minimum_When_Zero_Value_Used(t *testing.T) {
	t.Parallel()

	var d deque.Deque[string]

	d.PushFront("x")

	assert.Equal(t, 4, d.Capacity())

	v, ok := d.At(0)
	require.True(t, ok)
	assert.Equal(t, "x", v)

	_, ok = d.At(1)
	assert.False(t, ok)
}

func Test_Reserve_Sets_Exact_Capacity_When_Growth_Needed(t *testing.T) {
	t.Parallel()

	d := deque.New[int](0)
	d.PushBack(1)
	d.Reserve(10)

	assert.Equal(t, 11, d.Capacity())

	d.Reserve(3)
	assert.Equal(t, 11, d.Capacity(), "reserve within capacity is a no-op")
}

func Test_Reserve_Panics_When_Request_Overflows(t *testing.T) {
	t.Parallel()

	d := deque.New[int](0)
	d.PushBack(1)

	assert.PanicsWithError(t, deque.ErrCapacityOverflow.Error(), func() { d.Reserve(math.MaxInt) })
	assert.Equal(t, 1, d.Len())
}

func Test_ShrinkToFit_Reallocates_To_Length_When_Buffer_Larger(t *testing.T) {
	t.Parallel()

	d := deque.New[int](32)
	d.PushFront(2)
	d.PushFront(1)
	d.ShrinkToFit()

	assert.Equal(t, 2, d.Capacity())
	assert.Equal(t, []int{1, 2}, d.Items())

	d.Clear()
	d.ShrinkToFit()
	assert.Equal(t, 0, d.Capacity())
}

func Test_Clear_Keeps_Capacity_When_Deque_Has_Elements(t *testing.T) {
	t.Parallel()

	d := deque.New[int](6)
	d.PushBack(1)
	d.Clear()

	assert.Equal(t, 6, d.Capacity())
	assert.True(t, d.IsEmpty())
}

func Test_SwapRemoveBack_Behaves_Like_PopBack_When_Single_Element(t *testing.T) {
	t.Parallel()

	d := deque.New[int](0)
	d.PushBack(9)

	v, ok := d.SwapRemoveBack(1234)
	require.True(t, ok)
	assert.Equal(t, 9, v)
	assert.True(t, d.IsEmpty())

	_, ok = d.SwapRemoveBack(0)
	assert.False(t, ok)
}

func Test_Insert_Shifts_Front_Half_When_Index_Near_Head(t *testing.T) {
	t.Parallel()

	d := deque.New[int](8)
	for v := range 6 {
		d.PushBack(v * 10)
	}

	require.True(t, d.Insert(1, 5))
	require.True(t, d.Insert(6, 45))
	require.False(t, d.Insert(9, 0))

	assert.Equal(t, []int{0, 5, 10, 20, 30, 40, 45, 50}, d.Items())
}

func Test_Remove_Keeps_Order_When_Removing_From_Either_Half(t *testing.T) {
	t.Parallel()

	d := deque.New[int](0)
	for v := range 7 {
		d.PushFront(v)
	}

	v, ok := d.Remove(1)
	require.True(t, ok)
	assert.Equal(t, 5, v)

	v, ok = d.Remove(4)
	require.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = d.Remove(5)
	assert.False(t, ok)

	assert.Equal(t, []int{6, 4, 3, 2, 0}, d.Items())
}

func Test_Deque_Matches_Model_When_Random_Ops_Applied(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		d := deque.New[uint16](rapid.IntRange(0, 16).Draw(t, "capacity"))
		ref := model.NewDeque[uint16]()

		for range rapid.IntRange(0, 300).Draw(t, "ops") {
			index := rapid.IntRange(0, 20).Draw(t, "index")

			switch rapid.IntRange(0, 10).Draw(t, "kind") {
			case 0:
				v := rapid.Uint16().Draw(t, "value")
				d.PushBack(v)
				ref.PushBack(v)
			case 1:
				v := rapid.Uint16().Draw(t, "value")
				d.PushFront(v)
				ref.PushFront(v)
			case 2:
				compare(t, "pop_back", d.PopBack, ref.PopBack)
			case 3:
				compare(t, "pop_front", d.PopFront, ref.PopFront)
			case 4:
				v := rapid.Uint16().Draw(t, "value")
				if got, want := d.Insert(index, v), ref.Insert(index, v); got != want {
					t.Fatalf("insert(%d): got %v, want %v", index, got, want)
				}
			case 5:
				compare(t, "remove", func() (uint16, bool) { return d.Remove(index) }, func() (uint16, bool) { return ref.Remove(index) })
			case 6:
				compare(t, "swap_remove_back",
					func() (uint16, bool) { return d.SwapRemoveBack(index) },
					func() (uint16, bool) { return ref.SwapRemoveBack(index) })
			case 7:
				d.Reserve(index)
			case 8:
				d.ShrinkToFit()

				if d.Capacity() != d.Len() {
					t.Fatalf("shrink: capacity %d, len %d", d.Capacity(), d.Len())
				}
			case 9:
				capacity := d.Capacity()
				d.Clear()
				ref.Clear()

				if d.Capacity() != capacity {
					t.Fatalf("clear changed capacity %d -> %d", capacity, d.Capacity())
				}
			default:
				compare(t, "front", d.Front, ref.Front)
				compare(t, "back", d.Back, ref.Back)
			}

			if diff := cmp.Diff(ref.Items(), d.Items(), cmpopts.EquateEmpty()); diff != "" {
				t.Fatalf("contents mismatch (-model +deque):\n%s", diff)
			}

			if d.Capacity() < d.Len() {
				t.Fatalf("capacity %d below len %d", d.Capacity(), d.Len())
			}
		}
	})
}

func compare[T comparable](t *rapid.T, name string, got, want func() (T, bool)) {
	gv, gok := got()
	wv, wok := want()

	if gv != wv || gok != wok {
		t.Fatalf("%s: got (%v, %v), want (%v, %v)", name, gv, gok, wv, wok)
	}
}
