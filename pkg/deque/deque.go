// Package deque implements a growable ring-buffer double-ended queue.
//
// Elements live in a single slice addressed modulo its length, so pushes and
// pops at either end are O(1) amortized. Positional insertion and removal
// shift whichever side of the ring is shorter.
//
// The capacity is observable and controllable: [Deque.Reserve] grows the
// buffer to an exact size and [Deque.ShrinkToFit] reallocates it down to the
// current length.
package deque

import (
	"errors"
	"iter"
	"math"
)

// ErrCapacityOverflow is panicked with when a requested capacity cannot be
// represented.
var ErrCapacityOverflow = errors.New("deque: capacity overflow")

const minGrowth = 4

// Deque is a double-ended queue. The zero value is an empty deque ready to
// use. A Deque is not safe for concurrent use.
type Deque[T any] struct {
	buf  []T
	head int
	len  int
}

// New returns an empty deque with room for capacity elements.
func New[T any](capacity int) *Deque[T] {
	d := &Deque[T]{}
	if capacity > 0 {
		d.buf = make([]T, capacity)
	}

	return d
}

// Len returns the number of elements.
func (d *Deque[T]) Len() int {
	return d.len
}

// IsEmpty reports whether the deque holds no elements.
func (d *Deque[T]) IsEmpty() bool {
	return d.len == 0
}

// Capacity returns the number of elements the deque can hold without
// reallocating.
func (d *Deque[T]) Capacity() int {
	return len(d.buf)
}

// physical maps a logical index to a buffer index.
func (d *Deque[T]) physical(i int) int {
	p := d.head + i
	if p >= len(d.buf) {
		p -= len(d.buf)
	}

	return p
}

// PushBack appends t.
func (d *Deque[T]) PushBack(t T) {
	d.growIfFull()
	d.buf[d.physical(d.len)] = t
	d.len++
}

// PushFront prepends t.
func (d *Deque[T]) PushFront(t T) {
	d.growIfFull()

	d.head--
	if d.head < 0 {
		d.head += len(d.buf)
	}

	d.buf[d.head] = t
	d.len++
}

// PopBack removes and returns the last element.
func (d *Deque[T]) PopBack() (T, bool) {
	var zero T

	if d.len == 0 {
		return zero, false
	}

	p := d.physical(d.len - 1)
	t := d.buf[p]
	d.buf[p] = zero
	d.len--

	return t, true
}

// PopFront removes and returns the first element.
func (d *Deque[T]) PopFront() (T, bool) {
	var zero T

	if d.len == 0 {
		return zero, false
	}

	t := d.buf[d.head]
	d.buf[d.head] = zero
	d.head = d.physical(1)
	d.len--

	if d.len == 0 {
		d.head = 0
	}

	return t, true
}

// Front returns the first element.
func (d *Deque[T]) Front() (T, bool) {
	if d.len == 0 {
		var zero T

		return zero, false
	}

	return d.buf[d.head], true
}

// Back returns the last element.
func (d *Deque[T]) Back() (T, bool) {
	if d.len == 0 {
		var zero T

		return zero, false
	}

	return d.buf[d.physical(d.len-1)], true
}

// At returns the element at logical index i.
func (d *Deque[T]) At(i int) (T, bool) {
	if i < 0 || i >= d.len {
		var zero T

		return zero, false
	}

	return d.buf[d.physical(i)], true
}

// Insert places t at index i, shifting later elements back. i == Len()
// appends. For i outside [0, Len()] the deque is left untouched and Insert
// returns false.
func (d *Deque[T]) Insert(i int, t T) bool {
	if i < 0 || i > d.len {
		return false
	}

	d.growIfFull()

	if i < d.len-i {
		// Shift the front half one slot towards the head.
		d.head--
		if d.head < 0 {
			d.head += len(d.buf)
		}

		for j := range i {
			d.buf[d.physical(j)] = d.buf[d.physical(j+1)]
		}
	} else {
		for j := d.len; j > i; j-- {
			d.buf[d.physical(j)] = d.buf[d.physical(j-1)]
		}
	}

	d.buf[d.physical(i)] = t
	d.len++

	return true
}

// Remove deletes and returns the element at index i.
func (d *Deque[T]) Remove(i int) (T, bool) {
	var zero T

	if i < 0 || i >= d.len {
		return zero, false
	}

	t := d.buf[d.physical(i)]

	if i < d.len-1-i {
		for j := i; j > 0; j-- {
			d.buf[d.physical(j)] = d.buf[d.physical(j-1)]
		}

		d.buf[d.head] = zero
		d.head = d.physical(1)
	} else {
		for j := i; j < d.len-1; j++ {
			d.buf[d.physical(j)] = d.buf[d.physical(j+1)]
		}

		d.buf[d.physical(d.len-1)] = zero
	}

	d.len--

	if d.len == 0 {
		d.head = 0
	}

	return t, true
}

// SwapRemoveBack removes the element at index i by moving the last element
// into its place.
//
// With exactly one element it behaves like PopBack whatever i is. Otherwise an
// out-of-range i leaves the deque untouched and returns false.
func (d *Deque[T]) SwapRemoveBack(i int) (T, bool) {
	switch {
	case d.len == 0:
		var zero T

		return zero, false
	case d.len == 1:
		return d.PopBack()
	case i < 0 || i >= d.len:
		var zero T

		return zero, false
	}

	p := d.physical(i)
	t := d.buf[p]
	last, _ := d.PopBack()

	if i < d.len {
		d.buf[p] = last
	}

	return t, true
}

// Clear removes all elements. The capacity is unchanged.
func (d *Deque[T]) Clear() {
	clear(d.buf)
	d.head = 0
	d.len = 0
}

// Reserve makes room for at least additional more elements. The new capacity
// is exactly Len()+additional when growth is needed. It panics with
// [ErrCapacityOverflow] if that size cannot be represented.
func (d *Deque[T]) Reserve(additional int) {
	if additional < 0 || d.len > math.MaxInt-additional {
		panic(ErrCapacityOverflow)
	}

	want := d.len + additional
	if want <= len(d.buf) {
		return
	}

	d.resize(want)
}

// ShrinkToFit reallocates the buffer to exactly Len() elements.
func (d *Deque[T]) ShrinkToFit() {
	if len(d.buf) > d.len {
		d.resize(d.len)
	}
}

// All iterates over the elements front to back with their logical index.
func (d *Deque[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := range d.len {
			if !yield(i, d.buf[d.physical(i)]) {
				return
			}
		}
	}
}

// Items returns a copy of the elements front to back.
func (d *Deque[T]) Items() []T {
	out := make([]T, 0, d.len)
	for _, t := range d.All() {
		out = append(out, t)
	}

	return out
}

func (d *Deque[T]) growIfFull() {
	if d.len < len(d.buf) {
		return
	}

	if len(d.buf) > math.MaxInt/2 {
		panic(ErrCapacityOverflow)
	}

	d.resize(max(minGrowth, 2*len(d.buf)))
}

// resize copies the elements into a fresh buffer of the given size, with the
// head at index 0.
func (d *Deque[T]) resize(size int) {
	if size == 0 {
		d.buf = nil
		d.head = 0

		return
	}

	buf := make([]T, size)

	n := copy(buf, d.buf[d.head:min(d.head+d.len, len(d.buf))])
	copy(buf[n:], d.buf[:d.len-n])

	d.buf = buf
	d.head = 0
}
