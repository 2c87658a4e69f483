// Package model provides deliberately simple, in-memory reference models of
// map-like and deque-like containers.
//
// The models are intentionally easy to audit: they favor clarity over
// performance, keep no capacity, and use linear scans and slice shifting
// everywhere. A differential test treats them as the ground truth the real
// containers must agree with.
package model

import "slices"

// Pair is one key/value entry of a [Map].
type Pair[K comparable, V any] struct {
	Key   K
	Value V
}

// Map is an unordered association list with unique keys.
//
// Overwriting an existing key replaces only the value. The stored key keeps
// its original identity and position, which matters for key types whose
// equality is coarser than identity.
type Map[K comparable, V any] struct {
	pairs []Pair[K, V]
}

// NewMap returns an empty map.
func NewMap[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{}
}

func (m *Map[K, V]) find(k K) int {
	for i := range m.pairs {
		if m.pairs[i].Key == k {
			return i
		}
	}

	return -1
}

// Get returns the value stored for k.
func (m *Map[K, V]) Get(k K) (V, bool) {
	i := m.find(k)
	if i < 0 {
		var zero V

		return zero, false
	}

	return m.pairs[i].Value, true
}

// Insert stores v under k and returns the previous value if k was present.
func (m *Map[K, V]) Insert(k K, v V) (V, bool) {
	i := m.find(k)
	if i < 0 {
		m.pairs = append(m.pairs, Pair[K, V]{Key: k, Value: v})

		var zero V

		return zero, false
	}

	old := m.pairs[i].Value
	m.pairs[i].Value = v

	return old, true
}

// Remove deletes k and returns its value. The last pair moves into the
// vacated slot, so removal reorders the remaining pairs.
func (m *Map[K, V]) Remove(k K) (V, bool) {
	i := m.find(k)
	if i < 0 {
		var zero V

		return zero, false
	}

	old := m.pairs[i].Value
	last := len(m.pairs) - 1
	m.pairs[i] = m.pairs[last]

	var zero Pair[K, V]

	m.pairs[last] = zero
	m.pairs = m.pairs[:last]

	return old, true
}

// Clear removes all pairs.
func (m *Map[K, V]) Clear() {
	clear(m.pairs)
	m.pairs = m.pairs[:0]
}

// Len returns the number of pairs.
func (m *Map[K, V]) Len() int {
	return len(m.pairs)
}

// IsEmpty reports whether the map holds no pairs.
func (m *Map[K, V]) IsEmpty() bool {
	return len(m.pairs) == 0
}

// Entries returns a copy of the pairs in storage order.
func (m *Map[K, V]) Entries() []Pair[K, V] {
	return slices.Clone(m.pairs)
}

// Deque is an ordered sequence supporting pushes and pops at both ends plus
// positional edits.
type Deque[T any] struct {
	items []T
}

// NewDeque returns an empty deque.
func NewDeque[T any]() *Deque[T] {
	return &Deque[T]{}
}

// PushBack appends t.
func (d *Deque[T]) PushBack(t T) {
	d.items = append(d.items, t)
}

// PushFront prepends t. Every existing element shifts one position.
func (d *Deque[T]) PushFront(t T) {
	d.items = slices.Insert(d.items, 0, t)
}

// PopBack removes and returns the last element.
func (d *Deque[T]) PopBack() (T, bool) {
	var zero T

	if len(d.items) == 0 {
		return zero, false
	}

	last := len(d.items) - 1
	t := d.items[last]
	d.items[last] = zero
	d.items = d.items[:last]

	return t, true
}

// PopFront removes and returns the first element.
func (d *Deque[T]) PopFront() (T, bool) {
	var zero T

	if len(d.items) == 0 {
		return zero, false
	}

	t := d.items[0]
	d.items = slices.Delete(d.items, 0, 1)

	return t, true
}

// Front returns the first element.
func (d *Deque[T]) Front() (T, bool) {
	if len(d.items) == 0 {
		var zero T

		return zero, false
	}

	return d.items[0], true
}

// Back returns the last element.
func (d *Deque[T]) Back() (T, bool) {
	if len(d.items) == 0 {
		var zero T

		return zero, false
	}

	return d.items[len(d.items)-1], true
}

// Insert places t at index i, shifting later elements back. i == Len()
// appends. For i > Len() the deque is left untouched and Insert returns false.
func (d *Deque[T]) Insert(i int, t T) bool {
	if i < 0 || i > len(d.items) {
		return false
	}

	d.items = slices.Insert(d.items, i, t)

	return true
}

// Remove deletes and returns the element at index i.
func (d *Deque[T]) Remove(i int) (T, bool) {
	if i < 0 || i >= len(d.items) {
		var zero T

		return zero, false
	}

	t := d.items[i]
	d.items = slices.Delete(d.items, i, i+1)

	return t, true
}

// SwapRemoveBack removes the element at index i by moving the last element
// into its place.
//
// With exactly one element it behaves like PopBack whatever i is. Otherwise an
// out-of-range i leaves the deque untouched and returns false.
func (d *Deque[T]) SwapRemoveBack(i int) (T, bool) {
	switch {
	case len(d.items) == 0:
		var zero T

		return zero, false
	case len(d.items) == 1:
		return d.PopBack()
	case i < 0 || i >= len(d.items):
		var zero T

		return zero, false
	}

	t := d.items[i]
	d.items[i] = d.items[len(d.items)-1]
	d.PopBack()

	return t, true
}

// Clear removes all elements.
func (d *Deque[T]) Clear() {
	clear(d.items)
	d.items = d.items[:0]
}

// Len returns the number of elements.
func (d *Deque[T]) Len() int {
	return len(d.items)
}

// IsEmpty reports whether the deque holds no elements.
func (d *Deque[T]) IsEmpty() bool {
	return len(d.items) == 0
}

// Items returns a copy of the elements front to back.
func (d *Deque[T]) Items() []T {
	return slices.Clone(d.items)
}
