// Package hashmap implements an open-addressing hash map with an explicit
// capacity model and a pluggable hash function.
//
// Buckets are a power-of-two slice probed linearly. Deletion uses backward
// shifting, so no tombstones accumulate. Each occupied slot caches the full
// hash of its key, which keeps rehashing independent of the hash function.
//
// Unlike Go's built-in map the table exposes its capacity and lets callers
// reserve and shrink it:
//
//	m := hashmap.New[uint8, uint8](hashmap.Options{Capacity: 16})
//	m.Insert(1, 10)
//	_ = m.TryReserve(100)
//	m.ShrinkToFit()
//
// The hash function is supplied as a factory in [Options.Hasher]. Any
// [hash.Hash64] works, including ones that collide on purpose. Keys are fed
// to the hash as their little-endian bytes in a single Write; string keys are
// written as their bytes followed by a second Write of 0xff.
//
// A Map is not safe for concurrent use.
package hashmap

import (
	"encoding/binary"
	"errors"
	"hash"
	"iter"
	"math"
	"math/bits"
	"reflect"

	"github.com/cespare/xxhash/v2"
)

// ErrCapacityOverflow is returned (or panicked with) when a requested
// capacity cannot be represented.
var ErrCapacityOverflow = errors.New("hashmap: capacity overflow")

// Key is the set of key types a [Map] knows how to hash.
type Key interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~int |
		~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uint |
		~string
}

// Options configures a new map.
type Options struct {
	// Capacity is the number of entries the map can hold before it first
	// grows. Negative values are treated as 0.
	Capacity int

	// Hasher returns a fresh hash. Nil selects xxhash.
	Hasher func() hash.Hash64
}

// DefaultHasher is the hash factory used when [Options.Hasher] is nil.
func DefaultHasher() hash.Hash64 {
	return xxhash.New()
}

type slot[K Key, V any] struct {
	key   K
	value V
	hash  uint64
	used  bool
}

// Map is a hash map from K to V.
type Map[K Key, V any] struct {
	slots   []slot[K, V]
	len     int
	h       hash.Hash64
	scratch [8]byte
}

// New returns an empty map with room for at least opts.Capacity entries.
// It panics with [ErrCapacityOverflow] if that capacity is unrepresentable.
func New[K Key, V any](opts Options) *Map[K, V] {
	newHash := opts.Hasher
	if newHash == nil {
		newHash = DefaultHasher
	}

	m := &Map[K, V]{h: newHash()}

	buckets, err := capacityToBuckets(max(opts.Capacity, 0))
	if err != nil {
		panic(err)
	}

	if buckets > 0 {
		m.slots = make([]slot[K, V], buckets)
	}

	return m
}

// Len returns the number of entries.
func (m *Map[K, V]) Len() int {
	return m.len
}

// IsEmpty reports whether the map has no entries.
func (m *Map[K, V]) IsEmpty() bool {
	return m.len == 0
}

// Capacity returns the number of entries the map can hold without growing.
// It is always >= Len.
func (m *Map[K, V]) Capacity() int {
	return bucketsToCapacity(len(m.slots))
}

// Get returns the value stored for k.
func (m *Map[K, V]) Get(k K) (V, bool) {
	i, ok := m.find(k, m.hashKey(k))
	if !ok {
		var zero V

		return zero, false
	}

	return m.slots[i].value, true
}

// Insert stores v under k and returns the previous value if k was present.
// When k is already present only the value is replaced; the stored key is
// kept.
func (m *Map[K, V]) Insert(k K, v V) (V, bool) {
	h := m.hashKey(k)

	i, ok := m.find(k, h)
	if ok {
		old := m.slots[i].value
		m.slots[i].value = v

		return old, true
	}

	if m.len >= m.Capacity() {
		m.Reserve(1)

		i, _ = m.find(k, h)
	}

	m.slots[i] = slot[K, V]{key: k, value: v, hash: h, used: true}
	m.len++

	var zero V

	return zero, false
}

// Remove deletes k and returns its value.
func (m *Map[K, V]) Remove(k K) (V, bool) {
	i, ok := m.find(k, m.hashKey(k))
	if !ok {
		var zero V

		return zero, false
	}

	old := m.slots[i].value
	m.deleteAt(i)
	m.len--

	return old, true
}

// Clear removes every entry. The capacity is unchanged.
func (m *Map[K, V]) Clear() {
	clear(m.slots)
	m.len = 0
}

// Reserve makes room for at least additional more entries. It panics with
// [ErrCapacityOverflow] when the new capacity is unrepresentable.
func (m *Map[K, V]) Reserve(additional int) {
	err := m.TryReserve(additional)
	if err != nil {
		panic(err)
	}
}

// TryReserve is like [Map.Reserve] but returns [ErrCapacityOverflow] instead
// of panicking. On error the map is unchanged.
func (m *Map[K, V]) TryReserve(additional int) error {
	if additional < 0 {
		return ErrCapacityOverflow
	}

	capacity := m.Capacity()
	if additional <= capacity-m.len {
		return nil
	}

	if m.len > math.MaxInt-additional {
		return ErrCapacityOverflow
	}

	// capacity+1 always lands in the next power-of-two table.
	want := max(m.len+additional, capacity+1)

	buckets, err := capacityToBuckets(want)
	if err != nil {
		return err
	}

	m.rehash(buckets)

	return nil
}

// ShrinkToFit reduces the capacity as far as the current length allows.
// An empty map releases its buckets entirely.
func (m *Map[K, V]) ShrinkToFit() {
	buckets, err := capacityToBuckets(m.len)
	if err != nil {
		// len already fits in the current table.
		return
	}

	if buckets < len(m.slots) {
		m.rehash(buckets)
	}
}

// All iterates over the entries in bucket order.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for i := range m.slots {
			if !m.slots[i].used {
				continue
			}

			if !yield(m.slots[i].key, m.slots[i].value) {
				return
			}
		}
	}
}

// find returns the slot holding k, or the empty slot where k would go.
// The table always has at least one empty slot, so the probe terminates.
func (m *Map[K, V]) find(k K, h uint64) (int, bool) {
	if len(m.slots) == 0 {
		return -1, false
	}

	mask := uint64(len(m.slots) - 1)

	for i := h & mask; ; i = (i + 1) & mask {
		s := &m.slots[i]
		if !s.used {
			return int(i), false
		}

		if s.hash == h && s.key == k {
			return int(i), true
		}
	}
}

// deleteAt empties slot i and shifts later members of the probe run back so
// every entry stays reachable from its home bucket.
func (m *Map[K, V]) deleteAt(i int) {
	mask := len(m.slots) - 1
	hole := i

	for j := (hole + 1) & mask; m.slots[j].used; j = (j + 1) & mask {
		home := int(m.slots[j].hash & uint64(mask))

		if (j-home)&mask >= (j-hole)&mask {
			m.slots[hole] = m.slots[j]
			hole = j
		}
	}

	m.slots[hole] = slot[K, V]{}
}

func (m *Map[K, V]) rehash(buckets int) {
	old := m.slots

	if buckets == 0 {
		m.slots = nil

		return
	}

	m.slots = make([]slot[K, V], buckets)
	mask := uint64(buckets - 1)

	for _, s := range old {
		if !s.used {
			continue
		}

		i := s.hash & mask
		for m.slots[i].used {
			i = (i + 1) & mask
		}

		m.slots[i] = s
	}
}

func (m *Map[K, V]) hashKey(k K) uint64 {
	m.h.Reset()

	switch v := any(k).(type) {
	case string:
		m.writeString(v)
	case int8:
		m.writeInt(uint64(v), 1)
	case int16:
		m.writeInt(uint64(v), 2)
	case int32:
		m.writeInt(uint64(v), 4)
	case int64:
		m.writeInt(uint64(v), 8)
	case int:
		m.writeInt(uint64(v), bits.UintSize/8)
	case uint8:
		m.writeInt(uint64(v), 1)
	case uint16:
		m.writeInt(uint64(v), 2)
	case uint32:
		m.writeInt(uint64(v), 4)
	case uint64:
		m.writeInt(v, 8)
	case uint:
		m.writeInt(uint64(v), bits.UintSize/8)
	default:
		// Named key types.
		rv := reflect.ValueOf(k)

		switch rv.Kind() {
		case reflect.String:
			m.writeString(rv.String())
		case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int:
			m.writeInt(uint64(rv.Int()), int(rv.Type().Size()))
		default:
			m.writeInt(rv.Uint(), int(rv.Type().Size()))
		}
	}

	return m.h.Sum64()
}

func (m *Map[K, V]) writeInt(v uint64, width int) {
	binary.LittleEndian.PutUint64(m.scratch[:], v)
	_, _ = m.h.Write(m.scratch[:width])
}

func (m *Map[K, V]) writeString(s string) {
	_, _ = m.h.Write([]byte(s))
	_, _ = m.h.Write([]byte{0xff})
}

func bucketsToCapacity(buckets int) int {
	if buckets < 8 {
		return max(buckets-1, 0)
	}

	return buckets / 8 * 7
}

// capacityToBuckets returns the smallest bucket count whose capacity is at
// least capacity.
func capacityToBuckets(capacity int) (int, error) {
	switch {
	case capacity == 0:
		return 0, nil
	case capacity < 4:
		return 4, nil
	case capacity < 8:
		return 8, nil
	}

	if capacity > math.MaxInt/8 {
		return 0, ErrCapacityOverflow
	}

	adjusted := capacity * 8 / 7

	// Largest power of two representable as int.
	const maxBuckets = 1 << (bits.UintSize - 2)
	if adjusted > maxBuckets {
		return 0, ErrCapacityOverflow
	}

	return 1 << bits.Len(uint(adjusted-1)), nil
}
