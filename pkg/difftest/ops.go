package difftest

import "fmt"

// Operation is a single public-API call applied to both the model and the
// container under test.
//
// Concrete operations are small value types. Payload-carrying operations are
// generic over the container's key, value or element type.
type Operation interface {
	Name() string
	String() string
}

// -----------------------------------------------------------------------------
// Operations shared by every container family.
// -----------------------------------------------------------------------------

// Clear represents a Clear() call.
type Clear struct{}

// Name returns the operation name.
func (Clear) Name() string   { return "Clear" }
func (Clear) String() string { return "Clear()" }

// ShrinkToFit represents a ShrinkToFit() call. It has no model effect.
type ShrinkToFit struct{}

// Name returns the operation name.
func (ShrinkToFit) Name() string   { return "ShrinkToFit" }
func (ShrinkToFit) String() string { return "ShrinkToFit()" }

// Reserve represents a Reserve(n) call. It has no model effect and is skipped
// when capacity+N does not fit in an int.
type Reserve struct {
	N uint64
}

// Name returns the operation name.
func (Reserve) Name() string { return "Reserve" }
func (operation Reserve) String() string {
	return fmt.Sprintf("Reserve(%d)", operation.N)
}

// -----------------------------------------------------------------------------
// Map operations.
// -----------------------------------------------------------------------------

// Insert represents an Insert(key, value) call.
type Insert[K, V any] struct {
	Key   K
	Value V
}

// Name returns the operation name.
func (Insert[K, V]) Name() string { return "Insert" }
func (operation Insert[K, V]) String() string {
	return fmt.Sprintf("Insert(%v, %v)", operation.Key, operation.Value)
}

// Remove represents a Remove(key) call.
type Remove[K any] struct {
	Key K
}

// Name returns the operation name.
func (Remove[K]) Name() string { return "Remove" }
func (operation Remove[K]) String() string {
	return fmt.Sprintf("Remove(%v)", operation.Key)
}

// Get represents a Get(key) call.
type Get[K any] struct {
	Key K
}

// Name returns the operation name.
func (Get[K]) Name() string { return "Get" }
func (operation Get[K]) String() string {
	return fmt.Sprintf("Get(%v)", operation.Key)
}

// -----------------------------------------------------------------------------
// Deque operations.
// -----------------------------------------------------------------------------

// PushBack represents a PushBack(value) call.
type PushBack[T any] struct {
	Value T
}

// Name returns the operation name.
func (PushBack[T]) Name() string { return "PushBack" }
func (operation PushBack[T]) String() string {
	return fmt.Sprintf("PushBack(%v)", operation.Value)
}

// PushFront represents a PushFront(value) call.
type PushFront[T any] struct {
	Value T
}

// Name returns the operation name.
func (PushFront[T]) Name() string { return "PushFront" }
func (operation PushFront[T]) String() string {
	return fmt.Sprintf("PushFront(%v)", operation.Value)
}

// PopBack represents a PopBack() call.
type PopBack struct{}

// Name returns the operation name.
func (PopBack) Name() string   { return "PopBack" }
func (PopBack) String() string { return "PopBack()" }

// PopFront represents a PopFront() call.
type PopFront struct{}

// Name returns the operation name.
func (PopFront) Name() string   { return "PopFront" }
func (PopFront) String() string { return "PopFront()" }

// InsertAt represents a positional Insert(index, value) call.
type InsertAt[T any] struct {
	Index uint16
	Value T
}

// Name returns the operation name.
func (InsertAt[T]) Name() string { return "InsertAt" }
func (operation InsertAt[T]) String() string {
	return fmt.Sprintf("InsertAt(%d, %v)", operation.Index, operation.Value)
}

// RemoveAt represents a positional Remove(index) call.
type RemoveAt struct {
	Index uint16
}

// Name returns the operation name.
func (RemoveAt) Name() string { return "RemoveAt" }
func (operation RemoveAt) String() string {
	return fmt.Sprintf("RemoveAt(%d)", operation.Index)
}

// SwapRemoveBack represents a SwapRemoveBack(index) call.
type SwapRemoveBack struct {
	Index uint16
}

// Name returns the operation name.
func (SwapRemoveBack) Name() string { return "SwapRemoveBack" }
func (operation SwapRemoveBack) String() string {
	return fmt.Sprintf("SwapRemoveBack(%d)", operation.Index)
}

// -----------------------------------------------------------------------------
// Observable results.
// -----------------------------------------------------------------------------

// Option is an optional observable result, as returned by Get, Remove and the
// pop operations.
type Option[T comparable] struct {
	Value T
	Valid bool
}

// Some returns a present Option.
func Some[T comparable](v T) Option[T] {
	return Option[T]{Value: v, Valid: true}
}

// None returns an absent Option.
func None[T comparable]() Option[T] {
	return Option[T]{}
}

// OptionOf converts a (value, ok) pair. The value is dropped when ok is false
// so absent results always compare equal.
func OptionOf[T comparable](v T, ok bool) Option[T] {
	if !ok {
		return None[T]()
	}

	return Some(v)
}

func (o Option[T]) String() string {
	if !o.Valid {
		return "None"
	}

	return fmt.Sprintf("Some(%v)", o.Value)
}
