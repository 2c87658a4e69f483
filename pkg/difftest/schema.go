package difftest

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/calvinalkan/bughunt/pkg/bytestream"
)

// discriminantSpace is the number of distinct discriminant byte values.
const discriminantSpace = 256

// Variant is one operation kind of a [Schema].
type Variant struct {
	// Name must equal the Name() of the operations this variant produces.
	Name string

	// Decode reads the variant's payload fields in declared order.
	Decode func(s *bytestream.Stream) (Operation, error)

	// Encode appends the payload of op to dst. It is the inverse of Decode.
	Encode func(dst []byte, op Operation) ([]byte, error)
}

// Schema is the ordered list of operation kinds for one container family.
//
// Decoding reads a discriminant byte and reduces it modulo the number of
// declared variants. The modulus is always len(variants); there is no second
// count to keep in sync.
type Schema struct {
	family   string
	variants []Variant
	byName   map[string]int
}

// NewSchema builds a schema. It returns [ErrInvalidSchema] for an empty or
// oversized variant list or duplicate names.
func NewSchema(family string, variants ...Variant) (*Schema, error) {
	if len(variants) == 0 || len(variants) > discriminantSpace {
		return nil, fmt.Errorf("%w: %s has %d variants", ErrInvalidSchema, family, len(variants))
	}

	byName := make(map[string]int, len(variants))

	for i, variant := range variants {
		if variant.Decode == nil || variant.Encode == nil {
			return nil, fmt.Errorf("%w: %s variant %q is incomplete", ErrInvalidSchema, family, variant.Name)
		}

		if _, dup := byName[variant.Name]; dup {
			return nil, fmt.Errorf("%w: %s declares %q twice", ErrInvalidSchema, family, variant.Name)
		}

		byName[variant.Name] = i
	}

	return &Schema{
		family:   family,
		variants: append([]Variant(nil), variants...),
		byName:   byName,
	}, nil
}

// MustSchema is like [NewSchema] but panics on error. It is meant for
// package-level schema definitions.
func MustSchema(family string, variants ...Variant) *Schema {
	schema, err := NewSchema(family, variants...)
	if err != nil {
		panic(err)
	}

	return schema
}

// Family returns the container family name.
func (s *Schema) Family() string {
	return s.family
}

// Len returns the number of declared variants, which is also the
// discriminant modulus.
func (s *Schema) Len() int {
	return len(s.variants)
}

// Names returns the variant names in declaration order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.variants))
	for i, variant := range s.variants {
		names[i] = variant.Name
	}

	return names
}

// Uniform reports whether every variant is selected by the same number of
// discriminant values.
func (s *Schema) Uniform() bool {
	return discriminantSpace%s.Len() == 0
}

// Weights returns, per variant, how many of the 256 discriminant values select
// it. Lower-numbered variants get the extra values when the count does not
// divide 256.
func (s *Schema) Weights() []int {
	weights := make([]int, s.Len())
	for b := range discriminantSpace {
		weights[b%s.Len()]++
	}

	return weights
}

// Decode reads one discriminant byte and the payload of the selected variant.
// Stream errors (including [bytestream.ErrExhausted]) are returned unwrapped.
func (s *Schema) Decode(stream *bytestream.Stream) (Operation, error) {
	b, err := stream.Uint8()
	if err != nil {
		return nil, err
	}

	return s.variants[int(b)%s.Len()].Decode(stream)
}

// Encode appends the discriminant that selects op's variant followed by its
// payload.
func (s *Schema) Encode(dst []byte, op Operation) ([]byte, error) {
	i, ok := s.byName[op.Name()]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no variant %q", ErrUnsupportedOperation, s.family, op.Name())
	}

	return s.variants[i].Encode(append(dst, byte(i)), op)
}

// unitVariant is a variant without payload that always decodes to op.
func unitVariant(op Operation) Variant {
	return Variant{
		Name: op.Name(),
		Decode: func(*bytestream.Stream) (Operation, error) {
			return op, nil
		},
		Encode: func(dst []byte, _ Operation) ([]byte, error) {
			return dst, nil
		},
	}
}

// reserveVariant decodes Reserve.N from a uint16 so capacity requests stay
// allocatable.
func reserveVariant() Variant {
	return Variant{
		Name: Reserve{}.Name(),
		Decode: func(s *bytestream.Stream) (Operation, error) {
			n, err := s.Uint16()
			if err != nil {
				return nil, err
			}

			return Reserve{N: uint64(n)}, nil
		},
		Encode: func(dst []byte, op Operation) ([]byte, error) {
			reserve, ok := op.(Reserve)
			if !ok {
				return nil, unexpectedType(op)
			}

			if reserve.N > math.MaxUint16 {
				return nil, fmt.Errorf("%w: %s exceeds uint16", ErrUnencodable, reserve)
			}

			return binary.LittleEndian.AppendUint16(dst, uint16(reserve.N)), nil
		},
	}
}

// MapSchema returns the schema for map-like containers keyed by K with
// values V. Variant order: Insert, Remove, Get, ShrinkToFit, Clear, Reserve.
func MapSchema[K, V bytestream.Integer]() *Schema {
	return MustSchema("map",
		Variant{
			Name: Insert[K, V]{}.Name(),
			Decode: func(s *bytestream.Stream) (Operation, error) {
				k, err := bytestream.Next[K](s)
				if err != nil {
					return nil, err
				}

				v, err := bytestream.Next[V](s)
				if err != nil {
					return nil, err
				}

				return Insert[K, V]{Key: k, Value: v}, nil
			},
			Encode: func(dst []byte, op Operation) ([]byte, error) {
				insert, ok := op.(Insert[K, V])
				if !ok {
					return nil, unexpectedType(op)
				}

				return appendInteger(appendInteger(dst, insert.Key), insert.Value), nil
			},
		},
		Variant{
			Name: Remove[K]{}.Name(),
			Decode: func(s *bytestream.Stream) (Operation, error) {
				k, err := bytestream.Next[K](s)
				if err != nil {
					return nil, err
				}

				return Remove[K]{Key: k}, nil
			},
			Encode: func(dst []byte, op Operation) ([]byte, error) {
				remove, ok := op.(Remove[K])
				if !ok {
					return nil, unexpectedType(op)
				}

				return appendInteger(dst, remove.Key), nil
			},
		},
		Variant{
			Name: Get[K]{}.Name(),
			Decode: func(s *bytestream.Stream) (Operation, error) {
				k, err := bytestream.Next[K](s)
				if err != nil {
					return nil, err
				}

				return Get[K]{Key: k}, nil
			},
			Encode: func(dst []byte, op Operation) ([]byte, error) {
				get, ok := op.(Get[K])
				if !ok {
					return nil, unexpectedType(op)
				}

				return appendInteger(dst, get.Key), nil
			},
		},
		unitVariant(ShrinkToFit{}),
		unitVariant(Clear{}),
		reserveVariant(),
	)
}

// DequeSchema returns the schema for deque-like containers of T. Variant
// order: PushBack, PopBack, PushFront, PopFront, Clear, ShrinkToFit,
// InsertAt, RemoveAt, SwapRemoveBack, Reserve.
func DequeSchema[T bytestream.Integer]() *Schema {
	return MustSchema("deque",
		Variant{
			Name: PushBack[T]{}.Name(),
			Decode: func(s *bytestream.Stream) (Operation, error) {
				v, err := bytestream.Next[T](s)
				if err != nil {
					return nil, err
				}

				return PushBack[T]{Value: v}, nil
			},
			Encode: func(dst []byte, op Operation) ([]byte, error) {
				push, ok := op.(PushBack[T])
				if !ok {
					return nil, unexpectedType(op)
				}

				return appendInteger(dst, push.Value), nil
			},
		},
		unitVariant(PopBack{}),
		Variant{
			Name: PushFront[T]{}.Name(),
			Decode: func(s *bytestream.Stream) (Operation, error) {
				v, err := bytestream.Next[T](s)
				if err != nil {
					return nil, err
				}

				return PushFront[T]{Value: v}, nil
			},
			Encode: func(dst []byte, op Operation) ([]byte, error) {
				push, ok := op.(PushFront[T])
				if !ok {
					return nil, unexpectedType(op)
				}

				return appendInteger(dst, push.Value), nil
			},
		},
		unitVariant(PopFront{}),
		unitVariant(Clear{}),
		unitVariant(ShrinkToFit{}),
		Variant{
			Name: InsertAt[T]{}.Name(),
			Decode: func(s *bytestream.Stream) (Operation, error) {
				i, err := s.Uint16()
				if err != nil {
					return nil, err
				}

				v, err := bytestream.Next[T](s)
				if err != nil {
					return nil, err
				}

				return InsertAt[T]{Index: i, Value: v}, nil
			},
			Encode: func(dst []byte, op Operation) ([]byte, error) {
				insert, ok := op.(InsertAt[T])
				if !ok {
					return nil, unexpectedType(op)
				}

				return appendInteger(binary.LittleEndian.AppendUint16(dst, insert.Index), insert.Value), nil
			},
		},
		indexVariant(RemoveAt{}.Name(),
			func(i uint16) Operation { return RemoveAt{Index: i} },
			func(op Operation) (uint16, bool) {
				remove, ok := op.(RemoveAt)

				return remove.Index, ok
			}),
		indexVariant(SwapRemoveBack{}.Name(),
			func(i uint16) Operation { return SwapRemoveBack{Index: i} },
			func(op Operation) (uint16, bool) {
				swap, ok := op.(SwapRemoveBack)

				return swap.Index, ok
			}),
		reserveVariant(),
	)
}

func indexVariant(name string, build func(uint16) Operation, index func(Operation) (uint16, bool)) Variant {
	return Variant{
		Name: name,
		Decode: func(s *bytestream.Stream) (Operation, error) {
			i, err := s.Uint16()
			if err != nil {
				return nil, err
			}

			return build(i), nil
		},
		Encode: func(dst []byte, op Operation) ([]byte, error) {
			i, ok := index(op)
			if !ok {
				return nil, unexpectedType(op)
			}

			return binary.LittleEndian.AppendUint16(dst, i), nil
		},
	}
}

// appendInteger appends v in the little-endian width of T, the inverse of
// [bytestream.Next].
func appendInteger[T bytestream.Integer](dst []byte, v T) []byte {
	width := binary.Size(v)

	var raw [8]byte

	binary.LittleEndian.PutUint64(raw[:], uint64(v))

	return append(dst, raw[:width]...)
}

func unexpectedType(op Operation) error {
	return fmt.Errorf("%w: %s has unexpected type %T", ErrUnsupportedOperation, op.Name(), op)
}
