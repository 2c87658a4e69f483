// Package bytestream turns opaque fuzz input into a deterministic sequence of
// fixed-width values.
//
// A [Stream] reads little-endian integers from a byte slice under one of two
// exhaustion policies:
//
//   - [Bounded]: reads stop once the configured byte limit is consumed. A read
//     that does not fit returns [ErrExhausted], and so does every read after it.
//   - [Cyclic]: the cursor wraps to offset 0 at the end of the buffer, so a small
//     buffer can feed an arbitrary number of reads.
//
// The same bytes and the same starting cursor always produce the same values
// and the same final cursor. Go's fuzzer relies on this to minimize inputs.
package bytestream

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Sentinel errors returned by stream construction and reads.
var (
	// ErrExhausted indicates a bounded stream has no bytes left for the
	// requested read. It is the normal end of a streaming run, not a failure.
	ErrExhausted = errors.New("bytestream: exhausted")

	// ErrEmpty indicates a cyclic stream was constructed over zero bytes.
	ErrEmpty = errors.New("bytestream: empty buffer")

	// ErrInvalidLimit indicates a negative byte limit for a bounded stream.
	ErrInvalidLimit = errors.New("bytestream: invalid limit")
)

// Policy selects what happens when the cursor reaches the end of the input.
type Policy uint8

const (
	// Bounded stops cleanly once the byte limit is consumed.
	Bounded Policy = iota + 1

	// Cyclic wraps the cursor back to offset 0.
	Cyclic
)

func (p Policy) String() string {
	switch p {
	case Bounded:
		return "bounded"
	case Cyclic:
		return "cyclic"
	default:
		return fmt.Sprintf("Policy(%d)", uint8(p))
	}
}

// ParsePolicy parses the names produced by [Policy.String].
func ParsePolicy(name string) (Policy, error) {
	switch name {
	case "bounded":
		return Bounded, nil
	case "cyclic":
		return Cyclic, nil
	default:
		return 0, fmt.Errorf("bytestream: unknown policy %q", name)
	}
}

// Integer is the set of fixed-width integer types [Next] can decode.
type Integer interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Stream reads values sequentially from an immutable byte slice.
// The cursor is the only state that changes.
type Stream struct {
	bytes     []byte
	pos       int
	policy    Policy
	exhausted bool
}

// NewBounded creates a stream that reads at most maxLen bytes of b.
// Input beyond maxLen is ignored.
func NewBounded(b []byte, maxLen int) (*Stream, error) {
	if maxLen < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, maxLen)
	}

	limit := min(len(b), maxLen)

	return &Stream{bytes: b[:limit], policy: Bounded}, nil
}

// NewCyclic creates a stream that wraps around b indefinitely.
func NewCyclic(b []byte) (*Stream, error) {
	if len(b) == 0 {
		return nil, ErrEmpty
	}

	return &Stream{bytes: b, policy: Cyclic}, nil
}

// New creates a stream with the given policy. maxLen only applies to [Bounded].
func New(b []byte, policy Policy, maxLen int) (*Stream, error) {
	switch policy {
	case Bounded:
		return NewBounded(b, maxLen)
	case Cyclic:
		return NewCyclic(b)
	default:
		return nil, fmt.Errorf("bytestream: unknown policy %s", policy)
	}
}

// Policy returns the stream's exhaustion policy.
func (s *Stream) Policy() Policy {
	return s.policy
}

// Pos returns the cursor offset into the (possibly truncated) input.
func (s *Stream) Pos() int {
	return s.pos
}

// Len returns the number of readable source bytes.
func (s *Stream) Len() int {
	return len(s.bytes)
}

// Remaining returns the number of bytes before the end of the input.
// For a cyclic stream this is the distance to the next wrap.
func (s *Stream) Remaining() int {
	if s.exhausted {
		return 0
	}

	return len(s.bytes) - s.pos
}

// HasMore reports whether another one-byte read would succeed.
func (s *Stream) HasMore() bool {
	if s.policy == Cyclic {
		return true
	}

	return !s.exhausted && s.pos < len(s.bytes)
}

// Exhausted reports whether a bounded stream has returned [ErrExhausted].
func (s *Stream) Exhausted() bool {
	return s.exhausted
}

// Next decodes the next value of type T as little-endian bytes.
func Next[T Integer](s *Stream) (T, error) {
	var zero T

	width := binary.Size(zero)

	var raw [8]byte

	err := s.fill(raw[:width])
	if err != nil {
		return zero, err
	}

	return T(binary.LittleEndian.Uint64(raw[:])), nil
}

// Uint8 reads one byte.
func (s *Stream) Uint8() (uint8, error) {
	return Next[uint8](s)
}

// Uint16 reads 2 bytes as a little-endian uint16.
func (s *Stream) Uint16() (uint16, error) {
	return Next[uint16](s)
}

// Uint32 reads 4 bytes as a little-endian uint32.
func (s *Stream) Uint32() (uint32, error) {
	return Next[uint32](s)
}

// Uint64 reads 8 bytes as a little-endian uint64.
func (s *Stream) Uint64() (uint64, error) {
	return Next[uint64](s)
}

// Bool reads one byte and reports whether its low bit is set.
func (s *Stream) Bool() (bool, error) {
	b, err := s.Uint8()
	if err != nil {
		return false, err
	}

	return b&0x01 == 1, nil
}

// Bytes reads exactly n bytes into a new slice.
func (s *Stream) Bytes(n int) ([]byte, error) {
	if n <= 0 {
		return []byte{}, nil
	}

	out := make([]byte, n)

	err := s.fill(out)
	if err != nil {
		return nil, err
	}

	return out, nil
}

// fill copies len(dst) bytes from the cursor. A bounded read that does not
// fit consumes nothing and marks the stream exhausted for good.
func (s *Stream) fill(dst []byte) error {
	if s.exhausted {
		return ErrExhausted
	}

	if s.policy == Cyclic {
		for i := range dst {
			dst[i] = s.bytes[s.pos]

			s.pos++
			if s.pos == len(s.bytes) {
				s.pos = 0
			}
		}

		return nil
	}

	if len(s.bytes)-s.pos < len(dst) {
		s.exhausted = true

		return ErrExhausted
	}

	copy(dst, s.bytes[s.pos:])
	s.pos += len(dst)

	return nil
}
