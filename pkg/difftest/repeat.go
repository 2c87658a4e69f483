package difftest

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
	"strings"
	"unicode/utf8"

	"github.com/calvinalkan/bughunt/pkg/bytestream"
)

// DefaultRepeatMaxBytes caps the size of a repeated string.
const DefaultRepeatMaxBytes = 1 << 20

// RepeatOptions configures [RunRepeat].
type RepeatOptions struct {
	// MaxBytes skips inputs whose result would exceed this many bytes.
	// Zero selects [DefaultRepeatMaxBytes].
	MaxBytes int
}

// RepeatOutcome reports what [RunRepeat] did with an input.
type RepeatOutcome uint8

const (
	// RepeatChecked means the property was evaluated and held.
	RepeatChecked RepeatOutcome = iota

	// RepeatExhausted means the input ended before a full case was decoded.
	RepeatExhausted

	// RepeatInvalidUTF8 means the decoded bytes are not a valid string.
	RepeatInvalidUTF8

	// RepeatOverflow means len*count does not fit in an int.
	RepeatOverflow

	// RepeatTooLarge means the result would exceed MaxBytes.
	RepeatTooLarge
)

func (o RepeatOutcome) String() string {
	switch o {
	case RepeatChecked:
		return "checked"
	case RepeatExhausted:
		return "exhausted"
	case RepeatInvalidUTF8:
		return "invalid-utf8"
	case RepeatOverflow:
		return "overflow"
	case RepeatTooLarge:
		return "too-large"
	default:
		return "unknown"
	}
}

// RepeatCase is one decoded input of the repeat property.
type RepeatCase struct {
	Source []byte
	Count  uint16
}

// DecodeRepeatCase reads a uint16 length, that many bytes, then a uint16
// repeat count.
func DecodeRepeatCase(stream *bytestream.Stream) (RepeatCase, error) {
	n, err := stream.Uint16()
	if err != nil {
		return RepeatCase{}, err
	}

	source, err := stream.Bytes(int(n))
	if err != nil {
		return RepeatCase{}, err
	}

	count, err := stream.Uint16()
	if err != nil {
		return RepeatCase{}, err
	}

	return RepeatCase{Source: source, Count: count}, nil
}

// EncodeRepeatCase is the inverse of [DecodeRepeatCase].
func EncodeRepeatCase(dst []byte, c RepeatCase) ([]byte, error) {
	if len(c.Source) > math.MaxUint16 {
		return nil, ErrUnencodable
	}

	dst = append(dst, byte(len(c.Source)), byte(len(c.Source)>>8))
	dst = append(dst, c.Source...)

	return append(dst, byte(c.Count), byte(c.Count>>8)), nil
}

// RunRepeat checks that [strings.Repeat] returns exactly len*count bytes made
// of count copies of the source string. Inputs that are not valid UTF-8, whose
// result length overflows, or exceeds MaxBytes are skipped without failure.
func RunRepeat(stream *bytestream.Stream, opts RepeatOptions) (RepeatOutcome, error) {
	c, err := DecodeRepeatCase(stream)
	if errors.Is(err, bytestream.ErrExhausted) {
		return RepeatExhausted, nil
	}

	if err != nil {
		return RepeatExhausted, err
	}

	return CheckRepeat(c, opts)
}

// CheckRepeat evaluates the repeat property for one case.
func CheckRepeat(c RepeatCase, opts RepeatOptions) (RepeatOutcome, error) {
	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultRepeatMaxBytes
	}

	if !utf8.Valid(c.Source) {
		return RepeatInvalidUTF8, nil
	}

	hi, want := bits.Mul64(uint64(len(c.Source)), uint64(c.Count))
	if hi != 0 || want > math.MaxInt {
		return RepeatOverflow, nil
	}

	if want > uint64(maxBytes) {
		return RepeatTooLarge, nil
	}

	s := string(c.Source)
	got := strings.Repeat(s, int(c.Count))

	op := repeatOp{source: s, count: c.Count}

	if uint64(len(got)) != want {
		return RepeatChecked, &Failure{
			Kind:   FailureDiscrepancy,
			Target: "repeat",
			Op:     op,
			Model:  want,
			SUT:    uint64(len(got)),
			Detail: "result length",
		}
	}

	for i := 0; i < len(got); i += len(s) {
		if got[i:i+len(s)] != s {
			return RepeatChecked, &Failure{
				Kind:   FailureDiscrepancy,
				Target: "repeat",
				Op:     op,
				Model:  s,
				SUT:    got[i : i+len(s)],
				Detail: "chunk content",
			}
		}
	}

	return RepeatChecked, nil
}

// repeatOp names a repeat case in failure reports.
type repeatOp struct {
	source string
	count  uint16
}

func (repeatOp) Name() string { return "Repeat" }
func (o repeatOp) String() string {
	return fmt.Sprintf("Repeat(%q, %d)", o.source, o.count)
}
