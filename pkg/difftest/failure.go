package difftest

import (
	"fmt"
	"strings"
)

// FailureKind classifies why a run aborted.
type FailureKind uint8

const (
	// FailureUnknown is the zero value and never produced by a run.
	FailureUnknown FailureKind = iota

	// FailureDiscrepancy indicates the model and the container under test
	// returned different results for the same operation.
	FailureDiscrepancy

	// FailureInvariant indicates a post-operation predicate did not hold.
	FailureInvariant
)

func (k FailureKind) String() string {
	switch k {
	case FailureDiscrepancy:
		return "Discrepancy"
	case FailureInvariant:
		return "InvariantViolation"
	default:
		return "Unknown"
	}
}

// Failure is the report of an aborted run. It carries enough to locate and
// replay the offending operation.
type Failure struct {
	Kind FailureKind

	// Target is the name of the target that produced the failure.
	Target string

	// Position is the zero-based index of the offending operation in the run.
	// Skipped operations count.
	Position int
	Op       Operation

	// Invariant names the violated predicate. Empty for discrepancies.
	Invariant string

	// Model and SUT hold the conflicting observable values for discrepancies.
	Model any
	SUT   any

	// State is the snapshot taken right after the offending operation.
	State Snapshot

	// Detail is a human readable explanation, typically a -model +sut diff.
	Detail string
}

func (f *Failure) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s: %s at op #%d %s", f.Target, f.Kind, f.Position, opString(f.Op))

	switch f.Kind {
	case FailureDiscrepancy:
		fmt.Fprintf(&b, ": model=%v sut=%v", f.Model, f.SUT)
	case FailureInvariant:
		fmt.Fprintf(&b, ": %q", f.Invariant)

		if f.Detail != "" {
			fmt.Fprintf(&b, ": %s", f.Detail)
		}
	}

	return b.String()
}

// Unwrap returns [ErrDiscrepancy] or [ErrInvariantViolation].
func (f *Failure) Unwrap() error {
	switch f.Kind {
	case FailureDiscrepancy:
		return ErrDiscrepancy
	case FailureInvariant:
		return ErrInvariantViolation
	default:
		return nil
	}
}

// Mismatch is returned by [Pair.Apply] when the two sides disagree. The runner
// turns it into a [Failure] with position information.
type Mismatch struct {
	Model any
	SUT   any

	// Diff is a -model +sut rendering of the difference.
	Diff string
}

func (m *Mismatch) Error() string {
	return fmt.Sprintf("model=%v sut=%v", m.Model, m.SUT)
}

func opString(op Operation) string {
	if op == nil {
		return "<nil>"
	}

	return op.String()
}
