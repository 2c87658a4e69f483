package difftest

import "errors"

// Sentinel errors returned by the difftest package.
//
// A run that finds a bug returns a [*Failure], which unwraps to either
// [ErrDiscrepancy] or [ErrInvariantViolation]. Use [errors.Is] to classify and
// [errors.As] to inspect the report.
var (
	// ErrDiscrepancy indicates the model and the container under test returned
	// different observable results for the same operation.
	ErrDiscrepancy = errors.New("difftest: discrepancy")

	// ErrInvariantViolation indicates a post-operation predicate did not hold.
	ErrInvariantViolation = errors.New("difftest: invariant violation")

	// ErrUnsupportedOperation indicates an operation was handed to a pair or
	// schema that does not know it.
	ErrUnsupportedOperation = errors.New("difftest: unsupported operation")

	// ErrUnencodable indicates an operation payload does not fit the wire
	// width of its variant.
	ErrUnencodable = errors.New("difftest: unencodable operation")

	// ErrInvalidSchema indicates a schema with no variants, too many variants
	// for a one-byte discriminant, or duplicate variant names.
	ErrInvalidSchema = errors.New("difftest: invalid schema")

	// ErrNoStream indicates Next was called on a session started without a
	// byte stream.
	ErrNoStream = errors.New("difftest: session has no stream")

	// ErrNotSteppable indicates a harness that does not support sessions.
	ErrNotSteppable = errors.New("difftest: harness does not support stepping")
)
