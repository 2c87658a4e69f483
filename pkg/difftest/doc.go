// Package difftest is a differential property-testing engine for containers.
//
// A run drives a reference model and a container under test with the same
// sequence of operations, compares every observable result, and checks a set
// of invariants after each operation. Operations come from one of two shapes:
//
//   - streaming: [Target.RunStream] decodes one operation at a time from a
//     [bytestream.Stream] and stops cleanly when the stream is exhausted.
//   - fixed-count: [Target.DecodeProgram] or [Target.DecodeCountedProgram]
//     decode a [Program] upfront, and [Target.RunProgram] replays it. Property
//     test generators produce programs directly.
//
// Operation decoding is owned by a [Schema]: one discriminant byte reduced
// modulo the number of declared variants, then that variant's payload.
// [MapTarget] and [DequeTarget] wire schemas, pairs and invariants for the
// map and deque families.
//
// A run either succeeds or returns a [*Failure] that names the operation, its
// position and the conflicting values. Replaying the same bytes always yields
// the same outcome.
package difftest
