package cli_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/bughunt/pkg/difftest"
)

type u8Insert = difftest.Insert[uint8, uint8]

// mapInput encodes a streaming-shape input for the "hashmap" target.
func mapInput(t *testing.T, ops ...difftest.Operation) []byte {
	t.Helper()

	target := difftest.MapTarget[uint8, uint8](difftest.MapOptions{})

	data, err := target.EncodeProgram(difftest.Program{
		Setup: difftest.Setup{HashSeed: 3, Capacity: 2},
		Ops:   ops,
	})
	require.NoError(t, err)

	return data
}

// dequeCountedInput encodes a fixed-count input for the "deque" target.
func dequeCountedInput(t *testing.T, ops ...difftest.Operation) []byte {
	t.Helper()

	target := difftest.DequeTarget[uint8](difftest.DequeOptions{})

	data, err := target.EncodeCountedProgram(difftest.Program{
		Setup: difftest.Setup{Capacity: 1},
		Ops:   ops,
	})
	require.NoError(t, err)

	return data
}
