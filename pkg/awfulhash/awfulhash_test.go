package awfulhash_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/bughunt/pkg/awfulhash"
)

func Test_Hash_Folds_Only_First_Byte_When_Writing(t *testing.T) {
	t.Parallel()

	h := awfulhash.New(0, 0)

	n, err := h.Write([]byte{5, 100, 200})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, uint64(5), h.Sum64())

	_, _ = h.Write([]byte{7})
	assert.Equal(t, uint64(12), h.Sum64())
}

func Test_Hash_Reduces_Modulo_When_Modulus_Set(t *testing.T) {
	t.Parallel()

	h := awfulhash.New(3, awfulhash.DefaultModulus)

	_, _ = h.Write([]byte{6})
	assert.Equal(t, uint64(1), h.Sum64(), "(3+6) mod 8")

	for b := range 256 {
		h.Reset()
		_, _ = h.Write([]byte{byte(b)})
		assert.Less(t, h.Sum64(), uint64(awfulhash.DefaultModulus))
	}
}

func Test_Hash_Wraps_Accumulator_When_Sum_Exceeds_Byte(t *testing.T) {
	t.Parallel()

	h := awfulhash.New(250, 0)
	_, _ = h.Write([]byte{10})

	assert.Equal(t, uint64(4), h.Sum64())
}

func Test_Hash_Ignores_Write_When_Input_Empty(t *testing.T) {
	t.Parallel()

	h := awfulhash.New(9, 0)

	n, err := h.Write(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, uint64(9), h.Sum64())
}

func Test_Hash_Restores_Seed_When_Reset(t *testing.T) {
	t.Parallel()

	h := awfulhash.New(42, 0)
	_, _ = h.Write([]byte{1})
	h.Reset()

	assert.Equal(t, uint64(42), h.Sum64())
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 42}, h.Sum(nil))
}

func Test_Factory_Returns_Independent_Hashes_When_Called_Twice(t *testing.T) {
	t.Parallel()

	newHash := awfulhash.Factory(1, awfulhash.DefaultModulus)

	a := newHash()
	b := newHash()

	_, _ = a.Write([]byte{2})

	assert.Equal(t, uint64(3), a.Sum64())
	assert.Equal(t, uint64(1), b.Sum64())
}
