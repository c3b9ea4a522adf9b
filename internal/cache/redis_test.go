package cache

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVectorEncoding(t *testing.T) {
	v := []float32{0, -1.5, 3.25, math.MaxFloat32, math.SmallestNonzeroFloat32}

	raw := encodeVector(v)
	assert.Len(t, raw, 4*len(v))

	back, err := decodeVector(raw)
	require.NoError(t, err)
	assert.Equal(t, v, back)
}

func TestDecodeVector_RejectsCorruptEntries(t *testing.T) {
	_, err := decodeVector(nil)
	assert.Error(t, err)

	_, err = decodeVector([]byte{1, 2, 3})
	assert.Error(t, err)
}
