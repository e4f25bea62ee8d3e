package wavelet_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hed1ad/wavealarm/pkg/wavelet"
)

func TestNewRejectsUnsupportedOrder(t *testing.T) {
	_, err := wavelet.New(wavelet.Order(3))
	assert.Error(t, err)
}

func TestTransformRejectsNonPowerOfTwo(t *testing.T) {
	tr, err := wavelet.New(wavelet.Order2)
	require.NoError(t, err)

	_, err = tr.Transform(make([]float64, 10))
	assert.Error(t, err)
}

func TestTransformPreservesLength(t *testing.T) {
	tr, err := wavelet.New(wavelet.Order4)
	require.NoError(t, err)

	in := make([]float64, 64)
	for i := range in {
		in[i] = float64(i)
	}
	out, err := tr.Transform(in)
	require.NoError(t, err)
	assert.Len(t, out, len(in))
}

func TestTransformDoesNotMutateInput(t *testing.T) {
	tr, err := wavelet.New(wavelet.Order2)
	require.NoError(t, err)

	in := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	cpy := append([]float64{}, in...)

	_, err = tr.Transform(in)
	require.NoError(t, err)
	assert.Equal(t, cpy, in)
}

func TestTransformConstantSignalHasZeroDetail(t *testing.T) {
	tr, err := wavelet.New(wavelet.Order2)
	require.NoError(t, err)

	in := make([]float64, 8)
	for i := range in {
		in[i] = 3.5
	}
	out, err := tr.Transform(in)
	require.NoError(t, err)

	for i := 1; i < len(out); i++ {
		assert.InDelta(t, 0, out[i], 1e-9, "detail coefficients of a constant signal must vanish")
	}
	assert.True(t, math.Abs(out[0]) > 0)
}

func TestAllOrdersValid(t *testing.T) {
	for _, o := range []wavelet.Order{2, 4, 6, 8, 10, 12, 14, 16, 18, 20} {
		assert.True(t, o.Valid(), "order %d should be valid", o)
	}
}
