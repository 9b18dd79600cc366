package dataset

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func double(block []float64) {
	for i := range block {
		block[i] *= 2
	}
}

func TestMapLazyInPlace(t *testing.T) {
	path := writeNPY(t, t.TempDir(), "a.npy", "<f8", []int{5}, []float64{1, 2, 3, 4, 5})
	h, err := Open(path, WithBlockSize(2))
	require.NoError(t, err)
	defer h.Close()

	var calls int
	mapped, err := h.Map(func(block []float64) {
		calls++
		double(block)
	}, InPlace())
	require.NoError(t, err)
	assert.Same(t, h, mapped)
	assert.Zero(t, calls, "lazy map must not read data")

	assert.Equal(t, []float64{2, 4, 6, 8, 10}, collect(t, h))
	assert.Equal(t, 3, calls)
}

func TestMapNotInPlaceLeavesReceiver(t *testing.T) {
	t.Run("lazy", func(t *testing.T) {
		path := writeNPY(t, t.TempDir(), "a.npy", "<f8", []int{3}, []float64{1, 2, 3})
		h, err := Open(path)
		require.NoError(t, err)
		defer h.Close()

		derived, err := h.Map(double)
		require.NoError(t, err)
		assert.NotSame(t, h, derived)

		assert.Equal(t, []float64{2, 4, 6}, collect(t, derived))
		assert.Equal(t, []float64{1, 2, 3}, collect(t, h))

		// Closing the derived handle leaves the parent's file open.
		require.NoError(t, derived.Close())
		assert.Equal(t, []float64{1, 2, 3}, collect(t, h))
	})

	t.Run("materialized", func(t *testing.T) {
		data := []float64{1, 2, 3}
		h, err := FromSlice(data, []int{3}, Float64)
		require.NoError(t, err)

		derived, err := h.Map(double)
		require.NoError(t, err)
		assert.Equal(t, []float64{2, 4, 6}, collect(t, derived))
		assert.Equal(t, []float64{1, 2, 3}, data)
	})
}

func TestMapMaterializedInPlaceIsEager(t *testing.T) {
	data := []float64{1, 2, 3}
	h, err := FromSlice(data, []int{1, 3}, Float64)
	require.NoError(t, err)

	_, err = h.Map(double, InPlace())
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 4, 6}, data)
}

func TestChangeDtype(t *testing.T) {
	h, err := FromSlice([]float64{-5, 0.9, 127.99, 254.5, 300}, []int{5}, Float64)
	require.NoError(t, err)

	require.NoError(t, h.ChangeDtype(Uint8))
	assert.Equal(t, Uint8, h.DType())
	assert.Equal(t, []float64{0, 0, 127, 254, 255}, collect(t, h))

	assert.ErrorIs(t, h.ChangeDtype(Invalid), ErrUnsupportedDType)
}

func TestTransformOrderIsPreserved(t *testing.T) {
	path := writeNPY(t, t.TempDir(), "a.npy", "<f8", []int{3}, []float64{0.6, 1.2, 1.8})
	h, err := Open(path)
	require.NoError(t, err)
	defer h.Close()

	require.NoError(t, h.ChangeDtype(Uint8))
	_, err = h.Map(double, InPlace())
	require.NoError(t, err)

	// Truncate first (0,1,1) then double.
	assert.Equal(t, []float64{0, 2, 2}, collect(t, h))
}

func TestBlocksStopsOnCallbackError(t *testing.T) {
	h, err := FromSlice(make([]float64, 10), []int{10}, Float64)
	require.NoError(t, err)
	h.blockSize = 3

	sentinel := errors.New("stop")
	var seen int
	err = h.Blocks(func(_ int, block []float64) error {
		seen += len(block)
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 3, seen)
}

func TestClosedHandle(t *testing.T) {
	h, err := FromSlice([]float64{1}, []int{1}, Float64)
	require.NoError(t, err)
	require.NoError(t, h.Close())
	require.NoError(t, h.Close())

	_, err = h.Map(double, InPlace())
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, h.ChangeDtype(Uint8), ErrClosed)
	assert.ErrorIs(t, h.Blocks(func(int, []float64) error { return nil }), ErrClosed)
	assert.ErrorIs(t, h.Save("x.tif"), ErrClosed)
}

func TestFromSliceValidation(t *testing.T) {
	_, err := FromSlice(nil, []int{0}, Float64)
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = FromSlice([]float64{1, 2}, []int{3}, Float64)
	assert.Error(t, err)
}

func TestParseDType(t *testing.T) {
	for d := Uint8; d <= Float64; d++ {
		parsed, err := ParseDType(d.String())
		require.NoError(t, err)
		assert.Equal(t, d, parsed)
	}
	_, err := ParseDType("complex64")
	assert.ErrorIs(t, err, ErrUnsupportedDType)
}
