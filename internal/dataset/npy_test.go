package dataset

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenNPY(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name  string
		descr string
		data  any
		dtype DType
		want  []float64
	}{
		{name: "uint8", descr: "|u1", data: []uint8{0, 1, 2, 255, 4, 5}, dtype: Uint8, want: []float64{0, 1, 2, 255, 4, 5}},
		{name: "int16", descr: "<i2", data: []int16{-3, -2, -1, 0, 1, 32767}, dtype: Int16, want: []float64{-3, -2, -1, 0, 1, 32767}},
		{name: "uint16 big endian", descr: ">u2", data: []uint16{1, 256, 513, 65535, 0, 7}, dtype: Uint16, want: []float64{1, 256, 513, 65535, 0, 7}},
		{name: "int32", descr: "<i4", data: []int32{-100000, 0, 1, 2, 3, 100000}, dtype: Int32, want: []float64{-100000, 0, 1, 2, 3, 100000}},
		{name: "uint64", descr: "<u8", data: []uint64{0, 1, 2, 3, 4, 1 << 40}, dtype: Uint64, want: []float64{0, 1, 2, 3, 4, 1 << 40}},
		{name: "float32", descr: "<f4", data: []float32{-1.5, 0, 0.25, 1, 2, 3}, dtype: Float32, want: []float64{-1.5, 0, 0.25, 1, 2, 3}},
		{name: "float64", descr: "<f8", data: []float64{-1e9, 0, 1e-9, 1, 2, 3}, dtype: Float64, want: []float64{-1e9, 0, 1e-9, 1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeNPY(t, dir, tt.name+".npy", tt.descr, []int{2, 3}, tt.data)

			h, err := Open(path, WithBlockSize(4))
			require.NoError(t, err)
			t.Cleanup(func() { _ = h.Close() })

			assert.True(t, h.Lazy())
			assert.Equal(t, []int{2, 3}, h.Shape())
			assert.Equal(t, tt.dtype, h.DType())
			assert.Equal(t, 6, h.Len())
			assert.Equal(t, tt.want, collect(t, h))
		})
	}
}

func TestOpenNPYBlockSizeIndependent(t *testing.T) {
	data := make([]float32, 3*5*7)
	for i := range data {
		data[i] = float32(i) * 0.5
	}
	path := writeNPY(t, t.TempDir(), "stack.npy", "<f4", []int{3, 5, 7}, data)

	var reference []float64
	for _, block := range []int{1, 2, 16, 105, 1000} {
		for _, lazy := range []bool{true, false} {
			h, err := Open(path, WithBlockSize(block), WithLazy(lazy))
			require.NoError(t, err)
			got := collect(t, h)
			require.NoError(t, h.Close())

			if reference == nil {
				reference = got
				continue
			}
			assert.Equal(t, reference, got, "block=%d lazy=%v", block, lazy)
		}
	}
	assert.Len(t, reference, len(data))
}

func TestOpenNPYErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("bad magic", func(t *testing.T) {
		path := filepath.Join(dir, "bad.npy")
		require.NoError(t, os.WriteFile(path, []byte("definitely not numpy"), 0o600))
		_, err := Open(path)
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("truncated data", func(t *testing.T) {
		path := writeNPY(t, dir, "short.npy", "<f8", []int{10}, []float64{1, 2, 3})
		_, err := Open(path)
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("shape product overflows", func(t *testing.T) {
		path := writeRawNPY(t, dir, "huge.npy",
			"{'descr': '<f8', 'fortran_order': False, 'shape': (4611686018427387904, 3), }", nil)
		_, err := Open(path)
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("byte count overflows", func(t *testing.T) {
		path := writeRawNPY(t, dir, "wide.npy",
			"{'descr': '<f8', 'fortran_order': False, 'shape': (2305843009213693952,), }", nil)
		_, err := Open(path)
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("fortran order", func(t *testing.T) {
		path := writeRawNPY(t, dir, "fortran.npy",
			"{'descr': '<f8', 'fortran_order': True, 'shape': (2, 2), }", make([]byte, 32))
		_, err := Open(path)
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("unsupported descr", func(t *testing.T) {
		path := writeNPY(t, dir, "complex.npy", "<c8", []int{1}, []float64{1})
		_, err := Open(path)
		assert.ErrorIs(t, err, ErrUnsupportedDType)
	})

	t.Run("empty array", func(t *testing.T) {
		path := writeNPY(t, dir, "empty.npy", "<f8", []int{0, 4}, []float64{})
		_, err := Open(path)
		assert.ErrorIs(t, err, ErrEmpty)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Open(filepath.Join(dir, "missing.npy"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("unknown extension", func(t *testing.T) {
		_, err := Open(filepath.Join(dir, "image.dm4"))
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})
}

func TestParseNPYDescr(t *testing.T) {
	tests := []struct {
		descr string
		dtype DType
		big   bool
	}{
		{descr: "|u1", dtype: Uint8},
		{descr: "<i2", dtype: Int16},
		{descr: ">u2", dtype: Uint16, big: true},
		{descr: "=f4", dtype: Float32},
		{descr: ">f8", dtype: Float64, big: true},
	}
	for _, tt := range tests {
		t.Run(tt.descr, func(t *testing.T) {
			d, order, err := parseNPYDescr(tt.descr)
			require.NoError(t, err)
			assert.Equal(t, tt.dtype, d)
			if tt.big {
				assert.Equal(t, binary.BigEndian, order)
			} else {
				assert.Equal(t, binary.LittleEndian, order)
			}
		})
	}

	for _, bad := range []string{"", "<", "<c16", "*f8", "|b1"} {
		_, _, err := parseNPYDescr(bad)
		assert.ErrorIs(t, err, ErrUnsupportedDType, bad)
	}
}

func TestElementCount(t *testing.T) {
	n, err := elementCount([]int{4, 5, 6})
	require.NoError(t, err)
	assert.Equal(t, 120, n)

	n, err = elementCount(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = elementCount([]int{0, math.MaxInt})
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = elementCount([]int{math.MaxInt / 2, 3})
	assert.ErrorIs(t, err, ErrCorrupt)

	_, err = elementCount([]int{2, -1})
	assert.ErrorIs(t, err, ErrCorrupt)
}
