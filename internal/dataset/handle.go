package dataset

import (
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"
)

// DefaultBlockSize is the number of samples per block when none is configured.
const DefaultBlockSize = 1 << 16

// BlockFunc transforms one block of samples in place.
type BlockFunc func(block []float64)

// Handle is an open dataset. It is not safe for concurrent use.
type Handle struct {
	path       string
	shape      []int
	dtype      DType
	src        BlockSource
	blockSize  int
	lazy       bool
	transforms []BlockFunc
	closed     bool
}

// Option configures Open.
type Option func(*openOptions)

type openOptions struct {
	lazy      bool
	blockSize int
}

// WithLazy controls whether samples are read on demand (true, the default)
// or loaded into memory by Open.
func WithLazy(lazy bool) Option {
	return func(o *openOptions) { o.lazy = lazy }
}

// WithBlockSize sets the number of samples per block.
func WithBlockSize(n int) Option {
	return func(o *openOptions) {
		if n > 0 {
			o.blockSize = n
		}
	}
}

// loader opens the BlockSource for one file format.
type loader func(path string) (src BlockSource, shape []int, dtype DType, err error)

//nolint:gochecknoglobals // Extension registry is a read-only lookup table.
var loaders = map[string]loader{
	".npy":  openNPY,
	".tif":  openImage,
	".tiff": openImage,
	".png":  openImage,
	".bmp":  openImage,
}

// SupportedExtensions lists the file extensions Open understands.
func SupportedExtensions() []string {
	return []string{".npy", ".tif", ".tiff", ".png", ".bmp"}
}

// Open opens the dataset at path. The format is chosen from the file extension.
func Open(path string, opts ...Option) (*Handle, error) {
	o := openOptions{lazy: true, blockSize: DefaultBlockSize}
	for _, opt := range opts {
		opt(&o)
	}

	load, ok := loaders[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	src, shape, dtype, err := load(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	if src.Len() == 0 {
		_ = src.Close()
		return nil, fmt.Errorf("loading %s: %w", path, ErrEmpty)
	}

	if !o.lazy {
		mem, matErr := materialize(src)
		_ = src.Close()
		if matErr != nil {
			return nil, fmt.Errorf("loading %s: %w", path, matErr)
		}
		src = mem
	}

	return &Handle{
		path:      path,
		shape:     shape,
		dtype:     dtype,
		src:       src,
		blockSize: o.blockSize,
		lazy:      o.lazy,
	}, nil
}

// FromSlice wraps an in-memory array. data is used without copying.
func FromSlice(data []float64, shape []int, dtype DType) (*Handle, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	if n, err := elementCount(shape); err != nil || n != len(data) {
		return nil, fmt.Errorf("shape %v does not match %d samples", shape, len(data))
	}
	return &Handle{
		shape:     append([]int(nil), shape...),
		dtype:     dtype,
		src:       &memSource{data: data},
		blockSize: DefaultBlockSize,
	}, nil
}

// Path returns the file the handle was opened from.
func (h *Handle) Path() string { return h.path }

// Shape returns a copy of the array shape.
func (h *Handle) Shape() []int { return append([]int(nil), h.shape...) }

// DType returns the declared element type.
func (h *Handle) DType() DType { return h.dtype }

// Len returns the number of samples.
func (h *Handle) Len() int { return h.src.Len() }

// Lazy reports whether samples are read on demand.
func (h *Handle) Lazy() bool { return h.lazy }

// BlockSize returns the number of samples per block.
func (h *Handle) BlockSize() int { return h.blockSize }

// MapOption configures Map.
type MapOption func(*mapOptions)

type mapOptions struct {
	inPlace bool
}

// InPlace makes Map mutate the receiver instead of returning a new handle.
func InPlace() MapOption {
	return func(o *mapOptions) { o.inPlace = true }
}

// Map applies fn to every block of the dataset.
//
// For lazy handles fn is recorded and runs as blocks are read. For
// materialized handles fn runs immediately over the in-memory samples.
// With InPlace the receiver is modified and returned; otherwise a new handle
// is returned and the receiver is left unchanged. A non-in-place map of a
// materialized handle copies the samples.
func (h *Handle) Map(fn BlockFunc, opts ...MapOption) (*Handle, error) {
	if h.closed {
		return nil, ErrClosed
	}
	var o mapOptions
	for _, opt := range opts {
		opt(&o)
	}

	target := h
	if !o.inPlace {
		target = h.clone()
	}
	target.apply(fn)
	return target, nil
}

// apply runs fn eagerly over materialized samples, or records it for lazy
// evaluation.
func (h *Handle) apply(fn BlockFunc) {
	mem, materialized := h.src.(*memSource)
	if !materialized || len(h.transforms) > 0 {
		h.transforms = append(h.transforms, fn)
		return
	}
	for off := 0; off < len(mem.data); off += h.blockSize {
		fn(mem.data[off:min(off+h.blockSize, len(mem.data))])
	}
}

func (h *Handle) clone() *Handle {
	c := *h
	c.shape = append([]int(nil), h.shape...)
	c.transforms = append([]BlockFunc(nil), h.transforms...)
	if mem, ok := h.src.(*memSource); ok {
		c.src = &memSource{data: append([]float64(nil), mem.data...)}
	} else {
		c.src = &sharedSource{BlockSource: h.src}
	}
	return &c
}

// sharedSource lets a derived handle read from its parent's source without
// closing it.
type sharedSource struct {
	BlockSource
}

func (s *sharedSource) Close() error { return nil }

// ChangeDtype declares the element type of the dataset. Values are narrowed to
// the new type (truncated and saturated) as blocks are read.
func (h *Handle) ChangeDtype(d DType) error {
	if h.closed {
		return ErrClosed
	}
	if d.Size() == 0 {
		return fmt.Errorf("%w: %v", ErrUnsupportedDType, d)
	}
	if d != h.dtype {
		h.dtype = d
		h.apply(func(block []float64) {
			for i, v := range block {
				block[i] = d.cast(v)
			}
		})
	}
	return nil
}

// Blocks reads the dataset in order, applying the registered transforms, and
// calls fn with each block and its element offset. The block slice is reused
// between calls. Iteration stops at the first error returned by fn.
func (h *Handle) Blocks(fn func(off int, block []float64) error) error {
	if h.closed {
		return ErrClosed
	}
	if _, materialized := h.src.(*memSource); materialized && len(h.transforms) == 0 {
		return h.memBlocks(fn)
	}

	total := h.src.Len()
	buf := make([]float64, min(h.blockSize, total))
	for off := 0; off < total; {
		want := min(len(buf), total-off)
		n, err := h.src.ReadAt(buf[:want], off)
		if n > 0 {
			block := buf[:n]
			for _, t := range h.transforms {
				t(block)
			}
			if fnErr := fn(off, block); fnErr != nil {
				return fnErr
			}
			off += n
		}
		if err != nil {
			if errors.Is(err, io.EOF) && off >= total {
				return nil
			}
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return fmt.Errorf("reading %s at sample %d: %w", h.describe(), off, err)
		}
		if n == 0 {
			return fmt.Errorf("reading %s at sample %d: %w", h.describe(), off, io.ErrNoProgress)
		}
	}
	return nil
}

// memBlocks iterates a materialized source without copying.
func (h *Handle) memBlocks(fn func(off int, block []float64) error) error {
	data := h.src.(*memSource).data
	for off := 0; off < len(data); off += h.blockSize {
		if err := fn(off, data[off:min(off+h.blockSize, len(data))]); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying file. It is safe to call more than once.
func (h *Handle) Close() error {
	if h.closed {
		return nil
	}
	h.closed = true
	return h.src.Close()
}

func (h *Handle) describe() string {
	if h.path == "" {
		return "dataset"
	}
	return h.path
}

// elementCount is the number of elements in shape, rejecting negative
// dimensions and products that overflow int.
func elementCount(shape []int) (int, error) {
	n := 1
	for _, d := range shape {
		if d < 0 {
			return 0, fmt.Errorf("%w: negative dimension in shape %v", ErrCorrupt, shape)
		}
		if d != 0 && n > math.MaxInt/d {
			return 0, fmt.Errorf("%w: shape %v overflows", ErrCorrupt, shape)
		}
		n *= d
	}
	return n, nil
}
