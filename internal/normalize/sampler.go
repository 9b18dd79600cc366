package normalize

import (
	"errors"
)

// ErrNoSamples is returned by Sampler.Params when nothing was added.
var ErrNoSamples = errors.New("normalize: no samples")

// Sampler accumulates the statistical view of a block-streamed array.
//
// With MaxSamples == 0 every value is kept and the resulting percentiles are
// exact. Otherwise, when the array is known to be larger than MaxSamples,
// every stride-th value is kept, which is deterministic for a given input.
type Sampler struct {
	values []float64
	stride int
	seen   int
}

// NewSampler prepares a sampler for an array of total elements.
// maxSamples <= 0 keeps every value.
func NewSampler(total, maxSamples int) *Sampler {
	stride := 1
	capacity := total
	if maxSamples > 0 && total > maxSamples {
		stride = (total + maxSamples - 1) / maxSamples
		capacity = (total + stride - 1) / stride
	}
	return &Sampler{
		values: make([]float64, 0, capacity),
		stride: stride,
	}
}

// Add feeds the next block of values in array order.
func (s *Sampler) Add(block []float64) {
	if s.stride == 1 {
		s.values = append(s.values, block...)
		s.seen += len(block)
		return
	}
	// First index in this block that lands on the stride grid.
	start := (s.stride - s.seen%s.stride) % s.stride
	for i := start; i < len(block); i += s.stride {
		s.values = append(s.values, block[i])
	}
	s.seen += len(block)
}

// Seen returns the number of values offered so far.
func (s *Sampler) Seen() int {
	return s.seen
}

// Exact reports whether every offered value was kept.
func (s *Sampler) Exact() bool {
	return s.stride == 1
}

// Params sorts the collected view in place and derives the normalization parameters.
func (s *Sampler) Params() (Params, error) {
	if len(s.values) == 0 {
		return Params{}, ErrNoSamples
	}
	return ComputeSorted(sortFloats(s.values)), nil
}

// Values returns the collected view. After Params it is sorted.
func (s *Sampler) Values() []float64 {
	return s.values
}
