package normalize

import (
	"math"
	"slices"
)

// Percentile bounds used for clipping.
const (
	LowPercentile  = 2.0
	HighPercentile = 98.0
)

const maxIntensity = 255

// Params are the per-file normalization parameters.
type Params struct {
	VMin float64
	VMax float64
	// Samples is the number of values the percentiles were computed from.
	Samples int
}

// Flat reports whether the clipping interval is degenerate, in which case
// every output sample is zero. Percentiles poisoned by NaN input count as flat.
func (p Params) Flat() bool {
	return p.VMax == p.VMin || math.IsNaN(p.VMin) || math.IsNaN(p.VMax)
}

// Compute derives the normalization parameters from values. values is not
// modified. It panics if values is empty.
func Compute(values []float64) Params {
	sorted := slices.Clone(values)
	return ComputeSorted(sortFloats(sorted))
}

// ComputeSorted is Compute for input that is already in ascending order
// (NaN last). It does not copy.
func ComputeSorted(sorted []float64) Params {
	n := len(sorted)
	if n == 0 {
		panic("normalize: no samples")
	}
	// Any NaN makes every percentile NaN.
	if math.IsNaN(sorted[n-1]) {
		return Params{VMin: math.NaN(), VMax: math.NaN(), Samples: n}
	}
	return Params{
		VMin:    Percentile(sorted, LowPercentile),
		VMax:    Percentile(sorted, HighPercentile),
		Samples: len(sorted),
	}
}

// Percentile returns the p-th percentile (0..100) of sorted using linear
// interpolation between the order statistics around rank p/100*(n-1).
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(n-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo < 0 {
		lo = 0
	}
	if hi > n-1 {
		hi = n - 1
	}
	return lerp(sorted[lo], sorted[hi], rank-float64(lo))
}

// lerp interpolates from the nearer endpoint so results match the usual
// array-library rounding bit for bit.
func lerp(a, b, t float64) float64 {
	if a == b {
		return a
	}
	diff := b - a
	if t >= 0.5 {
		return b - diff*(1-t)
	}
	return a + diff*t
}

// Apply maps a single sample to [0,255]: clip to [VMin,VMax], rescale to
// [0,1], multiply by 255 and truncate toward zero.
func (p Params) Apply(v float64) uint8 {
	if p.Flat() {
		return 0
	}
	v = min(max(v, p.VMin), p.VMax)
	norm := (v - p.VMin) / (p.VMax - p.VMin)
	// NaN samples and infinite bounds yield NaN here.
	if !(norm >= 0) {
		return 0
	}
	return uint8(norm * maxIntensity)
}

// ApplyBlock writes Apply(src[i]) into dst[i]. dst must be at least as long as src.
func (p Params) ApplyBlock(dst []uint8, src []float64) {
	dst = dst[:len(src)]
	for i, v := range src {
		dst[i] = p.Apply(v)
	}
}

// Robust normalizes a whole in-memory array in one call.
func Robust(data []float64) []uint8 {
	if len(data) == 0 {
		return nil
	}
	out := make([]uint8, len(data))
	Compute(data).ApplyBlock(out, data)
	return out
}

// sortFloats sorts in place in ascending order with NaN values last.
func sortFloats(values []float64) []float64 {
	slices.SortFunc(values, compareNaNLast)
	return values
}

func compareNaNLast(a, b float64) int {
	aNaN, bNaN := math.IsNaN(a), math.IsNaN(b)
	switch {
	case aNaN && bNaN:
		return 0
	case aNaN:
		return 1
	case bNaN:
		return -1
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
