package normalize

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes a statistical view for diagnostics.
type Summary struct {
	Count  int
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64
	// NonFinite counts NaN and infinite values, which are excluded from the
	// moments above.
	NonFinite int
}

// Describe summarizes values. It is used for debug logging only and has no
// effect on normalization.
func Describe(values []float64) Summary {
	finite := make([]float64, 0, len(values))
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		finite = append(finite, v)
	}

	s := Summary{Count: len(values), NonFinite: len(values) - len(finite)}
	if len(finite) == 0 {
		return s
	}
	s.Min = floats.Min(finite)
	s.Max = floats.Max(finite)
	if len(finite) > 1 {
		s.Mean, s.StdDev = stat.MeanStdDev(finite, nil)
	} else {
		s.Mean = finite[0]
	}
	return s
}
