package utils

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

func ConstArray(N int, val float64) (v []float64) {
	v = make([]float64, N)
	for i := range v {
		v[i] = val
	}
	return
}

func Zero(v []float64) {
	for i := range v {
		v[i] = 0
	}
}

// Axpy computes y += alpha * x
func Axpy(alpha float64, x, y []float64) {
	floats.AddScaled(y, alpha, x)
}

// WeightedNorm returns sqrt(sum w_i v_i^2), the discrete L2 norm of a field
// with quadrature (area) weights w.
func WeightedNorm(v, w []float64) float64 {
	var sum float64
	for i, val := range v {
		sum += w[i] * val * val
	}
	return math.Sqrt(sum)
}

// WeightedSum returns sum w_i v_i
func WeightedSum(v, w []float64) float64 {
	return floats.Dot(v, w)
}

func MinMax(v []float64) (fMin, fMax float64) {
	if len(v) == 0 {
		return
	}
	return floats.Min(v), floats.Max(v)
}

// FirstNonFinite returns the index of the first NaN or Inf value, or -1.
func FirstNonFinite(v []float64) int {
	for i, val := range v {
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return i
		}
	}
	return -1
}
