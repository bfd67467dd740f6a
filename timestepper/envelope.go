package timestepper

import (
	"fmt"
	"math"
)

// Envelope is the time profile multiplying a source load
type Envelope func(t float64) float64

/*
SourceEnvelope is a smooth, compactly supported pulse centered at tpeak:

	(2e/√π) sin(2π fcen t) exp(-1/(1-s²)),  s = (t-tpeak)/tpeak

for |s| < 1 and exactly zero otherwise. tpeak must be positive, which
NewSourceEnvelope checks; here a non positive tpeak gives zero.
*/
func SourceEnvelope(t, tpeak, fcen float64) float64 {
	if !(tpeak > 0) {
		return 0
	}
	s := (t - tpeak) / tpeak
	if math.Abs(s) >= 1 {
		return 0
	}
	return (2 * math.E / math.Sqrt(math.Pi)) * math.Sin(2*math.Pi*fcen*t) * math.Exp(-1/(1-s*s))
}

func NewSourceEnvelope(tpeak, fcen float64) (env Envelope, err error) {
	if !(tpeak > 0) || math.IsInf(tpeak, 0) {
		err = fmt.Errorf("source envelope needs a positive peak time, have %g", tpeak)
		return
	}
	env = func(t float64) float64 { return SourceEnvelope(t, tpeak, fcen) }
	return
}

// GaussianEnvelope is a modulated Gaussian of width df around tpeak
func GaussianEnvelope(t, tpeak, fcen, df float64) float64 {
	if df == 0 {
		return 0
	}
	dt := t - tpeak
	return math.Sin(2*math.Pi*fcen*t) * math.Exp(-0.5*dt*dt/(df*df))
}

func NewGaussianEnvelope(tpeak, fcen, df float64) (env Envelope, err error) {
	if !(df > 0) {
		err = fmt.Errorf("gaussian envelope needs a positive width, have %g", df)
		return
	}
	env = func(t float64) float64 { return GaussianEnvelope(t, tpeak, fcen, df) }
	return
}
