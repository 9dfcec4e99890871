package core

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/signalsfoundry/galactic-ops/model"
)

// BhatLogSigma is the scatter, in dex, of measured scattering times about the
// Bhat et al. (2004) relation.
const BhatLogSigma = 0.8

// LogTauBhat returns log10 of the expected scattering timescale in
// milliseconds from the Bhat et al. (2004) DM relation, scaled from 1 GHz to
// in.FreqMHz with the power-law index in.Index.
func LogTauBhat(in model.ScatteringInputs) (float64, error) {
	if err := validateScattering(in); err != nil {
		return 0, err
	}
	logDM := math.Log10(in.DM)
	return -6.46 + 0.154*logDM + 1.07*logDM*logDM + in.Index*math.Log10(in.FreqMHz/1000.0), nil
}

// ScatterBhat draws a scattering timescale in milliseconds. The result is
// log-normal: log10 of it is normal with mean LogTauBhat(in) and standard
// deviation BhatLogSigma.
func ScatterBhat(src rand.Source, in model.ScatteringInputs) (float64, error) {
	if src == nil {
		return 0, ErrNilSource
	}
	logTau, err := LogTauBhat(in)
	if err != nil {
		return 0, err
	}
	x := distuv.Normal{Mu: logTau, Sigma: BhatLogSigma, Src: src}.Rand()
	tau := math.Pow(10, x)
	if math.IsInf(tau, 0) {
		return 0, domainError("scattering timescale overflows for dm=%v index=%v freq=%v MHz", in.DM, in.Index, in.FreqMHz)
	}
	return tau, nil
}

func validateScattering(in model.ScatteringInputs) error {
	switch {
	case math.IsNaN(in.DM) || math.IsInf(in.DM, 0) || in.DM <= 0:
		return domainError("dispersion measure %v must be positive", in.DM)
	case math.IsNaN(in.FreqMHz) || math.IsInf(in.FreqMHz, 0) || in.FreqMHz <= 0:
		return domainError("frequency %v MHz must be positive", in.FreqMHz)
	case math.IsNaN(in.Index) || math.IsInf(in.Index, 0):
		return domainError("scattering index %v", in.Index)
	}
	return nil
}
