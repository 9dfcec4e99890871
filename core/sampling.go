package core

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// CalcXY places a point at galactocentric radius r0 (kpc) in the Galactic
// plane, at an azimuth drawn uniformly from [0, 2π) using src.
//
// Points are uniform on the circle of radius r0, not over the disk area;
// callers wanting area-uniform positions must shape the distribution of r0.
func CalcXY(src rand.Source, r0 float64) (x, y float64, err error) {
	if src == nil {
		return 0, 0, ErrNilSource
	}
	if math.IsNaN(r0) || math.IsInf(r0, 0) || r0 < 0 {
		return 0, 0, domainError("galactocentric radius %v", r0)
	}

	theta := distuv.Uniform{Min: 0, Max: 2 * math.Pi, Src: src}.Rand()
	x, y = CalcXYAt(r0, theta)
	return x, y, nil
}

// CalcXYAt is the deterministic kernel of CalcXY for a given azimuth in
// radians.
func CalcXYAt(r0, theta float64) (x, y float64) {
	return r0 * math.Cos(theta), r0 * math.Sin(theta)
}

// CalcZ draws a height above the Galactic plane (kpc) from a two-sided
// exponential distribution with the given scale height.
func CalcZ(src rand.Source, scaleHeightKpc float64) (float64, error) {
	if src == nil {
		return 0, ErrNilSource
	}
	if math.IsNaN(scaleHeightKpc) || math.IsInf(scaleHeightKpc, 0) || scaleHeightKpc <= 0 {
		return 0, domainError("scale height %v", scaleHeightKpc)
	}
	z := distuv.Laplace{Mu: 0, Scale: scaleHeightKpc, Src: src}.Rand()
	if math.IsInf(z, 0) {
		return 0, domainError("height overflows for scale height %v", scaleHeightKpc)
	}
	return z, nil
}
