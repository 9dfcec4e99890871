package core

import (
	"fmt"
	"math"

	"github.com/signalsfoundry/galactic-ops/model"
)

// RSunKpc is the Sun to Galactic Centre distance shared by every spatial
// conversion in this package (kiloparsecs).
const RSunKpc = 8.5

// SunPosition is the Sun's location in Galactic Cartesian coordinates.
var SunPosition = model.Cartesian{X: 0, Y: RSunKpc, Z: 0}

// DTrue returns the heliocentric distance of c in kpc.
func DTrue(c model.Cartesian) float64 {
	return c.DistanceTo(SunPosition)
}

// longitudeCase identifies which side of the Sun a position lies on, which
// decides the inverse-trig formula used to recover longitude.
type longitudeCase int

const (
	// caseSunward: y <= R_SUN, between the Sun and the Galactic Centre plane.
	caseSunward longitudeCase = iota
	// caseBeyondEast: y > R_SUN with x >= 0.
	caseBeyondEast
	// caseBeyondWest: y > R_SUN with x < 0.
	caseBeyondWest
)

func (c longitudeCase) String() string {
	switch c {
	case caseSunward:
		return "sunward"
	case caseBeyondEast:
		return "beyond-east"
	case caseBeyondWest:
		return "beyond-west"
	default:
		return "unknown"
	}
}

// longitudeFormulas maps each case to a function of the clamped ratio
// x / (d cos b), returning longitude in radians.
var longitudeFormulas = map[longitudeCase]func(ratio float64) float64{
	caseSunward: math.Asin,
	caseBeyondEast: func(ratio float64) float64 {
		return math.Acos(ratio) + math.Pi/2
	},
	caseBeyondWest: func(ratio float64) float64 {
		return math.Acos(ratio) + math.Pi/2 - 2*math.Pi
	},
}

func classifyLongitude(c model.Cartesian) longitudeCase {
	switch {
	case c.Y <= RSunKpc:
		return caseSunward
	case c.X < 0:
		return caseBeyondWest
	default:
		return caseBeyondEast
	}
}

// XYZToLB converts a Galactic Cartesian position to Galactic longitude and
// latitude in degrees.
//
// A position at the Sun returns ErrDegenerate. A position directly above or
// below the Sun returns the latitude with L set to NaN, alongside an error
// wrapping ErrDegenerate.
func XYZToLB(c model.Cartesian) (model.Galactic, error) {
	if !c.IsFinite() {
		return model.Galactic{}, domainError("non-finite position %+v", c)
	}

	d := DTrue(c)
	if d == 0 {
		return model.Galactic{}, fmt.Errorf("%w: position coincides with the Sun", ErrDegenerate)
	}

	b := math.Asin(clamp(c.Z/d, -1, 1))
	if c.X == 0 && c.Y == RSunKpc {
		return model.Galactic{L: math.NaN(), B: radToDeg(b)},
			fmt.Errorf("%w: longitude undefined at galactic pole", ErrDegenerate)
	}

	dcb := d * math.Cos(b)
	ratio := clamp(c.X/dcb, -1, 1)
	l := longitudeFormulas[classifyLongitude(c)](ratio)

	return model.Galactic{L: normalizeLongitude(radToDeg(l)), B: radToDeg(b)}, nil
}

// LBToXYZ converts a Galactic sky position and heliocentric distance in kpc
// to Galactic Cartesian coordinates.
func LBToXYZ(g model.Galactic, d float64) (model.Cartesian, error) {
	if !g.IsFinite() || math.IsNaN(d) || math.IsInf(d, 0) {
		return model.Cartesian{}, domainError("non-finite input l=%v b=%v d=%v", g.L, g.B, d)
	}
	if d < 0 {
		return model.Cartesian{}, domainError("negative distance %v", d)
	}

	l := degToRad(g.L)
	b := degToRad(g.B)
	dcb := d * math.Cos(b)

	return model.Cartesian{
		X: dcb * math.Sin(l),
		Y: RSunKpc - dcb*math.Cos(l),
		Z: d * math.Sin(b),
	}, nil
}

// normalizeLongitude folds a longitude produced by the inverse-trig
// formulas, which lies in (-180, 270], into (-180, 180].
func normalizeLongitude(l float64) float64 {
	if l > 180 {
		l -= 360
	}
	return l
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func degToRad(deg float64) float64 { return deg * math.Pi / 180 }

func radToDeg(rad float64) float64 { return rad * 180 / math.Pi }
