package model

import "math"

// Cartesian is a Galactic Cartesian position in kiloparsecs. The origin is
// the Galactic Centre and the Sun sits on the +Y axis.
type Cartesian struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Norm returns the Euclidean norm of the vector without intermediate
// overflow.
func (c Cartesian) Norm() float64 {
	return math.Hypot(math.Hypot(c.X, c.Y), c.Z)
}

// Sub returns c - other.
func (c Cartesian) Sub(other Cartesian) Cartesian {
	return Cartesian{X: c.X - other.X, Y: c.Y - other.Y, Z: c.Z - other.Z}
}

// DistanceTo returns the straight-line distance between two points.
func (c Cartesian) DistanceTo(other Cartesian) float64 {
	return c.Sub(other).Norm()
}

// IsFinite reports whether every component is a finite number.
func (c Cartesian) IsFinite() bool {
	return isFinite(c.X) && isFinite(c.Y) && isFinite(c.Z)
}

// Galactic is a heliocentric Galactic sky position in degrees.
// L is kept in (-180, 180]; B lies in [-90, 90].
type Galactic struct {
	L float64 `json:"l"`
	B float64 `json:"b"`
}

// IsFinite reports whether both angles are finite numbers.
func (g Galactic) IsFinite() bool {
	return isFinite(g.L) && isFinite(g.B)
}

// Equatorial is a J2000 celestial position in degrees.
type Equatorial struct {
	RA  float64 `json:"ra"`
	Dec float64 `json:"dec"`
}

// ScatteringInputs parameterise the empirical pulse-broadening relation.
type ScatteringInputs struct {
	DM      float64 `json:"dm"`       // dispersion measure, pc cm^-3
	Index   float64 `json:"index"`    // frequency scaling index, typically negative
	FreqMHz float64 `json:"freq_mhz"` // observing frequency
}

// DensityModel selects the Galactic electron-density model used by the
// native distance-to-DM routine. The values are the mode flags that routine
// expects.
type DensityModel int

const (
	// LMT85 is the Lyne, Manchester & Taylor (1985) model.
	LMT85 DensityModel = 0
	// NE2001 is the Cordes & Lazio NE2001 model.
	NE2001 DensityModel = 4
)

func (m DensityModel) String() string {
	switch m {
	case NE2001:
		return "ne2001"
	case LMT85:
		return "lmt85"
	default:
		return "unknown"
	}
}

// Direction is the mode flag passed to the native Galactic/equatorial
// conversion routine.
type Direction int

const (
	// DirectionForward converts Galactic (l, b) to equatorial (RA, Dec).
	DirectionForward Direction = 1
	// DirectionInverse converts equatorial (RA, Dec) to Galactic (l, b).
	DirectionInverse Direction = -1
)

func (d Direction) String() string {
	switch d {
	case DirectionForward:
		return "forward"
	case DirectionInverse:
		return "inverse"
	default:
		return "unknown"
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
