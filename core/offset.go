package core

import (
	"math"

	"github.com/signalsfoundry/galactic-ops/model"
)

// GLGBOffset returns the angular separation in degrees between two Galactic
// sky positions using the spherical law of cosines on colatitudes.
func GLGBOffset(a, b model.Galactic) float64 {
	if a == b {
		return 0
	}

	colat1 := degToRad(90 - a.B)
	colat2 := degToRad(90 - b.B)
	dl := degToRad(a.L) - degToRad(b.L)

	cosAlpha := math.Cos(colat1)*math.Cos(colat2) +
		math.Sin(colat1)*math.Sin(colat2)*math.Cos(dl)

	return radToDeg(math.Acos(clamp(cosAlpha, -1, 1)))
}
