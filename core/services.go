package core

import (
	"context"
	"time"

	"github.com/signalsfoundry/galactic-ops/model"
)

// ElectronDensityService integrates a Galactic electron-density model along
// a line of sight. One implementation serves every model; m selects which.
type ElectronDensityService interface {
	// DistanceToDM returns the dispersion measure (pc cm^-3) accumulated out
	// to distKpc in direction (l, b) degrees.
	DistanceToDM(ctx context.Context, distKpc, l, b float64, m model.DensityModel) (float64, error)
}

// SkyTemperatureService looks up the Galactic sky brightness temperature.
type SkyTemperatureService interface {
	// SkyTemperature returns the brightness temperature (K) at (l, b)
	// degrees for an observing frequency in MHz.
	SkyTemperature(ctx context.Context, l, b, freqMHz float64) (float64, error)
}

// AstrometryService converts between Galactic and equatorial coordinates,
// all in degrees.
type AstrometryService interface {
	GalacticToEquatorial(ctx context.Context, l, b float64) (ra, dec float64, err error)
	// EquatorialToGalactic passes dir through to the conversion routine as
	// its mode flag; see GalacticOps.RADecToLB.
	EquatorialToGalactic(ctx context.Context, ra, dec float64, dir model.Direction) (l, b float64, err error)
}

// MetricsRecorder receives per-operation outcomes from GalacticOps.
type MetricsRecorder interface {
	ObserveOperation(op string, err error)
	ObserveExternal(service string, elapsed time.Duration, err error)
}

// Service names used in errors, spans and metrics.
const (
	ServiceElectronDensity = "electron_density"
	ServiceSkyTemperature  = "sky_temperature"
	ServiceAstrometry      = "astrometry"
)
