// Package native binds the Fortran NE2001/LMT85 dispersion-measure, sky
// temperature and SLALIB Galactic/equatorial routines.
//
// The cgo binding is compiled only with the galnative build tag and links
// against libne2001, libtsky and libsla. Without the tag Open reports
// ErrUnavailable.
package native

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/signalsfoundry/galactic-ops/core"
	"github.com/signalsfoundry/galactic-ops/model"
)

// ErrUnavailable is returned when the binary was built without the native
// libraries.
var ErrUnavailable = errors.New("native libraries not linked (build with -tags galnative)")

// Library is a handle on the linked native routines. It implements
// core.ElectronDensityService, core.SkyTemperatureService and
// core.AstrometryService.
type Library struct {
	// The Fortran routines keep COMMON-block state and are not reentrant.
	mu sync.Mutex
}

var (
	_ core.ElectronDensityService = (*Library)(nil)
	_ core.SkyTemperatureService  = (*Library)(nil)
	_ core.AstrometryService      = (*Library)(nil)
)

// Open returns a Library when the native routines are linked in.
func Open() (*Library, error) {
	if !available {
		return nil, ErrUnavailable
	}
	return &Library{}, nil
}

// DistanceToDM integrates the selected density model to distKpc along (l, b).
// NE2001 and LMT85 share one native entry point; m is its mode flag.
func (lib *Library) DistanceToDM(ctx context.Context, distKpc, l, b float64, m model.DensityModel) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	lib.mu.Lock()
	defer lib.mu.Unlock()
	v, err := dm(float32(distKpc), float32(l), float32(b), int32(m))
	return checked("dm", v, err)
}

// SkyTemperature returns the sky brightness temperature in K.
func (lib *Library) SkyTemperature(ctx context.Context, l, b, freqMHz float64) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	lib.mu.Lock()
	defer lib.mu.Unlock()
	v, err := tsky(float32(l), float32(b), float32(freqMHz))
	return checked("psr_tsky", v, err)
}

// GalacticToEquatorial converts (l, b) to (RA, Dec) with the forward flag.
func (lib *Library) GalacticToEquatorial(ctx context.Context, l, b float64) (float64, float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}
	lib.mu.Lock()
	defer lib.mu.Unlock()
	_, _, ra, dec, err := galtfeq(float32(l), float32(b), 0, 0, int32(model.DirectionForward))
	return checkedPair("galtfeq", ra, dec, err)
}

// EquatorialToGalactic places (RA, Dec) in the routine's equatorial slots,
// passes dir unchanged and reads (l, b) back.
func (lib *Library) EquatorialToGalactic(ctx context.Context, ra, dec float64, dir model.Direction) (float64, float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}
	lib.mu.Lock()
	defer lib.mu.Unlock()
	l, b, _, _, err := galtfeq(0, 0, float32(ra), float32(dec), int32(dir))
	return checkedPair("galtfeq", l, b, err)
}

func checked(routine string, v float32, err error) (float64, error) {
	if err != nil {
		return 0, err
	}
	f := float64(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%s returned non-finite value %v", routine, f)
	}
	return f, nil
}

func checkedPair(routine string, a, b float32, err error) (float64, float64, error) {
	x, err := checked(routine, a, err)
	if err != nil {
		return 0, 0, err
	}
	y, err := checked(routine, b, nil)
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}
