package core

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/signalsfoundry/galactic-ops/internal/logging"
	"github.com/signalsfoundry/galactic-ops/model"
)

const tracerName = "github.com/signalsfoundry/galactic-ops/core"

// Operation names reported to the MetricsRecorder.
const (
	OpXYZToLB     = "xyz_to_lb"
	OpLBToXYZ     = "lb_to_xyz"
	OpDTrue       = "dtrue"
	OpCalcXY      = "calc_xy"
	OpCalcZ       = "calc_z"
	OpGLGBOffset  = "glgb_offset"
	OpScatterBhat = "scatter_bhat"
	OpDistToDM    = "dist_to_dm"
	OpTSky        = "tsky"
	OpLBToRADec   = "lb_to_radec"
	OpRADecToLB   = "radec_to_lb"
)

// GalacticOps bundles the geometry core with the external services and the
// random source it needs. Build one at startup and share it; all methods are
// safe for concurrent use.
type GalacticOps struct {
	// mu serialises draws from src, which need not be goroutine-safe.
	mu  sync.Mutex
	src rand.Source

	density    ElectronDensityService
	sky        SkyTemperatureService
	astrometry AstrometryService

	// radecDirection is the flag passed when converting RA/Dec to l/b.
	radecDirection model.Direction

	log     logging.Logger
	metrics MetricsRecorder
	tracer  trace.Tracer
}

// Option customises GalacticOps construction.
type Option func(*GalacticOps)

// WithRandSource sets the random source used by the stochastic operations.
func WithRandSource(src rand.Source) Option {
	return func(o *GalacticOps) {
		o.src = src
	}
}

// WithElectronDensity attaches the distance-to-DM service.
func WithElectronDensity(s ElectronDensityService) Option {
	return func(o *GalacticOps) {
		o.density = s
	}
}

// WithSkyTemperature attaches the sky temperature service.
func WithSkyTemperature(s SkyTemperatureService) Option {
	return func(o *GalacticOps) {
		o.sky = s
	}
}

// WithAstrometry attaches the Galactic/equatorial conversion service.
func WithAstrometry(s AstrometryService) Option {
	return func(o *GalacticOps) {
		o.astrometry = s
	}
}

// WithRADecDirection overrides the direction flag RADecToLB passes to the
// astrometry service. The default is DirectionForward, matching the legacy
// native binding.
func WithRADecDirection(dir model.Direction) Option {
	return func(o *GalacticOps) {
		o.radecDirection = dir
	}
}

// WithLogger attaches a structured logger.
func WithLogger(l logging.Logger) Option {
	return func(o *GalacticOps) {
		o.log = l
	}
}

// WithMetricsRecorder attaches an optional recorder for operation outcomes.
func WithMetricsRecorder(m MetricsRecorder) Option {
	return func(o *GalacticOps) {
		o.metrics = m
	}
}

// NewGalacticOps wires a GalacticOps. Without WithRandSource it seeds a PCG
// source from the runtime's entropy.
func NewGalacticOps(opts ...Option) *GalacticOps {
	o := &GalacticOps{
		radecDirection: model.DirectionForward,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	if o.src == nil {
		o.src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	if o.log == nil {
		o.log = logging.Noop()
	}
	o.tracer = otel.Tracer(tracerName)

	if o.astrometry != nil && o.radecDirection == model.DirectionForward {
		o.log.Warn(context.Background(), "radec_to_lb passes the forward direction flag to the astrometry service",
			logging.String("radec_direction", o.radecDirection.String()))
	}
	return o
}

// RADecDirection reports the direction flag RADecToLB uses.
func (o *GalacticOps) RADecDirection() model.Direction {
	return o.radecDirection
}

// ---- Geometry core ----

// XYZToLB converts a Galactic Cartesian position to (l, b).
func (o *GalacticOps) XYZToLB(c model.Cartesian) (model.Galactic, error) {
	g, err := XYZToLB(c)
	if errors.Is(err, ErrDegenerate) {
		o.log.Debug(context.Background(), "degenerate position",
			logging.Float("x", c.X), logging.Float("y", c.Y), logging.Float("z", c.Z))
	}
	o.observe(OpXYZToLB, err)
	return g, err
}

// LBToXYZ converts (l, b) and a distance in kpc to Galactic Cartesian.
func (o *GalacticOps) LBToXYZ(g model.Galactic, d float64) (model.Cartesian, error) {
	c, err := LBToXYZ(g, d)
	o.observe(OpLBToXYZ, err)
	return c, err
}

// DTrue returns the heliocentric distance in kpc.
func (o *GalacticOps) DTrue(c model.Cartesian) float64 {
	o.observe(OpDTrue, nil)
	return DTrue(c)
}

// GLGBOffset returns the angular separation in degrees.
func (o *GalacticOps) GLGBOffset(a, b model.Galactic) float64 {
	o.observe(OpGLGBOffset, nil)
	return GLGBOffset(a, b)
}

// CalcXY draws an in-plane position at galactocentric radius r0.
func (o *GalacticOps) CalcXY(r0 float64) (x, y float64, err error) {
	o.mu.Lock()
	x, y, err = CalcXY(o.src, r0)
	o.mu.Unlock()
	o.observe(OpCalcXY, err)
	return x, y, err
}

// CalcZ draws a height above the plane for the given scale height.
func (o *GalacticOps) CalcZ(scaleHeightKpc float64) (float64, error) {
	o.mu.Lock()
	z, err := CalcZ(o.src, scaleHeightKpc)
	o.mu.Unlock()
	o.observe(OpCalcZ, err)
	return z, err
}

// ScatterBhat draws a scattering timescale in milliseconds.
func (o *GalacticOps) ScatterBhat(in model.ScatteringInputs) (float64, error) {
	o.mu.Lock()
	tau, err := ScatterBhat(o.src, in)
	o.mu.Unlock()
	o.observe(OpScatterBhat, err)
	return tau, err
}

// ---- External services ----

// NE2001DistToDM returns the NE2001 dispersion measure to distance distKpc
// along (l, b).
func (o *GalacticOps) NE2001DistToDM(ctx context.Context, distKpc, l, b float64) (float64, error) {
	return o.distToDM(ctx, distKpc, l, b, model.NE2001)
}

// LMT85DistToDM returns the Lyne, Manchester & Taylor dispersion measure to
// distance distKpc along (l, b).
func (o *GalacticOps) LMT85DistToDM(ctx context.Context, distKpc, l, b float64) (float64, error) {
	return o.distToDM(ctx, distKpc, l, b, model.LMT85)
}

func (o *GalacticOps) distToDM(ctx context.Context, distKpc, l, b float64, m model.DensityModel) (float64, error) {
	var dm float64
	err := o.callExternal(ctx, ServiceElectronDensity, OpDistToDM, o.density != nil, func(ctx context.Context) error {
		var err error
		dm, err = o.density.DistanceToDM(ctx, distKpc, l, b, m)
		return err
	}, attribute.String("density_model", m.String()), attribute.Float64("dist_kpc", distKpc))
	return dm, err
}

// TSky returns the Galactic sky temperature at (l, b) for freqMHz.
func (o *GalacticOps) TSky(ctx context.Context, l, b, freqMHz float64) (float64, error) {
	var t float64
	err := o.callExternal(ctx, ServiceSkyTemperature, OpTSky, o.sky != nil, func(ctx context.Context) error {
		var err error
		t, err = o.sky.SkyTemperature(ctx, l, b, freqMHz)
		return err
	}, attribute.Float64("freq_mhz", freqMHz))
	return t, err
}

// LBToRADec converts a Galactic position to equatorial coordinates.
func (o *GalacticOps) LBToRADec(ctx context.Context, g model.Galactic) (model.Equatorial, error) {
	var eq model.Equatorial
	err := o.callExternal(ctx, ServiceAstrometry, OpLBToRADec, o.astrometry != nil, func(ctx context.Context) error {
		var err error
		eq.RA, eq.Dec, err = o.astrometry.GalacticToEquatorial(ctx, g.L, g.B)
		return err
	}, attribute.String("direction", model.DirectionForward.String()))
	return eq, err
}

// RADecToLB converts equatorial coordinates to a Galactic position with
// longitude in (-180, 180].
func (o *GalacticOps) RADecToLB(ctx context.Context, eq model.Equatorial) (model.Galactic, error) {
	var g model.Galactic
	err := o.callExternal(ctx, ServiceAstrometry, OpRADecToLB, o.astrometry != nil, func(ctx context.Context) error {
		var err error
		g.L, g.B, err = o.astrometry.EquatorialToGalactic(ctx, eq.RA, eq.Dec, o.radecDirection)
		return err
	}, attribute.String("direction", o.radecDirection.String()))
	if err != nil {
		return model.Galactic{}, err
	}
	g.L = normalizeLongitude(g.L)
	return g, nil
}

// callExternal runs fn inside a span, times it, and wraps any failure in an
// ExternalServiceError. Errors are never retried here.
func (o *GalacticOps) callExternal(ctx context.Context, service, op string, configured bool, fn func(context.Context) error, attrs ...attribute.KeyValue) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := o.tracer.Start(ctx, "galops/"+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(append(attrs, attribute.String("service", service))...),
	)
	defer span.End()

	var err error
	start := time.Now()
	if !configured {
		err = ErrServiceUnavailable
	} else {
		err = fn(ctx)
	}
	elapsed := time.Since(start)

	if err != nil {
		var extErr *ExternalServiceError
		if !errors.As(err, &extErr) {
			err = &ExternalServiceError{Service: service, Op: op, Err: err}
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		o.log.Warn(ctx, "external service call failed",
			logging.String("service", service),
			logging.String("op", op),
			logging.Err(err),
		)
	}

	if o.metrics != nil {
		o.metrics.ObserveExternal(service, elapsed, err)
	}
	o.observe(op, err)
	return err
}

func (o *GalacticOps) observe(op string, err error) {
	if o.metrics != nil {
		o.metrics.ObserveOperation(op, err)
	}
}
