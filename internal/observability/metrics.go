package observability

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/signalsfoundry/galactic-ops/core"
)

// Result label values.
const (
	ResultOK          = "ok"
	ResultDomain      = "domain_error"
	ResultDegenerate  = "degenerate"
	ResultUnavailable = "unavailable"
	ResultExternal    = "external_error"
	ResultError       = "error"
)

// GalacticCollector bundles Prometheus metrics for GalacticOps and exposes
// them over HTTP. It satisfies core.MetricsRecorder.
type GalacticCollector struct {
	gatherer prometheus.Gatherer

	Operations        *prometheus.CounterVec
	ExternalRequests  *prometheus.CounterVec
	ExternalDurations *prometheus.HistogramVec
}

var _ core.MetricsRecorder = (*GalacticCollector)(nil)

// NewGalacticCollector registers metrics against the provided registerer,
// defaulting to the global Prometheus registry when nil.
func NewGalacticCollector(reg prometheus.Registerer) (*GalacticCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	ops, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "galops_operations_total",
		Help: "Total number of galactic operations, labeled by operation and result.",
	}, []string{"op", "result"}), "galops_operations_total")
	if err != nil {
		return nil, err
	}

	external, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "galops_external_requests_total",
		Help: "Calls into external native services, labeled by service and result.",
	}, []string{"service", "result"}), "galops_external_requests_total")
	if err != nil {
		return nil, err
	}

	durations, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "galops_external_duration_seconds",
		Help:    "External native service latency in seconds.",
		Buckets: []float64{0.00001, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}, []string{"service"}), "galops_external_duration_seconds")
	if err != nil {
		return nil, err
	}

	return &GalacticCollector{
		gatherer:          gatherer,
		Operations:        ops,
		ExternalRequests:  external,
		ExternalDurations: durations,
	}, nil
}

// ObserveOperation counts one operation outcome.
func (c *GalacticCollector) ObserveOperation(op string, err error) {
	if c == nil || c.Operations == nil {
		return
	}
	c.Operations.WithLabelValues(op, Classify(err)).Inc()
}

// ObserveExternal counts one external service call and records its latency.
func (c *GalacticCollector) ObserveExternal(service string, elapsed time.Duration, err error) {
	if c == nil {
		return
	}
	if c.ExternalRequests != nil {
		c.ExternalRequests.WithLabelValues(service, Classify(err)).Inc()
	}
	if c.ExternalDurations != nil {
		c.ExternalDurations.WithLabelValues(service).Observe(elapsed.Seconds())
	}
}

// Handler exposes a ready-to-use /metrics handler.
func (c *GalacticCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Classify maps an operation error onto a result label.
func Classify(err error) string {
	var extErr *core.ExternalServiceError
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, core.ErrServiceUnavailable):
		return ResultUnavailable
	case errors.As(err, &extErr):
		return ResultExternal
	case errors.Is(err, core.ErrDomain):
		return ResultDomain
	case errors.Is(err, core.ErrDegenerate):
		return ResultDegenerate
	default:
		return ResultError
	}
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}
