package core

import (
	"errors"
	"fmt"
)

var (
	// ErrDomain reports a numeric input outside the domain of the operation,
	// such as the logarithm of a non-positive value or a negative distance.
	ErrDomain = errors.New("input outside valid domain")
	// ErrDegenerate reports a geometry where a result is undefined: zero
	// heliocentric distance or a pole, where longitude has no meaning.
	ErrDegenerate = errors.New("degenerate geometry")
	// ErrNilSource is returned by stochastic operations called without a
	// random source.
	ErrNilSource = errors.New("nil random source")
	// ErrServiceUnavailable is wrapped in an ExternalServiceError when no
	// implementation of an external service has been configured.
	ErrServiceUnavailable = errors.New("external service not configured")
)

// ExternalServiceError wraps a failure returned by one of the external
// native services. Unwrap yields the service's own error untouched.
type ExternalServiceError struct {
	Service string
	Op      string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Service, e.Op, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

func domainError(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrDomain}, args...)...)
}
