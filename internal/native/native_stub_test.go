//go:build !(cgo && galnative)

package native

import (
	"context"
	"errors"
	"testing"

	"github.com/signalsfoundry/galactic-ops/core"
	"github.com/signalsfoundry/galactic-ops/model"
)

func TestOpenWithoutNativeLibraries(t *testing.T) {
	lib, err := Open()
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Open error = %v, want ErrUnavailable", err)
	}
	if lib != nil {
		t.Fatalf("expected nil library, got %+v", lib)
	}
}

func TestStubRoutinesSurfaceThroughGalacticOps(t *testing.T) {
	lib := &Library{}
	ops := core.NewGalacticOps(
		core.WithElectronDensity(lib),
		core.WithSkyTemperature(lib),
		core.WithAstrometry(lib),
	)

	_, err := ops.LMT85DistToDM(context.Background(), 2, 45, 1)
	var extErr *core.ExternalServiceError
	if !errors.As(err, &extErr) {
		t.Fatalf("expected ExternalServiceError, got %v", err)
	}
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable to be preserved, got %v", err)
	}
	if extErr.Service != core.ServiceElectronDensity {
		t.Fatalf("service = %q, want %q", extErr.Service, core.ServiceElectronDensity)
	}

	if _, err := ops.TSky(context.Background(), 0, 0, 408); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("TSky error = %v, want ErrUnavailable", err)
	}
	if _, err := ops.RADecToLB(context.Background(), model.Equatorial{RA: 10, Dec: 20}); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("RADecToLB error = %v, want ErrUnavailable", err)
	}
}

func TestCancelledContextShortCircuits(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	lib := &Library{}
	if _, err := lib.DistanceToDM(ctx, 1, 0, 0, model.NE2001); !errors.Is(err, context.Canceled) {
		t.Fatalf("DistanceToDM error = %v, want context.Canceled", err)
	}
	if _, _, err := lib.GalacticToEquatorial(ctx, 0, 0); !errors.Is(err, context.Canceled) {
		t.Fatalf("GalacticToEquatorial error = %v, want context.Canceled", err)
	}
}
