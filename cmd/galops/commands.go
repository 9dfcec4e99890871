package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/signalsfoundry/galactic-ops/core"
	"github.com/signalsfoundry/galactic-ops/model"
)

// command is one galops operation taking a fixed number of numeric
// arguments and producing a JSON-encodable result.
type command struct {
	usage string
	nargs int
	run   func(ctx context.Context, ops *core.GalacticOps, a []float64) (any, error)
}

var commands = map[string]command{
	"dtrue": {
		usage: "dtrue X Y Z",
		nargs: 3,
		run: func(_ context.Context, ops *core.GalacticOps, a []float64) (any, error) {
			return map[string]float64{"dtrue_kpc": ops.DTrue(model.Cartesian{X: a[0], Y: a[1], Z: a[2]})}, nil
		},
	},
	"xyz2lb": {
		usage: "xyz2lb X Y Z",
		nargs: 3,
		run: func(_ context.Context, ops *core.GalacticOps, a []float64) (any, error) {
			return ops.XYZToLB(model.Cartesian{X: a[0], Y: a[1], Z: a[2]})
		},
	},
	"lb2xyz": {
		usage: "lb2xyz L B DIST_KPC",
		nargs: 3,
		run: func(_ context.Context, ops *core.GalacticOps, a []float64) (any, error) {
			return ops.LBToXYZ(model.Galactic{L: a[0], B: a[1]}, a[2])
		},
	},
	"xy": {
		usage: "xy R0_KPC",
		nargs: 1,
		run: func(_ context.Context, ops *core.GalacticOps, a []float64) (any, error) {
			x, y, err := ops.CalcXY(a[0])
			if err != nil {
				return nil, err
			}
			return map[string]float64{"x": x, "y": y}, nil
		},
	},
	"z": {
		usage: "z SCALE_HEIGHT_KPC",
		nargs: 1,
		run: func(_ context.Context, ops *core.GalacticOps, a []float64) (any, error) {
			z, err := ops.CalcZ(a[0])
			if err != nil {
				return nil, err
			}
			return map[string]float64{"z": z}, nil
		},
	},
	"offset": {
		usage: "offset L1 B1 L2 B2",
		nargs: 4,
		run: func(_ context.Context, ops *core.GalacticOps, a []float64) (any, error) {
			deg := ops.GLGBOffset(model.Galactic{L: a[0], B: a[1]}, model.Galactic{L: a[2], B: a[3]})
			return map[string]float64{"offset_deg": deg}, nil
		},
	},
	"scatter": {
		usage: "scatter DM INDEX FREQ_MHZ",
		nargs: 3,
		run: func(_ context.Context, ops *core.GalacticOps, a []float64) (any, error) {
			tau, err := ops.ScatterBhat(model.ScatteringInputs{DM: a[0], Index: a[1], FreqMHz: a[2]})
			if err != nil {
				return nil, err
			}
			return map[string]float64{"tau_ms": tau}, nil
		},
	},
	"dm-ne2001": {
		usage: "dm-ne2001 DIST_KPC L B",
		nargs: 3,
		run: func(ctx context.Context, ops *core.GalacticOps, a []float64) (any, error) {
			dm, err := ops.NE2001DistToDM(ctx, a[0], a[1], a[2])
			if err != nil {
				return nil, err
			}
			return map[string]float64{"dm": dm}, nil
		},
	},
	"dm-lmt85": {
		usage: "dm-lmt85 DIST_KPC L B",
		nargs: 3,
		run: func(ctx context.Context, ops *core.GalacticOps, a []float64) (any, error) {
			dm, err := ops.LMT85DistToDM(ctx, a[0], a[1], a[2])
			if err != nil {
				return nil, err
			}
			return map[string]float64{"dm": dm}, nil
		},
	},
	"tsky": {
		usage: "tsky L B FREQ_MHZ",
		nargs: 3,
		run: func(ctx context.Context, ops *core.GalacticOps, a []float64) (any, error) {
			t, err := ops.TSky(ctx, a[0], a[1], a[2])
			if err != nil {
				return nil, err
			}
			return map[string]float64{"tsky_k": t}, nil
		},
	},
	"lb2radec": {
		usage: "lb2radec L B",
		nargs: 2,
		run: func(ctx context.Context, ops *core.GalacticOps, a []float64) (any, error) {
			return ops.LBToRADec(ctx, model.Galactic{L: a[0], B: a[1]})
		},
	},
	"radec2lb": {
		usage: "radec2lb RA DEC",
		nargs: 2,
		run: func(ctx context.Context, ops *core.GalacticOps, a []float64) (any, error) {
			return ops.RADecToLB(ctx, model.Equatorial{RA: a[0], Dec: a[1]})
		},
	},
}

// invoke runs a named command after checking its arity. Failed operations
// return a nil result so partial values never reach the output.
func invoke(ctx context.Context, ops *core.GalacticOps, name string, args []float64) (any, error) {
	cmd, ok := commands[name]
	if !ok {
		return nil, fmt.Errorf("unknown operation %q", name)
	}
	if len(args) != cmd.nargs {
		return nil, fmt.Errorf("%s: want %d arguments, got %d (usage: %s)", name, cmd.nargs, len(args), cmd.usage)
	}
	res, err := cmd.run(ctx, ops, args)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func parseArgs(raw []string) ([]float64, error) {
	out := make([]float64, len(raw))
	for i, s := range raw {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		out[i] = v
	}
	return out, nil
}

func commandUsages() []string {
	usages := make([]string, 0, len(commands))
	for _, c := range commands {
		usages = append(usages, c.usage)
	}
	sort.Strings(usages)
	return usages
}
