// Command galops exposes the galactic geometry and scattering operations on
// the command line. Each subcommand prints one JSON object on stdout; the
// batch subcommand answers JSON-lines requests read from stdin.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"os/signal"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/signalsfoundry/galactic-ops/core"
	"github.com/signalsfoundry/galactic-ops/internal/config"
	"github.com/signalsfoundry/galactic-ops/internal/logging"
	"github.com/signalsfoundry/galactic-ops/internal/native"
	"github.com/signalsfoundry/galactic-ops/internal/observability"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// env carries everything a subcommand needs once flags and configuration
// are resolved.
type env struct {
	ops         *core.GalacticOps
	collector   *observability.GalacticCollector
	log         logging.Logger
	metricsAddr string
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("galops", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configDir := fs.String("config-dir", "", "Directory searched for galops.yaml (default: . and ./configs)")
	envFile := fs.String("env-file", "", "Path to a .env file (default: .env)")
	seed := fs.Uint64("seed", 0, "Random seed; overrides random.seed when non-zero")
	metricsAddr := fs.String("metrics-addr", "", "HTTP address for Prometheus /metrics in batch mode; overrides metrics.addr")
	useNative := fs.Bool("native", false, "Bind the native NE2001/tsky/astrometry routines; overrides native.enabled")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: galops [flags] <operation> [args...]\n\noperations:\n")
		for _, u := range commandUsages() {
			fmt.Fprintf(stderr, "  %s\n", u)
		}
		fmt.Fprintf(stderr, "  batch\n\nflags:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return exitUsage
	}

	opts := config.Options{}
	if *configDir != "" {
		opts.ConfigPaths = []string{*configDir}
	}
	if *envFile != "" {
		opts.EnvFiles = []string{*envFile}
	}
	cfg, err := config.Load(opts)
	if err != nil {
		fmt.Fprintf(stderr, "galops: %v\n", err)
		return exitUsage
	}
	if *seed != 0 {
		cfg.Random.Seed = *seed
	}
	if *metricsAddr != "" {
		cfg.Metrics.Addr = *metricsAddr
	}
	if *useNative {
		cfg.Native.Enabled = true
	}

	logCfg := cfg.Logging()
	logCfg.Output = stderr
	log := logging.New(logCfg)
	ctx, runID := logging.EnsureRunID(ctx)

	tracingCfg := cfg.TracingConfig()
	tracingCfg.Writer = stderr
	shutdown, err := observability.InitTracing(ctx, tracingCfg, log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.Err(err))
		return exitError
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdown, log)

	e, err := newEnv(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "failed to initialise galops", logging.Err(err))
		return exitError
	}
	log.Debug(ctx, "galops ready", logging.String("run_id", runID), logging.String("radec_direction", e.ops.RADecDirection().String()))

	name, rest := fs.Arg(0), fs.Args()[1:]
	if name == "batch" {
		if err := runBatch(ctx, e, stdin, stdout); err != nil {
			log.Error(ctx, "batch aborted", logging.Err(err))
			return exitError
		}
		return exitOK
	}

	if _, ok := commands[name]; !ok {
		fmt.Fprintf(stderr, "galops: unknown operation %q\n", name)
		fs.Usage()
		return exitUsage
	}
	values, err := parseArgs(rest)
	if err != nil {
		fmt.Fprintf(stderr, "galops: %s: %v\n", name, err)
		return exitUsage
	}
	if len(values) != commands[name].nargs {
		fmt.Fprintf(stderr, "galops: usage: %s\n", commands[name].usage)
		return exitUsage
	}

	res, err := invoke(ctx, e.ops, name, values)
	if err != nil {
		fmt.Fprintf(stderr, "galops: %s: %v\n", name, err)
		return exitError
	}
	if err := json.NewEncoder(stdout).Encode(res); err != nil {
		log.Error(ctx, "failed to write result", logging.Err(err))
		return exitError
	}
	return exitOK
}

func newEnv(ctx context.Context, cfg *config.Config, log logging.Logger) (*env, error) {
	collector, err := observability.NewGalacticCollector(prometheus.NewRegistry())
	if err != nil {
		return nil, fmt.Errorf("metrics collector: %w", err)
	}
	dir, err := cfg.Astrometry.Direction()
	if err != nil {
		return nil, err
	}

	src := rand.NewPCG(rand.Uint64(), rand.Uint64())
	if cfg.Random.Seed != 0 {
		src = rand.NewPCG(cfg.Random.Seed, cfg.Random.Seed)
	}

	opts := []core.Option{
		core.WithRandSource(src),
		core.WithLogger(log.With(logging.String("component", "galops"))),
		core.WithMetricsRecorder(collector),
		core.WithRADecDirection(dir),
	}
	if cfg.Native.Enabled {
		lib, err := native.Open()
		switch {
		case errors.Is(err, native.ErrUnavailable):
			log.Warn(ctx, "native routines not compiled in; external operations will report unavailable")
		case err != nil:
			return nil, fmt.Errorf("open native library: %w", err)
		default:
			opts = append(opts,
				core.WithElectronDensity(lib),
				core.WithSkyTemperature(lib),
				core.WithAstrometry(lib),
			)
		}
	}

	return &env{
		ops:         core.NewGalacticOps(opts...),
		collector:   collector,
		log:         log,
		metricsAddr: strings.TrimSpace(cfg.Metrics.Addr),
	}, nil
}
