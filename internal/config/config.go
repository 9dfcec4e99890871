package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/signalsfoundry/galactic-ops/internal/logging"
	"github.com/signalsfoundry/galactic-ops/internal/observability"
	"github.com/signalsfoundry/galactic-ops/model"
)

// EnvPrefix namespaces environment overrides: GALOPS_RANDOM_SEED -> random.seed.
const EnvPrefix = "GALOPS"

// Config holds all galops configuration.
type Config struct {
	Log        LogConfig        `mapstructure:"log"`
	Random     RandomConfig     `mapstructure:"random"`
	Tracing    TracingConfig    `mapstructure:"tracing"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Native     NativeConfig     `mapstructure:"native"`
	Astrometry AstrometryConfig `mapstructure:"astrometry"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RandomConfig seeds the shared random source. Seed 0 draws a seed from the
// runtime's entropy.
type RandomConfig struct {
	Seed uint64 `mapstructure:"seed"`
}

type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	ServiceName string  `mapstructure:"service_name"`
	Exporter    string  `mapstructure:"exporter"`
	Endpoint    string  `mapstructure:"endpoint"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

// MetricsConfig controls the /metrics listener used in batch mode. An empty
// Addr disables it.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

type NativeConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// AstrometryConfig selects the direction flag for RA/Dec -> l/b conversion:
// "legacy" keeps the forward flag earlier releases passed, "inverse"
// passes the inverse flag.
type AstrometryConfig struct {
	RADecDirection string `mapstructure:"radec_direction"`
}

// Options tune where Load looks for inputs. The zero value searches "." and
// "./configs" for galops.yaml and reads ".env" if present.
type Options struct {
	ConfigPaths []string
	EnvFiles    []string
}

// Load reads configuration from an optional YAML file, a .env file and
// GALOPS_* environment variables, in increasing order of precedence.
func Load(opts Options) (*Config, error) {
	envFiles := opts.EnvFiles
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env files: %w", err)
	}

	v := viper.New()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("random.seed", 0)
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "galops")
	v.SetDefault("tracing.exporter", "stdout")
	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("tracing.sample_ratio", 1.0)
	v.SetDefault("metrics.addr", "")
	v.SetDefault("native.enabled", false)
	v.SetDefault("astrometry.radec_direction", "legacy")

	v.SetConfigName("galops")
	v.SetConfigType("yaml")
	paths := opts.ConfigPaths
	if len(paths) == 0 {
		paths = []string{".", "./configs"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Sprintf("log.level must be debug|info|warn|error, got %q", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("log.format must be text|json, got %q", c.Log.Format))
	}
	if c.Tracing.Enabled {
		switch strings.ToLower(c.Tracing.Exporter) {
		case "stdout", "otlp", "otlpgrpc":
		default:
			errs = append(errs, fmt.Sprintf("tracing.exporter must be stdout|otlp, got %q", c.Tracing.Exporter))
		}
		if c.Tracing.ServiceName == "" {
			errs = append(errs, "tracing.service_name is required when tracing is enabled")
		}
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		errs = append(errs, fmt.Sprintf("tracing.sample_ratio must be within [0, 1], got %v", c.Tracing.SampleRatio))
	}
	if _, err := c.Astrometry.Direction(); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// Direction maps the configured radec_direction onto the native flag.
func (a AstrometryConfig) Direction() (model.Direction, error) {
	switch strings.ToLower(a.RADecDirection) {
	case "", "legacy", "forward":
		return model.DirectionForward, nil
	case "inverse":
		return model.DirectionInverse, nil
	default:
		return 0, fmt.Errorf("astrometry.radec_direction must be legacy|inverse, got %q", a.RADecDirection)
	}
}

// Logging converts the log section into a logging.Config.
func (c *Config) Logging() logging.Config {
	return logging.Config{Level: c.Log.Level, Format: c.Log.Format}
}

// TracingConfig converts the tracing section into an observability config.
func (c *Config) TracingConfig() observability.TracingConfig {
	return observability.TracingConfig{
		Enabled:     c.Tracing.Enabled,
		ServiceName: c.Tracing.ServiceName,
		Exporter:    c.Tracing.Exporter,
		Endpoint:    c.Tracing.Endpoint,
		SampleRatio: c.Tracing.SampleRatio,
	}
}
