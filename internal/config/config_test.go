package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalsfoundry/galactic-ops/model"
)

// isolated returns Options that see no config or .env file from the
// working tree.
func isolated(t *testing.T) Options {
	t.Helper()
	dir := t.TempDir()
	return Options{ConfigPaths: []string{dir}, EnvFiles: []string{filepath.Join(dir, "missing.env")}}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(isolated(t))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, uint64(0), cfg.Random.Seed)
	assert.False(t, cfg.Tracing.Enabled)
	assert.Equal(t, 1.0, cfg.Tracing.SampleRatio)
	assert.Empty(t, cfg.Metrics.Addr)

	dir, err := cfg.Astrometry.Direction()
	require.NoError(t, err)
	assert.Equal(t, model.DirectionForward, dir)
}

func TestLoadReadsYAMLFile(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte(`
log:
  level: debug
  format: json
random:
  seed: 1234
astrometry:
  radec_direction: inverse
metrics:
  addr: ":9464"
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "galops.yaml"), yaml, 0o600))

	cfg, err := Load(Options{ConfigPaths: []string{dir}, EnvFiles: []string{filepath.Join(dir, "none.env")}})
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, uint64(1234), cfg.Random.Seed)
	assert.Equal(t, ":9464", cfg.Metrics.Addr)

	got, err := cfg.Astrometry.Direction()
	require.NoError(t, err)
	assert.Equal(t, model.DirectionInverse, got)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "galops.yaml"), []byte("random:\n  seed: 1\n"), 0o600))
	t.Setenv("GALOPS_RANDOM_SEED", "99")
	t.Setenv("GALOPS_TRACING_ENABLED", "true")

	cfg, err := Load(Options{ConfigPaths: []string{dir}, EnvFiles: []string{filepath.Join(dir, "none.env")}})
	require.NoError(t, err)
	assert.Equal(t, uint64(99), cfg.Random.Seed)
	assert.True(t, cfg.Tracing.Enabled)
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("GALOPS_LOG_LEVEL=warn\n"), 0o600))

	// Register a restore, then clear so godotenv is free to set it.
	t.Setenv("GALOPS_LOG_LEVEL", "")
	require.NoError(t, os.Unsetenv("GALOPS_LOG_LEVEL"))

	cfg, err := Load(Options{ConfigPaths: []string{dir}, EnvFiles: []string{envFile}})
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestValidateCollectsAllProblems(t *testing.T) {
	cfg := &Config{
		Log:        LogConfig{Level: "loud", Format: "xml"},
		Tracing:    TracingConfig{Enabled: true, Exporter: "zipkin", SampleRatio: 2},
		Astrometry: AstrometryConfig{RADecDirection: "sideways"},
	}
	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"log.level", "log.format", "tracing.exporter", "tracing.service_name", "tracing.sample_ratio", "radec_direction"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestInvalidEnvFailsLoad(t *testing.T) {
	t.Setenv("GALOPS_ASTROMETRY_RADEC_DIRECTION", "backwards")
	_, err := Load(isolated(t))
	require.Error(t, err)
}

func TestTracingConfigConversion(t *testing.T) {
	cfg := &Config{Tracing: TracingConfig{Enabled: true, ServiceName: "svc", Exporter: "otlp", Endpoint: "collector:4317", SampleRatio: 0.25}}
	tc := cfg.TracingConfig()
	assert.True(t, tc.Enabled)
	assert.Equal(t, "svc", tc.ServiceName)
	assert.Equal(t, "otlp", tc.Exporter)
	assert.Equal(t, "collector:4317", tc.Endpoint)
	assert.Equal(t, 0.25, tc.SampleRatio)
}
