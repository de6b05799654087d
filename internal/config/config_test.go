package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/wikilink/internal/config"
	"github.com/rshade/wikilink/internal/engine/batch"
	"github.com/rshade/wikilink/internal/logging"
	"github.com/rshade/wikilink/internal/sparql"
)

// isolateEnv points WIKILINK_HOME at a temp dir and clears overrides.
func isolateEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv(config.EnvHome, home)
	for _, key := range []string{
		config.EnvEndpoint, config.EnvUserAgent, config.EnvProperty,
		config.EnvBatchSize, config.EnvPause, config.EnvLogLevel, config.EnvLogFormat,
	} {
		t.Setenv(key, "")
	}
	return home
}

func TestNew_Defaults(t *testing.T) {
	home := isolateEnv(t)

	cfg := config.New()
	assert.Equal(t, sparql.DefaultEndpoint, cfg.SPARQL.Endpoint)
	assert.Equal(t, "P245", cfg.Resolve.Property)
	assert.Equal(t, 50, cfg.Resolve.BatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.Resolve.Pause)
	assert.Equal(t, "source.csv", cfg.Input.Path)
	assert.Equal(t, "results.csv", cfg.Output.Path)
	assert.Equal(t, "recordnumber", cfg.Columns().RecordID)
	assert.Equal(t, "qcode", cfg.Columns().EntityCode)
	assert.Equal(t, filepath.Join(home, "config.yaml"), cfg.ConfigPath())
	require.NoError(t, cfg.Validate())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	isolateEnv(t)

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.New().Resolve, cfg.Resolve)
}

func TestLoad_YAMLOverlay(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
resolve:
  property: P214
  pause: 2s
sparql:
  timeout: 15s
prefixes:
  P350: https://www.rijksmuseum.nl/collectie/
  P650: ""
`), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "P214", cfg.Resolve.Property)
	assert.Equal(t, 2*time.Second, cfg.Resolve.Pause)
	assert.Equal(t, 50, cfg.Resolve.BatchSize, "unset keys keep defaults")
	assert.Equal(t, 15*time.Second, cfg.SPARQL.Timeout)
	assert.Equal(t, sparql.DefaultEndpoint, cfg.SPARQL.Endpoint)

	table := cfg.PrefixTable()
	assert.Equal(t, "https://www.rijksmuseum.nl/collectie/", table.Base("P350"))
	assert.Empty(t, table.Base("P650"))
	assert.Equal(t, "http://vocab.getty.edu/ulan/", table.Base("P245"))
}

func TestLoad_InvalidYAML(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("resolve: [unterminated"), 0o600))

	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolateEnv(t)
	t.Setenv(config.EnvEndpoint, "http://localhost:9999/sparql")
	t.Setenv(config.EnvProperty, "P1871")
	t.Setenv(config.EnvBatchSize, "25")
	t.Setenv(config.EnvPause, "1s")
	t.Setenv(config.EnvLogLevel, "debug")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9999/sparql", cfg.SPARQL.Endpoint)
	assert.Equal(t, "P1871", cfg.Resolve.Property)
	assert.Equal(t, 25, cfg.Resolve.BatchSize)
	assert.Equal(t, time.Second, cfg.Resolve.Pause)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_InvalidEnv(t *testing.T) {
	isolateEnv(t)
	t.Setenv(config.EnvBatchSize, "lots")
	_, err := config.Load("")
	assert.Error(t, err)

	t.Setenv(config.EnvBatchSize, "")
	t.Setenv(config.EnvPause, "soon")
	_, err = config.Load("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	isolateEnv(t)

	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"bad endpoint", func(c *config.Config) { c.SPARQL.Endpoint = "not a url" }, "sparql.endpoint"},
		{"negative timeout", func(c *config.Config) { c.SPARQL.Timeout = -time.Second }, "sparql.timeout"},
		{"bad property", func(c *config.Config) { c.Resolve.Property = "ulan" }, "resolve.property"},
		{"zero batch", func(c *config.Config) { c.Resolve.BatchSize = 0 }, "resolve.batch_size"},
		{"huge batch", func(c *config.Config) { c.Resolve.BatchSize = 5000 }, "resolve.batch_size"},
		{"negative pause", func(c *config.Config) { c.Resolve.Pause = -time.Second }, "resolve.pause"},
		{"bad prefix key", func(c *config.Config) { c.SetPrefix("ULAN", "http://x/") }, "prefixes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	cfg := config.New()
	cfg.Resolve.BatchSize = 0
	assert.ErrorIs(t, cfg.Validate(), batch.ErrInvalidBatchSize)
}

func TestSaveAndReload(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := config.New()
	cfg.SetConfigPath(path)
	cfg.Resolve.Pause = 750 * time.Millisecond
	cfg.SetPrefix("P350", "https://www.rijksmuseum.nl/collectie/")
	require.NoError(t, cfg.Save())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	reloaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Resolve, reloaded.Resolve)
	assert.Equal(t, cfg.SPARQL, reloaded.SPARQL)
	assert.Equal(t, cfg.Prefixes, reloaded.Prefixes)
}

func TestClone(t *testing.T) {
	isolateEnv(t)
	cfg := config.New()
	cfg.SetPrefix("P350", "a")

	clone := cfg.Clone()
	clone.SetPrefix("P350", "b")
	clone.Resolve.Property = "P214"

	assert.Equal(t, "a", cfg.Prefixes["P350"])
	assert.Equal(t, "P245", cfg.Resolve.Property)
}

func TestToLoggingConfig(t *testing.T) {
	lc := config.LoggingConfig{Level: "warn", Format: "json"}
	out := lc.ToLoggingConfig()
	assert.Equal(t, logging.OutputStderr, out.Output)
	assert.Equal(t, "warn", out.Level)

	lc.File = "/tmp/wikilink.log"
	out = lc.ToLoggingConfig()
	assert.Equal(t, logging.OutputFile, out.Output)
	assert.Equal(t, "/tmp/wikilink.log", out.File)
}
