// Package config loads wikilink settings from ~/.wikilink/config.yaml and the
// environment.
//
// Precedence, lowest to highest: built-in defaults, the YAML file, WIKILINK_*
// environment variables, then CLI flags (applied by the cli package).
package config

import (
	"errors"
	"fmt"
	"maps"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rshade/wikilink/internal/engine"
	"github.com/rshade/wikilink/internal/engine/batch"
	"github.com/rshade/wikilink/internal/ingest"
	"github.com/rshade/wikilink/internal/sparql"
)

// Default values not owned by another package.
const (
	DefaultProperty   = "P245"
	DefaultInputPath  = "source.csv"
	DefaultOutputPath = "results.csv"
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "console"

	configDirName  = ".wikilink"
	configFileName = "config.yaml"
)

// Environment variables recognised by ApplyEnv.
const (
	EnvHome      = "WIKILINK_HOME"
	EnvEndpoint  = "WIKILINK_ENDPOINT"
	EnvUserAgent = "WIKILINK_USER_AGENT"
	EnvProperty  = "WIKILINK_PROPERTY"
	EnvBatchSize = "WIKILINK_BATCH_SIZE"
	EnvPause     = "WIKILINK_PAUSE"
	EnvLogLevel  = "WIKILINK_LOG_LEVEL"
	EnvLogFormat = "WIKILINK_LOG_FORMAT"
)

// Config is the complete wikilink configuration.
type Config struct {
	SPARQL  SPARQLConfig  `yaml:"sparql"`
	Resolve ResolveConfig `yaml:"resolve"`
	Input   InputConfig   `yaml:"input"`
	Output  OutputConfig  `yaml:"output"`

	// Prefixes extends or overrides the built-in URL prefix table.
	// An empty value removes a built-in mapping.
	Prefixes map[string]string `yaml:"prefixes,omitempty"`

	Logging LoggingConfig `yaml:"logging"`

	configPath string
}

// SPARQLConfig configures the remote endpoint.
type SPARQLConfig struct {
	Endpoint  string        `yaml:"endpoint"`
	UserAgent string        `yaml:"user_agent"`
	Timeout   time.Duration `yaml:"timeout"`
}

// ResolveConfig configures the batch resolver.
type ResolveConfig struct {
	Property  string        `yaml:"property"`
	BatchSize int           `yaml:"batch_size"`
	Pause     time.Duration `yaml:"pause"`
}

// InputConfig locates the input table and its columns.
type InputConfig struct {
	Path         string `yaml:"path"`
	RecordColumn string `yaml:"record_column"`
	CodeColumn   string `yaml:"code_column"`
}

// OutputConfig locates the results table.
type OutputConfig struct {
	Path string `yaml:"path"`
}

// New returns a Config populated with defaults, pointing at the default config path.
func New() *Config {
	return &Config{
		SPARQL: SPARQLConfig{
			Endpoint:  sparql.DefaultEndpoint,
			UserAgent: sparql.DefaultUserAgent,
			Timeout:   sparql.DefaultTimeout,
		},
		Resolve: ResolveConfig{
			Property:  DefaultProperty,
			BatchSize: batch.DefaultBatchSize,
			Pause:     batch.DefaultPause,
		},
		Input: InputConfig{
			Path:         DefaultInputPath,
			RecordColumn: ingest.DefaultRecordColumn,
			CodeColumn:   ingest.DefaultCodeColumn,
		},
		Output: OutputConfig{Path: DefaultOutputPath},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		configPath: DefaultConfigPath(),
	}
}

// HomeDir returns $WIKILINK_HOME, or ~/.wikilink.
func HomeDir() string {
	if dir := os.Getenv(EnvHome); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return configDirName
	}
	return filepath.Join(home, configDirName)
}

// DefaultConfigPath returns the config file location under HomeDir.
func DefaultConfigPath() string {
	return filepath.Join(HomeDir(), configFileName)
}

// Load reads the YAML file at path on top of the defaults and applies
// environment overrides. An empty path selects DefaultConfigPath. A missing
// file is not an error.
func Load(path string) (*Config, error) {
	cfg := New()
	if path != "" {
		cfg.configPath = path
	}

	data, err := os.ReadFile(cfg.configPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading config file %s: %w", cfg.configPath, err)
	default:
		if err = yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", cfg.configPath, err)
		}
	}

	if err = cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides settings from environment variables.
func (c *Config) ApplyEnv(lookupEnv func(string) (string, bool)) error {
	if v, ok := lookupEnv(EnvEndpoint); ok && v != "" {
		c.SPARQL.Endpoint = v
	}
	if v, ok := lookupEnv(EnvUserAgent); ok && v != "" {
		c.SPARQL.UserAgent = v
	}
	if v, ok := lookupEnv(EnvProperty); ok && v != "" {
		c.Resolve.Property = v
	}
	if v, ok := lookupEnv(EnvBatchSize); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvBatchSize, v, err)
		}
		c.Resolve.BatchSize = n
	}
	if v, ok := lookupEnv(EnvPause); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvPause, v, err)
		}
		c.Resolve.Pause = d
	}
	if v, ok := lookupEnv(EnvLogLevel); ok && v != "" {
		c.Logging.Level = v
	}
	if v, ok := lookupEnv(EnvLogFormat); ok && v != "" {
		c.Logging.Format = v
	}
	return nil
}

// Validate checks the configuration for values the resolver cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if u, err := url.Parse(c.SPARQL.Endpoint); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("sparql.endpoint %q is not an absolute URL", c.SPARQL.Endpoint))
	}
	if c.SPARQL.Timeout < 0 {
		errs = append(errs, fmt.Errorf("sparql.timeout must be >= 0, got %s", c.SPARQL.Timeout))
	}
	if err := sparql.ValidateProperty(c.Resolve.Property); err != nil {
		errs = append(errs, fmt.Errorf("resolve.property: %w", err))
	}
	if c.Resolve.BatchSize < batch.MinBatchSize || c.Resolve.BatchSize > batch.MaxBatchSize {
		errs = append(errs, fmt.Errorf("resolve.batch_size: %w: got %d", batch.ErrInvalidBatchSize, c.Resolve.BatchSize))
	}
	if c.Resolve.Pause < 0 {
		errs = append(errs, fmt.Errorf("resolve.pause must be >= 0, got %s", c.Resolve.Pause))
	}
	for prop := range c.Prefixes {
		if !sparql.IsPropertyID(prop) {
			errs = append(errs, fmt.Errorf("prefixes: %w: %q", sparql.ErrInvalidProperty, prop))
		}
	}

	return errors.Join(errs...)
}

// PrefixTable returns the built-in prefixes overlaid with the configured ones.
func (c *Config) PrefixTable() engine.PrefixTable {
	return engine.DefaultPrefixes().Merge(c.Prefixes)
}

// SetPrefix adds or replaces one configured prefix.
func (c *Config) SetPrefix(property, base string) {
	if c.Prefixes == nil {
		c.Prefixes = make(map[string]string)
	}
	c.Prefixes[property] = base
}

// Columns returns the configured input columns.
func (c *Config) Columns() ingest.Columns {
	return ingest.Columns{RecordID: c.Input.RecordColumn, EntityCode: c.Input.CodeColumn}
}

// ConfigPath returns the file this config is loaded from and saved to.
func (c *Config) ConfigPath() string {
	return c.configPath
}

// SetConfigPath changes the file used by Save.
func (c *Config) SetConfigPath(path string) {
	c.configPath = path
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	out := *c
	out.Prefixes = maps.Clone(c.Prefixes)
	return &out
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshalling config: %w", err)
	}
	return data, nil
}

// Save writes the configuration to ConfigPath, creating its directory.
func (c *Config) Save() error {
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err = os.MkdirAll(filepath.Dir(c.configPath), 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err = os.WriteFile(c.configPath, data, 0o600); err != nil {
		return fmt.Errorf("writing config file %s: %w", c.configPath, err)
	}
	return nil
}
