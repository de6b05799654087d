package config

import (
	"github.com/rshade/wikilink/internal/logging"
)

// LoggingConfig controls log level, format and destination.
type LoggingConfig struct {
	// Level is one of trace, debug, info, warn, error. Unknown values mean info.
	Level string `yaml:"level"`

	// Format is "console" (human readable) or "json".
	Format string `yaml:"format"`

	// File, when set, receives logs instead of stderr.
	File string `yaml:"file,omitempty"`
}

// ToLoggingConfig converts LoggingConfig to logging.Config.
//
// If File is set, Output becomes "file"; otherwise logs go to stderr.
func (lc *LoggingConfig) ToLoggingConfig() logging.Config {
	output := logging.OutputStderr
	if lc.File != "" {
		output = logging.OutputFile
	}

	return logging.Config{
		Level:  lc.Level,
		Format: lc.Format,
		Output: output,
		File:   lc.File,
	}
}
