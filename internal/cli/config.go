package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	tsspec "github.com/reoring/tsspec"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is read when --config is not given. A missing default
// file is not an error.
const DefaultConfigPath = ".tsspec.yaml"

// Config holds the CLI settings a config file may set. Flags given on the
// command line override them.
type Config struct {
	Language      string `yaml:"language"`
	FailFast      bool   `yaml:"fail_fast"`
	MaxDepth      int    `yaml:"max_depth"`
	MaxBytes      int64  `yaml:"max_bytes"`
	DuplicateKeys string `yaml:"duplicate_keys"`
	LogLevel      string `yaml:"log_level"`
	Color         *bool  `yaml:"color"`
	MetricsFile   string `yaml:"metrics_file"`
}

// DefaultConfig mirrors tsspec.DefaultParseOpt.
func DefaultConfig() Config {
	return Config{Language: "en", MaxDepth: 64, DuplicateKeys: "error", LogLevel: "warn"}
}

// LoadConfig reads path over the defaults. Unknown keys are rejected.
func LoadConfig(path string, required bool) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.DuplicateKeys {
	case "ignore", "warn", "error":
	default:
		return fmt.Errorf("duplicate_keys must be ignore, warn or error, got %q", c.DuplicateKeys)
	}
	switch c.Language {
	case "en", "ja":
	default:
		return fmt.Errorf("language must be en or ja, got %q", c.Language)
	}
	if c.MaxDepth < 0 || c.MaxBytes < 0 {
		return errors.New("max_depth and max_bytes must not be negative")
	}
	return nil
}

// ParseOpt converts the decoding settings.
func (c Config) ParseOpt() tsspec.ParseOpt {
	return tsspec.ParseOpt{
		Strictness: tsspec.Strictness{OnDuplicateKey: tsspec.ParseSeverity(c.DuplicateKeys)},
		MaxDepth:   c.MaxDepth,
		MaxBytes:   c.MaxBytes,
		FailFast:   c.FailFast,
	}
}
