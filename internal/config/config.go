// Package config loads m2t settings from $M2T_HOME/config.yaml and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Failure policies for a batch run.
const (
	FailurePolicyFailFast = "fail-fast"
	FailurePolicyContinue = "continue"
)

// TIFF compression names.
const (
	CompressionNone    = "none"
	CompressionDeflate = "deflate"
)

// Defaults applied by New.
const (
	DefaultBlockSize = 1 << 16
	DefaultLogLevel  = "warn"
	DefaultLogFormat = "console"
)

const (
	configFileName   = "config.yaml"
	maxBlockSize     = 1 << 26
	defaultConfigDir = ".m2t"
	envHome          = "M2T_HOME"
	envLogLevel      = "M2T_LOG_LEVEL"
	envLogFormat     = "M2T_LOG_FORMAT"
	envFailurePolicy = "M2T_FAILURE_POLICY"
	outputTypeFile   = "file"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the top-level m2t configuration.
type Config struct {
	Convert ConvertConfig `yaml:"convert"`
	Logging LoggingConfig `yaml:"logging"`
}

// ConvertConfig controls the batch conversion pipeline.
type ConvertConfig struct {
	// BlockSize is the number of samples read per block from lazily loaded data.
	BlockSize int `yaml:"block_size"`
	// MaxSamples caps the statistical view used for percentiles. Zero means exact.
	MaxSamples int `yaml:"max_samples"`
	// FailurePolicy is either "fail-fast" or "continue".
	FailurePolicy string `yaml:"failure_policy"`
	// Compression is the TIFF compression: "none" or "deflate".
	Compression string `yaml:"compression"`
}

// LoggingConfig controls the process logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file,omitempty"`
}

// New returns the defaults overlaid with $M2T_HOME/config.yaml (when present)
// and environment overrides. A malformed config file is reported on stderr and ignored.
func New() *Config {
	cfg := Defaults()

	if dir, err := GetConfigDir(); err == nil {
		path := filepath.Join(dir, configFileName)
		if _, statErr := os.Stat(path); statErr == nil {
			if mergeErr := ShallowMergeYAML(cfg, path); mergeErr != nil {
				_, _ = fmt.Fprintf(os.Stderr, "Warning: ignoring config file: %v\n", mergeErr)
				cfg = Defaults()
			}
		}
	}

	cfg.applyEnv()
	return cfg
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		Convert: ConvertConfig{
			BlockSize:     DefaultBlockSize,
			FailurePolicy: FailurePolicyFailFast,
			Compression:   CompressionDeflate,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv(envLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(envLogFormat); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv(envFailurePolicy); v != "" {
		c.Convert.FailurePolicy = strings.ToLower(v)
	}
}

// Validate checks every section.
func (c *Config) Validate() error {
	return c.Convert.Validate()
}

// Validate checks the conversion settings.
func (cc ConvertConfig) Validate() error {
	if cc.BlockSize < 1 || cc.BlockSize > maxBlockSize {
		return fmt.Errorf("%w: block_size must be between 1 and %d, got %d", ErrInvalidConfig, maxBlockSize, cc.BlockSize)
	}
	if cc.MaxSamples < 0 {
		return fmt.Errorf("%w: max_samples must be >= 0, got %d", ErrInvalidConfig, cc.MaxSamples)
	}
	switch cc.FailurePolicy {
	case FailurePolicyFailFast, FailurePolicyContinue:
	default:
		return fmt.Errorf("%w: unknown failure_policy %q", ErrInvalidConfig, cc.FailurePolicy)
	}
	switch cc.Compression {
	case CompressionNone, CompressionDeflate:
	default:
		return fmt.Errorf("%w: unknown compression %q", ErrInvalidConfig, cc.Compression)
	}
	return nil
}

// Save writes the configuration to $M2T_HOME/config.yaml.
func (c *Config) Save() error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}
	dir, err := GetConfigDir()
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, configFileName), data, 0o600)
}
