package quotefed

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Default validation thresholds.
const (
	DefaultMinLength    = 20
	DefaultMaxLength    = 300
	DefaultNumericLimit = 0.1
)

// Config holds the tunable content-quality thresholds read by the quote
// validator. A single instance is shared by every fetch running against it;
// setter calls are visible to in-flight validations immediately. Callers
// that need isolation construct their own Config.
type Config struct {
	mu           sync.RWMutex
	minLength    int
	maxLength    int
	numericLimit float64
}

// NewConfig creates a Config with the default thresholds.
func NewConfig() *Config {
	return &Config{
		minLength:    DefaultMinLength,
		maxLength:    DefaultMaxLength,
		numericLimit: DefaultNumericLimit,
	}
}

// SetMinLength sets the minimum accepted quote length in characters.
func (c *Config) SetMinLength(n int) {
	c.mu.Lock()
	c.minLength = n
	c.mu.Unlock()
}

// SetMaxLength sets the maximum accepted quote length in characters.
func (c *Config) SetMaxLength(n int) {
	c.mu.Lock()
	c.maxLength = n
	c.mu.Unlock()
}

// SetNumericLimit sets the maximum accepted digit ratio. Values are clamped
// to the [0, 1] range.
func (c *Config) SetNumericLimit(limit float64) {
	if limit < 0 {
		limit = 0
	}
	if limit > 1 {
		limit = 1
	}
	c.mu.Lock()
	c.numericLimit = limit
	c.mu.Unlock()
}

// MinLength returns the current minimum length threshold.
func (c *Config) MinLength() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.minLength
}

// MaxLength returns the current maximum length threshold.
func (c *Config) MaxLength() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.maxLength
}

// NumericLimit returns the current digit-ratio threshold.
func (c *Config) NumericLimit() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.numericLimit
}

// snapshot returns all three thresholds under one lock acquisition so a
// validation sees a consistent set.
func (c *Config) snapshot() (minLength, maxLength int, numericLimit float64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.minLength, c.maxLength, c.numericLimit
}

// FileConfig represents the structure of ~/.quotefed/config.yaml.
type FileConfig struct {
	Thresholds struct {
		MinLength    int     `yaml:"min_length"`
		MaxLength    int     `yaml:"max_length"`
		NumericLimit float64 `yaml:"numeric_limit"`
	} `yaml:"thresholds"`
	Wiki struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"wiki"`
}

// LoadConfigFile loads configuration from ~/.quotefed/config.yaml. Returns
// nil if the file doesn't exist (not an error). Returns error if the file
// exists but cannot be parsed.
func LoadConfigFile() (*FileConfig, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}

	return LoadConfigFileFrom(filepath.Join(homeDir, ".quotefed", "config.yaml"))
}

// LoadConfigFileFrom loads configuration from an explicit path, with the
// same missing-file semantics as LoadConfigFile.
func LoadConfigFileFrom(path string) (*FileConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil // File doesn't exist -- not an error
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// ApplyFile overrides thresholds with any non-zero values from a loaded
// config file. A nil file is a no-op.
func (c *Config) ApplyFile(fc *FileConfig) {
	if fc == nil {
		return
	}
	if fc.Thresholds.MinLength > 0 {
		c.SetMinLength(fc.Thresholds.MinLength)
	}
	if fc.Thresholds.MaxLength > 0 {
		c.SetMaxLength(fc.Thresholds.MaxLength)
	}
	if fc.Thresholds.NumericLimit > 0 {
		c.SetNumericLimit(fc.Thresholds.NumericLimit)
	}
}
