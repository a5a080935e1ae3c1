// Package config loads the YAML-plus-environment-override configuration
// shared by the transaction core and the relational-algebra rewriter.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LockConfig holds configuration for the lock table and transaction manager.
type LockConfig struct {
	NumberOfHashBuckets   int           `yaml:"number_of_hash_buckets" env:"MANTIS_HASH_BUCKETS"`
	MaxActiveTransactions int           `yaml:"max_active_transactions" env:"MANTIS_MAX_ACTIVE_TXNS"`
	LockWaitTimeout       time.Duration `yaml:"lock_wait_timeout" env:"MANTIS_LOCK_WAIT_TIMEOUT"`
	AuditBufferSize       int           `yaml:"audit_buffer_size" env:"MANTIS_AUDIT_BUFFER_SIZE"`
	AuditCompression      string        `yaml:"audit_compression" env:"MANTIS_AUDIT_COMPRESSION"`
}

// DefaultLockConfig returns the spec-mandated defaults: 1024 buckets,
// 10 concurrent workers, no lock timeout.
func DefaultLockConfig() *LockConfig {
	return &LockConfig{
		NumberOfHashBuckets:   1024,
		MaxActiveTransactions: 10,
		LockWaitTimeout:       0, // 0 == wait forever
		AuditBufferSize:       4096,
		AuditCompression:      "none",
	}
}

// RewriterConfig holds configuration for the projection rewriter.
type RewriterConfig struct {
	AttributeDelimiter string `yaml:"attribute_delimiter" env:"MANTIS_ATTR_DELIMITER"`
	AttributeEscape    string `yaml:"attribute_escape" env:"MANTIS_ATTR_ESCAPE"`
}

// DefaultRewriterConfig returns `;` / backtick defaults.
func DefaultRewriterConfig() *RewriterConfig {
	return &RewriterConfig{
		AttributeDelimiter: ";",
		AttributeEscape:    "`",
	}
}

// Config is the top-level configuration document, loaded from a single
// YAML file with a `lock:` and `rewriter:` section.
type Config struct {
	Lock     LockConfig     `yaml:"lock"`
	Rewriter RewriterConfig `yaml:"rewriter"`
}

// DefaultConfig returns the fully-defaulted configuration.
func DefaultConfig() *Config {
	return &Config{
		Lock:     *DefaultLockConfig(),
		Rewriter: *DefaultRewriterConfig(),
	}
}

// Load reads configPath (if non-empty and present), then applies
// environment-variable overrides, mirroring the precedence used
// throughout this codebase: defaults < file < environment.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	}

	if err := cfg.loadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFromEnv() error {
	if v := os.Getenv("MANTIS_HASH_BUCKETS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MANTIS_HASH_BUCKETS: %w", err)
		}
		c.Lock.NumberOfHashBuckets = n
	}

	if v := os.Getenv("MANTIS_MAX_ACTIVE_TXNS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MANTIS_MAX_ACTIVE_TXNS: %w", err)
		}
		c.Lock.MaxActiveTransactions = n
	}

	if v := os.Getenv("MANTIS_LOCK_WAIT_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("MANTIS_LOCK_WAIT_TIMEOUT: %w", err)
		}
		c.Lock.LockWaitTimeout = d
	}

	if v := os.Getenv("MANTIS_AUDIT_BUFFER_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MANTIS_AUDIT_BUFFER_SIZE: %w", err)
		}
		c.Lock.AuditBufferSize = n
	}

	if v := os.Getenv("MANTIS_AUDIT_COMPRESSION"); v != "" {
		c.Lock.AuditCompression = strings.ToLower(v)
	}

	if v := os.Getenv("MANTIS_ATTR_DELIMITER"); v != "" {
		c.Rewriter.AttributeDelimiter = v
	}

	if v := os.Getenv("MANTIS_ATTR_ESCAPE"); v != "" {
		c.Rewriter.AttributeEscape = v
	}

	return nil
}

// Validate checks the configuration for obviously invalid values.
func (c *Config) Validate() error {
	if c.Lock.NumberOfHashBuckets <= 0 {
		return fmt.Errorf("number_of_hash_buckets must be positive, got %d", c.Lock.NumberOfHashBuckets)
	}

	if c.Lock.MaxActiveTransactions <= 0 {
		return fmt.Errorf("max_active_transactions must be positive, got %d", c.Lock.MaxActiveTransactions)
	}

	if c.Lock.LockWaitTimeout < 0 {
		return fmt.Errorf("lock_wait_timeout cannot be negative, got %s", c.Lock.LockWaitTimeout)
	}

	switch c.Lock.AuditCompression {
	case "none", "snappy", "lz4", "zstd":
	default:
		return fmt.Errorf("audit_compression must be one of none|snappy|lz4|zstd, got %q", c.Lock.AuditCompression)
	}

	if c.Rewriter.AttributeDelimiter == "" {
		return fmt.Errorf("attribute_delimiter cannot be empty")
	}

	if c.Rewriter.AttributeEscape == "" {
		return fmt.Errorf("attribute_escape cannot be empty")
	}

	return nil
}

// SaveToFile writes the configuration back out as YAML, useful for
// generating a starting point for operators.
func (c *Config) SaveToFile(configPath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
