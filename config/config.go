// File: config/config.go

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/optillm/optillm/utils"
)

// OptimizationLevel selects the strategy bundle the engine runs with.
// Levels are ordered; each level is a strict superset of the previous one.
type OptimizationLevel int

const (
	LevelBasic OptimizationLevel = iota
	LevelStandard
	LevelAdvanced
	LevelExpert
)

func (l OptimizationLevel) String() string {
	switch l {
	case LevelBasic:
		return "basic"
	case LevelStandard:
		return "standard"
	case LevelAdvanced:
		return "advanced"
	case LevelExpert:
		return "expert"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

func (l *OptimizationLevel) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "basic":
		*l = LevelBasic
	case "standard":
		*l = LevelStandard
	case "advanced":
		*l = LevelAdvanced
	case "expert":
		*l = LevelExpert
	default:
		return fmt.Errorf("invalid optimization level: %s", string(text))
	}
	return nil
}

// CacheStrategy controls how generated results are cached.
type CacheStrategy int

const (
	CacheNone CacheStrategy = iota
	CacheBasic
	CacheSmart
	CacheAggressive
)

func (s CacheStrategy) String() string {
	switch s {
	case CacheNone:
		return "none"
	case CacheBasic:
		return "basic"
	case CacheSmart:
		return "smart"
	case CacheAggressive:
		return "aggressive"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

func (s *CacheStrategy) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "none":
		*s = CacheNone
	case "basic":
		*s = CacheBasic
	case "smart":
		*s = CacheSmart
	case "aggressive":
		*s = CacheAggressive
	default:
		return fmt.Errorf("invalid cache strategy: %s", string(text))
	}
	return nil
}

// Config holds every tunable of the optimization engine. Instances are treated
// as immutable once handed to an engine; UpdateConfig swaps the whole value.
type Config struct {
	Level                OptimizationLevel `env:"OPT_LEVEL" envDefault:"standard"`
	CacheStrategy        CacheStrategy     `env:"OPT_CACHE_STRATEGY" envDefault:"basic"`
	MaxRetries           int               `env:"OPT_MAX_RETRIES" envDefault:"3" validate:"min=0"`
	RetryDelay           time.Duration     `env:"OPT_RETRY_DELAY" envDefault:"1s" validate:"gt=0"`
	CacheTTL             time.Duration     `env:"OPT_CACHE_TTL" envDefault:"1h" validate:"gt=0"`
	MaxCacheEntries      int               `env:"OPT_MAX_CACHE_ENTRIES" envDefault:"1000" validate:"gt=0"`
	QualityThreshold     float64           `env:"OPT_QUALITY_THRESHOLD" envDefault:"0.7" validate:"min=0,max=1"`
	PerformanceThreshold time.Duration     `env:"OPT_PERFORMANCE_THRESHOLD" envDefault:"2s" validate:"gt=0"`
	LogLevel             utils.LogLevel    `env:"OPT_LOG_LEVEL" envDefault:"WARN"`
}

var validate = validator.New()

// ConfigError reports an invalid configuration value. The engine rejects the
// offending Config and keeps the previous one active.
type ConfigError struct {
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ConfigError: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("ConfigError: %s", e.Message)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Validate checks the Config against its struct tags plus the range rules the
// tags cannot express.
func (c *Config) Validate() error {
	if c.Level < LevelBasic || c.Level > LevelExpert {
		return &ConfigError{Message: fmt.Sprintf("unknown optimization level %d", int(c.Level))}
	}
	if c.CacheStrategy < CacheNone || c.CacheStrategy > CacheAggressive {
		return &ConfigError{Message: fmt.Sprintf("unknown cache strategy %d", int(c.CacheStrategy))}
	}
	if err := validate.Struct(c); err != nil {
		return &ConfigError{Message: "invalid configuration", Err: err}
	}
	return nil
}

// NewConfig returns a Config with the package defaults.
func NewConfig() *Config {
	return &Config{
		Level:                LevelStandard,
		CacheStrategy:        CacheBasic,
		MaxRetries:           3,
		RetryDelay:           time.Second,
		CacheTTL:             time.Hour,
		MaxCacheEntries:      1000,
		QualityThreshold:     0.7,
		PerformanceThreshold: 2 * time.Second,
		LogLevel:             utils.LogLevelWarn,
	}
}

// LoadConfig builds a Config from OPT_* environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, &ConfigError{Message: "failed to parse environment", Err: err}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// fileConfig mirrors Config with the string forms yaml.v3 can decode.
type fileConfig struct {
	Level                string  `yaml:"level"`
	CacheStrategy        string  `yaml:"cache_strategy"`
	MaxRetries           *int    `yaml:"max_retries"`
	RetryDelay           string  `yaml:"retry_delay"`
	CacheTTL             string  `yaml:"cache_ttl"`
	MaxCacheEntries      *int    `yaml:"max_cache_entries"`
	QualityThreshold     *float64 `yaml:"quality_threshold"`
	PerformanceThreshold string  `yaml:"performance_threshold"`
	LogLevel             string  `yaml:"log_level"`
}

// LoadConfigFile reads a YAML config file. Missing keys keep their defaults.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Message: "failed to read config file", Err: err}
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, &ConfigError{Message: "failed to parse config file", Err: err}
	}

	cfg := NewConfig()
	if fc.Level != "" {
		if err := cfg.Level.UnmarshalText([]byte(fc.Level)); err != nil {
			return nil, &ConfigError{Message: "invalid level in config file", Err: err}
		}
	}
	if fc.CacheStrategy != "" {
		if err := cfg.CacheStrategy.UnmarshalText([]byte(fc.CacheStrategy)); err != nil {
			return nil, &ConfigError{Message: "invalid cache strategy in config file", Err: err}
		}
	}
	if fc.MaxRetries != nil {
		cfg.MaxRetries = *fc.MaxRetries
	}
	if fc.MaxCacheEntries != nil {
		cfg.MaxCacheEntries = *fc.MaxCacheEntries
	}
	if fc.QualityThreshold != nil {
		cfg.QualityThreshold = *fc.QualityThreshold
	}
	for _, d := range []struct {
		raw  string
		dst  *time.Duration
		name string
	}{
		{fc.RetryDelay, &cfg.RetryDelay, "retry_delay"},
		{fc.CacheTTL, &cfg.CacheTTL, "cache_ttl"},
		{fc.PerformanceThreshold, &cfg.PerformanceThreshold, "performance_threshold"},
	} {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return nil, &ConfigError{Message: "invalid " + d.name + " in config file", Err: err}
		}
		*d.dst = parsed
	}
	if fc.LogLevel != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(fc.LogLevel)); err != nil {
			return nil, &ConfigError{Message: "invalid log level in config file", Err: err}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

type ConfigOption func(*Config)

func SetLevel(level OptimizationLevel) ConfigOption {
	return func(c *Config) {
		c.Level = level
	}
}

func SetCacheStrategy(strategy CacheStrategy) ConfigOption {
	return func(c *Config) {
		c.CacheStrategy = strategy
	}
}

func SetMaxRetries(maxRetries int) ConfigOption {
	return func(c *Config) {
		c.MaxRetries = maxRetries
	}
}

func SetRetryDelay(delay time.Duration) ConfigOption {
	return func(c *Config) {
		c.RetryDelay = delay
	}
}

func SetCacheTTL(ttl time.Duration) ConfigOption {
	return func(c *Config) {
		c.CacheTTL = ttl
	}
}

func SetMaxCacheEntries(n int) ConfigOption {
	return func(c *Config) {
		c.MaxCacheEntries = n
	}
}

func SetQualityThreshold(threshold float64) ConfigOption {
	return func(c *Config) {
		c.QualityThreshold = threshold
	}
}

func SetPerformanceThreshold(threshold time.Duration) ConfigOption {
	return func(c *Config) {
		c.PerformanceThreshold = threshold
	}
}

func SetLogLevel(level utils.LogLevel) ConfigOption {
	return func(c *Config) {
		c.LogLevel = level
	}
}

func ApplyOptions(cfg *Config, options ...ConfigOption) {
	for _, option := range options {
		option(cfg)
	}
}
