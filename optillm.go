// Package optillm is the public facade over the adaptive invocation
// optimization layer. It wires configuration loading, logging, and the
// optimization engine together so callers can do:
//
//	client := backend.NewHTTPClient("https://llm.internal/v1/complete")
//	engine, err := optillm.New(client,
//		optillm.SetLevel(optillm.LevelAdvanced),
//		optillm.SetCacheStrategy(optillm.CacheSmart),
//	)
//	result, err := engine.Generate(ctx, prompt, params)
package optillm

import (
	"encoding/json"

	"github.com/invopop/jsonschema"

	"github.com/optillm/optillm/backend"
	"github.com/optillm/optillm/config"
	"github.com/optillm/optillm/optimize"
	"github.com/optillm/optillm/utils"
)

// Engine and result types re-exported for callers.
type (
	Engine            = optimize.Engine
	Result            = optimize.Result
	ContentAnalysis   = optimize.ContentAnalysis
	QualityAssessment = optimize.QualityAssessment
	Snapshot          = optimize.Snapshot
	Report            = optimize.Report
	CacheStats        = optimize.CacheStats
	OptimizationError = optimize.OptimizationError

	Config            = config.Config
	ConfigOption      = config.ConfigOption
	ConfigError       = config.ConfigError
	OptimizationLevel = config.OptimizationLevel
	CacheStrategy     = config.CacheStrategy

	Client         = backend.Client
	TransportError = backend.TransportError
)

const (
	LevelBasic    = config.LevelBasic
	LevelStandard = config.LevelStandard
	LevelAdvanced = config.LevelAdvanced
	LevelExpert   = config.LevelExpert

	CacheNone       = config.CacheNone
	CacheBasic      = config.CacheBasic
	CacheSmart      = config.CacheSmart
	CacheAggressive = config.CacheAggressive
)

// Config option re-exports so callers rarely need the config package.
var (
	SetLevel                = config.SetLevel
	SetCacheStrategy        = config.SetCacheStrategy
	SetMaxRetries           = config.SetMaxRetries
	SetRetryDelay           = config.SetRetryDelay
	SetCacheTTL             = config.SetCacheTTL
	SetMaxCacheEntries      = config.SetMaxCacheEntries
	SetQualityThreshold     = config.SetQualityThreshold
	SetPerformanceThreshold = config.SetPerformanceThreshold
	SetLogLevel             = config.SetLogLevel
)

// New builds an engine from OPT_* environment variables overlaid with the
// given options.
func New(client backend.Client, opts ...config.ConfigOption) (*optimize.Engine, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	config.ApplyOptions(cfg, opts...)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := utils.NewLogger(cfg.LogLevel)
	return optimize.New(client, cfg, optimize.WithLogger(logger))
}

// NewWithConfig builds an engine from an explicit Config, for callers that
// load configuration themselves (e.g. config.LoadConfigFile).
func NewWithConfig(client backend.Client, cfg *config.Config, opts ...optimize.Option) (*optimize.Engine, error) {
	return optimize.New(client, cfg, opts...)
}

// WrapWithBreaker decorates a backend client with a circuit breaker. While
// the circuit is open, generate calls fail fast with the "circuit_open"
// transport category instead of retrying against a struggling backend.
func WrapWithBreaker(client backend.Client, settings backend.BreakerSettings) backend.Client {
	return backend.NewBreakerClient(client, settings)
}

// ResultSchema returns the JSON schema of Result, for callers that forward a
// structured-output contract to the backend alongside the shaped prompt.
func ResultSchema() ([]byte, error) {
	schema := jsonschema.Reflect(&optimize.Result{})
	return json.MarshalIndent(schema, "", "  ")
}
