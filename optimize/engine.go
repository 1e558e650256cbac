// File: optimize/engine.go

// Package optimize implements the adaptive invocation-optimization layer: it
// shapes prompts and generation context per optimization level, caches
// results, absorbs transient backend failures with exponential backoff, and
// feeds observed latency and quality back into how future calls are shaped.
package optimize

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkoukk/tiktoken-go"
	"golang.org/x/time/rate"

	"github.com/optillm/optillm/backend"
	"github.com/optillm/optillm/config"
	"github.com/optillm/optillm/utils"
)

// Engine owns the configuration, the result cache, and the rolling metrics
// for one backend client. Multiple engines may coexist with independent
// state; Generate is safe for concurrent use.
type Engine struct {
	mu      sync.RWMutex // guards cfg and bundle
	cfg     *config.Config
	bundle  strategyBundle
	cache   *resultCache
	metrics *performanceTracker
	client  backend.Client
	limiter *rate.Limiter
	logger  utils.Logger
	now     func() time.Time
	encoder *tiktoken.Tiktoken
}

type Option func(*Engine)

func WithLogger(logger utils.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithClock injects the time source. Tests use it to control TTL expiry and
// the Expert tier's temporal prompt context.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithRateLimit throttles backend invocations. Cache hits are not limited.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(e *Engine) {
		e.limiter = rate.NewLimiter(limit, burst)
	}
}

// WithTokenEncoding enables exact token counts in the Expert content
// analysis. Without it the analysis falls back to a word-based estimate.
func WithTokenEncoding(model string) Option {
	return func(e *Engine) {
		encoder, err := tiktoken.EncodingForModel(model)
		if err != nil {
			e.logger.Warn("Failed to load token encoding, using estimates", "model", model, "error", err)
			return
		}
		e.encoder = encoder
	}
}

// New builds an engine for the given backend client. The config is validated
// up front; an invalid one is rejected with a ConfigError.
func New(client backend.Client, cfg *config.Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:     cfg,
		client:  client,
		metrics: newPerformanceTracker(),
		logger:  utils.NewLogger(cfg.LogLevel),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.cache = newResultCache(cfg.CacheStrategy, cfg.CacheTTL, cfg.MaxCacheEntries, e.now)
	e.bundle = newStrategyBundle(cfg, e.bundleDeps())
	return e, nil
}

func (e *Engine) bundleDeps() bundleDeps {
	return bundleDeps{
		now:      e.now,
		snapshot: e.metrics.Snapshot,
		encoder:  e.encoder,
	}
}

// Generate runs one optimized call: cache lookup, shaping, invocation with
// backoff, processing, assessment, cache store, metrics update. The engine
// lock is never held across the backend call or a retry delay.
func (e *Engine) Generate(ctx context.Context, prompt string, params map[string]any) (Result, error) {
	start := e.now()
	requestID := uuid.NewString()

	e.mu.RLock()
	cfg := e.cfg
	bundle := e.bundle
	limiter := e.limiter
	e.mu.RUnlock()

	e.logger.Debug("Generate started",
		"request_id", requestID,
		"level", cfg.Level.String(),
		"prompt_length", len(prompt))

	cacheActive := bundle.cacheActive && cfg.CacheStrategy != config.CacheNone
	var key string
	if cacheActive {
		key = cacheKey(prompt, params)
		if cached, ok := e.cache.get(key); ok {
			e.metrics.RecordSuccess(e.now().Sub(start), true)
			if bundle.monitorActive {
				e.metrics.RunMonitorPass()
			}
			e.logger.Debug("Cache hit", "request_id", requestID)
			return cached, nil
		}
	}

	shapedPrompt := bundle.prompt.Shape(prompt)
	shapedParams := bundle.context.Shape(params, e.metrics.Snapshot())

	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			e.metrics.RecordFailure(backend.CategoryTimeout)
			return Result{}, &OptimizationError{Category: backend.CategoryTimeout, Err: err}
		}
	}

	invoker := &backoffInvoker{
		client:     e.client,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		logger:     e.logger,
	}
	raw, attempts, err := invoker.invoke(ctx, shapedPrompt, shapedParams)
	if err != nil {
		category := backend.Categorize(err)
		e.metrics.RecordFailure(category)
		if bundle.monitorActive {
			e.metrics.RunMonitorPass()
		}
		e.logger.Error("Generation failed",
			"request_id", requestID,
			"attempts", attempts,
			"category", category,
			"error", err)
		return Result{}, &OptimizationError{Attempts: attempts, Category: category, Err: err}
	}

	result := bundle.processor.Process(raw)
	if bundle.assessor != nil {
		assessment := bundle.assessor.Assess(result)
		result.Assessment = &assessment
	}

	if cacheActive {
		e.cache.set(key, result)
	}

	elapsed := e.now().Sub(start)
	e.metrics.RecordSuccess(elapsed, false)
	if bundle.monitorActive {
		e.metrics.RunMonitorPass()
	}

	e.logger.Debug("Generate complete",
		"request_id", requestID,
		"attempts", attempts,
		"elapsed", elapsed,
		"format", result.Format)
	return result, nil
}

// UpdateConfig atomically swaps the configuration and re-derives the active
// strategy bundle. An invalid config is rejected with a ConfigError and the
// previous one stays active. Cache entries survive the swap.
func (e *Engine) UpdateConfig(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	e.mu.Lock()
	e.cfg = cfg
	e.bundle = newStrategyBundle(cfg, e.bundleDeps())
	e.mu.Unlock()

	e.cache.reconfigure(cfg.CacheStrategy, cfg.CacheTTL, cfg.MaxCacheEntries)
	e.logger.Info("Configuration updated",
		"level", cfg.Level.String(),
		"cache_strategy", cfg.CacheStrategy.String())
	return nil
}

// Config returns the active configuration.
func (e *Engine) Config() *config.Config {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cfg
}

// Report returns a read-only snapshot of the engine state.
func (e *Engine) Report() Report {
	e.mu.RLock()
	cfg := e.cfg
	bundle := e.bundle
	e.mu.RUnlock()

	snap := e.metrics.Snapshot()
	return Report{
		Level:            cfg.Level.String(),
		CacheStrategy:    cfg.CacheStrategy.String(),
		Metrics:          snap,
		CacheStats:       e.cache.stats(snap.CacheHitRate),
		ActiveComponents: bundle.componentNames(),
	}
}

// CacheStatistics returns the current cache view.
func (e *Engine) CacheStatistics() CacheStats {
	return e.cache.stats(e.metrics.Snapshot().CacheHitRate)
}

// ClearCache empties the cache. Metrics are unaffected.
func (e *Engine) ClearCache() {
	e.cache.clear()
	e.logger.Info("Cache cleared")
}

// OptimizeCache removes expired entries and shrinks the cache below capacity.
// Callers schedule it; the engine never runs it automatically.
func (e *Engine) OptimizeCache() int {
	removed := e.cache.optimize()
	e.logger.Debug("Cache optimized", "removed", removed)
	return removed
}

// Metrics returns a snapshot of the rolling performance aggregate.
func (e *Engine) Metrics() Snapshot {
	return e.metrics.Snapshot()
}
