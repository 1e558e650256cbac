// File: optimize/context_shaper.go

package optimize

import (
	"github.com/optillm/optillm/config"
)

// ContextShaper adjusts the caller-supplied generation context. The snapshot
// argument is a copy of the rolling metrics taken at call entry; only the
// Expert tier reads it, closing the feedback loop from observed performance
// back into call shaping. Shapers never mutate the input map.
type ContextShaper interface {
	Shape(params map[string]any, snap Snapshot) map[string]any
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

// basicContextShaper copies the map, dropping nil values and empty strings.
type basicContextShaper struct{}

func (basicContextShaper) Shape(params map[string]any, _ Snapshot) map[string]any {
	shaped := make(map[string]any, len(params))
	for k, v := range params {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok && s == "" {
			continue
		}
		shaped[k] = v
	}
	return shaped
}

// standardContextShaper fills in maxLength and temperature defaults.
type standardContextShaper struct {
	inner ContextShaper
}

func (s standardContextShaper) Shape(params map[string]any, snap Snapshot) map[string]any {
	shaped := s.inner.Shape(params, snap)
	if _, ok := shaped["maxLength"]; !ok {
		shaped["maxLength"] = DefaultMaxLength
	}
	if _, ok := shaped["temperature"]; !ok {
		shaped["temperature"] = DefaultTemperature
	}
	return shaped
}

// advancedContextShaper overrides temperature and maxLength for recognized
// task types.
type advancedContextShaper struct {
	inner ContextShaper
}

func (a advancedContextShaper) Shape(params map[string]any, snap Snapshot) map[string]any {
	shaped := a.inner.Shape(params, snap)
	taskType, _ := shaped["taskType"].(string)
	if profile, ok := taskProfiles[taskType]; ok {
		shaped["temperature"] = profile.Temperature
		shaped["maxLength"] = profile.MaxLength
	}
	return shaped
}

// expertContextShaper applies the dynamic-tuning clamps driven by the metrics
// snapshot and injects the read-only performance history plus suggestions.
// The two clamps bound disjoint directions, so their order does not matter.
type expertContextShaper struct {
	inner ContextShaper
	cfg   *config.Config
}

func (e expertContextShaper) Shape(params map[string]any, snap Snapshot) map[string]any {
	shaped := e.inner.Shape(params, snap)

	if snap.AverageResponseTime > e.cfg.PerformanceThreshold {
		if maxLength, ok := asInt(shaped["maxLength"]); !ok || maxLength > SlowCallMaxLength {
			shaped["maxLength"] = SlowCallMaxLength
		}
		if temp, ok := asFloat(shaped["temperature"]); !ok || temp > SlowCallTemperature {
			shaped["temperature"] = SlowCallTemperature
		}
	}
	if snap.QualityScore < e.cfg.QualityThreshold {
		if temp, ok := asFloat(shaped["temperature"]); !ok || temp < LowQualityMinTemp {
			shaped["temperature"] = LowQualityMinTemp
		}
	}

	shaped["performanceHistory"] = map[string]any{
		"totalRequests":       snap.TotalRequests,
		"averageResponseTime": snap.AverageResponseTime.Seconds(),
		"cacheHitRate":        snap.CacheHitRate,
		"qualityScore":        snap.QualityScore,
	}

	var suggestions []string
	if snap.AverageResponseTime > SuggestionResponseTime {
		suggestions = append(suggestions, "average response time is high; enable caching or shorten prompts")
	}
	if snap.QualityScore < SuggestionQualityScore {
		suggestions = append(suggestions, "quality score is below target; consider a higher optimization level")
	}
	if snap.CacheHitRate < SuggestionHitRate {
		suggestions = append(suggestions, "cache hit rate is low; check that request keys are stable")
	}
	shaped["optimizationSuggestions"] = suggestions

	return shaped
}
