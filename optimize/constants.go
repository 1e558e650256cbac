// File: optimize/constants.go

package optimize

import "time"

// Prompt shaping.
const (
	MaxPromptChars     = 500
	MaxPromptSentences = 5
)

// Context shaping defaults and clamps.
const (
	DefaultMaxLength    = 2000
	DefaultTemperature  = 0.7
	SlowCallMaxLength   = 1500
	SlowCallTemperature = 0.5
	LowQualityMinTemp   = 0.3
)

// Observability suggestion thresholds (Expert context shaping).
const (
	SuggestionResponseTime = 5 * time.Second
	SuggestionQualityScore = 0.8
	SuggestionHitRate      = 0.3
)

// Response time bucket boundaries.
const (
	FastResponseBound   = time.Second
	NormalResponseBound = 3 * time.Second
)

// Cache hit-rate exponential moving average decay.
const hitRateDecay = 0.9

// Engine quality score weights (success rate vs cache hit rate).
const (
	qualitySuccessWeight = 0.7
	qualityHitRateWeight = 0.3
)

// Quality assessment sub-score weights.
const (
	weightContent   = 0.4
	weightStructure = 0.3
	weightRelevance = 0.3
)

// Fraction of MaxCacheEntries the optimize pass shrinks the cache down to.
const cacheOptimizeTarget = 0.8

// taskProfiles are the fixed per-task overrides applied at the Advanced tier.
var taskProfiles = map[string]struct {
	Temperature float64
	MaxLength   int
}{
	"analysis":   {Temperature: 0.3, MaxLength: 3000},
	"generation": {Temperature: 0.8, MaxLength: 1500},
	"review":     {Temperature: 0.5, MaxLength: 2500},
}

// expertConstraints is the fixed constraints block injected at the Expert tier.
var expertConstraints = []string{
	"Ground every claim in the given material",
	"State assumptions explicitly",
	"Prefer precise figures over vague qualifiers",
	"Flag uncertainty instead of guessing",
}

// expertCheckpoints is the fixed quality-checkpoint block injected at the
// Expert tier.
var expertCheckpoints = []string{
	"All parts of the request are addressed",
	"Reasoning is traceable from input to conclusion",
	"Output format matches what was asked for",
	"No unsupported claims remain",
}

// analysisSkeleton is appended at the Standard tier when an analysis prompt
// lacks an enumerated-steps section.
var analysisSkeleton = []string{
	"Context and scope",
	"Key observations",
	"Detailed findings",
	"Implications",
	"Conclusion",
}
