// File: optimize/tiers.go

package optimize

import (
	"time"

	"github.com/pkoukk/tiktoken-go"

	"github.com/optillm/optillm/config"
)

// strategyBundle is the set of strategies active at one optimization level.
// Bundles are built once per config and swapped atomically on UpdateConfig;
// in-flight calls keep whichever bundle they captured at entry.
type strategyBundle struct {
	level         config.OptimizationLevel
	prompt        PromptShaper
	context       ContextShaper
	processor     ResponseProcessor
	assessor      QualityAssessor
	cacheActive   bool
	monitorActive bool
}

// bundleDeps carries the shared collaborators the tier strategies close over.
type bundleDeps struct {
	now      func() time.Time
	snapshot func() Snapshot
	encoder  *tiktoken.Tiktoken
}

// newStrategyBundle is the tier catalogue: a pure table lookup from level to
// strategy set. Each level strictly adds behavior by decorating the previous
// level's strategies.
func newStrategyBundle(cfg *config.Config, deps bundleDeps) strategyBundle {
	bundle := strategyBundle{level: cfg.Level}

	var prompt PromptShaper = basicPromptShaper{}
	var contextShaper ContextShaper = basicContextShaper{}
	var processor ResponseProcessor = basicProcessor{}

	if cfg.Level >= config.LevelStandard {
		prompt = standardPromptShaper{inner: prompt}
		contextShaper = standardContextShaper{inner: contextShaper}
		processor = standardProcessor{inner: processor}
		bundle.assessor = standardAssessor{}
	}
	if cfg.Level >= config.LevelAdvanced {
		prompt = advancedPromptShaper{inner: prompt}
		contextShaper = advancedContextShaper{inner: contextShaper}
		processor = advancedProcessor{inner: processor, now: deps.now}
		bundle.assessor = advancedAssessor{inner: bundle.assessor, now: deps.now}
		bundle.cacheActive = true
	}
	if cfg.Level >= config.LevelExpert {
		prompt = expertPromptShaper{inner: prompt, now: deps.now}
		contextShaper = expertContextShaper{inner: contextShaper, cfg: cfg}
		processor = expertProcessor{inner: processor, encoder: deps.encoder}
		bundle.assessor = expertAssessor{inner: bundle.assessor, snapshot: deps.snapshot}
		bundle.monitorActive = true
	}

	bundle.prompt = prompt
	bundle.context = contextShaper
	bundle.processor = processor
	return bundle
}

// componentNames lists the strategies active in this bundle for reporting.
func (b strategyBundle) componentNames() []string {
	names := []string{"prompt_shaper", "context_shaper", "response_processor"}
	if b.assessor != nil {
		names = append(names, "quality_assessor")
	}
	if b.cacheActive {
		names = append(names, "cache_manager")
	}
	if b.monitorActive {
		names = append(names, "performance_monitor")
	}
	return names
}
