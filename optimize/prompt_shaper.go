// File: optimize/prompt_shaper.go

package optimize

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// PromptShaper transforms a raw prompt before it reaches the backend. Shapers
// are pure text functions; each tier's shaper wraps the previous tier's, so a
// higher tier always applies every lower-tier transformation first.
type PromptShaper interface {
	Shape(prompt string) string
}

var (
	sentenceSplitRe  = regexp.MustCompile(`[^.!?]+[.!?]*`)
	numberedStepsRe  = regexp.MustCompile(`(?m)^\s*\d+[.)]\s`)
	inlineNumberedRe = regexp.MustCompile(`\b\d+[.)]\s`)
)

func splitSentences(text string) []string {
	raw := sentenceSplitRe.FindAllString(text, -1)
	segments := make([]string, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

func hasNumberedSteps(text string) bool {
	return numberedStepsRe.MatchString(text) || inlineNumberedRe.MatchString(text)
}

func containsAny(text string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}

// basicPromptShaper truncates runaway prompts: anything over MaxPromptChars
// with more than MaxPromptSentences sentence-like segments keeps only the
// first MaxPromptSentences.
type basicPromptShaper struct{}

func (basicPromptShaper) Shape(prompt string) string {
	if len(prompt) <= MaxPromptChars {
		return prompt
	}
	segments := splitSentences(prompt)
	if len(segments) <= MaxPromptSentences {
		return prompt
	}
	return strings.Join(segments[:MaxPromptSentences], " ")
}

// standardPromptShaper adds an analysis skeleton and a structured-output
// request on top of the Basic truncation.
type standardPromptShaper struct {
	inner PromptShaper
}

func (s standardPromptShaper) Shape(prompt string) string {
	shaped := s.inner.Shape(prompt)
	lower := strings.ToLower(shaped)

	if containsAny(lower, "analysis", "analyze", "analyse") && !hasNumberedSteps(shaped) {
		var sb strings.Builder
		sb.WriteString(shaped)
		sb.WriteString("\n\nStructure the analysis as follows:\n")
		for i, step := range analysisSkeleton {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, step)
		}
		shaped = sb.String()
		lower = strings.ToLower(shaped)
	}

	if !containsAny(lower, "json", "structured", "format") {
		shaped += "\n\nReturn the answer in a structured format."
	}
	return shaped
}

// advancedPromptShaper adds role framing, a quality-assurance clause, and an
// example request.
type advancedPromptShaper struct {
	inner PromptShaper
}

func (a advancedPromptShaper) Shape(prompt string) string {
	shaped := a.inner.Shape(prompt)
	lower := strings.ToLower(shaped)

	if !containsAny(lower, "act as", "you are") {
		shaped = "Act as a professional analyst with deep domain expertise. " + shaped
	}

	shaped += "\n\nReview the answer for accuracy and completeness before responding."

	if !strings.Contains(lower, "example") {
		shaped += "\n\nInclude a concrete example to illustrate the answer."
	}
	return shaped
}

// expertPromptShaper injects temporal context plus the fixed constraints and
// quality-checkpoint blocks. The clock is injectable so shaping stays
// deterministic under test.
type expertPromptShaper struct {
	inner PromptShaper
	now   func() time.Time
}

func (e expertPromptShaper) Shape(prompt string) string {
	shaped := e.inner.Shape(prompt)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Current date: %s. Treat this as a production task where accuracy matters.\n\n", e.now().Format("2006-01-02"))
	sb.WriteString(shaped)

	sb.WriteString("\n\nConstraints:\n")
	for _, c := range expertConstraints {
		sb.WriteString("- ")
		sb.WriteString(c)
		sb.WriteString("\n")
	}

	sb.WriteString("\nQuality checkpoints:\n")
	for _, c := range expertCheckpoints {
		sb.WriteString("- ")
		sb.WriteString(c)
		sb.WriteString("\n")
	}
	return sb.String()
}
