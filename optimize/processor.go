// File: optimize/processor.go

package optimize

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/pkoukk/tiktoken-go"
)

// ResponseProcessor turns raw backend output into a Result. Like the shapers,
// each tier's processor wraps the previous tier's. Processing never reads the
// cache or the metrics; any feedback into shaping happens only through the
// metrics the engine records.
type ResponseProcessor interface {
	Process(raw string) Result
}

// textOf flattens a Result's content back to text for analysis.
func textOf(result Result) string {
	if s, ok := result.Content.(string); ok {
		return s
	}
	encoded, err := json.Marshal(result.Content)
	if err != nil {
		return ""
	}
	return string(encoded)
}

// scoreContent is the shared quality heuristic over response text, in [0,1].
func scoreContent(text string) float64 {
	score := 0.5
	switch n := len(text); {
	case n >= 800:
		score += 0.2
	case n >= 200:
		score += 0.1
	case n < 50:
		score -= 0.2
	}

	lower := strings.ToLower(text)
	if hasNumberedSteps(text) || strings.Contains(text, "\n-") {
		score += 0.15
	}
	if strings.Contains(lower, "example") {
		score += 0.1
	}
	if containsAny(lower, "conclusion", "summary", "in short") {
		score += 0.05
	}

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// basicProcessor passes the raw text through, tagged as text.
type basicProcessor struct{}

func (basicProcessor) Process(raw string) Result {
	return Result{
		Content:   raw,
		Format:    FormatText,
		Processed: true,
	}
}

// standardProcessor attempts a JSON parse. Malformed input is not an error:
// the result silently stays in text format.
type standardProcessor struct {
	inner ResponseProcessor
}

func (s standardProcessor) Process(raw string) Result {
	result := s.inner.Process(raw)

	trimmed := strings.TrimSpace(raw)
	var parsed any
	if err := json.Unmarshal([]byte(trimmed), &parsed); err == nil {
		result.Content = parsed
		result.Format = FormatJSON
	}
	return result
}

// advancedProcessor annotates the result with a quality score and the
// processing timestamp.
type advancedProcessor struct {
	inner ResponseProcessor
	now   func() time.Time
}

func (a advancedProcessor) Process(raw string) Result {
	result := a.inner.Process(raw)
	score := scoreContent(textOf(result))
	result.QualityScore = &score
	result.ProcessedAt = a.now()
	return result
}

// expertProcessor adds content analysis and improvement suggestions. The
// token count uses the configured encoding when one is available and falls
// back to a word-based estimate otherwise.
type expertProcessor struct {
	inner   ResponseProcessor
	encoder *tiktoken.Tiktoken
}

func (e expertProcessor) Process(raw string) Result {
	result := e.inner.Process(raw)
	text := textOf(result)

	analysis := analyzeContent(text, e.encoder)
	result.ContentAnalysis = &analysis
	result.ImprovementSuggestions = suggestImprovements(text, analysis)
	return result
}

func analyzeContent(text string, encoder *tiktoken.Tiktoken) ContentAnalysis {
	words := strings.Fields(text)
	sentences := splitSentences(text)

	avgLen := 0.0
	if len(sentences) > 0 {
		avgLen = float64(len(words)) / float64(len(sentences))
	}

	tokens := 0
	if encoder != nil {
		tokens = len(encoder.Encode(text, nil, nil))
	} else {
		// Rough estimate: English text runs about 4/3 tokens per word.
		tokens = len(words) * 4 / 3
	}

	lower := strings.ToLower(text)
	return ContentAnalysis{
		WordCount:         len(words),
		SentenceCount:     len(sentences),
		TokenCount:        tokens,
		AvgSentenceLength: avgLen,
		HasStructure:      hasNumberedSteps(text) || strings.Contains(text, "\n-"),
		HasExamples:       strings.Contains(lower, "example"),
	}
}

func suggestImprovements(text string, analysis ContentAnalysis) []string {
	var suggestions []string
	if len(text) < 200 {
		suggestions = append(suggestions, "Expand the answer with more supporting detail")
	}
	if !analysis.HasStructure {
		suggestions = append(suggestions, "Organize the answer with numbered points or sections")
	}
	if !analysis.HasExamples {
		suggestions = append(suggestions, "Add a concrete example")
	}
	return suggestions
}
