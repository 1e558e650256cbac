// File: optimize/assessor.go

package optimize

import (
	"strings"
	"time"
)

// QualityAssessor scores a processed Result. Scores are pure functions of the
// result text; the Expert tier additionally reads a metrics snapshot for the
// trend, never the live aggregate.
type QualityAssessor interface {
	Assess(result Result) QualityAssessment
}

// standardAssessor produces the scalar overall score.
type standardAssessor struct{}

func (standardAssessor) Assess(result Result) QualityAssessment {
	return QualityAssessment{
		Overall: scoreContent(textOf(result)),
	}
}

// advancedAssessor splits the overall score into the fixed weighted
// sub-scores and stamps the assessment time.
type advancedAssessor struct {
	inner QualityAssessor
	now   func() time.Time
}

func (a advancedAssessor) Assess(result Result) QualityAssessment {
	assessment := a.inner.Assess(result)
	assessment.ContentQuality = assessment.Overall * weightContent
	assessment.StructureQuality = assessment.Overall * weightStructure
	assessment.RelevanceQuality = assessment.Overall * weightRelevance
	assessment.AssessedAt = a.now()
	return assessment
}

// completenessCategories are the three keyword families the Expert tier
// checks for: framing, substance, and closing.
var completenessCategories = [][]string{
	{"context", "background", "overview", "scope"},
	{"analysis", "finding", "detail", "because"},
	{"conclusion", "summary", "recommendation"},
}

var actionableMarkers = []string{"should", "recommend", "consider", "step", "use ", "apply"}

// expertAssessor adds the detailed breakdown and a coarse quality trend.
type expertAssessor struct {
	inner    QualityAssessor
	snapshot func() Snapshot
}

func (e expertAssessor) Assess(result Result) QualityAssessment {
	assessment := e.inner.Assess(result)
	text := textOf(result)

	assessment.DetailedAnalysis = &DetailedAnalysis{
		Readability:  readabilityScore(text),
		Completeness: completenessScore(text),
		Usefulness:   usefulnessScore(text),
	}

	snap := e.snapshot()
	assessment.Trend = &QualityTrend{
		Trend:          "stable",
		RollingAverage: snap.QualityScore,
		Variance:       0.05,
	}
	return assessment
}

// readabilityScore buckets by average sentence length in words.
func readabilityScore(text string) float64 {
	words := strings.Fields(text)
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return 0
	}
	avg := float64(len(words)) / float64(len(sentences))
	switch {
	case avg <= 12:
		return 0.9
	case avg <= 20:
		return 0.7
	case avg <= 30:
		return 0.5
	default:
		return 0.3
	}
}

// completenessScore is the fraction of keyword categories present.
func completenessScore(text string) float64 {
	lower := strings.ToLower(text)
	present := 0
	for _, category := range completenessCategories {
		if containsAny(lower, category...) {
			present++
		}
	}
	return float64(present) / float64(len(completenessCategories))
}

// usefulnessScore counts actionable-language markers, saturating at 1.
func usefulnessScore(text string) float64 {
	lower := strings.ToLower(text)
	score := 0.0
	for _, marker := range actionableMarkers {
		if strings.Contains(lower, marker) {
			score += 0.25
		}
	}
	if score > 1 {
		return 1
	}
	return score
}
