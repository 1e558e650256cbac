package optimize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardAssessor(t *testing.T) {
	assessment := standardAssessor{}.Assess(textResult("A reasonable answer with an example."))

	assert.GreaterOrEqual(t, assessment.Overall, 0.0)
	assert.LessOrEqual(t, assessment.Overall, 1.0)
	assert.Zero(t, assessment.ContentQuality)
	assert.Nil(t, assessment.DetailedAnalysis)
	assert.True(t, assessment.AssessedAt.IsZero())
}

func TestAdvancedAssessorWeights(t *testing.T) {
	assessor := advancedAssessor{inner: standardAssessor{}, now: fixedClock}
	assessment := assessor.Assess(textResult("A reasonable answer with an example and a conclusion."))

	assert.InDelta(t, assessment.Overall*0.4, assessment.ContentQuality, 1e-9)
	assert.InDelta(t, assessment.Overall*0.3, assessment.StructureQuality, 1e-9)
	assert.InDelta(t, assessment.Overall*0.3, assessment.RelevanceQuality, 1e-9)
	assert.Equal(t, fixedClock(), assessment.AssessedAt)
}

func TestExpertAssessor(t *testing.T) {
	snapshot := func() Snapshot { return Snapshot{QualityScore: 0.66} }
	assessor := expertAssessor{
		inner:    advancedAssessor{inner: standardAssessor{}, now: fixedClock},
		snapshot: snapshot,
	}

	text := "Overview of the findings. The analysis shows a timeout. " +
		"In summary, you should consider adding retries."
	assessment := assessor.Assess(textResult(text))

	require.NotNil(t, assessment.DetailedAnalysis)
	detail := assessment.DetailedAnalysis
	assert.Greater(t, detail.Readability, 0.0)
	assert.Equal(t, 1.0, detail.Completeness, "all three keyword families present")
	assert.Greater(t, detail.Usefulness, 0.0)

	require.NotNil(t, assessment.Trend)
	assert.Equal(t, "stable", assessment.Trend.Trend)
	assert.Equal(t, 0.66, assessment.Trend.RollingAverage)
	assert.Equal(t, 0.05, assessment.Trend.Variance)
}

func TestReadabilityBuckets(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		score float64
	}{
		{"short sentences", "One two three. Four five six.", 0.9},
		{"empty", "", 0.0},
		{"long rambling sentence", "one two three four five six seven eight nine ten eleven twelve thirteen fourteen fifteen sixteen seventeen eighteen nineteen twenty twentyone twentytwo twentythree twentyfour twentyfive twentysix twentyseven twentyeight twentynine thirty thirtyone.", 0.3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.score, readabilityScore(tt.text))
		})
	}
}

func TestCompletenessScore(t *testing.T) {
	assert.Equal(t, 0.0, completenessScore("nothing relevant here"))
	assert.InDelta(t, 1.0/3.0, completenessScore("some background first"), 1e-9)
	assert.Equal(t, 1.0, completenessScore("context, analysis, conclusion"))
}

func TestUsefulnessSaturates(t *testing.T) {
	text := "You should use retries, consider backoff, apply caching, recommend monitoring, step by step."
	assert.Equal(t, 1.0, usefulnessScore(text))
}
