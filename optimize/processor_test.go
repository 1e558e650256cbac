package optimize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasicProcessor(t *testing.T) {
	result := basicProcessor{}.Process("hello")

	assert.Equal(t, "hello", result.Content)
	assert.Equal(t, FormatText, result.Format)
	assert.True(t, result.Processed)
	assert.Nil(t, result.QualityScore)
	assert.Nil(t, result.ContentAnalysis)
	assert.True(t, result.ProcessedAt.IsZero())
}

func TestStandardProcessor(t *testing.T) {
	processor := standardProcessor{inner: basicProcessor{}}

	t.Run("valid JSON relabeled", func(t *testing.T) {
		result := processor.Process(`{"answer": 42}`)
		assert.Equal(t, FormatJSON, result.Format)

		parsed, ok := result.Content.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, 42.0, parsed["answer"])
	})

	t.Run("malformed JSON falls back to text", func(t *testing.T) {
		result := processor.Process(`{"answer": `)
		assert.Equal(t, FormatText, result.Format)
		assert.Equal(t, `{"answer": `, result.Content)
	})

	t.Run("plain text stays text", func(t *testing.T) {
		result := processor.Process("hello")
		assert.Equal(t, FormatText, result.Format)
	})
}

func TestAdvancedProcessor(t *testing.T) {
	processor := advancedProcessor{
		inner: standardProcessor{inner: basicProcessor{}},
		now:   fixedClock,
	}

	result := processor.Process("A short answer about deployment. It includes an example.")

	require.NotNil(t, result.QualityScore)
	assert.GreaterOrEqual(t, *result.QualityScore, 0.0)
	assert.LessOrEqual(t, *result.QualityScore, 1.0)
	assert.Equal(t, fixedClock(), result.ProcessedAt)
}

func TestExpertProcessor(t *testing.T) {
	processor := expertProcessor{
		inner: advancedProcessor{
			inner: standardProcessor{inner: basicProcessor{}},
			now:   fixedClock,
		},
	}

	t.Run("analysis fields populated", func(t *testing.T) {
		text := "First point. Second point with detail.\n1. do this\n2. do that\nFor example, retry twice."
		result := processor.Process(text)

		require.NotNil(t, result.ContentAnalysis)
		analysis := result.ContentAnalysis
		assert.Greater(t, analysis.WordCount, 0)
		assert.Greater(t, analysis.SentenceCount, 0)
		assert.Greater(t, analysis.TokenCount, 0)
		assert.True(t, analysis.HasStructure)
		assert.True(t, analysis.HasExamples)
	})

	t.Run("weak answer gets suggestions", func(t *testing.T) {
		result := processor.Process("ok")

		require.NotNil(t, result.ContentAnalysis)
		assert.Len(t, result.ImprovementSuggestions, 3)
	})

	t.Run("strong answer gets none", func(t *testing.T) {
		text := "Overview of findings follows in depth, with each point numbered and grounded in the logs we collected during the incident window across all three regions.\n" +
			"1. The first failure was a timeout in the gateway, for example at 12:01 UTC.\n" +
			"2. The second failure was a retry storm caused by the first.\n"
		result := processor.Process(text)
		assert.Empty(t, result.ImprovementSuggestions)
	})
}

func TestScoreContentBounds(t *testing.T) {
	for _, text := range []string{
		"",
		"ok",
		"A balanced answer with an example and a conclusion.\n1. first\n2. second",
	} {
		score := scoreContent(text)
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 1.0)
	}
}
