// File: optimize/types.go

package optimize

import (
	"time"
)

// Result formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Result is the structured outcome of a generate call. Tiers above Basic fill
// in progressively more of the optional fields.
type Result struct {
	Content                any                `json:"content"`
	Format                 string             `json:"format"`
	Processed              bool               `json:"processed"`
	QualityScore           *float64           `json:"qualityScore,omitempty"`
	ContentAnalysis        *ContentAnalysis   `json:"contentAnalysis,omitempty"`
	ImprovementSuggestions []string           `json:"improvementSuggestions,omitempty"`
	Assessment             *QualityAssessment `json:"qualityAssessment,omitempty"`
	ProcessedAt            time.Time          `json:"processedAt"`
}

// ContentAnalysis summarizes surface features of a generated response.
type ContentAnalysis struct {
	WordCount         int     `json:"wordCount"`
	SentenceCount     int     `json:"sentenceCount"`
	TokenCount        int     `json:"tokenCount"`
	AvgSentenceLength float64 `json:"avgSentenceLength"`
	HasStructure      bool    `json:"hasStructure"`
	HasExamples       bool    `json:"hasExamples"`
}

// QualityAssessment scores a Result. The Standard tier fills Overall only;
// Advanced adds the weighted sub-scores; Expert adds the detailed analysis
// and the trend.
type QualityAssessment struct {
	Overall          float64           `json:"overall"`
	ContentQuality   float64           `json:"contentQuality,omitempty"`
	StructureQuality float64           `json:"structureQuality,omitempty"`
	RelevanceQuality float64           `json:"relevanceQuality,omitempty"`
	AssessedAt       time.Time         `json:"assessedAt"`
	DetailedAnalysis *DetailedAnalysis `json:"detailedAnalysis,omitempty"`
	Trend            *QualityTrend     `json:"qualityTrend,omitempty"`
}

// DetailedAnalysis holds the Expert-tier quality breakdown, each component
// in [0,1].
type DetailedAnalysis struct {
	Readability  float64 `json:"readability"`
	Completeness float64 `json:"completeness"`
	Usefulness   float64 `json:"usefulness"`
}

// QualityTrend is a coarse rolling-quality indicator, not a time-series model.
type QualityTrend struct {
	Trend          string  `json:"trend"`
	RollingAverage float64 `json:"rollingAverage"`
	Variance       float64 `json:"variance"`
}

// CacheStats is the point-in-time view of the result cache.
type CacheStats struct {
	Size        int     `json:"size"`
	MaxSize     int     `json:"maxSize"`
	Utilization float64 `json:"utilization"`
	HitRate     float64 `json:"hitRate"`
	Strategy    string  `json:"strategy"`
}

// Report is the read-only snapshot returned by Engine.Report.
type Report struct {
	Level            string     `json:"level"`
	CacheStrategy    string     `json:"cacheStrategy"`
	Metrics          Snapshot   `json:"metrics"`
	CacheStats       CacheStats `json:"cacheStats"`
	ActiveComponents []string   `json:"activeComponents"`
}
