package integrity

import "time"

// Severity grades a flag.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// FlagType identifies the rule that raised a flag.
type FlagType string

const (
	FlagFastResponse        FlagType = "fast_response"
	FlagTypingSpeed         FlagType = "typing_speed"
	FlagLengthSpike         FlagType = "length_spike"
	FlagVocabularySpike     FlagType = "vocabulary_spike"
	FlagScoreTimingMismatch FlagType = "score_timing_mismatch"
	FlagRepetitivePattern   FlagType = "repetitive_pattern"
)

// Flag is a single triggered rule.
type Flag struct {
	Type     FlagType `json:"type"`
	Severity Severity `json:"severity"`
	Detail   string   `json:"detail"`
	Points   int      `json:"points"`
	// Answer is the 1-based ordinal of the answer that raised the flag.
	Answer int `json:"answer"`
}

// Level is the coarse suspicion bucket.
type Level string

const (
	LevelClean  Level = "clean"
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// LevelFor buckets a 0–100 suspicion score.
func LevelFor(suspicion int) Level {
	switch {
	case suspicion < 20:
		return LevelClean
	case suspicion < 40:
		return LevelLow
	case suspicion < 60:
		return LevelMedium
	default:
		return LevelHigh
	}
}

// State is the serializable monitor state.
type State struct {
	ResponseTimes    []float64  `json:"response_times"`
	WordCounts       []int      `json:"word_counts"`
	ComplexityRatios []float64  `json:"complexity_ratios"`
	Flags            []Flag     `json:"flags"`
	Suspicion        int        `json:"suspicion"`
	Answers          int        `json:"answers"`
	QuestionAskedAt  *time.Time `json:"question_asked_at,omitempty"`
}

// Sample is what a rule sees for the current answer.
type Sample struct {
	Text      string
	Words     []string
	WordCount int
	Score     int
	// Elapsed is the time since the question was asked; HasTiming is false
	// when no question timestamp was recorded.
	Elapsed    time.Duration
	HasTiming  bool
	Complexity float64

	// History from earlier answers only.
	PriorWordCounts []int
	PriorComplexity []float64
}

// Analysis is the per-answer outcome.
type Analysis struct {
	Flags     []Flag `json:"flags"`
	Points    int    `json:"points"`
	Suspicion int    `json:"suspicion"`
	Level     Level  `json:"level"`
}
