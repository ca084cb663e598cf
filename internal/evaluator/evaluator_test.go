package evaluator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate_EmptyAnswer(t *testing.T) {
	ev := Evaluate("", "What is a closure in JavaScript?", 0)

	assert.Equal(t, 0, ev.Score(DimAIJudgment))
	assert.Equal(t, 0, ev.Score(DimKeywordCoverage))
	assert.LessOrEqual(t, ev.Score(DimCompleteness), 2)
	assert.Equal(t, 7, ev.Score(DimConfidence))
	assert.Equal(t, 1, ev.Composite)
	assert.Equal(t, 0, ev.WordCount)
	assert.Contains(t, ev.Weaknesses, "Response too brief")
}

func TestEvaluate_ClampsLLMScore(t *testing.T) {
	high := Evaluate("An answer", "Question", 42)
	assert.Equal(t, 10, high.Score(DimAIJudgment))

	low := Evaluate("An answer", "Question", -3)
	assert.Equal(t, 0, low.Score(DimAIJudgment))
}

func TestEvaluate_DimensionsCarryWeightsAndRatings(t *testing.T) {
	ev := Evaluate("I implemented a cache because the database query was slow.", "How would you speed up a slow database query?", 8)

	require.Len(t, ev.Dimensions, 4)
	var total float64
	for _, dim := range DimensionOrder {
		d, ok := ev.Dimensions[dim]
		require.True(t, ok, dim)
		assert.Equal(t, RatingFor(d.Score), d.Rating)
		total += d.Weight
	}
	assert.InDelta(t, 1.0, total, 1e-9)
	assert.Contains(t, ev.Topics, "Database")
	assert.Contains(t, ev.Strengths, "Strong technical understanding")
}

func TestComposite(t *testing.T) {
	tests := []struct {
		name   string
		scores map[string]int
		want   int
	}{
		{"all max", map[string]int{DimAIJudgment: 10, DimKeywordCoverage: 10, DimCompleteness: 10, DimConfidence: 10}, 10},
		{"all zero", map[string]int{}, 0},
		{"mixed", map[string]int{DimAIJudgment: 8, DimKeywordCoverage: 5, DimCompleteness: 6, DimConfidence: 7}, 7},
		{"terms clamped", map[string]int{DimAIJudgment: 50, DimKeywordCoverage: -5, DimCompleteness: 10, DimConfidence: 10}, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Composite(tt.scores))
		})
	}
}

func TestRatingFor(t *testing.T) {
	assert.Equal(t, RatingExcellent, RatingFor(8))
	assert.Equal(t, RatingGood, RatingFor(6))
	assert.Equal(t, RatingAverage, RatingFor(4))
	assert.Equal(t, RatingNeedsImprovement, RatingFor(3))
}
