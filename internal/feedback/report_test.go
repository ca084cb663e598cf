package feedback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/interviewiz/internal/evaluator"
	"github.com/abhisek/interviewiz/internal/integrity"
	"github.com/abhisek/interviewiz/internal/skillgap"
)

func eval(index, composite int, strengths, weaknesses []string) evaluator.Evaluation {
	return evaluator.Evaluation{
		Index:     index,
		Question:  "Question",
		Answer:    "Answer text",
		Composite: composite,
		Dimensions: map[string]evaluator.Dimension{
			evaluator.DimAIJudgment:      {Score: composite},
			evaluator.DimKeywordCoverage: {Score: 4},
			evaluator.DimCompleteness:    {Score: 6},
			evaluator.DimConfidence:      {Score: 7},
		},
		Strengths:  strengths,
		Weaknesses: weaknesses,
	}
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{10, "Exceptional"}, {9, "Exceptional"}, {8.9, "Strong"}, {7.5, "Strong"},
		{7.4, "Competent"}, {6, "Competent"}, {5.9, "Developing"}, {4, "Developing"},
		{3.9, "Beginner"}, {0, "Beginner"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TierFor(tt.score).Name, "score=%v", tt.score)
	}
}

func TestSynthesize_NoEvaluations(t *testing.T) {
	r := Synthesize(Input{FinalLevel: 1})

	assert.Equal(t, 0.0, r.OverallScore)
	assert.Equal(t, "Beginner", r.Tier.Name)
	require.Len(t, r.Dimensions, 4)
	for _, d := range r.Dimensions {
		assert.Equal(t, 0.0, d.Average)
	}
	assert.Nil(t, r.Best)
	assert.Nil(t, r.Worst)
	assert.Empty(t, r.Strengths)
	assert.Equal(t, TrendStable, r.Trajectory.Trend)
	assert.Len(t, r.Roadmap.Immediate, 2)
	assert.NotEmpty(t, r.Roadmap.LongTerm)
}

func TestSynthesize_Aggregates(t *testing.T) {
	evals := []evaluator.Evaluation{
		eval(1, 9, []string{"Confident delivery", "Strong technical understanding"}, nil),
		eval(2, 5, []string{"Confident delivery"}, []string{"Response too brief"}),
		eval(3, 8, []string{"Confident delivery"}, []string{"Response too brief"}),
	}
	gap := &skillgap.Analysis{
		LearningPath: []skillgap.LearningStep{{Topic: "Database", Hours: 20, Recommendation: "Study indexes."}},
	}
	ir := &integrity.Report{Verdict: "No integrity concerns detected."}

	r := Synthesize(Input{
		Evaluations:  evals,
		FinalScore:   7.33,
		LevelHistory: []int{1, 1, 2},
		FinalLevel:   2,
		SkillGap:     gap,
		Integrity:    ir,
	})

	assert.Equal(t, 7.3, r.OverallScore)
	assert.Equal(t, "Competent", r.Tier.Name)
	assert.Equal(t, 3, r.AnswerCount)

	require.NotEmpty(t, r.Strengths)
	assert.Equal(t, Observation{Text: "Confident delivery", Count: 3, Consistency: 100}, r.Strengths[0])
	require.Len(t, r.Weaknesses, 1)
	assert.Equal(t, 67, r.Weaknesses[0].Consistency)

	require.NotNil(t, r.Best)
	assert.Equal(t, 1, r.Best.Index)
	assert.Equal(t, 2, r.Worst.Index)

	assert.Equal(t, []int{1, 1, 2}, r.Trajectory.Levels)
	assert.Equal(t, TrendAscending, r.Trajectory.Trend)
	assert.Equal(t, 2, r.Trajectory.Peak)

	// Keyword coverage (4.0) is the weakest dimension.
	assert.Equal(t, dimensionActions[evaluator.DimKeywordCoverage], r.Roadmap.Immediate[0])
	assert.Equal(t, []string{"Database (~20h): Study indexes."}, r.Roadmap.ShortTerm)
	assert.Same(t, ir, r.Integrity)
}

func TestSynthesize_CapsObservations(t *testing.T) {
	e := eval(1, 7, []string{"a", "b", "c", "d", "e", "f", "g"}, nil)
	r := Synthesize(Input{Evaluations: []evaluator.Evaluation{e}, FinalScore: 7})
	assert.Len(t, r.Strengths, maxObservations)
}

func TestTrajectory(t *testing.T) {
	tr := trajectory([]int{3, 2, 2}, 1)
	assert.Equal(t, 3, tr.Start)
	assert.Equal(t, 1, tr.End)
	assert.Equal(t, 3, tr.Peak)
	assert.Equal(t, TrendDescending, tr.Trend)
}

func TestSpokenSummary(t *testing.T) {
	evals := []evaluator.Evaluation{
		eval(1, 9, []string{"Confident delivery"}, []string{"Missing key technical terms"}),
	}
	r := Synthesize(Input{Evaluations: evals, FinalScore: 9.2})
	s := SpokenSummary(r)
	assert.Contains(t, s, "9.2 out of 10")
	assert.Contains(t, s, "Exceptional")
	assert.Contains(t, s, "confident delivery")
	assert.Contains(t, s, "missing key technical terms")
	assert.Contains(t, s, "keyword coverage")
	assert.Equal(t, s, r.Spoken)
}

func TestRender(t *testing.T) {
	evals := []evaluator.Evaluation{eval(1, 6, []string{"Confident delivery"}, nil)}
	out := Render(Synthesize(Input{Evaluations: evals, FinalScore: 6, LevelHistory: []int{1}, FinalLevel: 1}))
	assert.Contains(t, out, "Competent performance: 6.0/10")
	assert.Contains(t, out, "## Dimensions")
	assert.Contains(t, out, "Confident delivery (100% of answers)")
	assert.Contains(t, out, "## Roadmap")
}
