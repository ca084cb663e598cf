// Package evaluator scores a single interview answer along four dimensions
// and blends them into one composite score.
package evaluator

import (
	"math"

	"github.com/abhisek/interviewiz/internal/analysis"
)

// Dimension keys.
const (
	DimAIJudgment      = "aiJudgment"
	DimKeywordCoverage = "keywordCoverage"
	DimCompleteness    = "completeness"
	DimConfidence      = "confidence"
)

// Weights of each dimension in the composite score.
var Weights = map[string]float64{
	DimAIJudgment:      0.35,
	DimKeywordCoverage: 0.20,
	DimCompleteness:    0.25,
	DimConfidence:      0.20,
}

// DimensionOrder is the stable presentation order of the dimensions.
var DimensionOrder = []string{DimAIJudgment, DimKeywordCoverage, DimCompleteness, DimConfidence}

// Rating buckets a dimension score.
type Rating string

const (
	RatingExcellent        Rating = "excellent"
	RatingGood             Rating = "good"
	RatingAverage          Rating = "average"
	RatingNeedsImprovement Rating = "needs_improvement"
)

// RatingFor returns the rating bucket for a 0–10 score.
func RatingFor(score int) Rating {
	switch {
	case score >= 8:
		return RatingExcellent
	case score >= 6:
		return RatingGood
	case score >= 4:
		return RatingAverage
	default:
		return RatingNeedsImprovement
	}
}

// Dimension is one scored axis of an evaluation.
type Dimension struct {
	Score  int     `json:"score"`
	Rating Rating  `json:"rating"`
	Weight float64 `json:"weight"`
}

// Evaluation is the immutable result of scoring one answer.
type Evaluation struct {
	Index        int                  `json:"index"`
	Question     string               `json:"question"`
	Answer       string               `json:"answer"`
	QuestionType string               `json:"question_type,omitempty"`
	Difficulty   int                  `json:"difficulty,omitempty"`
	Composite    int                  `json:"composite"`
	Dimensions   map[string]Dimension `json:"dimensions"`
	Strengths    []string             `json:"strengths"`
	Weaknesses   []string             `json:"weaknesses"`
	Tips         []string             `json:"tips"`
	WordCount    int                  `json:"word_count"`
	Topics       []string             `json:"topics"`
}

// Score returns the score of the named dimension, 0 if absent.
func (e *Evaluation) Score(dim string) int {
	return e.Dimensions[dim].Score
}

// Evaluate scores an answer to question given the LLM's raw 0–10 judgment.
// It never fails: malformed input degrades to floor scores.
func Evaluate(answer, question string, llmScore int) Evaluation {
	cov := analysis.KeywordCoverage(answer, question)
	comp := analysis.AnalyzeCompleteness(answer)
	conf := analysis.AnalyzeConfidence(answer)

	scores := map[string]int{
		DimAIJudgment:      clamp(llmScore),
		DimKeywordCoverage: clamp(cov.Score),
		DimCompleteness:    clamp(comp.Score),
		DimConfidence:      clamp(conf.Score),
	}

	ev := Evaluation{
		Question:   question,
		Answer:     answer,
		Composite:  Composite(scores),
		Dimensions: make(map[string]Dimension, len(scores)),
		WordCount:  comp.WordCount,
	}
	for _, dim := range DimensionOrder {
		ev.Dimensions[dim] = Dimension{
			Score:  scores[dim],
			Rating: RatingFor(scores[dim]),
			Weight: Weights[dim],
		}
	}
	for _, t := range cov.Topics {
		ev.Topics = append(ev.Topics, t.Name)
	}

	ev.Strengths, ev.Weaknesses, ev.Tips = observations(scores, comp)
	return ev
}

// Composite blends dimension scores with the fixed weights. Each term is
// clamped to [0,10] and the result is rounded.
func Composite(scores map[string]int) int {
	var sum float64
	for _, dim := range DimensionOrder {
		sum += Weights[dim] * float64(clamp(scores[dim]))
	}
	return clamp(int(math.Round(sum)))
}

func clamp(v int) int {
	return max(0, min(10, v))
}
