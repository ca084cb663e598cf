// Package feedback aggregates per-answer evaluations and engine outputs
// into the final interview report.
package feedback

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/abhisek/interviewiz/internal/evaluator"
	"github.com/abhisek/interviewiz/internal/integrity"
	"github.com/abhisek/interviewiz/internal/skillgap"
)

const (
	maxObservations = 5
	excerptLen      = 160
)

var dimensionLabels = map[string]string{
	evaluator.DimAIJudgment:      "Technical Accuracy",
	evaluator.DimKeywordCoverage: "Keyword Coverage",
	evaluator.DimCompleteness:    "Completeness",
	evaluator.DimConfidence:      "Confidence",
}

var dimensionActions = map[string]string{
	evaluator.DimAIJudgment:      "Review the fundamentals behind the questions you scored lowest on",
	evaluator.DimKeywordCoverage: "Build a glossary of key terms for your stack and use them precisely",
	evaluator.DimCompleteness:    "Answer with the STAR structure and close with a measurable result",
	evaluator.DimConfidence:      "Record yourself answering and cut hedges and filler words",
}

// Input is everything the synthesizer consumes.
type Input struct {
	Evaluations  []evaluator.Evaluation
	FinalScore   float64
	LevelHistory []int
	FinalLevel   int
	SkillGap     *skillgap.Analysis
	Integrity    *integrity.Report
}

// DimensionSummary is the average of one dimension across all answers.
type DimensionSummary struct {
	Key     string           `json:"key"`
	Label   string           `json:"label"`
	Average float64          `json:"average"`
	Rating  evaluator.Rating `json:"rating"`
}

// Observation is a strength or weakness with its frequency.
type Observation struct {
	Text  string `json:"text"`
	Count int    `json:"count"`
	// Consistency is the percentage of answers showing the observation.
	Consistency int `json:"consistency"`
}

// Roadmap groups improvement actions by horizon.
type Roadmap struct {
	Immediate []string `json:"immediate"`
	ShortTerm []string `json:"short_term"`
	LongTerm  []string `json:"long_term"`
}

// Highlight points at a notable answer.
type Highlight struct {
	Index    int    `json:"index"`
	Question string `json:"question"`
	Score    int    `json:"score"`
	Excerpt  string `json:"excerpt"`
}

// Trend of the difficulty trajectory.
const (
	TrendAscending  = "ascending"
	TrendDescending = "descending"
	TrendStable     = "stable"
)

// Trajectory summarizes difficulty over the interview.
type Trajectory struct {
	Levels []int  `json:"levels"`
	Start  int    `json:"start"`
	End    int    `json:"end"`
	Peak   int    `json:"peak"`
	Trend  string `json:"trend"`
}

// Report is the immutable end-of-interview feedback.
type Report struct {
	OverallScore float64            `json:"overall_score"`
	Tier         Tier               `json:"tier"`
	Headline     string             `json:"headline"`
	AnswerCount  int                `json:"answer_count"`
	Dimensions   []DimensionSummary `json:"dimensions"`
	Strengths    []Observation      `json:"strengths"`
	Weaknesses   []Observation      `json:"weaknesses"`
	Roadmap      Roadmap            `json:"roadmap"`
	Best         *Highlight         `json:"best,omitempty"`
	Worst        *Highlight         `json:"worst,omitempty"`
	Trajectory   Trajectory         `json:"trajectory"`
	SkillGap     *skillgap.Analysis `json:"skill_gap,omitempty"`
	Integrity    *integrity.Report  `json:"integrity,omitempty"`
	// Spoken is a condensed prose version for text-to-speech.
	Spoken string `json:"spoken_summary"`
}

// Synthesize builds the report. Zero evaluations produce zero averages.
func Synthesize(in Input) Report {
	score := math.Round(in.FinalScore*10) / 10
	tier := TierFor(score)
	r := Report{
		OverallScore: score,
		Tier:         tier,
		Headline:     fmt.Sprintf("%s %s performance: %.1f/10", tier.Emoji, tier.Name, score),
		AnswerCount:  len(in.Evaluations),
		Dimensions:   dimensionAverages(in.Evaluations),
		Strengths:    rankObservations(in.Evaluations, func(e evaluator.Evaluation) []string { return e.Strengths }),
		Weaknesses:   rankObservations(in.Evaluations, func(e evaluator.Evaluation) []string { return e.Weaknesses }),
		Trajectory:   trajectory(in.LevelHistory, in.FinalLevel),
		SkillGap:     in.SkillGap,
		Integrity:    in.Integrity,
	}
	r.Best, r.Worst = highlights(in.Evaluations)
	r.Roadmap = roadmap(r.Dimensions, in.SkillGap, tier)
	r.Spoken = SpokenSummary(r)
	return r
}

func dimensionAverages(evals []evaluator.Evaluation) []DimensionSummary {
	out := make([]DimensionSummary, 0, len(evaluator.DimensionOrder))
	for _, dim := range evaluator.DimensionOrder {
		var avg float64
		if len(evals) > 0 {
			sum := 0
			for i := range evals {
				sum += evals[i].Score(dim)
			}
			avg = math.Round(float64(sum)/float64(len(evals))*10) / 10
		}
		out = append(out, DimensionSummary{
			Key:     dim,
			Label:   dimensionLabels[dim],
			Average: avg,
			Rating:  evaluator.RatingFor(int(math.Round(avg))),
		})
	}
	return out
}

func rankObservations(evals []evaluator.Evaluation, pick func(evaluator.Evaluation) []string) []Observation {
	counts := make(map[string]int)
	var order []string
	for _, e := range evals {
		seen := make(map[string]bool)
		for _, text := range pick(e) {
			if seen[text] {
				continue
			}
			seen[text] = true
			if counts[text] == 0 {
				order = append(order, text)
			}
			counts[text]++
		}
	}

	out := make([]Observation, 0, len(order))
	for _, text := range order {
		out = append(out, Observation{
			Text:        text,
			Count:       counts[text],
			Consistency: int(math.Round(100 * float64(counts[text]) / float64(len(evals)))),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > maxObservations {
		out = out[:maxObservations]
	}
	return out
}

func highlights(evals []evaluator.Evaluation) (best, worst *Highlight) {
	if len(evals) == 0 {
		return nil, nil
	}
	bi, wi := 0, 0
	for i := range evals {
		if evals[i].Composite > evals[bi].Composite {
			bi = i
		}
		if evals[i].Composite < evals[wi].Composite {
			wi = i
		}
	}
	return highlight(evals[bi]), highlight(evals[wi])
}

func highlight(e evaluator.Evaluation) *Highlight {
	return &Highlight{
		Index:    e.Index,
		Question: e.Question,
		Score:    e.Composite,
		Excerpt:  excerpt(e.Answer),
	}
}

func excerpt(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= excerptLen {
		return s
	}
	return strings.TrimSpace(string(r[:excerptLen])) + "…"
}

func trajectory(levels []int, final int) Trajectory {
	t := Trajectory{Levels: append([]int(nil), levels...)}
	if len(levels) == 0 {
		t.Start, t.End, t.Peak = final, final, final
		t.Trend = TrendStable
		return t
	}
	t.Start = levels[0]
	t.End = levels[len(levels)-1]
	if final > 0 {
		t.End = final
	}
	t.Peak = t.End
	for _, l := range levels {
		t.Peak = max(t.Peak, l)
	}
	switch {
	case t.End > t.Start:
		t.Trend = TrendAscending
	case t.End < t.Start:
		t.Trend = TrendDescending
	default:
		t.Trend = TrendStable
	}
	return t
}

func roadmap(dims []DimensionSummary, gaps *skillgap.Analysis, tier Tier) Roadmap {
	var rm Roadmap

	weakest := append([]DimensionSummary(nil), dims...)
	sort.SliceStable(weakest, func(i, j int) bool { return weakest[i].Average < weakest[j].Average })
	for _, d := range weakest[:min(2, len(weakest))] {
		rm.Immediate = append(rm.Immediate, dimensionActions[d.Key])
	}

	if gaps != nil {
		for _, step := range gaps.LearningPath {
			rm.ShortTerm = append(rm.ShortTerm, fmt.Sprintf("%s (~%dh): %s", step.Topic, step.Hours, step.Recommendation))
			if len(rm.ShortTerm) == 3 {
				break
			}
		}
	}
	if len(rm.ShortTerm) == 0 {
		rm.ShortTerm = []string{"Practice timed mock answers across mixed topics twice a week"}
	}

	rm.LongTerm = append(rm.LongTerm, tierGoals[tier.Name]...)
	return rm
}
