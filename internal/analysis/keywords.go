package analysis

import (
	"math"
	"strings"

	"github.com/abhisek/interviewiz/internal/topics"
)

// MaxRelevantKeywords caps the denominator of the coverage ratio so that
// broad questions do not demand every indicator.
const MaxRelevantKeywords = 8

// Coverage is the outcome of keyword coverage analysis.
type Coverage struct {
	Score    int
	Topics   []topics.Topic
	Relevant []string
	Matched  []string
}

// KeywordCoverage scores how many of the question's topic keywords the
// answer mentions, on a 0–10 scale.
func KeywordCoverage(answer, question string) Coverage {
	detected := topics.Detect(question)
	relevant := topics.Keywords(detected)
	cov := Coverage{Topics: detected, Relevant: relevant}

	lower := strings.ToLower(answer)
	if strings.TrimSpace(lower) == "" || len(relevant) == 0 {
		return cov
	}
	for _, k := range relevant {
		if strings.Contains(lower, k) {
			cov.Matched = append(cov.Matched, k)
		}
	}

	denom := min(len(relevant), MaxRelevantKeywords)
	score := int(math.Round(10 * float64(len(cov.Matched)) / float64(denom)))
	cov.Score = min(10, score)
	return cov
}
