package analysis

import (
	"math"
	"unicode"
)

// STAR components, in order.
var starIndicators = [4][]string{
	{"situation", "when i was", "at my previous", "context", "background", "we were"},
	{"task", "responsible", "my role", "goal", "needed to", "had to"},
	{"action", "i implemented", "i decided", "i built", "i created", "i designed", "i led", "i wrote", "we implemented"},
	{"result", "outcome", "as a result", "improved", "reduced", "increased", "achieved", "led to"},
}

var (
	examplePhrases       = []string{"for example", "for instance", "such as", "in one project"}
	justificationPhrases = []string{"because", "since", "therefore", "so that", "which means", "trade off", "tradeoff"}
)

// Completeness weights.
const (
	weightLength      = 0.30
	weightStructure   = 0.25
	weightSpecificity = 0.25
	weightSTAR        = 0.20
)

// Completeness holds the sub-scores of the completeness analyzer.
type Completeness struct {
	Score       int
	Length      int
	Structure   int
	Specificity int
	STAR        int
	STARHits    int
	WordCount   int
}

// AnalyzeCompleteness scores an answer's length, structure, specificity and
// STAR coverage, each on 0–10, and combines them into one 0–10 score.
// Empty answers score 0.
func AnalyzeCompleteness(answer string) Completeness {
	words := WordCount(answer)
	if words == 0 {
		return Completeness{}
	}

	norm := normalized(answer)
	c := Completeness{
		WordCount:   words,
		Length:      lengthScore(words),
		Structure:   structureScore(SentenceCount(answer)),
		Specificity: specificityScore(answer, norm),
		STARHits:    STARHits(norm),
	}
	c.STAR = int(math.Round(10 * float64(c.STARHits) / 4))

	raw := weightLength*float64(c.Length) +
		weightStructure*float64(c.Structure) +
		weightSpecificity*float64(c.Specificity) +
		weightSTAR*float64(c.STAR)
	c.Score = clampInt(int(math.Round(raw)), 0, 10)
	return c
}

// STARHits counts how many of situation, task, action and result the
// answer touches on.
func STARHits(norm string) int {
	hits := 0
	for _, phrases := range starIndicators {
		if hasPhrase(norm, phrases) {
			hits++
		}
	}
	return hits
}

func lengthScore(words int) int {
	switch {
	case words == 0:
		return 0
	case words < 10:
		return 2
	case words < 30:
		return 6
	case words <= 120:
		return 10
	case words <= 200:
		return 8
	default:
		return 6
	}
}

func structureScore(sentences int) int {
	switch {
	case sentences <= 0:
		return 0
	case sentences == 1:
		return 4
	case sentences == 2:
		return 7
	default:
		return 10
	}
}

func specificityScore(raw, norm string) int {
	score := 3
	for _, r := range raw {
		if unicode.IsDigit(r) {
			score += 3
			break
		}
	}
	if hasPhrase(norm, examplePhrases) {
		score += 2
	}
	if hasPhrase(norm, justificationPhrases) {
		score += 2
	}
	return min(score, 10)
}
