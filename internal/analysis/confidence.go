package analysis

import "math"

var (
	hedgePhrases = []string{
		"i think", "maybe", "perhaps", "probably", "i guess", "not sure",
		"might", "possibly", "sort of", "kind of", "i believe",
	}
	fillerPhrases = []string{
		"um", "uh", "umm", "like", "you know", "basically", "actually", "literally",
	}
	assertivePhrases = []string{
		"i implemented", "i built", "i designed", "i led", "definitely",
		"specifically", "i decided", "i delivered", "i ensured", "in my experience",
	}
)

// BaseConfidence is the confidence of an answer with no markers at all.
const BaseConfidence = 7

// Confidence holds the marker counts and resulting score.
type Confidence struct {
	Score     int
	Hedges    int
	Fillers   int
	Assertive int
}

// AnalyzeConfidence scores linguistic confidence on 1–10: hedges and
// fillers pull the base down, assertive phrasing pushes it up.
func AnalyzeConfidence(answer string) Confidence {
	norm := normalized(answer)
	c := Confidence{
		Hedges:    countPhrases(norm, hedgePhrases),
		Fillers:   countPhrases(norm, fillerPhrases),
		Assertive: countPhrases(norm, assertivePhrases),
	}

	raw := float64(BaseConfidence) -
		math.Min(4, 1.5*float64(c.Hedges)) -
		math.Min(2, 0.5*float64(c.Fillers)) +
		math.Min(3, float64(c.Assertive))
	c.Score = clampInt(int(math.Round(raw)), 1, 10)
	return c
}
