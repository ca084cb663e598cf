package evaluator

import "github.com/abhisek/interviewiz/internal/analysis"

// observations derives strength, weakness and tip lines from fixed
// per-dimension thresholds.
func observations(scores map[string]int, comp analysis.Completeness) (strengths, weaknesses, tips []string) {
	switch ai := scores[DimAIJudgment]; {
	case ai >= 7:
		strengths = append(strengths, "Strong technical understanding")
	case ai <= 4:
		weaknesses = append(weaknesses, "Technical accuracy needs work")
		tips = append(tips, "Review the core concepts behind the question before your next attempt")
	}

	switch kw := scores[DimKeywordCoverage]; {
	case kw >= 7:
		strengths = append(strengths, "Good use of relevant terminology")
	case kw <= 3:
		weaknesses = append(weaknesses, "Missing key technical terms")
		tips = append(tips, "Name the specific concepts and tools the question is about")
	}

	switch c := scores[DimCompleteness]; {
	case c >= 7:
		strengths = append(strengths, "Thorough, well-structured answer")
	case c <= 4:
		weaknesses = append(weaknesses, "Answer lacks depth and structure")
		tips = append(tips, "Use the STAR method: Situation, Task, Action, Result")
	}

	switch conf := scores[DimConfidence]; {
	case conf >= 8:
		strengths = append(strengths, "Confident delivery")
	case conf <= 4:
		weaknesses = append(weaknesses, "Too much hedging or filler language")
		tips = append(tips, "State your position directly and avoid fillers like \"um\" or \"I guess\"")
	}

	if comp.WordCount < 20 {
		weaknesses = append(weaknesses, "Response too brief")
		tips = append(tips, "Aim for at least a few sentences with a concrete example")
	} else if comp.WordCount > 250 {
		weaknesses = append(weaknesses, "Response could be more concise")
		tips = append(tips, "Lead with the key point, then add supporting detail")
	}

	if comp.STARHits >= 3 {
		strengths = append(strengths, "Clear situation-action-result narrative")
	}
	return strengths, weaknesses, tips
}
