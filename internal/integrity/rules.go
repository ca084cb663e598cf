package integrity

import (
	"fmt"
	"strings"
	"time"
)

// Rule is a single behavioral check.
// Returns a flag and true when the rule fires for the sample.
type Rule interface {
	Name() string
	Check(s *Sample) (Flag, bool)
}

// minPriorSamples is the history required by the comparative rules.
const minPriorSamples = 3

// DefaultRules returns the rules in evaluation order.
func DefaultRules() []Rule {
	return []Rule{
		&FastResponseRule{},
		&TypingSpeedRule{},
		&LengthSpikeRule{},
		&VocabularySpikeRule{},
		&ScoreTimingRule{},
		&RepetitionRule{},
	}
}

// RunRules evaluates every rule and returns the flags raised.
func RunRules(rules []Rule, s *Sample) []Flag {
	var flags []Flag
	for _, r := range rules {
		if f, ok := r.Check(s); ok {
			flags = append(flags, f)
		}
	}
	return flags
}

// FastResponseRule flags long answers submitted within seconds of the question.
type FastResponseRule struct{}

func (r *FastResponseRule) Name() string { return string(FlagFastResponse) }

func (r *FastResponseRule) Check(s *Sample) (Flag, bool) {
	if !s.HasTiming || s.Elapsed >= 3*time.Second || s.WordCount <= 20 {
		return Flag{}, false
	}
	return Flag{
		Type:     FlagFastResponse,
		Severity: SeverityHigh,
		Points:   15,
		Detail:   fmt.Sprintf("%d words submitted %.1fs after the question", s.WordCount, s.Elapsed.Seconds()),
	}, true
}

// TypingSpeedRule flags answers typed faster than a person plausibly types.
type TypingSpeedRule struct{}

func (r *TypingSpeedRule) Name() string { return string(FlagTypingSpeed) }

func (r *TypingSpeedRule) Check(s *Sample) (Flag, bool) {
	if !s.HasTiming || s.Elapsed <= 0 || s.WordCount <= 15 {
		return Flag{}, false
	}
	wpm := float64(s.WordCount) / s.Elapsed.Minutes()
	if wpm <= 200 {
		return Flag{}, false
	}
	return Flag{
		Type:     FlagTypingSpeed,
		Severity: SeverityHigh,
		Points:   25,
		Detail:   fmt.Sprintf("effective typing speed %.0f wpm", wpm),
	}, true
}

// LengthSpikeRule flags an answer far longer than the candidate's norm.
type LengthSpikeRule struct{}

func (r *LengthSpikeRule) Name() string { return string(FlagLengthSpike) }

func (r *LengthSpikeRule) Check(s *Sample) (Flag, bool) {
	if len(s.PriorWordCounts) < minPriorSamples || s.WordCount <= 50 {
		return Flag{}, false
	}
	sum := 0
	for _, n := range s.PriorWordCounts {
		sum += n
	}
	avg := float64(sum) / float64(len(s.PriorWordCounts))
	if float64(s.WordCount) <= 3*avg {
		return Flag{}, false
	}
	return Flag{
		Type:     FlagLengthSpike,
		Severity: SeverityMedium,
		Points:   15,
		Detail:   fmt.Sprintf("%d words against a prior average of %.0f", s.WordCount, avg),
	}, true
}

// VocabularySpikeRule flags a sudden jump in long-word usage.
type VocabularySpikeRule struct{}

func (r *VocabularySpikeRule) Name() string { return string(FlagVocabularySpike) }

func (r *VocabularySpikeRule) Check(s *Sample) (Flag, bool) {
	if len(s.PriorComplexity) < minPriorSamples {
		return Flag{}, false
	}
	var sum float64
	for _, c := range s.PriorComplexity {
		sum += c
	}
	avg := sum / float64(len(s.PriorComplexity))
	if avg <= 0 || s.Complexity <= 2.5*avg {
		return Flag{}, false
	}
	return Flag{
		Type:     FlagVocabularySpike,
		Severity: SeverityMedium,
		Points:   10,
		Detail:   fmt.Sprintf("long-word ratio %.2f against a prior average of %.2f", s.Complexity, avg),
	}, true
}

// ScoreTimingRule flags near-perfect answers produced implausibly fast.
type ScoreTimingRule struct{}

func (r *ScoreTimingRule) Name() string { return string(FlagScoreTimingMismatch) }

func (r *ScoreTimingRule) Check(s *Sample) (Flag, bool) {
	if !s.HasTiming || s.Elapsed >= 5*time.Second || s.Score < 9 || s.WordCount <= 30 {
		return Flag{}, false
	}
	return Flag{
		Type:     FlagScoreTimingMismatch,
		Severity: SeverityHigh,
		Points:   20,
		Detail:   fmt.Sprintf("score %d/10 reached in %.1fs", s.Score, s.Elapsed.Seconds()),
	}, true
}

// RepetitionRule flags answers that repeat the same three-word phrases.
type RepetitionRule struct{}

func (r *RepetitionRule) Name() string { return string(FlagRepetitivePattern) }

func (r *RepetitionRule) Check(s *Sample) (Flag, bool) {
	if len(s.Words) < 3 {
		return Flag{}, false
	}
	counts := make(map[string]int)
	repeats := 0
	for i := 0; i+3 <= len(s.Words); i++ {
		key := strings.Join(s.Words[i:i+3], " ")
		counts[key]++
		if counts[key] > 1 {
			repeats++
		}
	}
	if repeats <= 2 {
		return Flag{}, false
	}
	return Flag{
		Type:     FlagRepetitivePattern,
		Severity: SeverityLow,
		Points:   5,
		Detail:   fmt.Sprintf("%d repeated three-word phrases", repeats),
	}, true
}
