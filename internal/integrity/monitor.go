// Package integrity watches answer timing and text for signs of external
// assistance and keeps a decaying suspicion score.
package integrity

import (
	"math"
	"time"

	"github.com/abhisek/interviewiz/internal/analysis"
)

// Suspicion decay: new = prev*carry + points*weight.
const (
	suspicionCarry  = 0.7
	suspicionWeight = 0.3
)

// longWordLen is the length above which a word counts toward complexity.
const longWordLen = 7

// Monitor holds per-session integrity state.
// It is not safe for concurrent use; callers serialize per session.
type Monitor struct {
	state State
	rules []Rule
}

// New creates a monitor with the default rules.
func New() *Monitor {
	return &Monitor{rules: DefaultRules()}
}

// Restore rebuilds a monitor from a snapshot.
func Restore(s State) *Monitor {
	m := &Monitor{rules: DefaultRules(), state: s}
	m.state.ResponseTimes = append([]float64(nil), s.ResponseTimes...)
	m.state.WordCounts = append([]int(nil), s.WordCounts...)
	m.state.ComplexityRatios = append([]float64(nil), s.ComplexityRatios...)
	m.state.Flags = append([]Flag(nil), s.Flags...)
	if s.QuestionAskedAt != nil {
		t := *s.QuestionAskedAt
		m.state.QuestionAskedAt = &t
	}
	return m
}

// Snapshot returns a deep copy of the monitor state.
func (m *Monitor) Snapshot() State {
	return Restore(m.state).state
}

// Suspicion returns the current 0–100 suspicion score.
func (m *Monitor) Suspicion() int { return m.state.Suspicion }

// Level returns the current suspicion bucket.
func (m *Monitor) Level() Level { return LevelFor(m.state.Suspicion) }

// QuestionAsked stamps the time the current question was posed.
func (m *Monitor) QuestionAsked() {
	m.QuestionAskedAt(time.Now())
}

// QuestionAskedAt stamps the question time explicitly.
func (m *Monitor) QuestionAskedAt(t time.Time) {
	m.state.QuestionAskedAt = &t
}

// AnalyzeAnswer runs every rule against the answer using the current time.
func (m *Monitor) AnalyzeAnswer(answer string, score int) Analysis {
	return m.AnalyzeAnswerAt(answer, score, time.Now())
}

// AnalyzeAnswerAt runs every rule against the answer as of now, updates
// the suspicion score once and appends the answer to the history.
func (m *Monitor) AnalyzeAnswerAt(answer string, score int, now time.Time) Analysis {
	words := analysis.Words(answer)
	sample := &Sample{
		Text:            answer,
		Words:           words,
		WordCount:       len(words),
		Score:           score,
		Complexity:      complexity(words),
		PriorWordCounts: m.state.WordCounts,
		PriorComplexity: m.state.ComplexityRatios,
	}
	if asked := m.state.QuestionAskedAt; asked != nil && !now.Before(*asked) {
		sample.HasTiming = true
		sample.Elapsed = now.Sub(*asked)
	}

	m.state.Answers++
	flags := RunRules(m.rules, sample)
	points := 0
	for i := range flags {
		flags[i].Answer = m.state.Answers
		points += flags[i].Points
	}

	suspicion := float64(m.state.Suspicion)*suspicionCarry + float64(points)*suspicionWeight
	m.state.Suspicion = max(0, min(100, int(math.Round(suspicion))))
	m.state.Flags = append(m.state.Flags, flags...)

	if sample.HasTiming {
		m.state.ResponseTimes = append(m.state.ResponseTimes, sample.Elapsed.Seconds())
	}
	m.state.WordCounts = append(m.state.WordCounts, sample.WordCount)
	m.state.ComplexityRatios = append(m.state.ComplexityRatios, sample.Complexity)
	m.state.QuestionAskedAt = nil

	return Analysis{
		Flags:     flags,
		Points:    points,
		Suspicion: m.state.Suspicion,
		Level:     LevelFor(m.state.Suspicion),
	}
}

func complexity(words []string) float64 {
	if len(words) == 0 {
		return 0
	}
	long := 0
	for _, w := range words {
		if len([]rune(w)) > longWordLen {
			long++
		}
	}
	return float64(long) / float64(len(words))
}
