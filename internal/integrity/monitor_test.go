package integrity

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// distinctWords returns n words that never form a repeated trigram.
func distinctWords(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("word%d", i)
	}
	return strings.Join(words, " ")
}

func flagTypes(flags []Flag) []FlagType {
	var out []FlagType
	for _, f := range flags {
		out = append(out, f.Type)
	}
	return out
}

var t0 = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func TestAnalyzeAnswer_NoTimingSkipsTimingRules(t *testing.T) {
	m := New()
	a := m.AnalyzeAnswerAt(distinctWords(40), 10, t0)
	assert.Empty(t, a.Flags)
	assert.Equal(t, 0, a.Suspicion)
	assert.Empty(t, m.Snapshot().ResponseTimes)
}

func TestAnalyzeAnswer_FastResponse(t *testing.T) {
	m := New()
	m.QuestionAskedAt(t0)
	a := m.AnalyzeAnswerAt(distinctWords(25), 5, t0.Add(2*time.Second))

	assert.ElementsMatch(t, []FlagType{FlagFastResponse, FlagTypingSpeed}, flagTypes(a.Flags))
	assert.Equal(t, 40, a.Points)
	assert.Equal(t, 12, a.Suspicion)
	assert.Equal(t, LevelClean, a.Level)
}

func TestAnalyzeAnswer_ScoreTimingMismatch(t *testing.T) {
	m := New()
	m.QuestionAskedAt(t0)
	a := m.AnalyzeAnswerAt(distinctWords(35), 9, t0.Add(4*time.Second))
	assert.Contains(t, flagTypes(a.Flags), FlagScoreTimingMismatch)
	assert.NotContains(t, flagTypes(a.Flags), FlagFastResponse)
}

func TestAnalyzeAnswer_SlowHumanAnswerIsClean(t *testing.T) {
	m := New()
	m.QuestionAskedAt(t0)
	a := m.AnalyzeAnswerAt(distinctWords(60), 9, t0.Add(45*time.Second))
	assert.Empty(t, a.Flags)
}

func TestAnalyzeAnswer_SuspicionDecays(t *testing.T) {
	m := New()
	m.QuestionAskedAt(t0)
	m.AnalyzeAnswerAt(distinctWords(25), 5, t0.Add(2*time.Second))
	require.Equal(t, 12, m.Suspicion())

	// Unchanged without new answers.
	assert.Equal(t, 12, m.Suspicion())

	a := m.AnalyzeAnswerAt("short answer", 5, t0.Add(time.Minute))
	assert.Empty(t, a.Flags)
	assert.Equal(t, 8, a.Suspicion)
}

func TestAnalyzeAnswer_SuspicionBounded(t *testing.T) {
	m := New()
	for i := range 30 {
		asked := t0.Add(time.Duration(i) * time.Minute)
		m.QuestionAskedAt(asked)
		a := m.AnalyzeAnswerAt(distinctWords(40), 10, asked.Add(time.Second))
		assert.GreaterOrEqual(t, a.Suspicion, 0)
		assert.LessOrEqual(t, a.Suspicion, 100)
	}
	assert.GreaterOrEqual(t, m.Suspicion(), 50)
	assert.Equal(t, 30, m.Report().ResponseTime.Samples)
}

func TestAnalyzeAnswer_LengthSpike(t *testing.T) {
	m := New()
	for range 3 {
		m.AnalyzeAnswerAt(distinctWords(10), 5, t0)
	}
	a := m.AnalyzeAnswerAt(distinctWords(60), 5, t0)
	assert.Equal(t, []FlagType{FlagLengthSpike}, flagTypes(a.Flags))
	assert.Equal(t, 4, a.Flags[0].Answer)
}

func TestAnalyzeAnswer_LengthSpikeNeedsHistory(t *testing.T) {
	m := New()
	for range 2 {
		m.AnalyzeAnswerAt(distinctWords(10), 5, t0)
	}
	a := m.AnalyzeAnswerAt(distinctWords(60), 5, t0)
	assert.Empty(t, a.Flags)
}

func TestAnalyzeAnswer_VocabularySpike(t *testing.T) {
	m := New()
	prior := "alpha beta gamma delta epsilon zeta eta theta iota extraordinary"
	for range 3 {
		m.AnalyzeAnswerAt(prior, 5, t0)
	}
	a := m.AnalyzeAnswerAt("international organization responsibilities communication development alpha beta gamma delta zeta", 5, t0)
	assert.Equal(t, []FlagType{FlagVocabularySpike}, flagTypes(a.Flags))
}

func TestAnalyzeAnswer_Repetition(t *testing.T) {
	m := New()
	a := m.AnalyzeAnswerAt("I like it I like it I like it I like it", 5, t0)
	assert.Equal(t, []FlagType{FlagRepetitivePattern}, flagTypes(a.Flags))
	assert.Equal(t, SeverityLow, a.Flags[0].Severity)
	assert.Equal(t, 2, a.Suspicion)
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		suspicion int
		want      Level
	}{
		{0, LevelClean}, {19, LevelClean}, {20, LevelLow}, {39, LevelLow},
		{40, LevelMedium}, {59, LevelMedium}, {60, LevelHigh}, {100, LevelHigh},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LevelFor(tt.suspicion), "suspicion=%d", tt.suspicion)
	}
}

func TestReport(t *testing.T) {
	m := New()
	m.QuestionAskedAt(t0)
	m.AnalyzeAnswerAt(distinctWords(25), 5, t0.Add(2*time.Second))
	m.QuestionAskedAt(t0.Add(time.Minute))
	m.AnalyzeAnswerAt(distinctWords(15), 5, t0.Add(time.Minute+30*time.Second))

	r := m.Report()
	assert.Equal(t, 2, r.TotalFlags)
	assert.Equal(t, 2, r.FlagsBySeverity[SeverityHigh])
	assert.Equal(t, 0, r.FlagsBySeverity[SeverityLow])
	assert.Equal(t, 2, r.ResponseTime.Samples)
	assert.InDelta(t, 16.0, r.ResponseTime.Average, 1e-9)
	assert.InDelta(t, 2.0, r.ResponseTime.Min, 1e-9)
	assert.InDelta(t, 30.0, r.ResponseTime.Max, 1e-9)
	assert.InDelta(t, 20.0, r.WordCount.Average, 1e-9)
	assert.Equal(t, verdicts[r.Level], r.Verdict)
}

func TestSnapshot_RoundTrip(t *testing.T) {
	m := New()
	for range 3 {
		m.AnalyzeAnswerAt(distinctWords(10), 5, t0)
	}
	m.QuestionAskedAt(t0)

	data, err := json.Marshal(m.Snapshot())
	require.NoError(t, err)
	var st State
	require.NoError(t, json.Unmarshal(data, &st))
	restored := Restore(st)

	now := t0.Add(2 * time.Second)
	assert.Equal(t, m.AnalyzeAnswerAt(distinctWords(60), 9, now), restored.AnalyzeAnswerAt(distinctWords(60), 9, now))
	assert.Equal(t, m.Report(), restored.Report())
}
