package skillgap

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_UnknownRoleFallsBackToMid(t *testing.T) {
	assert.Equal(t, RoleMid, New("principal").RoleLevel())
	assert.Equal(t, RoleSenior, New(RoleSenior).RoleLevel())
}

func TestTrackAnswer_GeneralStrength(t *testing.T) {
	d := New(RoleMid)
	for range 3 {
		got := d.TrackAnswer("Describe your favorite project.", "It was fun and useful.", 9, "technical")
		assert.Equal(t, []string{"General"}, got)
	}

	a := d.Analysis()
	require.Len(t, a.Topics, 1)
	assert.InDelta(t, 9.0, a.Topics[0].Average, 1e-9)
	assert.Empty(t, a.Gaps)
	require.Len(t, a.Strengths, 1)
	assert.Equal(t, "General", a.Strengths[0].Topic)
	assert.InDelta(t, 2.0, a.Strengths[0].Surplus, 1e-9)
	assert.Equal(t, 0, a.OverallGapScore)
	assert.Equal(t, 3, a.QuestionsAnalyzed)
}

func TestAnalysis_GapsAndLearningPath(t *testing.T) {
	d := New(RoleMid)
	d.TrackAnswer("How do you design a database index?", "Not sure.", 3, "technical")
	d.TrackAnswer("How do you design a database index?", "Not sure.", 3, "technical")
	d.TrackAnswer("How would you build a distributed cache?", "Not sure.", 4, "system_design")
	d.TrackAnswer("Tell me about a time you handled conflict.", "Not sure.", 4, "behavioral")

	a := d.Analysis()
	require.Len(t, a.Gaps, 3)

	assert.Equal(t, "Database", a.Gaps[0].Topic)
	assert.Equal(t, SeverityCritical, a.Gaps[0].Severity)
	assert.InDelta(t, 4.0, a.Gaps[0].Deficit, 1e-9)

	assert.Equal(t, "Behavioral", a.Gaps[1].Topic)
	assert.Equal(t, SeveritySignificant, a.Gaps[1].Severity)

	assert.Equal(t, "System Design", a.Gaps[2].Topic)
	assert.Equal(t, SeverityMinor, a.Gaps[2].Severity)

	require.Len(t, a.LearningPath, 2)
	assert.Equal(t, 20, a.LearningPath[0].Hours)
	assert.Equal(t, 10, a.LearningPath[1].Hours)
	assert.Equal(t, 30, a.TotalHours)
	assert.Equal(t, 23, a.OverallGapScore)
	assert.Len(t, a.CriticalGaps(), 1)
	assert.NotEmpty(t, a.Gaps[0].Recommendation)
}

func TestAnalysis_LearningPathCapped(t *testing.T) {
	d := New(RoleSenior)
	for _, q := range []string{"javascript", "react", "python", "database", "system design", "team"} {
		d.TrackAnswer(q, "", 0, "technical")
	}
	a := d.Analysis()
	assert.Len(t, a.Gaps, 6)
	assert.Len(t, a.LearningPath, 5)
	assert.Equal(t, 100, a.TotalHours)
	for i, step := range a.LearningPath {
		assert.Equal(t, i+1, step.Priority)
	}
}

func TestAnalysis_TypeComparison(t *testing.T) {
	d := New(RoleMid)
	d.TrackAnswer("q", "a", 9, "technical")
	d.TrackAnswer("q", "a", 5, "behavioral")
	d.TrackAnswer("q", "a", 7, "situational")

	a := d.Analysis()
	require.Len(t, a.Types, 3)
	byType := make(map[string]TypeComparison)
	for _, tc := range a.Types {
		byType[tc.Type] = tc
	}
	assert.Equal(t, StatusAbove, byType["technical"].Status)
	assert.Equal(t, StatusBelow, byType["behavioral"].Status)
	assert.Equal(t, StatusMeets, byType["situational"].Status)
	assert.InDelta(t, 7.0, byType["situational"].Expected, 1e-9)
}

func TestOverallGapScore(t *testing.T) {
	assert.Equal(t, 0, OverallGapScore(nil))
	assert.Equal(t, 100, OverallGapScore([]Gap{{Deficit: 10}, {Deficit: 10}}))
	assert.Equal(t, 50, OverallGapScore([]Gap{{Deficit: 10}, {Deficit: 0}}))
}

func TestSeverityFor(t *testing.T) {
	assert.Equal(t, SeverityCritical, SeverityFor(3))
	assert.Equal(t, SeveritySignificant, SeverityFor(1.5))
	assert.Equal(t, SeverityMinor, SeverityFor(1.49))
}

func TestSnapshot_RoundTrip(t *testing.T) {
	d := New(RoleJunior)
	d.TrackAnswer("Explain React hooks", "useState and useEffect", 6, "technical")
	d.TrackAnswer("Tell me about a conflict", "We talked", 3, "behavioral")

	data, err := json.Marshal(d.Snapshot())
	require.NoError(t, err)
	var st State
	require.NoError(t, json.Unmarshal(data, &st))
	restored := Restore(st)

	assert.Equal(t, d.Analysis(), restored.Analysis())
	d.TrackAnswer("python generators", "yield", 8, "technical")
	restored.TrackAnswer("python generators", "yield", 8, "technical")
	assert.Equal(t, d.Analysis(), restored.Analysis())
}
