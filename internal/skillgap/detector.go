// Package skillgap compares per-topic interview performance against the
// expectations for a role level.
package skillgap

import (
	"math"
	"slices"
	"sort"
	"strings"

	"github.com/abhisek/interviewiz/internal/topics"
)

// State is the serializable detector state.
type State struct {
	RoleLevel         string           `json:"role_level"`
	TopicScores       map[string][]int `json:"topic_scores"`
	TypeScores        map[string][]int `json:"type_scores"`
	QuestionsAnalyzed int              `json:"questions_analyzed"`
}

// Detector accumulates composite scores per topic and question type.
// It is not safe for concurrent use; callers serialize per session.
type Detector struct {
	state State
}

// New creates a detector for the role level. Unknown levels use mid.
func New(roleLevel string) *Detector {
	return &Detector{state: State{
		RoleLevel:   NormalizeRole(roleLevel),
		TopicScores: make(map[string][]int),
		TypeScores:  make(map[string][]int),
	}}
}

// Restore rebuilds a detector from a snapshot.
func Restore(s State) *Detector {
	d := New(s.RoleLevel)
	d.state.QuestionsAnalyzed = s.QuestionsAnalyzed
	for k, v := range s.TopicScores {
		d.state.TopicScores[k] = append([]int(nil), v...)
	}
	for k, v := range s.TypeScores {
		d.state.TypeScores[k] = append([]int(nil), v...)
	}
	return d
}

// Snapshot returns a deep copy of the detector state.
func (d *Detector) Snapshot() State {
	return Restore(d.state).state
}

// RoleLevel returns the normalized role level.
func (d *Detector) RoleLevel() string { return d.state.RoleLevel }

// TrackAnswer records a composite score against every topic detected in the
// question, and against the question type. Returns the topic names. The
// answer does not influence attribution.
func (d *Detector) TrackAnswer(question, answer string, score int, questionType string) []string {
	score = max(0, min(10, score))
	detected := topics.Detect(question)

	names := make([]string, 0, len(detected))
	for _, t := range detected {
		d.state.TopicScores[t.Name] = append(d.state.TopicScores[t.Name], score)
		names = append(names, t.Name)
	}
	if questionType = strings.TrimSpace(questionType); questionType != "" {
		d.state.TypeScores[questionType] = append(d.state.TypeScores[questionType], score)
	}
	d.state.QuestionsAnalyzed++
	return names
}

// Analysis computes gaps, strengths and a learning path from the scores
// tracked so far. It does not mutate the detector.
func (d *Detector) Analysis() Analysis {
	a := Analysis{
		RoleLevel:         d.state.RoleLevel,
		QuestionsAnalyzed: d.state.QuestionsAnalyzed,
	}

	names := make([]string, 0, len(d.state.TopicScores))
	for name := range d.state.TopicScores {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		scores := d.state.TopicScores[name]
		if len(scores) == 0 {
			continue
		}
		category := topics.CategoryTechnical
		if t, ok := topics.ByName(name); ok {
			category = t.Category
		}
		avg := average(scores)
		baseline := Baseline(d.state.RoleLevel, category)
		a.Topics = append(a.Topics, TopicScore{
			Topic:    name,
			Category: category,
			Average:  avg,
			Count:    len(scores),
			Baseline: baseline,
		})

		switch diff := baseline - avg; {
		case diff > 0:
			a.Gaps = append(a.Gaps, Gap{
				Topic:          name,
				Average:        avg,
				Baseline:       baseline,
				Deficit:        diff,
				Severity:       SeverityFor(diff),
				Recommendation: Recommendation(name),
			})
		case -diff >= strengthMargin:
			a.Strengths = append(a.Strengths, Strength{
				Topic:    name,
				Average:  avg,
				Baseline: baseline,
				Surplus:  -diff,
			})
		}
	}

	sort.SliceStable(a.Gaps, func(i, j int) bool { return a.Gaps[i].Deficit > a.Gaps[j].Deficit })
	sort.SliceStable(a.Strengths, func(i, j int) bool { return a.Strengths[i].Surplus > a.Strengths[j].Surplus })

	a.Types = d.typeComparison()
	a.OverallGapScore = OverallGapScore(a.Gaps)
	a.LearningPath, a.TotalHours = learningPath(a.Gaps)
	return a
}

func (d *Detector) typeComparison() []TypeComparison {
	types := make([]string, 0, len(d.state.TypeScores))
	for qt := range d.state.TypeScores {
		types = append(types, qt)
	}
	slices.Sort(types)

	var out []TypeComparison
	for _, qt := range types {
		scores := d.state.TypeScores[qt]
		if len(scores) == 0 {
			continue
		}
		avg := average(scores)
		expected := Baseline(d.state.RoleLevel, TypeCategory(qt))
		delta := avg - expected
		status := StatusMeets
		switch {
		case delta >= strengthMargin:
			status = StatusAbove
		case delta < 0:
			status = StatusBelow
		}
		out = append(out, TypeComparison{
			Type:     qt,
			Average:  avg,
			Expected: expected,
			Delta:    delta,
			Status:   status,
			Count:    len(scores),
		})
	}
	return out
}

// OverallGapScore normalizes the total deficit to 0–100 where 100 means
// every gap is a full 10-point deficit.
func OverallGapScore(gaps []Gap) int {
	if len(gaps) == 0 {
		return 0
	}
	var total float64
	for _, g := range gaps {
		total += g.Deficit
	}
	score := int(math.Round(100 * total / (10 * float64(len(gaps)))))
	return max(0, min(100, score))
}

func learningPath(gaps []Gap) ([]LearningStep, int) {
	var steps []LearningStep
	total := 0
	for _, g := range gaps {
		if g.Severity == SeverityMinor {
			continue
		}
		hours := hoursSignificant
		if g.Severity == SeverityCritical {
			hours = hoursCritical
		}
		steps = append(steps, LearningStep{
			Priority:       len(steps) + 1,
			Topic:          g.Topic,
			Severity:       g.Severity,
			Hours:          hours,
			Recommendation: g.Recommendation,
		})
		total += hours
		if len(steps) == maxLearningSteps {
			break
		}
	}
	return steps, total
}

func average(scores []int) float64 {
	if len(scores) == 0 {
		return 0
	}
	sum := 0
	for _, s := range scores {
		sum += s
	}
	return float64(sum) / float64(len(scores))
}
