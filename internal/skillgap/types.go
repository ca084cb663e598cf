package skillgap

// Severity grades a gap by its deficit.
type Severity string

const (
	SeverityCritical    Severity = "critical"
	SeveritySignificant Severity = "significant"
	SeverityMinor       Severity = "minor"
)

// SeverityFor grades a positive deficit.
func SeverityFor(deficit float64) Severity {
	switch {
	case deficit >= 3:
		return SeverityCritical
	case deficit >= 1.5:
		return SeveritySignificant
	default:
		return SeverityMinor
	}
}

// Status of a question type against expectations.
type Status string

const (
	StatusAbove Status = "above"
	StatusMeets Status = "meets"
	StatusBelow Status = "below"
)

const (
	strengthMargin   = 1.0
	maxLearningSteps = 5
	hoursCritical    = 20
	hoursSignificant = 10
)

// TopicScore is the running average for one topic.
type TopicScore struct {
	Topic    string  `json:"topic"`
	Category string  `json:"category"`
	Average  float64 `json:"average"`
	Count    int     `json:"count"`
	Baseline float64 `json:"baseline"`
}

// Gap is a topic averaging below its baseline.
type Gap struct {
	Topic          string   `json:"topic"`
	Average        float64  `json:"average"`
	Baseline       float64  `json:"baseline"`
	Deficit        float64  `json:"deficit"`
	Severity       Severity `json:"severity"`
	Recommendation string   `json:"recommendation"`
}

// Strength is a topic at least one point above its baseline.
type Strength struct {
	Topic    string  `json:"topic"`
	Average  float64 `json:"average"`
	Baseline float64 `json:"baseline"`
	Surplus  float64 `json:"surplus"`
}

// TypeComparison compares a question type's average with expectations.
type TypeComparison struct {
	Type     string  `json:"type"`
	Average  float64 `json:"average"`
	Expected float64 `json:"expected"`
	Delta    float64 `json:"delta"`
	Status   Status  `json:"status"`
	Count    int     `json:"count"`
}

// LearningStep is one prioritized entry of the learning path.
type LearningStep struct {
	Priority       int      `json:"priority"`
	Topic          string   `json:"topic"`
	Severity       Severity `json:"severity"`
	Hours          int      `json:"hours"`
	Recommendation string   `json:"recommendation"`
}

// Analysis is the full skill-gap result.
type Analysis struct {
	RoleLevel         string           `json:"role_level"`
	QuestionsAnalyzed int              `json:"questions_analyzed"`
	Topics            []TopicScore     `json:"topics"`
	Gaps              []Gap            `json:"gaps"`
	Strengths         []Strength       `json:"strengths"`
	Types             []TypeComparison `json:"types"`
	OverallGapScore   int              `json:"overall_gap_score"`
	LearningPath      []LearningStep   `json:"learning_path"`
	TotalHours        int              `json:"total_hours"`
}

// CriticalGaps returns the gaps graded critical.
func (a Analysis) CriticalGaps() []Gap {
	var out []Gap
	for _, g := range a.Gaps {
		if g.Severity == SeverityCritical {
			out = append(out, g)
		}
	}
	return out
}
