package adaptive

// Difficulty levels.
const (
	LevelEasy   = 1
	LevelMedium = 2
	LevelHard   = 3
)

const (
	// DefaultWindowSize is the number of recent scores averaged for level changes.
	DefaultWindowSize = 3

	// DefaultStartLevel is the level a new interview begins at.
	DefaultStartLevel = LevelEasy

	// minScoresForChange is the number of recorded scores required before
	// the level may move.
	minScoresForChange = 2
)

// Thresholds hold the rolling-average bounds for moving off a level.
// A zero bound means no move in that direction.
type Thresholds struct {
	Up   float64
	Down float64
}

var levelThresholds = map[int]Thresholds{
	LevelEasy:   {Up: 7},
	LevelMedium: {Up: 8, Down: 4},
	LevelHard:   {Down: 5},
}

// LevelName returns the display name for a level.
func LevelName(level int) string {
	switch level {
	case LevelEasy:
		return "Easy"
	case LevelMedium:
		return "Medium"
	case LevelHard:
		return "Hard"
	default:
		return "Unknown"
	}
}

// FollowUpReason explains why a follow-up question was requested.
type FollowUpReason string

const (
	ReasonIncompleteAnswer FollowUpReason = "incomplete_answer"
	ReasonCanElaborate     FollowUpReason = "can_elaborate"
	ReasonProbeDeeper      FollowUpReason = "probe_deeper"
)

// FollowUpContext is the answer a pending follow-up refers to.
type FollowUpContext struct {
	Question string         `json:"question"`
	Answer   string         `json:"answer"`
	Score    int            `json:"score"`
	Reason   FollowUpReason `json:"reason"`
}

// Adaptation records one call to RecordScore.
type Adaptation struct {
	Score        int     `json:"score"`
	Average      float64 `json:"average"`
	From         int     `json:"from"`
	To           int     `json:"to"`
	Changed      bool    `json:"changed"`
	Reason       string  `json:"reason"`
	ScoreOrdinal int     `json:"score_ordinal"`
}

// State is the serializable controller state.
type State struct {
	Level           int              `json:"level"`
	WindowSize      int              `json:"window_size"`
	Scores          []int            `json:"scores"`
	LevelHistory    []int            `json:"level_history"`
	QuestionIndex   int              `json:"question_index"`
	FollowUpPending bool             `json:"follow_up_pending"`
	FollowUp        *FollowUpContext `json:"follow_up,omitempty"`
	Adaptations     []Adaptation     `json:"adaptations"`
}
