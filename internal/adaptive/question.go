package adaptive

// Question types.
const (
	TypeTechnical      = "technical"
	TypeBehavioral     = "behavioral"
	TypeProblemSolving = "problem_solving"
	TypeSystemDesign   = "system_design"
	TypeSituational    = "situational"
	TypeFollowUp       = "follow_up"
)

// typeCycle is the rotation of question types, technical-heavy.
var typeCycle = [10]string{
	TypeTechnical,
	TypeBehavioral,
	TypeTechnical,
	TypeProblemSolving,
	TypeTechnical,
	TypeSystemDesign,
	TypeTechnical,
	TypeSituational,
	TypeTechnical,
	TypeBehavioral,
}

var directives = map[string][3]string{
	TypeTechnical: {
		"Ask a fundamental technical question about core concepts. Keep it approachable.",
		"Ask a technical question that requires applying concepts to a practical scenario.",
		"Ask an advanced technical question about internals, edge cases or performance trade-offs.",
	},
	TypeBehavioral: {
		"Ask a simple behavioral question about teamwork or learning something new.",
		"Ask a behavioral question about handling a conflict or a missed deadline.",
		"Ask a behavioral question about leading a difficult initiative or influencing without authority.",
	},
	TypeProblemSolving: {
		"Pose a small, well-defined problem and ask how the candidate would approach it.",
		"Pose a problem with competing constraints and ask for a step-by-step approach.",
		"Pose an ambiguous problem and ask the candidate to clarify requirements, then solve it.",
	},
	TypeSystemDesign: {
		"Ask the candidate to describe the components of a simple web application.",
		"Ask the candidate to design a service with caching and a database, discussing scale.",
		"Ask the candidate to design a distributed system, covering consistency, partitioning and failure modes.",
	},
	TypeSituational: {
		"Describe a common workplace scenario and ask what the candidate would do.",
		"Describe a scenario with a production incident and ask how the candidate would respond.",
		"Describe a high-stakes scenario with conflicting priorities and ask how the candidate would decide.",
	},
}

var followUpDirectives = map[FollowUpReason]string{
	ReasonIncompleteAnswer: "The previous answer was incomplete. Ask a follow-up that helps the candidate fill the gaps.",
	ReasonCanElaborate:     "The previous answer was reasonable. Ask the candidate to elaborate with a concrete example.",
	ReasonProbeDeeper:      "The previous answer was strong. Ask a deeper follow-up that probes the limits of their knowledge.",
}

// QuestionConfig describes the next question to ask.
type QuestionConfig struct {
	Number    int              `json:"number"`
	Type      string           `json:"type"`
	Level     int              `json:"level"`
	LevelName string           `json:"level_name"`
	Directive string           `json:"directive"`
	FollowUp  *FollowUpContext `json:"follow_up,omitempty"`
}

// IsFollowUp reports whether the config is for a follow-up question.
func (q QuestionConfig) IsFollowUp() bool { return q.Type == TypeFollowUp }

// FollowUpDecision is the result of ShouldFollowUp.
type FollowUpDecision struct {
	FollowUp bool
	Reason   FollowUpReason
}

// ShouldFollowUp decides whether the next question should follow up on the
// answer just given. A pending follow-up is cleared rather than chained.
func (c *Controller) ShouldFollowUp(score int, question, answer string) FollowUpDecision {
	var reason FollowUpReason
	switch {
	case !c.state.FollowUpPending && score >= 3 && score <= 6:
		reason = ReasonCanElaborate
		if score <= 4 {
			reason = ReasonIncompleteAnswer
		}
	case !c.state.FollowUpPending && score >= 8 && c.state.QuestionIndex%3 == 0:
		reason = ReasonProbeDeeper
	default:
		c.state.FollowUpPending = false
		c.state.FollowUp = nil
		return FollowUpDecision{}
	}

	c.state.FollowUpPending = true
	c.state.FollowUp = &FollowUpContext{
		Question: question,
		Answer:   answer,
		Score:    score,
		Reason:   reason,
	}
	return FollowUpDecision{FollowUp: true, Reason: reason}
}

// NextQuestionConfig returns the configuration for the next question at
// the current level. A pending follow-up is consumed and does not advance
// the question index; otherwise the index advances through the type cycle.
func (c *Controller) NextQuestionConfig() QuestionConfig {
	level := c.state.Level
	cfg := QuestionConfig{
		Level:     level,
		LevelName: LevelName(level),
	}

	if c.state.FollowUpPending && c.state.FollowUp != nil {
		fu := *c.state.FollowUp
		c.state.FollowUpPending = false
		c.state.FollowUp = nil

		cfg.Number = c.state.QuestionIndex
		cfg.Type = TypeFollowUp
		cfg.FollowUp = &fu
		cfg.Directive = followUpDirectives[fu.Reason]
		return cfg
	}

	c.state.QuestionIndex++
	cfg.Number = c.state.QuestionIndex
	cfg.Type = typeCycle[(c.state.QuestionIndex-1)%len(typeCycle)]
	cfg.Directive = directives[cfg.Type][level-1]
	return cfg
}

// QuestionIndex returns the number of questions configured so far.
func (c *Controller) QuestionIndex() int { return c.state.QuestionIndex }
