// Package adaptive tracks recent answer scores and moves the interview
// difficulty between Easy, Medium and Hard.
package adaptive

import "fmt"

// Config holds the controller's tunables.
type Config struct {
	WindowSize int
	StartLevel int
}

// DefaultConfig returns the default controller configuration.
func DefaultConfig() Config {
	return Config{
		WindowSize: DefaultWindowSize,
		StartLevel: DefaultStartLevel,
	}
}

// Controller adjusts difficulty from a rolling window of scores.
// It is not safe for concurrent use; callers serialize per session.
type Controller struct {
	state State
}

// New creates a controller. Out-of-range settings fall back to defaults.
func New(cfg Config) *Controller {
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = DefaultWindowSize
	}
	if cfg.StartLevel < LevelEasy || cfg.StartLevel > LevelHard {
		cfg.StartLevel = DefaultStartLevel
	}
	return &Controller{state: State{
		Level:      cfg.StartLevel,
		WindowSize: cfg.WindowSize,
	}}
}

// Restore rebuilds a controller from a snapshot.
func Restore(s State) *Controller {
	c := &Controller{state: s}
	c.state.Scores = append([]int(nil), s.Scores...)
	c.state.LevelHistory = append([]int(nil), s.LevelHistory...)
	c.state.Adaptations = append([]Adaptation(nil), s.Adaptations...)
	if s.FollowUp != nil {
		fu := *s.FollowUp
		c.state.FollowUp = &fu
	}
	if c.state.WindowSize <= 0 {
		c.state.WindowSize = DefaultWindowSize
	}
	c.state.Level = clampLevel(c.state.Level)
	return c
}

// Snapshot returns a deep copy of the controller state.
func (c *Controller) Snapshot() State {
	return Restore(c.state).state
}

// Level returns the current difficulty level.
func (c *Controller) Level() int { return c.state.Level }

// LevelHistory returns the level in effect when each score was recorded.
func (c *Controller) LevelHistory() []int {
	return append([]int(nil), c.state.LevelHistory...)
}

// Adaptations returns every recorded adaptation in order.
func (c *Controller) Adaptations() []Adaptation {
	return append([]Adaptation(nil), c.state.Adaptations...)
}

// RecordScore appends a score and moves the level by at most one step
// when the rolling average crosses the current level's threshold.
func (c *Controller) RecordScore(score int) Adaptation {
	score = max(0, min(10, score))
	from := c.state.Level

	c.state.Scores = append(c.state.Scores, score)
	c.state.LevelHistory = append(c.state.LevelHistory, from)

	avg := c.rollingAverage()
	a := Adaptation{
		Score:        score,
		Average:      avg,
		From:         from,
		To:           from,
		ScoreOrdinal: len(c.state.Scores),
		Reason:       "insufficient history",
	}

	if len(c.state.Scores) >= minScoresForChange {
		th := levelThresholds[from]
		switch {
		case th.Up > 0 && avg >= th.Up:
			a.To = clampLevel(from + 1)
			a.Reason = fmt.Sprintf("rolling average %.1f >= %.0f on %s", avg, th.Up, LevelName(from))
		case th.Down > 0 && avg <= th.Down:
			a.To = clampLevel(from - 1)
			a.Reason = fmt.Sprintf("rolling average %.1f <= %.0f on %s", avg, th.Down, LevelName(from))
		default:
			a.Reason = fmt.Sprintf("rolling average %.1f within %s band", avg, LevelName(from))
		}
	}

	a.Changed = a.To != from
	c.state.Level = a.To
	c.state.Adaptations = append(c.state.Adaptations, a)
	return a
}

func (c *Controller) rollingAverage() float64 {
	scores := c.state.Scores
	if n := c.state.WindowSize; len(scores) > n {
		scores = scores[len(scores)-n:]
	}
	if len(scores) == 0 {
		return 0
	}
	sum := 0
	for _, s := range scores {
		sum += s
	}
	return float64(sum) / float64(len(scores))
}

func clampLevel(level int) int {
	return max(LevelEasy, min(LevelHard, level))
}
