// Package session owns the per-interview aggregate and runs the evaluation
// pipeline on every candidate message.
package session

import (
	"math"
	"time"

	"github.com/abhisek/interviewiz/internal/adaptive"
	"github.com/abhisek/interviewiz/internal/evaluator"
	"github.com/abhisek/interviewiz/internal/feedback"
	"github.com/abhisek/interviewiz/internal/integrity"
	"github.com/abhisek/interviewiz/internal/interviewer"
	"github.com/abhisek/interviewiz/internal/profile"
	"github.com/abhisek/interviewiz/internal/skillgap"
)

// Session is the state of one interview. It is not safe for concurrent
// use; the Engine serializes access per session.
type Session struct {
	ID        string
	StartedAt time.Time
	UpdatedAt time.Time

	// QuestionCount is the number of questions posed so far.
	QuestionCount int
	// AnswerCount is the number of real (non-control) answers received.
	AnswerCount int
	// ScoreSum and ScoreCount accumulate the raw model scores.
	ScoreSum   int
	ScoreCount int

	Completed     bool
	CompletedAt   *time.Time
	FinalScore    *float64
	DeclaredScore *float64
	Passed        *bool

	Profile   *profile.Profile
	Adaptive  *adaptive.Controller
	Integrity *integrity.Monitor
	SkillGap  *skillgap.Detector

	Evaluations []evaluator.Evaluation
	History     []interviewer.Turn

	// CurrentQuestion is the cleaned text of the question awaiting an answer.
	CurrentQuestion string
	// AskedConfig is the configuration CurrentQuestion was asked under.
	AskedConfig adaptive.QuestionConfig
	// NextConfig directs the question the next interviewer reply will ask.
	NextConfig adaptive.QuestionConfig

	Report *feedback.Report
}

// New creates a session at the profile's start level. A nil profile starts
// at Easy with mid-level expectations.
func New(id string, p *profile.Profile, windowSize int, now time.Time) *Session {
	ctrl := adaptive.New(adaptive.Config{WindowSize: windowSize, StartLevel: p.StartLevel()})
	s := &Session{
		ID:        id,
		StartedAt: now,
		UpdatedAt: now,
		Profile:   p,
		Adaptive:  ctrl,
		Integrity: integrity.New(),
		SkillGap:  skillgap.New(p.Role()),
	}
	s.NextConfig = ctrl.NextQuestionConfig()
	return s
}

// Elapsed returns the interview duration as of now, or up to completion.
func (s *Session) Elapsed(now time.Time) time.Duration {
	if s.CompletedAt != nil {
		return s.CompletedAt.Sub(s.StartedAt)
	}
	return now.Sub(s.StartedAt)
}

// AverageModelScore is the mean raw model score, 0 with no scores.
func (s *Session) AverageModelScore() float64 {
	if s.ScoreCount == 0 {
		return 0
	}
	return float64(s.ScoreSum) / float64(s.ScoreCount)
}

// computeFinalScore is the mean composite rounded to one decimal. With no
// evaluations it is the declared completion score, else 0.
func (s *Session) computeFinalScore() float64 {
	if len(s.Evaluations) == 0 {
		if s.DeclaredScore != nil {
			return *s.DeclaredScore
		}
		return 0
	}
	var sum int
	for _, ev := range s.Evaluations {
		sum += ev.Composite
	}
	mean := float64(sum) / float64(len(s.Evaluations))
	return math.Round(mean*10) / 10
}

// BuildReport synthesizes feedback from the current state. For an open
// session it is an interim report over the answers so far.
func (s *Session) BuildReport() feedback.Report {
	score := s.computeFinalScore()
	if s.FinalScore != nil {
		score = *s.FinalScore
	}
	gaps := s.SkillGap.Analysis()
	ir := s.Integrity.Report()
	return feedback.Synthesize(feedback.Input{
		Evaluations:  s.Evaluations,
		FinalScore:   score,
		LevelHistory: s.Adaptive.LevelHistory(),
		FinalLevel:   s.Adaptive.Level(),
		SkillGap:     &gaps,
		Integrity:    &ir,
	})
}

// complete marks the session finished and fixes its final report.
func (s *Session) complete(now time.Time) {
	score := s.computeFinalScore()
	s.Completed = true
	s.CompletedAt = &now
	s.FinalScore = &score
	r := s.BuildReport()
	s.Report = &r
}
