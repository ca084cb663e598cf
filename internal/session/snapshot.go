package session

import (
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/mod/semver"

	"github.com/abhisek/interviewiz/internal/adaptive"
	"github.com/abhisek/interviewiz/internal/evaluator"
	"github.com/abhisek/interviewiz/internal/feedback"
	"github.com/abhisek/interviewiz/internal/integrity"
	"github.com/abhisek/interviewiz/internal/interviewer"
	"github.com/abhisek/interviewiz/internal/profile"
	"github.com/abhisek/interviewiz/internal/skillgap"
	"github.com/abhisek/interviewiz/internal/store"
)

// SnapshotVersion is the current snapshot format. Snapshots with the same
// major version can be restored.
const SnapshotVersion = "v1.0.0"

// Snapshot is the serialized form of a Session.
type Snapshot struct {
	Version   string    `json:"version"`
	ID        string    `json:"id"`
	StartedAt time.Time `json:"started_at"`
	UpdatedAt time.Time `json:"updated_at"`

	QuestionCount int `json:"question_count"`
	AnswerCount   int `json:"answer_count"`
	ScoreSum      int `json:"score_sum"`
	ScoreCount    int `json:"score_count"`

	Completed     bool       `json:"completed"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	FinalScore    *float64   `json:"final_score,omitempty"`
	DeclaredScore *float64   `json:"declared_score,omitempty"`
	Passed        *bool      `json:"passed,omitempty"`

	Profile   *profile.Profile `json:"profile,omitempty"`
	Adaptive  adaptive.State   `json:"adaptive"`
	Integrity integrity.State  `json:"integrity"`
	SkillGap  skillgap.State   `json:"skill_gap"`

	Evaluations []evaluator.Evaluation `json:"evaluations"`
	History     []interviewer.Turn     `json:"history"`

	CurrentQuestion string                  `json:"current_question"`
	AskedConfig     adaptive.QuestionConfig `json:"asked_config"`
	NextConfig      adaptive.QuestionConfig `json:"next_config"`

	Report *feedback.Report `json:"report,omitempty"`
}

// Snapshot returns a deep copy of the session state.
func (s *Session) Snapshot() *Snapshot {
	return &Snapshot{
		Version:         SnapshotVersion,
		ID:              s.ID,
		StartedAt:       s.StartedAt,
		UpdatedAt:       s.UpdatedAt,
		QuestionCount:   s.QuestionCount,
		AnswerCount:     s.AnswerCount,
		ScoreSum:        s.ScoreSum,
		ScoreCount:      s.ScoreCount,
		Completed:       s.Completed,
		CompletedAt:     s.CompletedAt,
		FinalScore:      s.FinalScore,
		DeclaredScore:   s.DeclaredScore,
		Passed:          s.Passed,
		Profile:         s.Profile,
		Adaptive:        s.Adaptive.Snapshot(),
		Integrity:       s.Integrity.Snapshot(),
		SkillGap:        s.SkillGap.Snapshot(),
		Evaluations:     append([]evaluator.Evaluation(nil), s.Evaluations...),
		History:         append([]interviewer.Turn(nil), s.History...),
		CurrentQuestion: s.CurrentQuestion,
		AskedConfig:     s.AskedConfig,
		NextConfig:      s.NextConfig,
		Report:          s.Report,
	}
}

// FromSnapshot restores a session. Snapshots from another major version
// are rejected with ErrIncompatibleSnapshot.
func FromSnapshot(snap *Snapshot) (*Session, error) {
	if !semver.IsValid(snap.Version) || semver.Major(snap.Version) != semver.Major(SnapshotVersion) {
		return nil, fmt.Errorf("%w: version %q", ErrIncompatibleSnapshot, snap.Version)
	}
	return &Session{
		ID:              snap.ID,
		StartedAt:       snap.StartedAt,
		UpdatedAt:       snap.UpdatedAt,
		QuestionCount:   snap.QuestionCount,
		AnswerCount:     snap.AnswerCount,
		ScoreSum:        snap.ScoreSum,
		ScoreCount:      snap.ScoreCount,
		Completed:       snap.Completed,
		CompletedAt:     snap.CompletedAt,
		FinalScore:      snap.FinalScore,
		DeclaredScore:   snap.DeclaredScore,
		Passed:          snap.Passed,
		Profile:         snap.Profile,
		Adaptive:        adaptive.Restore(snap.Adaptive),
		Integrity:       integrity.Restore(snap.Integrity),
		SkillGap:        skillgap.Restore(snap.SkillGap),
		Evaluations:     snap.Evaluations,
		History:         snap.History,
		CurrentQuestion: snap.CurrentQuestion,
		AskedConfig:     snap.AskedConfig,
		NextConfig:      snap.NextConfig,
		Report:          snap.Report,
	}, nil
}

// toRecord encodes the session for a store.
func (s *Session) toRecord() (*store.SessionRecord, error) {
	data, err := json.Marshal(s.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("encode session %s: %w", s.ID, err)
	}
	var final float64
	if s.FinalScore != nil {
		final = *s.FinalScore
	}
	return &store.SessionRecord{
		SessionSummary: store.SessionSummary{
			ID:            s.ID,
			Completed:     s.Completed,
			QuestionCount: s.QuestionCount,
			FinalScore:    final,
			RoleLevel:     s.SkillGap.RoleLevel(),
			CreatedAt:     s.StartedAt,
			UpdatedAt:     s.UpdatedAt,
		},
		Data: data,
	}, nil
}

// fromRecord decodes a stored session.
func fromRecord(rec *store.SessionRecord) (*Session, error) {
	var snap Snapshot
	if err := json.Unmarshal(rec.Data, &snap); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", rec.ID, err)
	}
	return FromSnapshot(&snap)
}
