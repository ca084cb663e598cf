package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/interviewiz/internal/adaptive"
	"github.com/abhisek/interviewiz/internal/evaluator"
	"github.com/abhisek/interviewiz/internal/feedback"
	"github.com/abhisek/interviewiz/internal/integrity"
	"github.com/abhisek/interviewiz/internal/interviewer"
	"github.com/abhisek/interviewiz/internal/llm"
	"github.com/abhisek/interviewiz/internal/profile"
	"github.com/abhisek/interviewiz/internal/protocol"
	"github.com/abhisek/interviewiz/internal/store"
)

// PassScore is the final score at or above which a session without a
// declared verdict counts as passed.
const PassScore = 6.0

// Config holds the interview limits.
type Config struct {
	// MaxQuestions ends the interview once that many questions have been
	// posed and the last one answered or skipped. 0 disables the limit.
	MaxQuestions int
	// MaxDuration ends the interview on the first message after it
	// elapses. 0 disables the limit.
	MaxDuration time.Duration
	// WindowSize is the adaptive controller's rolling window.
	WindowSize int
	// SaveAttempts bounds the retries of the final save.
	SaveAttempts int
	SaveBackoff  time.Duration
}

// DefaultConfig returns the default interview limits.
func DefaultConfig() Config {
	return Config{
		MaxQuestions: 10,
		MaxDuration:  45 * time.Minute,
		WindowSize:   adaptive.DefaultWindowSize,
		SaveAttempts: 3,
		SaveBackoff:  200 * time.Millisecond,
	}
}

// Responder produces the interviewer's reply for a turn.
type Responder interface {
	Respond(ctx context.Context, req interviewer.Request) (string, error)
}

// Options configures an Engine.
type Options struct {
	Config      Config
	Store       store.SessionStore
	Events      store.EventRepo
	Interviewer Responder
	Logger      *slog.Logger
	// Now overrides the clock.
	Now func() time.Time
}

// TurnMetadata describes how the pipeline scored a real answer.
type TurnMetadata struct {
	Composite      int                     `json:"composite"`
	AIScore        int                     `json:"ai_score"`
	Level          int                     `json:"level"`
	LevelName      string                  `json:"level_name"`
	LevelChanged   bool                    `json:"level_changed"`
	Suspicion      int                     `json:"suspicion"`
	SuspicionLevel integrity.Level         `json:"suspicion_level"`
	Flags          []integrity.Flag        `json:"flags,omitempty"`
	FollowUp       bool                    `json:"follow_up"`
	FollowUpReason adaptive.FollowUpReason `json:"follow_up_reason,omitempty"`
	Topics         []string                `json:"topics,omitempty"`
}

// TurnResult is the outcome of one candidate message.
type TurnResult struct {
	SessionID string            `json:"session_id"`
	Response  string            `json:"response"`
	Completed bool              `json:"completed"`
	Metadata  *TurnMetadata     `json:"metadata,omitempty"`
	Report    *feedback.Report  `json:"report,omitempty"`
	Integrity *integrity.Report `json:"integrity,omitempty"`
}

// CreateOptions configures Create.
type CreateOptions struct {
	// ID is generated when empty.
	ID      string
	Profile *profile.Profile
}

type entry struct {
	mu      sync.Mutex
	sess    *Session
	deleted bool
}

// Engine routes messages to sessions. Messages for one session are
// processed one at a time; different sessions run concurrently.
type Engine struct {
	cfg    Config
	store  store.SessionStore
	events store.EventRepo
	iv     Responder
	logger *slog.Logger
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

// NewEngine creates an Engine. A nil store keeps sessions in memory and
// nil events are discarded.
func NewEngine(opts Options) *Engine {
	if opts.Store == nil {
		opts.Store = store.NewMemoryStore()
	}
	if opts.Events == nil {
		opts.Events = store.NopEventRepo{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Config.SaveAttempts <= 0 {
		opts.Config.SaveAttempts = 1
	}
	return &Engine{
		cfg:      opts.Config,
		store:    opts.Store,
		events:   opts.Events,
		iv:       opts.Interviewer,
		logger:   opts.Logger,
		now:      opts.Now,
		sessions: make(map[string]*entry),
	}
}

// Config returns the engine's interview limits.
func (e *Engine) Config() Config { return e.cfg }

// Create starts a session and persists it.
func (e *Engine) Create(ctx context.Context, opts CreateOptions) (*Snapshot, error) {
	id := opts.ID
	if id == "" {
		id = uuid.NewString()
	}
	if err := store.ValidateID(id); err != nil {
		return nil, err
	}

	e.mu.Lock()
	_, exists := e.sessions[id]
	e.mu.Unlock()
	if exists {
		return nil, ErrSessionExists
	}
	rec, err := e.store.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	if rec != nil {
		return nil, ErrSessionExists
	}

	s := New(id, opts.Profile, e.cfg.WindowSize, e.now())
	if err := e.save(ctx, s); err != nil {
		return nil, err
	}
	snap := s.Snapshot()

	e.mu.Lock()
	if _, ok := e.sessions[id]; ok {
		e.mu.Unlock()
		return nil, ErrSessionExists
	}
	e.sessions[id] = &entry{sess: s}
	e.mu.Unlock()

	e.appendEvent(ctx, snap, store.SessionActionStart)
	e.logger.InfoContext(ctx, "session created",
		slog.String("session_id", id),
		slog.String("role_level", snap.SkillGap.RoleLevel),
		slog.Int("start_level", snap.Adaptive.Level),
	)
	return snap, nil
}

// Get returns a snapshot of the session.
func (e *Engine) Get(ctx context.Context, id string) (*Snapshot, error) {
	var snap *Snapshot
	err := e.withSession(ctx, id, false, func(s *Session) error {
		snap = s.Snapshot()
		return nil
	})
	return snap, err
}

// List returns stored session summaries, most recently updated first.
func (e *Engine) List(ctx context.Context) ([]store.SessionSummary, error) {
	return e.store.List(ctx)
}

// Report returns the final report of a completed session, or an interim
// report over the answers so far.
func (e *Engine) Report(ctx context.Context, id string) (*feedback.Report, error) {
	var r feedback.Report
	err := e.withSession(ctx, id, false, func(s *Session) error {
		if s.Report != nil {
			r = *s.Report
			return nil
		}
		r = s.BuildReport()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Reset deletes a session from the registry and the store.
func (e *Engine) Reset(ctx context.Context, id string) error {
	if err := store.ValidateID(id); err != nil {
		return err
	}

	e.mu.Lock()
	ent := e.sessions[id]
	delete(e.sessions, id)
	e.mu.Unlock()

	var s *Snapshot
	if ent != nil {
		ent.mu.Lock()
		ent.deleted = true
		s = ent.sess.Snapshot()
		ent.mu.Unlock()
	} else {
		rec, err := e.store.Load(ctx, id)
		if err != nil {
			return fmt.Errorf("load session %s: %w", id, err)
		}
		if rec == nil {
			return ErrSessionNotFound
		}
		if sess, err := fromRecord(rec); err == nil {
			s = sess.Snapshot()
		}
	}

	if err := e.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	if s == nil {
		s = &Snapshot{ID: id}
	}
	e.appendEvent(ctx, s, store.SessionActionReset)
	e.logger.InfoContext(ctx, "session reset", slog.String("session_id", id))
	return nil
}

// HandleMessage processes one candidate message. An unknown id starts a
// new session. Empty text counts as no response.
func (e *Engine) HandleMessage(ctx context.Context, id, text string) (*TurnResult, error) {
	var res *TurnResult
	err := e.withSession(ctx, id, true, func(s *Session) error {
		var err error
		res, err = e.handle(ctx, s, text)
		return err
	})
	return res, err
}

// withSession runs fn with the session locked.
func (e *Engine) withSession(ctx context.Context, id string, create bool, fn func(*Session) error) error {
	if err := store.ValidateID(id); err != nil {
		return err
	}
	for {
		ent, err := e.resolve(ctx, id, create)
		if err != nil {
			return err
		}
		ent.mu.Lock()
		if ent.deleted {
			ent.mu.Unlock()
			continue
		}
		err = fn(ent.sess)
		ent.mu.Unlock()
		return err
	}
}

// resolve finds the session in the registry, then the store, and
// optionally creates it.
func (e *Engine) resolve(ctx context.Context, id string, create bool) (*entry, error) {
	e.mu.Lock()
	ent, ok := e.sessions[id]
	e.mu.Unlock()
	if ok {
		return ent, nil
	}

	rec, err := e.store.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}

	var s *Session
	switch {
	case rec != nil:
		if s, err = fromRecord(rec); err != nil {
			return nil, err
		}
	case create:
		s = New(id, nil, e.cfg.WindowSize, e.now())
	default:
		return nil, ErrSessionNotFound
	}

	e.mu.Lock()
	if existing, ok := e.sessions[id]; ok {
		e.mu.Unlock()
		return existing, nil
	}
	ent = &entry{sess: s}
	e.sessions[id] = ent
	e.mu.Unlock()

	if rec == nil {
		e.appendEvent(ctx, &Snapshot{ID: id}, store.SessionActionStart)
		e.logger.InfoContext(ctx, "session started on first message", slog.String("session_id", id))
	}
	return ent, nil
}

func (e *Engine) handle(ctx context.Context, s *Session, text string) (*TurnResult, error) {
	if s.Completed {
		return nil, ErrSessionCompleted
	}
	if e.iv == nil {
		return nil, &CollaboratorError{Err: errors.New("no interviewer configured")}
	}

	msg := strings.TrimSpace(text)
	if msg == "" {
		msg = interviewer.ControlNoResponse
	}
	isAnswer := !interviewer.IsControl(msg)
	now := e.now()

	closing := msg == interviewer.ControlEnd ||
		(e.cfg.MaxQuestions > 0 && msg != interviewer.ControlStart && s.QuestionCount >= e.cfg.MaxQuestions) ||
		(e.cfg.MaxDuration > 0 && s.Elapsed(now) >= e.cfg.MaxDuration)

	reply, err := e.iv.Respond(ctx, interviewer.Request{
		SessionID:     s.ID,
		History:       s.History,
		Message:       msg,
		Next:          s.NextConfig,
		Profile:       s.Profile,
		QuestionCount: s.QuestionCount,
		MaxQuestions:  e.cfg.MaxQuestions,
		Elapsed:       s.Elapsed(now),
		MaxDuration:   e.cfg.MaxDuration,
		Closing:       closing,
	})
	if err != nil {
		e.logger.WarnContext(ctx, "interviewer call failed",
			slog.String("session_id", s.ID),
			slog.Any("error", err),
		)
		return nil, &CollaboratorError{Err: err}
	}

	parsed := protocol.Parse(reply)
	res := &TurnResult{SessionID: s.ID, Response: parsed.Clean}

	if isAnswer {
		s.AnswerCount++
		if score, ok := parsed.Score(); ok {
			res.Metadata = e.evaluate(s, msg, score, now)
		}
	}

	s.History = append(s.History,
		interviewer.Turn{Role: llm.RoleUser, Content: interviewer.UserContent(msg), At: now},
		interviewer.Turn{Role: llm.RoleAssistant, Content: parsed.Clean, At: e.now()},
	)
	s.UpdatedAt = now

	tok, done := parsed.Completion()
	if done {
		declared, passed := tok.Score, tok.Passed
		s.DeclaredScore = &declared
		s.Passed = &passed
	}

	if closing || done {
		e.finish(ctx, s, now)
		res.Completed = true
		res.Report = s.Report
		res.Integrity = s.Report.Integrity
		return res, nil
	}

	s.CurrentQuestion = parsed.Clean
	s.AskedConfig = s.NextConfig
	s.NextConfig = s.Adaptive.NextQuestionConfig()
	s.QuestionCount++
	s.Integrity.QuestionAskedAt(e.now())

	if err := e.save(ctx, s); err != nil {
		e.logger.ErrorContext(ctx, "failed to persist session",
			slog.String("session_id", s.ID),
			slog.Any("error", err),
		)
	}
	return res, nil
}

// evaluate runs the per-answer pipeline: evaluator, adaptive controller,
// integrity monitor, then the skill-gap detector, all on the composite.
func (e *Engine) evaluate(s *Session, answer string, score int, now time.Time) *TurnMetadata {
	ev := evaluator.Evaluate(answer, s.CurrentQuestion, score)
	ev.Index = len(s.Evaluations) + 1
	ev.QuestionType = s.AskedConfig.Type
	ev.Difficulty = s.AskedConfig.Level
	s.Evaluations = append(s.Evaluations, ev)
	s.ScoreSum += score
	s.ScoreCount++

	adapt := s.Adaptive.RecordScore(ev.Composite)
	fu := s.Adaptive.ShouldFollowUp(ev.Composite, s.CurrentQuestion, answer)
	ia := s.Integrity.AnalyzeAnswerAt(answer, ev.Composite, now)
	topicNames := s.SkillGap.TrackAnswer(s.CurrentQuestion, answer, ev.Composite, s.AskedConfig.Type)

	e.logger.Debug("answer evaluated",
		slog.String("session_id", s.ID),
		slog.Int("composite", ev.Composite),
		slog.Int("ai_score", score),
		slog.Int("level", adapt.To),
		slog.Int("suspicion", ia.Suspicion),
	)

	return &TurnMetadata{
		Composite:      ev.Composite,
		AIScore:        score,
		Level:          adapt.To,
		LevelName:      adaptive.LevelName(adapt.To),
		LevelChanged:   adapt.Changed,
		Suspicion:      ia.Suspicion,
		SuspicionLevel: ia.Level,
		Flags:          ia.Flags,
		FollowUp:       fu.FollowUp,
		FollowUpReason: fu.Reason,
		Topics:         topicNames,
	}
}

// finish completes the session, records the end event and saves with
// retries. A failed save is logged; the in-memory session stays complete.
func (e *Engine) finish(ctx context.Context, s *Session, now time.Time) {
	s.complete(now)
	if s.Passed == nil {
		passed := *s.FinalScore >= PassScore
		s.Passed = &passed
	}
	e.appendEvent(ctx, s.Snapshot(), store.SessionActionEnd)

	var err error
retry:
	for attempt := 1; attempt <= e.cfg.SaveAttempts; attempt++ {
		if err = e.save(ctx, s); err == nil {
			break
		}
		e.logger.WarnContext(ctx, "final save failed",
			slog.String("session_id", s.ID),
			slog.Int("attempt", attempt),
			slog.Any("error", err),
		)
		if attempt == e.cfg.SaveAttempts || e.cfg.SaveBackoff <= 0 {
			continue
		}
		select {
		case <-ctx.Done():
			break retry
		case <-time.After(e.cfg.SaveBackoff * time.Duration(attempt)):
		}
	}
	if err != nil {
		e.logger.ErrorContext(ctx, "session completed but not persisted",
			slog.String("session_id", s.ID),
			slog.Any("error", err),
		)
	}

	e.logger.InfoContext(ctx, "session completed",
		slog.String("session_id", s.ID),
		slog.Float64("final_score", *s.FinalScore),
		slog.Int("answers", len(s.Evaluations)),
		slog.String("tier", s.Report.Tier.Name),
	)
}

func (e *Engine) save(ctx context.Context, s *Session) error {
	rec, err := s.toRecord()
	if err != nil {
		return err
	}
	if err := e.store.Save(ctx, rec); err != nil {
		return fmt.Errorf("save session %s: %w", s.ID, err)
	}
	return nil
}

func (e *Engine) appendEvent(ctx context.Context, s *Snapshot, action string) {
	data := store.SessionEventData{
		SessionID:      s.ID,
		Action:         action,
		QuestionsAsked: s.QuestionCount,
	}
	if s.FinalScore != nil {
		data.FinalScore = *s.FinalScore
	}
	if s.Passed != nil {
		data.Passed = *s.Passed
	}
	if !s.StartedAt.IsZero() {
		end := e.now()
		if s.CompletedAt != nil {
			end = *s.CompletedAt
		}
		data.DurationSecs = int(end.Sub(s.StartedAt).Seconds())
	}
	if err := e.events.AppendSessionEvent(ctx, data); err != nil {
		e.logger.WarnContext(ctx, "failed to record session event",
			slog.String("session_id", s.ID),
			slog.String("action", action),
			slog.Any("error", err),
		)
	}
}
