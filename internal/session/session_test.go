package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/interviewiz/internal/adaptive"
	"github.com/abhisek/interviewiz/internal/evaluator"
	"github.com/abhisek/interviewiz/internal/interviewer"
	"github.com/abhisek/interviewiz/internal/llm"
	"github.com/abhisek/interviewiz/internal/profile"
	"github.com/abhisek/interviewiz/internal/store"
)

const (
	question = "Walk me through how you would improve a slow feature."

	strongAnswer = "From experience the best approach starts with the problem and the context. " +
		"At my previous company I was responsible for a checkout page that took 4 seconds to load. " +
		"We implemented caching and reworked the query plan, because the main tradeoff was freshness versus speed. " +
		"For example, we cached prices for 60 seconds. " +
		"As a result the solution reduced load time by 70 percent and conversion improved."
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *testClock {
	return &testClock{t: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type reply struct {
	text string
	err  error
}

// scripted replays canned replies and records every request.
type scripted struct {
	mu      sync.Mutex
	replies []reply
	reqs    []interviewer.Request
}

func script(texts ...string) *scripted {
	s := &scripted{}
	for _, t := range texts {
		s.replies = append(s.replies, reply{text: t})
	}
	return s
}

func (s *scripted) Respond(_ context.Context, req interviewer.Request) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reqs = append(s.reqs, req)
	if len(s.replies) == 0 {
		return "", errors.New("script exhausted")
	}
	r := s.replies[0]
	s.replies = s.replies[1:]
	return r.text, r.err
}

func (s *scripted) requests() []interviewer.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]interviewer.Request(nil), s.reqs...)
}

// constant always returns the same reply.
type constant string

func (c constant) Respond(context.Context, interviewer.Request) (string, error) {
	return string(c), nil
}

type recordingEvents struct {
	mu      sync.Mutex
	actions []string
}

func (r *recordingEvents) AppendLLMRequest(context.Context, store.LLMRequestEventData) error {
	return nil
}

func (r *recordingEvents) AppendSessionEvent(_ context.Context, d store.SessionEventData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, d.Action)
	return nil
}

// flakyStore fails every Save while fail is set.
type flakyStore struct {
	*store.MemoryStore
	mu    sync.Mutex
	fail  bool
	saves int
}

func (f *flakyStore) Save(ctx context.Context, rec *store.SessionRecord) error {
	f.mu.Lock()
	f.saves++
	fail := f.fail
	f.mu.Unlock()
	if fail {
		return errors.New("disk full")
	}
	return f.MemoryStore.Save(ctx, rec)
}

func newEngine(t *testing.T, iv Responder, mutate func(*Options)) (*Engine, *testClock) {
	t.Helper()
	clock := newClock()
	cfg := DefaultConfig()
	cfg.SaveBackoff = 0
	opts := Options{
		Config:      cfg,
		Store:       store.NewMemoryStore(),
		Interviewer: iv,
		Logger:      quietLogger,
		Now:         clock.Now,
	}
	if mutate != nil {
		mutate(&opts)
	}
	return NewEngine(opts), clock
}

func TestEngine_EndToEnd(t *testing.T) {
	scored := llm.MockText("SCORE|9/10\n" + question)
	mock := llm.NewMockProvider(
		llm.MockText(question),
		scored, scored, scored,
		llm.MockText("Thanks for your time today. INTERVIEW_COMPLETE|9/10|true"),
	)
	events := &recordingEvents{}
	e, clock := newEngine(t, interviewer.New(mock, interviewer.DefaultOptions()), func(o *Options) {
		o.Events = events
	})
	ctx := context.Background()

	res, err := e.HandleMessage(ctx, "s1", interviewer.ControlStart)
	require.NoError(t, err)
	assert.Equal(t, question, res.Response)
	assert.Nil(t, res.Metadata)
	assert.False(t, res.Completed)

	for i := range 3 {
		clock.Advance(90 * time.Second)
		res, err = e.HandleMessage(ctx, "s1", strongAnswer)
		require.NoError(t, err, "answer %d", i+1)
		require.NotNil(t, res.Metadata)
		assert.Equal(t, 9, res.Metadata.Composite)
		assert.Equal(t, 9, res.Metadata.AIScore)
		assert.Equal(t, question, res.Response)
		assert.Equal(t, []string{"General"}, res.Metadata.Topics)
	}

	clock.Advance(30 * time.Second)
	res, err = e.HandleMessage(ctx, "s1", interviewer.ControlEnd)
	require.NoError(t, err)
	require.True(t, res.Completed)
	require.NotNil(t, res.Report)
	assert.Equal(t, "Thanks for your time today.", res.Response)
	assert.InDelta(t, 9.0, res.Report.OverallScore, 1e-9)
	assert.Equal(t, "Exceptional", res.Report.Tier.Name)
	assert.Equal(t, 3, res.Report.AnswerCount)
	require.NotNil(t, res.Integrity)

	snap, err := e.Get(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, snap.Completed)
	require.NotNil(t, snap.FinalScore)
	assert.InDelta(t, 9.0, *snap.FinalScore, 1e-9)
	require.NotNil(t, snap.Passed)
	assert.True(t, *snap.Passed)
	assert.Equal(t, []int{1, 1, 2}, snap.Adaptive.LevelHistory)
	require.Len(t, snap.Evaluations, 3)
	assert.Equal(t, 1, snap.Evaluations[0].Index)
	assert.Equal(t, adaptive.TypeTechnical, snap.Evaluations[0].QuestionType)
	assert.Equal(t, adaptive.LevelEasy, snap.Evaluations[0].Difficulty)
	assert.Len(t, snap.History, 10)

	gaps := res.Report.SkillGap
	require.NotNil(t, gaps)
	assert.Empty(t, gaps.Gaps)
	require.Len(t, gaps.Strengths, 1)
	assert.Equal(t, "General", gaps.Strengths[0].Topic)
	assert.InDelta(t, 9.0, gaps.Strengths[0].Average, 1e-9)
	assert.InDelta(t, 2.0, gaps.Strengths[0].Surplus, 1e-9)

	_, err = e.HandleMessage(ctx, "s1", strongAnswer)
	assert.ErrorIs(t, err, ErrSessionCompleted)
	assert.Equal(t, 5, mock.CallCount())
	assert.Equal(t, []string{store.SessionActionStart, store.SessionActionEnd}, events.actions)

	// The completed session was persisted.
	list, err := e.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Completed)
	assert.InDelta(t, 9.0, list[0].FinalScore, 1e-9)
}

func TestEngine_DirectiveFollowsPreviousTurn(t *testing.T) {
	iv := script(question, "SCORE|1/10\n"+question, "SCORE|9/10\n"+question)
	e, _ := newEngine(t, iv, nil)
	ctx := context.Background()

	_, err := e.HandleMessage(ctx, "s1", "[START]")
	require.NoError(t, err)
	res, err := e.HandleMessage(ctx, "s1", strongAnswer)
	require.NoError(t, err)
	require.NotNil(t, res.Metadata)
	require.True(t, res.Metadata.FollowUp)
	_, err = e.HandleMessage(ctx, "s1", strongAnswer)
	require.NoError(t, err)

	reqs := iv.requests()
	require.Len(t, reqs, 3)
	assert.Equal(t, 1, reqs[0].Next.Number)
	assert.Equal(t, 0, reqs[0].QuestionCount)
	assert.Equal(t, 2, reqs[1].Next.Number)
	assert.Equal(t, 1, reqs[1].QuestionCount)
	require.Len(t, reqs[1].History, 2)
	// The low score on the first answer directs the reply after the second.
	assert.True(t, reqs[2].Next.IsFollowUp())
	assert.Equal(t, question, reqs[2].Next.FollowUp.Question)
}

func TestEngine_CollaboratorError(t *testing.T) {
	boom := errors.New("upstream timeout")
	iv := &scripted{replies: []reply{{err: boom}, {text: question}}}
	e, _ := newEngine(t, iv, nil)
	ctx := context.Background()

	_, err := e.HandleMessage(ctx, "s1", "[START]")
	var ce *CollaboratorError
	require.ErrorAs(t, err, &ce)
	assert.ErrorIs(t, err, boom)

	snap, err := e.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 0, snap.QuestionCount)
	assert.Empty(t, snap.History)

	res, err := e.HandleMessage(ctx, "s1", "[START]")
	require.NoError(t, err)
	assert.Equal(t, question, res.Response)
}

func TestEngine_NoInterviewer(t *testing.T) {
	e, _ := newEngine(t, nil, nil)
	_, err := e.HandleMessage(context.Background(), "s1", "[START]")
	var ce *CollaboratorError
	assert.ErrorAs(t, err, &ce)
}

func TestEngine_EmptyMessageIsNoResponse(t *testing.T) {
	iv := script(question, "SCORE|5/10 Let's move on. "+question)
	e, _ := newEngine(t, iv, nil)
	ctx := context.Background()

	_, err := e.HandleMessage(ctx, "s1", "[START]")
	require.NoError(t, err)
	res, err := e.HandleMessage(ctx, "s1", "   ")
	require.NoError(t, err)
	assert.Nil(t, res.Metadata)

	reqs := iv.requests()
	assert.Equal(t, interviewer.ControlNoResponse, reqs[1].Message)

	snap, err := e.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 0, snap.AnswerCount)
	assert.Empty(t, snap.Evaluations)
	assert.Equal(t, 2, snap.QuestionCount)
}

func TestEngine_AnswerWithoutScore(t *testing.T) {
	iv := script(question, "Interesting. "+question)
	e, _ := newEngine(t, iv, nil)
	ctx := context.Background()

	_, err := e.HandleMessage(ctx, "s1", "[START]")
	require.NoError(t, err)
	res, err := e.HandleMessage(ctx, "s1", strongAnswer)
	require.NoError(t, err)
	assert.Nil(t, res.Metadata)

	snap, err := e.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, snap.AnswerCount)
	assert.Empty(t, snap.Evaluations)
}

func TestEngine_MaxQuestions(t *testing.T) {
	iv := script(question, "SCORE|8/10\n"+question, "SCORE|6/10 That wraps it up.")
	e, clock := newEngine(t, iv, func(o *Options) { o.Config.MaxQuestions = 2 })
	ctx := context.Background()

	_, err := e.HandleMessage(ctx, "s1", "[START]")
	require.NoError(t, err)
	clock.Advance(time.Minute)
	res, err := e.HandleMessage(ctx, "s1", strongAnswer)
	require.NoError(t, err)
	assert.False(t, res.Completed)
	clock.Advance(time.Minute)
	res, err = e.HandleMessage(ctx, "s1", strongAnswer)
	require.NoError(t, err)
	assert.True(t, res.Completed)
	require.NotNil(t, res.Metadata)

	reqs := iv.requests()
	assert.False(t, reqs[1].Closing)
	assert.True(t, reqs[2].Closing)

	snap, err := e.Get(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, snap.Evaluations, 2)
	want := float64(snap.Evaluations[0].Composite+snap.Evaluations[1].Composite) / 2
	require.NotNil(t, snap.FinalScore)
	assert.InDelta(t, want, *snap.FinalScore, 0.05)
	assert.Nil(t, snap.DeclaredScore)
}

func TestEngine_MaxDuration(t *testing.T) {
	iv := script(question, "SCORE|7/10 Time is up, thank you.")
	e, clock := newEngine(t, iv, nil)
	ctx := context.Background()

	_, err := e.HandleMessage(ctx, "s1", "[START]")
	require.NoError(t, err)
	clock.Advance(46 * time.Minute)
	res, err := e.HandleMessage(ctx, "s1", strongAnswer)
	require.NoError(t, err)
	assert.True(t, res.Completed)
	assert.True(t, iv.requests()[1].Closing)
}

func TestEngine_CompletionWithoutAnswers(t *testing.T) {
	tests := []struct {
		name       string
		reply      string
		wantScore  float64
		wantPassed bool
		wantTier   string
	}{
		{"no token", "Goodbye.", 0, false, "Beginner"},
		{"declared score", "Goodbye. INTERVIEW_COMPLETE|7.5/10|true", 7.5, true, "Strong"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newEngine(t, script(question, tt.reply), nil)
			ctx := context.Background()

			_, err := e.HandleMessage(ctx, "s1", "[START]")
			require.NoError(t, err)
			res, err := e.HandleMessage(ctx, "s1", "[END]")
			require.NoError(t, err)
			require.True(t, res.Completed)

			assert.InDelta(t, tt.wantScore, res.Report.OverallScore, 1e-9)
			assert.Equal(t, tt.wantTier, res.Report.Tier.Name)
			assert.Equal(t, 0, res.Report.AnswerCount)
			for _, d := range res.Report.Dimensions {
				assert.Zero(t, d.Average, d.Key)
			}

			snap, err := e.Get(ctx, "s1")
			require.NoError(t, err)
			require.NotNil(t, snap.Passed)
			assert.Equal(t, tt.wantPassed, *snap.Passed)
		})
	}
}

func TestEngine_CompletionTokenEndsInterview(t *testing.T) {
	e, _ := newEngine(t, script(question, "SCORE|4/10 We will stop here. INTERVIEW_COMPLETE|4/10|false"), nil)
	ctx := context.Background()

	_, err := e.HandleMessage(ctx, "s1", "[START]")
	require.NoError(t, err)
	res, err := e.HandleMessage(ctx, "s1", "I do not know.")
	require.NoError(t, err)
	assert.True(t, res.Completed)
	require.NotNil(t, res.Metadata)
	assert.Equal(t, "We will stop here.", res.Response)
}

func TestEngine_ResumesFromStore(t *testing.T) {
	shared := store.NewMemoryStore()
	ctx := context.Background()

	first, _ := newEngine(t, script(question, "SCORE|7/10\n"+question), func(o *Options) { o.Store = shared })
	_, err := first.HandleMessage(ctx, "s1", "[START]")
	require.NoError(t, err)
	_, err = first.HandleMessage(ctx, "s1", strongAnswer)
	require.NoError(t, err)

	second, _ := newEngine(t, script("SCORE|7/10\n"+question), func(o *Options) { o.Store = shared })
	res, err := second.HandleMessage(ctx, "s1", strongAnswer)
	require.NoError(t, err)
	require.NotNil(t, res.Metadata)

	snap, err := second.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 3, snap.QuestionCount)
	assert.Len(t, snap.Evaluations, 2)
	assert.Len(t, snap.Adaptive.Scores, 2)
	assert.Equal(t, 2, snap.Integrity.Answers)
}

func TestEngine_Create(t *testing.T) {
	events := &recordingEvents{}
	e, _ := newEngine(t, nil, func(o *Options) { o.Events = events })
	ctx := context.Background()

	snap, err := e.Create(ctx, CreateOptions{Profile: &profile.Profile{RoleLevel: "senior"}})
	require.NoError(t, err)
	assert.NotEmpty(t, snap.ID)
	assert.Equal(t, adaptive.LevelHard, snap.Adaptive.Level)
	assert.Equal(t, "senior", snap.SkillGap.RoleLevel)
	assert.Equal(t, 1, snap.NextConfig.Number)
	assert.Equal(t, adaptive.LevelHard, snap.NextConfig.Level)

	_, err = e.Create(ctx, CreateOptions{ID: snap.ID})
	assert.ErrorIs(t, err, ErrSessionExists)

	_, err = e.Create(ctx, CreateOptions{ID: "../etc/passwd"})
	assert.ErrorIs(t, err, store.ErrInvalidID)

	list, err := e.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "senior", list[0].RoleLevel)
	assert.Equal(t, []string{store.SessionActionStart}, events.actions)
}

func TestEngine_Reset(t *testing.T) {
	events := &recordingEvents{}
	e, _ := newEngine(t, script(question, question), func(o *Options) { o.Events = events })
	ctx := context.Background()

	_, err := e.HandleMessage(ctx, "s1", "[START]")
	require.NoError(t, err)
	require.NoError(t, e.Reset(ctx, "s1"))

	_, err = e.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, e.Reset(ctx, "s1"), ErrSessionNotFound)

	// The id can be reused for a fresh interview.
	_, err = e.HandleMessage(ctx, "s1", "[START]")
	require.NoError(t, err)
	snap, err := e.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, snap.QuestionCount)

	assert.Equal(t, []string{
		store.SessionActionStart,
		store.SessionActionReset,
		store.SessionActionStart,
	}, events.actions)
}

func TestEngine_Report(t *testing.T) {
	e, clock := newEngine(t, script(question, "SCORE|9/10\n"+question), nil)
	ctx := context.Background()

	_, err := e.Report(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = e.HandleMessage(ctx, "s1", "[START]")
	require.NoError(t, err)
	clock.Advance(time.Minute)
	_, err = e.HandleMessage(ctx, "s1", strongAnswer)
	require.NoError(t, err)

	r, err := e.Report(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, r.AnswerCount)
	assert.InDelta(t, 9.0, r.OverallScore, 1e-9)
}

func TestEngine_SaveFailureDoesNotFailTurn(t *testing.T) {
	fs := &flakyStore{MemoryStore: store.NewMemoryStore(), fail: true}
	e, _ := newEngine(t, script(question, "Bye."), func(o *Options) { o.Store = fs })
	ctx := context.Background()

	_, err := e.HandleMessage(ctx, "s1", "[START]")
	require.NoError(t, err)
	res, err := e.HandleMessage(ctx, "s1", "[END]")
	require.NoError(t, err)
	assert.True(t, res.Completed)

	fs.mu.Lock()
	defer fs.mu.Unlock()
	assert.Equal(t, 1+DefaultConfig().SaveAttempts, fs.saves)
}

func TestEngine_InvalidID(t *testing.T) {
	e, _ := newEngine(t, constant(question), nil)
	_, err := e.HandleMessage(context.Background(), "a/b", "[START]")
	assert.ErrorIs(t, err, store.ErrInvalidID)
}

func TestEngine_ConcurrentMessages(t *testing.T) {
	e, _ := newEngine(t, constant("SCORE|6/10\n"+question), func(o *Options) {
		o.Config.MaxQuestions = 0
		o.Config.MaxDuration = 0
	})
	ctx := context.Background()

	const sessions, senders, perSender = 4, 3, 5
	var wg sync.WaitGroup
	for i := range sessions {
		id := fmt.Sprintf("s%d", i)
		for range senders {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for range perSender {
					_, err := e.HandleMessage(ctx, id, strongAnswer)
					assert.NoError(t, err)
				}
			}()
		}
	}
	wg.Wait()

	for i := range sessions {
		snap, err := e.Get(ctx, fmt.Sprintf("s%d", i))
		require.NoError(t, err)
		assert.Equal(t, senders*perSender, snap.AnswerCount)
		assert.Len(t, snap.History, 2*senders*perSender)
		assert.Len(t, snap.Adaptive.Scores, senders*perSender)
	}
}

func TestSnapshot_RoundTrip(t *testing.T) {
	e, clock := newEngine(t, script(question, "SCORE|5/10\n"+question, "SCORE|9/10\n"+question), nil)
	ctx := context.Background()

	_, err := e.HandleMessage(ctx, "s1", "[START]")
	require.NoError(t, err)
	for range 2 {
		clock.Advance(time.Minute)
		_, err = e.HandleMessage(ctx, "s1", strongAnswer)
		require.NoError(t, err)
	}

	snap, err := e.Get(ctx, "s1")
	require.NoError(t, err)
	raw, err := json.Marshal(snap)
	require.NoError(t, err)

	var decoded Snapshot
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, snap.Evaluations, decoded.Evaluations)
	assert.Equal(t, snap.Adaptive, decoded.Adaptive)

	a, err := FromSnapshot(snap)
	require.NoError(t, err)
	b, err := FromSnapshot(&decoded)
	require.NoError(t, err)

	// Restored sessions make the same decisions.
	for _, score := range []int{8, 8, 3, 10} {
		assert.Equal(t, a.Adaptive.RecordScore(score), b.Adaptive.RecordScore(score))
		assert.Equal(t, a.Adaptive.ShouldFollowUp(score, question, strongAnswer), b.Adaptive.ShouldFollowUp(score, question, strongAnswer))
		assert.Equal(t, a.Adaptive.NextQuestionConfig(), b.Adaptive.NextQuestionConfig())
		now := clock.Now()
		assert.Equal(t, a.Integrity.AnalyzeAnswerAt(strongAnswer, score, now), b.Integrity.AnalyzeAnswerAt(strongAnswer, score, now))
		assert.Equal(t, a.SkillGap.TrackAnswer(question, strongAnswer, score, "technical"), b.SkillGap.TrackAnswer(question, strongAnswer, score, "technical"))
	}
	assert.Equal(t, a.SkillGap.Analysis(), b.SkillGap.Analysis())
}

func TestFromSnapshot_Version(t *testing.T) {
	s := New("s1", nil, 3, time.Now())

	tests := []struct {
		version string
		wantErr bool
	}{
		{SnapshotVersion, false},
		{"v1.4.2", false},
		{"v2.0.0", true},
		{"1.0.0", true},
		{"", true},
	}
	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			snap := s.Snapshot()
			snap.Version = tt.version
			_, err := FromSnapshot(snap)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrIncompatibleSnapshot)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSession_FinalScoreRounding(t *testing.T) {
	s := New("s1", nil, 3, time.Now())
	s.Evaluations = append(s.Evaluations,
		evaluation(7), evaluation(8), evaluation(8),
	)
	assert.InDelta(t, 7.7, s.computeFinalScore(), 1e-9)
}

func evaluation(composite int) evaluator.Evaluation {
	return evaluator.Evaluation{Composite: composite}
}
