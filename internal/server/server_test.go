package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/interviewiz/internal/feedback"
	"github.com/abhisek/interviewiz/internal/interviewer"
	"github.com/abhisek/interviewiz/internal/session"
	"github.com/abhisek/interviewiz/internal/store"
)

const question = "How would you design a rate limiter?"

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// queue replies with canned texts in order, then fails.
type queue struct {
	mu      sync.Mutex
	replies []string
}

func (q *queue) Respond(context.Context, interviewer.Request) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.replies) == 0 {
		return "", errors.New("model unavailable")
	}
	r := q.replies[0]
	q.replies = q.replies[1:]
	return r, nil
}

func newTestServer(t *testing.T, replies ...string) *httptest.Server {
	t.Helper()
	cfg := session.DefaultConfig()
	cfg.SaveBackoff = 0
	engine := session.NewEngine(session.Options{
		Config:      cfg,
		Store:       store.NewMemoryStore(),
		Interviewer: &queue{replies: replies},
		Logger:      quietLogger,
	})
	ts := httptest.NewServer(New(engine, Options{Logger: quietLogger}).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, ts *httptest.Server, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, ts.URL+path, rd)
	require.NoError(t, err)
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func errorMessage(t *testing.T, data []byte) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(data, &body))
	return body["error"]
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp, data := do(t, ts, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(data))
}

func TestCreateSession(t *testing.T) {
	ts := newTestServer(t)

	resp, data := do(t, ts, http.MethodPost, "/api/sessions", CreateSessionRequest{
		ID:     "cand-1",
		Resume: "Senior software engineer with 9 years of experience in Go and Kubernetes.",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))

	var snap session.Snapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	assert.Equal(t, "cand-1", snap.ID)
	require.NotNil(t, snap.Profile)
	assert.Equal(t, "senior", snap.Profile.RoleLevel)
	assert.Equal(t, 3, snap.Adaptive.Level)

	resp, data = do(t, ts, http.MethodPost, "/api/sessions", CreateSessionRequest{ID: "cand-1"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, session.ErrSessionExists.Error(), errorMessage(t, data))
}

func TestCreateSession_GeneratedID(t *testing.T) {
	ts := newTestServer(t)
	resp, data := do(t, ts, http.MethodPost, "/api/sessions", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var snap session.Snapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	assert.NotEmpty(t, snap.ID)
}

func TestCreateSession_BadRequests(t *testing.T) {
	ts := newTestServer(t)
	tests := []struct {
		name string
		body any
		want string
	}{
		{"malformed", "{", "invalid request body"},
		{"unknown field", `{"name":"x"}`, "invalid request body"},
		{"long id", CreateSessionRequest{ID: strings.Repeat("a", 129)}, "id must satisfy max=128"},
		{"bad id", CreateSessionRequest{ID: "../etc"}, store.ErrInvalidID.Error()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, data := do(t, ts, http.MethodPost, "/api/sessions", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, tt.want, errorMessage(t, data))
		})
	}
}

func TestMessages_Conversation(t *testing.T) {
	ts := newTestServer(t,
		question,
		"SCORE|8/10\nGood. "+question,
		"Thank you. INTERVIEW_COMPLETE|8/10|true",
	)

	resp, data := do(t, ts, http.MethodPost, "/api/sessions/s1/messages", MessageRequest{Text: interviewer.ControlStart})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	var res session.TurnResult
	require.NoError(t, json.Unmarshal(data, &res))
	assert.Equal(t, "s1", res.SessionID)
	assert.Equal(t, question, res.Response)
	assert.Nil(t, res.Metadata)

	resp, data = do(t, ts, http.MethodPost, "/api/sessions/s1/messages",
		MessageRequest{Text: "I would use a token bucket per client stored in redis."})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	res = session.TurnResult{}
	require.NoError(t, json.Unmarshal(data, &res))
	require.NotNil(t, res.Metadata)
	assert.Equal(t, 8, res.Metadata.AIScore)
	assert.NotContains(t, res.Response, "SCORE")

	resp, data = do(t, ts, http.MethodPost, "/api/sessions/s1/messages", MessageRequest{Text: interviewer.ControlEnd})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	res = session.TurnResult{}
	require.NoError(t, json.Unmarshal(data, &res))
	assert.True(t, res.Completed)
	assert.Equal(t, "Thank you.", res.Response)
	require.NotNil(t, res.Report)

	resp, data = do(t, ts, http.MethodPost, "/api/sessions/s1/messages", MessageRequest{Text: "hello?"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, session.ErrSessionCompleted.Error(), errorMessage(t, data))

	resp, data = do(t, ts, http.MethodGet, "/api/sessions", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list struct {
		Sessions []store.SessionSummary `json:"sessions"`
	}
	require.NoError(t, json.Unmarshal(data, &list))
	require.Len(t, list.Sessions, 1)
	assert.True(t, list.Sessions[0].Completed)
}

func TestMessages_CollaboratorFailure(t *testing.T) {
	ts := newTestServer(t)

	resp, data := do(t, ts, http.MethodPost, "/api/sessions/s1/messages", MessageRequest{Text: interviewer.ControlStart})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, session.TryAgainMessage, errorMessage(t, data))
}

func TestMessages_Validation(t *testing.T) {
	ts := newTestServer(t, question)

	resp, data := do(t, ts, http.MethodPost, "/api/sessions/s1/messages", MessageRequest{Text: strings.Repeat("x", 20001)})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "text must satisfy max=20000", errorMessage(t, data))

	resp, _ = do(t, ts, http.MethodPost, "/api/sessions/bad.id/messages", MessageRequest{Text: "hi"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetSession(t *testing.T) {
	ts := newTestServer(t, question)

	resp, _ := do(t, ts, http.MethodGet, "/api/sessions/missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, ts, http.MethodPost, "/api/sessions/s1/messages", MessageRequest{Text: interviewer.ControlStart})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, data := do(t, ts, http.MethodGet, "/api/sessions/s1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var snap session.Snapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	assert.Equal(t, question, snap.CurrentQuestion)
	assert.Equal(t, 1, snap.QuestionCount)
	assert.Len(t, snap.History, 2)
}

func TestReport(t *testing.T) {
	ts := newTestServer(t, question, "SCORE|7/10\n"+question)

	do(t, ts, http.MethodPost, "/api/sessions/s1/messages", MessageRequest{Text: interviewer.ControlStart})
	do(t, ts, http.MethodPost, "/api/sessions/s1/messages",
		MessageRequest{Text: "I would use a sliding window counter because it smooths bursts."})

	resp, data := do(t, ts, http.MethodGet, "/api/sessions/s1/report", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	var rep feedback.Report
	require.NoError(t, json.Unmarshal(data, &rep))
	assert.Equal(t, 1, rep.AnswerCount)
	assert.Contains(t, string(data), `"spoken_summary"`)
	assert.Contains(t, rep.Spoken, "out of 10")

	resp, data = do(t, ts, http.MethodGet, "/api/sessions/s1/report?format=text", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/plain"))
	assert.Contains(t, string(data), "Answers evaluated: 1")
	assert.Contains(t, string(data), rep.Headline)
}

func TestResetSession(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := do(t, ts, http.MethodPost, "/api/sessions", CreateSessionRequest{ID: "s1"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = do(t, ts, http.MethodDelete, "/api/sessions/s1", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = do(t, ts, http.MethodGet, "/api/sessions/s1", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, ts, http.MethodDelete, "/api/sessions/s1", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t)
	resp, _ := do(t, ts, http.MethodOptions, "/api/sessions", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
		msg    string
	}{
		{session.ErrSessionNotFound, http.StatusNotFound, "session not found"},
		{fmt.Errorf("wrap: %w", session.ErrSessionCompleted), http.StatusConflict, "wrap: session already completed"},
		{session.ErrSessionExists, http.StatusConflict, "session already exists"},
		{store.ErrInvalidID, http.StatusBadRequest, store.ErrInvalidID.Error()},
		{&session.CollaboratorError{Err: errors.New("timeout")}, http.StatusBadGateway, session.TryAgainMessage},
		{errors.New("disk on fire"), http.StatusInternalServerError, "internal error"},
	}
	for _, tt := range tests {
		status, msg := StatusFor(tt.err)
		assert.Equal(t, tt.status, status, tt.err.Error())
		assert.Equal(t, tt.msg, msg, tt.err.Error())
	}
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	engine := session.NewEngine(session.Options{Logger: quietLogger})
	srv := New(engine, Options{Logger: quietLogger, ShutdownTimeout: time.Second})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down")
	}
}
