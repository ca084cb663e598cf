package store

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"time"
)

// ErrInvalidID is returned when a session id is unusable as a storage key.
var ErrInvalidID = errors.New("invalid session id")

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

// ValidateID rejects ids that could escape a key namespace or file path.
func ValidateID(id string) error {
	if !idPattern.MatchString(id) {
		return ErrInvalidID
	}
	return nil
}

// SessionSummary is the queryable metadata stored next to a snapshot.
type SessionSummary struct {
	ID            string    `json:"id"`
	Completed     bool      `json:"completed"`
	QuestionCount int       `json:"question_count"`
	FinalScore    float64   `json:"final_score"`
	RoleLevel     string    `json:"role_level,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// SessionRecord is a persisted session: summary plus the opaque snapshot
// JSON produced by the session package.
type SessionRecord struct {
	SessionSummary
	Data json.RawMessage `json:"data"`
}

// SessionStore persists session snapshots.
type SessionStore interface {
	// Save inserts or replaces the record with the same ID.
	Save(ctx context.Context, rec *SessionRecord) error

	// Load returns the record, or nil without error if the id is unknown.
	Load(ctx context.Context, id string) (*SessionRecord, error)

	// List returns all summaries, most recently updated first.
	List(ctx context.Context) ([]SessionSummary, error)

	// Delete removes the record. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error
}

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit     int       // max results (0 = unlimited)
	After     int64     // sequence > After
	Before    int64     // sequence < Before
	From      time.Time // timestamp >= From
	To        time.Time // timestamp <= To
	SessionID string    // exact match when set
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	SessionID    string
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a stored LLM request event.
type LLMRequestEvent struct {
	ID        int64
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage aggregates LLM calls grouped by purpose or model.
type LLMUsage struct {
	Key          string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs float64
}

// Session lifecycle actions.
const (
	SessionActionStart = "start"
	SessionActionEnd   = "end"
	SessionActionReset = "reset"
)

// SessionEventData captures a session lifecycle transition.
type SessionEventData struct {
	SessionID      string
	Action         string
	QuestionsAsked int
	FinalScore     float64
	Passed         bool
	DurationSecs   int
}

// SessionEvent is a stored session lifecycle event.
type SessionEvent struct {
	ID        int64
	Sequence  int64
	Timestamp time.Time
	SessionEventData
}

// EventRepo provides append access to domain events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// AppendSessionEvent records a session lifecycle event.
	AppendSessionEvent(ctx context.Context, data SessionEventData) error
}

// NopEventRepo discards all events.
type NopEventRepo struct{}

func (NopEventRepo) AppendLLMRequest(context.Context, LLMRequestEventData) error { return nil }
func (NopEventRepo) AppendSessionEvent(context.Context, SessionEventData) error  { return nil }
