// Package interviewer drives the conversational side of an interview: it
// turns session state into a prompt and asks the LLM for the next reply.
package interviewer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/abhisek/interviewiz/internal/adaptive"
	"github.com/abhisek/interviewiz/internal/llm"
	"github.com/abhisek/interviewiz/internal/profile"
)

// ErrEmptyReply is returned when the model answers with no text.
var ErrEmptyReply = errors.New("interviewer returned an empty reply")

// Turn is one message in the interview conversation.
type Turn struct {
	Role    llm.Role  `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// Request is everything needed to produce the next interviewer reply.
type Request struct {
	SessionID string
	// History is the conversation so far, oldest first.
	History []Turn
	// Message is the raw candidate message; control messages are expanded.
	Message string
	// Next directs the question the reply should ask.
	Next    adaptive.QuestionConfig
	Profile *profile.Profile

	QuestionCount int
	MaxQuestions  int
	Elapsed       time.Duration
	MaxDuration   time.Duration

	// Closing asks for a wrap-up with the completion token instead of a
	// new question.
	Closing bool
}

// Options tunes an Interviewer.
type Options struct {
	// MaxHistory caps the number of past turns sent; 0 sends everything.
	MaxHistory  int
	MaxTokens   int
	Temperature float64
	// Timeout bounds a single Respond call; 0 means no extra bound.
	Timeout time.Duration
	Logger  *slog.Logger
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		MaxHistory:  24,
		MaxTokens:   600,
		Temperature: 0.7,
	}
}

// Interviewer asks an llm.Provider for interviewer replies.
type Interviewer struct {
	provider llm.Provider
	opts     Options
	logger   *slog.Logger
}

// New creates an Interviewer over provider.
func New(provider llm.Provider, opts Options) *Interviewer {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultOptions().MaxTokens
	}
	return &Interviewer{provider: provider, opts: opts, logger: logger}
}

// Respond returns the raw reply text, tokens included.
func (iv *Interviewer) Respond(ctx context.Context, req Request) (string, error) {
	if iv.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, iv.opts.Timeout)
		defer cancel()
	}
	ctx = llm.WithPurpose(ctx, llm.PurposeInterview)
	if req.SessionID != "" {
		ctx = llm.WithSession(ctx, req.SessionID)
	}

	resp, err := iv.provider.Generate(ctx, llm.Request{
		System:      BuildSystemPrompt(req),
		Messages:    BuildMessages(req.History, req.Message, iv.opts.MaxHistory),
		MaxTokens:   iv.opts.MaxTokens,
		Temperature: iv.opts.Temperature,
	})
	if err != nil {
		return "", err
	}

	text := resp.Text()
	if text == "" {
		return "", ErrEmptyReply
	}
	iv.logger.DebugContext(ctx, "interviewer reply",
		slog.String("session_id", req.SessionID),
		slog.Int("question", req.Next.Number),
		slog.Int("chars", len(text)),
	)
	return text, nil
}

// BuildMessages converts history plus the new candidate message into LLM
// messages. When trimmed to maxHistory the window starts on a user turn.
func BuildMessages(history []Turn, message string, maxHistory int) []llm.Message {
	if maxHistory > 0 && len(history) > maxHistory {
		history = history[len(history)-maxHistory:]
	}
	for len(history) > 0 && history[0].Role != llm.RoleUser {
		history = history[1:]
	}

	msgs := make([]llm.Message, 0, len(history)+1)
	for _, t := range history {
		msgs = append(msgs, llm.Message{Role: t.Role, Content: t.Content})
	}
	return append(msgs, llm.Message{Role: llm.RoleUser, Content: UserContent(message)})
}
