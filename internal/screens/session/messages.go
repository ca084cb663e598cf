package session

import (
	"time"

	sess "github.com/abhisek/interviewiz/internal/session"
)

// sessionInitMsg is sent once the session has been created or loaded.
type sessionInitMsg struct {
	Snapshot *sess.Snapshot
	// Resumed is set when an unfinished session was loaded from the store.
	Resumed bool
	Err     error
}

// turnMsg carries the interviewer's reply to one message.
type turnMsg struct {
	Sent   string
	Result *sess.TurnResult
	Err    error
}

// timerTickMsg is sent every second to update the clock.
type timerTickMsg time.Time
