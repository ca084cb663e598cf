package session

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionNotFound is returned when an id is in neither the registry
	// nor the store.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionCompleted is returned for messages sent to a finished session.
	ErrSessionCompleted = errors.New("session already completed")

	// ErrSessionExists is returned by Create for an id already in use.
	ErrSessionExists = errors.New("session already exists")

	// ErrIncompatibleSnapshot is returned when a stored snapshot was written
	// by an incompatible format version.
	ErrIncompatibleSnapshot = errors.New("incompatible session snapshot")
)

// TryAgainMessage is the user-facing text for a collaborator failure.
const TryAgainMessage = "Sorry, I could not process that. Please try again."

// CollaboratorError wraps a failure of the interviewer model. The session
// is left untouched and the same message can be resent.
type CollaboratorError struct {
	Err error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("interviewer unavailable: %v", e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}
