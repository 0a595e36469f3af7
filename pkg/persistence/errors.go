// Package persistence provides standardized error types for persistence operations.
package persistence

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrSessionNotFound indicates a session was not found or has expired.
	ErrSessionNotFound = errors.New("session not found")

	// ErrInvalidSessionID indicates a session id that cannot be used as a storage key.
	ErrInvalidSessionID = errors.New("invalid session id")
)

// SessionError wraps session-related errors with additional context.
type SessionError struct {
	Op        string // Operation being performed (e.g., "SessionByID", "SaveSession")
	SessionID string
	Err       error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("%s operation failed for session %s: %v", e.Op, e.SessionID, e.Err)
}

func (e *SessionError) Unwrap() error {
	return e.Err
}

// Is implements error comparison for session errors.
func (e *SessionError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewSessionError creates a new session error with context.
func NewSessionError(op, sessionID string, err error) *SessionError {
	return &SessionError{
		Op:        op,
		SessionID: sessionID,
		Err:       err,
	}
}

// IsSessionNotFound checks if an error indicates a session was not found.
func IsSessionNotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound)
}

// CheckSessionID rejects ids that are empty or could escape a storage namespace.
func CheckSessionID(id string) error {
	if id == "" || id != filepath.Base(id) || strings.ContainsAny(id, `/\:*? `) || strings.HasPrefix(id, ".") {
		return ErrInvalidSessionID
	}

	return nil
}
