package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/dukex/area/pkg/models"
	"github.com/dukex/area/pkg/persistence"
)

// SessionRepository handles session-related file operations.
type SessionRepository struct {
	root string // File system root for storing sessions
	ttl  time.Duration
	now  func() time.Time
}

// NewSessionRepository creates a new session repository.
func NewSessionRepository(root string, ttl time.Duration) *SessionRepository {
	return &SessionRepository{root: root, ttl: ttl, now: time.Now}
}

func (sr *SessionRepository) dir() string {
	return path.Join(sr.root, "sessions")
}

func (sr *SessionRepository) file(id string) string {
	return filepath.Clean(path.Join(sr.dir(), id+".json"))
}

// GetByID loads a session. Expired sessions are removed and reported as not found.
func (sr *SessionRepository) GetByID(ctx context.Context, id string) (*models.Session, error) {
	if err := persistence.CheckSessionID(id); err != nil {
		return nil, persistence.NewSessionError("SessionByID", id, persistence.ErrSessionNotFound)
	}

	body, err := os.ReadFile(sr.file(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.NewSessionError("SessionByID", id, persistence.ErrSessionNotFound)
		}

		return nil, fmt.Errorf("failed to fetch session %s: %w", id, err)
	}

	var session models.Session

	err = json.Unmarshal(body, &session)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal session %s: %w", id, err)
	}

	if sr.expired(&session) {
		_ = sr.Delete(ctx, id)

		return nil, persistence.NewSessionError("SessionByID", id, persistence.ErrSessionNotFound)
	}

	return &session, nil
}

// Save writes the session and refreshes its UpdatedAt timestamp.
func (sr *SessionRepository) Save(_ context.Context, session *models.Session) error {
	if err := persistence.CheckSessionID(session.ID); err != nil {
		return persistence.NewSessionError("SaveSession", session.ID, err)
	}

	err := os.MkdirAll(sr.dir(), 0750)
	if err != nil {
		return fmt.Errorf("failed to create sessions directory: %w", err)
	}

	now := sr.now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}

	session.UpdatedAt = now

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session %s: %w", session.ID, err)
	}

	return os.WriteFile(sr.file(session.ID), data, 0600)
}

// Delete removes a session. Deleting a missing session is not an error.
func (sr *SessionRepository) Delete(_ context.Context, id string) error {
	if err := persistence.CheckSessionID(id); err != nil {
		return nil
	}

	err := os.Remove(sr.file(id))

	if err != nil && os.IsNotExist(err) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}

	return nil
}

func (sr *SessionRepository) expired(session *models.Session) bool {
	if sr.ttl <= 0 {
		return false
	}

	return sr.now().Sub(session.UpdatedAt) > sr.ttl
}
