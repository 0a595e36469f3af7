// Package file provides file-based persistence implementation for builder sessions.
package file

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/dukex/area/pkg/models"
	"github.com/dukex/area/pkg/persistence"
)

// Persistence implements the persistence.Persistence interface using the file system.
type Persistence struct {
	root     string
	sessions *SessionRepository
}

var _ persistence.Persistence = (*Persistence)(nil)

// NewPersistence creates a new instance of Persistence with the specified root directory. Sessions not
// updated for longer than ttl are treated as missing; a zero ttl keeps them forever.
func NewPersistence(root string, ttl time.Duration) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:     cleanRoot,
		sessions: NewSessionRepository(cleanRoot, ttl),
	}
}

// Close performs any necessary cleanup. For file-based persistence, there is nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck checks if the file persistence layer is healthy by verifying the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

func (fp *Persistence) SessionByID(ctx context.Context, id string) (*models.Session, error) {
	return fp.sessions.GetByID(ctx, id)
}

func (fp *Persistence) SaveSession(ctx context.Context, session *models.Session) error {
	return fp.sessions.Save(ctx, session)
}

func (fp *Persistence) DeleteSession(ctx context.Context, id string) error {
	return fp.sessions.Delete(ctx, id)
}
