// Package persistence provides the storage abstraction for builder sessions.
package persistence

import (
	"context"

	"github.com/dukex/area/pkg/models"
)

// Persistence stores builder sessions. Sessions expire after the TTL the backend was created with,
// counted from their last update; an expired session behaves as a missing one.
type Persistence interface {
	SessionByID(ctx context.Context, id string) (*models.Session, error)
	SaveSession(ctx context.Context, session *models.Session) error
	DeleteSession(ctx context.Context, id string) error
	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}
