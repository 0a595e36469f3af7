// Package redis provides Redis-based persistence for builder sessions. Each session is a JSON document
// stored under its own key with the session TTL as expiration.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/area/pkg/models"
	"github.com/dukex/area/pkg/persistence"
	redis "github.com/redis/go-redis/v9"
)

const keyPrefix = "area:session:"

// Persistence implements the persistence.Persistence interface on top of Redis.
type Persistence struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger *slog.Logger
}

var _ persistence.Persistence = (*Persistence)(nil)

// NewPersistence connects to the Redis server described by url (redis://[user:pass@]host:port/db).
func NewPersistence(ctx context.Context, logger *slog.Logger, url string, ttl time.Duration) (*Persistence, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewWithClient(client, logger, ttl), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client redis.UniversalClient, logger *slog.Logger, ttl time.Duration) *Persistence {
	return &Persistence{
		client: client,
		ttl:    ttl,
		logger: logger.With("module", "redis_persistence"),
	}
}

func key(id string) string {
	return keyPrefix + id
}

func (p *Persistence) SessionByID(ctx context.Context, id string) (*models.Session, error) {
	if err := persistence.CheckSessionID(id); err != nil {
		return nil, persistence.NewSessionError("SessionByID", id, persistence.ErrSessionNotFound)
	}

	body, err := p.client.Get(ctx, key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, persistence.NewSessionError("SessionByID", id, persistence.ErrSessionNotFound)
		}

		return nil, fmt.Errorf("failed to fetch session %s: %w", id, err)
	}

	var session models.Session
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session %s: %w", id, err)
	}

	return &session, nil
}

// SaveSession writes the session and resets its expiration.
func (p *Persistence) SaveSession(ctx context.Context, session *models.Session) error {
	if err := persistence.CheckSessionID(session.ID); err != nil {
		return persistence.NewSessionError("SaveSession", session.ID, err)
	}

	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}

	session.UpdatedAt = now

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session %s: %w", session.ID, err)
	}

	if err := p.client.Set(ctx, key(session.ID), data, p.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session %s: %w", session.ID, err)
	}

	p.logger.DebugContext(ctx, "session saved", "session_id", session.ID, "ttl", p.ttl)

	return nil
}

func (p *Persistence) DeleteSession(ctx context.Context, id string) error {
	if err := persistence.CheckSessionID(id); err != nil {
		return nil
	}

	if err := p.client.Del(ctx, key(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}

	return nil
}

func (p *Persistence) HealthCheck(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func (p *Persistence) Close(_ context.Context) error {
	return p.client.Close()
}
