// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dukex/area/pkg/persistence"
	"github.com/dukex/area/pkg/persistence/file"
	"github.com/dukex/area/pkg/persistence/redis"
)

var supportedPersistenceProviders = []string{"file", "redis", "rediss"}

// NewPersistence picks the session store from the scheme of sessionURL. URLs without a known scheme are
// treated as file system paths.
func NewPersistence(ctx context.Context, logger *slog.Logger, sessionURL string, ttl time.Duration) (persistence.Persistence, error) {
	provider := parsePersistenceProvider(sessionURL)

	switch provider {
	case "redis", "rediss":
		p, err := redis.NewPersistence(ctx, logger, sessionURL, ttl)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis persistence: %w", err)
		}

		return p, nil
	default:
		return file.NewPersistence(sessionURL, ttl), nil
	}
}

func parsePersistenceProvider(sessionURL string) string {
	parts := strings.Split(sessionURL, "://")

	provider := parts[0]
	for _, supported := range supportedPersistenceProviders {
		if provider == supported {
			return provider
		}
	}

	return "file"
}
