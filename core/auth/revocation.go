package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationStore tracks session ids that were logged out before their token
// expired. Tokens are client-held, so logout has to be recorded server-side to
// be deterministic.
type RevocationStore interface {
	Revoke(ctx context.Context, sessionID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
}

// redisRevocationStore implements RevocationStore on Redis. Entries carry a
// TTL matching the token's remaining lifetime, after which the token is
// rejected by expiry anyway.
type redisRevocationStore struct {
	client *redis.Client
}

// NewRedisRevocationStore creates a new redisRevocationStore.
func NewRedisRevocationStore(client *redis.Client) RevocationStore {
	return &redisRevocationStore{client: client}
}

func revocationKey(sessionID string) string {
	return "session:revoked:" + sessionID
}

func (s *redisRevocationStore) Revoke(ctx context.Context, sessionID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil // Already expired; nothing to record.
	}
	if err := s.client.Set(ctx, revocationKey(sessionID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke session %s: %w", sessionID, err)
	}
	return nil
}

func (s *redisRevocationStore) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	n, err := s.client.Exists(ctx, revocationKey(sessionID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check session revocation for %s: %w", sessionID, err)
	}
	return n > 0, nil
}
