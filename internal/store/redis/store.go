package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultReferenceTTL is the default TTL for reference entries (48 hours)
const DefaultReferenceTTL = 48 * time.Hour

// Store is the shared second tier of the reference lookups
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore creates a new Redis store. A zero ttl selects DefaultReferenceTTL.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultReferenceTTL
	}
	return &Store{
		client: client,
		ttl:    ttl,
	}
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Flush removes every catalog key
func (s *Store) Flush(ctx context.Context) error {
	for _, pattern := range []string{KeyPrefixPostal + "*", KeyPrefixMunicipality + "*"} {
		iter := s.client.Scan(ctx, 0, pattern, 0).Iterator()
		for iter.Next(ctx) {
			if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
				return fmt.Errorf("failed to delete key: %w", err)
			}
		}
		if err := iter.Err(); err != nil {
			return fmt.Errorf("failed to flush %s: %w", pattern, err)
		}
	}
	if err := s.client.Del(ctx, AllPostalCodesKey()).Err(); err != nil {
		return fmt.Errorf("failed to flush postal code set: %w", err)
	}
	return nil
}
