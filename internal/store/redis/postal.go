package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/catalog/internal/domain"
)

// SetMunicipalityCode stores a postal code -> municipality code mapping
func (s *Store) SetMunicipalityCode(ctx context.Context, postalCode, municipalityCode string) error {
	if err := s.client.Set(ctx, PostalKey(postalCode), municipalityCode, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save postal code: %w", err)
	}
	return nil
}

// GetMunicipalityCode returns the municipality code of a postal code, "" on miss
func (s *Store) GetMunicipalityCode(ctx context.Context, postalCode string) (string, error) {
	code, err := s.client.Get(ctx, PostalKey(postalCode)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil // Cache miss
		}
		return "", fmt.Errorf("failed to get postal code: %w", err)
	}
	return code, nil
}

// SavePostalCodesMany stores a whole postal table (bulk operation)
func (s *Store) SavePostalCodesMany(ctx context.Context, table map[string]string) error {
	pipe := s.client.Pipeline()

	for postal, municipality := range table {
		pipe.Set(ctx, PostalKey(postal), municipality, s.ttl)
		pipe.SAdd(ctx, AllPostalCodesKey(), postal)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save postal codes: %w", err)
	}
	return nil
}

// CountPostalCodes returns how many postal codes are stored
func (s *Store) CountPostalCodes(ctx context.Context) (int64, error) {
	n, err := s.client.SCard(ctx, AllPostalCodesKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count postal codes: %w", err)
	}
	return n, nil
}

// SaveMunicipalitiesMany stores municipality records (bulk operation)
func (s *Store) SaveMunicipalitiesMany(ctx context.Context, municipalities map[string]domain.Municipality) error {
	pipe := s.client.Pipeline()

	for code, m := range municipalities {
		data, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("failed to marshal municipality %s: %w", code, err)
		}
		pipe.Set(ctx, MunicipalityKey(code), data, s.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save municipalities: %w", err)
	}
	return nil
}
