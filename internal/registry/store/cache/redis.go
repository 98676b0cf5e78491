// Package cache holds a Redis read-through cache for passport rows.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"ledgerpass/internal/registry/models"
	"ledgerpass/pkg/domain"
	"ledgerpass/pkg/platform/sentinel"
)

const (
	passportKeyPrefix = "ledgerpass:passport:"
	defaultTTL        = 5 * time.Minute
)

// RedisPassportCache stores passport rows as JSON. It never stores derived
// validity; callers recompute it at read time.
type RedisPassportCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

type Option func(*RedisPassportCache)

func WithTTL(ttl time.Duration) Option {
	return func(c *RedisPassportCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

func NewRedisPassportCache(client redis.Cmdable, opts ...Option) *RedisPassportCache {
	c := &RedisPassportCache{client: client, ttl: defaultTTL}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func key(number domain.PassportNumber) string {
	return passportKeyPrefix + number.String()
}

// Get returns sentinel.ErrNotFound on a miss.
func (c *RedisPassportCache) Get(ctx context.Context, number domain.PassportNumber) (*models.Passport, error) {
	raw, err := c.client.Get(ctx, key(number)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get cached passport: %w", err)
	}
	var p models.Passport
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode cached passport: %w", err)
	}
	return &p, nil
}

func (c *RedisPassportCache) Set(ctx context.Context, passport *models.Passport) error {
	raw, err := json.Marshal(passport)
	if err != nil {
		return fmt.Errorf("encode passport: %w", err)
	}
	if err := c.client.Set(ctx, key(passport.Number), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache passport: %w", err)
	}
	return nil
}

// SetIfAbsent fills an empty slot and leaves an existing entry alone, so a
// read-path fill never replaces a row a mutation wrote.
func (c *RedisPassportCache) SetIfAbsent(ctx context.Context, passport *models.Passport) error {
	raw, err := json.Marshal(passport)
	if err != nil {
		return fmt.Errorf("encode passport: %w", err)
	}
	if err := c.client.SetNX(ctx, key(passport.Number), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("fill passport cache: %w", err)
	}
	return nil
}

func (c *RedisPassportCache) Delete(ctx context.Context, number domain.PassportNumber) error {
	if err := c.client.Del(ctx, key(number)).Err(); err != nil {
		return fmt.Errorf("evict passport: %w", err)
	}
	return nil
}
