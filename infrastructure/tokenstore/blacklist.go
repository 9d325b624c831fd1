package tokenstore

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/salestrack/sales-tracker-api/internal/config"
)

const keyPrefix = "sales-tracker:token:blacklist:"

// Blacklist stores revoked token ids until the token would have expired anyway.
type Blacklist interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// New picks the Redis store when an address is configured, the in-memory one otherwise.
func New(ctx context.Context, cfg config.Redis) (Blacklist, error) {
	if cfg.Addr == "" {
		return NewInMemoryBlacklist(), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "connect to redis for token blacklist")
	}

	return NewRedisBlacklist(client), nil
}

type RedisBlacklist struct {
	client *redis.Client
}

func NewRedisBlacklist(client *redis.Client) *RedisBlacklist {
	return &RedisBlacklist{client: client}
}

func (b *RedisBlacklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := b.client.Set(ctx, keyPrefix+jti, "1", ttl).Err(); err != nil {
		return errors.Wrap(err, "revoke token")
	}
	return nil
}

func (b *RedisBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	exists, err := b.client.Exists(ctx, keyPrefix+jti).Result()
	if err != nil {
		return false, errors.Wrap(err, "check token blacklist")
	}
	return exists > 0, nil
}

func (b *RedisBlacklist) Close() error {
	return b.client.Close()
}

// InMemoryBlacklist only covers a single process.
type InMemoryBlacklist struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

func NewInMemoryBlacklist() *InMemoryBlacklist {
	return &InMemoryBlacklist{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (b *InMemoryBlacklist) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	b.pruneLocked(now)
	b.entries[jti] = now.Add(ttl)
	return nil
}

// pruneLocked drops entries whose token has expired. b.mu must be held.
func (b *InMemoryBlacklist) pruneLocked(now time.Time) {
	for jti, expiresAt := range b.entries {
		if now.After(expiresAt) {
			delete(b.entries, jti)
		}
	}
}

func (b *InMemoryBlacklist) IsRevoked(_ context.Context, jti string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	expiresAt, ok := b.entries[jti]
	if !ok {
		return false, nil
	}
	if b.now().After(expiresAt) {
		delete(b.entries, jti)
		return false, nil
	}
	return true, nil
}

var (
	_ Blacklist = (*RedisBlacklist)(nil)
	_ Blacklist = (*InMemoryBlacklist)(nil)
)
