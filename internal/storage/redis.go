package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/quest-engine/pkg/storage"
)

// DefaultSessionTTL is how long an idle session snapshot is kept.
const DefaultSessionTTL = 24 * time.Hour

// RedisStorage keeps the running document of one session in Redis under
// "gamestate:<session id>". A session with no snapshot yet starts from the
// base provider.
type RedisStorage struct {
	client *redis.Client
	logger *slog.Logger
	base   storage.Provider
	id     uuid.UUID
	ttl    time.Duration
}

// Ensure RedisStorage implements Storage interface
var _ storage.Storage = (*RedisStorage)(nil)

// NewRedisStorage creates a Redis storage instance for session id. redisURL
// is either a redis:// URL or a bare host:port.
func NewRedisStorage(redisURL string, id uuid.UUID, base storage.Provider, ttl time.Duration, logger *slog.Logger) *RedisStorage {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		opt = &redis.Options{Addr: redisURL}
	}
	return newRedisStorage(redis.NewClient(opt), id, base, ttl, logger)
}

func newRedisStorage(rdb *redis.Client, id uuid.UUID, base storage.Provider, ttl time.Duration, logger *slog.Logger) *RedisStorage {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisStorage{
		client: rdb,
		logger: logger,
		base:   base,
		id:     id,
		ttl:    ttl,
	}
}

// Client exposes the connection for components sharing it, like the event broadcaster.
func (r *RedisStorage) Client() *redis.Client {
	return r.client
}

// SessionID returns the session the snapshots belong to.
func (r *RedisStorage) SessionID() uuid.UUID {
	return r.id
}

// Health and lifecycle methods

func (r *RedisStorage) Ping(ctx context.Context) error {
	cmd := r.client.Ping(ctx)
	if err := cmd.Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStorage) WaitForConnection(ctx context.Context) error {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}
