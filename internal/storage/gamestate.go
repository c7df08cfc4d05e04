package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/quest-engine/pkg/game"
	"github.com/jwebster45206/quest-engine/pkg/storage"
)

// Session snapshot operations (Redis-backed)

func (r *RedisStorage) key() string {
	return "gamestate:" + r.id.String()
}

// LoadGame returns the session snapshot, or the base document for a new session.
func (r *RedisStorage) LoadGame(ctx context.Context) (*game.Document, error) {
	data, err := r.client.Get(ctx, r.key()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return r.loadBase(ctx)
		}
		r.logger.Error("Failed to load gamestate", "uuid", r.id, "error", err)
		return nil, fmt.Errorf("failed to load gamestate: %w", err)
	}
	if len(data) == 0 {
		return r.loadBase(ctx)
	}

	doc, err := decodeDocument(data)
	if err != nil {
		r.logger.Error("Failed to decode gamestate", "uuid", r.id, "error", err)
		return nil, fmt.Errorf("failed to decode gamestate: %w", err)
	}
	r.logger.Debug("Gamestate loaded", "uuid", r.id, "bytes", len(data))
	return doc, nil
}

func (r *RedisStorage) loadBase(ctx context.Context) (*game.Document, error) {
	if r.base == nil {
		r.logger.Warn("Gamestate not found", "uuid", r.id)
		return nil, storage.ErrNotFound
	}
	r.logger.Info("No gamestate for session, loading base game", "uuid", r.id)
	return r.base.LoadGame(ctx)
}

// SaveGame writes the snapshot and refreshes its TTL.
func (r *RedisStorage) SaveGame(ctx context.Context, doc *game.Document) error {
	if doc == nil {
		return errors.New("document cannot be nil")
	}
	data, err := encodeDocument(doc)
	if err != nil {
		r.logger.Error("Failed to encode gamestate", "uuid", r.id, "error", err)
		return err
	}

	if err := r.client.Set(ctx, r.key(), data, r.ttl).Err(); err != nil {
		r.logger.Error("Failed to save gamestate", "uuid", r.id, "error", err)
		return fmt.Errorf("failed to save gamestate: %w", err)
	}
	return nil
}

// DeleteGame drops the snapshot so the next load starts over from the base game.
func (r *RedisStorage) DeleteGame(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key()).Err(); err != nil {
		r.logger.Error("Failed to delete gamestate", "uuid", r.id, "error", err)
		return fmt.Errorf("failed to delete gamestate: %w", err)
	}
	return nil
}
