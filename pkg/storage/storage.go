package storage

import (
	"context"
	"errors"

	"github.com/jwebster45206/quest-engine/pkg/game"
)

// ErrNotFound is returned when a provider has no document to load.
var ErrNotFound = errors.New("storage: game not found")

// Provider loads and saves the game document of one session.
// Documents returned by LoadGame are expanded: every entity a location
// references is in the registries.
type Provider interface {
	LoadGame(ctx context.Context) (*game.Document, error)
	SaveGame(ctx context.Context, doc *game.Document) error
}

// Storage is a Provider backed by an external service.
type Storage interface {
	Provider

	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error
}
