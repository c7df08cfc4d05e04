package storage

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/jwebster45206/quest-engine/pkg/game"
	"github.com/jwebster45206/quest-engine/pkg/storage"
)

//go:embed data/*.json
var gameFS embed.FS

// DefaultGame is the embedded game used when no game file is configured.
const DefaultGame = "lyre_grotto"

// EmbeddedStorage serves a game compiled into the binary. Saves are kept in
// memory for the life of the process.
type EmbeddedStorage struct {
	name   string
	logger *slog.Logger

	mu    sync.RWMutex
	saved *game.Document
}

// Ensure EmbeddedStorage implements Provider interface
var _ storage.Provider = (*EmbeddedStorage)(nil)

// NewEmbeddedStorage returns a provider for the embedded game called name.
func NewEmbeddedStorage(name string, logger *slog.Logger) *EmbeddedStorage {
	if name == "" {
		name = DefaultGame
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EmbeddedStorage{name: name, logger: logger}
}

// EmbeddedGames lists the games compiled into the binary.
func EmbeddedGames() []string {
	entries, err := fs.ReadDir(gameFS, "data")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && path.Ext(e.Name()) == ".json" {
			names = append(names, strings.TrimSuffix(e.Name(), ".json"))
		}
	}
	sort.Strings(names)
	return names
}

func (e *EmbeddedStorage) LoadGame(ctx context.Context) (*game.Document, error) {
	e.mu.RLock()
	saved := e.saved
	e.mu.RUnlock()
	if saved != nil {
		return saved.Clone()
	}

	data, err := gameFS.ReadFile(path.Join("data", e.name+".json"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("embedded game %q: %w", e.name, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read embedded game: %w", err)
	}
	doc, err := ParseDocument(data, false)
	if err != nil {
		return nil, fmt.Errorf("embedded game %q: %w", e.name, err)
	}
	e.logger.Debug("Loaded embedded game", "name", e.name)
	return doc, nil
}

func (e *EmbeddedStorage) SaveGame(ctx context.Context, doc *game.Document) error {
	if doc == nil {
		return errors.New("document cannot be nil")
	}
	clone, err := doc.Clone()
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.saved = clone
	e.mu.Unlock()
	return nil
}
