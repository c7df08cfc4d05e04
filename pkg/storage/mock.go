package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/jwebster45206/quest-engine/pkg/game"
)

// MockStorage is an in-memory Storage for testing. It stores deep copies so
// callers cannot mutate what was saved.
type MockStorage struct {
	mu        sync.RWMutex
	doc       *game.Document
	saves     int
	pingError error
	loadError error
	saveError error
}

// Ensure MockStorage implements Storage interface
var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates a new mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{}
}

// SetGame replaces the stored document without counting a save.
func (m *MockStorage) SetGame(doc *game.Document) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if doc == nil {
		m.doc = nil
		return
	}
	Expand(doc)
	if clone, err := doc.Clone(); err == nil {
		doc = clone
	}
	m.doc = doc
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// SetLoadError configures the mock to fail on LoadGame
func (m *MockStorage) SetLoadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadError = err
}

// SetSaveError configures the mock to fail on SaveGame
func (m *MockStorage) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveError = err
}

// Saves returns how many times SaveGame succeeded.
func (m *MockStorage) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}

// Ping mocks storage ping
func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

// Close mocks storage close
func (m *MockStorage) Close() error {
	return nil
}

// LoadGame returns a copy of the stored document.
func (m *MockStorage) LoadGame(ctx context.Context) (*game.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.loadError != nil {
		return nil, m.loadError
	}
	if m.doc == nil {
		return nil, ErrNotFound
	}
	return m.doc.Clone()
}

// SaveGame stores a copy of doc.
func (m *MockStorage) SaveGame(ctx context.Context, doc *game.Document) error {
	if doc == nil {
		return errors.New("document cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveError != nil {
		return m.saveError
	}
	clone, err := doc.Clone()
	if err != nil {
		return err
	}
	m.doc = clone
	m.saves++
	return nil
}
