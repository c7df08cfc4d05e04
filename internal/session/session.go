// Package session binds a game engine to a storage provider and an executor.
// Input sources such as a terminal and a remote renderer may share one
// session; calls are serialised so the engine sees one interaction at a time.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/jwebster45206/quest-engine/internal/logger"
	"github.com/jwebster45206/quest-engine/pkg/command"
	"github.com/jwebster45206/quest-engine/pkg/engine"
	"github.com/jwebster45206/quest-engine/pkg/game"
	"github.com/jwebster45206/quest-engine/pkg/storage"
)

// ErrNotOpen is returned by calls made before Open succeeded.
var ErrNotOpen = errors.New("session: not open")

type Session struct {
	mu       sync.Mutex
	id       uuid.UUID
	provider storage.Provider
	executor command.Executor
	engine   *engine.Engine
	logger   *slog.Logger
	autosave bool
	open     bool
}

// New creates a session. executor may be nil when the caller only wants the
// returned command batches.
func New(id uuid.UUID, provider storage.Provider, executor command.Executor, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("session_id", id.String())
	return &Session{
		id:       id,
		provider: provider,
		executor: executor,
		engine:   engine.New(nil, logger),
		logger:   logger,
	}
}

// WithTransition selects the renderer transition used by the engine.
// Returns the Session for method chaining
func (s *Session) WithTransition(t engine.Transition) *Session {
	s.engine.WithTransition(t)
	return s
}

// WithCustomAction registers an engine handler for a custom action.
// Returns the Session for method chaining
func (s *Session) WithCustomAction(name string, h engine.CustomHandler) *Session {
	s.engine.WithCustomAction(name, h)
	return s
}

// WithAutosave saves the document through the provider after every non-empty batch.
// Returns the Session for method chaining
func (s *Session) WithAutosave(enabled bool) *Session {
	s.autosave = enabled
	return s
}

func (s *Session) ID() uuid.UUID {
	return s.id
}

// Open loads the document from the provider.
func (s *Session) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.engine.Load(ctx, s.provider); err != nil {
		return err
	}
	s.open = true
	s.logger.Info("Session opened", "location", s.engine.Document().CurrentLocationID)
	return nil
}

// Start begins play. A document that already has a current location is a
// resumed session and is only redrawn.
func (s *Session) Start(ctx context.Context) ([]command.Command, error) {
	return s.run(ctx, func(e *engine.Engine) ([]command.Command, error) {
		if e.Document().CurrentLocationID != "" {
			s.logger.Info("Resuming session")
			return e.Refresh()
		}
		return e.Start()
	})
}

// Interact forwards a player click to the engine.
func (s *Session) Interact(ctx context.Context, kind engine.InteractionType, id string) ([]command.Command, error) {
	return s.run(ctx, func(e *engine.Engine) ([]command.Command, error) {
		return e.ProcessInteraction(kind, id)
	})
}

// CompleteDialogue reports that the player left dialog index of a sequence.
func (s *Session) CompleteDialogue(ctx context.Context, sequenceID string, index int) ([]command.Command, error) {
	return s.run(ctx, func(e *engine.Engine) ([]command.Command, error) {
		return e.CompleteDialogue(sequenceID, index)
	})
}

// Execute runs a single action, e.g. from a debug console.
func (s *Session) Execute(ctx context.Context, action game.Action) ([]command.Command, error) {
	return s.run(ctx, func(e *engine.Engine) ([]command.Command, error) {
		return e.Execute(action)
	})
}

// Reset restarts the game from the loaded document.
func (s *Session) Reset(ctx context.Context) ([]command.Command, error) {
	return s.run(ctx, func(e *engine.Engine) ([]command.Command, error) {
		s.logger.Info("Resetting session")
		return e.Reset()
	})
}

// Save writes the document through the provider.
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return ErrNotOpen
	}
	return s.engine.Save(ctx, s.provider)
}

// Document returns a copy of the live document.
func (s *Session) Document() (*game.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return nil, ErrNotOpen
	}
	return s.engine.Document().Clone()
}

// ResolveDialogue returns the sequence an NPC would speak now, or nil.
func (s *Session) ResolveDialogue(npcID string) *game.DialogueSequence {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return nil
	}
	seq := s.engine.ResolveDialogue(npcID)
	if seq == nil {
		return nil
	}
	out := *seq
	return &out
}

func (s *Session) run(ctx context.Context, fn func(e *engine.Engine) ([]command.Command, error)) ([]command.Command, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return nil, ErrNotOpen
	}

	cmds, err := fn(s.engine)
	if err != nil {
		return nil, err
	}
	if s.executor != nil && len(cmds) > 0 {
		if err := s.executor.Execute(ctx, cmds); err != nil {
			logger.WithError(s.logger, err).Error("Executor failed", "commands", len(cmds))
			return cmds, fmt.Errorf("failed to execute commands: %w", err)
		}
	}
	if s.autosave && len(cmds) > 0 {
		if err := s.engine.Save(ctx, s.provider); err != nil {
			logger.WithError(s.logger, err).Error("Autosave failed")
			return cmds, err
		}
	}
	return cmds, nil
}
