package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/jwebster45206/quest-engine/internal/config"
	"github.com/jwebster45206/quest-engine/internal/logger"
	"github.com/jwebster45206/quest-engine/internal/services/events"
	"github.com/jwebster45206/quest-engine/internal/session"
	istorage "github.com/jwebster45206/quest-engine/internal/storage"
	"github.com/jwebster45206/quest-engine/pkg/command"
	"github.com/jwebster45206/quest-engine/pkg/engine"
	"github.com/jwebster45206/quest-engine/pkg/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	// The terminal belongs to the UI.
	if cfg.LogOutput == "" || cfg.LogOutput == "stdout" || cfg.LogOutput == "stderr" {
		cfg.LogOutput = "discard"
	}
	log, closer, err := logger.Setup(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sessionID := uuid.New()
	if cfg.SessionID != "" {
		if sessionID, err = uuid.Parse(cfg.SessionID); err != nil {
			return fmt.Errorf("invalid SESSION_ID: %w", err)
		}
	}
	log = logger.WithSession(log, sessionID.String())

	base, cleanup, err := openBase(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	var (
		provider    storage.Provider = base
		broadcaster *events.Broadcaster
		autosave    bool
	)
	if cfg.RedisURL != "" {
		rs := istorage.NewRedisStorage(cfg.RedisURL, sessionID, base, cfg.SessionTTL, log)
		defer rs.Close()
		if err := rs.WaitForConnection(ctx); err != nil {
			return err
		}
		provider = rs
		broadcaster = events.NewBroadcaster(rs.Client(), sessionID, log)
		autosave = true
		fmt.Printf("Session %s (renderers subscribe to %s)\n", sessionID, events.Channel(sessionID))
	}

	ui := &programExecutor{}
	executors := []command.Executor{ui}
	if broadcaster != nil {
		executors = append(executors, broadcaster)
	}
	sess := session.New(sessionID, provider, command.Multi(executors...), log).
		WithAutosave(autosave)
	if cfg.Renderer == config.RendererScene {
		// The console still needs the grid commands.
		sess.WithTransition(engine.CombinedTransition{engine.GridTransition{}, engine.SceneTransition{}})
	}
	if err := sess.Open(ctx); err != nil {
		return err
	}
	doc, err := sess.Document()
	if err != nil {
		return err
	}

	model := NewConsoleUI(ctx, sess, doc.Dialogues)
	if broadcaster != nil {
		model.afterSave = broadcaster.PublishSaved
	}

	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	ui.program = p
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	log.Info("Console closed")
	return nil
}

// openBase picks the game source: GAME_FILE, or a game chosen by the player.
// With SQLITE_PATH the game is served from the library database, imported
// from its source on first use, and games already in the library are offered
// alongside the embedded ones.
func openBase(ctx context.Context, cfg *config.Config, log *slog.Logger) (storage.Provider, func(), error) {
	if cfg.SQLitePath == "" {
		if cfg.GameFile != "" {
			return istorage.NewFileStorage(cfg.GameFile, log), func() {}, nil
		}
		name, err := selectGame(istorage.EmbeddedGames())
		if err != nil {
			return nil, nil, err
		}
		return istorage.NewEmbeddedStorage(name, log), func() {}, nil
	}

	lib, err := istorage.OpenSQLite(cfg.SQLitePath, istorage.DefaultGame, log)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { _ = lib.Close() }

	var (
		source storage.Provider
		name   string
	)
	if cfg.GameFile != "" {
		source = istorage.NewFileStorage(cfg.GameFile, log)
		name = strings.TrimSuffix(filepath.Base(cfg.GameFile), filepath.Ext(cfg.GameFile))
	} else {
		stored, err := lib.ListGames(ctx)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		if name, err = selectGame(mergeGames(stored, istorage.EmbeddedGames())); err != nil {
			cleanup()
			return nil, nil, err
		}
		if slices.Contains(istorage.EmbeddedGames(), name) {
			source = istorage.NewEmbeddedStorage(name, log)
		}
	}

	db := lib.WithGame(name)
	if _, err := db.LoadGame(ctx); errors.Is(err, storage.ErrNotFound) && source != nil {
		doc, err := source.LoadGame(ctx)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		if err := db.SaveGame(ctx, doc); err != nil {
			cleanup()
			return nil, nil, err
		}
		log.Info("Imported game into library", "game", name, "path", cfg.SQLitePath)
	} else if err != nil {
		cleanup()
		return nil, nil, err
	}
	return db, cleanup, nil
}

// mergeGames lists library games first, then embedded games not yet imported.
func mergeGames(stored, embedded []string) []string {
	games := slices.Clone(stored)
	for _, g := range embedded {
		if !slices.Contains(games, g) {
			games = append(games, g)
		}
	}
	return games
}

func selectGame(games []string) (string, error) {
	switch len(games) {
	case 0:
		return "", errors.New("no games available")
	case 1:
		return games[0], nil
	}

	fmt.Println("Available Games:")
	for i, g := range games {
		fmt.Printf("  %d - %s\n", i+1, g)
	}
	fmt.Print("\nSelect a game by number: ")

	var choice int
	if _, err := fmt.Scanf("%d", &choice); err != nil || choice < 1 || choice > len(games) {
		return "", errors.New("invalid selection")
	}
	return games[choice-1], nil
}

// programExecutor forwards command batches into the running program.
type programExecutor struct {
	program *tea.Program
}

// Ensure programExecutor implements Executor interface
var _ command.Executor = (*programExecutor)(nil)

func (e *programExecutor) Execute(_ context.Context, cmds []command.Command) error {
	if e.program == nil {
		return nil
	}
	e.program.Send(commandsMsg{cmds: cmds})
	return nil
}
