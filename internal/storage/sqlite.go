package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jwebster45206/quest-engine/pkg/game"
	"github.com/jwebster45206/quest-engine/pkg/storage"
)

// SQLiteStorage keeps authored games in a SQLite database, one row per game
// name. Session runtime is zeroed on save: the store holds content, not play.
type SQLiteStorage struct {
	db     *sql.DB
	name   string
	logger *slog.Logger
}

// Ensure SQLiteStorage implements Storage interface
var _ storage.Storage = (*SQLiteStorage)(nil)

// OpenSQLite opens (creating if needed) the database at path and binds the
// storage to the game called name.
func OpenSQLite(path, name string, logger *slog.Logger) (*SQLiteStorage, error) {
	if path == "" {
		return nil, errors.New("empty db path")
	}
	if name == "" {
		return nil, errors.New("empty game name")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStorage{db: db, name: name, logger: logger}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS games (
		name TEXT PRIMARY KEY,
		document BLOB NOT NULL,
		updated_at INTEGER NOT NULL
	);`)
	return err
}

func (s *SQLiteStorage) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite ping failed: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// WithGame returns a storage for another game in the same database.
func (s *SQLiteStorage) WithGame(name string) *SQLiteStorage {
	return &SQLiteStorage{db: s.db, name: name, logger: s.logger}
}

func (s *SQLiteStorage) LoadGame(ctx context.Context) (*game.Document, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT document FROM games WHERE name = ?`, s.name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load game %s: %w", s.name, err)
	}
	doc, err := decodeDocument(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode game %s: %w", s.name, err)
	}
	return doc, nil
}

// SaveGame stores a copy of doc with its session runtime zeroed and its
// entities back in their authored places.
func (s *SQLiteStorage) SaveGame(ctx context.Context, doc *game.Document) error {
	if doc == nil {
		return errors.New("document cannot be nil")
	}
	authored, err := doc.Clone()
	if err != nil {
		return err
	}
	authored.ResetRuntime()
	authored.Authored = nil
	data, err := encodeDocument(authored)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO games (name, document, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET document = excluded.document, updated_at = excluded.updated_at`,
		s.name, data, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to save game %s: %w", s.name, err)
	}
	s.logger.Debug("Game saved", "name", s.name, "bytes", len(data))
	return nil
}

// ListGames returns the stored game names, most recently saved first.
func (s *SQLiteStorage) ListGames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM games ORDER BY updated_at DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// DeleteGame removes the bound game.
func (s *SQLiteStorage) DeleteGame(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM games WHERE name = ?`, s.name); err != nil {
		return fmt.Errorf("failed to delete game %s: %w", s.name, err)
	}
	return nil
}
