package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jwebster45206/quest-engine/pkg/game"
	"github.com/jwebster45206/quest-engine/pkg/storage"
)

// FileStorage reads and writes a game document on disk. Files ending in
// .yaml or .yml are YAML, everything else is JSON.
type FileStorage struct {
	path   string
	logger *slog.Logger
}

// Ensure FileStorage implements Provider interface
var _ storage.Provider = (*FileStorage)(nil)

// NewFileStorage creates a file provider for path.
func NewFileStorage(path string, logger *slog.Logger) *FileStorage {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStorage{path: filepath.Clean(path), logger: logger}
}

func (f *FileStorage) Path() string {
	return f.path
}

func (f *FileStorage) isYAML() bool {
	ext := strings.ToLower(filepath.Ext(f.path))
	return ext == ".yaml" || ext == ".yml"
}

// LoadGame reads the file. A missing file yields a minimal document so a new
// game can be authored from scratch.
func (f *FileStorage) LoadGame(ctx context.Context) (*game.Document, error) {
	f.logger.Debug("Loading game", "path", f.path)
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			f.logger.Warn("Game file not found, using minimal document", "path", f.path)
			return MinimalDocument(), nil
		}
		return nil, fmt.Errorf("failed to read game file: %w", err)
	}

	doc, err := ParseDocument(data, f.isYAML())
	if err != nil {
		f.logger.Error("Failed to parse game file", "path", f.path, "error", err)
		return nil, fmt.Errorf("failed to parse %s: %w", f.path, err)
	}
	return doc, nil
}

// SaveGame writes the document in the file's format, replacing the file atomically.
func (f *FileStorage) SaveGame(ctx context.Context, doc *game.Document) error {
	if doc == nil {
		return errors.New("document cannot be nil")
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}
	if f.isYAML() {
		if data, err = jsonToYAML(data); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("failed to create game directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write game file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write game file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("failed to replace game file: %w", err)
	}
	f.logger.Debug("Game saved", "path", f.path)
	return nil
}

// ParseDocument decodes a JSON or YAML game document and expands it.
// YAML goes through the JSON decoders so both formats share one schema.
func ParseDocument(data []byte, isYAML bool) (*game.Document, error) {
	if isYAML {
		var err error
		if data, err = YAMLToJSON(data); err != nil {
			return nil, err
		}
	}
	var doc game.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	storage.Expand(&doc)
	return &doc, nil
}

// ReadDocument loads a game file from disk without the missing-file fallback.
func ReadDocument(path string) (*game.Document, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	ext := strings.ToLower(filepath.Ext(path))
	return ParseDocument(data, ext == ".yaml" || ext == ".yml")
}

// YAMLToJSON re-encodes a YAML document as JSON.
func YAMLToJSON(data []byte) ([]byte, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}
	out, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to convert yaml to json: %w", err)
	}
	return out, nil
}

func jsonToYAML(data []byte) ([]byte, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to convert json to yaml: %w", err)
	}
	out, err := yaml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal yaml: %w", err)
	}
	return out, nil
}

// MinimalDocument is a playable empty game: one location, nothing else.
func MinimalDocument() *game.Document {
	doc := game.NewDocument()
	doc.Locations = []game.Location{{
		ID:      "start",
		Name:    "Start",
		Items:   []string{},
		NPCs:    []string{},
		Portals: []string{},
	}}
	doc.DefaultLocationID = "start"
	return doc
}
