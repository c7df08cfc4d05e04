package logger

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/quest-engine/internal/config"
)

func TestSetup_FileOutput(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	path := filepath.Join(t.TempDir(), "quest.log")
	cfg := &config.Config{Environment: "production", LogLevel: slog.LevelWarn, LogOutput: path}

	log, closer, err := Setup(cfg)
	require.NoError(t, err)
	WithSession(log, "abc").Info("Dropped below level")
	WithError(WithSession(log, "abc"), errors.New("boom")).Warn("Content problem")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "Dropped below level")
	assert.Contains(t, string(data), `"msg":"Content problem"`)
	assert.Contains(t, string(data), `"session_id":"abc"`)
	assert.Contains(t, string(data), `"error":"boom"`)
}

func TestSetup_StandardOutputs(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	for _, out := range []string{"", "stdout", "stderr", "discard"} {
		_, closer, err := Setup(&config.Config{LogOutput: out})
		require.NoError(t, err, out)
		assert.NoError(t, closer.Close())
	}
}

func TestSetup_BadPath(t *testing.T) {
	_, _, err := Setup(&config.Config{LogOutput: filepath.Join(t.TempDir(), "missing", "quest.log")})
	assert.Error(t, err)
}
