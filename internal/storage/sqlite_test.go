package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/quest-engine/pkg/game"
	"github.com/jwebster45206/quest-engine/pkg/storage"
)

func openTestSQLite(t *testing.T, name string) *SQLiteStorage {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "games.sqlite"), name, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStorage_SaveAndLoad(t *testing.T) {
	ctx := context.Background()
	s := openTestSQLite(t, DefaultGame)
	require.NoError(t, s.Ping(ctx))

	_, err := s.LoadGame(ctx)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	doc, err := NewEmbeddedStorage(DefaultGame, testLogger()).LoadGame(ctx)
	require.NoError(t, err)
	doc.CurrentLocationID = "grotto"
	doc.ActiveQuests = []string{"tuning"}
	doc.Inventory = []string{"lyre"}
	doc.IncrementCounter(game.CounterSeedsPlaced)
	doc.FindItem("lyre").Name = "Golden Lyre"
	require.NoError(t, s.SaveGame(ctx, doc))

	// The caller's document is untouched.
	assert.Equal(t, "grotto", doc.CurrentLocationID)

	loaded, err := s.LoadGame(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Golden Lyre", loaded.FindItem("lyre").Name)
	assert.Empty(t, loaded.CurrentLocationID)
	assert.Empty(t, loaded.ActiveQuests)
	assert.Empty(t, loaded.Inventory)
	assert.Equal(t, 0, loaded.Counter(game.CounterSeedsPlaced))

	// Saving again replaces the row.
	loaded.FindItem("lyre").Name = "Lyre"
	require.NoError(t, s.SaveGame(ctx, loaded))
	again, err := s.LoadGame(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Lyre", again.FindItem("lyre").Name)
}

func TestSQLiteStorage_SaveMidPlay(t *testing.T) {
	ctx := context.Background()
	s := openTestSQLite(t, DefaultGame)

	doc, err := NewEmbeddedStorage(DefaultGame, testLogger()).LoadGame(ctx)
	require.NoError(t, err)
	doc.RecordAuthored()
	doc.CurrentLocationID = "grotto"
	doc.Inventory = []string{"crystal_1"}
	doc.FindItem("crystal_1").State = game.StateInventory
	doc.FindItem("glow_moss").State = game.StateWorld
	require.NoError(t, s.SaveGame(ctx, doc))

	loaded, err := s.LoadGame(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded.Inventory)
	assert.Nil(t, loaded.Authored)
	assert.Equal(t, game.StateWorld, loaded.FindItem("crystal_1").State)
	assert.Equal(t, game.StateVoid, loaded.FindItem("glow_moss").State)
	for _, id := range loaded.AllEntityIDs() {
		ent, _ := loaded.Entity(id)
		assert.Equal(t, loaded.InInventory(id), ent.State == game.StateInventory, id)
	}

	// A document saved without an authored record still comes back consistent.
	doc.Authored = nil
	require.NoError(t, s.SaveGame(ctx, doc))
	loaded, err = s.LoadGame(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded.Inventory)
	assert.Equal(t, game.StateWorld, loaded.FindItem("crystal_1").State)
}

func TestSQLiteStorage_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	s := openTestSQLite(t, "first")
	other := s.WithGame("second")

	require.NoError(t, s.SaveGame(ctx, MinimalDocument()))
	require.NoError(t, other.SaveGame(ctx, MinimalDocument()))

	names, err := s.ListGames(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"first", "second"}, names)

	require.NoError(t, other.DeleteGame(ctx))
	_, err = other.LoadGame(ctx)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.LoadGame(ctx)
	assert.NoError(t, err)
}

func TestOpenSQLite_Errors(t *testing.T) {
	_, err := OpenSQLite("", "game", testLogger())
	assert.Error(t, err)
	_, err = OpenSQLite(filepath.Join(t.TempDir(), "x.sqlite"), "", testLogger())
	assert.Error(t, err)
}
