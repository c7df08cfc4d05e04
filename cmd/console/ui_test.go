package main

import (
	"context"
	"io"
	"log/slog"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/quest-engine/internal/session"
	istorage "github.com/jwebster45206/quest-engine/internal/storage"
	"github.com/jwebster45206/quest-engine/pkg/command"
	"github.com/jwebster45206/quest-engine/pkg/game"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestUI opens the embedded game and applies its start batch.
func newTestUI(t *testing.T, rec *command.Recorder) ConsoleUI {
	t.Helper()
	ctx := context.Background()
	provider := istorage.NewEmbeddedStorage(istorage.DefaultGame, testLogger())
	sess := session.New(uuid.New(), provider, rec, testLogger())
	require.NoError(t, sess.Open(ctx))
	doc, err := sess.Document()
	require.NoError(t, err)

	m := NewConsoleUI(ctx, sess, doc.Dialogues)
	cmds, err := sess.Start(ctx)
	require.NoError(t, err)
	m.apply(cmds)
	return m
}

func key(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func selectEntity(t *testing.T, m *ConsoleUI, id string) {
	t.Helper()
	for i, e := range m.visibleEntities() {
		if e.ID == id {
			m.selected = i
			return
		}
	}
	t.Fatalf("entity %s is not visible", id)
}

func TestConsoleUI_Apply(t *testing.T) {
	m := NewConsoleUI(context.Background(), nil, nil)
	m.apply([]command.Command{
		command.UpdateLocation{
			LocationID:   "hut",
			LocationName: "Hut",
			Entities: []command.EntityView{
				{ID: "cup", Kind: game.KindItem, Name: "Cup", State: game.StateWorld},
				{ID: "moss", Kind: game.KindItem, Name: "Moss", State: game.StateVoid},
				{ID: "door", Kind: game.KindPortal, Name: "Door", State: game.StateWorld},
			},
		},
		command.QuestActivated{QuestID: "tea", QuestTitle: "make tea"},
		command.UpdateInventory{Inventory: []command.InventoryEntry{{ID: "kettle", Name: "Kettle"}}},
	})
	require.Len(t, m.visibleEntities(), 2)
	assert.Equal(t, "Kettle", m.inventory[0].Name)

	m.selected = 1
	m.apply([]command.Command{
		command.ClearEntity{ID: "door"},
		command.SpawnEntity{ID: "moss"},
		command.UpdateVesselTexture{VesselID: "cup", Activated: true},
		command.PlaySound{URL: "sounds/pop.mp3"},
		command.QuestCompleted{QuestID: "tea", QuestTitle: "make tea"},
		command.SetEntityVisibility{EntityID: "cup", Visible: false},
	})

	visible := m.visibleEntities()
	require.Len(t, visible, 2)
	assert.Equal(t, "moss", visible[1].ID)
	assert.True(t, m.vessels["cup"])
	assert.True(t, m.quests[0].completed)
	assert.Contains(t, m.plainLog(), "→ Hut")
	assert.Contains(t, m.plainLog(), "♪ sounds/pop.mp3")
	assert.Contains(t, m.plainLog(), "Quest completed: make tea")
}

func TestConsoleUI_UpdateEntityMode(t *testing.T) {
	m := NewConsoleUI(context.Background(), nil, nil)
	m.apply([]command.Command{command.UpdateLocation{
		LocationName: "Hut",
		Entities:     []command.EntityView{{ID: "cup", Name: "Cup", State: game.StateWorld, Interactive: game.Grabbable}},
	}})
	mode := game.NotInteractive
	m.apply([]command.Command{command.UpdateEntity{ID: "cup", Interactive: &mode}})
	assert.Equal(t, game.NotInteractive, m.location.Entities[0].Interactive)
	assert.Equal(t, game.StateWorld, m.location.Entities[0].State)
}

func TestConsoleUI_ClickSelection(t *testing.T) {
	rec := command.NewRecorder()
	m := newTestUI(t, rec)
	assert.Equal(t, "Singing Grotto", m.location.LocationName)
	require.Len(t, m.quests, 1)

	selectEntity(t, &m, "crystal_1")
	model, cmd := m.Update(key("enter"))
	m = model.(ConsoleUI)
	require.NotNil(t, cmd)
	assert.True(t, m.busy)

	done, ok := cmd().(doneMsg)
	require.True(t, ok)
	require.NoError(t, done.err)

	inv := command.Filter(rec.All(), command.TypeUpdateInventory)
	require.NotEmpty(t, inv)
	last := inv[len(inv)-1].(command.UpdateInventory)
	assert.Equal(t, "crystal_1", last.Inventory[0].ID)
}

func TestConsoleUI_Navigation(t *testing.T) {
	m := newTestUI(t, command.NewRecorder())
	visible := m.visibleEntities()
	require.Greater(t, len(visible), 2)

	model, _ := m.Update(key("right"))
	m = model.(ConsoleUI)
	assert.Equal(t, 1, m.selected)

	for range len(visible) + 3 {
		model, _ = m.Update(key("l"))
		m = model.(ConsoleUI)
	}
	assert.Equal(t, len(visible)-1, m.selected)

	model, _ = m.Update(key("q"))
	assert.True(t, model.(ConsoleUI).showQuitModal)
}

func TestConsoleUI_Dialogue(t *testing.T) {
	m := newTestUI(t, command.NewRecorder())
	m.apply([]command.Command{command.ShowDialogue{DialogueSequenceID: "echo_tuning", NPCID: "echo"}})
	require.NotNil(t, m.dialogue)
	assert.Contains(t, m.renderDialogue(), "enter to continue")

	model, cmd := m.Update(key("enter"))
	m = model.(ConsoleUI)
	require.NotNil(t, cmd)
	assert.NoError(t, cmd().(doneMsg).err)
	assert.Equal(t, 1, m.dialogue.index)

	// "Not now." jumps to the last line.
	model, _ = m.Update(key("down"))
	m = model.(ConsoleUI)
	assert.Equal(t, 1, m.dialogue.button)
	model, _ = m.Update(key("enter"))
	m = model.(ConsoleUI)
	assert.Equal(t, 3, m.dialogue.index)
	assert.Contains(t, m.renderDialogue(), "enter to close")

	model, _ = m.Update(key("enter"))
	m = model.(ConsoleUI)
	assert.Nil(t, m.dialogue)
}

func TestConsoleUI_MissingDialogue(t *testing.T) {
	m := NewConsoleUI(context.Background(), nil, nil)
	m.apply([]command.Command{command.ShowDialogue{DialogueSequenceID: "nope"}})
	assert.Nil(t, m.dialogue)
	assert.Contains(t, m.plainLog(), "Missing dialogue nope")
}

func TestConsoleUI_Commands(t *testing.T) {
	rec := command.NewRecorder()
	m := newTestUI(t, rec)
	rec.Reset()

	model, cmd := m.handleCommand("/bogus")
	m = model.(ConsoleUI)
	assert.Nil(t, cmd)
	assert.Contains(t, m.plainLog(), "Unknown command: /bogus")

	_, cmd = m.handleCommand("/goto mycelium_caves")
	require.NotNil(t, cmd)
	require.NoError(t, cmd().(doneMsg).err)
	loc := command.Filter(rec.All(), command.TypeUpdateLocation)
	require.Len(t, loc, 1)
	assert.Equal(t, "mycelium_caves", loc[0].(command.UpdateLocation).LocationID)

	model, cmd = m.handleCommand("/help")
	assert.Nil(t, cmd)
	assert.Contains(t, model.(ConsoleUI).plainLog(), "/goto <location>")
}

func TestConsoleUI_InputFocus(t *testing.T) {
	m := newTestUI(t, command.NewRecorder())
	model, _ := m.Update(key("tab"))
	m = model.(ConsoleUI)
	assert.True(t, m.focusInput)

	// Letters go to the command line, not the grid.
	model, _ = m.Update(key("q"))
	m = model.(ConsoleUI)
	assert.False(t, m.showQuitModal)
	assert.Equal(t, "q", m.textarea.Value())
}

func TestConsoleUI_QuitModal(t *testing.T) {
	m := NewConsoleUI(context.Background(), nil, nil)
	m.showQuitModal = true

	model, cmd := m.Update(key("n"))
	assert.False(t, model.(ConsoleUI).showQuitModal)
	assert.Nil(t, cmd)

	_, cmd = m.Update(key("y"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
