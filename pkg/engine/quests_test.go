package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/quest-engine/pkg/command"
	"github.com/jwebster45206/quest-engine/pkg/game"
)

func mustInteract(t *testing.T, e *Engine, kind InteractionType, id string) []command.Command {
	t.Helper()
	cmds, err := e.ProcessInteraction(kind, id)
	require.NoError(t, err)
	return cmds
}

func countActive(doc *game.Document, id string) int {
	n := 0
	for _, q := range doc.ActiveQuests {
		if q == id {
			n++
		}
	}
	return n
}

func TestActivateQuestIdempotent(t *testing.T) {
	e := startedEngine(t)
	doc := e.Document()

	first := mustExecute(t, e, game.ActivateQuest{QuestID: "deep_tunes"})
	second := mustExecute(t, e, game.ActivateQuest{QuestID: "deep_tunes"})

	assert.Len(t, command.Filter(first, command.TypeQuestActivated), 1)
	assert.Empty(t, second)
	assert.Equal(t, 1, countActive(doc, "deep_tunes"))
	assert.Equal(t, "find_the_bass_string", doc.FindQuest("deep_tunes").ActiveStepID)
}

func TestActivateQuestNoops(t *testing.T) {
	e := startedEngine(t)
	doc := e.Document()
	doc.Quests = append(doc.Quests, game.Quest{ID: "empty", Title: "Empty", Order: 2})

	assert.Empty(t, mustExecute(t, e, game.ActivateQuest{QuestID: "missing"}))
	assert.Empty(t, mustExecute(t, e, game.ActivateQuest{QuestID: "empty"}))
	assert.False(t, doc.IsQuestActive("empty"))

	for range 3 {
		mustExecute(t, e, game.AdvanceStep{})
	}
	require.True(t, doc.FindQuest("tuning").Completed)
	assert.Empty(t, mustExecute(t, e, game.ActivateQuest{QuestID: "tuning"}))
	assert.False(t, doc.IsQuestActive("tuning"))
}

func TestAdvanceStepTerminal(t *testing.T) {
	e := startedEngine(t)
	doc := e.Document()
	tuning := doc.FindQuest("tuning")

	cmds := mustExecute(t, e, game.AdvanceStep{})
	assert.Equal(t, "gather_crystals", tuning.ActiveStepID)
	assert.Contains(t, cmds, command.Command(command.PlaySound{URL: "sounds/chime.mp3"}))
	assert.Len(t, command.Filter(cmds, command.TypeLog), 1)

	mustExecute(t, e, game.AdvanceStep{})
	assert.Equal(t, "place_seeds", tuning.ActiveStepID)

	cmds = mustExecute(t, e, game.AdvanceStep{})
	assert.True(t, tuning.Completed)
	assert.Empty(t, tuning.ActiveStepID)
	assert.False(t, doc.IsQuestActive("tuning"))
	assert.Equal(t, []command.Command{command.QuestCompleted{QuestID: "tuning", QuestTitle: "Tuning the Grotto"}},
		command.Filter(cmds, command.TypeQuestCompleted))
	for _, s := range tuning.Steps {
		assert.True(t, s.IsCompleted, s.ID)
	}

	assert.Empty(t, mustExecute(t, e, game.AdvanceStep{}))
	assert.True(t, tuning.Completed)

	// The next AdvanceStep picks the remaining active quest, not the finished one.
	mustExecute(t, e, game.ActivateQuest{QuestID: "deep_tunes"})
	mustExecute(t, e, game.AdvanceStep{})
	assert.Equal(t, "visit_caves", doc.FindQuest("deep_tunes").ActiveStepID)
	assert.Empty(t, tuning.ActiveStepID)
}

func TestTalkToObjectiveIsolation(t *testing.T) {
	e := startedEngine(t)
	doc := e.Document()
	tuning := doc.FindQuest("tuning")

	mustInteract(t, e, ClickItem, "crystal_1")
	mustInteract(t, e, ClickItem, "lyre")
	mustInteract(t, e, ClickPortal, "portal_to_cave")
	mustInteract(t, e, ClickPortal, "portal_to_grotto")
	_, err := e.CheckObjectives("")
	require.NoError(t, err)
	require.Equal(t, "grotto", doc.CurrentLocationID)
	assert.Equal(t, "talk_to_echo", tuning.ActiveStepID)

	mustInteract(t, e, ClickNPC, "echo")
	assert.Equal(t, "gather_crystals", tuning.ActiveStepID)
}

func TestCollectByNameObjective(t *testing.T) {
	e := startedEngine(t)
	doc := e.Document()
	tuning := doc.FindQuest("tuning")
	mustInteract(t, e, ClickNPC, "echo")

	for _, id := range []string{"crystal_1", "crystal_2", "crystal_3", "crystal_4", "crystal_5"} {
		mustInteract(t, e, ClickItem, id)
		require.Equal(t, "gather_crystals", tuning.ActiveStepID, "after %s", id)
	}
	mustInteract(t, e, ClickItem, "crystal_6")

	assert.Equal(t, "place_seeds", tuning.ActiveStepID)
	assert.Equal(t, []string{"crystal_6"}, doc.Inventory, "onComplete consumes five crystals")
	assertInventoryAgreement(t, doc)
}

func TestCustomObjective(t *testing.T) {
	e := startedEngine(t)
	doc := e.Document()
	tuning := doc.FindQuest("tuning")
	mustExecute(t, e, game.AdvanceStep{})
	mustExecute(t, e, game.AdvanceStep{})
	require.Equal(t, "place_seeds", tuning.ActiveStepID)

	mustInteract(t, e, ClickItem, "seed_1")
	mustInteract(t, e, ClickItem, "seed_2")
	mustInteract(t, e, ClickItem, "vessel_1")
	assert.Equal(t, "place_seeds", tuning.ActiveStepID)

	// A placed vessel no longer reacts.
	assert.Empty(t, mustInteract(t, e, ClickItem, "vessel_1"))
	assert.Equal(t, 1, doc.Counter(game.CounterSeedsPlaced))

	cmds := mustInteract(t, e, ClickItem, "vessel_2")
	assert.Equal(t, 2, doc.Counter(game.CounterSeedsPlaced))
	assert.True(t, tuning.Completed)
	assert.Len(t, command.Filter(cmds, command.TypeQuestCompleted), 1)
}

func TestGoToLocationAndCollectEntities(t *testing.T) {
	e := startedEngine(t)
	doc := e.Document()
	deep := doc.FindQuest("deep_tunes")
	mustExecute(t, e, game.ActivateQuest{QuestID: "deep_tunes"})
	mustExecute(t, e, game.SpawnEntity{EntityID: "bass_string"})

	mustInteract(t, e, ClickItem, "bass_string")
	assert.Equal(t, "visit_caves", deep.ActiveStepID)

	cmds := mustInteract(t, e, ClickPortal, "portal_to_cave")
	assert.True(t, deep.Completed)
	assert.Len(t, command.Filter(cmds, command.TypeQuestCompleted), 1)
	assert.Equal(t, []string{"tuning"}, doc.ActiveQuests)
}

func TestObjectivesThatNeverComplete(t *testing.T) {
	e := startedEngine(t)
	doc := e.Document()
	tuning := doc.FindQuest("tuning")

	for _, obj := range []game.Objective{
		game.InteractObjective{EntityID: "lyre"},
		game.UnknownObjective{Name: "dance"},
		game.CustomObjective{TargetID: "songs_sung", RequiredCount: 0},
		game.CollectEntities{},
		nil,
	} {
		tuning.Steps[0].Objective = obj
		cmds, err := e.CheckObjectives("echo")
		require.NoError(t, err)
		assert.Empty(t, cmds)
		assert.Equal(t, "talk_to_echo", tuning.ActiveStepID)
	}
}

func TestCompleteDialogue(t *testing.T) {
	e := startedEngine(t)
	doc := e.Document()

	cmds, err := e.CompleteDialogue("echo_tuning", 1)
	require.NoError(t, err)
	assert.Len(t, command.Filter(cmds, command.TypeQuestActivated), 1)
	assert.True(t, doc.IsQuestActive("deep_tunes"))
	assert.Equal(t, "talk_to_echo", doc.FindQuest("tuning").ActiveStepID, "finishing a dialogue is not talking")

	cmds, err = e.CompleteDialogue("echo_tuning", 5)
	require.NoError(t, err)
	assert.Empty(t, cmds)

	cmds, err = e.CompleteDialogue("missing", 0)
	require.NoError(t, err)
	assert.Empty(t, cmds)
}

func TestCheckObjectivesAdvancesOnce(t *testing.T) {
	doc := game.NewDocument()
	doc.Locations = []game.Location{{ID: "hall", Name: "Hall"}}
	doc.DefaultLocationID = "hall"
	doc.Quests = []game.Quest{{
		ID:    "loiter",
		Title: "Loiter",
		Steps: []game.QuestStep{
			{ID: "s1", Objective: game.GoToLocation{LocationID: "hall"}},
			{ID: "s2", Objective: game.GoToLocation{LocationID: "hall"}},
			{ID: "s3", Objective: game.GoToLocation{LocationID: "hall"}},
		},
	}}
	e := New(doc, testLogger())
	_, err := e.Start()
	require.NoError(t, err)
	quest := doc.FindQuest("loiter")
	require.Equal(t, "s1", quest.ActiveStepID)

	// Every step is already satisfied, but one evaluation moves one step.
	_, err = e.CheckObjectives("")
	require.NoError(t, err)
	assert.Equal(t, "s2", quest.ActiveStepID)
	assert.True(t, quest.Steps[0].IsCompleted)
	assert.False(t, quest.Steps[1].IsCompleted)

	_, err = e.CheckObjectives("")
	require.NoError(t, err)
	assert.Equal(t, "s3", quest.ActiveStepID)

	cmds, err := e.CheckObjectives("")
	require.NoError(t, err)
	assert.True(t, quest.Completed)
	assert.Len(t, command.Filter(cmds, command.TypeQuestCompleted), 1)
}
