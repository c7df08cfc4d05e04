package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/quest-engine/pkg/command"
	"github.com/jwebster45206/quest-engine/pkg/game"
)

func startedSceneEngine(t *testing.T) (*Engine, []command.Command) {
	t.Helper()
	e := newTestEngine(t).WithTransition(SceneTransition{})
	cmds, err := e.Start()
	require.NoError(t, err)
	return e, cmds
}

func visibility(cmds []command.Command, visible bool) []string {
	var ids []string
	for _, c := range command.Filter(cmds, command.TypeSetEntityVisibility) {
		v := c.(command.SetEntityVisibility)
		if v.Visible == visible {
			ids = append(ids, v.EntityID)
		}
	}
	return ids
}

func TestSceneStart(t *testing.T) {
	e, cmds := startedSceneEngine(t)
	doc := e.Document()

	assert.Empty(t, command.Filter(cmds, command.TypeUpdateLocation))

	// Everything is hidden first.
	all := doc.AllEntityIDs()
	require.GreaterOrEqual(t, len(cmds), 2*len(all))
	for i, id := range all {
		assert.Equal(t, command.SetEntityVisibility{EntityID: id, Visible: false}, cmds[2*i])
		assert.Equal(t, command.SetEntityCollider{EntityID: id, ColliderLayer: command.ColliderNone}, cmds[2*i+1])
	}

	shown := visibility(cmds, true)
	assert.Len(t, shown, 13)
	assert.NotContains(t, shown, "bass_string")
	assert.Contains(t, shown, "echo")

	assert.Contains(t, cmds, command.Command(command.AddGltfComponent{EntityID: "crystal_1", GltfSrc: "models/crystal.glb"}))
	assert.Equal(t, []command.Command{command.RemoveGltfComponent{EntityID: "bass_string"}},
		command.Filter(cmds, command.TypeRemoveGltfComponent))
	assert.Len(t, command.Filter(cmds, command.TypeQuestActivated), 1)
}

func TestSceneEntityChanged(t *testing.T) {
	e, _ := startedSceneEngine(t)

	cmds := mustInteract(t, e, ClickItem, "crystal_1")
	assert.Equal(t, []string{"crystal_1"}, visibility(cmds, false))
	assert.Contains(t, cmds, command.Command(command.RemoveGltfComponent{EntityID: "crystal_1"}))

	cmds = mustInteract(t, e, ClickItem, "lyre")
	// glow_moss spawns in another location, so nothing is shown.
	assert.Empty(t, visibility(cmds, true))

	cmds = mustExecute(t, e, game.SpawnEntity{EntityID: "bass_string"})
	assert.Equal(t, []string{"bass_string"}, visibility(cmds, true))
	assert.Contains(t, cmds, command.Command(command.AddGltfComponent{EntityID: "bass_string", GltfSrc: "models/string.glb"}))
}

func TestSceneChangeLocation(t *testing.T) {
	e, _ := startedSceneEngine(t)
	mustInteract(t, e, ClickItem, "lyre")

	cmds := mustInteract(t, e, ClickPortal, "portal_to_cave")

	hidden := visibility(cmds, false)
	assert.Len(t, hidden, 14, "every grotto entity is hidden")
	assert.Equal(t, []string{"glow_moss", "sporeling", "portal_to_grotto"}, visibility(cmds, true))
	assert.Empty(t, command.Filter(cmds, command.TypeRemoveGltfComponent))
}

func TestCombinedTransition(t *testing.T) {
	e := newTestEngine(t).WithTransition(CombinedTransition{GridTransition{}, SceneTransition{}})
	cmds, err := e.Start()
	require.NoError(t, err)

	require.Len(t, command.Filter(cmds, command.TypeUpdateLocation), 1)
	assert.Equal(t, command.TypeUpdateLocation, cmds[0].Type(), "grid commands come first")
	assert.Len(t, visibility(cmds, true), 13)

	cmds = mustInteract(t, e, ClickItem, "crystal_1")
	assert.Equal(t, []string{"crystal_1"}, visibility(cmds, false))
}
