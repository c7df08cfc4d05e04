package engine

import (
	"github.com/jwebster45206/quest-engine/pkg/command"
	"github.com/jwebster45206/quest-engine/pkg/game"
)

// Transition turns location changes and entity state changes into commands for
// a particular kind of renderer.
type Transition interface {
	// Enter is called after the current location changed from prev (nil at
	// session start) to next.
	Enter(doc *game.Document, prev, next *game.Location) []command.Command
	// EntityChanged is called after an entity's state changed.
	EntityChanged(doc *game.Document, id string) []command.Command
}

func (e *Engine) changeLocation(id string) []command.Command {
	next := e.doc.FindLocation(id)
	if next == nil {
		e.logger.Warn("Location not found", "location", id)
		return nil
	}
	prev := e.doc.CurrentLocation()
	e.doc.CurrentLocationID = next.ID
	e.logger.Info("Location changed", "location", next.ID)
	return e.transition.Enter(e.doc, prev, next)
}

// GridTransition redraws the whole location in a single UpdateLocation command.
type GridTransition struct{}

func (GridTransition) Enter(doc *game.Document, _, next *game.Location) []command.Command {
	return []command.Command{command.UpdateLocation{
		LocationID:      next.ID,
		LocationName:    next.Name,
		BackgroundImage: next.BackgroundImage,
		BackgroundMusic: next.BackgroundMusic,
		Entities:        EntityViews(doc, next),
	}}
}

func (GridTransition) EntityChanged(*game.Document, string) []command.Command {
	return nil
}

// EntityViews snapshots the entities a location references. Unknown ids are skipped.
func EntityViews(doc *game.Document, loc *game.Location) []command.EntityView {
	ids := loc.EntityIDs()
	views := make([]command.EntityView, 0, len(ids))
	for _, id := range ids {
		ent, kind := doc.Entity(id)
		if ent == nil {
			continue
		}
		views = append(views, command.EntityView{
			ID:          id,
			Kind:        kind,
			Name:        ent.Name,
			State:       ent.State,
			Interactive: doc.Interactivity(id),
			Image:       ent.Image,
		})
	}
	return views
}

// SceneTransition drives a 3D scene where every entity is a persistent node.
// Entering a location hides what was shown before, shows the new location's
// world entities and hides its void ones again.
type SceneTransition struct{}

func (SceneTransition) Enter(doc *game.Document, prev, next *game.Location) []command.Command {
	var cmds []command.Command

	hidden := doc.AllEntityIDs()
	if prev != nil {
		hidden = prev.EntityIDs()
	}
	for _, id := range hidden {
		cmds = append(cmds, hide(id)...)
	}

	for _, id := range next.EntityIDs() {
		ent, _ := doc.Entity(id)
		if ent == nil {
			continue
		}
		switch ent.State {
		case game.StateWorld:
			cmds = append(cmds, show(ent)...)
		case game.StateVoid:
			cmds = append(cmds, hide(id)...)
			cmds = append(cmds, command.RemoveGltfComponent{EntityID: id})
		}
	}
	return cmds
}

// EntityChanged shows or hides an entity of the current location to match its state.
func (SceneTransition) EntityChanged(doc *game.Document, id string) []command.Command {
	loc := doc.CurrentLocation()
	if loc == nil || !loc.Contains(id) {
		return nil
	}
	ent, _ := doc.Entity(id)
	if ent == nil {
		return nil
	}
	if ent.State == game.StateWorld {
		return show(ent)
	}
	return append(hide(id), command.RemoveGltfComponent{EntityID: id})
}

func hide(id string) []command.Command {
	return []command.Command{
		command.SetEntityVisibility{EntityID: id, Visible: false},
		command.SetEntityCollider{EntityID: id, ColliderLayer: command.ColliderNone},
	}
}

func show(ent *game.EntityBase) []command.Command {
	return []command.Command{
		command.SetEntityVisibility{EntityID: ent.ID, Visible: true},
		command.AddGltfComponent{EntityID: ent.ID, GltfSrc: ent.Model},
		command.SetEntityCollider{EntityID: ent.ID, ColliderLayer: command.ColliderInteractive},
	}
}

// CombinedTransition emits the commands of each transition in order, so one
// batch can drive a grid view and a scene at the same time.
type CombinedTransition []Transition

func (c CombinedTransition) Enter(doc *game.Document, prev, next *game.Location) []command.Command {
	var cmds []command.Command
	for _, t := range c {
		cmds = append(cmds, t.Enter(doc, prev, next)...)
	}
	return cmds
}

func (c CombinedTransition) EntityChanged(doc *game.Document, id string) []command.Command {
	var cmds []command.Command
	for _, t := range c {
		cmds = append(cmds, t.EntityChanged(doc, id)...)
	}
	return cmds
}
