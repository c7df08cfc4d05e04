package engine

import (
	"fmt"
	"slices"

	"github.com/jwebster45206/quest-engine/pkg/command"
	"github.com/jwebster45206/quest-engine/pkg/game"
)

// InteractionType is what the player did.
type InteractionType string

const (
	ClickItem   InteractionType = "clickItem"
	ClickNPC    InteractionType = "clickNPC"
	ClickPortal InteractionType = "clickPortal"
)

// ProcessInteraction handles a click on an entity in the current location.
// Clicks on entities that are elsewhere or not in the world produce no
// commands. Items and portals in notInteractive mode are also silent: their
// onInteract actions do not run until a SetInteractive action enables them.
func (e *Engine) ProcessInteraction(kind InteractionType, id string) ([]command.Command, error) {
	if e.doc == nil {
		return nil, ErrNoDocument
	}
	switch kind {
	case ClickItem:
		return e.clickItem(id), nil
	case ClickNPC:
		return e.clickNPC(id), nil
	case ClickPortal:
		return e.clickPortal(id), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownInteraction, kind)
	}
}

// present reports whether the current location lists id under refs.
func (e *Engine) present(refs func(*game.Location) []string, id string) bool {
	loc := e.doc.CurrentLocation()
	if loc == nil {
		e.logger.Debug("Interaction without a current location", "entity_id", id)
		return false
	}
	if !slices.Contains(refs(loc), id) {
		e.logger.Debug("Entity not in current location",
			"entity_id", id,
			"location", loc.ID)
		return false
	}
	return true
}

func (e *Engine) clickItem(id string) []command.Command {
	if !e.present(func(l *game.Location) []string { return l.Items }, id) {
		return nil
	}
	item := e.doc.FindItem(id)
	if item == nil {
		e.logger.Warn("Location references unknown item", "item_id", id)
		return nil
	}
	if item.State != game.StateWorld || item.Interactive == game.NotInteractive {
		return nil
	}

	var cmds []command.Command
	if item.InteractionSound != "" {
		cmds = append(cmds, command.PlaySound{URL: item.InteractionSound})
	}
	cmds = append(cmds, e.execAll(item.OnInteract)...)
	if item.Interactive == game.Grabbable && !e.doc.InInventory(id) {
		cmds = append(cmds, e.exec(game.AddToInventory{EntityID: id})...)
		cmds = append(cmds, command.PlaySound{URL: e.grabSound()})
	}
	return append(cmds, e.checkObjectives("")...)
}

func (e *Engine) clickNPC(id string) []command.Command {
	if !e.present(func(l *game.Location) []string { return l.NPCs }, id) {
		return nil
	}
	npc := e.doc.FindNPC(id)
	if npc == nil {
		e.logger.Warn("Location references unknown npc", "npc_id", id)
		return nil
	}
	if npc.State != game.StateWorld {
		return nil
	}

	var cmds []command.Command
	if seq := e.ResolveDialogue(id); seq != nil {
		cmds = append(cmds, e.exec(game.StartDialogue{DialogueSequenceID: seq.ID})...)
	}
	cmds = append(cmds, e.execAll(npc.OnInteract)...)
	return append(cmds, e.checkObjectives(id)...)
}

func (e *Engine) clickPortal(id string) []command.Command {
	if !e.present(func(l *game.Location) []string { return l.Portals }, id) {
		return nil
	}
	portal := e.doc.FindPortal(id)
	if portal == nil {
		e.logger.Warn("Location references unknown portal", "portal_id", id)
		return nil
	}
	if portal.State != game.StateWorld || portal.Interactive == game.NotInteractive {
		return nil
	}
	cmds := e.execAll(portal.OnInteract)
	return append(cmds, e.checkObjectives("")...)
}
