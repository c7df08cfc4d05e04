package engine

import (
	"slices"

	"github.com/jwebster45206/quest-engine/pkg/command"
	"github.com/jwebster45206/quest-engine/pkg/game"
)

// exec runs one action. Bad content is logged and skipped, never returned.
func (e *Engine) exec(action game.Action) []command.Command {
	e.depth++
	defer func() { e.depth-- }()
	if e.depth > maxActionDepth {
		e.logger.Warn("Action nesting too deep, skipping",
			"action", kindOf(action),
			"depth", e.depth)
		return nil
	}

	switch a := action.(type) {
	case game.PlaySound:
		if a.URL == "" {
			e.logger.Warn("playSound without url")
			return nil
		}
		return []command.Command{command.PlaySound{URL: a.URL}}
	case game.AddToInventory:
		return e.addToInventory(a.EntityID)
	case game.GrantToInventory:
		return e.addToInventory(a.EntityID)
	case game.RemoveFromInventory:
		return e.removeFromInventory(a)
	case game.RemoveFromInventoryByName:
		return e.removeFromInventoryByName(a.ItemName, a.Count)
	case game.SetInteractive:
		return e.setInteractive(a.EntityID, a.Mode)
	case game.SetInteractiveByName:
		return e.setInteractiveByName(a.ItemName, a.Mode)
	case game.SpawnEntity:
		return e.setEntityState(a.EntityID, game.StateWorld)
	case game.ClearEntity:
		return e.setEntityState(a.EntityID, game.StateVoid)
	case game.ActivateQuest:
		return e.activateQuest(a.QuestID)
	case game.AdvanceStep:
		return e.advanceFirst()
	case game.ChangeLocation:
		return e.changeLocation(a.LocationID)
	case game.StartDialogue:
		return e.startDialogue(a.DialogueSequenceID)
	case game.Custom:
		h, ok := e.custom[a.Name]
		if !ok {
			e.logger.Warn("Unknown custom action", "custom_action", a.Name)
			return nil
		}
		return h(e, a)
	case game.UnknownAction:
		e.logger.Warn("Unknown action type", "action", a.Type)
		return nil
	case nil:
		e.logger.Warn("Nil action")
		return nil
	default:
		e.logger.Warn("Unhandled action type", "action", a.Kind())
		return nil
	}
}

func (e *Engine) execAll(actions game.Actions) []command.Command {
	var cmds []command.Command
	for _, a := range actions {
		cmds = append(cmds, e.exec(a)...)
	}
	return cmds
}

func kindOf(a game.Action) game.ActionKind {
	if a == nil {
		return ""
	}
	return a.Kind()
}

func (e *Engine) inventoryCommand() command.Command {
	entries := make([]command.InventoryEntry, 0, len(e.doc.Inventory))
	for _, id := range e.doc.Inventory {
		entry := command.InventoryEntry{ID: id}
		if ent, _ := e.doc.Entity(id); ent != nil {
			entry.Name = ent.Name
			entry.Image = ent.Image
		}
		entries = append(entries, entry)
	}
	return command.UpdateInventory{Inventory: entries}
}

func (e *Engine) stateChanged(id string, state game.EntityState) []command.Command {
	cmds := []command.Command{command.UpdateEntity{ID: id, State: command.StatePtr(state)}}
	return append(cmds, e.transition.EntityChanged(e.doc, id)...)
}

func (e *Engine) addToInventory(id string) []command.Command {
	ent, _ := e.doc.Entity(id)
	if ent == nil {
		e.logger.Warn("Cannot add unknown entity to inventory", "entity_id", id)
		return nil
	}
	if e.doc.InInventory(id) {
		e.logger.Debug("Entity already in inventory", "entity_id", id)
		return nil
	}
	e.doc.Inventory = append(e.doc.Inventory, id)
	ent.State = game.StateInventory
	e.logger.Debug("Added to inventory", "entity_id", id, "name", ent.Name)

	cmds := []command.Command{e.inventoryCommand()}
	return append(cmds, e.stateChanged(id, game.StateInventory)...)
}

func (e *Engine) removeFromInventory(a game.RemoveFromInventory) []command.Command {
	idx := slices.Index(e.doc.Inventory, a.EntityID)
	if idx < 0 {
		e.logger.Debug("Entity not in inventory", "entity_id", a.EntityID)
		return nil
	}
	e.doc.Inventory = slices.Delete(e.doc.Inventory, idx, idx+1)
	cmds := []command.Command{e.inventoryCommand()}

	switch a.State {
	case "":
	case game.StateWorld, game.StateVoid:
		if ent, _ := e.doc.Entity(a.EntityID); ent != nil {
			ent.State = a.State
			cmds = append(cmds, e.stateChanged(a.EntityID, a.State)...)
		}
	default:
		e.logger.Warn("Invalid state for removed entity, leaving state unchanged",
			"entity_id", a.EntityID,
			"state", a.State)
	}
	return cmds
}

// removeFromInventoryByName consumes up to count held entities whose display
// name matches, oldest first. Consumed entities go to the void.
func (e *Engine) removeFromInventoryByName(name string, count int) []command.Command {
	if count <= 0 {
		count = 1
	}
	var removed []string
	for _, id := range e.doc.Inventory {
		if len(removed) == count {
			break
		}
		if e.doc.EntityName(id) == name {
			removed = append(removed, id)
		}
	}
	if len(removed) == 0 {
		e.logger.Debug("No inventory entities with name", "name", name)
		return nil
	}
	if len(removed) < count {
		e.logger.Debug("Fewer inventory entities than requested",
			"name", name,
			"requested", count,
			"removed", len(removed))
	}

	e.doc.Inventory = slices.DeleteFunc(e.doc.Inventory, func(id string) bool {
		return slices.Contains(removed, id)
	})
	cmds := []command.Command{e.inventoryCommand()}
	for _, id := range removed {
		if ent, _ := e.doc.Entity(id); ent != nil {
			ent.State = game.StateVoid
		}
		cmds = append(cmds, e.stateChanged(id, game.StateVoid)...)
	}
	return cmds
}

func validMode(m game.Interactivity) bool {
	return m == game.Grabbable || m == game.Interactive || m == game.NotInteractive
}

func (e *Engine) setInteractive(id string, mode game.Interactivity) []command.Command {
	if !validMode(mode) {
		e.logger.Warn("Invalid interactivity mode", "entity_id", id, "mode", mode)
		return nil
	}
	switch {
	case e.doc.FindItem(id) != nil:
		e.doc.FindItem(id).Interactive = mode
	case e.doc.FindPortal(id) != nil:
		e.doc.FindPortal(id).Interactive = mode
	case e.doc.FindNPC(id) != nil:
		e.logger.Debug("NPCs are always interactive, ignoring", "entity_id", id)
		return nil
	default:
		e.logger.Warn("Cannot set interactivity of unknown entity", "entity_id", id)
		return nil
	}
	return []command.Command{command.UpdateEntity{ID: id, Interactive: command.InteractivityPtr(mode)}}
}

// setInteractiveByName updates every item and portal sharing the display name.
// Locations reference entities by id, so the registries are the only copies.
func (e *Engine) setInteractiveByName(name string, mode game.Interactivity) []command.Command {
	if !validMode(mode) {
		e.logger.Warn("Invalid interactivity mode", "name", name, "mode", mode)
		return nil
	}
	var cmds []command.Command
	for i := range e.doc.Items {
		if e.doc.Items[i].Name == name {
			e.doc.Items[i].Interactive = mode
			cmds = append(cmds, command.UpdateEntity{ID: e.doc.Items[i].ID, Interactive: command.InteractivityPtr(mode)})
		}
	}
	for i := range e.doc.Portals {
		if e.doc.Portals[i].Name == name {
			e.doc.Portals[i].Interactive = mode
			cmds = append(cmds, command.UpdateEntity{ID: e.doc.Portals[i].ID, Interactive: command.InteractivityPtr(mode)})
		}
	}
	if len(cmds) == 0 {
		e.logger.Debug("No items or portals with name", "name", name)
	}
	return cmds
}

// setEntityState spawns or clears an entity. Inventory membership is untouched.
func (e *Engine) setEntityState(id string, state game.EntityState) []command.Command {
	ent, _ := e.doc.Entity(id)
	if ent == nil {
		e.logger.Warn("Cannot change state of unknown entity", "entity_id", id, "state", state)
		return nil
	}
	if e.doc.InInventory(id) {
		e.logger.Warn("Changing state of an entity held in inventory", "entity_id", id, "state", state)
	}
	ent.State = state

	var cmds []command.Command
	if state == game.StateWorld {
		cmds = append(cmds, command.SpawnEntity{ID: id})
	} else {
		cmds = append(cmds, command.ClearEntity{ID: id})
	}
	return append(cmds, e.stateChanged(id, state)...)
}

func (e *Engine) startDialogue(id string) []command.Command {
	seq := e.doc.FindDialogue(id)
	if seq == nil {
		e.logger.Warn("Dialogue sequence not found", "dialogue_id", id)
		return nil
	}
	return []command.Command{command.ShowDialogue{DialogueSequenceID: seq.ID, NPCID: seq.NPCID}}
}
