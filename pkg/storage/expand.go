package storage

import "github.com/jwebster45206/quest-engine/pkg/game"

// Expand prepares a freshly decoded document for the engine:
//   - entities written inline in a location are hoisted into the registries
//     (an entity already registered under the same id wins)
//   - missing states default to world and missing item or portal
//     interactivity to interactive
//   - nil lists and maps are allocated
//
// Expand is idempotent.
func Expand(doc *game.Document) {
	if doc == nil {
		return
	}
	doc.WalkLocations(func(loc *game.Location, _ int) {
		if loc.Embedded.IsEmpty() {
			return
		}
		for _, it := range loc.Embedded.Items {
			if doc.FindItem(it.ID) == nil {
				doc.Items = append(doc.Items, it)
			}
		}
		for _, n := range loc.Embedded.NPCs {
			if doc.FindNPC(n.ID) == nil {
				doc.NPCs = append(doc.NPCs, n)
			}
		}
		for _, p := range loc.Embedded.Portals {
			if doc.FindPortal(p.ID) == nil {
				doc.Portals = append(doc.Portals, p)
			}
		}
		loc.Embedded = game.EmbeddedEntities{}
	})

	for i := range doc.Items {
		normalize(&doc.Items[i].EntityBase, &doc.Items[i].Interactive)
	}
	for i := range doc.NPCs {
		normalize(&doc.NPCs[i].EntityBase, nil)
	}
	for i := range doc.Portals {
		normalize(&doc.Portals[i].EntityBase, &doc.Portals[i].Interactive)
	}

	if doc.Locations == nil {
		doc.Locations = []game.Location{}
	}
	if doc.Quests == nil {
		doc.Quests = []game.Quest{}
	}
	if doc.NPCs == nil {
		doc.NPCs = []game.NPC{}
	}
	if doc.Items == nil {
		doc.Items = []game.Item{}
	}
	if doc.Portals == nil {
		doc.Portals = []game.Portal{}
	}
	if doc.Dialogues == nil {
		doc.Dialogues = []game.DialogueSequence{}
	}
	if doc.ActiveQuests == nil {
		doc.ActiveQuests = []string{}
	}
	if doc.Inventory == nil {
		doc.Inventory = []string{}
	}
	if doc.Counters == nil {
		doc.Counters = map[string]int{}
	}
}

func normalize(ent *game.EntityBase, mode *game.Interactivity) {
	if ent.State == "" {
		ent.State = game.StateWorld
	}
	if mode != nil && *mode == "" {
		*mode = game.Interactive
	}
}
