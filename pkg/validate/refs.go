package validate

import (
	"fmt"
	"slices"

	"github.com/jwebster45206/quest-engine/pkg/engine"
	"github.com/jwebster45206/quest-engine/pkg/game"
)

// Custom action names and counters the engine understands out of the box.
var (
	knownCustomActions = []string{engine.CustomPlaceSeed}
	knownCounters      = []string{game.CounterSeedsPlaced}
)

type checker struct {
	doc    *game.Document
	issues []Issue

	locations map[string]bool
	steps     map[string]string // step id -> quest id
	names     map[string]bool   // entity display names
}

// Document runs the referential checks on an expanded document.
func Document(doc *game.Document) []Issue {
	if doc == nil {
		return []Issue{{Severity: SeverityError, Message: "no document"}}
	}
	c := &checker{
		doc:       doc,
		locations: map[string]bool{},
		steps:     map[string]string{},
		names:     map[string]bool{},
	}
	c.checkIDs()
	c.checkLocations()
	c.checkEntities()
	c.checkQuests()
	c.checkDialogues()
	c.checkRuntime()
	return c.issues
}

func (c *checker) errorf(path, format string, args ...any) {
	c.issues = append(c.issues, Issue{Severity: SeverityError, Path: path, Message: fmt.Sprintf(format, args...)})
}

func (c *checker) warnf(path, format string, args ...any) {
	c.issues = append(c.issues, Issue{Severity: SeverityWarning, Path: path, Message: fmt.Sprintf(format, args...)})
}

// checkIDs reports duplicates. Items, NPCs and portals share one namespace.
func (c *checker) checkIDs() {
	entities := map[string]string{}
	add := func(path, id string) {
		if id == "" {
			c.errorf(path, "missing id")
			return
		}
		if prev, ok := entities[id]; ok {
			c.errorf(path, "duplicate entity id %q (also %s)", id, prev)
			return
		}
		entities[id] = path
	}
	for i, it := range c.doc.Items {
		add(fmt.Sprintf("items[%d]", i), it.ID)
		c.names[it.Name] = true
	}
	for i, n := range c.doc.NPCs {
		add(fmt.Sprintf("npcs[%d]", i), n.ID)
		c.names[n.Name] = true
	}
	for i, p := range c.doc.Portals {
		add(fmt.Sprintf("portals[%d]", i), p.ID)
		c.names[p.Name] = true
	}

	var walk func(prefix string, locs []game.Location)
	walk = func(prefix string, locs []game.Location) {
		for i := range locs {
			path := fmt.Sprintf("%slocations[%d]", prefix, i)
			id := locs[i].ID
			switch {
			case id == "":
				c.errorf(path, "missing id")
			case c.locations[id]:
				c.errorf(path, "duplicate location id %q", id)
			default:
				c.locations[id] = true
			}
			walk(path+".", locs[i].Locations)
		}
	}
	walk("", c.doc.Locations)

	quests := map[string]bool{}
	for i, q := range c.doc.Quests {
		path := fmt.Sprintf("quests[%d]", i)
		if quests[q.ID] {
			c.errorf(path, "duplicate quest id %q", q.ID)
		}
		quests[q.ID] = true
		for j, s := range q.Steps {
			spath := fmt.Sprintf("%s.steps[%d]", path, j)
			if other, ok := c.steps[s.ID]; ok {
				if other == q.ID {
					c.errorf(spath, "duplicate step id %q", s.ID)
				} else {
					c.warnf(spath, "step id %q is also used by quest %q; dialogue tags are ambiguous", s.ID, other)
				}
				continue
			}
			c.steps[s.ID] = q.ID
		}
	}

	dialogues := map[string]bool{}
	for i, d := range c.doc.Dialogues {
		if dialogues[d.ID] {
			c.errorf(fmt.Sprintf("dialogues[%d]", i), "duplicate dialogue id %q", d.ID)
		}
		dialogues[d.ID] = true
	}
}

func (c *checker) checkLocations() {
	if len(c.doc.Locations) == 0 {
		c.errorf("locations", "document has no locations")
	}
	if id := c.doc.DefaultLocationID; id != "" && c.doc.FindLocation(id) == nil {
		c.errorf("defaultLocationId", "unknown location %q", id)
	}

	placed := map[string]string{}
	c.doc.WalkLocations(func(loc *game.Location, _ int) {
		path := "location " + loc.ID
		check := func(field string, ids []string, kind game.EntityKind) {
			for _, id := range ids {
				ent, got := c.doc.Entity(id)
				if ent == nil {
					c.errorf(path+"."+field, "unknown entity %q", id)
					continue
				}
				if got != kind {
					c.errorf(path+"."+field, "%q is a %s, not a %s", id, got, kind)
				}
				if prev, ok := placed[id]; ok && prev != loc.ID {
					c.warnf(path+"."+field, "entity %q is also placed in %q", id, prev)
					continue
				}
				placed[id] = loc.ID
			}
		}
		check("items", loc.Items, game.KindItem)
		check("npcs", loc.NPCs, game.KindNPC)
		check("portals", loc.Portals, game.KindPortal)
	})
}

func validState(s game.EntityState) bool {
	return s == game.StateWorld || s == game.StateInventory || s == game.StateVoid
}

func validMode(m game.Interactivity) bool {
	return m == game.Grabbable || m == game.Interactive || m == game.NotInteractive
}

func (c *checker) checkEntities() {
	for i, it := range c.doc.Items {
		path := fmt.Sprintf("items[%d]", i)
		c.checkEntity(path, it.EntityBase)
		if !validMode(it.Interactive) {
			c.errorf(path+".interactive", "invalid mode %q", it.Interactive)
		}
	}
	for i, n := range c.doc.NPCs {
		c.checkEntity(fmt.Sprintf("npcs[%d]", i), n.EntityBase)
	}
	for i, p := range c.doc.Portals {
		path := fmt.Sprintf("portals[%d]", i)
		c.checkEntity(path, p.EntityBase)
		if !validMode(p.Interactive) {
			c.errorf(path+".interactive", "invalid mode %q", p.Interactive)
		}
	}
}

func (c *checker) checkEntity(path string, e game.EntityBase) {
	if !validState(e.State) {
		c.errorf(path+".state", "invalid state %q", e.State)
	}
	c.checkActions(path+".onInteract", e.OnInteract)
}

func (c *checker) checkQuests() {
	hasStarter := false
	for i := range c.doc.Quests {
		q := &c.doc.Quests[i]
		path := fmt.Sprintf("quests[%d]", i)
		if q.Order == 0 {
			hasStarter = true
		}
		if len(q.Steps) == 0 {
			c.warnf(path, "quest %q has no steps and can never activate", q.ID)
		}
		for j := range q.Steps {
			s := &q.Steps[j]
			spath := fmt.Sprintf("%s.steps[%d]", path, j)
			c.checkObjective(spath, s.Objective)
			c.checkActions(spath+".onStart", s.OnStart)
			c.checkActions(spath+".onComplete", s.OnComplete)
		}
	}
	if len(c.doc.Quests) > 0 && !hasStarter {
		c.warnf("quests", "no quest has order 0; none start with the session")
	}
}

func (c *checker) checkObjective(path string, obj game.Objective) {
	path += ".objective"
	switch o := obj.(type) {
	case nil:
		c.warnf(path, "step has no objective and only completes through advanceStep")
	case game.GoToLocation:
		if c.doc.FindLocation(o.LocationID) == nil {
			c.errorf(path, "unknown location %q", o.LocationID)
		}
	case game.TalkTo:
		if c.doc.FindNPC(o.NPCID) == nil {
			c.errorf(path, "unknown npc %q", o.NPCID)
		}
	case game.CollectEntities:
		if len(o.EntityIDs) == 0 {
			c.warnf(path, "empty entity list never completes")
		}
		for _, id := range o.EntityIDs {
			if ent, _ := c.doc.Entity(id); ent == nil {
				c.errorf(path, "unknown entity %q", id)
			}
		}
	case game.CollectByName:
		if !c.names[o.ItemName] {
			c.errorf(path, "no entity is named %q", o.ItemName)
		}
	case game.CustomObjective:
		if !slices.Contains(knownCounters, o.TargetID) {
			c.warnf(path, "unknown counter %q never completes", o.TargetID)
		}
	case game.InteractObjective:
		c.warnf(path, "interact objectives never complete")
	case game.UnknownObjective:
		c.warnf(path, "unknown objective type %q never completes", o.Name)
	}
}

func (c *checker) checkActions(path string, actions game.Actions) {
	for i, act := range actions {
		apath := fmt.Sprintf("%s[%d]", path, i)
		switch a := act.(type) {
		case game.PlaySound:
			if a.URL == "" {
				c.warnf(apath, "playSound without url")
			}
		case game.AddToInventory:
			c.entityRef(apath, a.EntityID)
		case game.GrantToInventory:
			c.entityRef(apath, a.EntityID)
		case game.RemoveFromInventory:
			c.entityRef(apath, a.EntityID)
			if a.State != "" && a.State != game.StateWorld && a.State != game.StateVoid {
				c.errorf(apath, "removeFromInventory state must be world or void, got %q", a.State)
			}
		case game.RemoveFromInventoryByName:
			if !c.names[a.ItemName] {
				c.errorf(apath, "no entity is named %q", a.ItemName)
			}
		case game.SetInteractive:
			c.entityRef(apath, a.EntityID)
			if !validMode(a.Mode) {
				c.errorf(apath, "invalid mode %q", a.Mode)
			}
		case game.SetInteractiveByName:
			if !c.names[a.ItemName] {
				c.errorf(apath, "no entity is named %q", a.ItemName)
			}
			if !validMode(a.Mode) {
				c.errorf(apath, "invalid mode %q", a.Mode)
			}
		case game.SpawnEntity:
			c.entityRef(apath, a.EntityID)
		case game.ClearEntity:
			c.entityRef(apath, a.EntityID)
		case game.ActivateQuest:
			if c.doc.FindQuest(a.QuestID) == nil {
				c.errorf(apath, "unknown quest %q", a.QuestID)
			}
		case game.AdvanceStep:
		case game.ChangeLocation:
			if c.doc.FindLocation(a.LocationID) == nil {
				c.errorf(apath, "unknown location %q", a.LocationID)
			}
		case game.StartDialogue:
			if c.doc.FindDialogue(a.DialogueSequenceID) == nil {
				c.errorf(apath, "unknown dialogue %q", a.DialogueSequenceID)
			}
		case game.Custom:
			if !slices.Contains(knownCustomActions, a.Name) {
				c.warnf(apath, "custom action %q needs an engine handler", a.Name)
				continue
			}
			if a.Name == engine.CustomPlaceSeed {
				c.entityRef(apath, a.Param("vesselId"))
			}
		case game.UnknownAction:
			c.warnf(apath, "unknown action type %q is skipped", a.Type)
		}
	}
}

func (c *checker) entityRef(path, id string) {
	if id == "" {
		c.errorf(path, "missing entity id")
		return
	}
	if ent, _ := c.doc.Entity(id); ent == nil {
		c.errorf(path, "unknown entity %q", id)
	}
}

func (c *checker) checkDialogues() {
	for i := range c.doc.Dialogues {
		d := &c.doc.Dialogues[i]
		path := fmt.Sprintf("dialogues[%d]", i)
		if d.NPCID != "" && c.doc.FindNPC(d.NPCID) == nil {
			c.errorf(path+".npcId", "unknown npc %q", d.NPCID)
		}
		if d.QuestStepID != "" {
			if _, ok := c.steps[d.QuestStepID]; !ok {
				c.errorf(path+".questStepId", "unknown quest step %q", d.QuestStepID)
			}
		}
		if len(d.Dialogs) == 0 {
			c.warnf(path, "dialogue %q has no lines", d.ID)
		}
		for j := range d.Dialogs {
			c.checkActions(fmt.Sprintf("%s.dialogs[%d].onNext", path, j), d.Dialogs[j].OnNext)
		}
	}
}

// checkRuntime looks at the session overlay of a saved game.
func (c *checker) checkRuntime() {
	if id := c.doc.CurrentLocationID; id != "" && c.doc.FindLocation(id) == nil {
		c.errorf("currentLocationId", "unknown location %q", id)
	}

	for i := range c.doc.Quests {
		q := &c.doc.Quests[i]
		path := fmt.Sprintf("quests[%d]", i)
		if q.ActiveStepID != "" && q.StepIndex(q.ActiveStepID) < 0 {
			c.errorf(path+".activeStepId", "step %q is not part of quest %q", q.ActiveStepID, q.ID)
		}
		if q.Completed && q.ActiveStepID != "" {
			c.errorf(path+".activeStepId", "completed quest %q still has an active step", q.ID)
		}
	}

	for i, id := range c.doc.ActiveQuests {
		path := fmt.Sprintf("activeQuests[%d]", i)
		q := c.doc.FindQuest(id)
		switch {
		case q == nil:
			c.errorf(path, "unknown quest %q", id)
		case q.Completed:
			c.errorf(path, "quest %q is completed but still active", id)
		case q.ActiveStepID == "":
			c.errorf(path, "active quest %q has no active step", id)
		}
	}

	seen := map[string]bool{}
	for i, id := range c.doc.Inventory {
		path := fmt.Sprintf("inventory[%d]", i)
		if seen[id] {
			c.errorf(path, "%q is held twice", id)
			continue
		}
		seen[id] = true
		ent, _ := c.doc.Entity(id)
		if ent == nil {
			c.errorf(path, "unknown entity %q", id)
			continue
		}
		if ent.State != game.StateInventory {
			c.errorf(path, "%q is held but its state is %q", id, ent.State)
		}
	}
	for _, id := range c.doc.AllEntityIDs() {
		if ent, _ := c.doc.Entity(id); ent != nil && ent.State == game.StateInventory && !seen[id] {
			c.errorf("inventory", "%q has state inventory but is not held", id)
		}
	}
}
