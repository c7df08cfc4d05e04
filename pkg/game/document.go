package game

import (
	"encoding/json"
	"fmt"
	"slices"
)

// CounterSeedsPlaced counts pomegranate seeds placed into vessels.
const CounterSeedsPlaced = "seeds_placed"

// Sounds are document-wide audio cues.
type Sounds struct {
	Grab string `json:"grab,omitempty"`
}

// Document is the whole game: authored definitions plus the runtime state of
// one session. It is owned by a single engine and mutated in place.
type Document struct {
	Locations         []Location         `json:"locations"`
	Quests            []Quest            `json:"quests"`
	NPCs              []NPC              `json:"npcs"`
	Items             []Item             `json:"items"`
	Portals           []Portal           `json:"portals"`
	Dialogues         []DialogueSequence `json:"dialogues"`
	DefaultLocationID string             `json:"defaultLocationId,omitempty"`
	Sounds            Sounds             `json:"sounds,omitzero"`

	// Session runtime
	CurrentLocationID string         `json:"currentLocationId,omitempty"`
	ActiveQuests      []string       `json:"activeQuests"`
	Inventory         []string       `json:"inventory"` // acquisition order
	Counters          map[string]int `json:"counters,omitempty"`
	Authored          *Authored      `json:"authored,omitempty"`
}

// Authored records the entity placement a game starts with, so a reset can
// undo pickups, spawns and interactivity changes made during play. It travels
// with session snapshots.
type Authored struct {
	Entities  map[string]AuthoredEntity `json:"entities"`
	Inventory []string                  `json:"inventory"`
}

type AuthoredEntity struct {
	State       EntityState   `json:"state"`
	Interactive Interactivity `json:"interactive,omitempty"`
}

// NewDocument returns an empty document with every list allocated.
func NewDocument() *Document {
	return &Document{
		Locations:    []Location{},
		Quests:       []Quest{},
		NPCs:         []NPC{},
		Items:        []Item{},
		Portals:      []Portal{},
		Dialogues:    []DialogueSequence{},
		ActiveQuests: []string{},
		Inventory:    []string{},
		Counters:     map[string]int{},
	}
}

// RecordAuthored captures the current entity states, interactivity and
// inventory as the starting point ResetRuntime restores. A document that
// already carries a record keeps it.
func (d *Document) RecordAuthored() {
	if d.Authored != nil {
		return
	}
	a := &Authored{
		Entities:  make(map[string]AuthoredEntity, len(d.Items)+len(d.NPCs)+len(d.Portals)),
		Inventory: slices.Clone(d.Inventory),
	}
	if a.Inventory == nil {
		a.Inventory = []string{}
	}
	for _, it := range d.Items {
		a.Entities[it.ID] = AuthoredEntity{State: it.State, Interactive: it.Interactive}
	}
	for _, n := range d.NPCs {
		a.Entities[n.ID] = AuthoredEntity{State: n.State}
	}
	for _, p := range d.Portals {
		a.Entities[p.ID] = AuthoredEntity{State: p.State, Interactive: p.Interactive}
	}
	d.Authored = a
}

// ResetRuntime zeroes the session overlay: location, active quests, counters
// and quest progress. Entity states, interactivity and the inventory go back
// to the authored record. Without a record, held entities return to the world
// and the inventory is emptied, so state and inventory still agree.
func (d *Document) ResetRuntime() {
	d.CurrentLocationID = ""
	d.ActiveQuests = []string{}
	d.Inventory = []string{}
	d.Counters = map[string]int{}
	for i := range d.Quests {
		q := &d.Quests[i]
		q.ActiveStepID = ""
		q.Completed = false
		for j := range q.Steps {
			q.Steps[j].IsCompleted = false
		}
	}

	if d.Authored != nil {
		d.Inventory = slices.Clone(d.Authored.Inventory)
		if d.Inventory == nil {
			d.Inventory = []string{}
		}
	}
	restore := func(e *EntityBase, mode *Interactivity) {
		if d.Authored != nil {
			if a, ok := d.Authored.Entities[e.ID]; ok {
				e.State = a.State
				if mode != nil && a.Interactive != "" {
					*mode = a.Interactive
				}
				return
			}
		}
		if e.State == StateInventory && !d.InInventory(e.ID) {
			e.State = StateWorld
		}
	}
	for i := range d.Items {
		restore(&d.Items[i].EntityBase, &d.Items[i].Interactive)
	}
	for i := range d.NPCs {
		restore(&d.NPCs[i].EntityBase, nil)
	}
	for i := range d.Portals {
		restore(&d.Portals[i].EntityBase, &d.Portals[i].Interactive)
	}
}

// Clone returns a deep copy made through the JSON encoding.
func (d *Document) Clone() (*Document, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	var out Document
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	if out.Counters == nil {
		out.Counters = map[string]int{}
	}
	return &out, nil
}

// Counter returns a runtime counter value; unset counters are 0.
func (d *Document) Counter(name string) int {
	return d.Counters[name]
}

// IncrementCounter adds one to a runtime counter and returns the new value.
func (d *Document) IncrementCounter(name string) int {
	if d.Counters == nil {
		d.Counters = map[string]int{}
	}
	d.Counters[name]++
	return d.Counters[name]
}

// FindLocation searches top-level and nested locations.
func (d *Document) FindLocation(id string) *Location {
	if id == "" {
		return nil
	}
	return findLocation(d.Locations, id)
}

func findLocation(locs []Location, id string) *Location {
	for i := range locs {
		if locs[i].ID == id {
			return &locs[i]
		}
		if found := findLocation(locs[i].Locations, id); found != nil {
			return found
		}
	}
	return nil
}

// CurrentLocation returns the location the player is in, or nil.
func (d *Document) CurrentLocation() *Location {
	return d.FindLocation(d.CurrentLocationID)
}

// WalkLocations calls fn for every location, parents before children.
func (d *Document) WalkLocations(fn func(loc *Location, depth int)) {
	var walk func(locs []Location, depth int)
	walk = func(locs []Location, depth int) {
		for i := range locs {
			fn(&locs[i], depth)
			walk(locs[i].Locations, depth+1)
		}
	}
	walk(d.Locations, 0)
}

func (d *Document) FindQuest(id string) *Quest {
	for i := range d.Quests {
		if d.Quests[i].ID == id {
			return &d.Quests[i]
		}
	}
	return nil
}

func (d *Document) FindItem(id string) *Item {
	for i := range d.Items {
		if d.Items[i].ID == id {
			return &d.Items[i]
		}
	}
	return nil
}

func (d *Document) FindNPC(id string) *NPC {
	for i := range d.NPCs {
		if d.NPCs[i].ID == id {
			return &d.NPCs[i]
		}
	}
	return nil
}

func (d *Document) FindPortal(id string) *Portal {
	for i := range d.Portals {
		if d.Portals[i].ID == id {
			return &d.Portals[i]
		}
	}
	return nil
}

func (d *Document) FindDialogue(id string) *DialogueSequence {
	for i := range d.Dialogues {
		if d.Dialogues[i].ID == id {
			return &d.Dialogues[i]
		}
	}
	return nil
}

// Entity finds an entity of any kind by id. Items win over NPCs and portals
// when ids collide across registries.
func (d *Document) Entity(id string) (*EntityBase, EntityKind) {
	if it := d.FindItem(id); it != nil {
		return &it.EntityBase, KindItem
	}
	if n := d.FindNPC(id); n != nil {
		return &n.EntityBase, KindNPC
	}
	if p := d.FindPortal(id); p != nil {
		return &p.EntityBase, KindPortal
	}
	return nil, ""
}

// EntityName resolves an id to its display name, or "" when unknown.
func (d *Document) EntityName(id string) string {
	if e, _ := d.Entity(id); e != nil {
		return e.Name
	}
	return ""
}

// Interactivity returns the mode of an item or portal. NPCs report Interactive.
func (d *Document) Interactivity(id string) Interactivity {
	if it := d.FindItem(id); it != nil {
		return it.Interactive
	}
	if p := d.FindPortal(id); p != nil {
		return p.Interactive
	}
	if d.FindNPC(id) != nil {
		return Interactive
	}
	return ""
}

// AllEntityIDs lists every registered entity: items, then NPCs, then portals.
func (d *Document) AllEntityIDs() []string {
	ids := make([]string, 0, len(d.Items)+len(d.NPCs)+len(d.Portals))
	for i := range d.Items {
		ids = append(ids, d.Items[i].ID)
	}
	for i := range d.NPCs {
		ids = append(ids, d.NPCs[i].ID)
	}
	for i := range d.Portals {
		ids = append(ids, d.Portals[i].ID)
	}
	return ids
}

func (d *Document) InInventory(id string) bool {
	return slices.Contains(d.Inventory, id)
}

// CountInventoryByName counts held entities whose display name matches.
func (d *Document) CountInventoryByName(name string) int {
	n := 0
	for _, id := range d.Inventory {
		if d.EntityName(id) == name {
			n++
		}
	}
	return n
}

func (d *Document) IsQuestActive(id string) bool {
	return slices.Contains(d.ActiveQuests, id)
}
