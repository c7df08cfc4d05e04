package game

import "encoding/json"

// EntityState is where an entity currently lives.
type EntityState string

const (
	StateWorld     EntityState = "world"     // placed in its location and visible
	StateInventory EntityState = "inventory" // held by the player
	StateVoid      EntityState = "void"      // not spawned yet, or consumed
)

// Interactivity controls how the player may interact with an item or portal.
type Interactivity string

const (
	Grabbable      Interactivity = "grabbable"
	Interactive    Interactivity = "interactive"
	NotInteractive Interactivity = "notInteractive"
)

// UnmarshalJSON accepts the legacy "touchable" spelling as Interactive.
func (i *Interactivity) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "touchable" {
		s = string(Interactive)
	}
	*i = Interactivity(s)
	return nil
}

// EntityKind identifies which registry an entity belongs to.
type EntityKind string

const (
	KindItem   EntityKind = "item"
	KindNPC    EntityKind = "npc"
	KindPortal EntityKind = "portal"
)

// EntityBase holds the fields shared by items, NPCs and portals.
// Name is a display name and is not unique: several items may share it.
type EntityBase struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	State      EntityState `json:"state"`
	Image      string      `json:"image,omitempty"`
	Model      string      `json:"model,omitempty"` // glTF source for scene renderers
	OnInteract Actions     `json:"onInteract,omitempty"`
}

// Item is a world object the player can look at, touch or pick up.
type Item struct {
	EntityBase
	Interactive      Interactivity `json:"interactive"`
	InteractionSound string        `json:"interactionSound,omitempty"`
}

// NPC is a character the player can talk to. NPCs are always interactive.
type NPC struct {
	EntityBase
}

// Portal moves the player between locations, usually via a ChangeLocation action.
type Portal struct {
	EntityBase
	Interactive Interactivity `json:"interactive"`
}
