// Package command defines the instructions the engine emits for a presentation
// layer to carry out.
package command

import (
	"encoding/json"

	"github.com/jwebster45206/quest-engine/pkg/game"
)

type Type string

const (
	TypePlaySound           Type = "playSound"
	TypeSpawnEntity         Type = "spawnEntity"
	TypeClearEntity         Type = "clearEntity"
	TypeUpdateLocation      Type = "updateLocation"
	TypeUpdateInventory     Type = "updateInventory"
	TypeUpdateEntity        Type = "updateEntity"
	TypeUpdateVesselTexture Type = "updateVesselTexture"
	TypeQuestActivated      Type = "questActivated"
	TypeQuestCompleted      Type = "questCompleted"
	TypeShowDialogue        Type = "showDialogue"
	TypeLog                 Type = "log"

	// Scene renderer only
	TypeSetEntityVisibility Type = "setEntityVisibility"
	TypeSetEntityCollider   Type = "setEntityCollider"
	TypeAddGltfComponent    Type = "addGltfComponent"
	TypeRemoveGltfComponent Type = "removeGltfComponent"
)

// Collider layers used by SetEntityCollider.
const (
	ColliderInteractive = "interactive"
	ColliderNone        = "none"
)

// Command is one observable effect. The set of implementations is closed.
type Command interface {
	Type() Type
	isCommand()
}

type PlaySound struct {
	URL string `json:"url"`
}

type SpawnEntity struct {
	ID string `json:"id"`
}

type ClearEntity struct {
	ID string `json:"id"`
}

// EntityView is the renderer-facing snapshot of one entity.
type EntityView struct {
	ID          string             `json:"id"`
	Kind        game.EntityKind    `json:"kind"`
	Name        string             `json:"name"`
	State       game.EntityState   `json:"state"`
	Interactive game.Interactivity `json:"interactive,omitempty"`
	Image       string             `json:"image,omitempty"`
}

type UpdateLocation struct {
	LocationID      string       `json:"locationId"`
	LocationName    string       `json:"locationName"`
	BackgroundImage string       `json:"backgroundImage,omitempty"`
	BackgroundMusic string       `json:"backgroundMusic,omitempty"`
	Entities        []EntityView `json:"entities"`
}

// InventoryEntry is one held entity.
type InventoryEntry struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

type UpdateInventory struct {
	Inventory []InventoryEntry `json:"inventory"`
}

// UpdateEntity carries only the fields that changed.
type UpdateEntity struct {
	ID          string              `json:"id"`
	State       *game.EntityState   `json:"state,omitempty"`
	Interactive *game.Interactivity `json:"interactive,omitempty"`
}

type UpdateVesselTexture struct {
	VesselID  string `json:"vesselId"`
	Activated bool   `json:"activated"`
}

type QuestActivated struct {
	QuestID    string `json:"questId"`
	QuestTitle string `json:"questTitle"`
}

type QuestCompleted struct {
	QuestID    string `json:"questId"`
	QuestTitle string `json:"questTitle"`
}

type ShowDialogue struct {
	DialogueSequenceID string `json:"dialogueSequenceId"`
	NPCID              string `json:"npcId,omitempty"`
}

type Log struct {
	Message string `json:"message"`
}

type SetEntityVisibility struct {
	EntityID string `json:"entityId"`
	Visible  bool   `json:"visible"`
}

type SetEntityCollider struct {
	EntityID      string `json:"entityId"`
	ColliderLayer string `json:"colliderLayer"`
}

type AddGltfComponent struct {
	EntityID string `json:"entityId"`
	GltfSrc  string `json:"gltfSrc,omitempty"`
}

type RemoveGltfComponent struct {
	EntityID string `json:"entityId"`
}

func (PlaySound) Type() Type           { return TypePlaySound }
func (SpawnEntity) Type() Type         { return TypeSpawnEntity }
func (ClearEntity) Type() Type         { return TypeClearEntity }
func (UpdateLocation) Type() Type      { return TypeUpdateLocation }
func (UpdateInventory) Type() Type     { return TypeUpdateInventory }
func (UpdateEntity) Type() Type        { return TypeUpdateEntity }
func (UpdateVesselTexture) Type() Type { return TypeUpdateVesselTexture }
func (QuestActivated) Type() Type      { return TypeQuestActivated }
func (QuestCompleted) Type() Type      { return TypeQuestCompleted }
func (ShowDialogue) Type() Type        { return TypeShowDialogue }
func (Log) Type() Type                 { return TypeLog }
func (SetEntityVisibility) Type() Type { return TypeSetEntityVisibility }
func (SetEntityCollider) Type() Type   { return TypeSetEntityCollider }
func (AddGltfComponent) Type() Type    { return TypeAddGltfComponent }
func (RemoveGltfComponent) Type() Type { return TypeRemoveGltfComponent }

func (PlaySound) isCommand()           {}
func (SpawnEntity) isCommand()         {}
func (ClearEntity) isCommand()         {}
func (UpdateLocation) isCommand()      {}
func (UpdateInventory) isCommand()     {}
func (UpdateEntity) isCommand()        {}
func (UpdateVesselTexture) isCommand() {}
func (QuestActivated) isCommand()      {}
func (QuestCompleted) isCommand()      {}
func (ShowDialogue) isCommand()        {}
func (Log) isCommand()                 {}
func (SetEntityVisibility) isCommand() {}
func (SetEntityCollider) isCommand()   {}
func (AddGltfComponent) isCommand()    {}
func (RemoveGltfComponent) isCommand() {}

// Marshal encodes a command as a flat JSON object with a "type" field.
func Marshal(c Command) ([]byte, error) {
	body, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	typ, err := json.Marshal(c.Type())
	if err != nil {
		return nil, err
	}
	fields["type"] = typ
	return json.Marshal(fields)
}

// MarshalBatch encodes a batch as a JSON array of flat command objects.
func MarshalBatch(cmds []Command) ([]byte, error) {
	out := make([]json.RawMessage, 0, len(cmds))
	for _, c := range cmds {
		b, err := Marshal(c)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return json.Marshal(out)
}

// StatePtr and InteractivityPtr build the optional fields of UpdateEntity.
func StatePtr(s game.EntityState) *game.EntityState { return &s }

func InteractivityPtr(i game.Interactivity) *game.Interactivity { return &i }

// Filter returns the commands of type t, in order.
func Filter(cmds []Command, t Type) []Command {
	var out []Command
	for _, c := range cmds {
		if c.Type() == t {
			out = append(out, c)
		}
	}
	return out
}
