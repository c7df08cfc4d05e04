package game

import (
	"encoding/json"
	"fmt"
)

// ActionKind is the wire name of an action.
type ActionKind string

const (
	ActionPlaySound                 ActionKind = "playSound"
	ActionAddToInventory            ActionKind = "addToInventory"
	ActionGrantToInventory          ActionKind = "grantToInventory"
	ActionRemoveFromInventory       ActionKind = "removeFromInventory"
	ActionRemoveFromInventoryByName ActionKind = "removeFromInventoryByName"
	ActionSetInteractive            ActionKind = "setInteractive"
	ActionSetInteractiveByName      ActionKind = "setInteractiveByName"
	ActionSpawnEntity               ActionKind = "spawnEntity"
	ActionClearEntity               ActionKind = "clearEntity"
	ActionActivateQuest             ActionKind = "activateQuest"
	ActionAdvanceStep               ActionKind = "advanceStep"
	ActionChangeLocation            ActionKind = "changeLocation"
	ActionStartDialogue             ActionKind = "startDialogue"
	ActionCustom                    ActionKind = "custom"
)

// Action is a data-described effect. The set of implementations is closed;
// consumers switch over the concrete types.
type Action interface {
	Kind() ActionKind
	isAction()
}

type PlaySound struct {
	URL string `json:"url"`
}

type AddToInventory struct {
	EntityID string `json:"entityId"`
}

// GrantToInventory behaves exactly like AddToInventory.
type GrantToInventory struct {
	EntityID string `json:"entityId"`
}

// RemoveFromInventory drops the entity from the inventory. State is optional:
// when empty the entity state is left for a later SpawnEntity or ClearEntity.
type RemoveFromInventory struct {
	EntityID string      `json:"entityId"`
	State    EntityState `json:"state,omitempty"`
}

// RemoveFromInventoryByName consumes up to Count held entities named ItemName.
type RemoveFromInventoryByName struct {
	ItemName string `json:"itemName"`
	Count    int    `json:"count,omitempty"`
}

type SetInteractive struct {
	EntityID string        `json:"entityId"`
	Mode     Interactivity `json:"mode"`
}

type SetInteractiveByName struct {
	ItemName string        `json:"itemName"`
	Mode     Interactivity `json:"mode"`
}

type SpawnEntity struct {
	EntityID string `json:"entityId"`
}

type ClearEntity struct {
	EntityID string `json:"entityId"`
}

type ActivateQuest struct {
	QuestID string `json:"questId"`
}

type AdvanceStep struct{}

type ChangeLocation struct {
	LocationID string `json:"locationId"`
}

type StartDialogue struct {
	DialogueSequenceID string `json:"dialogueSequenceId"`
}

// Custom names an engine extension, e.g. "place_seed".
type Custom struct {
	Name   string         `json:"action"`
	Params map[string]any `json:"params,omitempty"`
}

// Param returns a string parameter, or "" when it is absent or not a string.
func (c Custom) Param(key string) string {
	if v, ok := c.Params[key].(string); ok {
		return v
	}
	return ""
}

// UnknownAction preserves an action whose type this build does not know.
type UnknownAction struct {
	Type   string
	Params json.RawMessage
}

func (PlaySound) Kind() ActionKind                 { return ActionPlaySound }
func (AddToInventory) Kind() ActionKind            { return ActionAddToInventory }
func (GrantToInventory) Kind() ActionKind          { return ActionGrantToInventory }
func (RemoveFromInventory) Kind() ActionKind       { return ActionRemoveFromInventory }
func (RemoveFromInventoryByName) Kind() ActionKind { return ActionRemoveFromInventoryByName }
func (SetInteractive) Kind() ActionKind            { return ActionSetInteractive }
func (SetInteractiveByName) Kind() ActionKind      { return ActionSetInteractiveByName }
func (SpawnEntity) Kind() ActionKind               { return ActionSpawnEntity }
func (ClearEntity) Kind() ActionKind               { return ActionClearEntity }
func (ActivateQuest) Kind() ActionKind             { return ActionActivateQuest }
func (AdvanceStep) Kind() ActionKind               { return ActionAdvanceStep }
func (ChangeLocation) Kind() ActionKind            { return ActionChangeLocation }
func (StartDialogue) Kind() ActionKind             { return ActionStartDialogue }
func (Custom) Kind() ActionKind                    { return ActionCustom }
func (u UnknownAction) Kind() ActionKind           { return ActionKind(u.Type) }

func (PlaySound) isAction()                 {}
func (AddToInventory) isAction()            {}
func (GrantToInventory) isAction()          {}
func (RemoveFromInventory) isAction()       {}
func (RemoveFromInventoryByName) isAction() {}
func (SetInteractive) isAction()            {}
func (SetInteractiveByName) isAction()      {}
func (SpawnEntity) isAction()               {}
func (ClearEntity) isAction()               {}
func (ActivateQuest) isAction()             {}
func (AdvanceStep) isAction()               {}
func (ChangeLocation) isAction()            {}
func (StartDialogue) isAction()             {}
func (Custom) isAction()                    {}
func (UnknownAction) isAction()             {}

// Actions is an ordered action list with a tagged JSON encoding:
// [{"type": "spawnEntity", "params": {"entityId": "crystal_2"}}, ...]
type Actions []Action

type actionEnvelope struct {
	Type   ActionKind      `json:"type"`
	Params json.RawMessage `json:"params,omitempty"`
}

// UnmarshalJSON decodes each entry by its "type". Unknown types are kept as
// UnknownAction so the engine can log and skip them at run time.
func (a *Actions) UnmarshalJSON(data []byte) error {
	var envs []actionEnvelope
	if err := json.Unmarshal(data, &envs); err != nil {
		return err
	}
	out := make(Actions, 0, len(envs))
	for i, env := range envs {
		act, err := DecodeAction(env.Type, env.Params)
		if err != nil {
			return fmt.Errorf("action %d (%s): %w", i, env.Type, err)
		}
		out = append(out, act)
	}
	*a = out
	return nil
}

// MarshalJSON writes the tagged encoding read by UnmarshalJSON.
func (a Actions) MarshalJSON() ([]byte, error) {
	envs := make([]actionEnvelope, 0, len(a))
	for _, act := range a {
		if act == nil {
			continue
		}
		env := actionEnvelope{Type: act.Kind()}
		switch v := act.(type) {
		case UnknownAction:
			env.Params = v.Params
		case AdvanceStep:
		default:
			params, err := json.Marshal(v)
			if err != nil {
				return nil, err
			}
			env.Params = params
		}
		envs = append(envs, env)
	}
	return json.Marshal(envs)
}

// DecodeAction builds the concrete action for kind from its params.
func DecodeAction(kind ActionKind, params json.RawMessage) (Action, error) {
	switch kind {
	case ActionPlaySound:
		return decodeParams[PlaySound](params)
	case ActionAddToInventory:
		return decodeParams[AddToInventory](params)
	case ActionGrantToInventory:
		return decodeParams[GrantToInventory](params)
	case ActionRemoveFromInventory:
		return decodeParams[RemoveFromInventory](params)
	case ActionRemoveFromInventoryByName:
		return decodeParams[RemoveFromInventoryByName](params)
	case ActionSetInteractive:
		return decodeParams[SetInteractive](params)
	case ActionSetInteractiveByName:
		return decodeParams[SetInteractiveByName](params)
	case ActionSpawnEntity:
		return decodeParams[SpawnEntity](params)
	case ActionClearEntity:
		return decodeParams[ClearEntity](params)
	case ActionActivateQuest:
		return decodeParams[ActivateQuest](params)
	case ActionAdvanceStep:
		return AdvanceStep{}, nil
	case ActionChangeLocation:
		return decodeParams[ChangeLocation](params)
	case ActionStartDialogue:
		return decodeParams[StartDialogue](params)
	case ActionCustom:
		return decodeParams[Custom](params)
	default:
		return UnknownAction{Type: string(kind), Params: params}, nil
	}
}

func decodeParams[T Action](params json.RawMessage) (Action, error) {
	var v T
	if len(params) == 0 || string(params) == "null" {
		return v, nil
	}
	if err := json.Unmarshal(params, &v); err != nil {
		return nil, err
	}
	return v, nil
}
