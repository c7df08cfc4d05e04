package game

import (
	"encoding/json"
)

// ObjectiveType is the wire name of a quest step objective.
type ObjectiveType string

const (
	ObjectiveGoToLocation    ObjectiveType = "goToLocation"
	ObjectiveTalkTo          ObjectiveType = "talkTo"
	ObjectiveCollectEntities ObjectiveType = "collectEntities"
	ObjectiveCollectByName   ObjectiveType = "collectByName"
	ObjectiveCustom          ObjectiveType = "custom"
	ObjectiveInteract        ObjectiveType = "interact"
)

const (
	// DefaultCollectCount applies when a collectByName objective omits count.
	DefaultCollectCount = 1
	// DefaultRequiredCount applies when a custom objective omits requiredCount.
	DefaultRequiredCount = 5
)

// Objective is the completion condition of a quest step.
type Objective interface {
	Type() ObjectiveType
	isObjective()
}

type GoToLocation struct {
	LocationID string `json:"locationId"`
}

type TalkTo struct {
	NPCID string `json:"npcId"`
}

type CollectEntities struct {
	EntityIDs []string `json:"entityIds"`
}

type CollectByName struct {
	ItemName string `json:"itemName"`
	Count    int    `json:"count,omitempty"`
}

// RequiredCount returns Count, or DefaultCollectCount when unset.
func (c CollectByName) RequiredCount() int {
	if c.Count <= 0 {
		return DefaultCollectCount
	}
	return c.Count
}

// CustomObjective compares a document counter against a threshold.
type CustomObjective struct {
	TargetID      string `json:"targetId"`
	RequiredCount int    `json:"requiredCount,omitempty"`
}

// Required returns RequiredCount, or DefaultRequiredCount when unset.
func (c CustomObjective) Required() int {
	if c.RequiredCount <= 0 {
		return DefaultRequiredCount
	}
	return c.RequiredCount
}

// InteractObjective is reserved. It never completes.
type InteractObjective struct {
	EntityID string `json:"entityId,omitempty"`
}

// UnknownObjective preserves an objective type this build does not know.
type UnknownObjective struct {
	Name   string
	Params json.RawMessage
}

func (GoToLocation) Type() ObjectiveType       { return ObjectiveGoToLocation }
func (TalkTo) Type() ObjectiveType             { return ObjectiveTalkTo }
func (CollectEntities) Type() ObjectiveType    { return ObjectiveCollectEntities }
func (CollectByName) Type() ObjectiveType      { return ObjectiveCollectByName }
func (CustomObjective) Type() ObjectiveType    { return ObjectiveCustom }
func (InteractObjective) Type() ObjectiveType  { return ObjectiveInteract }
func (u UnknownObjective) Type() ObjectiveType { return ObjectiveType(u.Name) }

func (GoToLocation) isObjective()      {}
func (TalkTo) isObjective()            {}
func (CollectEntities) isObjective()   {}
func (CollectByName) isObjective()     {}
func (CustomObjective) isObjective()   {}
func (InteractObjective) isObjective() {}
func (UnknownObjective) isObjective()  {}

// DecodeObjective builds the concrete objective for t. An empty type yields nil.
func DecodeObjective(t ObjectiveType, params json.RawMessage) (Objective, error) {
	switch t {
	case "":
		return nil, nil
	case ObjectiveGoToLocation:
		return decodeObjective[GoToLocation](params)
	case ObjectiveTalkTo:
		return decodeObjective[TalkTo](params)
	case ObjectiveCollectEntities:
		return decodeObjective[CollectEntities](params)
	case ObjectiveCollectByName:
		return decodeObjective[CollectByName](params)
	case ObjectiveCustom:
		return decodeObjective[CustomObjective](params)
	case ObjectiveInteract:
		return decodeObjective[InteractObjective](params)
	default:
		return UnknownObjective{Name: string(t), Params: params}, nil
	}
}

func decodeObjective[T Objective](params json.RawMessage) (Objective, error) {
	var v T
	if len(params) == 0 || string(params) == "null" {
		return v, nil
	}
	if err := json.Unmarshal(params, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func objectiveParams(o Objective) any {
	if u, ok := o.(UnknownObjective); ok {
		return u.Params
	}
	return o
}
