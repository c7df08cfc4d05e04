package game

import (
	"encoding/json"
	"fmt"
)

// Quest is an ordered sequence of steps. Quests with Order 0 start with the session.
type Quest struct {
	ID           string      `json:"id"`
	Title        string      `json:"title"`
	Description  string      `json:"description,omitempty"`
	Order        int         `json:"order"`
	Steps        []QuestStep `json:"steps"`
	ActiveStepID string      `json:"activeStepId,omitempty"` // empty before activation and after completion
	Completed    bool        `json:"completed"`
}

// StepIndex returns the index of the step with the given id, or -1.
func (q *Quest) StepIndex(stepID string) int {
	if stepID == "" {
		return -1
	}
	for i := range q.Steps {
		if q.Steps[i].ID == stepID {
			return i
		}
	}
	return -1
}

// ActiveStep returns the step ActiveStepID points at, or nil.
func (q *Quest) ActiveStep() *QuestStep {
	if i := q.StepIndex(q.ActiveStepID); i >= 0 {
		return &q.Steps[i]
	}
	return nil
}

// QuestStep is one stage of a quest with its completion condition and hooks.
type QuestStep struct {
	ID          string    `json:"id"`
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	Objective   Objective `json:"-"`
	OnStart     Actions   `json:"onStart,omitempty"`
	OnComplete  Actions   `json:"onComplete,omitempty"`
	IsCompleted bool      `json:"isCompleted"`
}

// UnmarshalJSON reads objectiveType/objectiveParams into the Objective variant.
func (s *QuestStep) UnmarshalJSON(data []byte) error {
	type Alias QuestStep
	aux := &struct {
		ObjectiveType   ObjectiveType   `json:"objectiveType"`
		ObjectiveParams json.RawMessage `json:"objectiveParams,omitempty"`
		*Alias
	}{Alias: (*Alias)(s)}
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	obj, err := DecodeObjective(aux.ObjectiveType, aux.ObjectiveParams)
	if err != nil {
		return fmt.Errorf("step %s objective: %w", s.ID, err)
	}
	s.Objective = obj
	return nil
}

// MarshalJSON writes the Objective back as objectiveType/objectiveParams.
func (s QuestStep) MarshalJSON() ([]byte, error) {
	type Alias QuestStep
	aux := struct {
		ObjectiveType   ObjectiveType `json:"objectiveType,omitempty"`
		ObjectiveParams any           `json:"objectiveParams,omitempty"`
		Alias
	}{Alias: Alias(s)}
	if s.Objective != nil {
		aux.ObjectiveType = s.Objective.Type()
		aux.ObjectiveParams = objectiveParams(s.Objective)
	}
	return json.Marshal(aux)
}
