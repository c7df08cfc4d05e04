package engine

import (
	"fmt"
	"slices"

	"github.com/jwebster45206/quest-engine/pkg/command"
	"github.com/jwebster45206/quest-engine/pkg/game"
)

// activateQuest starts a quest at its first step. Active, completed and empty
// quests are left alone.
func (e *Engine) activateQuest(id string) []command.Command {
	q := e.doc.FindQuest(id)
	if q == nil {
		e.logger.Warn("Cannot activate unknown quest", "quest_id", id)
		return nil
	}
	if e.doc.IsQuestActive(id) {
		e.logger.Debug("Quest already active", "quest_id", id)
		return nil
	}
	if q.Completed {
		e.logger.Debug("Quest already completed", "quest_id", id)
		return nil
	}
	if len(q.Steps) == 0 {
		e.logger.Warn("Quest has no steps", "quest_id", id)
		return nil
	}

	e.doc.ActiveQuests = append(e.doc.ActiveQuests, q.ID)
	q.ActiveStepID = q.Steps[0].ID
	e.logger.Info("Quest activated", "quest_id", q.ID, "step_id", q.ActiveStepID)

	cmds := e.execAll(q.Steps[0].OnStart)
	return append(cmds, command.QuestActivated{QuestID: q.ID, QuestTitle: q.Title})
}

// advanceFirst advances the first active quest that has a resolvable step.
func (e *Engine) advanceFirst() []command.Command {
	for _, qid := range e.doc.ActiveQuests {
		q := e.doc.FindQuest(qid)
		if q == nil || q.Completed || q.ActiveStep() == nil {
			continue
		}
		return e.advanceQuest(q)
	}
	e.logger.Debug("No active quest step to advance")
	return nil
}

// advanceQuest completes the active step and moves to the next one, or
// completes the quest after its last step.
func (e *Engine) advanceQuest(q *game.Quest) []command.Command {
	idx := q.StepIndex(q.ActiveStepID)
	if idx < 0 {
		e.logger.Warn("Cannot advance quest without an active step", "quest_id", q.ID)
		return nil
	}
	stepID := q.Steps[idx].ID
	q.Steps[idx].IsCompleted = true
	cmds := e.execAll(q.Steps[idx].OnComplete)

	// onComplete may have advanced this quest already.
	if q.Completed || q.ActiveStepID != stepID {
		return cmds
	}

	if idx+1 < len(q.Steps) {
		next := &q.Steps[idx+1]
		q.ActiveStepID = next.ID
		e.logger.Info("Quest step advanced",
			"quest_id", q.ID,
			"from", stepID,
			"to", next.ID)
		cmds = append(cmds, command.Log{Message: fmt.Sprintf("%s: %s -> %s", q.Title, stepID, next.ID)})
		return append(cmds, e.execAll(next.OnStart)...)
	}

	q.Completed = true
	q.ActiveStepID = ""
	e.doc.ActiveQuests = slices.DeleteFunc(e.doc.ActiveQuests, func(id string) bool {
		return id == q.ID
	})
	e.logger.Info("Quest completed", "quest_id", q.ID, "last_step", stepID)
	cmds = append(cmds, command.Log{Message: fmt.Sprintf("%s: %s -> completed", q.Title, stepID)})
	return append(cmds, command.QuestCompleted{QuestID: q.ID, QuestTitle: q.Title})
}
