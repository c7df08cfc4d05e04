package engine

import (
	"slices"

	"github.com/jwebster45206/quest-engine/pkg/command"
	"github.com/jwebster45206/quest-engine/pkg/game"
)

// checkObjectives advances every active quest whose current step is satisfied.
// It walks a copy of the active list since advancing can complete quests.
func (e *Engine) checkObjectives(npcID string) []command.Command {
	var cmds []command.Command
	for _, qid := range slices.Clone(e.doc.ActiveQuests) {
		q := e.doc.FindQuest(qid)
		if q == nil {
			e.logger.Warn("Active quest not found", "quest_id", qid)
			continue
		}
		if q.Completed || !e.doc.IsQuestActive(qid) {
			continue
		}
		step := q.ActiveStep()
		if step == nil {
			e.logger.Warn("Active quest has no resolvable step",
				"quest_id", qid,
				"step_id", q.ActiveStepID)
			continue
		}
		if !e.objectiveMet(step.Objective, npcID) {
			continue
		}
		cmds = append(cmds, e.advanceQuest(q)...)
	}
	return cmds
}

func (e *Engine) objectiveMet(obj game.Objective, npcID string) bool {
	switch o := obj.(type) {
	case nil:
		return false
	case game.GoToLocation:
		return o.LocationID != "" && e.doc.CurrentLocationID == o.LocationID
	case game.TalkTo:
		return npcID != "" && npcID == o.NPCID
	case game.CollectEntities:
		if len(o.EntityIDs) == 0 {
			e.logger.Warn("collectEntities objective lists no entities")
			return false
		}
		for _, id := range o.EntityIDs {
			if !e.doc.InInventory(id) {
				return false
			}
		}
		return true
	case game.CollectByName:
		return e.doc.CountInventoryByName(o.ItemName) >= o.RequiredCount()
	case game.CustomObjective:
		if o.TargetID != game.CounterSeedsPlaced {
			e.logger.Warn("Unknown custom objective target", "target_id", o.TargetID)
			return false
		}
		return e.doc.Counter(o.TargetID) >= o.Required()
	case game.InteractObjective:
		return false
	case game.UnknownObjective:
		e.logger.Warn("Unknown objective type", "objective", o.Name)
		return false
	default:
		e.logger.Warn("Unhandled objective type", "objective", o.Type())
		return false
	}
}
