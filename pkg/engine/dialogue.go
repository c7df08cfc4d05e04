package engine

import "github.com/jwebster45206/quest-engine/pkg/game"

// ResolveDialogue picks the sequence an NPC should play now:
//  1. a sequence for this NPC tagged with an active quest step, or an untargeted
//     sequence tagged with a step whose objective is talking to this NPC
//  2. the sequence with id "<npcId>_default"
//  3. any untagged sequence for this NPC
//
// It returns nil when nothing matches.
func (e *Engine) ResolveDialogue(npcID string) *game.DialogueSequence {
	if e.doc == nil || npcID == "" {
		return nil
	}
	for _, qid := range e.doc.ActiveQuests {
		q := e.doc.FindQuest(qid)
		if q == nil {
			continue
		}
		step := q.ActiveStep()
		if step == nil {
			continue
		}
		if seq := e.findDialogue(func(d *game.DialogueSequence) bool {
			return d.NPCID == npcID && d.QuestStepID == step.ID
		}); seq != nil {
			return seq
		}
		if talk, ok := step.Objective.(game.TalkTo); ok && talk.NPCID == npcID {
			if seq := e.findDialogue(func(d *game.DialogueSequence) bool {
				return d.NPCID == "" && d.QuestStepID == step.ID
			}); seq != nil {
				return seq
			}
		}
	}
	if seq := e.doc.FindDialogue(npcID + "_default"); seq != nil {
		return seq
	}
	return e.findDialogue(func(d *game.DialogueSequence) bool {
		return d.NPCID == npcID && d.QuestStepID == ""
	})
}

func (e *Engine) findDialogue(match func(*game.DialogueSequence) bool) *game.DialogueSequence {
	for i := range e.doc.Dialogues {
		if match(&e.doc.Dialogues[i]) {
			return &e.doc.Dialogues[i]
		}
	}
	return nil
}
