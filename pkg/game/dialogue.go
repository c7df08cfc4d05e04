package game

// DialogueSequence is a tree of dialog lines. NPCID and QuestStepID are optional;
// an empty QuestStepID means the sequence is not tied to a quest step.
type DialogueSequence struct {
	ID          string   `json:"id"`
	NPCID       string   `json:"npcId,omitempty"`
	QuestStepID string   `json:"questStepId,omitempty"`
	Dialogs     []Dialog `json:"dialogs"`
}

// Dialog is one line. With Buttons the player picks a branch; otherwise Next
// (or the following index when Next is nil) continues the sequence.
type Dialog struct {
	Speaker string         `json:"speaker,omitempty"`
	Text    string         `json:"text"`
	Buttons []DialogButton `json:"buttons,omitempty"`
	Next    *int           `json:"next,omitempty"`
	OnNext  Actions        `json:"onNext,omitempty"`
}

// DialogButton points at a dialog index. An index outside the sequence ends it.
type DialogButton struct {
	Text string `json:"text"`
	Next int    `json:"next"`
}

// Advance returns the dialog index that follows index when button is chosen
// (button is ignored for linear dialogs). done is true when the sequence ends.
// An out of range button keeps the player on the current dialog.
func (d *DialogueSequence) Advance(index, button int) (next int, done bool) {
	if index < 0 || index >= len(d.Dialogs) {
		return -1, true
	}
	dialog := d.Dialogs[index]
	switch {
	case len(dialog.Buttons) > 0:
		if button < 0 || button >= len(dialog.Buttons) {
			return index, false
		}
		next = dialog.Buttons[button].Next
	case dialog.Next != nil:
		next = *dialog.Next
	default:
		next = index + 1
	}
	if next < 0 || next >= len(d.Dialogs) {
		return -1, true
	}
	return next, false
}

// IsTerminal reports whether leaving the dialog at index ends the sequence
// regardless of the button chosen.
func (d *DialogueSequence) IsTerminal(index int) bool {
	if index < 0 || index >= len(d.Dialogs) {
		return true
	}
	dialog := d.Dialogs[index]
	if len(dialog.Buttons) == 0 {
		_, done := d.Advance(index, 0)
		return done
	}
	for i := range dialog.Buttons {
		if _, done := d.Advance(index, i); !done {
			return false
		}
	}
	return true
}
