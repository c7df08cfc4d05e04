// Package engine runs quests over a game document: it executes actions,
// evaluates objectives, advances quest steps and turns player interactions into
// commands for a presentation layer.
//
// The engine is synchronous and not safe for concurrent use. Callers must wait
// for one interaction to finish before issuing the next.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jwebster45206/quest-engine/pkg/command"
	"github.com/jwebster45206/quest-engine/pkg/game"
	"github.com/jwebster45206/quest-engine/pkg/storage"
)

var (
	// ErrNoDocument is returned when the engine is used before a document is loaded.
	ErrNoDocument = errors.New("engine: no game document loaded")
	// ErrUnknownInteraction is returned for interaction kinds the engine does not handle.
	ErrUnknownInteraction = errors.New("engine: unknown interaction type")
)

// DefaultGrabSound plays when an item is picked up and the document sets no grab sound.
const DefaultGrabSound = "sounds/grab.mp3"

// maxActionDepth bounds nested action execution so looping content cannot hang a session.
const maxActionDepth = 32

// CustomHandler runs a named Custom action.
type CustomHandler func(e *Engine, action game.Custom) []command.Command

// Engine owns one session's game document.
type Engine struct {
	doc        *game.Document
	transition Transition
	logger     *slog.Logger
	custom     map[string]CustomHandler
	depth      int
}

// New creates an engine over doc. doc may be nil when the document will be
// provided later through Load. The grid transition is used unless
// WithTransition selects another.
func New(doc *game.Document, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		transition: GridTransition{},
		logger:     logger,
		custom: map[string]CustomHandler{
			CustomPlaceSeed: placeSeed,
		},
	}
	if doc != nil {
		e.setDocument(doc)
	}
	return e
}

// WithTransition selects the location transition strategy.
// Returns the Engine for method chaining
func (e *Engine) WithTransition(t Transition) *Engine {
	if t != nil {
		e.transition = t
	}
	return e
}

// WithCustomAction registers a handler for Custom actions named name.
// Returns the Engine for method chaining
func (e *Engine) WithCustomAction(name string, h CustomHandler) *Engine {
	e.custom[name] = h
	return e
}

// Document returns the live document. Mutating it outside the engine is the
// caller's responsibility.
func (e *Engine) Document() *game.Document {
	return e.doc
}

// Load replaces the document with one read from p.
func (e *Engine) Load(ctx context.Context, p storage.Provider) error {
	doc, err := p.LoadGame(ctx)
	if err != nil {
		return fmt.Errorf("failed to load game: %w", err)
	}
	if doc == nil {
		return ErrNoDocument
	}
	e.setDocument(doc)
	return nil
}

// Save writes the live document through p.
func (e *Engine) Save(ctx context.Context, p storage.Provider) error {
	if e.doc == nil {
		return ErrNoDocument
	}
	if err := p.SaveGame(ctx, e.doc); err != nil {
		return fmt.Errorf("failed to save game: %w", err)
	}
	return nil
}

func (e *Engine) setDocument(doc *game.Document) {
	e.doc = doc
	if doc.Counters == nil {
		doc.Counters = map[string]int{}
	}
	switch {
	case doc.Authored != nil:
	case doc.CurrentLocationID == "":
		doc.RecordAuthored()
	default:
		e.logger.Warn("Resumed document has no authored record, reset will return held entities to the world",
			"location", doc.CurrentLocationID)
	}
}

// Start enters the default location and activates every quest with Order 0.
func (e *Engine) Start() ([]command.Command, error) {
	if e.doc == nil {
		return nil, ErrNoDocument
	}
	var cmds []command.Command

	start := e.doc.DefaultLocationID
	if start == "" && len(e.doc.Locations) > 0 {
		start = e.doc.Locations[0].ID
	}
	cmds = append(cmds, e.changeLocation(start)...)

	var initial []string
	for i := range e.doc.Quests {
		if e.doc.Quests[i].Order == 0 {
			initial = append(initial, e.doc.Quests[i].ID)
		}
	}
	for _, id := range initial {
		cmds = append(cmds, e.exec(game.ActivateQuest{QuestID: id})...)
	}

	e.logger.Info("Session started",
		"location", e.doc.CurrentLocationID,
		"active_quests", e.doc.ActiveQuests)
	return cmds, nil
}

// Reset puts entities and the inventory back as authored, zeroes runtime
// state and replays Start.
func (e *Engine) Reset() ([]command.Command, error) {
	if e.doc == nil {
		return nil, ErrNoDocument
	}
	e.doc.ResetRuntime()
	return e.Start()
}

// Refresh redraws a resumed session: the current location as if entered
// fresh, then the inventory. Document state is not changed.
func (e *Engine) Refresh() ([]command.Command, error) {
	if e.doc == nil {
		return nil, ErrNoDocument
	}
	loc := e.doc.CurrentLocation()
	if loc == nil {
		e.logger.Warn("Nothing to refresh, session has no current location",
			"location", e.doc.CurrentLocationID)
		return nil, nil
	}
	cmds := e.transition.Enter(e.doc, nil, loc)
	return append(cmds, e.inventoryCommand()), nil
}

// Execute runs one action against the document.
func (e *Engine) Execute(action game.Action) ([]command.Command, error) {
	if e.doc == nil {
		return nil, ErrNoDocument
	}
	return e.exec(action), nil
}

// CheckObjectives evaluates the active step of every active quest. npcID is
// the NPC the player just clicked, or "" for any other trigger.
func (e *Engine) CheckObjectives(npcID string) ([]command.Command, error) {
	if e.doc == nil {
		return nil, ErrNoDocument
	}
	return e.checkObjectives(npcID), nil
}

// AdvanceStep advances the first active quest with a resolvable step.
func (e *Engine) AdvanceStep() ([]command.Command, error) {
	if e.doc == nil {
		return nil, ErrNoDocument
	}
	return e.advanceFirst(), nil
}

// ChangeLocation moves the player and returns the transition commands.
func (e *Engine) ChangeLocation(id string) ([]command.Command, error) {
	if e.doc == nil {
		return nil, ErrNoDocument
	}
	return e.changeLocation(id), nil
}

// PlaceSeed runs the place_seed custom action for vesselID.
func (e *Engine) PlaceSeed(vesselID string) ([]command.Command, error) {
	return e.Execute(game.Custom{
		Name:   CustomPlaceSeed,
		Params: map[string]any{"vesselId": vesselID},
	})
}

// CompleteDialogue runs the onNext actions of the dialog the player left at
// index, then re-evaluates objectives. It does not count as talking to the
// sequence's NPC.
func (e *Engine) CompleteDialogue(sequenceID string, index int) ([]command.Command, error) {
	if e.doc == nil {
		return nil, ErrNoDocument
	}
	seq := e.doc.FindDialogue(sequenceID)
	if seq == nil {
		e.logger.Warn("Dialogue sequence not found", "dialogue_id", sequenceID)
		return nil, nil
	}
	if index < 0 || index >= len(seq.Dialogs) {
		e.logger.Warn("Dialog index out of range",
			"dialogue_id", sequenceID,
			"index", index,
			"dialogs", len(seq.Dialogs))
		return nil, nil
	}
	cmds := e.execAll(seq.Dialogs[index].OnNext)
	cmds = append(cmds, e.checkObjectives("")...)
	return cmds, nil
}

func (e *Engine) grabSound() string {
	if e.doc.Sounds.Grab != "" {
		return e.doc.Sounds.Grab
	}
	return DefaultGrabSound
}
