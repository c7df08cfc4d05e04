package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jwebster45206/quest-engine/internal/session"
	"github.com/jwebster45206/quest-engine/pkg/command"
	"github.com/jwebster45206/quest-engine/pkg/engine"
	"github.com/jwebster45206/quest-engine/pkg/game"
)

const (
	PlaceHolderText = "Type /help for commands, Tab to return to the grid"
	maxLogLines     = 500
)

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
//
// It only knows what the engine told it through commands; the document is
// read once at startup for dialogue text.
type ConsoleUI struct {
	ctx       context.Context
	sess      *session.Session
	dialogues map[string]game.DialogueSequence
	afterSave func(context.Context) error

	gridViewport viewport.Model
	metaViewport viewport.Model
	logViewport  viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	err          error
	busy         bool
	focusInput   bool
	status       string

	location  command.UpdateLocation
	selected  int
	inventory []command.InventoryEntry
	quests    []questLine
	vessels   map[string]bool
	dialogue  *dialogueState
	logLines  []logLine

	// Quit confirmation state
	showQuitModal bool
}

type logLine struct {
	style lipgloss.Style
	text  string
}

type questLine struct {
	id        string
	title     string
	completed bool
}

type dialogueState struct {
	seq    game.DialogueSequence
	npcID  string
	index  int
	button int
}

// commandsMsg carries a batch from the executor into the update loop.
type commandsMsg struct {
	cmds []command.Command
}

// doneMsg reports the end of a session call.
type doneMsg struct {
	what string
	err  error
}

type copiedMsg struct {
	err error
}

func NewConsoleUI(ctx context.Context, sess *session.Session, dialogues []game.DialogueSequence) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 200
	ta.SetWidth(50)
	ta.SetHeight(1)
	ta.ShowLineNumbers = false
	ta.Blur()

	gridVp := viewport.New(50, 20)
	logVp := viewport.New(50, 8)
	logVp.MouseWheelEnabled = true
	metaVp := viewport.New(20, 20)

	byID := make(map[string]game.DialogueSequence, len(dialogues))
	for _, d := range dialogues {
		byID[d.ID] = d
	}

	return ConsoleUI{
		ctx:          ctx,
		sess:         sess,
		dialogues:    byID,
		textarea:     ta,
		gridViewport: gridVp,
		metaViewport: metaVp,
		logViewport:  logVp,
		vessels:      map[string]bool{},
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return m.call("start", func() error {
		_, err := m.sess.Start(m.ctx)
		return err
	})
}

// call runs a session method off the update loop. Commands arrive separately
// through the executor.
func (m ConsoleUI) call(what string, fn func() error) tea.Cmd {
	return func() tea.Msg {
		return doneMsg{what: what, err: fn()}
	}
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.logViewport, vpCmd = m.logViewport.Update(msg)
		return m, vpCmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.ready = true
		m.refresh()
		return m, nil

	case commandsMsg:
		m.apply(msg.cmds)
		m.refresh()
		return m, nil

	case doneMsg:
		m.busy = false
		if msg.err != nil {
			m.err = msg.err
			m.appendLog(errorStyle, fmt.Sprintf("%s failed: %v", msg.what, msg.err))
		} else if msg.what == "save" {
			m.status = "Saved"
		}
		m.refresh()
		return m, nil

	case copiedMsg:
		if msg.err != nil {
			m.status = "Copy failed: " + msg.err.Error()
		} else {
			m.status = "Log copied to clipboard"
		}
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyTab:
			m.focusInput = !m.focusInput
			if m.focusInput {
				return m, m.textarea.Focus()
			}
			m.textarea.Blur()
			return m, nil
		}

		if m.focusInput {
			if msg.Type == tea.KeyEnter {
				input := strings.TrimSpace(m.textarea.Value())
				m.textarea.Reset()
				if input == "" {
					return m, nil
				}
				return m.handleCommand(input)
			}
			m.textarea, tiCmd = m.textarea.Update(msg)
			return m, tiCmd
		}

		if m.dialogue != nil {
			return m.updateDialogue(msg)
		}
		return m.updateGrid(msg)
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.logViewport, vpCmd = m.logViewport.Update(msg)
	return m, tea.Batch(tiCmd, vpCmd)
}

func (m ConsoleUI) updateGrid(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	visible := m.visibleEntities()
	switch msg.String() {
	case "left", "h", "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "right", "l", "down", "j":
		if m.selected < len(visible)-1 {
			m.selected++
		}
	case "enter", " ":
		if m.busy || m.selected >= len(visible) {
			return m, nil
		}
		ent := visible[m.selected]
		kind := interactionFor(ent.Kind)
		m.busy = true
		return m, m.call("click "+ent.ID, func() error {
			_, err := m.sess.Interact(m.ctx, kind, ent.ID)
			return err
		})
	case "r":
		return m.handleCommand("/reset")
	case "s":
		return m.handleCommand("/save")
	case "c":
		return m.handleCommand("/copy")
	case "q":
		m.showQuitModal = true
		return m, nil
	}
	m.refresh()
	return m, nil
}

func interactionFor(kind game.EntityKind) engine.InteractionType {
	switch kind {
	case game.KindNPC:
		return engine.ClickNPC
	case game.KindPortal:
		return engine.ClickPortal
	default:
		return engine.ClickItem
	}
}

func (m ConsoleUI) updateDialogue(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	d := m.dialogue
	if d.index < 0 || d.index >= len(d.seq.Dialogs) {
		m.dialogue = nil
		m.refresh()
		return m, nil
	}
	buttons := d.seq.Dialogs[d.index].Buttons
	switch msg.String() {
	case "up", "k":
		if d.button > 0 {
			d.button--
		}
	case "down", "j":
		if d.button < len(buttons)-1 {
			d.button++
		}
	case "enter", " ":
		left := d.index
		next, done := d.seq.Advance(left, d.button)
		if done {
			m.dialogue = nil
		} else {
			d.index = next
			d.button = 0
		}
		seqID := d.seq.ID
		m.refresh()
		return m, m.call("dialogue", func() error {
			_, err := m.sess.CompleteDialogue(m.ctx, seqID, left)
			return err
		})
	}
	m.refresh()
	return m, nil
}

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(input)
	cmd := strings.ToLower(fields[0])
	arg := ""
	if len(fields) > 1 {
		arg = fields[1]
	}

	var action game.Action
	switch cmd {
	case "/help":
		m.appendLog(helpStyle, strings.TrimSpace(helpText))
		m.refresh()
		return m, nil
	case "/reset":
		m.dialogue = nil
		m.quests = nil
		m.vessels = map[string]bool{}
		m.selected = 0
		m.appendLog(titleStyle, "Game reset")
		return m, m.call("reset", func() error {
			_, err := m.sess.Reset(m.ctx)
			return err
		})
	case "/save":
		return m, m.call("save", func() error {
			if err := m.sess.Save(m.ctx); err != nil {
				return err
			}
			if m.afterSave != nil {
				return m.afterSave(m.ctx)
			}
			return nil
		})
	case "/copy":
		text := m.plainLog()
		return m, func() tea.Msg { return copiedMsg{err: clipboard.WriteAll(text)} }
	case "/quit":
		m.showQuitModal = true
		return m, nil
	case "/goto":
		action = game.ChangeLocation{LocationID: arg}
	case "/spawn":
		action = game.SpawnEntity{EntityID: arg}
	case "/clear":
		action = game.ClearEntity{EntityID: arg}
	case "/give":
		action = game.GrantToInventory{EntityID: arg}
	case "/quest":
		action = game.ActivateQuest{QuestID: arg}
	case "/advance":
		action = game.AdvanceStep{}
	default:
		m.appendLog(errorStyle, "Unknown command: "+cmd)
		m.refresh()
		return m, nil
	}
	return m, m.call(cmd, func() error {
		_, err := m.sess.Execute(m.ctx, action)
		return err
	})
}

const helpText = `
Grid:
• ←/→ or h/l - Select an entity
• Enter - Interact with the selection
• r - Reset • s - Save • c - Copy log • q - Quit
• Tab - Switch to the command line

Commands:
• /goto <location> • /spawn <entity> • /clear <entity>
• /give <entity> • /quest <quest> • /advance
• /reset • /save • /copy • /quit
`

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case commandsMsg:
		m.apply(msg.cmds)

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				m.refresh()
				if m.focusInput {
					return m, textarea.Blink
				}
				return m, nil
			}
		}
	}

	return m, nil
}

// apply folds a command batch into the view state.
func (m *ConsoleUI) apply(cmds []command.Command) {
	for _, c := range cmds {
		switch c := c.(type) {
		case command.UpdateLocation:
			m.location = c
			m.selected = 0
			m.appendLog(locationStyle, "→ "+c.LocationName)
		case command.UpdateInventory:
			m.inventory = c.Inventory
		case command.UpdateEntity:
			m.updateEntity(c.ID, c.State, c.Interactive)
		case command.SpawnEntity:
			m.updateEntity(c.ID, stateRef(game.StateWorld), nil)
		case command.ClearEntity:
			m.updateEntity(c.ID, stateRef(game.StateVoid), nil)
		case command.UpdateVesselTexture:
			m.vessels[c.VesselID] = c.Activated
		case command.PlaySound:
			m.appendLog(soundStyle, "♪ "+c.URL)
		case command.QuestActivated:
			m.quests = append(m.quests, questLine{id: c.QuestID, title: c.QuestTitle})
			m.appendLog(questStyle, "Quest started: "+c.QuestTitle)
		case command.QuestCompleted:
			for i := range m.quests {
				if m.quests[i].id == c.QuestID {
					m.quests[i].completed = true
				}
			}
			m.appendLog(questStyle, "Quest completed: "+c.QuestTitle)
		case command.ShowDialogue:
			seq, ok := m.dialogues[c.DialogueSequenceID]
			if !ok || len(seq.Dialogs) == 0 {
				m.appendLog(errorStyle, "Missing dialogue "+c.DialogueSequenceID)
				continue
			}
			m.dialogue = &dialogueState{seq: seq, npcID: c.NPCID}
		case command.Log:
			m.appendLog(logStyle, c.Message)
		default:
			// Scene renderer commands have no grid equivalent.
		}
	}
	if visible := len(m.visibleEntities()); m.selected >= visible && visible > 0 {
		m.selected = visible - 1
	}
}

func stateRef(s game.EntityState) *game.EntityState { return &s }

func (m *ConsoleUI) updateEntity(id string, state *game.EntityState, mode *game.Interactivity) {
	for i := range m.location.Entities {
		ent := &m.location.Entities[i]
		if ent.ID != id {
			continue
		}
		if state != nil {
			ent.State = *state
		}
		if mode != nil {
			ent.Interactive = *mode
		}
	}
}

func (m *ConsoleUI) appendLog(style lipgloss.Style, text string) {
	m.logLines = append(m.logLines, logLine{style: style, text: text})
	if len(m.logLines) > maxLogLines {
		m.logLines = m.logLines[len(m.logLines)-maxLogLines:]
	}
}

// visibleEntities are the entities of the current location that are in the world.
func (m ConsoleUI) visibleEntities() []command.EntityView {
	var out []command.EntityView
	for _, e := range m.location.Entities {
		if e.State == game.StateWorld {
			out = append(out, e)
		}
	}
	return out
}

func (m *ConsoleUI) resize() {
	gridWidth := int(float64(m.width)*0.7) - 4
	metaWidth := m.width - gridWidth - 6
	logHeight := m.height / 3

	m.gridViewport.Width = gridWidth - 2
	m.gridViewport.Height = m.height - logHeight - 6
	m.logViewport.Width = gridWidth - 2
	m.logViewport.Height = logHeight
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 4
	m.textarea.SetWidth(gridWidth - 4)
}

func (m *ConsoleUI) refresh() {
	if !m.ready {
		return
	}
	m.gridViewport.SetContent(m.renderGrid())
	m.metaViewport.SetContent(m.renderMeta())
	m.logViewport.SetContent(m.renderLog())
	m.logViewport.GotoBottom()
}

func (m ConsoleUI) plainLog() string {
	lines := make([]string, len(m.logLines))
	for i, l := range m.logLines {
		lines[i] = l.text
	}
	return strings.Join(lines, "\n")
}

var _ tea.Model = ConsoleUI{}
