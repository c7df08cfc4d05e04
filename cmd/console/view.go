package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jwebster45206/quest-engine/pkg/command"
	"github.com/jwebster45206/quest-engine/pkg/game"
)

const cellWidth = 18

var (
	gridPanelStyle = lipgloss.NewStyle().
			PaddingTop(1).
			PaddingLeft(3)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(1).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	locationStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	questStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	soundStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	logStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	cellStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Width(cellWidth-2).
			Align(lipgloss.Center)

	selectedCellStyle = cellStyle.
				BorderForeground(lipgloss.Color("205")).
				Bold(true)

	dialogueStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)

	modalSelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey
)

// Casers keep state, so they are only used from the render path.
var (
	upperCaser = cases.Upper(language.English)
	titleCaser = cases.Title(language.English)
)

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	gridWidth := int(float64(m.width)*0.7) - 4
	metaWidth := m.width - gridWidth - 6

	footer := promptStyle.Render("↑/↓/←/→ select • enter interact • tab command line • q quit")
	if m.focusInput {
		footer = m.textarea.View()
	}

	gridPanel := gridPanelStyle.Width(gridWidth).Height(m.height - 2).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.gridViewport.View(),
			separatorStyle.Render(strings.Repeat("─", max(gridWidth-4, 1))),
			m.logViewport.View(),
			footer,
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, gridPanel, metaPanel)
}

// renderGrid draws the current location and, when one is open, the dialogue box.
func (m ConsoleUI) renderGrid() string {
	var content strings.Builder
	name := m.location.LocationName
	if name == "" {
		name = "Nowhere"
	}
	content.WriteString(titleStyle.Render(upperCaser.String(name)) + "\n\n")

	visible := m.visibleEntities()
	if len(visible) == 0 {
		content.WriteString(promptStyle.Render("There is nothing here.") + "\n")
	}

	cols := max(m.gridViewport.Width/cellWidth, 1)
	var row []string
	for i, ent := range visible {
		row = append(row, m.renderCell(ent, i == m.selected && m.dialogue == nil))
		if len(row) == cols {
			content.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, row...) + "\n")
			row = nil
		}
	}
	if len(row) > 0 {
		content.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, row...) + "\n")
	}

	if m.dialogue != nil {
		content.WriteString("\n" + m.renderDialogue())
	}
	return content.String()
}

func (m ConsoleUI) renderCell(ent command.EntityView, selected bool) string {
	label := glyph(ent.Kind)
	if ent.Kind == game.KindItem && m.vessels[ent.ID] {
		label = "✿"
	}
	text := label + " " + ent.Name
	if ent.Interactive == game.NotInteractive {
		text = promptStyle.Render(text)
	}
	if selected {
		return selectedCellStyle.Render(text)
	}
	return cellStyle.Render(text)
}

func glyph(kind game.EntityKind) string {
	switch kind {
	case game.KindNPC:
		return "☺"
	case game.KindPortal:
		return "⇨"
	default:
		return "◆"
	}
}

func (m ConsoleUI) renderDialogue() string {
	d := m.dialogue
	if d.index < 0 || d.index >= len(d.seq.Dialogs) {
		return ""
	}
	dialog := d.seq.Dialogs[d.index]
	width := max(m.gridViewport.Width-6, 20)

	var content strings.Builder
	if dialog.Speaker != "" {
		content.WriteString(speakerStyle.Render(dialog.Speaker+":") + " ")
	}
	content.WriteString(wordwrap.String(dialog.Text, width) + "\n")
	if len(dialog.Buttons) == 0 {
		hint := "enter to continue"
		if d.seq.IsTerminal(d.index) {
			hint = "enter to close"
		}
		content.WriteString("\n" + promptStyle.Render(hint))
	}
	for i, b := range dialog.Buttons {
		line := fmt.Sprintf("  %s", b.Text)
		if i == d.button {
			line = modalSelectedItemStyle.Render(fmt.Sprintf("▶ %s", b.Text))
		}
		content.WriteString("\n" + line)
	}
	return dialogueStyle.Width(width + 2).Render(content.String())
}

// renderMeta draws the inventory and the quest log.
func (m ConsoleUI) renderMeta() string {
	var content strings.Builder
	width := max(m.metaViewport.Width, 10)

	content.WriteString(titleStyle.Render("INVENTORY") + "\n\n")
	if len(m.inventory) == 0 {
		content.WriteString(promptStyle.Render("Empty") + "\n")
	}
	for _, entry := range m.inventory {
		content.WriteString(wordwrap.String("• "+entry.Name, width) + "\n")
	}

	content.WriteString("\n" + titleStyle.Render("QUESTS") + "\n\n")
	if len(m.quests) == 0 {
		content.WriteString(promptStyle.Render("None") + "\n")
	}
	for _, q := range m.quests {
		line := "○ " + titleCaser.String(q.title)
		if q.completed {
			line = promptStyle.Render("● " + titleCaser.String(q.title))
		}
		content.WriteString(wordwrap.String(line, width) + "\n")
	}

	if m.status != "" {
		content.WriteString("\n" + questStyle.Render(m.status) + "\n")
	}
	return content.String()
}

func (m ConsoleUI) renderLog() string {
	width := max(m.logViewport.Width-2, 20)
	lines := make([]string, len(m.logLines))
	for i, l := range m.logLines {
		lines[i] = l.style.Render(wordwrap.String(l.text, width))
	}
	return strings.Join(lines, "\n")
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit Game?"))
	content.WriteString("\n\n")
	content.WriteString("Are you sure you want to quit your adventure?")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}
