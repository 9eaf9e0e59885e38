package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

const helpMarkdown = `# Gambit

Adaptive-layout Los Alamos chess.

## Moves

Type coordinates and press enter: ` + "`b2b3`" + ` moves the pawn on b2
to b3. White moves first.

## Keys

| Key | Action |
|-----|--------|
| ` + "`/`" + ` | filter the move history |
| ` + "`s`" + ` | settings |
| ` + "`d`" + ` | debug overlay |
| ` + "`y`" + ` | copy debug state to clipboard |
| ` + "`j/k`" + ` | scroll the side panels |
| ` + "`?`" + ` | toggle this help |
| ` + "`q`" + ` | quit |

## Layout

The window is re-analyzed on every resize: the board keeps as much
square space as the panels allow, and panels that no longer fit stack
into a scrolling column.
`

// HelpOverlayModel shows the rendered manual over the dashboard.
type HelpOverlayModel struct {
	visible  bool
	width    int
	height   int
	theme    Theme
	rendered string
}

// NewHelpOverlayModel creates a hidden help overlay.
func NewHelpOverlayModel(theme Theme) HelpOverlayModel {
	return HelpOverlayModel{theme: theme}
}

// Toggle flips visibility.
func (m *HelpOverlayModel) Toggle() {
	m.visible = !m.visible
}

// IsVisible returns true if the overlay is showing.
func (m HelpOverlayModel) IsVisible() bool {
	return m.visible
}

// SetSize sets dimensions and re-renders the markdown at the new wrap
// width.
func (m *HelpOverlayModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.rendered = ""
}

// Update handles input: any key closes the overlay.
func (m HelpOverlayModel) Update(msg tea.Msg) (HelpOverlayModel, tea.Cmd) {
	if !m.visible {
		return m, nil
	}
	if _, ok := msg.(tea.KeyMsg); ok {
		m.visible = false
	}
	return m, nil
}

// View renders the help overlay.
func (m HelpOverlayModel) View() string {
	if !m.visible {
		return ""
	}

	if m.rendered == "" {
		m.rendered = m.renderMarkdown()
	}

	frame := m.theme.PanelActiveStyle().
		Padding(0, SpaceSM).
		MaxWidth(m.width)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
		frame.Render(m.rendered))
}

func (m HelpOverlayModel) renderMarkdown() string {
	wrap := m.width - 2*SpaceLG
	if wrap < 20 {
		wrap = 20
	}
	style := "dark"
	if !m.theme.Dark {
		style = "light"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return helpMarkdown
	}
	out, err := r.Render(helpMarkdown)
	if err != nil {
		return helpMarkdown
	}
	return out
}
