package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"
)

// MoveSearchModel filters the move history panel with fuzzy matching.
// "/" opens it, Esc closes, and the history panel shows only matching
// moves while a query is active.
type MoveSearchModel struct {
	input   textinput.Model
	active  bool
	theme   Theme
	targets []string
	matches []fuzzy.Match
}

// NewMoveSearchModel creates an inactive search box.
func NewMoveSearchModel(theme Theme) MoveSearchModel {
	ti := textinput.New()
	ti.Placeholder = "filter moves"
	ti.Prompt = "/ "
	ti.CharLimit = 32
	return MoveSearchModel{input: ti, theme: theme}
}

// Active reports whether the search box has focus.
func (m MoveSearchModel) Active() bool { return m.active }

// Query returns the current filter text.
func (m MoveSearchModel) Query() string { return m.input.Value() }

// Open focuses the search box.
func (m *MoveSearchModel) Open() tea.Cmd {
	m.active = true
	return m.input.Focus()
}

// Close blurs and clears the filter.
func (m *MoveSearchModel) Close() {
	m.active = false
	m.input.Blur()
	m.input.SetValue("")
	m.matches = nil
}

// SetTargets replaces the searchable move list.
func (m *MoveSearchModel) SetTargets(moves []string) {
	m.targets = append([]string(nil), moves...)
	m.refilter()
}

// Update handles input while active.
func (m MoveSearchModel) Update(msg tea.Msg) (MoveSearchModel, tea.Cmd) {
	if !m.active {
		return m, nil
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			m.Close()
			return m, nil
		case "enter":
			m.active = false
			m.input.Blur()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.refilter()
	return m, cmd
}

func (m *MoveSearchModel) refilter() {
	query := strings.TrimSpace(m.input.Value())
	if query == "" {
		m.matches = nil
		return
	}
	m.matches = fuzzy.Find(query, m.targets)
}

// Filtered returns the visible history lines: all of them when no query
// is active, the fuzzy matches otherwise (best first).
func (m MoveSearchModel) Filtered() []string {
	if strings.TrimSpace(m.input.Value()) == "" {
		return append([]string(nil), m.targets...)
	}
	out := make([]string, 0, len(m.matches))
	for _, match := range m.matches {
		out = append(out, match.Str)
	}
	return out
}

// View renders the input line, empty when inactive and no filter is set.
func (m MoveSearchModel) View() string {
	if !m.active && m.input.Value() == "" {
		return ""
	}
	return m.input.View()
}
