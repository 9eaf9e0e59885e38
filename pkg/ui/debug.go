package ui

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"

	"github.com/gambitui/gambit/pkg/adaptive"
)

// DebugOverlayModel shows the engine's introspection snapshot: current
// strategy, board size, breakpoints, cache and performance counters, and
// the tail of the error log. "y" copies the full snapshot as JSON.
type DebugOverlayModel struct {
	visible bool
	width   int
	theme   Theme
	state   adaptive.SystemState
	notice  string
}

// NewDebugOverlayModel creates a hidden debug overlay.
func NewDebugOverlayModel(theme Theme) DebugOverlayModel {
	return DebugOverlayModel{theme: theme}
}

// Toggle flips visibility.
func (m *DebugOverlayModel) Toggle() {
	m.visible = !m.visible
	m.notice = ""
}

// IsVisible returns true if the overlay is showing.
func (m DebugOverlayModel) IsVisible() bool { return m.visible }

// SetWidth sets the render width.
func (m *DebugOverlayModel) SetWidth(width int) { m.width = width }

// SetState refreshes the displayed snapshot.
func (m *DebugOverlayModel) SetState(st adaptive.SystemState) {
	m.state = st
}

// Yank copies the snapshot to the system clipboard as indented JSON.
func (m *DebugOverlayModel) Yank() {
	data, err := json.MarshalIndent(m.state, "", "  ")
	if err != nil {
		m.notice = "marshal failed: " + err.Error()
		return
	}
	if err := clipboard.WriteAll(string(data)); err != nil {
		m.notice = "clipboard unavailable: " + err.Error()
		return
	}
	m.notice = fmt.Sprintf("copied %d bytes", len(data))
}

// View renders the overlay panel.
func (m DebugOverlayModel) View() string {
	if !m.visible {
		return ""
	}

	var b strings.Builder
	title := m.theme.TitleStyle()
	muted := m.theme.MutedStyle()

	b.WriteString(title.Render("engine state"))
	b.WriteString("\n")

	if ls := m.state.LayoutState; ls != nil {
		fmt.Fprintf(&b, "viewport  %gx%g (%s)\n",
			ls.Viewport.Width, ls.Viewport.Height, ls.Viewport.Orientation)
		fmt.Fprintf(&b, "strategy  %s  board %gpx  scroll=%v  valid=%v\n",
			ls.Config.Strategy, ls.Config.BoardSize.Width,
			ls.Config.RequiresScrolling, ls.IsValid)
	} else {
		b.WriteString(muted.Render("no layout state yet"))
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "breakpoints %d  cache hit/miss %d/%d\n",
		len(m.state.Breakpoints),
		m.state.CacheStats.Hits, m.state.CacheStats.Misses)
	fmt.Fprintf(&b, "passes %d  p95 %.1fms  over-budget %d\n",
		m.state.PerfStats.Passes, m.state.PerfStats.P95Millis,
		m.state.PerfStats.BudgetExceeded)
	fmt.Fprintf(&b, "errors %d", m.state.ErrorStats.Total)

	tail := m.state.ErrorLog
	if len(tail) > 3 {
		tail = tail[len(tail)-3:]
	}
	for _, e := range tail {
		line := fmt.Sprintf("  [%s] %s", e.Category, e.Message)
		b.WriteString("\n")
		b.WriteString(muted.Render(m.fit(line)))
	}

	if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(m.theme.IndicatorStyle().Render(m.notice))
	}

	return m.theme.PanelStyle().Padding(0, SpaceXS).Render(b.String())
}

// fit truncates a line to the overlay width, tail-ellipsized.
func (m DebugOverlayModel) fit(line string) string {
	limit := m.width - 2*SpaceSM
	if limit <= 0 || runewidth.StringWidth(line) <= limit {
		return line
	}
	return truncate.StringWithTail(line, uint(limit), "…")
}
