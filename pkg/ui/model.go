package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gambitui/gambit/pkg/adaptive"
	"github.com/gambitui/gambit/pkg/geometry"
	"github.com/gambitui/gambit/pkg/layout"
	"github.com/gambitui/gambit/pkg/prefs"
)

// ContentLoadedMsg tells the dashboard that a saved game finished
// loading. Moves replace the current game and layout is re-derived for
// the new content.
type ContentLoadedMsg struct {
	Moves []string
}

// defaultElements is the managed region set with the minimum footprint
// each region needs before the engine may shrink it out of its row.
var defaultElements = []layout.ElementMetadata{
	{ID: adaptive.ElementBoard, Kind: layout.KindBoard, Priority: layout.BoardPriority},
	{ID: adaptive.ElementLeftControls, Kind: layout.KindControl, Priority: 20, MinWidth: 180, MinHeight: 140, CanStack: true, CanScroll: true},
	{ID: adaptive.ElementRightControls, Kind: layout.KindControl, Priority: 20, MinWidth: 180, MinHeight: 140, CanStack: true, CanScroll: true},
	{ID: adaptive.ElementMoveHistory, Kind: layout.KindInfo, Priority: 10, MinWidth: 200, MinHeight: 160, CanStack: true, CanScroll: true},
	{ID: adaptive.ElementAnalysisPanel, Kind: layout.KindInfo, Priority: 5, MinWidth: 200, MinHeight: 160, CanStack: true, CanScroll: true},
	{ID: adaptive.ElementSettingsMenu, Kind: layout.KindMenu, Priority: 1, MinWidth: 160, MinHeight: 60, CanStack: true, CanScroll: true},
}

// SetupElements mounts the managed regions in the host and registers
// them with the engine. Call once before Initialize.
func SetupElements(system *adaptive.System, host *Host) {
	y := 0.0
	for _, meta := range defaultElements {
		w, h := meta.MinWidth, meta.MinHeight
		if meta.Kind == layout.KindBoard {
			w, h = layout.DefaultBoardSize, layout.DefaultBoardSize
		}
		host.Mount(meta.ID, geometry.Position{X: 0, Y: y, Width: w, Height: h})
		system.RegisterElement(meta)
		y += h
	}
}

// DashboardModel is the program root: one chess shell wrapped around the
// adaptive layout engine, which decides where every panel goes.
type DashboardModel struct {
	system *adaptive.System
	host   *Host
	board  *Board
	theme  Theme
	store  *prefs.Store

	moveInput textinput.Model
	history   viewport.Model
	analysis  viewport.Model
	search    MoveSearchModel
	help      HelpOverlayModel
	debug     DebugOverlayModel
	settings  SettingsModel

	width   int
	height  int
	status  string
	backend bool
}

// NewDashboardModel wires the dashboard. The system must already have
// its elements registered and be initialized by the caller.
func NewDashboardModel(system *adaptive.System, host *Host, store *prefs.Store, theme Theme) DashboardModel {
	ti := textinput.New()
	ti.Placeholder = "b2b3"
	ti.Prompt = "> "
	ti.CharLimit = 4
	ti.Focus()

	m := DashboardModel{
		system:    system,
		host:      host,
		board:     NewBoard(),
		theme:     theme,
		store:     store,
		moveInput: ti,
		history:   viewport.New(24, 10),
		analysis:  viewport.New(24, 8),
		search:    NewMoveSearchModel(theme),
		help:      NewHelpOverlayModel(theme),
		debug:     NewDebugOverlayModel(theme),
		settings:  NewSettingsModel(store, theme),
	}
	m.status = "white to move"
	if store != nil {
		if v, err := store.GetBool(prefs.KeyBackendMode, false); err == nil {
			m.backend = v
		}
	}
	m.refreshPanels()
	return m
}

// WithMoves replays a saved game into a fresh board. Replay stops at the
// first rejected move and keeps the prefix.
func (m DashboardModel) WithMoves(moves []string) DashboardModel {
	board := NewBoard()
	for _, mv := range moves {
		if _, err := board.ApplyNotation(mv); err != nil {
			m.status = fmt.Sprintf("load stopped at %s: %v", mv, err)
			break
		}
	}
	m.board = board
	m.refreshPanels()
	return m
}

// Init implements tea.Model.
func (m DashboardModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		w, h := CellsToPixels(msg.Width, msg.Height)
		m.system.HandleResize(w, h, 1)
		if m.store != nil {
			_ = m.store.SaveWindowSize(w, h)
		}
		m.help.SetSize(msg.Width, msg.Height)
		m.debug.SetWidth(msg.Width)
		m.sizePanels()
		return m, nil

	case ContentLoadedMsg:
		m = m.WithMoves(msg.Moves)
		m.system.HandleContentLoad()
		return m, nil

	case SettingsAppliedMsg:
		m.theme = ThemeByName(msg.Theme)
		m.backend = msg.BackendMode
		m.search = NewMoveSearchModel(m.theme)
		m.help = NewHelpOverlayModel(m.theme)
		m.help.SetSize(m.width, m.height)
		m.debug = NewDebugOverlayModel(m.theme)
		m.debug.SetWidth(m.width)
		m.system.AnalyzeViewport()
		m.refreshPanels()
		return m, nil
	}

	// Modal surfaces swallow input while open.
	if m.settings.IsVisible() {
		var cmd tea.Cmd
		m.settings, cmd = m.settings.Update(msg)
		return m, cmd
	}
	if m.help.IsVisible() {
		var cmd tea.Cmd
		m.help, cmd = m.help.Update(msg)
		return m, cmd
	}
	if m.search.Active() {
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		m.refreshPanels()
		return m, cmd
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		return m.handleKey(key)
	}
	return m, nil
}

func (m DashboardModel) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "ctrl+c", "q":
		m.system.Destroy()
		return m, tea.Quit

	case "?":
		m.help.Toggle()
		return m, nil

	case "s":
		cmd := m.settings.Open()
		return m, cmd

	case "d":
		m.debug.Toggle()
		m.debug.SetState(m.system.GetState())
		return m, nil

	case "y":
		if m.debug.IsVisible() {
			m.debug.SetState(m.system.GetState())
			m.debug.Yank()
			return m, nil
		}

	case "/":
		cmd := m.search.Open()
		return m, cmd

	case "j", "down":
		m.history.ScrollDown(1)
		m.syncScroll()
		return m, nil

	case "k", "up":
		m.history.ScrollUp(1)
		m.syncScroll()
		return m, nil

	case "enter":
		m.applyMoveInput()
		return m, nil
	}

	var cmd tea.Cmd
	m.moveInput, cmd = m.moveInput.Update(key)
	return m, cmd
}

func (m *DashboardModel) applyMoveInput() {
	text := strings.TrimSpace(m.moveInput.Value())
	if text == "" {
		return
	}
	move, err := m.board.ApplyNotation(text)
	if err != nil {
		m.status = err.Error()
		return
	}
	m.moveInput.SetValue("")
	if m.board.WhiteToMove() {
		m.status = fmt.Sprintf("%s — white to move", move.Notation())
	} else {
		m.status = fmt.Sprintf("%s — black to move", move.Notation())
	}
	m.refreshPanels()
}

// syncScroll mirrors the history viewport offset into the engine's
// scroll container so indicators stay truthful.
func (m *DashboardModel) syncScroll() {
	overflow := m.system.Overflow()
	for _, id := range overflow.Containers() {
		c, ok := overflow.Container(id)
		if !ok {
			continue
		}
		offset := m.history.ScrollPercent() * (c.ContentHeight() - c.MaxHeight)
		overflow.SetScrollOffset(c, offset)
		overflow.UpdateScrollIndicators(c)
	}
}

// refreshPanels rebuilds the derived panel content.
func (m *DashboardModel) refreshPanels() {
	m.search.SetTargets(m.board.MoveNotations())
	m.history.SetContent(strings.Join(m.search.Filtered(), "\n"))
	m.analysis.SetContent(m.analysisText())
}

// analysisText is the material-count summary panel.
func (m *DashboardModel) analysisText() string {
	values := map[Piece]int{'P': 1, 'N': 3, 'R': 5, 'Q': 9}
	white, black := 0, 0
	captures := make([]string, 0, 4)
	for _, mv := range m.board.Moves() {
		if mv.Capture == 0 {
			continue
		}
		captures = append(captures, mv.Capture.Glyph())
		upper := Piece(strings.ToUpper(string(rune(mv.Capture)))[0])
		if mv.Capture.White() {
			black += values[upper]
		} else {
			white += values[upper]
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "material  white +%d  black +%d\n", white, black)
	if len(captures) > 0 {
		b.WriteString("captured  " + strings.Join(captures, " "))
	} else {
		b.WriteString("no captures yet")
	}
	return b.String()
}

// cellRect reads an element's engine position in cells.
func (m DashboardModel) cellRect(id string) (x, y, w, h int, ok bool) {
	pos, found := m.host.CurrentPosition(id)
	if !found {
		return 0, 0, 0, 0, false
	}
	x, y, w, h = PixelsToCells(pos)
	return x, y, w, h, true
}

func (m *DashboardModel) sizePanels() {
	if _, _, w, h, ok := m.cellRect(adaptive.ElementMoveHistory); ok && w > 4 && h > 4 {
		m.history.Width = w - 2
		m.history.Height = h - 4
	}
	if _, _, w, h, ok := m.cellRect(adaptive.ElementAnalysisPanel); ok && w > 4 && h > 4 {
		m.analysis.Width = w - 2
		m.analysis.Height = h - 3
	}
}

// View implements tea.Model.
func (m DashboardModel) View() string {
	if m.width == 0 {
		return "measuring viewport..."
	}
	if m.settings.IsVisible() {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.settings.View())
	}
	if m.help.IsVisible() {
		return m.help.View()
	}

	st := m.system.GetState()

	boardView := m.renderBoard()
	panels := m.renderPanels(st)

	var body string
	strategy := layout.StrategyHorizontal
	if st.LayoutState != nil {
		strategy = st.LayoutState.Config.Strategy
	}
	switch strategy {
	case layout.StrategyVertical:
		body = lipgloss.JoinVertical(lipgloss.Left, boardView, panels)
	default:
		body = lipgloss.JoinHorizontal(lipgloss.Top, boardView, " ", panels)
	}

	sections := []string{body}
	if m.debug.IsVisible() {
		sections = append(sections, m.debug.View())
	}
	sections = append(sections, m.statusBar(st))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m DashboardModel) renderBoard() string {
	squareWidth := 4
	if _, _, w, _, ok := m.cellRect(adaptive.ElementBoard); ok && w >= BoardFiles*2 {
		squareWidth = (w - 2) / BoardFiles
	}
	if squareWidth > 8 {
		squareWidth = 8
	}
	return m.theme.PanelStyle().Render(m.board.Render(m.theme, squareWidth))
}

func (m DashboardModel) renderPanels(st adaptive.SystemState) string {
	title := m.theme.TitleStyle()

	historyBody := m.history.View()
	if search := m.search.View(); search != "" {
		historyBody = search + "\n" + historyBody
	}
	historyBody = m.withIndicators(historyBody)

	history := m.theme.PanelStyle().Render(
		title.Render("moves") + "\n" + historyBody)
	analysisTitle := "analysis"
	if m.backend {
		analysisTitle = "analysis (engine)"
	}
	analysis := m.theme.PanelStyle().Render(
		title.Render(analysisTitle) + "\n" + m.analysis.View())
	controls := m.theme.PanelStyle().Render(
		title.Render("play") + "\n" + m.moveInput.View() + "\n" +
			m.theme.MutedStyle().Render("? help  s settings  d debug"))

	scrolling := st.LayoutState != nil && st.LayoutState.Config.RequiresScrolling
	if scrolling {
		// Spilled panels stack into one scrolling column.
		return lipgloss.JoinVertical(lipgloss.Left, controls, history)
	}
	return lipgloss.JoinVertical(lipgloss.Left, controls, history, analysis)
}

// withIndicators frames scrollable content with the engine's overflow
// indicators.
func (m DashboardModel) withIndicators(body string) string {
	overflow := m.system.Overflow()
	ids := overflow.Containers()
	if len(ids) == 0 {
		return body
	}
	c, ok := overflow.Container(ids[0])
	if !ok {
		return body
	}
	ind := c.Indicators()
	style := m.theme.IndicatorStyle()
	if ind.TopVisible {
		body = style.Render("▲ more") + "\n" + body
	}
	if ind.BottomVisible {
		body = body + "\n" + style.Render("▼ more")
	}
	return body
}

func (m DashboardModel) statusBar(st adaptive.SystemState) string {
	left := m.status
	right := ""
	if st.LayoutState != nil {
		right = fmt.Sprintf("%s · board %.0fpx", st.LayoutState.Config.Strategy, st.LayoutState.Config.BoardSize.Width)
	}
	bar := left
	if right != "" {
		pad := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2*SpaceXS
		if pad < 1 {
			pad = 1
		}
		bar = left + strings.Repeat(" ", pad) + right
	}
	return m.theme.StatusBarStyle().Width(m.width).Render(bar)
}
