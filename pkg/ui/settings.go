package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/gambitui/gambit/pkg/prefs"
)

// SettingsAppliedMsg is emitted when the settings form completes; the
// dashboard re-themes and re-analyzes in response.
type SettingsAppliedMsg struct {
	Theme        string
	SmoothScroll bool
	BackendMode  bool
}

// SettingsModel wraps the settings form and persists the result.
type SettingsModel struct {
	form    *huh.Form
	store   *prefs.Store
	visible bool

	theme   string
	smooth  bool
	backend bool
}

// NewSettingsModel creates a hidden settings form seeded from the store.
// store may be nil, in which case choices apply for the session only.
func NewSettingsModel(store *prefs.Store, theme Theme) SettingsModel {
	m := SettingsModel{store: store, smooth: true, theme: prefs.ThemeDark}
	if !theme.Dark {
		m.theme = prefs.ThemeLight
	}
	if store != nil {
		if v, err := store.Get(prefs.KeyTheme, m.theme); err == nil {
			m.theme = v
		}
		if v, err := store.GetBool(prefs.KeySmoothScroll, true); err == nil {
			m.smooth = v
		}
		if v, err := store.GetBool(prefs.KeyBackendMode, false); err == nil {
			m.backend = v
		}
	}
	return m
}

// IsVisible returns true while the form is open.
func (m SettingsModel) IsVisible() bool { return m.visible }

// Open builds a fresh form and shows it.
func (m *SettingsModel) Open() tea.Cmd {
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("theme").
				Title("Theme").
				Options(
					huh.NewOption("Dark", prefs.ThemeDark),
					huh.NewOption("Light", prefs.ThemeLight),
				).
				Value(&m.theme),
			huh.NewConfirm().
				Key("smooth").
				Title("Smooth scrolling").
				Value(&m.smooth),
			huh.NewConfirm().
				Key("backend").
				Title("Engine analysis backend").
				Description("Label analysis output as engine-provided").
				Value(&m.backend),
		),
	)
	m.visible = true
	return m.form.Init()
}

// Update drives the form; on completion it persists and announces the
// choices.
func (m SettingsModel) Update(msg tea.Msg) (SettingsModel, tea.Cmd) {
	if !m.visible || m.form == nil {
		return m, nil
	}

	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
		m.visible = false
		return m, nil
	}

	next, cmd := m.form.Update(msg)
	if f, ok := next.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.visible = false
		if m.store != nil {
			// Persist best-effort; a read-only config dir should not
			// break the session.
			_ = m.store.Set(prefs.KeyTheme, m.theme)
			_ = m.store.SetBool(prefs.KeySmoothScroll, m.smooth)
			_ = m.store.SetBool(prefs.KeyBackendMode, m.backend)
		}
		applied := SettingsAppliedMsg{Theme: m.theme, SmoothScroll: m.smooth, BackendMode: m.backend}
		return m, tea.Batch(cmd, func() tea.Msg { return applied })
	}

	return m, cmd
}

// View renders the form.
func (m SettingsModel) View() string {
	if !m.visible || m.form == nil {
		return ""
	}
	return m.form.View()
}
