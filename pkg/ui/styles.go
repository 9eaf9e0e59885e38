package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// ══════════════════════════════════════════════════════════════════════════════
// DESIGN TOKENS - Consistent spacing, colors, and visual language
// ══════════════════════════════════════════════════════════════════════════════

// Spacing constants for consistent layout (in characters)
const (
	SpaceXS = 1
	SpaceSM = 2
	SpaceMD = 3
	SpaceLG = 4
)

// Theme carries the palette every panel renders with. Dark is the
// default; light swaps the base pair and keeps the accents.
type Theme struct {
	Dark bool

	Bg          lipgloss.Color
	BgSubtle    lipgloss.Color
	BgHighlight lipgloss.Color
	Text        lipgloss.Color
	Subtext     lipgloss.Color
	Muted       lipgloss.Color

	Primary lipgloss.Color
	Info    lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Danger  lipgloss.Color

	BoardLight lipgloss.Color
	BoardDark  lipgloss.Color
	PieceWhite lipgloss.Color
	PieceBlack lipgloss.Color
}

// DarkTheme is the Dracula-inspired default.
func DarkTheme() Theme {
	return Theme{
		Dark:        true,
		Bg:          lipgloss.Color("#282A36"),
		BgSubtle:    lipgloss.Color("#363949"),
		BgHighlight: lipgloss.Color("#44475A"),
		Text:        lipgloss.Color("#F8F8F2"),
		Subtext:     lipgloss.Color("#BFBFBF"),
		Muted:       lipgloss.Color("#6272A4"),
		Primary:     lipgloss.Color("#BD93F9"),
		Info:        lipgloss.Color("#8BE9FD"),
		Success:     lipgloss.Color("#50FA7B"),
		Warning:     lipgloss.Color("#FFB86C"),
		Danger:      lipgloss.Color("#FF5555"),
		BoardLight:  lipgloss.Color("#6272A4"),
		BoardDark:   lipgloss.Color("#44475A"),
		PieceWhite:  lipgloss.Color("#F8F8F2"),
		PieceBlack:  lipgloss.Color("#1E1F29"),
	}
}

// LightTheme keeps the accent hues on a paper base.
func LightTheme() Theme {
	return Theme{
		Dark:        false,
		Bg:          lipgloss.Color("#FAFAFA"),
		BgSubtle:    lipgloss.Color("#EAEAEF"),
		BgHighlight: lipgloss.Color("#D5D5E0"),
		Text:        lipgloss.Color("#282A36"),
		Subtext:     lipgloss.Color("#4A4A58"),
		Muted:       lipgloss.Color("#8B8BA0"),
		Primary:     lipgloss.Color("#7C4DCC"),
		Info:        lipgloss.Color("#0F8BA8"),
		Success:     lipgloss.Color("#1F9A4C"),
		Warning:     lipgloss.Color("#C47F17"),
		Danger:      lipgloss.Color("#D3323C"),
		BoardLight:  lipgloss.Color("#C8CAD9"),
		BoardDark:   lipgloss.Color("#8B8BA0"),
		PieceWhite:  lipgloss.Color("#FAFAFA"),
		PieceBlack:  lipgloss.Color("#282A36"),
	}
}

// ThemeByName maps a stored preference to a theme; unknown names get dark.
func ThemeByName(name string) Theme {
	if name == "light" {
		return LightTheme()
	}
	return DarkTheme()
}

// ══════════════════════════════════════════════════════════════════════════════
// PANEL STYLES - For the adaptive split layout
// ══════════════════════════════════════════════════════════════════════════════

// PanelStyle is the default style for unfocused panels
func (t Theme) PanelStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BgHighlight)
}

// PanelActiveStyle highlights the focused panel
func (t Theme) PanelActiveStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Primary)
}

// TitleStyle renders panel headers
func (t Theme) TitleStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Primary)
}

// MutedStyle renders secondary text
func (t Theme) MutedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Muted)
}

// StatusBarStyle renders the bottom status line
func (t Theme) StatusBarStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(t.Subtext).
		Background(t.BgSubtle).
		Padding(0, SpaceXS)
}

// IndicatorStyle renders scroll indicators
func (t Theme) IndicatorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Info)
}
