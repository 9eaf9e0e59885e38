package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func typeInto(m MoveSearchModel, text string) MoveSearchModel {
	for _, r := range text {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestMoveSearch_EmptyQueryShowsEverything(t *testing.T) {
	m := NewMoveSearchModel(DarkTheme())
	m.SetTargets([]string{"1. b2-b3", "1. c5-c4", "2. Nb1-c3"})

	got := m.Filtered()
	if len(got) != 3 {
		t.Fatalf("Filtered = %v, want all targets", got)
	}
}

func TestMoveSearch_FuzzyFilters(t *testing.T) {
	m := NewMoveSearchModel(DarkTheme())
	m.SetTargets([]string{"1. b2-b3", "1. c5-c4", "2. Nb1-c3", "2. Qc6-d5"})
	m.Open()
	m = typeInto(m, "Nb")

	got := m.Filtered()
	if len(got) != 1 || got[0] != "2. Nb1-c3" {
		t.Fatalf("Filtered = %v, want the knight move only", got)
	}
}

func TestMoveSearch_EscClearsFilter(t *testing.T) {
	m := NewMoveSearchModel(DarkTheme())
	m.SetTargets([]string{"1. b2-b3", "1. c5-c4"})
	m.Open()
	m = typeInto(m, "c5")

	if len(m.Filtered()) != 1 {
		t.Fatalf("filter not applied: %v", m.Filtered())
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.Active() {
		t.Error("esc left search active")
	}
	if len(m.Filtered()) != 2 {
		t.Errorf("esc did not clear the filter: %v", m.Filtered())
	}
}

func TestMoveSearch_EnterKeepsFilter(t *testing.T) {
	m := NewMoveSearchModel(DarkTheme())
	m.SetTargets([]string{"1. b2-b3", "1. c5-c4"})
	m.Open()
	m = typeInto(m, "b2")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if m.Active() {
		t.Error("enter left the input focused")
	}
	if len(m.Filtered()) != 1 {
		t.Errorf("enter dropped the filter: %v", m.Filtered())
	}
}
