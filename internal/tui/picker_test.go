package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

func testItems() []Item {
	return []Item{
		{ID: 1, Label: "Giro", Meta: "Assets:Giro (EUR)"},
		{ID: 2, Label: "Kreditkarte", Meta: "Assets:Kreditkarte (EUR)"},
		{ID: 5, Label: "Tagesgeld", Meta: "Assets:Tagesgeld (EUR)"},
	}
}

func TestFuzzyMatchScoreRanking(t *testing.T) {
	tests := []struct {
		name   string
		a, b   string
		query  string
	}{
		{name: "exact beats prefix", a: "Giro", b: "Giro Plus", query: "giro"},
		{name: "prefix beats non-prefix", a: "Tagesgeld", b: "Depot Tagesgeld", query: "ta"},
		{name: "consecutive beats split", a: "Karte", b: "Kasse Rate", query: "kar"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			okA, scoreA := fuzzyMatchScore(tt.a, tt.query)
			okB, scoreB := fuzzyMatchScore(tt.b, tt.query)
			require.True(t, okA)
			require.True(t, okB)
			require.Greater(t, scoreA, scoreB)
		})
	}

	ok, _ := fuzzyMatchScore("Giro", "xyz")
	require.False(t, ok)
}

func TestPickerPreselectionIgnoresUnknownIDs(t *testing.T) {
	p := NewPicker(testItems(), []int64{2, 99})
	require.Equal(t, []int64{2}, p.Selected())
}

func TestPickerToggleAndCursor(t *testing.T) {
	p := NewPicker(testItems(), nil)
	require.False(t, p.CursorUp())
	p.Toggle()
	require.True(t, p.CursorDown())
	require.True(t, p.CursorDown())
	require.False(t, p.CursorDown(), "cursor clamps at the last row")
	p.Toggle()
	require.Equal(t, []int64{1, 5}, p.Selected())

	p.Toggle()
	require.Equal(t, []int64{1}, p.Selected())
}

func TestPickerFilterKeepsHiddenSelections(t *testing.T) {
	p := NewPicker(testItems(), []int64{1})
	p.SetQuery("karte")
	require.Len(t, p.Visible(), 1)
	require.Equal(t, int64(2), p.Visible()[0].ID)
	p.Toggle()
	require.Equal(t, []int64{1, 2}, p.Selected())

	p.Backspace()
	require.Equal(t, "kart", p.Query())
	p.SetQuery("")
	require.Len(t, p.Visible(), 3)
}

func TestPickerFilterNoMatchClampsCursor(t *testing.T) {
	p := NewPicker(testItems(), nil)
	p.CursorDown()
	p.SetQuery("zzz")
	require.Empty(t, p.Visible())
	require.Zero(t, p.Cursor())
	p.Toggle()
	require.Empty(t, p.Selected())
}

func TestPickerToggleAll(t *testing.T) {
	p := NewPicker(testItems(), []int64{1})
	p.ToggleAll()
	require.Equal(t, []int64{1, 2, 5}, p.Selected())
	p.ToggleAll()
	require.Empty(t, p.Selected())
}

func press(t *testing.T, m tea.Model, msgs ...tea.KeyMsg) tea.Model {
	t.Helper()
	for _, msg := range msgs {
		m, _ = m.Update(msg)
	}
	return m
}

func TestChecklistSubmit(t *testing.T) {
	var m tea.Model = NewChecklist("Accounts", testItems(), []int64{1})
	m = press(t, m,
		tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}},
		tea.KeyMsg{Type: tea.KeyUp},
		tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}},
	)
	require.Contains(t, m.View(), "Kreditkarte")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	require.Empty(t, m.View())

	ids, err := m.(Checklist).Selected()
	require.NoError(t, err)
	require.Equal(t, []int64{2}, ids)
}

func TestChecklistTypingFilters(t *testing.T) {
	var m tea.Model = NewChecklist("Accounts", testItems(), nil)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("tag")})
	view := m.View()
	require.Contains(t, view, "Tagesgeld")
	require.NotContains(t, view, "Kreditkarte")

	m = press(t, m, tea.KeyMsg{Type: tea.KeyBackspace}, tea.KeyMsg{Type: tea.KeyBackspace}, tea.KeyMsg{Type: tea.KeyBackspace})
	require.Contains(t, m.View(), "Kreditkarte")
}

func TestChecklistCancel(t *testing.T) {
	var m tea.Model = NewChecklist("Accounts", testItems(), []int64{1, 2})
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	_, err := m.(Checklist).Selected()
	require.ErrorIs(t, err, ErrCancelled)
}
