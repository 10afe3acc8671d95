package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrCancelled is returned when the user leaves the checklist without submitting.
var ErrCancelled = errors.New("selection cancelled")

type checklistKeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Toggle    key.Binding
	ToggleAll key.Binding
	Submit    key.Binding
	Cancel    key.Binding
	Backspace key.Binding
}

func newChecklistKeyMap() checklistKeyMap {
	return checklistKeyMap{
		Up:        key.NewBinding(key.WithKeys("up", "ctrl+p"), key.WithHelp("↑", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "ctrl+n"), key.WithHelp("↓", "down")),
		Toggle:    key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "toggle")),
		ToggleAll: key.NewBinding(key.WithKeys("ctrl+a"), key.WithHelp("ctrl+a", "all/none")),
		Submit:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
		Cancel:    key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "cancel")),
		Backspace: key.NewBinding(key.WithKeys("backspace")),
	}
}

func (k checklistKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Toggle, k.ToggleAll, k.Submit, k.Cancel}
}

// Checklist is the bubbletea model around a Picker.
type Checklist struct {
	title     string
	picker    *Picker
	keys      checklistKeyMap
	width     int
	submitted bool
	cancelled bool
}

func NewChecklist(title string, items []Item, preselected []int64) Checklist {
	return Checklist{
		title:  title,
		picker: NewPicker(items, preselected),
		keys:   newChecklistKeyMap(),
	}
}

func (m Checklist) Init() tea.Cmd { return nil }

func (m Checklist) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Cancel):
			m.cancelled = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Submit):
			m.submitted = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			m.picker.CursorUp()
		case key.Matches(msg, m.keys.Down):
			m.picker.CursorDown()
		case key.Matches(msg, m.keys.Toggle):
			m.picker.Toggle()
		case key.Matches(msg, m.keys.ToggleAll):
			m.picker.ToggleAll()
		case key.Matches(msg, m.keys.Backspace):
			m.picker.Backspace()
		case msg.Type == tea.KeyRunes:
			m.picker.AppendQuery(string(msg.Runes))
		}
	}
	return m, nil
}

func (m Checklist) View() string {
	if m.submitted || m.cancelled {
		return ""
	}
	var lines []string
	lines = append(lines, TitleStyle.Render(m.title), "")

	filter := MutedStyle.Render("(type to filter)")
	if q := strings.TrimSpace(m.picker.Query()); q != "" {
		filter = filterInputStyle.Render(q)
	}
	lines = append(lines, filterLabelStyle.Render("Filter: ")+filter)

	visible := m.picker.Visible()
	if len(visible) == 0 {
		lines = append(lines, MutedStyle.Render("  no matching accounts"))
	}
	for i, it := range visible {
		mark := "[ ]"
		if m.picker.IsSelected(it.ID) {
			mark = checkedStyle.Render("[x]")
		}
		row := "  " + mark + " " + labelStyle.Render(it.Label)
		if meta := strings.TrimSpace(it.Meta); meta != "" {
			row += metaStyle.Render(" - " + meta)
		}
		if i == m.picker.Cursor() {
			row = cursorRowStyle.Render(padStyledLine(row, m.width-4))
		}
		lines = append(lines, row)
	}

	var help []string
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		help = append(help, h.Key+" "+h.Desc)
	}
	lines = append(lines, "", footerStyle.Render(strings.Join(help, "  ")),
		footerStyle.Render(fmt.Sprintf("%d of %d selected", len(m.picker.Selected()), len(m.picker.items))))

	return frameStyle.Render(strings.Join(lines, "\n"))
}

// Selected returns the checked ids once the user has submitted.
func (m Checklist) Selected() ([]int64, error) {
	if !m.submitted {
		return nil, ErrCancelled
	}
	return m.picker.Selected(), nil
}

// RunChecklist shows the checklist on in/out and returns the submitted ids.
func RunChecklist(ctx context.Context, title string, items []Item, preselected []int64, in io.Reader, out io.Writer) ([]int64, error) {
	p := tea.NewProgram(NewChecklist(title, items, preselected),
		tea.WithContext(ctx), tea.WithInput(in), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("run checklist: %w", err)
	}
	m, ok := final.(Checklist)
	if !ok {
		return nil, fmt.Errorf("run checklist: unexpected model %T", final)
	}
	return m.Selected()
}

func padStyledLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}
