// Package tui holds the interactive terminal pieces of mm2ledger.
package tui

import (
	"sort"
	"strings"
)

// Item is one selectable row.
type Item struct {
	ID    int64
	Label string
	Meta  string
}

// Picker is the filter, cursor and selection state of a multi-select list,
// independent of any terminal.
type Picker struct {
	items    []Item
	filtered []Item
	query    string
	cursor   int
	selected map[int64]bool
}

type scoredItem struct {
	item  Item
	score int
}

// NewPicker returns a picker over items with preselected ids checked.
// Preselected ids that are not among items are ignored.
func NewPicker(items []Item, preselected []int64) *Picker {
	p := &Picker{
		items:    append([]Item(nil), items...),
		selected: make(map[int64]bool),
	}
	known := make(map[int64]bool, len(items))
	for _, it := range items {
		known[it.ID] = true
	}
	for _, id := range preselected {
		if known[id] {
			p.selected[id] = true
		}
	}
	p.rebuildFiltered()
	return p
}

func (p *Picker) Query() string { return p.query }

// Visible returns the items matching the current filter, best match first.
func (p *Picker) Visible() []Item { return p.filtered }

func (p *Picker) Cursor() int { return p.cursor }

func (p *Picker) SetQuery(q string) {
	p.query = q
	p.rebuildFiltered()
}

func (p *Picker) AppendQuery(s string) { p.SetQuery(p.query + s) }

func (p *Picker) Backspace() {
	if p.query == "" {
		return
	}
	r := []rune(p.query)
	p.SetQuery(string(r[:len(r)-1]))
}

func (p *Picker) CursorUp() bool {
	if p.cursor > 0 {
		p.cursor--
		return true
	}
	return false
}

func (p *Picker) CursorDown() bool {
	if p.cursor < len(p.filtered)-1 {
		p.cursor++
		return true
	}
	return false
}

// Toggle flips the item under the cursor.
func (p *Picker) Toggle() {
	if len(p.filtered) == 0 {
		return
	}
	id := p.filtered[p.cursor].ID
	if p.selected[id] {
		delete(p.selected, id)
	} else {
		p.selected[id] = true
	}
}

// ToggleAll checks every visible item, or clears them when all are checked.
func (p *Picker) ToggleAll() {
	all := true
	for _, it := range p.filtered {
		if !p.selected[it.ID] {
			all = false
			break
		}
	}
	for _, it := range p.filtered {
		if all {
			delete(p.selected, it.ID)
		} else {
			p.selected[it.ID] = true
		}
	}
}

func (p *Picker) IsSelected(id int64) bool { return p.selected[id] }

// Selected returns the checked ids in ascending order, hidden ones included.
func (p *Picker) Selected() []int64 {
	out := make([]int64, 0, len(p.selected))
	for id := range p.selected {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (p *Picker) rebuildFiltered() {
	q := strings.TrimSpace(p.query)
	scored := make([]scoredItem, 0, len(p.items))
	for _, it := range p.items {
		matched, score := fuzzyMatchScore(it.Label+" "+it.Meta, q)
		if !matched {
			continue
		}
		scored = append(scored, scoredItem{item: it, score: score})
	}
	if q != "" {
		sort.SliceStable(scored, func(i, j int) bool {
			return scored[i].score > scored[j].score
		})
	}
	p.filtered = p.filtered[:0]
	for _, s := range scored {
		p.filtered = append(p.filtered, s.item)
	}
	if p.cursor > len(p.filtered)-1 {
		p.cursor = len(p.filtered) - 1
	}
	if p.cursor < 0 {
		p.cursor = 0
	}
}

// fuzzyMatchScore reports whether query is a case-insensitive subsequence of
// label, scoring prefix, consecutive and exact matches higher.
func fuzzyMatchScore(label, query string) (bool, int) {
	if query == "" {
		return true, 0
	}
	labelLower := strings.ToLower(label)
	queryLower := strings.ToLower(query)

	matchIdx := make([]int, 0, len(queryLower))
	searchFrom := 0
	for i := 0; i < len(queryLower); i++ {
		ch := queryLower[i]
		found := false
		for j := searchFrom; j < len(labelLower); j++ {
			if labelLower[j] == ch {
				matchIdx = append(matchIdx, j)
				searchFrom = j + 1
				found = true
				break
			}
		}
		if !found {
			return false, 0
		}
	}

	score := len(queryLower)
	if matchIdx[0] == 0 {
		score += 10
	}
	for i := 1; i < len(matchIdx); i++ {
		if matchIdx[i] == matchIdx[i-1]+1 {
			score += 3
		}
	}
	if strings.EqualFold(strings.TrimSpace(label), strings.TrimSpace(query)) {
		score += 20
	}
	return true, score
}
