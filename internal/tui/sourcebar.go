package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// sourceBar is the row of feed tabs under the header. With nothing picked
// the dashboard shows every feed; picking tabs narrows it to those feeds.
type sourceBar struct {
	names    []string
	picked   map[string]bool
	choosing bool
	cursor   int
}

func newSourceBar(names []string) sourceBar {
	return sourceBar{
		names:  names,
		picked: make(map[string]bool),
	}
}

func (b *sourceBar) toggle(name string) {
	if b.picked[name] {
		delete(b.picked, name)
	} else {
		b.picked[name] = true
	}
}

func (b *sourceBar) toggleCursor() {
	if b.cursor < len(b.names) {
		b.toggle(b.names[b.cursor])
	}
}

// selection returns the picked feeds in configured order. An empty pick
// set means "all feeds", which the aggregation layer spells nil.
func (b *sourceBar) selection() []string {
	if len(b.picked) == 0 {
		return nil
	}
	var out []string
	for _, name := range b.names {
		if b.picked[name] {
			out = append(out, name)
		}
	}
	return out
}

func (b *sourceBar) label() string {
	picked := b.selection()
	if picked == nil {
		return "All"
	}
	return strings.Join(picked, ", ")
}

func (b *sourceBar) render(width int) string {
	sep := tabSeparatorStyle.Render(" · ")

	allStyle := tabInactiveStyle
	if len(b.picked) == 0 {
		allStyle = tabActiveStyle
	}
	tabs := []string{allStyle.Render("All")}

	for i, name := range b.names {
		style := tabInactiveStyle
		if b.picked[name] {
			style = tabActiveStyle
		}
		text := name
		if b.choosing && i == b.cursor {
			text = "[" + name + "]"
		}
		tabs = append(tabs, style.Render(text))
	}

	// Drop trailing tabs rather than wrap when the terminal is narrow
	row := tabs[0]
	for _, tab := range tabs[1:] {
		next := row + sep + tab
		if lipgloss.Width(next) > width {
			break
		}
		row = next
	}

	return lipgloss.NewStyle().
		Background(colorSurface).
		PaddingLeft(1).
		Width(width).
		Render(row)
}
