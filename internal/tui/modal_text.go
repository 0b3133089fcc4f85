package tui

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// TextModal shows pre-rendered text in a scrollable viewport. Route
// details, the full alert list and the TSP simulation all use it.
type TextModal struct {
	id       string
	title    string
	content  string
	viewport viewport.Model
}

// NewTextModal returns a modal with the given identity, title and content.
func NewTextModal(id, title, content string) *TextModal {
	return &TextModal{
		id:       id,
		title:    title,
		content:  content,
		viewport: viewport.New(80, 20),
	}
}

func (d *TextModal) ID() string { return d.id }

func (d *TextModal) Update(msg tea.Msg) (bool, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "esc", "q", "enter":
			return true, nil
		}
	}
	if scrollViewport(&d.viewport, msg, false) {
		return false, nil
	}
	if _, ok := msg.(tea.KeyMsg); ok {
		var cmd tea.Cmd
		d.viewport, cmd = d.viewport.Update(msg)
		return false, cmd
	}
	return false, nil
}

func (d *TextModal) View(width, height int) string {
	w, h := modalContentSize(width, height)
	d.viewport.Width = w
	d.viewport.Height = h
	d.viewport.SetContent(wrapText(d.content, w))
	return renderModalFrame(d.title, d.viewport.View(),
		[]string{"up/down/Wheel: Scroll", "PgUp/PgDn: Page", "ESC: Close"}, width, height)
}
