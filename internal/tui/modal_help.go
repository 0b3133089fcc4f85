package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// HelpModal lists the global bindings and those of the page it was opened
// from.
type HelpModal struct {
	global   KeyMap
	page     []key.Binding
	viewport viewport.Model
}

func NewHelpModal(keys KeyMap, page []key.Binding) *HelpModal {
	return &HelpModal{global: keys, page: page, viewport: viewport.New(80, 20)}
}

func (h *HelpModal) ID() string { return "help" }

func (h *HelpModal) Update(msg tea.Msg) (bool, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "esc", "?", "q":
			return true, nil
		}
	}
	scrollViewport(&h.viewport, msg, false)
	return false, nil
}

func (h *HelpModal) View(width, height int) string {
	w, ht := modalContentSize(width, height)
	h.viewport.Width = w
	h.viewport.Height = ht
	h.viewport.SetContent(h.content())
	return renderModalFrame("Help", h.viewport.View(),
		[]string{"up/down/Wheel: Scroll", "?: Toggle Help", "ESC: Close"}, width, height)
}

func (h *HelpModal) content() string {
	var b strings.Builder
	section := func(title string, bindings []key.Binding) {
		b.WriteString(titleStyle().Render(title))
		b.WriteString("\n")
		for _, binding := range bindings {
			help := binding.Help()
			if help.Key == "" {
				continue
			}
			fmt.Fprintf(&b, "  %-12s %s\n", help.Key, help.Desc)
		}
		b.WriteString("\n")
	}

	if len(h.page) > 0 {
		section("This screen", h.page)
	}
	k := h.global
	section("Navigation", []key.Binding{k.PrevScreen, k.NextScreen, k.Focus, k.Up, k.Down, k.Enter, k.Escape})
	section("Network", []key.Binding{k.Upload, k.ToggleMode})
	section("General", []key.Binding{k.ToggleSidebar, k.Help, k.Quit, k.ForceQuit})

	b.WriteString(mutedStyle().Render("The network switch appears in the top bar once an upload has been accepted."))
	return b.String()
}
