package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mobilityiq/mobilityiq/internal/session"
)

const sidebarWidth = 26

func (a *App) handleSidebarKey(msg tea.KeyMsg) tea.Cmd {
	screens := session.Screens()
	switch {
	case key.Matches(msg, a.keys.Up):
		if a.sidebarCursor > 0 {
			a.sidebarCursor--
		}
	case key.Matches(msg, a.keys.Down):
		if a.sidebarCursor < len(screens)-1 {
			a.sidebarCursor++
		}
	case key.Matches(msg, a.keys.Enter):
		a.sidebarFocused = false
		return a.navigate(screens[a.sidebarCursor])
	case key.Matches(msg, a.keys.Escape):
		a.sidebarFocused = false
	}
	return nil
}

func (a *App) renderSidebar(height int) string {
	brand := lipgloss.NewStyle().Bold(true).Foreground(ColorBlue).Render("MobilityIQ")
	if a.opts.Version != "" {
		brand += mutedStyle().Render(" v" + strings.TrimPrefix(a.opts.Version, "v"))
	}

	lines := []string{brand, mutedStyle().Render("Transit Planning"), ""}
	for i, s := range session.Screens() {
		label := s.Title()
		style := lipgloss.NewStyle().Padding(0, 1)
		switch {
		case a.sidebarFocused && i == a.sidebarCursor:
			style = style.Foreground(ColorWhite).Background(ColorBlue).Bold(true)
		case s == a.nav.Active:
			style = style.Foreground(ColorBlue).Bold(true)
			label = "▸ " + label
		default:
			style = style.Foreground(ColorWhite)
		}
		lines = append(lines, style.Render(label))
	}

	top := strings.Join(lines, "\n")
	user := mutedStyle().Render(a.opts.User)
	pad := height - lipgloss.Height(top) - lipgloss.Height(user) - 2
	if pad < 1 {
		pad = 1
	}

	border := ColorGray
	if a.sidebarFocused {
		border = ColorBlue
	}
	return lipgloss.NewStyle().
		Width(sidebarWidth).
		Height(height - 2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Render(top + strings.Repeat("\n", pad) + user)
}
