package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/mobilityiq/mobilityiq/internal/session"
)

func (a *App) View() string {
	if a.width == 0 || a.height == 0 {
		return "Loading..."
	}
	if a.width < minWidth || a.height < minHeight {
		msg := fmt.Sprintf("Terminal too small (%dx%d), need at least %dx%d", a.width, a.height, minWidth, minHeight)
		return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center,
			lipgloss.NewStyle().Foreground(ColorOrange).Render(msg))
	}
	if len(a.modals) > 0 {
		return a.modals[len(a.modals)-1].View(a.width, a.height)
	}

	topBar := a.renderTopBar()
	statusLine := a.renderStatusLine()
	bodyHeight := a.height - lipgloss.Height(topBar) - lipgloss.Height(statusLine)

	contentWidth := a.width
	var sidebar string
	if a.sidebarVisible {
		sidebar = a.renderSidebar(bodyHeight)
		contentWidth -= lipgloss.Width(sidebar)
	}

	content := lipgloss.NewStyle().
		Width(contentWidth).
		Height(bodyHeight).
		MaxHeight(bodyHeight).
		Render(a.activePage().View(contentWidth, bodyHeight))

	body := content
	if a.sidebarVisible {
		body = lipgloss.JoinHorizontal(lipgloss.Top, sidebar, content)
	}
	return lipgloss.JoinVertical(lipgloss.Left, topBar, body, statusLine)
}

// renderTopBar shows the screen title and, once an upload exists, the
// Original/Uploaded switch.
func (a *App) renderTopBar() string {
	title := titleStyle().Render(a.nav.Active.Title())

	right := ""
	if a.network.HasUploadedNetwork {
		right = renderModeSwitch(a.network.ActiveMode)
	}

	gap := a.width - lipgloss.Width(title) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return lipgloss.NewStyle().
		Width(a.width).
		Padding(0, 1).
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(ColorGray).
		Render(title + strings.Repeat(" ", gap) + right)
}

func renderModeSwitch(active session.Mode) string {
	on := lipgloss.NewStyle().Bold(true).Foreground(ColorWhite).Background(ColorBlue).Padding(0, 1)
	off := lipgloss.NewStyle().Foreground(ColorGray).Padding(0, 1)

	parts := make([]string, 0, 2)
	for _, m := range []session.Mode{session.ModeOriginal, session.ModeUploaded} {
		style := off
		if m == active {
			style = on
		}
		parts = append(parts, style.Render(m.Label()))
	}
	return mutedStyle().Render("Network ") + lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (a *App) renderStatusLine() string {
	style := lipgloss.NewStyle().
		Width(a.width).
		Padding(0, 1).
		Foreground(ColorWhite).
		Background(ColorNavy)

	if a.toast != "" {
		fg := ColorGreen
		if a.toastErr {
			fg = ColorOrange
		}
		return style.Foreground(fg).Bold(true).Render(a.toast)
	}

	bindings := append([]key.Binding{}, a.activePage().Help()...)
	bindings = append(bindings, a.keys.PrevScreen, a.keys.NextScreen, a.keys.Upload)
	if a.network.HasUploadedNetwork {
		bindings = append(bindings, a.keys.ToggleMode)
	}
	bindings = append(bindings, a.keys.Help, a.keys.Quit)
	return style.Render(helpLine(bindings))
}

func helpLine(bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		if h.Key == "" {
			continue
		}
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " • ")
}
