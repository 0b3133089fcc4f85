package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Modal is a self-contained modal that owns its own Update/View lifecycle.
// Modals are managed via a stack on App; the topmost modal receives all
// input and renders full-screen.
type Modal interface {
	// ID returns a unique identifier used to deduplicate pushes.
	ID() string
	// Update processes a message. Return pop=true to close the modal.
	Update(msg tea.Msg) (pop bool, cmd tea.Cmd)
	// View renders the modal content for the given terminal dimensions.
	View(width, height int) string
}

// renderModalFrame draws title, body and status hints inside a centered,
// bordered box. It returns the inner content width and height so callers
// can size their viewport before rendering.
func renderModalFrame(title, body string, hints []string, width, height int) string {
	modalWidth := width - 8
	modalHeight := height - 4

	contentWidth := modalWidth - 4
	contentHeight := modalHeight - 4

	contentPane := lipgloss.NewStyle().
		Width(contentWidth).
		Height(contentHeight).
		MaxHeight(contentHeight + 2).
		Border(lipgloss.NormalBorder()).
		BorderForeground(ColorGray).
		Render(body)

	header := lipgloss.NewStyle().
		Width(contentWidth).
		Foreground(ColorBlue).
		Bold(true).
		Render(title)

	statusBar := mutedStyle().Render(strings.Join(hints, " | "))

	modal := lipgloss.JoinVertical(lipgloss.Left, header, contentPane, statusBar)

	finalModal := lipgloss.NewStyle().
		Width(modalWidth).
		Height(modalHeight).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBlue).
		Render(modal)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, finalModal)
}

// modalContentSize mirrors the arithmetic in renderModalFrame.
func modalContentSize(width, height int) (int, int) {
	return width - 12, height - 8
}

// scrollViewport applies the shared scroll keys and wheel handling to vp.
// It reports whether msg was consumed.
func scrollViewport(vp *viewport.Model, msg tea.Msg, reverseWheel bool) bool {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			vp.ScrollUp(1)
		case "down", "j":
			vp.ScrollDown(1)
		case "pgup":
			vp.HalfPageUp()
		case "pgdown":
			vp.HalfPageDown()
		case "home", "g":
			vp.GotoTop()
		case "end", "G":
			vp.GotoBottom()
		default:
			return false
		}
		return true
	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress {
			return false
		}
		up := msg.Button == tea.MouseButtonWheelUp
		down := msg.Button == tea.MouseButtonWheelDown
		if reverseWheel {
			up, down = down, up
		}
		switch {
		case up:
			vp.ScrollUp(3)
		case down:
			vp.ScrollDown(3)
		default:
			return false
		}
		return true
	}
	return false
}
