package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mobilityiq/mobilityiq/internal/session"
)

// Page is one top-level screen.
type Page interface {
	Screen() session.Screen
	// Init returns the command that (re)loads the page's data. It runs on
	// every visit and whenever the active network changes.
	Init() tea.Cmd
	Update(msg tea.Msg) (tea.Cmd, *PageNav)
	View(width, height int) string
	// Help lists the page's own key bindings for the status line.
	Help() []key.Binding
}

// PageNav is returned from Update to request a screen change. Back
// returns to the screen shown before the current one.
type PageNav struct {
	Screen session.Screen
	Back   bool
}

// Navigate is a convenience for pages requesting a forward transition.
func Navigate(s session.Screen) *PageNav { return &PageNav{Screen: s} }

// Back requests a return to the previous screen.
func Back() *PageNav { return &PageNav{Back: true} }
