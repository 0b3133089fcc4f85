package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mobilityiq/mobilityiq/internal/model"
	"github.com/mobilityiq/mobilityiq/internal/session"
)

// navigatedMsg carries the backend's answer to a navigation request.
type navigatedMsg struct {
	state session.NavigationState
	err   error
}

// networkMsg carries the network status after a change request.
type networkMsg struct {
	status model.NetworkStatus
	toast  string
	err    error
}

// statusMsg is the periodic poll of navigation and network state.
type statusMsg struct {
	seq     uint64
	nav     session.NavigationState
	network model.NetworkStatus
	err     error
}

// statusTickMsg schedules the next poll.
type statusTickMsg time.Time

// ToastMsg shows a short acknowledgment in the status line.
type ToastMsg struct{ Text string }

// ErrorMsg shows an error in the status line.
type ErrorMsg struct{ Err error }

// pushModalMsg asks the app to open a modal.
type pushModalMsg struct{ modal Modal }

// datasetReadyMsg is sent when the upload dialog has read all three files.
type datasetReadyMsg struct{ dataset session.Dataset }

func toastCmd(text string) tea.Cmd {
	return func() tea.Msg { return ToastMsg{Text: text} }
}

func errorCmd(err error) tea.Cmd {
	return func() tea.Msg { return ErrorMsg{Err: err} }
}

func pushModal(m Modal) tea.Cmd {
	return func() tea.Msg { return pushModalMsg{modal: m} }
}

// NavigateMsg asks the app to move to Screen. Modals use it; pages return
// a PageNav instead.
type NavigateMsg struct{ Screen session.Screen }

func navigateCmd(s session.Screen) tea.Cmd {
	return func() tea.Msg { return NavigateMsg{Screen: s} }
}
