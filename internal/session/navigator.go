package session

import "sync"

// NavigationState is the visible screen plus the one shown immediately
// before the most recent transition.
type NavigationState struct {
	Active   Screen `json:"active"`
	Previous Screen `json:"previous"`
}

// Navigator tracks the active screen and the screen to return to after a
// detour (e.g. reports entered from the bike designer or a scenario).
// The zero value is ready to use and starts on the dashboard.
type Navigator struct {
	mu    sync.RWMutex
	state NavigationState
}

// NewNavigator returns a navigator on the dashboard.
func NewNavigator() *Navigator {
	return &Navigator{}
}

// Navigate makes target the active screen. Previous always becomes the
// screen that was active before this call, including when target is
// already active.
func (n *Navigator) Navigate(target Screen) NavigationState {
	if !target.Valid() {
		panic("session: navigate to " + target.String())
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	n.state.Previous = n.state.Active
	n.state.Active = target
	return n.state
}

// Current returns the active screen.
func (n *Navigator) Current() Screen {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.state.Active
}

// PreviousScreen returns the screen that was active before the last
// transition.
func (n *Navigator) PreviousScreen() Screen {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.state.Previous
}

// State returns a snapshot of both fields.
func (n *Navigator) State() NavigationState {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.state
}

// Back navigates to PreviousScreen in one step, so a concurrent Navigate
// cannot redirect it.
func (n *Navigator) Back() NavigationState {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.state.Previous, n.state.Active = n.state.Active, n.state.Previous
	return n.state
}
