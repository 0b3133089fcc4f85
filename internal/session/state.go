// Package session holds the process-wide dashboard state: which screen is
// visible (and which one to go back to) and which network dataset the
// displays read from.
//
// Both stores are constructed explicitly and handed to whoever needs them;
// there is no package-level instance.
package session

// State bundles the navigator and the network store for one session.
type State struct {
	Nav     *Navigator
	Network *NetworkStore
}

// NewState returns a fresh session on the dashboard with the original
// dataset selected.
func NewState() *State {
	return &State{
		Nav:     NewNavigator(),
		Network: NewNetworkStore(),
	}
}
