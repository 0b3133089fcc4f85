package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mobilityiq/mobilityiq/internal/model"
	"github.com/mobilityiq/mobilityiq/internal/session"
)

const (
	minWidth  = 80
	minHeight = 20
	toastTTL  = 3 * time.Second
)

// Options configures the App.
type Options struct {
	Interval      time.Duration
	ReverseScroll bool
	UploadDir     string
	Version       string
	User          string
}

// App is the top-level Bubble Tea model. It shows the page for the active
// screen as last reported by the backend and owns the modal stack.
type App struct {
	backend model.PlannerAPI
	opts    Options
	keys    KeyMap

	pages   map[session.Screen]Page
	nav     session.NavigationState
	network model.NetworkStatus

	modals []Modal

	sidebarVisible bool
	sidebarFocused bool
	sidebarCursor  int

	toast      string
	toastErr   bool
	toastUntil time.Time

	width  int
	height int
	now    func() time.Time

	// seq is bumped on every state change the App requests; polls started
	// before the latest change are dropped.
	seq uint64
}

// NewApp builds the App with one page per screen.
func NewApp(backend model.PlannerAPI, opts Options) *App {
	if opts.Interval <= 0 {
		opts.Interval = model.DefaultUpdateInterval
	}
	if opts.UploadDir == "" {
		opts.UploadDir = model.DefaultUploadDir
	}
	if opts.User == "" {
		opts.User = "Sarah Chen, City Planner"
	}

	a := &App{
		backend:        backend,
		opts:           opts,
		keys:           DefaultKeyMap(),
		nav:            session.NavigationState{Active: session.ScreenDashboard, Previous: session.ScreenDashboard},
		network:        model.NetworkStatus{ActiveMode: session.ModeOriginal},
		sidebarVisible: true,
		now:            time.Now,
	}
	pages := []Page{
		NewDashboardPage(backend),
		NewCorridorPage(backend),
		NewBikePage(backend),
		NewScenarioPage(backend),
		NewReportsPage(backend),
	}
	a.pages = make(map[session.Screen]Page, len(pages))
	for _, p := range pages {
		a.pages[p.Screen()] = p
	}
	return a
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.pages[a.nav.Active].Init(),
		a.fetchStatus(),
		a.tick(),
	)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case statusTickMsg:
		if !a.toastUntil.IsZero() && a.now().After(a.toastUntil) {
			a.toast = ""
			a.toastUntil = time.Time{}
		}
		return a, tea.Batch(a.fetchStatus(), a.tick())

	case statusMsg:
		if msg.seq != a.seq {
			return a, nil
		}
		if msg.err != nil {
			return a, a.setToast(msg.err.Error(), true)
		}
		navCmd := a.applyNavigation(msg.nav, false)
		netCmd := a.applyNetwork(msg.network)
		if navCmd != nil {
			return a, navCmd
		}
		return a, netCmd

	case navigatedMsg:
		if msg.err != nil {
			return a, a.setToast(msg.err.Error(), true)
		}
		return a, a.applyNavigation(msg.state, true)

	case networkMsg:
		if msg.err != nil {
			return a, a.setToast(msg.err.Error(), true)
		}
		cmd := a.applyNetwork(msg.status)
		if msg.toast != "" {
			cmd = tea.Batch(cmd, a.setToast(msg.toast, false))
		}
		return a, cmd

	case ToastMsg:
		return a, a.setToast(msg.Text, false)

	case ErrorMsg:
		return a, a.setToast(msg.Err.Error(), true)

	case pushModalMsg:
		return a, a.pushModal(msg.modal)

	case NavigateMsg:
		return a, a.navigate(msg.Screen)

	case datasetReadyMsg:
		return a, a.acceptUpload(msg.dataset)

	case tea.KeyMsg:
		return a, a.handleKey(msg)

	case tea.MouseMsg:
		if len(a.modals) > 0 {
			return a, a.updateTopModal(msg)
		}
		return a, a.updatePage(msg)
	}

	// Everything else (async load results, spinner and filepicker
	// internals) goes to every modal and page; each ignores foreign types.
	var cmds []tea.Cmd
	kept := a.modals[:0]
	for _, m := range a.modals {
		pop, cmd := m.Update(msg)
		cmds = append(cmds, cmd)
		if !pop {
			kept = append(kept, m)
		}
	}
	a.modals = kept
	for _, s := range session.Screens() {
		cmd, nav := a.pages[s].Update(msg)
		cmds = append(cmds, cmd)
		if s == a.nav.Active && nav != nil {
			cmds = append(cmds, a.follow(nav))
		}
	}
	return a, tea.Batch(cmds...)
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, a.keys.ForceQuit) {
		return tea.Quit
	}
	if len(a.modals) > 0 {
		return a.updateTopModal(msg)
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		return tea.Quit
	case key.Matches(msg, a.keys.Help):
		return a.pushModal(NewHelpModal(a.keys, a.activePage().Help()))
	case key.Matches(msg, a.keys.ToggleSidebar):
		a.sidebarVisible = !a.sidebarVisible
		if !a.sidebarVisible {
			a.sidebarFocused = false
		}
		return nil
	case key.Matches(msg, a.keys.Focus):
		if a.sidebarVisible {
			a.sidebarFocused = !a.sidebarFocused
			a.sidebarCursor = screenIndex(a.nav.Active)
		}
		return nil
	case key.Matches(msg, a.keys.NextScreen):
		return a.navigate(cycleScreen(a.nav.Active, 1))
	case key.Matches(msg, a.keys.PrevScreen):
		return a.navigate(cycleScreen(a.nav.Active, -1))
	case key.Matches(msg, a.keys.Upload):
		return a.pushModal(NewUploadModal(a.opts.UploadDir))
	case key.Matches(msg, a.keys.ToggleMode):
		if !a.network.HasUploadedNetwork {
			return a.setToast("No uploaded network yet, press u to upload one", true)
		}
		return a.toggleMode()
	}

	if a.sidebarFocused {
		return a.handleSidebarKey(msg)
	}
	return a.updatePage(msg)
}

func (a *App) updatePage(msg tea.Msg) tea.Cmd {
	cmd, nav := a.activePage().Update(msg)
	if nav != nil {
		return tea.Batch(cmd, a.follow(nav))
	}
	return cmd
}

func (a *App) updateTopModal(msg tea.Msg) tea.Cmd {
	top := a.modals[len(a.modals)-1]
	pop, cmd := top.Update(msg)
	if pop {
		a.modals = a.modals[:len(a.modals)-1]
	}
	return cmd
}

func (a *App) pushModal(m Modal) tea.Cmd {
	for _, existing := range a.modals {
		if existing.ID() == m.ID() {
			return nil
		}
	}
	a.modals = append(a.modals, m)
	if im, ok := m.(interface{ Init() tea.Cmd }); ok {
		return im.Init()
	}
	return nil
}

func (a *App) activePage() Page {
	return a.pages[a.nav.Active]
}

// applyNavigation switches pages to match st. Explicit navigations always
// reload the target page; polled state only does so when the screen moved.
func (a *App) applyNavigation(st session.NavigationState, reload bool) tea.Cmd {
	changed := st.Active != a.nav.Active
	if _, ok := a.pages[st.Active]; !ok {
		return nil
	}
	a.nav = st
	if !a.sidebarFocused {
		a.sidebarCursor = screenIndex(st.Active)
	}
	if changed || reload {
		return a.activePage().Init()
	}
	return nil
}

// applyNetwork records the network status and reloads the active page when
// the dataset it reads from changed.
func (a *App) applyNetwork(st model.NetworkStatus) tea.Cmd {
	changed := st.ActiveMode != a.network.ActiveMode ||
		st.HasUploadedNetwork != a.network.HasUploadedNetwork
	a.network = st
	if changed {
		return a.activePage().Init()
	}
	return nil
}

func (a *App) setToast(text string, isErr bool) tea.Cmd {
	a.toast = text
	a.toastErr = isErr
	a.toastUntil = a.now().Add(toastTTL)
	return nil
}

func (a *App) follow(nav *PageNav) tea.Cmd {
	if nav.Back {
		return a.back()
	}
	return a.navigate(nav.Screen)
}

func (a *App) navigate(s session.Screen) tea.Cmd {
	a.seq++
	backend := a.backend
	return func() tea.Msg {
		st, err := backend.Navigate(s)
		return navigatedMsg{state: st, err: err}
	}
}

// back returns to the backend's PreviousScreen.
func (a *App) back() tea.Cmd {
	a.seq++
	backend := a.backend
	return func() tea.Msg {
		st, err := backend.Back()
		return navigatedMsg{state: st, err: err}
	}
}

func (a *App) toggleMode() tea.Cmd {
	a.seq++
	backend := a.backend
	return func() tea.Msg {
		st, err := backend.ToggleMode()
		if err != nil {
			return networkMsg{err: err}
		}
		return networkMsg{status: st, toast: "Showing " + st.ActiveMode.Label() + " network"}
	}
}

func (a *App) acceptUpload(d session.Dataset) tea.Cmd {
	a.seq++
	backend := a.backend
	return func() tea.Msg {
		st, err := backend.AcceptUpload(d)
		if err != nil {
			return networkMsg{err: err}
		}
		return networkMsg{status: st, toast: "Uploaded network loaded"}
	}
}

func (a *App) fetchStatus() tea.Cmd {
	backend := a.backend
	seq := a.seq
	return func() tea.Msg {
		nav, err := backend.Navigation()
		if err != nil {
			return statusMsg{seq: seq, err: err}
		}
		network, err := backend.Network()
		if err != nil {
			return statusMsg{seq: seq, err: err}
		}
		return statusMsg{seq: seq, nav: nav, network: network}
	}
}

func (a *App) tick() tea.Cmd {
	return tea.Tick(a.opts.Interval, func(t time.Time) tea.Msg {
		return statusTickMsg(t)
	})
}

func screenIndex(s session.Screen) int {
	for i, candidate := range session.Screens() {
		if candidate == s {
			return i
		}
	}
	return 0
}

func cycleScreen(s session.Screen, delta int) session.Screen {
	screens := session.Screens()
	i := (screenIndex(s) + delta + len(screens)) % len(screens)
	return screens[i]
}
