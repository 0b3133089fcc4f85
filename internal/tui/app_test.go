package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mobilityiq/mobilityiq/internal/session"
)

func TestNewApp_StartsOnDashboard(t *testing.T) {
	t.Parallel()

	a, _ := newTestApp(t)
	if a.nav.Active != session.ScreenDashboard {
		t.Fatalf("expected dashboard, got %s", a.nav.Active)
	}
	if !a.sidebarVisible {
		t.Fatal("expected sidebar to be visible by default")
	}
	dash := a.pages[session.ScreenDashboard].(*DashboardPage)
	if dash.view == nil {
		t.Fatal("expected dashboard data to be loaded on init")
	}
	if len(a.pages) != len(session.Screens()) {
		t.Fatalf("expected one page per screen, got %d", len(a.pages))
	}
}

func TestApp_NextScreenGoesThroughBackend(t *testing.T) {
	t.Parallel()

	a, svc := newTestApp(t)
	press(a, "]")

	st, _ := svc.Navigation()
	if st.Active != session.ScreenCorridor || st.Previous != session.ScreenDashboard {
		t.Fatalf("backend state = %+v", st)
	}
	if a.nav != st {
		t.Fatalf("app nav %+v does not match backend %+v", a.nav, st)
	}

	press(a, "[", "[")
	if a.nav.Active != session.ScreenReports {
		t.Fatalf("expected wrap-around to reports, got %s", a.nav.Active)
	}
}

func TestApp_SidebarEnterNavigates(t *testing.T) {
	t.Parallel()

	a, _ := newTestApp(t)
	press(a, "tab", "down", "down", "enter")

	if a.nav.Active != session.ScreenBike {
		t.Fatalf("expected bike screen, got %s", a.nav.Active)
	}
	if a.sidebarFocused {
		t.Fatal("expected focus to return to content after enter")
	}
}

func TestApp_ReportsBackReturnsToOrigin(t *testing.T) {
	t.Parallel()

	a, svc := newTestApp(t)
	press(a, "]", "]") // bike
	press(a, "g")      // generate report

	if a.nav.Active != session.ScreenReports || a.nav.Previous != session.ScreenBike {
		t.Fatalf("after generate report: %+v", a.nav)
	}

	press(a, "b")
	st, _ := svc.Navigation()
	if st.Active != session.ScreenBike || st.Previous != session.ScreenReports {
		t.Fatalf("after back: %+v", st)
	}
	if a.nav.Active != session.ScreenBike {
		t.Fatalf("app did not follow back navigation: %+v", a.nav)
	}
}

func TestApp_ReportsBackFromInitialGoesToDashboard(t *testing.T) {
	t.Parallel()

	a, _ := newTestApp(t)
	press(a, "[") // reports directly from the initial dashboard
	press(a, "esc")

	if a.nav.Active != session.ScreenDashboard {
		t.Fatalf("expected dashboard, got %+v", a.nav)
	}
}

func TestApp_ModeToggleRequiresUpload(t *testing.T) {
	t.Parallel()

	a, svc := newTestApp(t)
	press(a, "m")

	if a.network.ActiveMode != session.ModeOriginal {
		t.Fatalf("mode changed without an upload: %s", a.network.ActiveMode)
	}
	if !a.toastErr || a.toast == "" {
		t.Fatal("expected an explanatory toast")
	}

	settle(a, func() tea.Msg { return datasetReadyMsg{dataset: testDataset()} })
	if a.network.ActiveMode != session.ModeUploaded || !a.network.HasUploadedNetwork {
		t.Fatalf("after upload: %+v", a.network)
	}

	press(a, "m")
	if a.network.ActiveMode != session.ModeOriginal {
		t.Fatalf("toggle after upload: %s", a.network.ActiveMode)
	}
	st, _ := svc.Network()
	if st.ActiveMode != session.ModeOriginal || !st.HasUploadedNetwork {
		t.Fatalf("backend network: %+v", st)
	}
}

func TestApp_ModeSwitchHiddenUntilUpload(t *testing.T) {
	t.Parallel()

	a, _ := newTestApp(t)
	if strings.Contains(a.renderTopBar(), "Uploaded") {
		t.Fatal("mode switch shown before any upload")
	}

	settle(a, func() tea.Msg { return datasetReadyMsg{dataset: testDataset()} })
	bar := a.renderTopBar()
	if !strings.Contains(bar, "Original") || !strings.Contains(bar, "Uploaded") {
		t.Fatalf("mode switch missing after upload: %q", bar)
	}
}

func TestApp_ModeChangeReloadsActivePage(t *testing.T) {
	t.Parallel()

	a, _ := newTestApp(t)
	settle(a, func() tea.Msg { return datasetReadyMsg{dataset: testDataset()} })

	dash := a.pages[session.ScreenDashboard].(*DashboardPage)
	if dash.view.Mode != session.ModeUploaded {
		t.Fatalf("dashboard still shows %s", dash.view.Mode)
	}
	if dash.view.Cards[0].Value != "68%" {
		t.Fatalf("dashboard cards not reloaded: %+v", dash.view.Cards[0])
	}
}

func TestApp_PollPicksUpExternalChanges(t *testing.T) {
	t.Parallel()

	a, svc := newTestApp(t)
	if _, err := svc.Navigate(session.ScreenScenario); err != nil {
		t.Fatal(err)
	}
	settle(a, a.fetchStatus())

	if a.nav.Active != session.ScreenScenario {
		t.Fatalf("expected poll to switch to scenario, got %s", a.nav.Active)
	}
	sc := a.pages[session.ScreenScenario].(*ScenarioPage)
	if sc.board == nil {
		t.Fatal("expected scenario page to load after external navigation")
	}
}

func TestApp_StalePollDoesNotUndoNavigation(t *testing.T) {
	t.Parallel()

	a, svc := newTestApp(t)
	stale := a.fetchStatus()()

	press(a, "]")
	if a.nav.Active != session.ScreenCorridor {
		t.Fatalf("expected corridor, got %s", a.nav.Active)
	}

	settle(a, func() tea.Msg { return stale })
	if a.nav.Active != session.ScreenCorridor {
		t.Fatalf("stale poll moved app to %s", a.nav.Active)
	}
	st, _ := svc.Navigation()
	if a.nav != st {
		t.Fatalf("app nav %+v does not match backend %+v", a.nav, st)
	}

	settle(a, a.fetchStatus())
	if a.nav != st {
		t.Fatalf("fresh poll changed nav to %+v", a.nav)
	}
}

func TestApp_UploadModalReadsDirectory(t *testing.T) {
	t.Parallel()

	a, svc := newTestApp(t)
	dir := a.opts.UploadDir
	for name, body := range map[string]string{
		"GPS.txt":     "veh,lat,lon\n12,33.77,-84.38\n",
		"crashes.txt": "id,severity\n1,minor\n",
		"ST.txt":      "trip_id,stop_id,arrival\nT1,S1,08:00:00\n",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	press(a, "u")
	if len(a.modals) != 1 || a.modals[0].ID() != "upload" {
		t.Fatalf("expected upload modal, got %d modals", len(a.modals))
	}

	press(a, "tab", "enter")
	if len(a.modals) != 0 {
		t.Fatal("expected upload modal to close after a successful read")
	}
	st, _ := svc.Network()
	if !st.HasUploadedNetwork || st.ActiveMode != session.ModeUploaded {
		t.Fatalf("backend network after upload: %+v", st)
	}
	if st.Upload == nil || st.Upload.GPSBytes == 0 {
		t.Fatalf("expected upload summary, got %+v", st.Upload)
	}
}

func TestApp_UploadModalReportsMissingFiles(t *testing.T) {
	t.Parallel()

	a, svc := newTestApp(t)
	press(a, "u", "tab", "enter")

	if len(a.modals) != 1 {
		t.Fatal("expected the modal to stay open")
	}
	m := a.modals[0].(*UploadModal)
	if m.err == nil {
		t.Fatal("expected an error for an empty directory")
	}
	press(a, "esc")
	if len(a.modals) != 0 {
		t.Fatal("esc should close the modal")
	}
	st, _ := svc.Network()
	if st.HasUploadedNetwork {
		t.Fatal("failed upload must not be accepted")
	}
}

func TestApp_HelpModal(t *testing.T) {
	t.Parallel()

	a, _ := newTestApp(t)
	press(a, "?")
	if len(a.modals) != 1 || a.modals[0].ID() != "help" {
		t.Fatal("expected help modal")
	}
	if !strings.Contains(a.View(), "Help") {
		t.Fatal("help modal not rendered")
	}
	press(a, "?")
	if len(a.modals) != 0 {
		t.Fatal("expected help modal to close")
	}
}

func TestApp_ViewTooSmall(t *testing.T) {
	t.Parallel()

	a, _ := newTestApp(t)
	a.Update(tea.WindowSizeMsg{Width: 40, Height: 10})
	if !strings.Contains(a.View(), "Terminal too small") {
		t.Fatal("expected size warning")
	}
}

func TestApp_ViewRendersEveryScreen(t *testing.T) {
	t.Parallel()

	a, _ := newTestApp(t)
	for range session.Screens() {
		view := a.View()
		if !strings.Contains(view, a.nav.Active.Title()) {
			t.Fatalf("view for %s missing its title", a.nav.Active)
		}
		if strings.Contains(view, "Error:") {
			t.Fatalf("view for %s shows an error", a.nav.Active)
		}
		press(a, "]")
	}
}

func testDataset() session.Dataset {
	return session.Dataset{
		GPS:       "veh,lat,lon\n12,33.77,-84.38\n",
		Crashes:   "id,severity\n1,minor\n",
		StopTimes: "trip_id,stop_id,arrival\nT1,S1,08:00:00\n",
	}
}
