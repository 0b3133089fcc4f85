package socketrpc_test

import (
	"errors"
	"path/filepath"
	"testing"

	"go.uber.org/goleak"

	"github.com/mobilityiq/mobilityiq/internal/design"
	"github.com/mobilityiq/mobilityiq/internal/duckdb"
	"github.com/mobilityiq/mobilityiq/internal/model"
	"github.com/mobilityiq/mobilityiq/internal/planner"
	"github.com/mobilityiq/mobilityiq/internal/session"
	"github.com/mobilityiq/mobilityiq/internal/socketrpc"
	"github.com/mobilityiq/mobilityiq/internal/upload"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func startServer(t *testing.T) *socketrpc.Client {
	t.Helper()
	store, err := duckdb.NewStore(nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	sock := filepath.Join(t.TempDir(), "test.sock")
	srv := socketrpc.NewServer(sock, planner.NewService(session.NewState(), store, nil, nil), nil)
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(srv.Stop)

	client, err := socketrpc.Dial(sock)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestRoundtrip_NavigationAndNetwork(t *testing.T) {
	c := startServer(t)

	for _, s := range []session.Screen{session.ScreenCorridor, session.ScreenScenario, session.ScreenReports} {
		if _, err := c.Navigate(s); err != nil {
			t.Fatalf("Navigate(%s): %v", s, err)
		}
	}
	st, err := c.Navigation()
	if err != nil {
		t.Fatalf("Navigation: %v", err)
	}
	if st.Previous != session.ScreenScenario {
		t.Errorf("Previous = %s, want scenario", st.Previous)
	}

	back, err := c.Back()
	if err != nil {
		t.Fatalf("Back: %v", err)
	}
	if back.Active != session.ScreenScenario || back.Previous != session.ScreenReports {
		t.Errorf("Back = %+v", back)
	}

	if _, err := c.Navigate(session.Screen(12)); !errors.Is(err, session.ErrUnknownScreen) {
		t.Errorf("Navigate(12) err = %v", err)
	}

	ns, err := c.SetMode(session.ModeUploaded)
	if err != nil {
		t.Fatalf("SetMode: %v", err)
	}
	if ns.ActiveMode != session.ModeOriginal || ns.HasUploadedNetwork {
		t.Errorf("SetMode before upload = %+v", ns)
	}

	if _, err := c.AcceptUpload(session.Dataset{GPS: "g"}); !errors.Is(err, upload.ErrIncomplete) {
		t.Errorf("partial upload err = %v", err)
	}

	ns, err = c.AcceptUpload(session.Dataset{GPS: "g", Crashes: "c", StopTimes: "s"})
	if err != nil {
		t.Fatalf("AcceptUpload: %v", err)
	}
	if ns.ActiveMode != session.ModeUploaded || ns.Upload == nil {
		t.Errorf("AcceptUpload = %+v", ns)
	}

	ns, err = c.ToggleMode()
	if err != nil {
		t.Fatalf("ToggleMode: %v", err)
	}
	if ns.ActiveMode != session.ModeOriginal || !ns.HasUploadedNetwork {
		t.Errorf("ToggleMode = %+v", ns)
	}
	if ns, _ = c.Network(); ns.ActiveMode != session.ModeOriginal {
		t.Errorf("Network = %+v", ns)
	}
}

func TestRoundtrip_Displays(t *testing.T) {
	c := startServer(t)

	dash, err := c.Dashboard()
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if len(dash.Cards) != 4 || dash.Cards[2].Value != "45,231" {
		t.Errorf("Dashboard cards = %+v", dash.Cards)
	}

	alerts, err := c.AllAlerts()
	if err != nil || len(alerts) != 5 {
		t.Errorf("AllAlerts = %d, %v", len(alerts), err)
	}

	corr, err := c.Corridor()
	if err != nil || len(corr.Locations) != 4 {
		t.Errorf("Corridor = %+v, %v", corr, err)
	}

	sim, err := c.TSPSimulation()
	if err != nil || len(sim.Results) != 4 || sim.Results[0].ImprovementPct != 50 {
		t.Errorf("TSPSimulation = %+v, %v", sim, err)
	}

	board, err := c.ScenarioBoard()
	if err != nil || board.Budget.Recommended != "A" {
		t.Errorf("ScenarioBoard = %+v, %v", board.Budget, err)
	}

	tpls, err := c.ReportTemplates()
	if err != nil || len(tpls) != 4 {
		t.Errorf("ReportTemplates = %d, %v", len(tpls), err)
	}

	est, err := c.BikeEstimate(4)
	if err != nil || est.SafetyScore != 95 {
		t.Errorf("BikeEstimate = %+v, %v", est, err)
	}

	ack, err := c.ExportReport(model.ExportRequest{Format: "excel", Template: "board"})
	if err != nil {
		t.Fatalf("ExportReport: %v", err)
	}
	if ack.Message != "Report downloaded as EXCEL" {
		t.Errorf("ack = %+v", ack)
	}

	recent, err := c.RecentExports()
	if err != nil || len(recent) != 1 || recent[0].ID != ack.ID {
		t.Errorf("RecentExports = %+v, %v", recent, err)
	}

	if _, err := c.BikeEstimate(design.MaxSegments + 1); !errors.Is(err, design.ErrTooManySegments) {
		t.Errorf("BikeEstimate over max err = %v", err)
	}
}

func TestDialMissingSocket(t *testing.T) {
	_, err := socketrpc.Dial(filepath.Join(t.TempDir(), "none.sock"))
	if err == nil {
		t.Fatal("expected dial error")
	}
}
