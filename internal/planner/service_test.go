package planner

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mobilityiq/mobilityiq/internal/design"
	"github.com/mobilityiq/mobilityiq/internal/duckdb"
	"github.com/mobilityiq/mobilityiq/internal/model"
	"github.com/mobilityiq/mobilityiq/internal/report"
	"github.com/mobilityiq/mobilityiq/internal/session"
	"github.com/mobilityiq/mobilityiq/internal/upload"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	store, err := duckdb.NewStore(nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return NewService(session.NewState(), store, report.NewExporter(5), nil)
}

func sampleDataset() session.Dataset {
	return session.Dataset{GPS: "gps\n", Crashes: "crashes\n", StopTimes: "st\n"}
}

func TestService_Navigate(t *testing.T) {
	svc := newTestService(t)

	st, err := svc.Navigate(session.ScreenCorridor)
	require.NoError(t, err)
	assert.Equal(t, session.NavigationState{Active: session.ScreenCorridor, Previous: session.ScreenDashboard}, st)

	_, err = svc.Navigate(session.ScreenScenario)
	require.NoError(t, err)
	st, err = svc.Navigate(session.ScreenReports)
	require.NoError(t, err)
	assert.Equal(t, session.ScreenScenario, st.Previous)

	_, err = svc.Navigate(session.Screen(99))
	assert.True(t, errors.Is(err, session.ErrUnknownScreen))

	got, err := svc.Navigation()
	require.NoError(t, err)
	assert.Equal(t, st, got)
}

func TestService_NetworkGate(t *testing.T) {
	svc := newTestService(t)

	st, err := svc.SetMode(session.ModeUploaded)
	require.NoError(t, err)
	assert.Equal(t, session.ModeOriginal, st.ActiveMode)
	assert.False(t, st.HasUploadedNetwork)
	assert.Nil(t, st.Upload)

	_, err = svc.AcceptUpload(session.Dataset{GPS: "g"})
	assert.True(t, errors.Is(err, upload.ErrIncomplete))
	st, _ = svc.Network()
	assert.False(t, st.HasUploadedNetwork)

	st, err = svc.AcceptUpload(sampleDataset())
	require.NoError(t, err)
	assert.Equal(t, session.ModeUploaded, st.ActiveMode)
	assert.True(t, st.HasUploadedNetwork)
	require.NotNil(t, st.Upload)
	assert.NotEmpty(t, st.Upload.ID)
	assert.Equal(t, 4, st.Upload.GPSBytes)

	st, err = svc.ToggleMode()
	require.NoError(t, err)
	assert.Equal(t, session.ModeOriginal, st.ActiveMode)
	assert.True(t, st.HasUploadedNetwork)

	st, err = svc.SetMode(session.ModeUploaded)
	require.NoError(t, err)
	assert.Equal(t, session.ModeUploaded, st.ActiveMode)
}

func TestService_DashboardFollowsMode(t *testing.T) {
	svc := newTestService(t)

	view, err := svc.Dashboard()
	require.NoError(t, err)
	assert.Equal(t, session.ModeOriginal, view.Mode)
	require.Len(t, view.Cards, 4)
	assert.Equal(t, "73%", view.Cards[0].Value)
	assert.Len(t, view.Alerts, 2)
	assert.Len(t, view.Routes, 3)

	_, err = svc.AcceptUpload(sampleDataset())
	require.NoError(t, err)

	view, err = svc.Dashboard()
	require.NoError(t, err)
	assert.Equal(t, session.ModeUploaded, view.Mode)
	assert.Equal(t, "68%", view.Cards[0].Value)
	assert.Empty(t, view.Cards[0].Change)

	corr, err := svc.Corridor()
	require.NoError(t, err)
	assert.Equal(t, "Peachtree St & 10th", corr.Locations[0].Location)
	assert.Len(t, corr.Corridors, 5)

	all, err := svc.AllAlerts()
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestService_TSPSimulation(t *testing.T) {
	svc := newTestService(t)

	sim, err := svc.TSPSimulation()
	require.NoError(t, err)
	require.Len(t, sim.Results, 4)

	want := []struct {
		savings float64
		pct     int
	}{{2.1, 50}, {1.9, 50}, {1.4, 48}, {1.1, 48}}
	for i, w := range want {
		assert.Equal(t, w.savings, sim.Results[i].SavingsMin, "row %d", i)
		assert.Equal(t, w.pct, sim.Results[i].ImprovementPct, "row %d", i)
	}
	assert.Equal(t, 85, sim.ReliabilityScore)
	assert.Equal(t, 124, sim.CostK)
}

func TestService_ScenarioBoard(t *testing.T) {
	svc := newTestService(t)

	board, err := svc.ScenarioBoard()
	require.NoError(t, err)
	require.Len(t, board.Scenarios, 3)
	require.Len(t, board.Comparison, 6)

	best := map[string]int{
		"Capital Cost":            2,
		"Annual Operating Cost":   2,
		"Ridership Increase":      1,
		"CO₂ Reduction":           1,
		"Implementation Timeline": 2,
		"Benefit-Cost Ratio":      0,
	}
	for _, row := range board.Comparison {
		assert.Equal(t, best[row.Criterion], row.Best, row.Criterion)
	}
	assert.Equal(t, []string{"$42.3M", "$178.5M", "$8.7M"}, board.Comparison[0].Values)
	assert.Equal(t, []string{"-14%", "-28%", "-6%"}, board.Comparison[3].Values)
	assert.Equal(t, "2.8:1", board.Comparison[5].Values[0])

	assert.Equal(t, model.BudgetSummary{BudgetM: 50, Recommended: "A", CostM: 42.3, RemainingM: 7.7}, board.Budget)
}

func TestService_BikeEstimate(t *testing.T) {
	svc := newTestService(t)

	est, err := svc.BikeEstimate(3)
	require.NoError(t, err)
	assert.Equal(t, 66, est.CrashReductionPct)

	_, err = svc.BikeEstimate(-1)
	assert.Error(t, err)

	est, err = svc.BikeEstimate(design.MaxSegments)
	require.NoError(t, err)
	assert.Positive(t, est.TotalK)

	_, err = svc.BikeEstimate(design.MaxSegments + 1)
	assert.True(t, errors.Is(err, design.ErrTooManySegments))
}

func TestService_Back(t *testing.T) {
	svc := newTestService(t)

	st, err := svc.Back()
	require.NoError(t, err)
	assert.Equal(t, session.NavigationState{Active: session.ScreenDashboard, Previous: session.ScreenDashboard}, st)

	_, err = svc.Navigate(session.ScreenScenario)
	require.NoError(t, err)
	_, err = svc.Navigate(session.ScreenReports)
	require.NoError(t, err)

	st, err = svc.Back()
	require.NoError(t, err)
	assert.Equal(t, session.NavigationState{Active: session.ScreenScenario, Previous: session.ScreenReports}, st)
}

func TestService_ExportReport(t *testing.T) {
	svc := newTestService(t)

	ack, err := svc.ExportReport(model.ExportRequest{Format: "powerpoint", Template: "public"})
	require.NoError(t, err)
	assert.Equal(t, "Report downloaded as POWERPOINT", ack.Message)

	_, err = svc.ExportReport(model.ExportRequest{Format: "pdf", Template: "quarterly"})
	assert.True(t, errors.Is(err, report.ErrUnknownTemplate))

	recent, err := svc.RecentExports()
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, ack.ID, recent[0].ID)
}

func TestCompareEmptyAndTies(t *testing.T) {
	rows := compare(nil)
	require.Len(t, rows, len(criteria))
	for _, r := range rows {
		assert.Equal(t, -1, r.Best)
		assert.Empty(t, r.Values)
	}

	tied := []model.Scenario{{ID: "X", CapitalCostM: 5}, {ID: "Y", CapitalCostM: 5}}
	assert.Equal(t, 0, compare(tied)[0].Best)

	assert.Equal(t, model.BudgetSummary{BudgetM: 50, RemainingM: 50}, budget(tied))
}
