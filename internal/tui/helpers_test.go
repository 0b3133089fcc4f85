package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mobilityiq/mobilityiq/internal/model"
	"github.com/mobilityiq/mobilityiq/internal/planner"
	"github.com/mobilityiq/mobilityiq/internal/session"
)

// stubCatalog is a small in-memory catalog.
type stubCatalog struct{}

func (stubCatalog) MetricCards(mode session.Mode) ([]model.MetricCard, error) {
	if mode == session.ModeUploaded {
		return []model.MetricCard{
			{Title: "On-Time Performance", Value: "68%", ChangeType: "negative"},
			{Title: "Daily Ridership", Value: "38,942", ChangeType: "positive"},
		}, nil
	}
	return []model.MetricCard{
		{Title: "On-Time Performance", Value: "73%", Change: "↓ 2% from last week", ChangeType: "negative"},
		{Title: "Daily Ridership", Value: "45,231", Change: "↑ 8% from last week", ChangeType: "positive"},
	}, nil
}

func (stubCatalog) Alerts(all bool) ([]model.Alert, error) {
	alerts := []model.Alert{
		{ID: 1, Route: "Route 44 - Main St", Issue: "Traffic signal malfunction", Severity: "high", Age: "12 min ago"},
	}
	if all {
		alerts = append(alerts, model.Alert{ID: 4, Route: "Route 22 - Harbor Blvd", Issue: "Weather-related delays", Severity: "medium", Age: "3 hrs ago"})
	}
	return alerts, nil
}

func (stubCatalog) RouteDetails() ([]model.RouteDetail, error) {
	return []model.RouteDetail{
		{RouteID: "7", Status: "On-Time", Ridership: 8423, OnTimePct: 94, AvgSpeed: 22.3},
		{RouteID: "44", Status: "Minor Delay", Ridership: 12145, OnTimePct: 71, AvgSpeed: 18.7},
	}, nil
}

func (stubCatalog) Corridors() ([]model.Corridor, error) {
	return []model.Corridor{{ID: "route-44", Name: "Route 44 - Main Street"}, {ID: "route-39", Name: "Route 39 - Buford Highway"}}, nil
}

func (stubCatalog) DelayLocations(session.Mode) ([]model.DelayLocation, error) {
	return []model.DelayLocation{{Location: "Main St & 5th Ave", AvgDelay: 4.2, Frequency: "High"}}, nil
}

func (stubCatalog) DelayStats() (model.DelayStats, error) {
	return model.DelayStats{AvgDelayMin: 3.4, ScheduleAdherence: 71, ReliabilityScore: 64}, nil
}

func (stubCatalog) TSPResults() ([]model.TSPResult, error) {
	return []model.TSPResult{{Intersection: "Main St & 5th Ave", BeforeMin: 4.2, AfterMin: 2.1}}, nil
}

func (stubCatalog) Scenarios() ([]model.Scenario, error) {
	return []model.Scenario{
		{ID: "A", Name: "Bus Rapid Transit", CapitalCostM: 42.3, OperatingCostM: 4.2, RidershipPct: 18, EmissionsPct: -14, ReliabilityPct: 22, TimelineMonths: 18, BenefitCost: 2.8, Recommended: true},
		{ID: "B", Name: "Light Rail Extension", CapitalCostM: 178.5, OperatingCostM: 6.8, RidershipPct: 32, EmissionsPct: -28, ReliabilityPct: 35, TimelineMonths: 36, BenefitCost: 1.9},
	}, nil
}

func (stubCatalog) ReportTemplates() ([]model.ReportTemplate, error) {
	return []model.ReportTemplate{
		{ID: "executive", Name: "Executive Summary", Pages: "4-6 pages", PageCount: 5, Title: "Executive Summary Report"},
		{ID: "board", Name: "Board Briefing", Pages: "2-3 pages", PageCount: 3, Title: "Board Briefing Document"},
	}, nil
}

func newTestService() *planner.Service {
	return planner.NewService(session.NewState(), stubCatalog{}, nil, nil)
}

func newTestApp(t *testing.T) (*App, *planner.Service) {
	t.Helper()
	svc := newTestService()
	a := NewApp(svc, Options{Interval: time.Hour, UploadDir: t.TempDir()})
	a.Update(tea.WindowSizeMsg{Width: 140, Height: 45})
	settle(a, a.Init())
	return a, svc
}

// execCmd runs cmd and returns the messages it produced. Commands that block
// (ticks, cursor blinks) are dropped after a short wait.
func execCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	var msg tea.Msg
	select {
	case msg = <-done:
	case <-time.After(200 * time.Millisecond):
		return nil
	}

	switch msg := msg.(type) {
	case nil:
		return nil
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, execCmd(c)...)
		}
		return out
	case statusTickMsg, tea.QuitMsg:
		return nil
	default:
		return []tea.Msg{msg}
	}
}

// settle feeds cmd's messages back into the app until nothing is left.
func settle(a *App, cmd tea.Cmd) {
	queue := execCmd(cmd)
	for i := 0; i < 100 && len(queue) > 0; i++ {
		msg := queue[0]
		queue = queue[1:]
		_, next := a.Update(msg)
		queue = append(queue, execCmd(next)...)
	}
}

func press(a *App, keys ...string) {
	for _, k := range keys {
		_, cmd := a.Update(keyMsg(k))
		settle(a, cmd)
	}
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}
