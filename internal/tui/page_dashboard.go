package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/mobilityiq/mobilityiq/internal/model"
	"github.com/mobilityiq/mobilityiq/internal/session"
)

type dashboardLoadedMsg struct {
	view model.DashboardView
	err  error
}

type allAlertsMsg struct {
	alerts []model.Alert
	err    error
}

// DashboardPage is the network overview: headline metrics, route status and
// service alerts for the active dataset.
type DashboardPage struct {
	backend model.DisplayQuerier
	view    *model.DashboardView
	err     error
	cursor  int

	keys struct {
		details   key.Binding
		allAlerts key.Binding
		refresh   key.Binding
		analyze   key.Binding
	}
}

func NewDashboardPage(backend model.DisplayQuerier) *DashboardPage {
	p := &DashboardPage{backend: backend}
	p.keys.details = key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "route details"))
	p.keys.allAlerts = key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "all alerts"))
	p.keys.refresh = key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh"))
	p.keys.analyze = key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "corridor analysis"))
	return p
}

func (p *DashboardPage) Screen() session.Screen { return session.ScreenDashboard }

func (p *DashboardPage) Help() []key.Binding {
	return []key.Binding{p.keys.details, p.keys.allAlerts, p.keys.analyze, p.keys.refresh}
}

func (p *DashboardPage) Init() tea.Cmd {
	backend := p.backend
	return func() tea.Msg {
		v, err := backend.Dashboard()
		return dashboardLoadedMsg{view: v, err: err}
	}
}

func (p *DashboardPage) Update(msg tea.Msg) (tea.Cmd, *PageNav) {
	switch msg := msg.(type) {
	case dashboardLoadedMsg:
		p.err = msg.err
		if msg.err == nil {
			v := msg.view
			p.view = &v
			if p.cursor >= len(v.Routes) {
				p.cursor = 0
			}
		}
		return nil, nil

	case allAlertsMsg:
		if msg.err != nil {
			return errorCmd(msg.err), nil
		}
		return pushModal(NewTextModal("alerts", "All Active Alerts", formatAlerts(msg.alerts))), nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, p.keys.refresh):
			return p.Init(), nil
		case key.Matches(msg, p.keys.allAlerts):
			backend := p.backend
			return func() tea.Msg {
				alerts, err := backend.AllAlerts()
				return allAlertsMsg{alerts: alerts, err: err}
			}, nil
		case key.Matches(msg, p.keys.analyze):
			return nil, Navigate(session.ScreenCorridor)
		}
		if p.view == nil || len(p.view.Routes) == 0 {
			return nil, nil
		}
		switch msg.String() {
		case "up", "k":
			if p.cursor > 0 {
				p.cursor--
			}
		case "down", "j":
			if p.cursor < len(p.view.Routes)-1 {
				p.cursor++
			}
		case "enter":
			r := p.view.Routes[p.cursor]
			return pushModal(NewRouteModal(r)), nil
		}
	}
	return nil, nil
}

func (p *DashboardPage) View(width, height int) string {
	if p.err != nil {
		return renderError(p.err)
	}
	if p.view == nil {
		return renderLoading()
	}
	v := p.view

	header := titleStyle().Render("Network Overview") + "  " +
		mutedStyle().Render(v.Mode.Label()+" network")

	cards := make([]func(int) string, 0, len(v.Cards))
	for _, c := range v.Cards {
		c := c
		cards = append(cards, func(w int) string {
			return renderCard(c.Title, c.Value, c.Change, c.ChangeType == "positive", w)
		})
	}
	cardRow := renderCardRow(width, cards...)

	leftWidth := width * 3 / 5
	rightWidth := width - leftWidth

	routes := panelStyle(leftWidth - 4).Render(
		titleStyle().Render("Routes") + "\n" + p.renderRoutes(leftWidth-6))
	alerts := panelStyle(rightWidth - 4).Render(
		titleStyle().Render("Recent Alerts") + "\n" + renderAlertList(v.Alerts, rightWidth-6))

	legend := mutedStyle().Render("Status: ") +
		lipgloss.NewStyle().Foreground(ColorGreen).Render("● On-time  ") +
		lipgloss.NewStyle().Foreground(ColorOrange).Render("● Minor delay  ") +
		lipgloss.NewStyle().Foreground(ColorRed).Render("● Major delay")

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		cardRow,
		lipgloss.JoinHorizontal(lipgloss.Top, routes, alerts),
		legend,
	)
}

func (p *DashboardPage) renderRoutes(width int) string {
	if len(p.view.Routes) == 0 {
		return mutedStyle().Render("No routes")
	}
	rows := make([][]string, 0, len(p.view.Routes))
	for _, r := range p.view.Routes {
		status := lipgloss.NewStyle().Foreground(severityColor(r.Status)).Render("● " + r.Status)
		rows = append(rows, []string{
			"Route " + r.RouteID,
			status,
			humanize.Comma(r.Ridership),
			fmt.Sprintf("%d%%", r.OnTimePct),
		})
	}
	col := (width - 3) / 4
	return renderTable([]string{"Route", "Status", "Riders", "On-time"}, rows, []int{col, col, col, col}, p.cursor)
}

func renderAlertList(alerts []model.Alert, width int) string {
	if len(alerts) == 0 {
		return mutedStyle().Render("No active alerts")
	}
	var lines []string
	for _, a := range alerts {
		dot := lipgloss.NewStyle().Foreground(severityColor(a.Severity)).Render("●")
		lines = append(lines,
			dot+" "+lipgloss.NewStyle().Bold(true).Render(truncate(a.Route, width-2)),
			"  "+truncate(a.Issue, width-2),
			"  "+mutedStyle().Render(a.Age),
		)
	}
	return strings.Join(lines, "\n")
}

func formatAlerts(alerts []model.Alert) string {
	if len(alerts) == 0 {
		return "No active alerts."
	}
	var b strings.Builder
	for _, a := range alerts {
		sev := lipgloss.NewStyle().Foreground(severityColor(a.Severity)).Bold(true).Render(strings.ToUpper(a.Severity))
		fmt.Fprintf(&b, "%s  %s\n", sev, lipgloss.NewStyle().Bold(true).Render(a.Route))
		fmt.Fprintf(&b, "  %s\n  %s\n\n", a.Issue, mutedStyle().Render(a.Age))
	}
	return b.String()
}

// RouteModal shows one route's details. "a" opens the corridor analysis.
type RouteModal struct {
	*TextModal
}

func NewRouteModal(r model.RouteDetail) *RouteModal {
	status := lipgloss.NewStyle().Foreground(severityColor(r.Status)).Bold(true).Render(r.Status)
	content := fmt.Sprintf(
		"%-22s %s\n%-22s %s\n%-22s %d%%\n%-22s %.1f mph\n\n%s",
		"Status", status,
		"Current Ridership", humanize.Comma(r.Ridership),
		"On-Time Performance", r.OnTimePct,
		"Average Speed", r.AvgSpeed,
		mutedStyle().Render("a: View full analysis"),
	)
	return &RouteModal{TextModal: NewTextModal("route", "Route "+r.RouteID+" Details", content)}
}

func (m *RouteModal) Update(msg tea.Msg) (bool, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "a" {
		return true, navigateCmd(session.ScreenCorridor)
	}
	return m.TextModal.Update(msg)
}
