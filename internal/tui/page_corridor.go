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

var corridorRecommendations = []string{
	"Install Transit Signal Priority (TSP)",
	"Optimize signal timing for peak hours",
	"Add queue jump lane",
}

type corridorLoadedMsg struct {
	view model.CorridorView
	err  error
}

type tspLoadedMsg struct {
	sim model.TSPSimulation
	err error
}

// CorridorPage is the delay analysis of one corridor.
type CorridorPage struct {
	backend  model.DisplayQuerier
	view     *model.CorridorView
	err      error
	selected int

	keys struct {
		prev     key.Binding
		next     key.Binding
		tsp      key.Binding
		simulate key.Binding
	}
}

func NewCorridorPage(backend model.DisplayQuerier) *CorridorPage {
	p := &CorridorPage{backend: backend}
	p.keys.prev = key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/→", "corridor"))
	p.keys.next = key.NewBinding(key.WithKeys("right", "l"))
	p.keys.tsp = key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "TSP results"))
	p.keys.simulate = key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "simulate TSP"))
	return p
}

func (p *CorridorPage) Screen() session.Screen { return session.ScreenCorridor }

func (p *CorridorPage) Help() []key.Binding {
	return []key.Binding{p.keys.prev, p.keys.tsp, p.keys.simulate}
}

func (p *CorridorPage) Init() tea.Cmd {
	backend := p.backend
	return func() tea.Msg {
		v, err := backend.Corridor()
		return corridorLoadedMsg{view: v, err: err}
	}
}

func (p *CorridorPage) Update(msg tea.Msg) (tea.Cmd, *PageNav) {
	switch msg := msg.(type) {
	case corridorLoadedMsg:
		p.err = msg.err
		if msg.err == nil {
			v := msg.view
			p.view = &v
			if p.selected >= len(v.Corridors) {
				p.selected = 0
			}
		}
		return nil, nil

	case tspLoadedMsg:
		if msg.err != nil {
			return errorCmd(msg.err), nil
		}
		return pushModal(NewTextModal("tsp", "TSP Simulation Results", formatTSP(msg.sim))), nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, p.keys.prev):
			p.moveSelection(-1)
		case key.Matches(msg, p.keys.next):
			p.moveSelection(1)
		case key.Matches(msg, p.keys.tsp):
			backend := p.backend
			return func() tea.Msg {
				sim, err := backend.TSPSimulation()
				return tspLoadedMsg{sim: sim, err: err}
			}, nil
		case key.Matches(msg, p.keys.simulate):
			return toastCmd("TSP simulation added to scenario planning"), Navigate(session.ScreenScenario)
		}
	}
	return nil, nil
}

func (p *CorridorPage) moveSelection(delta int) {
	if p.view == nil || len(p.view.Corridors) == 0 {
		return
	}
	n := len(p.view.Corridors)
	p.selected = (p.selected + delta + n) % n
}

func (p *CorridorPage) corridorName() string {
	if p.view == nil || len(p.view.Corridors) == 0 {
		return ""
	}
	return p.view.Corridors[p.selected].Name
}

func (p *CorridorPage) View(width, height int) string {
	if p.err != nil {
		return renderError(p.err)
	}
	if p.view == nil {
		return renderLoading()
	}
	v := p.view

	header := titleStyle().Render("Corridor Analysis") + "  " +
		mutedStyle().Render("Analyze performance and identify bottlenecks")

	selector := mutedStyle().Render("Route / Corridor: ") +
		lipgloss.NewStyle().Bold(true).Foreground(ColorWhite).Render("◀ "+p.corridorName()+" ▶") +
		mutedStyle().Render("   Last 30 Days · "+v.Mode.Label()+" network")

	leftWidth := width * 3 / 5
	rightWidth := width - leftWidth

	bars := make([]chartBar, 0, len(v.Locations))
	for _, l := range v.Locations {
		bars = append(bars, chartBar{Label: l.Location, Value: l.AvgDelay, Color: severityColor(l.Frequency)})
	}
	chartHeight := 8
	if height < 30 {
		chartHeight = 5
	}
	chart := panelStyle(leftWidth - 4).Render(
		titleStyle().Render(p.corridorName()+" Delay Profile") + "\n" +
			renderBarChart(bars, leftWidth-6, chartHeight, " min"))

	rows := make([][]string, 0, len(v.Locations))
	for _, l := range v.Locations {
		freq := lipgloss.NewStyle().Foreground(severityColor(l.Frequency)).Render(l.Frequency)
		rows = append(rows, []string{l.Location, fmt.Sprintf("%.1f min", l.AvgDelay), freq})
	}
	locW := leftWidth - 6 - 24
	locations := panelStyle(leftWidth - 4).Render(
		titleStyle().Render("Top Delay Locations") + "\n" +
			renderTable([]string{"Location", "Avg Delay", "Frequency"}, rows, []int{locW, 11, 10}, -1))

	stats := panelStyle(rightWidth - 4).Render(
		titleStyle().Render("Delay Statistics") + "\n" +
			statLine("Average Delay", fmt.Sprintf("%.1f min", v.Stats.AvgDelayMin), ColorOrange) +
			statLine("Schedule Adherence", fmt.Sprintf("%d%%", v.Stats.ScheduleAdherence), ColorBlue) +
			statLine("Reliability Score", fmt.Sprintf("%d/100", v.Stats.ReliabilityScore), ColorGreen))

	var recs strings.Builder
	recs.WriteString(titleStyle().Render("Recommendations"))
	for _, r := range corridorRecommendations {
		recs.WriteString("\n• " + r)
	}
	recs.WriteString("\n\n" + mutedStyle().Render("t: view TSP results · s: simulate TSP"))
	recommendations := panelStyle(rightWidth - 4).Render(recs.String())

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		selector,
		lipgloss.JoinHorizontal(lipgloss.Top,
			lipgloss.JoinVertical(lipgloss.Left, chart, locations),
			lipgloss.JoinVertical(lipgloss.Left, stats, recommendations),
		),
	)
}

func statLine(label, value string, color lipgloss.Color) string {
	return fmt.Sprintf("%s\n%s\n", mutedStyle().Render(label),
		lipgloss.NewStyle().Bold(true).Foreground(color).Render(value))
}

func formatTSP(sim model.TSPSimulation) string {
	var b strings.Builder

	b.WriteString(titleStyle().Render("Intersection Results") + "\n")
	rows := make([][]string, 0, len(sim.Results))
	for _, r := range sim.Results {
		rows = append(rows, []string{
			r.Intersection,
			fmt.Sprintf("%.1f min", r.BeforeMin),
			fmt.Sprintf("%.1f min", r.AfterMin),
			fmt.Sprintf("-%.1f min", r.SavingsMin),
			fmt.Sprintf("%d%%", r.ImprovementPct),
		})
	}
	b.WriteString(renderTable([]string{"Intersection", "Before", "After", "Savings", "Improvement"},
		rows, []int{24, 10, 10, 10, 11}, -1))

	b.WriteString("\n\n" + titleStyle().Render("Corridor Impact") + "\n")
	fmt.Fprintf(&b, "%-26s %+.1f min (%d%% faster)\n", "Travel time", sim.TravelTimeMin, sim.ImprovementPct)
	fmt.Fprintf(&b, "%-26s %d/100 (+%d)\n", "Reliability score", sim.ReliabilityScore, sim.ReliabilityGain)
	fmt.Fprintf(&b, "%-26s $%dK\n", "Implementation cost", sim.CostK)
	fmt.Fprintf(&b, "%-26s %.1f%%\n", "Emissions", sim.EmissionsPct)
	fmt.Fprintf(&b, "%-26s $%s/yr\n", "Fuel savings", humanize.Comma(int64(sim.FuelSavings)))
	fmt.Fprintf(&b, "%-26s %d/day\n", "Passenger hours saved", sim.PassengerHours)
	fmt.Fprintf(&b, "%-26s %.1f years\n", "Payback period", sim.PaybackYears)
	return b.String()
}
