package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mobilityiq/mobilityiq/internal/model"
	"github.com/mobilityiq/mobilityiq/internal/session"
)

type scenarioLoadedMsg struct {
	board model.ScenarioBoard
	err   error
}

// ScenarioPage compares the capital investment alternatives.
type ScenarioPage struct {
	backend model.DisplayQuerier
	board   *model.ScenarioBoard
	err     error
	cursor  int

	keys struct {
		prev   key.Binding
		next   key.Binding
		choose key.Binding
	}
}

func NewScenarioPage(backend model.DisplayQuerier) *ScenarioPage {
	p := &ScenarioPage{backend: backend}
	p.keys.prev = key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/→", "scenario"))
	p.keys.next = key.NewBinding(key.WithKeys("right", "l"))
	p.keys.choose = key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select option"))
	return p
}

func (p *ScenarioPage) Screen() session.Screen { return session.ScreenScenario }

func (p *ScenarioPage) Help() []key.Binding {
	return []key.Binding{p.keys.prev, p.keys.choose}
}

func (p *ScenarioPage) Init() tea.Cmd {
	backend := p.backend
	return func() tea.Msg {
		b, err := backend.ScenarioBoard()
		return scenarioLoadedMsg{board: b, err: err}
	}
}

func (p *ScenarioPage) Update(msg tea.Msg) (tea.Cmd, *PageNav) {
	switch msg := msg.(type) {
	case scenarioLoadedMsg:
		p.err = msg.err
		if msg.err == nil {
			b := msg.board
			p.board = &b
			if p.cursor >= len(b.Scenarios) {
				p.cursor = 0
			}
		}
		return nil, nil

	case tea.KeyMsg:
		if p.board == nil || len(p.board.Scenarios) == 0 {
			return nil, nil
		}
		n := len(p.board.Scenarios)
		switch {
		case key.Matches(msg, p.keys.prev):
			p.cursor = (p.cursor - 1 + n) % n
		case key.Matches(msg, p.keys.next):
			p.cursor = (p.cursor + 1) % n
		case key.Matches(msg, p.keys.choose):
			s := p.board.Scenarios[p.cursor]
			return toastCmd("Selected " + scenarioLabel(s) + ": " + s.Name), Navigate(session.ScreenReports)
		}
	}
	return nil, nil
}

func (p *ScenarioPage) View(width, height int) string {
	if p.err != nil {
		return renderError(p.err)
	}
	if p.board == nil {
		return renderLoading()
	}
	b := p.board

	header := titleStyle().Render("Scenario Comparison") + "  " +
		mutedStyle().Render(fmt.Sprintf("Compare alternatives for 2025-2030 Transit Expansion Plan · Budget $%.0fM", b.Budget.BudgetM))

	cards := make([]func(int) string, 0, len(b.Scenarios))
	for i, s := range b.Scenarios {
		i, s := i, s
		cards = append(cards, func(w int) string { return p.renderScenarioCard(s, i == p.cursor, w) })
	}

	leftWidth := width * 3 / 5
	rightWidth := width - leftWidth

	comparison := panelStyle(leftWidth - 4).Render(
		titleStyle().Render("Side-by-Side Comparison") + "\n" + renderComparison(b, leftWidth-6))

	bars := make([]chartBar, 0, len(b.Scenarios))
	for _, s := range b.Scenarios {
		color := ColorGray
		if s.Recommended {
			color = ColorGreen
		}
		bars = append(bars, chartBar{Label: scenarioLabel(s), Value: s.CapitalCostM, Color: color})
	}
	costChart := panelStyle(rightWidth - 4).Render(
		titleStyle().Render("Capital Cost ($M)") + "\n" + renderBarChart(bars, rightWidth-6, 5, "M"))

	budget := panelStyle(rightWidth - 4).Render(
		titleStyle().Render("Budget Summary") + "\n" +
			costLine("Total Budget", fmt.Sprintf("$%.1fM", b.Budget.BudgetM)) +
			costLine("Recommended ("+b.Budget.Recommended+")", fmt.Sprintf("$%.1fM", b.Budget.CostM)) +
			lipgloss.NewStyle().Bold(true).Foreground(budgetColor(b.Budget.RemainingM)).
				Render(fmt.Sprintf("%-18s %10s", "Budget Remaining", fmt.Sprintf("$%.1fM", b.Budget.RemainingM))))

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		renderCardRow(width, cards...),
		lipgloss.JoinHorizontal(lipgloss.Top,
			comparison,
			lipgloss.JoinVertical(lipgloss.Left, budget, costChart),
		),
	)
}

func (p *ScenarioPage) renderScenarioCard(s model.Scenario, selected bool, width int) string {
	var b strings.Builder
	name := lipgloss.NewStyle().Bold(true).Foreground(ColorWhite).Render(truncate(scenarioLabel(s)+": "+s.Name, width-8))
	b.WriteString(name)
	if s.Recommended {
		b.WriteString(" " + lipgloss.NewStyle().Foreground(ColorGreen).Render("★"))
	}
	b.WriteString("\n" + mutedStyle().Render(truncate(s.Description, width-6)) + "\n")
	fmt.Fprintf(&b, "Cost $%.1fM · Riders +%d%%\n", s.CapitalCostM, s.RidershipPct)
	fmt.Fprintf(&b, "CO₂ %d%% · Reliability +%d%%\n", s.EmissionsPct, s.ReliabilityPct)
	b.WriteString(mutedStyle().Render(truncate(s.Routes+" · "+s.Stops+" · "+s.Vehicles, width-6)))

	style := panelStyle(width - 4)
	if selected {
		style = style.BorderForeground(ColorBlue)
	}
	return style.Render(b.String())
}

func renderComparison(b *model.ScenarioBoard, width int) string {
	headers := []string{"Criteria"}
	for _, s := range b.Scenarios {
		headers = append(headers, scenarioLabel(s))
	}
	rows := make([][]string, 0, len(b.Comparison))
	for _, row := range b.Comparison {
		cells := []string{row.Criterion}
		for i, v := range row.Values {
			if i == row.Best {
				v = lipgloss.NewStyle().Foreground(ColorGreen).Render(v + " ✓")
			}
			cells = append(cells, v)
		}
		rows = append(rows, cells)
	}

	first := 24
	col := (width - first - len(b.Scenarios)) / max(1, len(b.Scenarios))
	widths := []int{first}
	for range b.Scenarios {
		widths = append(widths, col)
	}
	return renderTable(headers, rows, widths, -1)
}

func scenarioLabel(s model.Scenario) string {
	return "Scenario " + s.ID
}

func budgetColor(remaining float64) lipgloss.Color {
	if remaining < 0 {
		return ColorRed
	}
	return ColorGreen
}
