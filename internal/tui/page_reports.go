package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/mobilityiq/mobilityiq/internal/model"
	"github.com/mobilityiq/mobilityiq/internal/report"
	"github.com/mobilityiq/mobilityiq/internal/session"
)

const reportPreparedBy = "Sarah Chen"

// recentDownloads caps the list shown under the export options.
const recentDownloads = 5

type reportsLoadedMsg struct {
	templates []model.ReportTemplate
	figures   report.Figures
	recent    []model.ExportAck
	err       error
}

type recentExportsMsg struct {
	recent []model.ExportAck
	err    error
}

type exportedMsg struct {
	ack model.ExportAck
	err error
}

type reportItemKind int

const (
	itemTemplate reportItemKind = iota
	itemSection
	itemFormat
)

type reportItem struct {
	kind  reportItemKind
	index int
}

// ReportsPage assembles a report: template, sections and format, with a
// rendered first-page preview.
type ReportsPage struct {
	backend interface {
		model.DisplayQuerier
		model.ReportExporter
	}

	templates []model.ReportTemplate
	figures   report.Figures
	recent    []model.ExportAck
	loaded    bool
	err       error

	template int
	sections report.SectionSet
	format   report.Format
	cursor   int

	preview      viewport.Model
	rendered     string
	renderedFor  string
	renderWidth  int
	previewDirty bool

	keys struct {
		toggle   key.Binding
		preview  key.Binding
		download key.Binding
		back     key.Binding
		scroll   key.Binding
	}
}

func NewReportsPage(backend interface {
	model.DisplayQuerier
	model.ReportExporter
}) *ReportsPage {
	p := &ReportsPage{
		backend:  backend,
		sections: report.DefaultSections(),
		format:   report.FormatPDF,
		preview:  viewport.New(60, 20),
	}
	p.keys.toggle = key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "select/toggle"))
	p.keys.preview = key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "preview"))
	p.keys.download = key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "download"))
	p.keys.back = key.NewBinding(key.WithKeys("esc", "b"), key.WithHelp("b", "back"))
	p.keys.scroll = key.NewBinding(key.WithKeys("pgup", "pgdown"), key.WithHelp("pgup/pgdn", "scroll preview"))
	return p
}

func (p *ReportsPage) Screen() session.Screen { return session.ScreenReports }

func (p *ReportsPage) Help() []key.Binding {
	return []key.Binding{p.keys.toggle, p.keys.preview, p.keys.download, p.keys.scroll, p.keys.back}
}

// Init loads the templates and the live figures quoted in the preview.
func (p *ReportsPage) Init() tea.Cmd {
	backend := p.backend
	return func() tea.Msg {
		templates, err := backend.ReportTemplates()
		if err != nil {
			return reportsLoadedMsg{err: err}
		}
		dash, err := backend.Dashboard()
		if err != nil {
			return reportsLoadedMsg{err: err}
		}
		corridor, err := backend.Corridor()
		if err != nil {
			return reportsLoadedMsg{err: err}
		}
		tsp, err := backend.TSPSimulation()
		if err != nil {
			return reportsLoadedMsg{err: err}
		}

		f := report.Figures{
			Stats:      corridor.Stats,
			TSPCostK:   tsp.CostK,
			TSPSites:   len(tsp.Results),
			PreparedBy: reportPreparedBy,
			Date:       time.Now(),
		}
		for _, c := range dash.Cards {
			switch c.Title {
			case "On-Time Performance":
				f.OnTime = c.Value
			case "Daily Ridership":
				f.Ridership = c.Value
			}
		}
		recent, err := backend.RecentExports()
		if err != nil {
			return reportsLoadedMsg{err: err}
		}
		return reportsLoadedMsg{templates: templates, figures: f, recent: recent}
	}
}

func (p *ReportsPage) loadRecent() tea.Cmd {
	backend := p.backend
	return func() tea.Msg {
		recent, err := backend.RecentExports()
		return recentExportsMsg{recent: recent, err: err}
	}
}

func (p *ReportsPage) items() []reportItem {
	var out []reportItem
	for i := range p.templates {
		out = append(out, reportItem{kind: itemTemplate, index: i})
	}
	for i := range report.Sections() {
		out = append(out, reportItem{kind: itemSection, index: i})
	}
	for i := range report.Formats() {
		out = append(out, reportItem{kind: itemFormat, index: i})
	}
	return out
}

func (p *ReportsPage) Update(msg tea.Msg) (tea.Cmd, *PageNav) {
	switch msg := msg.(type) {
	case reportsLoadedMsg:
		p.err = msg.err
		if msg.err == nil {
			p.loaded = true
			p.templates = msg.templates
			p.figures = msg.figures
			p.recent = msg.recent
			if p.template >= len(p.templates) {
				p.template = 0
			}
			p.previewDirty = true
		}
		return nil, nil

	case exportedMsg:
		if msg.err != nil {
			return errorCmd(msg.err), nil
		}
		return tea.Batch(toastCmd(msg.ack.Message), p.loadRecent()), nil

	case recentExportsMsg:
		if msg.err != nil {
			return errorCmd(msg.err), nil
		}
		p.recent = msg.recent
		return nil, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, p.keys.back):
			return nil, Back()
		case key.Matches(msg, p.keys.preview):
			p.previewDirty = true
			p.preview.GotoTop()
			return toastCmd(report.PreviewMessage), nil
		case key.Matches(msg, p.keys.download):
			return p.download(), nil
		case key.Matches(msg, p.keys.toggle):
			p.activate()
			return nil, nil
		}
		switch msg.String() {
		case "up", "k":
			if p.cursor > 0 {
				p.cursor--
			}
		case "down", "j":
			if p.cursor < len(p.items())-1 {
				p.cursor++
			}
		case "pgup":
			p.preview.HalfPageUp()
		case "pgdown":
			p.preview.HalfPageDown()
		}

	case tea.MouseMsg:
		scrollViewport(&p.preview, msg, false)
	}
	return nil, nil
}

func (p *ReportsPage) activate() {
	items := p.items()
	if p.cursor >= len(items) {
		return
	}
	it := items[p.cursor]
	switch it.kind {
	case itemTemplate:
		p.template = it.index
	case itemSection:
		p.sections.Toggle(report.Sections()[it.index].ID)
	case itemFormat:
		p.format = report.Formats()[it.index]
	}
	p.previewDirty = true
}

func (p *ReportsPage) request() model.ExportRequest {
	req := model.ExportRequest{Format: p.format.String(), Sections: p.sections.IDs()}
	if p.template < len(p.templates) {
		req.Template = p.templates[p.template].ID
	}
	return req
}

func (p *ReportsPage) download() tea.Cmd {
	if len(p.templates) == 0 {
		return nil
	}
	backend := p.backend
	req := p.request()
	return func() tea.Msg {
		ack, err := backend.ExportReport(req)
		return exportedMsg{ack: ack, err: err}
	}
}

func (p *ReportsPage) View(width, height int) string {
	if p.err != nil {
		return renderError(p.err)
	}
	if !p.loaded {
		return renderLoading()
	}

	header := titleStyle().Render("Report Generation") + "  " +
		mutedStyle().Render("Create professional reports and presentations")

	leftWidth := 40
	if width < 100 {
		leftWidth = 34
	}
	rightWidth := width - leftWidth
	bodyHeight := height - lipgloss.Height(header) - 2

	options := panelStyle(leftWidth - 4).Render(p.renderOptions())

	p.preview.Width = rightWidth - 6
	p.preview.Height = bodyHeight - 3
	p.preview.SetContent(p.renderPreview(rightWidth - 8))
	preview := panelStyle(rightWidth - 4).Render(
		titleStyle().Render("Report Preview") + "\n" + p.preview.View())

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		lipgloss.JoinHorizontal(lipgloss.Top, options, preview),
	)
}

func (p *ReportsPage) renderOptions() string {
	var b strings.Builder
	cursor := 0
	line := func(text string, on bool) {
		prefix := "  "
		style := lipgloss.NewStyle()
		if cursor == p.cursor {
			prefix = "▸ "
			style = style.Foreground(ColorBlue).Bold(true)
		}
		if on {
			style = style.Foreground(ColorGreen)
			if cursor == p.cursor {
				style = style.Foreground(ColorBlue)
			}
		}
		b.WriteString(style.Render(prefix+text) + "\n")
		cursor++
	}

	b.WriteString(titleStyle().Render("Select Template") + "\n")
	for i, t := range p.templates {
		mark := "○"
		if i == p.template {
			mark = "●"
		}
		line(fmt.Sprintf("%s %s (%s)", mark, t.Name, t.Pages), i == p.template)
	}

	b.WriteString("\n" + titleStyle().Render("Include Sections") + "\n")
	for _, s := range report.Sections() {
		mark := "[ ]"
		if p.sections[s.ID] {
			mark = "[x]"
		}
		line(mark+" "+s.Label, p.sections[s.ID])
	}

	b.WriteString("\n" + titleStyle().Render("Export Format") + "\n")
	for _, f := range report.Formats() {
		mark := "○"
		if f == p.format {
			mark = "●"
		}
		line(mark+" "+f.Label(), f == p.format)
	}

	b.WriteString("\n" + titleStyle().Render("Recent Downloads") + "\n")
	if len(p.recent) == 0 {
		b.WriteString(mutedStyle().Render("  none yet") + "\n")
	}
	for i, ack := range p.recent {
		if i == recentDownloads {
			break
		}
		b.WriteString(mutedStyle().Render(fmt.Sprintf("  %s  %s %s",
			ack.CreatedAt.Format("15:04"), strings.ToUpper(ack.Format), ack.Template)) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderPreview renders the markdown preview through glamour, caching the
// result until the inputs or the width change.
func (p *ReportsPage) renderPreview(width int) string {
	if len(p.templates) == 0 {
		return mutedStyle().Render("No report templates")
	}
	md := report.Preview(p.templates[p.template], p.sections, p.figures)
	if !p.previewDirty && md == p.renderedFor && width == p.renderWidth {
		return p.rendered
	}

	out := md
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err == nil {
		if rendered, err := r.Render(md); err == nil {
			out = rendered
		}
	}
	p.rendered = out
	p.renderedFor = md
	p.renderWidth = width
	p.previewDirty = false
	return out
}
