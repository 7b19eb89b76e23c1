// Package ui is the fullscreen bubbletea dashboard. Reports arrive from the
// scheduler through a Feed publisher.
package ui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ftahirops/xtrend/engine"
	"github.com/ftahirops/xtrend/model"
	"github.com/ftahirops/xtrend/report"
)

// Page identifies the current screen.
type Page int

const (
	PageOverview Page = iota
	PageTrends
	PageAlerts
	pageCount
)

var pageNames = []string{"Overview", "Trends", "Alerts"}

type reportMsg struct{ rep *model.Report }

type sender interface {
	Send(msg tea.Msg)
}

// Feed forwards published reports into a running program. Reports published
// before Attach are dropped.
type Feed struct {
	mu   sync.Mutex
	prog sender
}

// NewFeed creates a detached feed.
func NewFeed() *Feed { return &Feed{} }

// Attach connects the feed to p.
func (f *Feed) Attach(p *tea.Program) {
	f.attach(p)
}

func (f *Feed) attach(s sender) {
	f.mu.Lock()
	f.prog = s
	f.mu.Unlock()
}

func (f *Feed) Name() string { return "tui" }

// Publish sends rep to the program.
func (f *Feed) Publish(_ context.Context, rep *model.Report) error {
	f.mu.Lock()
	p := f.prog
	f.mu.Unlock()
	if p != nil {
		p.Send(reportMsg{rep: rep})
	}
	return nil
}

// Options configures the dashboard.
type Options struct {
	Source     string
	Interval   time.Duration
	Periods    int
	Thresholds engine.Thresholds
	// History feeds the trend charts. Nil when trends are disabled.
	History *engine.History
	// Stats reports scheduler counters. May be nil.
	Stats func() engine.Stats
}

// Model is the bubbletea model.
type Model struct {
	opts   Options
	width  int
	height int

	rep      *model.Report
	received time.Time
	missed   int // reports dropped while paused

	page     Page
	showHelp bool
	paused   bool
	scroll   int
}

// NewModel creates the dashboard model.
func NewModel(opts Options) Model {
	if opts.Periods <= 0 {
		opts.Periods = engine.DefaultAveragePeriods
	}
	return Model{opts: opts, width: 100, height: 30}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case reportMsg:
		if m.paused {
			m.missed++
			return m, nil
		}
		m.rep = msg.rep
		m.received = time.Now()
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Help):
			m.showHelp = !m.showHelp
		case key.Matches(msg, keys.Pause):
			m.paused = !m.paused
			if !m.paused {
				m.missed = 0
			}
		case key.Matches(msg, keys.NextPage):
			m.setPage((m.page + 1) % pageCount)
		case key.Matches(msg, keys.PrevPage):
			m.setPage((m.page + pageCount - 1) % pageCount)
		case key.Matches(msg, keys.Page1):
			m.setPage(PageOverview)
		case key.Matches(msg, keys.Page2):
			m.setPage(PageTrends)
		case key.Matches(msg, keys.Page3):
			m.setPage(PageAlerts)
		case key.Matches(msg, keys.ScrollDown):
			m.scroll++
		case key.Matches(msg, keys.ScrollUp):
			if m.scroll > 0 {
				m.scroll--
			}
		}
	}
	return m, nil
}

func (m *Model) setPage(p Page) {
	m.page = p
	m.scroll = 0
}

func (m Model) View() string {
	var body string
	switch {
	case m.showHelp:
		body = m.renderHelp()
	case m.rep == nil:
		body = dimStyle.Render("Waiting for the first tick...")
	case m.page == PageTrends:
		body = m.renderTrends()
	case m.page == PageAlerts:
		body = m.renderAlerts()
	default:
		body = m.renderOverview()
	}
	body = m.clip(body)
	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), body, m.renderFooter())
}

// clip applies the scroll offset and trims to the window height.
func (m Model) clip(body string) string {
	lines := strings.Split(body, "\n")
	start := m.scroll
	if start >= len(lines) {
		start = len(lines) - 1
	}
	lines = lines[start:]
	if limit := m.height - 4; limit > 0 && len(lines) > limit {
		lines = lines[:limit]
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderHeader() string {
	var tabs []string
	for i, name := range pageNames {
		label := fmt.Sprintf(" %d %s ", i+1, name)
		if Page(i) == m.page {
			tabs = append(tabs, selectedStyle.Render(label))
		} else {
			tabs = append(tabs, dimStyle.Render(label))
		}
	}
	status := "WAITING"
	statusStyle := dimStyle
	if m.rep != nil {
		lvl := m.rep.Level()
		status = report.StatusLabel(lvl)
		statusStyle = levelStyle(lvl)
	}
	title := titleStyle.Render("xtrend") + dimStyle.Render(fmt.Sprintf("  %s  every %s  ", m.opts.Source, m.opts.Interval)) +
		statusStyle.Render(status)
	if m.paused {
		title += warnStyle.Render(fmt.Sprintf("  PAUSED (%d new)", m.missed))
	}
	return title + "\n" + strings.Join(tabs, " ")
}

func (m Model) renderFooter() string {
	var parts []string
	for _, b := range keys.ShortHelp() {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	line := strings.Join(parts, " · ")
	if m.opts.Stats != nil {
		st := m.opts.Stats()
		line += fmt.Sprintf("   ticks %d  failed %d  skipped %d", st.Ticks, st.Failures, st.Skipped)
	}
	return helpStyle.Render(line)
}

func (m Model) renderHelp() string {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render("Keys") + "\n")
	for _, group := range keys.FullHelp() {
		for _, b := range group {
			h := b.Help()
			sb.WriteString(fmt.Sprintf("  %s %s\n", styledPad(valueStyle.Render(h.Key), 12), dimStyle.Render(h.Desc)))
		}
		sb.WriteString("\n")
	}
	return panelStyle.Render(strings.TrimRight(sb.String(), "\n"))
}

func percentOrUnknown(f func() (float64, error)) float64 {
	v, err := f()
	if err != nil {
		return -1
	}
	return v
}

func (m Model) renderOverview() string {
	s := m.rep.Snapshot
	th := m.opts.Thresholds
	w := m.width - 4

	var sb strings.Builder
	sb.WriteString(gaugeRow("CPU", report.Fixed2(s.CPUPercent)+"%", s.CPUPercent, th.CPU, w) + "\n")
	sb.WriteString(gaugeRow("Memory", fmt.Sprintf("%s / %s GB", report.Fixed2(s.MemoryUsedGB), report.Fixed2(s.MemoryTotalGB)),
		percentOrUnknown(s.MemoryPercent), th.Memory, w) + "\n")
	sb.WriteString(gaugeRow("Disk", fmt.Sprintf("%s / %s GB", report.Fixed2(s.DiskUsedGB), report.Fixed2(s.DiskTotalGB)),
		percentOrUnknown(s.DiskPercent), th.Disk, w) + "\n")
	sb.WriteString(gaugeRow("Load", report.Fixed2(s.LoadScore), s.LoadScore, th.Load, w) + "\n")

	netStyle := okStyle
	if s.NetTotalMBps() > th.NetworkWarnMBps {
		netStyle = warnStyle
	}
	sb.WriteString(styledPad(headerStyle.Render("Network"), colName) +
		netStyle.Render(fmt.Sprintf("↓%s ↑%s MB/s", report.Fixed2(s.NetRxMBps), report.Fixed2(s.NetTxMBps))) + "\n")

	if len(m.rep.Trends) > 0 || len(m.rep.Averages) > 0 {
		sb.WriteString("\n" + headerStyle.Render("Trends") + "\n")
		for _, f := range model.Fields {
			tr, ok := m.rep.Trend(f)
			if !ok {
				continue
			}
			sb.WriteString(fmt.Sprintf("  %s %s %s%%\n", tr.Direction.Arrow(),
				styledPad(valueStyle.Render(report.FieldLabel(f)), 12), tr.Change))
		}
		if avg, ok := m.rep.Average(model.FieldCPU); ok {
			sb.WriteString(fmt.Sprintf("  CPU %d-period average: %s%%\n", m.opts.Periods, report.Fixed2(avg)))
		}
	}

	sb.WriteString("\n" + m.renderAlertLines())
	sb.WriteString(dimStyle.Render(fmt.Sprintf("\nreport %s at %s", shortID(m.rep.ID), m.rep.Timestamp.Local().Format(time.TimeOnly))))
	return sb.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func (m Model) renderAlertLines() string {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render("Alerts") + "\n")
	for _, a := range m.rep.Alerts {
		tag := levelStyle(a.Level).Render("[" + strings.ToUpper(a.Level.String()) + "]")
		sb.WriteString(fmt.Sprintf("  %s %s %s\n", a.Icon, tag, a.Message))
	}
	return sb.String()
}

func (m Model) renderAlerts() string {
	var sb strings.Builder
	sb.WriteString(m.renderAlertLines())
	counts := model.CountByLevel(m.rep.Alerts)
	sb.WriteString(dimStyle.Render(fmt.Sprintf("\n%d critical, %d warning, %d info",
		counts[model.AlertCritical], counts[model.AlertWarning], counts[model.AlertInfo])))
	return sb.String()
}

func (m Model) renderTrends() string {
	h := m.opts.History
	if h == nil {
		return dimStyle.Render("Trend tracking is disabled.")
	}
	snaps := h.SnapshotAll()
	if len(snaps) < 2 {
		return dimStyle.Render(fmt.Sprintf("Collecting history (%d/%d)...", len(snaps), h.Cap()))
	}
	start, end := snaps[0].Timestamp, snaps[len(snaps)-1].Timestamp
	chartH := (m.height - 12) / 3
	if chartH < 3 {
		chartH = 3
	}
	th := m.opts.Thresholds
	w := m.width - 2

	cpu := h.Series(model.FieldCPU)
	load := h.Series(model.FieldLoadScore)
	mem := h.Series(model.FieldMemoryUsed)
	memBand := engine.Band{Warn: th.Memory.Warn / 100, Crit: th.Memory.Crit / 100}
	if total, ok := snaps[len(snaps)-1].Value(model.FieldMemoryTotal); ok && total > 0 {
		memBand = engine.Band{Warn: total * th.Memory.Warn / 100, Crit: total * th.Memory.Crit / 100}
	}

	charts := []string{
		areaChart(cpu, "CPU %", w, chartH, 0, 100, func(v float64) lipgloss.Style { return bandStyle(v, th.CPU) }, start, end),
		areaChart(load, "Load score", w, chartH, 0, 100, func(v float64) lipgloss.Style { return bandStyle(v, th.Load) }, start, end),
		areaChart(mem, "Memory used GB", w, chartH, 0, autoScale(mem, 1024), func(v float64) lipgloss.Style { return bandStyle(v, memBand) }, start, end),
	}
	return strings.Join(charts, "\n")
}
