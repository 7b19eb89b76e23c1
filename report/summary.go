package report

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ftahirops/xtrend/model"
)

// SummaryFile is the name of the markdown summary kept up to date by
// SummaryWriter.
const SummaryFile = "latest-summary.md"

// FieldLabel returns the display name of a metric field.
func FieldLabel(f model.Field) string {
	switch f {
	case model.FieldCPU:
		return "CPU"
	case model.FieldMemoryUsed:
		return "Memory"
	case model.FieldMemoryTotal:
		return "Memory total"
	case model.FieldDiskUsed:
		return "Disk"
	case model.FieldDiskTotal:
		return "Disk total"
	case model.FieldNetRx:
		return "Network rx"
	case model.FieldNetTx:
		return "Network tx"
	case model.FieldLoadScore:
		return "Load Score"
	}
	return string(f)
}

// StatusLabel maps the worst alert level to the summary status word.
func StatusLabel(l model.AlertLevel) string {
	switch l {
	case model.AlertCritical:
		return "CRITICAL"
	case model.AlertWarning:
		return "WARNING"
	}
	return "OK"
}

// Short renders a one-line status.
func Short(rep *model.Report) string {
	s := rep.Snapshot
	mem, disk := "n/a", "n/a"
	if pct, err := s.MemoryPercent(); err == nil {
		mem = fmt.Sprintf("%.1f%%", pct)
	}
	if pct, err := s.DiskPercent(); err == nil {
		disk = fmt.Sprintf("%.1f%%", pct)
	}
	return fmt.Sprintf("%s | Load %.2f | CPU %s%% | Mem %s | Disk %s | Net ↓%s ↑%s MB/s",
		StatusLabel(rep.Level()), s.LoadScore, Fixed2(s.CPUPercent), mem, disk,
		Fixed2(s.NetRxMBps), Fixed2(s.NetTxMBps))
}

// trendOrder fixes the order trend lines are rendered in.
var trendOrder = []model.Field{
	model.FieldCPU, model.FieldMemoryUsed, model.FieldMemoryTotal,
	model.FieldDiskUsed, model.FieldDiskTotal, model.FieldNetRx,
	model.FieldNetTx, model.FieldLoadScore,
}

// Markdown renders a full summary of rep. periods is the moving-average
// window the averages were computed over.
func Markdown(rep *model.Report, periods int) string {
	var sb strings.Builder
	s := rep.Snapshot

	sb.WriteString("# xtrend System Summary\n\n")
	sb.WriteString(fmt.Sprintf("**Timestamp:** %s\n\n", rep.Timestamp.Format(time.RFC3339)))

	sb.WriteString("## Status\n\n")
	sb.WriteString(fmt.Sprintf("- **Status:** %s\n", StatusLabel(rep.Level())))
	sb.WriteString(fmt.Sprintf("- **Load Score:** %s/100\n", Fixed2(s.LoadScore)))

	sb.WriteString("\n## Resources\n\n")
	sb.WriteString("| Resource | Used | Total | Usage |\n")
	sb.WriteString("|----------|------|-------|-------|\n")
	sb.WriteString(fmt.Sprintf("| CPU | %s%% | - | %s%% |\n", Fixed2(s.CPUPercent), Fixed2(s.CPUPercent)))
	sb.WriteString(fmt.Sprintf("| Memory | %s GB | %s GB | %s |\n",
		Fixed2(s.MemoryUsedGB), Fixed2(s.MemoryTotalGB), pctOrNA(s.MemoryPercent)))
	sb.WriteString(fmt.Sprintf("| Disk | %s GB | %s GB | %s |\n",
		Fixed2(s.DiskUsedGB), Fixed2(s.DiskTotalGB), pctOrNA(s.DiskPercent)))
	sb.WriteString(fmt.Sprintf("| Network | ↓ %s MB/s | ↑ %s MB/s | - |\n", Fixed2(s.NetRxMBps), Fixed2(s.NetTxMBps)))

	if len(rep.Trends) > 0 {
		sb.WriteString("\n## Trends\n\n")
		for _, f := range trendOrder {
			if t, ok := rep.Trend(f); ok {
				sb.WriteString(fmt.Sprintf("- %s **%s:** %s%% since last check\n", t.Direction.Arrow(), FieldLabel(f), t.Change))
			}
		}
	}

	if len(rep.Averages) > 0 {
		sb.WriteString("\n## Averages\n\n")
		for _, f := range trendOrder {
			if v, ok := rep.Average(f); ok {
				sb.WriteString(fmt.Sprintf("- **%s %d-period average:** %s\n", FieldLabel(f), periods, Fixed2(v)))
			}
		}
	}

	sb.WriteString("\n## Alerts\n\n")
	for _, a := range rep.Alerts {
		sb.WriteString(fmt.Sprintf("- %s **[%s]** %s\n", a.Icon, strings.ToUpper(a.Level.String()), a.Message))
	}
	return sb.String()
}

func pctOrNA(f func() (float64, error)) string {
	v, err := f()
	if err != nil {
		return "n/a"
	}
	return Fixed2(v) + "%"
}

// SummaryWriter keeps dir/latest-summary.md in sync with the newest report.
type SummaryWriter struct {
	dir     string
	periods int
	logger  *slog.Logger
}

// NewSummaryWriter creates a summary writer. periods labels the averages.
func NewSummaryWriter(dir string, periods int, logger *slog.Logger) *SummaryWriter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SummaryWriter{dir: dir, periods: periods, logger: logger}
}

func (w *SummaryWriter) Name() string { return "summary-file" }

func (w *SummaryWriter) Publish(_ context.Context, rep *model.Report) error {
	if err := writeAtomic(w.dir, SummaryFile, []byte(Markdown(rep, w.periods))); err != nil {
		return fmt.Errorf("save summary: %w", err)
	}
	w.logger.Debug("markdown summary updated", "file", SummaryFile)
	return nil
}
