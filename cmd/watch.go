package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/x/term"
	"github.com/dustin/go-humanize"

	"github.com/ftahirops/xtrend/model"
	"github.com/ftahirops/xtrend/report"
)

// ── ANSI color/style codes ──────────────────────────────────────────────────

const (
	R = "\033[0m" // reset
	B = "\033[1m" // bold
	D = "\033[2m" // dim

	FBRed = "\033[91m"
	FBGrn = "\033[92m"
	FBYel = "\033[93m"
	FBCyn = "\033[96m"
)

const separatorWidth = 60

// Console prints each report as it arrives. It is a Publisher.
type Console struct {
	mu      sync.Mutex
	w       io.Writer
	color   bool
	periods int
}

// NewConsole writes to w. Color is used only when w is a terminal.
func NewConsole(w io.Writer, periods int) *Console {
	c := &Console{w: w, periods: periods}
	if f, ok := w.(*os.File); ok {
		c.color = term.IsTerminal(f.Fd())
	}
	return c
}

func (c *Console) Name() string { return "console" }

// Publish renders rep.
func (c *Console) Publish(_ context.Context, rep *model.Report) error {
	out := c.render(rep)
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := io.WriteString(c.w, out)
	return err
}

func (c *Console) paint(code, s string) string {
	if !c.color {
		return s
	}
	return code + s + R
}

// levelColor colors text by alert level.
func (c *Console) levelColor(l model.AlertLevel, s string) string {
	switch l {
	case model.AlertCritical:
		return c.paint(B+FBRed, s)
	case model.AlertWarning:
		return c.paint(FBYel, s)
	}
	return c.paint(FBGrn, s)
}

func (c *Console) render(rep *model.Report) string {
	var sb strings.Builder
	s := rep.Snapshot

	fmt.Fprintf(&sb, "\n📊 %s - %s\n", rep.Timestamp.Local().Format(time.TimeOnly), report.Short(rep))
	fmt.Fprintf(&sb, "%s\n", c.paint(D, fmt.Sprintf("   mem %s / %s  disk %s / %s",
		humanize.Bytes(gbBytes(s.MemoryUsedGB)), humanize.Bytes(gbBytes(s.MemoryTotalGB)),
		humanize.Bytes(gbBytes(s.DiskUsedGB)), humanize.Bytes(gbBytes(s.DiskTotalGB)))))

	for _, f := range []model.Field{model.FieldCPU, model.FieldMemoryUsed, model.FieldLoadScore} {
		tr, ok := rep.Trend(f)
		if !ok {
			continue
		}
		fmt.Fprintf(&sb, "%s %s trend: %s%% since last check\n", tr.Direction.Arrow(), report.FieldLabel(f), tr.Change)
	}
	if avg, ok := rep.Average(model.FieldCPU); ok {
		fmt.Fprintf(&sb, "📊 CPU %d-period average: %s%%\n", c.periods, c.paint(FBCyn, report.Fixed2(avg)))
	}

	if len(rep.Alerts) > 0 {
		sb.WriteString("\n🔔 System Alerts:\n")
		for _, a := range rep.Alerts {
			tag := c.levelColor(a.Level, "["+strings.ToUpper(a.Level.String())+"]")
			fmt.Fprintf(&sb, "%s %s %s\n", a.Icon, tag, a.Message)
		}
	}
	sb.WriteString(strings.Repeat("─", separatorWidth))
	sb.WriteString("\n")
	return sb.String()
}

func gbBytes(gb float64) uint64 {
	if gb <= 0 {
		return 0
	}
	return uint64(gb * 1e9)
}

// Banner describes the active configuration at startup.
type Banner struct {
	Interval time.Duration
	Source   string
	Reports  bool
	Summary  bool
	Console  bool
	Trends   bool
	HTTPAddr string
	Record   string
	Archive  string
	AlertLog string
	Notify   bool
}

func tick(on bool) string {
	if on {
		return "✅"
	}
	return "❌"
}

// Write prints the banner to w.
func (b Banner) Write(w io.Writer) {
	fmt.Fprintln(w, "🚀 Starting xtrend system monitor")
	fmt.Fprintf(w, "⏱️  Monitoring interval: %s\n", b.Interval)
	fmt.Fprintf(w, "🔌 Source: %s\n", b.Source)
	fmt.Fprintf(w, "📁 Save reports: %s\n", tick(b.Reports))
	fmt.Fprintf(w, "📄 Save summaries: %s\n", tick(b.Summary))
	fmt.Fprintf(w, "🖥️  Console output: %s\n", tick(b.Console))
	fmt.Fprintf(w, "📈 Trend tracking: %s\n", tick(b.Trends))
	fmt.Fprintf(w, "🔔 Notifications: %s\n", tick(b.Notify))
	optional := []struct{ label, val string }{
		{"🌐 HTTP exporter", b.HTTPAddr},
		{"⏺️  Recording", b.Record},
		{"🗄️  Archive", b.Archive},
		{"📜 Alert log", b.AlertLog},
	}
	for _, o := range optional {
		if o.val == "" {
			fmt.Fprintf(w, "%s: %s\n", o.label, tick(false))
			continue
		}
		fmt.Fprintf(w, "%s: %s %s\n", o.label, tick(true), o.val)
	}
	fmt.Fprintln(w, strings.Repeat("═", separatorWidth))
}
