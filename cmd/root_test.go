package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ftahirops/xtrend/collector"
	"github.com/ftahirops/xtrend/report"
	"github.com/ftahirops/xtrend/store"
)

func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseArgsLayering(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.yaml", "interval: 5s\nconsole: true\nsource: gopsutil\n")

	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, o options)
	}{
		{"file values", []string{"-config", cfgPath}, func(t *testing.T, o options) {
			if o.cfg.Interval != "5s" || o.cfg.Source != "gopsutil" {
				t.Errorf("cfg = %+v, want file values", o.cfg)
			}
		}},
		{"positional interval", []string{"-config", cfgPath, "30"}, func(t *testing.T, o options) {
			if o.cfg.Interval != "30s" {
				t.Errorf("Interval = %q, want 30s", o.cfg.Interval)
			}
		}},
		{"flags win", []string{"-config", cfgPath, "-interval", "2s", "-no-console", "-source", "static", "-http", ":9999"}, func(t *testing.T, o options) {
			c := o.cfg
			if c.Interval != "2s" || c.Console || c.Source != "static" {
				t.Errorf("cfg = %+v, want flag overrides", c)
			}
			if !c.HTTP.Enabled || c.HTTP.Addr != ":9999" {
				t.Errorf("HTTP = %+v, want enabled on :9999", c.HTTP)
			}
		}},
		{"modes", []string{"-config", cfgPath, "-tui", "-count", "3"}, func(t *testing.T, o options) {
			if !o.tui || o.count != 3 {
				t.Errorf("options = %+v, want tui with count 3", o)
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := parseArgs(tt.args, &bytes.Buffer{})
			if err != nil {
				t.Fatalf("parseArgs() error = %v", err)
			}
			tt.check(t, o)
		})
	}
}

func TestParseArgsErrors(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "none.yaml")
	tests := []struct {
		name string
		args []string
	}{
		{"bad positional", []string{"-config", missing, "soon"}},
		{"bad source", []string{"-config", missing, "-source", "snmp"}},
		{"bad interval", []string{"-config", missing, "-interval", "-1s"}},
		{"json and md", []string{"-config", missing, "-json", "-md"}},
		{"negative count", []string{"-config", missing, "-count", "-1"}},
		{"unknown flag", []string{"-config", missing, "-frobnicate"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseArgs(tt.args, &bytes.Buffer{}); err == nil {
				t.Error("parseArgs() error = nil")
			}
		})
	}
}

func TestRunVersion(t *testing.T) {
	var out bytes.Buffer
	if err := run(context.Background(), []string{"-version"}, &out, &bytes.Buffer{}); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out.String(), "xtrend v") {
		t.Errorf("output = %q", out.String())
	}
}

func TestRunJSON(t *testing.T) {
	var out bytes.Buffer
	args := []string{"-config", filepath.Join(t.TempDir(), "none.yaml"), "-source", "static", "-json"}
	if err := run(context.Background(), args, &out, &bytes.Buffer{}); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	var doc report.Document
	if err := json.Unmarshal(out.Bytes(), &doc); err != nil {
		t.Fatalf("output is not a report: %v\n%s", err, out.String())
	}
	if doc.LoadScore != 33.3 || doc.CPU != "42.50" {
		t.Errorf("doc = %+v, want load 33.3 and cpu 42.50", doc)
	}
}

func TestRunMarkdown(t *testing.T) {
	var out bytes.Buffer
	args := []string{"-config", filepath.Join(t.TempDir(), "none.yaml"), "-source", "static", "-md"}
	if err := run(context.Background(), args, &out, &bytes.Buffer{}); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !strings.HasPrefix(out.String(), "# xtrend System Summary") {
		t.Errorf("output = %q, want markdown summary", out.String())
	}
}

func TestRunReplayWithSinks(t *testing.T) {
	dir := t.TempDir()
	var frames strings.Builder
	for i := 0; i < 3; i++ {
		b, err := json.Marshal(collector.Demo())
		if err != nil {
			t.Fatal(err)
		}
		frames.Write(b)
		frames.WriteByte('\n')
	}
	replay := writeFile(t, dir, "replay.jsonl", frames.String())
	dbPath := filepath.Join(dir, "ticks.db")
	reports := filepath.Join(dir, "reports")
	recordPath := filepath.Join(dir, "record.jsonl")

	var out bytes.Buffer
	args := []string{
		"-config", filepath.Join(dir, "none.yaml"),
		"-replay", replay,
		"-interval", "10ms",
		"-reports-dir", reports,
		"-archive", dbPath,
		"-record", recordPath,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := run(ctx, args, &out, &bytes.Buffer{}); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	got := out.String()
	for _, want := range []string{"Starting xtrend system monitor", "Source: replay", "📊", "CPU trend: 0.00% since last check"} {
		if !strings.Contains(got, want) {
			t.Errorf("console output missing %q", want)
		}
	}

	a, err := store.Open(context.Background(), dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()
	if n, err := a.Count(context.Background()); err != nil || n != 3 {
		t.Errorf("archive Count() = %d, %v, want 3", n, err)
	}

	if _, err := os.Stat(filepath.Join(reports, report.SummaryFile)); err != nil {
		t.Errorf("summary not written: %v", err)
	}
	entries, err := filepath.Glob(filepath.Join(reports, "report-*.json"))
	if err != nil || len(entries) == 0 {
		t.Errorf("no report files written: %v", err)
	}

	rec, err := os.ReadFile(recordPath)
	if err != nil {
		t.Fatal(err)
	}
	if lines := strings.Count(string(rec), "\n"); lines != 3 {
		t.Errorf("recorded %d frames, want 3", lines)
	}
}
