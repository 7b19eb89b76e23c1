package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/ftahirops/xtrend/collector"
	"github.com/ftahirops/xtrend/config"
	"github.com/ftahirops/xtrend/engine"
	"github.com/ftahirops/xtrend/model"
	"github.com/ftahirops/xtrend/report"
	"github.com/ftahirops/xtrend/server"
	"github.com/ftahirops/xtrend/store"
	"github.com/ftahirops/xtrend/ui"
)

// Version is set at build time via ldflags.
var Version = "0.1.0"

// options is the parsed command line layered over the config file.
type options struct {
	cfg        config.Config
	configPath string
	tui        bool
	jsonMode   bool
	mdMode     bool
	replayPath string
	count      int
}

func printUsage(w io.Writer) func() {
	return func() {
		fmt.Fprintf(w, `xtrend v%s - system load monitor with trends and alerts

Usage:
  xtrend [OPTIONS] [INTERVAL]

Modes:
  (default)         Periodic monitor: console output, report files, optional HTTP exporter
  -tui              Fullscreen dashboard (bubbletea)
  -json             Single tick as a JSON report to stdout, then exit
  -md               Single tick as a Markdown summary to stdout, then exit
  -replay FILE      Feed a recorded file through the monitor instead of live metrics
  -version          Print version and exit

Options:
  -config PATH      Config file (default: %s)
  -interval DUR     Tick interval, e.g. 30s or 5m (default: 60s)
  -history N        Snapshots kept for trends (default: 10)
  -source NAME      Metric source: proc, gopsutil, static (default: proc)
  -proc PATH        procfs root for the proc source (default: /proc)
  -disk PATH        Filesystem whose usage is reported (default: /)
  -reports-dir DIR  Directory for report and summary files (default: reports)
  -no-reports       Do not write per-tick JSON reports
  -no-summary       Do not write the markdown summary
  -no-console       Do not print ticks to stdout
  -no-trends        Disable trend tracking and moving averages
  -http ADDR        Serve /health, /metrics, /trends, /metrics/traffic, /ws on ADDR
  -webhook URL      POST alert-level changes to URL
  -notify-cmd CMD   Run CMD (sh -c) on alert-level changes
  -record FILE      Append every tick to FILE as JSON lines
  -archive FILE     Store every tick in a SQLite database
  -alert-log FILE   Append warning and critical alerts to FILE
  -count N          Stop after N ticks (0 = run until interrupted)
  -log-level LEVEL  debug, info, warn, error (default: info)

Positional:
  INTERVAL          Seconds between ticks: xtrend 30 = xtrend -interval 30s

Examples:
  xtrend                               Monitor every 60s, reports in ./reports
  xtrend 10 -no-reports                Console only, 10s refresh
  xtrend -tui -interval 2s             Dashboard
  xtrend -http :3000 -no-console       Exporter for Prometheus and dashboards
  xtrend -json | jq .loadScore
  xtrend -record /var/log/xtrend.jsonl
  xtrend -replay /var/log/xtrend.jsonl -interval 100ms -no-reports
`, Version, config.Path())
	}
}

// parseArgs parses args over the config file named by -config.
func parseArgs(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("xtrend", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = printUsage(stderr)

	var interval, source, procRoot, diskPath, reportsDir string
	var httpAddr, webhook, notifyCmd, record, archive, alertLog, logLevel string
	var history int
	var noReports, noSummary, noConsole, noTrends, showVer bool
	fs.StringVar(&o.configPath, "config", config.Path(), "Config file")
	fs.StringVar(&interval, "interval", "", "Tick interval")
	fs.IntVar(&history, "history", 0, "Snapshots kept for trends")
	fs.StringVar(&source, "source", "", "Metric source (proc, gopsutil, static)")
	fs.StringVar(&procRoot, "proc", "", "procfs root")
	fs.StringVar(&diskPath, "disk", "", "Filesystem whose usage is reported")
	fs.StringVar(&reportsDir, "reports-dir", "", "Directory for report files")
	fs.BoolVar(&noReports, "no-reports", false, "Do not write JSON reports")
	fs.BoolVar(&noSummary, "no-summary", false, "Do not write the markdown summary")
	fs.BoolVar(&noConsole, "no-console", false, "Do not print ticks")
	fs.BoolVar(&noTrends, "no-trends", false, "Disable trend tracking")
	fs.StringVar(&httpAddr, "http", "", "HTTP listen address")
	fs.StringVar(&webhook, "webhook", "", "Webhook URL for alert changes")
	fs.StringVar(&notifyCmd, "notify-cmd", "", "Command run on alert changes")
	fs.StringVar(&record, "record", "", "Record ticks to FILE")
	fs.StringVar(&o.replayPath, "replay", "", "Replay ticks from FILE")
	fs.StringVar(&archive, "archive", "", "SQLite archive path")
	fs.StringVar(&alertLog, "alert-log", "", "Alert log path")
	fs.StringVar(&logLevel, "log-level", "", "Log level")
	fs.IntVar(&o.count, "count", 0, "Stop after N ticks")
	fs.BoolVar(&o.tui, "tui", false, "Fullscreen dashboard")
	fs.BoolVar(&o.jsonMode, "json", false, "Single JSON report")
	fs.BoolVar(&o.mdMode, "md", false, "Single Markdown summary")
	fs.BoolVar(&showVer, "version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if showVer {
		return o, errVersion
	}

	cfg, err := config.Load(o.configPath)
	if err != nil {
		return o, err
	}

	// Support positional arg for interval: `xtrend 30` = `xtrend -interval 30s`
	if rest := fs.Args(); len(rest) > 0 {
		n, err := strconv.Atoi(rest[0])
		if err != nil || n <= 0 {
			return o, fmt.Errorf("invalid interval %q: want a positive number of seconds", rest[0])
		}
		cfg.Interval = (time.Duration(n) * time.Second).String()
	}

	// Flags given explicitly override the file.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "interval":
			cfg.Interval = interval
		case "history":
			cfg.HistorySize = history
		case "source":
			cfg.Source = source
		case "proc":
			cfg.ProcRoot = procRoot
		case "disk":
			cfg.DiskPath = diskPath
		case "reports-dir":
			cfg.ReportsDir = reportsDir
		case "no-reports":
			cfg.Reports = !noReports
		case "no-summary":
			cfg.Summary = !noSummary
		case "no-console":
			cfg.Console = !noConsole
		case "no-trends":
			cfg.Trends = !noTrends
		case "http":
			cfg.HTTP.Enabled = httpAddr != ""
			cfg.HTTP.Addr = httpAddr
		case "webhook":
			cfg.Notify.Webhook = webhook
		case "notify-cmd":
			cfg.Notify.Command = notifyCmd
		case "record":
			cfg.Record = record
		case "archive":
			cfg.Archive = archive
		case "alert-log":
			cfg.AlertLog = alertLog
		case "log-level":
			cfg.LogLevel = logLevel
		}
	})
	if err := cfg.Validate(); err != nil {
		return o, err
	}
	if o.count < 0 {
		return o, fmt.Errorf("count must not be negative, got %d", o.count)
	}
	if o.jsonMode && o.mdMode {
		return o, errors.New("-json and -md are mutually exclusive")
	}
	o.cfg = cfg
	return o, nil
}

var errVersion = errors.New("version requested")

// Run parses flags and starts the application.
func Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return run(ctx, os.Args[1:], os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	o, err := parseArgs(args, stderr)
	switch {
	case errors.Is(err, flag.ErrHelp):
		return nil
	case errors.Is(err, errVersion):
		fmt.Fprintf(stdout, "xtrend v%s\n", Version)
		return nil
	case err != nil:
		return err
	}
	cfg := o.cfg

	level, _ := config.ParseLogLevel(cfg.LogLevel)
	logOut := stderr
	if o.tui {
		// Log lines would tear the alternate screen.
		logOut = io.Discard
	}
	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: level}))

	src, replayDone, err := openSource(o)
	if err != nil {
		return err
	}
	th := cfg.EngineThresholds()
	eng, err := engine.NewEngine(src, engine.Options{
		HistorySize:    cfg.HistorySize,
		DisableTrends:  !cfg.Trends,
		Thresholds:     &th,
		AveragePeriods: cfg.AveragePeriods,
		Logger:         logger,
	})
	if err != nil {
		return err
	}

	var ticker engine.Ticker = eng
	var rec *engine.Recorder
	if cfg.Record != "" {
		f, err := os.OpenFile(cfg.Record, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("cannot create record file: %w", err)
		}
		defer f.Close()
		rec = engine.NewRecorder(eng, f)
		ticker = rec
	}

	if o.jsonMode || o.mdMode {
		err = runOnce(ctx, ticker, o, stdout, logger)
	} else {
		err = runMonitor(ctx, ticker, o, replayDone, stdout, logger)
	}
	if rec != nil && rec.Err() != nil {
		err = errors.Join(err, rec.Err())
	}
	return err
}

// openSource builds the metric source. replayDone is non-nil when replaying.
func openSource(o options) (collector.Source, <-chan struct{}, error) {
	if o.replayPath != "" {
		f, err := os.Open(o.replayPath)
		if err != nil {
			return nil, nil, fmt.Errorf("cannot open replay file: %w", err)
		}
		defer f.Close()
		p, err := engine.NewPlayer(f)
		if err != nil {
			return nil, nil, fmt.Errorf("load replay %s: %w", o.replayPath, err)
		}
		return p, p.Done(), nil
	}
	switch o.cfg.Source {
	case config.SourceGopsutil:
		return collector.NewGopsutilSource(o.cfg.DiskPath), nil, nil
	case config.SourceStatic:
		return collector.NewStaticSource(collector.Demo()), nil, nil
	}
	return collector.NewProcSource(o.cfg.ProcRoot, o.cfg.DiskPath), nil, nil
}

// runOnce performs a single tick and prints it.
func runOnce(ctx context.Context, t engine.Ticker, o options, stdout io.Writer, logger *slog.Logger) error {
	sched := engine.NewScheduler(t, engine.SchedulerConfig{Logger: logger})
	rep, err := sched.RunOnce(ctx)
	if err != nil {
		return err
	}
	if o.mdMode {
		_, err := io.WriteString(stdout, report.Markdown(rep, o.cfg.AveragePeriods))
		return err
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report.NewDocument(rep, time.Now()))
}

// runMonitor runs the scheduler with every configured sink until ctx ends,
// the replay is exhausted or -count ticks have been published.
func runMonitor(ctx context.Context, t engine.Ticker, o options, replayDone <-chan struct{}, stdout io.Writer, logger *slog.Logger) error {
	cfg := o.cfg
	interval, _ := cfg.IntervalDuration()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	metricsStore := engine.NewMetricsStore()
	sched := engine.NewScheduler(t, engine.SchedulerConfig{
		Interval:   interval,
		Publishers: []engine.Publisher{metricsStore},
		Logger:     logger,
	})

	if cfg.Console && !o.tui {
		sched.AddPublisher(NewConsole(stdout, cfg.AveragePeriods))
	}
	if cfg.Reports {
		sched.AddPublisher(report.NewWriter(cfg.ReportsDir, logger))
	}
	if cfg.Summary {
		sched.AddPublisher(report.NewSummaryWriter(cfg.ReportsDir, cfg.AveragePeriods, logger))
	}
	notifier, err := engine.NewNotifier(cfg.EngineNotify(), logger)
	if err != nil {
		return err
	}
	if notifier.Enabled() {
		sched.AddPublisher(notifier)
	}
	if cfg.AlertLog != "" {
		sched.AddPublisher(engine.NewAlertLog(cfg.AlertLog))
	}
	if cfg.Archive != "" {
		archive, err := store.Open(runCtx, cfg.Archive)
		if err != nil {
			return err
		}
		defer archive.Close()
		sched.AddPublisher(archive)
	}

	var srv *server.Server
	if cfg.HTTP.Enabled {
		hub := server.NewHub(logger)
		sched.AddPublisher(hub)
		srv = server.New(server.Config{
			Addr:         cfg.HTTP.Addr,
			Store:        metricsStore,
			History:      t.Base().History,
			Stats:        sched.Stats,
			Prometheus:   engine.NewPromCollector(metricsStore, cfg.EngineThresholds(), sched.Stats).Handler(),
			Hub:          hub,
			AlertLogPath: cfg.AlertLog,
			Logger:       logger,
		})
	}

	countReached := make(chan struct{})
	if o.count > 0 {
		var n atomic.Int64
		sched.AddPublisher(engine.PublisherFunc{ID: "count", Fn: func(context.Context, *model.Report) error {
			if n.Add(1) == int64(o.count) {
				close(countReached)
			}
			return nil
		}})
	}

	source := cfg.Source
	if o.replayPath != "" {
		source = "replay " + o.replayPath
	}
	if !o.tui {
		b := Banner{
			Interval: interval,
			Source:   source,
			Reports:  cfg.Reports,
			Summary:  cfg.Summary,
			Console:  cfg.Console,
			Trends:   cfg.Trends,
			Record:   cfg.Record,
			Archive:  cfg.Archive,
			AlertLog: cfg.AlertLog,
			Notify:   notifier.Enabled(),
		}
		if cfg.HTTP.Enabled {
			b.HTTPAddr = cfg.HTTP.Addr
		}
		b.Write(stdout)
	}

	g, gctx := errgroup.WithContext(runCtx)

	if o.tui {
		var hist *engine.History
		if cfg.Trends {
			hist = t.Base().History
		}
		p := tea.NewProgram(ui.NewModel(ui.Options{
			Source:     source,
			Interval:   interval,
			Periods:    cfg.AveragePeriods,
			Thresholds: cfg.EngineThresholds(),
			History:    hist,
			Stats:      sched.Stats,
		}), tea.WithAltScreen(), tea.WithContext(gctx))
		feed := ui.NewFeed()
		feed.Attach(p)
		sched.AddPublisher(feed)
		g.Go(func() error {
			defer cancel()
			if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
				return fmt.Errorf("dashboard: %w", err)
			}
			return nil
		})
	}

	h := sched.Start(gctx)
	if srv != nil {
		g.Go(func() error { return srv.Run(gctx) })
	}

	g.Go(func() error {
		select {
		case <-gctx.Done():
		case <-replayDone:
		case <-countReached:
		}
		h.Stop()
		cancel()
		return nil
	})

	err = g.Wait()
	st := sched.Stats()
	logger.Info("monitoring stopped", "ticks", st.Ticks, "failures", st.Failures, "skipped", st.Skipped)
	return err
}
