package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ftahirops/xtrend/collector"
	"github.com/ftahirops/xtrend/model"
)

// DefaultAveragePeriods is the moving-average window used in reports.
const DefaultAveragePeriods = 5

// Options configures an Engine. Zero values select defaults.
type Options struct {
	HistorySize int
	// DisableTrends skips History.Record, so no trends or averages are produced.
	DisableTrends  bool
	Thresholds     *Thresholds
	TrendFields    []model.Field
	AverageFields  []model.Field
	AveragePeriods int
	Logger         *slog.Logger
}

var (
	defaultTrendFields   = []model.Field{model.FieldCPU, model.FieldMemoryUsed, model.FieldLoadScore}
	defaultAverageFields = []model.Field{model.FieldCPU}
)

// Engine turns raw readings into reports: normalize, score, record, evaluate.
type Engine struct {
	source     collector.Source
	History    *History
	thresholds Thresholds
	opts       Options
	logger     *slog.Logger
	now        func() time.Time
	tickMu     sync.Mutex // serializes Tick/Ingest so history order matches tick order
}

// NewEngine creates an engine reading from src. src may be nil when the
// caller only uses Ingest.
func NewEngine(src collector.Source, opts Options) (*Engine, error) {
	th := DefaultThresholds()
	if opts.Thresholds != nil {
		th = *opts.Thresholds
	}
	if err := th.Validate(); err != nil {
		return nil, fmt.Errorf("thresholds: %w", err)
	}
	if opts.TrendFields == nil {
		opts.TrendFields = defaultTrendFields
	}
	if opts.AverageFields == nil {
		opts.AverageFields = defaultAverageFields
	}
	if opts.AveragePeriods <= 0 {
		opts.AveragePeriods = DefaultAveragePeriods
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{
		source:     src,
		History:    NewHistory(opts.HistorySize),
		thresholds: th,
		opts:       opts,
		logger:     logger,
		now:        time.Now,
	}, nil
}

// Thresholds returns the alert thresholds in effect.
func (e *Engine) Thresholds() Thresholds {
	return e.thresholds
}

// TrendsEnabled reports whether snapshots are recorded into history.
func (e *Engine) TrendsEnabled() bool {
	return !e.opts.DisableTrends
}

// Tick collects one reading from the source and ingests it.
func (e *Engine) Tick(ctx context.Context) (*model.Report, error) {
	if e.source == nil {
		return nil, fmt.Errorf("tick: no source configured")
	}
	raw, err := e.source.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("collect %s: %w", e.source.Name(), err)
	}
	return e.Ingest(raw)
}

// Ingest runs one raw reading through the pipeline and builds its report.
// A validation failure aborts before anything is recorded.
func (e *Engine) Ingest(raw model.RawMetrics) (*model.Report, error) {
	e.tickMu.Lock()
	defer e.tickMu.Unlock()

	snap, err := model.Normalize(raw)
	if err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}
	score, err := Score(snap)
	if err != nil {
		return nil, fmt.Errorf("score: %w", err)
	}
	snap.LoadScore = score

	// Alerts are evaluated before recording so a failure leaves history untouched.
	snap.Timestamp = e.now()
	alerts, err := EvaluateAlerts(snap, e.thresholds)
	if err != nil {
		return nil, fmt.Errorf("evaluate alerts: %w", err)
	}

	rep := &model.Report{
		ID:     uuid.NewString(),
		Alerts: alerts,
	}
	if !e.opts.DisableTrends {
		snap = e.History.Record(snap)
		rep.Trends = e.trends()
		rep.Averages = e.averages()
	}
	rep.Snapshot = snap
	rep.Timestamp = snap.Timestamp
	for i := range rep.Alerts {
		rep.Alerts[i].Timestamp = snap.Timestamp
	}

	e.logger.Debug("tick evaluated",
		"report", rep.ID,
		"load_score", snap.LoadScore,
		"level", rep.Level().String(),
		"alerts", len(rep.Alerts),
		"history", e.History.Len())
	return rep, nil
}

func (e *Engine) trends() map[model.Field]model.TrendResult {
	out := make(map[model.Field]model.TrendResult, len(e.opts.TrendFields))
	for _, f := range e.opts.TrendFields {
		t, err := e.History.Trend(f)
		if err != nil {
			continue
		}
		out[f] = t
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func (e *Engine) averages() map[model.Field]float64 {
	out := make(map[model.Field]float64, len(e.opts.AverageFields))
	for _, f := range e.opts.AverageFields {
		avg, err := e.History.MovingAverage(f, e.opts.AveragePeriods)
		if err != nil {
			continue
		}
		out[f] = avg
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// AveragePeriods is the moving-average window used in reports.
func (e *Engine) AveragePeriods() int {
	return e.opts.AveragePeriods
}
