package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ftahirops/xtrend/model"
)

const (
	DefaultInterval       = 60 * time.Second
	DefaultPublishTimeout = 10 * time.Second
)

// Publisher receives every successful report. Publish must treat the report
// as read-only; it is shared by all publishers of a tick.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, rep *model.Report) error
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc struct {
	ID string
	Fn func(ctx context.Context, rep *model.Report) error
}

func (p PublisherFunc) Name() string { return p.ID }

func (p PublisherFunc) Publish(ctx context.Context, rep *model.Report) error {
	return p.Fn(ctx, rep)
}

// SchedulerConfig configures a Scheduler. Zero durations select defaults.
type SchedulerConfig struct {
	Interval       time.Duration
	PublishTimeout time.Duration
	Publishers     []Publisher
	Logger         *slog.Logger
}

// Stats counts scheduler activity since Start.
type Stats struct {
	Ticks           uint64    `json:"ticks"`
	Failures        uint64    `json:"failures"`
	Skipped         uint64    `json:"skipped"`
	PublishFailures uint64    `json:"publish_failures"`
	LastTick        time.Time `json:"last_tick"`
}

// Scheduler fires ticks on a fixed period and fans each report out to the
// publishers. At most one tick runs at a time; a fire that arrives while a
// tick is in flight is dropped and counted as skipped.
type Scheduler struct {
	ticker Ticker
	cfg    SchedulerConfig
	logger *slog.Logger

	busy            atomic.Bool
	ticks           atomic.Uint64
	failures        atomic.Uint64
	skipped         atomic.Uint64
	publishFailures atomic.Uint64
	lastTick        atomic.Int64 // unix nanos
}

// NewScheduler creates a scheduler driving t.
func NewScheduler(t Ticker, cfg SchedulerConfig) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = DefaultPublishTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Scheduler{ticker: t, cfg: cfg, logger: logger}
}

// AddPublisher registers p. It must be called before Start.
func (s *Scheduler) AddPublisher(p Publisher) {
	s.cfg.Publishers = append(s.cfg.Publishers, p)
}

// Stats returns a copy of the counters.
func (s *Scheduler) Stats() Stats {
	st := Stats{
		Ticks:           s.ticks.Load(),
		Failures:        s.failures.Load(),
		Skipped:         s.skipped.Load(),
		PublishFailures: s.publishFailures.Load(),
	}
	if ns := s.lastTick.Load(); ns != 0 {
		st.LastTick = time.Unix(0, ns)
	}
	return st
}

// Handle controls a running scheduler loop.
type Handle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Stop cancels future ticks and waits for an in-flight tick, including its
// publishes, to finish. It is safe to call more than once.
func (h *Handle) Stop() {
	h.cancel()
	<-h.done
}

// Done is closed once the loop has exited.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

type publishError struct {
	publisher string
	report    string
	err       error
}

// Start launches the loop. The first tick fires immediately; later ticks
// follow the configured interval until ctx is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) *Handle {
	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{cancel: cancel, done: make(chan struct{})}

	errs := make(chan publishError, 16)
	reporterDone := make(chan struct{})
	go func() {
		defer close(reporterDone)
		for pe := range errs {
			s.publishFailures.Add(1)
			s.logger.Warn("publish failed",
				"publisher", pe.publisher,
				"report", pe.report,
				"err", pe.err)
		}
	}()

	go func() {
		var inflight sync.WaitGroup
		defer func() {
			inflight.Wait()
			close(errs)
			<-reporterDone
			close(h.done)
		}()

		fire := func() {
			if !s.busy.CompareAndSwap(false, true) {
				s.skipped.Add(1)
				s.logger.Warn("tick skipped, previous tick still running")
				return
			}
			inflight.Add(1)
			go func() {
				defer inflight.Done()
				defer s.busy.Store(false)
				// An in-flight tick completes even if Stop is called meanwhile.
				s.runTick(context.WithoutCancel(ctx), errs)
			}()
		}

		s.logger.Info("scheduler started", "interval", s.cfg.Interval.String(), "publishers", len(s.cfg.Publishers))
		fire()

		t := time.NewTicker(s.cfg.Interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				s.logger.Info("scheduler stopping")
				return
			case <-t.C:
				if ctx.Err() != nil {
					return
				}
				fire()
			}
		}
	}()
	return h
}

// RunOnce performs a single tick synchronously and publishes its report.
// Publish errors are joined into the returned error.
func (s *Scheduler) RunOnce(ctx context.Context) (*model.Report, error) {
	errs := make(chan publishError, len(s.cfg.Publishers)+1)
	rep, err := s.tick(ctx)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, rep, errs)
	close(errs)
	var joined []error
	for pe := range errs {
		s.publishFailures.Add(1)
		joined = append(joined, fmt.Errorf("publish %s: %w", pe.publisher, pe.err))
	}
	return rep, errors.Join(joined...)
}

func (s *Scheduler) runTick(ctx context.Context, errs chan<- publishError) {
	rep, err := s.tick(ctx)
	if err != nil {
		return
	}
	s.publish(ctx, rep, errs)
}

func (s *Scheduler) tick(ctx context.Context) (*model.Report, error) {
	start := time.Now()
	rep, err := s.ticker.Tick(ctx)
	s.lastTick.Store(start.UnixNano())
	if err != nil {
		s.failures.Add(1)
		s.logger.Error("tick failed", "err", err)
		return nil, err
	}
	s.ticks.Add(1)
	s.logger.Debug("tick complete", "report", rep.ID, "elapsed", time.Since(start).String())
	return rep, nil
}

// publish fans rep out to every publisher concurrently and waits for all of
// them. Errors and panics are sent to errs; they never fail the tick.
func (s *Scheduler) publish(ctx context.Context, rep *model.Report, errs chan<- publishError) {
	var g errgroup.Group
	for _, p := range s.cfg.Publishers {
		g.Go(func() error {
			pctx, cancel := context.WithTimeout(ctx, s.cfg.PublishTimeout)
			defer cancel()
			if err := safePublish(pctx, p, rep); err != nil {
				errs <- publishError{publisher: p.Name(), report: rep.ID, err: err}
			}
			return nil
		})
	}
	_ = g.Wait()
}

func safePublish(ctx context.Context, p Publisher, rep *model.Report) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return p.Publish(ctx, rep)
}
