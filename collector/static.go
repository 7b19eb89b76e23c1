package collector

import (
	"context"
	"sync"

	"github.com/ftahirops/xtrend/model"
)

// StaticSource serves a fixed reading, or a fixed sequence that repeats its
// last entry. Err, when set, is returned instead.
type StaticSource struct {
	mu       sync.Mutex
	readings []model.RawMetrics
	next     int
	Err      error
	calls    int
}

// NewStaticSource creates a source cycling through readings once and then
// repeating the last one.
func NewStaticSource(readings ...model.RawMetrics) *StaticSource {
	return &StaticSource{readings: readings}
}

func (s *StaticSource) Name() string { return "static" }

func (s *StaticSource) Collect(ctx context.Context) (model.RawMetrics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if err := ctx.Err(); err != nil {
		return model.RawMetrics{}, err
	}
	if s.Err != nil {
		return model.RawMetrics{}, s.Err
	}
	if len(s.readings) == 0 {
		return model.RawMetrics{}, nil
	}
	r := s.readings[s.next]
	if s.next < len(s.readings)-1 {
		s.next++
	}
	return r, nil
}

// Calls reports how many times Collect ran.
func (s *StaticSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Demo returns a plausible reading of a lightly loaded 16 GB host.
func Demo() model.RawMetrics {
	return model.RawMetrics{
		CPU:           model.Num(42.5),
		MemoryUsedGB:  model.Num(6),
		MemoryTotalGB: model.Num(16),
		DiskUsedGB:    model.Num(120),
		DiskTotalGB:   model.Num(500),
		NetRxMBps:     model.Num(0.3),
		NetTxMBps:     model.Num(0.1),
	}
}
