package engine

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/ftahirops/xtrend/model"
)

// DefaultHistorySize is the number of snapshots kept for trend detection.
const DefaultHistorySize = 10

// A change smaller than this many percent is reported as stable.
const stableChangePct = 0.1

// Absent trend and average results. Callers test with errors.Is.
var (
	ErrInsufficientHistory = errors.New("not enough history")
	ErrNonNumeric          = errors.New("field value is not numeric")
	ErrZeroBaseline        = errors.New("previous value is zero")
	ErrInvalidPeriods      = errors.New("periods must be positive")
)

// History is a ring buffer of scored snapshots for trend detection.
// All methods are safe for concurrent use.
type History struct {
	buf  []model.MetricSnapshot
	head int
	size int
	cap  int
	now  func() time.Time
	mu   sync.RWMutex
}

// NewHistory creates a ring buffer with the given capacity.
// A non-positive capacity selects DefaultHistorySize.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistorySize
	}
	return &History{
		buf: make([]model.MetricSnapshot, capacity),
		cap: capacity,
		now: time.Now,
	}
}

// Record stamps the snapshot with the current time and appends it, evicting
// the oldest entry when full. It returns the stored copy.
func (h *History) Record(s model.MetricSnapshot) model.MetricSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	s.Timestamp = h.now()
	h.buf[h.head] = s
	h.head = (h.head + 1) % h.cap
	if h.size < h.cap {
		h.size++
	}
	return s
}

// Len returns the number of snapshots stored.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.size
}

// Cap returns the buffer capacity.
func (h *History) Cap() int {
	return h.cap
}

// Latest returns a copy of the most recent snapshot.
func (h *History) Latest() (model.MetricSnapshot, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.size == 0 {
		return model.MetricSnapshot{}, false
	}
	return h.at(h.size - 1), true
}

// at returns position i, 0 being the oldest. Caller holds mu.
func (h *History) at(i int) model.MetricSnapshot {
	return h.buf[(h.head-h.size+i+h.cap)%h.cap]
}

// SnapshotAll returns a copy of the buffer, oldest first.
func (h *History) SnapshotAll() []model.MetricSnapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]model.MetricSnapshot, h.size)
	for i := range out {
		out[i] = h.at(i)
	}
	return out
}

// Series returns the numeric values of field, oldest first. Non-numeric
// entries are skipped.
func (h *History) Series(field model.Field) []float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]float64, 0, h.size)
	for i := 0; i < h.size; i++ {
		if v, ok := h.at(i).Value(field); ok {
			out = append(out, v)
		}
	}
	return out
}

// Reset empties the buffer.
func (h *History) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	clear(h.buf)
	h.head = 0
	h.size = 0
}

// Trend compares the two newest values of field. The result is absent
// (a non-nil error) when fewer than two snapshots exist, when either value
// is non-numeric, or when the previous value is zero.
func (h *History) Trend(field model.Field) (model.TrendResult, error) {
	h.mu.RLock()
	if h.size < 2 {
		h.mu.RUnlock()
		return model.TrendResult{}, fmt.Errorf("trend %s: %w", field, ErrInsufficientHistory)
	}
	latestSnap, prevSnap := h.at(h.size-1), h.at(h.size-2)
	h.mu.RUnlock()

	latest, ok1 := latestSnap.Value(field)
	prev, ok2 := prevSnap.Value(field)
	if !ok1 || !ok2 {
		return model.TrendResult{}, fmt.Errorf("trend %s: %w", field, ErrNonNumeric)
	}
	if prev == 0 {
		return model.TrendResult{}, fmt.Errorf("trend %s: %w", field, ErrZeroBaseline)
	}

	pct := (latest - prev) / prev * 100
	dir := model.DirectionStable
	switch {
	case math.Abs(pct) < stableChangePct:
	case pct > 0:
		dir = model.DirectionUp
	default:
		dir = model.DirectionDown
	}
	return model.TrendResult{
		Latest:        latest,
		Previous:      prev,
		Change:        fixed2(pct),
		ChangePercent: round2(pct),
		Direction:     dir,
	}, nil
}

// MovingAverage averages field over the newest periods snapshots, skipping
// non-numeric entries. It is absent when fewer than periods snapshots exist
// or when every sampled entry is non-numeric.
func (h *History) MovingAverage(field model.Field, periods int) (float64, error) {
	if periods <= 0 {
		return 0, fmt.Errorf("moving average %s: %w", field, ErrInvalidPeriods)
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.size < periods {
		return 0, fmt.Errorf("moving average %s over %d: %w", field, periods, ErrInsufficientHistory)
	}
	var sum float64
	var n int
	for i := h.size - periods; i < h.size; i++ {
		if v, ok := h.at(i).Value(field); ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, fmt.Errorf("moving average %s: %w", field, ErrNonNumeric)
	}
	return round2(sum / float64(n)), nil
}
