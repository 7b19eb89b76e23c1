package engine

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/ftahirops/xtrend/model"
)

// DefaultAlertLogMaxBytes is the size at which the alert log is rotated.
const DefaultAlertLogMaxBytes = 10 * 1024 * 1024

// AlertLog appends every warning and critical alert to a JSONL file. When
// the file grows past MaxBytes it is renamed to <path>.old and a fresh file
// is started.
type AlertLog struct {
	path     string
	MaxBytes int64
	mu       sync.Mutex
}

// NewAlertLog creates a log at path.
func NewAlertLog(path string) *AlertLog {
	return &AlertLog{path: path, MaxBytes: DefaultAlertLogMaxBytes}
}

// Path returns the log file location.
func (l *AlertLog) Path() string { return l.path }

func (l *AlertLog) Name() string { return "alert-log" }

// Publish writes the report's non-info alerts. Info-only reports write nothing.
func (l *AlertLog) Publish(_ context.Context, rep *model.Report) error {
	var events []model.AlertEvent
	for _, a := range rep.Alerts {
		if a.Level == model.AlertInfo {
			continue
		}
		events = append(events, model.AlertEvent{
			ID:        uuid.NewString(),
			ReportID:  rep.ID,
			Time:      rep.Timestamp,
			Level:     a.Level,
			Category:  a.Category,
			Message:   a.Message,
			LoadScore: rep.Snapshot.LoadScore,
		})
	}
	if len(events) == 0 {
		return nil
	}
	return l.Write(events...)
}

// Write appends events to the log file.
func (l *AlertLog) Write(events ...model.AlertEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("create alert log dir: %w", err)
	}
	if info, err := os.Stat(l.path); err == nil && l.MaxBytes > 0 && info.Size() > l.MaxBytes {
		if err := os.Rename(l.path, l.path+".old"); err != nil {
			return fmt.Errorf("rotate alert log: %w", err)
		}
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for _, e := range events {
		if err := enc.Encode(e); err != nil {
			return fmt.Errorf("write alert event: %w", err)
		}
	}
	return nil
}

// ReadAlertLog returns the newest n events from a JSONL file, oldest first.
// n <= 0 returns every event. A missing file is an empty log.
func ReadAlertLog(path string, n int) ([]model.AlertEvent, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var events []model.AlertEvent
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024) // 1MB line limit
	for scanner.Scan() {
		var e model.AlertEvent
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			continue // skip malformed lines
		}
		events = append(events, e)
		if n > 0 && len(events) > 2*n {
			events = append(events[:0], events[len(events)-n:]...)
		}
	}
	if n > 0 && len(events) > n {
		events = events[len(events)-n:]
	}
	return events, scanner.Err()
}
