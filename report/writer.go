package report

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ftahirops/xtrend/model"
)

// Writer saves one JSON document per report as report-<timestamp>.json.
type Writer struct {
	dir    string
	logger *slog.Logger
	now    func() time.Time
}

// NewWriter creates a writer storing files in dir.
func NewWriter(dir string, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Writer{dir: dir, logger: logger, now: time.Now}
}

func (w *Writer) Name() string { return "report-file" }

// Publish writes rep.
func (w *Writer) Publish(_ context.Context, rep *model.Report) error {
	_, err := w.Write(rep)
	return err
}

// Write saves rep and returns the file name.
func (w *Writer) Write(rep *model.Report) (string, error) {
	data, err := json.MarshalIndent(NewDocument(rep, w.now()), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}
	name := FileName(rep.Timestamp)
	if err := writeAtomic(w.dir, name, data); err != nil {
		return "", fmt.Errorf("save report: %w", err)
	}
	w.logger.Info("report saved", "file", name)
	return name, nil
}

// FileName returns the report file name for ts: the UTC ISO timestamp with
// colons and dots replaced by dashes.
func FileName(ts time.Time) string {
	stamp := ts.UTC().Format("2006-01-02T15:04:05.000Z")
	stamp = strings.NewReplacer(":", "-", ".", "-").Replace(stamp)
	return "report-" + stamp + ".json"
}
