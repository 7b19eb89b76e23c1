package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ftahirops/xtrend/model"
)

func TestArchiveRoundTrip(t *testing.T) {
	ctx := context.Background()
	a, err := Open(ctx, filepath.Join(t.TempDir(), "ticks.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer a.Close()

	base := time.UnixMilli(1_700_000_000_000)
	reports := []*model.Report{
		{
			ID:        "first",
			Timestamp: base,
			Snapshot:  model.MetricSnapshot{CPUPercent: 10, MemoryUsedGB: 4, MemoryTotalGB: 16, DiskUsedGB: 50, DiskTotalGB: 100, LoadScore: 12.5},
			Alerts:    []model.Alert{{Level: model.AlertInfo, Category: model.CategorySystem, Message: "System operating normally (Load: 12.50%)", Icon: model.IconInfo}},
		},
		{
			ID:        "second",
			Timestamp: base.Add(time.Minute),
			Snapshot:  model.MetricSnapshot{CPUPercent: 95, MemoryUsedGB: 4, MemoryTotalGB: 16, DiskUsedGB: 50, DiskTotalGB: 100, NetRxMBps: 1.5, LoadScore: 55.25},
			Alerts:    []model.Alert{{Level: model.AlertCritical, Category: model.CategoryCPU, Message: "CPU usage critically high: 95.0%", Icon: model.IconCritical}},
		},
	}
	for _, r := range reports {
		if err := a.Publish(ctx, r); err != nil {
			t.Fatalf("Publish(%s) error = %v", r.ID, err)
		}
	}

	n, err := a.Count(ctx)
	if err != nil || n != 2 {
		t.Fatalf("Count() = %d, %v, want 2", n, err)
	}

	rows, err := a.Recent(ctx, 1)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Recent(1) returned %d rows", len(rows))
	}
	got := rows[0]
	if got.ID != "second" || got.Level != model.AlertCritical {
		t.Errorf("newest row = %s/%v, want second/critical", got.ID, got.Level)
	}
	if got.Snapshot.NetRxMBps != 1.5 || got.Snapshot.LoadScore != 55.25 {
		t.Errorf("snapshot = %+v", got.Snapshot)
	}
	if !got.Snapshot.Timestamp.Equal(base.Add(time.Minute)) {
		t.Errorf("timestamp = %v, want %v", got.Snapshot.Timestamp, base.Add(time.Minute))
	}
	if len(got.Alerts) != 1 || got.Alerts[0].Category != model.CategoryCPU {
		t.Errorf("alerts = %+v", got.Alerts)
	}
}

func TestArchiveDuplicateID(t *testing.T) {
	ctx := context.Background()
	a, err := Open(ctx, filepath.Join(t.TempDir(), "ticks.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()
	rep := &model.Report{ID: "dup", Timestamp: time.Now(), Alerts: []model.Alert{}}
	if err := a.Publish(ctx, rep); err != nil {
		t.Fatal(err)
	}
	if err := a.Publish(ctx, rep); err == nil {
		t.Error("second Publish() with same ID succeeded, want constraint error")
	}
}

func TestArchiveReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ticks.db")
	a, err := Open(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if err := a.Publish(ctx, &model.Report{ID: "x", Timestamp: time.Now()}); err != nil {
		t.Fatal(err)
	}
	a.Close()

	b, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer b.Close()
	if n, _ := b.Count(ctx); n != 1 {
		t.Errorf("Count() after reopen = %d, want 1", n)
	}
}
