package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ftahirops/xtrend/collector"
	"github.com/ftahirops/xtrend/model"
)

func rawWithCPU(cpu float64) model.RawMetrics {
	r := collector.Demo()
	r.CPU = model.Num(cpu)
	return r
}

func TestEngineIngest(t *testing.T) {
	eng := newTestEngine(t, nil)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	eng.now = func() time.Time { return fixed }
	eng.History.now = func() time.Time { return fixed }

	rep, err := eng.Ingest(collector.Demo())
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if rep.ID == "" {
		t.Error("report ID is empty")
	}
	if !rep.Timestamp.Equal(fixed) {
		t.Errorf("Timestamp = %v, want %v", rep.Timestamp, fixed)
	}
	if rep.Snapshot.LoadScore != 33.3 {
		t.Errorf("LoadScore = %v, want 33.3", rep.Snapshot.LoadScore)
	}
	if len(rep.Alerts) != 1 || rep.Alerts[0].Level != model.AlertInfo {
		t.Errorf("Alerts = %+v, want single info alert", rep.Alerts)
	}
	if len(rep.Trends) != 0 {
		t.Errorf("Trends after one tick = %v, want none", rep.Trends)
	}
	if eng.History.Len() != 1 {
		t.Errorf("History.Len() = %d, want 1", eng.History.Len())
	}
}

func TestEngineTrendsAndAverages(t *testing.T) {
	eng := newTestEngine(t, nil)
	var rep *model.Report
	var err error
	for _, cpu := range []float64{10, 20, 30, 40, 50, 55} {
		if rep, err = eng.Ingest(rawWithCPU(cpu)); err != nil {
			t.Fatalf("Ingest(%v) error = %v", cpu, err)
		}
	}

	tr, ok := rep.Trend(model.FieldCPU)
	if !ok {
		t.Fatal("cpu trend missing")
	}
	if tr.Direction != model.DirectionUp || tr.Change != "10.00" {
		t.Errorf("cpu trend = %+v, want up 10.00", tr)
	}
	if _, ok := rep.Trend(model.FieldMemoryUsed); !ok {
		t.Error("memory trend missing")
	}
	avg, ok := rep.Average(model.FieldCPU)
	if !ok {
		t.Fatal("cpu average missing")
	}
	if avg != 39 {
		t.Errorf("cpu average = %v, want 39", avg)
	}
}

func TestEngineMemoryTrendZeroBaselineAbsent(t *testing.T) {
	eng := newTestEngine(t, nil)
	zero := collector.Demo()
	zero.MemoryUsedGB = model.Num(0)
	if _, err := eng.Ingest(zero); err != nil {
		t.Fatal(err)
	}
	rep, err := eng.Ingest(collector.Demo())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := rep.Trend(model.FieldMemoryUsed); ok {
		t.Error("memory trend present over zero baseline, want absent")
	}
	if _, ok := rep.Trend(model.FieldCPU); !ok {
		t.Error("cpu trend missing")
	}
}

func TestEngineDisableTrends(t *testing.T) {
	eng, err := NewEngine(nil, Options{DisableTrends: true})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		rep, err := eng.Ingest(collector.Demo())
		if err != nil {
			t.Fatal(err)
		}
		if rep.Trends != nil || rep.Averages != nil {
			t.Errorf("trends disabled but report has trends=%v averages=%v", rep.Trends, rep.Averages)
		}
	}
	if eng.History.Len() != 0 {
		t.Errorf("History.Len() = %d, want 0", eng.History.Len())
	}
}

func TestEngineRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*model.RawMetrics)
		wantErr error
	}{
		{"zero memory total", func(r *model.RawMetrics) { r.MemoryTotalGB = model.Num(0) }, model.ErrZeroTotal},
		{"zero disk total", func(r *model.RawMetrics) { r.DiskTotalGB = model.Num(0) }, model.ErrZeroTotal},
		{"malformed cpu", func(r *model.RawMetrics) { r.CPU = model.Text("n/a") }, model.ErrMalformed},
		{"negative rx", func(r *model.RawMetrics) { r.NetRxMBps = model.Num(-1) }, model.ErrNegative},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := newTestEngine(t, nil)
			raw := collector.Demo()
			tt.mutate(&raw)
			_, err := eng.Ingest(raw)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Ingest() error = %v, want %v", err, tt.wantErr)
			}
			var ve *model.ValidationError
			if !errors.As(err, &ve) {
				t.Errorf("Ingest() error %T is not a *model.ValidationError", err)
			}
			if eng.History.Len() != 0 {
				t.Errorf("History.Len() = %d after rejected input, want 0", eng.History.Len())
			}
		})
	}
}

func TestEngineTickWrapsSourceError(t *testing.T) {
	src := collector.NewStaticSource()
	src.Err = errors.New("read failed")
	eng := newTestEngine(t, src)
	_, err := eng.Tick(context.Background())
	if !errors.Is(err, src.Err) {
		t.Errorf("Tick() error = %v, want wrapping %v", err, src.Err)
	}
}

func TestNewEngineRejectsBadThresholds(t *testing.T) {
	th := DefaultThresholds()
	th.CPU = Band{Warn: 95, Crit: 90}
	if _, err := NewEngine(nil, Options{Thresholds: &th}); err == nil {
		t.Error("NewEngine() with warn > crit succeeded")
	}
}
