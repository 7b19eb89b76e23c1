package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/ftahirops/xtrend/model"
)

func alertSnap(cpu, memPct, diskPct, load, net float64) model.MetricSnapshot {
	return model.MetricSnapshot{
		CPUPercent:    cpu,
		MemoryUsedGB:  memPct,
		MemoryTotalGB: 100,
		DiskUsedGB:    diskPct,
		DiskTotalGB:   100,
		NetRxMBps:     net,
		LoadScore:     load,
		Timestamp:     time.Unix(1700000000, 0),
	}
}

type wantAlert struct {
	level    model.AlertLevel
	category model.AlertCategory
}

func TestEvaluateAlerts(t *testing.T) {
	tests := []struct {
		name string
		in   model.MetricSnapshot
		want []wantAlert
	}{
		{
			name: "cpu critical only",
			in:   alertSnap(95, 50, 50, 50, 0),
			want: []wantAlert{{model.AlertCritical, model.CategoryCPU}},
		},
		{
			name: "nominal",
			in:   alertSnap(10, 10, 10, 10, 0),
			want: []wantAlert{{model.AlertInfo, model.CategorySystem}},
		},
		{
			name: "warning band upper edge is inclusive",
			in:   alertSnap(90, 95, 95, 85, 0),
			want: []wantAlert{
				{model.AlertWarning, model.CategoryCPU},
				{model.AlertWarning, model.CategoryMemory},
				{model.AlertWarning, model.CategoryDisk},
				{model.AlertWarning, model.CategoryLoad},
			},
		},
		{
			name: "warning band lower edge is exclusive",
			in:   alertSnap(75, 80, 85, 65, 50),
			want: []wantAlert{{model.AlertInfo, model.CategorySystem}},
		},
		{
			name: "criticals before warnings in table order",
			in:   alertSnap(80, 99, 90, 90, 60),
			want: []wantAlert{
				{model.AlertCritical, model.CategoryMemory},
				{model.AlertCritical, model.CategoryLoad},
				{model.AlertWarning, model.CategoryCPU},
				{model.AlertWarning, model.CategoryDisk},
				{model.AlertWarning, model.CategoryNetwork},
			},
		},
		{
			name: "everything critical",
			in:   alertSnap(100, 100, 100, 100, 0),
			want: []wantAlert{
				{model.AlertCritical, model.CategoryCPU},
				{model.AlertCritical, model.CategoryMemory},
				{model.AlertCritical, model.CategoryDisk},
				{model.AlertCritical, model.CategoryLoad},
			},
		},
		{
			name: "network is warning only",
			in:   alertSnap(10, 10, 10, 10, 500),
			want: []wantAlert{{model.AlertWarning, model.CategoryNetwork}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EvaluateAlerts(tt.in, DefaultThresholds())
			if err != nil {
				t.Fatalf("EvaluateAlerts() error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("EvaluateAlerts() returned %d alerts, want %d: %+v", len(got), len(tt.want), got)
			}
			for i, w := range tt.want {
				if got[i].Level != w.level || got[i].Category != w.category {
					t.Errorf("alert[%d] = %v/%v, want %v/%v", i, got[i].Level, got[i].Category, w.level, w.category)
				}
				if !got[i].Timestamp.Equal(tt.in.Timestamp) {
					t.Errorf("alert[%d] timestamp = %v, want %v", i, got[i].Timestamp, tt.in.Timestamp)
				}
			}
		})
	}
}

func TestEvaluateAlertsMessages(t *testing.T) {
	got, err := EvaluateAlerts(alertSnap(95.04, 10, 10, 10, 0), DefaultThresholds())
	if err != nil {
		t.Fatal(err)
	}
	if got[0].Message != "CPU usage critically high: 95.0%" || got[0].Icon != model.IconCritical {
		t.Errorf("unexpected cpu alert %+v", got[0])
	}

	got, _ = EvaluateAlerts(alertSnap(10, 10, 10, 12.34, 0), DefaultThresholds())
	if got[0].Message != "System operating normally (Load: 12.3%)" || got[0].Icon != model.IconInfo {
		t.Errorf("unexpected info alert %+v", got[0])
	}

	got, _ = EvaluateAlerts(alertSnap(10, 10, 10, 10, 60.5), DefaultThresholds())
	if got[0].Message != "High network activity: 60.50 MBps" || got[0].Icon != model.IconNetwork {
		t.Errorf("unexpected network alert %+v", got[0])
	}
}

func TestEvaluateAlertsNeverEmpty(t *testing.T) {
	values := []float64{0, 50, 65, 75.5, 80.1, 85, 90, 95, 96, 120}
	for _, cpu := range values {
		for _, pct := range values {
			for _, load := range values {
				got, err := EvaluateAlerts(alertSnap(cpu, pct, pct, load, pct/2), DefaultThresholds())
				if err != nil {
					t.Fatal(err)
				}
				if len(got) == 0 {
					t.Fatalf("empty alert list for cpu=%v pct=%v load=%v", cpu, pct, load)
				}
				if len(got) > 1 {
					for _, a := range got {
						if a.Level == model.AlertInfo {
							t.Fatalf("info alert must be emitted alone, got %+v", got)
						}
					}
				}
			}
		}
	}
}

func TestEvaluateAlertsZeroTotals(t *testing.T) {
	s := alertSnap(10, 10, 10, 10, 0)
	s.DiskTotalGB = 0
	if _, err := EvaluateAlerts(s, DefaultThresholds()); !errors.Is(err, model.ErrZeroTotal) {
		t.Errorf("disk total 0: error = %v, want ErrZeroTotal", err)
	}
	s = alertSnap(10, 10, 10, 10, 0)
	s.MemoryTotalGB = 0
	if _, err := EvaluateAlerts(s, DefaultThresholds()); !errors.Is(err, model.ErrZeroTotal) {
		t.Errorf("memory total 0: error = %v, want ErrZeroTotal", err)
	}
}

func TestThresholdsValidate(t *testing.T) {
	if err := DefaultThresholds().Validate(); err != nil {
		t.Fatalf("default thresholds invalid: %v", err)
	}
	bad := DefaultThresholds()
	bad.Disk = Band{Warn: 95, Crit: 90}
	if err := bad.Validate(); err == nil {
		t.Error("expected error for inverted disk band")
	}
	bad = DefaultThresholds()
	bad.NetworkWarnMBps = 0
	if err := bad.Validate(); err == nil {
		t.Error("expected error for zero network threshold")
	}
}
