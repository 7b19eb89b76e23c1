package engine

import (
	"context"
	"errors"
	"io"
	"math"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ftahirops/xtrend/collector"
	"github.com/ftahirops/xtrend/model"
)

func TestMetricsStoreLatest(t *testing.T) {
	s := NewMetricsStore()
	if _, _, err := s.Latest(); !errors.Is(err, ErrNoData) {
		t.Fatalf("Latest() on empty store error = %v, want ErrNoData", err)
	}
	rep := &model.Report{ID: "r1"}
	if err := s.Publish(context.Background(), rep); err != nil {
		t.Fatal(err)
	}
	got, ts, err := s.Latest()
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if got.ID != "r1" || ts.IsZero() {
		t.Errorf("Latest() = %q at %v, want r1 with timestamp", got.ID, ts)
	}
}

func TestPressure(t *testing.T) {
	th := DefaultThresholds()
	s := model.MetricSnapshot{
		CPUPercent:    82.5, // halfway between 75 and 90
		MemoryUsedGB:  4,
		MemoryTotalGB: 16,
		DiskUsedGB:    99,
		DiskTotalGB:   100,
		NetRxMBps:     60,
		NetTxMBps:     15,
		LoadScore:     50,
	}
	want := map[string]float64{
		"cpu":     0.5,
		"memory":  0,
		"disk":    1,
		"load":    0,
		"network": 0.5,
	}
	got := Pressure(s, th)
	for k, w := range want {
		if math.Abs(got[k]-w) > 1e-9 {
			t.Errorf("Pressure()[%s] = %v, want %v", k, got[k], w)
		}
	}
}

func TestPromCollectorExposition(t *testing.T) {
	eng := newTestEngine(t, collector.NewStaticSource(collector.Demo()))
	store := NewMetricsStore()
	sched := NewScheduler(eng, SchedulerConfig{Publishers: []Publisher{store}})
	pc := NewPromCollector(store, eng.Thresholds(), sched.Stats)
	srv := httptest.NewServer(pc.Handler())
	defer srv.Close()

	fetch := func() string {
		t.Helper()
		resp, err := srv.Client().Get(srv.URL)
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			t.Fatal(err)
		}
		return string(b)
	}

	before := fetch()
	if strings.Contains(before, "system_load_score") {
		t.Error("exposition contains load score before first tick")
	}
	if !strings.Contains(before, "xtrend_ticks_total 0") {
		t.Error("tick counter missing before first tick")
	}

	if _, err := sched.RunOnce(context.Background()); err != nil {
		t.Fatal(err)
	}
	body := fetch()
	for _, want := range []string{
		"cpu_usage_percent 42.5",
		"memory_used_bytes 6e+09",
		"memory_total_bytes 1.6e+10",
		"network_rx_bytes_per_second 300000",
		"system_load_score 33.3",
		`xtrend_alerts{level="info"} 1`,
		`xtrend_alerts{level="critical"} 0`,
		`xtrend_pressure{resource="cpu"} 0`,
		"xtrend_ticks_total 1",
		"go_goroutines",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("exposition missing %q", want)
		}
	}
}
