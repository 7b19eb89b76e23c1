package engine

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ftahirops/xtrend/model"
)

// ErrNoData is returned by readers before the first successful tick.
var ErrNoData = errors.New("no data yet")

// MetricsStore holds the latest report for HTTP readers. It is a Publisher.
type MetricsStore struct {
	mu  sync.RWMutex
	rep *model.Report
	ts  time.Time
}

// NewMetricsStore creates an empty store.
func NewMetricsStore() *MetricsStore {
	return &MetricsStore{}
}

func (s *MetricsStore) Name() string { return "metrics-store" }

// Publish stores rep as the latest report.
func (s *MetricsStore) Publish(_ context.Context, rep *model.Report) error {
	s.mu.Lock()
	s.rep = rep
	s.ts = time.Now()
	s.mu.Unlock()
	return nil
}

// Latest returns the newest report and when it was stored.
func (s *MetricsStore) Latest() (*model.Report, time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.rep == nil {
		return nil, time.Time{}, ErrNoData
	}
	return s.rep, s.ts, nil
}

// Pressure maps each thresholded resource to 0..1: zero at or below warn,
// one at or above crit, linear in between.
func Pressure(s model.MetricSnapshot, th Thresholds) map[string]float64 {
	out := map[string]float64{
		"cpu":  normalize(finite(s.CPUPercent), th.CPU.Warn, th.CPU.Crit),
		"load": normalize(finite(s.LoadScore), th.Load.Warn, th.Load.Crit),
		// No critical band for network; saturate at twice the warning rate.
		"network": normalize(finite(s.NetTotalMBps()), th.NetworkWarnMBps, 2*th.NetworkWarnMBps),
	}
	if pct, err := s.MemoryPercent(); err == nil {
		out["memory"] = normalize(pct, th.Memory.Warn, th.Memory.Crit)
	}
	if pct, err := s.DiskPercent(); err == nil {
		out["disk"] = normalize(pct, th.Disk.Warn, th.Disk.Crit)
	}
	return out
}

const (
	bytesPerGB = 1e9
	bytesPerMB = 1e6
)

// PromCollector exports the latest report in Prometheus form.
type PromCollector struct {
	store      *MetricsStore
	stats      func() Stats
	thresholds Thresholds

	cpuUsage     *prometheus.Desc
	memUsed      *prometheus.Desc
	memTotal     *prometheus.Desc
	diskUsed     *prometheus.Desc
	diskTotal    *prometheus.Desc
	netRx        *prometheus.Desc
	netTx        *prometheus.Desc
	loadScore    *prometheus.Desc
	alerts       *prometheus.Desc
	trendChange  *prometheus.Desc
	movingAvg    *prometheus.Desc
	pressure     *prometheus.Desc
	ticks        *prometheus.Desc
	tickFailures *prometheus.Desc
	ticksSkipped *prometheus.Desc
}

// NewPromCollector creates a collector over store. stats may be nil.
func NewPromCollector(store *MetricsStore, th Thresholds, stats func() Stats) *PromCollector {
	return &PromCollector{
		store:        store,
		stats:        stats,
		thresholds:   th,
		cpuUsage:     prometheus.NewDesc("cpu_usage_percent", "CPU usage percentage", nil, nil),
		memUsed:      prometheus.NewDesc("memory_used_bytes", "Memory used in bytes", nil, nil),
		memTotal:     prometheus.NewDesc("memory_total_bytes", "Total memory in bytes", nil, nil),
		diskUsed:     prometheus.NewDesc("disk_used_bytes", "Disk used in bytes", nil, nil),
		diskTotal:    prometheus.NewDesc("disk_total_bytes", "Total disk in bytes", nil, nil),
		netRx:        prometheus.NewDesc("network_rx_bytes_per_second", "Network receive rate", nil, nil),
		netTx:        prometheus.NewDesc("network_tx_bytes_per_second", "Network transmit rate", nil, nil),
		loadScore:    prometheus.NewDesc("system_load_score", "Composite system load score (0-100)", nil, nil),
		alerts:       prometheus.NewDesc("xtrend_alerts", "Alerts in the latest report by level", []string{"level"}, nil),
		trendChange:  prometheus.NewDesc("xtrend_trend_change_percent", "Percent change since the previous tick", []string{"field", "direction"}, nil),
		movingAvg:    prometheus.NewDesc("xtrend_moving_average", "Moving average over the report window", []string{"field"}, nil),
		pressure:     prometheus.NewDesc("xtrend_pressure", "Threshold pressure (0-1) per resource", []string{"resource"}, nil),
		ticks:        prometheus.NewDesc("xtrend_ticks_total", "Successful ticks", nil, nil),
		tickFailures: prometheus.NewDesc("xtrend_tick_failures_total", "Failed ticks", nil, nil),
		ticksSkipped: prometheus.NewDesc("xtrend_ticks_skipped_total", "Ticks skipped because the previous tick was still running", nil, nil),
	}
}

func (c *PromCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.cpuUsage
	ch <- c.memUsed
	ch <- c.memTotal
	ch <- c.diskUsed
	ch <- c.diskTotal
	ch <- c.netRx
	ch <- c.netTx
	ch <- c.loadScore
	ch <- c.alerts
	ch <- c.trendChange
	ch <- c.movingAvg
	ch <- c.pressure
	ch <- c.ticks
	ch <- c.tickFailures
	ch <- c.ticksSkipped
}

func (c *PromCollector) Collect(ch chan<- prometheus.Metric) {
	if c.stats != nil {
		st := c.stats()
		ch <- prometheus.MustNewConstMetric(c.ticks, prometheus.CounterValue, float64(st.Ticks))
		ch <- prometheus.MustNewConstMetric(c.tickFailures, prometheus.CounterValue, float64(st.Failures))
		ch <- prometheus.MustNewConstMetric(c.ticksSkipped, prometheus.CounterValue, float64(st.Skipped))
	}

	rep, _, err := c.store.Latest()
	if err != nil {
		return
	}
	s := rep.Snapshot
	gauge := func(d *prometheus.Desc, v float64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, v, labels...)
	}
	gauge(c.cpuUsage, s.CPUPercent)
	gauge(c.memUsed, s.MemoryUsedGB*bytesPerGB)
	gauge(c.memTotal, s.MemoryTotalGB*bytesPerGB)
	gauge(c.diskUsed, s.DiskUsedGB*bytesPerGB)
	gauge(c.diskTotal, s.DiskTotalGB*bytesPerGB)
	gauge(c.netRx, s.NetRxMBps*bytesPerMB)
	gauge(c.netTx, s.NetTxMBps*bytesPerMB)
	gauge(c.loadScore, s.LoadScore)

	counts := model.CountByLevel(rep.Alerts)
	for _, lvl := range []model.AlertLevel{model.AlertInfo, model.AlertWarning, model.AlertCritical} {
		gauge(c.alerts, float64(counts[lvl]), lvl.String())
	}
	for f, t := range rep.Trends {
		gauge(c.trendChange, t.ChangePercent, string(f), string(t.Direction))
	}
	for f, v := range rep.Averages {
		gauge(c.movingAvg, v, string(f))
	}
	for res, p := range Pressure(s, c.thresholds) {
		gauge(c.pressure, p, res)
	}
}

// Handler returns an exposition handler for c plus the Go runtime and
// process collectors.
func (c *PromCollector) Handler() http.Handler {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		c,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
