package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	psnet "github.com/shirou/gopsutil/v3/net"

	"github.com/ftahirops/xtrend/model"
	"github.com/ftahirops/xtrend/util"
)

// GopsutilSource collects metrics through gopsutil. It works on every
// platform gopsutil supports, unlike ProcSource.
type GopsutilSource struct {
	DiskPath string

	mu       sync.Mutex
	lastNet  *psnet.IOCountersStat
	lastTime time.Time
}

// NewGopsutilSource creates a gopsutil-backed source measuring diskPath.
func NewGopsutilSource(diskPath string) *GopsutilSource {
	if diskPath == "" {
		diskPath = "/"
	}
	return &GopsutilSource{DiskPath: diskPath}
}

func (g *GopsutilSource) Name() string { return "gopsutil" }

func (g *GopsutilSource) Collect(ctx context.Context) (model.RawMetrics, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	var raw model.RawMetrics

	// Interval 0 compares against the previous call.
	pct, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return raw, fmt.Errorf("cpu percent: %w", err)
	}
	if len(pct) == 0 {
		return raw, fmt.Errorf("cpu percent: no data")
	}
	raw.CPU = model.Num(pct[0])

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return raw, fmt.Errorf("virtual memory: %w", err)
	}
	raw.MemoryUsedGB = model.Num(float64(vm.Used) / bytesPerGB)
	raw.MemoryTotalGB = model.Num(float64(vm.Total) / bytesPerGB)

	du, err := disk.UsageWithContext(ctx, g.DiskPath)
	if err != nil {
		return raw, fmt.Errorf("disk usage %s: %w", g.DiskPath, err)
	}
	raw.DiskUsedGB = model.Num(float64(du.Used) / bytesPerGB)
	raw.DiskTotalGB = model.Num(float64(du.Total) / bytesPerGB)

	counters, err := psnet.IOCountersWithContext(ctx, false)
	if err != nil {
		return raw, fmt.Errorf("net counters: %w", err)
	}
	now := time.Now()
	if len(counters) > 0 {
		cur := counters[0]
		if g.lastNet != nil {
			dt := now.Sub(g.lastTime)
			raw.NetRxMBps = model.Num(util.Rate(g.lastNet.BytesRecv, cur.BytesRecv, dt) / bytesPerMB)
			raw.NetTxMBps = model.Num(util.Rate(g.lastNet.BytesSent, cur.BytesSent, dt) / bytesPerMB)
		} else {
			raw.NetRxMBps = model.Num(0)
			raw.NetTxMBps = model.Num(0)
		}
		g.lastNet = &cur
		g.lastTime = now
	}
	return raw, nil
}
