package collector

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ftahirops/xtrend/model"
	"github.com/ftahirops/xtrend/util"
)

const (
	bytesPerGB = 1e9
	bytesPerMB = 1e6

	// defaultPrimeDelay separates the two samples of the first Collect so that
	// CPU and network rates are available from the first tick.
	defaultPrimeDelay = 500 * time.Millisecond
)

// ProcSource reads host metrics from procfs and statfs. CPU usage and
// network throughput are computed from the delta between consecutive calls.
type ProcSource struct {
	registry   *Registry
	primeDelay time.Duration
	now        func() time.Time

	mu   sync.Mutex
	prev *Sample
}

// NewProcSource creates a source reading procRoot (normally "/proc") and
// reporting disk usage of the filesystem holding diskPath.
func NewProcSource(procRoot, diskPath string) *ProcSource {
	if procRoot == "" {
		procRoot = "/proc"
	}
	if diskPath == "" {
		diskPath = "/"
	}
	return &ProcSource{
		registry:   NewRegistry(procRoot, diskPath),
		primeDelay: defaultPrimeDelay,
		now:        time.Now,
	}
}

func (p *ProcSource) Name() string { return "proc" }

// Collect returns the current readings.
func (p *ProcSource) Collect(ctx context.Context) (model.RawMetrics, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.prev == nil {
		first, err := p.sample()
		if err != nil {
			return model.RawMetrics{}, err
		}
		p.prev = &first
		if p.primeDelay > 0 {
			t := time.NewTimer(p.primeDelay)
			select {
			case <-ctx.Done():
				t.Stop()
				return model.RawMetrics{}, ctx.Err()
			case <-t.C:
			}
		}
	}

	cur, err := p.sample()
	if err != nil {
		return model.RawMetrics{}, err
	}
	raw := rawFromSamples(*p.prev, cur)
	p.prev = &cur
	return raw, nil
}

func (p *ProcSource) sample() (Sample, error) {
	s := Sample{Time: p.now()}
	if errs := p.registry.CollectAll(&s); len(errs) > 0 {
		return s, errors.Join(errs...)
	}
	return s, nil
}

func rawFromSamples(prev, cur Sample) model.RawMetrics {
	dt := cur.Time.Sub(prev.Time)
	return model.RawMetrics{
		CPU:           model.Num(util.CPUPct(prev.CPUActive, cur.CPUActive, prev.CPUTotal, cur.CPUTotal)),
		MemoryUsedGB:  model.Num(float64(cur.MemTotal-cur.MemAvailable) / bytesPerGB),
		MemoryTotalGB: model.Num(float64(cur.MemTotal) / bytesPerGB),
		DiskUsedGB:    model.Num(float64(cur.DiskUsed) / bytesPerGB),
		DiskTotalGB:   model.Num(float64(cur.DiskTotal) / bytesPerGB),
		NetRxMBps:     model.Num(util.Rate(prev.NetRxBytes, cur.NetRxBytes, dt) / bytesPerMB),
		NetTxMBps:     model.Num(util.Rate(prev.NetTxBytes, cur.NetTxBytes, dt) / bytesPerMB),
	}
}
