package collector

import (
	"context"
	"time"

	"github.com/ftahirops/xtrend/model"
)

// Source supplies one raw metric sample per call. Implementations may block
// on I/O and may fail; a failure affects only the tick that asked.
type Source interface {
	Name() string
	Collect(ctx context.Context) (model.RawMetrics, error)
}

// Sample holds raw counters read from the kernel at one instant. Rates are
// derived from two consecutive samples.
type Sample struct {
	Time         time.Time
	CPUActive    uint64 // jiffies spent non-idle
	CPUTotal     uint64 // all jiffies
	MemTotal     uint64 // bytes
	MemAvailable uint64 // bytes
	DiskTotal    uint64 // bytes
	DiskUsed     uint64 // bytes
	NetRxBytes   uint64 // cumulative, all non-loopback interfaces
	NetTxBytes   uint64
}

// Collector fills part of a Sample.
type Collector interface {
	Name() string
	Collect(s *Sample) error
}

// Registry holds the collectors that make up one sample.
type Registry struct {
	collectors []Collector
}

// NewRegistry creates a registry reading from procRoot (normally "/proc")
// and measuring the filesystem mounted at diskPath.
func NewRegistry(procRoot, diskPath string) *Registry {
	return &Registry{
		collectors: []Collector{
			&CPUCollector{ProcRoot: procRoot},
			&MemoryCollector{ProcRoot: procRoot},
			&FilesystemCollector{Path: diskPath},
			&NetworkCollector{ProcRoot: procRoot},
		},
	}
}

// Add registers an additional collector.
func (r *Registry) Add(c Collector) {
	r.collectors = append(r.collectors, c)
}

// CollectAll runs all collectors, populating the sample.
func (r *Registry) CollectAll(s *Sample) []error {
	var errs []error
	for _, c := range r.collectors {
		if err := c.Collect(s); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
