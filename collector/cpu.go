package collector

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ftahirops/xtrend/util"
)

// CPUCollector reads the aggregate line of /proc/stat.
type CPUCollector struct {
	ProcRoot string
}

func (c *CPUCollector) Name() string { return "cpu" }

func (c *CPUCollector) Collect(s *Sample) error {
	path := filepath.Join(c.ProcRoot, "stat")
	lines, err := util.ReadFileLines(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	for _, line := range lines {
		if strings.HasPrefix(line, "cpu ") {
			s.CPUActive, s.CPUTotal = parseCPULine(line)
			return nil
		}
	}
	return fmt.Errorf("%s: no aggregate cpu line", path)
}

// parseCPULine returns active and total jiffies for a "cpu" line.
// fields[1..] = user nice system idle iowait irq softirq steal guest guest_nice.
// guest and guest_nice are already included in user and nice.
func parseCPULine(line string) (active, total uint64) {
	fields := strings.Fields(line)
	var vals [8]uint64
	for i := range vals {
		if i+1 < len(fields) {
			vals[i] = util.ParseUint64(fields[i+1])
		}
	}
	idle := vals[3] + vals[4] // idle + iowait
	for _, v := range vals {
		total += v
	}
	return total - idle, total
}
