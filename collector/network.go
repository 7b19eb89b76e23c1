package collector

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ftahirops/xtrend/util"
)

// NetworkCollector sums byte counters of /proc/net/dev, skipping loopback.
type NetworkCollector struct {
	ProcRoot string
}

func (n *NetworkCollector) Name() string { return "network" }

func (n *NetworkCollector) Collect(s *Sample) error {
	path := filepath.Join(n.ProcRoot, "net", "dev")
	lines, err := util.ReadFileLines(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	s.NetRxBytes, s.NetTxBytes = 0, 0
	for _, line := range lines {
		if strings.Contains(line, "|") || strings.TrimSpace(line) == "" {
			continue
		}
		name, rx, tx, ok := parseNetDevLine(line)
		if !ok || name == "lo" {
			continue
		}
		s.NetRxBytes += rx
		s.NetTxBytes += tx
	}
	return nil
}

func parseNetDevLine(line string) (name string, rx, tx uint64, ok bool) {
	parts := strings.SplitN(line, ":", 2)
	if len(parts) != 2 {
		return "", 0, 0, false
	}
	fields := strings.Fields(parts[1])
	if len(fields) < 16 {
		return "", 0, 0, false
	}
	return strings.TrimSpace(parts[0]), util.ParseUint64(fields[0]), util.ParseUint64(fields[8]), true
}
