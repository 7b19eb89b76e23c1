package collector

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ftahirops/xtrend/util"
)

// MemoryCollector reads /proc/meminfo.
type MemoryCollector struct {
	ProcRoot string
}

func (m *MemoryCollector) Name() string { return "memory" }

func (m *MemoryCollector) Collect(s *Sample) error {
	path := filepath.Join(m.ProcRoot, "meminfo")
	kv, err := util.ParseKeyValueFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	s.MemTotal = parseKB(kv["MemTotal"])
	if v, ok := kv["MemAvailable"]; ok {
		s.MemAvailable = parseKB(v)
	} else {
		// Kernels before 3.14 lack MemAvailable.
		s.MemAvailable = parseKB(kv["MemFree"]) + parseKB(kv["Buffers"]) + parseKB(kv["Cached"])
	}
	if s.MemAvailable > s.MemTotal {
		s.MemAvailable = s.MemTotal
	}
	return nil
}

// parseKB parses a meminfo value like "1234 kB" and returns bytes.
func parseKB(v string) uint64 {
	v = strings.TrimSpace(v)
	v = strings.TrimSuffix(v, "kB")
	return util.ParseUint64(v) * 1024
}
