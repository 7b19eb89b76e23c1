package engine

import (
	"fmt"
	"math"

	"github.com/ftahirops/xtrend/model"
)

// Composite load score weights. CPU dominates, memory is secondary and
// network is weighted least because it is bursty.
const (
	cpuWeight = 0.5
	memWeight = 0.3
	netWeight = 0.2

	netLoadPerMBps = 10  // network load points per MB/s of rx+tx
	netLoadCap     = 100 // network load saturates here
	maxLoadScore   = 100
)

// Score returns the composite load score in [0,100], rounded to two decimals.
// Non-finite fields contribute 0. A zero memory total is reported as an error
// wrapping model.ErrZeroTotal.
func Score(s model.MetricSnapshot) (float64, error) {
	if s.MemoryTotalGB <= 0 {
		return 0, fmt.Errorf("load score: %w",
			&model.ValidationError{Field: model.FieldMemoryTotal, Err: model.ErrZeroTotal})
	}
	cpu := finite(s.CPUPercent)
	mem := finite(s.MemoryUsedGB / s.MemoryTotalGB * 100)
	net := math.Min((finite(s.NetRxMBps)+finite(s.NetTxMBps))*netLoadPerMBps, netLoadCap)

	score := cpuWeight*cpu + memWeight*mem + netWeight*net
	return round2(clamp(score, 0, maxLoadScore)), nil
}
