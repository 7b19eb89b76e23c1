package model

import (
	"math"
	"time"
)

// Field names a numeric column of MetricSnapshot. The names match the JSON
// keys so trend queries can be made with the same strings clients see.
type Field string

const (
	FieldCPU         Field = "cpu"
	FieldMemoryUsed  Field = "memoryUsedGB"
	FieldMemoryTotal Field = "memoryTotalGB"
	FieldDiskUsed    Field = "diskUsedGB"
	FieldDiskTotal   Field = "diskTotalGB"
	FieldNetRx       Field = "netRxMBps"
	FieldNetTx       Field = "netTxMBps"
	FieldLoadScore   Field = "loadScore"
)

// Fields lists every snapshot field in display order.
var Fields = []Field{
	FieldCPU, FieldMemoryUsed, FieldMemoryTotal, FieldDiskUsed,
	FieldDiskTotal, FieldNetRx, FieldNetTx, FieldLoadScore,
}

// ParseField maps a field name to a Field.
func ParseField(name string) (Field, bool) {
	for _, f := range Fields {
		if string(f) == name {
			return f, true
		}
	}
	return "", false
}

// MetricSnapshot is one scored sampling instant.
type MetricSnapshot struct {
	CPUPercent    float64   `json:"cpu"`
	MemoryUsedGB  float64   `json:"memoryUsedGB"`
	MemoryTotalGB float64   `json:"memoryTotalGB"`
	DiskUsedGB    float64   `json:"diskUsedGB"`
	DiskTotalGB   float64   `json:"diskTotalGB"`
	NetRxMBps     float64   `json:"netRxMBps"`
	NetTxMBps     float64   `json:"netTxMBps"`
	LoadScore     float64   `json:"loadScore"`
	Timestamp     time.Time `json:"timestamp"`
}

// Value returns the named field. ok is false for unknown fields and for
// values that are NaN or infinite.
func (s MetricSnapshot) Value(f Field) (v float64, ok bool) {
	switch f {
	case FieldCPU:
		v = s.CPUPercent
	case FieldMemoryUsed:
		v = s.MemoryUsedGB
	case FieldMemoryTotal:
		v = s.MemoryTotalGB
	case FieldDiskUsed:
		v = s.DiskUsedGB
	case FieldDiskTotal:
		v = s.DiskTotalGB
	case FieldNetRx:
		v = s.NetRxMBps
	case FieldNetTx:
		v = s.NetTxMBps
	case FieldLoadScore:
		v = s.LoadScore
	default:
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// MemoryPercent returns used/total*100.
func (s MetricSnapshot) MemoryPercent() (float64, error) {
	if s.MemoryTotalGB <= 0 {
		return 0, &ValidationError{Field: FieldMemoryTotal, Err: ErrZeroTotal}
	}
	return s.MemoryUsedGB / s.MemoryTotalGB * 100, nil
}

// DiskPercent returns used/total*100.
func (s MetricSnapshot) DiskPercent() (float64, error) {
	if s.DiskTotalGB <= 0 {
		return 0, &ValidationError{Field: FieldDiskTotal, Err: ErrZeroTotal}
	}
	return s.DiskUsedGB / s.DiskTotalGB * 100, nil
}

// NetTotalMBps is the combined receive and transmit rate.
func (s MetricSnapshot) NetTotalMBps() float64 {
	return s.NetRxMBps + s.NetTxMBps
}

// Direction of a trend between the two newest snapshots.
type Direction string

const (
	DirectionUp     Direction = "up"
	DirectionDown   Direction = "down"
	DirectionStable Direction = "stable"
)

// Arrow returns the console glyph for a direction.
func (d Direction) Arrow() string {
	switch d {
	case DirectionUp:
		return "📈"
	case DirectionDown:
		return "📉"
	}
	return "➡️"
}

// TrendResult is derived on demand and never stored.
type TrendResult struct {
	Latest        float64   `json:"latest"`
	Previous      float64   `json:"previous"`
	Change        string    `json:"change"` // percent, two decimals
	ChangePercent float64   `json:"changePercent"`
	Direction     Direction `json:"direction"`
}
