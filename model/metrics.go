package model

import (
	"errors"
	"fmt"
	"math"
)

// Validation sentinels. Every failure from Normalize is a *ValidationError
// wrapping one of these.
var (
	ErrMissing   = errors.New("value missing")
	ErrMalformed = errors.New("malformed numeric value")
	ErrNonFinite = errors.New("value is not finite")
	ErrNegative  = errors.New("value is negative")
	ErrZeroTotal = errors.New("total must be greater than zero")
)

// ValidationError reports a raw field that failed ingestion.
type ValidationError struct {
	Field Field
	Input string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Input == "" {
		return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Input, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// RawMetrics is one sample exactly as a source produced it.
type RawMetrics struct {
	CPU           Value `json:"cpu"`
	MemoryUsedGB  Value `json:"memoryUsedGB"`
	MemoryTotalGB Value `json:"memoryTotalGB"`
	DiskUsedGB    Value `json:"diskUsedGB"`
	DiskTotalGB   Value `json:"diskTotalGB"`
	NetRxMBps     Value `json:"netRxMBps"`
	NetTxMBps     Value `json:"netTxMBps"`
}

// RawFromSnapshot converts a typed snapshot back to raw form.
func RawFromSnapshot(s MetricSnapshot) RawMetrics {
	return RawMetrics{
		CPU:           Num(s.CPUPercent),
		MemoryUsedGB:  Num(s.MemoryUsedGB),
		MemoryTotalGB: Num(s.MemoryTotalGB),
		DiskUsedGB:    Num(s.DiskUsedGB),
		DiskTotalGB:   Num(s.DiskTotalGB),
		NetRxMBps:     Num(s.NetRxMBps),
		NetTxMBps:     Num(s.NetTxMBps),
	}
}

type fieldRule uint8

const (
	ruleNonNegative fieldRule = iota // required, >= 0
	rulePositive                     // required, > 0 (totals)
	ruleOptional                     // missing means 0, otherwise >= 0
)

// Normalize validates a raw sample and converts it to a typed snapshot.
// LoadScore and Timestamp are left zero; the engine fills them in.
func Normalize(raw RawMetrics) (MetricSnapshot, error) {
	var s MetricSnapshot
	checks := []struct {
		field Field
		in    Value
		dst   *float64
		rule  fieldRule
	}{
		{FieldCPU, raw.CPU, &s.CPUPercent, ruleNonNegative},
		{FieldMemoryUsed, raw.MemoryUsedGB, &s.MemoryUsedGB, ruleNonNegative},
		{FieldMemoryTotal, raw.MemoryTotalGB, &s.MemoryTotalGB, rulePositive},
		{FieldDiskUsed, raw.DiskUsedGB, &s.DiskUsedGB, ruleNonNegative},
		{FieldDiskTotal, raw.DiskTotalGB, &s.DiskTotalGB, rulePositive},
		{FieldNetRx, raw.NetRxMBps, &s.NetRxMBps, ruleOptional},
		{FieldNetTx, raw.NetTxMBps, &s.NetTxMBps, ruleOptional},
	}
	for _, c := range checks {
		if !c.in.IsSet() && c.rule == ruleOptional {
			continue
		}
		f, err := c.in.Float()
		if err != nil {
			return MetricSnapshot{}, &ValidationError{Field: c.field, Input: c.in.String(), Err: err}
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return MetricSnapshot{}, &ValidationError{Field: c.field, Input: c.in.String(), Err: ErrNonFinite}
		}
		switch {
		case c.rule == rulePositive && f <= 0:
			return MetricSnapshot{}, &ValidationError{Field: c.field, Input: c.in.String(), Err: ErrZeroTotal}
		case f < 0:
			return MetricSnapshot{}, &ValidationError{Field: c.field, Input: c.in.String(), Err: ErrNegative}
		}
		*c.dst = f
	}
	return s, nil
}
