package model

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func validRaw() RawMetrics {
	return RawMetrics{
		CPU:           Num(42),
		MemoryUsedGB:  Num(8),
		MemoryTotalGB: Num(16),
		DiskUsedGB:    Num(100),
		DiskTotalGB:   Num(500),
		NetRxMBps:     Num(1.5),
		NetTxMBps:     Num(0.5),
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(r *RawMetrics)
		wantField Field
		wantErr   error
	}{
		{"valid numbers", func(r *RawMetrics) {}, "", nil},
		{"numeric strings", func(r *RawMetrics) { r.CPU = Text(" 12.34 "); r.MemoryTotalGB = Text("16.00") }, "", nil},
		{"net missing defaults to zero", func(r *RawMetrics) { r.NetRxMBps = Value{}; r.NetTxMBps = Value{} }, "", nil},
		{"cpu above 100 allowed", func(r *RawMetrics) { r.CPU = Num(104) }, "", nil},
		{"malformed cpu", func(r *RawMetrics) { r.CPU = Text("abc") }, FieldCPU, ErrMalformed},
		{"missing cpu", func(r *RawMetrics) { r.CPU = Value{} }, FieldCPU, ErrMissing},
		{"zero memory total", func(r *RawMetrics) { r.MemoryTotalGB = Num(0) }, FieldMemoryTotal, ErrZeroTotal},
		{"zero disk total text", func(r *RawMetrics) { r.DiskTotalGB = Text("0.00") }, FieldDiskTotal, ErrZeroTotal},
		{"negative disk total", func(r *RawMetrics) { r.DiskTotalGB = Num(-1) }, FieldDiskTotal, ErrZeroTotal},
		{"negative rx", func(r *RawMetrics) { r.NetRxMBps = Num(-0.1) }, FieldNetRx, ErrNegative},
		{"nan memory used", func(r *RawMetrics) { r.MemoryUsedGB = Num(math.NaN()) }, FieldMemoryUsed, ErrNonFinite},
		{"inf text", func(r *RawMetrics) { r.NetTxMBps = Text("+Inf") }, FieldNetTx, ErrNonFinite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validRaw()
			tt.mutate(&raw)
			_, err := Normalize(raw)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Normalize() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Normalize() error = %v, want %v", err, tt.wantErr)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Normalize() error %T is not *ValidationError", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("ValidationError.Field = %q, want %q", verr.Field, tt.wantField)
			}
		})
	}
}

func TestNormalizeConvertsText(t *testing.T) {
	raw := validRaw()
	raw.CPU = Text("12.34")
	raw.NetRxMBps = Value{}
	s, err := Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if s.CPUPercent != 12.34 {
		t.Errorf("CPUPercent = %v, want 12.34", s.CPUPercent)
	}
	if s.NetRxMBps != 0 {
		t.Errorf("NetRxMBps = %v, want 0", s.NetRxMBps)
	}
	if !s.Timestamp.IsZero() || s.LoadScore != 0 {
		t.Errorf("Normalize must leave LoadScore and Timestamp unset, got %v %v", s.LoadScore, s.Timestamp)
	}
}

func TestRawMetricsJSONAcceptsNumbersAndStrings(t *testing.T) {
	doc := `{"cpu":"12.34","memoryUsedGB":7.5,"memoryTotalGB":"16.00","diskUsedGB":100,"diskTotalGB":"500","netRxMBps":null}`
	var raw RawMetrics
	if err := json.Unmarshal([]byte(doc), &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if raw.NetRxMBps.IsSet() || raw.NetTxMBps.IsSet() {
		t.Fatalf("null and absent net fields should be unset")
	}
	s, err := Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if s.CPUPercent != 12.34 || s.MemoryUsedGB != 7.5 || s.DiskTotalGB != 500 {
		t.Errorf("unexpected snapshot %+v", s)
	}

	out, err := json.Marshal(raw)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back RawMetrics
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatalf("unmarshal round trip: %v", err)
	}
	if back.CPU.String() != "12.34" || back.MemoryUsedGB.String() != "7.5" {
		t.Errorf("round trip changed values: %s", out)
	}
}

func TestValueUnmarshalRejectsObjects(t *testing.T) {
	var v Value
	if err := json.Unmarshal([]byte(`{"x":1}`), &v); err == nil {
		t.Fatal("expected error for object value")
	}
}

func TestSnapshotPercents(t *testing.T) {
	s := MetricSnapshot{MemoryUsedGB: 4, MemoryTotalGB: 16, DiskUsedGB: 0, DiskTotalGB: 0}
	mem, err := s.MemoryPercent()
	if err != nil || mem != 25 {
		t.Errorf("MemoryPercent() = %v, %v; want 25, nil", mem, err)
	}
	if _, err := s.DiskPercent(); !errors.Is(err, ErrZeroTotal) {
		t.Errorf("DiskPercent() error = %v, want ErrZeroTotal", err)
	}
}

func TestSnapshotValue(t *testing.T) {
	s := MetricSnapshot{CPUPercent: 10, LoadScore: math.NaN(), NetTxMBps: 2}
	if v, ok := s.Value(FieldCPU); !ok || v != 10 {
		t.Errorf("Value(cpu) = %v, %v", v, ok)
	}
	if _, ok := s.Value(FieldLoadScore); ok {
		t.Error("Value(loadScore) should be non-numeric for NaN")
	}
	if _, ok := s.Value(Field("bogus")); ok {
		t.Error("Value(bogus) should be non-numeric")
	}
	if f, ok := ParseField("netTxMBps"); !ok || f != FieldNetTx {
		t.Errorf("ParseField(netTxMBps) = %v, %v", f, ok)
	}
}

func TestAlertLevelText(t *testing.T) {
	tests := []struct {
		in   string
		want AlertLevel
	}{
		{"info", AlertInfo},
		{"warning", AlertWarning},
		{"WARN", AlertWarning},
		{"critical", AlertCritical},
	}
	for _, tt := range tests {
		var l AlertLevel
		if err := l.UnmarshalText([]byte(tt.in)); err != nil {
			t.Fatalf("UnmarshalText(%q): %v", tt.in, err)
		}
		if l != tt.want {
			t.Errorf("UnmarshalText(%q) = %v, want %v", tt.in, l, tt.want)
		}
	}
	var l AlertLevel
	if err := l.UnmarshalText([]byte("loud")); err == nil {
		t.Error("expected error for unknown level")
	}
	alerts := []Alert{{Level: AlertWarning}, {Level: AlertCritical}, {Level: AlertWarning}}
	if got := WorstLevel(alerts); got != AlertCritical {
		t.Errorf("WorstLevel = %v, want critical", got)
	}
	if got := CountByLevel(alerts)[AlertWarning]; got != 2 {
		t.Errorf("CountByLevel[warning] = %d, want 2", got)
	}
}
