package engine

import (
	"fmt"
	"time"

	"github.com/ftahirops/xtrend/model"
)

// Band is a warning/critical pair. A value above Crit is critical, a value
// in (Warn, Crit] is a warning.
type Band struct {
	Warn float64
	Crit float64
}

// Thresholds is the alert threshold table.
type Thresholds struct {
	CPU             Band
	Memory          Band
	Disk            Band
	Load            Band
	NetworkWarnMBps float64
}

// DefaultThresholds returns the stock threshold table.
func DefaultThresholds() Thresholds {
	return Thresholds{
		CPU:             Band{Warn: 75, Crit: 90},
		Memory:          Band{Warn: 80, Crit: 95},
		Disk:            Band{Warn: 85, Crit: 95},
		Load:            Band{Warn: 65, Crit: 85},
		NetworkWarnMBps: 50,
	}
}

// Validate requires every band to have warn < crit and a positive network limit.
func (t Thresholds) Validate() error {
	bands := []struct {
		name string
		b    Band
	}{{"cpu", t.CPU}, {"memory", t.Memory}, {"disk", t.Disk}, {"load", t.Load}}
	for _, b := range bands {
		if b.b.Warn >= b.b.Crit {
			return fmt.Errorf("%s thresholds: warn %.1f must be below crit %.1f", b.name, b.b.Warn, b.b.Crit)
		}
	}
	if t.NetworkWarnMBps <= 0 {
		return fmt.Errorf("network threshold must be positive, got %.2f", t.NetworkWarnMBps)
	}
	return nil
}

type alertRule struct {
	category model.AlertCategory
	value    float64
	band     Band
	critMsg  string
	warnMsg  string
}

// EvaluateAlerts classifies a scored snapshot against th. Critical alerts come
// first, then warnings, each in cpu, memory, disk, load, network order. When
// nothing fires a single info alert is returned, so the result is never empty.
// Zero memory or disk totals are reported as an error wrapping
// model.ErrZeroTotal.
func EvaluateAlerts(s model.MetricSnapshot, th Thresholds) ([]model.Alert, error) {
	memPct, err := s.MemoryPercent()
	if err != nil {
		return nil, fmt.Errorf("evaluate alerts: %w", err)
	}
	diskPct, err := s.DiskPercent()
	if err != nil {
		return nil, fmt.Errorf("evaluate alerts: %w", err)
	}

	ts := s.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	rules := []alertRule{
		{model.CategoryCPU, s.CPUPercent, th.CPU, "CPU usage critically high: %.1f%%", "High CPU usage: %.1f%%"},
		{model.CategoryMemory, memPct, th.Memory, "Memory almost exhausted: %.1f%%", "High memory usage: %.1f%%"},
		{model.CategoryDisk, diskPct, th.Disk, "Disk space critically low: %.1f%%", "Disk space running low: %.1f%%"},
		{model.CategoryLoad, s.LoadScore, th.Load, "Overall system load critical: %.1f%%", "Elevated system load: %.1f%%"},
	}

	var alerts []model.Alert
	for _, r := range rules {
		if r.value > r.band.Crit {
			alerts = append(alerts, model.Alert{
				Level:     model.AlertCritical,
				Category:  r.category,
				Message:   fmt.Sprintf(r.critMsg, r.value),
				Icon:      model.IconCritical,
				Timestamp: ts,
			})
		}
	}
	for _, r := range rules {
		if r.value > r.band.Warn && r.value <= r.band.Crit {
			alerts = append(alerts, model.Alert{
				Level:     model.AlertWarning,
				Category:  r.category,
				Message:   fmt.Sprintf(r.warnMsg, r.value),
				Icon:      model.IconWarning,
				Timestamp: ts,
			})
		}
	}
	if net := s.NetTotalMBps(); net > th.NetworkWarnMBps {
		alerts = append(alerts, model.Alert{
			Level:     model.AlertWarning,
			Category:  model.CategoryNetwork,
			Message:   fmt.Sprintf("High network activity: %.2f MBps", net),
			Icon:      model.IconNetwork,
			Timestamp: ts,
		})
	}

	if len(alerts) == 0 {
		alerts = append(alerts, model.Alert{
			Level:     model.AlertInfo,
			Category:  model.CategorySystem,
			Message:   fmt.Sprintf("System operating normally (Load: %.1f%%)", s.LoadScore),
			Icon:      model.IconInfo,
			Timestamp: ts,
		})
	}
	return alerts, nil
}
