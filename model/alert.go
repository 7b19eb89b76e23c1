package model

import (
	"fmt"
	"strings"
	"time"
)

// AlertLevel orders alert severity.
type AlertLevel int

const (
	AlertInfo     AlertLevel = 0
	AlertWarning  AlertLevel = 1
	AlertCritical AlertLevel = 2
)

func (l AlertLevel) String() string {
	switch l {
	case AlertInfo:
		return "info"
	case AlertWarning:
		return "warning"
	case AlertCritical:
		return "critical"
	}
	return "unknown"
}

func (l AlertLevel) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l *AlertLevel) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "info":
		*l = AlertInfo
	case "warning", "warn":
		*l = AlertWarning
	case "critical", "crit":
		*l = AlertCritical
	default:
		return fmt.Errorf("unknown alert level %q", b)
	}
	return nil
}

// AlertCategory is the resource an alert is about.
type AlertCategory string

const (
	CategoryCPU     AlertCategory = "cpu"
	CategoryMemory  AlertCategory = "memory"
	CategoryDisk    AlertCategory = "disk"
	CategoryLoad    AlertCategory = "load"
	CategoryNetwork AlertCategory = "network"
	CategorySystem  AlertCategory = "system"
)

const (
	IconCritical = "🚨"
	IconWarning  = "⚠️"
	IconNetwork  = "📡"
	IconInfo     = "✅"
)

// Alert is produced per evaluation and never stored in history.
type Alert struct {
	Level     AlertLevel    `json:"level"`
	Category  AlertCategory `json:"category"`
	Message   string        `json:"message"`
	Icon      string        `json:"emoji"`
	Timestamp time.Time     `json:"timestamp"`
}

// WorstLevel returns the highest level in alerts, AlertInfo when empty.
func WorstLevel(alerts []Alert) AlertLevel {
	worst := AlertInfo
	for _, a := range alerts {
		if a.Level > worst {
			worst = a.Level
		}
	}
	return worst
}

// CountByLevel counts alerts per level. Every level is present in the result.
func CountByLevel(alerts []Alert) map[AlertLevel]int {
	out := map[AlertLevel]int{AlertInfo: 0, AlertWarning: 0, AlertCritical: 0}
	for _, a := range alerts {
		out[a.Level]++
	}
	return out
}
