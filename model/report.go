package model

import "time"

// Report is everything one tick produced. Publishers receive it read-only.
type Report struct {
	ID        string                `json:"id"`
	Timestamp time.Time             `json:"timestamp"`
	Snapshot  MetricSnapshot        `json:"metrics"`
	Alerts    []Alert               `json:"alerts"`
	Trends    map[Field]TrendResult `json:"trends,omitempty"`
	Averages  map[Field]float64     `json:"averages,omitempty"`
}

// Level is the worst alert level in the report.
func (r *Report) Level() AlertLevel {
	return WorstLevel(r.Alerts)
}

// Trend returns the trend for f if one was computed this tick.
func (r *Report) Trend(f Field) (TrendResult, bool) {
	t, ok := r.Trends[f]
	return t, ok
}

// Average returns the moving average for f if one was computed this tick.
func (r *Report) Average(f Field) (float64, bool) {
	v, ok := r.Averages[f]
	return v, ok
}
