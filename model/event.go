package model

import "time"

// AlertEvent is one non-info alert as written to the alert log.
type AlertEvent struct {
	ID        string        `json:"id"`
	ReportID  string        `json:"report_id"`
	Time      time.Time     `json:"time"`
	Level     AlertLevel    `json:"level"`
	Category  AlertCategory `json:"category"`
	Message   string        `json:"message"`
	LoadScore float64       `json:"load_score"`
}
