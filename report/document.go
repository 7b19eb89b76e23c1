package report

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ftahirops/xtrend/model"
)

// Document is the on-disk report: readings as two-decimal strings, the load
// score as a number, and the alert list without categories.
type Document struct {
	ID            string     `json:"id"`
	CPU           string     `json:"cpu"`
	MemoryUsedGB  string     `json:"memoryUsedGB"`
	MemoryTotalGB string     `json:"memoryTotalGB"`
	DiskUsedGB    string     `json:"diskUsedGB"`
	DiskTotalGB   string     `json:"diskTotalGB"`
	NetRxMBps     string     `json:"netRxMBps"`
	NetTxMBps     string     `json:"netTxMBps"`
	LoadScore     float64    `json:"loadScore"`
	Alerts        []AlertDoc `json:"alerts"`
	Timestamp     string     `json:"timestamp"`
	GeneratedAt   string     `json:"generatedAt"`
}

// AlertDoc is one alert as stored in a report file.
type AlertDoc struct {
	Level   string `json:"level"`
	Message string `json:"message"`
	Emoji   string `json:"emoji"`
}

// NewDocument converts rep. generated is the wall-clock time of writing.
func NewDocument(rep *model.Report, generated time.Time) Document {
	s := rep.Snapshot
	doc := Document{
		ID:            rep.ID,
		CPU:           Fixed2(s.CPUPercent),
		MemoryUsedGB:  Fixed2(s.MemoryUsedGB),
		MemoryTotalGB: Fixed2(s.MemoryTotalGB),
		DiskUsedGB:    Fixed2(s.DiskUsedGB),
		DiskTotalGB:   Fixed2(s.DiskTotalGB),
		NetRxMBps:     Fixed2(s.NetRxMBps),
		NetTxMBps:     Fixed2(s.NetTxMBps),
		LoadScore:     s.LoadScore,
		Alerts:        make([]AlertDoc, 0, len(rep.Alerts)),
		Timestamp:     rep.Timestamp.UTC().Format(time.RFC3339),
		GeneratedAt:   generated.Local().Format("1/2/2006, 3:04:05 PM"),
	}
	for _, a := range rep.Alerts {
		doc.Alerts = append(doc.Alerts, AlertDoc{Level: a.Level.String(), Message: a.Message, Emoji: a.Icon})
	}
	return doc
}

// Fixed2 formats v with exactly two decimals, rounding half away from zero.
func Fixed2(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
