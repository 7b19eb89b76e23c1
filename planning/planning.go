// Package planning provides back-of-the-envelope capacity estimates:
// request rate, storage footprint, monthly cost and SLA downtime budgets.
package planning

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultReplication is the storage replication factor when none is given.
const DefaultReplication = 3

const (
	secondsPerDay  = 86400
	kbPerGB        = 1e6
	minutesPerMon  = 30 * 24 * 60
	hoursPerYear   = 365 * 24
	percentDivisor = 100
)

// ErrInvalidInput is wrapped by every validation failure in this package.
var ErrInvalidInput = errors.New("invalid planning input")

func nonNegative(name string, v float64) error {
	if v < 0 {
		return fmt.Errorf("%s must not be negative, got %v: %w", name, v, ErrInvalidInput)
	}
	return nil
}

// TrafficInput describes a user population.
type TrafficInput struct {
	Users            float64 `json:"users"`            // daily active users
	ReqPerUserPerDay float64 `json:"reqPerUserPerDay"` // requests per user per day
	PayloadKB        float64 `json:"payloadKB"`        // average request size
}

// TrafficResult is the average load the population generates.
type TrafficResult struct {
	RPS         float64 `json:"rps"`
	DailyDataGB float64 `json:"dailyDataGB"`
}

// Traffic estimates average requests per second and daily transfer.
func Traffic(in TrafficInput) (TrafficResult, error) {
	for name, v := range map[string]float64{"users": in.Users, "requests per user": in.ReqPerUserPerDay, "payload": in.PayloadKB} {
		if err := nonNegative(name, v); err != nil {
			return TrafficResult{}, err
		}
	}
	requests := in.Users * in.ReqPerUserPerDay
	return TrafficResult{
		RPS:         requests / secondsPerDay,
		DailyDataGB: requests * in.PayloadKB / kbPerGB,
	}, nil
}

// StorageInput describes retained data. Replication 0 selects
// DefaultReplication.
type StorageInput struct {
	DailyDataGB   float64 `json:"dailyDataGB"`
	RetentionDays float64 `json:"retentionDays"`
	Replication   int     `json:"replicationFactor,omitempty"`
}

// StorageResult is the total footprint including replicas.
type StorageResult struct {
	TotalStorageGB float64 `json:"totalStorageGB"`
}

// Storage estimates the replicated storage footprint.
func Storage(in StorageInput) (StorageResult, error) {
	if err := nonNegative("daily data", in.DailyDataGB); err != nil {
		return StorageResult{}, err
	}
	if err := nonNegative("retention", in.RetentionDays); err != nil {
		return StorageResult{}, err
	}
	repl := in.Replication
	if repl == 0 {
		repl = DefaultReplication
	}
	if repl < 0 {
		return StorageResult{}, fmt.Errorf("replication must be positive, got %d: %w", repl, ErrInvalidInput)
	}
	return StorageResult{TotalStorageGB: in.DailyDataGB * in.RetentionDays * float64(repl)}, nil
}

// CostInput prices storage and compute.
type CostInput struct {
	StorageGB          float64 `json:"storageGB"`
	StorageCostPerGB   float64 `json:"storageCostPerGB"`
	Servers            int     `json:"servers"`
	ServerCostPerMonth float64 `json:"serverCostPerMonth"`
}

// CostResult holds money amounts as decimals so cents are exact.
type CostResult struct {
	StorageCost decimal.Decimal `json:"storageCost"`
	ComputeCost decimal.Decimal `json:"computeCost"`
	MonthlyCost decimal.Decimal `json:"monthlyCost"`
}

// Cost estimates the monthly bill.
func Cost(in CostInput) (CostResult, error) {
	for name, v := range map[string]float64{"storage": in.StorageGB, "storage price": in.StorageCostPerGB, "server price": in.ServerCostPerMonth} {
		if err := nonNegative(name, v); err != nil {
			return CostResult{}, err
		}
	}
	if in.Servers < 0 {
		return CostResult{}, fmt.Errorf("servers must not be negative, got %d: %w", in.Servers, ErrInvalidInput)
	}
	storage := decimal.NewFromFloat(in.StorageGB).Mul(decimal.NewFromFloat(in.StorageCostPerGB))
	compute := decimal.NewFromInt(int64(in.Servers)).Mul(decimal.NewFromFloat(in.ServerCostPerMonth))
	return CostResult{
		StorageCost: storage,
		ComputeCost: compute,
		MonthlyCost: storage.Add(compute),
	}, nil
}

// AvailabilityResult is the downtime an SLA allows.
type AvailabilityResult struct {
	DowntimePerMonthMinutes float64 `json:"downtimePerMonthMinutes"`
	DowntimePerYearHours    float64 `json:"downtimePerYearHours"`
}

// Availability converts an SLA percentage such as 99.9 into a downtime
// budget. A month is 30 days.
func Availability(slaPercent float64) (AvailabilityResult, error) {
	if slaPercent <= 0 || slaPercent > percentDivisor {
		return AvailabilityResult{}, fmt.Errorf("sla must be in (0, 100], got %v: %w", slaPercent, ErrInvalidInput)
	}
	// Decimal arithmetic keeps 1 - 99.9/100 at exactly 0.001.
	frac := decimal.NewFromInt(1).Sub(decimal.NewFromFloat(slaPercent).Div(decimal.NewFromInt(percentDivisor)))
	return AvailabilityResult{
		DowntimePerMonthMinutes: frac.Mul(decimal.NewFromInt(minutesPerMon)).InexactFloat64(),
		DowntimePerYearHours:    frac.Mul(decimal.NewFromInt(hoursPerYear)).InexactFloat64(),
	}, nil
}
