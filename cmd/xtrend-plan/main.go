// xtrend-plan prints a back-of-the-envelope capacity estimate: request rate,
// storage footprint, monthly cost and SLA downtime budget.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/ftahirops/xtrend/planning"
)

type estimate struct {
	Traffic      planning.TrafficResult      `json:"traffic"`
	Storage      planning.StorageResult      `json:"storage"`
	Cost         planning.CostResult         `json:"cost"`
	Availability planning.AvailabilityResult `json:"availability"`
}

type inputs struct {
	traffic     planning.TrafficInput
	retention   float64
	replication int
	pricePerGB  float64
	servers     int
	serverPrice float64
	sla         float64
}

func main() {
	var in inputs
	asJSON := flag.Bool("json", false, "Print the estimate as JSON")
	flag.Float64Var(&in.traffic.Users, "users", 1_000_000, "Daily active users")
	flag.Float64Var(&in.traffic.ReqPerUserPerDay, "requests", 100, "Requests per user per day")
	flag.Float64Var(&in.traffic.PayloadKB, "payload-kb", 2, "Average payload size in KB")
	flag.Float64Var(&in.retention, "retention-days", 30, "Days of data retained")
	flag.IntVar(&in.replication, "replication", planning.DefaultReplication, "Storage replication factor")
	flag.Float64Var(&in.pricePerGB, "storage-price", 0.023, "Storage price per GB per month")
	flag.IntVar(&in.servers, "servers", 10, "Number of servers")
	flag.Float64Var(&in.serverPrice, "server-price", 30, "Price per server per month")
	flag.Float64Var(&in.sla, "sla", 99.9, "Availability target in percent")
	flag.Parse()

	est, err := plan(in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(est); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}
	printEstimate(os.Stdout, est, in.sla)
}

func plan(in inputs) (estimate, error) {
	var est estimate
	var err error
	if est.Traffic, err = planning.Traffic(in.traffic); err != nil {
		return est, fmt.Errorf("traffic: %w", err)
	}
	if est.Storage, err = planning.Storage(planning.StorageInput{
		DailyDataGB:   est.Traffic.DailyDataGB,
		RetentionDays: in.retention,
		Replication:   in.replication,
	}); err != nil {
		return est, fmt.Errorf("storage: %w", err)
	}
	if est.Cost, err = planning.Cost(planning.CostInput{
		StorageGB:          est.Storage.TotalStorageGB,
		StorageCostPerGB:   in.pricePerGB,
		Servers:            in.servers,
		ServerCostPerMonth: in.serverPrice,
	}); err != nil {
		return est, fmt.Errorf("cost: %w", err)
	}
	if est.Availability, err = planning.Availability(in.sla); err != nil {
		return est, fmt.Errorf("availability: %w", err)
	}
	return est, nil
}

func printEstimate(w io.Writer, est estimate, sla float64) {
	fmt.Fprintf(w, "Traffic:      %.2f req/s, %.2f GB/day\n", est.Traffic.RPS, est.Traffic.DailyDataGB)
	fmt.Fprintf(w, "Storage:      %.2f GB with replicas\n", est.Storage.TotalStorageGB)
	fmt.Fprintf(w, "Cost:         $%s/month (storage $%s, compute $%s)\n",
		est.Cost.MonthlyCost.StringFixed(2), est.Cost.StorageCost.StringFixed(2), est.Cost.ComputeCost.StringFixed(2))
	fmt.Fprintf(w, "Availability: %v%% allows %.2f min/month, %.2f h/year of downtime\n",
		sla, est.Availability.DowntimePerMonthMinutes, est.Availability.DowntimePerYearHours)
}
