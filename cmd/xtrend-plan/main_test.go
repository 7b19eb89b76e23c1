package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ftahirops/xtrend/planning"
)

func defaultInputs() inputs {
	return inputs{
		traffic:     planning.TrafficInput{Users: 1_000_000, ReqPerUserPerDay: 100, PayloadKB: 2},
		retention:   30,
		replication: 3,
		pricePerGB:  0.023,
		servers:     10,
		serverPrice: 30,
		sla:         99.9,
	}
}

func TestPlanAndPrint(t *testing.T) {
	est, err := plan(defaultInputs())
	if err != nil {
		t.Fatalf("plan() error = %v", err)
	}
	var buf bytes.Buffer
	printEstimate(&buf, est, 99.9)
	out := buf.String()
	for _, want := range []string{
		"1157.41 req/s, 200.00 GB/day",
		"18000.00 GB",
		"$714.00/month (storage $414.00, compute $300.00)",
		"43.20 min/month, 8.76 h/year",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPlanRejectsBadSLA(t *testing.T) {
	in := defaultInputs()
	in.sla = 120
	if _, err := plan(in); err == nil || !strings.Contains(err.Error(), "availability") {
		t.Errorf("plan() error = %v, want availability error", err)
	}
}
