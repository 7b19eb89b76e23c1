package engine

import (
	"math"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name              string
		value, warn, crit float64
		want              float64
	}{
		{"below warn", 3, 5, 20, 0},
		{"at warn", 5, 5, 20, 0},
		{"midpoint", 12.5, 5, 20, 0.5},
		{"at crit", 20, 5, 20, 1},
		{"above crit", 100, 5, 20, 1},
		{"zero value", 0, 5, 20, 0},
		{"negative value", -1, 5, 20, 0},
		{"equal warn crit (at threshold)", 5, 5, 5, 1},
		{"equal warn crit (below)", 3, 5, 5, 0},
		{"cpu band quarter", 78.75, 75, 90, 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalize(tt.value, tt.warn, tt.crit)
			if diff := got - tt.want; diff > 0.001 || diff < -0.001 {
				t.Errorf("normalize(%v, %v, %v) = %v, want %v",
					tt.value, tt.warn, tt.crit, got, tt.want)
			}
		})
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{30, 30},
		{1.005, 1.01},
		{2.675, 2.68},
		{-1.005, -1.01},
		{42.4449, 42.44},
		{99.999, 100},
	}
	for _, tt := range tests {
		if got := round2(tt.in); got != tt.want {
			t.Errorf("round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if got := round2(math.Inf(1)); !math.IsInf(got, 1) {
		t.Errorf("round2(+Inf) = %v, want +Inf", got)
	}
}

func TestFixed2(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{10, "10.00"},
		{10.000000000000002, "10.00"},
		{-3.456, "-3.46"},
		{0.04, "0.04"},
		{math.NaN(), "NaN"},
	}
	for _, tt := range tests {
		if got := fixed2(tt.in); got != tt.want {
			t.Errorf("fixed2(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
