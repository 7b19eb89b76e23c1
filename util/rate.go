package util

import "time"

// Rate computes the per-second rate between two counter values.
func Rate(prev, curr uint64, dt time.Duration) float64 {
	if dt <= 0 {
		return 0
	}
	return float64(Delta(prev, curr)) / dt.Seconds()
}

// CPUPct computes busy percentage from two active/total jiffy readings.
func CPUPct(prevActive, currActive, prevTotal, currTotal uint64) float64 {
	dtotal := Delta(prevTotal, currTotal)
	if dtotal == 0 {
		return 0
	}
	pct := float64(Delta(prevActive, currActive)) / float64(dtotal) * 100
	if pct > 100 {
		return 100
	}
	return pct
}

// Delta returns curr - prev, or 0 if curr < prev (counter wrap).
func Delta(prev, curr uint64) uint64 {
	if curr < prev {
		return 0
	}
	return curr - prev
}
