package engine

import "github.com/ftahirops/xtrend/model"

// DefaultSustainTicks is how many consecutive ticks a new level must hold
// before AlertState adopts it.
const DefaultSustainTicks = 2

// AlertState debounces alert levels across ticks. A move to critical is
// adopted at once; every other transition, including recovery, must be
// sustained for the configured number of ticks.
type AlertState struct {
	current        model.AlertLevel
	candidate      model.AlertLevel
	candidateTicks int
	sustain        int
}

// NewAlertState creates a state machine starting at info.
func NewAlertState(sustainTicks int) *AlertState {
	if sustainTicks < 1 {
		sustainTicks = DefaultSustainTicks
	}
	return &AlertState{sustain: sustainTicks}
}

// Current returns the adopted level.
func (as *AlertState) Current() model.AlertLevel {
	return as.current
}

// Update feeds one tick's worst level and returns the adopted level and
// whether it changed on this tick.
func (as *AlertState) Update(level model.AlertLevel) (model.AlertLevel, bool) {
	required := as.sustain
	if required == 0 {
		required = DefaultSustainTicks
	}

	if level == model.AlertCritical && as.current != model.AlertCritical {
		as.current = model.AlertCritical
		as.candidate = model.AlertCritical
		as.candidateTicks = 0
		return as.current, true
	}

	if level == as.candidate {
		as.candidateTicks++
	} else {
		as.candidate = level
		as.candidateTicks = 1
	}

	if as.candidateTicks >= required && as.candidate != as.current {
		as.current = as.candidate
		return as.current, true
	}
	return as.current, false
}
