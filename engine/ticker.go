package engine

import (
	"context"

	"github.com/ftahirops/xtrend/model"
)

// Ticker abstracts anything that can produce one report per call.
type Ticker interface {
	Tick(ctx context.Context) (*model.Report, error)
	Base() *Engine
}

// Base returns itself for the default engine ticker.
func (e *Engine) Base() *Engine {
	return e
}
