package ledger

import (
	"github.com/shopspring/decimal"

	"rastreador/internal/core"
)

// GoalProgress is the evaluated completion state of a savings goal.
type GoalProgress struct {
	Percent  float64 `json:"percent"`
	Complete bool    `json:"complete"`
}

// ProgressOf computes a goal's completion percentage. Percent is 0 for a
// non-positive target and may exceed 100; use Display for a clamped value.
// A goal is complete once progress reaches 100%.
func ProgressOf(g core.Goal) GoalProgress {
	var percent float64
	if g.Target.IsPositive() {
		percent = g.Current.Div(g.Target).Mul(decimal.NewFromInt(100)).InexactFloat64()
	}
	return GoalProgress{Percent: percent, Complete: percent >= 100}
}

// Display returns the percentage clamped to [0, 100] for progress bars.
func (p GoalProgress) Display() float64 {
	if p.Percent > 100 {
		return 100
	}
	if p.Percent < 0 {
		return 0
	}
	return p.Percent
}
