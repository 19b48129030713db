package summary

import (
	"github.com/shopspring/decimal"

	"carteira/internal/core"
)

// GoalView pairs a goal with its progress.
type GoalView struct {
	Goal     core.Goal `json:"goal"`
	Progress int       `json:"progress"`
}

// GoalProgress is 100 for settled goals, otherwise current/target as a
// rounded percentage capped at 100. A zero target yields 0.
func GoalProgress(g core.Goal) int {
	if g.Status.IsSettled() {
		return 100
	}
	if !g.TargetAmount.IsPositive() {
		return 0
	}
	p := g.CurrentAmount.Div(g.TargetAmount).Mul(hundred).Round(0)
	return int(clamp(p, decimal.Zero, hundred).IntPart())
}

// AdjustGoal moves the current amount by delta, clamped to [0, target].
// The input goal is not modified.
func AdjustGoal(g core.Goal, delta decimal.Decimal) core.Goal {
	target := g.TargetAmount
	if target.IsNegative() {
		target = decimal.Zero
	}
	g.CurrentAmount = clamp(g.CurrentAmount.Add(delta), decimal.Zero, target)
	return g
}

// GoalViews computes progress for every goal, keeping order.
func GoalViews(goals []core.Goal) []GoalView {
	out := make([]GoalView, 0, len(goals))
	for _, g := range goals {
		out = append(out, GoalView{Goal: g, Progress: GoalProgress(g)})
	}
	return out
}
