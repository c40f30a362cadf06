package strategy

import "f1-fantasy/internal/lp"

// MaxBudget spends as much of the budget as it can.
type MaxBudget struct{}

func (MaxBudget) Name() string { return "MaxBudget" }
func (MaxBudget) Kind() Kind   { return KindMaxBudget }

func (MaxBudget) Objective(s *Scaffold) (lp.Expr, error) {
	return s.TotalCost, nil
}

// ZeroStop behaves like MaxBudget but only changes the roster to replace
// assets that are no longer selectable.
type ZeroStop struct{}

func (ZeroStop) Name() string { return "ZeroStop" }
func (ZeroStop) Kind() Kind   { return KindZeroStop }

func (ZeroStop) AdjustInputs(in Inputs) (Inputs, error) {
	in.MaxMoves = len(in.Unavailable())
	return in, nil
}

func (ZeroStop) Objective(s *Scaffold) (lp.Expr, error) {
	return s.TotalCost, nil
}
