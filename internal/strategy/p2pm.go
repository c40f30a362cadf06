package strategy

import "f1-fantasy/internal/lp"

// MaxP2PM maximizes a rolling points-squared-per-money metric. At UnlockRace,
// the first race with a full rolling window, any number of moves is allowed.
type MaxP2PM struct {
	Metric       string
	PointsMetric string
	UnlockRace   int
}

func (m *MaxP2PM) Name() string { return "MaxP2PM" }
func (m *MaxP2PM) Kind() Kind   { return KindMaxP2PM }

func (m *MaxP2PM) AdjustInputs(in Inputs) (Inputs, error) {
	if in.Race == m.UnlockRace {
		in.MaxMoves = in.RosterSize()
	}
	return in, nil
}

func (m *MaxP2PM) Objective(s *Scaffold) (lp.Expr, error) {
	values := s.Inputs.Derivs[m.Metric]
	return s.WeightedSelection(func(name string) float64 {
		return values[name]
	}), nil
}

// BonusDriver picks the selected driver with the most rolling points.
func (m *MaxP2PM) BonusDriver(in Inputs, selected []string) string {
	points := in.Derivs[m.PointsMetric]
	return bestUnique(selected, func(name string) float64 {
		return points[name]
	})
}
