package strategy

import (
	"fmt"
	"math"
	"sort"

	"f1-fantasy/internal/lp"
	"f1-fantasy/internal/model"
)

// Scaffold is the ILP shared by every strategy for one race transition.
type Scaffold struct {
	// Inputs with unavailable owned assets already priced at CostProhibitive.
	Inputs  Inputs
	Problem *lp.Problem

	DriverNames      []string
	ConstructorNames []string
	Drivers          map[string]lp.Var
	Constructors     map[string]lp.Var

	TotalCost    lp.Expr
	Moves        lp.Expr
	UnusedBudget lp.Expr
	// Concentration is set by strategies that cap per-constructor exposure.
	Concentration *lp.Expr
	Objective     lp.Expr

	constraints []lp.Constraint
}

// Build creates the selection variables, cost, roster size and moves
// constraints over the selectable assets plus any owned assets that are
// no longer selectable.
func Build(name string, in Inputs) *Scaffold {
	in = in.withProhibitivePrices()
	s := &Scaffold{
		Inputs:           in,
		Problem:          lp.NewProblem(name, lp.Maximize),
		DriverNames:      union(in.Drivers, in.TeamDrivers),
		ConstructorNames: union(in.Constructors, in.TeamConstructors),
		Drivers:          make(map[string]lp.Var),
		Constructors:     make(map[string]lp.Var),
	}
	wasDriver := toSet(in.TeamDrivers)
	wasConstructor := toSet(in.TeamConstructors)

	var cost, driverCount, constructorCount, retained lp.Expr
	for _, d := range s.DriverNames {
		v := s.Problem.NewBinary("driver_" + d)
		s.Drivers[d] = v
		cost = cost.Add(lp.Term(v, in.Prices[d]))
		driverCount = driverCount.Add(lp.Term(v, 1))
		if wasDriver[d] {
			retained = retained.Add(lp.Term(v, 1))
		}
	}
	for _, c := range s.ConstructorNames {
		v := s.Problem.NewBinary("constructor_" + c)
		s.Constructors[c] = v
		cost = cost.Add(lp.Term(v, in.Prices[c]))
		constructorCount = constructorCount.Add(lp.Term(v, 1))
		if wasConstructor[c] {
			retained = retained.Add(lp.Term(v, 1))
		}
	}

	s.TotalCost = cost
	s.UnusedBudget = lp.Const(in.MaxCost).Sub(cost)
	s.Moves = lp.Const(float64(in.RosterSize())).Sub(retained)
	s.constraints = []lp.Constraint{
		s.TotalCost.Le(in.MaxCost).Named("total_cost"),
		driverCount.Eq(float64(len(in.TeamDrivers))).Named("team_drivers"),
		constructorCount.Eq(float64(len(in.TeamConstructors))).Named("team_constructors"),
		s.Moves.Le(float64(in.MaxMoves)).Named("team_moves"),
	}
	return s
}

// Var returns the selection variable of an asset.
func (s *Scaffold) Var(kind model.AssetKind, name string) (lp.Var, bool) {
	if kind == model.KindConstructor {
		v, ok := s.Constructors[name]
		return v, ok
	}
	v, ok := s.Drivers[name]
	return v, ok
}

// Constraints returns the base constraints.
func (s *Scaffold) Constraints() []lp.Constraint {
	return append([]lp.Constraint(nil), s.constraints...)
}

// WeightedSelection is Σ weight(asset)·x(asset) over every variable.
func (s *Scaffold) WeightedSelection(weight func(name string) float64) lp.Expr {
	var e lp.Expr
	for _, d := range s.DriverNames {
		e = e.Add(lp.Term(s.Drivers[d], weight(d)))
	}
	for _, c := range s.ConstructorNames {
		e = e.Add(lp.Term(s.Constructors[c], weight(c)))
	}
	return e
}

// Result is the solved selection of one race transition.
type Result struct {
	Strategy      string
	Status        lp.Status
	Drivers       []string
	Constructors  []string
	TotalCost     float64
	UnusedBudget  float64
	MovesUsed     int
	MaxMoves      int
	Objective     float64
	Concentration float64
	BonusDriver   string
	Nodes         int
}

// Execute validates in, builds the scaffold, applies strat and solves.
// A non-optimal solve returns ErrNotOptimal along with a Result carrying
// only the status.
func Execute(strat Strategy, in Inputs, solver lp.Solver) (*Result, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if adj, ok := strat.(InputAdjuster); ok {
		var err error
		if in, err = adj.AdjustInputs(in); err != nil {
			return nil, err
		}
	}

	s := Build(strat.Name(), in)
	obj, err := strat.Objective(s)
	if err != nil {
		return nil, err
	}
	if obj.Len() == 0 {
		return nil, fmt.Errorf("%w: strategy %s", ErrNoObjective, strat.Name())
	}
	s.Objective = obj
	s.Problem.SetObjective(obj)

	if cb, ok := strat.(ConstraintBuilder); ok {
		extra, err := cb.Constraints(s)
		if err != nil {
			return nil, err
		}
		if err := s.Problem.Add(extra...); err != nil {
			return nil, err
		}
	}
	if err := s.Problem.Add(s.constraints...); err != nil {
		return nil, err
	}

	sol, err := solver.Solve(s.Problem)
	res := &Result{Strategy: strat.Name(), MaxMoves: s.Inputs.MaxMoves}
	if sol != nil {
		res.Status = sol.Status
		res.Nodes = sol.Nodes
	}
	if err != nil {
		return res, fmt.Errorf("%w: %v", ErrNotOptimal, err)
	}
	if sol.Status != lp.Optimal {
		return res, fmt.Errorf("%w: status %s", ErrNotOptimal, sol.Status)
	}

	for _, d := range s.DriverNames {
		if sol.Selected(s.Drivers[d]) {
			res.Drivers = append(res.Drivers, d)
		}
	}
	for _, c := range s.ConstructorNames {
		if sol.Selected(s.Constructors[c]) {
			res.Constructors = append(res.Constructors, c)
		}
	}
	sort.Strings(res.Drivers)
	sort.Strings(res.Constructors)
	res.TotalCost = sol.Eval(s.TotalCost)
	res.UnusedBudget = sol.Eval(s.UnusedBudget)
	res.MovesUsed = int(math.Round(sol.Eval(s.Moves)))
	res.Objective = sol.Objective
	if s.Concentration != nil {
		res.Concentration = sol.Eval(*s.Concentration)
	}
	if bs, ok := strat.(BonusSelector); ok {
		res.BonusDriver = bs.BonusDriver(s.Inputs, res.Drivers)
	}
	return res, nil
}
