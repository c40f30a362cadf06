package strategy

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"f1-fantasy/internal/lp"
)

// OddsSource returns raw fractional odds by asset name for one race.
type OddsSource interface {
	Odds(season, race int) (map[string]string, error)
}

// StaticOdds serves the same odds for every race.
type StaticOdds map[string]string

func (s StaticOdds) Odds(int, int) (map[string]string, error) {
	return s, nil
}

// OddsToPct converts "A/B", "A:B" or "A-B" odds to the implied probability B/A.
func OddsToPct(odds string) (float64, error) {
	norm := strings.NewReplacer(":", "/", "-", "/").Replace(odds)
	if strings.Count(norm, "/") != 1 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidOdds, odds)
	}
	parts := strings.Split(norm, "/")
	left, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidOdds, odds)
	}
	right, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidOdds, odds)
	}
	if right > left {
		return 0, fmt.Errorf("%w: %q has the favourite longer than the underdog", ErrInvalidOdds, odds)
	}
	if left == 0 || right == 0 {
		return 0, fmt.Errorf("%w: %q has a zero side", ErrInvalidOdds, odds)
	}
	return float64(right) / float64(left), nil
}

// BettingOdds maximizes the market implied win probability of the roster
// while capping how much of it comes from one constructor.
type BettingOdds struct {
	Source           OddsSource
	MaxConcentration int
}

func (b *BettingOdds) Name() string { return "BettingOdds" }
func (b *BettingOdds) Kind() Kind   { return KindBettingOdds }

// AdjustInputs loads and parses the race's odds. Blank odds count as zero.
func (b *BettingOdds) AdjustInputs(in Inputs) (Inputs, error) {
	raw, err := b.Source.Odds(in.Season, in.Race)
	if err != nil {
		return in, fmt.Errorf("load odds for season %d race %d: %w", in.Season, in.Race, err)
	}
	probs := make(map[string]float64, len(raw))
	for _, name := range sortedKeys(raw) {
		if strings.TrimSpace(raw[name]) == "" {
			probs[name] = 0
			continue
		}
		p, err := OddsToPct(raw[name])
		if err != nil {
			return in, fmt.Errorf("odds for %s: %w", name, err)
		}
		probs[name] = p
	}
	in.Probabilities = probs
	return in, nil
}

func (b *BettingOdds) Objective(s *Scaffold) (lp.Expr, error) {
	probs := s.Inputs.Probabilities
	return s.WeightedSelection(func(name string) float64 {
		return probs[name]
	}), nil
}

// Constraints adds one AND-linked auxiliary binary per driver pair sharing a
// constructor and per driver/own-constructor pair, and caps their sum.
func (b *BettingOdds) Constraints(s *Scaffold) ([]lp.Constraint, error) {
	conc, cs := Concentration(s)
	s.Concentration = &conc
	return append(cs, conc.Le(float64(b.MaxConcentration)).Named("concentration")), nil
}

// Concentration builds the concentration expression and the linking
// constraints of its auxiliary variables. A selected teammate pair counts
// whether or not their constructor is selected.
func Concentration(s *Scaffold) (lp.Expr, []lp.Constraint) {
	byConstructor := make(map[string][]string)
	for _, d := range s.Inputs.Drivers {
		c := s.Inputs.DriverPairs[d]
		byConstructor[c] = append(byConstructor[c], d)
	}

	var conc lp.Expr
	var cs []lp.Constraint
	and := func(label string, a, b lp.Var) {
		aux := s.Problem.NewBinary("conc_" + label)
		x := lp.Term(aux, 1)
		cs = append(cs,
			x.LeExpr(lp.Term(a, 1)),
			x.LeExpr(lp.Term(b, 1)),
			x.GeExpr(lp.Sum(lp.Term(a, 1), lp.Term(b, 1), lp.Const(-1))),
		)
		conc = conc.Add(x)
	}

	for _, c := range sortedKeys(byConstructor) {
		drivers := byConstructor[c]
		sort.Strings(drivers)
		for i := 0; i < len(drivers); i++ {
			for j := i + 1; j < len(drivers); j++ {
				and(drivers[i]+"_"+drivers[j], s.Drivers[drivers[i]], s.Drivers[drivers[j]])
			}
		}
		cv, ok := s.Constructors[c]
		if !ok {
			continue
		}
		for _, d := range drivers {
			and(d+"_"+c, s.Drivers[d], cv)
		}
	}
	return conc, cs
}

// BonusDriver picks the selected driver with the best odds.
func (b *BettingOdds) BonusDriver(in Inputs, selected []string) string {
	return bestUnique(selected, func(name string) float64 {
		return in.Probabilities[name]
	})
}
