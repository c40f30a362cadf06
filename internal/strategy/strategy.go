package strategy

import (
	"errors"
	"fmt"
	"strings"

	"f1-fantasy/internal/lp"
)

// Kind selects a strategy.
type Kind string

const (
	KindMaxBudget   Kind = "max_budget"
	KindZeroStop    Kind = "zero_stop"
	KindMaxP2PM     Kind = "max_p2pm"
	KindBettingOdds Kind = "betting_odds"
)

// Kinds lists every supported strategy.
func Kinds() []Kind {
	return []Kind{KindMaxBudget, KindZeroStop, KindMaxP2PM, KindBettingOdds}
}

func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds() {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown strategy %q", s)
}

var (
	ErrInvalidInputs = errors.New("invalid strategy inputs")
	ErrNoObjective   = errors.New("objective function not set")
	ErrNotOptimal    = errors.New("solver did not find an optimal selection")
	ErrInvalidOdds   = errors.New("invalid odds")
)

// Strategy supplies the objective over a built scaffold.
type Strategy interface {
	Name() string
	Kind() Kind
	Objective(s *Scaffold) (lp.Expr, error)
}

// InputAdjuster rewrites the inputs before the scaffold is built.
type InputAdjuster interface {
	AdjustInputs(in Inputs) (Inputs, error)
}

// ConstraintBuilder adds strategy specific constraints to the scaffold's problem.
type ConstraintBuilder interface {
	Constraints(s *Scaffold) ([]lp.Constraint, error)
}

// BonusSelector picks the DRS driver among the selected drivers.
// An empty result leaves the choice to Team.UpdatePoints.
type BonusSelector interface {
	BonusDriver(in Inputs, selected []string) string
}

const (
	DefaultP2PMMetric       = "P2PM Cumulative (3)"
	DefaultPointsMetric     = "Points Cumulative (3)"
	DefaultUnlockRace       = 4
	DefaultMaxConcentration = 2
)

// Params holds the tunables of every strategy; each strategy reads its own.
type Params struct {
	P2PMMetric       string `yaml:"p2pm_metric" json:"p2pm_metric"`
	PointsMetric     string `yaml:"points_metric" json:"points_metric"`
	UnlockRace       int    `yaml:"unlock_race" json:"unlock_race"`
	MaxConcentration int    `yaml:"max_concentration" json:"max_concentration"`
}

func DefaultParams() Params {
	return Params{
		P2PMMetric:       DefaultP2PMMetric,
		PointsMetric:     DefaultPointsMetric,
		UnlockRace:       DefaultUnlockRace,
		MaxConcentration: DefaultMaxConcentration,
	}
}

// WithDefaults fills zero fields from DefaultParams.
func (p Params) WithDefaults() Params {
	d := DefaultParams()
	if p.P2PMMetric == "" {
		p.P2PMMetric = d.P2PMMetric
	}
	if p.PointsMetric == "" {
		p.PointsMetric = d.PointsMetric
	}
	if p.UnlockRace == 0 {
		p.UnlockRace = d.UnlockRace
	}
	if p.MaxConcentration == 0 {
		p.MaxConcentration = d.MaxConcentration
	}
	return p
}

// New builds a strategy by kind. odds is only used by KindBettingOdds.
func New(kind Kind, p Params, odds OddsSource) (Strategy, error) {
	p = p.WithDefaults()
	switch kind {
	case KindMaxBudget:
		return MaxBudget{}, nil
	case KindZeroStop:
		return ZeroStop{}, nil
	case KindMaxP2PM:
		return &MaxP2PM{Metric: p.P2PMMetric, PointsMetric: p.PointsMetric, UnlockRace: p.UnlockRace}, nil
	case KindBettingOdds:
		if odds == nil {
			return nil, fmt.Errorf("strategy %s needs an odds source", kind)
		}
		if p.MaxConcentration < 0 {
			return nil, fmt.Errorf("max_concentration must be >= 0")
		}
		return &BettingOdds{Source: odds, MaxConcentration: p.MaxConcentration}, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", kind)
	}
}

// bestUnique returns the key with the strictly highest positive score, or ""
// when the top score is shared or nothing scores above zero.
func bestUnique(names []string, score func(string) float64) string {
	best, bestScore, tied := "", 0.0, false
	for _, n := range names {
		s := score(n)
		switch {
		case s > bestScore:
			best, bestScore, tied = n, s, false
		case s == bestScore && s > 0:
			tied = true
		}
	}
	if tied {
		return ""
	}
	return best
}
