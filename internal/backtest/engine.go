package backtest

import (
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"f1-fantasy/internal/logger"
	"f1-fantasy/internal/lp"
	"f1-fantasy/internal/model"
	"f1-fantasy/internal/strategy"
)

const (
	// BaseMoves is the number of transfers allowed before a race.
	BaseMoves = 2
	// BonusMoves is allowed after a transition that used fewer than
	// BonusThreshold moves.
	BonusMoves     = 3
	BonusThreshold = 2
)

type Engine struct {
	Solver lp.Solver
	Log    *logrus.Entry
}

func New(solver lp.Solver) *Engine {
	if solver == nil {
		solver = lp.NewBranchAndBound()
	}
	return &Engine{Solver: solver}
}

func (e *Engine) log(runID, strat string, season int) *logrus.Entry {
	if e.Log != nil {
		return e.Log.WithFields(logrus.Fields{
			"run_id":   runID,
			"strategy": strat,
			"season":   season,
		})
	}
	return logger.WithSimulation(runID, strat, season)
}

// Run simulates team from startRace to the end of season, re-selecting the
// roster with strat before every race after the first. The incoming team is
// not modified.
func (e *Engine) Run(season *model.Season, team *model.Team, strat strategy.Strategy, startRace int) (*Result, error) {
	start, ok := season.Race(startRace)
	if !ok {
		return nil, fmt.Errorf("season %d has no race %d", season.Year, startRace)
	}
	startingValue, err := team.TotalValue(start, start)
	if err != nil {
		return nil, fmt.Errorf("starting team value: %w", err)
	}
	current, err := team.Next(team.Drivers(), team.Constructors(), team.UnusedBudget, team.DRSDriver)
	if err != nil {
		return nil, err
	}

	res := &Result{
		RunID:     uuid.NewString(),
		Strategy:  strat.Name(),
		Season:    season.Year,
		StartRace: startRace,
	}
	log := e.log(res.RunID, res.Strategy, season.Year)
	log.WithField("team", current.String()).Debug("simulation started")

	bonus := false
	usedMoves := -1
	for _, n := range season.RaceNumbers() {
		if n < startRace {
			continue
		}
		race, _ := season.Race(n)
		prev, _ := season.Previous(n)

		maxMoves := BaseMoves
		if bonus {
			maxMoves = BonusMoves
		}

		if n > startRace {
			in, err := strategy.BuildInputs(current, race, prev, maxMoves, season.Year)
			if err != nil {
				return nil, fmt.Errorf("race %d inputs: %w", n, err)
			}
			sel, err := strategy.Execute(strat, in, e.Solver)
			if err != nil {
				return nil, fmt.Errorf("race %d: %w", n, err)
			}
			bonus = sel.MovesUsed < BonusThreshold
			usedMoves = sel.MovesUsed
			current, err = current.Next(sel.Drivers, sel.Constructors, sel.UnusedBudget, sel.BonusDriver)
			if err != nil {
				return nil, fmt.Errorf("race %d team: %w", n, err)
			}
			log.WithFields(logrus.Fields{
				"race":       n,
				"moves":      sel.MovesUsed,
				"max_moves":  sel.MaxMoves,
				"team":       current.String(),
				"drs_driver": sel.BonusDriver,
				"nodes":      sel.Nodes,
			}).Debug("roster selected")
		}

		points, err := current.UpdatePoints(race)
		if err != nil {
			return nil, fmt.Errorf("race %d points: %w", n, err)
		}
		row, err := ledgerRow(res.Strategy, season.Year, current, race, prev)
		if err != nil {
			return nil, fmt.Errorf("race %d ledger: %w", n, err)
		}
		row.StartingValue = startingValue
		row.Points = points
		row.MaxMoves = maxMoves
		row.UsedMoves = usedMoves
		res.Ledger = append(res.Ledger, row)
	}

	res.FinalTeam = current
	res.TotalPoints = current.TotalPoints
	log.WithFields(logrus.Fields{
		"races":        len(res.Ledger),
		"total_points": res.TotalPoints,
	}).Info("simulation complete")
	return res, nil
}

func ledgerRow(strat string, season int, team *model.Team, race, prev *model.Race) (LedgerRow, error) {
	value, err := team.TotalValue(race, prev)
	if err != nil {
		return LedgerRow{}, err
	}
	row := LedgerRow{
		Strategy:     strat,
		Season:       season,
		Race:         race.Number,
		Team:         team.String(),
		TotalValue:   value,
		TotalPoints:  team.TotalPoints,
		UnusedBudget: math.Round(team.UnusedBudget*100) / 100,
		TotalBudget:  value + team.UnusedBudget,
		DRSDriver:    team.DRSDriver,
	}
	row.Drivers = assetLines(team.Drivers(), race.Drivers, prev.Drivers)
	row.Constructors = assetLines(team.Constructors(), race.Constructors, prev.Constructors)
	return row, nil
}

func assetLines(names []string, assets, fallback map[string]model.Asset) []AssetLine {
	sort.Strings(names)
	out := make([]AssetLine, 0, len(names))
	for _, n := range names {
		a, ok := assets[n]
		if !ok {
			a = fallback[n]
		}
		out = append(out, AssetLine{Name: n, Price: a.Price, Points: a.Points})
	}
	return out
}
