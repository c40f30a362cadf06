package backtest

import (
	"fmt"

	"f1-fantasy/internal/model"
)

// AssetLine is one rostered asset in a ledger row.
type AssetLine struct {
	Name   string
	Price  float64
	Points int
}

// LedgerRow records the team after one race.
type LedgerRow struct {
	Strategy string
	Season   int
	Race     int

	Team         string
	Drivers      []AssetLine
	Constructors []AssetLine

	TotalValue    float64
	StartingValue float64

	Points      int
	TotalPoints int

	UnusedBudget float64
	TotalBudget  float64

	MaxMoves int
	// UsedMoves is -1 for the starting race.
	UsedMoves int
	DRSDriver string
}

type Result struct {
	RunID     string
	Strategy  string
	Season    int
	StartRace int
	Ledger    []LedgerRow

	TotalPoints int
	FinalTeam   *model.Team
}

// Final returns the last ledger row.
func (r *Result) Final() (LedgerRow, bool) {
	if r == nil || len(r.Ledger) == 0 {
		return LedgerRow{}, false
	}
	return r.Ledger[len(r.Ledger)-1], true
}

// SimKey identifies a simulation of strategy from a starting team, e.g.
// "(MaxBudget)(2024)(LEC,VER)(RED)".
func SimKey(strategy string, season int, team *model.Team) string {
	return fmt.Sprintf("(%s)(%d)%s", strategy, season, team)
}
