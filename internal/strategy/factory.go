package strategy

import (
	"fmt"

	"f1-fantasy/internal/model"
)

// BuildInputs assembles the inputs for choosing team's roster for race.
// The budget is the team's value in race, with prev pricing drivers that
// have left the grid, plus its unused budget.
func BuildInputs(team *model.Team, race, prev *model.Race, maxMoves, season int) (Inputs, error) {
	maxCost, err := team.TotalBudget(race, prev)
	if err != nil {
		return Inputs{}, fmt.Errorf("race %d budget: %w", race.Number, err)
	}
	return Inputs{
		Season:           season,
		Race:             race.Number,
		TeamDrivers:      team.Drivers(),
		TeamConstructors: team.Constructors(),
		Drivers:          race.Names(model.KindDriver),
		Constructors:     race.Names(model.KindConstructor),
		DriverPairs:      race.DriverPairs(),
		MaxCost:          maxCost,
		MaxMoves:         maxMoves,
		Prices:           race.Prices(),
		Derivs:           race.Derivs(),
	}, nil
}
