package data

import (
	"github.com/pkg/errors"

	"f1-fantasy/internal/model"
)

var (
	ErrDuplicateRow = errors.New("duplicate row")
	ErrMissingRow   = errors.New("missing row")
)

// Pairings maps driver -> constructor for the priced driver rows of one race.
func Pairings(drivers *Table, season, race int) map[string]string {
	out := make(map[string]string)
	for _, r := range drivers.Rows {
		if r.Season == season && r.Race == race && r.Price != nil {
			out[r.Driver] = r.Constructor
		}
	}
	return out
}

// BuildRace builds one race from the driver and constructor tables. Only
// rows with a price are selectable. A second priced row for the same asset
// is an error, as is a race with no priced rows of either kind.
func BuildRace(drivers, constructors *Table, season, race int) (*model.Race, error) {
	pairs := Pairings(drivers, season, race)
	ds, err := raceAssets(drivers, season, race, pairs)
	if err != nil {
		return nil, err
	}
	cs, err := raceAssets(constructors, season, race, nil)
	if err != nil {
		return nil, err
	}
	if len(ds) == 0 || len(cs) == 0 {
		return nil, errors.Wrapf(ErrMissingRow, "season %d race %d has %d drivers and %d constructors", season, race, len(ds), len(cs))
	}
	r, err := model.NewRace(race, ds, cs)
	if err != nil {
		return nil, errors.Wrapf(err, "season %d", season)
	}
	return r, nil
}

func raceAssets(t *Table, season, race int, pairs map[string]string) (map[string]model.Asset, error) {
	out := make(map[string]model.Asset)
	for _, r := range t.Rows {
		if r.Season != season || r.Race != race || r.Price == nil {
			continue
		}
		name := r.Name()
		if _, dup := out[name]; dup {
			return nil, errors.Wrapf(ErrDuplicateRow, "%s %s in season %d race %d", t.Kind, name, season, race)
		}
		a := model.Asset{
			Name:        name,
			Constructor: r.Constructor,
			Price:       *r.Price,
		}
		if pairs != nil {
			a.Constructor = pairs[name]
		}
		if r.Points != nil {
			a.Points = *r.Points
			a.Scored = true
		}
		if len(r.Derivs) > 0 {
			a.Derivs = make(map[string]float64, len(r.Derivs))
			for k, v := range r.Derivs {
				a.Derivs[k] = v
			}
		}
		out[name] = a
	}
	return out, nil
}

// BuildSeason builds every race of season found in the driver table.
func BuildSeason(drivers, constructors *Table, season int) (*model.Season, error) {
	nums := drivers.Races(season)
	if len(nums) == 0 {
		return nil, errors.Wrapf(ErrMissingRow, "no rows for season %d", season)
	}
	races := make([]*model.Race, 0, len(nums))
	for _, n := range nums {
		r, err := BuildRace(drivers, constructors, season, n)
		if err != nil {
			return nil, err
		}
		races = append(races, r)
	}
	return model.NewSeason(season, races)
}
