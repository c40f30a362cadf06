package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrDuplicateAsset  = errors.New("asset already present")
	ErrRosterFull      = errors.New("roster limit already reached")
	ErrAssetNotPresent = errors.New("asset is not present")
	ErrRosterSize      = errors.New("incorrect number of assets")
)

// Team is a fantasy roster plus the budget and scoring state carried between races.
type Team struct {
	sizes  map[AssetKind]int
	assets map[AssetKind][]string

	// UnusedBudget is money held but not spent on the roster.
	UnusedBudget float64
	// TotalPoints accumulates UpdatePoints results.
	TotalPoints int
	// DRSDriver is the driver whose points are doubled; empty means none chosen.
	DRSDriver string
}

func NewTeam(numDrivers, numConstructors int, unusedBudget float64) *Team {
	return &Team{
		sizes: map[AssetKind]int{
			KindDriver:      numDrivers,
			KindConstructor: numConstructors,
		},
		assets: map[AssetKind][]string{
			KindDriver:      {},
			KindConstructor: {},
		},
		UnusedBudget: unusedBudget,
	}
}

// NewTeamFromLists builds a full team and sets the unused budget to whatever
// of totalBudget the roster does not cost in race.
func NewTeamFromLists(drivers, constructors []string, race *Race, totalBudget float64) (*Team, error) {
	t := NewTeam(len(drivers), len(constructors), 0)
	if err := t.fill(drivers, constructors); err != nil {
		return nil, err
	}
	value, err := t.TotalValue(race, race)
	if err != nil {
		return nil, err
	}
	t.UnusedBudget = totalBudget - value
	return t, nil
}

func (t *Team) fill(drivers, constructors []string) error {
	for _, d := range drivers {
		if err := t.Add(KindDriver, d); err != nil {
			return err
		}
	}
	for _, c := range constructors {
		if err := t.Add(KindConstructor, c); err != nil {
			return err
		}
	}
	return nil
}

// Next returns the team for the following race: same roster sizes, the new
// selection, the given budget and DRS driver, and the points accumulated so far.
func (t *Team) Next(drivers, constructors []string, unusedBudget float64, drsDriver string) (*Team, error) {
	next := NewTeam(t.sizes[KindDriver], t.sizes[KindConstructor], unusedBudget)
	next.TotalPoints = t.TotalPoints
	next.DRSDriver = drsDriver
	if err := next.fill(drivers, constructors); err != nil {
		return nil, err
	}
	if err := next.CheckRosterSizes(); err != nil {
		return nil, err
	}
	return next, nil
}

// Size returns the configured roster size of a kind.
func (t *Team) Size(kind AssetKind) int { return t.sizes[kind] }

// RosterSize is the total number of roster slots.
func (t *Team) RosterSize() int { return t.sizes[KindDriver] + t.sizes[KindConstructor] }

// Assets returns a copy of the roster of a kind in insertion order.
func (t *Team) Assets(kind AssetKind) []string {
	return append([]string(nil), t.assets[kind]...)
}

func (t *Team) Drivers() []string      { return t.Assets(KindDriver) }
func (t *Team) Constructors() []string { return t.Assets(KindConstructor) }

// Has reports whether name is on the roster of kind.
func (t *Team) Has(kind AssetKind, name string) bool {
	for _, a := range t.assets[kind] {
		if a == name {
			return true
		}
	}
	return false
}

func (t *Team) Add(kind AssetKind, name string) error {
	if t.Has(kind, name) {
		return fmt.Errorf("%w: %s %s", ErrDuplicateAsset, kind, name)
	}
	if len(t.assets[kind]) >= t.sizes[kind] {
		return fmt.Errorf("%w: %s %s (limit %d)", ErrRosterFull, kind, name, t.sizes[kind])
	}
	t.assets[kind] = append(t.assets[kind], name)
	return nil
}

func (t *Team) Remove(kind AssetKind, name string) error {
	for i, a := range t.assets[kind] {
		if a == name {
			t.assets[kind] = append(t.assets[kind][:i:i], t.assets[kind][i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s %s", ErrAssetNotPresent, kind, name)
}

func (t *Team) RemoveAll() {
	for _, kind := range AssetKinds {
		t.assets[kind] = []string{}
	}
}

// CheckRosterSizes fails unless every roster is exactly full.
func (t *Team) CheckRosterSizes() error {
	for _, kind := range AssetKinds {
		if got := len(t.assets[kind]); got != t.sizes[kind] {
			return fmt.Errorf("%w: %d %s assets, want %d", ErrRosterSize, got, kind, t.sizes[kind])
		}
	}
	return nil
}

// TotalValue prices the roster in race. A driver missing from race is priced
// from prev instead, which covers drivers dropped from the grid.
func (t *Team) TotalValue(race, prev *Race) (float64, error) {
	if err := t.CheckRosterSizes(); err != nil {
		return 0, err
	}
	var total float64
	for _, name := range t.assets[KindDriver] {
		if d, ok := race.Drivers[name]; ok {
			total += d.Price
			continue
		}
		d, ok := prev.Drivers[name]
		if !ok {
			return 0, fmt.Errorf("%w: driver %s not in race %d or %d", ErrUnknownAsset, name, race.Number, prev.Number)
		}
		total += d.Price
	}
	for _, name := range t.assets[KindConstructor] {
		c, ok := race.Constructors[name]
		if !ok {
			return 0, fmt.Errorf("%w: constructor %s not in race %d", ErrUnknownAsset, name, race.Number)
		}
		total += c.Price
	}
	return total, nil
}

// TotalBudget is the roster value plus unused budget.
func (t *Team) TotalBudget(race, prev *Race) (float64, error) {
	v, err := t.TotalValue(race, prev)
	if err != nil {
		return 0, err
	}
	return v + t.UnusedBudget, nil
}

// UpdatePoints scores the roster for race, adds the result to TotalPoints and
// returns it. Calling it twice for the same race counts the race twice.
func (t *Team) UpdatePoints(race *Race) (int, error) {
	if err := t.CheckRosterSizes(); err != nil {
		return 0, err
	}
	points := 0
	for _, kind := range AssetKinds {
		for _, name := range t.assets[kind] {
			a, ok := race.Lookup(kind, name)
			if !ok {
				return 0, fmt.Errorf("%w: %s %s not in race %d", ErrUnknownAsset, kind, name, race.Number)
			}
			points += a.Points
		}
	}
	points += t.drsPoints(race)
	t.TotalPoints += points
	return points, nil
}

// drsPoints doubles the designated driver, falling back to the most expensive
// driver on the roster. Ties keep the first driver seen.
func (t *Team) drsPoints(race *Race) int {
	if t.DRSDriver != "" && t.Has(KindDriver, t.DRSDriver) {
		if d, ok := race.Drivers[t.DRSDriver]; ok {
			return d.Points
		}
	}
	maxPrice := 0.0
	points := 0
	for _, name := range t.assets[KindDriver] {
		d := race.Drivers[name]
		if d.Price > maxPrice {
			maxPrice = d.Price
			points = d.Points
		}
	}
	return points
}

// String renders the roster as "(D1,D2,...)(C1,C2)" with names sorted.
func (t *Team) String() string {
	var b strings.Builder
	for _, kind := range AssetKinds {
		names := t.Assets(kind)
		sort.Strings(names)
		b.WriteString("(")
		b.WriteString(strings.Join(names, ","))
		b.WriteString(")")
	}
	return b.String()
}
