package strategy

import (
	"fmt"
	"sort"
)

// CostProhibitive prices owned assets that have left the pool so they can
// never be bought back.
const CostProhibitive = 999999.99

// Inputs is everything one race transition needs to build the scaffold.
type Inputs struct {
	Season int
	Race   int

	TeamDrivers      []string
	TeamConstructors []string

	// Drivers and Constructors are the assets selectable this race.
	Drivers      []string
	Constructors []string
	DriverPairs  map[string]string

	MaxCost  float64
	MaxMoves int

	Prices map[string]float64
	// Derivs maps metric name -> asset name -> value.
	Derivs map[string]map[string]float64
	// Probabilities is filled by strategies that read betting odds.
	Probabilities map[string]float64
}

// RosterSize is the number of assets on the incoming team.
func (in Inputs) RosterSize() int {
	return len(in.TeamDrivers) + len(in.TeamConstructors)
}

// Unavailable returns owned assets that are no longer selectable.
func (in Inputs) Unavailable() []string {
	var out []string
	out = append(out, missing(in.TeamDrivers, in.Drivers)...)
	out = append(out, missing(in.TeamConstructors, in.Constructors)...)
	return out
}

// Validate checks the inputs are complete and consistent.
func (in Inputs) Validate() error {
	lists := []struct {
		what  string
		names []string
	}{
		{"team drivers", in.TeamDrivers},
		{"team constructors", in.TeamConstructors},
		{"available drivers", in.Drivers},
		{"available constructors", in.Constructors},
	}
	for _, l := range lists {
		seen := make(map[string]bool, len(l.names))
		for _, n := range l.names {
			if seen[n] {
				return fmt.Errorf("%w: %s lists %s twice", ErrInvalidInputs, l.what, n)
			}
			seen[n] = true
		}
	}

	if len(in.TeamDrivers) > len(in.Drivers) {
		return fmt.Errorf("%w: team count of %d is greater than %d available drivers", ErrInvalidInputs, len(in.TeamDrivers), len(in.Drivers))
	}
	if len(in.TeamConstructors) > len(in.Constructors) {
		return fmt.Errorf("%w: team count of %d is greater than %d available constructors", ErrInvalidInputs, len(in.TeamConstructors), len(in.Constructors))
	}

	if err := VerifyDataAvailable(in.Drivers, in.Constructors, in.Prices, "price"); err != nil {
		return err
	}

	drivers := toSet(in.Drivers)
	constructors := toSet(in.Constructors)
	for _, d := range sortedKeys(in.DriverPairs) {
		c := in.DriverPairs[d]
		if !drivers[d] {
			return fmt.Errorf("%w: driver from pairing %s/%s is not available in all drivers", ErrInvalidInputs, d, c)
		}
		if !constructors[c] {
			return fmt.Errorf("%w: constructor from pairing %s/%s is not available in all constructors", ErrInvalidInputs, d, c)
		}
	}
	for _, d := range in.Drivers {
		if _, ok := in.DriverPairs[d]; !ok {
			return fmt.Errorf("%w: driver %s is not available in driver/constructor pairs", ErrInvalidInputs, d)
		}
	}

	for _, metric := range sortedKeys(in.Derivs) {
		if err := VerifyDataAvailable(in.Drivers, in.Constructors, in.Derivs[metric], metric); err != nil {
			return err
		}
	}
	return nil
}

// VerifyDataAvailable checks that data covers exactly the selectable assets.
func VerifyDataAvailable(drivers, constructors []string, data map[string]float64, dataType string) error {
	for _, d := range drivers {
		if _, ok := data[d]; !ok {
			return fmt.Errorf("%w: driver %s does not have a %s", ErrInvalidInputs, d, dataType)
		}
	}
	for _, c := range constructors {
		if _, ok := data[c]; !ok {
			return fmt.Errorf("%w: constructor %s does not have a %s", ErrInvalidInputs, c, dataType)
		}
	}
	dset, cset := toSet(drivers), toSet(constructors)
	for _, name := range sortedKeys(data) {
		if !dset[name] && !cset[name] {
			return fmt.Errorf("%w: asset %s has a %s but is not in available drivers or constructors", ErrInvalidInputs, name, dataType)
		}
	}
	return nil
}

// withProhibitivePrices copies the inputs, pricing unavailable owned assets
// out of reach.
func (in Inputs) withProhibitivePrices() Inputs {
	prices := make(map[string]float64, len(in.Prices)+2)
	for k, v := range in.Prices {
		prices[k] = v
	}
	for _, name := range in.Unavailable() {
		prices[name] = CostProhibitive
	}
	in.Prices = prices
	return in
}

func missing(owned, available []string) []string {
	set := toSet(available)
	var out []string
	for _, n := range owned {
		if !set[n] {
			out = append(out, n)
		}
	}
	return out
}

func toSet(names []string) map[string]bool {
	out := make(map[string]bool, len(names))
	for _, n := range names {
		out[n] = true
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func union(a, b []string) []string {
	set := toSet(a)
	for _, n := range b {
		set[n] = true
	}
	return sortedKeys(set)
}
