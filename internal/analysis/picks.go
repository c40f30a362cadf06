package analysis

import (
	"math"

	"f1-fantasy/internal/model"
)

// Pick is one candidate starting roster.
type Pick struct {
	Drivers      []string
	Constructors []string

	DriverValue      float64
	ConstructorValue float64
	TotalValue       float64
}

// Team builds the starting team for p, holding whatever of budget the
// roster does not cost as unused budget.
func (p Pick) Team(race *model.Race, budget float64) (*model.Team, error) {
	return model.NewTeamFromLists(p.Drivers, p.Constructors, race, budget)
}

// Combinations returns every k-subset of [0, n) in lexicographic order.
func Combinations(n, k int) [][]int {
	if k < 0 || k > n {
		return nil
	}
	var out [][]int
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	for {
		subset := make([]int, k)
		copy(subset, idx)
		out = append(out, subset)
		i := k - 1
		for i >= 0 && idx[i] == n-k+i {
			i--
		}
		if i < 0 {
			return out
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}

// StartingPicks enumerates every roster of numDrivers drivers and
// numConstructors constructors in race whose total value is in
// (minValue, maxValue]. Picks follow name order, drivers varying slowest.
func StartingPicks(race *model.Race, numDrivers, numConstructors int, minValue, maxValue float64) []Pick {
	drivers := race.Names(model.KindDriver)
	constructors := race.Names(model.KindConstructor)
	dCombos := Combinations(len(drivers), numDrivers)
	cCombos := Combinations(len(constructors), numConstructors)

	cValues := make([]float64, len(cCombos))
	for i, cc := range cCombos {
		for _, j := range cc {
			cValues[i] += race.Constructors[constructors[j]].Price
		}
	}

	var out []Pick
	for _, dc := range dCombos {
		dValue := 0.0
		for _, j := range dc {
			dValue += race.Drivers[drivers[j]].Price
		}
		for i, cc := range cCombos {
			total := dValue + cValues[i]
			if total <= minValue || total > maxValue {
				continue
			}
			out = append(out, Pick{
				Drivers:          pickNames(drivers, dc),
				Constructors:     pickNames(constructors, cc),
				DriverValue:      dValue,
				ConstructorValue: cValues[i],
				TotalValue:       total,
			})
		}
	}
	return out
}

func pickNames(names []string, idx []int) []string {
	out := make([]string, len(idx))
	for i, j := range idx {
		out[i] = names[j]
	}
	return out
}

// DriverRatio is driver value over constructor value; +Inf when the
// constructors are free.
func (p Pick) DriverRatio() float64 {
	if p.ConstructorValue == 0 {
		return math.Inf(1)
	}
	return p.DriverValue / p.ConstructorValue
}

// LowestDriverRatio returns the pick that spends the least on drivers
// relative to constructors. Ties keep the earlier pick.
func LowestDriverRatio(picks []Pick) (Pick, bool) {
	best, found := Pick{}, false
	for _, p := range picks {
		if !found || p.DriverRatio() < best.DriverRatio() {
			best, found = p, true
		}
	}
	return best, found
}
