package model

import (
	"errors"
	"fmt"
	"sort"
)

// AssetKind distinguishes the two kinds of roster slots.
type AssetKind string

const (
	KindDriver      AssetKind = "Driver"
	KindConstructor AssetKind = "Constructor"
)

// AssetKinds lists the kinds in roster order (drivers first).
var AssetKinds = []AssetKind{KindDriver, KindConstructor}

var (
	ErrUnknownConstructor = errors.New("unknown constructor")
	ErrUnknownAsset       = errors.New("unknown asset")
)

// Asset is a selectable driver or constructor for one race.
//
// Price is the cost to acquire the asset going into the next race, so budgeting
// for a race looks forward. Points is zero and Scored is false when the source
// data had no result for the asset.
type Asset struct {
	Name        string
	Constructor string
	Price       float64
	Points      int
	Scored      bool
	Derivs      map[string]float64
}

// Deriv returns a derived metric value and whether it was present.
func (a Asset) Deriv(name string) (float64, bool) {
	v, ok := a.Derivs[name]
	return v, ok
}

// Race holds every asset available for one race of a season.
type Race struct {
	Number       int
	Drivers      map[string]Asset
	Constructors map[string]Asset
}

// NewRace builds a race, checking that every driver's constructor exists.
func NewRace(number int, drivers, constructors map[string]Asset) (*Race, error) {
	r := &Race{
		Number:       number,
		Drivers:      make(map[string]Asset, len(drivers)),
		Constructors: make(map[string]Asset, len(constructors)),
	}
	for name, c := range constructors {
		r.Constructors[name] = c
	}
	for name, d := range drivers {
		if _, ok := r.Constructors[d.Constructor]; !ok {
			return nil, fmt.Errorf("%w: race %d driver %s has constructor %s", ErrUnknownConstructor, number, name, d.Constructor)
		}
		r.Drivers[name] = d
	}
	return r, nil
}

// Assets returns the asset map for a kind.
func (r *Race) Assets(kind AssetKind) map[string]Asset {
	if kind == KindConstructor {
		return r.Constructors
	}
	return r.Drivers
}

// Lookup finds an asset of the given kind.
func (r *Race) Lookup(kind AssetKind, name string) (Asset, bool) {
	a, ok := r.Assets(kind)[name]
	return a, ok
}

// Names returns the sorted asset names of a kind.
func (r *Race) Names(kind AssetKind) []string {
	assets := r.Assets(kind)
	out := make([]string, 0, len(assets))
	for name := range assets {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// DriverPairs maps each driver to its constructor.
func (r *Race) DriverPairs() map[string]string {
	out := make(map[string]string, len(r.Drivers))
	for name, d := range r.Drivers {
		out[name] = d.Constructor
	}
	return out
}

// Prices returns a merged name -> price map of drivers and constructors.
func (r *Race) Prices() map[string]float64 {
	out := make(map[string]float64, len(r.Drivers)+len(r.Constructors))
	for _, kind := range AssetKinds {
		for name, a := range r.Assets(kind) {
			out[name] = a.Price
		}
	}
	return out
}

// Derivs returns metric -> asset -> value for every metric present on any
// asset. Assets without a value for a metric get 0.
func (r *Race) Derivs() map[string]map[string]float64 {
	out := make(map[string]map[string]float64)
	for _, kind := range AssetKinds {
		for _, a := range r.Assets(kind) {
			for metric := range a.Derivs {
				if _, ok := out[metric]; !ok {
					out[metric] = make(map[string]float64, len(r.Drivers)+len(r.Constructors))
				}
			}
		}
	}
	for metric, m := range out {
		for _, kind := range AssetKinds {
			for name, a := range r.Assets(kind) {
				m[name] = a.Derivs[metric]
			}
		}
	}
	return out
}

// Season is an immutable set of races for one year.
type Season struct {
	Year  int
	races map[int]*Race
}

func NewSeason(year int, races []*Race) (*Season, error) {
	s := &Season{Year: year, races: make(map[int]*Race, len(races))}
	for _, r := range races {
		if _, dup := s.races[r.Number]; dup {
			return nil, fmt.Errorf("season %d: duplicate race %d", year, r.Number)
		}
		s.races[r.Number] = r
	}
	return s, nil
}

// Race returns a race by number.
func (s *Season) Race(number int) (*Race, bool) {
	r, ok := s.races[number]
	return r, ok
}

// RaceNumbers returns the race numbers in ascending order.
func (s *Season) RaceNumbers() []int {
	out := make([]int, 0, len(s.races))
	for n := range s.races {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// Previous returns the race before number, or the race itself when it is the first.
func (s *Season) Previous(number int) (*Race, bool) {
	nums := s.RaceNumbers()
	for i, n := range nums {
		if n != number {
			continue
		}
		if i == 0 {
			return s.races[n], true
		}
		return s.races[nums[i-1]], true
	}
	return nil, false
}
