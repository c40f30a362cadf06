package analysis

import (
	"math"
	"sort"

	"f1-fantasy/internal/store"
)

// StrategyPotential summarizes how one strategy scored across many
// starting teams.
type StrategyPotential struct {
	Strategy string `json:"strategy"`
	Season   int    `json:"season"`
	Runs     int    `json:"runs"`

	MinPoints  float64 `json:"min_points"`
	MaxPoints  float64 `json:"max_points"`
	MeanPoints float64 `json:"mean_points"`
	P05Points  float64 `json:"p05_points"`
	P95Points  float64 `json:"p95_points"`

	SpreadP95P05 float64 `json:"spread_p95_p05"`

	BestTeam string `json:"best_team"`
}

func ComputePotential(records []store.Record) StrategyPotential {
	p := StrategyPotential{}
	if len(records) == 0 {
		return p
	}
	p.Strategy = records[0].Strategy
	p.Season = records[0].Season
	p.Runs = len(records)

	sum := 0.0
	minv := math.Inf(1)
	maxv := math.Inf(-1)
	vals := make([]float64, 0, len(records))
	for _, r := range records {
		v := float64(r.TotalPoints)
		vals = append(vals, v)
		sum += v
		if v < minv {
			minv = v
		}
		if v > maxv {
			maxv = v
			p.BestTeam = r.Team
		}
	}
	sort.Float64s(vals)
	p.MinPoints = minv
	p.MaxPoints = maxv
	p.MeanPoints = sum / float64(len(vals))
	p.P05Points = percentileSorted(vals, 0.05)
	p.P95Points = percentileSorted(vals, 0.95)
	p.SpreadP95P05 = p.P95Points - p.P05Points
	return p
}

// PotentialByStrategy groups records by (strategy, season) and orders the
// summaries by mean points, best first.
func PotentialByStrategy(records []store.Record) []StrategyPotential {
	type key struct {
		strategy string
		season   int
	}
	groups := make(map[key][]store.Record)
	var order []key
	for _, r := range records {
		k := key{r.Strategy, r.Season}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], r)
	}
	out := make([]StrategyPotential, 0, len(order))
	for _, k := range order {
		out = append(out, ComputePotential(groups[k]))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MeanPoints > out[j].MeanPoints
	})
	return out
}

// percentileSorted interpolates linearly between closest ranks.
func percentileSorted(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
