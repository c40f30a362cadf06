package data

import (
	"fmt"
	"math"
	"sort"
)

const (
	MetricPoints = "Points"
	MetricPrice  = "Price"
	MetricPPM    = "PPM"
	MetricP2PM   = "P2PM"
)

// DefaultWindow is the number of preceding races the rolling metrics cover.
const DefaultWindow = 3

// MetricName is the column name of a rolling metric, e.g. "P2PM Cumulative (3)".
func MetricName(base string, window int) string {
	return fmt.Sprintf("%s Cumulative (%d)", base, window)
}

// DeriveRolling returns a copy of t with rolling metrics over the previous
// window races of each (season, constructor, driver) group. The current race
// is excluded so a race's metrics only use results known before it. Missing
// points or prices count as zero.
//
// PPM is points per unit price and P2PM is points squared per unit price,
// keeping the sign of the points.
func DeriveRolling(t *Table, window int) *Table {
	if window <= 0 {
		window = DefaultWindow
	}
	names := []string{
		MetricName(MetricPoints, window),
		MetricName(MetricPrice, window),
		MetricName(MetricPPM, window),
		MetricName(MetricP2PM, window),
	}

	out := &Table{Kind: t.Kind, Rows: make([]Row, len(t.Rows))}
	out.Derivs = append(append([]string(nil), t.Derivs...), names...)

	type key struct {
		season              int
		constructor, driver string
	}
	groups := make(map[key][]int)
	for i, r := range t.Rows {
		k := key{r.Season, r.Constructor, r.Driver}
		groups[k] = append(groups[k], i)
	}

	for _, idx := range groups {
		sort.SliceStable(idx, func(a, b int) bool { return t.Rows[idx[a]].Race < t.Rows[idx[b]].Race })
		for pos, i := range idx {
			var points, price float64
			for back := pos - window; back < pos; back++ {
				if back < 0 {
					continue
				}
				prev := t.Rows[idx[back]]
				if prev.Points != nil {
					points += float64(*prev.Points)
				}
				if prev.Price != nil {
					price += *prev.Price
				}
			}
			var ppm, p2pm float64
			if price > 0 {
				ppm = points / price
				p2pm = points * math.Abs(points) / price
			}

			row := t.Rows[i]
			derivs := make(map[string]float64, len(row.Derivs)+len(names))
			for k, v := range row.Derivs {
				derivs[k] = v
			}
			derivs[names[0]] = points
			derivs[names[1]] = price
			derivs[names[2]] = ppm
			derivs[names[3]] = p2pm
			row.Derivs = derivs
			out.Rows[i] = row
		}
	}
	return out
}
