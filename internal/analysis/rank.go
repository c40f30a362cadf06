package analysis

import (
	"sort"

	"f1-fantasy/internal/store"
)

type Ranked struct {
	Rank int `json:"rank"`
	store.Record
}

// Rank sorts records descending by total points, breaking ties by sim key,
// and numbers them from 1. Equal points share a rank.
func Rank(records []store.Record) []Ranked {
	out := make([]Ranked, 0, len(records))
	for _, r := range records {
		out = append(out, Ranked{Record: r})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TotalPoints != out[j].TotalPoints {
			return out[i].TotalPoints > out[j].TotalPoints
		}
		return out[i].SimKey < out[j].SimKey
	})
	for i := range out {
		if i > 0 && out[i].TotalPoints == out[i-1].TotalPoints {
			out[i].Rank = out[i-1].Rank
			continue
		}
		out[i].Rank = i + 1
	}
	return out
}
