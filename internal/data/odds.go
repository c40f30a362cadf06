package data

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

type raceKey struct {
	season, race int
}

// OddsTable holds raw odds strings by race and asset name.
type OddsTable struct {
	odds map[raceKey]map[string]string
}

func NewOddsTable() *OddsTable {
	return &OddsTable{odds: make(map[raceKey]map[string]string)}
}

// Set records the odds of one asset for one race.
func (o *OddsTable) Set(season, race int, asset, odds string) {
	k := raceKey{season, race}
	m, ok := o.odds[k]
	if !ok {
		m = make(map[string]string)
		o.odds[k] = m
	}
	m[asset] = odds
}

// Odds returns a copy of the odds for one race; a race without odds
// returns an empty map.
func (o *OddsTable) Odds(season, race int) (map[string]string, error) {
	out := make(map[string]string)
	if o == nil {
		return out, nil
	}
	for k, v := range o.odds[raceKey{season, race}] {
		out[k] = v
	}
	return out, nil
}

// LoadOddsCSV reads odds with columns Season, Race, Type, Asset, Odds.
func LoadOddsCSV(path string) (*OddsTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open odds")
	}
	defer f.Close()
	t, err := ReadOddsCSV(f)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return t, nil
}

func ReadOddsCSV(r io.Reader) (*OddsTable, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return nil, errors.Wrap(err, "read header")
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, name := range []string{"season", "race", "asset", "odds"} {
		if _, ok := col[name]; !ok {
			return nil, errors.Errorf("odds table is missing column %q", name)
		}
	}

	t := NewOddsTable()
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		season, err := strconv.Atoi(strings.TrimSpace(rec[col["season"]]))
		if err != nil {
			return nil, errors.Wrapf(err, "line %d season", line)
		}
		race, err := strconv.Atoi(strings.TrimSpace(rec[col["race"]]))
		if err != nil {
			return nil, errors.Wrapf(err, "line %d race", line)
		}
		t.Set(season, race, strings.TrimSpace(rec[col["asset"]]), strings.TrimSpace(rec[col["odds"]]))
	}
	return t, nil
}
