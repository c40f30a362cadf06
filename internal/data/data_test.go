package data

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"f1-fantasy/internal/lp"
	"f1-fantasy/internal/model"
	"f1-fantasy/internal/strategy"
)

const driversCSV = `Season,Race,Constructor,Driver,Points,Price
2024,1,RED,VER,25,30.0
2024,1,RED,TSU,4,10.0
2024,1,FER,LEC,18,20.0
2024,2,RED,VER,18,30.5
2024,2,RED,TSU,,10.0
2024,2,FER,LEC,25,20.2
2024,3,RED,VER,25,30.6
2024,3,FER,LEC,12,20.4
2024,3,RED,TSU,2,
2024,4,RED,VER,10,30.2
2024,4,FER,LEC,8,20.1
`

const constructorsCSV = `Season,Race,Constructor,Points,Price
2024,1,RED,29,25.0
2024,1,FER,18,22.0
2024,2,RED,18,25.5
2024,2,FER,25,22.1
2024,3,RED,25,25.2
2024,3,FER,12,22.3
2024,4,RED,10,25.0
2024,4,FER,8,22.0
`

func readTables(t *testing.T) (*Table, *Table) {
	t.Helper()
	d, err := ReadTableCSV(strings.NewReader(driversCSV), model.KindDriver)
	require.NoError(t, err)
	c, err := ReadTableCSV(strings.NewReader(constructorsCSV), model.KindConstructor)
	require.NoError(t, err)
	return d, c
}

func TestReadTableCSV(t *testing.T) {
	d, _ := readTables(t)
	require.Len(t, d.Rows, 11)
	assert.Equal(t, "VER", d.Rows[0].Name())
	require.NotNil(t, d.Rows[0].Points)
	assert.Equal(t, 25, *d.Rows[0].Points)
	assert.Nil(t, d.Rows[4].Points)
	assert.Nil(t, d.Rows[8].Price)
	assert.Equal(t, []int{2024}, d.Seasons())
	assert.Equal(t, []int{1, 2, 3, 4}, d.Races(2024))
}

func TestReadTableCSVDerivColumns(t *testing.T) {
	in := "Season,Race,Constructor,Points,Price,PPM\n2024,1,RED,10,20.0,0.5\n2024,2,RED,10,20.0,\n"
	tbl, err := ReadTableCSV(strings.NewReader(in), model.KindConstructor)
	require.NoError(t, err)
	assert.Equal(t, []string{"PPM"}, tbl.Derivs)
	assert.Equal(t, map[string]float64{"PPM": 0.5}, tbl.Rows[0].Derivs)
	assert.Empty(t, tbl.Rows[1].Derivs)

	var buf bytes.Buffer
	require.NoError(t, WriteTableCSV(&buf, tbl))
	again, err := ReadTableCSV(&buf, model.KindConstructor)
	require.NoError(t, err)
	assert.Equal(t, tbl.Rows, again.Rows)
}

func TestReadTableCSVErrors(t *testing.T) {
	_, err := ReadTableCSV(strings.NewReader("Season,Race,Constructor,Points,Price\n"), model.KindDriver)
	assert.Error(t, err, "driver column is required for drivers")

	_, err = ReadTableCSV(strings.NewReader("Season,Race,Constructor,Points,Price\nx,1,RED,1,1\n"), model.KindConstructor)
	assert.Error(t, err)

	_, err = ReadTableCSV(strings.NewReader("Season,Race,Constructor,Points,Price,PPM\n2024,1,RED,1,1,abc\n"), model.KindConstructor)
	assert.Error(t, err)
}

func TestBuildRace(t *testing.T) {
	d, c := readTables(t)

	race, err := BuildRace(d, c, 2024, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, race.Number)
	assert.Len(t, race.Drivers, 3)
	tsu := race.Drivers["TSU"]
	assert.False(t, tsu.Scored)
	assert.Equal(t, 0, tsu.Points)
	assert.Equal(t, "RED", tsu.Constructor)
	assert.InDelta(t, 25.5, race.Constructors["RED"].Price, 1e-9)

	// TSU has no price in race 3 so is not selectable.
	race, err = BuildRace(d, c, 2024, 3)
	require.NoError(t, err)
	assert.NotContains(t, race.Drivers, "TSU")
	assert.Equal(t, map[string]string{"VER": "RED", "LEC": "FER"}, Pairings(d, 2024, 3))
}

func TestBuildRaceDuplicateRow(t *testing.T) {
	d, c := readTables(t)
	dup := d.Rows[0]
	d.Rows = append(d.Rows, dup)

	_, err := BuildRace(d, c, 2024, 1)
	assert.ErrorIs(t, err, ErrDuplicateRow)
}

func TestBuildRaceMissingRows(t *testing.T) {
	d, c := readTables(t)
	_, err := BuildRace(d, c, 2024, 9)
	assert.ErrorIs(t, err, ErrMissingRow)

	_, err = BuildSeason(d, c, 1999)
	assert.ErrorIs(t, err, ErrMissingRow)
}

func TestBuildRaceUnknownConstructor(t *testing.T) {
	d, c := readTables(t)
	var kept []Row
	for _, r := range c.Rows {
		if !(r.Race == 1 && r.Constructor == "FER") {
			kept = append(kept, r)
		}
	}
	c.Rows = kept

	_, err := BuildRace(d, c, 2024, 1)
	assert.ErrorIs(t, err, model.ErrUnknownConstructor)
}

func TestBuildSeason(t *testing.T) {
	d, c := readTables(t)
	season, err := BuildSeason(d, c, 2024)
	require.NoError(t, err)
	assert.Equal(t, 2024, season.Year)
	assert.Equal(t, []int{1, 2, 3, 4}, season.RaceNumbers())
}

func TestDeriveRollingUsesPrecedingRacesOnly(t *testing.T) {
	d, _ := readTables(t)
	derived := DeriveRolling(d, 3)

	points := MetricName(MetricPoints, 3)
	price := MetricName(MetricPrice, 3)
	ppm := MetricName(MetricPPM, 3)
	p2pm := MetricName(MetricP2PM, 3)
	assert.Equal(t, "Points Cumulative (3)", points)
	assert.Contains(t, derived.Derivs, p2pm)

	byRace := map[int]Row{}
	for _, r := range derived.Rows {
		if r.Driver == "VER" {
			byRace[r.Race] = r
		}
	}
	assert.InDelta(t, 0.0, byRace[1].Derivs[points], 1e-9)
	assert.InDelta(t, 0.0, byRace[1].Derivs[p2pm], 1e-9)
	assert.InDelta(t, 25.0, byRace[2].Derivs[points], 1e-9)
	assert.InDelta(t, 68.0, byRace[4].Derivs[points], 1e-9)
	assert.InDelta(t, 91.1, byRace[4].Derivs[price], 1e-9)
	assert.InDelta(t, 68.0/91.1, byRace[4].Derivs[ppm], 1e-9)
	assert.InDelta(t, 68.0*68.0/91.1, byRace[4].Derivs[p2pm], 1e-9)

	// Null points count as zero.
	for _, r := range derived.Rows {
		if r.Driver == "TSU" && r.Race == 3 {
			assert.InDelta(t, 4.0, r.Derivs[points], 1e-9)
			assert.InDelta(t, 20.0, r.Derivs[price], 1e-9)
		}
	}

	// The source table is untouched.
	assert.Empty(t, d.Rows[0].Derivs)
}

func TestDeriveRollingWindowSlides(t *testing.T) {
	var tbl Table
	tbl.Kind = model.KindConstructor
	for race := 1; race <= 5; race++ {
		p := race * 10
		price := 10.0
		tbl.Rows = append(tbl.Rows, Row{Season: 2024, Race: race, Constructor: "RED", Points: &p, Price: &price})
	}
	derived := DeriveRolling(&tbl, 2)
	points := MetricName(MetricPoints, 2)
	assert.InDelta(t, 0.0, derived.Rows[0].Derivs[points], 1e-9)
	assert.InDelta(t, 10.0, derived.Rows[1].Derivs[points], 1e-9)
	assert.InDelta(t, 30.0, derived.Rows[2].Derivs[points], 1e-9)
	assert.InDelta(t, 70.0, derived.Rows[4].Derivs[points], 1e-9)
}

func TestOddsTable(t *testing.T) {
	in := "Season,Race,Type,Asset,Odds\n2024,1,Driver,VER,2/1\n2024,1,Constructor,RED,3:2\n2024,2,Driver,VER,\n"
	odds, err := ReadOddsCSV(strings.NewReader(in))
	require.NoError(t, err)

	race1, err := odds.Odds(2024, 1)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"VER": "2/1", "RED": "3:2"}, race1)

	race2, err := odds.Odds(2024, 2)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"VER": ""}, race2)

	none, err := odds.Odds(2023, 1)
	require.NoError(t, err)
	assert.Empty(t, none)

	var nilTable *OddsTable
	empty, err := nilTable.Odds(2024, 1)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSeasonCache(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	cache := NewSeasonCache(time.Hour)
	cache.now = func() time.Time { return now }

	loads := 0
	load := func() (*Dataset, error) {
		loads++
		return &Dataset{}, nil
	}

	first, err := cache.GetOrLoad(2024, load)
	require.NoError(t, err)
	second, err := cache.GetOrLoad(2024, load)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, loads)

	_, err = cache.GetOrLoad(2023, load)
	require.NoError(t, err)
	assert.Equal(t, 2, loads)
	assert.Equal(t, 2, cache.Len())

	cache.Invalidate(2024)
	_, ok := cache.Get(2024)
	assert.False(t, ok)
	_, ok = cache.Get(2023)
	assert.True(t, ok)

	now = now.Add(2 * time.Hour)
	_, ok = cache.Get(2023)
	assert.False(t, ok, "expired")

	cache.Clear()
	assert.Equal(t, 0, cache.Len())

	var nilCache *SeasonCache
	_, ok = nilCache.Get(2024)
	assert.False(t, ok)
	nilCache.Set(2024, &Dataset{})
}

func TestLoadDataset(t *testing.T) {
	dir := t.TempDir()
	paths := DirPaths(dir, 2024)
	require.NoError(t, os.WriteFile(paths.Drivers, []byte(driversCSV), 0o644))
	require.NoError(t, os.WriteFile(paths.Constructors, []byte(constructorsCSV), 0o644))

	ds, err := LoadDataset(paths, 2024, 3)
	require.NoError(t, err)
	assert.Nil(t, ds.Odds)
	race, ok := ds.Season.Race(4)
	require.True(t, ok)
	v, ok := race.Drivers["VER"].Deriv("Points Cumulative (3)")
	require.True(t, ok)
	assert.InDelta(t, 68.0, v, 1e-9)

	require.NoError(t, os.WriteFile(paths.Odds, []byte("Season,Race,Type,Asset,Odds\n2024,2,Driver,VER,2/1\n"), 0o644))
	ds, err = LoadDataset(paths, 2024, 3)
	require.NoError(t, err)
	require.NotNil(t, ds.Odds)

	_, err = LoadDataset(DirPaths(filepath.Join(dir, "missing"), 2024), 2024, 3)
	assert.Error(t, err)
}

func TestBlankMetricCellDefaultsToZero(t *testing.T) {
	drivers := "Season,Race,Constructor,Driver,Points,Price,Form\n" +
		"2024,1,RED,VER,25,30.0,0.9\n2024,1,FER,LEC,18,20.0,0.7\n" +
		"2024,2,RED,VER,18,30.5,0.8\n2024,2,FER,LEC,25,20.2,\n"
	dt, err := ReadTableCSV(strings.NewReader(drivers), model.KindDriver)
	require.NoError(t, err)
	ct, err := ReadTableCSV(strings.NewReader(constructorsCSV), model.KindConstructor)
	require.NoError(t, err)
	season, err := BuildSeason(dt, ct, 2024)
	require.NoError(t, err)

	first, _ := season.Race(1)
	second, _ := season.Race(2)
	form := second.Derivs()["Form"]
	assert.InDelta(t, 0.8, form["VER"], 1e-9)
	assert.Contains(t, form, "LEC")
	assert.Contains(t, form, "RED", "constructors get metrics that only the drivers table carries")

	team, err := model.NewTeamFromLists([]string{"VER"}, []string{"RED"}, first, 100)
	require.NoError(t, err)
	in, err := strategy.BuildInputs(team, second, first, 2, 2024)
	require.NoError(t, err)
	require.NoError(t, in.Validate())
	res, err := strategy.Execute(strategy.MaxBudget{}, in, lp.NewBranchAndBound())
	require.NoError(t, err)
	assert.Equal(t, []string{"VER"}, res.Drivers)
}

func TestReadTableCSVRejectsFractionalPoints(t *testing.T) {
	_, err := ReadTableCSV(strings.NewReader("Season,Race,Constructor,Points,Price\n2024,1,RED,12.5,20\n"), model.KindConstructor)
	assert.Error(t, err)

	tbl, err := ReadTableCSV(strings.NewReader("Season,Race,Constructor,Points,Price\n2024,1,RED,12.0,20\n"), model.KindConstructor)
	require.NoError(t, err)
	assert.Equal(t, 12, *tbl.Rows[0].Points)
}
