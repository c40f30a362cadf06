package backtest

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"f1-fantasy/internal/lp"
	"f1-fantasy/internal/model"
	"f1-fantasy/internal/strategy"
)

type asset struct {
	name, team string
	price      float64
	points     int
}

func race(t *testing.T, n int, drivers, constructors []asset) *model.Race {
	t.Helper()
	ds := map[string]model.Asset{}
	for _, d := range drivers {
		ds[d.name] = model.Asset{Name: d.name, Constructor: d.team, Price: d.price, Points: d.points, Scored: true}
	}
	cs := map[string]model.Asset{}
	for _, c := range constructors {
		cs[c.name] = model.Asset{Name: c.name, Price: c.price, Points: c.points, Scored: true}
	}
	r, err := model.NewRace(n, ds, cs)
	require.NoError(t, err)
	return r
}

// Race 2 drops D, which the team owns; race 3 brings it back.
func testSeason(t *testing.T) *model.Season {
	t.Helper()
	r1 := race(t, 1,
		[]asset{{"A", "C1", 10, 20}, {"B", "C1", 8, 15}, {"C", "C2", 6, 5}, {"D", "C2", 7, 2}},
		[]asset{{"C1", "", 10, 30}, {"C2", "", 5, 10}},
	)
	r2 := race(t, 2,
		[]asset{{"A", "C1", 10, 10}, {"B", "C1", 8, 12}, {"C", "C2", 6, 3}},
		[]asset{{"C1", "", 10, 20}, {"C2", "", 5, 8}},
	)
	r3 := race(t, 3,
		[]asset{{"A", "C1", 10, 5}, {"B", "C1", 8, 25}, {"C", "C2", 6, 1}, {"D", "C2", 7.5, 0}},
		[]asset{{"C1", "", 10, 0}, {"C2", "", 5, 4}},
	)
	s, err := model.NewSeason(2024, []*model.Race{r3, r1, r2})
	require.NoError(t, err)
	return s
}

func quietEngine() *Engine {
	e := New(lp.NewBranchAndBound())
	l := logrus.New()
	l.SetOutput(&bytes.Buffer{})
	e.Log = logrus.NewEntry(l)
	return e
}

func TestRunReplacesDroppedDriver(t *testing.T) {
	s := testSeason(t)
	r1, _ := s.Race(1)
	team, err := model.NewTeamFromLists([]string{"A", "D"}, []string{"C2"}, r1, 23)
	require.NoError(t, err)

	res, err := quietEngine().Run(s, team, strategy.MaxBudget{}, 1)
	require.NoError(t, err)
	require.Len(t, res.Ledger, 3)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, "MaxBudget", res.Strategy)

	start := res.Ledger[0]
	assert.Equal(t, 1, start.Race)
	assert.Equal(t, -1, start.UsedMoves)
	assert.Equal(t, BaseMoves, start.MaxMoves)
	assert.Equal(t, "(A,D)(C2)", start.Team)
	// 20 + 2 + 10, plus A doubled as the most expensive driver.
	assert.Equal(t, 52, start.Points)
	assert.InDelta(t, 22, start.TotalValue, 1e-9)
	assert.InDelta(t, 1, start.UnusedBudget, 1e-9)

	second := res.Ledger[1]
	assert.Equal(t, "(A,B)(C2)", second.Team)
	assert.Equal(t, 1, second.UsedMoves)
	assert.Equal(t, BaseMoves, second.MaxMoves)
	assert.Equal(t, 40, second.Points)
	assert.Equal(t, 92, second.TotalPoints)
	assert.InDelta(t, 0, second.UnusedBudget, 1e-6)

	third := res.Ledger[2]
	assert.Equal(t, BonusMoves, third.MaxMoves)
	assert.Equal(t, 0, third.UsedMoves)
	assert.Equal(t, "(A,B)(C2)", third.Team)
	assert.Equal(t, 39, third.Points)
	assert.Equal(t, 131, res.TotalPoints)

	for _, row := range res.Ledger {
		assert.InDelta(t, 22, row.StartingValue, 1e-9)
	}
	final, ok := res.Final()
	require.True(t, ok)
	assert.Equal(t, third, final)

	// the caller's team is untouched
	assert.Equal(t, 0, team.TotalPoints)
	assert.Equal(t, "(A,D)(C2)", team.String())
}

func TestRunFromLaterRace(t *testing.T) {
	s := testSeason(t)
	r2, _ := s.Race(2)
	team, err := model.NewTeamFromLists([]string{"A", "B"}, []string{"C2"}, r2, 23)
	require.NoError(t, err)

	res, err := quietEngine().Run(s, team, strategy.MaxBudget{}, 2)
	require.NoError(t, err)
	require.Len(t, res.Ledger, 2)
	assert.Equal(t, 2, res.Ledger[0].Race)
	assert.Equal(t, -1, res.Ledger[0].UsedMoves)
	// no transition preceded race 2, so race 3 gets the base allowance
	assert.Equal(t, BaseMoves, res.Ledger[1].MaxMoves)
}

func TestRunUnknownStartRace(t *testing.T) {
	s := testSeason(t)
	r1, _ := s.Race(1)
	team, err := model.NewTeamFromLists([]string{"A", "D"}, []string{"C2"}, r1, 23)
	require.NoError(t, err)

	_, err = quietEngine().Run(s, team, strategy.MaxBudget{}, 9)
	assert.Error(t, err)
}

func TestRunInfeasibleTransition(t *testing.T) {
	s := testSeason(t)
	r1, _ := s.Race(1)
	// a budget that cannot afford any replacement for D
	team, err := model.NewTeamFromLists([]string{"A", "D"}, []string{"C2"}, r1, 22)
	require.NoError(t, err)
	team.UnusedBudget = -20

	_, err = quietEngine().Run(s, team, strategy.MaxBudget{}, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, strategy.ErrNotOptimal)
	assert.Contains(t, err.Error(), "race 2")
}

func TestSimKey(t *testing.T) {
	team := model.NewTeam(2, 1, 0)
	require.NoError(t, team.Add(model.KindDriver, "VER"))
	require.NoError(t, team.Add(model.KindDriver, "LEC"))
	require.NoError(t, team.Add(model.KindConstructor, "RED"))
	assert.Equal(t, "(MaxBudget)(2024)(LEC,VER)(RED)", SimKey("MaxBudget", 2024, team))
}

func TestWriteLedgerCSV(t *testing.T) {
	s := testSeason(t)
	r1, _ := s.Race(1)
	team, err := model.NewTeamFromLists([]string{"A", "D"}, []string{"C2"}, r1, 23)
	require.NoError(t, err)
	res, err := quietEngine().Run(s, team, strategy.MaxBudget{}, 1)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "ledger.csv")
	require.NoError(t, WriteLedgerCSV(path, res.Ledger))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)

	header := records[0]
	assert.Equal(t, "strategy", header[0])
	assert.Contains(t, header, "D2_pts")
	assert.Contains(t, header, "C1_val")
	assert.NotContains(t, header, "C2")

	idx := func(col string) int {
		for i, h := range header {
			if h == col {
				return i
			}
		}
		t.Fatalf("missing column %s", col)
		return -1
	}
	assert.Equal(t, "-1", records[1][idx("used_moves")])
	assert.Equal(t, "B", records[2][idx("D2")])
	assert.Equal(t, "8.000000", records[2][idx("D2_val")])
	assert.Equal(t, "131", records[3][idx("total_points")])
}

func TestRenderLedger(t *testing.T) {
	out := RenderLedger([]LedgerRow{
		{Race: 1, Drivers: []AssetLine{{Name: "VER"}}, Constructors: []AssetLine{{Name: "RED"}}, UsedMoves: -1, MaxMoves: 2, Points: 10, TotalPoints: 10},
		{Race: 2, Drivers: []AssetLine{{Name: "LEC"}}, Constructors: []AssetLine{{Name: "RED"}}, UsedMoves: 1, MaxMoves: 2, Points: 5, TotalPoints: 15},
	})
	assert.Contains(t, out, "VER")
	assert.Contains(t, out, "1/2")
	assert.True(t, strings.Contains(strings.ToUpper(out), "CONSTRUCTORS"))
}
