package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"f1-fantasy/internal/data"
	"f1-fantasy/internal/strategy"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadAppliesDefaultsAndResolvesPaths(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "drivers.csv", "")
	writeFile(t, dir, "constructors.csv", "")
	path := writeFile(t, dir, "sim.yaml", `
season: 2024
data:
  drivers: drivers.csv
  constructors: constructors.csv
strategy:
  name: max_p2pm
`)

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2024, c.Season)
	assert.Equal(t, filepath.Join(dir, "drivers.csv"), c.Data.Drivers)
	assert.Equal(t, filepath.Join(dir, "constructors.csv"), c.Data.Constructors)
	assert.Equal(t, data.DefaultWindow, c.Data.RollingWindow)
	assert.Equal(t, DefaultStartingBudget, c.Team.StartingBudget)
	assert.Equal(t, DefaultNumDrivers, c.Team.NumDrivers)
	assert.Equal(t, DefaultNumConstructors, c.Team.NumConstructors)
	assert.Equal(t, DefaultStartRace, c.Team.StartRace)
	assert.Equal(t, strategy.DefaultParams(), c.Strategy.Params)
	assert.Equal(t, DefaultStartingBudget, c.Batch.MaxValue)
	assert.False(t, c.HasTeam())

	s, err := c.NewStrategy(nil)
	require.NoError(t, err)
	assert.Equal(t, strategy.KindMaxP2PM, s.Kind())
}

func TestLoadMergesTeamFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "team.yaml", `
team:
  drivers: [VER, LEC, HAM, ALO, HUL]
  constructors: [RED, FER]
  starting_budget: 100
  start_race: 1
`)
	path := writeFile(t, dir, "sim.yaml", `
season: 2024
data:
  drivers: /data/drivers.csv
  constructors: /data/constructors.csv
team_file: team.yaml
team:
  start_race: 3
strategy:
  name: max_budget
solver:
  max_nodes: 500
`)

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"VER", "LEC", "HAM", "ALO", "HUL"}, c.Team.Drivers)
	assert.Equal(t, []string{"RED", "FER"}, c.Team.Constructors)
	assert.Equal(t, 3, c.Team.StartRace)
	assert.Equal(t, 100.0, c.Team.StartingBudget)
	assert.True(t, c.HasTeam())
	assert.Equal(t, "/data/drivers.csv", c.Data.Drivers)
	assert.Equal(t, 500, c.NewSolver().MaxNodes)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := &Config{
			Season:   2024,
			Data:     DataConfig{Drivers: "d.csv", Constructors: "c.csv"},
			Strategy: StrategyConfig{Name: "max_budget"},
		}
		c.applyDefaults()
		return c
	}
	require.NoError(t, valid().Validate())

	cases := map[string]func(c *Config){
		"no season":        func(c *Config) { c.Season = 0 },
		"no drivers":       func(c *Config) { c.Data.Drivers = "" },
		"unknown strategy": func(c *Config) { c.Strategy.Name = "moneyball" },
		"no strategy":      func(c *Config) { c.Strategy.Name = "" },
		"odds missing":     func(c *Config) { c.Strategy.Name = "betting_odds" },
		"short roster":     func(c *Config) { c.Team.Drivers = []string{"VER"} },
		"bad window":       func(c *Config) { c.Data.RollingWindow = -1 },
		"bad batch range":  func(c *Config) { c.Batch.MinValue = 200 },
		"negative nodes":   func(c *Config) { c.Solver.MaxNodes = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := valid()
			mutate(c)
			assert.Error(t, c.Validate())
		})
	}

	var nilCfg *Config
	assert.Error(t, nilCfg.Validate())
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	dir := t.TempDir()
	path := writeFile(t, dir, "bad.yaml", "season: [")
	_, err = Load(path)
	assert.Error(t, err)

	path = writeFile(t, dir, "team.yaml", "season: 2024\nteam_file: nowhere.yaml\n")
	_, err = LoadUnchecked(path)
	assert.Error(t, err)
}

func TestMergeTeam(t *testing.T) {
	base := TeamConfig{Drivers: []string{"VER"}, Constructors: []string{"RED"}, StartingBudget: 100, NumDrivers: 1, NumConstructors: 1}
	out := MergeTeam(base, TeamConfig{Constructors: []string{"FER"}, StartRace: 5})
	assert.Equal(t, []string{"VER"}, out.Drivers)
	assert.Equal(t, []string{"FER"}, out.Constructors)
	assert.Equal(t, 5, out.StartRace)
	assert.Equal(t, 100.0, out.StartingBudget)
	assert.Equal(t, []string{"RED"}, base.Constructors)
}
