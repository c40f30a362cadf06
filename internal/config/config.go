package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"f1-fantasy/internal/data"
	"f1-fantasy/internal/lp"
	"f1-fantasy/internal/strategy"
)

// Config is the on-disk configuration shape (YAML).
type Config struct {
	Season int        `yaml:"season"`
	Data   DataConfig `yaml:"data"`

	// Optional: load the starting team from a separate YAML.
	// If both TeamFile and Team are provided, Team overrides TeamFile.
	TeamFile string         `yaml:"team_file"`
	Team     TeamConfig     `yaml:"team"`
	Strategy StrategyConfig `yaml:"strategy"`
	Solver   SolverConfig   `yaml:"solver"`
	Log      LogConfig      `yaml:"log"`
	Batch    BatchConfig    `yaml:"batch"`
}

type DataConfig struct {
	Drivers       string `yaml:"drivers"`
	Constructors  string `yaml:"constructors"`
	Odds          string `yaml:"odds"`
	RollingWindow int    `yaml:"rolling_window"`
}

type TeamConfig struct {
	Drivers         []string `yaml:"drivers"`
	Constructors    []string `yaml:"constructors"`
	StartingBudget  float64  `yaml:"starting_budget"`
	StartRace       int      `yaml:"start_race"`
	NumDrivers      int      `yaml:"num_drivers"`
	NumConstructors int      `yaml:"num_constructors"`
}

type StrategyConfig struct {
	Name   string          `yaml:"name"`
	Params strategy.Params `yaml:"params"`
}

type SolverConfig struct {
	MaxNodes  int     `yaml:"max_nodes"`
	Tolerance float64 `yaml:"tolerance"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// BatchConfig drives enumeration of starting teams. Picks are kept when
// their total value is in (MinValue, MaxValue].
type BatchConfig struct {
	Workers  int     `yaml:"workers"`
	Store    string  `yaml:"store"`
	MinValue float64 `yaml:"min_value"`
	MaxValue float64 `yaml:"max_value"`
}

const (
	DefaultStartingBudget  = 100.0
	DefaultNumDrivers      = 5
	DefaultNumConstructors = 2
	DefaultStartRace       = 1
)

func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads and merges config, but does not validate it.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	dir := filepath.Dir(path)
	if c.TeamFile != "" {
		loaded, err := loadTeamFile(resolve(dir, c.TeamFile))
		if err != nil {
			return nil, err
		}
		c.Team = MergeTeam(loaded, c.Team)
	}
	c.Data.Drivers = resolve(dir, c.Data.Drivers)
	c.Data.Constructors = resolve(dir, c.Data.Constructors)
	c.Data.Odds = resolve(dir, c.Data.Odds)
	return &c, nil
}

// resolve interprets relative paths against the config file directory,
// falling back to the path as given when nothing exists there.
func resolve(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	cand := filepath.Join(dir, p)
	if _, err := os.Stat(cand); err == nil {
		return cand
	}
	return p
}

func (c *Config) applyDefaults() {
	if c.Team.StartingBudget == 0 {
		c.Team.StartingBudget = DefaultStartingBudget
	}
	if c.Team.StartRace == 0 {
		c.Team.StartRace = DefaultStartRace
	}
	if c.Team.NumDrivers == 0 {
		c.Team.NumDrivers = DefaultNumDrivers
	}
	if c.Team.NumConstructors == 0 {
		c.Team.NumConstructors = DefaultNumConstructors
	}
	if c.Data.RollingWindow == 0 {
		c.Data.RollingWindow = data.DefaultWindow
	}
	if c.Batch.Workers == 0 {
		c.Batch.Workers = 4
	}
	if c.Batch.MaxValue == 0 {
		c.Batch.MaxValue = c.Team.StartingBudget
	}
	c.Strategy.Params = c.Strategy.Params.WithDefaults()
}

func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config is nil")
	}
	if c.Season == 0 {
		return fmt.Errorf("season is required")
	}
	if c.Data.Drivers == "" || c.Data.Constructors == "" {
		return fmt.Errorf("data.drivers and data.constructors are required")
	}
	if c.Data.RollingWindow < 1 {
		return fmt.Errorf("data.rolling_window must be positive, got %d", c.Data.RollingWindow)
	}
	if c.Strategy.Name == "" {
		return fmt.Errorf("strategy.name is required")
	}
	kind, err := strategy.ParseKind(c.Strategy.Name)
	if err != nil {
		return err
	}
	if kind == strategy.KindBettingOdds && c.Data.Odds == "" {
		return fmt.Errorf("strategy %s requires data.odds", kind)
	}
	if c.Team.NumDrivers < 1 || c.Team.NumConstructors < 1 {
		return fmt.Errorf("team sizes must be positive, got %d drivers and %d constructors", c.Team.NumDrivers, c.Team.NumConstructors)
	}
	if n := len(c.Team.Drivers); n != 0 && n != c.Team.NumDrivers {
		return fmt.Errorf("team.drivers has %d entries, want %d", n, c.Team.NumDrivers)
	}
	if n := len(c.Team.Constructors); n != 0 && n != c.Team.NumConstructors {
		return fmt.Errorf("team.constructors has %d entries, want %d", n, c.Team.NumConstructors)
	}
	if c.Team.StartingBudget <= 0 {
		return fmt.Errorf("team.starting_budget must be positive")
	}
	if c.Solver.MaxNodes < 0 || c.Solver.Tolerance < 0 {
		return fmt.Errorf("solver limits must not be negative")
	}
	if c.Batch.Workers < 1 {
		return fmt.Errorf("batch.workers must be positive")
	}
	if c.Batch.MinValue > c.Batch.MaxValue {
		return fmt.Errorf("batch.min_value %.2f exceeds batch.max_value %.2f", c.Batch.MinValue, c.Batch.MaxValue)
	}
	return nil
}

// HasTeam reports whether a full starting roster is configured.
func (c *Config) HasTeam() bool {
	return len(c.Team.Drivers) > 0 && len(c.Team.Constructors) > 0
}

func (c *Config) DataPaths() data.Paths {
	return data.Paths{
		Drivers:      c.Data.Drivers,
		Constructors: c.Data.Constructors,
		Odds:         c.Data.Odds,
	}
}

// NewSolver returns a branch and bound solver with the configured limits.
func (c *Config) NewSolver() *lp.BranchAndBound {
	s := lp.NewBranchAndBound()
	if c.Solver.MaxNodes > 0 {
		s.MaxNodes = c.Solver.MaxNodes
	}
	if c.Solver.Tolerance > 0 {
		s.Tolerance = c.Solver.Tolerance
	}
	return s
}

// NewStrategy builds the configured strategy. odds may be nil for
// strategies that do not read betting odds.
func (c *Config) NewStrategy(odds strategy.OddsSource) (strategy.Strategy, error) {
	kind, err := strategy.ParseKind(c.Strategy.Name)
	if err != nil {
		return nil, err
	}
	return strategy.New(kind, c.Strategy.Params, odds)
}

type teamFileWrapper struct {
	Team TeamConfig `yaml:"team"`
}

func loadTeamFile(path string) (TeamConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return TeamConfig{}, errors.Wrapf(err, "read team file %s", path)
	}
	var w teamFileWrapper
	if err := yaml.Unmarshal(raw, &w); err != nil {
		return TeamConfig{}, errors.Wrapf(err, "parse team file %s", path)
	}
	return w.Team, nil
}

// MergeTeam overlays non-zero fields from override onto base.
func MergeTeam(base, override TeamConfig) TeamConfig {
	out := base
	if len(override.Drivers) > 0 {
		out.Drivers = append([]string(nil), override.Drivers...)
	}
	if len(override.Constructors) > 0 {
		out.Constructors = append([]string(nil), override.Constructors...)
	}
	if override.StartingBudget != 0 {
		out.StartingBudget = override.StartingBudget
	}
	if override.StartRace != 0 {
		out.StartRace = override.StartRace
	}
	if override.NumDrivers != 0 {
		out.NumDrivers = override.NumDrivers
	}
	if override.NumConstructors != 0 {
		out.NumConstructors = override.NumConstructors
	}
	return out
}
