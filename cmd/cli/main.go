package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"f1-fantasy/internal/analysis"
	"f1-fantasy/internal/backtest"
	"f1-fantasy/internal/batch"
	"f1-fantasy/internal/config"
	"f1-fantasy/internal/data"
	"f1-fantasy/internal/logger"
	"f1-fantasy/internal/model"
	"f1-fantasy/internal/store"
	"f1-fantasy/internal/strategy"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sirupsen/logrus"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "simulate":
		cmdSimulate(os.Args[2:])
	case "batch":
		cmdBatch(os.Args[2:])
	case "picks":
		cmdPicks(os.Args[2:])
	case "results":
		cmdResults(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  cli simulate --config examples/sim.yaml --out results/ledger.csv")
	fmt.Println("  cli batch --config examples/sim.yaml [--strategies max_budget,zero_stop]")
	fmt.Println("  cli picks --config examples/sim.yaml [--limit 20]")
	fmt.Println("  cli results --db results/batch.db [--season 2024] [--limit 10]")
	fmt.Println("")
	fmt.Println("notes:")
	fmt.Println("  - simulate runs one starting team through the season with the configured strategy")
	fmt.Println("  - batch runs every starting pick through each strategy, skipping stored results")
}

func fail(err error) {
	logger.Get().WithError(err).Fatal("Command failed")
}

// setup loads the config, initializes logging and reads the season data.
func setup(cfgPath string) (*config.Config, *data.Dataset) {
	if cfgPath == "" {
		fmt.Println("--config is required")
		os.Exit(2)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fail(err)
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format)

	ds, err := data.LoadDataset(cfg.DataPaths(), cfg.Season, cfg.Data.RollingWindow)
	if err != nil {
		fail(err)
	}
	logger.Get().WithFields(logrus.Fields{
		"season": cfg.Season,
		"races":  len(ds.Season.RaceNumbers()),
		"odds":   ds.Odds != nil,
	}).Info("Season loaded")
	return cfg, ds
}

func oddsSource(ds *data.Dataset) strategy.OddsSource {
	if ds.Odds == nil {
		return nil
	}
	return ds.Odds
}

func picks(cfg *config.Config, race *model.Race) []analysis.Pick {
	return analysis.StartingPicks(race, cfg.Team.NumDrivers, cfg.Team.NumConstructors, cfg.Batch.MinValue, cfg.Batch.MaxValue)
}

// startingTeam uses the configured roster, or else the pick with the
// lowest driver to constructor value ratio.
func startingTeam(cfg *config.Config, race *model.Race) *model.Team {
	if cfg.HasTeam() {
		team, err := model.NewTeamFromLists(cfg.Team.Drivers, cfg.Team.Constructors, race, cfg.Team.StartingBudget)
		if err != nil {
			fail(err)
		}
		return team
	}
	best, ok := analysis.LowestDriverRatio(picks(cfg, race))
	if !ok {
		fail(fmt.Errorf("no starting team fits in (%.2f, %.2f]", cfg.Batch.MinValue, cfg.Batch.MaxValue))
	}
	team, err := best.Team(race, cfg.Team.StartingBudget)
	if err != nil {
		fail(err)
	}
	logger.Get().WithField("team", team.String()).Info("Selected starting team by lowest driver ratio")
	return team
}

func startRace(cfg *config.Config, season *model.Season) *model.Race {
	race, ok := season.Race(cfg.Team.StartRace)
	if !ok {
		fail(fmt.Errorf("season %d has no race %d", season.Year, cfg.Team.StartRace))
	}
	return race
}

func cmdSimulate(args []string) {
	fs := flag.NewFlagSet("simulate", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Path to YAML config")
	outPath := fs.String("out", "", "Optional: ledger CSV output path")
	_ = fs.Parse(args)

	cfg, ds := setup(*cfgPath)
	strat, err := cfg.NewStrategy(oddsSource(ds))
	if err != nil {
		fail(err)
	}
	team := startingTeam(cfg, startRace(cfg, ds.Season))

	res, err := backtest.New(cfg.NewSolver()).Run(ds.Season, team, strat, cfg.Team.StartRace)
	if err != nil {
		fail(err)
	}

	fmt.Print(backtest.RenderLedger(res.Ledger))
	if *outPath != "" {
		if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
			fail(err)
		}
		if err := backtest.WriteLedgerCSV(*outPath, res.Ledger); err != nil {
			fail(err)
		}
		fmt.Printf("Wrote %d rows to %s\n", len(res.Ledger), *outPath)
	}
	fmt.Printf("%s total points=%d final team=%s\n", backtest.SimKey(res.Strategy, res.Season, team), res.TotalPoints, res.FinalTeam)
}

func cmdBatch(args []string) {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Path to YAML config")
	kinds := fs.String("strategies", "", "Comma-separated strategies (default: all usable with the data)")
	_ = fs.Parse(args)

	cfg, ds := setup(*cfgPath)
	if cfg.Batch.Store == "" {
		fail(fmt.Errorf("batch.store is required"))
	}

	strategies := batchStrategies(cfg, ds, *kinds)
	race := startRace(cfg, ds.Season)
	teams, err := batch.Teams(picks(cfg, race), race, cfg.Team.StartingBudget)
	if err != nil {
		fail(err)
	}

	st, err := store.Open(cfg.Batch.Store)
	if err != nil {
		fail(err)
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	r := &batch.Runner{
		Season:    ds.Season,
		StartRace: cfg.Team.StartRace,
		Engine:    backtest.New(cfg.NewSolver()),
		Store:     st,
		Workers:   cfg.Batch.Workers,
	}
	sum, err := r.Run(ctx, strategies, teams)
	if err != nil {
		fail(err)
	}
	fmt.Printf("Batch %s: %d simulations, %d run, %d skipped\n", sum.BatchID, sum.Total, sum.Run, sum.Skipped)
}

func batchStrategies(cfg *config.Config, ds *data.Dataset, list string) []strategy.Strategy {
	var kinds []strategy.Kind
	if list == "" {
		for _, k := range strategy.Kinds() {
			if k == strategy.KindBettingOdds && ds.Odds == nil {
				continue
			}
			kinds = append(kinds, k)
		}
	} else {
		for _, name := range strings.Split(list, ",") {
			k, err := strategy.ParseKind(name)
			if err != nil {
				fail(err)
			}
			kinds = append(kinds, k)
		}
	}
	out := make([]strategy.Strategy, 0, len(kinds))
	for _, k := range kinds {
		s, err := strategy.New(k, cfg.Strategy.Params, oddsSource(ds))
		if err != nil {
			fail(err)
		}
		out = append(out, s)
	}
	return out
}

func cmdPicks(args []string) {
	fs := flag.NewFlagSet("picks", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Path to YAML config")
	limit := fs.Int("limit", 20, "Rows to print (0=all)")
	_ = fs.Parse(args)

	cfg, ds := setup(*cfgPath)
	all := picks(cfg, startRace(cfg, ds.Season))

	var b bytes.Buffer
	t := table.NewWriter()
	t.SetOutputMirror(&b)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"#", "Drivers", "Constructors", "Drivers $", "Constructors $", "Total $", "Ratio"})
	for i, p := range all {
		if *limit > 0 && i >= *limit {
			break
		}
		t.AppendRow(table.Row{
			i + 1,
			strings.Join(p.Drivers, " "),
			strings.Join(p.Constructors, " "),
			fmt.Sprintf("%.1f", p.DriverValue),
			fmt.Sprintf("%.1f", p.ConstructorValue),
			fmt.Sprintf("%.1f", p.TotalValue),
			fmt.Sprintf("%.3f", p.DriverRatio()),
		})
	}
	t.Render()
	fmt.Print(b.String())

	fmt.Printf("%d picks in (%.2f, %.2f]\n", len(all), cfg.Batch.MinValue, cfg.Batch.MaxValue)
	if best, ok := analysis.LowestDriverRatio(all); ok {
		fmt.Printf("Lowest driver ratio: (%s)(%s) %.3f\n", strings.Join(best.Drivers, ","), strings.Join(best.Constructors, ","), best.DriverRatio())
	}
}

func cmdResults(args []string) {
	fs := flag.NewFlagSet("results", flag.ExitOnError)
	dbPath := fs.String("db", "", "Path to the results database")
	season := fs.Int("season", 0, "Optional: only this season")
	strat := fs.String("strategy", "", "Optional: only this strategy name, e.g. MaxP2PM")
	limit := fs.Int("limit", 10, "Rows to print (0=all)")
	_ = fs.Parse(args)

	if *dbPath == "" {
		fmt.Println("--db is required")
		os.Exit(2)
	}
	st, err := store.Open(*dbPath)
	if err != nil {
		fail(err)
	}
	defer st.Close()

	records, err := st.List(context.Background(), store.Query{Season: *season, Strategy: *strat})
	if err != nil {
		fail(err)
	}

	var b bytes.Buffer
	t := table.NewWriter()
	t.SetOutputMirror(&b)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Rank", "Strategy", "Season", "Team", "Points", "Value"})
	for i, r := range analysis.Rank(records) {
		if *limit > 0 && i >= *limit {
			break
		}
		t.AppendRow(table.Row{r.Rank, r.Strategy, r.Season, r.Team, r.TotalPoints, fmt.Sprintf("%.1f", r.TotalValue)})
	}
	t.Render()

	s := table.NewWriter()
	s.SetOutputMirror(&b)
	s.SetStyle(table.StyleRounded)
	s.AppendHeader(table.Row{"Strategy", "Season", "Runs", "Mean", "P05", "P95", "Max", "Best team"})
	for _, p := range analysis.PotentialByStrategy(records) {
		s.AppendRow(table.Row{
			p.Strategy,
			p.Season,
			p.Runs,
			fmt.Sprintf("%.1f", p.MeanPoints),
			fmt.Sprintf("%.1f", p.P05Points),
			fmt.Sprintf("%.1f", p.P95Points),
			fmt.Sprintf("%.0f", p.MaxPoints),
			p.BestTeam,
		})
	}
	s.Render()
	fmt.Print(b.String())
}
