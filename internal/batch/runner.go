// Package batch runs every starting team through every strategy in
// parallel, storing the final ledger row of each simulation.
package batch

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"f1-fantasy/internal/analysis"
	"f1-fantasy/internal/backtest"
	"f1-fantasy/internal/logger"
	"f1-fantasy/internal/model"
	"f1-fantasy/internal/store"
	"f1-fantasy/internal/strategy"
)

const (
	DefaultWorkers    = 4
	DefaultFlushEvery = 100
)

type Runner struct {
	Season    *model.Season
	StartRace int
	Engine    *backtest.Engine
	Store     *store.Store

	Workers int
	// FlushEvery is the number of finished simulations buffered before
	// they are written to the store.
	FlushEvery int
}

// Summary counts the simulations of one batch.
type Summary struct {
	BatchID string
	Total   int
	Skipped int
	Run     int
}

type job struct {
	key   string
	strat strategy.Strategy
	team  *model.Team
}

// Run simulates every (strategy, team) pair whose sim key is not already
// stored. Results finished before a failure are still written.
func (r *Runner) Run(ctx context.Context, strategies []strategy.Strategy, teams []*model.Team) (Summary, error) {
	sum := Summary{BatchID: uuid.NewString()}
	log := logger.WithBatch(sum.BatchID, r.Season.Year)

	done, err := r.Store.Keys(ctx)
	if err != nil {
		return sum, err
	}
	var jobs []job
	for _, s := range strategies {
		for _, t := range teams {
			sum.Total++
			key := backtest.SimKey(s.Name(), r.Season.Year, t)
			if done[key] {
				log.WithField("sim_key", key).Debug("Skipping stored simulation")
				sum.Skipped++
				continue
			}
			jobs = append(jobs, job{key: key, strat: s, team: t})
		}
	}
	log.WithFields(logrus.Fields{
		"total":   sum.Total,
		"skipped": sum.Skipped,
		"workers": r.workers(),
	}).Info("Batch started")

	buf := &pending{store: r.Store, log: log}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers())
	for _, j := range jobs {
		j := j
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := r.Engine.Run(r.Season, j.team, j.strat, r.StartRace)
			if err != nil {
				return fmt.Errorf("%s: %w", j.key, err)
			}
			rec, err := Record(j.key, res)
			if err != nil {
				return err
			}

			mu.Lock()
			sum.Run++
			mu.Unlock()
			if buf.add(rec) >= r.flushEvery() {
				return buf.flush(gctx)
			}
			return nil
		})
	}
	runErr := g.Wait()

	// completed simulations survive a failed batch
	if err := buf.flush(context.Background()); err != nil && runErr == nil {
		runErr = err
	}
	entry := log.WithFields(logrus.Fields{"run": sum.Run, "skipped": sum.Skipped})
	if runErr != nil {
		entry.WithError(runErr).Error("Batch failed")
		return sum, runErr
	}
	entry.Info("Batch complete")
	return sum, nil
}

// pending buffers finished records until they are written.
type pending struct {
	mu      sync.Mutex
	records []store.Record
	store   *store.Store
	log     *logrus.Entry
}

func (p *pending) add(rec store.Record) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records = append(p.records, rec)
	return len(p.records)
}

// flush writes the buffered records. On failure they are put back so a
// later flush can retry them.
func (p *pending) flush(ctx context.Context) error {
	p.mu.Lock()
	batch := p.records
	p.records = nil
	p.mu.Unlock()
	if len(batch) == 0 {
		return nil
	}
	p.log.WithField("records", len(batch)).Debug("Writing batch results")
	if err := p.store.Put(ctx, batch...); err != nil {
		p.mu.Lock()
		p.records = append(batch, p.records...)
		p.mu.Unlock()
		return err
	}
	return nil
}

func (r *Runner) workers() int {
	if r.Workers > 0 {
		return r.Workers
	}
	return DefaultWorkers
}

func (r *Runner) flushEvery() int {
	if r.FlushEvery > 0 {
		return r.FlushEvery
	}
	return DefaultFlushEvery
}

// Record summarizes a finished simulation for the store.
func Record(key string, res *backtest.Result) (store.Record, error) {
	final, ok := res.Final()
	if !ok {
		return store.Record{}, fmt.Errorf("%s: empty ledger", key)
	}
	return store.Record{
		SimKey:        key,
		RunID:         res.RunID,
		Strategy:      res.Strategy,
		Season:        res.Season,
		Team:          res.Ledger[0].Team,
		StartRace:     res.StartRace,
		Races:         len(res.Ledger),
		TotalPoints:   final.TotalPoints,
		StartingValue: final.StartingValue,
		TotalValue:    final.TotalValue,
		UnusedBudget:  final.UnusedBudget,
	}, nil
}

// Teams builds a starting team from each pick.
func Teams(picks []analysis.Pick, race *model.Race, budget float64) ([]*model.Team, error) {
	out := make([]*model.Team, 0, len(picks))
	for _, p := range picks {
		t, err := p.Team(race, budget)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
