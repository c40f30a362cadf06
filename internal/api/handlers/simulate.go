package handlers

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"

	"f1-fantasy/internal/api/models"
	"f1-fantasy/internal/backtest"
	"f1-fantasy/internal/batch"
	"f1-fantasy/internal/logger"
	"f1-fantasy/internal/lp"
	"f1-fantasy/internal/model"
	"f1-fantasy/internal/store"
	"f1-fantasy/internal/strategy"

	"github.com/gin-gonic/gin"
)

const defaultStartingBudget = 100.0

// SimulateHandler handles season simulation requests
type SimulateHandler struct {
	Datasets *Datasets
	Solver   lp.Solver
	// Store is optional; without it results are never saved.
	Store *store.Store
}

// NewSimulateHandler creates a new simulate handler
func NewSimulateHandler(datasets *Datasets, solver lp.Solver, st *store.Store) *SimulateHandler {
	if solver == nil {
		solver = lp.NewBranchAndBound()
	}
	return &SimulateHandler{Datasets: datasets, Solver: solver, Store: st}
}

func abort(c *gin.Context, status int, code, msg string) {
	c.JSON(status, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    code,
			Message: msg,
		},
	})
}

// Simulate handles POST /api/v1/simulate
func (h *SimulateHandler) Simulate(c *gin.Context) {
	var req models.SimulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	log := logger.WithHTTPContext(c.Request.Method, c.Request.URL.Path, c.ClientIP()).
		WithField("season", req.Season)

	kind, err := strategy.ParseKind(req.Strategy.Name)
	if err != nil {
		abort(c, http.StatusBadRequest, "INVALID_CONFIG", err.Error())
		return
	}

	ds, err := h.Datasets.Load(req.Season)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			abort(c, http.StatusNotFound, "DATASET_NOT_FOUND", fmt.Sprintf("no data for season %d", req.Season))
			return
		}
		log.WithError(err).Error("Failed to load season data")
		abort(c, http.StatusInternalServerError, "DATA_LOAD_ERROR", err.Error())
		return
	}

	var odds strategy.OddsSource
	if ds.Odds != nil {
		odds = ds.Odds
	}
	strat, err := strategy.New(kind, req.Strategy.Params, odds)
	if err != nil {
		abort(c, http.StatusBadRequest, "INVALID_CONFIG", err.Error())
		return
	}

	team, startRace, err := buildTeam(ds.Season, req.Team)
	if err != nil {
		abort(c, http.StatusBadRequest, "INVALID_TEAM", err.Error())
		return
	}

	engine := backtest.New(h.Solver)
	result, err := engine.Run(ds.Season, team, strat, startRace)
	if err != nil {
		if errors.Is(err, strategy.ErrNotOptimal) {
			abort(c, http.StatusUnprocessableEntity, "SIMULATION_INFEASIBLE", err.Error())
			return
		}
		log.WithError(err).Error("Simulation failed")
		abort(c, http.StatusInternalServerError, "SIMULATION_ERROR", err.Error())
		return
	}

	resp := buildResponse(result, team, req.Options.IncludeLedger)
	if req.Options.Store && h.Store != nil {
		rec, err := batch.Record(resp.Summary.SimKey, result)
		if err == nil {
			err = h.Store.Put(c.Request.Context(), rec)
		}
		if err != nil {
			log.WithError(err).Error("Failed to store result")
			abort(c, http.StatusInternalServerError, "STORE_ERROR", err.Error())
			return
		}
		resp.Summary.Stored = true
	}
	c.JSON(http.StatusOK, resp)
}

func buildTeam(season *model.Season, cfg models.TeamConfig) (*model.Team, int, error) {
	startRace := cfg.StartRace
	if startRace == 0 {
		nums := season.RaceNumbers()
		if len(nums) == 0 {
			return nil, 0, fmt.Errorf("season %d has no races", season.Year)
		}
		startRace = nums[0]
	}
	race, ok := season.Race(startRace)
	if !ok {
		return nil, 0, fmt.Errorf("season %d has no race %d", season.Year, startRace)
	}
	budget := cfg.StartingBudget
	if budget == 0 {
		budget = defaultStartingBudget
	}
	team, err := model.NewTeamFromLists(cfg.Drivers, cfg.Constructors, race, budget)
	if err != nil {
		return nil, 0, err
	}
	if team.UnusedBudget < 0 {
		return nil, 0, fmt.Errorf("team costs %.2f more than the starting budget", -team.UnusedBudget)
	}
	return team, startRace, nil
}

func buildResponse(result *backtest.Result, start *model.Team, includeLedger bool) models.SimulateResponse {
	resp := models.SimulateResponse{
		ID:     result.RunID,
		Status: "completed",
		Summary: models.SimulateSummary{
			SimKey:      backtest.SimKey(result.Strategy, result.Season, start),
			Strategy:    result.Strategy,
			Season:      result.Season,
			StartRace:   result.StartRace,
			Races:       len(result.Ledger),
			TotalPoints: result.TotalPoints,
		},
	}
	if final, ok := result.Final(); ok {
		resp.Summary.StartingValue = final.StartingValue
		resp.Summary.FinalValue = final.TotalValue
		resp.Summary.UnusedBudget = final.UnusedBudget
		resp.Summary.FinalTeam = final.Team
	}
	if includeLedger {
		resp.Ledger = make([]models.LedgerRow, len(result.Ledger))
		for i, r := range result.Ledger {
			resp.Ledger[i] = models.LedgerRow{
				Race:          r.Race,
				Team:          r.Team,
				Drivers:       assetLines(r.Drivers),
				Constructors:  assetLines(r.Constructors),
				TotalValue:    r.TotalValue,
				StartingValue: r.StartingValue,
				Points:        r.Points,
				TotalPoints:   r.TotalPoints,
				UnusedBudget:  r.UnusedBudget,
				TotalBudget:   r.TotalBudget,
				MaxMoves:      r.MaxMoves,
				UsedMoves:     r.UsedMoves,
				DRSDriver:     r.DRSDriver,
			}
		}
	}
	return resp
}

func assetLines(lines []backtest.AssetLine) []models.AssetLine {
	out := make([]models.AssetLine, len(lines))
	for i, l := range lines {
		out[i] = models.AssetLine{Name: l.Name, Price: l.Price, Points: l.Points}
	}
	return out
}
