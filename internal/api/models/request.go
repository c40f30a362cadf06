package models

import "f1-fantasy/internal/strategy"

// SimulateRequest represents the request body for simulating a season
type SimulateRequest struct {
	Season   int             `json:"season" binding:"required"`
	Team     TeamConfig      `json:"team" binding:"required"`
	Strategy StrategyConfig  `json:"strategy" binding:"required"`
	Options  SimulateOptions `json:"options,omitempty"`
}

// TeamConfig is the starting roster
type TeamConfig struct {
	Drivers        []string `json:"drivers" binding:"required,min=1"`
	Constructors   []string `json:"constructors" binding:"required,min=1"`
	StartingBudget float64  `json:"starting_budget,omitempty"` // default: 100
	StartRace      int      `json:"start_race,omitempty"`      // default: 1
}

// StrategyConfig defines strategy and its parameters
type StrategyConfig struct {
	Name   string          `json:"name" binding:"required"`
	Params strategy.Params `json:"params,omitempty"`
}

// SimulateOptions contains optional simulation parameters
type SimulateOptions struct {
	IncludeLedger bool `json:"include_ledger,omitempty"` // default: false
	Store         bool `json:"store,omitempty"`          // save the final row to the results store
}

// ResultsRequest filters stored batch results
type ResultsRequest struct {
	Season   int    `form:"season,omitempty"`
	Strategy string `form:"strategy,omitempty"`
	Limit    int    `form:"limit,omitempty"` // default: 10
}
