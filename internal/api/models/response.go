package models

import "f1-fantasy/internal/analysis"

// SimulateResponse represents the response from a season simulation
type SimulateResponse struct {
	ID      string          `json:"id,omitempty"`
	Status  string          `json:"status"`
	Summary SimulateSummary `json:"summary"`
	Ledger  []LedgerRow     `json:"ledger,omitempty"`
}

// SimulateSummary contains aggregated simulation results
type SimulateSummary struct {
	SimKey        string  `json:"sim_key"`
	Strategy      string  `json:"strategy"`
	Season        int     `json:"season"`
	StartRace     int     `json:"start_race"`
	Races         int     `json:"races"`
	TotalPoints   int     `json:"total_points"`
	StartingValue float64 `json:"starting_value"`
	FinalValue    float64 `json:"final_value"`
	UnusedBudget  float64 `json:"unused_budget"`
	FinalTeam     string  `json:"final_team"`
	Stored        bool    `json:"stored"`
}

// AssetLine is one rostered asset
type AssetLine struct {
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
	Points int     `json:"points"`
}

// LedgerRow represents one race in the simulation ledger
type LedgerRow struct {
	Race          int         `json:"race"`
	Team          string      `json:"team"`
	Drivers       []AssetLine `json:"drivers"`
	Constructors  []AssetLine `json:"constructors"`
	TotalValue    float64     `json:"total_value"`
	StartingValue float64     `json:"starting_value"`
	Points        int         `json:"points"`
	TotalPoints   int         `json:"total_points"`
	UnusedBudget  float64     `json:"unused_budget"`
	TotalBudget   float64     `json:"total_budget"`
	MaxMoves      int         `json:"max_moves"`
	UsedMoves     int         `json:"used_moves"` // -1 on the starting race
	DRSDriver     string      `json:"drs_driver,omitempty"`
}

// ResultsResponse represents ranked stored results
type ResultsResponse struct {
	Rankings   []analysis.Ranked            `json:"rankings"`
	Strategies []analysis.StrategyPotential `json:"strategies"`
}

// StrategyInfo represents information about a strategy
type StrategyInfo struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  []ParameterInfo `json:"parameters"`
}

// ParameterInfo describes a strategy parameter
type ParameterInfo struct {
	Name        string      `json:"name"`
	Type        string      `json:"type"` // "int", "string"
	Description string      `json:"description"`
	Default     interface{} `json:"default,omitempty"`
}

// DatasetInfo represents a season found in the data directory
type DatasetInfo struct {
	Season  int  `json:"season"`
	HasOdds bool `json:"has_odds"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
