package handlers

import (
	"net/http"

	"f1-fantasy/internal/api/models"
	"f1-fantasy/internal/logger"
	"f1-fantasy/internal/strategy"

	"github.com/gin-gonic/gin"
)

// StrategyHandler handles strategy-related requests
type StrategyHandler struct{}

// NewStrategyHandler creates a new strategy handler
func NewStrategyHandler() *StrategyHandler {
	return &StrategyHandler{}
}

// ListStrategies handles GET /api/v1/strategies
func (h *StrategyHandler) ListStrategies(c *gin.Context) {
	d := strategy.DefaultParams()
	strategies := []models.StrategyInfo{
		{
			Name:        string(strategy.KindMaxBudget),
			Description: "Spends as much of the budget as possible within the allowed moves.",
			Parameters:  []models.ParameterInfo{},
		},
		{
			Name:        string(strategy.KindZeroStop),
			Description: "Keeps the roster, replacing only assets that are no longer available, while maximizing spend.",
			Parameters:  []models.ParameterInfo{},
		},
		{
			Name:        string(strategy.KindMaxP2PM),
			Description: "Maximizes rolling points-squared-per-million. Unlimited moves on the unlock race; DRS to the best recent scorer.",
			Parameters: []models.ParameterInfo{
				{
					Name:        "p2pm_metric",
					Type:        "string",
					Description: "Derived metric to maximize",
					Default:     d.P2PMMetric,
				},
				{
					Name:        "points_metric",
					Type:        "string",
					Description: "Derived metric used to pick the DRS driver",
					Default:     d.PointsMetric,
				},
				{
					Name:        "unlock_race",
					Type:        "int",
					Description: "Race before which the whole roster may be replaced",
					Default:     d.UnlockRace,
				},
			},
		},
		{
			Name:        string(strategy.KindBettingOdds),
			Description: "Maximizes implied win probability from betting odds, limiting drivers that share a constructor on the roster.",
			Parameters: []models.ParameterInfo{
				{
					Name:        "max_concentration",
					Type:        "int",
					Description: "Maximum count of selected teammate pairs plus selected driver/own-constructor pairs",
					Default:     d.MaxConcentration,
				},
			},
		},
	}

	logger.WithHTTPContext(c.Request.Method, c.Request.URL.Path, c.ClientIP()).
		WithField("count", len(strategies)).Debug("Listing strategies")
	c.JSON(http.StatusOK, gin.H{"strategies": strategies})
}
