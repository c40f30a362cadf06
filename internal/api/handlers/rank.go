package handlers

import (
	"net/http"

	"f1-fantasy/internal/analysis"
	"f1-fantasy/internal/api/models"
	"f1-fantasy/internal/store"

	"github.com/gin-gonic/gin"
)

const defaultResultsLimit = 10

// ResultsHandler serves ranked batch results
type ResultsHandler struct {
	Store *store.Store
}

// NewResultsHandler creates a new results handler
func NewResultsHandler(st *store.Store) *ResultsHandler {
	return &ResultsHandler{Store: st}
}

// ListResults handles GET /api/v1/results
func (h *ResultsHandler) ListResults(c *gin.Context) {
	var req models.ResultsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		abort(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	if h.Store == nil {
		abort(c, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "no results store is configured")
		return
	}
	if req.Limit <= 0 {
		req.Limit = defaultResultsLimit
	}

	all, err := h.Store.List(c.Request.Context(), store.Query{Season: req.Season, Strategy: req.Strategy})
	if err != nil {
		abort(c, http.StatusInternalServerError, "STORE_ERROR", err.Error())
		return
	}

	ranked := analysis.Rank(all)
	if len(ranked) > req.Limit {
		ranked = ranked[:req.Limit]
	}
	c.JSON(http.StatusOK, models.ResultsResponse{
		Rankings:   ranked,
		Strategies: analysis.PotentialByStrategy(all),
	})
}
