// Package api wires the HTTP handlers into a gin router.
package api

import (
	"net/http"

	"f1-fantasy/internal/api/handlers"
	"f1-fantasy/internal/api/middleware"
	"f1-fantasy/internal/data"
	"f1-fantasy/internal/lp"
	"f1-fantasy/internal/store"

	"github.com/gin-gonic/gin"
)

// Deps are the shared services behind the handlers.
type Deps struct {
	DataDir string
	Cache   *data.SeasonCache
	Solver  lp.Solver
	// Store may be nil, which disables the results endpoint.
	Store *store.Store
}

func NewRouter(d Deps) *gin.Engine {
	router := gin.New()

	// Apply middleware
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorHandler())

	// Initialize handlers
	datasets := handlers.NewDatasets(d.DataDir, d.Cache)
	simulateHandler := handlers.NewSimulateHandler(datasets, d.Solver, d.Store)
	strategyHandler := handlers.NewStrategyHandler()
	resultsHandler := handlers.NewResultsHandler(d.Store)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API routes
	v1 := router.Group("/api/v1")
	{
		v1.POST("/simulate", simulateHandler.Simulate)
		v1.GET("/strategies", strategyHandler.ListStrategies)
		v1.GET("/datasets", datasets.ListDatasets)
		v1.GET("/results", resultsHandler.ListResults)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})
	return router
}
