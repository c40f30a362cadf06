package main

import (
	"fmt"
	"os"
	"time"

	"f1-fantasy/internal/api"
	"f1-fantasy/internal/data"
	"f1-fantasy/internal/logger"
	"f1-fantasy/internal/lp"
	"f1-fantasy/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	log := logger.Init("", "")

	// Get configuration from environment
	port := os.Getenv("API_PORT")
	if port == "" {
		port = "8080"
	}
	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "./data"
	}
	if info, err := os.Stat(dataDir); err == nil && info.IsDir() {
		log.WithField("data_dir", dataDir).Info("Data directory found")
	} else {
		log.WithField("data_dir", dataDir).WithError(err).Warn("Data directory not found")
	}

	// Set up Gin router
	if os.Getenv("API_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	deps := api.Deps{
		DataDir: dataDir,
		Cache:   data.NewSeasonCache(30 * time.Minute),
		Solver:  lp.NewBranchAndBound(),
	}
	if dbPath := os.Getenv("RESULTS_DB"); dbPath != "" {
		st, err := store.Open(dbPath)
		if err != nil {
			log.WithError(err).Fatal("Failed to open results store")
		}
		defer st.Close()
		deps.Store = st
		log.WithField("results_db", dbPath).Info("Results store opened")
	}

	router := api.NewRouter(deps)

	// Start server
	addr := fmt.Sprintf(":%s", port)
	log.WithFields(logrus.Fields{"addr": addr, "mode": gin.Mode()}).Info("Starting API server")
	if err := router.Run(addr); err != nil {
		log.WithError(err).Fatal("Failed to start server")
	}
}
