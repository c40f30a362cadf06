package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"f1-fantasy/internal/api/models"
	"f1-fantasy/internal/data"

	"github.com/gin-gonic/gin"
)

// Datasets loads season data from a directory of
// <year>_drivers.csv / <year>_constructors.csv / <year>_odds.csv files.
type Datasets struct {
	Dir    string
	Window int
	Cache  *data.SeasonCache
}

func NewDatasets(dir string, cache *data.SeasonCache) *Datasets {
	return &Datasets{Dir: dir, Window: data.DefaultWindow, Cache: cache}
}

// Load returns the season's dataset, reading it on a cache miss.
func (d *Datasets) Load(season int) (*data.Dataset, error) {
	load := func() (*data.Dataset, error) {
		return data.LoadDataset(data.DirPaths(d.Dir, season), season, d.Window)
	}
	if d.Cache == nil {
		return load()
	}
	return d.Cache.GetOrLoad(season, load)
}

// Seasons lists the years with a drivers table in Dir.
func (d *Datasets) Seasons() ([]models.DatasetInfo, error) {
	matches, err := filepath.Glob(filepath.Join(d.Dir, "*_drivers.csv"))
	if err != nil {
		return nil, err
	}
	var out []models.DatasetInfo
	for _, m := range matches {
		year, err := strconv.Atoi(strings.TrimSuffix(filepath.Base(m), "_drivers.csv"))
		if err != nil {
			continue
		}
		p := data.DirPaths(d.Dir, year)
		if _, err := os.Stat(p.Constructors); err != nil {
			continue
		}
		_, oddsErr := os.Stat(p.Odds)
		out = append(out, models.DatasetInfo{Season: year, HasOdds: oddsErr == nil})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Season < out[j].Season })
	return out, nil
}

// ListDatasets handles GET /api/v1/datasets
func (d *Datasets) ListDatasets(c *gin.Context) {
	seasons, err := d.Seasons()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "DATASETS_LOAD_ERROR",
				Message: fmt.Sprintf("Failed to list datasets: %v", err),
			},
		})
		return
	}
	if seasons == nil {
		seasons = []models.DatasetInfo{}
	}
	c.JSON(http.StatusOK, gin.H{"datasets": seasons})
}
