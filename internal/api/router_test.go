package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"f1-fantasy/internal/api/models"
	"f1-fantasy/internal/data"
	"f1-fantasy/internal/logger"
	"f1-fantasy/internal/store"
)

const driversCSV = `Season,Race,Constructor,Driver,Points,Price
2024,1,RED,VER,25,30
2024,1,RED,PER,10,20
2024,1,FER,LEC,18,20
2024,1,FER,SAI,15,18
2024,2,RED,VER,18,30
2024,2,RED,PER,8,20
2024,2,FER,LEC,25,20
2024,2,FER,SAI,12,18
`

const constructorsCSV = `Season,Race,Constructor,Points,Price
2024,1,RED,35,25
2024,1,FER,33,22
2024,2,RED,26,25
2024,2,FER,37,22
`

func setup(t *testing.T, withStore bool) (*gin.Engine, *store.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger.InitWithOutput("error", "text", &bytes.Buffer{})

	dir := t.TempDir()
	p := data.DirPaths(dir, 2024)
	require.NoError(t, os.WriteFile(p.Drivers, []byte(driversCSV), 0o644))
	require.NoError(t, os.WriteFile(p.Constructors, []byte(constructorsCSV), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes_drivers.csv"), nil, 0o644))

	deps := Deps{DataDir: dir, Cache: data.NewSeasonCache(time.Minute)}
	var st *store.Store
	if withStore {
		var err error
		st, err = store.Open(store.Memory)
		require.NoError(t, err)
		t.Cleanup(func() { st.Close() })
		deps.Store = st
	}
	return NewRouter(deps), st
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func simulateBody(strategy string) map[string]any {
	return map[string]any{
		"season": 2024,
		"team": map[string]any{
			"drivers":         []string{"PER", "SAI"},
			"constructors":    []string{"FER"},
			"starting_budget": 100,
		},
		"strategy": map[string]any{"name": strategy},
		"options":  map[string]any{"include_ledger": true, "store": true},
	}
}

func TestHealthAndStrategies(t *testing.T) {
	r, _ := setup(t, false)

	w := do(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = do(t, r, http.MethodGet, "/api/v1/strategies", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var out struct {
		Strategies []models.StrategyInfo `json:"strategies"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Len(t, out.Strategies, 4)

	w = do(t, r, http.MethodGet, "/api/v1/datasets", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"datasets":[{"season":2024,"has_odds":false}]}`, w.Body.String())

	w = do(t, r, http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSimulate(t *testing.T) {
	r, st := setup(t, true)

	w := do(t, r, http.MethodPost, "/api/v1/simulate", simulateBody("max_budget"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.SimulateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "completed", resp.Status)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "(MaxBudget)(2024)(PER,SAI)(FER)", resp.Summary.SimKey)
	assert.Equal(t, 2, resp.Summary.Races)
	assert.True(t, resp.Summary.Stored)
	require.Len(t, resp.Ledger, 2)
	assert.Equal(t, -1, resp.Ledger[0].UsedMoves)
	assert.InDelta(t, 60, resp.Ledger[0].TotalValue, 1e-9)
	assert.InDelta(t, 40, resp.Ledger[0].UnusedBudget, 1e-9)
	assert.Equal(t, resp.Ledger[1].TotalPoints, resp.Summary.TotalPoints)

	ok, err := st.Has(context.Background(), resp.Summary.SimKey)
	require.NoError(t, err)
	assert.True(t, ok)

	w = do(t, r, http.MethodGet, "/api/v1/results?season=2024", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var results models.ResultsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
	require.Len(t, results.Rankings, 1)
	assert.Equal(t, 1, results.Rankings[0].Rank)
	assert.Equal(t, resp.Summary.TotalPoints, results.Rankings[0].TotalPoints)
	require.Len(t, results.Strategies, 1)
	assert.Equal(t, "MaxBudget", results.Strategies[0].Strategy)
}

func TestSimulateErrors(t *testing.T) {
	r, _ := setup(t, false)

	cases := []struct {
		name string
		body any
		code int
		err  string
	}{
		{"malformed", map[string]any{"season": "x"}, http.StatusBadRequest, "INVALID_REQUEST"},
		{"unknown strategy", simulateBody("moneyball"), http.StatusBadRequest, "INVALID_CONFIG"},
		{"odds missing", simulateBody("betting_odds"), http.StatusBadRequest, "INVALID_CONFIG"},
	}
	missing := simulateBody("max_budget")
	missing["season"] = 1999
	cases = append(cases, struct {
		name string
		body any
		code int
		err  string
	}{"no data", missing, http.StatusNotFound, "DATASET_NOT_FOUND"})

	expensive := simulateBody("max_budget")
	expensive["team"] = map[string]any{"drivers": []string{"VER", "LEC"}, "constructors": []string{"RED"}, "starting_budget": 50}
	cases = append(cases, struct {
		name string
		body any
		code int
		err  string
	}{"over budget", expensive, http.StatusBadRequest, "INVALID_TEAM"})

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(t, r, http.MethodPost, "/api/v1/simulate", tc.body)
			assert.Equal(t, tc.code, w.Code, w.Body.String())
			var e models.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
			assert.Equal(t, tc.err, e.Error.Code)
		})
	}
}

func TestResultsWithoutStore(t *testing.T) {
	r, _ := setup(t, false)
	w := do(t, r, http.MethodGet, "/api/v1/results", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	r, _ := setup(t, false)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/simulate", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
