package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aristath/baccarat/internal/modules/game"
	"github.com/aristath/baccarat/internal/modules/history"
	"github.com/aristath/baccarat/internal/modules/sequence"
	"github.com/aristath/baccarat/internal/modules/shoe"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) *chi.Mux {
	t.Helper()
	logger := zerolog.New(nil).Level(zerolog.Disabled)

	store := history.NewFileStore(filepath.Join(t.TempDir(), "game_history.json"), logger)
	cfg := sequence.DefaultTrainConfig()
	cfg.Epochs = 5
	predictor := sequence.NewPredictor(store, history.ModelPath(store.Path()), cfg, logger)
	service := game.NewService(store, predictor, shoe.NewTracker(80), nil, logger)
	handler := NewHandler(service, logger)

	router := chi.NewRouter()
	router.Route("/api", handler.RegisterRoutes)
	handler.RegisterLegacyRoutes(router)
	return router
}

func do(t *testing.T, router http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	return w, response
}

func TestHandleRecordRound(t *testing.T) {
	router := setupRouter(t)

	w, resp := do(t, router, "POST", "/api/rounds", map[string]interface{}{
		"result":       "banker",
		"player_cards": []interface{}{"K", 7},
		"banker_cards": []interface{}{2, "3"},
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, true, resp["success"])

	record := resp["record"].(map[string]interface{})
	assert.Equal(t, "banker", record["result"])
	assert.Equal(t, []interface{}{13.0, 7.0}, record["player_cards"])
	assert.Equal(t, 1.0, record["shoe_id"])

	shoeInfo := resp["shoe_info"].(map[string]interface{})
	assert.Equal(t, 1.0, shoeInfo["current_round"])
}

func TestHandleRecordRound_InvalidResult(t *testing.T) {
	router := setupRouter(t)

	w, resp := do(t, router, "POST", "/api/rounds", map[string]interface{}{"result": "dragon"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, resp["success"])
	assert.Contains(t, resp["error"], "invalid result")

	req := httptest.NewRequest("POST", "/api/rounds", strings.NewReader("{broken"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleGetHistoryAndClear(t *testing.T) {
	router := setupRouter(t)
	do(t, router, "POST", "/add_result", map[string]interface{}{"result": "player"})
	do(t, router, "POST", "/api/add_result", map[string]interface{}{"result": "tie"})

	w, resp := do(t, router, "GET", "/api/rounds", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, resp["history"], 2)

	_, legacy := do(t, router, "GET", "/get_history", nil)
	assert.Len(t, legacy["history"], 2)

	w, resp = do(t, router, "DELETE", "/api/rounds", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["success"])

	_, resp = do(t, router, "GET", "/api/history", nil)
	assert.Empty(t, resp["history"])
}

func TestHandlePredict(t *testing.T) {
	router := setupRouter(t)

	w, resp := do(t, router, "POST", "/api/predict", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "combined", resp["mode"])
	assert.Equal(t, "ai_fallback", resp["reason_code"])
	assert.Equal(t, 0.51, resp["confidence"])
	assert.Nil(t, resp["formula_result"])
	assert.NotEmpty(t, resp["prediction_id"])

	w, resp = do(t, router, "POST", "/predict", map[string]interface{}{
		"type":         "formula_only",
		"player_cards": []interface{}{"2", "3"},
		"banker_cards": []interface{}{"6", "9"},
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "banker", resp["prediction"])
	assert.Equal(t, -26.0, resp["formula_score"])
	assert.Equal(t, "formula_only", resp["reason_code"])
}

func TestHandlePredict_NoPredictionReportsFailure(t *testing.T) {
	router := setupRouter(t)

	w, resp := do(t, router, "POST", "/api/predict", map[string]interface{}{"mode": "formula_only"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, resp["success"])
	assert.Nil(t, resp["prediction"])
	assert.Equal(t, "formula_unavailable", resp["reason_code"])
}

func TestHandlePredict_UnknownMode(t *testing.T) {
	router := setupRouter(t)

	w, resp := do(t, router, "POST", "/api/predict", map[string]interface{}{"mode": "streak"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, resp["success"])
}

func TestHandleTrain(t *testing.T) {
	router := setupRouter(t)

	w, resp := do(t, router, "POST", "/api/model/train", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, "insufficient training data, add more game results", resp["message"])

	for i := 0; i < 16; i++ {
		result := "banker"
		if i%3 == 2 {
			result = "player"
		}
		do(t, router, "POST", "/api/rounds", map[string]interface{}{"result": result})
	}

	w, resp = do(t, router, "POST", "/train_model", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["success"])
	assert.Contains(t, resp, "accuracy")

	_, resp = do(t, router, "GET", "/api/model", nil)
	model := resp["model"].(map[string]interface{})
	assert.Equal(t, true, model["trained"])
}

func TestHandleShoes(t *testing.T) {
	router := setupRouter(t)

	w, resp := do(t, router, "POST", "/api/shoes", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2.0, resp["shoe_info"].(map[string]interface{})["shoe_id"])

	_, resp = do(t, router, "POST", "/new_shoe", nil)
	assert.Equal(t, 3.0, resp["shoe_info"].(map[string]interface{})["shoe_id"])

	_, resp = do(t, router, "GET", "/api/shoes/current", nil)
	info := resp["shoe_info"].(map[string]interface{})
	assert.Equal(t, 3.0, info["shoe_id"])
	assert.Equal(t, 80.0, info["max_rounds"])

	_, resp = do(t, router, "POST", "/clear_history", nil)
	assert.Equal(t, 1.0, resp["shoe_info"].(map[string]interface{})["shoe_id"])
}

func TestHandleRoadMap(t *testing.T) {
	router := setupRouter(t)
	do(t, router, "POST", "/api/rounds", map[string]interface{}{"result": "banker"})

	w, resp := do(t, router, "GET", "/api/roadmap?rows=2&cols=2", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	grid := resp["roadmap"].(map[string]interface{})
	assert.Equal(t, 2.0, grid["rows"])
	assert.Equal(t, []interface{}{
		[]interface{}{"B", ""},
		[]interface{}{"", ""},
	}, grid["cells"])

	w, _ = do(t, router, "GET", "/api/roadmap?rows=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleRoadMap_RejectsOversizeGrid(t *testing.T) {
	router := setupRouter(t)

	tests := []struct {
		query  string
		status int
	}{
		{query: "rows=4000&cols=4000", status: http.StatusBadRequest},
		{query: "rows=21", status: http.StatusBadRequest},
		{query: "cols=201", status: http.StatusBadRequest},
		{query: "rows=20&cols=200", status: http.StatusOK},
	}

	for _, tt := range tests {
		w, resp := do(t, router, "GET", "/api/roadmap?"+tt.query, nil)
		assert.Equal(t, tt.status, w.Code, tt.query)
		if tt.status == http.StatusBadRequest {
			assert.Equal(t, false, resp["success"], tt.query)
			assert.Contains(t, resp["error"], "between 1 and", tt.query)
		}
	}
}

func TestRegisterRoutes(t *testing.T) {
	assert.NotPanics(t, func() {
		setupRouter(t)
	}, "RegisterRoutes should not panic")
}
