// Package handlers provides HTTP handlers for the game workflow.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/aristath/baccarat/internal/domain"
	"github.com/aristath/baccarat/internal/modules/arbiter"
	"github.com/aristath/baccarat/internal/modules/game"
	"github.com/aristath/baccarat/internal/modules/roadmap"
	"github.com/rs/zerolog"
)

// Handler handles game HTTP requests
type Handler struct {
	service *game.Service
	log     zerolog.Logger
}

// NewHandler creates a new game handler
func NewHandler(service *game.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "game").Logger(),
	}
}

// predictRequest accepts the mode under either "mode" or the older "type" key
type predictRequest struct {
	Mode        string             `json:"mode"`
	Type        string             `json:"type"`
	PlayerCards []domain.CardToken `json:"player_cards"`
	BankerCards []domain.CardToken `json:"banker_cards"`
}

// decodeBody decodes an optional JSON body. An empty body leaves v untouched.
func decodeBody(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// HandleRecordRound handles POST /api/rounds
func (h *Handler) HandleRecordRound(w http.ResponseWriter, r *http.Request) {
	var req game.RoundInput
	if err := decodeBody(r, &req); err != nil {
		h.log.Warn().Err(err).Msg("Failed to decode request body")
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	recorded, err := h.service.RecordRound(r.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidResult) {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error().Err(err).Msg("Failed to record round")
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"message":      "Result recorded",
		"record":       recorded.Record,
		"shoe_info":    recorded.ShoeInfo,
		"shoe_changed": recorded.ShoeChanged,
	})
}

// HandleGetHistory handles GET /api/rounds
func (h *Handler) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.History(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load history")
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"history": records,
	})
}

// HandleClearHistory handles DELETE /api/rounds
func (h *Handler) HandleClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ClearHistory(r.Context()); err != nil {
		h.log.Error().Err(err).Msg("Failed to clear history")
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"message":   "History cleared",
		"shoe_info": h.service.ShoeInfo(),
	})
}

// HandlePredict handles POST /api/predict
func (h *Handler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if err := decodeBody(r, &req); err != nil {
		h.log.Warn().Err(err).Msg("Failed to decode request body")
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	mode := req.Mode
	if mode == "" {
		mode = req.Type
	}

	resp, err := h.service.Predict(r.Context(), game.PredictRequest{
		Mode:        mode,
		PlayerCards: req.PlayerCards,
		BankerCards: req.BankerCards,
	})
	if err != nil {
		if errors.Is(err, arbiter.ErrUnknownMode) {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error().Err(err).Msg("Prediction failed")
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// HandleTrain handles POST /api/model/train
func (h *Handler) HandleTrain(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Train(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientData) {
			h.writeJSON(w, http.StatusOK, map[string]interface{}{
				"success": false,
				"message": err.Error(),
			})
			return
		}
		h.log.Error().Err(err).Msg("Training failed")
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"message":  "Model trained, holdout accuracy " + strconv.FormatFloat(result.Accuracy*100, 'f', 1, 64) + "%",
		"accuracy": result.Accuracy,
		"result":   result,
	})
}

// HandleModelStatus handles GET /api/model
func (h *Handler) HandleModelStatus(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"model":   h.service.ModelStatus(),
	})
}

// HandleNewShoe handles POST /api/shoes
func (h *Handler) HandleNewShoe(w http.ResponseWriter, r *http.Request) {
	info := h.service.NewShoe()
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"message":   "New shoe started",
		"shoe_info": info,
	})
}

// HandleCurrentShoe handles GET /api/shoes/current
func (h *Handler) HandleCurrentShoe(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"shoe_info": h.service.ShoeInfo(),
	})
}

// HandleRoadMap handles GET /api/roadmap?rows=&cols=
func (h *Handler) HandleRoadMap(w http.ResponseWriter, r *http.Request) {
	rows, err := intParam(r, "rows", roadmap.MaxRows)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("rows must be an integer between 1 and %d", roadmap.MaxRows))
		return
	}
	cols, err := intParam(r, "cols", roadmap.MaxCols)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("cols must be an integer between 1 and %d", roadmap.MaxCols))
		return
	}

	grid, err := h.service.RoadMap(r.Context(), rows, cols)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to build road map")
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"roadmap": grid,
	})
}

// intParam reads an optional integer query parameter in [1, limit], 0 when absent.
func intParam(r *http.Request, name string, limit int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 || n > limit {
		return 0, errors.New("invalid " + name)
	}
	return n, nil
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
