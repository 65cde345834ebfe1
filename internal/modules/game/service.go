// Package game is the owning workflow around the history store, the shoe
// tracker, the sequence predictor and the arbiter. Every operation runs to
// completion under one lock, which gives each storage path a single logical
// session.
package game

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aristath/baccarat/internal/domain"
	"github.com/aristath/baccarat/internal/events"
	"github.com/aristath/baccarat/internal/modules/arbiter"
	"github.com/aristath/baccarat/internal/modules/formula"
	"github.com/aristath/baccarat/internal/modules/history"
	"github.com/aristath/baccarat/internal/modules/roadmap"
	"github.com/aristath/baccarat/internal/modules/sequence"
	"github.com/aristath/baccarat/internal/modules/shoe"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const moduleName = "game"

// Predictor is the part of the sequence predictor the workflow depends on
type Predictor interface {
	PredictNext(ctx context.Context) sequence.Prediction
	Train(ctx context.Context) (sequence.TrainResult, error)
	Reset() error
	Status() sequence.Status
}

// Publisher receives game events
type Publisher interface {
	Publish(module string, data events.EventData)
}

// RoundInput is a round as reported by a caller
type RoundInput struct {
	Result      string             `json:"result"`
	PlayerCards []domain.CardToken `json:"player_cards,omitempty"`
	BankerCards []domain.CardToken `json:"banker_cards,omitempty"`
}

// RecordedRound is the outcome of RecordRound
type RecordedRound struct {
	Record      domain.RoundRecord `json:"record"`
	ShoeInfo    shoe.Info          `json:"shoe_info"`
	ShoeChanged bool               `json:"shoe_changed"`
}

// PredictRequest selects a mode and optionally carries the current hands
type PredictRequest struct {
	Mode        string             `json:"mode"`
	PlayerCards []domain.CardToken `json:"player_cards,omitempty"`
	BankerCards []domain.CardToken `json:"banker_cards,omitempty"`
}

// PredictionResponse is the full answer to a prediction request
type PredictionResponse struct {
	Success       bool            `json:"success"`
	PredictionID  string          `json:"prediction_id"`
	Prediction    *domain.Result  `json:"prediction"`
	Confidence    float64         `json:"confidence"`
	Reason        string          `json:"reason"`
	ReasonCode    arbiter.Reason  `json:"reason_code"`
	Mode          arbiter.Mode    `json:"mode"`
	AIResult      *domain.Result  `json:"ai_result"`
	AIConfidence  *float64        `json:"ai_confidence"`
	AISource      string          `json:"ai_source,omitempty"`
	FormulaResult *domain.Result  `json:"formula_result"`
	FormulaScore  *int            `json:"formula_score"`
	Formula       *formula.Result `json:"formula,omitempty"`
}

// Service runs the game workflow
type Service struct {
	store     history.Store
	predictor Predictor
	tracker   *shoe.Tracker
	bus       Publisher
	log       zerolog.Logger
	now       func() time.Time

	mu            sync.Mutex
	primed        bool
	lastTimestamp float64
	totalRounds   int
}

// NewService wires the workflow. bus may be nil.
func NewService(
	store history.Store,
	predictor Predictor,
	tracker *shoe.Tracker,
	bus Publisher,
	log zerolog.Logger,
) *Service {
	return &Service{
		store:     store,
		predictor: predictor,
		tracker:   tracker,
		bus:       bus,
		log:       log.With().Str("service", "game").Logger(),
		now:       time.Now,
	}
}

func (s *Service) publish(data events.EventData) {
	if s.bus != nil {
		s.bus.Publish(moduleName, data)
	}
}

// prime reads the last timestamp and round count from storage once.
func (s *Service) prime(ctx context.Context) error {
	if s.primed {
		return nil
	}
	records, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	s.totalRounds = len(records)
	if n := len(records); n > 0 {
		s.lastTimestamp = records[n-1].Timestamp
	}
	s.primed = true
	return nil
}

// RecordRound validates and appends one round. The record is stamped with
// the shoe id in effect after the tracker counted the round. A failed
// append leaves the tracker untouched.
func (s *Service) RecordRound(ctx context.Context, in RoundInput) (RecordedRound, error) {
	result, err := domain.ParseResult(in.Result)
	if err != nil {
		return RecordedRound{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.prime(ctx); err != nil {
		return RecordedRound{}, fmt.Errorf("failed to read history: %w", err)
	}

	previousShoe := s.tracker.Info().ShoeID
	next := *s.tracker
	info := next.RecordRound()

	ts := float64(s.now().UnixNano()) / float64(time.Second)
	if ts < s.lastTimestamp {
		ts = s.lastTimestamp
	}

	rec := domain.RoundRecord{
		Result:      result,
		PlayerCards: domain.Ranks(in.PlayerCards),
		BankerCards: domain.Ranks(in.BankerCards),
		ShoeID:      info.ShoeID,
		Timestamp:   ts,
	}
	if err := s.store.Append(ctx, rec); err != nil {
		return RecordedRound{}, fmt.Errorf("failed to record round: %w", err)
	}

	*s.tracker = next
	s.lastTimestamp = ts
	s.totalRounds++

	changed := info.ShoeID != previousShoe
	s.log.Info().
		Str("result", string(result)).
		Int("shoe_id", info.ShoeID).
		Int("current_round", info.CurrentRound).
		Bool("shoe_changed", changed).
		Msg("Round recorded")

	s.publish(&events.RoundRecordedData{
		Result:       string(result),
		ShoeID:       info.ShoeID,
		CurrentRound: info.CurrentRound,
		TotalRounds:  s.totalRounds,
	})
	if changed {
		s.publish(&events.ShoeChangedData{PreviousShoeID: previousShoe, ShoeID: info.ShoeID})
	}

	return RecordedRound{Record: rec, ShoeInfo: info, ShoeChanged: changed}, nil
}

// Predict combines the sequence model with the card formula under the
// requested mode. It only fails for an unknown mode.
func (s *Service) Predict(ctx context.Context, req PredictRequest) (PredictionResponse, error) {
	mode, err := arbiter.ParseMode(req.Mode)
	if err != nil {
		return PredictionResponse{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ai := s.predictor.PredictNext(ctx)
	aiOutcome := &arbiter.AIOutcome{Result: ai.Result, Confidence: ai.Confidence}

	var formulaOutcome *arbiter.FormulaOutcome
	formulaResult, ok := formula.Evaluate(req.PlayerCards, req.BankerCards)
	if ok {
		formulaOutcome = &arbiter.FormulaOutcome{Result: formulaResult.Prediction, Score: formulaResult.Score}
	}

	decision := arbiter.Decide(mode, aiOutcome, formulaOutcome)

	aiResult := ai.Result
	aiConfidence := ai.Confidence
	resp := PredictionResponse{
		Success:      decision.Prediction != nil,
		PredictionID: uuid.NewString(),
		Prediction:   decision.Prediction,
		Confidence:   decision.Confidence,
		Reason:       decision.Message(),
		ReasonCode:   decision.Reason,
		Mode:         mode,
		AIResult:     &aiResult,
		AIConfidence: &aiConfidence,
		AISource:     ai.Source,
	}
	if ok {
		fr := formulaResult.Prediction
		score := formulaResult.Score
		resp.FormulaResult = &fr
		resp.FormulaScore = &score
		resp.Formula = &formulaResult
	}

	event := &events.PredictionMadeData{
		PredictionID: resp.PredictionID,
		Confidence:   resp.Confidence,
		ReasonCode:   string(resp.ReasonCode),
		Mode:         string(mode),
	}
	if resp.Prediction != nil {
		event.Prediction = string(*resp.Prediction)
	}

	s.log.Debug().
		Str("prediction_id", resp.PredictionID).
		Str("mode", string(mode)).
		Str("reason", string(decision.Reason)).
		Float64("confidence", decision.Confidence).
		Str("ai_source", ai.Source).
		Bool("formula", ok).
		Msg("Prediction made")
	s.publish(event)

	return resp, nil
}

// Train explicitly retrains the model on the current history.
func (s *Service) Train(ctx context.Context) (sequence.TrainResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.predictor.Train(ctx)
	if err != nil {
		return sequence.TrainResult{}, err
	}
	s.publish(&events.ModelTrainedData{
		Accuracy: result.Accuracy,
		Examples: result.Examples,
		Saved:    result.Saved,
	})
	return result, nil
}

// ClearHistory empties the log, deletes the model artifact and resets the
// shoe tracker to shoe 1.
func (s *Service) ClearHistory(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	s.tracker.Reset()
	s.primed = true
	s.lastTimestamp = 0
	s.totalRounds = 0

	if err := s.predictor.Reset(); err != nil {
		return fmt.Errorf("failed to reset model: %w", err)
	}

	s.log.Info().Msg("History cleared")
	s.publish(&events.HistoryClearedData{ShoeID: s.tracker.Info().ShoeID})
	return nil
}

// NewShoe forces a new shoe
func (s *Service) NewShoe() shoe.Info {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous := s.tracker.Info().ShoeID
	s.tracker.NewShoe()
	info := s.tracker.Info()

	s.log.Info().Int("shoe_id", info.ShoeID).Msg("New shoe started")
	s.publish(&events.ShoeChangedData{PreviousShoeID: previous, ShoeID: info.ShoeID, Manual: true})
	return info
}

// ShoeInfo returns the current shoe snapshot
func (s *Service) ShoeInfo() shoe.Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker.Info()
}

// History returns every recorded round in order
func (s *Service) History(ctx context.Context) ([]domain.RoundRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Load(ctx)
}

// RoadMap renders the history as a bead road
func (s *Service) RoadMap(ctx context.Context, rows, cols int) (roadmap.Grid, error) {
	records, err := s.History(ctx)
	if err != nil {
		return roadmap.Grid{}, err
	}
	return roadmap.Build(records, rows, cols), nil
}

// ModelStatus reports the model state
func (s *Service) ModelStatus() sequence.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.predictor.Status()
}
