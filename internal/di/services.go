package di

import (
	"fmt"

	"github.com/aristath/baccarat/internal/config"
	"github.com/aristath/baccarat/internal/events"
	"github.com/aristath/baccarat/internal/modules/game"
	"github.com/aristath/baccarat/internal/modules/history"
	"github.com/aristath/baccarat/internal/modules/sequence"
	"github.com/aristath/baccarat/internal/modules/shoe"
	"github.com/rs/zerolog"
)

// InitializeServices creates the store, the domain components and the game
// workflow on top of an initialized container.
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	store, err := history.NewStore(cfg.HistoryBackend, cfg.HistoryFile, container.HistoryDB, log)
	if err != nil {
		return fmt.Errorf("failed to create history store: %w", err)
	}
	container.HistoryStore = store
	container.ModelPath = history.ModelPath(store.Path())

	container.Tracker = shoe.NewTracker(cfg.MaxRoundsInShoe)
	container.Predictor = sequence.NewPredictor(store, container.ModelPath, sequence.TrainConfig{
		Epochs:       cfg.Model.Epochs,
		BatchSize:    cfg.Model.BatchSize,
		LearningRate: cfg.Model.LearningRate,
		Hidden:       cfg.Model.HiddenUnits,
		Seed:         cfg.Model.Seed,
	}, log)

	container.EventBus = events.NewBus(log)
	container.GameService = game.NewService(
		container.HistoryStore,
		container.Predictor,
		container.Tracker,
		container.EventBus,
		log,
	)

	log.Info().
		Str("backend", cfg.HistoryBackend).
		Str("history", store.Path()).
		Str("model", container.ModelPath).
		Msg("Services initialized")
	return nil
}
