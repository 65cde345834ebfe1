package sequence

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/aristath/baccarat/internal/domain"
	"github.com/aristath/baccarat/internal/modules/history"
	"github.com/aristath/baccarat/internal/utils"
	"github.com/rs/zerolog"
)

// Prediction sources
const (
	SourceModel      = "model"
	SourceStatistics = "statistics"
)

// Prediction is the predictor's guess for the next decisive round
type Prediction struct {
	Result     domain.Result `json:"result"`
	Confidence float64       `json:"confidence"`
	Source     string        `json:"source"`
}

// TrainResult summarizes a completed training run
type TrainResult struct {
	Accuracy        float64   `json:"accuracy"`
	Examples        int       `json:"examples"`
	TrainExamples   int       `json:"train_examples"`
	HoldoutExamples int       `json:"holdout_examples"`
	Loss            float64   `json:"loss"`
	Epochs          int       `json:"epochs"`
	TrainedAt       time.Time `json:"trained_at"`
	Saved           bool      `json:"saved"`
}

// Status describes the current model
type Status struct {
	Trained        bool       `json:"trained"`
	Accuracy       float64    `json:"accuracy"`
	Examples       int        `json:"examples"`
	TrainedAt      *time.Time `json:"trained_at,omitempty"`
	ArtifactPath   string     `json:"artifact_path"`
	ArtifactExists bool       `json:"artifact_exists"`
}

// Predictor owns the trained network and its artifact on disk.
// The in-memory network is a cache of the artifact: it is not refreshed when
// the history grows or the file changes underneath.
type Predictor struct {
	store     history.Store
	modelPath string
	cfg       TrainConfig
	log       zerolog.Logger

	mu        sync.Mutex
	rng       *rand.Rand // fallback picks
	net       *Network
	accuracy  float64
	examples  int
	trainedAt time.Time
}

// NewPredictor creates a predictor reading rounds from store and keeping its
// artifact at modelPath.
//
// Parameters:
//   - store: History store the training data comes from
//   - modelPath: Artifact location, normally history.ModelPath(store.Path())
//   - cfg: Training hyperparameters, zero fields take defaults
//   - log: Structured logger
//
// Returns:
//   - *Predictor: Untrained predictor; the artifact is loaded lazily
func NewPredictor(store history.Store, modelPath string, cfg TrainConfig, log zerolog.Logger) *Predictor {
	cfg = cfg.withDefaults()
	return &Predictor{
		store:     store,
		modelPath: modelPath,
		cfg:       cfg,
		log:       log.With().Str("component", "sequence_predictor").Logger(),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetRand replaces the source used for uninformed fallback picks.
func (p *Predictor) SetRand(rng *rand.Rand) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rng = rng
}

// ModelPath returns the artifact location
func (p *Predictor) ModelPath() string {
	return p.modelPath
}

// Train fits a fresh network on the current history and replaces the
// in-memory model. Saving the artifact is best effort.
func (p *Predictor) Train(ctx context.Context) (TrainResult, error) {
	records, err := p.store.Load(ctx)
	if err != nil {
		return TrainResult{}, fmt.Errorf("failed to load history for training: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.train(records)
}

func (p *Predictor) train(records []domain.RoundRecord) (TrainResult, error) {
	ds := PrepareDataset(records)
	if ds.Len() < MinExamples {
		return TrainResult{}, &domain.InsufficientDataError{Sequences: ds.Len(), Required: MinExamples}
	}

	timer := utils.NewTimer("sequence_train", p.log)
	rng := rand.New(rand.NewSource(p.cfg.Seed))
	trainSet, holdout := ds.Split(rng)

	net := NewNetwork(Window, p.cfg.Hidden, rng)
	loss := fit(net, trainSet, p.cfg, rng)

	accuracy, err := evaluate(net, holdout)
	if err != nil {
		return TrainResult{}, &domain.InferenceError{Err: err}
	}

	timer.StopWithContext(map[string]interface{}{
		"examples": ds.Len(),
		"epochs":   p.cfg.Epochs,
	})

	p.net = net
	p.accuracy = accuracy
	p.examples = ds.Len()
	p.trainedAt = time.Now().UTC()

	result := TrainResult{
		Accuracy:        accuracy,
		Examples:        ds.Len(),
		TrainExamples:   trainSet.Len(),
		HoldoutExamples: holdout.Len(),
		Loss:            loss,
		Epochs:          p.cfg.Epochs,
		TrainedAt:       p.trainedAt,
	}

	if err := p.save(); err != nil {
		p.log.Error().Err(err).Str("path", p.modelPath).Msg("Failed to save model artifact")
	} else {
		result.Saved = true
	}

	p.log.Info().
		Int("examples", result.Examples).
		Int("holdout", result.HoldoutExamples).
		Float64("accuracy", accuracy).
		Float64("loss", loss).
		Msg("Model trained")

	return result, nil
}

// Save writes the in-memory model to the artifact path.
func (p *Predictor) Save() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.save()
}

func (p *Predictor) save() error {
	if p.net == nil {
		return errors.New("no trained model to save")
	}
	return writeArtifact(p.modelPath, newArtifact(p.net, p.accuracy, p.examples, p.cfg.Epochs, p.trainedAt))
}

// Load restores the model from the artifact. It reports false, without an
// error, when the artifact is missing, unreadable or incompatible.
func (p *Predictor) Load() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.load()
}

func (p *Predictor) load() bool {
	a, err := readArtifact(p.modelPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			p.log.Debug().Str("path", p.modelPath).Msg("No model artifact")
		} else {
			p.log.Warn().Err(err).Str("path", p.modelPath).Msg("Ignoring unreadable model artifact")
		}
		return false
	}

	net, err := a.Network()
	if err != nil {
		p.log.Warn().Err(err).Str("path", p.modelPath).Msg("Ignoring incompatible model artifact")
		return false
	}

	p.net = net
	p.accuracy = a.Accuracy
	p.examples = a.Examples
	p.trainedAt = a.TrainedAt
	p.log.Info().Float64("accuracy", a.Accuracy).Msg("Model artifact loaded")
	return true
}

// PredictNext predicts the next decisive outcome. It never fails: whenever
// the network cannot be used it falls back to win-rate statistics.
//
// When no model is in memory it tries the artifact and then a single
// training run, which may create the artifact as a side effect.
func (p *Predictor) PredictNext(ctx context.Context) Prediction {
	records, err := p.store.Load(ctx)
	if err != nil {
		p.log.Warn().Err(err).Msg("Failed to load history, predicting from empty history")
		records = nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.net == nil && !p.load() {
		if _, err := p.train(records); err != nil {
			if errors.Is(err, domain.ErrInsufficientData) {
				p.log.Debug().Err(err).Msg("Not enough data to train, using statistics")
			} else {
				p.log.Warn().Err(err).Msg("Training failed, using statistics")
			}
			return PredictByStatistics(records, p.rng)
		}
	}

	values := encodeHistory(records)
	if len(values) < Window {
		return PredictByStatistics(records, p.rng)
	}

	probs, err := p.infer(values[len(values)-Window:])
	if err != nil {
		p.log.Error().Err(err).Msg("Model inference failed, using statistics")
		return PredictByStatistics(records, p.rng)
	}

	class := ClassBanker
	if probs[ClassPlayer] > probs[ClassBanker] {
		class = ClassPlayer
	}
	return Prediction{Result: Decode(class), Confidence: probs[class], Source: SourceModel}
}

// infer runs the network, converting any failure or panic into an
// InferenceError.
func (p *Predictor) infer(window []float64) (probs []float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			probs = nil
			err = &domain.InferenceError{Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	probs, err = p.net.Predict(window)
	if err != nil {
		return nil, &domain.InferenceError{Err: err}
	}
	return probs, nil
}

// Reset deletes the artifact and forgets the in-memory model.
func (p *Predictor) Reset() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.net = nil
	p.accuracy = 0
	p.examples = 0
	p.trainedAt = time.Time{}

	if err := os.Remove(p.modelPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &domain.PersistenceError{Op: "remove", Path: p.modelPath, Err: err}
	}
	p.log.Info().Str("path", p.modelPath).Msg("Model reset")
	return nil
}

// Accuracy is the holdout accuracy of the current model, 0 when untrained.
func (p *Predictor) Accuracy() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.accuracy
}

// Trained reports whether a model is in memory
func (p *Predictor) Trained() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.net != nil
}

// Status reports the model state, restoring it from the artifact first when
// nothing is in memory yet.
func (p *Predictor) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.net == nil {
		p.load()
	}

	_, statErr := os.Stat(p.modelPath)
	s := Status{
		Trained:        p.net != nil,
		Accuracy:       p.accuracy,
		Examples:       p.examples,
		ArtifactPath:   p.modelPath,
		ArtifactExists: statErr == nil,
	}
	if !p.trainedAt.IsZero() {
		t := p.trainedAt
		s.TrainedAt = &t
	}
	return s
}
