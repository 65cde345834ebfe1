// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir         string // Base directory for history and model files (always absolute)
	HistoryFile     string // History log location; the model artifact lives next to it
	HistoryBackend  string // json or sqlite
	LogLevel        string
	LogPretty       bool
	Port            int
	DevMode         bool
	MaxRoundsInShoe int
	Model           ModelConfig
}

// ModelConfig holds the sequence model hyperparameters
type ModelConfig struct {
	Epochs       int
	BatchSize    int
	LearningRate float64
	HiddenUnits  int
	Seed         int64
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("BACCARAT_DATA_DIR", "./data")

	// Always resolve to absolute path
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	// The history directory must exist before first use
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	backend := getEnv("HISTORY_BACKEND", "json")
	defaultFile := "game_history.json"
	if backend == "sqlite" {
		defaultFile = "game_history.db"
	}

	historyFile := getEnv("HISTORY_FILE", "")
	if historyFile == "" {
		historyFile = filepath.Join(absDataDir, defaultFile)
	} else if !filepath.IsAbs(historyFile) {
		historyFile = filepath.Join(absDataDir, historyFile)
	}

	cfg := &Config{
		DataDir:         absDataDir,
		HistoryFile:     historyFile,
		HistoryBackend:  backend,
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogPretty:       getEnvAsBool("LOG_PRETTY", true),
		Port:            getEnvAsInt("GO_PORT", 5000),
		DevMode:         getEnvAsBool("DEV_MODE", false),
		MaxRoundsInShoe: getEnvAsInt("MAX_ROUNDS_PER_SHOE", 80),
		Model: ModelConfig{
			Epochs:       getEnvAsInt("MODEL_EPOCHS", 30),
			BatchSize:    getEnvAsInt("MODEL_BATCH_SIZE", 16),
			LearningRate: getEnvAsFloat("MODEL_LEARNING_RATE", 0.001),
			HiddenUnits:  getEnvAsInt("MODEL_HIDDEN_UNITS", 16),
			Seed:         int64(getEnvAsInt("MODEL_SEED", 42)),
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that every value is usable
func (c *Config) Validate() error {
	switch c.HistoryBackend {
	case "json", "sqlite":
	default:
		return fmt.Errorf("HISTORY_BACKEND must be json or sqlite, got %q", c.HistoryBackend)
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("GO_PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.MaxRoundsInShoe <= 0 {
		return fmt.Errorf("MAX_ROUNDS_PER_SHOE must be positive, got %d", c.MaxRoundsInShoe)
	}
	if c.Model.Epochs <= 0 {
		return fmt.Errorf("MODEL_EPOCHS must be positive, got %d", c.Model.Epochs)
	}
	if c.Model.BatchSize <= 0 {
		return fmt.Errorf("MODEL_BATCH_SIZE must be positive, got %d", c.Model.BatchSize)
	}
	if c.Model.LearningRate <= 0 {
		return fmt.Errorf("MODEL_LEARNING_RATE must be positive, got %g", c.Model.LearningRate)
	}
	if c.Model.HiddenUnits <= 0 {
		return fmt.Errorf("MODEL_HIDDEN_UNITS must be positive, got %d", c.Model.HiddenUnits)
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
