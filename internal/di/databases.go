// Package di provides dependency injection for database connections.
package di

import (
	"fmt"

	"github.com/aristath/baccarat/internal/config"
	"github.com/aristath/baccarat/internal/database"
	"github.com/aristath/baccarat/internal/modules/history"
	"github.com/rs/zerolog"
)

// InitializeDatabases opens the history database when the sqlite backend is
// selected and applies its schema. The json backend needs no database.
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	if cfg.HistoryBackend != history.BackendSQLite {
		return container, nil
	}

	historyDB, err := database.New(database.Config{
		Path:    cfg.HistoryFile,
		Profile: database.ProfileLedger, // Append-only round log
		Name:    "history",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize history database: %w", err)
	}

	if err := historyDB.Migrate(); err != nil {
		historyDB.Close()
		return nil, fmt.Errorf("failed to migrate history database: %w", err)
	}
	container.HistoryDB = historyDB

	log.Info().Str("path", historyDB.Path()).Msg("History database initialized")
	return container, nil
}
