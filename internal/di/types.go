/**
 * Package di provides dependency injection type definitions.
 *
 * The Container holds every long-lived component of the game server and is
 * handed to the HTTP layer as the single source of truth.
 */
package di

import (
	"github.com/aristath/baccarat/internal/database"
	"github.com/aristath/baccarat/internal/events"
	"github.com/aristath/baccarat/internal/modules/game"
	"github.com/aristath/baccarat/internal/modules/history"
	"github.com/aristath/baccarat/internal/modules/sequence"
	"github.com/aristath/baccarat/internal/modules/shoe"
)

// Container holds all application dependencies
type Container struct {
	// Database, only set for the sqlite history backend
	HistoryDB *database.DB

	// Storage
	HistoryStore history.Store
	ModelPath    string

	// Domain components
	Tracker   *shoe.Tracker
	Predictor *sequence.Predictor

	// Workflow
	EventBus    *events.Bus
	GameService *game.Service
}

// Close releases resources held by the container
func (c *Container) Close() error {
	if c.HistoryDB != nil {
		return c.HistoryDB.Close()
	}
	return nil
}
