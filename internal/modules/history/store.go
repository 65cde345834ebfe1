// Package history persists the ordered log of completed rounds.
//
// Two backends share the Store contract: a JSON array file (the default, kept
// compatible with files written by earlier versions of the app) and a SQLite
// table. Both guarantee that a reader never observes a partial write.
package history

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/aristath/baccarat/internal/database"
	"github.com/aristath/baccarat/internal/domain"
	"github.com/rs/zerolog"
)

// Backend names accepted by NewStore
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// ModelFileName is the artifact file kept next to the history log
const ModelFileName = "baccarat_model.msgpack"

// Store is the durable, ordered round log.
type Store interface {
	// Append persists rec at the end of the log before returning.
	Append(ctx context.Context, rec domain.RoundRecord) error
	// Load returns the full log in insertion order. A missing log is empty.
	Load(ctx context.Context) ([]domain.RoundRecord, error)
	// Clear atomically replaces the log with an empty one.
	Clear(ctx context.Context) error
	// Path is the storage location, used to derive the model artifact path.
	Path() string
}

// NewStore selects a backend by name. db is only used by the sqlite backend
// and may be nil for json.
func NewStore(backend, path string, db *database.DB, log zerolog.Logger) (Store, error) {
	switch backend {
	case "", BackendJSON:
		return NewFileStore(path, log), nil
	case BackendSQLite:
		if db == nil {
			return nil, fmt.Errorf("sqlite history backend requires a database")
		}
		return NewSQLiteStore(db, log), nil
	default:
		return nil, fmt.Errorf("unknown history backend %q", backend)
	}
}

// ModelPath returns where the model artifact lives for a given history path.
func ModelPath(historyPath string) string {
	return filepath.Join(filepath.Dir(historyPath), ModelFileName)
}
