package history

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/aristath/baccarat/internal/domain"
	"github.com/rs/zerolog"
)

// FileStore keeps the history as one JSON array. Every write rewrites the
// whole file through a temp file in the same directory followed by a rename.
type FileStore struct {
	path string
	mu   sync.Mutex
	log  zerolog.Logger
}

// NewFileStore creates a store backed by the JSON file at path. The file
// does not need to exist yet.
func NewFileStore(path string, log zerolog.Logger) *FileStore {
	return &FileStore{
		path: path,
		log:  log.With().Str("component", "history_file_store").Logger(),
	}
}

// Path returns the JSON file location
func (s *FileStore) Path() string {
	return s.path
}

// storedRecord accepts card tokens as numbers or strings so logs written
// with raw card labels still load.
type storedRecord struct {
	Result      domain.Result      `json:"result"`
	PlayerCards []domain.CardToken `json:"player_cards,omitempty"`
	BankerCards []domain.CardToken `json:"banker_cards,omitempty"`
	ShoeID      *int               `json:"shoe_id,omitempty"`
	Timestamp   float64            `json:"timestamp"`
}

// Load reads the whole log
func (s *FileStore) Load(ctx context.Context) ([]domain.RoundRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

// Append adds rec and rewrites the file
func (s *FileStore) Append(ctx context.Context, rec domain.RoundRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read()
	if err != nil {
		return err
	}
	records = append(records, rec)
	if err := s.write(records); err != nil {
		return err
	}

	s.log.Debug().
		Str("result", string(rec.Result)).
		Int("shoe_id", rec.ShoeID).
		Int("records", len(records)).
		Msg("Round appended")
	return nil
}

// Clear replaces the file with an empty array
func (s *FileStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.write([]domain.RoundRecord{}); err != nil {
		return err
	}
	s.log.Info().Str("path", s.path).Msg("History cleared")
	return nil
}

func (s *FileStore) read() ([]domain.RoundRecord, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []domain.RoundRecord{}, nil
	}
	if err != nil {
		return nil, &domain.PersistenceError{Op: "read", Path: s.path, Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []domain.RoundRecord{}, nil
	}

	var stored []storedRecord
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, &domain.PersistenceError{Op: "decode", Path: s.path, Err: err}
	}

	records := make([]domain.RoundRecord, 0, len(stored))
	for i, r := range stored {
		result, err := domain.ParseResult(string(r.Result))
		if err != nil {
			return nil, &domain.PersistenceError{
				Op:   "decode",
				Path: s.path,
				Err:  fmt.Errorf("record %d: %w", i, err),
			}
		}
		rec := domain.RoundRecord{
			Result:      result,
			PlayerCards: domain.Ranks(r.PlayerCards),
			BankerCards: domain.Ranks(r.BankerCards),
			Timestamp:   r.Timestamp,
		}
		if r.ShoeID != nil {
			rec.ShoeID = *r.ShoeID
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *FileStore) write(records []domain.RoundRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return &domain.PersistenceError{Op: "encode", Path: s.path, Err: err}
	}
	if err := WriteFileAtomic(s.path, data); err != nil {
		return &domain.PersistenceError{Op: "write", Path: s.path, Err: err}
	}
	return nil
}

// WriteFileAtomic writes data to a temp file next to path, syncs it and
// renames it over path. Readers see either the old file or the new one.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		cleanup()
		return fmt.Errorf("failed to replace file: %w", err)
	}
	return nil
}
