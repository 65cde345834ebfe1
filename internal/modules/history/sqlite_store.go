package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/aristath/baccarat/internal/database"
	"github.com/aristath/baccarat/internal/domain"
	"github.com/aristath/baccarat/internal/utils"
	"github.com/rs/zerolog"
)

// SQLiteStore keeps the history in the rounds table. Insertion order is the
// autoincrement id.
type SQLiteStore struct {
	db  *database.DB
	log zerolog.Logger
}

// NewSQLiteStore creates a store over an already migrated history database.
//
// Parameters:
//   - db: history database (schema "history")
//   - log: Structured logger
//
// Returns:
//   - *SQLiteStore: Initialized store
func NewSQLiteStore(db *database.DB, log zerolog.Logger) *SQLiteStore {
	return &SQLiteStore{
		db:  db,
		log: log.With().Str("repo", "history").Logger(),
	}
}

// Path returns the database file location
func (s *SQLiteStore) Path() string {
	return s.db.Path()
}

// Append inserts one round
func (s *SQLiteStore) Append(ctx context.Context, rec domain.RoundRecord) error {
	playerJSON, err := encodeCards(rec.PlayerCards)
	if err != nil {
		return &domain.PersistenceError{Op: "encode", Path: s.Path(), Err: err}
	}
	bankerJSON, err := encodeCards(rec.BankerCards)
	if err != nil {
		return &domain.PersistenceError{Op: "encode", Path: s.Path(), Err: err}
	}

	var shoeID sql.NullInt64
	if rec.ShoeID != 0 {
		shoeID = sql.NullInt64{Int64: int64(rec.ShoeID), Valid: true}
	}

	query := `
		INSERT INTO rounds (result, player_cards, banker_cards, shoe_id, timestamp)
		VALUES (?, ?, ?, ?, ?)
	`
	if _, err := s.db.Conn().ExecContext(ctx, query,
		string(rec.Result), playerJSON, bankerJSON, shoeID, rec.Timestamp,
	); err != nil {
		return &domain.PersistenceError{Op: "write", Path: s.Path(), Err: err}
	}

	s.log.Debug().
		Str("result", string(rec.Result)).
		Int("shoe_id", rec.ShoeID).
		Msg("Round appended")
	return nil
}

// Load returns every round ordered by id
func (s *SQLiteStore) Load(ctx context.Context) ([]domain.RoundRecord, error) {
	defer utils.OperationTimer("history_load", s.log)()

	query := `
		SELECT result, player_cards, banker_cards, shoe_id, timestamp
		FROM rounds
		ORDER BY id ASC
	`
	rows, err := s.db.Conn().QueryContext(ctx, query)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "read", Path: s.Path(), Err: err}
	}
	defer rows.Close()

	records := []domain.RoundRecord{}
	for rows.Next() {
		var (
			result     string
			playerJSON sql.NullString
			bankerJSON sql.NullString
			shoeID     sql.NullInt64
			rec        domain.RoundRecord
		)
		if err := rows.Scan(&result, &playerJSON, &bankerJSON, &shoeID, &rec.Timestamp); err != nil {
			return nil, &domain.PersistenceError{Op: "read", Path: s.Path(), Err: err}
		}

		if rec.Result, err = domain.ParseResult(result); err != nil {
			return nil, &domain.PersistenceError{Op: "decode", Path: s.Path(), Err: err}
		}
		if rec.PlayerCards, err = decodeCards(playerJSON); err != nil {
			return nil, &domain.PersistenceError{Op: "decode", Path: s.Path(), Err: err}
		}
		if rec.BankerCards, err = decodeCards(bankerJSON); err != nil {
			return nil, &domain.PersistenceError{Op: "decode", Path: s.Path(), Err: err}
		}
		if shoeID.Valid {
			rec.ShoeID = int(shoeID.Int64)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.PersistenceError{Op: "read", Path: s.Path(), Err: err}
	}
	return records, nil
}

// Clear deletes every round in one transaction
func (s *SQLiteStore) Clear(ctx context.Context) error {
	err := database.WithTransaction(s.db.Conn(), func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM rounds`); err != nil {
			return fmt.Errorf("failed to delete rounds: %w", err)
		}
		return nil
	})
	if err != nil {
		return &domain.PersistenceError{Op: "write", Path: s.Path(), Err: err}
	}
	s.log.Info().Msg("History cleared")
	return nil
}

func encodeCards(cards []int) (sql.NullString, error) {
	if len(cards) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(cards)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func decodeCards(raw sql.NullString) ([]int, error) {
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	var cards []int
	if err := json.Unmarshal([]byte(raw.String), &cards); err != nil {
		return nil, fmt.Errorf("invalid card list %q: %w", raw.String, err)
	}
	if len(cards) == 0 {
		return nil, nil
	}
	return cards, nil
}
