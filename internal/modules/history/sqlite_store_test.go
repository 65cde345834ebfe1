package history

import (
	"context"
	"testing"

	"github.com/aristath/baccarat/internal/domain"
	testingpkg "github.com/aristath/baccarat/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStore_AppendLoadClear(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t, "history")
	defer cleanup()

	ctx := context.Background()
	store := NewSQLiteStore(db, zerolog.New(nil).Level(zerolog.Disabled))

	records, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)

	fixtures := testingpkg.NewRoundFixtures(5)
	fixtures = append(fixtures, domain.RoundRecord{Result: domain.Tie, Timestamp: 1800000000.5})
	for _, rec := range fixtures {
		require.NoError(t, store.Append(ctx, rec))
	}

	records, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, fixtures, records)

	require.NoError(t, store.Clear(ctx))
	records, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)

	// appends after a clear start a fresh log
	require.NoError(t, store.Append(ctx, domain.RoundRecord{Result: domain.Player, Timestamp: 2}))
	records, err = store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, domain.Player, records[0].Result)
}

func TestSQLiteStore_RejectsUnknownResultAtInsert(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t, "history")
	defer cleanup()

	store := NewSQLiteStore(db, zerolog.New(nil).Level(zerolog.Disabled))
	err := store.Append(context.Background(), domain.RoundRecord{Result: "dragon", Timestamp: 1})

	var perr *domain.PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "write", perr.Op)
}
