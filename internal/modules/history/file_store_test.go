package history

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aristath/baccarat/internal/domain"
	testingpkg "github.com/aristath/baccarat/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFileStore(t *testing.T) *FileStore {
	t.Helper()
	log := zerolog.New(nil).Level(zerolog.Disabled)
	return NewFileStore(filepath.Join(t.TempDir(), "game_history.json"), log)
}

func TestFileStore_LoadMissingFileIsEmpty(t *testing.T) {
	store := newFileStore(t)

	records, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestFileStore_AppendPreservesOrderAcrossReload(t *testing.T) {
	ctx := context.Background()
	store := newFileStore(t)
	fixtures := testingpkg.NewRoundFixtures(7)

	for _, rec := range fixtures {
		require.NoError(t, store.Append(ctx, rec))
	}

	reopened := NewFileStore(store.Path(), zerolog.New(nil).Level(zerolog.Disabled))
	records, err := reopened.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, fixtures, records)
}

func TestFileStore_ClearLeavesEmptyArray(t *testing.T) {
	ctx := context.Background()
	store := newFileStore(t)
	require.NoError(t, store.Append(ctx, domain.RoundRecord{Result: domain.Tie, Timestamp: 1}))

	require.NoError(t, store.Clear(ctx))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))

	records, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestFileStore_NoTempFilesLeftBehind(t *testing.T) {
	ctx := context.Background()
	store := newFileStore(t)
	for _, rec := range testingpkg.NewRoundFixtures(3) {
		require.NoError(t, store.Append(ctx, rec))
	}

	entries, err := os.ReadDir(filepath.Dir(store.Path()))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "game_history.json", entries[0].Name())
}

func TestFileStore_CorruptFileIsPersistenceError(t *testing.T) {
	store := newFileStore(t)
	require.NoError(t, os.WriteFile(store.Path(), []byte("{not json"), 0644))

	_, err := store.Load(context.Background())
	require.Error(t, err)

	var perr *domain.PersistenceError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "decode", perr.Op)
	assert.Equal(t, store.Path(), perr.Path)

	// appends must not clobber a file that could not be read
	err = store.Append(context.Background(), domain.RoundRecord{Result: domain.Banker})
	require.Error(t, err)
	data, _ := os.ReadFile(store.Path())
	assert.Equal(t, "{not json", string(data))
}

func TestFileStore_LoadsStringCardTokens(t *testing.T) {
	store := newFileStore(t)
	legacy := `[
		{"result": "banker", "player_cards": ["K", "7"], "banker_cards": ["2", "x"], "shoe_id": 3, "timestamp": 1712000000.25},
		{"result": "Player", "timestamp": 1712000001.5}
	]`
	require.NoError(t, os.WriteFile(store.Path(), []byte(legacy), 0644))

	records, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, domain.Banker, records[0].Result)
	assert.Equal(t, []int{13, 7}, records[0].PlayerCards)
	assert.Equal(t, []int{2, 0}, records[0].BankerCards)
	assert.Equal(t, 3, records[0].ShoeID)
	assert.Equal(t, 1712000000.25, records[0].Timestamp)

	assert.Equal(t, domain.Player, records[1].Result)
	assert.Nil(t, records[1].PlayerCards)
	assert.Zero(t, records[1].ShoeID)
}

func TestFileStore_UnknownResultIsPersistenceError(t *testing.T) {
	store := newFileStore(t)
	require.NoError(t, os.WriteFile(store.Path(), []byte(`[{"result":"dragon","timestamp":1}]`), 0644))

	_, err := store.Load(context.Background())
	var perr *domain.PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.ErrorIs(t, err, domain.ErrInvalidResult)
}

func TestFileStore_WriteFailureIsPersistenceError(t *testing.T) {
	dir := t.TempDir()
	// a directory where the file should be makes the rename fail
	target := filepath.Join(dir, "game_history.json")
	require.NoError(t, os.Mkdir(target, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(target, "keep"), []byte("x"), 0644))

	store := NewFileStore(target, zerolog.New(nil).Level(zerolog.Disabled))
	err := store.Clear(context.Background())

	var perr *domain.PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "write", perr.Op)
}

func TestModelPath(t *testing.T) {
	assert.Equal(t,
		filepath.Join("/var/data", "baccarat_model.msgpack"),
		ModelPath("/var/data/game_history.json"))
}

func TestNewStore(t *testing.T) {
	log := zerolog.New(nil).Level(zerolog.Disabled)

	store, err := NewStore("", "h.json", nil, log)
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, store)

	_, err = NewStore(BackendSQLite, "h.db", nil, log)
	assert.Error(t, err)

	_, err = NewStore("redis", "h", nil, log)
	assert.Error(t, err)

	db, cleanup := testingpkg.NewTestDB(t, "history")
	defer cleanup()
	store, err = NewStore(BackendSQLite, "", db, log)
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, store)
	assert.Equal(t, db.Path(), store.Path())
}
