package sequence

import (
	"math/rand"
	"testing"

	"github.com/aristath/baccarat/internal/domain"
	testingpkg "github.com/aristath/baccarat/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepareDataset_DropsTiesAndBuildsWindows(t *testing.T) {
	records := testingpkg.NewResultFixtures(
		domain.Banker, domain.Tie, domain.Player, domain.Banker,
		domain.Banker, domain.Tie, domain.Player, domain.Player,
	)

	ds := PrepareDataset(records)
	// decisive: B P B B P P -> one window
	require.Equal(t, 1, ds.Len())
	assert.Equal(t, []float64{0, 1, 0, 0, 1}, ds.Inputs[0])
	assert.Equal(t, ClassPlayer, ds.Labels[0])
}

func TestPrepareDataset_TooShort(t *testing.T) {
	records := testingpkg.NewResultFixtures(domain.Banker, domain.Player, domain.Banker, domain.Player, domain.Banker)
	assert.Zero(t, PrepareDataset(records).Len())
	assert.Zero(t, PrepareDataset(nil).Len())
}

func TestPrepareDataset_ExampleCount(t *testing.T) {
	ds := PrepareDataset(testingpkg.NewRoundFixtures(15))
	assert.Equal(t, 10, ds.Len())
	for _, in := range ds.Inputs {
		assert.Len(t, in, Window)
	}
}

func TestSplit_HoldoutIsCeilingOfTwentyPercent(t *testing.T) {
	tests := []struct {
		records     int
		wantHoldout int
	}{
		{records: 15, wantHoldout: 2}, // 10 examples
		{records: 16, wantHoldout: 3}, // 11 examples
		{records: 30, wantHoldout: 5}, // 25 examples
	}

	for _, tt := range tests {
		ds := PrepareDataset(testingpkg.NewRoundFixtures(tt.records))
		train, holdout := ds.Split(rand.New(rand.NewSource(42)))
		assert.Equal(t, tt.wantHoldout, holdout.Len())
		assert.Equal(t, ds.Len()-tt.wantHoldout, train.Len())
	}
}

func TestSplit_IsReproducible(t *testing.T) {
	ds := PrepareDataset(testingpkg.NewRoundFixtures(40))

	trainA, holdA := ds.Split(rand.New(rand.NewSource(7)))
	trainB, holdB := ds.Split(rand.New(rand.NewSource(7)))

	assert.Equal(t, trainA, trainB)
	assert.Equal(t, holdA, holdB)
}

func TestEncodeDecode(t *testing.T) {
	assert.Equal(t, ClassBanker, Encode(domain.Banker))
	assert.Equal(t, ClassPlayer, Encode(domain.Player))
	assert.Equal(t, domain.Banker, Decode(ClassBanker))
	assert.Equal(t, domain.Player, Decode(ClassPlayer))
}
