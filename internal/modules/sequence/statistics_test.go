package sequence

import (
	"math/rand"
	"testing"

	"github.com/aristath/baccarat/internal/domain"
	testingpkg "github.com/aristath/baccarat/internal/testing"
	"github.com/stretchr/testify/assert"
)

func TestPredictByStatistics_EmptyHistoryIsUninformed(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	seen := map[domain.Result]bool{}

	for i := 0; i < 50; i++ {
		pred := PredictByStatistics(nil, rng)
		assert.Equal(t, UninformedConfidence, pred.Confidence)
		assert.Equal(t, SourceStatistics, pred.Source)
		assert.True(t, pred.Result.IsDecisive())
		seen[pred.Result] = true
	}
	assert.True(t, seen[domain.Banker])
	assert.True(t, seen[domain.Player])
}

func TestPredictByStatistics_OnlyTiesIsUninformed(t *testing.T) {
	records := testingpkg.NewResultFixtures(domain.Tie, domain.Tie)
	pred := PredictByStatistics(records, rand.New(rand.NewSource(1)))
	assert.Equal(t, UninformedConfidence, pred.Confidence)
}

func TestPredictByStatistics_Rates(t *testing.T) {
	tests := []struct {
		name    string
		results []domain.Result
		want    domain.Result
		conf    float64
	}{
		{
			name:    "banker majority",
			results: []domain.Result{domain.Banker, domain.Banker, domain.Banker, domain.Player},
			want:    domain.Banker,
			conf:    0.75,
		},
		{
			name:    "player majority ignores ties",
			results: []domain.Result{domain.Player, domain.Tie, domain.Tie, domain.Player, domain.Banker, domain.Player, domain.Player},
			want:    domain.Player,
			conf:    0.8,
		},
		{
			name:    "two to one banker",
			results: []domain.Result{domain.Banker, domain.Banker, domain.Player},
			want:    domain.Banker,
			conf:    2.0 / 3.0,
		},
		{
			name:    "equal rates go to player",
			results: []domain.Result{domain.Banker, domain.Player, domain.Tie},
			want:    domain.Player,
			conf:    0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pred := PredictByStatistics(testingpkg.NewResultFixtures(tt.results...), rand.New(rand.NewSource(1)))
			assert.Equal(t, tt.want, pred.Result)
			assert.Equal(t, tt.conf, pred.Confidence)
			assert.Equal(t, SourceStatistics, pred.Source)
		})
	}
}
