package sequence

import (
	"math/rand"

	"github.com/aristath/baccarat/internal/domain"
	"gonum.org/v1/gonum/floats"
)

// UninformedConfidence is reported when there is no decisive history at all
const UninformedConfidence = 0.51

// PredictByStatistics picks the side with the higher historical win rate
// among banker and player rounds. Equal rates go to player. Without any
// decisive round it picks a side uniformly at random with
// UninformedConfidence.
func PredictByStatistics(records []domain.RoundRecord, rng *rand.Rand) Prediction {
	values := encodeHistory(records)
	if len(values) == 0 {
		result := domain.Banker
		if rng.Intn(2) == ClassPlayer {
			result = domain.Player
		}
		return Prediction{Result: result, Confidence: UninformedConfidence, Source: SourceStatistics}
	}

	// Player rounds encode as 1, so the sum is the player count
	n := float64(len(values))
	playerWins := floats.Sum(values)
	bankerRate := (n - playerWins) / n
	playerRate := playerWins / n
	if bankerRate > playerRate {
		return Prediction{Result: domain.Banker, Confidence: bankerRate, Source: SourceStatistics}
	}
	return Prediction{Result: domain.Player, Confidence: playerRate, Source: SourceStatistics}
}
