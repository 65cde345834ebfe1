package testing

import (
	"github.com/aristath/baccarat/internal/domain"
)

// NewRoundFixtures returns n decisive rounds following a fixed
// banker/banker/player cycle, with cards and shoe ids populated.
func NewRoundFixtures(n int) []domain.RoundRecord {
	cycle := []domain.Result{domain.Banker, domain.Banker, domain.Player}
	hands := [][2][]int{
		{{2, 3}, {4, 5}},
		{{10, 6}, {7, 1}},
		{{9, 13, 4}, {12, 8}},
	}

	records := make([]domain.RoundRecord, n)
	for i := range records {
		h := hands[i%len(hands)]
		records[i] = domain.RoundRecord{
			Result:      cycle[i%len(cycle)],
			PlayerCards: append([]int(nil), h[0]...),
			BankerCards: append([]int(nil), h[1]...),
			ShoeID:      1 + i/80,
			Timestamp:   1700000000 + float64(i),
		}
	}
	return records
}

// NewResultFixtures returns bare records for the given results, with
// increasing timestamps and no cards.
func NewResultFixtures(results ...domain.Result) []domain.RoundRecord {
	records := make([]domain.RoundRecord, len(results))
	for i, r := range results {
		records[i] = domain.RoundRecord{Result: r, Timestamp: 1700000000 + float64(i)}
	}
	return records
}
