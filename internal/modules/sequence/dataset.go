// Package sequence predicts the next decisive outcome from the recent
// banker/player sequence with a small feed-forward network, falling back to
// historical win rates whenever the network cannot be used.
package sequence

import (
	"math"
	"math/rand"

	"github.com/aristath/baccarat/internal/domain"
)

const (
	// Window is the number of previous decisive outcomes fed to the network
	Window = 5
	// MinExamples is the smallest dataset the trainer accepts
	MinExamples = 10
	// HoldoutFraction of the examples is kept aside to measure accuracy
	HoldoutFraction = 0.2
)

// Class labels for the two decisive outcomes
const (
	ClassBanker = 0
	ClassPlayer = 1
)

// Encode maps a decisive result to its class label.
func Encode(r domain.Result) int {
	if r == domain.Player {
		return ClassPlayer
	}
	return ClassBanker
}

// Decode maps a class label back to a result.
func Decode(class int) domain.Result {
	if class == ClassPlayer {
		return domain.Player
	}
	return domain.Banker
}

// Dataset holds overlapping windows of encoded outcomes and the label that
// followed each window.
type Dataset struct {
	Inputs [][]float64
	Labels []int
}

// Len returns the number of examples
func (d Dataset) Len() int {
	return len(d.Labels)
}

// encodeHistory drops ties and encodes the remaining outcomes in order.
func encodeHistory(history []domain.RoundRecord) []float64 {
	decisive := domain.DecisiveResults(history)
	values := make([]float64, len(decisive))
	for i, r := range decisive {
		values[i] = float64(Encode(r))
	}
	return values
}

// PrepareDataset builds one example per position: the Window values before
// it as input and the value at it as label.
func PrepareDataset(history []domain.RoundRecord) Dataset {
	values := encodeHistory(history)
	if len(values) <= Window {
		return Dataset{}
	}

	n := len(values) - Window
	ds := Dataset{
		Inputs: make([][]float64, n),
		Labels: make([]int, n),
	}
	for i := 0; i < n; i++ {
		ds.Inputs[i] = append([]float64(nil), values[i:i+Window]...)
		ds.Labels[i] = int(values[i+Window])
	}
	return ds
}

// Split shuffles the examples with rng and returns the training and holdout
// parts. The holdout gets ceil(HoldoutFraction * n) examples.
func (d Dataset) Split(rng *rand.Rand) (train, holdout Dataset) {
	n := d.Len()
	perm := rng.Perm(n)
	holdoutSize := int(math.Ceil(HoldoutFraction * float64(n)))
	if holdoutSize >= n {
		holdoutSize = n - 1
	}
	if holdoutSize < 0 {
		holdoutSize = 0
	}

	pick := func(idx []int) Dataset {
		out := Dataset{
			Inputs: make([][]float64, len(idx)),
			Labels: make([]int, len(idx)),
		}
		for i, j := range idx {
			out.Inputs[i] = d.Inputs[j]
			out.Labels[i] = d.Labels[j]
		}
		return out
	}

	return pick(perm[holdoutSize:]), pick(perm[:holdoutSize])
}
