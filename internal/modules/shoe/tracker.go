// Package shoe tracks which shoe (batch of rounds dealt before a reshuffle)
// the current round belongs to.
package shoe

// DefaultMaxRounds is the usual number of rounds dealt from one shoe
const DefaultMaxRounds = 80

// Info is a read-only snapshot of the tracker state
type Info struct {
	ShoeID       int `json:"shoe_id"`
	CurrentRound int `json:"current_round"`
	MaxRounds    int `json:"max_rounds"`
}

// Tracker is a counter pair (shoe id, rounds in shoe) with a fixed capacity.
// It holds no locks; the owning workflow serializes access.
type Tracker struct {
	shoeID   int
	rounds   int
	capacity int
}

// NewTracker starts at shoe 1. A non-positive capacity uses DefaultMaxRounds.
func NewTracker(capacity int) *Tracker {
	if capacity <= 0 {
		capacity = DefaultMaxRounds
	}
	return &Tracker{shoeID: 1, capacity: capacity}
}

// RecordRound counts one round and rolls over to a new shoe when the
// capacity is reached. The returned snapshot is taken after the transition.
func (t *Tracker) RecordRound() Info {
	t.rounds++
	if t.rounds >= t.capacity {
		t.NewShoe()
	}
	return t.Info()
}

// NewShoe forces a rollover regardless of the round count.
func (t *Tracker) NewShoe() int {
	t.shoeID++
	t.rounds = 0
	return t.shoeID
}

// Reset returns the tracker to shoe 1, round 0.
func (t *Tracker) Reset() {
	t.shoeID = 1
	t.rounds = 0
}

func (t *Tracker) Info() Info {
	return Info{
		ShoeID:       t.shoeID,
		CurrentRound: t.rounds,
		MaxRounds:    t.capacity,
	}
}
