// Package formula implements the hertz formula, a deterministic heuristic that
// scores the dealt cards of the current round and calls the next round.
//
// Card tokens are normalized permissively: numeric strings parse to integers,
// J/Q/K (any case) count as zero points and any other token also counts as
// zero. Malformed tokens are never an error.
package formula

import (
	"strconv"
	"strings"

	"github.com/aristath/baccarat/internal/domain"
)

// Result is the outcome of the hertz formula for one pair of hands
type Result struct {
	Prediction      domain.Result `json:"prediction"`
	Score           int           `json:"score"`
	Advantage       int           `json:"advantage"`
	PlayerFrequency int           `json:"player_frequency"`
	BankerFrequency int           `json:"banker_frequency"`
}

// PointValue converts a card token to the integer used in point totals.
// Numeric tokens keep their value, so "11" counts as 11 while "J" counts as 0.
func PointValue(card domain.CardToken) int {
	s := strings.TrimSpace(string(card))
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return 0
}

// AdvantageValue scores a single card.
//
//	1, 4, 5, 7, 8  -> +2
//	2, 3           -> -3
//	6, 9           -> -5
//	10, J, Q, K    ->  0
func AdvantageValue(card domain.CardToken) int {
	switch PointValue(card) {
	case 1, 4, 5, 7, 8:
		return 2
	case 2, 3:
		return -3
	case 6, 9:
		return -5
	default:
		return 0
	}
}

// PointTotal is the baccarat point total of a hand: the sum of its point values mod 10.
func PointTotal(cards []domain.CardToken) int {
	sum := 0
	for _, c := range cards {
		sum += PointValue(c)
	}
	// negative tokens must not produce a negative total
	return ((sum % 10) + 10) % 10
}

// PlayerFrequency scores the player hand by its point total.
//
//	7, 8, 9     -> +2
//	0, 1, 3, 4  -> +1
//	2, 5, 6     -> -5
func PlayerFrequency(cards []domain.CardToken) int {
	switch PointTotal(cards) {
	case 7, 8, 9:
		return 2
	case 0, 1, 3, 4:
		return 1
	default:
		return -5
	}
}

// BankerFrequency scores the banker hand by its point total.
//
//	7, 8, 9        -> +3
//	0, 1, 3, 4, 6  -> +2
//	2, 5           -> -5
func BankerFrequency(cards []domain.CardToken) int {
	switch PointTotal(cards) {
	case 7, 8, 9:
		return 3
	case 0, 1, 3, 4, 6:
		return 2
	default:
		return -5
	}
}

// Hertz computes the formula score and its call. A negative score calls
// banker; zero and above call player.
func Hertz(playerCards, bankerCards []domain.CardToken) Result {
	advantage := 0
	for _, c := range playerCards {
		advantage += AdvantageValue(c)
	}
	for _, c := range bankerCards {
		advantage += AdvantageValue(c)
	}

	pf := PlayerFrequency(playerCards)
	bf := BankerFrequency(bankerCards)
	score := advantage + pf + bf

	prediction := domain.Player
	if score < 0 {
		prediction = domain.Banker
	}

	return Result{
		Prediction:      prediction,
		Score:           score,
		Advantage:       advantage,
		PlayerFrequency: pf,
		BankerFrequency: bf,
	}
}

// Evaluate runs Hertz only when both hands were dealt.
func Evaluate(playerCards, bankerCards []domain.CardToken) (Result, bool) {
	if len(playerCards) == 0 || len(bankerCards) == 0 {
		return Result{}, false
	}
	return Hertz(playerCards, bankerCards), true
}
