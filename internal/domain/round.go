// Package domain holds the round, card and error types shared by every module.
package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Result is the outcome of a single baccarat round
type Result string

const (
	Banker Result = "banker"
	Player Result = "player"
	Tie    Result = "tie"
)

// ErrInvalidResult is returned when a round outcome is not banker, player or tie
var ErrInvalidResult = errors.New("invalid result: must be banker, player or tie")

// ParseResult accepts any casing and surrounding whitespace.
func ParseResult(s string) (Result, error) {
	switch Result(strings.ToLower(strings.TrimSpace(s))) {
	case Banker:
		return Banker, nil
	case Player:
		return Player, nil
	case Tie:
		return Tie, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidResult, s)
}

// IsDecisive reports whether the result takes part in sequence modeling.
func (r Result) IsDecisive() bool {
	return r == Banker || r == Player
}

func (r Result) String() string { return string(r) }

// RoundRecord is one completed round as persisted in the history log.
// Card slices hold normalized ranks (1-13, 0 for tokens that could not be read).
type RoundRecord struct {
	Result      Result  `json:"result"`
	PlayerCards []int   `json:"player_cards,omitempty"`
	BankerCards []int   `json:"banker_cards,omitempty"`
	ShoeID      int     `json:"shoe_id,omitempty"`
	Timestamp   float64 `json:"timestamp"`
}

// CardToken is a card as supplied by a caller: a JSON number (1-13) or a
// string such as "7", "j" or "K".
type CardToken string

// UnmarshalJSON accepts both numbers and strings.
func (c *CardToken) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = CardToken(s)
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*c = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("card token must be a number or a string: %w", err)
	}
	*c = CardToken(n.String())
	if _, err := n.Int64(); err != nil {
		// 7.0 is card 7; fractional numbers stay as given and read as 0
		if f, ferr := n.Float64(); ferr == nil && f == math.Trunc(f) && math.Abs(f) < 1e15 {
			*c = CardToken(strconv.FormatInt(int64(f), 10))
		}
	}
	return nil
}

// MarshalJSON writes integers back as numbers and everything else as strings.
func (c CardToken) MarshalJSON() ([]byte, error) {
	if n, err := strconv.Atoi(string(c)); err == nil {
		return []byte(strconv.Itoa(n)), nil
	}
	return json.Marshal(string(c))
}

// Tokens converts plain strings into card tokens.
func Tokens(values ...string) []CardToken {
	out := make([]CardToken, len(values))
	for i, v := range values {
		out[i] = CardToken(v)
	}
	return out
}

// Rank resolves a token to a card rank in 1-13. Letter ranks resolve to
// A=1, J=11, Q=12, K=13. Anything unreadable or out of range becomes 0.
func (c CardToken) Rank() int {
	s := strings.TrimSpace(string(c))
	if n, err := strconv.Atoi(s); err == nil {
		if n >= 1 && n <= 13 {
			return n
		}
		return 0
	}
	switch strings.ToUpper(s) {
	case "A":
		return 1
	case "J":
		return 11
	case "Q":
		return 12
	case "K":
		return 13
	}
	return 0
}

// Ranks normalizes a hand. An empty hand returns nil so it is omitted on disk.
func Ranks(cards []CardToken) []int {
	if len(cards) == 0 {
		return nil
	}
	out := make([]int, len(cards))
	for i, c := range cards {
		out[i] = c.Rank()
	}
	return out
}

// DecisiveResults returns the banker/player sub-sequence of a history, ties dropped.
func DecisiveResults(history []RoundRecord) []Result {
	out := make([]Result, 0, len(history))
	for _, rec := range history {
		if rec.Result.IsDecisive() {
			out = append(out, rec.Result)
		}
	}
	return out
}
