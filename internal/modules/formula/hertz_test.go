package formula

import (
	"encoding/json"
	"testing"

	"github.com/aristath/baccarat/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvantageValue(t *testing.T) {
	tests := []struct {
		cards    []string
		expected int
	}{
		{[]string{"1", "4", "5", "7", "8"}, 2},
		{[]string{"2", "3"}, -3},
		{[]string{"6", "9"}, -5},
		{[]string{"10", "11", "12", "13", "J", "j", "Q", "q", "K", "k"}, 0},
		{[]string{"joker", "", "0", "-4"}, 0},
	}

	for _, tt := range tests {
		for _, c := range tt.cards {
			assert.Equal(t, tt.expected, AdvantageValue(domain.CardToken(c)), "card %q", c)
		}
	}
}

func TestPointValue(t *testing.T) {
	assert.Equal(t, 7, PointValue("7"))
	assert.Equal(t, 11, PointValue("11"))
	assert.Equal(t, 0, PointValue("J"))
	assert.Equal(t, 0, PointValue("k"))
	assert.Equal(t, 0, PointValue("??"))
}

func TestPlayerFrequency_ByPointTotal(t *testing.T) {
	tests := []struct {
		name     string
		cards    []string
		expected int
	}{
		{"total 7", []string{"3", "4"}, 2},
		{"total 9 with face", []string{"9", "K"}, 2},
		{"total 8 wraps", []string{"9", "9"}, 2},
		{"total 0", []string{"10", "J"}, 1},
		{"total 4", []string{"1", "3"}, 1},
		{"total 2", []string{"2"}, -5},
		{"total 5", []string{"2", "3"}, -5},
		{"total 6", []string{"6", "10"}, -5},
		{"numeric eleven counts", []string{"11", "5"}, -5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, PlayerFrequency(domain.Tokens(tt.cards...)))
		})
	}
}

func TestBankerFrequency_ByPointTotal(t *testing.T) {
	tests := []struct {
		name     string
		cards    []string
		expected int
	}{
		{"total 7", []string{"7"}, 3},
		{"total 9", []string{"4", "5"}, 3},
		{"total 6", []string{"6", "Q"}, 2},
		{"total 0", []string{"5", "5"}, 2},
		{"total 2", []string{"1", "1"}, -5},
		{"total 5", []string{"8", "7"}, -5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, BankerFrequency(domain.Tokens(tt.cards...)))
		})
	}
}

func TestFrequencies_IgnoreCardOrder(t *testing.T) {
	a := domain.Tokens("3", "9", "K")
	b := domain.Tokens("K", "3", "9")
	assert.Equal(t, PlayerFrequency(a), PlayerFrequency(b))
	assert.Equal(t, BankerFrequency(a), BankerFrequency(b))
}

func TestHertz_Score(t *testing.T) {
	// advantage: 2 + 2 + (-3) + (-5) = -4
	// player 1+4 = 5 -> -5 ; banker 3+9 = 12 -> 2 -> -5
	res := Hertz(domain.Tokens("1", "4"), domain.Tokens("3", "9"))

	assert.Equal(t, -4, res.Advantage)
	assert.Equal(t, -5, res.PlayerFrequency)
	assert.Equal(t, -5, res.BankerFrequency)
	assert.Equal(t, -14, res.Score)
	assert.Equal(t, domain.Banker, res.Prediction)
}

func TestHertz_PositiveScoreCallsPlayer(t *testing.T) {
	// advantage 2+2+0+0 = 4 ; player 7+8=15 -> 5 -> -5 ; banker 10+K -> 0 -> +2
	res := Hertz(domain.Tokens("7", "8"), domain.Tokens("10", "K"))

	assert.Equal(t, 1, res.Score)
	assert.Equal(t, domain.Player, res.Prediction)
}

func TestHertz_ZeroScoreCallsPlayer(t *testing.T) {
	// player 10: advantage 0, total 0 -> +1
	// banker 6, 7: advantage -5 + 2 = -3, total 3 -> +2
	res := Hertz(domain.Tokens("10"), domain.Tokens("6", "7"))

	assert.Equal(t, 0, res.Score)
	assert.Equal(t, domain.Player, res.Prediction)
}

func TestHertz_PredictionSignRule(t *testing.T) {
	hands := [][2][]string{
		{{"1", "2"}, {"3", "4"}},
		{{"9", "9", "9"}, {"6"}},
		{{"K", "Q"}, {"J", "10"}},
		{{"5", "5", "5"}, {"8", "8"}},
		{{"x"}, {"y", "z"}},
	}

	for _, h := range hands {
		res := Hertz(domain.Tokens(h[0]...), domain.Tokens(h[1]...))
		if res.Score < 0 {
			assert.Equal(t, domain.Banker, res.Prediction)
		} else {
			assert.Equal(t, domain.Player, res.Prediction)
		}
	}
}

func TestEvaluate_RequiresBothHands(t *testing.T) {
	_, ok := Evaluate(nil, domain.Tokens("1"))
	assert.False(t, ok)

	_, ok = Evaluate(domain.Tokens("1"), nil)
	assert.False(t, ok)

	res, ok := Evaluate(domain.Tokens("1"), domain.Tokens("2"))
	assert.True(t, ok)
	assert.Equal(t, Hertz(domain.Tokens("1"), domain.Tokens("2")), res)
}

func TestAdvantageValue_IntegralFloatCards(t *testing.T) {
	var cards []domain.CardToken
	require.NoError(t, json.Unmarshal([]byte(`[7.0, 6.0, 2.5]`), &cards))

	assert.Equal(t, 2, AdvantageValue(cards[0]))
	assert.Equal(t, -5, AdvantageValue(cards[1]))
	assert.Equal(t, 0, AdvantageValue(cards[2]))
}
