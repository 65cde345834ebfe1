// Package arbiter merges the sequence model and the card formula into one
// final prediction. Decide is a pure function of its inputs.
package arbiter

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/aristath/baccarat/internal/domain"
)

// Mode selects which sources take part in a decision
type Mode string

const (
	ModeCombined    Mode = "combined"
	ModeAIOnly      Mode = "ai_only"
	ModeFormulaOnly Mode = "formula_only"
)

// HighConfidence is the AI confidence above which the model wins a
// disagreement with the formula.
const HighConfidence = 0.7

// ErrUnknownMode is returned by ParseMode for anything but the three modes
var ErrUnknownMode = errors.New("unknown prediction mode")

// ParseMode accepts any casing. An empty string means combined.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeCombined, nil
	case ModeCombined, ModeAIOnly, ModeFormulaOnly:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q (want combined, ai_only or formula_only)", ErrUnknownMode, s)
}

// Reason identifies the rule that produced a decision
type Reason string

const (
	ReasonAgreement          Reason = "agreement"
	ReasonHighAIConfidence   Reason = "high_ai_confidence"
	ReasonFormulaOverride    Reason = "formula_override"
	ReasonAIFallback         Reason = "ai_fallback"
	ReasonFormulaFallback    Reason = "formula_fallback"
	ReasonNoPrediction       Reason = "no_prediction"
	ReasonAIOnly             Reason = "ai_only"
	ReasonAIUnavailable      Reason = "ai_unavailable"
	ReasonFormulaOnly        Reason = "formula_only"
	ReasonFormulaUnavailable Reason = "formula_unavailable"
)

var reasonMessages = map[Reason]string{
	ReasonAgreement:          "AI and formula agree",
	ReasonHighAIConfidence:   "AI has high confidence",
	ReasonFormulaOverride:    "Formula override",
	ReasonAIFallback:         "Using AI prediction (formula unavailable)",
	ReasonFormulaFallback:    "Using formula prediction (AI unavailable)",
	ReasonNoPrediction:       "No prediction available",
	ReasonAIOnly:             "AI-only prediction",
	ReasonAIUnavailable:      "AI unavailable",
	ReasonFormulaOnly:        "Formula-only prediction",
	ReasonFormulaUnavailable: "Formula unavailable, card values required",
}

// Message returns the human readable rationale
func (r Reason) Message() string {
	if msg, ok := reasonMessages[r]; ok {
		return msg
	}
	return string(r)
}

// AIOutcome is what the sequence predictor contributed
type AIOutcome struct {
	Result     domain.Result
	Confidence float64
}

// FormulaOutcome is what the card formula contributed
type FormulaOutcome struct {
	Result domain.Result
	Score  int
}

// Confidence is |score|/10. It is not bounded to [0,1].
func (f FormulaOutcome) Confidence() float64 {
	return math.Abs(float64(f.Score)) / 10
}

// Decision is the final answer. Prediction is nil when no source was usable.
type Decision struct {
	Prediction *domain.Result
	Confidence float64
	Reason     Reason
}

// Message returns the rationale text of the decision
func (d Decision) Message() string {
	return d.Reason.Message()
}

func fromAI(ai *AIOutcome, reason Reason) Decision {
	r := ai.Result
	return Decision{Prediction: &r, Confidence: ai.Confidence, Reason: reason}
}

func fromFormula(f *FormulaOutcome, reason Reason) Decision {
	r := f.Result
	return Decision{Prediction: &r, Confidence: f.Confidence(), Reason: reason}
}

// Decide applies mode to the available outcomes. A nil outcome means that
// source was unavailable.
func Decide(mode Mode, ai *AIOutcome, formula *FormulaOutcome) Decision {
	switch mode {
	case ModeAIOnly:
		if ai == nil {
			return Decision{Reason: ReasonAIUnavailable}
		}
		return fromAI(ai, ReasonAIOnly)

	case ModeFormulaOnly:
		if formula == nil {
			return Decision{Reason: ReasonFormulaUnavailable}
		}
		return fromFormula(formula, ReasonFormulaOnly)
	}

	switch {
	case ai != nil && formula != nil:
		if ai.Result == formula.Result {
			return fromAI(ai, ReasonAgreement)
		}
		if ai.Confidence > HighConfidence {
			return fromAI(ai, ReasonHighAIConfidence)
		}
		return fromFormula(formula, ReasonFormulaOverride)
	case ai != nil:
		return fromAI(ai, ReasonAIFallback)
	case formula != nil:
		return fromFormula(formula, ReasonFormulaFallback)
	default:
		return Decision{Reason: ReasonNoPrediction}
	}
}
