// Package events provides a small in-process event bus for game activity.
package events

// EventType names a kind of event
type EventType string

const (
	RoundRecorded  EventType = "round_recorded"
	ShoeChanged    EventType = "shoe_changed"
	ModelTrained   EventType = "model_trained"
	HistoryCleared EventType = "history_cleared"
	PredictionMade EventType = "prediction_made"
)

// AllEventTypes lists every event the game publishes
var AllEventTypes = []EventType{
	RoundRecorded,
	ShoeChanged,
	ModelTrained,
	HistoryCleared,
	PredictionMade,
}
