package events

import (
	"encoding/json"
	"time"
)

// EventData is the interface that all event data types must implement
type EventData interface {
	// EventType returns the event type this data is associated with
	EventType() EventType
}

// RoundRecordedData contains data for RoundRecorded events
type RoundRecordedData struct {
	Result       string `json:"result"`
	ShoeID       int    `json:"shoe_id"`
	CurrentRound int    `json:"current_round"`
	TotalRounds  int    `json:"total_rounds"`
}

// EventType returns the event type for RoundRecordedData
func (d *RoundRecordedData) EventType() EventType {
	return RoundRecorded
}

// ShoeChangedData contains data for ShoeChanged events
type ShoeChangedData struct {
	PreviousShoeID int  `json:"previous_shoe_id"`
	ShoeID         int  `json:"shoe_id"`
	Manual         bool `json:"manual"`
}

// EventType returns the event type for ShoeChangedData
func (d *ShoeChangedData) EventType() EventType {
	return ShoeChanged
}

// ModelTrainedData contains data for ModelTrained events
type ModelTrainedData struct {
	Accuracy float64 `json:"accuracy"`
	Examples int     `json:"examples"`
	Saved    bool    `json:"saved"`
}

// EventType returns the event type for ModelTrainedData
func (d *ModelTrainedData) EventType() EventType {
	return ModelTrained
}

// HistoryClearedData contains data for HistoryCleared events
type HistoryClearedData struct {
	ShoeID int `json:"shoe_id"`
}

// EventType returns the event type for HistoryClearedData
func (d *HistoryClearedData) EventType() EventType {
	return HistoryCleared
}

// PredictionMadeData contains data for PredictionMade events
type PredictionMadeData struct {
	PredictionID string  `json:"prediction_id"`
	Prediction   string  `json:"prediction,omitempty"`
	Confidence   float64 `json:"confidence"`
	ReasonCode   string  `json:"reason_code"`
	Mode         string  `json:"mode"`
}

// EventType returns the event type for PredictionMadeData
func (d *PredictionMadeData) EventType() EventType {
	return PredictionMade
}

// Event is one published event
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Module    string    `json:"module"`
	Data      EventData `json:"data,omitempty"`
}

// UnmarshalJSON decodes Data into the concrete type matching Type
func (e *Event) UnmarshalJSON(data []byte) error {
	type Alias Event
	aux := &struct {
		Data json.RawMessage `json:"data"`
		*Alias
	}{
		Alias: (*Alias)(e),
	}

	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	e.Data = nil

	if len(aux.Data) == 0 || string(aux.Data) == "null" {
		return nil
	}

	var eventData EventData
	switch aux.Type {
	case RoundRecorded:
		eventData = &RoundRecordedData{}
	case ShoeChanged:
		eventData = &ShoeChangedData{}
	case ModelTrained:
		eventData = &ModelTrainedData{}
	case HistoryCleared:
		eventData = &HistoryClearedData{}
	case PredictionMade:
		eventData = &PredictionMadeData{}
	default:
		var raw map[string]interface{}
		if err := json.Unmarshal(aux.Data, &raw); err != nil {
			return err
		}
		e.Data = &GenericEventData{Type: aux.Type, Data: raw}
		return nil
	}

	if err := json.Unmarshal(aux.Data, eventData); err != nil {
		return err
	}
	e.Data = eventData
	return nil
}

// GenericEventData is a fallback for events that don't have a specific type
type GenericEventData struct {
	Type EventType              `json:"-"`
	Data map[string]interface{} `json:"-"`
}

// EventType returns the event type for GenericEventData
func (d *GenericEventData) EventType() EventType {
	return d.Type
}

// MarshalJSON customizes JSON serialization for GenericEventData
func (d *GenericEventData) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Data)
}
