package server

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/aristath/baccarat/internal/events"
	"github.com/aristath/baccarat/internal/utils"
)

const (
	eventBufferSize   = 100
	writeTimeout      = 5 * time.Second
	heartbeatInterval = 30 * time.Second
)

// EventsSocketHandler streams game events to websocket clients
type EventsSocketHandler struct {
	bus *events.Bus
	log zerolog.Logger
}

// NewEventsSocketHandler creates the websocket feed handler
func NewEventsSocketHandler(bus *events.Bus, log zerolog.Logger) *EventsSocketHandler {
	return &EventsSocketHandler{
		bus: bus,
		log: log.With().Str("handler", "events_ws").Logger(),
	}
}

// socketMessage is what clients receive for every event and heartbeat
type socketMessage struct {
	Type      string           `json:"type"`
	Module    string           `json:"module,omitempty"`
	Timestamp string           `json:"timestamp"`
	Data      events.EventData `json:"data,omitempty"`
	Message   string           `json:"message,omitempty"`
}

// ServeHTTP handles GET /api/events/ws?types=round_recorded,shoe_changed
func (h *EventsSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var types []events.EventType
	for _, t := range utils.ParseCSV(r.URL.Query().Get("types")) {
		types = append(types, events.EventType(t))
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("Websocket handshake failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "server closing")

	// Buffer to prevent blocking the publisher
	eventChan := make(chan *events.Event, eventBufferSize)
	id := h.bus.Subscribe(func(event *events.Event) {
		// Non-blocking send (drop if channel full)
		select {
		case eventChan <- event:
		default:
			h.log.Warn().
				Str("event_type", string(event.Type)).
				Msg("Event channel full, dropping event")
		}
	}, types...)
	defer h.bus.Unsubscribe(id)

	h.log.Info().Str("subscription", id).Int("types", len(types)).Msg("Client connected to event feed")

	// Clients only listen; CloseRead cancels ctx once they go away
	ctx := conn.CloseRead(r.Context())

	if err := h.write(ctx, conn, socketMessage{
		Type:      "connected",
		Timestamp: time.Now().Format(time.RFC3339),
		Message:   "Connected to game event feed",
	}); err != nil {
		return
	}

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			h.log.Info().Str("subscription", id).Msg("Client disconnected from event feed")
			conn.Close(websocket.StatusNormalClosure, "")
			return

		case event := <-eventChan:
			msg := socketMessage{
				Type:      string(event.Type),
				Module:    event.Module,
				Timestamp: event.Timestamp.Format(time.RFC3339Nano),
				Data:      event.Data,
			}
			if err := h.write(ctx, conn, msg); err != nil {
				return
			}

		case <-heartbeat.C:
			if err := h.write(ctx, conn, socketMessage{
				Type:      "heartbeat",
				Timestamp: time.Now().Format(time.RFC3339),
			}); err != nil {
				return
			}
		}
	}
}

func (h *EventsSocketHandler) write(ctx context.Context, conn *websocket.Conn, msg socketMessage) error {
	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	if err := wsjson.Write(writeCtx, conn, msg); err != nil {
		h.log.Debug().Err(err).Str("type", msg.Type).Msg("Failed to write to websocket")
		return err
	}
	return nil
}
