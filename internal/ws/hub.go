package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"RideDesk/bot/chat"
	"RideDesk/entity"
	"RideDesk/internal/lib/sl"
)

const (
	EventBookingConfirmed = "booking_confirmed"
	EventInbound          = "inbound"
)

var ErrQueueFull = errors.New("ws broadcast queue full")

// Event represents a WebSocket event sent to back-office clients.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type inboundData struct {
	UserID string    `json:"user_id"`
	Kind   string    `json:"kind"`
	Step   string    `json:"step"`
	At     time.Time `json:"at"`
}

// Hub maintains the set of active WebSocket clients and broadcasts events.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan *Event
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
	log        *slog.Logger
}

// NewHub creates a new Hub instance.
func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan *Event, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log.With(sl.Module("ws.hub")),
	}
}

// Run starts the hub's event loop until ctx is done. Should be called in a goroutine.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.log.Debug("client connected", slog.String("client", client.name))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			data, err := json.Marshal(event)
			if err != nil {
				h.log.Error("marshal event", slog.String("type", event.Type), sl.Err(err))
				continue
			}
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- data:
				default:
					// slow client
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) enqueue(event *Event) error {
	select {
	case h.broadcast <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

// PublishBooking sends a booking_confirmed event to all connected clients.
// It never blocks the conversation flow.
func (h *Hub) PublishBooking(_ context.Context, b entity.Booking) error {
	return h.enqueue(&Event{Type: EventBookingConfirmed, Data: b})
}

// OnInbound mirrors inbound traffic to the live feed.
func (h *Hub) OnInbound(userID string, input chat.UserInput, step chat.StepID) {
	err := h.enqueue(&Event{
		Type: EventInbound,
		Data: inboundData{
			UserID: userID,
			Kind:   string(input.Kind),
			Step:   string(step),
			At:     time.Now().UTC(),
		},
	})
	if err != nil {
		h.log.Warn("inbound event dropped", slog.String("user_id", userID), sl.Err(err))
	}
}
