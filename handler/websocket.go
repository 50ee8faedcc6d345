package handler

import (
	"context"
	"sync"
	"time"

	"event_hub/constants"
	"event_hub/model"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	seatQueueSize    = 16
	seatWriteTimeout = 10 * time.Second
)

// seatSubscriber is one websocket client. Updates are queued on send and
// written by the connection's own goroutine.
type seatSubscriber struct {
	conn      *websocket.Conn
	send      chan model.SeatAvailability
	done      chan struct{}
	closeOnce sync.Once
}

func newSeatSubscriber(conn *websocket.Conn) *seatSubscriber {
	return &seatSubscriber{
		conn: conn,
		send: make(chan model.SeatAvailability, seatQueueSize),
		done: make(chan struct{}),
	}
}

func (s *seatSubscriber) close() {
	s.closeOnce.Do(func() { close(s.done) })
}

// SeatHub fans seat availability out to websocket clients watching an event.
// Publish never blocks on a client: a subscriber whose queue is full is
// dropped.
type SeatHub struct {
	mu           sync.Mutex
	clients      map[uint]map[*seatSubscriber]struct{}
	writeTimeout time.Duration
	log          *zap.Logger
}

func NewSeatHub(log *zap.Logger) *SeatHub {
	return &SeatHub{
		clients:      make(map[uint]map[*seatSubscriber]struct{}),
		writeTimeout: seatWriteTimeout,
		log:          log,
	}
}

// subscribe registers sub for eventId and queues the availability returned
// by current as its first message. Both happen under the hub lock, so a
// change committed after current reads is always published to sub.
func (h *SeatHub) subscribe(eventId uint, sub *seatSubscriber, current func() (int, error)) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	available, err := current()
	if err != nil {
		return 0, err
	}
	sub.send <- model.SeatAvailability{EventId: eventId, AvailableSeats: available}

	if h.clients[eventId] == nil {
		h.clients[eventId] = make(map[*seatSubscriber]struct{})
	}
	h.clients[eventId][sub] = struct{}{}
	return len(h.clients[eventId]), nil
}

func (h *SeatHub) remove(eventId uint, sub *seatSubscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.drop(eventId, sub)
}

// drop must be called with h.mu held.
func (h *SeatHub) drop(eventId uint, sub *seatSubscriber) {
	sub.close()
	delete(h.clients[eventId], sub)
	if len(h.clients[eventId]) == 0 {
		delete(h.clients, eventId)
	}
}

// Subscribers returns how many clients watch eventId.
func (h *SeatHub) Subscribers(eventId uint) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[eventId])
}

// Publish queues update for every client of its event.
func (h *SeatHub) Publish(update model.SeatAvailability) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.clients[update.EventId] {
		select {
		case sub.send <- update:
		default:
			h.log.Debug("dropping slow seat subscriber", zap.Uint("event_id", update.EventId))
			h.drop(update.EventId, sub)
		}
	}
}

// writeLoop sends queued updates to the client until it is dropped or a
// write fails.
func (h *SeatHub) writeLoop(sub *seatSubscriber) {
	for {
		select {
		case <-sub.done:
			return
		case update := <-sub.send:
			_ = sub.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			if err := sub.conn.WriteJSON(update); err != nil {
				return
			}
		}
	}
}

// RequireUpgrade rejects plain HTTP requests to a websocket route.
func RequireUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// SeatWebsocket streams the event's available seats: the current value on
// connect, then every committed change.
func (h *Handler) SeatWebsocket(c *websocket.Conn) {
	defer c.Close()

	eventId, ok := c.Locals("inputId").(uint)
	if !ok {
		return
	}

	sub := newSeatSubscriber(c)
	total, err := h.hub.subscribe(eventId, sub, func() (int, error) {
		event, err := h.events.Get(context.Background(), eventId)
		if err != nil {
			return 0, err
		}
		return event.AvailableSeats, nil
	})
	if err != nil {
		_ = c.SetWriteDeadline(time.Now().Add(h.hub.writeTimeout))
		_ = c.WriteJSON(fiber.Map{"error": constants.EVENT_NOT_FOUND})
		return
	}
	h.log.Debug("seat subscriber connected", zap.Uint("event_id", eventId), zap.Int("subscribers", total))

	go func() {
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				sub.close()
				return
			}
		}
	}()

	h.hub.writeLoop(sub)
	h.hub.remove(eventId, sub)
	h.log.Debug("seat subscriber disconnected", zap.Uint("event_id", eventId))
}
