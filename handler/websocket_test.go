package handler_test

import (
	"fmt"
	"net"
	"testing"
	"time"

	"event_hub/constants"
	"event_hub/model"

	"github.com/fasthttp/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// listen serves the app on a loopback port and returns its address.
func (s *testServer) listen(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = s.app.Listener(ln) }()
	t.Cleanup(func() { _ = s.app.ShutdownWithTimeout(time.Second) })
	return ln.Addr().String()
}

func dialSeatFeed(t *testing.T, addr string, eventId uint, readBuffer int) *websocket.Conn {
	t.Helper()
	dialer := websocket.Dialer{ReadBufferSize: readBuffer, HandshakeTimeout: 5 * time.Second}
	conn, _, err := dialer.Dial(fmt.Sprintf("ws://%s/api/events/%d/ws", addr, eventId), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readSeats(t *testing.T, conn *websocket.Conn) model.SeatAvailability {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var update model.SeatAvailability
	require.NoError(t, conn.ReadJSON(&update))
	return update
}

func TestSeatFeedBroadcastsCommittedChanges(t *testing.T) {
	s := newTestServer(t, nil)
	_, orgToken := s.register(t, "org@example.com", true)
	_, attendeeToken := s.register(t, "att@example.com", false)
	eventId := s.createEvent(t, orgToken, 10)
	addr := s.listen(t)

	conn := dialSeatFeed(t, addr, eventId, 4096)
	assert.Equal(t, model.SeatAvailability{EventId: eventId, AvailableSeats: 10}, readSeats(t, conn))
	// registered before the first message is queued
	assert.Equal(t, 1, s.hub.Subscribers(eventId))

	resp := s.book(t, attendeeToken, eventId, 4)
	require.Equal(t, fiber.StatusCreated, resp.status)
	bookingId := uint(resp.object(t)["booking"].(map[string]any)["id"].(float64))
	assert.Equal(t, 6, readSeats(t, conn).AvailableSeats)

	resp = s.do(t, "PUT", fmt.Sprintf("/api/events/%d", eventId), orgToken, fiber.Map{"max_seats": 12})
	require.Equal(t, fiber.StatusOK, resp.status)
	assert.Equal(t, 8, readSeats(t, conn).AvailableSeats)

	resp = s.do(t, "DELETE", fmt.Sprintf("/api/bookings/%d", bookingId), attendeeToken, nil)
	require.Equal(t, fiber.StatusOK, resp.status)
	assert.Equal(t, model.SeatAvailability{EventId: eventId, AvailableSeats: 12}, readSeats(t, conn))

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return s.hub.Subscribers(eventId) == 0 }, 5*time.Second, 10*time.Millisecond)
}

func TestSeatFeedUnknownEvent(t *testing.T) {
	s := newTestServer(t, nil)
	addr := s.listen(t)

	conn := dialSeatFeed(t, addr, 999, 4096)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var body map[string]any
	require.NoError(t, conn.ReadJSON(&body))
	assert.Equal(t, constants.EVENT_NOT_FOUND, body["error"])
	assert.Zero(t, s.hub.Subscribers(999))
}

func TestStalledSeatSubscriberDoesNotBlockBookings(t *testing.T) {
	s := newTestServer(t, nil)
	_, orgToken := s.register(t, "org@example.com", true)
	_, attendeeToken := s.register(t, "att@example.com", false)
	watched := s.createEvent(t, orgToken, 10)
	other := s.createEvent(t, orgToken, 10)
	addr := s.listen(t)

	// never read from this client
	dialSeatFeed(t, addr, watched, 1024)
	require.Eventually(t, func() bool { return s.hub.Subscribers(watched) == 1 }, 5*time.Second, 10*time.Millisecond)

	published := make(chan struct{})
	go func() {
		defer close(published)
		for i := 0; i < 100000; i++ {
			s.hub.Publish(model.SeatAvailability{EventId: watched, AvailableSeats: i % 10})
		}
	}()
	select {
	case <-published:
	case <-time.After(5 * time.Second):
		t.Fatal("publishing to a stalled subscriber blocked")
	}
	assert.Zero(t, s.hub.Subscribers(watched))

	start := time.Now()
	resp := s.book(t, attendeeToken, other, 2)
	assert.Equal(t, fiber.StatusCreated, resp.status)
	assert.Less(t, time.Since(start), 5*time.Second)
}
