package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"event_hub/clock"
	"event_hub/model"
)

type memoryTxKey struct{}

// MemoryStore keeps everything in process. Transactions are serialized by a
// single mutex and roll back to a snapshot when fn fails.
type MemoryStore struct {
	mu    sync.Mutex
	clock clock.Clock

	users    map[uint]model.User
	events   map[uint]model.Event
	bookings map[uint]model.Booking

	nextUserId    uint
	nextEventId   uint
	nextBookingId uint
}

func NewMemoryStore(clk clock.Clock) *MemoryStore {
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &MemoryStore{
		clock:    clk,
		users:    map[uint]model.User{},
		events:   map[uint]model.Event{},
		bookings: map[uint]model.Booking{},
	}
}

type memorySnapshot struct {
	users    map[uint]model.User
	events   map[uint]model.Event
	bookings map[uint]model.Booking

	nextUserId    uint
	nextEventId   uint
	nextBookingId uint
}

func (s *MemoryStore) snapshot() memorySnapshot {
	snap := memorySnapshot{
		users:         make(map[uint]model.User, len(s.users)),
		events:        make(map[uint]model.Event, len(s.events)),
		bookings:      make(map[uint]model.Booking, len(s.bookings)),
		nextUserId:    s.nextUserId,
		nextEventId:   s.nextEventId,
		nextBookingId: s.nextBookingId,
	}
	for k, v := range s.users {
		snap.users[k] = v
	}
	for k, v := range s.events {
		snap.events[k] = v
	}
	for k, v := range s.bookings {
		snap.bookings[k] = v
	}
	return snap
}

func (s *MemoryStore) restore(snap memorySnapshot) {
	s.users = snap.users
	s.events = snap.events
	s.bookings = snap.bookings
	s.nextUserId = snap.nextUserId
	s.nextEventId = snap.nextEventId
	s.nextBookingId = snap.nextBookingId
}

func (s *MemoryStore) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(memoryTxKey{}).(*MemoryStore)
	return owner == s
}

func (s *MemoryStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, memoryTxKey{}, s)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// run executes fn under the store mutex unless ctx already holds it.
func (s *MemoryStore) run(ctx context.Context, fn func() error) error {
	if s.inTx(ctx) {
		return fn()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

// Users

func (s *MemoryStore) CreateUser(ctx context.Context, user *model.User) error {
	return s.run(ctx, func() error {
		for _, u := range s.users {
			if u.Email == user.Email {
				return fmt.Errorf("create user: %w", ErrDuplicate)
			}
		}
		s.nextUserId++
		user.ID = s.nextUserId
		if user.CreatedAt.IsZero() {
			user.CreatedAt = s.clock.Now()
		}
		s.users[user.ID] = *user
		return nil
	})
}

func (s *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var found *model.User
	err := s.run(ctx, func() error {
		for _, u := range s.users {
			if u.Email == email {
				u := u
				found = &u
				return nil
			}
		}
		return ErrNotFound
	})
	return found, err
}

func (s *MemoryStore) GetUserByID(ctx context.Context, id uint) (*model.User, error) {
	var found *model.User
	err := s.run(ctx, func() error {
		u, ok := s.users[id]
		if !ok {
			return ErrNotFound
		}
		found = &u
		return nil
	})
	return found, err
}

// Events

func (s *MemoryStore) ListEvents(ctx context.Context) ([]model.Event, error) {
	var events []model.Event
	err := s.run(ctx, func() error {
		events = make([]model.Event, 0, len(s.events))
		for _, e := range s.events {
			events = append(events, e)
		}
		sort.Slice(events, func(i, j int) bool { return events[i].ID < events[j].ID })
		return nil
	})
	return events, err
}

func (s *MemoryStore) GetEvent(ctx context.Context, id uint) (*model.Event, error) {
	var found *model.Event
	err := s.run(ctx, func() error {
		e, ok := s.events[id]
		if !ok {
			return ErrNotFound
		}
		found = &e
		return nil
	})
	return found, err
}

// GetEventForUpdate is GetEvent; the store mutex already excludes other writers.
func (s *MemoryStore) GetEventForUpdate(ctx context.Context, id uint) (*model.Event, error) {
	return s.GetEvent(ctx, id)
}

func (s *MemoryStore) GetEventBySlug(ctx context.Context, slug string) (*model.Event, error) {
	var found *model.Event
	err := s.run(ctx, func() error {
		for _, e := range s.events {
			if e.Slug == slug {
				e := e
				found = &e
				return nil
			}
		}
		return ErrNotFound
	})
	return found, err
}

func (s *MemoryStore) EventSlugExists(ctx context.Context, slug string) (bool, error) {
	_, err := s.GetEventBySlug(ctx, slug)
	if err == ErrNotFound {
		return false, nil
	}
	return err == nil, err
}

func checkEvent(e model.Event) error {
	if e.MaxSeats <= 0 || e.AvailableSeats < 0 || e.AvailableSeats > e.MaxSeats || e.Price < 0 {
		return fmt.Errorf("event %d violates seat or price constraints", e.ID)
	}
	return nil
}

func (s *MemoryStore) CreateEvent(ctx context.Context, event *model.Event) error {
	return s.run(ctx, func() error {
		if err := checkEvent(*event); err != nil {
			return fmt.Errorf("create event: %w", err)
		}
		if _, ok := s.users[event.OrganizerId]; !ok {
			return fmt.Errorf("create event: organizer %d does not exist", event.OrganizerId)
		}
		for _, e := range s.events {
			if e.Slug == event.Slug {
				return fmt.Errorf("create event: %w", ErrDuplicate)
			}
		}
		s.nextEventId++
		event.ID = s.nextEventId
		if event.CreatedAt.IsZero() {
			event.CreatedAt = s.clock.Now()
		}
		s.events[event.ID] = *event
		return nil
	})
}

func (s *MemoryStore) UpdateEvent(ctx context.Context, event *model.Event) error {
	return s.run(ctx, func() error {
		current, ok := s.events[event.ID]
		if !ok {
			return ErrNotFound
		}
		if err := checkEvent(*event); err != nil {
			return fmt.Errorf("update event: %w", err)
		}
		current.Title = event.Title
		current.Description = event.Description
		current.Date = event.Date
		current.Location = event.Location
		current.Category = event.Category
		current.Image = event.Image
		current.Price = event.Price
		current.MaxSeats = event.MaxSeats
		current.AvailableSeats = event.AvailableSeats
		s.events[event.ID] = current
		return nil
	})
}

func (s *MemoryStore) DeleteEvent(ctx context.Context, id uint) error {
	return s.run(ctx, func() error {
		if _, ok := s.events[id]; !ok {
			return ErrNotFound
		}
		for _, b := range s.bookings {
			if b.EventId == id {
				return fmt.Errorf("delete event: event %d is referenced by booking %d", id, b.ID)
			}
		}
		delete(s.events, id)
		return nil
	})
}

func (s *MemoryStore) CountBookingsByEvent(ctx context.Context, eventId uint) (int64, error) {
	var count int64
	err := s.run(ctx, func() error {
		for _, b := range s.bookings {
			if b.EventId == eventId {
				count++
			}
		}
		return nil
	})
	return count, err
}

// Seats

func (s *MemoryStore) ReserveSeats(ctx context.Context, eventId uint, n int) (int, error) {
	var available int
	err := s.run(ctx, func() error {
		e, ok := s.events[eventId]
		if !ok {
			return ErrNotFound
		}
		available = e.AvailableSeats
		if n <= 0 || e.AvailableSeats < n {
			return ErrInsufficientSeats
		}
		e.AvailableSeats -= n
		s.events[eventId] = e
		available = e.AvailableSeats
		return nil
	})
	return available, err
}

func (s *MemoryStore) ReleaseSeats(ctx context.Context, eventId uint, n int) (int, bool, error) {
	var available int
	var found bool
	err := s.run(ctx, func() error {
		e, ok := s.events[eventId]
		if !ok {
			return nil
		}
		e.AvailableSeats += n
		if err := checkEvent(e); err != nil {
			return fmt.Errorf("release seats: %w", err)
		}
		s.events[eventId] = e
		available, found = e.AvailableSeats, true
		return nil
	})
	return available, found, err
}

// Bookings

func (s *MemoryStore) CreateBooking(ctx context.Context, booking *model.Booking) error {
	return s.run(ctx, func() error {
		if booking.SeatCount <= 0 {
			return fmt.Errorf("create booking: seat_count must be positive")
		}
		if _, ok := s.users[booking.UserId]; !ok {
			return fmt.Errorf("create booking: user %d does not exist", booking.UserId)
		}
		if _, ok := s.events[booking.EventId]; !ok {
			return fmt.Errorf("create booking: event %d does not exist", booking.EventId)
		}
		for _, b := range s.bookings {
			if b.Reference == booking.Reference {
				return fmt.Errorf("create booking: %w", ErrDuplicate)
			}
		}
		s.nextBookingId++
		booking.ID = s.nextBookingId
		if booking.CreatedAt.IsZero() {
			booking.CreatedAt = s.clock.Now()
		}
		s.bookings[booking.ID] = *booking
		return nil
	})
}

func (s *MemoryStore) GetBooking(ctx context.Context, id uint) (*model.Booking, error) {
	var found *model.Booking
	err := s.run(ctx, func() error {
		b, ok := s.bookings[id]
		if !ok {
			return ErrNotFound
		}
		found = &b
		return nil
	})
	return found, err
}

func (s *MemoryStore) DeleteBooking(ctx context.Context, id uint) error {
	return s.run(ctx, func() error {
		if _, ok := s.bookings[id]; !ok {
			return ErrNotFound
		}
		delete(s.bookings, id)
		return nil
	})
}

func (s *MemoryStore) ListBookingsByUser(ctx context.Context, userId uint) ([]model.BookingWithEvent, error) {
	var rows []model.BookingWithEvent
	err := s.run(ctx, func() error {
		rows = []model.BookingWithEvent{}
		for _, b := range s.bookings {
			if b.UserId != userId {
				continue
			}
			e, ok := s.events[b.EventId]
			if !ok {
				continue
			}
			rows = append(rows, model.BookingWithEvent{
				ID:         b.ID,
				Reference:  b.Reference,
				EventId:    b.EventId,
				SeatCount:  b.SeatCount,
				CreatedAt:  b.CreatedAt,
				EventTitle: e.Title,
				EventDate:  e.Date,
			})
		}
		sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
		return nil
	})
	return rows, err
}
