package service

import (
	"context"

	"event_hub/model"
)

// Store is the transactional persistence the services run on. Methods
// called with the context passed to WithTx's fn join that transaction.
type Store interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error

	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id uint) (*model.User, error)

	ListEvents(ctx context.Context) ([]model.Event, error)
	GetEvent(ctx context.Context, id uint) (*model.Event, error)
	GetEventForUpdate(ctx context.Context, id uint) (*model.Event, error)
	GetEventBySlug(ctx context.Context, slug string) (*model.Event, error)
	EventSlugExists(ctx context.Context, slug string) (bool, error)
	CreateEvent(ctx context.Context, event *model.Event) error
	UpdateEvent(ctx context.Context, event *model.Event) error
	DeleteEvent(ctx context.Context, id uint) error
	CountBookingsByEvent(ctx context.Context, eventId uint) (int64, error)

	ReserveSeats(ctx context.Context, eventId uint, n int) (int, error)
	ReleaseSeats(ctx context.Context, eventId uint, n int) (int, bool, error)

	CreateBooking(ctx context.Context, booking *model.Booking) error
	GetBooking(ctx context.Context, id uint) (*model.Booking, error)
	DeleteBooking(ctx context.Context, id uint) error
	ListBookingsByUser(ctx context.Context, userId uint) ([]model.BookingWithEvent, error)
}

// AvailabilityNotifier receives the seat count of an event after a
// committed change to it.
type AvailabilityNotifier interface {
	Publish(update model.SeatAvailability)
}

type nopNotifier struct{}

func (nopNotifier) Publish(model.SeatAvailability) {}
