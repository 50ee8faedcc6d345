package service

import (
	"context"
	"errors"
	"strings"

	"event_hub/constants"
	"event_hub/model"
	"event_hub/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const referencePrefix = "BKG-"

type BookingService struct {
	store    Store
	notifier AvailabilityNotifier
	log      *zap.Logger
}

func NewBookingService(store Store, notifier AvailabilityNotifier, log *zap.Logger) *BookingService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &BookingService{store: store, notifier: notifier, log: log}
}

// NewReference returns a booking reference such as BKG-1A2B3C4D.
func NewReference() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return referencePrefix + strings.ToUpper(id[:8])
}

// Create reserves seatCount seats of the event for callerId. The seat
// decrement and the booking insert commit together. It returns the booking
// and the seats left.
func (s *BookingService) Create(ctx context.Context, callerId, eventId uint, seatCount int) (*model.Booking, int, error) {
	if seatCount <= 0 {
		return nil, 0, validation(constants.SEAT_COUNT_NOT_POSITIVE, nil)
	}

	var booking model.Booking
	var available int
	err := s.store.WithTx(ctx, func(ctx context.Context) error {
		if _, err := s.store.GetEvent(ctx, eventId); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return notFound(constants.EVENT_NOT_FOUND)
			}
			return err
		}

		left, err := s.store.ReserveSeats(ctx, eventId, seatCount)
		if errors.Is(err, repository.ErrInsufficientSeats) {
			return validation(constants.NOT_ENOUGH_SEATS, map[string]any{
				"available_seats": left,
			})
		}
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(constants.EVENT_NOT_FOUND)
		}
		if err != nil {
			return err
		}

		booking = model.Booking{
			Reference: NewReference(),
			UserId:    callerId,
			EventId:   eventId,
			SeatCount: seatCount,
		}
		if err := s.store.CreateBooking(ctx, &booking); err != nil {
			return err
		}
		available = left
		return nil
	})
	if err != nil {
		if KindOf(err) == KindInternal {
			s.log.Error("booking creation error", zap.Uint("event_id", eventId), zap.Error(err))
		}
		return nil, 0, wrap(err)
	}

	s.notifier.Publish(model.SeatAvailability{EventId: eventId, AvailableSeats: available})
	s.log.Info("booking created",
		zap.Uint("booking_id", booking.ID),
		zap.Uint("event_id", eventId),
		zap.Int("seat_count", seatCount),
		zap.Int("available_seats", available),
	)
	return &booking, available, nil
}

// ListMine returns the caller's bookings with their event title and date.
func (s *BookingService) ListMine(ctx context.Context, callerId uint) ([]model.BookingWithEvent, error) {
	rows, err := s.store.ListBookingsByUser(ctx, callerId)
	if err != nil {
		s.log.Error("error fetching bookings", zap.Uint("user_id", callerId), zap.Error(err))
		return nil, internal(err)
	}
	return rows, nil
}

// Get returns a booking owned by callerId.
func (s *BookingService) Get(ctx context.Context, callerId, id uint) (*model.Booking, error) {
	booking, err := s.owned(ctx, callerId, id)
	if err != nil {
		return nil, wrap(err)
	}
	return booking, nil
}

// Cancel deletes the caller's booking and gives its seats back to the event.
// It returns the event's seats afterwards, or 0 when the event is gone.
func (s *BookingService) Cancel(ctx context.Context, callerId, id uint) (int, error) {
	var available int
	var eventId uint
	var eventFound bool

	err := s.store.WithTx(ctx, func(ctx context.Context) error {
		booking, err := s.owned(ctx, callerId, id)
		if err != nil {
			return err
		}
		eventId = booking.EventId

		available, eventFound, err = s.store.ReleaseSeats(ctx, booking.EventId, booking.SeatCount)
		if err != nil {
			return err
		}
		err = s.store.DeleteBooking(ctx, booking.ID)
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(constants.BOOKING_NOT_FOUND)
		}
		return err
	})
	if err != nil {
		if KindOf(err) == KindInternal {
			s.log.Error("booking cancellation error", zap.Uint("booking_id", id), zap.Error(err))
		}
		return 0, wrap(err)
	}

	if eventFound {
		s.notifier.Publish(model.SeatAvailability{EventId: eventId, AvailableSeats: available})
	}
	s.log.Info("booking cancelled", zap.Uint("booking_id", id), zap.Uint("user_id", callerId))
	return available, nil
}

func (s *BookingService) owned(ctx context.Context, callerId, id uint) (*model.Booking, error) {
	booking, err := s.store.GetBooking(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound(constants.BOOKING_NOT_FOUND)
	}
	if err != nil {
		return nil, err
	}

	s.log.Debug("booking access", zap.Uint("user_id", callerId), zap.Uint("booking_user_id", booking.UserId))
	if booking.UserId != callerId {
		s.log.Warn("unauthorized booking access attempt", zap.Uint("user_id", callerId), zap.Uint("booking_id", id))
		return nil, forbidden(constants.NOT_BOOKING_OWNER, map[string]any{
			"user_id":         callerId,
			"booking_user_id": booking.UserId,
		})
	}
	return booking, nil
}
