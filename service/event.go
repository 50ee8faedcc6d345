package service

import (
	"context"
	"errors"
	"time"

	"event_hub/clock"
	"event_hub/constants"
	"event_hub/helper"
	"event_hub/model"
	"event_hub/repository"
	"event_hub/utils"

	"github.com/jinzhu/copier"
	"go.uber.org/zap"
)

type EventService struct {
	store    Store
	clock    clock.Clock
	notifier AvailabilityNotifier
	log      *zap.Logger
}

func NewEventService(store Store, clk clock.Clock, notifier AvailabilityNotifier, log *zap.Logger) *EventService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &EventService{store: store, clock: clk, notifier: notifier, log: log}
}

func (s *EventService) List(ctx context.Context) ([]model.Event, error) {
	events, err := s.store.ListEvents(ctx)
	if err != nil {
		return nil, internal(err)
	}
	return events, nil
}

func (s *EventService) Get(ctx context.Context, id uint) (*model.Event, error) {
	event, err := s.store.GetEvent(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound(constants.EVENT_NOT_FOUND)
	}
	if err != nil {
		return nil, internal(err)
	}
	return event, nil
}

func (s *EventService) GetBySlug(ctx context.Context, slug string) (*model.Event, error) {
	event, err := s.store.GetEventBySlug(ctx, slug)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound(constants.EVENT_NOT_FOUND)
	}
	if err != nil {
		return nil, internal(err)
	}
	return event, nil
}

// Create stores a new event owned by callerId, who must be an organizer.
func (s *EventService) Create(ctx context.Context, callerId uint, in model.CreateEventInput) (*model.Event, error) {
	caller, err := s.store.GetUserByID(ctx, callerId)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, internal(err)
	}
	if caller == nil || !caller.IsOrganizer {
		s.log.Warn("event creation by non organizer", zap.Uint("user_id", callerId))
		return nil, forbidden(constants.NOT_AN_ORGANIZER, nil)
	}

	if in.Title == "" || in.Date == "" || in.Location == "" || in.Category == "" || in.MaxSeats == nil || in.Price == nil {
		return nil, validation(constants.MISSING_REQUIRED_FIELDS, map[string]any{
			"required_fields": model.CreateEventRequiredFields,
		})
	}
	if *in.MaxSeats <= 0 {
		return nil, validation(constants.MAX_SEATS_NOT_POSITIVE, nil)
	}
	if *in.Price < 0 {
		return nil, validation(constants.PRICE_NEGATIVE, nil)
	}
	date, err := s.futureDate(in.Date)
	if err != nil {
		return nil, err
	}

	var event model.Event
	if err := copier.Copy(&event, &in); err != nil {
		return nil, internal(err)
	}
	event.Date = date
	event.MaxSeats = *in.MaxSeats
	event.AvailableSeats = *in.MaxSeats
	event.Price = *in.Price
	event.OrganizerId = callerId

	err = s.store.WithTx(ctx, func(ctx context.Context) error {
		slug, err := helper.GenerateUniqueSlug(ctx, event.Title, s.store.EventSlugExists)
		if err != nil {
			return err
		}
		event.Slug = slug
		return s.store.CreateEvent(ctx, &event)
	})
	if err != nil {
		return nil, wrap(err)
	}

	s.log.Info("event created", zap.Uint("event_id", event.ID), zap.Uint("organizer_id", callerId))
	return &event, nil
}

// Update applies the supplied fields of in to the event. Only the organizer
// of the event may change it, and capacity cannot drop below the seats
// already booked.
func (s *EventService) Update(ctx context.Context, callerId, id uint, in model.UpdateEventInput) (*model.Event, error) {
	var updated model.Event
	seatsChanged := false

	err := s.store.WithTx(ctx, func(ctx context.Context) error {
		event, err := s.lockOwned(ctx, callerId, id, "update")
		if err != nil {
			return err
		}

		updated = *event
		if err := copier.CopyWithOption(&updated, &in, copier.Option{IgnoreEmpty: true}); err != nil {
			return err
		}

		if in.Date != nil {
			date, err := s.futureDate(*in.Date)
			if err != nil {
				return err
			}
			updated.Date = date
		}
		if in.Price != nil {
			if *in.Price < 0 {
				return validation(constants.PRICE_NEGATIVE, nil)
			}
			updated.Price = *in.Price
		}
		if in.MaxSeats != nil {
			newMax := *in.MaxSeats
			if newMax <= 0 {
				return validation(constants.MAX_SEATS_NOT_POSITIVE, nil)
			}
			if newMax < event.Booked() {
				return validation(constants.SEATS_BELOW_BOOKED, map[string]any{
					"booked_seats": event.Booked(),
				})
			}
			updated.AvailableSeats = event.AvailableSeats + newMax - event.MaxSeats
			updated.MaxSeats = newMax
			seatsChanged = updated.AvailableSeats != event.AvailableSeats
		}

		err = s.store.UpdateEvent(ctx, &updated)
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(constants.EVENT_NOT_FOUND)
		}
		return err
	})
	if err != nil {
		return nil, wrap(err)
	}

	if seatsChanged {
		s.notifier.Publish(model.SeatAvailability{EventId: updated.ID, AvailableSeats: updated.AvailableSeats})
	}
	s.log.Info("event updated", zap.Uint("event_id", id), zap.Uint("user_id", callerId))
	return &updated, nil
}

// Delete removes an event owned by callerId. Events with bookings are kept.
func (s *EventService) Delete(ctx context.Context, callerId, id uint) error {
	err := s.store.WithTx(ctx, func(ctx context.Context) error {
		if _, err := s.lockOwned(ctx, callerId, id, "delete"); err != nil {
			return err
		}

		count, err := s.store.CountBookingsByEvent(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return newError(KindUnprocessable, constants.EVENT_HAS_BOOKINGS, map[string]any{
				"bookings_count": count,
			})
		}
		err = s.store.DeleteEvent(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(constants.EVENT_NOT_FOUND)
		}
		return err
	})
	if err != nil {
		return wrap(err)
	}

	s.log.Info("event deleted", zap.Uint("event_id", id), zap.Uint("user_id", callerId))
	return nil
}

// lockOwned loads the event for update and checks callerId organizes it.
func (s *EventService) lockOwned(ctx context.Context, callerId, id uint, action string) (*model.Event, error) {
	event, err := s.store.GetEventForUpdate(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound(constants.EVENT_NOT_FOUND)
	}
	if err != nil {
		return nil, err
	}

	s.log.Debug("event "+action+" attempt",
		zap.Uint("event_id", id),
		zap.Uint("organizer_id", event.OrganizerId),
		zap.Uint("user_id", callerId),
	)
	if event.OrganizerId != callerId {
		s.log.Warn("unauthorized event "+action+" attempt", zap.Uint("event_id", id), zap.Uint("user_id", callerId))
		return nil, forbidden(constants.NOT_EVENT_ORGANIZER, map[string]any{
			"details": map[string]any{
				"event_organizer": event.OrganizerId,
				"current_user":    callerId,
			},
		})
	}
	return event, nil
}

func (s *EventService) futureDate(value string) (time.Time, error) {
	date, err := utils.ParseEventDate(value)
	if err != nil {
		return date, validation(constants.INVALID_DATA_FORMAT, map[string]any{"details": err.Error()})
	}
	if !date.After(s.clock.Now()) {
		return date, validation(constants.DATE_NOT_IN_FUTURE, nil)
	}
	return date, nil
}
