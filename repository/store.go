package repository

import (
	"context"
	"errors"
	"fmt"

	"event_hub/model"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicate         = errors.New("duplicate record")
	ErrInsufficientSeats = errors.New("insufficient seats")
)

type txKey struct{}

// Store persists users, events and bookings in PostgreSQL through gorm.
// A transaction opened by WithTx travels in the context, so every method
// called with that context joins it.
type Store struct {
	conn *gorm.DB
}

func NewStore(conn *gorm.DB) *Store {
	return &Store{conn: conn}
}

func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}
	return s.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

func txFromContext(ctx context.Context) *gorm.DB {
	tx, _ := ctx.Value(txKey{}).(*gorm.DB)
	return tx
}

func (s *Store) db(ctx context.Context) *gorm.DB {
	if tx := txFromContext(ctx); tx != nil {
		return tx
	}
	return s.conn.WithContext(ctx)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func translate(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
		return fmt.Errorf("%s: %w", op, ErrDuplicate)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// Users

func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	return translate(s.db(ctx).Create(user).Error, "create user")
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := s.db(ctx).Where(&model.User{Email: email}).First(&user).Error; err != nil {
		return nil, translate(err, "get user by email")
	}
	return &user, nil
}

func (s *Store) GetUserByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := s.db(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err, "get user")
	}
	return &user, nil
}

// Events

func (s *Store) ListEvents(ctx context.Context) ([]model.Event, error) {
	var events []model.Event
	if err := s.db(ctx).Order("id").Find(&events).Error; err != nil {
		return nil, translate(err, "list events")
	}
	return events, nil
}

func (s *Store) GetEvent(ctx context.Context, id uint) (*model.Event, error) {
	var event model.Event
	if err := s.db(ctx).First(&event, id).Error; err != nil {
		return nil, translate(err, "get event")
	}
	return &event, nil
}

// GetEventForUpdate reads the event and holds its row lock until the
// surrounding transaction ends.
func (s *Store) GetEventForUpdate(ctx context.Context, id uint) (*model.Event, error) {
	var event model.Event
	err := s.db(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&event, id).Error
	if err != nil {
		return nil, translate(err, "get event for update")
	}
	return &event, nil
}

func (s *Store) GetEventBySlug(ctx context.Context, slug string) (*model.Event, error) {
	var event model.Event
	if err := s.db(ctx).Where("slug = ?", slug).First(&event).Error; err != nil {
		return nil, translate(err, "get event by slug")
	}
	return &event, nil
}

func (s *Store) EventSlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := s.db(ctx).Model(&model.Event{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, translate(err, "check slug")
	}
	return count > 0, nil
}

func (s *Store) CreateEvent(ctx context.Context, event *model.Event) error {
	return translate(s.db(ctx).Omit(clause.Associations).Create(event).Error, "create event")
}

func (s *Store) UpdateEvent(ctx context.Context, event *model.Event) error {
	result := s.db(ctx).Model(&model.Event{}).
		Where("id = ?", event.ID).
		Updates(map[string]interface{}{
			"title":           event.Title,
			"description":     event.Description,
			"date":            event.Date,
			"location":        event.Location,
			"category":        event.Category,
			"image":           event.Image,
			"price":           event.Price,
			"max_seats":       event.MaxSeats,
			"available_seats": event.AvailableSeats,
		})
	if result.Error != nil {
		return translate(result.Error, "update event")
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteEvent(ctx context.Context, id uint) error {
	result := s.db(ctx).Delete(&model.Event{}, id)
	if result.Error != nil {
		return translate(result.Error, "delete event")
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) CountBookingsByEvent(ctx context.Context, eventId uint) (int64, error) {
	var count int64
	if err := s.db(ctx).Model(&model.Booking{}).Where("event_id = ?", eventId).Count(&count).Error; err != nil {
		return 0, translate(err, "count bookings")
	}
	return count, nil
}

// Seats

// ReserveSeats takes n seats from the event in a single conditional update
// and returns the seats left. ErrInsufficientSeats means the event exists
// but has fewer than n seats.
func (s *Store) ReserveSeats(ctx context.Context, eventId uint, n int) (int, error) {
	result := s.db(ctx).Model(&model.Event{}).
		Where("id = ? AND available_seats >= ?", eventId, n).
		Update("available_seats", gorm.Expr("available_seats - ?", n))
	if result.Error != nil {
		return 0, translate(result.Error, "reserve seats")
	}

	event, err := s.GetEvent(ctx, eventId)
	if err != nil {
		return 0, err
	}
	if result.RowsAffected == 0 {
		return event.AvailableSeats, ErrInsufficientSeats
	}
	return event.AvailableSeats, nil
}

// ReleaseSeats returns n seats to the event. found is false when the event
// no longer exists.
func (s *Store) ReleaseSeats(ctx context.Context, eventId uint, n int) (available int, found bool, err error) {
	result := s.db(ctx).Model(&model.Event{}).
		Where("id = ?", eventId).
		Update("available_seats", gorm.Expr("available_seats + ?", n))
	if result.Error != nil {
		return 0, false, translate(result.Error, "release seats")
	}
	if result.RowsAffected == 0 {
		return 0, false, nil
	}

	event, err := s.GetEvent(ctx, eventId)
	if err != nil {
		return 0, false, err
	}
	return event.AvailableSeats, true, nil
}

// Bookings

func (s *Store) CreateBooking(ctx context.Context, booking *model.Booking) error {
	return translate(s.db(ctx).Omit(clause.Associations).Create(booking).Error, "create booking")
}

func (s *Store) GetBooking(ctx context.Context, id uint) (*model.Booking, error) {
	var booking model.Booking
	if err := s.db(ctx).First(&booking, id).Error; err != nil {
		return nil, translate(err, "get booking")
	}
	return &booking, nil
}

func (s *Store) DeleteBooking(ctx context.Context, id uint) error {
	result := s.db(ctx).Delete(&model.Booking{}, id)
	if result.Error != nil {
		return translate(result.Error, "delete booking")
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) ListBookingsByUser(ctx context.Context, userId uint) ([]model.BookingWithEvent, error) {
	var rows []model.BookingWithEvent
	err := s.db(ctx).Model(&model.Booking{}).
		Select("bookings.id, bookings.reference, bookings.event_id, bookings.seat_count, bookings.created_at, " +
			"events.title AS event_title, events.date AS event_date").
		Joins("JOIN events ON events.id = bookings.event_id").
		Where("bookings.user_id = ?", userId).
		Order("bookings.id").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err, "list bookings")
	}
	return rows, nil
}
