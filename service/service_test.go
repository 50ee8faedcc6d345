package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"event_hub/clock"
	"event_hub/constants"
	"event_hub/helper"
	"event_hub/model"
	"event_hub/repository"
	"event_hub/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testNow = time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	mu      sync.Mutex
	updates []model.SeatAvailability
}

func (n *recordingNotifier) Publish(update model.SeatAvailability) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.updates = append(n.updates, update)
}

func (n *recordingNotifier) last() model.SeatAvailability {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.updates[len(n.updates)-1]
}

type fixture struct {
	store    *repository.MemoryStore
	tokens   *helper.TokenManager
	notifier *recordingNotifier
	auth     *AuthService
	events   *EventService
	bookings *BookingService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clk := clock.NewFixed(testNow)
	store := repository.NewMemoryStore(clk)
	tokens := helper.NewTokenManager("test-secret", 24*time.Hour, clk)
	notifier := &recordingNotifier{}
	log := zap.NewNop()
	return &fixture{
		store:    store,
		tokens:   tokens,
		notifier: notifier,
		auth:     NewAuthService(store, tokens, log),
		events:   NewEventService(store, clk, notifier, log),
		bookings: NewBookingService(store, notifier, log),
	}
}

func (f *fixture) register(t *testing.T, email string, organizer bool) *model.User {
	t.Helper()
	user, _, err := f.auth.Register(context.Background(), model.RegisterInput{
		Email: email, Password: "secret", Name: "User " + email, IsOrganizer: organizer,
	})
	require.NoError(t, err)
	return user
}

func (f *fixture) createEvent(t *testing.T, organizerId uint, maxSeats int) *model.Event {
	t.Helper()
	event, err := f.events.Create(context.Background(), organizerId, model.CreateEventInput{
		Title:    "Jazz Night",
		Date:     "2030-02-01T20:00:00",
		Location: "Central Park",
		Category: "Music",
		MaxSeats: utils.Ptr(maxSeats),
		Price:    utils.Ptr(45.0),
	})
	require.NoError(t, err)
	return event
}

func assertKind(t *testing.T, err error, kind Kind, message string) *Error {
	t.Helper()
	require.Error(t, err)
	svcErr, ok := AsError(err)
	require.True(t, ok, "expected service error, got %v", err)
	assert.Equal(t, kind, svcErr.Kind)
	if message != "" {
		assert.Equal(t, message, svcErr.Message)
	}
	return svcErr
}

// assertSeatInvariant checks max_seats - available_seats equals the seats
// booked against the event.
func assertSeatInvariant(t *testing.T, f *fixture, eventId uint, userIds ...uint) {
	t.Helper()
	ctx := context.Background()
	event, err := f.store.GetEvent(ctx, eventId)
	require.NoError(t, err)

	booked := 0
	for _, uid := range userIds {
		rows, err := f.store.ListBookingsByUser(ctx, uid)
		require.NoError(t, err)
		for _, r := range rows {
			if r.EventId == eventId {
				booked += r.SeatCount
			}
		}
	}
	assert.GreaterOrEqual(t, event.AvailableSeats, 0)
	assert.LessOrEqual(t, event.AvailableSeats, event.MaxSeats)
	assert.Equal(t, booked, event.MaxSeats-event.AvailableSeats)
}

func TestRegisterAndAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, token, err := f.auth.Register(ctx, model.RegisterInput{
		Email: "  Alice@Example.com ", Password: "pw", Name: " Alice ",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "Alice", user.Name)
	assert.False(t, user.IsOrganizer)

	claim, err := f.tokens.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claim.UserId)

	logged, token, err := f.auth.Authenticate(ctx, model.LoginInput{Email: "ALICE@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)

	claim, err = f.tokens.ParseToken(token)
	require.NoError(t, err)
	me, err := f.auth.Identify(ctx, claim.UserId)
	require.NoError(t, err)
	assert.Equal(t, user.ID, me.ID)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _, err := f.auth.Register(ctx, model.RegisterInput{Email: "a@b.c", Password: "pw"})
	svcErr := assertKind(t, err, KindValidation, constants.MISSING_REQUIRED_FIELDS)
	assert.Equal(t, registerRequiredFields, svcErr.Fields["required"])

	_, _, err = f.auth.Register(ctx, model.RegisterInput{Email: "nope", Password: "pw", Name: "N"})
	assertKind(t, err, KindValidation, constants.INVALID_EMAIL_FORMAT)

	_, _, err = f.auth.Register(ctx, model.RegisterInput{Email: "long@b.c", Password: strings.Repeat("x", 73), Name: "N"})
	assertKind(t, err, KindValidation, constants.PASSWORD_TOO_LONG)

	f.register(t, "taken@example.com", false)
	_, _, err = f.auth.Register(ctx, model.RegisterInput{Email: "TAKEN@example.com", Password: "pw", Name: "N"})
	assertKind(t, err, KindConflict, constants.EMAIL_ALREADY_EXISTS)
}

func TestAuthenticateFailuresAreIndistinguishable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "bob@example.com", false)

	_, _, errUnknown := f.auth.Authenticate(ctx, model.LoginInput{Email: "nobody@example.com", Password: "secret"})
	_, _, errWrong := f.auth.Authenticate(ctx, model.LoginInput{Email: "bob@example.com", Password: "wrong"})
	a := assertKind(t, errUnknown, KindUnauthorized, constants.INVALID_CREDENTIALS)
	b := assertKind(t, errWrong, KindUnauthorized, constants.INVALID_CREDENTIALS)
	assert.Equal(t, a.Message, b.Message)

	_, _, err := f.auth.Authenticate(ctx, model.LoginInput{Email: "bob@example.com"})
	assertKind(t, err, KindValidation, constants.MISSING_LOGIN_INPUT)

	_, err = f.auth.Identify(ctx, 999)
	assertKind(t, err, KindNotFound, constants.USER_NOT_FOUND)
}

func TestCreateEvent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	org := f.register(t, "org@example.com", true)
	attendee := f.register(t, "att@example.com", false)

	event := f.createEvent(t, org.ID, 10)
	assert.Equal(t, 10, event.AvailableSeats)
	assert.Equal(t, org.ID, event.OrganizerId)
	assert.Equal(t, "jazz-night", event.Slug)
	assert.Equal(t, time.Date(2030, 2, 1, 20, 0, 0, 0, time.UTC), event.Date)

	second := f.createEvent(t, org.ID, 5)
	assert.Equal(t, "jazz-night-1", second.Slug)

	valid := model.CreateEventInput{
		Title: "T", Date: "2030-02-01T20:00:00", Location: "L", Category: "C",
		MaxSeats: utils.Ptr(10), Price: utils.Ptr(0.0),
	}

	_, err := f.events.Create(ctx, attendee.ID, valid)
	assertKind(t, err, KindForbidden, constants.NOT_AN_ORGANIZER)

	_, err = f.events.Create(ctx, 999, valid)
	assertKind(t, err, KindForbidden, constants.NOT_AN_ORGANIZER)

	tests := []struct {
		name    string
		mutate  func(in *model.CreateEventInput)
		message string
	}{
		{"missing price", func(in *model.CreateEventInput) { in.Price = nil }, constants.MISSING_REQUIRED_FIELDS},
		{"missing title", func(in *model.CreateEventInput) { in.Title = "" }, constants.MISSING_REQUIRED_FIELDS},
		{"zero seats", func(in *model.CreateEventInput) { in.MaxSeats = utils.Ptr(0) }, constants.MAX_SEATS_NOT_POSITIVE},
		{"negative price", func(in *model.CreateEventInput) { in.Price = utils.Ptr(-1.0) }, constants.PRICE_NEGATIVE},
		{"bad date", func(in *model.CreateEventInput) { in.Date = "next friday" }, constants.INVALID_DATA_FORMAT},
		{"past date", func(in *model.CreateEventInput) { in.Date = "2029-12-31T23:59:59" }, constants.DATE_NOT_IN_FUTURE},
		{"now is not future", func(in *model.CreateEventInput) { in.Date = "2030-01-01T12:00:00" }, constants.DATE_NOT_IN_FUTURE},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			_, err := f.events.Create(ctx, org.ID, in)
			assertKind(t, err, KindValidation, tt.message)
		})
	}

	events, err := f.events.List(ctx)
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestUpdateEvent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	org := f.register(t, "org@example.com", true)
	other := f.register(t, "other@example.com", true)
	attendee := f.register(t, "att@example.com", false)
	event := f.createEvent(t, org.ID, 10)

	_, _, err := f.bookings.Create(ctx, attendee.ID, event.ID, 5)
	require.NoError(t, err)

	t.Run("cannot reduce below booked", func(t *testing.T) {
		_, err := f.events.Update(ctx, org.ID, event.ID, model.UpdateEventInput{MaxSeats: utils.Ptr(3)})
		assertKind(t, err, KindValidation, constants.SEATS_BELOW_BOOKED)

		got, err := f.events.Get(ctx, event.ID)
		require.NoError(t, err)
		assert.Equal(t, 10, got.MaxSeats)
		assert.Equal(t, 5, got.AvailableSeats)
	})

	t.Run("non owner is forbidden", func(t *testing.T) {
		_, err := f.events.Update(ctx, other.ID, event.ID, model.UpdateEventInput{Title: utils.Ptr("Hijacked")})
		svcErr := assertKind(t, err, KindForbidden, constants.NOT_EVENT_ORGANIZER)
		details := svcErr.Fields["details"].(map[string]any)
		assert.Equal(t, org.ID, details["event_organizer"])
		assert.Equal(t, other.ID, details["current_user"])

		got, err := f.events.Get(ctx, event.ID)
		require.NoError(t, err)
		assert.Equal(t, "Jazz Night", got.Title)
	})

	t.Run("partial update keeps other fields", func(t *testing.T) {
		updated, err := f.events.Update(ctx, org.ID, event.ID, model.UpdateEventInput{
			Title:       utils.Ptr("Jazz Night II"),
			Description: utils.Ptr(""),
			MaxSeats:    utils.Ptr(8),
		})
		require.NoError(t, err)
		assert.Equal(t, "Jazz Night II", updated.Title)
		assert.Equal(t, "jazz-night", updated.Slug)
		assert.Equal(t, "Central Park", updated.Location)
		assert.Equal(t, 45.0, updated.Price)
		assert.Equal(t, 8, updated.MaxSeats)
		assert.Equal(t, 3, updated.AvailableSeats)
		assert.Equal(t, model.SeatAvailability{EventId: event.ID, AvailableSeats: 3}, f.notifier.last())
		assertSeatInvariant(t, f, event.ID, attendee.ID)
	})

	t.Run("validation leaves event unchanged", func(t *testing.T) {
		for _, in := range []model.UpdateEventInput{
			{Title: utils.Ptr("X"), Date: utils.Ptr("2020-01-01T00:00:00")},
			{Title: utils.Ptr("X"), Price: utils.Ptr(-5.0)},
			{Title: utils.Ptr("X"), MaxSeats: utils.Ptr(0)},
			{Title: utils.Ptr("X"), Date: utils.Ptr("soon")},
		} {
			_, err := f.events.Update(ctx, org.ID, event.ID, in)
			assertKind(t, err, KindValidation, "")
		}
		got, err := f.events.Get(ctx, event.ID)
		require.NoError(t, err)
		assert.Equal(t, "Jazz Night II", got.Title)
	})

	t.Run("missing event", func(t *testing.T) {
		_, err := f.events.Update(ctx, org.ID, 999, model.UpdateEventInput{})
		assertKind(t, err, KindNotFound, constants.EVENT_NOT_FOUND)
	})
}

func TestDeleteEvent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	org := f.register(t, "org@example.com", true)
	other := f.register(t, "other@example.com", true)
	attendee := f.register(t, "att@example.com", false)
	event := f.createEvent(t, org.ID, 10)

	booking, _, err := f.bookings.Create(ctx, attendee.ID, event.ID, 1)
	require.NoError(t, err)

	err = f.events.Delete(ctx, org.ID, event.ID)
	svcErr := assertKind(t, err, KindUnprocessable, constants.EVENT_HAS_BOOKINGS)
	assert.EqualValues(t, 1, svcErr.Fields["bookings_count"])
	_, err = f.events.Get(ctx, event.ID)
	require.NoError(t, err)

	err = f.events.Delete(ctx, other.ID, event.ID)
	assertKind(t, err, KindForbidden, constants.NOT_EVENT_ORGANIZER)

	_, err = f.bookings.Cancel(ctx, attendee.ID, booking.ID)
	require.NoError(t, err)

	require.NoError(t, f.events.Delete(ctx, org.ID, event.ID))
	_, err = f.events.Get(ctx, event.ID)
	assertKind(t, err, KindNotFound, constants.EVENT_NOT_FOUND)

	err = f.events.Delete(ctx, org.ID, event.ID)
	assertKind(t, err, KindNotFound, constants.EVENT_NOT_FOUND)
}

func TestBookingScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	org := f.register(t, "org@example.com", true)
	attendee := f.register(t, "att@example.com", false)
	event := f.createEvent(t, org.ID, 10)
	assert.Equal(t, 10, event.AvailableSeats)

	first, left, err := f.bookings.Create(ctx, attendee.ID, event.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 6, left)
	assert.Regexp(t, `^BKG-[0-9A-F]{8}$`, first.Reference)
	assert.Equal(t, model.SeatAvailability{EventId: event.ID, AvailableSeats: 6}, f.notifier.last())
	assertSeatInvariant(t, f, event.ID, attendee.ID)

	_, _, err = f.bookings.Create(ctx, attendee.ID, event.ID, 7)
	svcErr := assertKind(t, err, KindValidation, constants.NOT_ENOUGH_SEATS)
	assert.Equal(t, 6, svcErr.Fields["available_seats"])

	got, err := f.events.Get(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, got.AvailableSeats)

	mine, err := f.bookings.ListMine(ctx, attendee.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Jazz Night", mine[0].EventTitle)

	left, err = f.bookings.Cancel(ctx, attendee.ID, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, left)
	assertSeatInvariant(t, f, event.ID, attendee.ID)

	mine, err = f.bookings.ListMine(ctx, attendee.ID)
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestBookingRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	org := f.register(t, "org@example.com", true)
	alice := f.register(t, "alice@example.com", false)
	bob := f.register(t, "bob@example.com", false)
	event := f.createEvent(t, org.ID, 10)

	_, _, err := f.bookings.Create(ctx, alice.ID, event.ID, 0)
	assertKind(t, err, KindValidation, constants.SEAT_COUNT_NOT_POSITIVE)

	_, _, err = f.bookings.Create(ctx, alice.ID, 999, 1)
	assertKind(t, err, KindNotFound, constants.EVENT_NOT_FOUND)

	booking, _, err := f.bookings.Create(ctx, alice.ID, event.ID, 2)
	require.NoError(t, err)

	_, err = f.bookings.Cancel(ctx, bob.ID, booking.ID)
	svcErr := assertKind(t, err, KindForbidden, constants.NOT_BOOKING_OWNER)
	assert.Equal(t, bob.ID, svcErr.Fields["user_id"])
	assert.Equal(t, alice.ID, svcErr.Fields["booking_user_id"])

	_, err = f.bookings.Get(ctx, bob.ID, booking.ID)
	assertKind(t, err, KindForbidden, constants.NOT_BOOKING_OWNER)

	got, err := f.events.Get(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, got.AvailableSeats)

	_, err = f.bookings.Cancel(ctx, alice.ID, 999)
	assertKind(t, err, KindNotFound, constants.BOOKING_NOT_FOUND)

	owned, err := f.bookings.Get(ctx, alice.ID, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.Reference, owned.Reference)
}

func TestConcurrentBookingsNeverOversell(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	org := f.register(t, "org@example.com", true)
	attendee := f.register(t, "att@example.com", false)
	event := f.createEvent(t, org.ID, 25)

	var wg sync.WaitGroup
	for i := 0; i < 60; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _ = f.bookings.Create(ctx, attendee.ID, event.ID, 1)
		}()
	}
	wg.Wait()

	got, err := f.events.Get(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.AvailableSeats)
	assertSeatInvariant(t, f, event.ID, attendee.ID)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(assert.AnError))
	assert.Equal(t, KindNotFound, KindOf(notFound("x")))
	assert.Equal(t, "not_found", KindNotFound.String())
	assert.ErrorIs(t, internal(assert.AnError), assert.AnError)
}

// vanishingStore reports rows as gone at write time, as when a concurrent
// transaction deletes them after the service has read them.
type vanishingStore struct {
	*repository.MemoryStore
	eventGone   bool
	bookingGone bool
}

func (s *vanishingStore) ReserveSeats(ctx context.Context, eventId uint, n int) (int, error) {
	if s.eventGone {
		return 0, repository.ErrNotFound
	}
	return s.MemoryStore.ReserveSeats(ctx, eventId, n)
}

func (s *vanishingStore) UpdateEvent(ctx context.Context, event *model.Event) error {
	if s.eventGone {
		return repository.ErrNotFound
	}
	return s.MemoryStore.UpdateEvent(ctx, event)
}

func (s *vanishingStore) DeleteEvent(ctx context.Context, id uint) error {
	if s.eventGone {
		return repository.ErrNotFound
	}
	return s.MemoryStore.DeleteEvent(ctx, id)
}

func (s *vanishingStore) DeleteBooking(ctx context.Context, id uint) error {
	if s.bookingGone {
		return repository.ErrNotFound
	}
	return s.MemoryStore.DeleteBooking(ctx, id)
}

func TestRowsRemovedConcurrentlyAreNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	org := f.register(t, "org@example.com", true)
	alice := f.register(t, "alice@example.com", false)
	booked := f.createEvent(t, org.ID, 10)
	empty := f.createEvent(t, org.ID, 10)
	booking, _, err := f.bookings.Create(ctx, alice.ID, booked.ID, 3)
	require.NoError(t, err)

	store := &vanishingStore{MemoryStore: f.store}
	log := zap.NewNop()
	events := NewEventService(store, clock.NewFixed(testNow), nil, log)
	bookings := NewBookingService(store, nil, log)

	store.eventGone = true
	_, _, err = bookings.Create(ctx, alice.ID, booked.ID, 2)
	assertKind(t, err, KindNotFound, constants.EVENT_NOT_FOUND)

	_, err = events.Update(ctx, org.ID, empty.ID, model.UpdateEventInput{Title: utils.Ptr("Renamed")})
	assertKind(t, err, KindNotFound, constants.EVENT_NOT_FOUND)

	err = events.Delete(ctx, org.ID, empty.ID)
	assertKind(t, err, KindNotFound, constants.EVENT_NOT_FOUND)

	store.eventGone = false
	store.bookingGone = true
	_, err = bookings.Cancel(ctx, alice.ID, booking.ID)
	assertKind(t, err, KindNotFound, constants.BOOKING_NOT_FOUND)

	event, err := f.store.GetEvent(ctx, booked.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, event.AvailableSeats)
	assertSeatInvariant(t, f, booked.ID, alice.ID)
}
