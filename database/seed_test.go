package database

import (
	"context"
	"testing"
	"time"

	"event_hub/clock"
	"event_hub/helper"
	"event_hub/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSeedData(t *testing.T) {
	now := time.Date(2030, 3, 1, 9, 0, 0, 0, time.UTC)
	store := repository.NewMemoryStore(clock.NewFixed(now))
	ctx := context.Background()

	require.NoError(t, SeedData(ctx, store, now, zap.NewNop()))

	organizer, err := store.GetUserByEmail(ctx, DemoOrganizerEmail)
	require.NoError(t, err)
	assert.True(t, organizer.IsOrganizer)
	assert.True(t, helper.CheckPasswordHash(DemoOrganizerPassword, organizer.PasswordHash))

	events, err := store.ListEvents(ctx)
	require.NoError(t, err)
	require.Len(t, events, len(sampleEvents))
	for _, e := range events {
		assert.Equal(t, e.MaxSeats, e.AvailableSeats, e.Title)
		assert.True(t, e.Date.After(now), e.Title)
		assert.Equal(t, organizer.ID, e.OrganizerId)
		assert.NotEmpty(t, e.Slug)
	}
	assert.Equal(t, "jazz-night-under-the-stars", events[1].Slug)

	require.NoError(t, SeedData(ctx, store, now, zap.NewNop()))
	events, err = store.ListEvents(ctx)
	require.NoError(t, err)
	assert.Len(t, events, len(sampleEvents))
}
