package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"event_hub/helper"
	"event_hub/model"
	"event_hub/repository"

	"go.uber.org/zap"
)

const (
	DemoOrganizerEmail    = "organizer@demo.com"
	DemoOrganizerPassword = "demo123"
)

// Seeder is the part of the store used to load demo data.
type Seeder interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	CreateUser(ctx context.Context, user *model.User) error
	ListEvents(ctx context.Context) ([]model.Event, error)
	EventSlugExists(ctx context.Context, slug string) (bool, error)
	CreateEvent(ctx context.Context, event *model.Event) error
}

type sampleEvent struct {
	Title       string
	Description string
	InDays      int
	Location    string
	MaxSeats    int
	Category    string
	Image       string
	Price       float64
}

var sampleEvents = []sampleEvent{
	{
		Title:       "Tech Conference 2023",
		Description: "Annual technology conference featuring industry leaders and workshops",
		InDays:      10,
		Location:    "Convention Center, San Francisco",
		MaxSeats:    200,
		Category:    "Technology",
		Image:       "https://images.unsplash.com/photo-1505373877841-8d25f7d46678",
		Price:       199.99,
	},
	{
		Title:       "Jazz Night Under the Stars",
		Description: "Open air jazz concert with local and international artists",
		InDays:      5,
		Location:    "Central Park, New York",
		MaxSeats:    300,
		Category:    "Music",
		Image:       "https://images.unsplash.com/photo-1470229722913-7c0e2dbbafd3",
		Price:       45.00,
	},
	{
		Title:       "Food Festival",
		Description: "Taste cuisine from around the world with top chefs",
		InDays:      15,
		Location:    "Waterfront Plaza, Seattle",
		MaxSeats:    500,
		Category:    "Food",
		Image:       "https://images.unsplash.com/photo-1504674900247-0877df9cc836",
		Price:       25.00,
	},
	{
		Title:       "Startup Pitch Competition",
		Description: "Watch emerging startups pitch to investors",
		InDays:      7,
		Location:    "Innovation Hub, Austin",
		MaxSeats:    150,
		Category:    "Business",
		Image:       "https://images.unsplash.com/photo-1552664730-d307ca884978",
		Price:       75.50,
	},
	{
		Title:       "Yoga Retreat Weekend",
		Description: "Weekend wellness retreat in the mountains with expert instructors",
		InDays:      20,
		Location:    "Mountain Lodge, Colorado",
		MaxSeats:    50,
		Category:    "Health",
		Image:       "https://images.unsplash.com/photo-1545205597-3d9d02c29597",
		Price:       299.00,
	},
	{
		Title:       "Art Exhibition Opening",
		Description: "Contemporary art exhibition featuring local artists",
		InDays:      3,
		Location:    "Modern Art Museum, Chicago",
		MaxSeats:    200,
		Category:    "Art",
		Image:       "https://images.unsplash.com/photo-1536922246285-4745f6a2c7dc",
		Price:       15.00,
	},
}

// SeedData creates the demo organizer and, when the catalog is empty, the
// sample events dated relative to now. Running it twice is a no-op.
func SeedData(ctx context.Context, store Seeder, now time.Time, log *zap.Logger) error {
	return store.WithTx(ctx, func(ctx context.Context) error {
		organizer, err := store.GetUserByEmail(ctx, DemoOrganizerEmail)
		if errors.Is(err, repository.ErrNotFound) {
			hash, err := helper.HashPassword(DemoOrganizerPassword)
			if err != nil {
				return fmt.Errorf("hash demo password: %w", err)
			}
			organizer = &model.User{
				Email:        DemoOrganizerEmail,
				PasswordHash: hash,
				Name:         "Demo Organizer",
				IsOrganizer:  true,
			}
			if err := store.CreateUser(ctx, organizer); err != nil {
				return err
			}
			log.Info("seeded demo organizer", zap.String("email", DemoOrganizerEmail))
		} else if err != nil {
			return err
		}

		existing, err := store.ListEvents(ctx)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			log.Info("database already contains events", zap.Int("count", len(existing)))
			return nil
		}

		for _, sample := range sampleEvents {
			slug, err := helper.GenerateUniqueSlug(ctx, sample.Title, store.EventSlugExists)
			if err != nil {
				return err
			}
			event := model.Event{
				Title:          sample.Title,
				Slug:           slug,
				Description:    sample.Description,
				Date:           now.UTC().AddDate(0, 0, sample.InDays),
				Location:       sample.Location,
				MaxSeats:       sample.MaxSeats,
				AvailableSeats: sample.MaxSeats,
				Category:       sample.Category,
				Image:          sample.Image,
				Price:          sample.Price,
				OrganizerId:    organizer.ID,
			}
			if err := store.CreateEvent(ctx, &event); err != nil {
				return err
			}
		}
		log.Info("seeded sample events", zap.Int("count", len(sampleEvents)))
		return nil
	})
}
