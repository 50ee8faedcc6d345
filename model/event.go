package model

import (
	"time"

	"event_hub/utils"
)

type Event struct {
	DTO
	Title          string    `gorm:"size:120;not null" json:"title"`
	Slug           string    `gorm:"size:160;uniqueIndex;not null" json:"slug"`
	Description    string    `gorm:"type:text;not null;default:''" json:"description"`
	Date           time.Time `gorm:"not null;index" json:"date"`
	Location       string    `gorm:"size:120;not null" json:"location"`
	Category       string    `gorm:"size:50;not null;index" json:"category"`
	Image          string    `gorm:"size:255;not null;default:''" json:"image"`
	Price          float64   `gorm:"type:numeric(10,2);not null;check:price >= 0" json:"price"`
	MaxSeats       int       `gorm:"not null;check:max_seats > 0" json:"max_seats"`
	AvailableSeats int       `gorm:"not null;check:available_seats >= 0 AND available_seats <= max_seats" json:"available_seats"`
	OrganizerId    uint      `gorm:"not null;index" json:"organizer_id"`
	Organizer      User      `gorm:"foreignKey:OrganizerId;constraint:OnDelete:RESTRICT" json:"-"`
}

type Events []Event

// Booked is the number of seats held by bookings.
func (e Event) Booked() int {
	return e.MaxSeats - e.AvailableSeats
}

type EventResponse struct {
	ID             uint    `json:"id"`
	Title          string  `json:"title"`
	Slug           string  `json:"slug"`
	Description    string  `json:"description"`
	Date           string  `json:"date"`
	Location       string  `json:"location"`
	MaxSeats       int     `json:"max_seats"`
	AvailableSeats int     `json:"available_seats"`
	OrganizerId    uint    `json:"organizer_id"`
	CreatedAt      string  `json:"created_at"`
	Category       string  `json:"category"`
	Image          string  `json:"image"`
	Price          float64 `json:"price"`
}

func (e Event) ToResponse() EventResponse {
	return EventResponse{
		ID:             e.ID,
		Title:          e.Title,
		Slug:           e.Slug,
		Description:    e.Description,
		Date:           utils.FormatISO(e.Date),
		Location:       e.Location,
		MaxSeats:       e.MaxSeats,
		AvailableSeats: e.AvailableSeats,
		OrganizerId:    e.OrganizerId,
		CreatedAt:      utils.FormatISO(e.CreatedAt),
		Category:       e.Category,
		Image:          e.Image,
		Price:          e.Price,
	}
}

func (es Events) ToResponse() []EventResponse {
	out := make([]EventResponse, 0, len(es))
	for _, e := range es {
		out = append(out, e.ToResponse())
	}
	return out
}

// CreateEventInput keeps numeric fields as pointers so a missing field is
// distinguishable from zero.
type CreateEventInput struct {
	Title       string   `json:"title" validate:"required,max=120"`
	Description string   `json:"description"`
	Date        string   `json:"date" validate:"required" copier:"-"`
	Location    string   `json:"location" validate:"required,max=120"`
	MaxSeats    *int     `json:"max_seats" validate:"required" copier:"-"`
	Category    string   `json:"category" validate:"required,max=50"`
	Image       string   `json:"image" validate:"max=255"`
	Price       *float64 `json:"price" validate:"required" copier:"-"`
}

// CreateEventRequiredFields lists the fields reported when CreateEventInput fails validation.
var CreateEventRequiredFields = []string{"title", "date", "location", "max_seats", "category", "price"}

type UpdateEventInput struct {
	Title       *string  `json:"title" validate:"omitempty,max=120"`
	Description *string  `json:"description"`
	Date        *string  `json:"date" copier:"-"`
	Location    *string  `json:"location" validate:"omitempty,max=120"`
	Category    *string  `json:"category" validate:"omitempty,max=50"`
	Image       *string  `json:"image" validate:"omitempty,max=255"`
	MaxSeats    *int     `json:"max_seats" copier:"-"`
	Price       *float64 `json:"price" copier:"-"`
}

// SeatAvailability is what the live feed pushes to subscribers.
type SeatAvailability struct {
	EventId        uint `json:"event_id"`
	AvailableSeats int  `json:"available_seats"`
}
