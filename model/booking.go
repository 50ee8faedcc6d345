package model

import (
	"time"

	"event_hub/utils"
)

type Booking struct {
	DTO
	Reference string `gorm:"size:20;uniqueIndex;not null" json:"reference"`
	UserId    uint   `gorm:"not null;index" json:"user_id"`
	EventId   uint   `gorm:"not null;index" json:"event_id"`
	SeatCount int    `gorm:"not null;check:seat_count > 0" json:"seat_count"`
	User      User   `gorm:"foreignKey:UserId;constraint:OnDelete:CASCADE" json:"-"`
	Event     Event  `gorm:"foreignKey:EventId;constraint:OnDelete:RESTRICT" json:"-"`
}

type BookingResponse struct {
	ID          uint   `json:"id"`
	Reference   string `json:"reference"`
	UserId      uint   `json:"user_id"`
	EventId     uint   `json:"event_id"`
	SeatCount   int    `json:"seat_count"`
	BookingDate string `json:"booking_date"`
}

func (b Booking) ToResponse() BookingResponse {
	return BookingResponse{
		ID:          b.ID,
		Reference:   b.Reference,
		UserId:      b.UserId,
		EventId:     b.EventId,
		SeatCount:   b.SeatCount,
		BookingDate: utils.FormatISO(b.CreatedAt),
	}
}

// BookingWithEvent is a booking joined with the title and date of its event.
type BookingWithEvent struct {
	ID         uint
	Reference  string
	EventId    uint
	SeatCount  int
	CreatedAt  time.Time
	EventTitle string
	EventDate  time.Time
}

type MyBookingResponse struct {
	ID          uint   `json:"id"`
	Reference   string `json:"reference"`
	SeatCount   int    `json:"seat_count"`
	BookingDate string `json:"booking_date"`
	EventId     uint   `json:"event_id"`
	EventTitle  string `json:"event_title"`
	EventDate   string `json:"event_date"`
}

func (b BookingWithEvent) ToResponse() MyBookingResponse {
	return MyBookingResponse{
		ID:          b.ID,
		Reference:   b.Reference,
		SeatCount:   b.SeatCount,
		BookingDate: utils.FormatISO(b.CreatedAt),
		EventId:     b.EventId,
		EventTitle:  b.EventTitle,
		EventDate:   utils.FormatISO(b.EventDate),
	}
}

type CreateBookingInput struct {
	EventId   *uint `json:"event_id" validate:"required"`
	SeatCount *int  `json:"seat_count" validate:"required"`
}
