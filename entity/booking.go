package entity

import (
	"fmt"
	"time"
)

const BookingStatusConfirmed = "confirmed"

type Customer struct {
	Name     string `json:"name" bson:"name" validate:"required"`
	Contact  string `json:"contact" bson:"contact" validate:"required"`
	WhatsApp string `json:"whatsapp" bson:"whatsapp" validate:"required"`
}

// Booking is the durable record of a confirmed trip. It is written once and
// never updated by the conversation flow.
type Booking struct {
	ID               string    `json:"id" bson:"id" validate:"required"`
	CreatedAt        time.Time `json:"created_at" bson:"created_at" validate:"required"`
	Customer         Customer  `json:"customer" bson:"customer"`
	Origin           string    `json:"origin" bson:"origin" validate:"required"`
	Destination      string    `json:"destination" bson:"destination" validate:"required"`
	Passengers       int       `json:"passengers" bson:"passengers" validate:"gt=0"`
	Total            float64   `json:"total" bson:"total" validate:"gt=0"`
	EstimatedMinutes int       `json:"estimated_minutes" bson:"estimated_minutes" validate:"gt=0"`
	Status           string    `json:"status" bson:"status" validate:"oneof=confirmed"`
}

// NewBooking builds a confirmed booking from a completed trip draft.
func NewBooking(id string, createdAt time.Time, senderID string, trip TripDraft) (*Booking, error) {
	if trip.Quote == nil {
		return nil, fmt.Errorf("trip has no quote")
	}
	return &Booking{
		ID:        id,
		CreatedAt: createdAt,
		Customer: Customer{
			Name:     trip.CustomerName,
			Contact:  trip.CustomerContact,
			WhatsApp: senderID,
		},
		Origin:           trip.Origin,
		Destination:      trip.Destination,
		Passengers:       trip.Passengers,
		Total:            trip.Quote.Total,
		EstimatedMinutes: trip.Quote.EstimatedMinutes,
		Status:           BookingStatusConfirmed,
	}, nil
}
