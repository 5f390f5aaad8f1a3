package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Booking struct {
	bun.BaseModel `bun:"table:bookings"`

	ID           string    `bun:"id,pk"`
	AttendeeName string    `bun:"attendee_name,notnull"`
	EventID      string    `bun:"event_id,notnull"`
	BookedAt     time.Time `bun:"booked_at,notnull"`
}

type BookingItem struct {
	bun.BaseModel `bun:"table:booking_items"`

	BookingID    string `bun:"booking_id,notnull"`
	TicketTypeID string `bun:"ticket_type_id,notnull"`
	Quantity     int    `bun:"quantity,notnull"`

	// Kind is carried for error reporting only; the persisted row
	// references the ticket type.
	Kind string `bun:"-"`
}

// BookingRequest is the attendee's submission: requested quantity per
// ticket kind.
type BookingRequest struct {
	EventID      string
	AttendeeName string
	Quantities   map[string]int
}

// BookingConfirmation identifies a committed booking.
type BookingConfirmation struct {
	BookingID    string
	EventID      string
	AttendeeName string
	BookedAt     time.Time
}
