package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Event lifecycle states. Only published events are visible to attendees
// and able to accept bookings.
const (
	EventStatusDraft     = "draft"
	EventStatusPublished = "published"
)

type Event struct {
	bun.BaseModel `bun:"table:events"`

	ID          string    `bun:"id,pk"`
	Title       string    `bun:"title,notnull"`
	Description string    `bun:"description"`
	EventDate   time.Time `bun:"event_date,notnull"`
	Status      string    `bun:"status,notnull"`
	Image       string    `bun:"image"`
	CreatedAt   time.Time `bun:"created_at,notnull"`
	PublishedAt time.Time `bun:"published_at,nullzero"`
	ModifiedAt  time.Time `bun:"modified_at,nullzero"`
}

func (e *Event) IsPublished() bool {
	return e.Status == EventStatusPublished
}
