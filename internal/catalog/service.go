package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ticketdesk/internal/models"
)

// ErrEventNotFound means the event does not exist or is not published;
// drafts are never visible through this repository.
var ErrEventNotFound = errors.New("event not found")

type DBLayer interface {
	ListPublishedEvents(ctx context.Context) ([]models.Event, error)
	GetPublishedEvent(ctx context.Context, id string) (*models.Event, error)
	GetTicketTypes(ctx context.Context, eventID string) ([]models.TicketType, error)
}

// Entry is one row of an event's ticket catalog.
type Entry struct {
	Price             float64
	QuantityAvailable int
}

// Service is the attendee-facing read repository over events and ticket
// catalogs.
type Service struct {
	DB DBLayer
}

func NewService(db DBLayer) *Service {
	return &Service{DB: db}
}

// ListPublishedEvents returns published events ordered by event date
// ascending.
func (s *Service) ListPublishedEvents(ctx context.Context) ([]models.Event, error) {
	events, err := s.DB.ListPublishedEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("list published events: %w", err)
	}
	return events, nil
}

func (s *Service) GetPublishedEvent(ctx context.Context, id string) (*models.Event, error) {
	event, err := s.DB.GetPublishedEvent(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("fetch event %s: %w", id, err)
	}
	return event, nil
}

// GetTicketCatalog maps each ticket kind of an event to its price and
// remaining availability.
func (s *Service) GetTicketCatalog(ctx context.Context, eventID string) (map[string]Entry, error) {
	types, err := s.DB.GetTicketTypes(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("fetch ticket types for event %s: %w", eventID, err)
	}

	entries := make(map[string]Entry, len(types))
	for _, tt := range types {
		entries[tt.Kind] = Entry{
			Price:             tt.Price,
			QuantityAvailable: tt.QuantityAvailable,
		}
	}
	return entries, nil
}
