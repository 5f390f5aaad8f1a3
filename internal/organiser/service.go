package organiser

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"ticketdesk/internal/models"
)

// ErrInvalidInput covers organiser form problems: empty title, negative
// price or quantity.
var ErrInvalidInput = errors.New("invalid event input")

// ErrEventNotFound means the targeted event does not exist.
var ErrEventNotFound = errors.New("event not found")

type DBLayer interface {
	InsertEventWithTickets(ctx context.Context, event models.Event, types []models.TicketType) error
	GetEventByID(ctx context.Context, id string) (*models.Event, error)
	ListEvents(ctx context.Context) ([]models.Event, error)
	GetTicketTypes(ctx context.Context, eventID string) ([]models.TicketType, error)
	UpdateEventWithTickets(ctx context.Context, event models.Event, types []models.TicketType) error
	PublishEvent(ctx context.Context, id string, publishedAt time.Time) (bool, error)
	DeleteEvent(ctx context.Context, id string) (bool, error)
	CountBookings(ctx context.Context, eventID string) (int, error)
	GetSettings(ctx context.Context) (*models.SiteSettings, error)
	UpdateSettings(ctx context.Context, settings models.SiteSettings) error
}

// EventUpdate is the organiser's edit form: event fields plus price and
// quantity for both ticket kinds.
type EventUpdate struct {
	Title              string
	Description        string
	EventDate          time.Time
	FullPrice          float64
	FullQuantity       int
	ConcessionPrice    float64
	ConcessionQuantity int
}

// Service is the event lifecycle manager: a small state machine over
// Event.Status (draft -> published) plus the single site-settings row.
type Service struct {
	DB     DBLayer
	Images ImagePicker
}

func NewService(db DBLayer, images ImagePicker) *Service {
	return &Service{DB: db, Images: images}
}

// CreateDraft inserts a new draft event with placeholder content, a
// decorative image from the configured picker, and one zero-priced
// zero-quantity ticket row per kind.
func (s *Service) CreateDraft(ctx context.Context) (*models.Event, error) {
	now := time.Now()
	event := models.Event{
		ID:          uuid.NewString(),
		Title:       "Untitled event",
		Description: "Describe your event here.",
		EventDate:   now.AddDate(0, 0, 7),
		Status:      models.EventStatusDraft,
		Image:       s.Images.Next(),
		CreatedAt:   now,
	}

	types := make([]models.TicketType, 0, len(models.TicketKinds))
	for _, kind := range models.TicketKinds {
		types = append(types, models.TicketType{
			ID:      uuid.NewString(),
			EventID: event.ID,
			Kind:    kind,
		})
	}

	if err := s.DB.InsertEventWithTickets(ctx, event, types); err != nil {
		return nil, fmt.Errorf("create draft event: %w", err)
	}
	return &event, nil
}

// GetEvent returns one event in any state, for the edit form.
func (s *Service) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	event, err := s.DB.GetEventByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("fetch event %s: %w", id, err)
	}
	return event, nil
}

// GetTicketTypes returns the event's ticket rows for the edit form.
func (s *Service) GetTicketTypes(ctx context.Context, eventID string) ([]models.TicketType, error) {
	return s.DB.GetTicketTypes(ctx, eventID)
}

// ListEvents returns every event, newest first, for the organiser home
// page.
func (s *Service) ListEvents(ctx context.Context) ([]models.Event, error) {
	return s.DB.ListEvents(ctx)
}

// CountBookings reports how many bookings exist for an event.
func (s *Service) CountBookings(ctx context.Context, eventID string) (int, error) {
	return s.DB.CountBookings(ctx, eventID)
}

// UpdateEvent applies an edit to a draft or published event and its two
// ticket rows, bumping modified_at. No state transition.
func (s *Service) UpdateEvent(ctx context.Context, id string, update EventUpdate) error {
	title := strings.TrimSpace(update.Title)
	if title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if update.FullPrice < 0 || update.ConcessionPrice < 0 {
		return fmt.Errorf("%w: ticket price cannot be negative", ErrInvalidInput)
	}
	if update.FullQuantity < 0 || update.ConcessionQuantity < 0 {
		return fmt.Errorf("%w: ticket quantity cannot be negative", ErrInvalidInput)
	}

	event, err := s.DB.GetEventByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrEventNotFound
		}
		return fmt.Errorf("fetch event %s: %w", id, err)
	}

	event.Title = title
	event.Description = update.Description
	event.EventDate = update.EventDate
	event.ModifiedAt = time.Now()

	current, err := s.DB.GetTicketTypes(ctx, id)
	if err != nil {
		return fmt.Errorf("fetch ticket types for event %s: %w", id, err)
	}

	types := make([]models.TicketType, 0, len(current))
	for _, tt := range current {
		switch tt.Kind {
		case models.TicketKindFull:
			tt.Price = update.FullPrice
			tt.QuantityAvailable = update.FullQuantity
		case models.TicketKindConcession:
			tt.Price = update.ConcessionPrice
			tt.QuantityAvailable = update.ConcessionQuantity
		}
		types = append(types, tt)
	}

	if err := s.DB.UpdateEventWithTickets(ctx, *event, types); err != nil {
		return fmt.Errorf("update event %s: %w", id, err)
	}
	return nil
}

// Publish transitions a draft to published and stamps published_at.
// Publishing an already-published event is a no-op: the original
// timestamp is preserved.
func (s *Service) Publish(ctx context.Context, id string) error {
	event, err := s.DB.GetEventByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrEventNotFound
		}
		return fmt.Errorf("fetch event %s: %w", id, err)
	}
	if event.IsPublished() {
		return nil
	}

	published, err := s.DB.PublishEvent(ctx, id, time.Now())
	if err != nil {
		return fmt.Errorf("publish event %s: %w", id, err)
	}
	if !published {
		// Row changed state or vanished between the read and the
		// conditional update; either way there is no draft left to
		// publish.
		return nil
	}
	return nil
}

// Delete removes an event. Foreign keys cascade, so its ticket types,
// bookings and booking items go with it.
func (s *Service) Delete(ctx context.Context, id string) error {
	deleted, err := s.DB.DeleteEvent(ctx, id)
	if err != nil {
		return fmt.Errorf("delete event %s: %w", id, err)
	}
	if !deleted {
		return ErrEventNotFound
	}
	return nil
}

// GetSettings returns the single site-settings row.
func (s *Service) GetSettings(ctx context.Context) (*models.SiteSettings, error) {
	return s.DB.GetSettings(ctx)
}

// UpdateSettings saves the site name and description.
func (s *Service) UpdateSettings(ctx context.Context, settings models.SiteSettings) error {
	if strings.TrimSpace(settings.SiteName) == "" {
		return fmt.Errorf("%w: site name is required", ErrInvalidInput)
	}
	settings.ID = 1
	if err := s.DB.UpdateSettings(ctx, settings); err != nil {
		return fmt.Errorf("update site settings: %w", err)
	}
	return nil
}
