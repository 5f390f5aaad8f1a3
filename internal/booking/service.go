package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"ticketdesk/internal/models"
)

type DBLayer interface {
	GetEventByID(ctx context.Context, id string) (*models.Event, error)
	GetTicketTypes(ctx context.Context, eventID string) ([]models.TicketType, error)
	CommitBooking(ctx context.Context, bk models.Booking, items []models.BookingItem) error
	GetBookingByID(ctx context.Context, id string) (*models.Booking, error)
	GetBookingItems(ctx context.Context, bookingID string) ([]models.BookingItem, error)
}

// Service is the booking transaction engine. Submissions for the same
// event are serialized with a per-event mutex; the conditional decrement
// inside CommitBooking is the store-level backstop, so two concurrent
// requests for the last ticket can never both succeed.
type Service struct {
	DB DBLayer

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewService(db DBLayer) *Service {
	return &Service{
		DB:    db,
		locks: make(map[string]*sync.Mutex),
	}
}

func (s *Service) eventLock(eventID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[eventID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[eventID] = lock
	}
	return lock
}

// Submit validates and commits a booking. Validation order: attendee
// name, requested quantities, event availability, then per-kind
// inventory. The first two checks run before any store access.
func (s *Service) Submit(ctx context.Context, req models.BookingRequest) (*models.BookingConfirmation, error) {
	attendeeName := strings.TrimSpace(req.AttendeeName)
	if attendeeName == "" {
		return nil, fmt.Errorf("%w: attendee name is required", ErrInvalidInput)
	}

	total := 0
	for _, kind := range models.TicketKinds {
		qty := req.Quantities[kind]
		if qty < 0 {
			return nil, fmt.Errorf("%w: negative quantity for %s tickets", ErrInvalidInput, kind)
		}
		total += qty
	}
	if total == 0 {
		return nil, fmt.Errorf("%w: at least one ticket must be requested", ErrInvalidInput)
	}

	lock := s.eventLock(req.EventID)
	lock.Lock()
	defer lock.Unlock()

	event, err := s.DB.GetEventByID(ctx, req.EventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotAvailable
		}
		return nil, fmt.Errorf("fetch event %s: %w", req.EventID, err)
	}
	if !event.IsPublished() {
		return nil, ErrEventNotAvailable
	}

	types, err := s.DB.GetTicketTypes(ctx, req.EventID)
	if err != nil {
		return nil, fmt.Errorf("fetch ticket types for event %s: %w", req.EventID, err)
	}
	byKind := make(map[string]models.TicketType, len(types))
	for _, tt := range types {
		byKind[tt.Kind] = tt
	}

	var items []models.BookingItem
	for _, kind := range models.TicketKinds {
		qty := req.Quantities[kind]
		if qty == 0 {
			continue
		}
		tt, ok := byKind[kind]
		if !ok {
			return nil, fmt.Errorf("%w: no %s tickets for this event", ErrInvalidInput, kind)
		}
		if tt.QuantityAvailable < qty {
			return nil, &InsufficientInventoryError{Kind: kind, Requested: qty}
		}
		items = append(items, models.BookingItem{
			TicketTypeID: tt.ID,
			Quantity:     qty,
			Kind:         kind,
		})
	}

	bk := models.Booking{
		ID:           uuid.NewString(),
		AttendeeName: attendeeName,
		EventID:      req.EventID,
		BookedAt:     time.Now(),
	}

	if err := s.DB.CommitBooking(ctx, bk, items); err != nil {
		var insufficient *InsufficientInventoryError
		if errors.As(err, &insufficient) {
			return nil, insufficient
		}
		return nil, fmt.Errorf("commit booking for event %s: %w", req.EventID, err)
	}

	return &models.BookingConfirmation{
		BookingID:    bk.ID,
		EventID:      bk.EventID,
		AttendeeName: bk.AttendeeName,
		BookedAt:     bk.BookedAt,
	}, nil
}

// GetEvent fetches the event behind a booking regardless of its
// current status; a confirmation stays viewable after unpublishing.
func (s *Service) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	return s.DB.GetEventByID(ctx, id)
}

// GetBooking returns a committed booking with its line items, for the
// confirmation page.
func (s *Service) GetBooking(ctx context.Context, id string) (*models.Booking, []models.BookingItem, error) {
	bk, err := s.DB.GetBookingByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	items, err := s.DB.GetBookingItems(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return bk, items, nil
}
