package booking_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"ticketdesk/internal/booking"
	bookingdb "ticketdesk/internal/booking/db"
	"ticketdesk/internal/database"
	"ticketdesk/internal/models"
)

// Mock implementation of the booking DB layer
type MockDBLayer struct {
	mock.Mock
}

func (m *MockDBLayer) GetEventByID(ctx context.Context, id string) (*models.Event, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *MockDBLayer) GetTicketTypes(ctx context.Context, eventID string) ([]models.TicketType, error) {
	args := m.Called(eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TicketType), args.Error(1)
}

func (m *MockDBLayer) CommitBooking(ctx context.Context, bk models.Booking, items []models.BookingItem) error {
	args := m.Called(bk, items)
	return args.Error(0)
}

func (m *MockDBLayer) GetBookingByID(ctx context.Context, id string) (*models.Booking, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockDBLayer) GetBookingItems(ctx context.Context, bookingID string) ([]models.BookingItem, error) {
	args := m.Called(bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.BookingItem), args.Error(1)
}

func request(eventID, name string, full, concession int) models.BookingRequest {
	return models.BookingRequest{
		EventID:      eventID,
		AttendeeName: name,
		Quantities: map[string]int{
			models.TicketKindFull:       full,
			models.TicketKindConcession: concession,
		},
	}
}

func TestSubmitRejectsEmptyNameBeforeStoreAccess(t *testing.T) {
	mockDB := new(MockDBLayer)
	service := booking.NewService(mockDB)

	_, err := service.Submit(context.Background(), request("event1", "   ", 1, 0))
	assert.ErrorIs(t, err, booking.ErrInvalidInput)

	// No store call of any kind happened.
	mockDB.AssertExpectations(t)
	mockDB.AssertNotCalled(t, "GetEventByID", mock.Anything)
}

func TestSubmitRejectsZeroQuantities(t *testing.T) {
	mockDB := new(MockDBLayer)
	service := booking.NewService(mockDB)

	_, err := service.Submit(context.Background(), request("event1", "Alex", 0, 0))
	assert.ErrorIs(t, err, booking.ErrInvalidInput)
	mockDB.AssertNotCalled(t, "GetEventByID", mock.Anything)
}

func TestSubmitRejectsNegativeQuantity(t *testing.T) {
	mockDB := new(MockDBLayer)
	service := booking.NewService(mockDB)

	_, err := service.Submit(context.Background(), request("event1", "Alex", -1, 2))
	assert.ErrorIs(t, err, booking.ErrInvalidInput)
	mockDB.AssertNotCalled(t, "GetEventByID", mock.Anything)
}

func TestSubmitRejectsMissingEvent(t *testing.T) {
	mockDB := new(MockDBLayer)
	mockDB.On("GetEventByID", "missing").Return(nil, sql.ErrNoRows)
	service := booking.NewService(mockDB)

	_, err := service.Submit(context.Background(), request("missing", "Alex", 1, 0))
	assert.ErrorIs(t, err, booking.ErrEventNotAvailable)
	mockDB.AssertNotCalled(t, "CommitBooking", mock.Anything, mock.Anything)
}

func TestSubmitRejectsDraftEvent(t *testing.T) {
	mockDB := new(MockDBLayer)
	mockDB.On("GetEventByID", "event1").Return(&models.Event{
		ID:     "event1",
		Status: models.EventStatusDraft,
	}, nil)
	service := booking.NewService(mockDB)

	_, err := service.Submit(context.Background(), request("event1", "Alex", 1, 0))
	assert.ErrorIs(t, err, booking.ErrEventNotAvailable)
	mockDB.AssertNotCalled(t, "CommitBooking", mock.Anything, mock.Anything)
}

func TestSubmitRejectsInsufficientInventoryBeforeCommit(t *testing.T) {
	mockDB := new(MockDBLayer)
	mockDB.On("GetEventByID", "event1").Return(&models.Event{
		ID:     "event1",
		Status: models.EventStatusPublished,
	}, nil)
	mockDB.On("GetTicketTypes", "event1").Return([]models.TicketType{
		{ID: "tt-full", EventID: "event1", Kind: models.TicketKindFull, QuantityAvailable: 1},
		{ID: "tt-conc", EventID: "event1", Kind: models.TicketKindConcession, QuantityAvailable: 5},
	}, nil)
	service := booking.NewService(mockDB)

	_, err := service.Submit(context.Background(), request("event1", "Alex", 2, 0))

	var insufficient *booking.InsufficientInventoryError
	assert.ErrorAs(t, err, &insufficient)
	assert.Equal(t, models.TicketKindFull, insufficient.Kind)
	mockDB.AssertNotCalled(t, "CommitBooking", mock.Anything, mock.Anything)
}

func TestSubmitCommitsValidBooking(t *testing.T) {
	mockDB := new(MockDBLayer)
	mockDB.On("GetEventByID", "event1").Return(&models.Event{
		ID:     "event1",
		Status: models.EventStatusPublished,
	}, nil)
	mockDB.On("GetTicketTypes", "event1").Return([]models.TicketType{
		{ID: "tt-full", EventID: "event1", Kind: models.TicketKindFull, QuantityAvailable: 5},
		{ID: "tt-conc", EventID: "event1", Kind: models.TicketKindConcession, QuantityAvailable: 5},
	}, nil)
	mockDB.On("CommitBooking", mock.Anything, mock.Anything).Return(nil)
	service := booking.NewService(mockDB)

	confirmation, err := service.Submit(context.Background(), request("event1", "  Alex  ", 2, 1))
	assert.NoError(t, err)
	assert.NotEmpty(t, confirmation.BookingID)
	assert.Equal(t, "Alex", confirmation.AttendeeName)
	assert.Equal(t, "event1", confirmation.EventID)

	mockDB.AssertCalled(t, "CommitBooking", mock.MatchedBy(func(bk models.Booking) bool {
		return bk.AttendeeName == "Alex" && bk.EventID == "event1"
	}), mock.MatchedBy(func(items []models.BookingItem) bool {
		return len(items) == 2 && items[0].Quantity == 2 && items[1].Quantity == 1
	}))
}

// ---- scenarios against a real in-memory store ----

func setupRealService(t *testing.T, fullQty, concessionQty int) (*booking.Service, *bun.DB, string, map[string]string) {
	bunDB, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { bunDB.Close() })
	require.NoError(t, database.CreateSchema(context.Background(), bunDB))

	ctx := context.Background()
	event := models.Event{
		ID:          uuid.NewString(),
		Title:       "Spring Concert",
		EventDate:   time.Now().AddDate(0, 0, 14),
		Status:      models.EventStatusPublished,
		CreatedAt:   time.Now(),
		PublishedAt: time.Now(),
	}
	_, err = bunDB.NewInsert().Model(&event).Exec(ctx)
	require.NoError(t, err)

	ids := make(map[string]string)
	for kind, qty := range map[string]int{
		models.TicketKindFull:       fullQty,
		models.TicketKindConcession: concessionQty,
	} {
		tt := models.TicketType{
			ID:                uuid.NewString(),
			EventID:           event.ID,
			Kind:              kind,
			Price:             10,
			QuantityAvailable: qty,
		}
		_, err := bunDB.NewInsert().Model(&tt).Exec(ctx)
		require.NoError(t, err)
		ids[kind] = tt.ID
	}

	return booking.NewService(&bookingdb.DB{Bun: bunDB}), bunDB, event.ID, ids
}

func remaining(t *testing.T, bunDB *bun.DB, ticketTypeID string) int {
	var tt models.TicketType
	require.NoError(t, bunDB.NewSelect().Model(&tt).Where("id = ?", ticketTypeID).Scan(context.Background()))
	return tt.QuantityAvailable
}

func TestSubmitScenarioSellOutThenReject(t *testing.T) {
	service, bunDB, eventID, ids := setupRealService(t, 2, 0)
	ctx := context.Background()

	confirmation, err := service.Submit(ctx, request(eventID, "Alex", 2, 0))
	require.NoError(t, err)
	assert.Equal(t, 0, remaining(t, bunDB, ids[models.TicketKindFull]))

	items, err := (&bookingdb.DB{Bun: bunDB}).GetBookingItems(ctx, confirmation.BookingID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)

	// Second attendee finds nothing left; the store stays unchanged.
	_, err = service.Submit(ctx, request(eventID, "Sam", 1, 0))
	var insufficient *booking.InsufficientInventoryError
	assert.ErrorAs(t, err, &insufficient)
	assert.Equal(t, models.TicketKindFull, insufficient.Kind)
	assert.Equal(t, 0, remaining(t, bunDB, ids[models.TicketKindFull]))

	count, err := bunDB.NewSelect().Model((*models.Booking)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSubmitConcurrentLastTicket(t *testing.T) {
	service, bunDB, eventID, ids := setupRealService(t, 1, 0)
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([]error, 2)
	names := []string{"Alex", "Sam"}
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = service.Submit(ctx, request(eventID, names[i], 1, 0))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
			continue
		}
		var insufficient *booking.InsufficientInventoryError
		assert.ErrorAs(t, err, &insufficient)
	}
	assert.Equal(t, 1, succeeded)

	// Availability never goes negative.
	assert.Equal(t, 0, remaining(t, bunDB, ids[models.TicketKindFull]))

	count, err := bunDB.NewSelect().Model((*models.Booking)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
