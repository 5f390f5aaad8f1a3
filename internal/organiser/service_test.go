package organiser_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"ticketdesk/internal/config"
	"ticketdesk/internal/database"
	"ticketdesk/internal/models"
	"ticketdesk/internal/organiser"
	organiserdb "ticketdesk/internal/organiser/db"
)

func setupService(t *testing.T) (*organiser.Service, *bun.DB) {
	bunDB, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { bunDB.Close() })
	require.NoError(t, database.CreateSchema(context.Background(), bunDB))

	picker := organiser.NewImagePicker(config.ImagePolicyRoundRobin)
	return organiser.NewService(&organiserdb.DB{Bun: bunDB}, picker), bunDB
}

func TestCreateDraft(t *testing.T) {
	service, bunDB := setupService(t)
	ctx := context.Background()

	event, err := service.CreateDraft(ctx)
	require.NoError(t, err)

	assert.Equal(t, models.EventStatusDraft, event.Status)
	assert.NotEmpty(t, event.Title)
	assert.NotEmpty(t, event.Image)
	assert.True(t, event.PublishedAt.IsZero())

	var types []models.TicketType
	require.NoError(t, bunDB.NewSelect().Model(&types).Where("event_id = ?", event.ID).Order("kind").Scan(ctx))
	require.Len(t, types, 2)
	for _, tt := range types {
		assert.Zero(t, tt.Price)
		assert.Zero(t, tt.QuantityAvailable)
	}
	assert.Equal(t, models.TicketKindConcession, types[0].Kind)
	assert.Equal(t, models.TicketKindFull, types[1].Kind)
}

func TestUpdateEvent(t *testing.T) {
	service, bunDB := setupService(t)
	ctx := context.Background()

	event, err := service.CreateDraft(ctx)
	require.NoError(t, err)

	date := time.Date(2026, 10, 12, 19, 30, 0, 0, time.Local)
	err = service.UpdateEvent(ctx, event.ID, organiser.EventUpdate{
		Title:              "Autumn Gala",
		Description:        "An evening of music.",
		EventDate:          date,
		FullPrice:          30,
		FullQuantity:       200,
		ConcessionPrice:    15,
		ConcessionQuantity: 50,
	})
	require.NoError(t, err)

	updated, err := service.GetEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, "Autumn Gala", updated.Title)
	assert.Equal(t, date.Unix(), updated.EventDate.Unix())
	assert.False(t, updated.ModifiedAt.IsZero())
	// Still a draft: edits never transition state.
	assert.Equal(t, models.EventStatusDraft, updated.Status)

	var types []models.TicketType
	require.NoError(t, bunDB.NewSelect().Model(&types).Where("event_id = ?", event.ID).Order("kind").Scan(ctx))
	require.Len(t, types, 2)
	assert.Equal(t, 15.0, types[0].Price)
	assert.Equal(t, 50, types[0].QuantityAvailable)
	assert.Equal(t, 30.0, types[1].Price)
	assert.Equal(t, 200, types[1].QuantityAvailable)
}

func TestUpdateEventValidation(t *testing.T) {
	service, _ := setupService(t)
	ctx := context.Background()

	event, err := service.CreateDraft(ctx)
	require.NoError(t, err)

	err = service.UpdateEvent(ctx, event.ID, organiser.EventUpdate{Title: "  "})
	assert.ErrorIs(t, err, organiser.ErrInvalidInput)

	err = service.UpdateEvent(ctx, event.ID, organiser.EventUpdate{Title: "Ok", FullPrice: -1})
	assert.ErrorIs(t, err, organiser.ErrInvalidInput)

	err = service.UpdateEvent(ctx, event.ID, organiser.EventUpdate{Title: "Ok", ConcessionQuantity: -5})
	assert.ErrorIs(t, err, organiser.ErrInvalidInput)

	err = service.UpdateEvent(ctx, "missing", organiser.EventUpdate{Title: "Ok"})
	assert.ErrorIs(t, err, organiser.ErrEventNotFound)
}

func TestPublishTransitionsDraft(t *testing.T) {
	service, _ := setupService(t)
	ctx := context.Background()

	event, err := service.CreateDraft(ctx)
	require.NoError(t, err)

	require.NoError(t, service.Publish(ctx, event.ID))

	published, err := service.GetEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EventStatusPublished, published.Status)
	assert.False(t, published.PublishedAt.IsZero())
}

func TestRepublishIsNoOp(t *testing.T) {
	service, _ := setupService(t)
	ctx := context.Background()

	event, err := service.CreateDraft(ctx)
	require.NoError(t, err)
	require.NoError(t, service.Publish(ctx, event.ID))

	first, err := service.GetEvent(ctx, event.ID)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, service.Publish(ctx, event.ID))

	second, err := service.GetEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, first.PublishedAt, second.PublishedAt)
}

func TestPublishMissingEvent(t *testing.T) {
	service, _ := setupService(t)
	assert.ErrorIs(t, service.Publish(context.Background(), "missing"), organiser.ErrEventNotFound)
}

func TestDeleteCascades(t *testing.T) {
	service, bunDB := setupService(t)
	ctx := context.Background()

	event, err := service.CreateDraft(ctx)
	require.NoError(t, err)
	require.NoError(t, service.Publish(ctx, event.ID))

	// A committed booking with one item hangs off the event.
	var types []models.TicketType
	require.NoError(t, bunDB.NewSelect().Model(&types).Where("event_id = ?", event.ID).Scan(ctx))
	require.NotEmpty(t, types)

	bk := models.Booking{
		ID:           uuid.NewString(),
		AttendeeName: "Alex",
		EventID:      event.ID,
		BookedAt:     time.Now(),
	}
	_, err = bunDB.NewInsert().Model(&bk).Exec(ctx)
	require.NoError(t, err)
	item := models.BookingItem{BookingID: bk.ID, TicketTypeID: types[0].ID, Quantity: 1}
	_, err = bunDB.NewInsert().Model(&item).Exec(ctx)
	require.NoError(t, err)

	require.NoError(t, service.Delete(ctx, event.ID))

	for model, name := range map[interface{}]string{
		(*models.TicketType)(nil):  "ticket_types",
		(*models.Booking)(nil):     "bookings",
		(*models.BookingItem)(nil): "booking_items",
	} {
		count, err := bunDB.NewSelect().Model(model).Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, count, "expected cascade to empty %s", name)
	}

	assert.ErrorIs(t, service.Delete(ctx, event.ID), organiser.ErrEventNotFound)
}

func TestSettings(t *testing.T) {
	service, _ := setupService(t)
	ctx := context.Background()

	settings, err := service.GetSettings(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, settings.SiteName)

	err = service.UpdateSettings(ctx, models.SiteSettings{SiteName: "Village Hall Events", SiteDescription: "What's on"})
	require.NoError(t, err)

	updated, err := service.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Village Hall Events", updated.SiteName)

	err = service.UpdateSettings(ctx, models.SiteSettings{SiteName: "   "})
	assert.ErrorIs(t, err, organiser.ErrInvalidInput)
}

func TestCountBookings(t *testing.T) {
	service, bunDB := setupService(t)
	ctx := context.Background()

	event, err := service.CreateDraft(ctx)
	require.NoError(t, err)

	count, err := service.CountBookings(ctx, event.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	bk := models.Booking{ID: uuid.NewString(), AttendeeName: "Alex", EventID: event.ID, BookedAt: time.Now()}
	_, err = bunDB.NewInsert().Model(&bk).Exec(ctx)
	require.NoError(t, err)

	count, err = service.CountBookings(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
