package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/uptrace/bun"

	"ticketdesk/internal/models"
)

type DB struct {
	Bun *bun.DB
}

// InsertEventWithTickets creates the draft and its two ticket rows in
// one transaction.
func (d *DB) InsertEventWithTickets(ctx context.Context, event models.Event, types []models.TicketType) error {
	return d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(&event).Exec(ctx); err != nil {
			return err
		}
		if _, err := tx.NewInsert().Model(&types).Exec(ctx); err != nil {
			return err
		}
		return nil
	})
}

func (d *DB) GetEventByID(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	err := d.Bun.NewSelect().
		Model(&event).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (d *DB) ListEvents(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	err := d.Bun.NewSelect().
		Model(&events).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (d *DB) GetTicketTypes(ctx context.Context, eventID string) ([]models.TicketType, error) {
	var types []models.TicketType
	err := d.Bun.NewSelect().
		Model(&types).
		Where("event_id = ?", eventID).
		Order("kind").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return types, nil
}

// UpdateEventWithTickets saves an edit: whole-row updates for the event
// and each ticket type, in one transaction.
func (d *DB) UpdateEventWithTickets(ctx context.Context, event models.Event, types []models.TicketType) error {
	return d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewUpdate().
			Model(&event).
			Column("title", "description", "event_date", "modified_at").
			Where("id = ?", event.ID).
			Exec(ctx); err != nil {
			return err
		}
		for i := range types {
			if _, err := tx.NewUpdate().
				Model(&types[i]).
				Column("price", "quantity_available").
				Where("id = ?", types[i].ID).
				Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
}

// PublishEvent flips a draft to published with a conditional update so
// a concurrent publish cannot overwrite published_at. Returns whether a
// row changed.
func (d *DB) PublishEvent(ctx context.Context, id string, publishedAt time.Time) (bool, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.Event)(nil)).
		Set("status = ?", models.EventStatusPublished).
		Set("published_at = ?", publishedAt).
		Where("id = ?", id).
		Where("status = ?", models.EventStatusDraft).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// DeleteEvent removes the event row; the cascade takes care of ticket
// types, bookings and items. Returns whether a row was deleted.
func (d *DB) DeleteEvent(ctx context.Context, id string) (bool, error) {
	res, err := d.Bun.NewDelete().
		Model((*models.Event)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (d *DB) CountBookings(ctx context.Context, eventID string) (int, error) {
	return d.Bun.NewSelect().
		Model((*models.Booking)(nil)).
		Where("event_id = ?", eventID).
		Count(ctx)
}

func (d *DB) GetSettings(ctx context.Context) (*models.SiteSettings, error) {
	var settings models.SiteSettings
	err := d.Bun.NewSelect().
		Model(&settings).
		Where("id = 1").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (d *DB) UpdateSettings(ctx context.Context, settings models.SiteSettings) error {
	_, err := d.Bun.NewUpdate().
		Model(&settings).
		Column("site_name", "site_description").
		Where("id = 1").
		Exec(ctx)
	return err
}
