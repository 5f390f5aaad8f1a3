package db

import (
	"context"
	"database/sql"

	"github.com/uptrace/bun"

	"ticketdesk/internal/booking"
	"ticketdesk/internal/models"
)

type DB struct {
	Bun *bun.DB
}

// GetEventByID fetches one event regardless of status. The engine
// decides whether it is bookable.
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

// GetTicketTypes returns the ticket rows for an event, one per kind.
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

// CommitBooking applies the whole booking inside one transaction: a
// conditional decrement per touched ticket type, then the booking row,
// then its items. A decrement that matches no row means another booking
// got there first; the transaction rolls back and the caller sees
// InsufficientInventoryError.
func (d *DB) CommitBooking(ctx context.Context, bk models.Booking, items []models.BookingItem) error {
	return d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		for _, item := range items {
			res, err := tx.NewUpdate().
				Model((*models.TicketType)(nil)).
				Set("quantity_available = quantity_available - ?", item.Quantity).
				Where("id = ?", item.TicketTypeID).
				Where("quantity_available >= ?", item.Quantity).
				Exec(ctx)
			if err != nil {
				return err
			}
			rows, err := res.RowsAffected()
			if err != nil {
				return err
			}
			if rows == 0 {
				return &booking.InsufficientInventoryError{Kind: item.Kind, Requested: item.Quantity}
			}
		}

		if _, err := tx.NewInsert().Model(&bk).Exec(ctx); err != nil {
			return err
		}

		for i := range items {
			items[i].BookingID = bk.ID
		}
		if _, err := tx.NewInsert().Model(&items).Exec(ctx); err != nil {
			return err
		}

		return nil
	})
}

// GetBookingByID fetches one committed booking.
func (d *DB) GetBookingByID(ctx context.Context, id string) (*models.Booking, error) {
	var bk models.Booking
	err := d.Bun.NewSelect().
		Model(&bk).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &bk, nil
}

// GetBookingItems returns the line items of a booking with the kind of
// each referenced ticket type filled in.
func (d *DB) GetBookingItems(ctx context.Context, bookingID string) ([]models.BookingItem, error) {
	var items []models.BookingItem
	err := d.Bun.NewSelect().
		Model(&items).
		Where("booking_id = ?", bookingID).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	for i := range items {
		var tt models.TicketType
		err := d.Bun.NewSelect().
			Model(&tt).
			Where("id = ?", items[i].TicketTypeID).
			Limit(1).
			Scan(ctx)
		if err != nil {
			return nil, err
		}
		items[i].Kind = tt.Kind
	}
	return items, nil
}
