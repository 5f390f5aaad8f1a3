package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"ticketdesk/internal/models"
)

// Open connects to the SQLite database at path and returns a bun handle.
// The connection pool is capped at one connection: SQLite is
// single-writer, and a single connection keeps the foreign_keys pragma
// in force for every statement.
func Open(path string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	sqldb.SetMaxOpenConns(1)

	if _, err := sqldb.Exec("PRAGMA foreign_keys = ON"); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

// CreateSchema creates the tables if they do not exist. Foreign keys
// cascade so deleting an event removes its ticket types, bookings and
// booking items at the store level.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	if _, err := db.NewCreateTable().
		Model((*models.Event)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create events table: %w", err)
	}

	if _, err := db.NewCreateTable().
		Model((*models.TicketType)(nil)).
		IfNotExists().
		ForeignKey(`("event_id") REFERENCES "events" ("id") ON DELETE CASCADE`).
		Exec(ctx); err != nil {
		return fmt.Errorf("create ticket_types table: %w", err)
	}

	if _, err := db.NewCreateTable().
		Model((*models.Booking)(nil)).
		IfNotExists().
		ForeignKey(`("event_id") REFERENCES "events" ("id") ON DELETE CASCADE`).
		Exec(ctx); err != nil {
		return fmt.Errorf("create bookings table: %w", err)
	}

	if _, err := db.NewCreateTable().
		Model((*models.BookingItem)(nil)).
		IfNotExists().
		ForeignKey(`("booking_id") REFERENCES "bookings" ("id") ON DELETE CASCADE`).
		ForeignKey(`("ticket_type_id") REFERENCES "ticket_types" ("id") ON DELETE CASCADE`).
		Exec(ctx); err != nil {
		return fmt.Errorf("create booking_items table: %w", err)
	}

	if _, err := db.NewCreateTable().
		Model((*models.SiteSettings)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create site_settings table: %w", err)
	}

	return seedSettings(ctx, db)
}

// seedSettings inserts the single settings row when the table is empty.
func seedSettings(ctx context.Context, db *bun.DB) error {
	count, err := db.NewSelect().Model((*models.SiteSettings)(nil)).Count(ctx)
	if err != nil {
		return fmt.Errorf("count site_settings: %w", err)
	}
	if count > 0 {
		return nil
	}

	settings := models.SiteSettings{
		ID:              1,
		SiteName:        "Ticketdesk",
		SiteDescription: "Find and book tickets for upcoming events.",
	}
	if _, err := db.NewInsert().Model(&settings).Exec(ctx); err != nil {
		return fmt.Errorf("seed site_settings: %w", err)
	}
	return nil
}
