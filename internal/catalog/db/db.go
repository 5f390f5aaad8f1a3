package db

import (
	"context"

	"github.com/uptrace/bun"

	"ticketdesk/internal/models"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) ListPublishedEvents(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	err := d.Bun.NewSelect().
		Model(&events).
		Where("status = ?", models.EventStatusPublished).
		Order("event_date ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (d *DB) GetPublishedEvent(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	err := d.Bun.NewSelect().
		Model(&event).
		Where("id = ?", id).
		Where("status = ?", models.EventStatusPublished).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &event, nil
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
