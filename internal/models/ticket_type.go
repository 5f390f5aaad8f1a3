package models

import (
	"github.com/uptrace/bun"
)

// Ticket kinds. Every event carries exactly one TicketType row per kind,
// created alongside the draft with zero price and zero quantity.
const (
	TicketKindFull       = "full"
	TicketKindConcession = "concession"
)

// TicketKinds lists all kinds in display order.
var TicketKinds = []string{TicketKindFull, TicketKindConcession}

type TicketType struct {
	bun.BaseModel `bun:"table:ticket_types"`

	ID                string  `bun:"id,pk"`
	EventID           string  `bun:"event_id,notnull"`
	Kind              string  `bun:"kind,notnull"`
	Price             float64 `bun:"price,notnull"`
	QuantityAvailable int     `bun:"quantity_available,notnull"`
}
