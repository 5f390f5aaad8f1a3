package qr

import (
	"encoding/json"

	"github.com/skip2/go-qrcode"

	"ticketdesk/internal/models"
)

// payload is what the QR encodes: enough to check a booking at the
// door against the store.
type payload struct {
	BookingID    string `json:"booking_id"`
	EventID      string `json:"event_id"`
	AttendeeName string `json:"attendee_name"`
}

// Generator renders booking confirmations as QR PNGs.
type Generator struct {
	size int
}

func NewGenerator() *Generator {
	return &Generator{size: 256}
}

// Generate returns a PNG QR for a committed booking.
func (g *Generator) Generate(bk models.Booking) ([]byte, error) {
	data, err := json.Marshal(payload{
		BookingID:    bk.ID,
		EventID:      bk.EventID,
		AttendeeName: bk.AttendeeName,
	})
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(string(data), qrcode.Medium, g.size)
}
