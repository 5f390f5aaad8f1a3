package booking_api

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"ticketdesk/internal/booking"
	"ticketdesk/internal/booking/qr"
	"ticketdesk/internal/catalog"
	"ticketdesk/internal/logger"
	"ticketdesk/internal/models"
	"ticketdesk/internal/web"
)

// SettingsSource exposes the single site-settings row to page
// rendering.
type SettingsSource interface {
	GetSettings(ctx context.Context) (*models.SiteSettings, error)
}

// Handler serves the public landing page and the attendee browse/book
// flow.
type Handler struct {
	Bookings *booking.Service
	Catalog  *catalog.Service
	QR       *qr.Generator
	Renderer *web.Renderer
	Settings SettingsSource
	Logger   *logger.Logger
}

type eventPage struct {
	Event        *models.Event
	Full         catalog.Entry
	Concession   catalog.Entry
	AttendeeName string
	Error        string
}

func (h *Handler) site(ctx context.Context) models.SiteSettings {
	settings, err := h.Settings.GetSettings(ctx)
	if err != nil {
		h.Logger.Error("SETTINGS", fmt.Sprintf("load site settings: %v", err))
		return models.SiteSettings{SiteName: "Ticketdesk"}
	}
	return *settings
}

// Landing renders the main home page.
func (h *Handler) Landing(w http.ResponseWriter, r *http.Request) {
	h.Renderer.Render(w, http.StatusOK, "main.html", web.Page{Site: h.site(r.Context())})
}

// ListEvents renders the attendee home page with all published events,
// soonest first.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.Catalog.ListPublishedEvents(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListEvents: %v", err))
		http.Error(w, "Something went wrong", http.StatusInternalServerError)
		return
	}

	h.Renderer.Render(w, http.StatusOK, "attendee-home.html", web.Page{
		Site: h.site(r.Context()),
		Data: struct{ Events []models.Event }{Events: events},
	})
}

func (h *Handler) eventPageData(ctx context.Context, eventID string) (*eventPage, error) {
	event, err := h.Catalog.GetPublishedEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	entries, err := h.Catalog.GetTicketCatalog(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return &eventPage{
		Event:      event,
		Full:       entries[models.TicketKindFull],
		Concession: entries[models.TicketKindConcession],
	}, nil
}

// ShowEvent renders one published event with its ticket catalog and
// booking form.
func (h *Handler) ShowEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	page, err := h.eventPageData(r.Context(), eventID)
	if err != nil {
		if errors.Is(err, catalog.ErrEventNotFound) {
			http.Error(w, "Event not found", http.StatusNotFound)
			return
		}
		h.Logger.Error("API", fmt.Sprintf("ShowEvent: %v", err))
		http.Error(w, "Something went wrong", http.StatusInternalServerError)
		return
	}

	h.Renderer.Render(w, http.StatusOK, "attendee-event.html", web.Page{
		Site: h.site(r.Context()),
		Data: page,
	})
}

// SubmitBooking handles the booking form: 400 with the form re-rendered
// on invalid input or insufficient inventory, 404 when the event is not
// bookable, 302 to the confirmation page on success.
func (h *Handler) SubmitBooking(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	attendeeName := r.PostFormValue("attendee_name")
	fullQty, fullErr := formQuantity(r, "full_quantity")
	concessionQty, concessionErr := formQuantity(r, "concession_quantity")
	if fullErr != nil || concessionErr != nil {
		h.rerenderWithError(w, r, eventID, attendeeName, "Ticket quantities must be whole numbers.")
		return
	}

	confirmation, err := h.Bookings.Submit(r.Context(), models.BookingRequest{
		EventID:      eventID,
		AttendeeName: attendeeName,
		Quantities: map[string]int{
			models.TicketKindFull:       fullQty,
			models.TicketKindConcession: concessionQty,
		},
	})
	if err != nil {
		var insufficient *booking.InsufficientInventoryError
		switch {
		case errors.Is(err, booking.ErrEventNotAvailable):
			http.Error(w, "Event not found", http.StatusNotFound)
		case errors.As(err, &insufficient):
			h.rerenderWithError(w, r, eventID, attendeeName,
				fmt.Sprintf("Not enough %s tickets available.", insufficient.Kind))
		case errors.Is(err, booking.ErrInvalidInput):
			h.rerenderWithError(w, r, eventID, attendeeName, userMessage(err))
		default:
			h.Logger.Error("API", fmt.Sprintf("SubmitBooking: %v", err))
			http.Error(w, "Something went wrong", http.StatusInternalServerError)
		}
		return
	}

	h.Logger.LogBooking("SUBMIT", confirmation.BookingID,
		fmt.Sprintf("booked event %s for %s", confirmation.EventID, confirmation.AttendeeName))
	http.Redirect(w, r, "/attendee/booking/"+confirmation.BookingID, http.StatusFound)
}

// rerenderWithError shows the event page again with a 400 status and
// the failure message above the booking form.
func (h *Handler) rerenderWithError(w http.ResponseWriter, r *http.Request, eventID, attendeeName, message string) {
	page, err := h.eventPageData(r.Context(), eventID)
	if err != nil {
		if errors.Is(err, catalog.ErrEventNotFound) {
			http.Error(w, "Event not found", http.StatusNotFound)
			return
		}
		h.Logger.Error("API", fmt.Sprintf("SubmitBooking rerender: %v", err))
		http.Error(w, "Something went wrong", http.StatusInternalServerError)
		return
	}
	page.AttendeeName = attendeeName
	page.Error = message

	h.Renderer.Render(w, http.StatusBadRequest, "attendee-event.html", web.Page{
		Site: h.site(r.Context()),
		Data: page,
	})
}

// ShowConfirmation renders the confirmation page for a committed
// booking.
func (h *Handler) ShowConfirmation(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "bookingID")

	bk, items, err := h.Bookings.GetBooking(r.Context(), bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Booking not found", http.StatusNotFound)
			return
		}
		h.Logger.Error("API", fmt.Sprintf("ShowConfirmation: %v", err))
		http.Error(w, "Something went wrong", http.StatusInternalServerError)
		return
	}

	event, err := h.Bookings.GetEvent(r.Context(), bk.EventID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ShowConfirmation: event %s: %v", bk.EventID, err))
		http.Error(w, "Something went wrong", http.StatusInternalServerError)
		return
	}

	h.Renderer.Render(w, http.StatusOK, "booking-confirmed.html", web.Page{
		Site: h.site(r.Context()),
		Data: struct {
			Booking *models.Booking
			Items   []models.BookingItem
			Event   *models.Event
		}{Booking: bk, Items: items, Event: event},
	})
}

// BookingQR serves the confirmation QR as a PNG.
func (h *Handler) BookingQR(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "bookingID")

	bk, _, err := h.Bookings.GetBooking(r.Context(), bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Booking not found", http.StatusNotFound)
			return
		}
		h.Logger.Error("API", fmt.Sprintf("BookingQR: %v", err))
		http.Error(w, "Something went wrong", http.StatusInternalServerError)
		return
	}

	png, err := h.QR.Generate(*bk)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("BookingQR: generate: %v", err))
		http.Error(w, "Something went wrong", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

func formQuantity(r *http.Request, field string) (int, error) {
	raw := strings.TrimSpace(r.PostFormValue(field))
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

// userMessage strips the wrapped sentinel prefix so the attendee sees
// only the human part of a validation error.
func userMessage(err error) string {
	msg := err.Error()
	if idx := strings.LastIndex(msg, ": "); idx >= 0 {
		return strings.ToUpper(msg[idx+2:][:1]) + msg[idx+2+1:] + "."
	}
	return msg
}
