package organiser_api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"ticketdesk/internal/auth"
	"ticketdesk/internal/logger"
	"ticketdesk/internal/models"
	"ticketdesk/internal/organiser"
	"ticketdesk/internal/web"
)

// Handler serves the authenticated organiser area: event lifecycle,
// site settings, login and logout.
type Handler struct {
	Events   *organiser.Service
	Sessions *auth.Sessions
	Renderer *web.Renderer
	Logger   *logger.Logger
}

const datetimeLocal = "2006-01-02T15:04"

type eventRow struct {
	models.Event
	Bookings int
}

type editPage struct {
	Event      *models.Event
	Full       models.TicketType
	Concession models.TicketType
	Error      string
}

func (h *Handler) site(ctx context.Context) models.SiteSettings {
	settings, err := h.Events.GetSettings(ctx)
	if err != nil {
		h.Logger.Error("SETTINGS", fmt.Sprintf("load site settings: %v", err))
		return models.SiteSettings{SiteName: "Ticketdesk"}
	}
	return *settings
}

// Home lists every event, drafts and published separately, with booking
// counts for the published ones.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	events, err := h.Events.ListEvents(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("Home: %v", err))
		http.Error(w, "Something went wrong", http.StatusInternalServerError)
		return
	}

	var drafts, published []eventRow
	for _, event := range events {
		row := eventRow{Event: event}
		if event.IsPublished() {
			count, err := h.Events.CountBookings(r.Context(), event.ID)
			if err != nil {
				h.Logger.Error("API", fmt.Sprintf("Home: bookings for %s: %v", event.ID, err))
			}
			row.Bookings = count
			published = append(published, row)
		} else {
			drafts = append(drafts, row)
		}
	}

	h.Renderer.Render(w, http.StatusOK, "organiser-home.html", web.Page{
		Site: h.site(r.Context()),
		Data: struct {
			Drafts    []eventRow
			Published []eventRow
		}{Drafts: drafts, Published: published},
	})
}

// CreateEvent makes a fresh draft and sends the organiser straight to
// its edit form.
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.Events.CreateDraft(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateEvent: %v", err))
		http.Error(w, "Something went wrong", http.StatusInternalServerError)
		return
	}

	h.Logger.Info("EVENT", fmt.Sprintf("created draft %s", event.ID))
	http.Redirect(w, r, "/organiser/events/edit/"+event.ID, http.StatusFound)
}

func (h *Handler) editPageData(ctx context.Context, eventID string) (*editPage, error) {
	event, err := h.Events.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	types, err := h.Events.GetTicketTypes(ctx, eventID)
	if err != nil {
		return nil, err
	}

	page := &editPage{Event: event}
	for _, tt := range types {
		switch tt.Kind {
		case models.TicketKindFull:
			page.Full = tt
		case models.TicketKindConcession:
			page.Concession = tt
		}
	}
	return page, nil
}

// EditForm renders the edit page for a draft or published event.
func (h *Handler) EditForm(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	page, err := h.editPageData(r.Context(), eventID)
	if err != nil {
		if errors.Is(err, organiser.ErrEventNotFound) {
			http.Error(w, "Event not found", http.StatusNotFound)
			return
		}
		h.Logger.Error("API", fmt.Sprintf("EditForm: %v", err))
		http.Error(w, "Something went wrong", http.StatusInternalServerError)
		return
	}

	h.Renderer.Render(w, http.StatusOK, "organiser-edit.html", web.Page{
		Site: h.site(r.Context()),
		Data: page,
	})
}

// SaveEvent applies the edit form to the event and its ticket rows.
func (h *Handler) SaveEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	update, parseErr := parseEventForm(r)
	if parseErr != "" {
		h.rerenderEdit(w, r, eventID, parseErr)
		return
	}

	if err := h.Events.UpdateEvent(r.Context(), eventID, update); err != nil {
		switch {
		case errors.Is(err, organiser.ErrEventNotFound):
			http.Error(w, "Event not found", http.StatusNotFound)
		case errors.Is(err, organiser.ErrInvalidInput):
			h.rerenderEdit(w, r, eventID, "Check the form: title is required and prices and quantities cannot be negative.")
		default:
			h.Logger.Error("API", fmt.Sprintf("SaveEvent: %v", err))
			http.Error(w, "Something went wrong", http.StatusInternalServerError)
		}
		return
	}

	h.Logger.Info("EVENT", fmt.Sprintf("updated event %s", eventID))
	http.Redirect(w, r, "/organiser", http.StatusFound)
}

func (h *Handler) rerenderEdit(w http.ResponseWriter, r *http.Request, eventID, message string) {
	page, err := h.editPageData(r.Context(), eventID)
	if err != nil {
		if errors.Is(err, organiser.ErrEventNotFound) {
			http.Error(w, "Event not found", http.StatusNotFound)
			return
		}
		h.Logger.Error("API", fmt.Sprintf("SaveEvent rerender: %v", err))
		http.Error(w, "Something went wrong", http.StatusInternalServerError)
		return
	}
	page.Error = message

	h.Renderer.Render(w, http.StatusBadRequest, "organiser-edit.html", web.Page{
		Site: h.site(r.Context()),
		Data: page,
	})
}

// PublishEvent transitions a draft to published. Re-publishing is a
// no-op.
func (h *Handler) PublishEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	if err := h.Events.Publish(r.Context(), eventID); err != nil {
		if errors.Is(err, organiser.ErrEventNotFound) {
			http.Error(w, "Event not found", http.StatusNotFound)
			return
		}
		h.Logger.Error("API", fmt.Sprintf("PublishEvent: %v", err))
		http.Error(w, "Something went wrong", http.StatusInternalServerError)
		return
	}

	h.Logger.Info("EVENT", fmt.Sprintf("published event %s", eventID))
	http.Redirect(w, r, "/organiser", http.StatusFound)
}

// DeleteEvent removes an event; its ticket types and bookings cascade
// away with it.
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	if err := h.Events.Delete(r.Context(), eventID); err != nil {
		if errors.Is(err, organiser.ErrEventNotFound) {
			http.Error(w, "Event not found", http.StatusNotFound)
			return
		}
		h.Logger.Error("API", fmt.Sprintf("DeleteEvent: %v", err))
		http.Error(w, "Something went wrong", http.StatusInternalServerError)
		return
	}

	h.Logger.Info("EVENT", fmt.Sprintf("deleted event %s", eventID))
	http.Redirect(w, r, "/organiser", http.StatusFound)
}

type settingsPage struct {
	Error string
	Saved bool
}

// SettingsForm renders the site-settings page.
func (h *Handler) SettingsForm(w http.ResponseWriter, r *http.Request) {
	h.Renderer.Render(w, http.StatusOK, "site-settings.html", web.Page{
		Site: h.site(r.Context()),
		Data: settingsPage{Saved: r.URL.Query().Get("saved") == "1"},
	})
}

// SaveSettings updates the single settings row.
func (h *Handler) SaveSettings(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	settings := models.SiteSettings{
		SiteName:        r.PostFormValue("site_name"),
		SiteDescription: r.PostFormValue("site_description"),
	}

	if err := h.Events.UpdateSettings(r.Context(), settings); err != nil {
		if errors.Is(err, organiser.ErrInvalidInput) {
			h.Renderer.Render(w, http.StatusBadRequest, "site-settings.html", web.Page{
				Site: h.site(r.Context()),
				Data: settingsPage{Error: "Site name is required."},
			})
			return
		}
		h.Logger.Error("API", fmt.Sprintf("SaveSettings: %v", err))
		http.Error(w, "Something went wrong", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/organiser/settings?saved=1", http.StatusFound)
}

type loginPage struct {
	Email string
	Error string
}

// LoginForm renders the login page.
func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.Renderer.Render(w, http.StatusOK, "organiser-login.html", web.Page{
		Site: h.site(r.Context()),
		Data: loginPage{},
	})
}

// Login checks the organiser credential and starts a session.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	email := r.PostFormValue("email")
	password := r.PostFormValue("password")

	token, err := h.Sessions.Login(email, password)
	if err != nil {
		h.Logger.Warn("AUTH", fmt.Sprintf("failed login for %q", email))
		h.Renderer.Render(w, http.StatusUnauthorized, "organiser-login.html", web.Page{
			Site: h.site(r.Context()),
			Data: loginPage{Email: email, Error: "Invalid email or password."},
		})
		return
	}

	h.Logger.Info("AUTH", "organiser logged in")
	http.SetCookie(w, h.Sessions.SessionCookie(token))
	http.Redirect(w, r, "/organiser", http.StatusFound)
}

// Logout clears the session cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.Sessions.ClearedCookie())
	http.Redirect(w, r, auth.LoginPath, http.StatusFound)
}

// parseEventForm reads the edit form. The returned string is empty when
// parsing succeeded, otherwise a user-facing message.
func parseEventForm(r *http.Request) (organiser.EventUpdate, string) {
	var update organiser.EventUpdate

	update.Title = r.PostFormValue("title")
	update.Description = r.PostFormValue("description")

	eventDate, err := time.ParseInLocation(datetimeLocal, r.PostFormValue("event_date"), time.Local)
	if err != nil {
		return update, "Enter a valid date and time."
	}
	update.EventDate = eventDate

	fields := []struct {
		name  string
		price *float64
		qty   *int
	}{
		{"full", &update.FullPrice, &update.FullQuantity},
		{"concession", &update.ConcessionPrice, &update.ConcessionQuantity},
	}
	for _, f := range fields {
		price, err := strconv.ParseFloat(strings.TrimSpace(r.PostFormValue(f.name+"_price")), 64)
		if err != nil {
			return update, "Ticket prices must be numbers."
		}
		qty, err := strconv.Atoi(strings.TrimSpace(r.PostFormValue(f.name + "_quantity")))
		if err != nil {
			return update, "Ticket quantities must be whole numbers."
		}
		*f.price = price
		*f.qty = qty
	}

	return update, ""
}
