package handlers

import (
	"log"
	"net/http"

	"ticketlive/internal/backend"
	"ticketlive/internal/models"
	"ticketlive/internal/render"
	"ticketlive/internal/services"
	"ticketlive/internal/session"
)

// PublicHandler serves the pages every visitor can reach.
type PublicHandler struct {
	base
	client   *backend.Client
	comments *services.CommentStore
	geocoder *services.GeocodeService
}

// NewPublicHandler creates the public page handler.
func NewPublicHandler(store *session.Store, renderer *render.Renderer, client *backend.Client, comments *services.CommentStore, geocoder *services.GeocodeService) *PublicHandler {
	return &PublicHandler{
		base:     base{store: store, renderer: renderer},
		client:   client,
		comments: comments,
		geocoder: geocoder,
	}
}

// Home renders the landing page with featured events and testimonials.
func (h *PublicHandler) Home(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.store.Get(r)

	featured, err := h.client.ListEvents(r.Context(), backend.EventFilter{Featured: true})
	if err != nil {
		log.Printf("failed to load featured events: %v", err)
	}

	testimonials, err := h.comments.List()
	if err != nil {
		log.Printf("failed to load testimonials: %v", err)
	}
	if len(testimonials) > 3 {
		testimonials = testimonials[:3]
	}

	data := h.page(w, r, sess, "TicketLive")
	data.Data = map[string]interface{}{
		"Featured": featured,
		"Comments": testimonials,
	}
	h.renderer.HTML(w, http.StatusOK, "home.html", data)
}

// Events renders the catalog with optional search and category filters.
func (h *PublicHandler) Events(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.store.Get(r)

	search := r.URL.Query().Get("search")
	category := r.URL.Query().Get("category")

	events, err := h.client.ListEvents(r.Context(), backend.EventFilter{
		Search:   search,
		Category: category,
	})
	if err != nil {
		log.Printf("failed to load events: %v", err)
	}

	categories, err := h.client.ListCategories(r.Context())
	if err != nil {
		log.Printf("failed to load categories: %v", err)
	}

	data := h.page(w, r, sess, "Events")
	data.Data = map[string]interface{}{
		"Events":     events,
		"Categories": categories,
		"Search":     search,
		"Category":   category,
	}
	h.renderer.HTML(w, http.StatusOK, "events.html", data)
}

// EventDetail renders one event with its map position when the address
// resolves. A geocoder miss never blocks the page.
func (h *PublicHandler) EventDetail(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.store.Get(r)

	id, err := urlParamInt(r, "id")
	if err != nil {
		h.NotFound(w, r)
		return
	}

	event, err := h.client.GetEvent(r.Context(), id)
	if err != nil {
		h.NotFound(w, r)
		return
	}

	var coords *services.Coordinates
	if event.Location != "" {
		coords, err = h.geocoder.Lookup(r.Context(), event.Location)
		if err != nil {
			log.Printf("failed to geocode %q: %v", event.Location, err)
		}
	}

	isFavorite := false
	for _, fav := range session.Favorites(sess) {
		if fav.ID == event.ID {
			isFavorite = true
			break
		}
	}

	remaining := event.Capacity - event.Sold
	if remaining < 0 {
		remaining = 0
	}

	data := h.page(w, r, sess, event.Title)
	data.Data = map[string]interface{}{
		"Event":       event,
		"Coordinates": coords,
		"IsFavorite":  isFavorite,
		"Remaining":   remaining,
	}
	h.renderer.HTML(w, http.StatusOK, "event_detail.html", data)
}

// Contact renders the contact form and review section.
func (h *PublicHandler) Contact(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.store.Get(r)
	data := h.page(w, r, sess, "Contact")
	data.Data = map[string]interface{}{"Sent": r.URL.Query().Get("sent") == "1"}
	h.renderer.HTML(w, http.StatusOK, "contact.html", data)
}

// NotFound renders the 404 page.
func (h *PublicHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.store.Get(r)
	data := h.page(w, r, sess, "Page not found")
	h.renderer.HTML(w, http.StatusNotFound, "not_found.html", data)
}

// eventCartItem snapshots an event as a cart line.
func eventCartItem(event *models.Event) models.CartItem {
	return models.CartItem{
		EventID:     event.ID,
		Name:        event.Title,
		Price:       event.Price,
		Image:       event.ImageURL,
		Description: event.Description,
		Date:        event.Date.Format("Jan 2, 2006 3:04 PM"),
		Location:    event.Location,
	}
}
