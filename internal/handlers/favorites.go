package handlers

import (
	"net/http"

	"ticketlive/internal/backend"
	"ticketlive/internal/models"
	"ticketlive/internal/render"
	"ticketlive/internal/session"
)

// FavoritesHandler manages the visitor's favorite events, stored as
// snapshots in the session so the list renders without backend calls.
type FavoritesHandler struct {
	base
	client *backend.Client
}

// NewFavoritesHandler creates the favorites handler.
func NewFavoritesHandler(store *session.Store, renderer *render.Renderer, client *backend.Client) *FavoritesHandler {
	return &FavoritesHandler{
		base:   base{store: store, renderer: renderer},
		client: client,
	}
}

// List renders the favorites page.
func (h *FavoritesHandler) List(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.store.Get(r)

	data := h.page(w, r, sess, "Favorites")
	data.Data = map[string]interface{}{"Favorites": session.Favorites(sess)}
	h.renderer.HTML(w, http.StatusOK, "favorites.html", data)
}

// Toggle adds the event to favorites, or removes it when already there.
func (h *FavoritesHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.store.Get(r)

	id, err := urlParamInt(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}

	favorites := session.Favorites(sess)
	for i, fav := range favorites {
		if fav.ID == id {
			favorites = append(favorites[:i], favorites[i+1:]...)
			session.SaveFavorites(sess, favorites)
			saveSession(sess, r, w)
			redirect(w, r, backTo(r, "/favorites"))
			return
		}
	}

	event, err := h.client.GetEvent(r.Context(), id)
	if err != nil {
		flashError(sess, "That event is no longer available.")
		saveSession(sess, r, w)
		redirect(w, r, "/events")
		return
	}

	favorite := models.FavoriteEvent{
		ID:          event.ID,
		Title:       event.Title,
		Description: event.Description,
		ImageURL:    event.ImageURL,
		Price:       event.Price,
		Date:        event.Date.Format("Jan 2, 2006 3:04 PM"),
		Location:    event.Location,
	}
	if event.Category != nil {
		favorite.Category = event.Category.Name
	}

	session.SaveFavorites(sess, append(favorites, favorite))
	saveSession(sess, r, w)
	redirect(w, r, backTo(r, "/favorites"))
}

// backTo returns the referring page when it is a local path.
func backTo(r *http.Request, fallback string) string {
	if ref := r.Header.Get("Referer"); ref != "" {
		if parsed, err := r.URL.Parse(ref); err == nil && parsed.Host == r.Host {
			return parsed.Path
		}
	}
	return fallback
}
