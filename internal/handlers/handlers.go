// Package handlers contains the HTTP handlers for every page and API
// route. Handlers read and mutate the visitor's cookie session, call the
// backend for durable state, and render the embedded templates.
package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"ticketlive/internal/middleware"
	"ticketlive/internal/render"
	"ticketlive/internal/session"
)

// base carries the dependencies every handler group shares.
type base struct {
	store    *session.Store
	renderer *render.Renderer
}

// page builds the template envelope for the current request: cached
// user, CSRF token, cart badge count, and any queued flash messages.
// Reading flashes consumes them, so the session is saved here.
func (b *base) page(w http.ResponseWriter, r *http.Request, sess *sessions.Session, title string) *render.PageData {
	data := &render.PageData{
		Title:     title,
		User:      middleware.GetUserFromContext(r.Context()),
		CSRFToken: middleware.CSRFTokenFromContext(r.Context()),
		CartCount: session.Cart(sess).ItemCount(),
		FormData:  map[string]string{},
		Errors:    map[string]string{},
	}

	if flashes := sess.Flashes(); len(flashes) > 0 {
		data.Flash, _ = flashes[0].(string)
	}
	if flashes := sess.Flashes("error"); len(flashes) > 0 {
		data.Error, _ = flashes[0].(string)
	}
	saveSession(sess, r, w)

	return data
}

// saveSession writes the session cookie back to the client. Cookie
// sessions fail when the encoded value outgrows the 4KB securecookie
// limit; dropping that error would lose the visitor's state silently.
func saveSession(sess *sessions.Session, r *http.Request, w http.ResponseWriter) {
	if err := sess.Save(r, w); err != nil {
		log.Printf("failed to save session: %v", err)
	}
}

// flash queues a notice shown on the next rendered page.
func flash(sess *sessions.Session, message string) {
	sess.AddFlash(message)
}

// flashError queues an error banner shown on the next rendered page.
func flashError(sess *sessions.Session, message string) {
	sess.AddFlash(message, "error")
}

// redirect sends the visitor to target, as an HX-Redirect header for
// HTMX requests and a 303 otherwise.
func redirect(w http.ResponseWriter, r *http.Request, target string) {
	if middleware.IsHTMXRequest(r) {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// urlParamInt parses a numeric chi route parameter.
func urlParamInt(r *http.Request, name string) (int, error) {
	return strconv.Atoi(chi.URLParam(r, name))
}

// safeReturnPath keeps post-login redirects on this site.
func safeReturnPath(path string) string {
	if path == "" || path[0] != '/' || (len(path) > 1 && path[1] == '/') {
		return "/"
	}
	return path
}
