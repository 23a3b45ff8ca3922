package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"ticketlive/internal/backend"
	"ticketlive/internal/middleware"
	"ticketlive/internal/models"
	"ticketlive/internal/render"
	"ticketlive/internal/session"
)

// passwordChangeCooldown is how long a visitor must wait between
// password changes.
const passwordChangeCooldown = 15 * time.Minute

// ProfileHandler serves the account page: profile edits, photo upload,
// and password changes, all forwarded to the backend.
type ProfileHandler struct {
	base
	client *backend.Client
}

// NewProfileHandler creates the profile handler.
func NewProfileHandler(store *session.Store, renderer *render.Renderer, client *backend.Client) *ProfileHandler {
	return &ProfileHandler{
		base:   base{store: store, renderer: renderer},
		client: client,
	}
}

func (h *ProfileHandler) inCooldown(changedAt time.Time, ok bool) bool {
	return ok && time.Since(changedAt) < passwordChangeCooldown
}

// Show renders the profile page.
func (h *ProfileHandler) Show(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.store.Get(r)

	changedAt, ok := session.PasswordChangeAt(sess)

	data := h.page(w, r, sess, "My profile")
	data.Data = map[string]interface{}{
		"PasswordCooldown": h.inCooldown(changedAt, ok),
	}
	h.renderer.HTML(w, http.StatusOK, "profile.html", data)
}

// Update applies the submitted fields as a merge patch: blank inputs
// leave the stored value untouched.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.store.Get(r)
	user := middleware.GetUserFromContext(r.Context())
	token := middleware.GetTokenFromContext(r.Context())

	update := models.ProfileUpdate{
		Name:     strings.TrimSpace(r.FormValue("name")),
		Phone:    strings.TrimSpace(r.FormValue("phone")),
		Address:  strings.TrimSpace(r.FormValue("address")),
		DNI:      strings.TrimSpace(r.FormValue("dni")),
		Birthday: strings.TrimSpace(r.FormValue("birthday")),
	}

	if err := update.Validate(); err != nil {
		flashError(sess, err.Error())
		saveSession(sess, r, w)
		redirect(w, r, "/profile")
		return
	}

	updated, err := h.client.UpdateUser(r.Context(), token, user.ID, update)
	if err != nil {
		log.Printf("profile update failed for user %d: %v", user.ID, err)
		flashError(sess, "We couldn't save your changes. Please try again.")
		saveSession(sess, r, w)
		redirect(w, r, "/profile")
		return
	}

	// The backend may echo a partial user; merge onto the cached copy.
	cached := *user
	cached.Merge(update)
	if updated != nil && updated.ID == cached.ID {
		cached = *updated
	}
	session.SaveUser(sess, &cached)

	flash(sess, "Profile updated.")
	saveSession(sess, r, w)
	redirect(w, r, "/profile")
}

// UploadPhoto forwards a new profile photo to the backend and refreshes
// the cached photo URL.
func (h *ProfileHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.store.Get(r)
	user := middleware.GetUserFromContext(r.Context())
	token := middleware.GetTokenFromContext(r.Context())

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		flashError(sess, "The photo is too large.")
		saveSession(sess, r, w)
		redirect(w, r, "/profile")
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		flashError(sess, "Choose a photo to upload.")
		saveSession(sess, r, w)
		redirect(w, r, "/profile")
		return
	}
	defer file.Close()

	result, err := h.client.UploadProfileImage(r.Context(), token, user.ID, header.Filename, file)
	if err != nil {
		log.Printf("profile photo upload failed for user %d: %v", user.ID, err)
		flashError(sess, "We couldn't upload your photo. Please try again.")
		saveSession(sess, r, w)
		redirect(w, r, "/profile")
		return
	}

	cached := *user
	cached.ProfilePhoto = result.URL
	session.SaveUser(sess, &cached)

	flash(sess, "Photo updated.")
	saveSession(sess, r, w)
	redirect(w, r, "/profile")
}

// ChangePassword forwards a password change, enforcing the cooldown
// between changes.
func (h *ProfileHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.store.Get(r)
	token := middleware.GetTokenFromContext(r.Context())

	if changedAt, ok := session.PasswordChangeAt(sess); h.inCooldown(changedAt, ok) {
		flashError(sess, "You changed your password recently. Try again later.")
		saveSession(sess, r, w)
		redirect(w, r, "/profile")
		return
	}

	current := r.FormValue("current_password")
	updated := r.FormValue("new_password")

	if len(updated) < 8 {
		flashError(sess, "The new password must be at least 8 characters.")
		saveSession(sess, r, w)
		redirect(w, r, "/profile")
		return
	}

	if err := h.client.ChangePassword(r.Context(), token, current, updated); err != nil {
		log.Printf("password change failed: %v", err)
		flashError(sess, "We couldn't change your password. Check your current password.")
		saveSession(sess, r, w)
		redirect(w, r, "/profile")
		return
	}

	session.SavePasswordChangeAt(sess, time.Now())
	flash(sess, "Password changed.")
	saveSession(sess, r, w)
	redirect(w, r, "/profile")
}
