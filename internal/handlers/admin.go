package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ticketlive/internal/backend"
	"ticketlive/internal/middleware"
	"ticketlive/internal/models"
	"ticketlive/internal/render"
	"ticketlive/internal/services"
	"ticketlive/internal/session"
)

// AdminHandler serves the back office: event, category, coupon, and
// user management, plus the newsletter composer.
type AdminHandler struct {
	base
	client      *backend.Client
	subscribers *services.SubscriberStore
	mail        *services.MailService
	assets      *services.AssetService
}

// NewAdminHandler creates the back-office handler.
func NewAdminHandler(store *session.Store, renderer *render.Renderer, client *backend.Client, subscribers *services.SubscriberStore, mail *services.MailService, assets *services.AssetService) *AdminHandler {
	return &AdminHandler{
		base:        base{store: store, renderer: renderer},
		client:      client,
		subscribers: subscribers,
		mail:        mail,
		assets:      assets,
	}
}

// Dashboard renders the back-office landing page with headline counts.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.store.Get(r)
	token := middleware.GetTokenFromContext(r.Context())

	events, _ := h.client.ListEvents(r.Context(), backend.EventFilter{})
	users, _ := h.client.ListUsers(r.Context(), token)
	coupons, _ := h.client.ListCoupons(r.Context(), token)
	subs, _ := h.subscribers.List()

	data := h.page(w, r, sess, "Back office")
	data.Data = map[string]interface{}{
		"EventCount":      len(events),
		"UserCount":       len(users),
		"CouponCount":     len(coupons),
		"SubscriberCount": len(subs),
	}
	h.renderer.HTML(w, http.StatusOK, "admin_dashboard.html", data)
}

// Events renders the event management list.
func (h *AdminHandler) Events(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.store.Get(r)

	events, err := h.client.ListEvents(r.Context(), backend.EventFilter{})
	if err != nil {
		log.Printf("failed to load events: %v", err)
	}

	data := h.page(w, r, sess, "Manage events")
	data.Data = map[string]interface{}{"Events": events}
	h.renderer.HTML(w, http.StatusOK, "admin_events.html", data)
}

// NewEvent renders the empty event form.
func (h *AdminHandler) NewEvent(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.store.Get(r)

	categories, _ := h.client.ListCategories(r.Context())

	data := h.page(w, r, sess, "New event")
	data.Data = map[string]interface{}{
		"Categories": categories,
		"Action":     "/admin/events",
	}
	h.renderer.HTML(w, http.StatusOK, "admin_event_form.html", data)
}

// EditEvent renders the event form prefilled.
func (h *AdminHandler) EditEvent(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.store.Get(r)

	id, err := urlParamInt(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}

	event, err := h.client.GetEvent(r.Context(), id)
	if err != nil {
		flashError(sess, "Event not found.")
		saveSession(sess, r, w)
		redirect(w, r, "/admin/events")
		return
	}

	categories, _ := h.client.ListCategories(r.Context())

	data := h.page(w, r, sess, "Edit event")
	data.Data = map[string]interface{}{
		"Event":      event,
		"Categories": categories,
		"Action":     fmt.Sprintf("/admin/events/%d", event.ID),
		"DateValue":  event.Date.Format("2006-01-02T15:04"),
	}
	h.renderer.HTML(w, http.StatusOK, "admin_event_form.html", data)
}

// CreateEvent creates an event from the form.
func (h *AdminHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.store.Get(r)
	token := middleware.GetTokenFromContext(r.Context())

	req, err := eventRequestFromForm(r)
	if err == nil {
		err = req.Validate()
	}
	if err != nil {
		flashError(sess, err.Error())
		saveSession(sess, r, w)
		redirect(w, r, "/admin/events/new")
		return
	}

	if err := h.applyEventImage(r, token, req); err != nil {
		flashError(sess, "We couldn't upload the image.")
		saveSession(sess, r, w)
		redirect(w, r, "/admin/events/new")
		return
	}

	if _, err := h.client.CreateEvent(r.Context(), token, req); err != nil {
		log.Printf("failed to create event: %v", err)
		flashError(sess, "We couldn't create the event.")
		saveSession(sess, r, w)
		redirect(w, r, "/admin/events/new")
		return
	}

	flash(sess, "Event created.")
	saveSession(sess, r, w)
	redirect(w, r, "/admin/events")
}

// UpdateEvent applies form changes to an event.
func (h *AdminHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.store.Get(r)
	token := middleware.GetTokenFromContext(r.Context())

	id, err := urlParamInt(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}

	req, err := eventRequestFromForm(r)
	if err == nil {
		err = req.Validate()
	}
	if err != nil {
		flashError(sess, err.Error())
		saveSession(sess, r, w)
		redirect(w, r, fmt.Sprintf("/admin/events/%d/edit", id))
		return
	}

	if err := h.applyEventImage(r, token, req); err != nil {
		flashError(sess, "We couldn't upload the image.")
		saveSession(sess, r, w)
		redirect(w, r, fmt.Sprintf("/admin/events/%d/edit", id))
		return
	}

	update := models.EventUpdateRequest(*req)
	if _, err := h.client.UpdateEvent(r.Context(), token, id, &update); err != nil {
		log.Printf("failed to update event %d: %v", id, err)
		flashError(sess, "We couldn't save the event.")
		saveSession(sess, r, w)
		redirect(w, r, fmt.Sprintf("/admin/events/%d/edit", id))
		return
	}

	flash(sess, "Event updated.")
	saveSession(sess, r, w)
	redirect(w, r, "/admin/events")
}

// DeleteEvent removes an event.
func (h *AdminHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.store.Get(r)
	token := middleware.GetTokenFromContext(r.Context())

	id, err := urlParamInt(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if err := h.client.DeleteEvent(r.Context(), token, id); err != nil {
		log.Printf("failed to delete event %d: %v", id, err)
		flashError(sess, "We couldn't delete the event.")
	} else {
		flash(sess, "Event deleted.")
	}
	saveSession(sess, r, w)
	redirect(w, r, "/admin/events")
}

// applyEventImage forwards an attached image file to the backend and
// points the request at the hosted copy. A missing file is not an error
// since the URL field covers externally hosted images.
func (h *AdminHandler) applyEventImage(r *http.Request, token string, req *models.EventCreateRequest) error {
	file, header, err := r.FormFile("image")
	if err != nil {
		return nil
	}
	defer file.Close()

	upload, err := h.client.UploadFile(r.Context(), token, header.Filename, file)
	if err != nil {
		log.Printf("failed to upload event image %s: %v", header.Filename, err)
		return err
	}
	req.ImageURL = upload.URL
	return nil
}

func eventRequestFromForm(r *http.Request) (*models.EventCreateRequest, error) {
	price, err := strconv.Atoi(r.FormValue("price"))
	if err != nil {
		return nil, fmt.Errorf("price must be a number")
	}
	capacity, err := strconv.Atoi(r.FormValue("capacity"))
	if err != nil {
		return nil, fmt.Errorf("capacity must be a number")
	}
	date, err := time.ParseInLocation("2006-01-02T15:04", r.FormValue("date"), time.Local)
	if err != nil {
		return nil, fmt.Errorf("date is invalid")
	}
	categoryID, _ := strconv.Atoi(r.FormValue("category_id"))

	return &models.EventCreateRequest{
		Title:       strings.TrimSpace(r.FormValue("title")),
		Description: strings.TrimSpace(r.FormValue("description")),
		ImageURL:    strings.TrimSpace(r.FormValue("image_url")),
		Price:       price,
		Date:        date,
		Location:    strings.TrimSpace(r.FormValue("location")),
		Capacity:    capacity,
		CategoryID:  categoryID,
		Featured:    r.FormValue("featured") == "true",
	}, nil
}

// Categories renders the category management page.
func (h *AdminHandler) Categories(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.store.Get(r)

	categories, err := h.client.ListCategories(r.Context())
	if err != nil {
		log.Printf("failed to load categories: %v", err)
	}

	data := h.page(w, r, sess, "Manage categories")
	data.Data = map[string]interface{}{"Categories": categories}
	h.renderer.HTML(w, http.StatusOK, "admin_categories.html", data)
}

// CreateCategory adds a category, generating the slug when omitted.
func (h *AdminHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.store.Get(r)
	token := middleware.GetTokenFromContext(r.Context())

	req := &models.CategoryCreateRequest{
		Name: strings.TrimSpace(r.FormValue("name")),
		Slug: strings.TrimSpace(r.FormValue("slug")),
	}
	if req.Slug == "" {
		req.Slug = models.GenerateSlug(req.Name)
	}

	if err := req.Validate(); err != nil {
		flashError(sess, err.Error())
		saveSession(sess, r, w)
		redirect(w, r, "/admin/categories")
		return
	}

	if _, err := h.client.CreateCategory(r.Context(), token, req); err != nil {
		log.Printf("failed to create category: %v", err)
		flashError(sess, "We couldn't create the category.")
	} else {
		flash(sess, "Category created.")
	}
	saveSession(sess, r, w)
	redirect(w, r, "/admin/categories")
}

// RenameCategory updates a category's name, regenerating the slug so
// the /events filter links keep working.
func (h *AdminHandler) RenameCategory(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.store.Get(r)
	token := middleware.GetTokenFromContext(r.Context())

	id, err := urlParamInt(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}

	req := &models.CategoryUpdateRequest{Name: strings.TrimSpace(r.FormValue("name"))}
	req.Slug = models.GenerateSlug(req.Name)

	if err := req.Validate(); err != nil {
		flashError(sess, err.Error())
		saveSession(sess, r, w)
		redirect(w, r, "/admin/categories")
		return
	}

	if _, err := h.client.UpdateCategory(r.Context(), token, id, req); err != nil {
		log.Printf("failed to rename category %d: %v", id, err)
		flashError(sess, "We couldn't rename the category.")
	} else {
		flash(sess, "Category renamed.")
	}
	saveSession(sess, r, w)
	redirect(w, r, "/admin/categories")
}

// DeleteCategory removes a category.
func (h *AdminHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.store.Get(r)
	token := middleware.GetTokenFromContext(r.Context())

	id, err := urlParamInt(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if err := h.client.DeleteCategory(r.Context(), token, id); err != nil {
		log.Printf("failed to delete category %d: %v", id, err)
		flashError(sess, "We couldn't delete the category. It may still have events.")
	} else {
		flash(sess, "Category deleted.")
	}
	saveSession(sess, r, w)
	redirect(w, r, "/admin/categories")
}

// Coupons renders the coupon management page.
func (h *AdminHandler) Coupons(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.store.Get(r)
	token := middleware.GetTokenFromContext(r.Context())

	coupons, err := h.client.ListCoupons(r.Context(), token)
	if err != nil {
		log.Printf("failed to load coupons: %v", err)
	}

	data := h.page(w, r, sess, "Manage coupons")
	data.Data = map[string]interface{}{"Coupons": coupons}
	h.renderer.HTML(w, http.StatusOK, "admin_coupons.html", data)
}

// CreateCoupon adds a coupon from the form.
func (h *AdminHandler) CreateCoupon(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.store.Get(r)
	token := middleware.GetTokenFromContext(r.Context())

	value, _ := strconv.Atoi(r.FormValue("value"))
	maxUses, _ := strconv.Atoi(r.FormValue("max_uses"))

	req := &models.CouponCreateRequest{
		Code:    strings.ToUpper(strings.TrimSpace(r.FormValue("code"))),
		Type:    models.CouponType(r.FormValue("type")),
		Value:   value,
		MaxUses: maxUses,
	}
	if raw := r.FormValue("expires_at"); raw != "" {
		if expires, err := time.ParseInLocation("2006-01-02", raw, time.Local); err == nil {
			end := expires.Add(24*time.Hour - time.Second)
			req.ExpiresAt = &end
		}
	}

	if err := req.Validate(); err != nil {
		flashError(sess, err.Error())
		saveSession(sess, r, w)
		redirect(w, r, "/admin/coupons")
		return
	}

	if _, err := h.client.CreateCoupon(r.Context(), token, req); err != nil {
		log.Printf("failed to create coupon: %v", err)
		flashError(sess, "We couldn't create the coupon.")
	} else {
		flash(sess, "Coupon created.")
	}
	saveSession(sess, r, w)
	redirect(w, r, "/admin/coupons")
}

// ToggleCoupon flips a coupon's active flag.
func (h *AdminHandler) ToggleCoupon(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.store.Get(r)
	token := middleware.GetTokenFromContext(r.Context())

	id, err := urlParamInt(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}

	coupon, err := h.client.GetCoupon(r.Context(), token, id)
	if err != nil {
		flashError(sess, "Coupon not found.")
		saveSession(sess, r, w)
		redirect(w, r, "/admin/coupons")
		return
	}

	update := &models.CouponUpdateRequest{
		Type:    coupon.Type,
		Value:   coupon.Value,
		Active:  !coupon.Active,
		MaxUses: coupon.MaxUses,
	}
	if _, err := h.client.UpdateCoupon(r.Context(), token, id, update); err != nil {
		log.Printf("failed to toggle coupon %d: %v", id, err)
		flashError(sess, "We couldn't update the coupon.")
	}
	saveSession(sess, r, w)
	redirect(w, r, "/admin/coupons")
}

// DeleteCoupon removes a coupon.
func (h *AdminHandler) DeleteCoupon(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.store.Get(r)
	token := middleware.GetTokenFromContext(r.Context())

	id, err := urlParamInt(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if err := h.client.DeleteCoupon(r.Context(), token, id); err != nil {
		log.Printf("failed to delete coupon %d: %v", id, err)
		flashError(sess, "We couldn't delete the coupon.")
	} else {
		flash(sess, "Coupon deleted.")
	}
	saveSession(sess, r, w)
	redirect(w, r, "/admin/coupons")
}

// Users renders the user management page.
func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.store.Get(r)
	token := middleware.GetTokenFromContext(r.Context())

	users, err := h.client.ListUsers(r.Context(), token)
	if err != nil {
		log.Printf("failed to load users: %v", err)
	}

	data := h.page(w, r, sess, "Manage users")
	data.Data = map[string]interface{}{"Users": users}
	h.renderer.HTML(w, http.StatusOK, "admin_users.html", data)
}

// BanUser blocks an account.
func (h *AdminHandler) BanUser(w http.ResponseWriter, r *http.Request) {
	h.setBan(w, r, true)
}

// UnbanUser restores a blocked account.
func (h *AdminHandler) UnbanUser(w http.ResponseWriter, r *http.Request) {
	h.setBan(w, r, false)
}

func (h *AdminHandler) setBan(w http.ResponseWriter, r *http.Request, banned bool) {
	sess, _ := h.store.Get(r)
	token := middleware.GetTokenFromContext(r.Context())

	id, err := urlParamInt(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}

	user, err := h.client.GetUser(r.Context(), token, id)
	if err != nil {
		flashError(sess, "User not found.")
		saveSession(sess, r, w)
		redirect(w, r, "/admin/users")
		return
	}

	if banned {
		err = h.client.BanUser(r.Context(), token, id)
	} else {
		err = h.client.UnbanUser(r.Context(), token, id)
	}
	if err != nil {
		log.Printf("failed to update ban for user %d: %v", id, err)
		flashError(sess, "We couldn't update the user.")
	} else if banned {
		flash(sess, fmt.Sprintf("%s has been banned.", user.Name))
	} else {
		flash(sess, fmt.Sprintf("%s has been unbanned.", user.Name))
	}
	saveSession(sess, r, w)
	redirect(w, r, "/admin/users")
}

// Newsletter renders the composer.
func (h *AdminHandler) Newsletter(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.store.Get(r)

	subs, err := h.subscribers.List()
	if err != nil {
		log.Printf("failed to load subscribers: %v", err)
	}

	data := h.page(w, r, sess, "Newsletter")
	data.Data = map[string]interface{}{"SubscriberCount": len(subs)}
	h.renderer.HTML(w, http.StatusOK, "admin_newsletter.html", data)
}

// SendNewsletter delivers the composed message to every subscriber. An
// uploaded banner is resized, stored, and prepended to the body.
func (h *AdminHandler) SendNewsletter(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.store.Get(r)

	if err := r.ParseMultipartForm(20 << 20); err != nil {
		flashError(sess, "The upload is too large.")
		saveSession(sess, r, w)
		redirect(w, r, "/admin/newsletter")
		return
	}

	subject := strings.TrimSpace(r.FormValue("subject"))
	body := strings.TrimSpace(r.FormValue("body"))
	if subject == "" || body == "" {
		flashError(sess, "Subject and body are required.")
		saveSession(sess, r, w)
		redirect(w, r, "/admin/newsletter")
		return
	}

	bannerKey := ""
	if file, header, err := r.FormFile("banner"); err == nil {
		defer file.Close()
		asset, err := h.assets.UploadBanner(r.Context(), file, header.Filename)
		if err != nil {
			log.Printf("failed to store newsletter banner: %v", err)
			flashError(sess, "We couldn't process the banner image.")
			saveSession(sess, r, w)
			redirect(w, r, "/admin/newsletter")
			return
		}
		bannerKey = asset.Key
		body = fmt.Sprintf(`<img src="%s" alt="" style="max-width:100%%">`, asset.URL) + body
	}

	subs, err := h.subscribers.List()
	if err != nil {
		log.Printf("failed to load subscribers: %v", err)
		flashError(sess, "We couldn't load the subscriber list.")
		saveSession(sess, r, w)
		redirect(w, r, "/admin/newsletter")
		return
	}
	if len(subs) == 0 {
		// Nothing referenced the banner yet, drop it.
		if bannerKey != "" {
			if err := h.assets.Delete(r.Context(), bannerKey); err != nil {
				log.Printf("failed to remove unused banner %s: %v", bannerKey, err)
			}
		}
		flashError(sess, "There are no subscribers yet.")
		saveSession(sess, r, w)
		redirect(w, r, "/admin/newsletter")
		return
	}

	sent := 0
	for _, sub := range subs {
		if err := h.mail.SendNewsletter(sub.Email, subject, body); err != nil {
			log.Printf("newsletter send to %s failed: %v", sub.Email, err)
			flashError(sess, fmt.Sprintf("Sent %d of %d, then delivery to %s failed.", sent, len(subs), sub.Email))
			saveSession(sess, r, w)
			redirect(w, r, "/admin/newsletter")
			return
		}
		sent++
	}

	flash(sess, fmt.Sprintf("Newsletter sent to %d subscribers.", sent))
	saveSession(sess, r, w)
	redirect(w, r, "/admin/newsletter")
}
