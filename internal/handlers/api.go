package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"ticketlive/internal/middleware"
	"ticketlive/internal/models"
	"ticketlive/internal/render"
	"ticketlive/internal/services"
	"ticketlive/internal/session"
)

// APIHandler serves the JSON routes backing the page widgets: newsletter
// signup, contact form, testimonials, the chat assistant, and geocoding.
type APIHandler struct {
	base
	subscribers *services.SubscriberStore
	comments    *services.CommentStore
	mail        *services.MailService
	chat        *services.ChatService
	geocoder    *services.GeocodeService
}

// NewAPIHandler creates the API handler.
func NewAPIHandler(store *session.Store, renderer *render.Renderer, subscribers *services.SubscriberStore, comments *services.CommentStore, mail *services.MailService, chat *services.ChatService, geocoder *services.GeocodeService) *APIHandler {
	return &APIHandler{
		base:        base{store: store, renderer: renderer},
		subscribers: subscribers,
		comments:    comments,
		mail:        mail,
		chat:        chat,
		geocoder:    geocoder,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// formOrJSONValue reads a field from either a form post or a JSON body.
func formOrJSONValue(r *http.Request, body map[string]string, field string) string {
	if body != nil {
		return body[field]
	}
	return r.FormValue(field)
}

// decodeJSONBody decodes a JSON request body when the content type says
// so; form posts return nil.
func decodeJSONBody(r *http.Request) map[string]string {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		return nil
	}
	var body map[string]string
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return map[string]string{}
	}
	return body
}

// Subscribe adds a newsletter subscriber and sends the welcome mail.
func (h *APIHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	body := decodeJSONBody(r)
	email := strings.TrimSpace(formOrJSONValue(r, body, "email"))

	if err := h.subscribers.Add(email); err != nil {
		if errors.Is(err, services.ErrAlreadySubscribed) {
			writeJSONError(w, http.StatusConflict, "You are already subscribed.")
			return
		}
		writeJSONError(w, http.StatusBadRequest, "Enter a valid email address.")
		return
	}

	if err := h.mail.SendSubscribeWelcome(email); err != nil {
		log.Printf("welcome mail to %s failed: %v", email, err)
	}

	if body == nil && !middleware.IsHTMXRequest(r) {
		sess, _ := h.store.Get(r)
		flash(sess, "You're on the list. Welcome!")
		saveSession(sess, r, w)
		http.Redirect(w, r, backTo(r, "/"), http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Subscribed."})
}

// Contact forwards a contact-form submission to the support inbox.
func (h *APIHandler) Contact(w http.ResponseWriter, r *http.Request) {
	body := decodeJSONBody(r)
	name := strings.TrimSpace(formOrJSONValue(r, body, "name"))
	email := strings.TrimSpace(formOrJSONValue(r, body, "email"))
	message := strings.TrimSpace(formOrJSONValue(r, body, "message"))

	if name == "" || message == "" {
		writeJSONError(w, http.StatusBadRequest, "Name and message are required.")
		return
	}
	if !models.ValidateEmail(email) {
		writeJSONError(w, http.StatusBadRequest, "Enter a valid email address.")
		return
	}

	if err := h.mail.SendContactMessage(name, email, message); err != nil {
		log.Printf("contact mail from %s failed: %v", email, err)
		writeJSONError(w, http.StatusBadGateway, "We couldn't send your message. Please try again.")
		return
	}

	// Form posts from the contact page go back to it.
	if body == nil && !middleware.IsHTMXRequest(r) {
		http.Redirect(w, r, "/contact?sent=1", http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Message sent."})
}

// ListComments returns the stored testimonials, newest first.
func (h *APIHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.comments.List()
	if err != nil {
		log.Printf("failed to load testimonials: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "We couldn't load the reviews.")
		return
	}
	if comments == nil {
		comments = []models.Comment{}
	}
	writeJSON(w, http.StatusOK, comments)
}

// CreateComment stores a new testimonial.
func (h *APIHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	body := decodeJSONBody(r)
	rating, _ := strconv.Atoi(formOrJSONValue(r, body, "rating"))

	comment := models.Comment{
		Name:    strings.TrimSpace(formOrJSONValue(r, body, "name")),
		Message: strings.TrimSpace(formOrJSONValue(r, body, "message")),
		Rating:  rating,
	}

	saved, err := h.comments.Add(comment)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	if body == nil && !middleware.IsHTMXRequest(r) {
		http.Redirect(w, r, "/contact", http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

// chatRequest is the widget's payload: the running conversation.
type chatRequest struct {
	Messages []services.ChatMessage `json:"messages"`
}

// Chat streams an assistant reply as a text/event-stream: one event per
// token, terminated by a [DONE] event.
func (h *APIHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Messages) == 0 {
		writeJSONError(w, http.StatusBadRequest, "The conversation is empty.")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	stream := &eventStreamWriter{w: w}
	if _, err := h.chat.Stream(r.Context(), req.Messages, stream); err != nil {
		log.Printf("chat stream failed: %v", err)
		return
	}
	fmt.Fprint(w, "data: [DONE]\n\n")
	stream.Flush()
}

// eventStreamWriter frames each written token as a server-sent event.
// Multi-line tokens become one event with a data line per line, per the
// SSE wire format.
type eventStreamWriter struct {
	w http.ResponseWriter
}

func (s *eventStreamWriter) Write(p []byte) (int, error) {
	for _, line := range strings.Split(string(p), "\n") {
		if _, err := fmt.Fprintf(s.w, "data: %s\n", line); err != nil {
			return 0, err
		}
	}
	if _, err := fmt.Fprint(s.w, "\n"); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (s *eventStreamWriter) Flush() {
	if flusher, ok := s.w.(http.Flusher); ok {
		flusher.Flush()
	}
}

// Geocode resolves an address to coordinates for the map widgets.
func (h *APIHandler) Geocode(w http.ResponseWriter, r *http.Request) {
	address := strings.TrimSpace(r.URL.Query().Get("address"))
	if address == "" {
		writeJSONError(w, http.StatusBadRequest, "An address is required.")
		return
	}

	coords, err := h.geocoder.Lookup(r.Context(), address)
	if err != nil {
		writeJSONError(w, http.StatusNotFound, "The address could not be located.")
		return
	}

	writeJSON(w, http.StatusOK, coords)
}
