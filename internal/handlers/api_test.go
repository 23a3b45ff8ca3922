package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticketlive/internal/models"
	"ticketlive/internal/render"
	"ticketlive/internal/services"
	"ticketlive/internal/session"
)

func TestSubscribe(t *testing.T) {
	f := newFixture(t)

	rec := f.postJSON("/api/subscribe", map[string]string{"email": "new@example.com"})
	assert.Equal(t, http.StatusCreated, rec.Code)

	// Subscribing twice conflicts.
	rec = f.postJSON("/api/subscribe", map[string]string{"email": "new@example.com"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "already subscribed")
}

func TestSubscribeFormPostRedirectsBack(t *testing.T) {
	f := newFixture(t)

	rec := f.postForm("/api/subscribe", url.Values{"email": {"footer@example.com"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	// The flash shows on the next page view.
	assert.Contains(t, f.get("/").Body.String(), "on the list")
}

func TestSubscribeRejectsInvalidEmail(t *testing.T) {
	f := newFixture(t)

	rec := f.postJSON("/api/subscribe", map[string]string{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCommentsRoundTrip(t *testing.T) {
	f := newFixture(t)

	rec := f.postJSON("/api/comments", map[string]string{
		"name":    "Marta",
		"message": "Great show, easy checkout.",
		"rating":  "5",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.get("/api/comments")
	require.Equal(t, http.StatusOK, rec.Code)

	var comments []models.Comment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &comments))
	require.Len(t, comments, 1)
	assert.Equal(t, "Marta", comments[0].Name)
	assert.Equal(t, 5, comments[0].Rating)
	assert.NotEmpty(t, comments[0].ID)
}

func TestCreateCommentRejectsBadRating(t *testing.T) {
	f := newFixture(t)

	rec := f.postJSON("/api/comments", map[string]string{
		"name":    "Marta",
		"message": "Great show.",
		"rating":  "9",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "rating")
}

func TestListCommentsEmptyIsArray(t *testing.T) {
	f := newFixture(t)

	rec := f.get("/api/comments")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestChatStreamsServerSentEvents(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"Hello\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\" there\"}}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	t.Cleanup(upstream.Close)

	renderer, err := render.New()
	require.NoError(t, err)
	store := session.NewStore("test-secret")
	chat := services.NewChatService(services.ChatConfig{APIKey: "k", Model: "test", BaseURL: upstream.URL})
	h := NewAPIHandler(store, renderer, services.NewSubscriberStore(t.TempDir()), services.NewCommentStore(t.TempDir()),
		services.NewMailService(services.ResendConfig{APIKey: "k", FromEmail: "noreply@test"}), chat,
		services.NewGeocodeService(services.GeocoderConfig{BaseURL: upstream.URL}))

	body := `{"messages":[{"role":"user","content":"hi"}]}`
	req := httptest.NewRequest("POST", "/api/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Chat(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	// Each token rides in its own framed event, closed by [DONE].
	assert.Equal(t, "data: Hello\n\ndata:  there\n\ndata: [DONE]\n\n", rec.Body.String())
}

func TestChatRejectsEmptyConversation(t *testing.T) {
	renderer, err := render.New()
	require.NoError(t, err)
	store := session.NewStore("test-secret")
	chat := services.NewChatService(services.ChatConfig{APIKey: "k"})
	h := NewAPIHandler(store, renderer, services.NewSubscriberStore(t.TempDir()), services.NewCommentStore(t.TempDir()),
		services.NewMailService(services.ResendConfig{APIKey: "k", FromEmail: "noreply@test"}), chat,
		services.NewGeocodeService(services.GeocoderConfig{}))

	req := httptest.NewRequest("POST", "/api/chat", strings.NewReader(`{"messages":[]}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Chat(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
