package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMailService(t *testing.T, handler http.HandlerFunc) *MailService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	service := NewMailService(ResendConfig{
		APIKey:    "test-key",
		FromEmail: "noreply@ticketlive.app",
		FromName:  "TicketLive",
	})
	service.baseURL = server.URL
	return service
}

func TestSendContactMessage(t *testing.T) {
	var got resendEmailRequest
	service := newTestMailService(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/emails", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	})

	err := service.SendContactMessage("Ana", "ana@example.com", "Hello <there>")
	require.NoError(t, err)

	assert.Equal(t, "TicketLive <noreply@ticketlive.app>", got.From)
	assert.Equal(t, []string{"noreply@ticketlive.app"}, got.To)
	assert.Equal(t, "ana@example.com", got.ReplyTo)
	// HTML body escapes visitor input.
	assert.Contains(t, got.HTML, "Hello &lt;there&gt;")
	assert.NotContains(t, got.HTML, "Hello <there>")
}

func TestSendNewsletter(t *testing.T) {
	var got resendEmailRequest
	service := newTestMailService(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	})

	err := service.SendNewsletter("sub@example.com", "March events", "<h1>New shows</h1>")
	require.NoError(t, err)

	assert.Equal(t, []string{"sub@example.com"}, got.To)
	assert.Equal(t, "March events", got.Subject)
	assert.Equal(t, "<h1>New shows</h1>", got.HTML)
}

func TestSendEmailSurfacesAPIError(t *testing.T) {
	service := newTestMailService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(resendErrorResponse{Message: "invalid from address"})
	})

	err := service.SendNewsletter("sub@example.com", "Subject", "Body")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid from address")
}
