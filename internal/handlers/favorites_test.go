package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFavoriteToggleAddsAndRemoves(t *testing.T) {
	f := newFixture(t)

	rec := f.postForm("/favorites/toggle/1", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	body := f.get("/favorites").Body.String()
	assert.Contains(t, body, "Rock Night")
	assert.Contains(t, body, "$50.00")

	// Toggling again removes it.
	f.postForm("/favorites/toggle/1", nil)
	body = f.get("/favorites").Body.String()
	assert.NotContains(t, body, "Rock Night")
}

func TestFavoriteToggleUnknownEvent(t *testing.T) {
	f := newFixture(t)

	rec := f.postForm("/favorites/toggle/99", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/events", rec.Header().Get("Location"))

	body := f.get("/favorites").Body.String()
	assert.Contains(t, body, "no favorite events")
}

func TestFavoritesAreIndependentPerEvent(t *testing.T) {
	f := newFixture(t)

	f.postForm("/favorites/toggle/1", nil)
	f.postForm("/favorites/toggle/2", nil)
	f.postForm("/favorites/toggle/1", nil)

	body := f.get("/favorites").Body.String()
	assert.NotContains(t, body, "Rock Night")
	assert.Contains(t, body, "Jazz Evening")
}
