package handlers

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginCachesUser(t *testing.T) {
	f := newFixture(t)

	f.signIn()

	rec := f.get("/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Ana")
	assert.Contains(t, rec.Body.String(), "Log out")
}

func TestLoginRejectsBlankFields(t *testing.T) {
	f := newFixture(t)

	rec := f.postForm("/login", url.Values{"email": {"ana@example.com"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Email and password are required")
}

func TestLogoutClearsCartAndCouponsTogether(t *testing.T) {
	f := newFixture(t)
	f.signIn()

	f.postForm("/cart/add/1", nil)
	f.postForm("/cart/coupon", url.Values{"code": {"SUMMER20"}})
	require.Contains(t, f.cartPage(), "SUMMER20")

	rec := f.postForm("/logout", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, 1, f.backend.signOuts)

	// Cart and coupon state are wiped in the same stroke.
	body := f.cartPage()
	assert.Contains(t, body, "Your cart is empty")
	assert.NotContains(t, body, "SUMMER20")

	// The visitor is anonymous again.
	home := f.get("/")
	assert.Contains(t, home.Body.String(), "Log in")
}

func TestLogoutKeepsOrderHistory(t *testing.T) {
	f := newFixture(t)
	f.signIn()

	f.postForm("/cart/add/1", nil)
	rec := f.postForm("/checkout", url.Values{"payment_method": {"mercadopago"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = f.get("/checkout/success?payment_id=pay-1")
	require.Equal(t, http.StatusOK, rec.Code)

	f.postForm("/logout", nil)

	orders := f.get("/orders")
	require.Equal(t, http.StatusOK, orders.Code)
	assert.Contains(t, orders.Body.String(), "COMPLETED")
	assert.NotContains(t, orders.Body.String(), "You have no orders yet")
}

func TestAdminGuard(t *testing.T) {
	f := newFixture(t)

	t.Run("anonymous redirected to login", func(t *testing.T) {
		rec := f.get("/admin/")
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Contains(t, rec.Header().Get("Location"), "/login")
	})

	t.Run("regular user sent home", func(t *testing.T) {
		f.signIn()
		rec := f.get("/admin/")
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("Location"))
	})

	t.Run("admin passes", func(t *testing.T) {
		f := newFixture(t)
		f.backend.user.IsAdmin = true
		f.signIn()

		rec := f.get("/admin/")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Back office")
	})
}
