package handlers

import (
	"log"
	"net/http"
	"strings"

	"ticketlive/internal/backend"
	"ticketlive/internal/middleware"
	"ticketlive/internal/models"
	"ticketlive/internal/render"
	"ticketlive/internal/session"
)

// AuthHandler bridges the login, registration, and password-reset forms
// to the backend, which owns all credentials.
type AuthHandler struct {
	base
	client *backend.Client
}

// NewAuthHandler creates the auth handler.
func NewAuthHandler(store *session.Store, renderer *render.Renderer, client *backend.Client) *AuthHandler {
	return &AuthHandler{
		base:   base{store: store, renderer: renderer},
		client: client,
	}
}

// LoginPage renders the sign-in form.
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.store.Get(r)

	if middleware.GetUserFromContext(r.Context()) != nil {
		redirect(w, r, "/")
		return
	}

	data := h.page(w, r, sess, "Sign in")
	data.Data = map[string]interface{}{"Redirect": safeReturnPath(r.URL.Query().Get("redirect"))}
	h.renderer.HTML(w, http.StatusOK, "login.html", data)
}

// Login authenticates against the backend and caches the user and its
// session token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.store.Get(r)

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	renderError := func(message string) {
		data := h.page(w, r, sess, "Sign in")
		data.Error = message
		data.FormData["email"] = email
		data.Data = map[string]interface{}{"Redirect": safeReturnPath(r.FormValue("redirect"))}
		h.renderer.HTML(w, http.StatusUnprocessableEntity, "login.html", data)
	}

	if email == "" || password == "" {
		renderError("Email and password are required.")
		return
	}

	result, err := h.client.SignIn(r.Context(), email, password)
	if err != nil {
		log.Printf("sign-in failed for %s: %v", email, err)
		renderError("Invalid email or password.")
		return
	}
	if result.Token == "" {
		renderError("Sign-in did not return a session. Please try again.")
		return
	}
	if result.User.Banned {
		renderError("This account has been suspended.")
		return
	}

	session.SaveUser(sess, result.User)
	session.SaveBackendToken(sess, result.Token)
	flash(sess, "Welcome back, "+result.User.Name+"!")
	saveSession(sess, r, w)

	redirect(w, r, safeReturnPath(r.FormValue("redirect")))
}

// RegisterPage renders the signup form.
func (h *AuthHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.store.Get(r)

	if middleware.GetUserFromContext(r.Context()) != nil {
		redirect(w, r, "/")
		return
	}

	data := h.page(w, r, sess, "Register")
	h.renderer.HTML(w, http.StatusOK, "register.html", data)
}

// Register creates an account through the backend and signs the new
// user in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.store.Get(r)

	req := models.RegisterRequest{
		Name:     strings.TrimSpace(r.FormValue("name")),
		Email:    strings.TrimSpace(r.FormValue("email")),
		Password: r.FormValue("password"),
	}

	renderError := func(field, message string) {
		data := h.page(w, r, sess, "Register")
		data.FormData["name"] = req.Name
		data.FormData["email"] = req.Email
		data.Errors[field] = message
		h.renderer.HTML(w, http.StatusUnprocessableEntity, "register.html", data)
	}

	if req.Password != r.FormValue("confirm_password") {
		renderError("confirm_password", "Passwords do not match.")
		return
	}
	if err := req.Validate(); err != nil {
		renderError("email", err.Error())
		return
	}

	if _, err := h.client.SignUp(r.Context(), &req); err != nil {
		log.Printf("signup failed for %s: %v", req.Email, err)
		renderError("email", "We couldn't create your account. The email may already be in use.")
		return
	}

	result, err := h.client.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		flash(sess, "Account created. Please sign in.")
		saveSession(sess, r, w)
		redirect(w, r, "/login")
		return
	}

	session.SaveUser(sess, result.User)
	session.SaveBackendToken(sess, result.Token)
	flash(sess, "Welcome to TicketLive, "+result.User.Name+"!")
	saveSession(sess, r, w)
	redirect(w, r, "/")
}

// Logout ends the backend session and wipes the visitor state: cart,
// coupons, and cached profile all go together. Order history stays.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.store.Get(r)

	if token := session.BackendToken(sess); token != "" {
		if err := h.client.SignOut(r.Context(), token); err != nil {
			log.Printf("backend sign-out failed: %v", err)
		}
	}

	session.ClearVisitorState(sess)
	saveSession(sess, r, w)
	redirect(w, r, "/")
}

// ForgotPasswordPage renders the reset request form.
func (h *AuthHandler) ForgotPasswordPage(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.store.Get(r)
	data := h.page(w, r, sess, "Reset password")
	data.Data = map[string]interface{}{"Sent": false}
	h.renderer.HTML(w, http.StatusOK, "forgot_password.html", data)
}

// ForgotPassword asks the backend to send a reset link. The response is
// the same whether or not the address exists.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.store.Get(r)

	email := strings.TrimSpace(r.FormValue("email"))
	if email != "" {
		if err := h.client.RequestPasswordReset(r.Context(), email); err != nil {
			log.Printf("password reset request failed: %v", err)
		}
	}

	data := h.page(w, r, sess, "Reset password")
	data.Data = map[string]interface{}{"Sent": true}
	h.renderer.HTML(w, http.StatusOK, "forgot_password.html", data)
}

// ResetPasswordPage renders the new-password form for a reset token.
func (h *AuthHandler) ResetPasswordPage(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.store.Get(r)

	token := r.URL.Query().Get("token")
	if token == "" {
		redirect(w, r, "/forgot-password")
		return
	}

	data := h.page(w, r, sess, "Choose a new password")
	data.Data = map[string]interface{}{"Token": token}
	h.renderer.HTML(w, http.StatusOK, "reset_password.html", data)
}

// ResetPassword completes the reset through the backend.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.store.Get(r)

	token := r.FormValue("token")
	password := r.FormValue("password")

	renderError := func(field, message string) {
		data := h.page(w, r, sess, "Choose a new password")
		data.Errors[field] = message
		data.Data = map[string]interface{}{"Token": token}
		h.renderer.HTML(w, http.StatusUnprocessableEntity, "reset_password.html", data)
	}

	if len(password) < 8 {
		renderError("password", "Password must be at least 8 characters.")
		return
	}
	if password != r.FormValue("confirm_password") {
		renderError("confirm_password", "Passwords do not match.")
		return
	}

	if err := h.client.ResetPassword(r.Context(), token, password); err != nil {
		log.Printf("password reset failed: %v", err)
		renderError("password", "The reset link is invalid or has expired.")
		return
	}

	flash(sess, "Password updated. Please sign in.")
	saveSession(sess, r, w)
	redirect(w, r, "/login")
}
