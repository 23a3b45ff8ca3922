package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"ticketlive/internal/backend"
	"ticketlive/internal/config"
	"ticketlive/internal/handlers"
	"ticketlive/internal/middleware"
	"ticketlive/internal/render"
	"ticketlive/internal/services"
	"ticketlive/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	renderer, err := render.New()
	if err != nil {
		log.Fatal("Failed to parse templates:", err)
	}

	sessionStore := session.NewStore(cfg.Session.Secret)

	client := backend.NewClient(backend.Config{
		BaseURL:       cfg.Backend.BaseURL,
		Timeout:       cfg.Backend.Timeout,
		SessionCookie: cfg.Backend.SessionCookie,
	})

	// Asset storage: bucket when configured, local disk otherwise.
	var storage services.StorageService
	if s3Storage, err := services.NewS3StorageService(cfg.Storage); err == nil {
		storage = s3Storage
		log.Println("Using S3-compatible asset storage")
	} else {
		log.Printf("Falling back to local asset storage: %v", err)
		baseURL := fmt.Sprintf("http://%s:%s/uploads", cfg.Server.Host, cfg.Server.Port)
		storage = services.NewFallbackStorageService(filepath.Join(cfg.Data.Dir, "uploads"), baseURL)
	}

	mailService := services.NewMailService(services.ResendConfig{
		APIKey:    cfg.Resend.APIKey,
		FromEmail: cfg.Resend.FromEmail,
		FromName:  cfg.Resend.FromName,
	})
	chatService := services.NewChatService(services.ChatConfig{
		APIKey:  cfg.Chat.APIKey,
		Model:   cfg.Chat.Model,
		BaseURL: cfg.Chat.BaseURL,
	})
	geocodeService := services.NewGeocodeService(services.GeocoderConfig{
		BaseURL: cfg.Geocoder.BaseURL,
		Email:   cfg.Geocoder.Email,
	})
	couponService := services.NewCouponService(client)
	assetService := services.NewAssetService(storage)
	commentStore := services.NewCommentStore(cfg.Data.Dir)
	subscriberStore := services.NewSubscriberStore(cfg.Data.Dir)
	orderStore := services.NewOrderStore(cfg.Data.Dir)

	authMiddleware := middleware.NewAuthMiddleware(client, sessionStore, cfg.Backend.JWTSecret)
	csrfMiddleware := middleware.NewCSRFMiddleware(sessionStore)
	loginLimiter := middleware.NewRateLimiter(5, 15*time.Minute)
	apiLimiter := middleware.NewRateLimiter(10, time.Minute)

	publicHandler := handlers.NewPublicHandler(sessionStore, renderer, client, commentStore, geocodeService)
	cartHandler := handlers.NewCartHandler(sessionStore, renderer, client, couponService)
	checkoutHandler := handlers.NewCheckoutHandler(sessionStore, renderer, client, couponService, orderStore)
	ordersHandler := handlers.NewOrdersHandler(sessionStore, renderer, orderStore)
	favoritesHandler := handlers.NewFavoritesHandler(sessionStore, renderer, client)
	authHandler := handlers.NewAuthHandler(sessionStore, renderer, client)
	profileHandler := handlers.NewProfileHandler(sessionStore, renderer, client)
	adminHandler := handlers.NewAdminHandler(sessionStore, renderer, client, subscriberStore, mailService, assetService)
	apiHandler := handlers.NewAPIHandler(sessionStore, renderer, subscriberStore, commentStore, mailService, chatService, geocodeService)

	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.LoggingMiddleware)
	r.Use(middleware.ErrorHandlingMiddleware)
	r.Use(middleware.SecureHeaders)
	r.Use(csrfMiddleware.EnsureCSRFToken)
	r.Use(authMiddleware.LoadUser)

	// Public pages
	r.Get("/", publicHandler.Home)
	r.Get("/events", publicHandler.Events)
	r.Get("/events/{id}", publicHandler.EventDetail)
	r.Get("/contact", publicHandler.Contact)
	r.Get("/favorites", favoritesHandler.List)

	// Auth
	r.Group(func(r chi.Router) {
		r.Use(csrfMiddleware.CSRFProtection)
		r.Get("/login", authHandler.LoginPage)
		r.With(loginLimiter.Limit).Post("/login", authHandler.Login)
		r.Get("/register", authHandler.RegisterPage)
		r.With(loginLimiter.Limit).Post("/register", authHandler.Register)
		r.Post("/logout", authHandler.Logout)
		r.Get("/forgot-password", authHandler.ForgotPasswordPage)
		r.With(loginLimiter.Limit).Post("/forgot-password", authHandler.ForgotPassword)
		r.Get("/reset-password", authHandler.ResetPasswordPage)
		r.Post("/reset-password", authHandler.ResetPassword)
	})

	// Cart and favorites mutations
	r.Group(func(r chi.Router) {
		r.Use(csrfMiddleware.CSRFProtection)
		r.Get("/cart", cartHandler.View)
		r.Post("/cart/add/{id}", cartHandler.Add)
		r.Post("/cart/increase/{id}", cartHandler.Increase)
		r.Post("/cart/decrease/{id}", cartHandler.Decrease)
		r.Post("/cart/remove/{id}", cartHandler.Remove)
		r.Post("/cart/clear", cartHandler.Clear)
		r.Post("/cart/coupon", cartHandler.ApplyCoupon)
		r.Post("/cart/coupon/remove", cartHandler.RemoveCoupon)
		r.Post("/favorites/toggle/{id}", favoritesHandler.Toggle)
	})

	// Checkout, orders, and profile require a signed-in visitor
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.RequireAuth)
		r.Use(csrfMiddleware.CSRFProtection)
		r.Get("/checkout", checkoutHandler.Page)
		r.Post("/checkout", checkoutHandler.Submit)
		r.Get("/checkout/success", checkoutHandler.Success)
		r.Get("/checkout/failure", checkoutHandler.Failure)
		r.Get("/orders", ordersHandler.List)
		r.Get("/orders/{id}", ordersHandler.Detail)
		r.Get("/profile", profileHandler.Show)
		r.Post("/profile", profileHandler.Update)
		r.Post("/profile/photo", profileHandler.UploadPhoto)
		r.Post("/profile/password", profileHandler.ChangePassword)
	})

	// Back office
	r.Route("/admin", func(r chi.Router) {
		r.Use(authMiddleware.RequireAdmin)
		r.Use(csrfMiddleware.CSRFProtection)
		r.Get("/", adminHandler.Dashboard)
		r.Get("/events", adminHandler.Events)
		r.Get("/events/new", adminHandler.NewEvent)
		r.Post("/events", adminHandler.CreateEvent)
		r.Get("/events/{id}/edit", adminHandler.EditEvent)
		r.Post("/events/{id}", adminHandler.UpdateEvent)
		r.Post("/events/{id}/delete", adminHandler.DeleteEvent)
		r.Get("/categories", adminHandler.Categories)
		r.Post("/categories", adminHandler.CreateCategory)
		r.Post("/categories/{id}", adminHandler.RenameCategory)
		r.Post("/categories/{id}/delete", adminHandler.DeleteCategory)
		r.Get("/coupons", adminHandler.Coupons)
		r.Post("/coupons", adminHandler.CreateCoupon)
		r.Post("/coupons/{id}/toggle", adminHandler.ToggleCoupon)
		r.Post("/coupons/{id}/delete", adminHandler.DeleteCoupon)
		r.Get("/users", adminHandler.Users)
		r.Post("/users/{id}/ban", adminHandler.BanUser)
		r.Post("/users/{id}/unban", adminHandler.UnbanUser)
		r.Get("/newsletter", adminHandler.Newsletter)
		r.Post("/newsletter/send", adminHandler.SendNewsletter)
	})

	// Widget API
	r.Route("/api", func(r chi.Router) {
		r.With(apiLimiter.Limit).Post("/subscribe", apiHandler.Subscribe)
		r.With(apiLimiter.Limit).Post("/contact", apiHandler.Contact)
		r.Get("/comments", apiHandler.ListComments)
		r.With(apiLimiter.Limit).Post("/comments", apiHandler.CreateComment)
		r.Post("/chat", apiHandler.Chat)
		r.Get("/geocode", apiHandler.Geocode)
	})

	// Static assets and local uploads
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir("web/static"))))
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(filepath.Join(cfg.Data.Dir, "uploads")))))

	r.NotFound(publicHandler.NotFound)

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute, // chat streaming holds connections open
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("TicketLive frontend listening on http://%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Forced shutdown:", err)
	}
}
