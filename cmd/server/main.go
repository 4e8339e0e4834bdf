package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/IM2627/AIESEC-Shop/internal/config"
	"github.com/IM2627/AIESEC-Shop/internal/handlers"
	"github.com/IM2627/AIESEC-Shop/internal/notify"
	"github.com/IM2627/AIESEC-Shop/internal/store"
	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"
	"golang.org/x/sync/errgroup"
)

func main() {
	handlerOpts := &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}
	// TextHandler for console readability; switch to JSONHandler behind a
	// log shipper.
	logger := slog.New(slog.NewTextHandler(os.Stdout, handlerOpts))
	slog.SetDefault(logger)

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// 2. Init DB
	db, err := store.NewStore(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize store", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate("migrations"); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		slog.Error("Failed to create upload directory", "error", err, "dir", cfg.UploadDir)
		os.Exit(1)
	}

	// 3. Change notification hub. The store announces every committed
	// items mutation on it; storefront sessions subscribe over /ws.
	hub := notify.NewHub()
	db.Notify = hub

	// 4. Session Setup
	sessionStore := sessions.NewCookieStore(cfg.SessionKey)
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.Secure = cfg.CookieSecure
	sessionStore.Options.SameSite = http.SameSiteLaxMode
	sessionStore.Options.Path = "/"
	if cfg.CookieDomain != "" {
		sessionStore.Options.Domain = cfg.CookieDomain
	}

	// 5. Init Templates
	templates := handlers.NewTemplateCache()
	if err := templates.Load("templates"); err != nil {
		slog.Error("Failed to load templates", "error", err)
		os.Exit(1)
	}

	// 6. Setup Handlers
	adminHandler := &handlers.AdminHandler{
		Store:        db,
		SessionStore: sessionStore,
		Templates:    templates,
		UploadDir:    cfg.UploadDir,
		CheckTimeout: cfg.AdminCheckTimeout,
	}
	shopHandler := &handlers.ShopHandler{
		Store:        db,
		Templates:    templates,
		SessionStore: sessionStore,
	}
	reservationHandler := &handlers.ReservationHandler{
		Store:        db,
		Templates:    templates,
		SessionStore: sessionStore,
	}
	mux := http.NewServeMux()

	// Static Files
	fileServer := http.FileServer(http.Dir("./static"))
	mux.Handle("/static/", http.StripPrefix("/static", fileServer))

	// Rate Limiter (1 reservation attempt per IP per 10s)
	rateLimiter := handlers.NewRateLimiter(10 * time.Second)

	// Public Routes
	mux.HandleFunc("/", shopHandler.Index)
	mux.HandleFunc("/api/items", shopHandler.APIItems)
	mux.HandleFunc("/ws", notify.ServeWS(hub))
	mux.HandleFunc("/reserve", reservationHandler.ReserveForm)
	mux.HandleFunc("POST /reserve", rateLimiter.Middleware(reservationHandler.SubmitReservation))

	mux.HandleFunc("/login", adminHandler.LoginGet)
	mux.HandleFunc("POST /login", adminHandler.LoginPost)
	mux.HandleFunc("/logout", adminHandler.Logout)

	// Protected Routes
	mux.HandleFunc("/admin", adminHandler.AuthMiddleware(adminHandler.Dashboard))
	mux.HandleFunc("/admin/items", adminHandler.AuthMiddleware(adminHandler.ListItems))
	mux.HandleFunc("/admin/items/new", adminHandler.AuthMiddleware(adminHandler.AddItemForm))
	mux.HandleFunc("POST /admin/items", adminHandler.AuthMiddleware(adminHandler.CreateItem))
	mux.HandleFunc("/admin/items/edit", adminHandler.AuthMiddleware(adminHandler.EditItemForm))
	mux.HandleFunc("POST /admin/items/update", adminHandler.AuthMiddleware(adminHandler.UpdateItem))
	mux.HandleFunc("POST /admin/items/delete", adminHandler.AuthMiddleware(adminHandler.DeleteItem))
	mux.HandleFunc("/admin/reservations", adminHandler.AuthMiddleware(adminHandler.ListReservations))
	mux.HandleFunc("POST /admin/reservations/update", adminHandler.AuthMiddleware(adminHandler.UpdateReservationStatus))
	mux.HandleFunc("POST /admin/reservations/delete", adminHandler.AuthMiddleware(adminHandler.DeleteReservation))

	// 7. Middleware Setup
	CSRF := csrf.Protect(
		cfg.CSRFKey,
		csrf.Secure(cfg.CookieSecure),
		csrf.TrustedOrigins([]string{"localhost:" + cfg.Port, "127.0.0.1:" + cfg.Port, "localhost", "127.0.0.1"}),
	)

	// Chain: Logger -> Security Headers -> CSRF -> Mux
	handler := handlers.LoggingMiddleware(
		handlers.SecurityHeadersMiddleware(
			CSRF(mux),
		),
	)

	// 8. Start Server with Graceful Shutdown
	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		slog.Info("Shutting down server gracefully...")
		hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
	slog.Info("Server exited gracefully.")
}
