package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/IM2627/AIESEC-Shop/internal/store"
	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"
	"golang.org/x/crypto/bcrypt"
)

type AdminHandler struct {
	Store        *store.Store
	SessionStore *sessions.CookieStore
	Templates    *TemplateCache
	UploadDir    string
	// CheckTimeout bounds the per-request admin lookup; exceeded means
	// unauthorized.
	CheckTimeout time.Duration
}

func (h *AdminHandler) LoginGet(w http.ResponseWriter, r *http.Request) {
	tmpl := h.Templates.Get("login.html")
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	session, _ := h.SessionStore.Get(r, "admin-session")
	data := map[string]interface{}{
		"CsrfField": csrf.TemplateField(r),
		"Flashes":   GetFlash(session),
	}
	session.Save(r, w)
	tmpl.Execute(w, data)
}

func (h *AdminHandler) LoginPost(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, "admin-session")

	email := r.FormValue("email")
	password := r.FormValue("password")

	user, err := h.Store.AdminByEmail(email)
	if err != nil {
		session.AddFlash(FlashMessage{Type: "error", Message: "Internal Server Error"})
		session.Save(r, w)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if user == nil {
		session.AddFlash(FlashMessage{Type: "error", Message: "Invalid email or password"})
		session.Save(r, w)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		session.AddFlash(FlashMessage{Type: "error", Message: "Invalid email or password"})
		session.Save(r, w)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	session.Values["authenticated"] = true
	session.Values["admin_email"] = user.Email
	session.Options.Path = "/"
	session.AddFlash(FlashMessage{Type: "success", Message: "Welcome back!"})

	if err := session.Save(r, w); err != nil {
		slog.Error("Failed to save session", "error", err)
		http.Error(w, "Failed to save session", http.StatusInternalServerError)
		return
	}

	slog.Info("Admin login successful", "email", user.Email)
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, "admin-session")
	session.Values["authenticated"] = false
	session.Options.MaxAge = -1 // Expire immediately
	session.Save(r, w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// AuthMiddleware gates admin routes. Beyond the session flag it re-checks
// the administrators table on every request with a bounded deadline, so a
// revoked admin loses access without waiting for cookie expiry. Anything
// but an explicit authorized decision is treated as no access.
func (h *AdminHandler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, _ := h.SessionStore.Get(r, "admin-session")
		auth, ok := session.Values["authenticated"].(bool)
		email, okEmail := session.Values["admin_email"].(string)
		if !ok || !auth || !okEmail {
			session.AddFlash(FlashMessage{Type: "error", Message: "You must be logged in to access this page."})
			session.Save(r, w)
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), h.CheckTimeout)
		defer cancel()
		decision := h.Store.CheckAdmin(ctx, email)
		if decision != store.DecisionAuthorized {
			slog.Warn("Admin check did not authorize", "email", email, "decision", decision.String())
			session.Values["authenticated"] = false
			session.AddFlash(FlashMessage{Type: "error", Message: "Your session is no longer authorized."})
			session.Save(r, w)
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		next(w, r)
	}
}

func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Store.GetDashboardStats()
	if err != nil {
		http.Error(w, "Error fetching stats", http.StatusInternalServerError)
		return
	}

	tmpl := h.Templates.Get("admin.html")
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	session, _ := h.SessionStore.Get(r, "admin-session")
	data := map[string]interface{}{
		"Stats":   stats,
		"Flashes": GetFlash(session),
	}
	session.Save(r, w)
	tmpl.Execute(w, data)
}
