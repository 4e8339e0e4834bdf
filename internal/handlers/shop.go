package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/IM2627/AIESEC-Shop/internal/models"
	"github.com/IM2627/AIESEC-Shop/internal/store"
	"github.com/gorilla/sessions"
)

type ShopHandler struct {
	Store        *store.Store
	Templates    *TemplateCache
	SessionStore *sessions.CookieStore
}

// Index renders the public storefront: active items, newest first, with
// live stock. Out-of-stock items stay listed but cannot be reserved.
func (h *ShopHandler) Index(w http.ResponseWriter, r *http.Request) {
	items, err := h.Store.ActiveItems()
	if err != nil {
		http.Error(w, "Error fetching items", http.StatusInternalServerError)
		return
	}

	tmpl := h.Templates.Get("shop.html")
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	session, _ := h.SessionStore.Get(r, "public-session")
	data := map[string]interface{}{
		"Items":   items,
		"Flashes": GetFlash(session),
	}
	session.Save(r, w)
	tmpl.Execute(w, data)
}

// APIItems serves the active item list as JSON. The storefront script
// re-fetches it on every /ws change token, and once on page load so a
// session that missed tokens still converges.
func (h *ShopHandler) APIItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.Store.ActiveItems()
	if err != nil {
		http.Error(w, `{"error":"unavailable"}`, http.StatusServiceUnavailable)
		return
	}
	if items == nil {
		items = []models.Item{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(items)
}
