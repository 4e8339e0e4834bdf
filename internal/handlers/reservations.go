package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/IM2627/AIESEC-Shop/internal/store"
	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"
)

type ReservationHandler struct {
	Store        *store.Store
	Templates    *TemplateCache
	SessionStore *sessions.CookieStore
}

// ReserveForm shows the reservation dialog for one item. The stock shown
// here is the caller's last-known view; the store re-checks it at commit.
func (h *ReservationHandler) ReserveForm(w http.ResponseWriter, r *http.Request) {
	idStr := r.URL.Query().Get("id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "Invalid Item ID", http.StatusBadRequest)
		return
	}

	item, err := h.Store.ItemByID(id)
	if err != nil {
		http.Error(w, "Item not found", http.StatusNotFound)
		return
	}

	tmpl := h.Templates.Get("reserve.html")
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	session, _ := h.SessionStore.Get(r, "public-session")
	data := map[string]interface{}{
		"Item":      item,
		"CsrfField": csrf.TemplateField(r),
		"Flashes":   GetFlash(session),
	}
	session.Save(r, w)
	tmpl.Execute(w, data)
}

// SubmitReservation invokes the atomic reservation procedure and maps its
// error taxonomy to user-facing messages. A stock conflict gets its own
// refresh-and-retry message, never a generic failure banner, and success
// is only claimed after the store returns a committed reservation id.
func (h *ReservationHandler) SubmitReservation(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, "public-session")
	defer session.Save(r, w)

	if err := r.ParseForm(); err != nil {
		session.AddFlash(FlashMessage{Type: "error", Message: "Invalid form data."})
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	itemID, err := strconv.Atoi(r.FormValue("item_id"))
	if err != nil {
		session.AddFlash(FlashMessage{Type: "error", Message: "Invalid item."})
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	quantity, err := strconv.Atoi(r.FormValue("quantity"))
	if err != nil {
		session.AddFlash(FlashMessage{Type: "error", Message: "Quantity must be a number."})
		http.Redirect(w, r, fmt.Sprintf("/reserve?id=%d", itemID), http.StatusSeeOther)
		return
	}

	id, err := h.Store.CreateReservation(r.Context(), store.NewReservation{
		ItemID:   itemID,
		FullName: r.FormValue("full_name"),
		Email:    r.FormValue("email"),
		Team:     r.FormValue("team"),
		Quantity: quantity,
	})
	if err != nil {
		var ve *store.ValidationError
		switch {
		case errors.As(err, &ve):
			for _, msg := range ve.Fields {
				session.AddFlash(FlashMessage{Type: "error", Message: msg})
			}
			http.Redirect(w, r, fmt.Sprintf("/reserve?id=%d", itemID), http.StatusSeeOther)
		case errors.Is(err, store.ErrInsufficientStock):
			session.AddFlash(FlashMessage{Type: "error", Message: "Sorry, this item is no longer available in the requested quantity. Please refresh and try again."})
			http.Redirect(w, r, fmt.Sprintf("/reserve?id=%d", itemID), http.StatusSeeOther)
		case errors.Is(err, store.ErrNotFound):
			session.AddFlash(FlashMessage{Type: "error", Message: "This item is no longer available."})
			http.Redirect(w, r, "/", http.StatusSeeOther)
		default:
			slog.Error("Reservation failed", "error", err, "item_id", itemID)
			session.AddFlash(FlashMessage{Type: "error", Message: "Failed to create reservation. Please try again."})
			http.Redirect(w, r, fmt.Sprintf("/reserve?id=%d", itemID), http.StatusSeeOther)
		}
		return
	}

	slog.Info("Reservation confirmed", "reservation_id", id, "item_id", itemID, "quantity", quantity)
	session.AddFlash(FlashMessage{Type: "success", Message: "Reservation confirmed! You will be contacted when your item is ready for collection."})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
