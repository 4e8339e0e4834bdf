package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/IM2627/AIESEC-Shop/internal/store"
	"github.com/gorilla/csrf"
)

// ListReservations renders the reservation manager, optionally narrowed to
// one status via ?status=pending|collected|cancelled.
func (h *AdminHandler) ListReservations(w http.ResponseWriter, r *http.Request) {
	filter := r.URL.Query().Get("status")

	reservations, err := h.Store.Reservations(filter)
	if err != nil {
		if store.IsValidation(err) {
			http.Error(w, "Unknown status filter", http.StatusBadRequest)
			return
		}
		http.Error(w, "Error fetching reservations", http.StatusInternalServerError)
		return
	}

	counts, err := h.Store.ReservationCounts()
	if err != nil {
		http.Error(w, "Error fetching reservation counts", http.StatusInternalServerError)
		return
	}

	tmpl := h.Templates.Get("admin_reservations.html")
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	session, _ := h.SessionStore.Get(r, "admin-session")
	data := map[string]interface{}{
		"Reservations": reservations,
		"Counts":       counts,
		"Filter":       filter,
		"CsrfField":    csrf.TemplateField(r),
		"Flashes":      GetFlash(session),
	}
	session.Save(r, w)
	tmpl.Execute(w, data)
}

func (h *AdminHandler) UpdateReservationStatus(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, "admin-session")
	defer session.Save(r, w)

	id, err := strconv.Atoi(r.FormValue("id"))
	if err != nil {
		session.AddFlash(FlashMessage{Type: "error", Message: "Invalid reservation ID."})
		http.Redirect(w, r, "/admin/reservations", http.StatusSeeOther)
		return
	}
	status := r.FormValue("status")

	if err := h.Store.UpdateReservationStatus(id, status); err != nil {
		switch {
		case store.IsValidation(err):
			session.AddFlash(FlashMessage{Type: "error", Message: "Unknown status."})
		case errors.Is(err, store.ErrNotFound):
			session.AddFlash(FlashMessage{Type: "error", Message: "Reservation not found."})
		default:
			session.AddFlash(FlashMessage{Type: "error", Message: "Error updating reservation."})
		}
		http.Redirect(w, r, "/admin/reservations", http.StatusSeeOther)
		return
	}

	session.AddFlash(FlashMessage{Type: "success", Message: "Reservation updated."})
	http.Redirect(w, r, "/admin/reservations?status="+r.FormValue("filter"), http.StatusSeeOther)
}

func (h *AdminHandler) DeleteReservation(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, "admin-session")
	defer session.Save(r, w)

	id, err := strconv.Atoi(r.FormValue("id"))
	if err != nil {
		session.AddFlash(FlashMessage{Type: "error", Message: "Invalid reservation ID."})
		http.Redirect(w, r, "/admin/reservations", http.StatusSeeOther)
		return
	}

	if err := h.Store.DeleteReservation(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			session.AddFlash(FlashMessage{Type: "error", Message: "Reservation not found."})
		} else {
			session.AddFlash(FlashMessage{Type: "error", Message: "Error deleting reservation."})
		}
		http.Redirect(w, r, "/admin/reservations", http.StatusSeeOther)
		return
	}

	session.AddFlash(FlashMessage{Type: "success", Message: "Reservation deleted."})
	http.Redirect(w, r, "/admin/reservations?status="+r.FormValue("filter"), http.StatusSeeOther)
}
