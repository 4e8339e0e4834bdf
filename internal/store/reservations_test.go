package store

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/IM2627/AIESEC-Shop/internal/models"
	"golang.org/x/sync/errgroup"
)

func TestCreateReservationDecrementsStock(t *testing.T) {
	s := newTestStore(t)
	item := mustCreateItem(t, s, "Shirt", 3, true)

	id, err := s.CreateReservation(context.Background(), NewReservation{
		ItemID:   item.ID,
		FullName: "Jane Doe",
		Email:    "jane@x.tn",
		Team:     "Marketing",
		Quantity: 2,
	})
	if err != nil {
		t.Fatalf("CreateReservation: %v", err)
	}
	if id == 0 {
		t.Fatal("expected a reservation id")
	}

	if got := itemStock(t, s, item.ID); got != 1 {
		t.Errorf("stock after reservation = %d, want 1", got)
	}

	r, err := s.ReservationByID(id)
	if err != nil {
		t.Fatalf("ReservationByID: %v", err)
	}
	if r.Status != models.StatusPending {
		t.Errorf("status = %q, want %q", r.Status, models.StatusPending)
	}
	if r.Quantity != 2 {
		t.Errorf("quantity = %d, want 2", r.Quantity)
	}
	if r.FullName != "Jane Doe" || r.Email != "jane@x.tn" || r.Team != "Marketing" {
		t.Errorf("unexpected reservation fields: %+v", r)
	}
}

func TestCreateReservationInsufficientStock(t *testing.T) {
	s := newTestStore(t)
	item := mustCreateItem(t, s, "Cap", 1, true)

	_, err := s.CreateReservation(context.Background(), NewReservation{
		ItemID:   item.ID,
		FullName: "Jane Doe",
		Email:    "jane@x.tn",
		Quantity: 2,
	})
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("err = %v, want ErrInsufficientStock", err)
	}

	// Stock untouched, no ledger row written.
	if got := itemStock(t, s, item.ID); got != 1 {
		t.Errorf("stock after failed reservation = %d, want 1", got)
	}
	reservations, err := s.Reservations("")
	if err != nil {
		t.Fatalf("Reservations: %v", err)
	}
	if len(reservations) != 0 {
		t.Errorf("ledger has %d rows after failed reservation, want 0", len(reservations))
	}
}

func TestCreateReservationValidation(t *testing.T) {
	s := newTestStore(t)
	item := mustCreateItem(t, s, "Hoodie", 5, true)

	cases := []struct {
		name  string
		input NewReservation
		field string
	}{
		{"zero quantity", NewReservation{ItemID: item.ID, FullName: "A B", Email: "a@b.tn", Quantity: 0}, "quantity"},
		{"negative quantity", NewReservation{ItemID: item.ID, FullName: "A B", Email: "a@b.tn", Quantity: -1}, "quantity"},
		{"missing name", NewReservation{ItemID: item.ID, Email: "a@b.tn", Quantity: 1}, "full_name"},
		{"missing email", NewReservation{ItemID: item.ID, FullName: "A B", Quantity: 1}, "email"},
		{"bad email", NewReservation{ItemID: item.ID, FullName: "A B", Email: "not-an-email", Quantity: 1}, "email"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.CreateReservation(context.Background(), tc.input)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
			if _, ok := ve.Fields[tc.field]; !ok {
				t.Errorf("expected validation error on %q, got %v", tc.field, ve.Fields)
			}
		})
	}

	// Validation failures never reach the transactional boundary.
	if got := itemStock(t, s, item.ID); got != 5 {
		t.Errorf("stock after validation failures = %d, want 5", got)
	}
}

func TestCreateReservationTeamDefault(t *testing.T) {
	s := newTestStore(t)
	item := mustCreateItem(t, s, "Mug", 2, true)

	id, err := s.CreateReservation(context.Background(), NewReservation{
		ItemID:   item.ID,
		FullName: "Jane Doe",
		Email:    "Jane@X.TN",
		Team:     "  ",
		Quantity: 1,
	})
	if err != nil {
		t.Fatalf("CreateReservation: %v", err)
	}
	r, err := s.ReservationByID(id)
	if err != nil {
		t.Fatalf("ReservationByID: %v", err)
	}
	if r.Team != models.DefaultTeam {
		t.Errorf("team = %q, want %q", r.Team, models.DefaultTeam)
	}
	if r.Email != "jane@x.tn" {
		t.Errorf("email = %q, want lowercased", r.Email)
	}
}

func TestCreateReservationItemEligibility(t *testing.T) {
	s := newTestStore(t)
	inactive := mustCreateItem(t, s, "Archived Tee", 10, false)

	_, err := s.CreateReservation(context.Background(), NewReservation{
		ItemID: 9999, FullName: "A B", Email: "a@b.tn", Quantity: 1,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("missing item: err = %v, want ErrNotFound", err)
	}

	_, err = s.CreateReservation(context.Background(), NewReservation{
		ItemID: inactive.ID, FullName: "A B", Email: "a@b.tn", Quantity: 1,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("inactive item: err = %v, want ErrNotFound", err)
	}
	if got := itemStock(t, s, inactive.ID); got != 10 {
		t.Errorf("inactive item stock = %d, want 10", got)
	}
}

// Two simultaneous requests for the last unit: exactly one commits, the
// other fails with ErrInsufficientStock, and stock never goes negative.
func TestConcurrentLastUnit(t *testing.T) {
	s := newTestStore(t)
	item := mustCreateItem(t, s, "Limited Pin", 1, true)

	var successes, conflicts atomic.Int32
	start := make(chan struct{})

	var g errgroup.Group
	for i := 0; i < 2; i++ {
		g.Go(func() error {
			<-start
			_, err := s.CreateReservation(context.Background(), NewReservation{
				ItemID:   item.ID,
				FullName: "Racer",
				Email:    "racer@x.tn",
				Quantity: 1,
			})
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, ErrInsufficientStock):
				conflicts.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	close(start)
	if err := g.Wait(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if successes.Load() != 1 || conflicts.Load() != 1 {
		t.Errorf("successes = %d, conflicts = %d; want exactly 1 and 1", successes.Load(), conflicts.Load())
	}
	if got := itemStock(t, s, item.ID); got != 0 {
		t.Errorf("stock = %d, want 0", got)
	}
	reservations, err := s.Reservations("")
	if err != nil {
		t.Fatalf("Reservations: %v", err)
	}
	if len(reservations) != 1 {
		t.Errorf("ledger rows = %d, want 1", len(reservations))
	}
}

func TestUpdateReservationStatusAndFilter(t *testing.T) {
	s := newTestStore(t)
	item := mustCreateItem(t, s, "Scarf", 5, true)

	id, err := s.CreateReservation(context.Background(), NewReservation{
		ItemID: item.ID, FullName: "A B", Email: "a@b.tn", Quantity: 1,
	})
	if err != nil {
		t.Fatalf("CreateReservation: %v", err)
	}

	if err := s.UpdateReservationStatus(id, models.StatusCollected); err != nil {
		t.Fatalf("UpdateReservationStatus: %v", err)
	}

	pending, err := s.Reservations(models.StatusPending)
	if err != nil {
		t.Fatalf("Reservations(pending): %v", err)
	}
	for _, r := range pending {
		if r.ID == id {
			t.Error("collected reservation still listed under pending")
		}
	}

	collected, err := s.Reservations(models.StatusCollected)
	if err != nil {
		t.Fatalf("Reservations(collected): %v", err)
	}
	found := false
	for _, r := range collected {
		if r.ID == id {
			found = true
		}
	}
	if !found {
		t.Error("collected reservation missing from collected filter")
	}

	if err := s.UpdateReservationStatus(id, "shipped"); !IsValidation(err) {
		t.Errorf("unknown status: err = %v, want ValidationError", err)
	}
	if err := s.UpdateReservationStatus(9999, models.StatusPending); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing reservation: err = %v, want ErrNotFound", err)
	}
}

// Cancelling a reservation deliberately does not restock the item.
func TestCancelDoesNotRestock(t *testing.T) {
	s := newTestStore(t)
	item := mustCreateItem(t, s, "Beanie", 3, true)

	id, err := s.CreateReservation(context.Background(), NewReservation{
		ItemID: item.ID, FullName: "A B", Email: "a@b.tn", Quantity: 2,
	})
	if err != nil {
		t.Fatalf("CreateReservation: %v", err)
	}
	if err := s.UpdateReservationStatus(id, models.StatusCancelled); err != nil {
		t.Fatalf("UpdateReservationStatus: %v", err)
	}
	if got := itemStock(t, s, item.ID); got != 1 {
		t.Errorf("stock after cancellation = %d, want 1 (no restock)", got)
	}
}

func TestDeleteReservation(t *testing.T) {
	s := newTestStore(t)
	item := mustCreateItem(t, s, "Sticker", 5, true)

	id, err := s.CreateReservation(context.Background(), NewReservation{
		ItemID: item.ID, FullName: "A B", Email: "a@b.tn", Quantity: 1,
	})
	if err != nil {
		t.Fatalf("CreateReservation: %v", err)
	}
	if err := s.DeleteReservation(id); err != nil {
		t.Fatalf("DeleteReservation: %v", err)
	}
	if _, err := s.ReservationByID(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("after delete: err = %v, want ErrNotFound", err)
	}
	if err := s.DeleteReservation(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("double delete: err = %v, want ErrNotFound", err)
	}
}

func TestReservationCounts(t *testing.T) {
	s := newTestStore(t)
	item := mustCreateItem(t, s, "Badge", 10, true)

	ids := make([]int, 3)
	for i := range ids {
		id, err := s.CreateReservation(context.Background(), NewReservation{
			ItemID: item.ID, FullName: "A B", Email: "a@b.tn", Quantity: 1,
		})
		if err != nil {
			t.Fatalf("CreateReservation: %v", err)
		}
		ids[i] = id
	}
	if err := s.UpdateReservationStatus(ids[0], models.StatusCollected); err != nil {
		t.Fatalf("UpdateReservationStatus: %v", err)
	}

	counts, err := s.ReservationCounts()
	if err != nil {
		t.Fatalf("ReservationCounts: %v", err)
	}
	want := map[string]int{
		models.StatusPending:   2,
		models.StatusCollected: 1,
		models.StatusCancelled: 0,
	}
	for status, n := range want {
		if counts[status] != n {
			t.Errorf("counts[%q] = %d, want %d", status, counts[status], n)
		}
	}
}
