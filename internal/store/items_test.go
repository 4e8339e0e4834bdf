package store

import (
	"context"
	"errors"
	"testing"

	"github.com/IM2627/AIESEC-Shop/internal/models"
)

func TestActiveItemsFilterAndOrder(t *testing.T) {
	s := newTestStore(t)
	first := mustCreateItem(t, s, "First", 5, true)
	hidden := mustCreateItem(t, s, "Hidden", 5, false)
	second := mustCreateItem(t, s, "Second", 5, true)

	items, err := s.ActiveItems()
	if err != nil {
		t.Fatalf("ActiveItems: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("ActiveItems returned %d items, want 2", len(items))
	}
	// Newest first.
	if items[0].ID != second.ID || items[1].ID != first.ID {
		t.Errorf("order = [%d, %d], want [%d, %d]", items[0].ID, items[1].ID, second.ID, first.ID)
	}
	for _, i := range items {
		if i.ID == hidden.ID {
			t.Error("inactive item listed on storefront")
		}
	}

	all, err := s.AllItems()
	if err != nil {
		t.Fatalf("AllItems: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("AllItems returned %d items, want 3", len(all))
	}
}

// Re-fetching without a mutation in between returns an identical sequence.
func TestActiveItemsIdempotent(t *testing.T) {
	s := newTestStore(t)
	mustCreateItem(t, s, "One", 1, true)
	mustCreateItem(t, s, "Two", 2, true)

	a, err := s.ActiveItems()
	if err != nil {
		t.Fatalf("ActiveItems: %v", err)
	}
	b, err := s.ActiveItems()
	if err != nil {
		t.Fatalf("ActiveItems: %v", err)
	}
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].Stock != b[i].Stock {
			t.Errorf("position %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestItemByIDNotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.ItemByID(42); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateItem(t *testing.T) {
	s := newTestStore(t)
	item := mustCreateItem(t, s, "Old Name", 5, true)

	item.Name = "New Name"
	item.Stock = 8
	item.Active = false
	if err := s.UpdateItem(item); err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}

	got, err := s.ItemByID(item.ID)
	if err != nil {
		t.Fatalf("ItemByID: %v", err)
	}
	if got.Name != "New Name" || got.Stock != 8 || got.Active {
		t.Errorf("unexpected item after update: %+v", got)
	}

	missing := &models.Item{ID: 9999, Name: "Ghost"}
	if err := s.UpdateItem(missing); !errors.Is(err, ErrNotFound) {
		t.Errorf("update missing: err = %v, want ErrNotFound", err)
	}
}

func TestDeleteItemPendingReservationConflict(t *testing.T) {
	s := newTestStore(t)
	item := mustCreateItem(t, s, "Tote", 5, true)

	id, err := s.CreateReservation(context.Background(), NewReservation{
		ItemID: item.ID, FullName: "A B", Email: "a@b.tn", Quantity: 1,
	})
	if err != nil {
		t.Fatalf("CreateReservation: %v", err)
	}

	if err := s.DeleteItem(item.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("delete with pending reservation: err = %v, want ErrConflict", err)
	}
	if _, err := s.ItemByID(item.ID); err != nil {
		t.Fatalf("item should survive a refused delete: %v", err)
	}

	// Once collected, the reservation no longer blocks deletion and the
	// ledger row survives as history.
	if err := s.UpdateReservationStatus(id, models.StatusCollected); err != nil {
		t.Fatalf("UpdateReservationStatus: %v", err)
	}
	if err := s.DeleteItem(item.ID); err != nil {
		t.Fatalf("delete after collection: %v", err)
	}
	if _, err := s.ReservationByID(id); err != nil {
		t.Errorf("ledger row should survive item deletion: %v", err)
	}
}

func TestDeleteItemNotFound(t *testing.T) {
	s := newTestStore(t)
	if err := s.DeleteItem(123); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

type countingNotifier struct {
	n int
}

func (c *countingNotifier) Publish() { c.n++ }

// Every committed items mutation announces itself exactly once.
func TestMutationsPublishChangeTokens(t *testing.T) {
	s := newTestStore(t)
	notifier := &countingNotifier{}
	s.Notify = notifier

	item := mustCreateItem(t, s, "Announced", 3, true)
	if notifier.n != 1 {
		t.Errorf("after create: publishes = %d, want 1", notifier.n)
	}

	if err := s.UpdateItem(item); err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if _, err := s.CreateReservation(context.Background(), NewReservation{
		ItemID: item.ID, FullName: "A B", Email: "a@b.tn", Quantity: 1,
	}); err != nil {
		t.Fatalf("CreateReservation: %v", err)
	}
	if notifier.n != 3 {
		t.Errorf("after update+reservation: publishes = %d, want 3", notifier.n)
	}

	// A failed reservation commits nothing and announces nothing.
	if _, err := s.CreateReservation(context.Background(), NewReservation{
		ItemID: item.ID, FullName: "A B", Email: "a@b.tn", Quantity: 99,
	}); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	if notifier.n != 3 {
		t.Errorf("failed reservation published a token: publishes = %d, want 3", notifier.n)
	}
}
