package store

import (
	"path/filepath"
	"testing"

	"github.com/IM2627/AIESEC-Shop/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := s.InitSchema(); err != nil {
		t.Fatalf("InitSchema: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func mustCreateItem(t *testing.T, s *Store, name string, stock int, active bool) *models.Item {
	t.Helper()
	item := &models.Item{
		Name:   name,
		Price:  25.0,
		Stock:  stock,
		Active: active,
	}
	if err := s.CreateItem(item); err != nil {
		t.Fatalf("CreateItem(%q): %v", name, err)
	}
	if item.ID == 0 {
		t.Fatalf("CreateItem(%q) did not set ID", name)
	}
	return item
}

func itemStock(t *testing.T, s *Store, id int) int {
	t.Helper()
	item, err := s.ItemByID(id)
	if err != nil {
		t.Fatalf("ItemByID(%d): %v", id, err)
	}
	return item.Stock
}
