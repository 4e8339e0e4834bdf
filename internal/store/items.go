package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/IM2627/AIESEC-Shop/internal/models"
)

const itemColumns = `id, name, description, price, stock, active, COALESCE(image_url, '') as image_url, created_at`

func scanItem(row interface{ Scan(...any) error }) (models.Item, error) {
	var i models.Item
	err := row.Scan(&i.ID, &i.Name, &i.Description, &i.Price, &i.Stock, &i.Active, &i.ImageURL, &i.CreatedAt)
	return i, err
}

func (s *Store) CreateItem(item *models.Item) error {
	query := `
		INSERT INTO items (name, description, price, stock, active, image_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`
	res, err := s.DB.Exec(query, item.Name, item.Description, item.Price, item.Stock, item.Active, item.ImageURL)
	if err != nil {
		return err
	}
	if id, err := res.LastInsertId(); err == nil {
		item.ID = int(id)
	}
	s.publish()
	return nil
}

// ActiveItems lists what the storefront shows, newest first.
func (s *Store) ActiveItems() ([]models.Item, error) {
	return s.listItems(`SELECT ` + itemColumns + ` FROM items WHERE active = 1 ORDER BY created_at DESC, id DESC`)
}

// AllItems is the admin view, newest first.
func (s *Store) AllItems() ([]models.Item, error) {
	return s.listItems(`SELECT ` + itemColumns + ` FROM items ORDER BY created_at DESC, id DESC`)
}

func (s *Store) listItems(query string) ([]models.Item, error) {
	rows, err := s.DB.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		i, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

func (s *Store) ItemByID(id int) (*models.Item, error) {
	row := s.DB.QueryRow(`SELECT `+itemColumns+` FROM items WHERE id = ?`, id)
	i, err := scanItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("item %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &i, nil
}

func (s *Store) UpdateItem(item *models.Item) error {
	query := `
		UPDATE items
		SET name = ?, description = ?, price = ?, stock = ?, active = ?
		WHERE id = ?
	`
	res, err := s.DB.Exec(query, item.Name, item.Description, item.Price, item.Stock, item.Active, item.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("item %d: %w", item.ID, ErrNotFound)
	}
	s.publish()
	return nil
}

func (s *Store) UpdateItemImage(id int, imageURL string) error {
	_, err := s.DB.Exec(`UPDATE items SET image_url = ? WHERE id = ?`, imageURL, id)
	if err != nil {
		return err
	}
	s.publish()
	return nil
}

// DeleteItem removes an item. It refuses while pending reservations still
// reference the item; collect or cancel those first.
func (s *Store) DeleteItem(id int) error {
	tx, err := s.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var pending int
	err = tx.QueryRow(`SELECT COUNT(*) FROM reservations WHERE item_id = ? AND status = ?`, id, models.StatusPending).Scan(&pending)
	if err != nil {
		return err
	}
	if pending > 0 {
		return fmt.Errorf("item %d has %d pending reservation(s): %w", id, pending, ErrConflict)
	}

	res, err := tx.Exec(`DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("item %d: %w", id, ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	s.publish()
	return nil
}
