package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/IM2627/AIESEC-Shop/internal/models"
)

// NewReservation is the input to the atomic reservation procedure.
type NewReservation struct {
	ItemID   int
	FullName string
	Email    string
	Team     string
	Quantity int
}

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func (n *NewReservation) validate() error {
	fields := make(map[string]string)
	if strings.TrimSpace(n.FullName) == "" {
		fields["full_name"] = "Your full name is required."
	}
	email := strings.TrimSpace(n.Email)
	if email == "" {
		fields["email"] = "Email address is required."
	} else if !emailRegex.MatchString(email) {
		fields["email"] = "Please enter a valid email address."
	}
	if n.Quantity < 1 {
		fields["quantity"] = "Quantity must be at least 1."
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// normalize trims the text fields and applies the team default.
func (n *NewReservation) normalize() {
	n.FullName = strings.TrimSpace(n.FullName)
	n.Email = strings.ToLower(strings.TrimSpace(n.Email))
	n.Team = strings.TrimSpace(n.Team)
	if n.Team == "" {
		n.Team = models.DefaultTeam
	}
}

// CreateReservation decrements stock and inserts the ledger row as one
// transaction. This is the authoritative boundary: the storefront's
// quantity check against its last-known stock is a UX courtesy only, so
// stock is re-checked here under the database's write lock. Two
// simultaneous calls for the last unit commit exactly one reservation;
// the loser gets ErrInsufficientStock.
func (s *Store) CreateReservation(ctx context.Context, n NewReservation) (int, error) {
	if err := n.validate(); err != nil {
		return 0, err
	}
	n.normalize()

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin reservation tx: %w", err)
	}
	defer tx.Rollback()

	// Conditional decrement: zero rows affected means either no such
	// active item or not enough stock; the follow-up read inside the same
	// transaction tells the two apart.
	res, err := tx.ExecContext(ctx,
		`UPDATE items SET stock = stock - ? WHERE id = ? AND active = 1 AND stock >= ?`,
		n.Quantity, n.ItemID, n.Quantity,
	)
	if err != nil {
		return 0, fmt.Errorf("decrement stock: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if affected == 0 {
		var stock int
		err := tx.QueryRowContext(ctx,
			`SELECT stock FROM items WHERE id = ? AND active = 1`, n.ItemID,
		).Scan(&stock)
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("item %d: %w", n.ItemID, ErrNotFound)
		}
		if err != nil {
			return 0, err
		}
		return 0, fmt.Errorf("item %d has %d in stock, requested %d: %w",
			n.ItemID, stock, n.Quantity, ErrInsufficientStock)
	}

	ins, err := tx.ExecContext(ctx,
		`INSERT INTO reservations (item_id, full_name, email, team, quantity, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)`,
		n.ItemID, n.FullName, n.Email, n.Team, n.Quantity, models.StatusPending,
	)
	if err != nil {
		return 0, fmt.Errorf("insert reservation: %w", err)
	}
	id, err := ins.LastInsertId()
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit reservation: %w", err)
	}
	s.publish()
	return int(id), nil
}

const reservationColumns = `r.id, r.item_id, COALESCE(i.name, '(deleted item)') as item_name,
	r.full_name, r.email, r.team, r.quantity, r.status, r.created_at`

// Reservations lists the ledger newest first. statusFilter narrows to one
// of the status literals; empty means all.
func (s *Store) Reservations(statusFilter string) ([]models.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations r
		LEFT JOIN items i ON r.item_id = i.id
	`
	var args []any
	if statusFilter != "" {
		if !models.ValidStatus(statusFilter) {
			return nil, &ValidationError{Fields: map[string]string{"status": "Unknown status filter."}}
		}
		query += ` WHERE r.status = ?`
		args = append(args, statusFilter)
	}
	query += ` ORDER BY r.created_at DESC, r.id DESC`

	rows, err := s.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reservations []models.Reservation
	for rows.Next() {
		var r models.Reservation
		if err := rows.Scan(&r.ID, &r.ItemID, &r.ItemName, &r.FullName, &r.Email, &r.Team, &r.Quantity, &r.Status, &r.CreatedAt); err != nil {
			return nil, err
		}
		reservations = append(reservations, r)
	}
	return reservations, rows.Err()
}

func (s *Store) ReservationByID(id int) (*models.Reservation, error) {
	row := s.DB.QueryRow(`
		SELECT `+reservationColumns+`
		FROM reservations r
		LEFT JOIN items i ON r.item_id = i.id
		WHERE r.id = ?`, id)

	var r models.Reservation
	err := row.Scan(&r.ID, &r.ItemID, &r.ItemName, &r.FullName, &r.Email, &r.Team, &r.Quantity, &r.Status, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("reservation %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// UpdateReservationStatus moves a reservation between pending, collected
// and cancelled. Cancelling does not restock the item; see DESIGN.md.
func (s *Store) UpdateReservationStatus(id int, status string) error {
	if !models.ValidStatus(status) {
		return &ValidationError{Fields: map[string]string{"status": "Unknown status."}}
	}
	res, err := s.DB.Exec(`UPDATE reservations SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("reservation %d: %w", id, ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteReservation(id int) error {
	res, err := s.DB.Exec(`DELETE FROM reservations WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("reservation %d: %w", id, ErrNotFound)
	}
	return nil
}

// ReservationCounts returns per-status totals for the admin tab badges.
func (s *Store) ReservationCounts() (map[string]int, error) {
	rows, err := s.DB.Query(`SELECT status, COUNT(*) FROM reservations GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int{
		models.StatusPending:   0,
		models.StatusCollected: 0,
		models.StatusCancelled: 0,
	}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}
