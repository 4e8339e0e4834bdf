package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/IM2627/AIESEC-Shop/internal/models"
)

// AdminDecision is the tagged outcome of an authorization check. The zero
// value is DecisionError so an uninitialized decision never grants access.
type AdminDecision int

const (
	DecisionError AdminDecision = iota
	DecisionUnauthorized
	DecisionAuthorized
)

func (d AdminDecision) String() string {
	switch d {
	case DecisionAuthorized:
		return "authorized"
	case DecisionUnauthorized:
		return "unauthorized"
	default:
		return "error"
	}
}

func (s *Store) AdminByEmail(email string) (*models.AdminUser, error) {
	row := s.DB.QueryRow(`SELECT id, email, password FROM admin_users WHERE LOWER(email) = LOWER(?)`, email)

	var user models.AdminUser
	if err := row.Scan(&user.ID, &user.Email, &user.Password); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// CreateAdmin is mainly for seeding via the CLI.
func (s *Store) CreateAdmin(email, hashedPassword string) error {
	_, err := s.DB.Exec(`INSERT INTO admin_users (email, password) VALUES (?, ?)`, email, hashedPassword)
	return err
}

// CheckAdmin resolves whether email belongs to an admin, honoring the
// context deadline. It fails closed: a timed-out or failed lookup is
// DecisionError, which callers must treat the same as unauthorized.
func (s *Store) CheckAdmin(ctx context.Context, email string) AdminDecision {
	var id int
	err := s.DB.QueryRowContext(ctx,
		`SELECT id FROM admin_users WHERE LOWER(email) = LOWER(?)`, email,
	).Scan(&id)
	switch {
	case err == nil:
		return DecisionAuthorized
	case errors.Is(err, sql.ErrNoRows):
		return DecisionUnauthorized
	default:
		return DecisionError
	}
}
