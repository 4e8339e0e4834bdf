package models

import (
	"time"
)

// Reservation status literals, persisted and transmitted as-is.
const (
	StatusPending   = "pending"
	StatusCollected = "collected"
	StatusCancelled = "cancelled"
)

// DefaultTeam is recorded when the reservation form leaves the team blank.
const DefaultTeam = "General"

type Item struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"` // TND
	Stock       int       `json:"stock"`
	Active      bool      `json:"active"`
	ImageURL    string    `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
}

type Reservation struct {
	ID        int       `json:"id"`
	ItemID    int       `json:"item_id"`
	ItemName  string    `json:"item_name"` // For display convenience
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Team      string    `json:"team"`
	Quantity  int       `json:"quantity"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type AdminUser struct {
	ID       int    `json:"id"`
	Email    string `json:"email"`
	Password string `json:"-"` // Store hashed password
}

// ValidStatus reports whether s is one of the three reservation states.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusCollected, StatusCancelled:
		return true
	}
	return false
}
