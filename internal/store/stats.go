package store

import "database/sql"

type DashboardStats struct {
	TotalItems            int
	TotalReservations     int
	ReservationsByStatus  map[string]int
	ItemReservationCounts []ItemReservationCount
}

type ItemReservationCount struct {
	ItemID           int
	Name             string
	Stock            int
	ReservationCount int
}

func (s *Store) GetDashboardStats() (*DashboardStats, error) {
	stats := &DashboardStats{}

	err := s.DB.QueryRow(`SELECT COUNT(*) FROM items`).Scan(&stats.TotalItems)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}

	err = s.DB.QueryRow(`SELECT COUNT(*) FROM reservations`).Scan(&stats.TotalReservations)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}

	stats.ReservationsByStatus, err = s.ReservationCounts()
	if err != nil {
		return nil, err
	}

	itemRows, err := s.DB.Query(`
		SELECT i.id, i.name, i.stock, COUNT(r.id) as reservation_count
		FROM items i
		LEFT JOIN reservations r ON i.id = r.item_id
		GROUP BY i.id
		ORDER BY reservation_count DESC
	`)
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()
	for itemRows.Next() {
		var c ItemReservationCount
		if err := itemRows.Scan(&c.ItemID, &c.Name, &c.Stock, &c.ReservationCount); err != nil {
			return nil, err
		}
		stats.ItemReservationCounts = append(stats.ItemReservationCounts, c)
	}

	return stats, itemRows.Err()
}
