package store

import (
	"database/sql"
	"log/slog"
	"net/url"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Notifier receives a signal after any committed mutation of the items
// table (item CRUD or a stock decrement by a reservation). The store calls
// it so no mutation path can forget to announce itself.
type Notifier interface {
	Publish()
}

type Store struct {
	DB *sql.DB

	// Notify is optional; when set, item mutations are announced on it.
	Notify Notifier
}

func NewStore(dataSourceName string) (*Store, error) {
	// busy_timeout makes concurrent reservation transactions queue on the
	// write lock instead of failing SQLITE_BUSY.
	dsn := "file:" + dataSourceName + "?" + url.Values{
		"_pragma": []string{"busy_timeout(5000)", "journal_mode(WAL)"},
	}.Encode()

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return &Store{DB: db}, nil
}

func (s *Store) Close() error {
	return s.DB.Close()
}

// publish announces an items-table change if a notifier is attached.
func (s *Store) publish() {
	if s.Notify != nil {
		s.Notify.Publish()
	}
}

// InitSchema creates the tables directly, for the CLI running before the
// server has ever applied migrations.
func (s *Store) InitSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		description TEXT DEFAULT '',
		price REAL NOT NULL DEFAULT 0 CHECK (price >= 0),
		stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
		active INTEGER NOT NULL DEFAULT 1,
		image_url TEXT DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS reservations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		item_id INTEGER NOT NULL,
		full_name TEXT NOT NULL,
		email TEXT NOT NULL,
		team TEXT NOT NULL DEFAULT 'General',
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		status TEXT NOT NULL DEFAULT 'pending',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS admin_users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		email TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL
	);
	`
	_, err := s.DB.Exec(query)
	if err != nil {
		slog.Error("Error creating schema", "error", err)
		return err
	}
	return nil
}
