// Package offline caches GET responses in sqlite so previously seen pages
// survive a network outage, mirroring the behavior of the original
// service worker: only GET requests are considered, requests to the
// remote data host are bypassed, and the cached copy is served only when
// the live fetch fails.
package offline

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// InitDB opens the cache database and bootstraps its schema.
func InitDB(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open offline cache: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connect offline cache: %w", err)
	}

	if err := createTables(db); err != nil {
		return nil, err
	}

	return db, nil
}

func createTables(db *sql.DB) error {
	schema := `
    CREATE TABLE IF NOT EXISTS responses (
        url TEXT PRIMARY KEY,
        status INTEGER NOT NULL,
        content_type TEXT,
        body BLOB,
        fetched_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );
    `

	_, err := db.Exec(schema)
	return err
}

// Cache stores one response per URL.
type Cache struct {
	db *sql.DB
}

func NewCache(db *sql.DB) *Cache {
	return &Cache{db: db}
}

// Put stores or replaces the cached response for a URL.
func (c *Cache) Put(url string, status int, contentType string, body []byte) error {
	query := `
	INSERT OR REPLACE INTO responses (url, status, content_type, body, fetched_at)
	VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
	`
	_, err := c.db.Exec(query, url, status, contentType, body)
	if err != nil {
		return fmt.Errorf("store cached response: %w", err)
	}
	return nil
}

// Get returns the cached response for a URL, or sql.ErrNoRows.
func (c *Cache) Get(url string) (status int, contentType string, body []byte, err error) {
	query := `SELECT status, content_type, body FROM responses WHERE url = ?`
	err = c.db.QueryRow(query, url).Scan(&status, &contentType, &body)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, "", nil, err
		}
		return 0, "", nil, fmt.Errorf("read cached response: %w", err)
	}
	return status, contentType, body, nil
}
