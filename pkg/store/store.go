// Package store caches compiled chunk images in a SQLite database, keyed
// by source identity, so unchanged modules skip recompilation.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/tliron/commonlog"
	_ "modernc.org/sqlite"

	"github.com/sable-lang/sable/pkg/bytecode"
)

// ErrImageNotFound indicates the requested image isn't cached
var ErrImageNotFound = errors.New("image not found")

var log = commonlog.GetLogger("sable.store")

// Store is a SQLite-backed cache of compiled chunk images
type Store struct {
	db     *sql.DB
	dbPath string
	mu     sync.Mutex
}

// Open opens (creating if needed) the image cache at dbPath
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Set busy timeout for concurrent access
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS images (
		key TEXT PRIMARY KEY,
		data BLOB NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Put serializes a chunk and stores it under key, replacing any previous
// image for that key
func (s *Store) Put(key string, c *bytecode.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := c.MarshalImage()
	if err != nil {
		return fmt.Errorf("encoding image: %w", err)
	}

	_, err = s.db.Exec(
		"INSERT OR REPLACE INTO images (key, data) VALUES (?, ?)",
		key, data,
	)
	if err != nil {
		return fmt.Errorf("saving image: %w", err)
	}

	log.Debugf("cached image %q (%d bytes)", key, len(data))
	return nil
}

// Get retrieves and decodes the cached chunk for key
func (s *Store) Get(key string) (*bytecode.Chunk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var data []byte
	err := s.db.QueryRow("SELECT data FROM images WHERE key = ?", key).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrImageNotFound
		}
		return nil, fmt.Errorf("querying image: %w", err)
	}

	c, err := bytecode.UnmarshalImage(data)
	if err != nil {
		return nil, fmt.Errorf("decoding image %q: %w", key, err)
	}
	return c, nil
}

// Delete removes the cached image for key. Deleting a missing key is not
// an error
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM images WHERE key = ?", key); err != nil {
		return fmt.Errorf("deleting image: %w", err)
	}
	return nil
}

// Keys lists every cached image key
func (s *Store) Keys() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query("SELECT key FROM images ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("listing images: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
