package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/drakos74/kcurves/internal/storage"
	"github.com/drakos74/kcurves/internal/storage/file"
	// sqlite driver
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS registry (
	run     TEXT NOT NULL,
	label   TEXT NOT NULL,
	value   TEXT NOT NULL,
	created INTEGER NOT NULL,
	PRIMARY KEY (run, label)
)`

// Registry keeps the values of every run in a sqlite database.
type Registry struct {
	db   *sql.DB
	path string
}

// NewRegistry opens or creates the registry database at the given path.
func NewRegistry(path string) (*Registry, error) {
	if err := file.MkDir(filepath.Dir(path)); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("could not open registry '%s': %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create registry schema in '%s': %w", path, err)
	}
	return &Registry{
		db:   db,
		path: path,
	}, nil
}

// Put stores the json encoding of the value, replacing any previous value for the key.
func (r *Registry) Put(key storage.K, value interface{}) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("could not encode value for '%+v': %w", key, err)
	}
	_, err = r.db.Exec(
		`INSERT OR REPLACE INTO registry (run, label, value, created) VALUES (?, ?, ?, ?)`,
		key.Run, key.Label, string(b), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("could not put '%+v' into '%s': %w", key, r.path, err)
	}
	return nil
}

// Get decodes the value stored for the key.
func (r *Registry) Get(key storage.K, value interface{}) error {
	var v string
	err := r.db.QueryRow(`SELECT value FROM registry WHERE run = ? AND label = ?`, key.Run, key.Label).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("no value for '%+v': %w", key, storage.NotFoundErr)
	}
	if err != nil {
		return fmt.Errorf("could not get '%+v' from '%s': %w", key, r.path, err)
	}
	if err := json.Unmarshal([]byte(v), value); err != nil {
		return fmt.Errorf("could not decode value for '%+v': %s: %w", key, err.Error(), storage.CouldNotLoadErr)
	}
	return nil
}

// Runs returns the run ids that have a value for the given label, oldest first.
func (r *Registry) Runs(label string) ([]string, error) {
	rows, err := r.db.Query(`SELECT run FROM registry WHERE label = ? ORDER BY created, run`, label)
	if err != nil {
		return nil, fmt.Errorf("could not query runs from '%s': %w", r.path, err)
	}
	defer rows.Close()

	runs := make([]string, 0)
	for rows.Next() {
		var run string
		if err := rows.Scan(&run); err != nil {
			return nil, fmt.Errorf("could not scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Close closes the database.
func (r *Registry) Close() error {
	return r.db.Close()
}
