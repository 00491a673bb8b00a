// Package credential persists the authentication token between runs, the
// way the web client kept it in browser local storage.
package credential

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const (
	keyToken  = "token"
	keyUserID = "userId"
)

// ErrNotFound is returned by Load when no token is stored.
var ErrNotFound = errors.New("credential: not found")

// Credential is the locally stored proof of authentication.
type Credential struct {
	Token  string
	UserID string
}

// Store is a small key/value table in a SQLite file.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the store at path. ":memory:" is accepted.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("credential: create dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("credential: open DB: %w", err)
	}
	// A single connection keeps ":memory:" databases coherent.
	db.SetMaxOpenConns(1)

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS local_storage (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("credential: migrate: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the value for key and whether it was present.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM local_storage WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("credential: get %s: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value.
func (s *Store) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO local_storage (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("credential: set %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM local_storage WHERE key = ?`, key); err != nil {
		return fmt.Errorf("credential: delete %s: %w", key, err)
	}
	return nil
}

// Load returns the stored credential or ErrNotFound. When no user id was
// stored alongside the token, it is taken from the token's claims.
func (s *Store) Load(ctx context.Context) (Credential, error) {
	token, ok, err := s.Get(ctx, keyToken)
	if err != nil {
		return Credential{}, err
	}
	if !ok || token == "" {
		return Credential{}, ErrNotFound
	}

	userID, _, err := s.Get(ctx, keyUserID)
	if err != nil {
		return Credential{}, err
	}
	if userID == "" {
		if claims, err := ParseClaims(token); err == nil {
			userID = claims.Subject()
		}
	}

	return Credential{Token: token, UserID: userID}, nil
}

// Save persists c.
func (s *Store) Save(ctx context.Context, c Credential) error {
	if err := s.Set(ctx, keyToken, c.Token); err != nil {
		return err
	}
	if c.UserID == "" {
		return s.Delete(ctx, keyUserID)
	}
	return s.Set(ctx, keyUserID, c.UserID)
}

// Clear removes the stored credential.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.Delete(ctx, keyToken); err != nil {
		return err
	}
	return s.Delete(ctx, keyUserID)
}
