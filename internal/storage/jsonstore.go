// Package storage is the persistence layer of the simulated bank: a JSON
// key/value snapshot store over a data directory, one file per key. Writes
// are atomic (tmp file + rename) so a crash mid-write never corrupts an
// existing snapshot.
package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Well-known keys. Per-user ledgers use KeyTransactions(userID).
const (
	KeyRegisteredUsers = "registeredUsers"
	KeyCredentials     = "userCredentials"
)

// KeyTransactions returns the ledger key for one user.
func KeyTransactions(userID string) string {
	return "transactions_" + userID
}

// ErrNoKey is returned by Load when no snapshot exists for the key.
var ErrNoKey = errors.New("storage: key not found")

// Store persists JSON snapshots under a directory. A single mutex serializes
// writes; readers of distinct keys never observe partial files because of the
// rename strategy.
type Store struct {
	mu  sync.Mutex
	dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Store{dir: dir}, nil
}

// Save serializes v and atomically replaces the snapshot for key.
func (s *Store) Save(key string, v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(key)
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Load decodes the snapshot for key into v. Missing keys report ErrNoKey so
// callers can distinguish first boot from a broken snapshot.
func (s *Store) Load(key string, v interface{}) error {
	f, err := os.Open(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNoKey
		}
		return err
	}
	defer f.Close()
	return json.NewDecoder(f).Decode(v)
}

// Delete removes the snapshot for key. Deleting a missing key is not an error.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *Store) path(key string) string {
	// Keys are internal constants, but keep filenames tame anyway.
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		}
		return '-'
	}, key)
	return filepath.Join(s.dir, safe+".json")
}
