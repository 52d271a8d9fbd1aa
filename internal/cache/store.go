package cache

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	// ErrUnavailable indicates the cache file cannot be created or written.
	ErrUnavailable = errors.New("metadata cache unavailable")

	// ErrCorrupt indicates the cache file holds something other than a
	// metadata list.
	ErrCorrupt = errors.New("metadata cache is corrupt")

	// ErrInvalidUsername indicates the username is empty.
	ErrInvalidUsername = errors.New("invalid username")

	// ErrInvalidMetadata indicates metadata is missing a name or a usable email.
	ErrInvalidMetadata = errors.New("invalid metadata")
)

const (
	filePerm = 0600
	dirPerm  = 0700
)

// DefaultPath returns ~/.variant.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("%w: cannot find home directory", ErrUnavailable)
	}
	return filepath.Join(home, FileName), nil
}

// Store reads and writes the metadata list kept in a single JSON file.
//
// Write is a read-modify-write of the whole file. It holds an advisory lock
// on <path>.lock, but a writer that ignores the lock can still race it and
// the last rename wins.
type Store struct {
	path string
}

// Init opens the store at path, creating an empty file if none exists.
func Init(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return nil, fmt.Errorf("%w: creating directory: %v", ErrUnavailable, err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE, filePerm) //nolint:gosec // G304: path from user home or config
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return &Store{path: path}, nil
}

// Open returns a store for path without touching the filesystem. Use it to
// inspect a cache that may not exist.
func Open(path string) *Store {
	return &Store{path: path}
}

// Path returns the cache file location.
func (s *Store) Path() string {
	return s.path
}

// ReadAll returns every record in insertion order. A missing or empty file
// is an empty list.
func (s *Store) ReadAll() ([]Metadata, error) {
	data, err := os.ReadFile(s.path) //nolint:gosec // G304: path from user home or config
	if err != nil {
		if os.IsNotExist(err) {
			return []Metadata{}, nil
		}
		return nil, fmt.Errorf("%w: reading %s: %v", ErrUnavailable, s.path, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return []Metadata{}, nil
	}

	var list []Metadata
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, s.path, err)
	}
	if list == nil {
		list = []Metadata{}
	}

	return list, nil
}

// ReadOne returns the record for username, or nil if there is none.
func (s *Store) ReadOne(username string) (*Metadata, error) {
	list, err := s.ReadAll()
	if err != nil {
		return nil, err
	}

	for i := range list {
		if list[i].Username == username {
			return &list[i], nil
		}
	}

	return nil, nil
}

// Write upserts m by username. An existing record keeps its position and
// gets m's name and email; otherwise m is appended.
func (s *Store) Write(m Metadata) error {
	if m.Username == "" {
		return ErrInvalidUsername
	}

	lock := flock.New(s.path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("%w: locking: %v", ErrUnavailable, err)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			log.Warn().Err(err).Str("path", s.path).Msg("releasing cache lock")
		}
	}()

	list, err := s.ReadAll()
	if err != nil {
		return err
	}

	list = upsert(list, m)
	return s.save(list)
}

func upsert(list []Metadata, m Metadata) []Metadata {
	for i := range list {
		if list[i].Username == m.Username {
			list[i].Name = m.Name
			list[i].Email = m.Email
			return list
		}
	}
	return append(list, m)
}

// save replaces the cache file with list through a temp file and rename.
func (s *Store) save(list []Metadata) error {
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding metadata cache: %w", err)
	}

	tmp := fmt.Sprintf("%s.%s.tmp", s.path, uuid.NewString())
	if err := os.WriteFile(tmp, data, filePerm); err != nil {
		return fmt.Errorf("%w: writing %s: %v", ErrUnavailable, tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: replacing %s: %v", ErrUnavailable, s.path, err)
	}

	log.Debug().Str("path", s.path).Int("records", len(list)).Msg("wrote metadata cache")
	return nil
}
