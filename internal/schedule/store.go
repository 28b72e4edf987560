package schedule

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/gofrs/flock"
)

// StoreFile represents the JSON structure for persistence.
type StoreFile struct {
	Version int    `json:"version"`
	Jobs    []*Job `json:"jobs"`
}

// Store persists jobs in a JSON file. A sibling .lock file serializes
// access between the bot and CLI invocations.
type Store struct {
	path string
	lock *flock.Flock
}

// NewStore creates a store at path. An empty path gives a store that keeps
// nothing.
func NewStore(path string) *Store {
	s := &Store{path: path}
	if path != "" {
		s.lock = flock.New(path + ".lock")
	}
	return s
}

// Path returns the store file path.
func (s *Store) Path() string { return s.path }

// Load reads all jobs.
func (s *Store) Load() ([]*Job, error) {
	if s.path == "" {
		return nil, nil
	}
	if err := s.ensureDir(); err != nil {
		return nil, err
	}
	if err := s.lock.RLock(); err != nil {
		return nil, fmt.Errorf("lock schedule store: %w", err)
	}
	defer func() { _ = s.lock.Unlock() }()

	return s.read()
}

// Save replaces the stored jobs.
func (s *Store) Save(jobs []*Job) error {
	if s.path == "" {
		return nil
	}
	if err := s.ensureDir(); err != nil {
		return err
	}
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("lock schedule store: %w", err)
	}
	defer func() { _ = s.lock.Unlock() }()

	return s.write(jobs)
}

// Update runs fn on the stored jobs and saves its result, holding the lock
// throughout.
func (s *Store) Update(fn func([]*Job) ([]*Job, error)) error {
	if s.path == "" {
		_, err := fn(nil)
		return err
	}
	if err := s.ensureDir(); err != nil {
		return err
	}
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("lock schedule store: %w", err)
	}
	defer func() { _ = s.lock.Unlock() }()

	jobs, err := s.read()
	if err != nil {
		return err
	}
	jobs, err = fn(jobs)
	if err != nil {
		return err
	}
	return s.write(jobs)
}

func (s *Store) ensureDir() error {
	return os.MkdirAll(filepath.Dir(s.path), 0755)
}

func (s *Store) read() ([]*Job, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var store StoreFile
	if err := json.Unmarshal(data, &store); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	return store.Jobs, nil
}

func (s *Store) write(jobs []*Job) error {
	sorted := make([]*Job, len(jobs))
	copy(sorted, jobs)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].CreatedAtMs != sorted[j].CreatedAtMs {
			return sorted[i].CreatedAtMs < sorted[j].CreatedAtMs
		}
		return sorted[i].ID < sorted[j].ID
	})

	data, err := json.MarshalIndent(StoreFile{Version: 1, Jobs: sorted}, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
