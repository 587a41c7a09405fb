// Package store persists the last settled geometry of tracked windows so it
// can be restored when the window reappears.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/1broseidon/winsettle/internal/window"
)

// Entry is the stored geometry of one window.
type Entry struct {
	Key       string          `json:"key"`
	Geometry  window.Geometry `json:"geometry"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type fileFormat struct {
	Windows map[string]Entry `json:"windows"`
}

// Store is a JSON-backed map from window key (usually WM_CLASS) to geometry.
// It is safe for concurrent use.
type Store struct {
	path string

	mu      sync.RWMutex
	entries map[string]Entry

	// saveMu orders whole saves so an older snapshot never replaces a newer file.
	saveMu sync.Mutex
	now     func() time.Time
}

// Open loads the store at path. A missing file yields an empty store.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("store path is empty")
	}
	s := &Store{
		path:    path,
		entries: make(map[string]Entry),
		now:     time.Now,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read geometry store %s: %w", path, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return s, nil
	}

	var f fileFormat
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse geometry store %s: %w", path, err)
	}
	for key, entry := range f.Windows {
		entry.Key = key
		s.entries[key] = entry
	}
	return s, nil
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

// Get returns the stored geometry for key.
func (s *Store) Get(key string) (window.Geometry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[key]
	return entry.Geometry, ok
}

// Put replaces the geometry for key.
func (s *Store) Put(key string, g window.Geometry) error {
	if err := validateKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = Entry{Key: key, Geometry: g, UpdatedAt: s.now()}
	return nil
}

// Apply folds a settled event into the geometry stored for key and returns
// the result. seed is used when nothing is stored yet. Events without
// geometry are rejected and leave the entry untouched.
func (s *Store) Apply(key string, seed window.Geometry, ev window.Event) (window.Geometry, error) {
	if err := validateKey(key); err != nil {
		return window.Geometry{}, err
	}
	if !window.Relevant(ev) {
		return window.Geometry{}, fmt.Errorf("event %s carries no geometry", ev)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	g := seed
	if entry, ok := s.entries[key]; ok {
		g = entry.Geometry
	}
	g = g.Apply(ev)
	s.entries[key] = Entry{Key: key, Geometry: g, UpdatedAt: s.now()}
	return g, nil
}

// Delete removes key. It reports whether an entry existed.
func (s *Store) Delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[key]
	delete(s.entries, key)
	return ok
}

// List returns all entries sorted by key.
func (s *Store) List() []Entry {
	s.mu.RLock()
	out := make([]Entry, 0, len(s.entries))
	for _, entry := range s.entries {
		out = append(out, entry)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].Key < out[j].Key
	})
	return out
}

// Save writes the store to disk atomically.
func (s *Store) Save() error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.RLock()
	f := fileFormat{Windows: make(map[string]Entry, len(s.entries))}
	for key, entry := range s.entries {
		f.Windows[key] = entry
	}
	s.mu.RUnlock()

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode geometry store: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".geometry-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write geometry store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write geometry store: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace geometry store: %w", err)
	}
	return nil
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("window key is required")
	}
	return nil
}
