package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Store is the persisted key/value settings file. Values are plain strings
// grouped by section; typed access goes through Settings.
type Store struct {
	path     string
	mu       sync.RWMutex
	saveMu   sync.Mutex
	sections map[string]map[string]string
}

// OpenStore reads the settings file at path. A missing file yields an empty store.
func OpenStore(path string) (*Store, error) {
	s := &Store{path: path, sections: make(map[string]map[string]string)}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("settings store: %w", err)
	}
	if err := yaml.Unmarshal(data, &s.sections); err != nil {
		return nil, fmt.Errorf("settings store: %w", err)
	}
	if s.sections == nil {
		s.sections = make(map[string]map[string]string)
	}
	return s, nil
}

func (s *Store) Path() string { return s.path }

func (s *Store) HasValue(section, key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sections[section][key]
	return ok
}

// Get returns the stored value or def when the key is absent.
func (s *Store) Get(section, key, def string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.sections[section][key]; ok {
		return v
	}
	return def
}

func (s *Store) Set(section, key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sections[section] == nil {
		s.sections[section] = make(map[string]string)
	}
	s.sections[section][key] = value
}

// Save writes the store back to disk through a temp file and rename.
// Concurrent saves are serialised and the last one wins.
func (s *Store) Save() error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.RLock()
	data, err := yaml.Marshal(s.sections)
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("settings store: marshal: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("settings store: mkdir %s: %w", dir, err)
	}
	f, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("settings store: %w", err)
	}
	tmp := f.Name()
	_, werr := f.Write(data)
	cerr := f.Close()
	if err := errors.Join(werr, cerr); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("settings store: write: %w", err)
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("settings store: chmod: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("settings store: rename: %w", err)
	}
	return nil
}
