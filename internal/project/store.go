// Package project persists the document to a local key-value store and
// handles schema versioning of the stored format.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const storeFile = "store.json"

// Store is a JSON-backed key-value store under the user config directory.
// Values are kept as raw JSON so unrelated keys survive round trips.
type Store struct {
	mu     sync.RWMutex
	values map[string]json.RawMessage
	path   string
}

// Open loads the store at the given path, creating an empty one when the
// file does not exist yet.
func Open(path string) *Store {
	s := &Store{
		values: make(map[string]json.RawMessage),
		path:   path,
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return s
	}
	_ = json.Unmarshal(data, &s.values)
	return s
}

// OpenDefault opens the store at its standard location,
// ~/.config/layout-studio/store.json (platform equivalent).
func OpenDefault() *Store {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return Open(filepath.Join(configDir, "layout-studio", storeFile))
}

// Put marshals the value under key and writes the store to disk.
func (s *Store) Put(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %q: %w", key, err)
	}

	s.mu.Lock()
	s.values[key] = data
	blob, err := json.Marshal(s.values)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("marshal store: %w", err)
	}

	return s.writeStore(blob)
}

// writeStore replaces the store file atomically: the blob is written to a
// temp file in the same directory and renamed over the target, so a crash
// mid-write leaves the previous store intact instead of a truncated one.
func (s *Store) writeStore(blob []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, storeFile+".tmp-*")
	if err != nil {
		return fmt.Errorf("create store temp: %w", err)
	}
	if _, err := tmp.Write(blob); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write store: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write store: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace store: %w", err)
	}
	return nil
}

// Get unmarshals the value stored under key. The bool result is false when
// the key is absent.
func (s *Store) Get(key string, value any) (bool, error) {
	s.mu.RLock()
	raw, ok := s.values[key]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, value); err != nil {
		return true, fmt.Errorf("unmarshal %q: %w", key, err)
	}
	return true, nil
}

// Delete removes a key and writes the store to disk.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	delete(s.values, key)
	blob, err := json.Marshal(s.values)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("marshal store: %w", err)
	}
	return s.writeStore(blob)
}
