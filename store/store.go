// Package store persists player counters and settings in a flat YAML
// key-value file.
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/gobble/components"
)

// Well-known keys.
const (
	KeyHighScore   = "high_score"
	KeyPlayTime    = "play_time"
	KeyVolumeMusic = "volume.music"
	KeyVolumeSFX   = "volume.sfx"
	KeyMuteMusic   = "mute.music"
	KeyMuteSFX     = "mute.sfx"
)

// AbsorbedKey returns the counter key for consumptions of a category.
func AbsorbedKey(c components.Category) string {
	return "absorbed." + c.String()
}

// Store is a flat map of scalar values backed by a file. It is safe for
// concurrent use.
type Store struct {
	mu     sync.Mutex
	path   string
	values map[string]any
	dirty  bool
}

// New creates an empty store that saves to path. An empty path keeps the
// store in memory only.
func New(path string) *Store {
	return &Store{path: path, values: make(map[string]any)}
}

// Load reads the store at path. A missing file yields an empty store.
func Load(path string) (*Store, error) {
	s := New(path)
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading stats store: %w", err)
	}
	if err := yaml.Unmarshal(data, &s.values); err != nil {
		return nil, fmt.Errorf("parsing stats store: %w", err)
	}
	if s.values == nil {
		s.values = make(map[string]any)
	}
	return s, nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Int returns an integer value, or 0 if absent.
func (s *Store) Int(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch v := s.values[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

// Float returns a float value, or def if absent.
func (s *Store) Float(key string, def float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch v := s.values[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return def
}

// Bool returns a boolean value, or false if absent.
func (s *Store) Bool(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, _ := s.values[key].(bool)
	return v
}

// SetInt sets an integer value.
func (s *Store) SetInt(key string, v int) {
	s.set(key, v)
}

// SetFloat sets a float value.
func (s *Store) SetFloat(key string, v float64) {
	s.set(key, v)
}

// SetBool sets a boolean value.
func (s *Store) SetBool(key string, v bool) {
	s.set(key, v)
}

// AddInt increments an integer counter and returns the new value.
func (s *Store) AddInt(key string, delta int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, _ := s.values[key].(int)
	cur += delta
	s.values[key] = cur
	s.dirty = true
	return cur
}

// AddFloat increments a float counter and returns the new value.
func (s *Store) AddFloat(key string, delta float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var cur float64
	switch v := s.values[key].(type) {
	case float64:
		cur = v
	case int:
		cur = float64(v)
	}
	cur += delta
	s.values[key] = cur
	s.dirty = true
	return cur
}

// MaxInt raises an integer value to v if v is larger. Reports whether it changed.
func (s *Store) MaxInt(key string, v int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.values[key].(int)
	if ok && cur >= v {
		return false
	}
	s.values[key] = v
	s.dirty = true
	return true
}

// Keys returns all keys in sorted order.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Dirty reports whether there are unsaved changes.
func (s *Store) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

func (s *Store) set(key string, v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.values[key]; ok && old == v {
		return
	}
	s.values[key] = v
	s.dirty = true
}

// Save writes the store if it has unsaved changes. The file is replaced
// atomically.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty || s.path == "" {
		return nil
	}

	data, err := yaml.Marshal(s.values)
	if err != nil {
		return fmt.Errorf("marshaling stats store: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating stats store dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(dir, ".stats-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing stats store: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing stats store: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing stats store: %w", err)
	}

	s.dirty = false
	return nil
}
