// Package identity stores the registration properties that identify a user to
// the update service.
package identity

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

// Property keys.
const (
	KeyEmail     = "email"
	KeyUserHash  = "user-hash"
	KeyUserHash2 = "user-hash-2"
)

// Store is a get/set/clear property store.
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Clear(key string) error
}

// HalfHash returns the first half of the stored user hash, which is what the
// service accepts in place of the full credential. Unregistered users get "".
// The hash is split by characters, so a multi-byte rune is never cut.
func HalfHash(s Store) (string, error) {
	hash, ok, err := s.Get(KeyUserHash)
	if err != nil {
		return "", fmt.Errorf("failed to read user hash: %w", err)
	}
	if !ok {
		return "", nil
	}
	runes := []rune(hash)
	return string(runes[:len(runes)/2]), nil
}

// ClearRegistration removes every registration property from the store.
func ClearRegistration(s Store) error {
	for _, key := range []string{KeyEmail, KeyUserHash, KeyUserHash2} {
		if err := s.Clear(key); err != nil {
			return fmt.Errorf("failed to clear %s: %w", key, err)
		}
	}
	return nil
}

// MemoryStore keeps properties in memory.
type MemoryStore struct {
	mu    sync.Mutex
	props map[string]string
}

// NewMemoryStore creates a store seeded with the given properties.
func NewMemoryStore(seed map[string]string) *MemoryStore {
	props := make(map[string]string, len(seed))
	for k, v := range seed {
		props[k] = v
	}
	return &MemoryStore{props: props}
}

func (m *MemoryStore) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.props[key]
	return v, ok, nil
}

func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.props[key] = value
	return nil
}

func (m *MemoryStore) Clear(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.props, key)
	return nil
}

// FileStore persists properties as a flat TOML document.
// A missing file reads as an empty store.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a store backed by the file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) Get(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	props, err := f.load()
	if err != nil {
		return "", false, err
	}
	v, ok := props[key]
	return v, ok, nil
}

func (f *FileStore) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	props, err := f.load()
	if err != nil {
		return err
	}
	props[key] = value
	return f.save(props)
}

func (f *FileStore) Clear(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	props, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := props[key]; !ok {
		return nil
	}
	delete(props, key)
	return f.save(props)
}

func (f *FileStore) load() (map[string]string, error) {
	props := make(map[string]string)

	content, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return props, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read identity file: %w", err)
	}

	if err := toml.Unmarshal(content, &props); err != nil {
		return nil, fmt.Errorf("failed to parse identity file %s: %w", f.path, err)
	}
	return props, nil
}

func (f *FileStore) save(props map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return fmt.Errorf("failed to create identity directory: %w", err)
	}

	data, err := toml.Marshal(props)
	if err != nil {
		return fmt.Errorf("failed to marshal identity: %w", err)
	}

	if err := os.WriteFile(f.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write identity file: %w", err)
	}
	return nil
}
