package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Well-known keys for the cross-process session state. The pid and audio
// path are kept separate so each can be individually stale and individually
// cleaned up.
const (
	KeyPID       = "whisp-away-recording.pid"
	KeyAudioPath = "whisp-away-audio-file.tmp"
)

// Store is the single gateway to the shared session state. The lock file and
// the keys below are the only cross-process mutable state in the system; all
// access goes through this interface so the coordinator can be tested against
// an in-memory implementation.
type Store interface {
	// Get returns the value and whether the key exists.
	Get(key string) (string, bool, error)
	// Put writes the value atomically.
	Put(key, value string) error
	// Delete removes the key; deleting a missing key is not an error.
	Delete(key string) error
	// CompareAndDelete removes the key only if it still holds expect.
	CompareAndDelete(key, expect string) (bool, error)
}

// FileStore keeps each key as a small file under the runtime directory.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key)
}

func (s *FileStore) Get(key string) (string, bool, error) {
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return strings.TrimSpace(string(data)), true, nil
}

func (s *FileStore) Put(key, value string) error {
	// Write-then-rename so readers never observe a partial value.
	tmp, err := os.CreateTemp(s.dir, key+".*")
	if err != nil {
		return fmt.Errorf("staging %s: %w", key, err)
	}
	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), s.path(key)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("committing %s: %w", key, err)
	}
	return nil
}

func (s *FileStore) Delete(key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *FileStore) CompareAndDelete(key, expect string) (bool, error) {
	current, ok, err := s.Get(key)
	if err != nil || !ok {
		return false, err
	}
	if current != expect {
		return false, nil
	}
	return true, s.Delete(key)
}

// MemStore is an in-memory Store for tests.
type MemStore struct {
	mu   sync.Mutex
	data map[string]string
}

func NewMemStore() *MemStore {
	return &MemStore{data: make(map[string]string)}
}

func (s *MemStore) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *MemStore) Put(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *MemStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *MemStore) CompareAndDelete(key, expect string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data[key] != expect {
		return false, nil
	}
	delete(s.data, key)
	return true, nil
}
