// Package credentials persists the access token between API calls. The refresh token
// never passes through here; it only lives in the HTTP cookie jar.
package credentials

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Store holds at most one access token. Get returns "" when nothing is stored.
type Store interface {
	Get() (string, error)
	Set(token string) error
	Clear() error
}

// MemoryStore keeps the token in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Get() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, nil
}

func (m *MemoryStore) Set(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemoryStore) Clear() error {
	return m.Set("")
}

// FileStore keeps the token in a file only the current user can read.
type FileStore struct {
	mu   sync.Mutex
	path string
}

var _ Store = (*FileStore)(nil)

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultPath is the token file under the user's config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("user config dir: %w", err)
	}
	return filepath.Join(dir, "world-explorer", "token"), nil
}

func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) Get() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	b, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read token: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

func (f *FileStore) Set(token string) error {
	if token == "" {
		return f.Clear()
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}

	// write then rename so a reader never sees a half written token
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".token-*")
	if err != nil {
		return fmt.Errorf("create token file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod token file: %w", err)
	}
	if _, err := tmp.WriteString(token); err != nil {
		tmp.Close()
		return fmt.Errorf("write token: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close token file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

func (f *FileStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove token: %w", err)
	}
	return nil
}
