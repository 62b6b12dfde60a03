package internal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
)

// Storage is a key-value store holding one serialized blob per key
type Storage interface {
	// Get returns the blob for key. ok is false when the key has never been set.
	Get(ctx context.Context, key string) (blob []byte, ok bool, err error)
	Set(ctx context.Context, key string, blob []byte) error
}

// NewStorage builds the backend named in cfg
func NewStorage(cfg StorageConfig) (Storage, error) {
	switch cfg.Backend {
	case "", "file":
		return NewFileStorage(cfg.Dir), nil
	case "memory":
		return NewMemoryStorage(), nil
	case "redis":
		rs, err := NewRedisStorage(cfg.Redis)
		if err != nil {
			return nil, err
		}
		return rs, nil
	default:
		return nil, fmt.Errorf("%w: %s (available: file, memory, redis)", ErrUnknownStorage, cfg.Backend)
	}
}

// MemoryStorage keeps blobs in process memory
type MemoryStorage struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{blobs: make(map[string][]byte)}
}

func (m *MemoryStorage) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	blob, ok := m.blobs[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), blob...), true, nil
}

func (m *MemoryStorage) Set(_ context.Context, key string, blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = append([]byte(nil), blob...)
	return nil
}

// FileStorage keeps each key in its own file, <dir>/<key>.json
type FileStorage struct {
	dir string
}

func NewFileStorage(dir string) *FileStorage {
	if dir == "" {
		dir = DefaultDataDir()
	}
	return &FileStorage{dir: dir}
}

// Dir returns the directory the files live in
func (f *FileStorage) Dir() string {
	return f.dir
}

var validKey = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

func (f *FileStorage) path(key string) (string, error) {
	if !validKey.MatchString(key) || key == "." || key == ".." {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(f.dir, key+".json"), nil
}

func (f *FileStorage) Get(_ context.Context, key string) ([]byte, bool, error) {
	path, err := f.path(key)
	if err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, true, nil
}

// Set writes to a temp file and renames it over the target, so readers never see
// a half-written blob.
func (f *FileStorage) Set(_ context.Context, key string, blob []byte) error {
	path, err := f.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(f.dir, 0755); err != nil {
		return fmt.Errorf("creating directory %s: %w", f.dir, err)
	}

	tmp, err := os.CreateTemp(f.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(blob); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
