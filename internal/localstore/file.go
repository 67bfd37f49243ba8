package localstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps the two durable entries in a single JSON document on disk.
// It is the default backend and stands in for the browser's local storage.
type FileStore struct {
	mu   sync.Mutex
	path string
	data map[string]string
}

// NewFileStore opens (or initializes) the document at path. A missing file
// starts empty; a corrupt file is recovered silently by starting over, the
// same way the dashboard discards unreadable local storage.
func NewFileStore(path string) (*FileStore, error) {
	fs := &FileStore{path: path, data: map[string]string{}}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fs, nil
		}
		return nil, fmt.Errorf("open local store: %w", err)
	}
	if err := json.Unmarshal(raw, &fs.data); err != nil {
		fs.data = map[string]string{}
	}
	return fs, nil
}

func (fs *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	v, ok := fs.data[key]
	return v, ok, nil
}

func (fs *FileStore) Set(_ context.Context, key, value string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.data[key] = value
	return fs.flushLocked()
}

// flushLocked writes the whole document via a temp-file rename so a crash
// mid-write never leaves a half-serialized store.
func (fs *FileStore) flushLocked() error {
	raw, err := json.MarshalIndent(fs.data, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize local store: %w", err)
	}
	if dir := filepath.Dir(fs.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create store directory: %w", err)
		}
	}
	tmp := fs.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write local store: %w", err)
	}
	return os.Rename(tmp, fs.path)
}

func (fs *FileStore) Close() error { return nil }
