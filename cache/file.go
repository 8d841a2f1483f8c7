package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FileCache is a file-backed cache implementation. All entries live in a
// single JSON document; every mutation rewrites the file atomically via a
// temp file and rename. It is safe for concurrent use within one process
// but performs no cross-process locking.
type FileCache struct {
	path string

	mu      sync.Mutex
	entries map[string][]byte
	loaded  bool
}

// NewFileCache creates a file-backed cache at path. The file and its parent
// directory are created on first write; a missing file reads as empty.
func NewFileCache(path string) (*FileCache, error) {
	if path == "" {
		return nil, errors.New("cache: file path is empty")
	}
	return &FileCache{path: path}, nil
}

// Get retrieves a value from the cache. Returns (nil, false) on miss or
// when the backing file cannot be read.
func (c *FileCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.loadLocked(); err != nil {
		return nil, false
	}

	value, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return value, true
}

// Set stores a value and persists the whole document to disk.
func (c *FileCache) Set(_ context.Context, key string, value []byte) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.loadLocked(); err != nil {
		return err
	}

	c.entries[key] = value
	return c.persistLocked()
}

// Delete removes a value and persists the change. Idempotent - no error on miss.
func (c *FileCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.loadLocked(); err != nil {
		return err
	}

	if _, ok := c.entries[key]; !ok {
		return nil
	}

	delete(c.entries, key)
	return c.persistLocked()
}

// loadLocked reads the backing file once. Caller must hold mu.
func (c *FileCache) loadLocked() error {
	if c.loaded {
		return nil
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			c.entries = make(map[string][]byte)
			c.loaded = true
			return nil
		}
		return fmt.Errorf("cache: read %s: %w", c.path, err)
	}

	entries := make(map[string][]byte)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &entries); err != nil {
			return fmt.Errorf("cache: parse %s: %w", c.path, err)
		}
	}

	c.entries = entries
	c.loaded = true
	return nil
}

// persistLocked rewrites the backing file. Caller must hold mu.
func (c *FileCache) persistLocked() error {
	data, err := json.Marshal(c.entries)
	if err != nil {
		return fmt.Errorf("cache: encode entries: %w", err)
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("cache: create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".cache-*")
	if err != nil {
		return fmt.Errorf("cache: create temp file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("cache: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("cache: close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), c.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("cache: replace %s: %w", c.path, err)
	}
	return nil
}

// Ensure FileCache implements Cache
var _ Cache = (*FileCache)(nil)
