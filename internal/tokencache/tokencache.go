// Package tokencache persists the session's token pair between runs as a
// human-inspectable JSON file.
package tokencache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ksred/tradervolt-migrate/internal/api"
)

// FileCache stores the token pair at a fixed path with owner-only
// permissions.
type FileCache struct {
	path string
}

// NewFileCache creates a cache backed by the given file path
func NewFileCache(path string) *FileCache {
	return &FileCache{path: path}
}

// Load reads the cached token pair. A missing file is not an error: the
// session simply falls through to refresh or login.
func (c *FileCache) Load() (*api.TokenPair, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read token cache: %w", err)
	}

	var pair api.TokenPair
	if err := json.Unmarshal(data, &pair); err != nil {
		return nil, fmt.Errorf("failed to parse token cache: %w", err)
	}
	return &pair, nil
}

// Save writes the token pair, creating parent directories as needed
func (c *FileCache) Save(pair *api.TokenPair) error {
	data, err := json.MarshalIndent(pair, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create token cache directory: %w", err)
		}
	}
	if err := os.WriteFile(c.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write token cache: %w", err)
	}
	return nil
}

// NopCache is a cache that stores nothing, for one-shot runs and tests
type NopCache struct{}

func (NopCache) Load() (*api.TokenPair, error)  { return nil, nil }
func (NopCache) Save(pair *api.TokenPair) error { return nil }
