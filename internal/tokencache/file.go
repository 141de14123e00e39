package tokencache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// schemaVersion 1 held only the token namespace; version 2 added the
// share namespace. Loading a version 1 document keeps its tokens and
// starts an empty share table.
const schemaVersion = 2

type fileDocument struct {
	Version int                  `json:"version"`
	Tokens  map[string]string    `json:"tokens"`
	Shares  map[string]ShareInfo `json:"shares,omitempty"`
}

// FileCache implements Cache as a single JSON document on disk,
// rewritten atomically on every mutation. Survives restarts; shared
// between the engine and the media proxy.
type FileCache struct {
	mu     sync.RWMutex
	path   string
	doc    fileDocument
	logger *zap.Logger
}

// NewFileCache opens (or creates) the cache file at path
func NewFileCache(path string, logger *zap.Logger) (*FileCache, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &FileCache{
		path:   path,
		logger: logger,
		doc: fileDocument{
			Version: schemaVersion,
			Tokens:  make(map[string]string),
			Shares:  make(map[string]ShareInfo),
		},
	}
	if err := c.load(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *FileCache) load() error {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read token cache file: %w", err)
	}

	var doc fileDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		// A corrupt cache only costs re-issued tokens; start fresh.
		c.logger.Warn("Token cache file corrupt, starting empty",
			zap.String("path", c.path),
			zap.Error(err))
		return nil
	}

	if doc.Tokens == nil {
		doc.Tokens = make(map[string]string)
	}
	if doc.Shares == nil {
		doc.Shares = make(map[string]ShareInfo)
	}
	if doc.Version < schemaVersion {
		c.logger.Info("Upgrading token cache schema",
			zap.Int("from", doc.Version),
			zap.Int("to", schemaVersion))
		doc.Version = schemaVersion
	}
	c.doc = doc
	return nil
}

// save writes the document atomically. Callers hold the write lock.
func (c *FileCache) save() error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("failed to create token cache directory: %w", err)
	}
	data, err := json.MarshalIndent(&c.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal token cache: %w", err)
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write token cache: %w", err)
	}
	return os.Rename(tmp, c.path)
}

// Put stores a token for a content identifier
func (c *FileCache) Put(key, token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.doc.Tokens[key] = token
	return c.save()
}

// Get retrieves the token for a content identifier
func (c *FileCache) Get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	token, ok := c.doc.Tokens[key]
	return token, ok
}

// Delete removes the token for a content identifier
func (c *FileCache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.doc.Tokens, key)
	return c.save()
}

// PutShare stores a share descriptor under its composite key
func (c *FileCache) PutShare(info ShareInfo) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.doc.Shares[ShareKey(info.AlbumId, info.ShareId)] = info
	return c.save()
}

// GetShare retrieves the share descriptor for a composite key
func (c *FileCache) GetShare(albumId, shareId string) (ShareInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	info, ok := c.doc.Shares[ShareKey(albumId, shareId)]
	return info, ok
}

// DeleteShare removes the share descriptor for a composite key
func (c *FileCache) DeleteShare(albumId, shareId string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.doc.Shares, ShareKey(albumId, shareId))
	return c.save()
}

// Close is a no-op; every mutation is already flushed
func (c *FileCache) Close() error {
	return nil
}
