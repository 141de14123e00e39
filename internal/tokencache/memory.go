package tokencache

import "sync"

// MemoryCache implements Cache with in-process maps. State does not
// survive restarts; meant for tests and single-run tools.
type MemoryCache struct {
	mu     sync.RWMutex
	tokens map[string]string
	shares map[string]ShareInfo
}

// NewMemoryCache creates an empty in-memory cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		tokens: make(map[string]string),
		shares: make(map[string]ShareInfo),
	}
}

// Put stores a token for a content identifier
func (c *MemoryCache) Put(key, token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens[key] = token
	return nil
}

// Get retrieves the token for a content identifier
func (c *MemoryCache) Get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	token, ok := c.tokens[key]
	return token, ok
}

// Delete removes the token for a content identifier
func (c *MemoryCache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.tokens, key)
	return nil
}

// PutShare stores a share descriptor under its composite key
func (c *MemoryCache) PutShare(info ShareInfo) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shares[ShareKey(info.AlbumId, info.ShareId)] = info
	return nil
}

// GetShare retrieves the share descriptor for a composite key
func (c *MemoryCache) GetShare(albumId, shareId string) (ShareInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	info, ok := c.shares[ShareKey(albumId, shareId)]
	return info, ok
}

// DeleteShare removes the share descriptor for a composite key
func (c *MemoryCache) DeleteShare(albumId, shareId string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.shares, ShareKey(albumId, shareId))
	return nil
}

// Close is a no-op for the memory backend
func (c *MemoryCache) Close() error {
	return nil
}
