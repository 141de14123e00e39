package store

import "sync"

// TokenStore is the in-memory per-context mirror of the latest tokens
// seen: the session-wide timestamp token plus one hash token per
// content identifier. The durable token cache is written through
// separately by the dispatcher; this store serves synchronous reads on
// the interactive path.
type TokenStore struct {
	mu             sync.RWMutex
	timestampToken string
	hashTokens     map[string]string
}

// NewTokenStore creates an empty token store
func NewTokenStore() *TokenStore {
	return &TokenStore{hashTokens: make(map[string]string)}
}

// TimestampToken returns the current timestamp token
func (s *TokenStore) TimestampToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.timestampToken
}

// SetTimestampToken replaces the timestamp token
func (s *TokenStore) SetTimestampToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timestampToken = token
}

// HashToken returns the cached token for a content identifier
func (s *TokenStore) HashToken(hash string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, ok := s.hashTokens[hash]
	return token, ok
}

// SetHashToken stores the token for a content identifier,
// last-writer-wins.
func (s *TokenStore) SetHashToken(hash, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hashTokens[hash] = token
}

// DeleteHashToken removes the token for a content identifier
func (s *TokenStore) DeleteHashToken(hash string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.hashTokens, hash)
}

// Len returns the number of cached hash tokens
func (s *TokenStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.hashTokens)
}
