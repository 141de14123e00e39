package store

import (
	"sync"

	"github.com/hsa00000/urocissa/internal/model"
)

// TagStore holds the session-wide tag index. Main-scoped: shared by
// every isolation context, fetched at most once per session unless
// explicitly invalidated.
type TagStore struct {
	mu      sync.RWMutex
	tags    []model.TagInfo
	fetched bool
}

// NewTagStore creates an empty tag store
func NewTagStore() *TagStore {
	return &TagStore{}
}

// Fetched reports whether the tag index has been loaded this session
func (s *TagStore) Fetched() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fetched
}

// ApplyTags replaces the tag listing and marks the index as fetched
func (s *TagStore) ApplyTags(tags []model.TagInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tags = tags
	s.fetched = true
}

// Tags returns the current tag listing
func (s *TagStore) Tags() []model.TagInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.TagInfo, len(s.tags))
	copy(out, s.tags)
	return out
}

// Invalidate forces the next prefetch to re-fetch the index
func (s *TagStore) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetched = false
}

// AlbumStore holds the session-wide album index. Main-scoped.
type AlbumStore struct {
	mu      sync.RWMutex
	albums  map[string]model.AlbumInfo
	fetched bool
}

// NewAlbumStore creates an empty album store
func NewAlbumStore() *AlbumStore {
	return &AlbumStore{albums: make(map[string]model.AlbumInfo)}
}

// Fetched reports whether the album index has been loaded this session
func (s *AlbumStore) Fetched() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fetched
}

// ApplyAlbums replaces the album listing and marks the index as fetched
func (s *AlbumStore) ApplyAlbums(albums []model.AlbumInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.albums = make(map[string]model.AlbumInfo, len(albums))
	for _, album := range albums {
		s.albums[album.AlbumId] = album
	}
	s.fetched = true
}

// Get returns one album by id
func (s *AlbumStore) Get(albumId string) (model.AlbumInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.albums[albumId]
	return a, ok
}

// Len returns the number of indexed albums
func (s *AlbumStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.albums)
}

// Invalidate forces the next prefetch to re-fetch the index
func (s *AlbumStore) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetched = false
}

// ShareStore holds the resolved share of the currently open share
// context, when any. Main-scoped.
type ShareStore struct {
	mu       sync.RWMutex
	resolved *model.ResolvedShare
}

// NewShareStore creates an empty share store
func NewShareStore() *ShareStore {
	return &ShareStore{}
}

// Resolved returns the currently resolved share, nil outside share contexts
func (s *ShareStore) Resolved() *model.ResolvedShare {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resolved
}

// SetResolved replaces the resolved share
func (s *ShareStore) SetResolved(r *model.ResolvedShare) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resolved = r
}

// ScrollbarStore holds the ordered scrollbar summary markers
type ScrollbarStore struct {
	mu    sync.RWMutex
	marks []model.ScrollbarMark
}

// NewScrollbarStore creates an empty scrollbar store
func NewScrollbarStore() *ScrollbarStore {
	return &ScrollbarStore{}
}

// SetMarks replaces the scrollbar markers
func (s *ScrollbarStore) SetMarks(marks []model.ScrollbarMark) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marks = marks
}

// Marks returns the scrollbar markers
func (s *ScrollbarStore) Marks() []model.ScrollbarMark {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.ScrollbarMark, len(s.marks))
	copy(out, s.marks)
	return out
}

// LocationStore holds the scroll anchor: a row index the viewport is
// pinned to, suppressing layout updates for other rows. -1 means no
// anchor is active.
type LocationStore struct {
	mu     sync.RWMutex
	anchor int
}

// NewLocationStore creates a location store with no anchor
func NewLocationStore() *LocationStore {
	return &LocationStore{anchor: -1}
}

// Anchor returns the anchored row index, -1 when none
func (s *LocationStore) Anchor() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.anchor
}

// SetAnchor pins the viewport to a row index
func (s *LocationStore) SetAnchor(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.anchor = index
}

// ClearAnchor releases the pin
func (s *LocationStore) ClearAnchor() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.anchor = -1
}
