package store

import (
	"sync"

	"github.com/hsa00000/urocissa/internal/model"
)

// DataStore is the normalized entity table for one isolation context:
// dataIndex -> enriched entity, identifier -> dataIndex, and the set of
// batches already synchronized. The dispatcher is its single writer.
type DataStore struct {
	mu           sync.RWMutex
	data         map[int]model.EnrichedEntity
	indexByID    map[string]int
	batchFetched map[int]bool
}

// NewDataStore creates an empty data store
func NewDataStore() *DataStore {
	return &DataStore{
		data:         make(map[int]model.EnrichedEntity),
		indexByID:    make(map[string]int),
		batchFetched: make(map[int]bool),
	}
}

// Upsert stores an entity at a data index, superseding any previous
// record at that index.
func (s *DataStore) Upsert(index int, e model.EnrichedEntity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[index] = e
	s.indexByID[e.Id] = index
}

// Get returns the entity at a data index
func (s *DataStore) Get(index int) (model.EnrichedEntity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.data[index]
	return e, ok
}

// IndexOf returns the data index of an entity identifier
func (s *DataStore) IndexOf(id string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.indexByID[id]
	return idx, ok
}

// GetByID returns the entity with the given identifier
func (s *DataStore) GetByID(id string) (model.EnrichedEntity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.indexByID[id]
	if !ok {
		return model.EnrichedEntity{}, false
	}
	e, ok := s.data[idx]
	return e, ok
}

// Len returns the number of stored entities
func (s *DataStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// MarkBatchFetched records that a batch has been synchronized
func (s *DataStore) MarkBatchFetched(batch int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batchFetched[batch] = true
}

// IsBatchFetched reports whether a batch has already been synchronized,
// preventing redundant re-fetch of that slice.
func (s *DataStore) IsBatchFetched(batch int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.batchFetched[batch]
}

// AddTags adds tags to the entity at index. Returns false when the
// index does not exist.
func (s *DataStore) AddTags(index int, tags []string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.data[index]
	if !ok {
		return false
	}
	// Entities returned by Get keep the old slice header, so grow a
	// private copy instead of appending into shared backing.
	updated := make([]string, len(e.Tags), len(e.Tags)+len(tags))
	copy(updated, e.Tags)
	for _, tag := range tags {
		if !contains(updated, tag) {
			updated = append(updated, tag)
		}
	}
	e.Tags = updated
	s.data[index] = e
	return true
}

// RemoveTags removes tags from the entity at index
func (s *DataStore) RemoveTags(index int, tags []string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.data[index]
	if !ok {
		return false
	}
	kept := e.Tags[:0:0]
	for _, tag := range e.Tags {
		if !contains(tags, tag) {
			kept = append(kept, tag)
		}
	}
	e.Tags = kept
	s.data[index] = e
	return true
}

// AddAlbums adds album memberships to the media entity at index.
// Albums cannot be nested, so album entities are rejected.
func (s *DataStore) AddAlbums(index int, albums []string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.data[index]
	if !ok {
		return false
	}
	media := e.Media()
	if media == nil {
		return false
	}
	// The media fields pointer is shared with every entity copy Get
	// has handed out; mutate a private copy, never through the alias.
	fields := *media
	updated := make([]string, len(fields.Albums), len(fields.Albums)+len(albums))
	copy(updated, fields.Albums)
	for _, album := range albums {
		if !contains(updated, album) {
			updated = append(updated, album)
		}
	}
	fields.Albums = updated
	e.SetMedia(fields)
	s.data[index] = e
	return true
}

// RemoveAlbums removes album memberships from the media entity at index
func (s *DataStore) RemoveAlbums(index int, albums []string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.data[index]
	if !ok {
		return false
	}
	media := e.Media()
	if media == nil {
		return false
	}
	fields := *media
	kept := fields.Albums[:0:0]
	for _, album := range fields.Albums {
		if !contains(albums, album) {
			kept = append(kept, album)
		}
	}
	fields.Albums = kept
	e.SetMedia(fields)
	s.data[index] = e
	return true
}

// ClearAll drops every record. Called when the layout changes and all
// cached data belongs to a dead generation.
func (s *DataStore) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[int]model.EnrichedEntity)
	s.indexByID = make(map[string]int)
	s.batchFetched = make(map[int]bool)
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
