package store

import (
	"sort"
	"sync"

	"github.com/hsa00000/urocissa/internal/model"
)

// LayoutStore holds the computed rows: the renderer's sole read source
// for what row sits at what vertical position.
type LayoutStore struct {
	mu              sync.RWMutex
	rows            map[int]model.Row
	firstRowFetched bool
}

// NewLayoutStore creates an empty layout store
func NewLayoutStore() *LayoutStore {
	return &LayoutStore{rows: make(map[int]model.Row)}
}

// Upsert stores a row by its index
func (s *LayoutStore) Upsert(row model.Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[row.Index] = row
}

// Get returns the row at an index
func (s *LayoutStore) Get(index int) (model.Row, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.rows[index]
	return row, ok
}

// ShiftAfter adds delta to the cached offset of every stored row with
// an index strictly greater than the given one. This is the O(rows)
// propagation step of an accepted height correction.
func (s *LayoutStore) ShiftAfter(index int, delta float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, row := range s.rows {
		if i > index {
			row.Offset += delta
			s.rows[i] = row
		}
	}
}

// Rows returns all stored rows ordered by index
func (s *LayoutStore) Rows() []model.Row {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Row, 0, len(s.rows))
	for _, row := range s.rows {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// Len returns the number of stored rows
func (s *LayoutStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}

// MarkFirstRowFetched records that at least one row has been committed
func (s *LayoutStore) MarkFirstRowFetched() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.firstRowFetched = true
}

// FirstRowFetched reports whether any row has been committed yet
func (s *LayoutStore) FirstRowFetched() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.firstRowFetched
}

// Clear drops all rows. Called on layout change.
func (s *LayoutStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = make(map[int]model.Row)
	s.firstRowFetched = false
}
