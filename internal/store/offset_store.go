package store

import "sync"

// OffsetStore is the incremental-height ledger: rowIndex -> measured
// extra height, plus the running total of every correction applied so
// far. Each row contributes at most once.
type OffsetStore struct {
	mu      sync.RWMutex
	offsets map[int]float64
	total   float64
}

// NewOffsetStore creates an empty offset ledger
func NewOffsetStore() *OffsetStore {
	return &OffsetStore{offsets: make(map[int]float64)}
}

// Record stores the measured offset for a row index. Returns false
// without mutating anything when the index already has an offset.
func (s *OffsetStore) Record(index int, offset float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.offsets[index]; exists {
		return false
	}
	s.offsets[index] = offset
	s.total += offset
	return true
}

// Has reports whether a row index already has a recorded offset
func (s *OffsetStore) Has(index int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.offsets[index]
	return ok
}

// Get returns the recorded offset for a row index
func (s *OffsetStore) Get(index int) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.offsets[index]
	return v, ok
}

// AccumulatedAt returns the sum of all recorded offsets for rows with
// index <= the given index: the cumulative shift of that row's bottom
// edge relative to the nominal layout.
func (s *OffsetStore) AccumulatedAt(index int) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var sum float64
	for i, v := range s.offsets {
		if i <= index {
			sum += v
		}
	}
	return sum
}

// Total returns the running total of all recorded offsets
func (s *OffsetStore) Total() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.total
}

// Len returns the number of rows with recorded offsets
func (s *OffsetStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.offsets)
}

// Clear drops all recorded offsets
func (s *OffsetStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offsets = make(map[int]float64)
	s.total = 0
}
