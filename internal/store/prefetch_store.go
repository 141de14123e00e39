package store

import "sync"

// PrefetchStore holds the per-context view geometry and data-generation
// markers, plus the two boolean triggers downstream observers poll to
// learn that more data is renderable or that the visible region should
// re-evaluate.
type PrefetchStore struct {
	mu sync.RWMutex

	timestamp   int64
	windowWidth float64
	totalHeight float64
	dataLength  int
	rowCount    int
	locateTo    *int
	initialized bool

	fetchRowTrigger   bool
	visibleRowTrigger bool
}

// NewPrefetchStore creates an empty prefetch store
func NewPrefetchStore() *PrefetchStore {
	return &PrefetchStore{}
}

// Timestamp returns the current data-generation timestamp
func (s *PrefetchStore) Timestamp() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.timestamp
}

// SetTimestamp sets the current data-generation timestamp
func (s *PrefetchStore) SetTimestamp(ts int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timestamp = ts
}

// WindowWidth returns the live viewport width
func (s *PrefetchStore) WindowWidth() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.windowWidth
}

// SetWindowWidth sets the live viewport width
func (s *PrefetchStore) SetWindowWidth(w float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.windowWidth = w
}

// TotalHeight returns the accumulated total grid height
func (s *PrefetchStore) TotalHeight() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totalHeight
}

// AddTotalHeight adds a height delta to the total grid height
func (s *PrefetchStore) AddTotalHeight(delta float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totalHeight += delta
}

// SetTotalHeight sets the total grid height
func (s *PrefetchStore) SetTotalHeight(h float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totalHeight = h
}

// CalculateLength records the dataset length and derives the row count
// from the batch size, seeding the nominal total height.
func (s *PrefetchStore) CalculateLength(dataLength, batchSize int, nominalRowHeight float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dataLength = dataLength
	s.rowCount = (dataLength + batchSize - 1) / batchSize
	s.totalHeight = float64(s.rowCount) * nominalRowHeight
}

// DataLength returns the dataset length
func (s *PrefetchStore) DataLength() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dataLength
}

// RowCount returns the number of rows derived from the dataset length
func (s *PrefetchStore) RowCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rowCount
}

// LocateTo returns the locate target, nil when none
func (s *PrefetchStore) LocateTo() *int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.locateTo
}

// SetLocateTo sets the locate target
func (s *PrefetchStore) SetLocateTo(idx *int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locateTo = idx
}

// Initialized reports whether the first prefetch has completed
func (s *PrefetchStore) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized
}

// MarkInitialized records that the first prefetch has completed
func (s *PrefetchStore) MarkInitialized() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initialized = true
}

// FlipFetchRowTrigger toggles the row-fetch trigger
func (s *PrefetchStore) FlipFetchRowTrigger() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetchRowTrigger = !s.fetchRowTrigger
}

// FetchRowTrigger returns the row-fetch trigger value
func (s *PrefetchStore) FetchRowTrigger() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fetchRowTrigger
}

// FlipVisibleRowTrigger toggles the visible-region trigger
func (s *PrefetchStore) FlipVisibleRowTrigger() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visibleRowTrigger = !s.visibleRowTrigger
}

// VisibleRowTrigger returns the visible-region trigger value
func (s *PrefetchStore) VisibleRowTrigger() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.visibleRowTrigger
}
