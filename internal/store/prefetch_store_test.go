package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrefetchStore_CalculateLength(t *testing.T) {
	tests := []struct {
		name       string
		dataLength int
		rowCount   int
	}{
		{"empty dataset", 0, 0},
		{"exactly one batch", 100, 1},
		{"one over a batch", 101, 2},
		{"partial batch", 42, 1},
		{"many batches", 950, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewPrefetchStore()
			s.CalculateLength(tt.dataLength, 100, 6000)

			assert.Equal(t, tt.dataLength, s.DataLength())
			assert.Equal(t, tt.rowCount, s.RowCount())
			assert.Equal(t, float64(tt.rowCount)*6000, s.TotalHeight())
		})
	}
}

func TestPrefetchStore_Triggers(t *testing.T) {
	s := NewPrefetchStore()
	assert.False(t, s.FetchRowTrigger())
	assert.False(t, s.VisibleRowTrigger())

	s.FlipFetchRowTrigger()
	s.FlipVisibleRowTrigger()
	assert.True(t, s.FetchRowTrigger())
	assert.True(t, s.VisibleRowTrigger())

	s.FlipFetchRowTrigger()
	assert.False(t, s.FetchRowTrigger())
}

func TestPrefetchStore_TotalHeightAdjustment(t *testing.T) {
	s := NewPrefetchStore()
	s.CalculateLength(300, 100, 6000)

	// An accepted row correction grows the scroll range
	s.AddTotalHeight(140)
	assert.Equal(t, 18140.0, s.TotalHeight())

	s.AddTotalHeight(-40)
	assert.Equal(t, 18100.0, s.TotalHeight())
}

func TestPrefetchStore_LocateTo(t *testing.T) {
	s := NewPrefetchStore()
	assert.Nil(t, s.LocateTo())

	idx := 57
	s.SetLocateTo(&idx)
	assert.Equal(t, 57, *s.LocateTo())

	s.SetLocateTo(nil)
	assert.Nil(t, s.LocateTo())
}
