package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOffsetStore_Record(t *testing.T) {
	s := NewOffsetStore()

	assert.True(t, s.Record(3, 40))
	assert.True(t, s.Has(3))

	v, ok := s.Get(3)
	assert.True(t, ok)
	assert.Equal(t, 40.0, v)
	assert.Equal(t, 40.0, s.Total())
	assert.Equal(t, 1, s.Len())
}

func TestOffsetStore_RecordIsIdempotentPerIndex(t *testing.T) {
	s := NewOffsetStore()

	assert.True(t, s.Record(5, 100))
	assert.False(t, s.Record(5, 999))

	// The second write must not mutate anything
	v, _ := s.Get(5)
	assert.Equal(t, 100.0, v)
	assert.Equal(t, 100.0, s.Total())
	assert.Equal(t, 1, s.Len())
}

func TestOffsetStore_NegativeOffsets(t *testing.T) {
	s := NewOffsetStore()

	// Rows can be shorter than nominal
	assert.True(t, s.Record(0, -120))
	assert.True(t, s.Record(1, 80))
	assert.InDelta(t, -40.0, s.Total(), 1e-9)
}

func TestOffsetStore_AccumulatedAt(t *testing.T) {
	s := NewOffsetStore()
	s.Record(0, 10)
	s.Record(2, 20)
	s.Record(5, 40)

	tests := []struct {
		name     string
		index    int
		expected float64
	}{
		{"before any offsets", -1, 0},
		{"at first row", 0, 10},
		{"gap row inherits prefix", 1, 10},
		{"inclusive of own row", 2, 30},
		{"past last row", 10, 70},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, s.AccumulatedAt(tt.index), 1e-9)
		})
	}
}

func TestOffsetStore_Clear(t *testing.T) {
	s := NewOffsetStore()
	s.Record(1, 30)
	s.Record(2, 70)

	s.Clear()

	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 0.0, s.Total())
	assert.False(t, s.Has(1))

	// Cleared indexes accept fresh offsets again
	assert.True(t, s.Record(1, 5))
}
