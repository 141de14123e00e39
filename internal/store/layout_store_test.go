package store

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hsa00000/urocissa/internal/model"
)

func TestLayoutStore_UpsertAndGet(t *testing.T) {
	s := NewLayoutStore()

	s.Upsert(model.Row{Index: 2, Height: 6100, Offset: 100})

	row, ok := s.Get(2)
	assert.True(t, ok)
	assert.Equal(t, 6100.0, row.Height)

	_, ok = s.Get(3)
	assert.False(t, ok)
}

func TestLayoutStore_UpsertSupersedes(t *testing.T) {
	s := NewLayoutStore()
	s.Upsert(model.Row{Index: 0, Height: 6000})
	s.Upsert(model.Row{Index: 0, Height: 5800})

	row, _ := s.Get(0)
	assert.Equal(t, 5800.0, row.Height)
	assert.Equal(t, 1, s.Len())
}

func TestLayoutStore_ShiftAfter(t *testing.T) {
	s := NewLayoutStore()
	s.Upsert(model.Row{Index: 0, Offset: 0})
	s.Upsert(model.Row{Index: 3, Offset: 40})
	s.Upsert(model.Row{Index: 7, Offset: 40})

	// Row 3 grew by 25px; only strictly later rows move
	s.ShiftAfter(3, 25)

	row0, _ := s.Get(0)
	row3, _ := s.Get(3)
	row7, _ := s.Get(7)
	assert.Equal(t, 0.0, row0.Offset)
	assert.Equal(t, 40.0, row3.Offset)
	assert.Equal(t, 65.0, row7.Offset)
}

func TestLayoutStore_RowsSortedByIndex(t *testing.T) {
	s := NewLayoutStore()
	s.Upsert(model.Row{Index: 5})
	s.Upsert(model.Row{Index: 1})
	s.Upsert(model.Row{Index: 3})

	rows := s.Rows()
	assert.Len(t, rows, 3)
	assert.Equal(t, 1, rows[0].Index)
	assert.Equal(t, 3, rows[1].Index)
	assert.Equal(t, 5, rows[2].Index)
}

func TestLayoutStore_FirstRowFetched(t *testing.T) {
	s := NewLayoutStore()
	assert.False(t, s.FirstRowFetched())

	s.MarkFirstRowFetched()
	assert.True(t, s.FirstRowFetched())

	s.Clear()
	assert.False(t, s.FirstRowFetched())
	assert.Equal(t, 0, s.Len())
}
