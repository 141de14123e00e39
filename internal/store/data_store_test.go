package store

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hsa00000/urocissa/internal/model"
)

func mediaEntity(id string, tags ...string) model.EnrichedEntity {
	e := model.NewMediaEntity(model.KindImage, id, model.MediaFields{Width: 400, Height: 300})
	e.Tags = tags
	return model.EnrichedEntity{Entity: e}
}

func albumEntity(id string) model.EnrichedEntity {
	e := model.NewAlbumEntity(id, model.AlbumFields{ItemCount: 3})
	return model.EnrichedEntity{Entity: e}
}

func TestDataStore_UpsertAndLookup(t *testing.T) {
	s := NewDataStore()
	s.Upsert(7, mediaEntity("abc123"))

	e, ok := s.Get(7)
	assert.True(t, ok)
	assert.Equal(t, "abc123", e.Id)

	idx, ok := s.IndexOf("abc123")
	assert.True(t, ok)
	assert.Equal(t, 7, idx)

	byID, ok := s.GetByID("abc123")
	assert.True(t, ok)
	assert.Equal(t, "abc123", byID.Id)
}

func TestDataStore_BatchFetched(t *testing.T) {
	s := NewDataStore()
	assert.False(t, s.IsBatchFetched(0))

	s.MarkBatchFetched(0)
	assert.True(t, s.IsBatchFetched(0))
	assert.False(t, s.IsBatchFetched(1))
}

func TestDataStore_AddTags(t *testing.T) {
	s := NewDataStore()
	s.Upsert(0, mediaEntity("m1", "vacation"))

	assert.True(t, s.AddTags(0, []string{"vacation", "beach"}))

	e, _ := s.Get(0)
	assert.Equal(t, []string{"vacation", "beach"}, e.Tags)

	assert.False(t, s.AddTags(99, []string{"x"}))
}

func TestDataStore_RemoveTags(t *testing.T) {
	s := NewDataStore()
	s.Upsert(0, mediaEntity("m1", "vacation", "beach", "family"))

	assert.True(t, s.RemoveTags(0, []string{"beach", "missing"}))

	e, _ := s.Get(0)
	assert.Equal(t, []string{"vacation", "family"}, e.Tags)
}

func TestDataStore_AlbumMembership(t *testing.T) {
	s := NewDataStore()
	s.Upsert(0, mediaEntity("m1"))
	s.Upsert(1, albumEntity("a1"))

	assert.True(t, s.AddAlbums(0, []string{"a1"}))
	e, _ := s.Get(0)
	assert.Equal(t, []string{"a1"}, e.Media().Albums)

	// Albums cannot be nested inside albums
	assert.False(t, s.AddAlbums(1, []string{"a2"}))

	assert.True(t, s.RemoveAlbums(0, []string{"a1"}))
	e, _ = s.Get(0)
	assert.Empty(t, e.Media().Albums)
}

func TestDataStore_MutationsDoNotAliasReturnedEntities(t *testing.T) {
	s := NewDataStore()
	e := mediaEntity("m1", "vacation")
	e.Media().Albums = []string{"alb1"}
	s.Upsert(0, e)

	snapshot, _ := s.Get(0)

	s.AddTags(0, []string{"beach"})
	s.AddAlbums(0, []string{"alb2"})
	s.RemoveAlbums(0, []string{"alb1"})

	// The copy handed out before the mutations keeps its view
	assert.Equal(t, []string{"vacation"}, snapshot.Tags)
	assert.Equal(t, []string{"alb1"}, snapshot.Media().Albums)

	current, _ := s.Get(0)
	assert.Equal(t, []string{"vacation", "beach"}, current.Tags)
	assert.Equal(t, []string{"alb2"}, current.Media().Albums)
}

func TestDataStore_ConcurrentReadersAndMutators(t *testing.T) {
	s := NewDataStore()
	e := mediaEntity("m1", "vacation")
	e.Media().Albums = []string{"alb1"}
	s.Upsert(0, e)

	reader, _ := s.Get(0)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			_ = len(reader.Tags)
			_ = len(reader.Media().Albums)
		}
	}()

	for i := 0; i < 200; i++ {
		s.AddAlbums(0, []string{"alb2"})
		s.RemoveAlbums(0, []string{"alb2"})
		s.AddTags(0, []string{"beach"})
		s.RemoveTags(0, []string{"beach"})
	}
	<-done
}

func TestDataStore_ClearAll(t *testing.T) {
	s := NewDataStore()
	s.Upsert(0, mediaEntity("m1"))
	s.MarkBatchFetched(0)

	s.ClearAll()

	assert.Equal(t, 0, s.Len())
	assert.False(t, s.IsBatchFetched(0))
	_, ok := s.IndexOf("m1")
	assert.False(t, ok)
}
