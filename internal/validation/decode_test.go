package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hsa00000/urocissa/internal/errors"
	"github.com/hsa00000/urocissa/internal/model"
)

func TestDecodeEntity_Image(t *testing.T) {
	raw := []byte(`{
		"type": "image",
		"id": "3f2a",
		"pending": false,
		"tags": ["vacation"],
		"thumbhash": [147, 8, 6, 13],
		"width": 4032,
		"height": 3024,
		"ext": "jpg",
		"size": 2048576,
		"albums": ["a1"],
		"exifVec": {"Make": "Canon"}
	}`)

	e, err := DecodeEntity(raw)
	require.NoError(t, err)

	assert.Equal(t, model.KindImage, e.Kind)
	assert.Equal(t, "3f2a", e.Id)
	assert.Equal(t, []string{"vacation"}, e.Tags)
	assert.Equal(t, []byte{147, 8, 6, 13}, e.Thumbhash)
	assert.True(t, e.IsMedia())

	media := e.Media()
	require.NotNil(t, media)
	assert.Equal(t, 4032, media.Width)
	assert.Equal(t, 3024, media.Height)
	assert.Equal(t, "jpg", media.Ext)
	assert.Equal(t, []string{"a1"}, media.Albums)
	assert.Equal(t, "Canon", media.Exif["Make"])
	assert.Nil(t, e.Album())
}

func TestDecodeEntity_Album(t *testing.T) {
	raw := []byte(`{
		"type": "album",
		"id": "alb1",
		"pending": false,
		"title": "Summer",
		"cover": "3f2a",
		"lastModifiedTime": 1700000000,
		"itemCount": 12,
		"itemSize": 1048576
	}`)

	e, err := DecodeEntity(raw)
	require.NoError(t, err)

	assert.Equal(t, model.KindAlbum, e.Kind)
	assert.False(t, e.IsMedia())

	album := e.Album()
	require.NotNil(t, album)
	assert.Equal(t, "Summer", *album.Title)
	assert.Equal(t, "3f2a", *album.Cover)
	assert.Equal(t, 12, album.ItemCount)
	assert.NotNil(t, album.ShareList)
	assert.Nil(t, e.Media())
}

func TestDecodeEntity_MissingFields(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		field string
	}{
		{
			"missing discriminator",
			`{"id": "x", "pending": false}`,
			"type",
		},
		{
			"empty id",
			`{"type": "image", "id": "", "pending": false}`,
			"id",
		},
		{
			"missing pending",
			`{"type": "image", "id": "x"}`,
			"pending",
		},
		{
			"unknown variant",
			`{"type": "playlist", "id": "x", "pending": false}`,
			"type",
		},
		{
			"media without width",
			`{"type": "image", "id": "x", "pending": false, "height": 10, "ext": "jpg", "size": 1}`,
			"width",
		},
		{
			"media without ext",
			`{"type": "video", "id": "x", "pending": false, "width": 10, "height": 10, "size": 1}`,
			"ext",
		},
		{
			"zero dimensions",
			`{"type": "image", "id": "x", "pending": false, "width": 0, "height": 10, "ext": "jpg", "size": 1}`,
			"width",
		},
		{
			"album without lastModifiedTime",
			`{"type": "album", "id": "x", "pending": false, "itemCount": 1, "itemSize": 1}`,
			"lastModifiedTime",
		},
		{
			"album without itemCount",
			`{"type": "album", "id": "x", "pending": false, "lastModifiedTime": 1, "itemSize": 1}`,
			"itemCount",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeEntity([]byte(tt.raw))
			require.Error(t, err)
			assert.Equal(t, tt.field, errors.FieldOf(err))
		})
	}
}

func TestDecodeEntity_MalformedJSON(t *testing.T) {
	_, err := DecodeEntity([]byte(`{not json`))
	require.Error(t, err)
	assert.Equal(t, "payload", errors.FieldOf(err))
}

func TestDecodeEntity_DefaultsEmptyCollections(t *testing.T) {
	raw := []byte(`{
		"type": "image", "id": "x", "pending": true,
		"width": 100, "height": 100, "ext": "png", "size": 5
	}`)

	e, err := DecodeEntity(raw)
	require.NoError(t, err)

	assert.NotNil(t, e.Tags)
	assert.Empty(t, e.Tags)
	assert.NotNil(t, e.Media().Albums)
	assert.NotNil(t, e.Media().Exif)
}

func TestEnrich(t *testing.T) {
	e := model.NewMediaEntity(model.KindImage, "x", model.MediaFields{Width: 4, Height: 3})

	enriched := Enrich(e, 1700000000)

	assert.Equal(t, int64(1700000000), enriched.Timestamp)
	assert.Equal(t, "x", enriched.Id)
	// No digest, no placeholder
	assert.Empty(t, enriched.ThumbhashURL)
}

func TestEnrich_InvalidThumbhash(t *testing.T) {
	e := model.NewMediaEntity(model.KindImage, "x", model.MediaFields{Width: 4, Height: 3})
	e.Thumbhash = []byte{1, 2}

	enriched := Enrich(e, 1)

	// Undecodable digests degrade to no placeholder, not an error
	assert.Empty(t, enriched.ThumbhashURL)
}
