package model

// EntityKind discriminates the entity tagged union
type EntityKind string

const (
	KindImage EntityKind = "image"
	KindVideo EntityKind = "video"
	KindAlbum EntityKind = "album"
)

// Alias records one on-disk occurrence of a media file
type Alias struct {
	File     string `json:"file"`
	Modified int64  `json:"modified"`
	ScanTime int64  `json:"scanTime"`
}

// MediaFields holds the fields present only on image and video entities
type MediaFields struct {
	Width    int               `json:"width"`
	Height   int               `json:"height"`
	Ext      string            `json:"ext"`
	Size     int64             `json:"size"`
	Duration float64           `json:"duration"`
	Phash    []byte            `json:"phash"`
	Albums   []string          `json:"albums"`
	Alias    []Alias           `json:"alias"`
	Exif     map[string]string `json:"exif"`
}

// AlbumFields holds the fields present only on album entities
type AlbumFields struct {
	Title            *string          `json:"title"`
	StartTime        *int64           `json:"startTime"`
	EndTime          *int64           `json:"endTime"`
	LastModifiedTime int64            `json:"lastModifiedTime"`
	Cover            *string          `json:"cover"`
	ItemCount        int              `json:"itemCount"`
	ItemSize         int64            `json:"itemSize"`
	ShareList        map[string]Share `json:"shareList"`
}

// Entity is the tagged union of everything the grid can display.
// Exactly one of Media/Album is populated, selected by Kind; the
// accessor methods are the supported way to reach variant fields.
type Entity struct {
	Kind        EntityKind `json:"type"`
	Id          string     `json:"id"`
	Pending     bool       `json:"pending"`
	Tags        []string   `json:"tags"`
	Description *string    `json:"description"`
	Thumbhash   []byte     `json:"thumbhash"`
	IsFavorite  bool       `json:"isFavorite"`
	IsArchived  bool       `json:"isArchived"`
	IsTrashed   bool       `json:"isTrashed"`
	UpdateAt    int64      `json:"updateAt"`

	media *MediaFields
	album *AlbumFields
}

// NewMediaEntity constructs an image or video entity
func NewMediaEntity(kind EntityKind, id string, fields MediaFields) Entity {
	return Entity{Kind: kind, Id: id, media: &fields}
}

// NewAlbumEntity constructs an album entity
func NewAlbumEntity(id string, fields AlbumFields) Entity {
	return Entity{Kind: KindAlbum, Id: id, album: &fields}
}

// SetMedia attaches media variant fields; valid only for image/video kinds
func (e *Entity) SetMedia(fields MediaFields) {
	e.media = &fields
	e.album = nil
}

// SetAlbum attaches album variant fields
func (e *Entity) SetAlbum(fields AlbumFields) {
	e.album = &fields
	e.media = nil
}

// IsMedia reports whether the entity is an image or a video
func (e *Entity) IsMedia() bool {
	return e.Kind == KindImage || e.Kind == KindVideo
}

// Media returns the media variant fields, or nil for albums
func (e *Entity) Media() *MediaFields {
	if !e.IsMedia() {
		return nil
	}
	return e.media
}

// Album returns the album variant fields, or nil for media
func (e *Entity) Album() *AlbumFields {
	if e.Kind != KindAlbum {
		return nil
	}
	return e.album
}

// AspectRatio returns width/height for media, 1 for albums and
// media with unknown dimensions.
func (e *Entity) AspectRatio() float64 {
	if m := e.Media(); m != nil && m.Width > 0 && m.Height > 0 {
		return float64(m.Width) / float64(m.Height)
	}
	return 1
}

// EnrichedEntity is an Entity plus the derived display fields produced
// by the enrichment step: a placeholder data URI decoded from the
// thumbhash digest and the data-generation timestamp it was fetched
// under. Superseded by any newer fetch of the same index.
type EnrichedEntity struct {
	Entity
	ThumbhashURL string
	Timestamp    int64
}
