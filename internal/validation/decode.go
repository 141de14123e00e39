package validation

import (
	"encoding/json"

	"github.com/hsa00000/urocissa/internal/errors"
	"github.com/hsa00000/urocissa/internal/model"
)

// rawEntity mirrors the wire shape of one entity payload. Pointer
// fields distinguish absent from zero so decode can name the missing
// field instead of silently defaulting a required one.
type rawEntity struct {
	Type        *string           `json:"type"`
	Id          *string           `json:"id"`
	Pending     *bool             `json:"pending"`
	Thumbhash   []int             `json:"thumbhash"`
	Description *string           `json:"description"`
	Tags        []string          `json:"tags"`
	ExifVec     map[string]string `json:"exifVec"`
	IsFavorite  bool              `json:"isFavorite"`
	IsArchived  bool              `json:"isArchived"`
	IsTrashed   bool              `json:"isTrashed"`
	UpdateAt    int64             `json:"updateAt"`

	// media variant
	Width    *int          `json:"width"`
	Height   *int          `json:"height"`
	Ext      *string       `json:"ext"`
	Size     *int64        `json:"size"`
	Duration float64       `json:"duration"`
	Phash    []int         `json:"phash"`
	Albums   []string      `json:"albums"`
	Alias    []model.Alias `json:"alias"`

	// album variant
	Title            *string                `json:"title"`
	StartTime        *int64                 `json:"startTime"`
	EndTime          *int64                 `json:"endTime"`
	LastModifiedTime *int64                 `json:"lastModifiedTime"`
	Cover            *string                `json:"cover"`
	ItemCount        *int                   `json:"itemCount"`
	ItemSize         *int64                 `json:"itemSize"`
	ShareList        map[string]model.Share `json:"shareList"`
}

// DecodeEntity decodes one wire payload into a strict tagged-variant
// Entity. It fails with a validation error naming the offending field;
// fields belonging to other variants are discarded.
func DecodeEntity(raw []byte) (model.Entity, error) {
	var r rawEntity
	if err := json.Unmarshal(raw, &r); err != nil {
		return model.Entity{}, errors.ValidationFailed("payload", err.Error())
	}

	if r.Type == nil {
		return model.Entity{}, errors.ValidationFailed("type", "missing discriminator")
	}
	if r.Id == nil || *r.Id == "" {
		return model.Entity{}, errors.ValidationFailed("id", "missing or empty")
	}
	if r.Pending == nil {
		return model.Entity{}, errors.ValidationFailed("pending", "missing")
	}

	kind := model.EntityKind(*r.Type)
	switch kind {
	case model.KindImage, model.KindVideo, model.KindAlbum:
	default:
		return model.Entity{}, errors.ValidationFailed("type", "unknown variant: "+*r.Type)
	}

	e := model.Entity{
		Kind:        kind,
		Id:          *r.Id,
		Pending:     *r.Pending,
		Tags:        r.Tags,
		Description: r.Description,
		Thumbhash:   byteSlice(r.Thumbhash),
		IsFavorite:  r.IsFavorite,
		IsArchived:  r.IsArchived,
		IsTrashed:   r.IsTrashed,
		UpdateAt:    r.UpdateAt,
	}
	if e.Tags == nil {
		e.Tags = []string{}
	}

	switch kind {
	case model.KindImage, model.KindVideo:
		if r.Width == nil {
			return model.Entity{}, errors.ValidationFailed("width", "missing")
		}
		if r.Height == nil {
			return model.Entity{}, errors.ValidationFailed("height", "missing")
		}
		if *r.Width <= 0 || *r.Height <= 0 {
			return model.Entity{}, errors.ValidationFailed("width", "dimensions must be positive")
		}
		if r.Ext == nil {
			return model.Entity{}, errors.ValidationFailed("ext", "missing")
		}
		if r.Size == nil {
			return model.Entity{}, errors.ValidationFailed("size", "missing")
		}
		media := model.MediaFields{
			Width:    *r.Width,
			Height:   *r.Height,
			Ext:      *r.Ext,
			Size:     *r.Size,
			Duration: r.Duration,
			Phash:    byteSlice(r.Phash),
			Albums:   r.Albums,
			Alias:    r.Alias,
			Exif:     r.ExifVec,
		}
		if media.Albums == nil {
			media.Albums = []string{}
		}
		if media.Exif == nil {
			media.Exif = map[string]string{}
		}
		e.SetMedia(media)

	case model.KindAlbum:
		if r.LastModifiedTime == nil {
			return model.Entity{}, errors.ValidationFailed("lastModifiedTime", "missing")
		}
		if r.ItemCount == nil {
			return model.Entity{}, errors.ValidationFailed("itemCount", "missing")
		}
		if r.ItemSize == nil {
			return model.Entity{}, errors.ValidationFailed("itemSize", "missing")
		}
		album := model.AlbumFields{
			Title:            r.Title,
			StartTime:        r.StartTime,
			EndTime:          r.EndTime,
			LastModifiedTime: *r.LastModifiedTime,
			Cover:            r.Cover,
			ItemCount:        *r.ItemCount,
			ItemSize:         *r.ItemSize,
			ShareList:        r.ShareList,
		}
		if album.ShareList == nil {
			album.ShareList = map[string]model.Share{}
		}
		e.SetAlbum(album)
	}

	return e, nil
}

// byteSlice converts the wire representation of a binary digest (a JSON
// array of numbers) into a byte slice, truncating out-of-range values.
func byteSlice(values []int) []byte {
	if values == nil {
		return nil
	}
	out := make([]byte, len(values))
	for i, v := range values {
		out[i] = byte(v)
	}
	return out
}
