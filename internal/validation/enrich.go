package validation

import (
	"bytes"
	"encoding/base64"
	"image/png"

	"github.com/galdor/go-thumbhash"

	"github.com/hsa00000/urocissa/internal/model"
)

// Enrich turns a decoded entity into its display form: the thumbhash
// digest becomes an inline PNG data URI for the instant placeholder,
// and the entity is stamped with the data generation it was fetched
// under. Pure; safe to call from any goroutine.
func Enrich(e model.Entity, timestamp int64) model.EnrichedEntity {
	return model.EnrichedEntity{
		Entity:       e,
		ThumbhashURL: thumbhashDataURL(e.Thumbhash),
		Timestamp:    timestamp,
	}
}

// thumbhashDataURL renders a thumbhash digest as a PNG data URI.
// Returns an empty string for absent or undecodable digests; a broken
// placeholder is not worth failing the record over.
func thumbhashDataURL(hash []byte) string {
	if len(hash) == 0 {
		return ""
	}
	img, err := thumbhash.DecodeImage(hash)
	if err != nil {
		return ""
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return ""
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}
