package tokencache

import "fmt"

// ShareInfo is the descriptor persisted for one open share context.
// The byte-authorization proxy reads it to attach share headers to
// media requests.
type ShareInfo struct {
	AlbumId  string `json:"albumId"`
	ShareId  string `json:"shareId"`
	Password string `json:"password"`
}

// Cache is the durable key-value contract gating access to binary
// media. Two independent namespaces: content identifier -> token, and
// composite share key -> share descriptor. No client-side TTL is
// enforced; server-issued expiry is authoritative. Last-writer-wins
// per key.
type Cache interface {
	Put(key, token string) error
	Get(key string) (string, bool)
	Delete(key string) error

	PutShare(info ShareInfo) error
	GetShare(albumId, shareId string) (ShareInfo, bool)
	DeleteShare(albumId, shareId string) error

	Close() error
}

// ShareKey builds the deterministic composite key for a share-scoped
// entry, so multiple concurrently-open shares do not collide.
func ShareKey(albumId, shareId string) string {
	return fmt.Sprintf("%s_%s", albumId, shareId)
}
