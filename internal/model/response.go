package model

// Prefetch is the header of a data-window fetch: the snapshot
// timestamp the window was cut at, the total entity count, and an
// optional index the view should scroll to on load.
type Prefetch struct {
	Timestamp  int64  `json:"timestamp"`
	DataLength int    `json:"dataLength"`
	LocateTo   *int   `json:"locateTo"`
}

// Share describes one published share of an album
type Share struct {
	Url          string  `json:"url"`
	Description  string  `json:"description"`
	Password     *string `json:"password"`
	ShowMetadata bool    `json:"showMetadata"`
	ShowDownload bool    `json:"showDownload"`
	ShowUpload   bool    `json:"showUpload"`
	Exp          int64   `json:"exp"`
}

// ResolvedShare is the server-side resolution of a share link
type ResolvedShare struct {
	Share      Share   `json:"share"`
	AlbumId    string  `json:"albumId"`
	AlbumTitle *string `json:"albumTitle"`
}

// PrefetchReturn is the full response of the data-window fetch
type PrefetchReturn struct {
	Prefetch      Prefetch       `json:"prefetch"`
	Token         string         `json:"token"`
	ResolvedShare *ResolvedShare `json:"resolvedShareOpt"`
}

// ScrollbarMark is one marker of the scrollbar summary
type ScrollbarMark struct {
	Index int `json:"index"`
	Year  int `json:"year"`
	Month int `json:"month"`
}

// TagInfo is one entry of the tag index
type TagInfo struct {
	Tag    string `json:"tag"`
	Number int    `json:"number"`
}

// AlbumInfo is one entry of the album index
type AlbumInfo struct {
	AlbumId   string           `json:"albumId"`
	AlbumName *string          `json:"albumName"`
	ShareList map[string]Share `json:"shareList"`
}

// DisplayName returns the album name or a placeholder for untitled albums
func (a AlbumInfo) DisplayName() string {
	if a.AlbumName != nil {
		return *a.AlbumName
	}
	return "Untitled"
}
