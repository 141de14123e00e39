package worker

import "github.com/hsa00000/urocissa/internal/model"

// Message is the closed set of worker-to-foreground messages. The
// dispatcher switches exhaustively over the concrete types; adding a
// kind means touching that switch, not a string table.
type Message interface {
	isMessage()
	Kind() string
}

// DataEntry is one validated and enriched entity plus its auth token
type DataEntry struct {
	Index     int
	Data      model.EnrichedEntity
	AuthToken string
}

// ReturnData delivers one normalized batch
type ReturnData struct {
	Batch   int
	Entries []DataEntry
}

// FetchRowReturn delivers one computed row layout and its measured
// height correction. Speculative: the dispatcher guards it against
// staleness before committing.
type FetchRowReturn struct {
	Timestamp         int64
	RowWithOffset     model.RowWithOffset
	SubRowHeightScale float64
}

// EditTagsReturn delivers the result of a tag-edit round trip.
// ReturnedTags is nil when the server omitted the refreshed index.
type EditTagsReturn struct {
	ReturnedTags []model.TagInfo
}

// NotificationColor classifies a user-facing message
type NotificationColor string

const (
	ColorError   NotificationColor = "error"
	ColorSuccess NotificationColor = "success"
	ColorInfo    NotificationColor = "info"
)

// Notification is a user-facing message surfaced verbatim
type Notification struct {
	Text  string
	Color NotificationColor
}

// Unauthorized signals that the session was invalidated
type Unauthorized struct{}

// RefreshTimestampToken pushes a rotated session token
type RefreshTimestampToken struct {
	Token string
}

// RefreshHashToken pushes a rotated per-content token
type RefreshHashToken struct {
	Hash  string
	Token string
}

func (ReturnData) isMessage()            {}
func (FetchRowReturn) isMessage()        {}
func (EditTagsReturn) isMessage()        {}
func (Notification) isMessage()          {}
func (Unauthorized) isMessage()          {}
func (RefreshTimestampToken) isMessage() {}
func (RefreshHashToken) isMessage()      {}

func (ReturnData) Kind() string            { return "returnData" }
func (FetchRowReturn) Kind() string        { return "fetchRowReturn" }
func (EditTagsReturn) Kind() string        { return "editTagsReturn" }
func (Notification) Kind() string          { return "notification" }
func (Unauthorized) Kind() string          { return "unauthorized" }
func (RefreshTimestampToken) Kind() string { return "refreshTimestampToken" }
func (RefreshHashToken) Kind() string      { return "refreshHashToken" }

// Request is the closed set of foreground-to-worker requests
type Request interface {
	isRequest()
}

// FetchBatchRequest asks the worker to fetch and normalize one batch
type FetchBatchRequest struct {
	Batch     int
	Timestamp int64
}

// ComputeRowRequest asks the worker to compute one row layout against
// a viewport/query snapshot.
type ComputeRowRequest struct {
	RowIndex    int
	Timestamp   int64
	WindowWidth float64
	Scale       float64
}

// EditTagsRequest asks the worker to run a tag-edit round trip
type EditTagsRequest struct {
	IndexArray      []int
	AddTagsArray    []string
	RemoveTagsArray []string
	Timestamp       int64
}

func (FetchBatchRequest) isRequest() {}
func (ComputeRowRequest) isRequest() {}
func (EditTagsRequest) isRequest()   {}
