// Package dispatch implements the foreground-side protocol handler:
// it consumes sync worker messages, applies the staleness guards, and
// commits accepted results into the stores.
package dispatch

import (
	"sync"

	"go.uber.org/zap"

	"github.com/hsa00000/urocissa/internal/metrics"
	"github.com/hsa00000/urocissa/internal/model"
	"github.com/hsa00000/urocissa/internal/store"
	"github.com/hsa00000/urocissa/internal/tokencache"
	"github.com/hsa00000/urocissa/internal/worker"
)

// Rejection reasons recorded when a speculative row result is discarded
const (
	reasonWindowWidth = "window_width"
	reasonAnchor      = "anchor"
	reasonTimestamp   = "timestamp"
	reasonOffsetDone  = "offset_already_recorded"
	reasonScale       = "sub_row_height_scale"
)

// Stores groups the per-context stores the dispatcher mutates. The
// dispatcher is the single writer for all of them on the message path.
type Stores struct {
	Data      *store.DataStore
	Layout    *store.LayoutStore
	Offsets   *store.OffsetStore
	Prefetch  *store.PrefetchStore
	Tokens    *store.TokenStore
	Location  *store.LocationStore
	Tags      *store.TagStore // main-scoped
}

// Dispatcher consumes one worker's message channel on its own
// goroutine. Registration is a scoped resource: every Run has a
// matching Close so callbacks do not leak across view instances.
type Dispatcher struct {
	stores  Stores
	cache   tokencache.Cache
	scale   func() float64
	logger  *zap.Logger
	metrics *metrics.Metrics

	// OnNotification surfaces a user-facing message verbatim.
	OnNotification func(text string, color worker.NotificationColor)
	// OnUnauthorized is invoked when the session is invalidated;
	// typically a redirect to the login flow.
	OnUnauthorized func()
	// OnDataApplied fires after each committed data batch.
	OnDataApplied func(batch int)
	// OnEditTagsDone fires when a tag-edit round trip settles.
	OnEditTagsDone func()
	// RequestRow re-requests a row computation; used to retry layout
	// work that was rejected by the anchor guard.
	RequestRow func(rowIndex int)

	mu          sync.Mutex
	missedRows  map[int]bool
	runOnce     sync.Once
	closeOnce   sync.Once
	closed      chan struct{}
	loopDone    chan struct{}
}

// New creates a dispatcher. scale supplies the live UI density scale
// the staleness guard checks row results against.
func New(stores Stores, cache tokencache.Cache, scale func() float64, m *metrics.Metrics, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.NewNopMetrics()
	}
	if scale == nil {
		scale = func() float64 { return 1 }
	}
	return &Dispatcher{
		stores:     stores,
		cache:      cache,
		scale:      scale,
		logger:     logger,
		metrics:    m,
		missedRows: make(map[int]bool),
		closed:     make(chan struct{}),
		loopDone:   make(chan struct{}),
	}
}

// Run starts consuming messages until the channel closes or Close is
// called. Safe to call once per dispatcher instance.
func (d *Dispatcher) Run(messages <-chan worker.Message) {
	d.runOnce.Do(func() {
		go func() {
			defer close(d.loopDone)
			for {
				select {
				case <-d.closed:
					return
				case msg, ok := <-messages:
					if !ok {
						return
					}
					d.Handle(msg)
				}
			}
		}()
	})
}

// Close detaches the dispatcher and waits for the consume loop to exit
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.closed)
		<-d.loopDone
	})
}

// Handle applies one worker message to the stores. Exported so tests
// and synchronous callers can drive the dispatcher directly.
func (d *Dispatcher) Handle(msg worker.Message) {
	d.metrics.MessagesDispatchedTotal.WithLabelValues(msg.Kind()).Inc()

	switch m := msg.(type) {
	case worker.ReturnData:
		d.handleReturnData(m)
	case worker.FetchRowReturn:
		d.handleFetchRowReturn(m)
	case worker.EditTagsReturn:
		d.handleEditTagsReturn(m)
	case worker.Notification:
		d.metrics.NotificationsTotal.Inc()
		if d.OnNotification != nil {
			d.OnNotification(m.Text, m.Color)
		}
	case worker.Unauthorized:
		d.logger.Warn("Session invalidated, redirecting to login")
		if d.OnUnauthorized != nil {
			d.OnUnauthorized()
		}
	case worker.RefreshTimestampToken:
		d.stores.Tokens.SetTimestampToken(m.Token)
	case worker.RefreshHashToken:
		d.stores.Tokens.SetHashToken(m.Hash, m.Token)
		d.putToken(m.Hash, m.Token)
	}
}

// handleReturnData upserts a normalized batch and routes each entry's
// auth token. Albums gate thumbnail access through their cover
// identifier, not their own id; media entities use their own.
func (d *Dispatcher) handleReturnData(m worker.ReturnData) {
	for _, entry := range m.Entries {
		d.stores.Data.Upsert(entry.Index, entry.Data)

		if album := entry.Data.Album(); album != nil {
			if album.Cover != nil {
				d.stores.Tokens.SetHashToken(*album.Cover, entry.AuthToken)
				d.putToken(*album.Cover, entry.AuthToken)
			}
		} else {
			d.stores.Tokens.SetHashToken(entry.Data.Id, entry.AuthToken)
			d.putToken(entry.Data.Id, entry.AuthToken)
		}
	}
	d.stores.Data.MarkBatchFetched(m.Batch)

	if d.OnDataApplied != nil {
		d.OnDataApplied(m.Batch)
	}
}

// handleFetchRowReturn commits a speculative row layout, or discards
// it when any staleness guard fails. Guard order matters: the anchor
// guard records the missed row so it can be re-requested on release.
func (d *Dispatcher) handleFetchRowReturn(m worker.FetchRowReturn) {
	row := m.RowWithOffset.Row
	offset := m.RowWithOffset.Offset

	// A resize invalidates in-flight layout work.
	if m.RowWithOffset.WindowWidth != d.stores.Prefetch.WindowWidth() {
		d.reject(reasonWindowWidth, row.Index)
		return
	}

	// While the viewport is pinned to a row, no other row may perturb
	// the locked scroll position. Remember the miss for retry.
	if anchor := d.stores.Location.Anchor(); anchor >= 0 && anchor != row.Index {
		d.mu.Lock()
		d.missedRows[row.Index] = true
		d.mu.Unlock()
		d.reject(reasonAnchor, row.Index)
		return
	}

	// The remaining guards skip the commit but still flip the triggers
	// below: downstream observers re-evaluate either way.
	switch {
	case m.Timestamp != d.stores.Prefetch.Timestamp():
		// A new data fetch invalidates layout computed against the
		// old generation.
		d.reject(reasonTimestamp, row.Index)
	case d.stores.Offsets.Has(row.Index):
		// Idempotence: a row offset is applied at most once.
		d.reject(reasonOffsetDone, row.Index)
	case m.SubRowHeightScale != d.scale():
		// A display-density change invalidates old measurements.
		d.reject(reasonScale, row.Index)
	default:
		d.stores.Offsets.Record(row.Index, offset)
		row.Offset = d.stores.Offsets.AccumulatedAt(row.Index)

		d.stores.Layout.ShiftAfter(row.Index, offset)
		d.stores.Layout.Upsert(row)
		d.stores.Prefetch.AddTotalHeight(offset)

		d.metrics.OffsetsAppliedTotal.Inc()
	}

	d.flipTriggers()
	d.stores.Layout.MarkFirstRowFetched()
}

func (d *Dispatcher) handleEditTagsReturn(m worker.EditTagsReturn) {
	if m.ReturnedTags != nil {
		d.stores.Tags.ApplyTags(m.ReturnedTags)
	} else {
		d.logger.Warn("Edit tags round trip returned no tag index")
	}
	if d.OnEditTagsDone != nil {
		d.OnEditTagsDone()
	}
}

// ReleaseAnchor clears the scroll anchor and re-requests every row
// whose correction was rejected while the anchor was held. Without the
// retry those rows would keep their estimated height forever.
func (d *Dispatcher) ReleaseAnchor() {
	d.stores.Location.ClearAnchor()

	d.mu.Lock()
	missed := make([]int, 0, len(d.missedRows))
	for index := range d.missedRows {
		missed = append(missed, index)
	}
	d.missedRows = make(map[int]bool)
	d.mu.Unlock()

	if d.RequestRow == nil {
		return
	}
	for _, index := range missed {
		d.RequestRow(index)
	}
}

func (d *Dispatcher) flipTriggers() {
	d.stores.Prefetch.FlipFetchRowTrigger()
	d.stores.Prefetch.FlipVisibleRowTrigger()
}

func (d *Dispatcher) reject(reason string, rowIndex int) {
	d.metrics.StaleResultsTotal.WithLabelValues(reason).Inc()
	d.logger.Debug("Discarded stale row result",
		zap.String("reason", reason),
		zap.Int("row_index", rowIndex))
}

func (d *Dispatcher) putToken(key, token string) {
	if d.cache == nil {
		return
	}
	if err := d.cache.Put(key, token); err != nil {
		d.logger.Warn("Token cache write failed",
			zap.String("key", key),
			zap.Error(err))
		return
	}
	d.metrics.TokenCacheWritesTotal.Inc()
}

// SyncPrefetch commits the header of a fresh data window: generation
// timestamp, dataset length, locate target, and the rotated timestamp
// token. Called by the prefetch controller before any dependent fetch.
func (d *Dispatcher) SyncPrefetch(ret model.PrefetchReturn, batchSize int, nominalRowHeight float64) {
	d.stores.Prefetch.SetTimestamp(ret.Prefetch.Timestamp)
	d.stores.Prefetch.FlipVisibleRowTrigger()
	d.stores.Prefetch.CalculateLength(ret.Prefetch.DataLength, batchSize, nominalRowHeight)
	d.stores.Prefetch.SetLocateTo(ret.Prefetch.LocateTo)
	d.stores.Tokens.SetTimestampToken(ret.Token)
	d.stores.Prefetch.MarkInitialized()
}
