// Package engine assembles one isolation context: the store set, the
// sync worker, and the dispatcher for a single view instance. There is
// no ambient global state; every collaborator is reached through the
// Engine value handed to the renderer.
package engine

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/hsa00000/urocissa/internal/client"
	"github.com/hsa00000/urocissa/internal/config"
	"github.com/hsa00000/urocissa/internal/dispatch"
	"github.com/hsa00000/urocissa/internal/metrics"
	"github.com/hsa00000/urocissa/internal/queue"
	"github.com/hsa00000/urocissa/internal/store"
	"github.com/hsa00000/urocissa/internal/tokencache"
	"github.com/hsa00000/urocissa/internal/worker"
)

// MainStores are the stores shared across isolation contexts: the tag
// and album indexes and the share resolution. Mutated only by the
// owning main context's actions.
type MainStores struct {
	Tags   *store.TagStore
	Albums *store.AlbumStore
	Share  *store.ShareStore
}

// NewMainStores creates the shared main-scoped store set
func NewMainStores() *MainStores {
	return &MainStores{
		Tags:   store.NewTagStore(),
		Albums: store.NewAlbumStore(),
		Share:  store.NewShareStore(),
	}
}

// Engine is one isolation context: one store set, one sync worker, one
// dispatcher. Views that must not perturb each other (the main grid
// versus a detail sub-view) each get their own Engine.
type Engine struct {
	Data      *store.DataStore
	Layout    *store.LayoutStore
	Offsets   *store.OffsetStore
	Prefetch  *store.PrefetchStore
	Tokens    *store.TokenStore
	Location  *store.LocationStore
	Scrollbar *store.ScrollbarStore

	Main       *MainStores
	Dispatcher *dispatch.Dispatcher
	Worker     *worker.SyncWorker
	Edits      *queue.KeyQueue

	api       *client.Client
	cache     tokencache.Cache
	cfg       *config.Config
	logger    *zap.Logger
	metrics   *metrics.Metrics
	scale     float64
	scaleMu   sync.RWMutex
	appConfig *client.AppConfig
	configMu  sync.Mutex

	closeOnce sync.Once
}

// New wires one engine instance. api, cache and main may all be shared
// with other engine instances; the engine binds its own token and
// share providers to a private copy of the client.
func New(cfg *config.Config, api *client.Client, cache tokencache.Cache, main *MainStores, m *metrics.Metrics, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.NewNopMetrics()
	}
	if main == nil {
		main = NewMainStores()
	}

	e := &Engine{
		Data:      store.NewDataStore(),
		Layout:    store.NewLayoutStore(),
		Offsets:   store.NewOffsetStore(),
		Prefetch:  store.NewPrefetchStore(),
		Tokens:    store.NewTokenStore(),
		Location:  store.NewLocationStore(),
		Scrollbar: store.NewScrollbarStore(),
		Main:      main,
		Edits:     queue.NewKeyQueue(cfg.Worker.QueueSize, logger),
		cache:     cache,
		cfg:       cfg,
		logger:    logger,
		metrics:   m,
		scale:     cfg.Layout.SubRowHeightScale,
	}

	// Each engine gets its own provider binding; the transport stays
	// shared so two contexts built from one client do not cross-wire
	// each other's tokens.
	e.api = api.WithProviders(e.Tokens.TimestampToken, e.shareHeaders)

	e.Worker = worker.NewSyncWorker(e.api, cfg.Layout, cfg.Worker, m, logger)

	e.Dispatcher = dispatch.New(dispatch.Stores{
		Data:     e.Data,
		Layout:   e.Layout,
		Offsets:  e.Offsets,
		Prefetch: e.Prefetch,
		Tokens:   e.Tokens,
		Location: e.Location,
		Tags:     main.Tags,
	}, cache, e.Scale, m, logger)
	e.Dispatcher.RequestRow = func(rowIndex int) {
		e.RequestRow(rowIndex)
	}
	e.Dispatcher.Run(e.Worker.Messages())

	return e
}

// Scale returns the live UI density scale
func (e *Engine) Scale() float64 {
	e.scaleMu.RLock()
	defer e.scaleMu.RUnlock()
	return e.scale
}

// SetScale changes the UI density scale. In-flight row results carrying
// the old scale will be discarded by the dispatcher.
func (e *Engine) SetScale(scale float64) {
	e.scaleMu.Lock()
	e.scale = scale
	e.scaleMu.Unlock()
}

// RequestRow asks the worker to compute one row against the current
// viewport and generation snapshot.
func (e *Engine) RequestRow(rowIndex int) {
	err := e.Worker.Submit(worker.ComputeRowRequest{
		RowIndex:    rowIndex,
		Timestamp:   e.Prefetch.Timestamp(),
		WindowWidth: e.Prefetch.WindowWidth(),
		Scale:       e.Scale(),
	})
	if err != nil {
		e.logger.Warn("Row request dropped", zap.Int("row_index", rowIndex), zap.Error(err))
	}
}

// RequestBatch asks the worker to synchronize one batch, skipping
// batches already fetched under the current generation.
func (e *Engine) RequestBatch(batch int) {
	if e.Data.IsBatchFetched(batch) {
		return
	}
	err := e.Worker.Submit(worker.FetchBatchRequest{
		Batch:     batch,
		Timestamp: e.Prefetch.Timestamp(),
	})
	if err != nil {
		e.logger.Warn("Batch request dropped", zap.Int("batch", batch), zap.Error(err))
	}
}

// EditTags serializes a tag edit per entity identifier so edits to the
// same item apply in submission order.
func (e *Engine) EditTags(indexes []int, add, remove []string) {
	for _, index := range indexes {
		index := index
		data, ok := e.Data.Get(index)
		if !ok {
			continue
		}
		_ = e.Edits.Submit(context.Background(), data.Id, func(ctx context.Context) error {
			return e.Worker.Submit(worker.EditTagsRequest{
				IndexArray:      []int{index},
				AddTagsArray:    add,
				RemoveTagsArray: remove,
				Timestamp:       e.Prefetch.Timestamp(),
			})
		})
	}
}

// ClearLayout resets all layout-derived state for a layout change; the
// next prefetch starts a fresh generation.
func (e *Engine) ClearLayout() {
	e.Data.ClearAll()
	e.Layout.Clear()
	e.Offsets.Clear()
	e.Prefetch.SetTotalHeight(0)
}

func (e *Engine) shareHeaders() *client.ShareHeaders {
	resolved := e.Main.Share.Resolved()
	if resolved == nil {
		return nil
	}
	h := &client.ShareHeaders{AlbumId: resolved.AlbumId}
	if resolved.Share.Password != nil {
		h.Password = *resolved.Share.Password
	}
	h.ShareId = resolved.Share.Url
	return h
}

// Close tears down the worker and dispatcher. Every New must be paired
// with a Close or callbacks leak across view-instance switches.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		e.Worker.Close()
		e.Dispatcher.Close()
		e.Edits.Close()
	})
}
