// Package worker implements the background computation unit: schema
// normalization of server payloads and row layout math, kept off the
// interactive path and reached exclusively through typed messages.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hsa00000/urocissa/internal/client"
	"github.com/hsa00000/urocissa/internal/config"
	"github.com/hsa00000/urocissa/internal/errors"
	"github.com/hsa00000/urocissa/internal/layout"
	"github.com/hsa00000/urocissa/internal/metrics"
	"github.com/hsa00000/urocissa/internal/model"
	"github.com/hsa00000/urocissa/internal/util/workerpool"
	"github.com/hsa00000/urocissa/internal/validation"
)

// SyncWorker is one background computation unit per isolation context.
// It owns a request loop goroutine; results flow out of Messages() in
// the order they were produced. There is no cancellation message:
// superseded results are discarded on arrival by the dispatcher.
type SyncWorker struct {
	api       *client.Client
	layoutCfg config.LayoutConfig
	logger    *zap.Logger
	metrics   *metrics.Metrics
	pool      *workerpool.Pool

	requests chan Request
	messages chan Message

	// Worker-local normalized cache backing row computation. Only the
	// worker goroutine touches it. batches records which batches were
	// fully synchronized: dropped records leave gaps in entities, so
	// presence of individual indexes cannot stand in for a fetch.
	entities  map[int]model.EnrichedEntity
	batches   map[int]bool
	tokens    map[string]string
	timestamp int64

	closeOnce sync.Once
	done      chan struct{}
}

// NewSyncWorker creates a sync worker and starts its request loop
func NewSyncWorker(api *client.Client, layoutCfg config.LayoutConfig, workerCfg config.WorkerConfig, m *metrics.Metrics, logger *zap.Logger) *SyncWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.NewNopMetrics()
	}
	w := &SyncWorker{
		api:       api,
		layoutCfg: layoutCfg,
		logger:    logger,
		metrics:   m,
		pool: workerpool.New(&workerpool.Config{
			Name:       "entity-decode",
			MaxWorkers: workerCfg.DecodeWorkers,
			QueueSize:  workerCfg.QueueSize,
			Logger:     logger,
		}),
		requests: make(chan Request, workerCfg.QueueSize),
		messages: make(chan Message, workerCfg.QueueSize),
		entities: make(map[int]model.EnrichedEntity),
		batches:  make(map[int]bool),
		tokens:   make(map[string]string),
		done:     make(chan struct{}),
	}
	go w.run()
	return w
}

// Messages returns the outbound message channel. Closed when the
// worker shuts down.
func (w *SyncWorker) Messages() <-chan Message {
	return w.messages
}

// Submit enqueues a request for the worker goroutine
func (w *SyncWorker) Submit(req Request) error {
	select {
	case <-w.done:
		return errors.NewEngineError(errors.ErrCodeWorkerDown, "sync worker is stopped", nil)
	default:
	}
	select {
	case <-w.done:
		return errors.NewEngineError(errors.ErrCodeWorkerDown, "sync worker is stopped", nil)
	case w.requests <- req:
		return nil
	}
}

// Close tears the worker down. Pending requests are dropped; the
// message channel is closed once the loop exits.
func (w *SyncWorker) Close() {
	w.closeOnce.Do(func() {
		close(w.done)
	})
}

func (w *SyncWorker) run() {
	defer close(w.messages)
	defer func() {
		if err := w.pool.Stop(5 * time.Second); err != nil {
			w.logger.Warn("Decode pool did not stop cleanly", zap.Error(err))
		}
	}()

	for {
		select {
		case <-w.done:
			return
		case req := <-w.requests:
			w.handle(req)
		}
	}
}

func (w *SyncWorker) handle(req Request) {
	ctx := context.Background()

	switch r := req.(type) {
	case FetchBatchRequest:
		w.handleFetchBatch(ctx, r)
	case ComputeRowRequest:
		w.handleComputeRow(ctx, r)
	case EditTagsRequest:
		w.handleEditTags(ctx, r)
	}
}

func (w *SyncWorker) handleFetchBatch(ctx context.Context, req FetchBatchRequest) {
	if _, err := w.fetchBatch(ctx, req.Batch, req.Timestamp); err != nil {
		w.fail("batch fetch", err)
	}
}

// fetchBatch fetches, validates and enriches one batch, emits its
// ReturnData message, and returns the enriched entities in index order.
func (w *SyncWorker) fetchBatch(ctx context.Context, batch int, timestamp int64) ([]model.EnrichedEntity, error) {
	if timestamp != w.timestamp {
		// New data generation: everything cached belongs to a dead
		// snapshot.
		w.entities = make(map[int]model.EnrichedEntity)
		w.batches = make(map[int]bool)
		w.timestamp = timestamp
	}

	start, end := layout.RowRange(batch, w.layoutCfg.BatchSize)

	records, err := w.api.FetchBatch(ctx, timestamp, start, end)
	if err != nil {
		return nil, err
	}

	type decoded struct {
		ok    bool
		data  model.EnrichedEntity
		token string
	}
	results := make([]decoded, len(records))

	var wg sync.WaitGroup
	for i, record := range records {
		i, record := i, record
		wg.Add(1)
		task := workerpool.Task{
			ID: uuid.NewString(),
			Fn: func(context.Context) error {
				defer wg.Done()
				entity, err := validation.DecodeEntity(record.AbstractData)
				if err != nil {
					// Partial-failure tolerant: drop the record, keep
					// the batch.
					w.metrics.ValidationFailuresTotal.Inc()
					w.logger.Warn("Dropping invalid entity payload",
						zap.Int("index", start+i),
						zap.String("field", errors.FieldOf(err)),
						zap.Error(err))
					return err
				}
				results[i] = decoded{
					ok:    true,
					data:  validation.Enrich(entity, timestamp),
					token: record.Token,
				}
				return nil
			},
		}
		if err := w.pool.Submit(ctx, task); err != nil {
			wg.Done()
			return nil, err
		}
	}
	wg.Wait()

	// Reassemble in index order so the outbound channel stays ordered.
	entries := make([]DataEntry, 0, len(results))
	ordered := make([]model.EnrichedEntity, 0, len(results))
	for i, res := range results {
		if !res.ok {
			continue
		}
		index := start + i
		w.entities[index] = res.data

		if prev, seen := w.tokens[res.data.Id]; seen && prev != res.token {
			w.emit(RefreshHashToken{Hash: res.data.Id, Token: res.token})
		}
		w.tokens[res.data.Id] = res.token

		entries = append(entries, DataEntry{Index: index, Data: res.data, AuthToken: res.token})
		ordered = append(ordered, res.data)
	}

	w.metrics.BatchesFetchedTotal.Inc()
	w.batches[batch] = true
	w.emit(ReturnData{Batch: batch, Entries: entries})
	return ordered, nil
}

func (w *SyncWorker) handleComputeRow(ctx context.Context, req ComputeRowRequest) {
	startTime := time.Now()

	start, _ := layout.RowRange(req.RowIndex, w.layoutCfg.BatchSize)

	entities := w.cachedRange(req.RowIndex, req.Timestamp)
	if entities == nil {
		fetched, err := w.fetchBatch(ctx, req.RowIndex, req.Timestamp)
		if err != nil {
			w.fail("row computation", err)
			return
		}
		entities = fetched
	}

	result := layout.ComputeRow(entities, req.RowIndex, start, layout.Params{
		SubRowHeight:   w.layoutCfg.SubRowHeight,
		Scale:          req.Scale,
		FixedRowHeight: w.layoutCfg.FixedRowHeight,
		PaddingPixel:   w.layoutCfg.PaddingPixel,
		WindowWidth:    req.WindowWidth,
	})

	w.metrics.RowsComputedTotal.Inc()
	w.metrics.RowComputeDuration.Observe(time.Since(startTime).Seconds())

	w.emit(FetchRowReturn{
		Timestamp:         req.Timestamp,
		RowWithOffset:     result,
		SubRowHeightScale: req.Scale,
	})
}

// cachedRange returns the enriched entities of a batch already
// synchronized under the given generation, nil when the batch is
// unknown. Records dropped during validation leave gaps in the index
// space; those are skipped so warm and cold row computations lay out
// the same entity set.
func (w *SyncWorker) cachedRange(batch int, timestamp int64) []model.EnrichedEntity {
	if timestamp != w.timestamp || !w.batches[batch] {
		return nil
	}
	start, end := layout.RowRange(batch, w.layoutCfg.BatchSize)
	out := make([]model.EnrichedEntity, 0, end-start)
	for i := start; i < end; i++ {
		if e, ok := w.entities[i]; ok {
			out = append(out, e)
		}
	}
	return out
}

func (w *SyncWorker) handleEditTags(ctx context.Context, req EditTagsRequest) {
	tags, err := w.api.EditTags(ctx, client.EditTagsRequest{
		IndexArray:      req.IndexArray,
		AddTagsArray:    req.AddTagsArray,
		RemoveTagsArray: req.RemoveTagsArray,
		Timestamp:       req.Timestamp,
	})
	if err != nil {
		w.fail("edit tags", err)
		return
	}
	w.emit(EditTagsReturn{ReturnedTags: tags})
	w.emit(Notification{Text: "Tags updated", Color: ColorSuccess})
}

// fail maps an operation error to the right outbound message:
// authorization failures become Unauthorized, everything else becomes
// a user-visible notification.
func (w *SyncWorker) fail(operation string, err error) {
	if errors.IsUnauthorized(err) {
		w.logger.Warn("Session invalidated", zap.String("operation", operation))
		w.emit(Unauthorized{})
		return
	}
	w.logger.Error("Worker operation failed",
		zap.String("operation", operation),
		zap.Error(err))
	w.emit(Notification{
		Text:  fmt.Sprintf("%s failed: %v", operation, err),
		Color: ColorError,
	})
}

// emit delivers a message unless the worker is shutting down
func (w *SyncWorker) emit(msg Message) {
	select {
	case <-w.done:
	case w.messages <- msg:
	}
}

// PushTimestampToken lets the API layer surface an out-of-band rotated
// session token through the worker's ordered message channel.
func (w *SyncWorker) PushTimestampToken(token string) {
	w.emit(RefreshTimestampToken{Token: token})
}
