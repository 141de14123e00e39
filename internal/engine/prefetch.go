package engine

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hsa00000/urocissa/internal/errors"
	"github.com/hsa00000/urocissa/internal/model"
	"github.com/hsa00000/urocissa/internal/tokencache"
	"github.com/hsa00000/urocissa/internal/worker"
)

// NavState is the parsed navigation state a view instance was opened
// with. The locate target resolution follows its precedence rules:
// a sub-view's subhash wins at the detail level, then the main hash,
// then an explicit locate query parameter.
type NavState struct {
	PriorityId string
	Reverse    string
	Locate     string
	Hash       string
	SubHash    string
	IsShare    bool
	IsSubView  bool
	Level      int
	Filter     *string
}

// resolveLocate picks the locate target for this navigation
func (n NavState) resolveLocate() *string {
	if n.IsSubView && n.Level == 4 && n.SubHash != "" {
		return &n.SubHash
	}
	if !n.IsSubView && n.Hash != "" {
		return &n.Hash
	}
	if n.Locate != "" {
		return &n.Locate
	}
	return nil
}

// PrefetchController orchestrates the initial data acquisition for one
// view instance: it waits for the first non-zero debounced viewport
// width, then runs the config chain and the data chain concurrently to
// completion, exactly once.
type PrefetchController struct {
	engine *Engine
	nav    NavState
	widths chan float64
	done   chan struct{}
	logger *zap.Logger

	quiet   time.Duration
	maxWait time.Duration
}

// NewPrefetchController creates a controller for one view instance
func NewPrefetchController(e *Engine, nav NavState) *PrefetchController {
	return &PrefetchController{
		engine:  e,
		nav:     nav,
		widths:  make(chan float64, 16),
		done:    make(chan struct{}),
		logger:  e.logger,
		quiet:   e.cfg.Prefetch.DebounceQuiet,
		maxWait: e.cfg.Prefetch.DebounceMax,
	}
}

// ObserveWidth feeds a viewport width sample. Samples arriving after
// the prefetch has run still update the live width for the staleness
// guard, but trigger no further work.
func (p *PrefetchController) ObserveWidth(width float64) {
	p.engine.Prefetch.SetWindowWidth(width)
	select {
	case p.widths <- width:
	default:
	}
}

// Run blocks until the debounced first non-zero width arrives, then
// executes both chains. Layout thrash during a resize is absorbed by
// the quiet period; the max wait bounds how long a continuous resize
// can defer the fetch.
func (p *PrefetchController) Run(ctx context.Context) error {
	defer close(p.done)

	width, err := p.awaitWidth(ctx)
	if err != nil {
		return err
	}
	p.engine.Prefetch.SetWindowWidth(width)

	p.engine.metrics.PrefetchRunsTotal.Inc()
	started := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return p.configChain(gctx) })
	g.Go(func() error { return p.dataChain(gctx) })

	if err := g.Wait(); err != nil {
		p.engine.metrics.PrefetchFailuresTotal.Inc()
		return err
	}
	p.engine.metrics.PrefetchDuration.Observe(time.Since(started).Seconds())
	return nil
}

// awaitWidth debounces width samples: a sample is accepted once no new
// sample has arrived for the quiet period, or once the max wait since
// the first pending sample has elapsed.
func (p *PrefetchController) awaitWidth(ctx context.Context) (float64, error) {
	var (
		pending  float64
		havePend bool
		quiet    *time.Timer
		deadline *time.Timer
	)
	stop := func(t *time.Timer) {
		if t != nil {
			t.Stop()
		}
	}
	defer stop(quiet)
	defer stop(deadline)

	quietC := func() <-chan time.Time {
		if quiet == nil {
			return nil
		}
		return quiet.C
	}
	deadlineC := func() <-chan time.Time {
		if deadline == nil {
			return nil
		}
		return deadline.C
	}

	for {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case w := <-p.widths:
			if w <= 0 {
				continue
			}
			pending = w
			if !havePend {
				havePend = true
				deadline = time.NewTimer(p.maxWait)
			}
			if quiet == nil {
				quiet = time.NewTimer(p.quiet)
			} else {
				quiet.Reset(p.quiet)
			}
		case <-quietC():
			if havePend {
				return pending, nil
			}
		case <-deadlineC():
			if havePend {
				return pending, nil
			}
		}
	}
}

// configChain fetches the application configuration once. Idempotent:
// a loaded config short-circuits.
func (p *PrefetchController) configChain(ctx context.Context) error {
	p.engine.configMu.Lock()
	defer p.engine.configMu.Unlock()
	if p.engine.appConfig != nil {
		return nil
	}
	cfg, err := p.engine.api.FetchConfig(ctx)
	if err != nil {
		return err
	}
	p.engine.appConfig = &cfg
	return nil
}

// dataChain is the load-bearing sequence: the data window opens a new
// generation and rotates the timestamp token; the scrollbar summary is
// authorized with that token, so it must not start before the token
// sync. Tag and album indexes ride along outside share contexts.
func (p *PrefetchController) dataChain(ctx context.Context) error {
	e := p.engine

	ret, err := e.api.Prefetch(ctx, p.nav.Filter, p.nav.PriorityId, p.nav.Reverse, p.nav.resolveLocate())
	if err != nil {
		return err
	}

	// Token/timestamp sync must complete before any dependent fetch.
	e.Main.Share.SetResolved(ret.ResolvedShare)
	if ret.ResolvedShare != nil {
		p.persistShare(*ret.ResolvedShare)
	}
	e.Dispatcher.SyncPrefetch(ret, e.cfg.Layout.BatchSize, e.cfg.Layout.FixedRowHeight)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return p.fetchScrollbar(gctx) })

	if !p.nav.IsShare {
		if !e.Main.Tags.Fetched() {
			g.Go(func() error {
				tags, err := e.api.FetchTags(gctx)
				if err != nil {
					return err
				}
				e.Main.Tags.ApplyTags(tags)
				return nil
			})
		}
		if !e.Main.Albums.Fetched() {
			g.Go(func() error {
				albums, err := e.api.FetchAlbums(gctx)
				if err != nil {
					return err
				}
				e.Main.Albums.ApplyAlbums(albums)
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return err
	}

	// Everything settled: tell the layout engine to start producing rows.
	e.Prefetch.FlipFetchRowTrigger()
	return nil
}

func (p *PrefetchController) fetchScrollbar(ctx context.Context) error {
	e := p.engine
	ts := e.Prefetch.Timestamp()
	if ts == 0 {
		// Local abort: no network call without the precondition.
		e.Dispatcher.Handle(worker.Notification{
			Text:  "Cannot load scrollbar: no data timestamp",
			Color: worker.ColorError,
		})
		return errors.MissingTimestamp("scrollbar fetch")
	}
	marks, err := e.api.FetchScrollbar(ctx, ts)
	if err != nil {
		return err
	}
	e.Scrollbar.SetMarks(marks)
	return nil
}

// persistShare writes the share descriptor to the durable cache so the
// byte-authorization proxy can attach share headers to media requests.
func (p *PrefetchController) persistShare(resolved model.ResolvedShare) {
	if p.engine.cache == nil {
		return
	}
	info := tokencache.ShareInfo{
		AlbumId: resolved.AlbumId,
		ShareId: resolved.Share.Url,
	}
	if resolved.Share.Password != nil {
		info.Password = *resolved.Share.Password
	}
	if err := p.engine.cache.PutShare(info); err != nil {
		p.logger.Warn("Share descriptor write failed",
			zap.String("album_id", info.AlbumId),
			zap.String("share_id", info.ShareId),
			zap.Error(err))
	}
}
