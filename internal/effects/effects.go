package effects

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/five82/vpick/internal/catalog"
	"github.com/five82/vpick/internal/state"
)

// Messages used when a failed fetch carries no text of its own.
const (
	defaultMakesError  = "Failed to load makes"
	defaultTypesError  = "Failed to load vehicle types"
	defaultModelsError = "Failed to load vehicle models"
)

// ErrAlreadyRunning is returned by a second call to Run.
var ErrAlreadyRunning = errors.New("orchestrator already running")

// Options configure an Orchestrator.
type Options struct {
	Store      *state.Store
	Source     catalog.DataSource
	Logger     *zap.SugaredLogger
	Registerer prometheus.Registerer
}

// Orchestrator turns load requests into DataSource calls and dispatches
// their outcome. Actions are handled one at a time in dispatch order; the
// fetches themselves run concurrently.
type Orchestrator struct {
	store   *state.Store
	source  catalog.DataSource
	logger  *zap.SugaredLogger
	metrics *metrics

	mu     sync.Mutex
	queue  []item
	signal chan struct{}

	unlisten    func()
	running     atomic.Bool
	wg          sync.WaitGroup
	outstanding atomic.Int64

	// Owned by the Run goroutine.
	pending map[catalog.Kind]map[int]uint64
	seq     uint64
}

// item is one unit of work for the decision loop: either an applied action
// with the state it produced, or the completion of a fetch.
type item struct {
	action   state.Action
	snapshot state.State
	done     *completion
}

type completion struct {
	kind catalog.Kind
	key  int
	seq  uint64
}

// New registers an orchestrator on opts.Store. Actions dispatched before Run
// starts are queued and handled once it does.
func New(opts Options) (*Orchestrator, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("effects: store is required")
	}
	if opts.Source == nil {
		return nil, fmt.Errorf("effects: data source is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	o := &Orchestrator{
		store:   opts.Store,
		source:  opts.Source,
		logger:  logger,
		metrics: newMetrics(opts.Registerer),
		signal:  make(chan struct{}, 1),
		pending: map[catalog.Kind]map[int]uint64{
			catalog.KindTypes:  {},
			catalog.KindModels: {},
		},
	}
	o.unlisten = o.store.Listen(o.enqueue)
	return o, nil
}

// enqueue runs inside Dispatch, so it only records the action together with
// the state it produced.
func (o *Orchestrator) enqueue(a state.Action) {
	o.push(item{action: a, snapshot: o.store.Snapshot()})
}

func (o *Orchestrator) push(it item) {
	o.mu.Lock()
	o.queue = append(o.queue, it)
	o.mu.Unlock()
	select {
	case o.signal <- struct{}{}:
	default:
	}
}

func (o *Orchestrator) next(ctx context.Context) (item, bool) {
	for {
		o.mu.Lock()
		if len(o.queue) > 0 {
			it := o.queue[0]
			o.queue[0] = item{}
			o.queue = o.queue[1:]
			o.mu.Unlock()
			return it, true
		}
		o.mu.Unlock()

		select {
		case <-ctx.Done():
			return item{}, false
		case <-o.signal:
		}
	}
}

// Run handles queued actions until ctx is done. It then stops listening and
// waits for outstanding fetches, whose results are still dispatched.
func (o *Orchestrator) Run(ctx context.Context) error {
	if !o.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer o.drain()
	defer o.unlisten()

	fetchCtx := context.WithoutCancel(ctx)
	for {
		it, ok := o.next(ctx)
		if !ok {
			return nil
		}
		o.handle(fetchCtx, it)
	}
}

// drain waits for outstanding fetches. They are not cancelled, so a slow
// request delays shutdown by up to the client's timeout and retries.
func (o *Orchestrator) drain() {
	if n := o.outstanding.Load(); n > 0 {
		o.logger.Infow("waiting for in-flight fetches", "count", n)
		start := time.Now()
		defer func() {
			o.logger.Infow("in-flight fetches finished", "waited", time.Since(start))
		}()
	}
	o.wg.Wait()
}

func (o *Orchestrator) handle(ctx context.Context, it item) {
	if it.done != nil {
		if o.pending[it.done.kind][it.done.key] == it.done.seq {
			delete(o.pending[it.done.kind], it.done.key)
		}
		return
	}

	switch a := it.action.(type) {
	case state.LoadMakes:
		o.start(ctx, catalog.KindMakes, 0, o.fetchMakes)

	case state.LoadTypesForMake:
		if o.skip(catalog.KindTypes, a.MakeID, state.IsTypesLoaded(it.snapshot, a.MakeID)) {
			return
		}
		o.start(ctx, catalog.KindTypes, a.MakeID, o.fetchTypes)

	case state.LoadModelsForMake:
		if o.skip(catalog.KindModels, a.MakeID, state.IsModelsLoaded(it.snapshot, a.MakeID)) {
			return
		}
		o.start(ctx, catalog.KindModels, a.MakeID, o.fetchModels)

	// A terminal action settles its key; a later request decides on the state
	// it produced.
	case state.LoadTypesForMakeSucceeded:
		delete(o.pending[catalog.KindTypes], a.MakeID)
	case state.LoadTypesForMakeFailed:
		delete(o.pending[catalog.KindTypes], a.MakeID)
	case state.LoadModelsForMakeSucceeded:
		delete(o.pending[catalog.KindModels], a.MakeID)
	case state.LoadModelsForMakeFailed:
		delete(o.pending[catalog.KindModels], a.MakeID)
	}
}

// skip reports whether a per-make load can be answered without a fetch.
func (o *Orchestrator) skip(kind catalog.Kind, key int, loaded bool) bool {
	reason := ""
	switch {
	case loaded:
		reason = reasonCached
	default:
		if _, ok := o.pending[kind][key]; ok {
			reason = reasonInflight
		}
	}
	if reason == "" {
		return false
	}
	o.metrics.dedup.WithLabelValues(kind.String(), reason).Inc()
	o.logger.Debugw("load deduplicated", "kind", kind.String(), "make_id", key, "reason", reason)
	return true
}

type fetchFunc func(ctx context.Context, key int) (state.Action, error)

func (o *Orchestrator) start(ctx context.Context, kind catalog.Kind, key int, fetch fetchFunc) {
	o.seq++
	seq := o.seq
	if p, ok := o.pending[kind]; ok {
		p[key] = seq
	}

	o.metrics.inflight.WithLabelValues(kind.String()).Inc()
	o.wg.Add(1)
	o.outstanding.Add(1)
	go func() {
		defer o.wg.Done()
		defer o.outstanding.Add(-1)
		defer o.metrics.inflight.WithLabelValues(kind.String()).Dec()
		defer o.push(item{done: &completion{kind: kind, key: key, seq: seq}})

		a, err := fetch(ctx, key)
		if err != nil {
			o.metrics.fetches.WithLabelValues(kind.String(), outcomeInvalid).Inc()
			o.logger.Warnw("fetch rejected", "kind", kind.String(), "make_id", key, "error", err)
			return
		}
		outcome := outcomeSuccess
		switch a.(type) {
		case state.LoadMakesFailed, state.LoadTypesForMakeFailed, state.LoadModelsForMakeFailed:
			outcome = outcomeFailure
		}
		o.metrics.fetches.WithLabelValues(kind.String(), outcome).Inc()

		if err := o.store.Dispatch(a); err != nil {
			o.logger.Debugw("result dropped", "kind", kind.String(), "make_id", key, "error", err)
		}
	}()
}

// The fetch functions turn a DataSource call into its terminal action. A
// validation error is returned instead, since it never reaches the state.

func (o *Orchestrator) fetchMakes(ctx context.Context, _ int) (state.Action, error) {
	makes, err := o.source.FetchMakes(ctx)
	if err != nil {
		if catalog.IsValidation(err) {
			return nil, err
		}
		o.logger.Warnw("makes fetch failed", "error", err)
		return state.LoadMakesFailed{Err: message(err, defaultMakesError)}, nil
	}
	return state.LoadMakesSucceeded{Makes: makes}, nil
}

func (o *Orchestrator) fetchTypes(ctx context.Context, key int) (state.Action, error) {
	types, err := o.source.FetchTypesForMake(ctx, key)
	if err != nil {
		if catalog.IsValidation(err) {
			return nil, err
		}
		o.logger.Warnw("types fetch failed", "make_id", key, "error", err)
		return state.LoadTypesForMakeFailed{MakeID: key, Err: message(err, defaultTypesError)}, nil
	}
	return state.LoadTypesForMakeSucceeded{MakeID: key, Types: types}, nil
}

func (o *Orchestrator) fetchModels(ctx context.Context, key int) (state.Action, error) {
	models, err := o.source.FetchModelsForMake(ctx, key)
	if err != nil {
		if catalog.IsValidation(err) {
			return nil, err
		}
		o.logger.Warnw("models fetch failed", "make_id", key, "error", err)
		return state.LoadModelsForMakeFailed{MakeID: key, Err: message(err, defaultModelsError)}, nil
	}
	return state.LoadModelsForMakeSucceeded{MakeID: key, Models: models}, nil
}

func message(err error, fallback string) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
