package probe

import (
	"context"
	"io"
	"slices"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/jcolasacco/folio/pkg/gallery"
	"github.com/jcolasacco/folio/pkg/observability"
)

// Resolver holds the current resolved batch of a gallery.
//
// Every Load captures a new epoch. When its batch settles the result is
// committed only if no later Load (or Close) happened in the meantime, so
// the last request wins regardless of which response arrives last.
// Subscribers are notified after each commit, in commit order.
type Resolver struct {
	prober Prober
	opts   Options
	logger *log.Logger

	notifyMu sync.Mutex

	mu      sync.Mutex
	epoch   uint64
	cancel  context.CancelFunc
	metas   []gallery.Meta
	ready   bool
	closed  bool
	subs    map[uint64]func([]gallery.Meta)
	nextSub uint64
}

// NewResolver creates a Resolver. A nil logger discards output.
func NewResolver(p Prober, opts Options, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Resolver{
		prober: p,
		opts:   opts,
		logger: logger,
		subs:   make(map[uint64]func([]gallery.Meta)),
	}
}

// Load starts resolving refs in the background and supersedes any batch
// still in flight. The returned channel is closed once this batch has
// settled, whether it was committed or discarded.
func (r *Resolver) Load(ctx context.Context, refs []gallery.ImageRef) <-chan struct{} {
	done := make(chan struct{})
	refs = slices.Clone(refs)

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		close(done)
		return done
	}
	r.epoch++
	epoch := r.epoch
	if r.cancel != nil {
		r.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.mu.Unlock()

	go func() {
		defer close(done)
		defer cancel()

		metas, failed := resolve(ctx, r.prober, refs, r.opts)
		r.commit(ctx, epoch, metas, failed)
	}()
	return done
}

func (r *Resolver) commit(ctx context.Context, epoch uint64, metas []gallery.Meta, failed int) {
	r.notifyMu.Lock()
	defer r.notifyMu.Unlock()

	r.mu.Lock()
	if epoch != r.epoch || r.closed {
		r.mu.Unlock()
		observability.Probe().OnBatchDiscarded(ctx, len(metas))
		r.logger.Debug("discarded stale probe batch", "epoch", epoch, "images", len(metas))
		return
	}
	r.metas = metas
	r.ready = true
	subs := make([]func([]gallery.Meta), 0, len(r.subs))
	for _, fn := range r.subs {
		subs = append(subs, fn)
	}
	r.mu.Unlock()

	if failed > 0 {
		r.logger.Warn("some images could not be probed", "failed", failed, "images", len(metas))
	}
	r.logger.Debug("probe batch committed", "epoch", epoch, "images", len(metas))

	for _, fn := range subs {
		fn(slices.Clone(metas))
	}
}

// Metas returns a copy of the committed batch. ok is false while no batch
// has been committed yet (the loading state).
func (r *Resolver) Metas() (metas []gallery.Meta, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.metas), r.ready
}

// Loading reports whether no batch has been committed yet.
func (r *Resolver) Loading() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.ready
}

// Subscribe registers fn to receive every committed batch. The returned
// function removes the subscription.
func (r *Resolver) Subscribe(fn func([]gallery.Meta)) (cancel func()) {
	r.mu.Lock()
	id := r.nextSub
	r.nextSub++
	r.subs[id] = fn
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.subs, id)
			r.mu.Unlock()
		})
	}
}

// Close cancels any batch in flight and drops all subscriptions. Later
// Loads are ignored.
func (r *Resolver) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	r.epoch++
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	clear(r.subs)
}
