package probe

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jcolasacco/folio/pkg/gallery"
	"github.com/jcolasacco/folio/pkg/observability"
)

// gatedProber blocks probes for URLs in gates until the gate is closed.
type gatedProber struct {
	gates map[string]chan struct{}
}

func (p *gatedProber) Probe(ctx context.Context, url string) (gallery.Size, error) {
	if g, ok := p.gates[url]; ok {
		<-g
	}
	return gallery.Size{Width: 2, Height: 1}, nil
}

type discardRecorder struct {
	observability.NoopProbeHooks
	mu        sync.Mutex
	discarded int
}

func (r *discardRecorder) OnBatchDiscarded(_ context.Context, count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.discarded += count
}

func wait(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("batch did not settle")
	}
}

func TestResolverLoad(t *testing.T) {
	r := NewResolver(newFakeProber(nil), Options{}, nil)
	if !r.Loading() {
		t.Error("new resolver should be loading")
	}
	if _, ok := r.Metas(); ok {
		t.Error("Metas() ok before first batch")
	}

	var got [][]gallery.Meta
	var mu sync.Mutex
	r.Subscribe(func(m []gallery.Meta) {
		mu.Lock()
		got = append(got, m)
		mu.Unlock()
	})

	wait(t, r.Load(context.Background(), refsOf("a.jpg", "b.jpg")))

	metas, ok := r.Metas()
	if !ok || len(metas) != 2 {
		t.Fatalf("Metas() = %d, %v; want 2, true", len(metas), ok)
	}
	if r.Loading() {
		t.Error("resolver still loading after commit")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 || len(got[0]) != 2 {
		t.Errorf("subscriber got %d notifications", len(got))
	}
}

func TestResolverDiscardsStaleBatch(t *testing.T) {
	rec := &discardRecorder{}
	observability.SetProbeHooks(rec)
	defer observability.Reset()

	gate := make(chan struct{})
	p := &gatedProber{gates: map[string]chan struct{}{"/photos/thumbs/old.jpg": gate}}
	r := NewResolver(p, Options{}, nil)

	var notified []string
	var mu sync.Mutex
	r.Subscribe(func(m []gallery.Meta) {
		mu.Lock()
		defer mu.Unlock()
		for _, meta := range m {
			notified = append(notified, meta.FullURL)
		}
	})

	stale := r.Load(context.Background(), refsOf("old.jpg"))
	fresh := r.Load(context.Background(), refsOf("new-1.jpg", "new-2.jpg"))
	wait(t, fresh)

	// The stale batch settles after the fresh one has committed.
	close(gate)
	wait(t, stale)

	metas, _ := r.Metas()
	if len(metas) != 2 || metas[0].FullURL != "/photos/new-1.jpg" {
		t.Fatalf("Metas() = %+v, want the fresh batch", metas)
	}

	mu.Lock()
	defer mu.Unlock()
	for _, u := range notified {
		if u == "/photos/old.jpg" {
			t.Error("stale batch was published to subscribers")
		}
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.discarded != 1 {
		t.Errorf("discarded = %d, want 1", rec.discarded)
	}
}

func TestResolverClose(t *testing.T) {
	gate := make(chan struct{})
	p := &gatedProber{gates: map[string]chan struct{}{"/photos/thumbs/a.jpg": gate}}
	r := NewResolver(p, Options{}, nil)

	calls := 0
	r.Subscribe(func([]gallery.Meta) { calls++ })

	done := r.Load(context.Background(), refsOf("a.jpg"))
	r.Close()
	close(gate)
	wait(t, done)

	if calls != 0 {
		t.Errorf("subscriber called %d times after Close", calls)
	}
	if !r.Loading() {
		t.Error("batch committed after Close")
	}

	wait(t, r.Load(context.Background(), refsOf("b.jpg")))
	if !r.Loading() {
		t.Error("Load after Close should be ignored")
	}
}

func TestResolverUnsubscribe(t *testing.T) {
	r := NewResolver(newFakeProber(nil), Options{}, nil)

	calls := 0
	cancel := r.Subscribe(func([]gallery.Meta) { calls++ })
	cancel()
	cancel()

	wait(t, r.Load(context.Background(), refsOf("a.jpg")))
	if calls != 0 {
		t.Errorf("unsubscribed callback called %d times", calls)
	}
}
