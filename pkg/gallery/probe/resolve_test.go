package probe

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jcolasacco/folio/pkg/gallery"
)

func refsOf(names ...string) []gallery.ImageRef {
	refs := make([]gallery.ImageRef, len(names))
	for i, n := range names {
		refs[i] = gallery.ImageRef{ThumbURL: "/photos/thumbs/" + n, FullURL: "/photos/" + n}
	}
	return refs
}

func TestResolve(t *testing.T) {
	p := newFakeProber(map[string]gallery.Size{
		"/photos/thumbs/wide.jpg": {Width: 1600, Height: 900},
		"/photos/thumbs/tall.jpg": {Width: 600, Height: 1200},
		"/photos/thumbs/flat.jpg": {Width: 800, Height: 0},
	})
	p.delay = time.Millisecond

	refs := refsOf("wide.jpg", "missing.jpg", "tall.jpg", "flat.jpg")
	metas := Resolve(context.Background(), p, refs, Options{Concurrency: 2})

	if len(metas) != len(refs) {
		t.Fatalf("got %d metas, want %d", len(metas), len(refs))
	}

	want := []float64{1600.0 / 900.0, 1, 0.5, 800}
	for i, m := range metas {
		if m.FullURL != refs[i].FullURL || m.ThumbURL != refs[i].ThumbURL {
			t.Errorf("meta %d = %s, want %s (order must be preserved)", i, m.FullURL, refs[i].FullURL)
		}
		if m.AspectRatio != want[i] {
			t.Errorf("meta %d ratio = %v, want %v", i, m.AspectRatio, want[i])
		}
	}
}

func TestResolveFallbackRatioIsExactlyOne(t *testing.T) {
	p := Func(func(ctx context.Context, url string) (gallery.Size, error) {
		return gallery.Size{}, fmt.Errorf("decode failed")
	})
	for _, m := range Resolve(context.Background(), p, refsOf("a.jpg", "b.jpg"), Options{}) {
		if m.AspectRatio != 1.0 {
			t.Errorf("%s ratio = %v, want 1.0", m.FullURL, m.AspectRatio)
		}
	}
}

func TestResolveEmpty(t *testing.T) {
	metas := Resolve(context.Background(), newFakeProber(nil), nil, Options{})
	if metas == nil || len(metas) != 0 {
		t.Errorf("Resolve(nil) = %#v, want empty non-nil slice", metas)
	}
}

func TestResolveConcurrencyLimit(t *testing.T) {
	var inFlight, peak atomic.Int32
	p := Func(func(ctx context.Context, url string) (gallery.Size, error) {
		n := inFlight.Add(1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		inFlight.Add(-1)
		return gallery.Size{Width: 1, Height: 1}, nil
	})

	names := make([]string, 20)
	for i := range names {
		names[i] = fmt.Sprintf("%02d.jpg", i)
	}
	Resolve(context.Background(), p, refsOf(names...), Options{Concurrency: 3})

	if got := peak.Load(); got > 3 {
		t.Errorf("peak concurrency = %d, want <= 3", got)
	}
}

type mapDater map[string]time.Time

func (d mapDater) Taken(_ context.Context, fullURL string) time.Time { return d[fullURL] }

func TestResolveSortsByCaptureTime(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 5, d, 12, 0, 0, 0, time.UTC) }
	p := newFakeProber(nil)
	dater := mapDater{
		"/photos/a.jpg": day(1),
		"/photos/b.jpg": day(3),
		"/photos/d.jpg": day(2),
	}

	refs := refsOf("a.jpg", "b.jpg", "c.jpg", "d.jpg")
	refs[2].Taken = day(4) // known by the catalog, dater not consulted

	tests := []struct {
		order Order
		want  []string
	}{
		{OrderInput, []string{"a", "b", "c", "d"}},
		{OrderNewest, []string{"c", "b", "d", "a"}},
		{OrderOldest, []string{"a", "d", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.order.String(), func(t *testing.T) {
			metas := Resolve(context.Background(), p, refs, Options{Dater: dater, Order: tt.order})
			for i, m := range metas {
				if want := "/photos/" + tt.want[i] + ".jpg"; m.FullURL != want {
					t.Errorf("position %d = %s, want %s", i, m.FullURL, want)
				}
			}
		})
	}
}

func TestSortByTakenUndatedLast(t *testing.T) {
	metas := []gallery.Meta{
		{FullURL: "undated-1"},
		{FullURL: "dated", Taken: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)},
		{FullURL: "undated-2"},
	}
	SortByTaken(metas, OrderNewest)

	want := []string{"dated", "undated-1", "undated-2"}
	for i, m := range metas {
		if m.FullURL != want[i] {
			t.Errorf("position %d = %s, want %s", i, m.FullURL, want[i])
		}
	}
}
