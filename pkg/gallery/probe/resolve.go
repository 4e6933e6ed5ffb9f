package probe

import (
	"context"
	"sort"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jcolasacco/folio/pkg/errors"
	"github.com/jcolasacco/folio/pkg/gallery"
	"github.com/jcolasacco/folio/pkg/observability"
)

// DefaultConcurrency bounds the number of probes in flight per batch.
const DefaultConcurrency = 8

// FallbackRatio is used for every image whose probe fails.
const FallbackRatio = 1.0

// Dater looks up the capture time of a full-resolution image. A zero time
// means unknown.
type Dater interface {
	Taken(ctx context.Context, fullURL string) time.Time
}

// Order selects how a resolved batch is sorted.
type Order int

const (
	// OrderInput keeps the order of the references.
	OrderInput Order = iota
	// OrderNewest puts the most recent capture first.
	OrderNewest
	// OrderOldest puts the earliest capture first.
	OrderOldest
)

// ParseOrder maps "desc", "asc" and "none" (or "") to an Order.
func ParseOrder(s string) (Order, error) {
	switch s {
	case "desc", "newest":
		return OrderNewest, nil
	case "asc", "oldest":
		return OrderOldest, nil
	case "", "none", "input":
		return OrderInput, nil
	}
	return OrderInput, errors.New(errors.ErrCodeInvalidOptions, "unknown sort order %q (want desc, asc or none)", s)
}

// String returns the configuration name of the order.
func (o Order) String() string {
	switch o {
	case OrderNewest:
		return "desc"
	case OrderOldest:
		return "asc"
	default:
		return "none"
	}
}

// Options configures a batch.
type Options struct {
	// Concurrency limits probes in flight. Zero uses DefaultConcurrency.
	Concurrency int
	// Dater supplies capture times for references that carry none.
	Dater Dater
	// Order sorts the batch by capture time. Undated images sort as if
	// taken at the zero time.
	Order Order
}

// Resolve probes the thumbnail of every ref concurrently and returns one
// Meta per ref once all probes have settled. A failed probe yields
// FallbackRatio; it never drops the image. Without an Order the output
// order equals the input order.
func Resolve(ctx context.Context, p Prober, refs []gallery.ImageRef, opts Options) []gallery.Meta {
	metas, _ := resolve(ctx, p, refs, opts)
	return metas
}

func resolve(ctx context.Context, p Prober, refs []gallery.ImageRef, opts Options) ([]gallery.Meta, int) {
	if len(refs) == 0 {
		return []gallery.Meta{}, 0
	}
	limit := opts.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	start := time.Now()
	observability.Probe().OnBatchStart(ctx, len(refs))

	metas := make([]gallery.Meta, len(refs))
	var failed atomic.Int64

	var g errgroup.Group
	g.SetLimit(limit)
	for i, ref := range refs {
		g.Go(func() error {
			ratio := FallbackRatio
			if size, err := p.Probe(ctx, ref.ThumbURL); err == nil {
				ratio = size.Ratio()
			} else {
				failed.Add(1)
			}

			taken := ref.Taken
			if taken.IsZero() && opts.Dater != nil {
				taken = opts.Dater.Taken(ctx, ref.FullURL)
			}

			metas[i] = gallery.Meta{
				ThumbURL:    ref.ThumbURL,
				FullURL:     ref.FullURL,
				AspectRatio: ratio,
				Taken:       taken,
			}
			return nil
		})
	}
	_ = g.Wait()

	SortByTaken(metas, opts.Order)

	n := int(failed.Load())
	observability.Probe().OnBatchComplete(ctx, len(refs), n, time.Since(start))
	return metas, n
}

// SortByTaken orders metas in place by capture time. The sort is stable so
// images with equal (or unknown) times keep their relative order.
func SortByTaken(metas []gallery.Meta, order Order) {
	switch order {
	case OrderNewest:
		sort.SliceStable(metas, func(i, j int) bool { return metas[i].Taken.After(metas[j].Taken) })
	case OrderOldest:
		sort.SliceStable(metas, func(i, j int) bool { return metas[i].Taken.Before(metas[j].Taken) })
	}
}
