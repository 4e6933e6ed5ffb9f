package probe

import (
	"context"
	"time"

	"github.com/jcolasacco/folio/pkg/cache"
	"github.com/jcolasacco/folio/pkg/gallery"
	"github.com/jcolasacco/folio/pkg/observability"
)

// DefaultTTL is how long a probed size stays cached.
const DefaultTTL = 30 * 24 * time.Hour

// CachedProber memoises sizes of an inner prober. Failed probes are not
// cached so a fixed file is picked up on the next load.
type CachedProber struct {
	inner Prober
	cache cache.Cache
	keyer cache.Keyer
	ttl   time.Duration
}

// NewCachedProber wraps inner. A nil keyer uses the default keyer and a
// zero ttl uses DefaultTTL.
func NewCachedProber(inner Prober, c cache.Cache, keyer cache.Keyer, ttl time.Duration) *CachedProber {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &CachedProber{inner: inner, cache: c, keyer: keyer, ttl: ttl}
}

// Probe implements Prober.
func (p *CachedProber) Probe(ctx context.Context, url string) (gallery.Size, error) {
	var version string
	if v, ok := p.inner.(Versioner); ok {
		version, _ = v.Version(url)
	}
	key := p.keyer.ProbeKey(url, version)

	var size gallery.Size
	if ok, _ := cache.GetJSON(ctx, p.cache, key, &size); ok {
		observability.Cache().OnCacheHit(ctx, "probe")
		return size, nil
	}
	observability.Cache().OnCacheMiss(ctx, "probe")

	size, err := p.inner.Probe(ctx, url)
	if err != nil {
		return size, err
	}
	if err := cache.SetJSON(ctx, p.cache, key, size, p.ttl); err == nil {
		observability.Cache().OnCacheSet(ctx, "probe", 1)
	}
	return size, nil
}

// Version implements Versioner by delegating to the inner prober.
func (p *CachedProber) Version(url string) (string, error) {
	if v, ok := p.inner.(Versioner); ok {
		return v.Version(url)
	}
	return "", nil
}
