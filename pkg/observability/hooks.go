// Package observability provides hooks for metrics, tracing, and logging.
//
// Libraries emit events through package-level hook registries; the default
// hooks do nothing. A binary registers real implementations at startup:
//
//	func main() {
//	    observability.SetProbeHooks(myProbeHooks{})
//	    observability.SetCacheHooks(myCacheHooks{})
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Probe().OnBatchStart(ctx, len(refs))
//	// ... probe ...
//	observability.Probe().OnBatchComplete(ctx, len(refs), failed, time.Since(start))
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Probe Hooks
// =============================================================================

// ProbeHooks receives events from the aspect-ratio resolver.
type ProbeHooks interface {
	OnBatchStart(ctx context.Context, count int)
	OnBatchComplete(ctx context.Context, count, failed int, duration time.Duration)
	// OnBatchDiscarded records a batch that settled after being superseded.
	OnBatchDiscarded(ctx context.Context, count int)
}

// =============================================================================
// Layout Hooks
// =============================================================================

// LayoutHooks receives events from the row packer.
type LayoutHooks interface {
	OnPack(ctx context.Context, items int, width float64, rows int, duration time.Duration)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopProbeHooks is a no-op implementation of ProbeHooks.
type NoopProbeHooks struct{}

func (NoopProbeHooks) OnBatchStart(context.Context, int)                        {}
func (NoopProbeHooks) OnBatchComplete(context.Context, int, int, time.Duration) {}
func (NoopProbeHooks) OnBatchDiscarded(context.Context, int)                    {}

// NoopLayoutHooks is a no-op implementation of LayoutHooks.
type NoopLayoutHooks struct{}

func (NoopLayoutHooks) OnPack(context.Context, int, float64, int, time.Duration) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	probeHooks  ProbeHooks  = NoopProbeHooks{}
	layoutHooks LayoutHooks = NoopLayoutHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	hooksMu     sync.RWMutex
)

// SetProbeHooks registers custom probe hooks.
func SetProbeHooks(h ProbeHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		probeHooks = h
	}
}

// SetLayoutHooks registers custom layout hooks.
func SetLayoutHooks(h LayoutHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		layoutHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Probe returns the registered probe hooks.
func Probe() ProbeHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return probeHooks
}

// Layout returns the registered layout hooks.
func Layout() LayoutHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return layoutHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	probeHooks = NoopProbeHooks{}
	layoutHooks = NoopLayoutHooks{}
	cacheHooks = NoopCacheHooks{}
}
