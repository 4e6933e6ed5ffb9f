package server

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/jcolasacco/folio/pkg/observability"
)

// LogHooks reports probe, layout and cache events to a logger at debug
// level. Install it with [InstallLogHooks].
type LogHooks struct {
	Logger *log.Logger
}

var (
	_ observability.ProbeHooks  = LogHooks{}
	_ observability.LayoutHooks = LogHooks{}
	_ observability.CacheHooks  = LogHooks{}
)

// InstallLogHooks registers logger-backed hooks for every event category.
func InstallLogHooks(logger *log.Logger) {
	h := LogHooks{Logger: logger.WithPrefix("hooks")}
	observability.SetProbeHooks(h)
	observability.SetLayoutHooks(h)
	observability.SetCacheHooks(h)
}

func (h LogHooks) OnBatchStart(_ context.Context, count int) {
	h.Logger.Debug("probe batch started", "images", count)
}

func (h LogHooks) OnBatchComplete(_ context.Context, count, failed int, d time.Duration) {
	if failed > 0 {
		h.Logger.Warn("probe batch complete", "images", count, "failed", failed, "took", d.Round(time.Millisecond))
		return
	}
	h.Logger.Debug("probe batch complete", "images", count, "took", d.Round(time.Millisecond))
}

func (h LogHooks) OnBatchDiscarded(_ context.Context, count int) {
	h.Logger.Debug("probe batch discarded", "images", count)
}

func (h LogHooks) OnPack(_ context.Context, items int, width float64, rows int, d time.Duration) {
	h.Logger.Debug("packed rows", "items", items, "width", width, "rows", rows, "took", d)
}

func (h LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}
