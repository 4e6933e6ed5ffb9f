// Package live ties the gallery components into one reactive object.
//
// A [Gallery] owns a probe.Resolver, a viewport.Tracker, a viewport.Field
// and a lightbox.Controller. Rows are recomputed as a pure function of the
// resolved metas and the tracked width whenever either changes; every
// change produces a [Snapshot] for the registered listener.
//
// # Usage
//
//	g := live.New(prober, exif, live.Config{}, logger)
//	defer g.Close()
//	g.OnChange(func(s live.Snapshot) { send(s) })
//	g.SetImages(ctx, refs)
//	g.Resize(1280)
//	g.Scroll(0, 900)
package live
