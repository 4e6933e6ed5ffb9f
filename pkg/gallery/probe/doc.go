// Package probe resolves the natural aspect ratio of gallery images.
//
// A [Prober] reads just enough of an image to learn its pixel size. The
// package ships three:
//
//   - [FileProber]: site-relative URLs mapped onto the public directory
//   - [HTTPProber]: absolute http(s) URLs fetched through pkg/httputil
//   - [CachedProber]: memoises any prober in a pkg/cache backend
//
// [Resolve] probes a batch concurrently and returns one [gallery.Meta] per
// reference, in input order, only after every probe has settled. A probe
// that fails yields an aspect ratio of exactly 1 so the image still gets a
// square placeholder tile.
//
// [Resolver] wraps Resolve with a request epoch: each [Resolver.Load]
// supersedes the previous one, and a batch that settles after being
// superseded is dropped instead of overwriting newer state.
//
// # Usage
//
//	p := probe.NewCachedProber(probe.NewFileProber("public"), c, nil, 0)
//	metas := probe.Resolve(ctx, p, refs, probe.Options{})
package probe
