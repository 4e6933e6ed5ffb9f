// Package pkg provides the libraries behind folio, a personal portfolio site
// built around a justified photo grid.
//
// # Overview
//
// A photo grid is built in three steps:
//
//	photos on disk or remote URLs
//	         ↓
//	    [media] (list files, build thumbnail and full-size URLs)
//	         ↓
//	    [gallery/probe] (measure aspect ratios, order by capture time)
//	         ↓
//	    [gallery] (pack justified rows, place tiles)
//
// [gallery/live] ties those steps to one browser view: it re-packs on
// resize, reveals tiles near the viewport through [gallery/viewport] and
// sizes the selected photo with [gallery/lightbox].
//
// # Quick Start
//
//	catalog := media.NewCatalog("public")
//	refs, _ := catalog.Refs(ctx)
//	metas := probe.Resolve(ctx, probe.NewFileProber("public"), refs, probe.Options{})
//
//	opts := gallery.DefaultOptions().WithWidth(1200)
//	rows := gallery.Pack(metas, opts)
//	tiles := gallery.Place(rows, opts)
//
// # Main Packages
//
// [gallery] - Row packing and tile placement. Pure functions over metas.
//
// [gallery/probe] - Aspect-ratio resolution with bounded concurrency and a
// "last request wins" resolver for changing image lists.
//
// [gallery/viewport] - Proximity detection and one-way reveal latches.
//
// [gallery/lightbox] - Viewport fitting and EXIF labels for the enlarged
// view.
//
// [gallery/live] - The per-view state machine driven by the websocket.
//
// [media] - File listing, public URL mapping, EXIF decoding and thumbnail
// generation. [media/audio] reads track tags and embedded covers.
//
// [site] - Static page content: code projects and Spotify embeds.
//
// ## Infrastructure
//
// [cache] - Probe, EXIF and tag caching with file, Redis and MongoDB
// backends.
//
// [config] - TOML, .env and FOLIO_* environment configuration.
//
// [errors] - Coded errors shared by the CLI and the HTTP server.
//
// [observability] - Hooks for probe, layout and cache events.
//
// [httputil] - HTTP client with retries for remote images.
//
// [gallery]: https://pkg.go.dev/github.com/jcolasacco/folio/pkg/gallery
// [gallery/probe]: https://pkg.go.dev/github.com/jcolasacco/folio/pkg/gallery/probe
// [gallery/viewport]: https://pkg.go.dev/github.com/jcolasacco/folio/pkg/gallery/viewport
// [gallery/lightbox]: https://pkg.go.dev/github.com/jcolasacco/folio/pkg/gallery/lightbox
// [gallery/live]: https://pkg.go.dev/github.com/jcolasacco/folio/pkg/gallery/live
// [media]: https://pkg.go.dev/github.com/jcolasacco/folio/pkg/media
// [media/audio]: https://pkg.go.dev/github.com/jcolasacco/folio/pkg/media/audio
// [site]: https://pkg.go.dev/github.com/jcolasacco/folio/pkg/site
// [cache]: https://pkg.go.dev/github.com/jcolasacco/folio/pkg/cache
// [config]: https://pkg.go.dev/github.com/jcolasacco/folio/pkg/config
// [errors]: https://pkg.go.dev/github.com/jcolasacco/folio/pkg/errors
// [observability]: https://pkg.go.dev/github.com/jcolasacco/folio/pkg/observability
// [httputil]: https://pkg.go.dev/github.com/jcolasacco/folio/pkg/httputil
package pkg
