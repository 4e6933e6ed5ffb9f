package live

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/jcolasacco/folio/pkg/errors"
	"github.com/jcolasacco/folio/pkg/gallery"
	"github.com/jcolasacco/folio/pkg/gallery/lightbox"
	"github.com/jcolasacco/folio/pkg/gallery/probe"
	"github.com/jcolasacco/folio/pkg/gallery/viewport"
	"github.com/jcolasacco/folio/pkg/observability"
)

// Config configures a Gallery. Zero values use the package defaults.
type Config struct {
	Layout gallery.Options
	// Margin is the proximity margin of the visibility gates. Zero uses
	// viewport.DefaultMargin.
	Margin float64
	Probe  probe.Options
}

// DefaultConfig returns the default layout and margin.
func DefaultConfig() Config {
	return Config{Layout: gallery.DefaultOptions(), Margin: viewport.DefaultMargin}
}

// Snapshot is the derived state sent to a client.
type Snapshot struct {
	// Loading is true until both the first batch of metas and a container
	// width are known.
	Loading  bool           `json:"loading"`
	Width    float64        `json:"width"`
	Rows     []gallery.Row  `json:"rows"`
	Height   float64        `json:"height"`
	Revealed []string       `json:"revealed"`
	Lightbox lightbox.State `json:"lightbox"`
}

// Gallery is the live state of one gallery view.
type Gallery struct {
	cfg    Config
	logger *log.Logger

	resolver *probe.Resolver
	tracker  *viewport.Tracker
	field    *viewport.Field
	box      *lightbox.Controller
	unsubs   []func()

	layoutMu sync.Mutex
	emitMu   sync.Mutex

	mu       sync.Mutex
	rows     []gallery.Row
	tiles    []gallery.Tile
	known    map[string]struct{}
	listener func(Snapshot)
	closed   bool
}

// New creates a gallery. The prober is used for thumbnails and for the
// lightbox; exif may be nil. A nil logger discards output.
func New(p probe.Prober, exif lightbox.ExifSource, cfg Config, logger *log.Logger) *Gallery {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	cfg.Layout = cfg.Layout.WithDefaults()
	if cfg.Margin == 0 {
		cfg.Margin = viewport.DefaultMargin
	}

	g := &Gallery{
		cfg:      cfg,
		logger:   logger,
		resolver: probe.NewResolver(p, cfg.Probe, logger),
		tracker:  viewport.NewTracker(),
		field:    viewport.NewField(cfg.Margin),
		box:      lightbox.NewController(p, exif, logger),
		known:    make(map[string]struct{}),
	}
	g.unsubs = []func(){
		g.resolver.Subscribe(func([]gallery.Meta) { g.relayout() }),
		g.tracker.Subscribe(func(float64) { g.relayout() }),
		g.box.Subscribe(func(lightbox.State) { g.emit() }),
	}
	return g
}

// OnChange sets the listener that receives a snapshot after every change.
// Only one listener is kept.
func (g *Gallery) OnChange(fn func(Snapshot)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.listener = fn
}

// SetImages replaces the image collection. Resolution happens in the
// background; the returned channel is closed when it has settled. A call
// made before an earlier one settles supersedes it.
func (g *Gallery) SetImages(ctx context.Context, refs []gallery.ImageRef) <-chan struct{} {
	return g.resolver.Load(ctx, refs)
}

// Resize publishes a new container width.
func (g *Gallery) Resize(width float64) {
	g.tracker.Set(width)
}

// Scroll reports the client's viewport as a vertical window of the
// container and returns the tiles it newly reveals.
func (g *Gallery) Scroll(top, height float64) []gallery.Tile {
	view := gallery.Rect{Y: top, Width: g.tracker.Width(), Height: max(height, 0)}
	revealed := g.field.Report(view)
	if len(revealed) > 0 {
		g.emit()
	}
	return revealed
}

// Open selects a gallery image for the lightbox. Only images of the
// current collection can be opened.
func (g *Gallery) Open(ctx context.Context, fullURL string, vp gallery.Size) (<-chan struct{}, error) {
	g.mu.Lock()
	_, ok := g.known[fullURL]
	g.mu.Unlock()
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "image %q is not in the gallery", fullURL)
	}
	return g.box.Open(ctx, fullURL, vp), nil
}

// ResizeLightbox updates the viewport used to size an open lightbox.
func (g *Gallery) ResizeLightbox(vp gallery.Size) {
	g.box.Resize(vp)
}

// CloseLightbox deselects the open image.
func (g *Gallery) CloseLightbox() {
	g.box.Close()
}

// Snapshot returns the current derived state.
func (g *Gallery) Snapshot() Snapshot {
	g.mu.Lock()
	rows := g.rows
	g.mu.Unlock()

	width := g.tracker.Width()
	return Snapshot{
		Loading:  g.resolver.Loading() || width == 0,
		Width:    width,
		Rows:     rows,
		Height:   gallery.Height(rows, g.cfg.Layout),
		Revealed: g.field.Revealed(),
		Lightbox: g.box.State(),
	}
}

// Tiles returns the placed tiles of the current layout.
func (g *Gallery) Tiles() []gallery.Tile {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.tiles
}

// Close releases all subscriptions and discards work in flight.
func (g *Gallery) Close() {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	g.closed = true
	g.listener = nil
	g.mu.Unlock()

	for _, unsub := range g.unsubs {
		unsub()
	}
	g.resolver.Close()
	g.box.Close()
}

// relayout recomputes rows from the current metas and width.
func (g *Gallery) relayout() {
	g.layoutMu.Lock()
	defer g.layoutMu.Unlock()

	metas, _ := g.resolver.Metas()
	opts := g.cfg.Layout.WithWidth(g.tracker.Width())

	start := time.Now()
	rows := gallery.Pack(metas, opts)
	tiles := gallery.Place(rows, opts)
	observability.Layout().OnPack(context.Background(), len(metas), opts.Width, len(rows), time.Since(start))

	known := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		known[m.FullURL] = struct{}{}
	}

	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	g.rows = rows
	g.tiles = tiles
	g.known = known
	g.mu.Unlock()

	g.field.Layout(tiles)
	g.logger.Debug("gallery laid out", "images", len(metas), "width", opts.Width, "rows", len(rows))
	g.emit()
}

func (g *Gallery) emit() {
	g.emitMu.Lock()
	defer g.emitMu.Unlock()

	g.mu.Lock()
	fn := g.listener
	g.mu.Unlock()
	if fn == nil {
		return
	}
	fn(g.Snapshot())
}
