package lightbox

import (
	"context"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/jcolasacco/folio/pkg/gallery"
	"github.com/jcolasacco/folio/pkg/gallery/probe"
)

// ExifSource looks up exposure metadata for a full-resolution image.
type ExifSource interface {
	Exposure(ctx context.Context, fullURL string) (gallery.Exposure, error)
}

// Phase is the sizing state of the lightbox.
type Phase int

const (
	// Closed means no image is selected.
	Closed Phase = iota
	// Measuring shows the provisional box while the natural size loads.
	Measuring
	// Sized shows the final box.
	Sized
)

func (p Phase) String() string {
	switch p {
	case Measuring:
		return "measuring"
	case Sized:
		return "sized"
	default:
		return "closed"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// State is a snapshot of the lightbox.
type State struct {
	Phase    Phase            `json:"phase"`
	Src      string           `json:"src,omitempty"`
	Box      Box              `json:"box"`
	Natural  gallery.Size     `json:"natural"`
	Exposure gallery.Exposure `json:"exposure"`
	Labels   Labels           `json:"labels"`
	// Broken is set when the natural size could not be read; the box then
	// stays provisional.
	Broken bool `json:"broken,omitempty"`
}

// Open reports whether an image is selected.
func (s State) Open() bool { return s.Phase != Closed }

// Controller owns the lightbox state of one gallery.
type Controller struct {
	prober probe.Prober
	exif   ExifSource
	logger *log.Logger

	notifyMu sync.Mutex

	mu        sync.Mutex
	epoch     uint64
	cancel    context.CancelFunc
	viewport  gallery.Size
	state     State
	exifCache map[string]gallery.Exposure
	subs      map[uint64]func(State)
	nextSub   uint64
}

// NewController creates a controller. exif may be nil, in which case the
// labels always read unknown. A nil logger discards output.
func NewController(p probe.Prober, exif ExifSource, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Controller{
		prober:    p,
		exif:      exif,
		logger:    logger,
		state:     State{Labels: FormatLabels(gallery.Exposure{})},
		exifCache: make(map[string]gallery.Exposure),
		subs:      make(map[uint64]func(State)),
	}
}

// Open selects fullURL. The lightbox enters the measuring state with the
// provisional box right away; the size probe and the metadata lookup run
// concurrently. The returned channel is closed once both have settled.
func (c *Controller) Open(ctx context.Context, fullURL string, viewport gallery.Size) <-chan struct{} {
	done := make(chan struct{})

	c.mu.Lock()
	c.epoch++
	epoch := c.epoch
	if c.cancel != nil {
		c.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.viewport = viewport

	exp, cached := c.exifCache[fullURL]
	c.state = State{
		Phase:    Measuring,
		Src:      fullURL,
		Box:      Provisional(viewport),
		Exposure: exp,
		Labels:   FormatLabels(exp),
	}
	c.mu.Unlock()

	c.publish(epoch)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.measure(ctx, epoch, fullURL)
	}()
	if !cached && c.exif != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.lookup(ctx, epoch, fullURL)
		}()
	}
	go func() {
		wg.Wait()
		cancel()
		close(done)
	}()
	return done
}

func (c *Controller) measure(ctx context.Context, epoch uint64, fullURL string) {
	size, err := c.prober.Probe(ctx, fullURL)

	c.mu.Lock()
	if epoch != c.epoch {
		c.mu.Unlock()
		c.logger.Debug("discarded stale lightbox size", "src", fullURL)
		return
	}
	if err != nil {
		c.logger.Debug("lightbox image unavailable", "src", fullURL, "err", err)
		c.state.Broken = true
	} else {
		c.state.Natural = size
		c.state.Box = Fit(size, c.viewport)
	}
	c.state.Phase = Sized
	c.mu.Unlock()

	c.publish(epoch)
}

func (c *Controller) lookup(ctx context.Context, epoch uint64, fullURL string) {
	exp, err := c.exif.Exposure(ctx, fullURL)
	if err != nil {
		c.logger.Debug("exposure metadata unavailable", "src", fullURL, "err", err)
		exp = gallery.Exposure{}
	}

	c.mu.Lock()
	if err == nil {
		c.exifCache[fullURL] = exp
	}
	if epoch != c.epoch {
		c.mu.Unlock()
		return
	}
	c.state.Exposure = exp
	c.state.Labels = FormatLabels(exp)
	c.mu.Unlock()

	c.publish(epoch)
}

// Resize updates the viewport of an open lightbox and recomputes its box.
func (c *Controller) Resize(viewport gallery.Size) {
	c.mu.Lock()
	c.viewport = viewport
	if !c.state.Open() {
		c.mu.Unlock()
		return
	}
	if c.state.Phase == Sized && !c.state.Broken {
		c.state.Box = Fit(c.state.Natural, viewport)
	} else {
		c.state.Box = Provisional(viewport)
	}
	epoch := c.epoch
	c.mu.Unlock()

	c.publish(epoch)
}

// Close deselects the image. Lookups still in flight are discarded.
func (c *Controller) Close() {
	c.mu.Lock()
	c.epoch++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	wasOpen := c.state.Open()
	c.state = State{Labels: FormatLabels(gallery.Exposure{})}
	epoch := c.epoch
	c.mu.Unlock()

	if wasOpen {
		c.publish(epoch)
	}
}

// State returns the current lightbox state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe registers fn for state changes and returns a function that
// removes it.
func (c *Controller) Subscribe(fn func(State)) (cancel func()) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
		})
	}
}

// publish sends the current state to subscribers unless a newer open or
// close has happened since epoch.
func (c *Controller) publish(epoch uint64) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	if epoch != c.epoch {
		c.mu.Unlock()
		return
	}
	s := c.state
	subs := make([]func(State), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(s)
	}
}
