package viewport

import (
	"sync"

	"github.com/jcolasacco/folio/pkg/gallery"
)

// DefaultMargin is the proximity margin in pixels around the viewport.
const DefaultMargin = 200.0

// State is the lifecycle of a Gate. It only moves forward.
type State int

const (
	Unobserved State = iota
	Observing
	Visible
)

func (s State) String() string {
	switch s {
	case Unobserved:
		return "unobserved"
	case Observing:
		return "observing"
	case Visible:
		return "visible"
	default:
		return "unknown"
	}
}

// Gate decides when a single tile may load its image.
type Gate struct {
	mu      sync.Mutex
	state   State
	release func()
	once    sync.Once
}

// NewGate returns an unobserved gate.
func NewGate() *Gate {
	return &Gate{}
}

// Observe starts observation. release is called exactly once, when the
// gate latches or is stopped. Observe on a gate that is already observing
// or visible does nothing and reports false.
func (g *Gate) Observe(release func()) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != Unobserved {
		return false
	}
	g.state = Observing
	g.release = release
	return true
}

// Report checks tile against the viewport expanded by margin. The first
// intersection latches the gate to Visible, releases the observation and
// returns true. Later reports return false.
func (g *Gate) Report(tile, view gallery.Rect, margin float64) bool {
	g.mu.Lock()
	if g.state != Observing || !tile.Intersects(view.Expand(margin)) {
		g.mu.Unlock()
		return false
	}
	g.state = Visible
	g.mu.Unlock()

	g.stop()
	return true
}

// Stop releases the observation without latching, for tiles that leave the
// layout before they were ever seen.
func (g *Gate) Stop() {
	g.stop()
}

func (g *Gate) stop() {
	g.once.Do(func() {
		g.mu.Lock()
		release := g.release
		g.release = nil
		g.mu.Unlock()
		if release != nil {
			release()
		}
	})
}

// State returns the current state.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Visible reports whether the gate has latched.
func (g *Gate) Visible() bool {
	return g.State() == Visible
}
