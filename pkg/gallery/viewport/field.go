package viewport

import (
	"sync"

	"github.com/jcolasacco/folio/pkg/gallery"
)

// Field holds the gates of one gallery.
type Field struct {
	margin float64

	mu        sync.Mutex
	gates     map[string]*Gate
	tiles     []gallery.Tile
	observing map[string]struct{}
	view      gallery.Rect
	hasView   bool
}

// NewField creates a field with the given proximity margin. A negative
// margin uses DefaultMargin.
func NewField(margin float64) *Field {
	if margin < 0 {
		margin = DefaultMargin
	}
	return &Field{
		margin:    margin,
		gates:     make(map[string]*Gate),
		observing: make(map[string]struct{}),
	}
}

// Layout replaces the placed tiles. Gates of images still present keep
// their state; images that left the layout have their gates stopped and
// forgotten. If a viewport was already reported, it is re-evaluated against
// the new positions and the newly revealed tiles are returned.
//
// The latch lives as long as the tile does. An image that leaves the layout
// and comes back in a later call gets a fresh, unrevealed gate.
func (f *Field) Layout(tiles []gallery.Tile) []gallery.Tile {
	f.mu.Lock()
	defer f.mu.Unlock()

	present := make(map[string]struct{}, len(tiles))
	for _, t := range tiles {
		present[t.FullURL] = struct{}{}
		if _, ok := f.gates[t.FullURL]; ok {
			continue
		}
		g := NewGate()
		url := t.FullURL
		g.Observe(func() { delete(f.observing, url) })
		f.gates[url] = g
		f.observing[url] = struct{}{}
	}
	for url, g := range f.gates {
		if _, ok := present[url]; !ok {
			g.Stop()
			delete(f.gates, url)
		}
	}

	f.tiles = append(f.tiles[:0:0], tiles...)
	if !f.hasView {
		return nil
	}
	return f.reveal()
}

// Report records the client's viewport and returns the tiles it newly
// reveals, in layout order.
func (f *Field) Report(view gallery.Rect) []gallery.Tile {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.view = view
	f.hasView = true
	return f.reveal()
}

// reveal runs with f.mu held. Gate release callbacks mutate f.observing,
// which is safe because they run synchronously inside Gate.Report.
func (f *Field) reveal() []gallery.Tile {
	var out []gallery.Tile
	for _, t := range f.tiles {
		if _, ok := f.observing[t.FullURL]; !ok {
			continue
		}
		if f.gates[t.FullURL].Report(t.Rect(), f.view, f.margin) {
			out = append(out, t)
		}
	}
	return out
}

// Visible reports whether the image at fullURL has been revealed.
func (f *Field) Visible(fullURL string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.gates[fullURL]
	return ok && g.Visible()
}

// Revealed returns the full URLs of all revealed tiles in layout order.
func (f *Field) Revealed() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, t := range f.tiles {
		if f.gates[t.FullURL].Visible() {
			out = append(out, t.FullURL)
		}
	}
	return out
}

// Observing returns the number of gates still waiting to latch.
func (f *Field) Observing() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.observing)
}
