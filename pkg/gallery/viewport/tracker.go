package viewport

import "sync"

// Tracker publishes the container width. A width of 0 means not measured.
type Tracker struct {
	notifyMu sync.Mutex

	mu      sync.Mutex
	width   float64
	subs    map[uint64]func(float64)
	nextSub uint64
}

// NewTracker returns a tracker with an unknown width.
func NewTracker() *Tracker {
	return &Tracker{subs: make(map[uint64]func(float64))}
}

// Set records width and notifies subscribers if it differs from the last
// value. Every change is published; there is no debounce. Negative widths
// are treated as 0.
func (t *Tracker) Set(width float64) bool {
	width = max(width, 0)

	t.notifyMu.Lock()
	defer t.notifyMu.Unlock()

	t.mu.Lock()
	if width == t.width {
		t.mu.Unlock()
		return false
	}
	t.width = width
	subs := make([]func(float64), 0, len(t.subs))
	for _, fn := range t.subs {
		subs = append(subs, fn)
	}
	t.mu.Unlock()

	for _, fn := range subs {
		fn(width)
	}
	return true
}

// Width returns the last published width.
func (t *Tracker) Width() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.width
}

// Subscribe registers fn for width changes and returns a function that
// removes it.
func (t *Tracker) Subscribe(fn func(width float64)) (cancel func()) {
	t.mu.Lock()
	id := t.nextSub
	t.nextSub++
	t.subs[id] = fn
	t.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			delete(t.subs, id)
			t.mu.Unlock()
		})
	}
}
