package gallery

import "time"

// ImageRef identifies one image of the gallery. FullURL is the identity.
// Taken is the capture time when the catalog already knows it.
type ImageRef struct {
	ThumbURL string    `json:"thumb"`
	FullURL  string    `json:"full"`
	Taken    time.Time `json:"taken,omitzero"`
}

// Meta is an ImageRef annotated with its resolved aspect ratio.
// AspectRatio is always > 0.
type Meta struct {
	ThumbURL    string    `json:"thumb"`
	FullURL     string    `json:"full"`
	AspectRatio float64   `json:"ar"`
	Taken       time.Time `json:"taken,omitzero"`
}

// Ref returns the reference this meta was derived from.
func (m Meta) Ref() ImageRef {
	return ImageRef{ThumbURL: m.ThumbURL, FullURL: m.FullURL, Taken: m.Taken}
}

// RowItem is a tile with its display size in pixels.
type RowItem struct {
	ThumbURL string  `json:"thumb"`
	FullURL  string  `json:"full"`
	Width    float64 `json:"w"`
	Height   float64 `json:"h"`
}

// Row is one line of the grid. Centered is true exactly when the row was
// not justified to the container width.
type Row struct {
	Items    []RowItem `json:"items"`
	Centered bool      `json:"centered"`
}

// Height returns the resolved height shared by every item of the row.
func (r Row) Height() float64 {
	if len(r.Items) == 0 {
		return 0
	}
	return r.Items[0].Height
}

// Width returns the row's rendered width including gaps.
func (r Row) Width(gap float64) float64 {
	if len(r.Items) == 0 {
		return 0
	}
	w := gap * float64(len(r.Items)-1)
	for _, it := range r.Items {
		w += it.Width
	}
	return w
}

// Size is a pair of pixel dimensions.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Ratio returns width/height with both dimensions clamped to at least 1,
// so the result is always finite and positive.
func (s Size) Ratio() float64 {
	return float64(max(s.Width, 1)) / float64(max(s.Height, 1))
}

// Exposure holds the capture attributes shown under an open image.
// A zero field means the value is unknown.
type Exposure struct {
	FNumber      float64   `json:"f,omitempty"`
	ExposureTime float64   `json:"t,omitempty"`
	ISO          int       `json:"iso,omitempty"`
	Taken        time.Time `json:"taken,omitzero"`
}

// Known reports whether any exposure value is present.
func (e Exposure) Known() bool {
	return e.FNumber > 0 || e.ExposureTime > 0 || e.ISO > 0
}

// Tile is a RowItem placed at an absolute position inside the container.
type Tile struct {
	FullURL  string  `json:"full"`
	ThumbURL string  `json:"thumb"`
	Row      int     `json:"row"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"w"`
	Height   float64 `json:"h"`
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	X, Y, Width, Height float64
}

// Rect returns the tile's bounds.
func (t Tile) Rect() Rect {
	return Rect{X: t.X, Y: t.Y, Width: t.Width, Height: t.Height}
}

// Intersects reports whether r and o overlap with positive area or touch
// along an edge.
func (r Rect) Intersects(o Rect) bool {
	return r.X <= o.X+o.Width && o.X <= r.X+r.Width &&
		r.Y <= o.Y+o.Height && o.Y <= r.Y+r.Height
}

// Expand grows r by margin on every side.
func (r Rect) Expand(margin float64) Rect {
	return Rect{
		X:      r.X - margin,
		Y:      r.Y - margin,
		Width:  r.Width + 2*margin,
		Height: r.Height + 2*margin,
	}
}
