package lightbox

import (
	"math"

	"github.com/jcolasacco/folio/pkg/gallery"
)

// Viewport bounds.
const (
	WidthFraction  = 0.92
	MaxWidth       = 1400.0
	HeightFraction = 0.90
	MaxHeight      = 1100.0
)

// Box is the pixel size of the displayed image.
type Box struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func bounds(viewport gallery.Size) (maxW, maxH float64) {
	maxW = math.Min(WidthFraction*float64(viewport.Width), MaxWidth)
	maxH = math.Min(HeightFraction*float64(viewport.Height), MaxHeight)
	return maxW, maxH
}

// Fit returns the largest box with the image's aspect ratio that fits the
// viewport bounds, never larger than the natural size.
func Fit(natural, viewport gallery.Size) Box {
	maxW, maxH := bounds(viewport)
	nw := float64(max(natural.Width, 1))
	nh := float64(max(natural.Height, 1))

	scale := min(maxW/nw, maxH/nh, 1)
	scale = max(scale, 0)
	return Box{
		Width:  int(math.Round(nw * scale)),
		Height: int(math.Round(nh * scale)),
	}
}

// Provisional returns the capped viewport bounds, shown while the natural
// size is still being measured.
func Provisional(viewport gallery.Size) Box {
	maxW, maxH := bounds(viewport)
	return Box{
		Width:  int(math.Round(max(maxW, 0))),
		Height: int(math.Round(max(maxH, 0))),
	}
}
