package lightbox

import (
	"fmt"
	"math"

	"github.com/jcolasacco/folio/pkg/gallery"
)

// Unknown is shown in place of a missing value.
const Unknown = "—"

// Labels are the display strings under an open image.
type Labels struct {
	Aperture string `json:"aperture"`
	Shutter  string `json:"shutter"`
	ISO      string `json:"iso"`
}

// String joins the labels the way the lightbox caption shows them.
func (l Labels) String() string {
	return l.Aperture + " · " + l.Shutter + " · " + l.ISO
}

// FormatLabels renders e, substituting Unknown for missing values.
func FormatLabels(e gallery.Exposure) Labels {
	l := Labels{
		Aperture: "f/" + Unknown,
		Shutter:  Unknown,
		ISO:      "ISO " + Unknown,
	}
	if e.FNumber > 0 {
		l.Aperture = fmt.Sprintf("f/%.1f", e.FNumber)
	}
	if s := FormatShutter(e.ExposureTime); s != "" {
		l.Shutter = s
	}
	if e.ISO > 0 {
		l.ISO = fmt.Sprintf("ISO %d", e.ISO)
	}
	return l
}

// FormatShutter renders an exposure time in seconds: "2.5s" from one second
// up, "1/250s" below. It returns "" for a non-positive time.
func FormatShutter(t float64) string {
	if t <= 0 {
		return ""
	}
	if t >= 1 {
		return fmt.Sprintf("%.1fs", t)
	}
	return fmt.Sprintf("1/%ds", int(math.Round(1/t)))
}
