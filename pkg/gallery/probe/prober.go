package probe

import (
	"context"
	"image"
	"io"
	"strings"

	// Registered decoders for image.DecodeConfig.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/jcolasacco/folio/pkg/errors"
	"github.com/jcolasacco/folio/pkg/gallery"
)

// Prober reads the natural pixel size of the image at url.
type Prober interface {
	Probe(ctx context.Context, url string) (gallery.Size, error)
}

// Func adapts a plain function to the Prober interface.
type Func func(ctx context.Context, url string) (gallery.Size, error)

// Probe implements Prober.
func (f Func) Probe(ctx context.Context, url string) (gallery.Size, error) {
	return f(ctx, url)
}

// Versioner is implemented by probers that can tell when the resource
// behind a URL has changed. CachedProber folds the version into its key.
type Versioner interface {
	Version(url string) (string, error)
}

// DecodeSize reads an image header from r and returns its dimensions.
// Only the header is consumed.
func DecodeSize(r io.Reader) (gallery.Size, error) {
	cfg, format, err := image.DecodeConfig(r)
	if err != nil {
		return gallery.Size{}, errors.Wrap(errors.ErrCodeUnsupported, err, "decode image header")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return gallery.Size{}, errors.New(errors.ErrCodeUnsupported, "%s image has no dimensions", format)
	}
	return gallery.Size{Width: cfg.Width, Height: cfg.Height}, nil
}

// Mux routes absolute http(s) URLs to Remote and everything else to Local.
type Mux struct {
	Local  Prober
	Remote Prober
}

// Probe implements Prober.
func (m Mux) Probe(ctx context.Context, url string) (gallery.Size, error) {
	if IsRemote(url) {
		if m.Remote == nil {
			return gallery.Size{}, errors.New(errors.ErrCodeUnsupported, "remote images are not enabled: %s", url)
		}
		return m.Remote.Probe(ctx, url)
	}
	if m.Local == nil {
		return gallery.Size{}, errors.New(errors.ErrCodeUnsupported, "local images are not enabled: %s", url)
	}
	return m.Local.Probe(ctx, url)
}

// Version implements Versioner by delegating to the routed prober.
func (m Mux) Version(url string) (string, error) {
	p := m.Local
	if IsRemote(url) {
		p = m.Remote
	}
	if v, ok := p.(Versioner); ok {
		return v.Version(url)
	}
	return "", nil
}

// IsRemote reports whether url is an absolute http(s) URL.
func IsRemote(url string) bool {
	return strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")
}
