package probe

import (
	"bytes"
	"context"

	"github.com/jcolasacco/folio/pkg/gallery"
	"github.com/jcolasacco/folio/pkg/httputil"
)

// headerLimit bounds how much of a remote image is read to find its size.
// JPEG files can carry large EXIF and ICC segments before the frame header.
const headerLimit = 512 << 10

// HTTPProber reads the size of remote images.
type HTTPProber struct {
	client *httputil.Client
}

// NewHTTPProber returns a prober using client, or a default client if nil.
func NewHTTPProber(client *httputil.Client) *HTTPProber {
	if client == nil {
		client = httputil.NewClient(nil)
	}
	return &HTTPProber{client: client}
}

// Probe implements Prober.
func (p *HTTPProber) Probe(ctx context.Context, url string) (gallery.Size, error) {
	head, err := p.client.Fetch(ctx, url, headerLimit)
	if err != nil {
		return gallery.Size{}, err
	}
	return DecodeSize(bytes.NewReader(head))
}
