package probe

import (
	"context"
	"os"

	"github.com/jcolasacco/folio/pkg/cache"
	"github.com/jcolasacco/folio/pkg/errors"
	"github.com/jcolasacco/folio/pkg/gallery"
	"github.com/jcolasacco/folio/pkg/media"
)

// FileProber resolves site-relative URLs ("/photos/thumbs/a.jpg") against a
// public directory and decodes the file header.
type FileProber struct {
	root string
}

// NewFileProber returns a prober rooted at the public directory root.
func NewFileProber(root string) *FileProber {
	return &FileProber{root: root}
}

// Probe implements Prober.
func (p *FileProber) Probe(ctx context.Context, url string) (gallery.Size, error) {
	if err := ctx.Err(); err != nil {
		return gallery.Size{}, err
	}
	path, err := p.Path(url)
	if err != nil {
		return gallery.Size{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return gallery.Size{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "probe %s", url)
		}
		return gallery.Size{}, errors.Wrap(errors.ErrCodeInternal, err, "probe %s", url)
	}
	defer f.Close()

	return DecodeSize(f)
}

// Version implements Versioner from the file's size and modification time.
func (p *FileProber) Version(url string) (string, error) {
	path, err := p.Path(url)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	return cache.Version(info.Size(), info.ModTime()), nil
}

// Path maps url onto the filesystem below the public root.
func (p *FileProber) Path(url string) (string, error) {
	return media.PublicPath(p.root, url)
}
