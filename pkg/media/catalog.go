package media

import (
	"context"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jcolasacco/folio/pkg/gallery"
)

// Default directory layout below the public root.
const (
	PhotosDir = "photos"
	ThumbsDir = "thumbs"
	MusicDir  = "music"
)

// Catalog maps files of the public directory to site URLs.
type Catalog struct {
	public string
}

// NewCatalog returns a catalog for the public directory root.
func NewCatalog(public string) *Catalog {
	return &Catalog{public: public}
}

// Public returns the public directory.
func (c *Catalog) Public() string { return c.public }

// PhotoDir returns the directory holding full-resolution photos.
func (c *Catalog) PhotoDir() string { return filepath.Join(c.public, PhotosDir) }

// ThumbDir returns the directory holding generated thumbnails.
func (c *Catalog) ThumbDir() string { return filepath.Join(c.public, PhotosDir, ThumbsDir) }

// MusicDir returns the directory holding audio files.
func (c *Catalog) MusicDir() string { return filepath.Join(c.public, MusicDir) }

// FullURL returns the site URL of a photo.
func (c *Catalog) FullURL(name string) string {
	return "/" + path.Join(PhotosDir, url.PathEscape(name))
}

// ThumbURL returns the site URL of the photo's thumbnail if one has been
// generated, or the full-resolution URL otherwise.
func (c *Catalog) ThumbURL(name string) string {
	thumb := ThumbName(name)
	if _, err := os.Stat(filepath.Join(c.ThumbDir(), thumb)); err != nil {
		return c.FullURL(name)
	}
	return "/" + path.Join(PhotosDir, ThumbsDir, url.PathEscape(thumb))
}

// Photos lists the photo file names.
func (c *Catalog) Photos() ([]string, error) {
	return List(c.PhotoDir(), PhotoExts)
}

// Contains reports whether fullURL is the FullURL of a photo in the
// catalog. Any other URL, remote ones included, is not a member.
func (c *Catalog) Contains(fullURL string) (bool, error) {
	names, err := c.Photos()
	if err != nil {
		return false, err
	}
	for _, name := range names {
		if c.FullURL(name) == fullURL {
			return true, nil
		}
	}
	return false, nil
}

// Tracks lists the site URLs of the audio files.
func (c *Catalog) Tracks() ([]string, error) {
	names, err := List(c.MusicDir(), AudioExts)
	if err != nil {
		return nil, err
	}
	urls := make([]string, len(names))
	for i, n := range names {
		urls[i] = "/" + path.Join(MusicDir, url.PathEscape(n))
	}
	return urls, nil
}

// Refs builds one ImageRef per photo in lexicographic order, with Taken set
// from CaptureTime. Ordering by capture time is left to the resolver.
func (c *Catalog) Refs(ctx context.Context) ([]gallery.ImageRef, error) {
	names, err := c.Photos()
	if err != nil {
		return nil, err
	}

	refs := make([]gallery.ImageRef, len(names))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			refs[i] = gallery.ImageRef{
				ThumbURL: c.ThumbURL(name),
				FullURL:  c.FullURL(name),
				Taken:    CaptureTime(filepath.Join(c.PhotoDir(), name)),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return refs, nil
}

// Taken implements probe.Dater for photos of this catalog. It returns the
// zero time for URLs outside the photo directory.
func (c *Catalog) Taken(ctx context.Context, fullURL string) time.Time {
	p, err := c.pathOf(fullURL)
	if err != nil {
		return time.Time{}
	}
	return CaptureTime(p)
}

func (c *Catalog) pathOf(fullURL string) (string, error) {
	return PublicPath(c.public, fullURL)
}
