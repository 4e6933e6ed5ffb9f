package media

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"

	// imaging decodes through image.Decode; register WebP input.
	_ "golang.org/x/image/webp"
)

// DefaultThumbWidth is the width thumbnails are resized to.
const DefaultThumbWidth = 800

// ThumbName returns the thumbnail file name for a photo. Formats the
// encoder can write keep their name. Anything else is re-encoded as JPEG
// under its full name, so x.webp maps to x.webp.jpg and never to the
// thumbnail of a sibling x.jpg.
func ThumbName(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png", ".gif":
		return name
	}
	return name + ".jpg"
}

// ThumbOptions configures GenerateThumbnails.
type ThumbOptions struct {
	In      string
	Out     string
	Width   int  // zero uses DefaultThumbWidth
	Workers int  // zero uses 4
	Force   bool // regenerate thumbnails that are newer than their source
	Logger  *log.Logger
}

// ThumbReport summarises a thumbnail run.
type ThumbReport struct {
	Created int
	Skipped int
	Failed  int
}

// GenerateThumbnails resizes every supported image in opts.In to
// opts.Width and writes it to opts.Out. Images narrower than the target are
// re-encoded at their own size. A failure is logged and counted; it does
// not stop the batch. The returned error is only for setup failures and
// cancellation.
func GenerateThumbnails(ctx context.Context, opts ThumbOptions) (ThumbReport, error) {
	if opts.Width <= 0 {
		opts.Width = DefaultThumbWidth
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	names, err := List(opts.In, ThumbSourceExts)
	if err != nil {
		return ThumbReport{}, err
	}
	if err := os.MkdirAll(opts.Out, 0o755); err != nil {
		return ThumbReport{}, err
	}

	var created, skipped, failed atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for _, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			src := filepath.Join(opts.In, name)
			dst := filepath.Join(opts.Out, ThumbName(name))

			if !opts.Force && upToDate(src, dst) {
				skipped.Add(1)
				opts.Logger.Debug("thumbnail up to date", "file", name)
				return nil
			}
			if err := makeThumb(src, dst, opts.Width); err != nil {
				failed.Add(1)
				opts.Logger.Error("thumbnail failed", "file", name, "err", err)
				return nil
			}
			created.Add(1)
			opts.Logger.Info("thumbnail created", "file", name)
			return nil
		})
	}
	err = g.Wait()

	return ThumbReport{
		Created: int(created.Load()),
		Skipped: int(skipped.Load()),
		Failed:  int(failed.Load()),
	}, err
}

func upToDate(src, dst string) bool {
	si, err := os.Stat(src)
	if err != nil {
		return false
	}
	di, err := os.Stat(dst)
	if err != nil {
		return false
	}
	return !di.ModTime().Before(si.ModTime())
}

func makeThumb(src, dst string, width int) error {
	img, err := imaging.Open(src, imaging.AutoOrientation(true))
	if err != nil {
		return err
	}
	if img.Bounds().Dx() > width {
		img = imaging.Resize(img, width, 0, imaging.Lanczos)
	}

	tmp := dst + ".tmp" + filepath.Ext(dst)
	if err := imaging.Save(img, tmp, imaging.JPEGQuality(85)); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dst)
}
