package media

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"

	"github.com/jcolasacco/folio/pkg/cache"
	"github.com/jcolasacco/folio/pkg/errors"
	"github.com/jcolasacco/folio/pkg/gallery"
	"github.com/jcolasacco/folio/pkg/httputil"
	"github.com/jcolasacco/folio/pkg/observability"
)

const exifTimeLayout = "2006:01:02 15:04:05"

// exifLimit bounds how much of a remote image is fetched for its EXIF
// block. APP1 must fit in 64 KiB but may follow other segments.
const exifLimit = 256 << 10

// ReadExposure reads the EXIF exposure attributes of the image at path.
func ReadExposure(path string) (gallery.Exposure, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return gallery.Exposure{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "read exif")
		}
		return gallery.Exposure{}, errors.Wrap(errors.ErrCodeInternal, err, "read exif")
	}
	defer f.Close()
	return DecodeExposure(f)
}

// DecodeExposure parses EXIF data from a JPEG, TIFF or raw EXIF stream.
// Each field is optional; an image without EXIF is an error the caller is
// expected to treat as "unknown".
func DecodeExposure(r io.Reader) (gallery.Exposure, error) {
	x, err := exif.Decode(r)
	if x == nil || (err != nil && exif.IsCriticalError(err)) {
		return gallery.Exposure{}, errors.Wrap(errors.ErrCodeUnsupported, err, "decode exif")
	}

	var e gallery.Exposure
	if tag, err := x.Get(exif.FNumber); err == nil {
		if num, den, err := tag.Rat2(0); err == nil && den != 0 {
			e.FNumber = float64(num) / float64(den)
		}
	}
	if tag, err := x.Get(exif.ExposureTime); err == nil {
		if num, den, err := tag.Rat2(0); err == nil && den != 0 {
			e.ExposureTime = float64(num) / float64(den)
		}
	}
	if tag, err := x.Get(exif.ISOSpeedRatings); err == nil {
		if iso, err := tag.Int(0); err == nil {
			e.ISO = iso
		}
	}
	for _, field := range []exif.FieldName{exif.DateTimeOriginal, exif.DateTimeDigitized} {
		if t, ok := exifTime(x, field); ok {
			e.Taken = t
			break
		}
	}
	return e, nil
}

func exifTime(x *exif.Exif, field exif.FieldName) (time.Time, bool) {
	tag, err := x.Get(field)
	if err != nil {
		return time.Time{}, false
	}
	s, err := tag.StringVal()
	if err != nil {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(exifTimeLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// CaptureTime returns when the photo at path was taken: the EXIF
// DateTimeOriginal (or CreateDate), else the file modification time, else
// the zero time.
func CaptureTime(path string) time.Time {
	if e, err := ReadExposure(path); err == nil && !e.Taken.IsZero() {
		return e.Taken
	}
	if info, err := os.Stat(path); err == nil {
		return info.ModTime()
	}
	return time.Time{}
}

// ExifSource serves exposure metadata for full-resolution photo URLs,
// local or remote, memoised in a cache.
type ExifSource struct {
	public string
	client *httputil.Client
	cache  cache.Cache
	keyer  cache.Keyer
	ttl    time.Duration
}

// NewExifSource creates a source for photos below public. client may be nil
// to refuse remote URLs; c may be nil to disable caching.
func NewExifSource(public string, client *httputil.Client, c cache.Cache, keyer cache.Keyer) *ExifSource {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &ExifSource{
		public: public,
		client: client,
		cache:  c,
		keyer:  keyer,
		ttl:    30 * 24 * time.Hour,
	}
}

// Exposure implements lightbox.ExifSource.
func (s *ExifSource) Exposure(ctx context.Context, fullURL string) (gallery.Exposure, error) {
	remote := strings.HasPrefix(fullURL, "http://") || strings.HasPrefix(fullURL, "https://")

	var path, version string
	if !remote {
		p, err := PublicPath(s.public, fullURL)
		if err != nil {
			return gallery.Exposure{}, err
		}
		info, err := os.Stat(p)
		if err != nil {
			return gallery.Exposure{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "read exif")
		}
		path, version = p, cache.Version(info.Size(), info.ModTime())
	}

	key := s.keyer.ExifKey(fullURL, version)
	var e gallery.Exposure
	if ok, _ := cache.GetJSON(ctx, s.cache, key, &e); ok {
		observability.Cache().OnCacheHit(ctx, "exif")
		return e, nil
	}
	observability.Cache().OnCacheMiss(ctx, "exif")

	var err error
	if remote {
		e, err = s.fetch(ctx, fullURL)
	} else {
		e, err = ReadExposure(path)
	}
	if err != nil {
		return gallery.Exposure{}, err
	}

	if err := cache.SetJSON(ctx, s.cache, key, e, s.ttl); err == nil {
		observability.Cache().OnCacheSet(ctx, "exif", 1)
	}
	return e, nil
}

func (s *ExifSource) fetch(ctx context.Context, fullURL string) (gallery.Exposure, error) {
	if s.client == nil {
		return gallery.Exposure{}, errors.New(errors.ErrCodeUnsupported, "remote images are not enabled: %s", fullURL)
	}
	head, err := s.client.Fetch(ctx, fullURL, exifLimit)
	if err != nil {
		return gallery.Exposure{}, err
	}
	return DecodeExposure(bytes.NewReader(head))
}

// Taken implements probe.Dater using the EXIF capture time only.
func (s *ExifSource) Taken(ctx context.Context, fullURL string) time.Time {
	e, err := s.Exposure(ctx, fullURL)
	if err != nil {
		return time.Time{}
	}
	return e.Taken
}
