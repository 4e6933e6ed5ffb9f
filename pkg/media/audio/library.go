package audio

import (
	"context"
	"errors"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dhowden/tag"
	"golang.org/x/sync/errgroup"

	"github.com/jcolasacco/folio/pkg/cache"
	"github.com/jcolasacco/folio/pkg/media"
	"github.com/jcolasacco/folio/pkg/observability"
)

// DefaultArtist is shown for tracks without an artist tag.
const DefaultArtist = "unreleased"

// CoverPrefix is the URL prefix under which CoverStore handles are served.
const CoverPrefix = "/covers/"

// SidecarExts are the cover image extensions looked up next to a track, in
// order of preference.
var SidecarExts = []string{".jpg", ".jpeg", ".png", ".webp"}

// ErrClosed is returned by Load after Close.
var ErrClosed = errors.New("audio: library closed")

// ErrSuperseded is returned by a Load whose result was replaced by a later
// call before it finished.
var ErrSuperseded = errors.New("audio: load superseded")

// Track is one playable entry of the audio page.
type Track struct {
	Src    string `json:"src"`
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Cover  string `json:"cover,omitempty"`
}

// Library resolves track metadata for files below a public directory.
type Library struct {
	public string
	covers *CoverStore
	cache  cache.Cache
	keyer  cache.Keyer
	logger *log.Logger

	mu      sync.Mutex
	epoch   uint64
	closed  bool
	tracks  []Track
	handles []string
}

// Option configures a Library.
type Option func(*Library)

// WithCache memoises parsed tags keyed by file size and modification time.
func WithCache(c cache.Cache, keyer cache.Keyer) Option {
	return func(l *Library) {
		l.cache = c
		if keyer != nil {
			l.keyer = keyer
		}
	}
}

// WithLogger sets the logger used for per-file diagnostics.
func WithLogger(logger *log.Logger) Option {
	return func(l *Library) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLibrary returns a library serving files below public. Embedded covers
// are stored in covers.
func NewLibrary(public string, covers *CoverStore, opts ...Option) *Library {
	l := &Library{
		public: public,
		covers: covers,
		cache:  cache.NewNullCache(),
		keyer:  cache.NewDefaultKeyer(),
		logger: log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Covers returns the store holding embedded cover blobs.
func (l *Library) Covers() *CoverStore { return l.covers }

// Load resolves every file, in order, into a Track and makes the result the
// library's current list. Unreadable tags never fail a track; it keeps its
// defaults. The handles of the previous list are released once the new one
// is committed. A Load overtaken by a later call releases its own handles
// and returns ErrSuperseded.
func (l *Library) Load(ctx context.Context, files []string) ([]Track, error) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil, ErrClosed
	}
	l.epoch++
	epoch := l.epoch
	l.mu.Unlock()

	tracks := make([]Track, len(files))
	handles := make([]string, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, src := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tracks[i], handles[i] = l.resolve(gctx, src)
			return nil
		})
	}
	err := g.Wait()

	l.mu.Lock()
	closed, stale := l.closed, epoch != l.epoch
	if err != nil || closed || stale {
		l.mu.Unlock()
		l.release(handles)
		switch {
		case err != nil:
			return nil, err
		case closed:
			return nil, ErrClosed
		}
		return nil, ErrSuperseded
	}
	old := l.handles
	l.tracks, l.handles = tracks, compact(handles)
	l.mu.Unlock()

	l.release(old)
	return slices.Clone(tracks), nil
}

// Tracks returns the current list.
func (l *Library) Tracks() []Track {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.tracks)
}

// Close releases every handle of the current list. Later loads fail.
func (l *Library) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	l.epoch++
	old := l.handles
	l.tracks, l.handles = nil, nil
	l.mu.Unlock()

	l.release(old)
	return nil
}

func (l *Library) release(handles []string) {
	for _, h := range handles {
		if h != "" {
			l.covers.Release(h)
		}
	}
}

func compact(handles []string) []string {
	out := handles[:0:0]
	for _, h := range handles {
		if h != "" {
			out = append(out, h)
		}
	}
	return out
}

// resolve builds one track. The returned handle is empty unless an
// embedded picture was stored.
func (l *Library) resolve(ctx context.Context, src string) (Track, string) {
	t := Track{
		Src:    src,
		Title:  BaseName(src),
		Artist: DefaultArtist,
		Cover:  l.sidecar(src),
	}

	tags, err := l.readTags(ctx, src)
	if err != nil {
		l.logger.Debug("no tags", "track", src, "err", err)
		return t, ""
	}
	if title := strings.TrimSpace(tags.Title); title != "" {
		t.Title = title
	}
	if tags.Artist != "" {
		t.Artist = tags.Artist
	}
	if t.Cover != "" || tags.Picture == nil || len(tags.Picture.Data) == 0 {
		return t, ""
	}
	id := l.covers.Put(tags.Picture.MIMEType, tags.Picture.Data)
	t.Cover = CoverPrefix + id
	return t, id
}

// BaseName returns the unescaped file name of a URL or path without its
// extension.
func BaseName(src string) string {
	name := path.Base(filepath.ToSlash(src))
	if u, err := url.PathUnescape(name); err == nil {
		name = u
	}
	return strings.TrimSuffix(name, path.Ext(name))
}

// sidecar returns the URL of the first existing cover file next to src.
func (l *Library) sidecar(src string) string {
	base := strings.TrimSuffix(src, path.Ext(src))
	for _, ext := range SidecarExts {
		u := base + ext
		p, err := media.PublicPath(l.public, u)
		if err != nil {
			return ""
		}
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
			return u
		}
	}
	return ""
}

// Tags is the subset of a track's tags shown on the audio page.
type Tags struct {
	Title   string `json:"title,omitempty"`
	Artist  string `json:"artist,omitempty"`
	Picture *Cover `json:"picture,omitempty"`
}

func (l *Library) readTags(ctx context.Context, src string) (Tags, error) {
	p, err := media.PublicPath(l.public, src)
	if err != nil {
		return Tags{}, err
	}
	f, err := os.Open(p)
	if err != nil {
		return Tags{}, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Tags{}, err
	}
	key := l.keyer.TrackKey(src, cache.Version(info.Size(), info.ModTime()))

	var tags Tags
	if ok, _ := cache.GetJSON(ctx, l.cache, key, &tags); ok {
		observability.Cache().OnCacheHit(ctx, "track")
		return tags, nil
	}
	observability.Cache().OnCacheMiss(ctx, "track")

	tags, err = ReadTags(f)
	if err != nil {
		return Tags{}, err
	}
	if err := cache.SetJSON(ctx, l.cache, key, tags, 30*24*time.Hour); err == nil {
		observability.Cache().OnCacheSet(ctx, "track", tags.size())
	}
	return tags, nil
}

func (t Tags) size() int {
	n := len(t.Title) + len(t.Artist)
	if t.Picture != nil {
		n += len(t.Picture.Data)
	}
	return n
}

// ReadTags parses title, artist and the first embedded picture.
func ReadTags(r io.ReadSeeker) (Tags, error) {
	m, err := tag.ReadFrom(r)
	if err != nil {
		return Tags{}, err
	}
	t := Tags{
		Title:  m.Title(),
		Artist: m.Artist(),
	}
	if pic := m.Picture(); pic != nil && len(pic.Data) > 0 {
		t.Picture = &Cover{MIMEType: pic.MIMEType, Data: pic.Data}
	}
	return t, nil
}
