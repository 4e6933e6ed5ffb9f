// Package server serves the portfolio site: the photo, audio and code pages,
// the JSON API behind them, the live gallery websocket, and the media files
// below the public directory.
package server

import (
	"context"
	"errors"
	"html/template"
	"io"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/jcolasacco/folio/pkg/buildinfo"
	"github.com/jcolasacco/folio/pkg/cache"
	"github.com/jcolasacco/folio/pkg/config"
	"github.com/jcolasacco/folio/pkg/gallery"
	"github.com/jcolasacco/folio/pkg/gallery/probe"
	"github.com/jcolasacco/folio/pkg/httputil"
	"github.com/jcolasacco/folio/pkg/media"
	"github.com/jcolasacco/folio/pkg/media/audio"
	"github.com/jcolasacco/folio/pkg/site"
)

const shutdownTimeout = 10 * time.Second

// Deps are the collaborators of a Server.
type Deps struct {
	Config  config.Config
	Content site.Content
	// Cache memoises probed sizes, EXIF data and audio tags. Nil disables
	// caching.
	Cache  cache.Cache
	Logger *log.Logger
}

// Server holds the site's state shared across requests.
type Server struct {
	cfg     config.Config
	content site.Content
	logger  *log.Logger

	catalog *media.Catalog
	prober  probe.Prober
	exif    *media.ExifSource
	library *audio.Library
	pages   map[string]*template.Template

	tracksMu   sync.Mutex
	trackFiles []string

	sessionsMu sync.Mutex
	sessions   map[string]*session
}

// New builds a server from its dependencies.
func New(d Deps) (*Server, error) {
	if d.Logger == nil {
		d.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if d.Cache == nil {
		d.Cache = cache.NewNullCache()
	}
	if err := d.Config.Validate(); err != nil {
		return nil, err
	}

	pages, err := parsePages()
	if err != nil {
		return nil, err
	}

	keyer := d.Config.CacheKeyer()
	catalog := media.NewCatalog(d.Config.Server.Public)

	mux := probe.Mux{Local: probe.NewFileProber(catalog.Public())}
	var client *httputil.Client
	if d.Config.Server.Remote {
		client = httputil.NewClient(map[string]string{"User-Agent": buildinfo.UserAgent()})
		mux.Remote = probe.NewHTTPProber(client)
	}

	return &Server{
		cfg:      d.Config,
		content:  d.Content,
		logger:   d.Logger,
		catalog:  catalog,
		prober:   probe.NewCachedProber(mux, d.Cache, keyer, probe.DefaultTTL),
		exif:     media.NewExifSource(catalog.Public(), client, d.Cache, keyer),
		library:  audio.NewLibrary(catalog.Public(), audio.NewCoverStore(), audio.WithCache(d.Cache, keyer), audio.WithLogger(d.Logger)),
		pages:    pages,
		sessions: make(map[string]*session),
	}, nil
}

// Run serves until ctx is cancelled, then shuts down gracefully and closes
// open live sessions.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv.RegisterOnShutdown(s.closeSessions)

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Server.Addr, "public", s.cfg.Server.Public)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return s.Close()
}

// Close releases live sessions and the audio library's cover handles.
func (s *Server) Close() error {
	s.closeSessions()
	return s.library.Close()
}

// metas lists the photos and resolves their aspect ratios, sorted by the
// configured capture-time order.
func (s *Server) metas(ctx context.Context) ([]gallery.Meta, error) {
	refs, err := s.catalog.Refs(ctx)
	if err != nil {
		return nil, err
	}
	return probe.Resolve(ctx, s.prober, refs, s.cfg.LiveConfig(s.catalog).Probe), nil
}

// tracks returns the audio library's list, reloading it only when the set
// of files changed.
func (s *Server) tracks(ctx context.Context) ([]audio.Track, error) {
	files, err := s.catalog.Tracks()
	if err != nil {
		return nil, err
	}

	s.tracksMu.Lock()
	defer s.tracksMu.Unlock()
	if s.trackFiles != nil && slices.Equal(files, s.trackFiles) {
		return s.library.Tracks(), nil
	}
	tracks, err := s.library.Load(ctx, files)
	if err != nil {
		return nil, err
	}
	s.trackFiles = files
	return tracks, nil
}
