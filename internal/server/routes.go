package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jcolasacco/folio/pkg/media"
)

// Handler returns the site's router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/photo", s.handlePhotoPage)
	r.Get("/audio", s.handleAudioPage)
	r.Get("/code", s.handleCodePage)

	r.Route("/api", func(r chi.Router) {
		r.Get("/photos", s.handlePhotos)
		r.Get("/photos/rows", s.handleRows)
		r.Get("/photos/lightbox", s.handleLightbox)
		r.Get("/tracks", s.handleTracks)
		r.Get("/projects", s.handleProjects)
	})

	r.Get("/covers/{id}", s.handleCover)
	r.Get("/ws/gallery", s.handleLive)

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	r.Handle("/photos/*", http.StripPrefix("/"+media.PhotosDir+"/", http.FileServer(http.Dir(s.catalog.PhotoDir()))))
	r.Handle("/music/*", http.StripPrefix("/"+media.MusicDir+"/", http.FileServer(http.Dir(s.catalog.MusicDir()))))

	return r
}

// requestLogger logs one line per request at debug level.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Microsecond),
			"id", middleware.GetReqID(r.Context()),
		)
	})
}
