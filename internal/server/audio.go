package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/jcolasacco/folio/pkg/errors"
)

// handleTracks lists the audio tracks.
func (s *Server) handleTracks(w http.ResponseWriter, r *http.Request) {
	tracks, err := s.tracks(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, tracks)
}

// handleCover serves an embedded cover image by handle.
func (s *Server) handleCover(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	c, ok := s.library.Covers().Get(id)
	if !ok {
		s.writeError(w, r, errors.New(errors.ErrCodeCoverNotFound, "cover %q not found", id))
		return
	}
	w.Header().Set("Content-Type", c.MIMEType)
	w.Header().Set("Content-Length", strconv.Itoa(len(c.Data)))
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Write(c.Data)
}

// handleProjects lists the code projects.
func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.content.Projects)
}
