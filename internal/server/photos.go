package server

import (
	"net/http"
	"strconv"

	"github.com/jcolasacco/folio/pkg/errors"
	"github.com/jcolasacco/folio/pkg/gallery"
	"github.com/jcolasacco/folio/pkg/gallery/lightbox"
	"github.com/jcolasacco/folio/pkg/gallery/probe"
)

// rowsResponse is a packed and placed grid for one container width.
type rowsResponse struct {
	Width  float64        `json:"width"`
	Rows   []gallery.Row  `json:"rows"`
	Tiles  []gallery.Tile `json:"tiles"`
	Height float64        `json:"height"`
}

// handlePhotos lists the resolved photo metas in display order.
func (s *Server) handlePhotos(w http.ResponseWriter, r *http.Request) {
	metas, err := s.metas(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, metas)
}

// handleRows packs the gallery for ?width=. Optional gap and target
// override the configured layout.
func (s *Server) handleRows(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := s.cfg.GalleryOptions()

	width, err := floatParam(q.Get("width"), -1)
	if err == nil && width < 0 {
		err = errors.New(errors.ErrCodeInvalidInput, "width must be a non-negative number")
	}
	if err == nil {
		opts.Gap, err = floatParam(q.Get("gap"), opts.Gap)
	}
	if err == nil {
		opts.TargetRowHeight, err = floatParam(q.Get("target"), opts.TargetRowHeight)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts = opts.WithWidth(width)
	if err := opts.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	metas, err := s.metas(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rows := gallery.Pack(metas, opts)
	s.writeJSON(w, http.StatusOK, rowsResponse{
		Width:  width,
		Rows:   rows,
		Tiles:  gallery.Place(rows, opts),
		Height: gallery.Height(rows, opts),
	})
}

// handleLightbox sizes ?src= for a ?vw= by ?vh= viewport and attaches its
// exposure labels. Only photos of the catalog can be opened. An unreadable
// image keeps the provisional box.
func (s *Server) handleLightbox(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	src := q.Get("src")
	if src == "" {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "src is required"))
		return
	}
	if !probe.IsRemote(src) {
		if err := errors.ValidateURLPath(src); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	ok, err := s.catalog.Contains(src)
	if err == nil && !ok {
		err = errors.New(errors.ErrCodeNotFound, "image %q is not in the gallery", src)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	vw, err := intParam(q.Get("vw"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	vh, err := intParam(q.Get("vh"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	vp := gallery.Size{Width: vw, Height: vh}

	ctx := r.Context()
	st := lightbox.State{
		Phase: lightbox.Sized,
		Src:   src,
		Box:   lightbox.Provisional(vp),
	}
	if size, err := s.prober.Probe(ctx, src); err == nil {
		st.Natural = size
		st.Box = lightbox.Fit(size, vp)
	} else {
		st.Broken = true
		s.logger.Debug("lightbox probe failed", "src", src, "err", err)
	}
	if e, err := s.exif.Exposure(ctx, src); err == nil {
		st.Exposure = e
	}
	st.Labels = lightbox.FormatLabels(st.Exposure)

	s.writeJSON(w, http.StatusOK, st)
}

func floatParam(v string, def float64) (float64, error) {
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidInput, err, "not a number: %q", v)
	}
	return f, nil
}

func intParam(v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "viewport size must be a non-negative integer: %q", v)
	}
	return n, nil
}
