package server

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/jcolasacco/folio/pkg/gallery/viewport"
	"github.com/jcolasacco/folio/pkg/media/audio"
	"github.com/jcolasacco/folio/pkg/site"
)

//go:embed assets/templates/*.html
var templateFS embed.FS

//go:embed assets/static
var assetsFS embed.FS

var staticFS, _ = fs.Sub(assetsFS, "assets/static")

var pageNames = []string{"index", "photo", "audio", "code"}

// parsePages parses one template set per page, each sharing the layout.
func parsePages() (map[string]*template.Template, error) {
	layout, err := template.ParseFS(templateFS, "assets/templates/layout.html")
	if err != nil {
		return nil, err
	}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := layout.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(templateFS, "assets/templates/"+name+".html"); err != nil {
			return nil, err
		}
		pages[name] = t
	}
	return pages, nil
}

type pageData struct {
	Title string
	Page  string

	// photo
	TopOffset float64
	Gap       float64
	Margin    float64

	// audio
	Embeds []embedView
	Tracks []audio.Track

	// code
	Projects []site.Project
}

type embedView struct {
	Title string
	URL   string
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data pageData) {
	data.Page = name
	var buf bytes.Buffer
	if err := s.pages[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "index", pageData{Title: "home"})
}

func (s *Server) handlePhotoPage(w http.ResponseWriter, r *http.Request) {
	margin := s.cfg.Gallery.Margin
	if margin == 0 {
		margin = viewport.DefaultMargin
	}
	s.render(w, r, "photo", pageData{
		Title:     "photo",
		TopOffset: s.cfg.Gallery.TopOffset,
		Gap:       s.cfg.Gallery.Gap,
		Margin:    margin,
	})
}

func (s *Server) handleAudioPage(w http.ResponseWriter, r *http.Request) {
	tracks, err := s.tracks(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	urls := s.content.EmbedURLs()
	embeds := make([]embedView, len(urls))
	for i, u := range urls {
		embeds[i] = embedView{Title: s.content.Spotify[i].Title, URL: u}
	}
	s.render(w, r, "audio", pageData{Title: "audio", Embeds: embeds, Tracks: tracks})
}

func (s *Server) handleCodePage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "code", pageData{Title: "code projects", Projects: s.content.Projects})
}
