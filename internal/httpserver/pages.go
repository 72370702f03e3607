package httpserver

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/hlog"

	"github.com/robalobadob/spellquiz/internal/catalog"
	"github.com/robalobadob/spellquiz/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type indexPage struct {
	ImageURL string
	Score    int
}

type resultPage struct {
	IsCorrect   bool
	CorrectWord string
	UserGuess   string
	Awarded     int
	Score       int
}

// imageURL is the public URL of a catalog image path.
func imageURL(p string) string {
	return "/images/" + url.PathEscape(p)
}

// handleIndex starts a new round and shows its picture.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	rd, err := s.quiz.NewRound(r.Context(), sessionID(r.Context()))
	if err != nil {
		s.pageError(w, r, err)
		return
	}
	render(w, r, "index.html", indexPage{ImageURL: imageURL(rd.ImagePath), Score: rd.Score})
}

// handleCheck judges the posted guess and shows the result.
// Without a pending round the player is sent back to "/" for a fresh one.
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	guess := r.PostFormValue("guess")
	out, err := s.quiz.Submit(r.Context(), sessionID(r.Context()), guess)
	if errors.Is(err, session.ErrNoActiveRound) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if err != nil {
		s.pageError(w, r, err)
		return
	}
	render(w, r, "result.html", resultPage{
		IsCorrect:   out.Correct,
		CorrectWord: out.Expected,
		UserGuess:   out.Guess,
		Awarded:     out.Awarded,
		Score:       out.Score,
	})
}

// handleResetPage zeroes the score and starts over.
func (s *Server) handleResetPage(w http.ResponseWriter, r *http.Request) {
	if _, err := s.quiz.Reset(r.Context(), sessionID(r.Context())); err != nil {
		s.pageError(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func render(w http.ResponseWriter, r *http.Request, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pages.ExecuteTemplate(w, name, data); err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("template", name).Msg("render page")
	}
}

func (s *Server) pageError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, catalog.ErrEmptyCatalog) {
		http.Error(w, "Error: No images found. Please add some.", http.StatusInternalServerError)
		return
	}
	hlog.FromRequest(r).Error().Err(err).Msg("quiz page")
	http.Error(w, "Something went wrong.", http.StatusInternalServerError)
}

// imageServer serves the catalog's image files and nothing else from its
// folder.
func imageServer(c *catalog.Catalog) http.Handler {
	allowed := make(map[string]struct{}, c.Len())
	for _, e := range c.Entries() {
		allowed[e.ImagePath] = struct{}{}
	}
	files := http.FileServer(http.FS(c.Source()))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := allowed[strings.TrimPrefix(r.URL.Path, "/")]; !ok {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}
		w.Header().Set("Cache-Control", "public, max-age=3600")
		files.ServeHTTP(w, r)
	})
}
