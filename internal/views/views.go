// Package views renders the HTML pages served by the application.
package views

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"github.com/Clark-Hu/movieweb/internal/domain"
)

// ErrResponseWrite marks a failure copying a rendered page to the client.
// The status line has already been sent when it is returned.
var ErrResponseWrite = errors.New("views: write response")

//go:embed templates/*.html
var templatesFS embed.FS

// Page names accepted by Renderer.Render.
const (
	PageHome        = "home"
	PageUsers       = "users"
	PageUserMovies  = "user_movies"
	PageAddUser     = "add_user"
	PageAddMovie    = "add_movie"
	PageUpdateMovie = "update_movie"
	PageNotFound    = "404"
	PageError       = "error"
)

var pages = []string{
	PageHome,
	PageUsers,
	PageUserMovies,
	PageAddUser,
	PageAddMovie,
	PageUpdateMovie,
	PageNotFound,
	PageError,
}

// UsersPage is the data for PageUsers.
type UsersPage struct {
	Users []domain.User
}

// UserMoviesPage is the data for PageUserMovies and PageAddMovie.
type UserMoviesPage struct {
	User   domain.User
	Movies []domain.Movie
}

// MovieFormPage is the data for PageUpdateMovie.
type MovieFormPage struct {
	User  domain.User
	Movie domain.Movie
}

// MessagePage is the data for PageNotFound and PageError.
type MessagePage struct {
	Message string
}

// Renderer holds one parsed template set per page, each combined with the
// shared layout.
type Renderer struct {
	templates map[string]*template.Template
}

// New parses every embedded page template.
func New() (*Renderer, error) {
	r := &Renderer{templates: make(map[string]*template.Template, len(pages))}
	for _, page := range pages {
		tmpl, err := template.ParseFS(templatesFS, "templates/layout.html", "templates/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", page, err)
		}
		r.templates[page] = tmpl
	}
	return r, nil
}

// Render executes page into a buffer first so a template error never leaves
// a half-written response behind.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data any) error {
	tmpl, ok := r.templates[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", page, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("%w: %w", ErrResponseWrite, err)
	}
	return nil
}
