package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Clark-Hu/movieweb/internal/metrics"
	"github.com/Clark-Hu/movieweb/internal/omdb"
	"github.com/Clark-Hu/movieweb/internal/repository"
	"github.com/Clark-Hu/movieweb/internal/views"
)

func (s *Server) handleAddMovieForm(w http.ResponseWriter, r *http.Request) {
	user, ok := s.loadUser(w, r)
	if !ok {
		return
	}
	s.render(w, http.StatusOK, views.PageAddMovie, views.UserMoviesPage{User: user})
}

func (s *Server) handleAddMovie(w http.ResponseWriter, r *http.Request) {
	user, ok := s.loadUser(w, r)
	if !ok {
		return
	}
	if err := parseForm(w, r); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	form, err := readMovieForm(r, false)
	if err != nil {
		http.Error(w, "Invalid movie: "+err.Error(), http.StatusBadRequest)
		return
	}

	meta, err := s.lookupMetadata(r.Context(), form.Name)
	if err != nil {
		if errors.Is(err, omdb.ErrNetwork) {
			http.Error(w, "Network error: "+err.Error(), http.StatusInternalServerError)
			return
		}
		http.Error(w, "An error occurred: "+err.Error(), http.StatusInternalServerError)
		return
	}

	params := mergeMovie(user.ID, form, omdb.Resolve(meta))
	if _, err := s.repo.AddMovie(r.Context(), params); err != nil {
		s.logger.Error("add movie failed", "user_id", user.ID, "name", params.Name, "err", err)
		http.Error(w, "An error occurred: "+err.Error(), http.StatusInternalServerError)
		return
	}
	s.metrics.ObserveMutation("movie", "create")
	http.Redirect(w, r, userPath(user.ID), http.StatusSeeOther)
}

func (s *Server) lookupMetadata(ctx context.Context, title string) (*omdb.Metadata, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(s.cfg.OMDbTimeoutSecs)*time.Second)
	defer cancel()

	meta, err := s.metadata.Lookup(ctx, title)
	switch {
	case err != nil:
		s.metrics.ObserveLookup(metrics.LookupError)
		s.logger.Warn("omdb lookup failed", "title", title, "err", err)
		return nil, err
	case meta == nil || !meta.Found:
		s.metrics.ObserveLookup(metrics.LookupNotFound)
	default:
		s.metrics.ObserveLookup(metrics.LookupFound)
	}
	return meta, nil
}

// mergeMovie prefers values typed into the form and falls back to the
// resolved metadata.
func mergeMovie(userID int64, form movieForm, resolved omdb.Resolved) repository.MovieCreateParams {
	params := repository.MovieCreateParams{
		UserID:     userID,
		Name:       form.Name,
		Director:   resolved.Director,
		Year:       resolved.Year,
		Rating:     resolved.Rating,
		CoverImage: resolved.CoverImage,
	}
	if form.Director != "" {
		params.Director = form.Director
	}
	if form.Year != nil {
		params.Year = *form.Year
	}
	if form.Rating != nil {
		params.Rating = *form.Rating
	}
	return params
}

func (s *Server) handleUpdateMovieForm(w http.ResponseWriter, r *http.Request) {
	user, movie, ok := s.loadUserMovie(w, r)
	if !ok {
		return
	}
	s.render(w, http.StatusOK, views.PageUpdateMovie, views.MovieFormPage{User: user, Movie: movie})
}

func (s *Server) handleUpdateMovie(w http.ResponseWriter, r *http.Request) {
	user, movie, ok := s.loadUserMovie(w, r)
	if !ok {
		return
	}
	if err := parseForm(w, r); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	form, err := readMovieForm(r, true)
	if err != nil {
		http.Error(w, "Invalid movie: "+err.Error(), http.StatusBadRequest)
		return
	}

	movie.Name = form.Name
	movie.Director = form.Director
	movie.Year = *form.Year
	movie.Rating = *form.Rating

	if _, _, err := s.repo.UpdateMovie(r.Context(), movie); err != nil {
		s.logger.Error("update movie failed", "user_id", user.ID, "movie_id", movie.ID, "err", err)
		s.renderServerError(w, "Failed to update movie")
		return
	}
	s.metrics.ObserveMutation("movie", "update")
	http.Redirect(w, r, userPath(user.ID), http.StatusSeeOther)
}

func (s *Server) handleDeleteMovie(w http.ResponseWriter, r *http.Request) {
	user, ok := s.loadUser(w, r)
	if !ok {
		return
	}
	movieID, ok := pathID(r, "movieId")
	if !ok {
		s.renderNotFound(w, "Movie not found")
		return
	}

	deleted, err := s.repo.DeleteUserMovie(r.Context(), user.ID, movieID)
	if err != nil {
		s.renderServerError(w, "Failed to delete movie")
		return
	}
	if !deleted {
		s.renderNotFound(w, "Movie not found")
		return
	}
	s.metrics.ObserveMutation("movie", "delete")
	http.Redirect(w, r, userPath(user.ID), http.StatusSeeOther)
}

func userPath(userID int64) string {
	return fmt.Sprintf("/users/%d", userID)
}
