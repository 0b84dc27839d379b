package httpserver

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Clark-Hu/movieweb/internal/domain"
	"github.com/Clark-Hu/movieweb/internal/repository"
	"github.com/Clark-Hu/movieweb/internal/views"
)

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.repo.ListUsers(r.Context())
	if err != nil {
		// Listing degrades to an empty page rather than an error.
		s.logger.Error("list users failed", "err", err)
		users = []domain.User{}
	}
	s.render(w, http.StatusOK, views.PageUsers, views.UsersPage{Users: users})
}

func (s *Server) handleUserMovies(w http.ResponseWriter, r *http.Request) {
	user, ok := s.loadUser(w, r)
	if !ok {
		return
	}
	movies, err := s.repo.GetUserMovies(r.Context(), user.ID)
	if err != nil {
		s.logger.Error("list movies failed", "user_id", user.ID, "err", err)
		s.renderServerError(w, "Failed to load movies")
		return
	}
	s.render(w, http.StatusOK, views.PageUserMovies, views.UserMoviesPage{User: user, Movies: movies})
}

func (s *Server) handleAddUserForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, views.PageAddUser, nil)
}

func (s *Server) handleAddUser(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	name := strings.TrimSpace(r.PostForm.Get("name"))
	if name == "" {
		http.Error(w, "User name is required", http.StatusBadRequest)
		return
	}

	if _, err := s.repo.AddUser(r.Context(), name); err != nil {
		s.renderServerError(w, "Failed to add user")
		return
	}
	s.metrics.ObserveMutation("user", "create")
	http.Redirect(w, r, "/users", http.StatusSeeOther)
}

// loadUser resolves the {userId} path parameter. On failure it writes the
// response and returns false.
func (s *Server) loadUser(w http.ResponseWriter, r *http.Request) (domain.User, bool) {
	userID, ok := pathID(r, "userId")
	if !ok {
		s.renderNotFound(w, "User not found")
		return domain.User{}, false
	}
	user, err := s.repo.GetUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.renderNotFound(w, "User not found")
			return domain.User{}, false
		}
		s.logger.Error("fetch user failed", "user_id", userID, "err", err)
		s.renderServerError(w, "Failed to load user")
		return domain.User{}, false
	}
	return user, true
}

// loadUserMovie resolves {userId} and {movieId}; the movie must belong to
// the user.
func (s *Server) loadUserMovie(w http.ResponseWriter, r *http.Request) (domain.User, domain.Movie, bool) {
	user, ok := s.loadUser(w, r)
	if !ok {
		return domain.User{}, domain.Movie{}, false
	}
	movieID, ok := pathID(r, "movieId")
	if !ok {
		s.renderNotFound(w, "Movie not found")
		return domain.User{}, domain.Movie{}, false
	}
	movie, err := s.repo.GetUserMovie(r.Context(), user.ID, movieID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.renderNotFound(w, "Movie not found")
			return domain.User{}, domain.Movie{}, false
		}
		s.logger.Error("fetch movie failed", "user_id", user.ID, "movie_id", movieID, "err", err)
		s.renderServerError(w, "Failed to load movie")
		return domain.User{}, domain.Movie{}, false
	}
	return user, movie, true
}

func pathID(r *http.Request, name string) (int64, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
