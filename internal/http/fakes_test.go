package httpserver

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/Clark-Hu/movieweb/internal/config"
	"github.com/Clark-Hu/movieweb/internal/domain"
	"github.com/Clark-Hu/movieweb/internal/logger"
	"github.com/Clark-Hu/movieweb/internal/metrics"
	"github.com/Clark-Hu/movieweb/internal/omdb"
	"github.com/Clark-Hu/movieweb/internal/repository"
)

var errStorage = errors.New("storage unavailable")

// memoryRepo is an in-memory repository.DataManager.
type memoryRepo struct {
	mu     sync.Mutex
	users  map[int64]domain.User
	movies map[int64]domain.Movie
	nextID int64

	failListUsers bool
	failAddUser   bool
	failAddMovie  bool
	failDelete    bool
}

var _ repository.DataManager = (*memoryRepo)(nil)

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		users:  make(map[int64]domain.User),
		movies: make(map[int64]domain.Movie),
	}
}

func (m *memoryRepo) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memoryRepo) ListUsers(ctx context.Context) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failListUsers {
		return nil, errStorage
	}
	users := make([]domain.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (m *memoryRepo) GetUser(ctx context.Context, id int64) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domain.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (m *memoryRepo) AddUser(ctx context.Context, name string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAddUser {
		return domain.User{}, errStorage
	}
	u := domain.User{ID: m.id(), Name: name}
	m.users[u.ID] = u
	return u, nil
}

func (m *memoryRepo) GetUserMovies(ctx context.Context, userID int64) ([]domain.Movie, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	movies := make([]domain.Movie, 0)
	for _, mv := range m.movies {
		if mv.UserID == userID {
			movies = append(movies, mv)
		}
	}
	sort.Slice(movies, func(i, j int) bool { return movies[i].ID < movies[j].ID })
	return movies, nil
}

func (m *memoryRepo) GetUserMovie(ctx context.Context, userID, movieID int64) (domain.Movie, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mv, ok := m.movies[movieID]
	if !ok || mv.UserID != userID {
		return domain.Movie{}, repository.ErrNotFound
	}
	return mv, nil
}

func (m *memoryRepo) AddMovie(ctx context.Context, params repository.MovieCreateParams) (domain.Movie, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAddMovie {
		return domain.Movie{}, errStorage
	}
	if _, ok := m.users[params.UserID]; !ok {
		return domain.Movie{}, errors.New("violates foreign key constraint")
	}
	mv := domain.Movie{
		ID:         m.id(),
		UserID:     params.UserID,
		Name:       params.Name,
		Director:   params.Director,
		Year:       params.Year,
		Rating:     params.Rating,
		CoverImage: params.CoverImage,
	}
	m.movies[mv.ID] = mv
	return mv, nil
}

func (m *memoryRepo) UpdateMovie(ctx context.Context, movie domain.Movie) (domain.Movie, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, existed := m.movies[movie.ID]
	m.movies[movie.ID] = movie
	return movie, !existed, nil
}

func (m *memoryRepo) DeleteMovie(ctx context.Context, movieID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDelete {
		return false, errStorage
	}
	_, ok := m.movies[movieID]
	delete(m.movies, movieID)
	return ok, nil
}

func (m *memoryRepo) DeleteUserMovie(ctx context.Context, userID, movieID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDelete {
		return false, errStorage
	}
	mv, ok := m.movies[movieID]
	if !ok || mv.UserID != userID {
		return false, nil
	}
	delete(m.movies, movieID)
	return true, nil
}

func (m *memoryRepo) movieCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.movies)
}

// stubMetadata returns a fixed result and records the titles it was asked for.
type stubMetadata struct {
	mu     sync.Mutex
	meta   *omdb.Metadata
	err    error
	titles []string
}

func (s *stubMetadata) Lookup(ctx context.Context, title string) (*omdb.Metadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.titles = append(s.titles, title)
	if s.err != nil {
		return nil, s.err
	}
	if s.meta == nil {
		return &omdb.Metadata{}, nil
	}
	copied := *s.meta
	return &copied, nil
}

func (s *stubMetadata) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.titles)
}

func testConfig() config.Config {
	return config.Config{
		Port:             "0",
		OMDbTimeoutSecs:  1,
		ReadTimeoutSecs:  15,
		WriteTimeoutSecs: 15,
		IdleTimeoutSecs:  60,
	}
}

func buildMemoryServer(tb testing.TB, repo repository.DataManager, metadata omdb.Client) *Server {
	tb.Helper()
	srv, err := New(testConfig(), nil, repo, metadata, metrics.New(), logger.Discard())
	if err != nil {
		tb.Fatalf("new server: %v", err)
	}
	// Replace chi router to avoid default middleware noise.
	srv.router = chi.NewRouter()
	srv.registerRoutes()
	return srv
}
