package repository

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/movieweb/internal/domain"
	"github.com/Clark-Hu/movieweb/internal/store"
)

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("repository: not found")

// DataManager is the storage facade used by the HTTP layer.
type DataManager interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
	GetUser(ctx context.Context, id int64) (domain.User, error)
	AddUser(ctx context.Context, name string) (domain.User, error)
	GetUserMovies(ctx context.Context, userID int64) ([]domain.Movie, error)
	GetUserMovie(ctx context.Context, userID, movieID int64) (domain.Movie, error)
	AddMovie(ctx context.Context, params MovieCreateParams) (domain.Movie, error)
	UpdateMovie(ctx context.Context, movie domain.Movie) (domain.Movie, bool, error)
	DeleteMovie(ctx context.Context, movieID int64) (bool, error)
	DeleteUserMovie(ctx context.Context, userID, movieID int64) (bool, error)
}

// Repository aggregates all domain-specific repositories.
type Repository struct {
	Users  *UsersRepository
	Movies *MoviesRepository
	logger *slog.Logger
}

var _ DataManager = (*Repository)(nil)

// New constructs a Repository backed by the provided store.
func New(st *store.Store, logger *slog.Logger) *Repository {
	return NewWithPool(st.Pool(), logger)
}

// NewWithPool allows constructing repositories directly from a pgx pool.
func NewWithPool(pool *pgxpool.Pool, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		Users:  &UsersRepository{pool: pool},
		Movies: &MoviesRepository{pool: pool},
		logger: logger,
	}
}

// ListUsers returns every user; order is unspecified.
func (r *Repository) ListUsers(ctx context.Context) ([]domain.User, error) {
	return r.Users.List(ctx)
}

// GetUser returns ErrNotFound for an unknown id.
func (r *Repository) GetUser(ctx context.Context, id int64) (domain.User, error) {
	return r.Users.GetByID(ctx, id)
}

// AddUser persists a user and returns it with its generated id.
func (r *Repository) AddUser(ctx context.Context, name string) (domain.User, error) {
	user, err := r.Users.Create(ctx, name)
	if err != nil {
		r.logger.Error("add user failed", "name", name, "err", err)
		return domain.User{}, err
	}
	r.logger.Info("user added", "user_id", user.ID)
	return user, nil
}

// GetUserMovies lists a user's movies in insertion order. An unknown user
// yields an empty slice.
func (r *Repository) GetUserMovies(ctx context.Context, userID int64) ([]domain.Movie, error) {
	return r.Movies.ListByUser(ctx, userID)
}

// GetUserMovie returns ErrNotFound unless movieID exists and belongs to userID.
func (r *Repository) GetUserMovie(ctx context.Context, userID, movieID int64) (domain.Movie, error) {
	return r.Movies.GetForUser(ctx, userID, movieID)
}

// AddMovie persists a movie for an existing user.
func (r *Repository) AddMovie(ctx context.Context, params MovieCreateParams) (domain.Movie, error) {
	return r.Movies.Create(ctx, params)
}

// UpdateMovie stores the given field values under movie.ID, inserting the row
// when the id is unknown. The boolean reports an insert.
func (r *Repository) UpdateMovie(ctx context.Context, movie domain.Movie) (domain.Movie, bool, error) {
	return r.Movies.Upsert(ctx, movie)
}

// DeleteMovie removes a movie by id. A missing id is not an error.
func (r *Repository) DeleteMovie(ctx context.Context, movieID int64) (bool, error) {
	deleted, err := r.Movies.Delete(ctx, movieID)
	if err != nil {
		r.logger.Error("delete movie failed", "movie_id", movieID, "err", err)
		return false, err
	}
	if !deleted {
		r.logger.Warn("delete movie: not found", "movie_id", movieID)
	}
	return deleted, nil
}

// DeleteUserMovie removes a movie only if it belongs to userID.
func (r *Repository) DeleteUserMovie(ctx context.Context, userID, movieID int64) (bool, error) {
	deleted, err := r.Movies.DeleteForUser(ctx, userID, movieID)
	if err != nil {
		r.logger.Error("delete movie failed", "user_id", userID, "movie_id", movieID, "err", err)
		return false, err
	}
	if !deleted {
		r.logger.Warn("delete movie: not found for user", "user_id", userID, "movie_id", movieID)
	}
	return deleted, nil
}
