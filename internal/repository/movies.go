package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/movieweb/internal/domain"
)

// MoviesRepository provides persistence helpers for movie entities.
type MoviesRepository struct {
	pool *pgxpool.Pool
}

const movieColumns = `
    id,
    user_id,
    name,
    director,
    year,
    rating,
    cover_image
`

// MovieCreateParams bundles the fields required to create a movie.
type MovieCreateParams struct {
	UserID     int64
	Name       string
	Director   string
	Year       int
	Rating     float64
	CoverImage *string
}

// Create inserts a new movie row and returns the stored entity.
func (r *MoviesRepository) Create(ctx context.Context, params MovieCreateParams) (domain.Movie, error) {
	query := fmt.Sprintf(`
        INSERT INTO movies (user_id, name, director, year, rating, cover_image)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING %s
    `, movieColumns)

	row := r.pool.QueryRow(ctx, query, params.UserID, params.Name, params.Director, params.Year, params.Rating, params.CoverImage)
	return scanMovie(row)
}

// ListByUser returns the user's movies in insertion order.
func (r *MoviesRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Movie, error) {
	query := fmt.Sprintf(`SELECT %s FROM movies WHERE user_id = $1 ORDER BY id`, movieColumns)
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	movies := make([]domain.Movie, 0)
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		movies = append(movies, movie)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return movies, nil
}

// GetForUser fetches a movie only if it belongs to userID.
func (r *MoviesRepository) GetForUser(ctx context.Context, userID, movieID int64) (domain.Movie, error) {
	query := fmt.Sprintf(`SELECT %s FROM movies WHERE id = $1 AND user_id = $2`, movieColumns)
	return notFound(scanMovie(r.pool.QueryRow(ctx, query, movieID, userID)))
}

// Upsert writes every field of movie under movie.ID and indicates whether a
// new row was inserted. A zero ID always inserts with a generated id.
func (r *MoviesRepository) Upsert(ctx context.Context, movie domain.Movie) (domain.Movie, bool, error) {
	if movie.ID <= 0 {
		created, err := r.Create(ctx, MovieCreateParams{
			UserID:     movie.UserID,
			Name:       movie.Name,
			Director:   movie.Director,
			Year:       movie.Year,
			Rating:     movie.Rating,
			CoverImage: movie.CoverImage,
		})
		return created, err == nil, err
	}

	query := fmt.Sprintf(`
        INSERT INTO movies (id, user_id, name, director, year, rating, cover_image)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        ON CONFLICT (id)
        DO UPDATE SET user_id = EXCLUDED.user_id,
                      name = EXCLUDED.name,
                      director = EXCLUDED.director,
                      year = EXCLUDED.year,
                      rating = EXCLUDED.rating,
                      cover_image = EXCLUDED.cover_image
        RETURNING %s, (xmax = 0) AS inserted
    `, movieColumns)

	var (
		stored   domain.Movie
		inserted bool
	)
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, query, movie.ID, movie.UserID, movie.Name, movie.Director, movie.Year, movie.Rating, movie.CoverImage).Scan(
			&stored.ID,
			&stored.UserID,
			&stored.Name,
			&stored.Director,
			&stored.Year,
			&stored.Rating,
			&stored.CoverImage,
			&inserted,
		)
		if err != nil || !inserted {
			return err
		}
		// Explicit ids bypass the identity sequence; move it past them so
		// later Creates do not collide.
		_, err = tx.Exec(ctx, `SELECT setval(pg_get_serial_sequence('movies', 'id'), (SELECT MAX(id) FROM movies))`)
		return err
	})
	if err != nil {
		return domain.Movie{}, false, err
	}
	return stored, inserted, nil
}

// Delete removes a movie by id and reports whether a row was removed.
func (r *MoviesRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM movies WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteForUser removes a movie only if it belongs to userID.
func (r *MoviesRepository) DeleteForUser(ctx context.Context, userID, movieID int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM movies WHERE id = $1 AND user_id = $2`, movieID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func scanMovie(row pgx.Row) (domain.Movie, error) {
	var movie domain.Movie
	err := row.Scan(
		&movie.ID,
		&movie.UserID,
		&movie.Name,
		&movie.Director,
		&movie.Year,
		&movie.Rating,
		&movie.CoverImage,
	)
	if err != nil {
		return domain.Movie{}, err
	}
	return movie, nil
}

func notFound(movie domain.Movie, err error) (domain.Movie, error) {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Movie{}, ErrNotFound
	}
	return movie, err
}
