package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/movie-ratings/internal/domain"
)

// MoviesRepository provides persistence helpers for movie entities.
type MoviesRepository struct {
	pool *pgxpool.Pool
}

const movieColumns = `id, title, year, genre, created_at`

// MovieCreateParams bundles the fields required to create a movie.
type MovieCreateParams struct {
	Title string
	Year  int
	Genre string
}

// Create inserts a new movie row and returns the stored entity.
func (r *MoviesRepository) Create(ctx context.Context, params MovieCreateParams) (domain.Movie, error) {
	return createMovie(ctx, r.pool, params)
}

func createMovie(ctx context.Context, q querier, params MovieCreateParams) (domain.Movie, error) {
	query := fmt.Sprintf(`
        INSERT INTO movies (title, year, genre)
        VALUES ($1,$2,$3)
        RETURNING %s
    `, movieColumns)

	movie, err := scanMovie(q.QueryRow(ctx, query, params.Title, params.Year, params.Genre))
	if err != nil {
		return domain.Movie{}, fmt.Errorf("insert movie: %w", err)
	}
	return movie, nil
}

// GetByID fetches a movie by its identifier.
func (r *MoviesRepository) GetByID(ctx context.Context, id int64) (domain.Movie, error) {
	query := fmt.Sprintf(`SELECT %s FROM movies WHERE id = $1`, movieColumns)
	movie, err := scanMovie(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Movie{}, ErrNotFound
		}
		return domain.Movie{}, err
	}
	return movie, nil
}

// ListWithStats returns every movie with its rating aggregate, ordered by
// title. Movies without ratings report a zero average and count.
func (r *MoviesRepository) ListWithStats(ctx context.Context) ([]domain.MovieWithStats, error) {
	const query = `
        SELECT m.id, m.title, m.year, m.genre, m.created_at,
               COALESCE(ROUND(AVG(rt.score)::numeric, 1), 0)::float8 AS avg_rating,
               COUNT(rt.id)::int8 AS total_ratings
        FROM movies m
        LEFT JOIN ratings rt ON rt.movie_id = m.id
        GROUP BY m.id
        ORDER BY m.title ASC, m.id ASC
    `

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	defer rows.Close()

	items := make([]domain.MovieWithStats, 0)
	for rows.Next() {
		var item domain.MovieWithStats
		if err := rows.Scan(
			&item.ID,
			&item.Title,
			&item.Year,
			&item.Genre,
			&item.CreatedAt,
			&item.Stats.Average,
			&item.Stats.Count,
		); err != nil {
			return nil, fmt.Errorf("scan movie: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	return items, nil
}

// Count returns the number of stored movies.
func (r *MoviesRepository) Count(ctx context.Context) (int64, error) {
	return countMovies(ctx, r.pool)
}

func countMovies(ctx context.Context, q querier) (int64, error) {
	var n int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM movies`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count movies: %w", err)
	}
	return n, nil
}

func scanMovie(row pgx.Row) (domain.Movie, error) {
	var movie domain.Movie
	err := row.Scan(
		&movie.ID,
		&movie.Title,
		&movie.Year,
		&movie.Genre,
		&movie.CreatedAt,
	)
	if err != nil {
		return domain.Movie{}, err
	}
	return movie, nil
}
