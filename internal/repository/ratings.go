package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/movie-ratings/internal/domain"
)

// RatingsRepository provides helpers for movie ratings.
type RatingsRepository struct {
	pool *pgxpool.Pool
}

// Add stores a score for a movie and returns the movie's aggregate including
// the new rating. Insert and aggregate read share one transaction.
func (r *RatingsRepository) Add(ctx context.Context, movieID int64, score int) (domain.RatingStats, error) {
	var stats domain.RatingStats
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := insertRating(ctx, tx, movieID, score); err != nil {
			return err
		}
		var err error
		stats, err = aggregate(ctx, tx, movieID)
		return err
	})
	if err != nil {
		return domain.RatingStats{}, err
	}
	return stats, nil
}

// Stats returns the rating average and count for a movie.
func (r *RatingsRepository) Stats(ctx context.Context, movieID int64) (domain.RatingStats, error) {
	return aggregate(ctx, r.pool, movieID)
}

// ScoresForMovie returns every score for a movie, newest first.
func (r *RatingsRepository) ScoresForMovie(ctx context.Context, movieID int64) ([]int, error) {
	const query = `
        SELECT score
        FROM ratings
        WHERE movie_id = $1
        ORDER BY created_at DESC, id DESC
    `

	rows, err := r.pool.Query(ctx, query, movieID)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	scores, err := pgx.CollectRows(rows, pgx.RowTo[int])
	if err != nil {
		return nil, fmt.Errorf("scan ratings: %w", err)
	}
	return scores, nil
}

func insertRating(ctx context.Context, q querier, movieID int64, score int) (domain.Rating, error) {
	const query = `
        INSERT INTO ratings (movie_id, score)
        VALUES ($1,$2)
        RETURNING id, movie_id, score, created_at
    `

	var rating domain.Rating
	err := q.QueryRow(ctx, query, movieID, score).Scan(
		&rating.ID,
		&rating.MovieID,
		&rating.Score,
		&rating.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.Rating{}, ErrNotFound
		}
		return domain.Rating{}, fmt.Errorf("insert rating: %w", err)
	}
	return rating, nil
}

func aggregate(ctx context.Context, q querier, movieID int64) (domain.RatingStats, error) {
	const query = `
        SELECT COALESCE(ROUND(AVG(score)::numeric, 1), 0)::float8 AS average,
               COUNT(*)::int8 AS count
        FROM ratings
        WHERE movie_id = $1
    `

	var stats domain.RatingStats
	if err := q.QueryRow(ctx, query, movieID).Scan(&stats.Average, &stats.Count); err != nil {
		return domain.RatingStats{}, fmt.Errorf("aggregate ratings: %w", err)
	}
	return stats, nil
}
