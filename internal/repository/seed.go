package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// seedLockKey serializes concurrent seeders across processes.
const seedLockKey int64 = 0x6d6f76696573

// SeedMovie is one entry of the starter catalog with its sample scores.
type SeedMovie struct {
	Title  string
	Year   int
	Genre  string
	Scores []int
}

// Catalog is the starter dataset inserted into an empty database.
var Catalog = []SeedMovie{
	{Title: "The Shawshank Redemption", Year: 1994, Genre: "Drama", Scores: []int{5, 5, 4, 5}},
	{Title: "The Godfather", Year: 1972, Genre: "Crime", Scores: []int{5, 4, 5}},
	{Title: "The Dark Knight", Year: 2008, Genre: "Action", Scores: []int{5, 4, 4}},
	{Title: "Pulp Fiction", Year: 1994, Genre: "Crime", Scores: []int{4, 5, 3}},
	{Title: "Forrest Gump", Year: 1994, Genre: "Drama", Scores: []int{4, 4}},
	{Title: "Inception", Year: 2010, Genre: "Sci-Fi", Scores: []int{5, 4, 5, 4}},
	{Title: "The Matrix", Year: 1999, Genre: "Sci-Fi", Scores: []int{5, 5, 4}},
	{Title: "Spirited Away", Year: 2001, Genre: "Animation", Scores: []int{5, 5}},
	{Title: "Parasite", Year: 2019, Genre: "Thriller", Scores: []int{4, 5, 4}},
	{Title: "Interstellar", Year: 2014, Genre: "Sci-Fi", Scores: []int{4, 3, 5}},
}

// SeedResult reports what Seed wrote.
type SeedResult struct {
	Seeded  bool
	Movies  int
	Ratings int64
}

// Seed inserts Catalog when the movies table is empty. It is a no-op when any
// movie already exists. The check and inserts run in one transaction guarded
// by an advisory lock, so concurrent callers seed at most once.
func (r *Repository) Seed(ctx context.Context) (SeedResult, error) {
	var result SeedResult
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, seedLockKey); err != nil {
			return fmt.Errorf("acquire seed lock: %w", err)
		}

		existing, err := countMovies(ctx, tx)
		if err != nil {
			return err
		}
		if existing > 0 {
			return nil
		}

		var ratingRows [][]any
		for _, entry := range Catalog {
			movie, err := createMovie(ctx, tx, MovieCreateParams{
				Title: entry.Title,
				Year:  entry.Year,
				Genre: entry.Genre,
			})
			if err != nil {
				return fmt.Errorf("seed %q: %w", entry.Title, err)
			}
			for _, score := range entry.Scores {
				ratingRows = append(ratingRows, []any{movie.ID, score})
			}
		}

		copied, err := tx.CopyFrom(ctx, pgx.Identifier{"ratings"}, []string{"movie_id", "score"}, pgx.CopyFromRows(ratingRows))
		if err != nil {
			return fmt.Errorf("seed ratings: %w", err)
		}

		result = SeedResult{Seeded: true, Movies: len(Catalog), Ratings: copied}
		return nil
	})
	if err != nil {
		return SeedResult{}, err
	}
	return result, nil
}
