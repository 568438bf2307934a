package domain

import "time"

// Movie represents the canonical movie entity in the database/service.
type Movie struct {
	ID        int64
	Title     string
	Year      int
	Genre     string
	CreatedAt time.Time
}

// MovieWithStats pairs a movie with its derived rating aggregate.
type MovieWithStats struct {
	Movie
	Stats RatingStats
}
