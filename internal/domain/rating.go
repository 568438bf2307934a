package domain

import "time"

const (
	// MinScore and MaxScore bound a single rating.
	MinScore = 1
	MaxScore = 5
)

// Rating represents a single score submitted for a movie.
type Rating struct {
	ID        int64
	MovieID   int64
	Score     int
	CreatedAt time.Time
}

// RatingStats provides average and count for a movie's ratings.
type RatingStats struct {
	Average float64
	Count   int64
}

// Average returns the mean of scores rounded half-up to one decimal place.
// An empty slice yields 0.
func Average(scores []int) float64 {
	if len(scores) == 0 {
		return 0
	}
	var sum int64
	for _, s := range scores {
		sum += int64(s)
	}
	return roundTenths(sum, int64(len(scores)))
}

// Summarize computes the aggregate for a list of scores.
func Summarize(scores []int) RatingStats {
	return RatingStats{Average: Average(scores), Count: int64(len(scores))}
}

// roundTenths computes round(sum/count, 1) with integer arithmetic so the
// result matches ROUND(AVG(x)::numeric, 1) in PostgreSQL exactly.
func roundTenths(sum, count int64) float64 {
	if count == 0 {
		return 0
	}
	tenths := (20*sum + count) / (2 * count)
	return float64(tenths) / 10
}
